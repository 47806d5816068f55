package generators

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/germanamz/ideaforge/pkg/gateway"
)

// Social calendar option values.
var (
	Frequencies = []string{"daily", "3x week", "2x week", "weekly"}
	Platforms   = []string{"linkedin", "twitter", "instagram", "facebook", "tiktok"}
	Timeframes  = []string{"week", "month", "quarter"}
	Tones       = []string{"professional", "casual", "friendly", "educational", "inspirational", "humorous"}
)

var platformNames = map[string]string{
	"linkedin":  "LinkedIn",
	"twitter":   "Twitter",
	"instagram": "Instagram",
	"facebook":  "Facebook",
	"tiktok":    "TikTok",
}

// PlatformName returns the brand spelling of a platform option.
func PlatformName(platform string) string {
	if n, ok := platformNames[strings.ToLower(platform)]; ok {
		return n
	}

	return platform
}

// SocialInput describes a social media calendar request.
type SocialInput struct {
	Theme     string
	Frequency string // Default "3x week".
	Platform  string // Default "linkedin".
	Timeframe string // Default "month".
	Tone      string // Default "professional".

	// IncludeDates adds concrete posting dates, starting today, to the prompt.
	IncludeDates bool

	Overrides gateway.Overrides
}

// Normalize trims and validates the input, filling in defaults.
func (in SocialInput) Normalize() (SocialInput, error) {
	in.Theme = strings.TrimSpace(in.Theme)
	if in.Theme == "" {
		return in, fmt.Errorf("generators: %w: theme is required", ErrInvalidInput)
	}

	var err error
	if in.Frequency, err = oneOf("frequency", in.Frequency, "3x week", Frequencies); err != nil {
		return in, err
	}
	if in.Platform, err = oneOf("platform", in.Platform, "linkedin", Platforms); err != nil {
		return in, err
	}
	if in.Timeframe, err = oneOf("timeframe", in.Timeframe, "month", Timeframes); err != nil {
		return in, err
	}
	if in.Tone, err = oneOf("tone", in.Tone, "professional", Tones); err != nil {
		return in, err
	}

	return in, nil
}

// Prompt returns the rendered user prompt for a normalized input.
func (in SocialInput) Prompt(start time.Time) (string, error) {
	return prompts[Social].render(in.templateData(start))
}

func (in SocialInput) templateData(start time.Time) map[string]any {
	var dates []string
	if in.IncludeDates {
		for _, d := range PostDates(in.Frequency, in.Timeframe, start) {
			dates = append(dates, FormatPostDate(d))
		}
	}

	return map[string]any{
		"Theme":     in.Theme,
		"Platform":  PlatformName(in.Platform),
		"Frequency": in.Frequency,
		"Timeframe": in.Timeframe,
		"Tone":      in.Tone,
		"PostDates": dates,
	}
}

// SocialCalendar generates a social media content calendar.
func (s *Service) SocialCalendar(ctx context.Context, in SocialInput) (Result, error) {
	in, err := in.Normalize()
	if err != nil {
		return Result{}, err
	}

	fields := Metadata{
		{Key: "frequency", Value: in.Frequency},
		{Key: "platform", Value: PlatformName(in.Platform)},
		{Key: "timeframe", Value: in.Timeframe},
		{Key: "tone", Value: in.Tone},
	}

	return s.run(ctx, Social, in.Theme, in.templateData(s.now()), fields, in.Overrides)
}
