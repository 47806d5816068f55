package generators

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/germanamz/ideaforge/pkg/gateway"
)

// MinTopicLength is the shortest accepted blog topic, in runes.
const MinTopicLength = 3

// Blog option values.
var (
	Audiences    = []string{"beginners", "intermediate", "experts"}
	Lengths      = []string{"short", "medium", "long"}
	ContentTypes = []string{"tutorial", "listicle", "how-to", "opinion"}
)

var lengthGuides = map[string]string{
	"short":  "800-1200 words (5-7 minute read)",
	"medium": "1500-2000 words (8-12 minute read)",
	"long":   "2500-3500 words (15-20 minute read)",
}

// LengthGuide returns the word-count guidance for a length option.
func LengthGuide(length string) string {
	if g, ok := lengthGuides[strings.ToLower(length)]; ok {
		return g
	}

	return lengthGuides["medium"]
}

// BlogInput describes a blog post outline request.
type BlogInput struct {
	Topic         string
	Audience      string // Default "intermediate".
	Length        string // Default "medium".
	ContentType   string // Default "how-to".
	CustomContext string // Optional background the outline should draw on.
	Overrides     gateway.Overrides
}

// Normalize trims and validates the input, filling in defaults.
func (in BlogInput) Normalize() (BlogInput, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if utf8.RuneCountInString(in.Topic) < MinTopicLength {
		return in, fmt.Errorf("generators: %w: topic must be at least %d characters", ErrInvalidInput, MinTopicLength)
	}

	var err error
	if in.Audience, err = oneOf("audience", in.Audience, "intermediate", Audiences); err != nil {
		return in, err
	}
	if in.Length, err = oneOf("length", in.Length, "medium", Lengths); err != nil {
		return in, err
	}
	if in.ContentType, err = oneOf("content type", in.ContentType, "how-to", ContentTypes); err != nil {
		return in, err
	}

	in.CustomContext = strings.TrimSpace(in.CustomContext)

	return in, nil
}

// Prompt returns the rendered user prompt for a normalized input.
func (in BlogInput) Prompt() (string, error) {
	return prompts[Blog].render(in.templateData())
}

func (in BlogInput) templateData() map[string]any {
	return map[string]any{
		"Topic":         in.Topic,
		"Audience":      in.Audience,
		"ContentType":   in.ContentType,
		"LengthGuide":   LengthGuide(in.Length),
		"CustomContext": in.CustomContext,
	}
}

// BlogOutline generates a blog post outline.
func (s *Service) BlogOutline(ctx context.Context, in BlogInput) (Result, error) {
	in, err := in.Normalize()
	if err != nil {
		return Result{}, err
	}

	fields := Metadata{
		{Key: "audience", Value: in.Audience},
		{Key: "length", Value: in.Length},
		{Key: "content_type", Value: in.ContentType},
	}
	if in.CustomContext != "" {
		fields = append(fields, Field{Key: "custom_context", Value: "provided"})
	}

	return s.run(ctx, Blog, in.Topic, in.templateData(), fields, in.Overrides)
}
