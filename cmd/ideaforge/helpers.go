package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/germanamz/ideaforge/pkg/gateway"
	"github.com/germanamz/ideaforge/pkg/generators"
	"github.com/germanamz/ideaforge/pkg/modeladapter/usage"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

// truncate returns s shortened to at most n runes, with "..." appended if
// truncated. Newlines are replaced with spaces for single-line display.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// fmtTokens formats a token count for display, using k/M suffixes.
func fmtTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// fmtDuration formats a duration for display.
func fmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", min, sec)
}

// usageLine summarizes one generation call for the status line.
func usageLine(e usage.Entry) string {
	parts := []string{e.Model, provider.Kind(e.Provider).DisplayName(), fmtDuration(e.Elapsed)}
	if n := e.Tokens.Total(); n > 0 {
		approx := ""
		if e.Tokens.Estimated {
			approx = "~"
		}
		parts = append(parts, fmt.Sprintf("%s%s tokens (%s in, %s out)",
			approx, fmtTokens(n), fmtTokens(e.Tokens.InputTokens), fmtTokens(e.Tokens.OutputTokens)))
	}
	return strings.Join(parts, " · ")
}

// troubleshootingHints returns the static checklist shown after a failed
// generation or connection test.
func troubleshootingHints(kind provider.Kind) []string {
	switch kind {
	case provider.LMStudio:
		return []string{
			"Ensure LM Studio is running with its local server started",
			"Load a model in LM Studio before generating",
			"Check LM_STUDIO_BASE_URL and LM_STUDIO_MODEL in your .env file",
			"Try a shorter input if the generation times out",
		}
	default:
		return []string{
			"Ensure Ollama is running (`ollama list` to verify)",
			"Verify the model is pulled (`ideaforge models`)",
			"Check OLLAMA_BASE_URL and OLLAMA_MODEL in your .env file",
			"Try a simpler topic if the generation fails",
		}
	}
}

func formatHints(hints []string) string {
	var sb strings.Builder
	sb.WriteString(hintTitleStyle.Render("Troubleshooting:"))
	for i, h := range hints {
		sb.WriteString("\n")
		sb.WriteString(hintStyle.Render(fmt.Sprintf("%d. %s", i+1, h)))
	}
	return sb.String()
}

// metadataTable lays the metadata out in two aligned columns. Keys are padded
// by display width so wide runes stay aligned.
func metadataTable(meta generators.Metadata) string {
	width := 0
	for _, f := range meta {
		width = max(width, runewidth.StringWidth(generators.KeyTitle(f.Key)))
	}

	var sb strings.Builder
	for i, f := range meta {
		if i > 0 {
			sb.WriteString("\n")
		}
		key := runewidth.FillRight(generators.KeyTitle(f.Key), width)
		sb.WriteString(metaKeyStyle.Render(key))
		sb.WriteString("  ")
		sb.WriteString(f.Value)
	}
	return sb.String()
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}

	return nil
}

func validateTemperature(s string) error {
	t, err := strconv.ParseFloat(s, 64)
	if err != nil || gateway.CheckTemperature(t) != nil {
		return fmt.Errorf("must be a number between %g and %g", gateway.MinTemperature, gateway.MaxTemperature)
	}

	return nil
}

func validateTopic(s string) error {
	if len([]rune(strings.TrimSpace(s))) < generators.MinTopicLength {
		return fmt.Errorf("must be at least %d characters", generators.MinTopicLength)
	}

	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}

	return nil
}
