// Package generators turns structured content requests into prompts, sends
// them through the model gateway and packages the replies as [Result]s.
//
// Three generators are provided: blog post outlines, social media calendars
// and creative writing prompts. Each validates its enumerated inputs
// case-insensitively, renders an embedded prompt template and forwards any
// per-call gateway overrides unchanged.
package generators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/germanamz/ideaforge/pkg/gateway"
)

// Kind names a generator.
type Kind string

// Built-in generators.
const (
	Blog    Kind = "blog"
	Social  Kind = "social"
	Writing Kind = "writing"
)

// Kinds returns every generator in menu order.
func Kinds() []Kind {
	return []Kind{Blog, Social, Writing}
}

// ParseKind validates a generator name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Kinds(), k) {
		return k, nil
	}

	return "", fmt.Errorf("generators: %w: unknown generator %q", ErrInvalidInput, s)
}

// Title returns the human-readable generator name, e.g. "Blog Post Outline".
func (k Kind) Title() string {
	if p, ok := prompts[k]; ok {
		return p.Title
	}

	return string(k)
}

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Backend is the part of the gateway the generators need.
// *gateway.Gateway satisfies it.
type Backend interface {
	Generate(ctx context.Context, req gateway.Request) (string, error)
	Resolve(o gateway.Overrides) (gateway.ProviderConfig, error)
}

// Service runs the generators against a Backend.
type Service struct {
	backend Backend
	log     *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock sets the time source used for generated_date and post dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service backed by b.
func New(b Backend, opts ...Option) *Service {
	s := &Service{
		backend: b,
		log:     slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// run renders the prompt for kind and sends it to the backend.
func (s *Service) run(ctx context.Context, kind Kind, subject string, data any, fields Metadata, o gateway.Overrides) (Result, error) {
	def := prompts[kind]
	label := strings.ToLower(def.Title)

	prompt, err := def.render(data)
	if err != nil {
		return Result{}, err
	}

	pc, err := s.backend.Resolve(o)
	if err != nil {
		return Result{}, fmt.Errorf("generators: %s: %w", label, err)
	}

	s.log.InfoContext(ctx, "generating content",
		"generator", kind,
		"subject", subject,
		"provider", pc.Kind,
		"model", pc.Model,
	)

	text, err := s.backend.Generate(ctx, gateway.Request{
		Prompt:       prompt,
		SystemPrompt: def.System,
		Overrides:    o,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "content generation failed", "generator", kind, "error", err)
		return Result{}, fmt.Errorf("generators: %s: %w", label, err)
	}

	now := s.now()

	meta := slices.Clone(fields)
	meta = append(meta,
		Field{Key: "model", Value: pc.Model},
		Field{Key: "provider", Value: string(pc.Kind)},
		Field{Key: "generated_date", Value: now.Format(time.RFC3339)},
	)

	return Result{
		Kind:        kind,
		Subject:     subject,
		Content:     text,
		Metadata:    meta,
		GeneratedAt: now,
	}, nil
}

// oneOf normalizes value against allowed. An empty value selects def.
func oneOf(field, value, def string, allowed []string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return def, nil
	}

	if slices.Contains(allowed, v) {
		return v, nil
	}

	return "", fmt.Errorf("generators: %w: %s must be one of: %s", ErrInvalidInput, field, strings.Join(allowed, ", "))
}

// titleCase upper-cases the first letter of every space or hyphen separated
// word.
func titleCase(s string) string {
	b := []byte(s)
	upper := true
	for i, c := range b {
		if upper && c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
		upper = c == ' ' || c == '-' || c == '_'
	}

	return string(b)
}
