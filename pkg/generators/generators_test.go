package generators_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/germanamz/ideaforge/pkg/gateway"
	"github.com/germanamz/ideaforge/pkg/generators"
	"github.com/germanamz/ideaforge/pkg/logging"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records requests and answers with a canned reply.
type fakeBackend struct {
	reply    string
	err      error
	requests []gateway.Request
}

func (f *fakeBackend) Generate(_ context.Context, req gateway.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeBackend) Resolve(o gateway.Overrides) (gateway.ProviderConfig, error) {
	pc := gateway.ProviderConfig{Kind: provider.Ollama, Model: "llama3.2"}
	if o.Provider != nil {
		pc.Kind = *o.Provider
	}
	if o.Model != nil {
		pc.Model = *o.Model
	}

	return pc, nil
}

var fixedNow = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

func newService(b generators.Backend) *generators.Service {
	return generators.New(b,
		generators.WithLogger(logging.Discard()),
		generators.WithClock(func() time.Time { return fixedNow }),
	)
}

func TestBlogOutline(t *testing.T) {
	fb := &fakeBackend{reply: "## Headlines\n1. Go fast"}
	svc := newService(fb)

	res, err := svc.BlogOutline(context.Background(), generators.BlogInput{
		Topic:       "  Go generics  ",
		Audience:    "Beginners",
		Length:      "SHORT",
		ContentType: "tutorial",
	})
	require.NoError(t, err)

	require.Len(t, fb.requests, 1)
	req := fb.requests[0]
	assert.Contains(t, req.Prompt, `outline about "Go generics" for beginners readers.`)
	assert.Contains(t, req.Prompt, "Content Type: tutorial")
	assert.Contains(t, req.Prompt, "Target Length: 800-1200 words (5-7 minute read)")
	assert.NotContains(t, req.Prompt, "CUSTOM CONTEXT")
	assert.Contains(t, req.SystemPrompt, "expert content strategist and SEO specialist")

	assert.Equal(t, generators.Blog, res.Kind)
	assert.Equal(t, "Go generics", res.Subject)
	assert.Equal(t, "Blog Post Outline: Go generics", res.Title())
	assert.Equal(t, "# Blog Post Outline: Go generics\n\n## Headlines\n1. Go fast", res.ToMarkdown())

	var keys []string
	for _, f := range res.Metadata {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"audience", "length", "content_type", "model", "provider", "generated_date"}, keys)

	date, ok := res.Metadata.Get("generated_date")
	require.True(t, ok)
	assert.Equal(t, "2024-03-04T09:30:00Z", date)
}

func TestBlogOutline_Defaults(t *testing.T) {
	in, err := generators.BlogInput{Topic: "Kubernetes"}.Normalize()
	require.NoError(t, err)

	assert.Equal(t, "intermediate", in.Audience)
	assert.Equal(t, "medium", in.Length)
	assert.Equal(t, "how-to", in.ContentType)
}

func TestBlogOutline_CustomContext(t *testing.T) {
	fb := &fakeBackend{reply: "ok"}
	svc := newService(fb)

	res, err := svc.BlogOutline(context.Background(), generators.BlogInput{
		Topic:         "Release notes",
		CustomContext: "  Version 2 adds offline mode.  ",
	})
	require.NoError(t, err)

	prompt := fb.requests[0].Prompt
	assert.Contains(t, prompt, "readers.\n\nCUSTOM CONTEXT/KNOWLEDGE BASE:\nVersion 2 adds offline mode.\n")

	v, ok := res.Metadata.Get("custom_context")
	assert.True(t, ok)
	assert.Equal(t, "provided", v)
}

func TestBlogInput_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		in      generators.BlogInput
		wantErr string
	}{
		{"short topic", generators.BlogInput{Topic: " ab "}, "at least 3 characters"},
		{"audience", generators.BlogInput{Topic: "Go", Audience: "kids"}, "at least 3"},
		{"bad audience", generators.BlogInput{Topic: "Go tips", Audience: "kids"}, "audience must be one of: beginners, intermediate, experts"},
		{"bad length", generators.BlogInput{Topic: "Go tips", Length: "epic"}, "length must be one of"},
		{"bad type", generators.BlogInput{Topic: "Go tips", ContentType: "rant"}, "content type must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{}
			_, err := newService(fb).BlogOutline(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, generators.ErrInvalidInput))
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, fb.requests)
		})
	}
}

func TestSocialCalendar(t *testing.T) {
	fb := &fakeBackend{reply: "Mon: post"}
	svc := newService(fb)

	res, err := svc.SocialCalendar(context.Background(), generators.SocialInput{
		Theme:     "AI and Machine Learning",
		Platform:  "LinkedIn",
		Frequency: "weekly",
		Timeframe: "week",
		Tone:      "Casual",
	})
	require.NoError(t, err)

	prompt := fb.requests[0].Prompt
	assert.Contains(t, prompt, `about "AI and Machine Learning" for LinkedIn.`)
	assert.Contains(t, prompt, "Posting Frequency: weekly")
	assert.Contains(t, prompt, "Brand Voice: casual")
	assert.Contains(t, prompt, "Each post should align with casual tone")
	assert.NotContains(t, prompt, "Suggested posting dates")

	want := "# Social Media Calendar: AI and Machine Learning\n\n" +
		"**Platform:** LinkedIn\n**Frequency:** weekly\n**Timeframe:** week\n**Tone:** casual\n\n---\n\nMon: post"
	assert.Equal(t, want, res.ToMarkdown())
}

func TestSocialCalendar_IncludeDates(t *testing.T) {
	fb := &fakeBackend{reply: "ok"}

	_, err := newService(fb).SocialCalendar(context.Background(), generators.SocialInput{
		Theme:        "Coffee",
		Frequency:    "weekly",
		Timeframe:    "week",
		IncludeDates: true,
	})
	require.NoError(t, err)

	prompt := fb.requests[0].Prompt
	assert.Contains(t, prompt, "Suggested posting dates:\n- March 04, 2024 (Monday)\n- March 11, 2024 (Monday)\n")
}

func TestSocialInput_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   generators.SocialInput
	}{
		{"no theme", generators.SocialInput{Theme: "  "}},
		{"frequency", generators.SocialInput{Theme: "x", Frequency: "hourly"}},
		{"platform", generators.SocialInput{Theme: "x", Platform: "myspace"}},
		{"timeframe", generators.SocialInput{Theme: "x", Timeframe: "year"}},
		{"tone", generators.SocialInput{Theme: "x", Tone: "angry"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Normalize()
			assert.True(t, errors.Is(err, generators.ErrInvalidInput))
		})
	}
}

func TestWritingPrompt(t *testing.T) {
	fb := &fakeBackend{reply: "A lighthouse keeper..."}
	svc := newService(fb)

	res, err := svc.WritingPrompt(context.Background(), generators.WritingInput{
		Genre:       "Sci-Fi",
		PromptType:  "character",
		Constraints: "Must include time travel",
	})
	require.NoError(t, err)

	prompt := fb.requests[0].Prompt
	assert.Contains(t, prompt, "for sci-fi genre.")
	assert.Contains(t, prompt, "Complexity Level: moderate\nAdditional Constraints: Must include time travel\n")
	assert.Contains(t, fb.requests[0].SystemPrompt, "creative writing expert")

	assert.Equal(t, "Creative Writing Prompt: Sci-Fi", res.Title())

	c, _ := res.Metadata.Get("constraints")
	assert.Equal(t, "Must include time travel", c)
}

func TestWritingPrompt_NoConstraints(t *testing.T) {
	fb := &fakeBackend{reply: "ok"}

	res, err := newService(fb).WritingPrompt(context.Background(), generators.WritingInput{Genre: "literary fiction"})
	require.NoError(t, err)

	assert.NotContains(t, fb.requests[0].Prompt, "Additional Constraints")
	assert.Equal(t, "Creative Writing Prompt: Literary Fiction", res.Title())

	c, _ := res.Metadata.Get("constraints")
	assert.Equal(t, "None", c)

	pt, _ := res.Metadata.Get("prompt_type")
	assert.Equal(t, "plot", pt)
}

func TestWritingInput_Invalid(t *testing.T) {
	_, err := generators.WritingInput{}.Normalize()
	assert.ErrorContains(t, err, "genre is required")

	_, err = generators.WritingInput{Genre: "western"}.Normalize()
	assert.True(t, errors.Is(err, generators.ErrInvalidInput))

	_, err = generators.WritingInput{Genre: "horror", Complexity: "extreme"}.Normalize()
	assert.ErrorContains(t, err, "complexity must be one of: simple, moderate, complex")
}

func TestOverridesForwardedUnchanged(t *testing.T) {
	fb := &fakeBackend{reply: "ok"}
	svc := newService(fb)

	kind := provider.LMStudio
	model := "qwen2-7b"
	temp := 1.3
	o := gateway.Overrides{Provider: &kind, Model: &model, Temperature: &temp}

	res, err := svc.WritingPrompt(context.Background(), generators.WritingInput{Genre: "mystery", Overrides: o})
	require.NoError(t, err)

	assert.Equal(t, o, fb.requests[0].Overrides)

	m, _ := res.Metadata.Get("model")
	p, _ := res.Metadata.Get("provider")
	assert.Equal(t, "qwen2-7b", m)
	assert.Equal(t, "lm_studio", p)
}

func TestGenerationErrorsKeepTheirKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "model 'llama3.2' not found"})
	}))
	t.Cleanup(srv.Close)

	cfg := gateway.DefaultConfig()
	cfg.Ollama.BaseURL = srv.URL

	gw, err := gateway.New(cfg, gateway.WithLogger(logging.Discard()))
	require.NoError(t, err)

	_, err = newService(gw).BlogOutline(context.Background(), generators.BlogInput{Topic: "Rust async"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrGeneration))
	assert.True(t, strings.HasPrefix(err.Error(), "generators: blog post outline: "))
	assert.Contains(t, err.Error(), "not found")
}

func TestParseKind(t *testing.T) {
	k, err := generators.ParseKind(" Social ")
	require.NoError(t, err)
	assert.Equal(t, generators.Social, k)
	assert.Equal(t, "Social Media Calendar", k.Title())

	_, err = generators.ParseKind("poem")
	assert.True(t, errors.Is(err, generators.ErrInvalidInput))
}

func TestKeyTitle(t *testing.T) {
	assert.Equal(t, "Content Type", generators.KeyTitle("content_type"))
	assert.Equal(t, "Generated Date", generators.KeyTitle("generated_date"))
	assert.Equal(t, "Model", generators.KeyTitle("model"))
}
