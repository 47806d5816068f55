package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/germanamz/ideaforge/pkg/export"
	"github.com/germanamz/ideaforge/pkg/gateway"
	"github.com/germanamz/ideaforge/pkg/generators"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

// generateFlags holds the flags of the blog, social and writing commands.
type generateFlags struct {
	req request

	contextFile string
	provider    string
	model       string
	temperature float64
	maxTokens   int

	raw    bool
	out    string
	force  bool
	format export.Format
}

func optionsHelp(desc string, values []string, def string) string {
	if def == "" {
		return fmt.Sprintf("%s: %s", desc, strings.Join(values, ", "))
	}

	return fmt.Sprintf("%s: %s (default %q)", desc, strings.Join(values, ", "), def)
}

func bindGenerateFlags(fs *flag.FlagSet, kind generators.Kind) *generateFlags {
	f := &generateFlags{req: request{kind: kind}}

	switch kind {
	case generators.Blog:
		in := &f.req.blog
		fs.StringVar(&in.Topic, "topic", "", "main topic or keyword (may also be given as the argument)")
		fs.StringVar(&in.Audience, "audience", "", optionsHelp("target audience", generators.Audiences, "intermediate"))
		fs.StringVar(&in.Length, "length", "", optionsHelp("article length", generators.Lengths, "medium"))
		fs.StringVar(&in.ContentType, "type", "", optionsHelp("content type", generators.ContentTypes, "how-to"))
		fs.StringVar(&in.CustomContext, "context", "", "background the outline should draw on")
		fs.StringVar(&f.contextFile, "context-file", "", "read the custom context from a file")
	case generators.Social:
		in := &f.req.social
		fs.StringVar(&in.Theme, "theme", "", "content theme (may also be given as the argument)")
		fs.StringVar(&in.Frequency, "frequency", "", optionsHelp("posting frequency", generators.Frequencies, "3x week"))
		fs.StringVar(&in.Platform, "platform", "", optionsHelp("platform", generators.Platforms, "linkedin"))
		fs.StringVar(&in.Timeframe, "timeframe", "", optionsHelp("calendar period", generators.Timeframes, "month"))
		fs.StringVar(&in.Tone, "tone", "", optionsHelp("brand voice", generators.Tones, "professional"))
		fs.BoolVar(&in.IncludeDates, "dates", false, "suggest concrete posting dates starting today")
	case generators.Writing:
		in := &f.req.writing
		fs.StringVar(&in.Genre, "genre", "", optionsHelp("genre (may also be given as the argument)", generators.Genres, ""))
		fs.StringVar(&in.PromptType, "type", "", optionsHelp("prompt focus", generators.PromptTypes, "plot"))
		fs.StringVar(&in.Complexity, "complexity", "", optionsHelp("complexity", generators.Complexities, "moderate"))
		fs.StringVar(&in.Constraints, "constraints", "", "extra requirements for the prompt")
	}

	fs.StringVar(&f.provider, "provider", "", "ollama or lm_studio (default: the configured provider)")
	fs.StringVar(&f.model, "model", "", "model name (default: the provider's configured model)")
	fs.Float64Var(&f.temperature, "temperature", gateway.DefaultTemperature, "sampling temperature between 0 and 2 (default: configured)")
	fs.IntVar(&f.maxTokens, "max-tokens", gateway.DefaultMaxTokens, "maximum tokens to generate (default: configured)")
	fs.BoolVar(&f.raw, "raw", false, "print plain Markdown instead of terminal formatting")
	fs.StringVar(&f.out, "out", "", "also save the result as md, html or txt")
	fs.BoolVar(&f.force, "force", false, "overwrite an existing export file")

	return f
}

// finish applies the positional subject, the context file, the export format
// and the overrides of the flags that were set explicitly.
func (f *generateFlags) finish(fs *flag.FlagSet) error {
	var o gateway.Overrides

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "provider":
			k := provider.Kind(f.provider)
			o.Provider = &k
		case "model":
			o.Model = &f.model
		case "temperature":
			o.Temperature = &f.temperature
		case "max-tokens":
			o.MaxTokens = &f.maxTokens
		}
	})

	f.req.setOverrides(o)

	if subject := strings.Join(fs.Args(), " "); subject != "" {
		f.req.setSubject(subject)
	}

	if f.contextFile != "" {
		b, err := os.ReadFile(f.contextFile)
		if err != nil {
			return fmt.Errorf("read context file: %w", err)
		}
		f.req.blog.CustomContext = string(b)
	}

	if f.out != "" {
		format, err := export.ParseFormat(f.out)
		if err != nil {
			return err
		}
		f.format = format
	}

	return nil
}

// setSubject fills the required field of the request unless a flag already
// did.
func (r *request) setSubject(s string) {
	switch r.kind {
	case generators.Blog:
		if r.blog.Topic == "" {
			r.blog.Topic = s
		}
	case generators.Social:
		if r.social.Theme == "" {
			r.social.Theme = s
		}
	case generators.Writing:
		if r.writing.Genre == "" {
			r.writing.Genre = s
		}
	}
}
