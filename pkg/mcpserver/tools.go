package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/germanamz/ideaforge/pkg/gateway"
	"github.com/germanamz/ideaforge/pkg/generators"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
	"github.com/germanamz/ideaforge/pkg/session"
)

// Handler runs a tool on its JSON arguments and returns the text answer.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool describes one MCP tool: its name, purpose, JSON Schema and handler.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// Prober is the part of the gateway used by the discovery tools.
// *gateway.Gateway satisfies it.
type Prober interface {
	ListModels(ctx context.Context, kind provider.Kind) []string
	TestProvider(ctx context.Context, o gateway.Overrides) (bool, string)
}

// Deps are the services the ideaforge tools call into.
type Deps struct {
	Generators *generators.Service
	Gateway    Prober
	Session    *session.Store // Optional. Results are recorded when set.
}

// Tools returns the ideaforge tool set.
func Tools(d Deps) []Tool {
	return []Tool{
		{
			Name:        "generate_blog_outline",
			Description: "Generate a blog post outline with headline options, section structure, key points and subtopics.",
			InputSchema: generatorSchema(map[string]any{
				"topic":          str("Main topic or keyword focus (at least 3 characters)."),
				"audience":       enum("Target audience level.", generators.Audiences),
				"length":         enum("Desired article length.", generators.Lengths),
				"content_type":   enum("Kind of article.", generators.ContentTypes),
				"custom_context": str("Optional background the outline should draw on."),
			}, "topic"),
			Handler: d.handleBlog,
		},
		{
			Name:        "generate_social_calendar",
			Description: "Generate a social media content calendar with post ideas, formats, engagement prompts and hashtags.",
			InputSchema: generatorSchema(map[string]any{
				"theme":         str("Content theme or topic."),
				"frequency":     enum("Posting frequency.", generators.Frequencies),
				"platform":      enum("Target platform.", generators.Platforms),
				"timeframe":     enum("Calendar period.", generators.Timeframes),
				"tone":          enum("Brand voice.", generators.Tones),
				"include_dates": map[string]any{"type": "boolean", "description": "Add concrete posting dates starting today."},
			}, "theme"),
			Handler: d.handleSocial,
		},
		{
			Name:        "generate_writing_prompt",
			Description: "Generate a creative writing prompt with characters, setting, plot directions and development questions.",
			InputSchema: generatorSchema(map[string]any{
				"genre":       enum("Story genre.", generators.Genres),
				"prompt_type": enum("Focus of the prompt.", generators.PromptTypes),
				"complexity":  enum("Complexity level.", generators.Complexities),
				"constraints": str("Optional extra requirements."),
			}, "genre"),
			Handler: d.handleWriting,
		},
		{
			Name:        "list_models",
			Description: "List the models the backend reports. An empty list means the models could not be discovered.",
			InputSchema: schema(map[string]any{"provider": providerProp()}),
			Handler:     d.handleListModels,
		},
		{
			Name:        "test_connection",
			Description: "Check that the backend is reachable and, for Ollama, that the configured model is pulled.",
			InputSchema: schema(map[string]any{"provider": providerProp()}),
			Handler:     d.handleTestConnection,
		},
		{
			Name:        "last_result",
			Description: "Return the most recent result generated in this session, optionally of one generator.",
			InputSchema: schema(map[string]any{"generator": enum("Generator kind.", kindNames())}),
			Handler:     d.handleLastResult,
		},
		{
			Name:        "diff_results",
			Description: "Unified diff between the two most recent results of a generator.",
			InputSchema: schema(map[string]any{"generator": enum("Generator kind.", kindNames())}, "generator"),
			Handler:     d.handleDiff,
		},
	}
}

// overrideInput holds the per-call gateway overrides every generator tool
// accepts.
type overrideInput struct {
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

func (o overrideInput) overrides() gateway.Overrides {
	var out gateway.Overrides

	if o.Provider != "" {
		k := provider.Kind(o.Provider)
		out.Provider = &k
	}
	if o.Model != "" {
		m := o.Model
		out.Model = &m
	}

	out.Temperature = o.Temperature
	out.MaxTokens = o.MaxTokens

	return out
}

type blogInput struct {
	Topic         string `json:"topic"`
	Audience      string `json:"audience"`
	Length        string `json:"length"`
	ContentType   string `json:"content_type"`
	CustomContext string `json:"custom_context"`
	overrideInput
}

type socialInput struct {
	Theme        string `json:"theme"`
	Frequency    string `json:"frequency"`
	Platform     string `json:"platform"`
	Timeframe    string `json:"timeframe"`
	Tone         string `json:"tone"`
	IncludeDates bool   `json:"include_dates"`
	overrideInput
}

type writingInput struct {
	Genre       string `json:"genre"`
	PromptType  string `json:"prompt_type"`
	Complexity  string `json:"complexity"`
	Constraints string `json:"constraints"`
	overrideInput
}

type providerInput struct {
	Provider string `json:"provider"`
}

type generatorInput struct {
	Generator string `json:"generator"`
}

func decode(input json.RawMessage, v any) error {
	if err := json.Unmarshal(input, v); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	return nil
}

func (d Deps) handleBlog(ctx context.Context, input json.RawMessage) (string, error) {
	var in blogInput
	if err := decode(input, &in); err != nil {
		return "", err
	}

	res, err := d.Generators.BlogOutline(ctx, generators.BlogInput{
		Topic:         in.Topic,
		Audience:      in.Audience,
		Length:        in.Length,
		ContentType:   in.ContentType,
		CustomContext: in.CustomContext,
		Overrides:     in.overrides(),
	})

	return d.finish(res, err)
}

func (d Deps) handleSocial(ctx context.Context, input json.RawMessage) (string, error) {
	var in socialInput
	if err := decode(input, &in); err != nil {
		return "", err
	}

	res, err := d.Generators.SocialCalendar(ctx, generators.SocialInput{
		Theme:        in.Theme,
		Frequency:    in.Frequency,
		Platform:     in.Platform,
		Timeframe:    in.Timeframe,
		Tone:         in.Tone,
		IncludeDates: in.IncludeDates,
		Overrides:    in.overrides(),
	})

	return d.finish(res, err)
}

func (d Deps) handleWriting(ctx context.Context, input json.RawMessage) (string, error) {
	var in writingInput
	if err := decode(input, &in); err != nil {
		return "", err
	}

	res, err := d.Generators.WritingPrompt(ctx, generators.WritingInput{
		Genre:       in.Genre,
		PromptType:  in.PromptType,
		Complexity:  in.Complexity,
		Constraints: in.Constraints,
		Overrides:   in.overrides(),
	})

	return d.finish(res, err)
}

// finish records a successful result and renders it as Markdown.
func (d Deps) finish(res generators.Result, err error) (string, error) {
	if err != nil {
		return "", err
	}

	if d.Session != nil {
		d.Session.Add(res)
	}

	return res.ToMarkdown(), nil
}

type modelsOutput struct {
	Provider string   `json:"provider,omitempty"`
	Models   []string `json:"models"`
}

func (d Deps) handleListModels(ctx context.Context, input json.RawMessage) (string, error) {
	var in providerInput
	if err := decode(input, &in); err != nil {
		return "", err
	}

	out := modelsOutput{
		Provider: in.Provider,
		Models:   d.Gateway.ListModels(ctx, provider.Kind(in.Provider)),
	}

	return marshal(out)
}

type connectionOutput struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (d Deps) handleTestConnection(ctx context.Context, input json.RawMessage) (string, error) {
	var in providerInput
	if err := decode(input, &in); err != nil {
		return "", err
	}

	ok, msg := d.Gateway.TestProvider(ctx, overrideInput{Provider: in.Provider}.overrides())

	return marshal(connectionOutput{OK: ok, Message: msg})
}

func (d Deps) handleLastResult(_ context.Context, input json.RawMessage) (string, error) {
	var in generatorInput
	if err := decode(input, &in); err != nil {
		return "", err
	}

	if d.Session == nil {
		return "", errors.New("no session store configured")
	}

	var (
		res generators.Result
		ok  bool
	)

	if in.Generator == "" {
		res, ok = d.Session.Latest()
	} else {
		kind, err := generators.ParseKind(in.Generator)
		if err != nil {
			return "", err
		}
		res, ok = d.Session.Last(kind)
	}

	if !ok {
		return "", errors.New("no results generated yet")
	}

	return res.ToMarkdown(), nil
}

func (d Deps) handleDiff(_ context.Context, input json.RawMessage) (string, error) {
	var in generatorInput
	if err := decode(input, &in); err != nil {
		return "", err
	}

	if d.Session == nil {
		return "", errors.New("no session store configured")
	}

	kind, err := generators.ParseKind(in.Generator)
	if err != nil {
		return "", err
	}

	diff, ok, err := d.Session.Diff(kind)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("need two %s results to diff", kind)
	}
	if diff == "" {
		return "results are identical", nil
	}

	return diff, nil
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal output: %w", err)
	}

	return string(b), nil
}

// --- schema helpers ---

// overrideProps are merged into every generator tool schema.
func overrideProps() map[string]any {
	return map[string]any{
		"provider":    providerProp(),
		"model":       str("Model name overriding the configured one."),
		"temperature": map[string]any{"type": "number", "minimum": gateway.MinTemperature, "maximum": gateway.MaxTemperature},
		"max_tokens":  map[string]any{"type": "integer", "minimum": 1},
	}
}

func schema(props map[string]any, required ...string) json.RawMessage {
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}

	b, _ := json.Marshal(s)

	return b
}

// generatorSchema is schema with the override properties added.
func generatorSchema(props map[string]any, required ...string) json.RawMessage {
	for k, v := range overrideProps() {
		if _, taken := props[k]; !taken {
			props[k] = v
		}
	}

	return schema(props, required...)
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func enum(desc string, values []string) map[string]any {
	return map[string]any{"type": "string", "description": desc, "enum": values}
}

func providerProp() map[string]any {
	names := make([]string, 0, len(provider.Kinds()))
	for _, k := range provider.Kinds() {
		names = append(names, string(k))
	}

	return enum("Model server; defaults to the configured provider.", names)
}

func kindNames() []string {
	names := make([]string, 0, len(generators.Kinds()))
	for _, k := range generators.Kinds() {
		names = append(names, string(k))
	}

	return names
}
