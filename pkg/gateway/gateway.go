package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/germanamz/ideaforge/pkg/modeladapter"
	"github.com/germanamz/ideaforge/pkg/modeladapter/usage"
	"github.com/germanamz/ideaforge/pkg/providers/lmstudio"
	"github.com/germanamz/ideaforge/pkg/providers/ollama"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

// Overrides supersede the process defaults for a single call. Nil fields
// keep the default of the selected provider.
type Overrides struct {
	Provider    *provider.Kind
	Model       *string
	Temperature *float64
	MaxTokens   *int
}

// Request is one logical generation call.
type Request struct {
	Prompt       string
	SystemPrompt string
	Overrides    Overrides
}

// Gateway normalizes the supported model servers behind one generate call.
// It holds no mutable state that influences requests, so a single Gateway
// may be shared by concurrent callers.
type Gateway struct {
	cfg        Config
	strategies map[provider.Kind]provider.Strategy
	client     *http.Client
	log        *slog.Logger
	usage      usage.Tracker
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient sets the client used for every backend call. Per-call
// deadlines still come from the configured timeouts. Without it the Gateway
// builds one client in New and reuses its connections across calls.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// builtinStrategies returns the strategy for every built-in kind.
func builtinStrategies() map[provider.Kind]provider.Strategy {
	return map[provider.Kind]provider.Strategy{
		provider.Ollama:   ollama.Strategy(),
		provider.LMStudio: lmstudio.Strategy(),
	}
}

// New validates cfg and returns a Gateway. An invalid configuration fails
// here rather than on the first call.
func New(cfg Config, opts ...Option) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Gateway{
		cfg:        cfg,
		strategies: builtinStrategies(),
		log:        slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.client == nil {
		g.client = &http.Client{Timeout: cfg.GenerateTimeout}
	}

	for kind, s := range g.strategies {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("gateway: strategy %s: %w", kind, err)
		}
	}

	g.log.Info("gateway initialized",
		"provider", cfg.Default,
		"model", g.defaultProvider().Model,
	)

	return g, nil
}

// Config returns a copy of the process-level configuration.
func (g *Gateway) Config() Config { return g.cfg }

// Usage returns the token usage recorded across calls.
func (g *Gateway) Usage() *usage.Tracker { return &g.usage }

func (g *Gateway) defaultProvider() ProviderConfig {
	pc, _ := g.cfg.Provider(g.cfg.Default)
	return pc
}

// Resolve derives the request-scoped provider settings. The provider is
// chosen first and every other field starts from that provider's defaults,
// so a URL of one backend is never paired with the schema of the other.
func (g *Gateway) Resolve(o Overrides) (ProviderConfig, error) {
	kind := g.cfg.Default
	if o.Provider != nil {
		k, err := provider.ParseKind(string(*o.Provider))
		if err != nil {
			return ProviderConfig{}, fmt.Errorf("gateway: %w: %w", ErrInvalidRequest, err)
		}
		kind = k
	}

	pc, ok := g.cfg.Provider(kind)
	if !ok {
		return ProviderConfig{}, fmt.Errorf("gateway: %w: no settings for provider %q", ErrInvalidRequest, kind)
	}

	if o.Model != nil && strings.TrimSpace(*o.Model) != "" {
		pc.Model = strings.TrimSpace(*o.Model)
	}

	if o.Temperature != nil {
		if err := CheckTemperature(*o.Temperature); err != nil {
			return ProviderConfig{}, fmt.Errorf("gateway: %w: %w", ErrInvalidRequest, err)
		}
		pc.Temperature = *o.Temperature
	}

	if o.MaxTokens != nil {
		if err := checkMaxTokens(*o.MaxTokens); err != nil {
			return ProviderConfig{}, fmt.Errorf("gateway: %w: %w", ErrInvalidRequest, err)
		}
		pc.MaxTokens = *o.MaxTokens
	}

	return pc, nil
}

// Generate sends one prompt to the resolved backend and returns the reply
// with surrounding whitespace removed. Failures are never retried.
func (g *Gateway) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("gateway: %w: prompt is empty", ErrInvalidRequest)
	}

	pc, err := g.Resolve(req.Overrides)
	if err != nil {
		return "", err
	}

	s := g.strategies[pc.Kind]

	ctx, cancel := context.WithTimeout(ctx, g.cfg.GenerateTimeout)
	defer cancel()

	g.log.DebugContext(ctx, "generating",
		"provider", pc.Kind,
		"model", pc.Model,
		"prompt_chars", len(req.Prompt),
		"system_prompt", req.SystemPrompt != "",
	)

	start := time.Now()

	body := s.BuildGenerate(provider.Params{
		Model:        pc.Model,
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Temperature:  pc.Temperature,
		MaxTokens:    pc.MaxTokens,
	})

	raw, err := g.adapter(pc).PostJSON(ctx, s.GeneratePath, body)
	if err != nil {
		return "", g.fail(ctx, pc, err)
	}

	reply, err := s.ParseGenerate(raw)
	if err != nil {
		return "", g.fail(ctx, pc, err)
	}

	tokens := reply.Tokens
	if tokens.Total() == 0 {
		tokens = usage.Estimate(req.SystemPrompt, req.Prompt, reply.Text)
	}

	elapsed := time.Since(start)
	g.usage.Add(usage.Entry{
		Provider: string(pc.Kind),
		Model:    pc.Model,
		Tokens:   tokens,
		Elapsed:  elapsed,
	})

	g.log.InfoContext(ctx, "generation finished",
		"provider", pc.Kind,
		"model", pc.Model,
		"duration", elapsed,
		"output_tokens", tokens.OutputTokens,
		"estimated", tokens.Estimated,
	)

	return strings.TrimSpace(reply.Text), nil
}

func (g *Gateway) fail(ctx context.Context, pc ProviderConfig, err error) error {
	classified := classify(pc, err)

	g.log.ErrorContext(ctx, "generation failed",
		"provider", pc.Kind,
		"model", pc.Model,
		"error", err,
	)

	return classified
}

// ListModels returns the model identifiers the backend of kind reports. An
// empty kind selects the process default. Discovery is best effort: any
// failure yields an empty slice, which callers must read as "unknown".
func (g *Gateway) ListModels(ctx context.Context, kind provider.Kind) []string {
	o := Overrides{}
	if kind != "" {
		o.Provider = &kind
	}

	pc, err := g.Resolve(o)
	if err != nil {
		g.log.DebugContext(ctx, "model discovery skipped", "provider", kind, "error", err)
		return []string{}
	}

	models, err := g.fetchModels(ctx, pc)
	if err != nil {
		g.log.DebugContext(ctx, "model discovery failed", "provider", pc.Kind, "error", err)
		return []string{}
	}

	return models
}

func (g *Gateway) fetchModels(ctx context.Context, pc ProviderConfig) ([]string, error) {
	s := g.strategies[pc.Kind]

	ctx, cancel := context.WithTimeout(ctx, g.cfg.ProbeTimeout)
	defer cancel()

	raw, err := g.adapter(pc).GetJSON(ctx, s.ModelsPath)
	if err != nil {
		return nil, err
	}

	return s.ParseModels(raw)
}

// TestConnection probes the default provider. It never fails: every outcome
// is reported as (ok, human-readable message).
func (g *Gateway) TestConnection(ctx context.Context) (bool, string) {
	return g.TestProvider(ctx, Overrides{})
}

// TestProvider probes the provider selected by o. Ollama additionally
// requires the configured model to be pulled; for LM Studio any answer from
// the models endpoint is enough.
func (g *Gateway) TestProvider(ctx context.Context, o Overrides) (bool, string) {
	pc, err := g.Resolve(o)
	if err != nil {
		return false, fmt.Sprintf("[ERROR] Error: %v", err)
	}

	s := g.strategies[pc.Kind]

	models, err := g.fetchModels(ctx, pc)
	if err != nil {
		if isUnreachable(err) {
			return false, fmt.Sprintf("[ERROR] Cannot connect to %s at %s. Is it running?", pc.Kind, pc.BaseURL)
		}
		return false, fmt.Sprintf("[ERROR] Error: %v", err)
	}

	if s.HasModel == nil {
		return true, fmt.Sprintf("[OK] Connected to %s server.", pc.Kind.DisplayName())
	}

	if s.HasModel(models, pc.Model) {
		return true, fmt.Sprintf("[OK] Connected to %s. Model '%s' is available.", pc.Kind.DisplayName(), pc.Model)
	}

	available := "none"
	if len(models) > 0 {
		available = strings.Join(models, ", ")
	}

	return false, fmt.Sprintf("[ERROR] Model '%s' not found. Available: %s", pc.Model, available)
}

// adapter returns an HTTP adapter bound to pc's base URL. Adapters are cheap;
// the underlying client and its connection pool are shared.
func (g *Gateway) adapter(pc ProviderConfig) *modeladapter.ModelAdapter {
	return modeladapter.New(pc.BaseURL, g.client)
}
