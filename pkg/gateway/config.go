package gateway

import (
	"fmt"
	"math"
	"time"

	"github.com/germanamz/ideaforge/pkg/providers/lmstudio"
	"github.com/germanamz/ideaforge/pkg/providers/ollama"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

// Generation defaults shared by both providers.
const (
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 2000
	DefaultGenerateTimeout = 2 * time.Minute
	DefaultProbeTimeout    = 5 * time.Second

	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// ProviderConfig is the settings of one backend. It is a value type: copies
// never alias each other.
type ProviderConfig struct {
	Kind        provider.Kind
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Config is the process-level gateway configuration.
type Config struct {
	Default         provider.Kind
	Ollama          ProviderConfig
	LMStudio        ProviderConfig
	GenerateTimeout time.Duration
	ProbeTimeout    time.Duration
}

// DefaultConfig returns the built-in defaults: Ollama selected, both
// backends on their stock local ports.
func DefaultConfig() Config {
	return Config{
		Default: provider.Ollama,
		Ollama: ProviderConfig{
			Kind:        provider.Ollama,
			BaseURL:     ollama.DefaultBaseURL,
			Model:       ollama.DefaultModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		LMStudio: ProviderConfig{
			Kind:        provider.LMStudio,
			BaseURL:     lmstudio.DefaultBaseURL,
			Model:       lmstudio.DefaultModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		GenerateTimeout: DefaultGenerateTimeout,
		ProbeTimeout:    DefaultProbeTimeout,
	}
}

// Provider returns the settings for kind.
func (c Config) Provider(kind provider.Kind) (ProviderConfig, bool) {
	switch kind {
	case provider.Ollama:
		return c.Ollama, true
	case provider.LMStudio:
		return c.LMStudio, true
	default:
		return ProviderConfig{}, false
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if _, err := provider.ParseKind(string(c.Default)); err != nil {
		return fmt.Errorf("gateway: config: %w: %w", ErrConfig, err)
	}

	for _, kind := range provider.Kinds() {
		pc, _ := c.Provider(kind)
		if pc.Kind != kind {
			return fmt.Errorf("gateway: config: %w: %s settings carry kind %q", ErrConfig, kind, pc.Kind)
		}
		if pc.BaseURL == "" {
			return fmt.Errorf("gateway: config: %w: %s base URL is required", ErrConfig, kind)
		}
		if pc.Model == "" {
			return fmt.Errorf("gateway: config: %w: %s model is required", ErrConfig, kind)
		}
		if err := CheckTemperature(pc.Temperature); err != nil {
			return fmt.Errorf("gateway: config: %w: %s: %w", ErrConfig, kind, err)
		}
		if err := checkMaxTokens(pc.MaxTokens); err != nil {
			return fmt.Errorf("gateway: config: %w: %s: %w", ErrConfig, kind, err)
		}
	}

	if c.GenerateTimeout <= 0 || c.ProbeTimeout <= 0 {
		return fmt.Errorf("gateway: config: %w: timeouts must be positive", ErrConfig)
	}

	return nil
}

// CheckTemperature rejects values outside [MinTemperature, MaxTemperature].
// NaN is rejected too since no backend payload can carry it.
func CheckTemperature(t float64) error {
	if math.IsNaN(t) || t < MinTemperature || t > MaxTemperature {
		return fmt.Errorf("temperature %g outside [%g, %g]", t, MinTemperature, MaxTemperature)
	}

	return nil
}

func checkMaxTokens(n int) error {
	if n <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", n)
	}

	return nil
}
