package gateway_test

import (
	"errors"
	"math"
	"testing"

	"github.com/germanamz/ideaforge/pkg/gateway"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := gateway.DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, provider.Ollama, cfg.Default)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "llama3.2", cfg.Ollama.Model)
	assert.Equal(t, "http://localhost:1234/v1", cfg.LMStudio.BaseURL)
	assert.Equal(t, "local-model", cfg.LMStudio.Model)
	assert.Equal(t, 2000, cfg.Ollama.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LMStudio.Temperature, 1e-9)
}

func TestConfig_Provider(t *testing.T) {
	cfg := gateway.DefaultConfig()

	pc, ok := cfg.Provider(provider.LMStudio)
	require.True(t, ok)
	assert.Equal(t, provider.LMStudio, pc.Kind)

	pc.Model = "changed"
	assert.Equal(t, "local-model", cfg.LMStudio.Model, "Provider returns a copy")

	_, ok = cfg.Provider("openai")
	assert.False(t, ok)
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*gateway.Config)
		wantErr string
	}{
		{"unknown default", func(c *gateway.Config) { c.Default = "openai" }, "unknown provider"},
		{"missing ollama url", func(c *gateway.Config) { c.Ollama.BaseURL = "" }, "base URL is required"},
		{"missing lm studio model", func(c *gateway.Config) { c.LMStudio.Model = "" }, "model is required"},
		{"swapped kind", func(c *gateway.Config) { c.Ollama.Kind = provider.LMStudio }, "carry kind"},
		{"temperature high", func(c *gateway.Config) { c.Ollama.Temperature = 3 }, "temperature"},
		{"temperature NaN", func(c *gateway.Config) { c.LMStudio.Temperature = math.NaN() }, "temperature"},
		{"max tokens zero", func(c *gateway.Config) { c.LMStudio.MaxTokens = 0 }, "max tokens"},
		{"zero timeout", func(c *gateway.Config) { c.ProbeTimeout = 0 }, "timeouts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := gateway.DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, gateway.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := gateway.DefaultConfig()
	cfg.Default = "gpt"

	g, err := gateway.New(cfg)
	require.Error(t, err)
	assert.Nil(t, g)
	assert.True(t, errors.Is(err, gateway.ErrConfig))
}
