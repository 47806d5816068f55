package provider_test

import (
	"errors"
	"testing"

	"github.com/germanamz/ideaforge/pkg/providers/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want provider.Kind
	}{
		{"ollama", provider.Ollama},
		{"OLLAMA", provider.Ollama},
		{" lm_studio ", provider.LMStudio},
	}
	for _, tt := range tests {
		got, err := provider.ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseKind_Unknown(t *testing.T) {
	for _, in := range []string{"", "openai", "lmstudio"} {
		_, err := provider.ParseKind(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, provider.ErrUnknownKind))
		assert.Contains(t, err.Error(), "must be 'ollama' or 'lm_studio'")
	}
}

func TestKindDisplayName(t *testing.T) {
	assert.Equal(t, "Ollama", provider.Ollama.DisplayName())
	assert.Equal(t, "LM Studio", provider.LMStudio.DisplayName())
	assert.Equal(t, "custom", provider.Kind("custom").DisplayName())
	assert.Equal(t, "lm_studio", provider.LMStudio.String())
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []provider.Kind{provider.Ollama, provider.LMStudio}, provider.Kinds())
}

func TestStrategyValidate(t *testing.T) {
	assert.Error(t, provider.Strategy{}.Validate())
	assert.ErrorContains(t, provider.Strategy{Kind: "x"}.Validate(), "paths are required")
	assert.ErrorContains(t, provider.Strategy{Kind: "x", GeneratePath: "/g", ModelsPath: "/m"}.Validate(), "functions are required")

	s := provider.Strategy{
		Kind:          "x",
		GeneratePath:  "/g",
		ModelsPath:    "/m",
		BuildGenerate: func(provider.Params) any { return nil },
		ParseGenerate: func([]byte) (provider.Reply, error) { return provider.Reply{}, nil },
		ParseModels:   func([]byte) ([]string, error) { return nil, nil },
	}
	assert.NoError(t, s.Validate())
}
