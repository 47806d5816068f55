// Package ollama provides the Strategy for Ollama's native single-shot
// completion API (/api/generate) and model listing (/api/tags).
package ollama

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/ideaforge/pkg/modeladapter/usage"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

const (
	// DefaultBaseURL is where a local Ollama listens out of the box.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is used when no model is configured.
	DefaultModel = "llama3.2"

	generatePath = "/api/generate"
	tagsPath     = "/api/tags"

	// defaultTag is the tag Ollama assumes when a model name has none.
	defaultTag = ":latest"
)

// Strategy returns the Ollama strategy.
func Strategy() provider.Strategy {
	return provider.Strategy{
		Kind:           provider.Ollama,
		DefaultBaseURL: DefaultBaseURL,
		DefaultModel:   DefaultModel,
		GeneratePath:   generatePath,
		ModelsPath:     tagsPath,
		BuildGenerate:  BuildGenerate,
		ParseGenerate:  ParseGenerate,
		ParseModels:    ParseModels,
		HasModel:       HasModel,
	}
}

// --- request types ---

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	System  string  `json:"system,omitempty"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// --- response types ---

type generateResponse struct {
	Response        *string `json:"response"`
	Error           string  `json:"error"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// BuildGenerate returns the /api/generate body. The system field is only
// present when a system prompt is given.
func BuildGenerate(p provider.Params) any {
	return generateRequest{
		Model:  p.Model,
		Prompt: p.Prompt,
		System: p.SystemPrompt,
		Stream: false,
		Options: options{
			Temperature: p.Temperature,
			NumPredict:  p.MaxTokens,
		},
	}
}

// ParseGenerate reads the reply text from the response field. A 2xx body
// without that field is ErrMalformedResponse rather than an empty reply, so
// an unexpected payload surfaces as an error instead of a blank result.
func ParseGenerate(body []byte) (provider.Reply, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return provider.Reply{}, fmt.Errorf("%w: %w", provider.ErrMalformedResponse, err)
	}

	if resp.Error != "" {
		return provider.Reply{}, errors.New(resp.Error)
	}

	if resp.Response == nil {
		return provider.Reply{}, fmt.Errorf("%w: missing response field", provider.ErrMalformedResponse)
	}

	return provider.Reply{
		Text: *resp.Response,
		Tokens: usage.TokenCount{
			InputTokens:  resp.PromptEvalCount,
			OutputTokens: resp.EvalCount,
		},
	}, nil
}

// ParseModels returns the model names from an /api/tags body.
func ParseModels(body []byte) ([]string, error) {
	var resp tagsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrMalformedResponse, err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}

	return names, nil
}

// HasModel reports whether model is listed, treating "name" and
// "name:latest" as the same model.
func HasModel(available []string, model string) bool {
	want := normalize(model)
	for _, name := range available {
		if normalize(name) == want {
			return true
		}
	}

	return false
}

func normalize(name string) string {
	name = strings.TrimSpace(name)
	if !strings.Contains(name, ":") {
		return name + defaultTag
	}

	return name
}
