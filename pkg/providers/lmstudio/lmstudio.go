// Package lmstudio provides the Strategy for LM Studio's OpenAI-compatible
// server (/chat/completions and /models under the /v1 base URL).
package lmstudio

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/germanamz/ideaforge/pkg/modeladapter/usage"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

const (
	// DefaultBaseURL is the default LM Studio server endpoint, /v1 included.
	DefaultBaseURL = "http://localhost:1234/v1"
	// DefaultModel is the placeholder LM Studio accepts for the loaded model.
	DefaultModel = "local-model"

	completionsPath = "/chat/completions"
	modelsPath      = "/models"
)

// Strategy returns the LM Studio strategy. Any answer from /models counts as
// a successful probe, so HasModel is left nil.
func Strategy() provider.Strategy {
	return provider.Strategy{
		Kind:           provider.LMStudio,
		DefaultBaseURL: DefaultBaseURL,
		DefaultModel:   DefaultModel,
		GeneratePath:   completionsPath,
		ModelsPath:     modelsPath,
		BuildGenerate:  BuildGenerate,
		ParseGenerate:  ParseGenerate,
		ParseModels:    ParseModels,
	}
}

// --- request types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- response types ---

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

// UnmarshalJSON accepts both {"error":"text"} and {"error":{"message":"text"}}.
func (e *apiError) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Message = s
		return nil
	}

	type plain apiError
	return json.Unmarshal(data, (*plain)(e))
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// BuildGenerate returns the /chat/completions body: an optional system
// message followed by the user prompt.
func BuildGenerate(p provider.Params) any {
	msgs := make([]chatMessage, 0, 2)
	if p.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: p.SystemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: p.Prompt})

	return chatRequest{
		Model:       p.Model,
		Messages:    msgs,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
}

// ParseGenerate reads the reply text from choices[0].message.content.
func ParseGenerate(body []byte) (provider.Reply, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return provider.Reply{}, fmt.Errorf("%w: %w", provider.ErrMalformedResponse, err)
	}

	if resp.Error != nil && resp.Error.Message != "" {
		return provider.Reply{}, errors.New(resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return provider.Reply{}, fmt.Errorf("%w: empty choices", provider.ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	if content == nil {
		return provider.Reply{}, fmt.Errorf("%w: missing message content", provider.ErrMalformedResponse)
	}

	return provider.Reply{
		Text: *content,
		Tokens: usage.TokenCount{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// ParseModels returns the ids from an OpenAI-style {data:[{id}]} envelope.
func ParseModels(body []byte) ([]string, error) {
	var resp modelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrMalformedResponse, err)
	}

	ids := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}

	return ids, nil
}
