package generators

import (
	"context"
	"fmt"
	"strings"

	"github.com/germanamz/ideaforge/pkg/gateway"
)

// Writing prompt option values.
var (
	Genres       = []string{"sci-fi", "mystery", "romance", "fantasy", "horror", "thriller", "historical", "literary fiction", "adventure"}
	PromptTypes  = []string{"character", "plot", "world-building", "dialogue", "setting"}
	Complexities = []string{"simple", "moderate", "complex"}
)

// WritingInput describes a creative writing prompt request.
type WritingInput struct {
	Genre       string
	PromptType  string // Default "plot".
	Complexity  string // Default "moderate".
	Constraints string // Optional.
	Overrides   gateway.Overrides
}

// Normalize trims and validates the input, filling in defaults. Genre has
// no default.
func (in WritingInput) Normalize() (WritingInput, error) {
	if strings.TrimSpace(in.Genre) == "" {
		return in, fmt.Errorf("generators: %w: genre is required, one of: %s", ErrInvalidInput, strings.Join(Genres, ", "))
	}

	var err error
	if in.Genre, err = oneOf("genre", in.Genre, "", Genres); err != nil {
		return in, err
	}
	if in.PromptType, err = oneOf("prompt type", in.PromptType, "plot", PromptTypes); err != nil {
		return in, err
	}
	if in.Complexity, err = oneOf("complexity", in.Complexity, "moderate", Complexities); err != nil {
		return in, err
	}

	in.Constraints = strings.TrimSpace(in.Constraints)

	return in, nil
}

// Prompt returns the rendered user prompt for a normalized input.
func (in WritingInput) Prompt() (string, error) {
	return prompts[Writing].render(in.templateData())
}

func (in WritingInput) templateData() map[string]any {
	return map[string]any{
		"Genre":       in.Genre,
		"PromptType":  in.PromptType,
		"Complexity":  in.Complexity,
		"Constraints": in.Constraints,
	}
}

// WritingPrompt generates a creative writing prompt.
func (s *Service) WritingPrompt(ctx context.Context, in WritingInput) (Result, error) {
	in, err := in.Normalize()
	if err != nil {
		return Result{}, err
	}

	constraints := in.Constraints
	if constraints == "" {
		constraints = "None"
	}

	fields := Metadata{
		{Key: "prompt_type", Value: in.PromptType},
		{Key: "complexity", Value: in.Complexity},
		{Key: "constraints", Value: constraints},
	}

	return s.run(ctx, Writing, in.Genre, in.templateData(), fields, in.Overrides)
}
