// Package provider defines the tagged variant the gateway dispatches on: a
// [Kind] names a backend and a [Strategy] holds the pure functions that build
// that backend's request bodies and parse its responses.
package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/ideaforge/pkg/modeladapter/usage"
)

// Kind identifies a model server API shape.
type Kind string

// Built-in kinds.
const (
	Ollama   Kind = "ollama"
	LMStudio Kind = "lm_studio"
)

// ErrUnknownKind is returned by ParseKind for names outside the built-ins.
var ErrUnknownKind = errors.New("unknown provider")

// ErrMalformedResponse marks a 2xx body that could not be interpreted.
var ErrMalformedResponse = errors.New("malformed response")

// Kinds returns the built-in kinds in display order.
func Kinds() []Kind {
	return []Kind{Ollama, LMStudio}
}

// ParseKind validates a provider name. Matching ignores case and surrounding
// whitespace.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w %q: must be 'ollama' or 'lm_studio'", ErrUnknownKind, s)
}

// String returns the configuration name of the kind.
func (k Kind) String() string { return string(k) }

// DisplayName returns the human-readable product name.
func (k Kind) DisplayName() string {
	switch k {
	case Ollama:
		return "Ollama"
	case LMStudio:
		return "LM Studio"
	default:
		return string(k)
	}
}

// Params is the fully resolved input of one generation call.
type Params struct {
	Model        string
	Prompt       string
	SystemPrompt string // Empty means no system instruction.
	Temperature  float64
	MaxTokens    int
}

// Reply is what a strategy extracts from a generation response.
type Reply struct {
	Text   string
	Tokens usage.TokenCount
}

// Strategy describes one backend API. All function fields are pure: they
// never perform I/O and never depend on state outside their arguments.
type Strategy struct {
	Kind           Kind
	DefaultBaseURL string
	DefaultModel   string
	GeneratePath   string
	ModelsPath     string

	// BuildGenerate returns the JSON-marshalable body for GeneratePath.
	BuildGenerate func(p Params) any
	// ParseGenerate extracts the untrimmed reply text from a 2xx body.
	ParseGenerate func(body []byte) (Reply, error)
	// ParseModels extracts model identifiers from a ModelsPath body.
	ParseModels func(body []byte) ([]string, error)
	// HasModel reports whether model is among the listed ones. A nil HasModel
	// means the server does not need to report the model for a probe to pass.
	HasModel func(available []string, model string) bool
}

// Validate checks that every required field is set.
func (s Strategy) Validate() error {
	switch {
	case s.Kind == "":
		return errors.New("provider: strategy kind is required")
	case s.GeneratePath == "" || s.ModelsPath == "":
		return fmt.Errorf("provider: %s: paths are required", s.Kind)
	case s.BuildGenerate == nil || s.ParseGenerate == nil || s.ParseModels == nil:
		return fmt.Errorf("provider: %s: build and parse functions are required", s.Kind)
	}

	return nil
}
