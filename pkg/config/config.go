// Package config loads ideaforge settings from defaults, an optional YAML
// file, a .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/germanamz/ideaforge/pkg/gateway"
	"github.com/germanamz/ideaforge/pkg/logging"
	"github.com/germanamz/ideaforge/pkg/providers/lmstudio"
	"github.com/germanamz/ideaforge/pkg/providers/ollama"
	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

// Default file locations, relative to the working directory.
const (
	DefaultEnvFile    = ".env"
	DefaultConfigFile = "ideaforge.yaml"
	DefaultExportDir  = "exports"
)

// Environment variable names.
const (
	EnvProvider       = "LLM_PROVIDER"
	EnvOllamaBaseURL  = "OLLAMA_BASE_URL"
	EnvOllamaModel    = "OLLAMA_MODEL"
	EnvLMStudioURL    = "LM_STUDIO_BASE_URL"
	EnvLMStudioModel  = "LM_STUDIO_MODEL"
	EnvMaxTokens      = "MAX_TOKENS"
	EnvTemperature    = "TEMPERATURE"
	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFile        = "LOG_FILE"
	EnvExportDir      = "EXPORT_DIR"
)

// ErrInvalid marks a setting that failed to parse or validate.
var ErrInvalid = errors.New("invalid setting")

// Endpoint is the location of one model server.
type Endpoint struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Settings is the complete process configuration.
type Settings struct {
	Provider       string   `yaml:"provider"`
	Ollama         Endpoint `yaml:"ollama"`
	LMStudio       Endpoint `yaml:"lm_studio"`
	MaxTokens      int      `yaml:"max_tokens"`
	Temperature    float64  `yaml:"temperature"`
	RequestTimeout string   `yaml:"request_timeout"` // Duration ("90s") or whole seconds ("90").
	LogLevel       string   `yaml:"log_level"`
	LogFile        string   `yaml:"log_file"`
	ExportDir      string   `yaml:"export_dir"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Provider:       string(provider.Ollama),
		Ollama:         Endpoint{BaseURL: ollama.DefaultBaseURL, Model: ollama.DefaultModel},
		LMStudio:       Endpoint{BaseURL: lmstudio.DefaultBaseURL, Model: lmstudio.DefaultModel},
		MaxTokens:      gateway.DefaultMaxTokens,
		Temperature:    gateway.DefaultTemperature,
		RequestTimeout: gateway.DefaultGenerateTimeout.String(),
		LogLevel:       "info",
		ExportDir:      DefaultExportDir,
	}
}

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	EnvFile    string // Empty means DefaultEnvFile. A missing file is ignored.
	ConfigFile string // Empty means DefaultConfigFile, ignored when missing. An explicit path must exist.
}

// Load builds validated Settings. The .env file only fills variables that are
// not already set in the environment.
func Load(opts LoadOptions) (Settings, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	if err := LoadDotEnv(envFile); err != nil {
		return Settings{}, fmt.Errorf("config: load env file: %w", err)
	}

	s := Defaults()

	switch {
	case opts.ConfigFile != "":
		if err := s.LoadFile(opts.ConfigFile); err != nil {
			return Settings{}, err
		}
	default:
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			if err := s.LoadFile(DefaultConfigFile); err != nil {
				return Settings{}, err
			}
		}
	}

	if err := s.ApplyEnv(os.LookupEnv); err != nil {
		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// LoadDotEnv loads environment variables from path. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

// LoadFile overlays the YAML file at path onto s. Environment variables
// referenced as ${VAR} or $VAR are expanded before parsing; keys absent from
// the file keep their current values.
func (s *Settings) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return fmt.Errorf("config: load file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), s); err != nil {
		return fmt.Errorf("config: parse file: %w", err)
	}

	return nil
}

// ApplyEnv overrides s with the variables lookup reports as set. Blank
// values are ignored.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	strs := []struct {
		key string
		dst *string
	}{
		{EnvProvider, &s.Provider},
		{EnvOllamaBaseURL, &s.Ollama.BaseURL},
		{EnvOllamaModel, &s.Ollama.Model},
		{EnvLMStudioURL, &s.LMStudio.BaseURL},
		{EnvLMStudioModel, &s.LMStudio.Model},
		{EnvRequestTimeout, &s.RequestTimeout},
		{EnvLogLevel, &s.LogLevel},
		{EnvLogFile, &s.LogFile},
		{EnvExportDir, &s.ExportDir},
	}
	for _, e := range strs {
		if v, ok := get(e.key); ok {
			*e.dst = v
		}
	}

	if v, ok := get(EnvMaxTokens); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %w: %s=%q is not an integer", ErrInvalid, EnvMaxTokens, v)
		}
		s.MaxTokens = n
	}

	if v, ok := get(EnvTemperature); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %w: %s=%q is not a number", ErrInvalid, EnvTemperature, v)
		}
		s.Temperature = f
	}

	return nil
}

// Validate fails fast on anything the gateway would reject later.
func (s Settings) Validate() error {
	if _, err := provider.ParseKind(s.Provider); err != nil {
		return fmt.Errorf("config: %w: %s: %w", ErrInvalid, EnvProvider, err)
	}

	for _, ep := range []struct {
		name string
		ep   Endpoint
	}{
		{"ollama", s.Ollama},
		{"lm_studio", s.LMStudio},
	} {
		if err := checkURL(ep.ep.BaseURL); err != nil {
			return fmt.Errorf("config: %w: %s base URL: %w", ErrInvalid, ep.name, err)
		}
		if strings.TrimSpace(ep.ep.Model) == "" {
			return fmt.Errorf("config: %w: %s model is required", ErrInvalid, ep.name)
		}
	}

	if s.MaxTokens <= 0 {
		return fmt.Errorf("config: %w: max tokens must be positive, got %d", ErrInvalid, s.MaxTokens)
	}

	if err := gateway.CheckTemperature(s.Temperature); err != nil {
		return fmt.Errorf("config: %w: %w", ErrInvalid, err)
	}

	if _, err := s.Timeout(); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("config: %w: %w", ErrInvalid, err)
	}

	return nil
}

// Timeout returns the generation timeout.
func (s Settings) Timeout() (time.Duration, error) {
	if s.RequestTimeout == "" {
		return gateway.DefaultGenerateTimeout, nil
	}

	d, err := parseTimeout(s.RequestTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %w: request timeout %q must be a positive duration", ErrInvalid, s.RequestTimeout)
	}

	return d, nil
}

// Level returns the parsed log level.
func (s Settings) Level() (slog.Level, error) {
	return logging.ParseLevel(s.LogLevel)
}

// Gateway returns the gateway configuration described by s. Both providers
// share the generation defaults.
func (s Settings) Gateway() (gateway.Config, error) {
	if err := s.Validate(); err != nil {
		return gateway.Config{}, err
	}

	kind, _ := provider.ParseKind(s.Provider)
	timeout, _ := s.Timeout()

	cfg := gateway.DefaultConfig()
	cfg.Default = kind
	cfg.GenerateTimeout = timeout

	cfg.Ollama.BaseURL = s.Ollama.BaseURL
	cfg.Ollama.Model = strings.TrimSpace(s.Ollama.Model)
	cfg.Ollama.Temperature = s.Temperature
	cfg.Ollama.MaxTokens = s.MaxTokens

	cfg.LMStudio.BaseURL = s.LMStudio.BaseURL
	cfg.LMStudio.Model = strings.TrimSpace(s.LMStudio.Model)
	cfg.LMStudio.Temperature = s.Temperature
	cfg.LMStudio.MaxTokens = s.MaxTokens

	return cfg, nil
}

func parseTimeout(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	return time.ParseDuration(v)
}

func checkURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}

	return nil
}
