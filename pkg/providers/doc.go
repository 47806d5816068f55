// Package providers groups the model server backends.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/ideaforge/pkg/providers/provider]: the Kind enum and the Strategy value describing one backend's wire schema
//   - [github.com/germanamz/ideaforge/pkg/providers/ollama]: the Ollama native API (/api/generate, /api/tags)
//   - [github.com/germanamz/ideaforge/pkg/providers/lmstudio]: LM Studio's OpenAI-compatible API (/v1/chat/completions, /v1/models)
//
// This package contains no code. The gateway selects a strategy per request.
package providers
