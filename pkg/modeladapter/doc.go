// Package modeladapter holds the HTTP plumbing shared by the local model
// server clients.
//
// It contains:
//   - [ModelAdapter], an embeddable base with request building, custom headers
//     and JSON POST/GET helpers that return raw bodies
//   - [StatusError] for non-2xx answers
//   - [github.com/germanamz/ideaforge/pkg/modeladapter/usage], a thread-safe token usage tracker
//
// This package contains no provider-specific code. Request and response
// shapes live in the provider packages, which return plain values that the
// gateway sends through a ModelAdapter.
package modeladapter
