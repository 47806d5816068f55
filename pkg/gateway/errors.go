package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/germanamz/ideaforge/pkg/providers/provider"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrConfig         = errors.New("invalid configuration")
	ErrInvalidRequest = errors.New("invalid generation request")
	ErrUnreachable    = errors.New("backend unreachable")
	ErrGeneration     = errors.New("generation failed")
)

// UnreachableError is returned when no connection to the backend could be
// established.
type UnreachableError struct {
	Provider provider.Kind
	BaseURL  string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("could not connect to %s at %s; ensure %s is running",
		e.Provider, e.BaseURL, e.Provider.DisplayName())
}

// Is makes errors.Is(err, ErrUnreachable) match.
func (e *UnreachableError) Is(target error) bool { return target == ErrUnreachable }

func (e *UnreachableError) Unwrap() error { return e.Err }

// GenerationError is returned when the backend was reached but the call did
// not produce usable text: an error status, a malformed payload or a timeout.
type GenerationError struct {
	Provider provider.Kind
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("error generating response from %s: %v", e.Provider, e.Err)
}

// Is makes errors.Is(err, ErrGeneration) match.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

func (e *GenerationError) Unwrap() error { return e.Err }

// classify maps a transport or parse error to the gateway taxonomy.
func classify(pc ProviderConfig, err error) error {
	if isUnreachable(err) {
		return &UnreachableError{Provider: pc.Kind, BaseURL: pc.BaseURL, Err: err}
	}

	return &GenerationError{Provider: pc.Kind, Err: err}
}

// isUnreachable reports whether err means the connection itself failed
// (refused, unresolvable host, no route) as opposed to a failed exchange.
func isUnreachable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && !opErr.Timeout() {
		return true
	}

	return false
}
