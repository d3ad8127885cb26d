package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ahrav/rag-bench/internal/ports"
)

// ProviderError records a provider failure together with its HTTP
// status and the sentinel classification the rest of the pipeline
// keys retry decisions off.
type ProviderError struct {
	// Provider names the backend that produced the error.
	Provider string

	// StatusCode is the HTTP status from the provider, 0 if unknown.
	StatusCode int

	// Err is the classified error, wrapping one of the ports sentinels
	// when the status maps to a known class.
	Err error
}

// Error returns a human-readable description.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap exposes the classified error for errors.Is checks.
func (e *ProviderError) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP status code onto the ports sentinel the
// evaluator's retry logic understands. Unknown codes pass the raw error
// through unchanged.
func classifyStatus(provider string, statusCode int, err error) error {
	var sentinel error
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		sentinel = ports.ErrAuthenticationFailed
	case statusCode == http.StatusTooManyRequests:
		sentinel = ports.ErrRateLimited
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		sentinel = ports.ErrTimeout
	case statusCode >= 500:
		sentinel = ports.ErrServiceUnavailable
	default:
		return &ProviderError{Provider: provider, StatusCode: statusCode, Err: err}
	}
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Err:        fmt.Errorf("%w: %v", sentinel, err),
	}
}

// classifyTransport handles failures that never reached the provider,
// such as canceled contexts or network timeouts.
func classifyTransport(provider string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ProviderError{
			Provider: provider,
			Err:      fmt.Errorf("%w: %v", ports.ErrTimeout, err),
		}
	case errors.Is(err, context.Canceled):
		return err
	default:
		return &ProviderError{Provider: provider, Err: err}
	}
}
