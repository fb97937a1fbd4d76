package llm

import (
	"fmt"
	"strings"
)

// TransportError is the base error type for model transport failures.
type TransportError struct {
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// EmptyResponseError signals that the provider returned no usable text.
// It is never retried; an empty response is fatal for the active phase.
type EmptyResponseError struct{ TransportError }

// RateLimitError signals a provider rate limit. Retryable.
type RateLimitError struct{ TransportError }

// ServerError signals a transient provider-side failure. Retryable.
type ServerError struct{ TransportError }

// AuthError signals a credential problem. Not retryable.
type AuthError struct{ TransportError }

// IsRetryable returns true if the error is safe to retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch err.(type) {
	case *EmptyResponseError, *AuthError:
		return false
	case *RateLimitError, *ServerError:
		return true
	default:
		// Unknown errors default to retryable.
		return true
	}
}

// classifyError maps a raw provider error onto the taxonomy using the
// message text, since gollm does not surface structured status codes.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "api key"):
		return &AuthError{TransportError{Message: "authentication failed", Cause: err}}
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return &RateLimitError{TransportError{Message: "rate limited", Cause: err}}
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") || strings.Contains(msg, "504") ||
		strings.Contains(msg, "overloaded"):
		return &ServerError{TransportError{Message: "provider server error", Cause: err}}
	default:
		return &TransportError{Message: "model request failed", Cause: err}
	}
}
