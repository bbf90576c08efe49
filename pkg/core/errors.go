package core

import (
	"errors"
	"fmt"
)

// Error is the gateway error envelope shared by providers, the
// orchestrator, and the relay.
type Error struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Param     string    `json:"param,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	RequestID string    `json:"request_id,omitempty"`

	// StatusCode is the upstream HTTP status for upstream_error, 0 otherwise.
	StatusCode int `json:"status_code,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s (provider: %s)", e.Type, e.Message, e.Provider)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrConfiguration is a required setting missing for an enabled feature.
	// Fatal at construction or startup, never recovered at runtime.
	ErrConfiguration ErrorType = "configuration_error"

	// ErrUnsupportedProvider is an unknown provider name at call time.
	ErrUnsupportedProvider ErrorType = "unsupported_provider_error"

	// ErrUpstream is a non-success response or malformed payload from an
	// external backend.
	ErrUpstream ErrorType = "upstream_error"

	// ErrRelay is a mid-session realtime relay fault.
	ErrRelay ErrorType = "relay_error"

	ErrNotFound       ErrorType = "not_found_error"
	ErrInvalidRequest ErrorType = "invalid_request_error"

	// ErrInternal is an unexpected gateway-side failure.
	ErrInternal ErrorType = "internal_error"
)

// NewConfigurationError creates a configuration error.
func NewConfigurationError(message string) *Error {
	return &Error{Type: ErrConfiguration, Message: message}
}

// NewUnsupportedProviderError creates an unsupported provider error.
func NewUnsupportedProviderError(name string) *Error {
	return &Error{
		Type:    ErrUnsupportedProvider,
		Message: fmt.Sprintf("unsupported provider %q", name),
		Param:   "provider",
	}
}

// NewUpstreamError creates an upstream error carrying the upstream status.
func NewUpstreamError(provider, message string, statusCode int) *Error {
	return &Error{
		Type:       ErrUpstream,
		Message:    message,
		Provider:   provider,
		StatusCode: statusCode,
	}
}

// NewRelayError creates a relay error.
func NewRelayError(message string) *Error {
	return &Error{Type: ErrRelay, Message: message}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *Error {
	return &Error{Type: ErrNotFound, Message: message}
}

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{Type: ErrInvalidRequest, Message: message}
}

// IsType reports whether err is a *Error of the given type.
func IsType(err error, t ErrorType) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Type == t
	}
	return false
}

// IsNotFound reports whether err is a not_found_error.
func IsNotFound(err error) bool { return IsType(err, ErrNotFound) }
