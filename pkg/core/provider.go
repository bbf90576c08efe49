package core

import "context"

// TokenFunc receives one streamed token or chunk. It is invoked
// synchronously: the provider does not produce the next token until the
// callback returns. A non-nil error aborts the stream.
type TokenFunc func(ctx context.Context, token string) error

// TextProvider is the interface all text-generation backends implement.
type TextProvider interface {
	// Name returns the canonical provider identifier (e.g. "dummy", "openai").
	Name() string

	// Generate performs a single round trip and returns the full response.
	Generate(ctx context.Context, prompt string) (string, error)

	// Stream produces tokens in order, invoking onToken once per token.
	Stream(ctx context.Context, prompt string, onToken TokenFunc) error
}
