// Package dummy implements a deterministic local provider used as the
// default no-external-dependency path and in tests.
package dummy

import (
	"context"

	"github.com/voxbridge/voxbridge/pkg/core"
)

// streamTokens is the fixed token sequence emitted by Stream.
const streamTokens = "dummy stream response"

// Provider returns input-derived output without any network calls.
type Provider struct{}

// New creates a new dummy provider.
func New() *Provider {
	return &Provider{}
}

// Name returns the provider identifier.
func (*Provider) Name() string {
	return "dummy"
}

// Generate returns a deterministic response derived from the prompt.
func (*Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Dummy response for: " + prompt, nil
}

// Stream emits the characters of a fixed sequence, one token per call.
func (*Provider) Stream(ctx context.Context, prompt string, onToken core.TokenFunc) error {
	for _, r := range streamTokens {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onToken(ctx, string(r)); err != nil {
			return err
		}
	}
	return nil
}
