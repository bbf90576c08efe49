// Package offline is a placeholder for local model adapters. It resolves
// as a recognized provider so deployments can reserve the name, but every
// call reports the missing local configuration.
package offline

import (
	"context"

	"github.com/voxbridge/voxbridge/pkg/core"
)

// Provider is the offline/local placeholder backend.
type Provider struct{}

// New creates a new offline provider.
func New() *Provider {
	return &Provider{}
}

// Name returns the provider identifier.
func (*Provider) Name() string {
	return "offline"
}

// Generate reports that no local model is configured.
func (*Provider) Generate(ctx context.Context, prompt string) (string, error) {
	return "", core.NewConfigurationError("offline provider has no local model configured")
}

// Stream reports that no local model is configured.
func (*Provider) Stream(ctx context.Context, prompt string, onToken core.TokenFunc) error {
	return core.NewConfigurationError("offline provider has no local model configured")
}
