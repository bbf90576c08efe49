// Package openai implements an OpenAI-compatible Chat Completions backend.
package openai

import (
	"context"
	"net/http"
	"strings"

	"github.com/voxbridge/voxbridge/pkg/core"
)

const (
	// DefaultBaseURL is the default OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model override is configured.
	DefaultModel = "gpt-4o-mini"

	// defaultTemperature keeps responses stable for conversational replies.
	defaultTemperature = 0.2
)

// Provider implements core.TextProvider against a Chat Completions API.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a new OpenAI provider. The API key is required; construction
// fails with a configuration_error when it is missing so misconfiguration
// surfaces at startup, not on first use.
func New(apiKey string, opts ...Option) (*Provider, error) {
	p := &Provider{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.apiKey == "" {
		return nil, core.NewConfigurationError("VOX_OPENAI_API_KEY is not set")
	}
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "openai"
}

// Generate sends a non-streaming chat completion request.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	req := &chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: defaultTemperature,
	}

	body, err := p.doRequest(ctx, req)
	if err != nil {
		return "", err
	}
	return parseResponse(body)
}

// Stream sends a streaming chat completion request and forwards content
// deltas to onToken in arrival order.
func (p *Provider) Stream(ctx context.Context, prompt string, onToken core.TokenFunc) error {
	req := &chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: defaultTemperature,
		Stream:      true,
	}

	body, err := p.doStreamRequest(ctx, req)
	if err != nil {
		return err
	}
	defer body.Close()

	return scanStream(ctx, body, onToken)
}
