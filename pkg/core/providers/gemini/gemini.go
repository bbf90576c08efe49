// Package gemini implements a text backend on the Gemini API using the
// google.golang.org/genai SDK.
package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/voxbridge/voxbridge/pkg/core"
)

// DefaultModel is used when no model override is configured.
const DefaultModel = "gemini-2.0-flash"

// Provider implements core.TextProvider against the Gemini API.
type Provider struct {
	client *genai.Client
	model  string
}

// New creates a new Gemini provider. The API key is required at
// construction time.
func New(ctx context.Context, apiKey, model string) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, core.NewConfigurationError("VOX_GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, core.NewConfigurationError("gemini client: " + err.Error())
	}

	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Provider{client: client, model: model}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// Generate sends a non-streaming generation request.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", core.NewUpstreamError(p.Name(), err.Error(), upstreamStatus(err))
	}

	text := resp.Text()
	if text == "" {
		return "", core.NewUpstreamError(p.Name(), "response contains no text", 0)
	}
	return text, nil
}

// Stream forwards generated chunks to onToken in arrival order.
func (p *Provider) Stream(ctx context.Context, prompt string, onToken core.TokenFunc) error {
	for chunk, err := range p.client.Models.GenerateContentStream(ctx, p.model, genai.Text(prompt), nil) {
		if err != nil {
			return core.NewUpstreamError(p.Name(), err.Error(), upstreamStatus(err))
		}
		text := chunk.Text()
		if text == "" {
			continue
		}
		if err := onToken(ctx, text); err != nil {
			return err
		}
	}
	return nil
}

func upstreamStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
