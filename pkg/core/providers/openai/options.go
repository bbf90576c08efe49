package openai

import (
	"net/http"
	"strings"
)

// Option configures the provider.
type Option func(*Provider)

// WithBaseURL overrides the API endpoint, e.g. for OpenAI-compatible servers.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			p.baseURL = trimmed
		}
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(p *Provider) {
		if trimmed := strings.TrimSpace(model); trimmed != "" {
			p.model = trimmed
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) {
		if client != nil {
			p.httpClient = client
		}
	}
}
