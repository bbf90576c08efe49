// Package upstream resolves provider names to text-generation backends.
package upstream

import (
	"context"
	"net/http"
	"strings"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/core/providers/dummy"
	"github.com/voxbridge/voxbridge/pkg/core/providers/gemini"
	"github.com/voxbridge/voxbridge/pkg/core/providers/offline"
	"github.com/voxbridge/voxbridge/pkg/core/providers/openai"
)

// Factory builds text providers from configured credentials. Selection is a
// pure mapping: the same name and model always yield an equivalent backend.
type Factory struct {
	HTTPClient *http.Client

	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
}

// New resolves a provider name (case-insensitive, whitespace-trimmed) and
// optional model override to a backend. An empty name selects the dummy
// provider; an unrecognized name fails with unsupported_provider_error.
func (f Factory) New(ctx context.Context, name, model string) (core.TextProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "dummy"
	}

	switch key {
	case "dummy", "test":
		return dummy.New(), nil
	case "openai":
		opts := []openai.Option{openai.WithModel(model)}
		if f.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(f.OpenAIBaseURL))
		}
		if f.HTTPClient != nil {
			opts = append(opts, openai.WithHTTPClient(f.HTTPClient))
		}
		return openai.New(f.OpenAIAPIKey, opts...)
	case "offline", "local":
		return offline.New(), nil
	case "gemini":
		return gemini.New(ctx, f.GeminiAPIKey, model)
	default:
		return nil, core.NewUnsupportedProviderError(name)
	}
}
