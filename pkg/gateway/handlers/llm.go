package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/gateway/metrics"
	"github.com/voxbridge/voxbridge/pkg/gateway/mw"
	"github.com/voxbridge/voxbridge/pkg/gateway/sse"
	"github.com/voxbridge/voxbridge/pkg/gateway/upstream"
)

// LLMHandler serves direct provider access: health, model catalog, one-shot
// generation, and the SSE token stream.
type LLMHandler struct {
	Factory         upstream.Factory
	DefaultProvider string
	DefaultModel    string
	GenerateTimeout time.Duration
	Metrics         *metrics.Metrics
}

type llmGenerateRequest struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"llm_model,omitempty"`
}

type llmGenerateResponse struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Text     string `json:"text"`
}

// Health handles GET /v1/llm/health. Reaching a constructed provider is
// the health signal; there is no generic upstream probe.
func (h LLMHandler) Health(w http.ResponseWriter, r *http.Request) {
	p, err := h.Factory.New(r.Context(), h.DefaultProvider, h.DefaultModel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "provider": p.Name()})
}

// Models handles GET /v1/llm/models with the static provider catalog.
func (h LLMHandler) Models(w http.ResponseWriter, r *http.Request) {
	type modelInfo struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": h.DefaultProvider,
		"models": []modelInfo{
			{ID: "dummy", Label: "Dummy (local test)"},
			{ID: "openai", Label: "OpenAI-compatible"},
			{ID: "gemini", Label: "Google Gemini"},
			{ID: "offline", Label: "Offline (local model)"},
		},
	})
}

// Generate handles POST /v1/llm/generate.
func (h LLMHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req llmGenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Prompt == "" {
		writeError(w, r, core.NewInvalidRequestError("prompt is required"))
		return
	}

	p, ok := h.selectProvider(w, r, req)
	if !ok {
		return
	}

	ctx := r.Context()
	if h.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.GenerateTimeout)
		defer cancel()
	}

	text, err := p.Generate(ctx, req.Prompt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, llmGenerateResponse{Provider: p.Name(), Model: req.Model, Text: text})
}

// Stream handles POST /v1/llm/stream. Tokens flow from a producer
// goroutine through a channel; closing the channel is the end-of-stream
// sentinel. Client disconnect cancels the producer.
func (h LLMHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req llmGenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Prompt == "" {
		writeError(w, r, core.NewInvalidRequestError("prompt is required"))
		return
	}

	p, ok := h.selectProvider(w, r, req)
	if !ok {
		return
	}

	sw, err := sse.New(w)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	tokens := make(chan string, 16)
	go func() {
		defer close(tokens)
		_ = p.Stream(ctx, req.Prompt, func(ctx context.Context, token string) error {
			select {
			case tokens <- token:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	sent := 0
	for token := range tokens {
		if err := sw.SendRaw(token); err != nil {
			cancel()
			for range tokens {
			}
			break
		}
		sent++
	}
	if h.Metrics != nil {
		h.Metrics.RecordTokens(p.Name(), sent)
	}
}

// selectProvider resolves request provider overrides. Selection failures,
// including misconfigured providers, are the caller's fault and map to 400.
func (h LLMHandler) selectProvider(w http.ResponseWriter, r *http.Request, req llmGenerateRequest) (core.TextProvider, bool) {
	name := req.Provider
	if name == "" {
		name = h.DefaultProvider
	}
	model := req.Model
	if model == "" {
		model = h.DefaultModel
	}

	p, err := h.Factory.New(r.Context(), name, model)
	if err != nil {
		var coreErr *core.Error
		if errors.As(err, &coreErr) && coreErr.Type == core.ErrConfiguration {
			if coreErr.RequestID == "" {
				coreErr.RequestID, _ = mw.RequestIDFrom(r.Context())
			}
			writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: coreErr})
			return nil, false
		}
		writeError(w, r, err)
		return nil, false
	}
	return p, true
}
