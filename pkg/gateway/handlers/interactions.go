package handlers

import (
	"net/http"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/gateway/metrics"
	"github.com/voxbridge/voxbridge/pkg/gateway/orchestrator"
)

// InteractionsHandler normalizes text input and runs it through the
// orchestrator.
type InteractionsHandler struct {
	Orchestrator *orchestrator.Orchestrator
	Metrics      *metrics.Metrics
	Provider     string
}

type interactionRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	Language  string `json:"language,omitempty"`
}

type interactionResponse struct {
	Interaction  orchestrator.Interaction `json:"interaction"`
	Intent       orchestrator.Intent      `json:"intent"`
	ResponseText string                   `json:"response_text"`
}

func (h InteractionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.SessionID == "" {
		writeError(w, r, core.NewInvalidRequestError("session_id is required"))
		return
	}

	in := orchestrator.NewTextInteraction(req.SessionID, req.Text, req.Language)
	res, err := h.Orchestrator.Process(r.Context(), in)
	if err != nil {
		if h.Metrics != nil {
			h.Metrics.RecordInteraction(h.Provider, string(orchestrator.ClassifyIntent(in.NormalizedText)), "error")
		}
		writeError(w, r, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordInteraction(h.Provider, string(res.Intent), "ok")
	}
	writeJSON(w, http.StatusOK, interactionResponse{
		Interaction:  in,
		Intent:       res.Intent,
		ResponseText: res.Response,
	})
}
