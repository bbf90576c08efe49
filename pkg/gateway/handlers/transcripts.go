package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/voxbridge/voxbridge/pkg/core/speech"
)

// TranscriptsHandler normalizes third-party speech payloads into the
// gateway transcript shape.
type TranscriptsHandler struct{}

type transcriptNormalizeRequest struct {
	Raw       map[string]any `json:"raw"`
	Provider  string         `json:"provider,omitempty"`
	Language  string         `json:"language,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

type transcriptNormalizeResponse struct {
	Transcript *speech.Transcript `json:"transcript"`
}

// ServeHTTP handles POST /v1/transcripts/normalize. It understands a few
// common speech payload shapes and degrades to an empty transcript.
func (h TranscriptsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req transcriptNormalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	raw := req.Raw
	if raw == nil {
		raw = map[string]any{}
	}

	provider := strings.TrimSpace(firstString(req.Provider, stringField(raw, "provider")))
	if provider == "" {
		provider = "unknown"
	}
	requestID := firstString(req.RequestID, stringField(raw, "request_id"))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	language := firstString(req.Language, stringField(raw, "language"))

	text := strings.TrimSpace(firstString(
		stringField(raw, "DisplayText"),
		stringField(raw, "displayText"),
		stringField(raw, "text"),
		stringField(raw, "Text"),
	))

	rawJSON, _ := json.Marshal(raw)
	writeJSON(w, http.StatusOK, transcriptNormalizeResponse{
		Transcript: &speech.Transcript{
			RequestID: requestID,
			Provider:  provider,
			Text:      text,
			Language:  language,
			Segments:  []speech.Segment{},
			Raw:       rawJSON,
		},
	})
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
