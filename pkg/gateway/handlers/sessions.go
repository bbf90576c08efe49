package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/voxbridge/voxbridge/pkg/gateway/session"
)

// SessionsHandler serves the session CRUD surface.
type SessionsHandler struct {
	Store *session.Store
}

type sessionCreateResponse struct {
	SessionID string `json:"session_id"`
}

type sessionStateResponse struct {
	SessionID string            `json:"session_id"`
	State     map[string]string `json:"state"`
}

type sessionMessagesResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []session.Message `json:"messages"`
}

type sessionAddMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Create handles POST /v1/sessions.
func (h SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	h.Store.Create(id)
	writeJSON(w, http.StatusOK, sessionCreateResponse{SessionID: id})
}

// Get handles GET /v1/sessions/{id}.
func (h SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	state, err := h.Store.State(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStateResponse{SessionID: id, State: state})
}

// Delete handles DELETE /v1/sessions/{id}. Deleting an unknown session
// succeeds.
func (h SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.Store.Delete(r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListMessages handles GET /v1/sessions/{id}/messages.
func (h SessionsHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	msgs, err := h.Store.Messages(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []session.Message{}
	}
	writeJSON(w, http.StatusOK, sessionMessagesResponse{SessionID: id, Messages: msgs})
}

// AddMessage handles POST /v1/sessions/{id}/messages.
func (h SessionsHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req sessionAddMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Store.AppendMessage(id, session.Role(req.Role), req.Content); err != nil {
		writeError(w, r, err)
		return
	}

	msgs, err := h.Store.Messages(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionMessagesResponse{SessionID: id, Messages: msgs})
}
