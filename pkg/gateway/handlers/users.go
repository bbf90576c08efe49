package handlers

import (
	"net/http"
	"strings"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/gateway/userstore"
)

// UsersHandler serves the optional persistent user directory. With no
// database configured every route reports unavailable.
type UsersHandler struct {
	Store *userstore.Store
}

type userCreateRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

func (h UsersHandler) unavailable(w http.ResponseWriter, r *http.Request) bool {
	if h.Store != nil {
		return false
	}
	writeJSON(w, http.StatusServiceUnavailable, errorEnvelope{Error: &core.Error{
		Type:    core.ErrConfiguration,
		Message: "user store is not configured",
	}})
	return true
}

// List handles GET /v1/users.
func (h UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w, r) {
		return
	}
	users, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if users == nil {
		users = []userstore.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Create handles POST /v1/users.
func (h UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.unavailable(w, r) {
		return
	}

	var req userCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		writeError(w, r, core.NewInvalidRequestError("name is required"))
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, r, core.NewInvalidRequestError("a valid email is required"))
		return
	}

	user, err := h.Store.Create(r.Context(), req.Name, req.Email, req.ProfilePicture)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
