package handlers

import (
	"net/http"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/gateway/mw"
)

// NotFoundHandler renders unmatched routes as taxonomy errors instead of
// the default text response.
type NotFoundHandler struct{}

func (NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	writeJSON(w, http.StatusNotFound, errorEnvelope{Error: &core.Error{
		Type:      core.ErrNotFound,
		Message:   "no such route",
		RequestID: reqID,
	}})
}
