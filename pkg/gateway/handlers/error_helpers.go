package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/gateway/mw"
)

type errorEnvelope struct {
	Error *core.Error `json:"error"`
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err *core.Error) int {
	switch err.Type {
	case core.ErrNotFound:
		return http.StatusNotFound
	case core.ErrInvalidRequest, core.ErrUnsupportedProvider:
		return http.StatusBadRequest
	case core.ErrUpstream, core.ErrRelay:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders any error as a JSON error envelope. Errors outside
// the taxonomy become opaque 500s.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		coreErr = &core.Error{Type: core.ErrInternal, Message: "internal error"}
	}
	if coreErr.RequestID == "" {
		coreErr.RequestID = reqID
	}
	writeJSON(w, statusFor(coreErr), errorEnvelope{Error: coreErr})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON strictly decodes a request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return core.NewInvalidRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}
