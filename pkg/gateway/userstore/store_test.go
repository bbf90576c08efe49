package userstore

import (
	"testing"

	"github.com/voxbridge/voxbridge/pkg/core"
)

func TestOpenRejectsMalformedURL(t *testing.T) {
	_, err := Open(t.Context(), "postgres://u:p@host:not-a-port/db")
	if !core.IsType(err, core.ErrConfiguration) {
		t.Fatalf("Open() error = %v, want configuration_error", err)
	}
}

func TestDuplicateEmailErrorType(t *testing.T) {
	if !core.IsType(ErrDuplicateEmail, core.ErrInvalidRequest) {
		t.Fatalf("ErrDuplicateEmail type = %v, want invalid_request_error", ErrDuplicateEmail)
	}
}
