package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUsersUnavailableWithoutStore(t *testing.T) {
	h := UsersHandler{}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest("GET", "/v1/users", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("list status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "configuration_error") {
		t.Fatalf("list body = %s, want configuration_error envelope", rec.Body)
	}

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/v1/users", strings.NewReader(`{"name":"a","email":"a@b.c"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("create status = %d, want 503", rec.Code)
	}
}
