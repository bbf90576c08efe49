package sse

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendFormatsEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := New(rec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Send("token", map[string]string{"token": "hi"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	body := rec.Body.String()
	want := "event: token\ndata: {\"token\":\"hi\"}\n\n"
	if body != want {
		t.Fatalf("body = %q, want %q", body, want)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want %q", got, "text/event-stream")
	}
}

func TestSendDataOmitsEventName(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := New(rec)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.SendData(map[string]string{"token": "a"}); err != nil {
		t.Fatalf("SendData() error = %v", err)
	}
	if strings.Contains(rec.Body.String(), "event:") {
		t.Fatalf("body = %q, want no event line", rec.Body.String())
	}
}
