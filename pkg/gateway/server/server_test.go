package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/voxbridge/voxbridge/pkg/gateway/config"
)

func testConfig() config.Config {
	return config.Config{
		Addr:            "127.0.0.1:0",
		Env:             "test",
		LLMProvider:     "dummy",
		HealthTimeout:   time.Second,
		SpeechTimeout:   time.Second,
		GenerateTimeout: time.Second,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(testConfig(), nil, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestServer_UnknownRoute_ReturnsJSON404(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%q", ct)
	}
	if !strings.Contains(rr.Body.String(), `"type":"not_found_error"`) {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok\n" {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestServer_SessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%q", rr.Code, rr.Body.String())
	}
	var created struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.SessionID == "" {
		t.Fatal("empty session_id")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.SessionID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+created.SessionID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/sessions/"+created.SessionID, nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get deleted status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestServer_InteractionRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/interactions",
		strings.NewReader(`{"session_id":"sess-1","text":"hello there"}`))
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"response_text"`) {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestServer_LLMGenerate(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/llm/generate",
		strings.NewReader(`{"prompt":"say hi"}`))
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Dummy response for: say hi") {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestServer_LLMStream_SSE(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/llm/stream",
		strings.NewReader(`{"prompt":"say hi"}`))
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Fatalf("content-type=%q", ct)
	}
}

func TestServer_VoiceDisabledRoutes(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/voice/health", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "disabled") {
		t.Fatalf("voice health status=%d body=%q", rr.Code, rr.Body.String())
	}

	// Streaming is off by default, the relay route still resolves.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/voice/stream", nil))
	if rr.Code == http.StatusNotFound {
		t.Fatalf("/v1/voice/stream unexpectedly returned 404")
	}
}

func TestServer_UsersUnavailableWithoutDatabase(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/users", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestServer_StatusRoute(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%q", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"voxbridge"`) {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	// Generate one request so the counters have samples.
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "voxbridge_requests_total") {
		t.Fatalf("metrics output missing request counter: %q", rr.Body.String()[:min(len(rr.Body.String()), 400)])
	}
}

func TestServer_RequestIDHeaderPropagates(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req_fixed")
	s.Handler().ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "req_fixed" {
		t.Fatalf("X-Request-ID=%q, want req_fixed", got)
	}
}
