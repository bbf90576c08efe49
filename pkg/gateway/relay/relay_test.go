package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type staticBuilder string

func (b staticBuilder) BuildRealtimeURL(model, apiVersion string) (string, error) {
	return string(b) + "/realtime?api-version=" + apiVersion + "&model=" + model, nil
}

// echoUpstream runs a WebSocket server that echoes every frame back and
// reports when its connection ends.
func echoUpstream(t *testing.T) (wsURL string, closed *atomic.Bool) {
	t.Helper()
	closed = &atomic.Bool{}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, payload, err := conn.ReadMessage()
			if err != nil {
				closed.Store(true)
				return
			}
			if err := conn.WriteMessage(mt, payload); err != nil {
				closed.Store(true)
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), closed
}

func dialClient(t *testing.T, rl *Relay) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(rl)
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("client dial error = %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatal("ReadMessage() succeeded, want close")
	}
	ce, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("ReadMessage() error = %v, want *websocket.CloseError", err)
	}
	if ce.Code != code {
		t.Fatalf("close code = %d, want %d", ce.Code, code)
	}
}

func TestDisabledRelayNeverDials(t *testing.T) {
	var dialed atomic.Bool
	rl := New(Config{Enabled: false, APIKey: "k"}, staticBuilder("wss://example"), nil, nil, nil)
	rl.SetDial(func(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
		dialed.Store(true)
		return nil, nil
	})

	conn := dialClient(t, rl)
	expectClose(t, conn, CloseUnavailable)
	if dialed.Load() {
		t.Fatal("upstream dialed while relay disabled")
	}
}

func TestNoBuilderClosesUnavailable(t *testing.T) {
	rl := New(Config{Enabled: true, APIKey: "k"}, nil, nil, nil, nil)
	conn := dialClient(t, rl)
	expectClose(t, conn, CloseUnavailable)
}

func TestMissingKeyClosesInternal(t *testing.T) {
	rl := New(Config{Enabled: true}, staticBuilder("wss://example"), nil, nil, nil)
	conn := dialClient(t, rl)
	expectClose(t, conn, CloseInternal)
}

func TestHeaderAuthPreferred(t *testing.T) {
	upstreamURL, _ := echoUpstream(t)

	var gotURL string
	var gotHeader http.Header
	rl := New(Config{Enabled: true, APIKey: "secret", Model: "gpt-4.1", APIVersion: "v1"}, staticBuilder("wss://example"), nil, nil, nil)
	rl.SetDial(func(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
		gotURL, gotHeader = url, header
		return defaultDial(ctx, upstreamURL, nil)
	})

	conn := dialClient(t, rl)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	if strings.Contains(gotURL, "api-key=") {
		t.Fatalf("header-auth dial URL carries key: %q", gotURL)
	}
	if got := gotHeader.Get("api-key"); got != "secret" {
		t.Fatalf("api-key header = %q, want %q", got, "secret")
	}
	if !strings.Contains(gotURL, "model=gpt-4.1") {
		t.Fatalf("dial URL missing model: %q", gotURL)
	}
}

func TestHeaderAuthFallsBackToQuery(t *testing.T) {
	upstreamURL, _ := echoUpstream(t)

	var calls []string
	rl := New(Config{Enabled: true, APIKey: "secret"}, staticBuilder("wss://example"), nil, nil, nil)
	rl.SetDial(func(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
		calls = append(calls, url)
		if header.Get("api-key") != "" {
			return nil, websocket.ErrBadHandshake
		}
		return defaultDial(ctx, upstreamURL, nil)
	})

	conn := dialClient(t, rl)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("dial calls = %d, want 2", len(calls))
	}
	if !strings.Contains(calls[1], "&api-key=secret") {
		t.Fatalf("fallback URL = %q, want query key", calls[1])
	}
}

func TestForcedQueryAuthSkipsHeader(t *testing.T) {
	upstreamURL, _ := echoUpstream(t)

	var calls []string
	var sawHeader bool
	rl := New(Config{Enabled: true, ForceQueryAuth: true, APIKey: "secret"}, staticBuilder("wss://example"), nil, nil, nil)
	rl.SetDial(func(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
		calls = append(calls, url)
		if header.Get("api-key") != "" {
			sawHeader = true
		}
		return defaultDial(ctx, upstreamURL, nil)
	})

	conn := dialClient(t, rl)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("dial calls = %d, want 1", len(calls))
	}
	if sawHeader {
		t.Fatal("header auth attempted with ForceQueryAuth set")
	}
	if !strings.Contains(calls[0], "&api-key=secret") {
		t.Fatalf("dial URL = %q, want query key", calls[0])
	}
}

func TestDialFailureClosesInternal(t *testing.T) {
	rl := New(Config{Enabled: true, APIKey: "secret"}, staticBuilder("wss://example"), nil, nil, nil)
	rl.SetDial(func(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
		return nil, websocket.ErrBadHandshake
	})

	conn := dialClient(t, rl)
	expectClose(t, conn, CloseInternal)
}

func TestFramesPreserveTypeAndOrder(t *testing.T) {
	upstreamURL, _ := echoUpstream(t)

	rl := New(Config{Enabled: true, APIKey: "secret"}, staticBuilder("wss://example"), nil, nil, nil)
	rl.SetDial(func(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
		return defaultDial(ctx, upstreamURL, nil)
	})

	conn := dialClient(t, rl)
	frames := []struct {
		mt      int
		payload string
	}{
		{websocket.TextMessage, "one"},
		{websocket.BinaryMessage, "\x00\x01\x02"},
		{websocket.TextMessage, "three"},
	}
	for _, f := range frames {
		if err := conn.WriteMessage(f.mt, []byte(f.payload)); err != nil {
			t.Fatalf("WriteMessage() error = %v", err)
		}
	}
	for i, f := range frames {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		mt, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() %d error = %v", i, err)
		}
		if mt != f.mt || string(payload) != f.payload {
			t.Fatalf("frame %d = (%d, %q), want (%d, %q)", i, mt, payload, f.mt, f.payload)
		}
	}
}

func TestClientDisconnectClosesUpstream(t *testing.T) {
	upstreamURL, closed := echoUpstream(t)

	rl := New(Config{Enabled: true, APIKey: "secret"}, staticBuilder("wss://example"), nil, nil, nil)
	rl.SetDial(func(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
		return defaultDial(ctx, upstreamURL, nil)
	})

	conn := dialClient(t, rl)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for !closed.Load() {
		if time.Now().After(deadline) {
			t.Fatal("upstream connection not closed after client disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestTrackerCancelAll(t *testing.T) {
	tr := NewTracker()
	var canceled atomic.Int32
	unregister := tr.Register("s1", Handle{Cancel: func() { canceled.Add(1) }})
	tr.Register("s2", Handle{Cancel: func() { canceled.Add(1) }})

	if got := tr.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}
	if got := tr.CancelAll(); got != 2 {
		t.Fatalf("CancelAll() = %d, want 2", got)
	}
	unregister()
	if got := tr.Count(); got != 1 {
		t.Fatalf("Count() after unregister = %d, want 1", got)
	}
}

func TestTrackerWait(t *testing.T) {
	tr := NewTracker()
	unregister := tr.Register("s1", Handle{})

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	if tr.Wait(ctx) {
		t.Fatal("Wait() = true with a live session, want false")
	}

	unregister()
	if !tr.Wait(t.Context()) {
		t.Fatal("Wait() = false after drain, want true")
	}
}
