// Package relay bridges client WebSocket connections to the upstream
// realtime voice service. Frames pass through in both directions without
// inspection; payload type and order are preserved.
package relay

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/voxbridge/voxbridge/pkg/core/speech"
	"github.com/voxbridge/voxbridge/pkg/gateway/metrics"
)

// Subprotocol requested from the upstream realtime endpoint.
const Subprotocol = "realtime"

// Close codes sent to the client.
const (
	// CloseUnavailable signals the feature is disabled or unsupported.
	CloseUnavailable = websocket.CloseTryAgainLater // 1013
	// CloseInternal signals an upstream or configuration failure.
	CloseInternal = websocket.CloseInternalServerErr // 1011
)

// DialFunc dials the upstream realtime endpoint. Tests substitute it to
// avoid real upstream connections.
type DialFunc func(ctx context.Context, url string, header http.Header) (*websocket.Conn, error)

// Config controls relay behavior.
type Config struct {
	// Enabled gates the endpoint; a disabled relay closes every client
	// with CloseUnavailable before dialing anything.
	Enabled bool

	// ForceQueryAuth skips header auth and always dials with the key in
	// the query string.
	ForceQueryAuth bool

	APIKey     string
	Model      string
	APIVersion string
}

// Relay owns one upstream endpoint and serves any number of concurrent
// client sessions against it.
type Relay struct {
	cfg     Config
	builder speech.RealtimeURLBuilder
	dial    DialFunc
	tracker *Tracker
	logger  *slog.Logger
	metrics *metrics.Metrics

	upgrader websocket.Upgrader
}

// New builds a relay. builder may be nil when no realtime-capable speech
// provider is configured; such a relay refuses sessions with
// CloseUnavailable. A nil dial uses the default WebSocket dialer.
func New(cfg Config, builder speech.RealtimeURLBuilder, tracker *Tracker, logger *slog.Logger, m *metrics.Metrics) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Relay{
		cfg:     cfg,
		builder: builder,
		dial:    defaultDial,
		tracker: tracker,
		logger:  logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	return r
}

// SetDial overrides the upstream dialer.
func (rl *Relay) SetDial(dial DialFunc) {
	if dial != nil {
		rl.dial = dial
	}
}

func defaultDial(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
	d := websocket.Dialer{
		Subprotocols:     []string{Subprotocol},
		HandshakeTimeout: 10 * time.Second,
	}
	conn, resp, err := d.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// ServeHTTP upgrades the client connection and runs the bidirectional
// bridge until either side disconnects.
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	client, err := rl.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		return
	}
	defer client.Close()

	sessionID := "relay_" + uuid.NewString()
	logger := rl.logger.With("relay_session", sessionID)

	if !rl.cfg.Enabled || rl.builder == nil {
		closeWith(client, CloseUnavailable, "voice stream unavailable")
		return
	}
	if rl.cfg.APIKey == "" {
		closeWith(client, CloseInternal, "voice stream misconfigured")
		return
	}

	upstream, err := rl.connectUpstream(r.Context(), logger)
	if err != nil {
		logger.Error("upstream connect failed", "error", err)
		if rl.metrics != nil {
			rl.metrics.RecordError("relay", "relay_error")
		}
		closeWith(client, CloseInternal, "upstream unavailable")
		return
	}
	defer upstream.Close()

	rl.run(r.Context(), sessionID, logger, client, upstream)
}

// connectUpstream dials with the api-key header first, then falls back to
// query-string auth. ForceQueryAuth skips the header attempt entirely.
func (rl *Relay) connectUpstream(ctx context.Context, logger *slog.Logger) (*websocket.Conn, error) {
	url, err := rl.builder.BuildRealtimeURL(rl.cfg.Model, rl.cfg.APIVersion)
	if err != nil {
		return nil, err
	}

	if !rl.cfg.ForceQueryAuth {
		header := http.Header{}
		header.Set("api-key", rl.cfg.APIKey)
		conn, err := rl.dial(ctx, url, header)
		if err == nil {
			return conn, nil
		}
		logger.Debug("header auth dial failed, retrying with query auth", "error", err)
	}

	return rl.dial(ctx, url+"&api-key="+rl.cfg.APIKey, nil)
}

func (rl *Relay) run(ctx context.Context, sessionID string, logger *slog.Logger, client, upstream *websocket.Conn) {
	start := time.Now()
	status := "completed"
	if rl.metrics != nil {
		rl.metrics.RecordRelayStart()
		defer func() {
			rl.metrics.RecordRelayEnd(status, time.Since(start))
		}()
	}

	if rl.tracker != nil {
		unregister := rl.tracker.Register(sessionID, Handle{
			Cancel: func() {
				client.Close()
				upstream.Close()
			},
		})
		defer unregister()
	}

	g, _ := errgroup.WithContext(ctx)

	// Client to upstream. A client disconnect is the normal way a session
	// ends; closing the upstream conn unblocks the other pump.
	g.Go(func() error {
		defer upstream.Close()
		for {
			mt, payload, err := client.ReadMessage()
			if err != nil {
				return nil
			}
			if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
				continue
			}
			if err := upstream.WriteMessage(mt, payload); err != nil {
				return nil
			}
			if rl.metrics != nil {
				rl.metrics.RecordRelayFrame("inbound")
			}
		}
	})

	// Upstream to client. An upstream failure surfaces to the client as
	// an internal-error close.
	g.Go(func() error {
		defer client.Close()
		for {
			mt, payload, err := upstream.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					closeWith(client, CloseInternal, "upstream closed")
				}
				return nil
			}
			if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
				continue
			}
			if err := client.WriteMessage(mt, payload); err != nil {
				return nil
			}
			if rl.metrics != nil {
				rl.metrics.RecordRelayFrame("outbound")
			}
		}
	})

	_ = g.Wait()
	logger.Info("relay session ended", "duration_ms", time.Since(start).Milliseconds())
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
