// Package server assembles the gateway: providers, stores, handlers,
// middleware, and routes.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/core/speech"
	"github.com/voxbridge/voxbridge/pkg/core/speech/voicelive"
	"github.com/voxbridge/voxbridge/pkg/gateway/config"
	"github.com/voxbridge/voxbridge/pkg/gateway/handlers"
	"github.com/voxbridge/voxbridge/pkg/gateway/metrics"
	"github.com/voxbridge/voxbridge/pkg/gateway/mw"
	"github.com/voxbridge/voxbridge/pkg/gateway/orchestrator"
	"github.com/voxbridge/voxbridge/pkg/gateway/relay"
	"github.com/voxbridge/voxbridge/pkg/gateway/session"
	"github.com/voxbridge/voxbridge/pkg/gateway/upstream"
	"github.com/voxbridge/voxbridge/pkg/gateway/userstore"
)

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	upstreams  upstream.Factory
	httpClient *http.Client

	sessions *session.Store
	users    *userstore.Store
	speech   speech.Provider
	metrics  *metrics.Metrics
	tracker  *relay.Tracker
}

// New builds a fully wired server. The user store may be nil when no
// database is configured.
func New(cfg config.Config, users *userstore.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	speechProvider, err := newSpeechProvider(cfg, httpClient)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		upstreams: upstream.Factory{
			HTTPClient:    httpClient,
			OpenAIAPIKey:  cfg.OpenAIAPIKey,
			OpenAIBaseURL: cfg.OpenAIBaseURL,
			GeminiAPIKey:  cfg.GeminiAPIKey,
		},
		httpClient: httpClient,
		sessions:   session.NewStore(),
		users:      users,
		speech:     speechProvider,
		metrics:    metrics.New("voxbridge"),
		tracker:    relay.NewTracker(),
	}

	s.routes()
	return s, nil
}

func newSpeechProvider(cfg config.Config, httpClient *http.Client) (speech.Provider, error) {
	if !cfg.UseVoiceLive {
		return speech.NewDisabled(), nil
	}
	return voicelive.New(voicelive.Options{
		APIKey:         cfg.VoiceLiveAPIKey,
		BaseURL:        cfg.VoiceLiveBaseURL,
		Region:         cfg.VoiceLiveRegion,
		STTURL:         cfg.VoiceLiveSTTURL,
		TTSURL:         cfg.VoiceLiveTTSURL,
		Voice:          cfg.VoiceLiveVoice,
		HTTPClient:     httpClient,
		HealthTimeout:  cfg.HealthTimeout,
		RequestTimeout: cfg.SpeechTimeout,
	})
}

func (s *Server) routes() {
	s.mux.Handle("GET /healthz", handlers.HealthHandler{})
	s.mux.Handle("GET /readyz", handlers.ReadyHandler{Config: s.cfg})
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	sessions := handlers.SessionsHandler{Store: s.sessions}
	s.mux.HandleFunc("POST /v1/sessions", sessions.Create)
	s.mux.HandleFunc("GET /v1/sessions/{id}", sessions.Get)
	s.mux.HandleFunc("DELETE /v1/sessions/{id}", sessions.Delete)
	s.mux.HandleFunc("GET /v1/sessions/{id}/messages", sessions.ListMessages)
	s.mux.HandleFunc("POST /v1/sessions/{id}/messages", sessions.AddMessage)

	orch := orchestrator.New(s.sessions, s.defaultProvider(), s.logger)
	s.mux.Handle("POST /v1/interactions", handlers.InteractionsHandler{
		Orchestrator: orch,
		Metrics:      s.metrics,
		Provider:     s.cfg.LLMProvider,
	})

	llm := handlers.LLMHandler{
		Factory:         s.upstreams,
		DefaultProvider: s.cfg.LLMProvider,
		DefaultModel:    s.cfg.LLMModel,
		GenerateTimeout: s.cfg.GenerateTimeout,
		Metrics:         s.metrics,
	}
	s.mux.HandleFunc("GET /v1/llm/health", llm.Health)
	s.mux.HandleFunc("GET /v1/llm/models", llm.Models)
	s.mux.HandleFunc("POST /v1/llm/generate", llm.Generate)
	s.mux.HandleFunc("POST /v1/llm/stream", llm.Stream)

	voice := handlers.VoiceHandler{
		Provider:      s.speech,
		HealthTimeout: s.cfg.HealthTimeout,
		SpeechTimeout: s.cfg.SpeechTimeout,
	}
	s.mux.HandleFunc("GET /v1/voice/health", voice.Health)
	s.mux.HandleFunc("POST /v1/voice/transcribe", voice.Transcribe)
	s.mux.HandleFunc("GET /v1/voice/voices", voice.Voices)
	s.mux.HandleFunc("POST /v1/voice/synthesize", voice.Synthesize)
	s.mux.Handle("GET /v1/voice/stream", s.newRelay())

	s.mux.Handle("POST /v1/transcripts/normalize", handlers.TranscriptsHandler{})

	users := handlers.UsersHandler{Store: s.users}
	s.mux.HandleFunc("GET /v1/users", users.List)
	s.mux.HandleFunc("POST /v1/users", users.Create)

	s.mux.Handle("GET /v1/status", &handlers.StatusHandler{
		Config:      s.cfg,
		LLMProvider: s.cfg.LLMProvider,
		Speech:      s.speech,
		Users:       s.users,
	})

	s.mux.Handle("/", handlers.NotFoundHandler{})
}

// defaultProvider resolves the configured text provider for the
// orchestrator. Misconfiguration surfaces at startup, not per request.
func (s *Server) defaultProvider() core.TextProvider {
	p, err := s.upstreams.New(context.Background(), s.cfg.LLMProvider, s.cfg.LLMModel)
	if err != nil {
		s.logger.Error("default provider unavailable, falling back to dummy",
			"provider", s.cfg.LLMProvider, "error", err)
		p, _ = s.upstreams.New(context.Background(), "dummy", "")
	}
	return p
}

func (s *Server) newRelay() *relay.Relay {
	var builder speech.RealtimeURLBuilder
	if b, ok := s.speech.(speech.RealtimeURLBuilder); ok {
		builder = b
	}
	return relay.New(relay.Config{
		Enabled:        s.cfg.EnableVoiceStreamWS,
		ForceQueryAuth: s.cfg.VoiceLiveAuthInQuery,
		APIKey:         s.cfg.VoiceLiveAPIKey,
		Model:          s.cfg.VoiceLiveRealtimeModel,
		APIVersion:     s.cfg.VoiceLiveRealtimeAPIVersion,
	}, builder, s.tracker, s.logger, s.metrics)
}

// Tracker exposes the relay session tracker for shutdown coordination.
func (s *Server) Tracker() *relay.Tracker {
	return s.tracker
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.Instrument(s.metrics, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
