// Package config loads gateway configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the full runtime configuration of the gateway. All values come
// from VOX_-prefixed environment variables; LoadFromEnv validates the
// combinations that would otherwise fail at request time.
type Config struct {
	Addr string
	Env  string

	// Default text provider and model used when a request names none.
	LLMProvider string
	LLMModel    string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string

	// User store. Empty means the /v1/users endpoints report unavailable.
	DatabaseURL string

	// Azure Voice Live speech stack.
	UseVoiceLive                bool
	VoiceLiveAPIKey             string
	VoiceLiveRegion             string
	VoiceLiveBaseURL            string
	VoiceLiveSTTURL             string
	VoiceLiveTTSURL             string
	VoiceLiveVoice              string
	VoiceLiveRealtimeModel      string
	VoiceLiveRealtimeAPIVersion string
	VoiceLiveAuthInQuery        bool

	// Realtime voice relay endpoint toggle.
	EnableVoiceStreamWS bool

	HealthTimeout   time.Duration
	SpeechTimeout   time.Duration
	GenerateTimeout time.Duration

	ReadHeaderTimeout   time.Duration
	ShutdownGracePeriod time.Duration
}

// LoadFromEnv reads the full configuration from the process environment.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                        envOr("VOX_ADDR", ":8080"),
		Env:                         envOr("VOX_ENV", "development"),
		LLMProvider:                 envOr("VOX_LLM_PROVIDER", "dummy"),
		LLMModel:                    strings.TrimSpace(os.Getenv("VOX_LLM_MODEL")),
		OpenAIAPIKey:                strings.TrimSpace(os.Getenv("VOX_OPENAI_API_KEY")),
		OpenAIBaseURL:               strings.TrimSpace(os.Getenv("VOX_OPENAI_BASE_URL")),
		GeminiAPIKey:                strings.TrimSpace(os.Getenv("VOX_GEMINI_API_KEY")),
		DatabaseURL:                 strings.TrimSpace(os.Getenv("VOX_DATABASE_URL")),
		UseVoiceLive:                envBoolOr("VOX_USE_VOICE_LIVE", false),
		VoiceLiveAPIKey:             strings.TrimSpace(os.Getenv("VOX_VOICE_LIVE_API_KEY")),
		VoiceLiveRegion:             strings.TrimSpace(os.Getenv("VOX_VOICE_LIVE_REGION")),
		VoiceLiveBaseURL:            strings.TrimSpace(os.Getenv("VOX_VOICE_LIVE_BASE_URL")),
		VoiceLiveSTTURL:             strings.TrimSpace(os.Getenv("VOX_VOICE_LIVE_STT_URL")),
		VoiceLiveTTSURL:             strings.TrimSpace(os.Getenv("VOX_VOICE_LIVE_TTS_URL")),
		VoiceLiveVoice:              strings.TrimSpace(os.Getenv("VOX_VOICE_LIVE_VOICE")),
		VoiceLiveRealtimeModel:      envOr("VOX_VOICE_LIVE_REALTIME_MODEL", "gpt-4.1"),
		VoiceLiveRealtimeAPIVersion: envOr("VOX_VOICE_LIVE_REALTIME_API_VERSION", "2025-05-01-preview"),
		VoiceLiveAuthInQuery:        envBoolOr("VOX_VOICE_LIVE_AUTH_IN_QUERY", false),
		EnableVoiceStreamWS:         envBoolOr("VOX_ENABLE_VOICE_STREAM_WS", false),
		HealthTimeout:               envDurationOr("VOX_HEALTH_TIMEOUT", 5*time.Second),
		SpeechTimeout:               envDurationOr("VOX_SPEECH_TIMEOUT", 15*time.Second),
		GenerateTimeout:             envDurationOr("VOX_GENERATE_TIMEOUT", 30*time.Second),
		ReadHeaderTimeout:           envDurationOr("VOX_READ_HEADER_TIMEOUT", 10*time.Second),
		ShutdownGracePeriod:         envDurationOr("VOX_SHUTDOWN_GRACE", 30*time.Second),
	}

	if cfg.UseVoiceLive {
		if cfg.VoiceLiveAPIKey == "" {
			return Config{}, fmt.Errorf("VOX_VOICE_LIVE_API_KEY must be set when VOX_USE_VOICE_LIVE is enabled")
		}
		if cfg.VoiceLiveBaseURL == "" && cfg.VoiceLiveRegion == "" {
			return Config{}, fmt.Errorf("VOX_VOICE_LIVE_BASE_URL or VOX_VOICE_LIVE_REGION must be set when VOX_USE_VOICE_LIVE is enabled")
		}
	}
	if cfg.EnableVoiceStreamWS && !cfg.UseVoiceLive {
		return Config{}, fmt.Errorf("VOX_ENABLE_VOICE_STREAM_WS requires VOX_USE_VOICE_LIVE")
	}

	if cfg.HealthTimeout <= 0 {
		return Config{}, fmt.Errorf("VOX_HEALTH_TIMEOUT must be > 0")
	}
	if cfg.SpeechTimeout <= 0 {
		return Config{}, fmt.Errorf("VOX_SPEECH_TIMEOUT must be > 0")
	}
	if cfg.GenerateTimeout <= 0 {
		return Config{}, fmt.Errorf("VOX_GENERATE_TIMEOUT must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("VOX_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("VOX_SHUTDOWN_GRACE must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
