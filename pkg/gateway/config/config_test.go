package config

import (
	"strings"
	"testing"
	"time"
)

func clearAll(t *testing.T) {
	t.Helper()
	keys := []string{
		"VOX_ADDR", "VOX_ENV", "VOX_LLM_PROVIDER", "VOX_LLM_MODEL",
		"VOX_OPENAI_API_KEY", "VOX_OPENAI_BASE_URL", "VOX_GEMINI_API_KEY",
		"VOX_DATABASE_URL", "VOX_USE_VOICE_LIVE", "VOX_VOICE_LIVE_API_KEY",
		"VOX_VOICE_LIVE_REGION", "VOX_VOICE_LIVE_BASE_URL",
		"VOX_VOICE_LIVE_STT_URL", "VOX_VOICE_LIVE_TTS_URL",
		"VOX_VOICE_LIVE_VOICE", "VOX_VOICE_LIVE_REALTIME_MODEL",
		"VOX_VOICE_LIVE_REALTIME_API_VERSION", "VOX_VOICE_LIVE_AUTH_IN_QUERY",
		"VOX_ENABLE_VOICE_STREAM_WS", "VOX_HEALTH_TIMEOUT",
		"VOX_SPEECH_TIMEOUT", "VOX_GENERATE_TIMEOUT",
		"VOX_READ_HEADER_TIMEOUT", "VOX_SHUTDOWN_GRACE",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	clearAll(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.LLMProvider != "dummy" {
		t.Errorf("LLMProvider = %q, want %q", cfg.LLMProvider, "dummy")
	}
	if cfg.VoiceLiveRealtimeModel != "gpt-4.1" {
		t.Errorf("VoiceLiveRealtimeModel = %q, want %q", cfg.VoiceLiveRealtimeModel, "gpt-4.1")
	}
	if cfg.UseVoiceLive || cfg.EnableVoiceStreamWS {
		t.Error("voice features enabled by default, want disabled")
	}
	if cfg.HealthTimeout != 5*time.Second {
		t.Errorf("HealthTimeout = %v, want 5s", cfg.HealthTimeout)
	}
	if cfg.GenerateTimeout != 30*time.Second {
		t.Errorf("GenerateTimeout = %v, want 30s", cfg.GenerateTimeout)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	clearAll(t)
	t.Setenv("VOX_ADDR", ":9000")
	t.Setenv("VOX_LLM_PROVIDER", "openai")
	t.Setenv("VOX_OPENAI_API_KEY", "sk-test")
	t.Setenv("VOX_GENERATE_TIMEOUT", "45s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":9000")
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("LLMProvider = %q, want %q", cfg.LLMProvider, "openai")
	}
	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("OpenAIAPIKey = %q, want %q", cfg.OpenAIAPIKey, "sk-test")
	}
	if cfg.GenerateTimeout != 45*time.Second {
		t.Errorf("GenerateTimeout = %v, want 45s", cfg.GenerateTimeout)
	}
}

func TestLoadFromEnvVoiceLiveValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "voice live without key",
			env:     map[string]string{"VOX_USE_VOICE_LIVE": "true", "VOX_VOICE_LIVE_REGION": "eastus"},
			wantErr: "VOX_VOICE_LIVE_API_KEY",
		},
		{
			name:    "voice live without endpoint or region",
			env:     map[string]string{"VOX_USE_VOICE_LIVE": "true", "VOX_VOICE_LIVE_API_KEY": "k"},
			wantErr: "VOX_VOICE_LIVE_BASE_URL or VOX_VOICE_LIVE_REGION",
		},
		{
			name:    "stream ws without voice live",
			env:     map[string]string{"VOX_ENABLE_VOICE_STREAM_WS": "true"},
			wantErr: "VOX_ENABLE_VOICE_STREAM_WS requires",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAll(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			if err == nil {
				t.Fatal("LoadFromEnv() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("LoadFromEnv() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnvVoiceLiveEnabled(t *testing.T) {
	clearAll(t)
	t.Setenv("VOX_USE_VOICE_LIVE", "on")
	t.Setenv("VOX_VOICE_LIVE_API_KEY", "secret")
	t.Setenv("VOX_VOICE_LIVE_BASE_URL", "https://agent.example.com")
	t.Setenv("VOX_ENABLE_VOICE_STREAM_WS", "yes")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if !cfg.UseVoiceLive || !cfg.EnableVoiceStreamWS {
		t.Fatalf("voice flags = (%v, %v), want both true", cfg.UseVoiceLive, cfg.EnableVoiceStreamWS)
	}
}

func TestLoadFromEnvBadDuration(t *testing.T) {
	clearAll(t)
	t.Setenv("VOX_HEALTH_TIMEOUT", "not-a-duration")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	// Unparseable values fall back to the default.
	if cfg.HealthTimeout != 5*time.Second {
		t.Fatalf("HealthTimeout = %v, want 5s fallback", cfg.HealthTimeout)
	}
}
