// Package speech provides the provider-agnostic speech (STT/TTS) interface
// and the normalized transcript model.
package speech

import (
	"context"
	"encoding/json"
)

// Provider is the interface for speech backends.
type Provider interface {
	// Name returns the stable provider identifier (e.g. "voicelive").
	Name() string

	// HealthCheck reports whether the backend is reachable and healthy.
	HealthCheck(ctx context.Context) (bool, error)

	// Transcribe converts canonical WAV audio to a normalized transcript.
	Transcribe(ctx context.Context, req TranscribeRequest) (*Transcript, error)

	// ListVoices returns the voices available for synthesis.
	ListVoices(ctx context.Context) ([]Voice, error)

	// Synthesize converts text to audio.
	Synthesize(ctx context.Context, req SynthesizeRequest) (*Synthesis, error)
}

// RealtimeURLBuilder is implemented by providers that support realtime
// bridging. A provider without it makes voice streaming unsupported.
type RealtimeURLBuilder interface {
	// BuildRealtimeURL returns the deterministic upstream WebSocket URL for
	// the given model and API version.
	BuildRealtimeURL(model, apiVersion string) (string, error)
}

// TranscribeRequest is a speech-to-text request over canonical WAV bytes.
type TranscribeRequest struct {
	WAV          []byte
	SampleRateHz int
	Language     string
	RequestID    string
}

// Segment is one timed portion of a transcript.
type Segment struct {
	StartMS    int64   `json:"start_ms,omitempty"`
	EndMS      int64   `json:"end_ms,omitempty"`
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcript is the normalized result of a speech-to-text call. It is never
// mutated after creation.
type Transcript struct {
	RequestID  string          `json:"request_id"`
	Provider   string          `json:"provider"`
	Text       string          `json:"text"`
	Language   string          `json:"language,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	Segments   []Segment       `json:"segments"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

// Voice describes one synthesis voice.
type Voice struct {
	Name     string `json:"name"`
	Locale   string `json:"locale,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// SynthesizeRequest is a text-to-speech request.
type SynthesizeRequest struct {
	Text         string
	Language     string
	Voice        string
	RequestID    string
	OutputFormat string
}

// Synthesis is the result of a text-to-speech call.
type Synthesis struct {
	RequestID string
	Provider  string
	Voice     string
	MIMEType  string
	Audio     []byte
}
