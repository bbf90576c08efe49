package speech

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const (
	disabledSampleRateHz = 16000
	disabledDurationMS   = 200
)

// Disabled is the speech provider used when voice integration is turned off
// by configuration. It returns well-formed placeholder results so downstream
// pipelines can be exercised without a live dependency.
type Disabled struct{}

// NewDisabled creates the disabled speech provider.
func NewDisabled() *Disabled {
	return &Disabled{}
}

// Name returns the provider identifier.
func (*Disabled) Name() string {
	return "disabled"
}

// HealthCheck always reports unhealthy.
func (*Disabled) HealthCheck(ctx context.Context) (bool, error) {
	return false, nil
}

// Transcribe returns an empty-text transcript tagged with the disabled
// provider name.
func (d *Disabled) Transcribe(ctx context.Context, req TranscribeRequest) (*Transcript, error) {
	rid := req.RequestID
	if rid == "" {
		rid = uuid.NewString()
	}
	return &Transcript{
		RequestID: rid,
		Provider:  d.Name(),
		Text:      "",
		Language:  req.Language,
		Segments:  []Segment{},
		Raw:       json.RawMessage(`{"status":"disabled"}`),
	}, nil
}

// ListVoices returns an empty list.
func (*Disabled) ListVoices(ctx context.Context) ([]Voice, error) {
	return []Voice{}, nil
}

// Synthesize returns a short silent WAV so callers can exercise the audio
// pipeline locally.
func (d *Disabled) Synthesize(ctx context.Context, req SynthesizeRequest) (*Synthesis, error) {
	rid := req.RequestID
	if rid == "" {
		rid = uuid.NewString()
	}
	return &Synthesis{
		RequestID: rid,
		Provider:  d.Name(),
		Voice:     req.Voice,
		MIMEType:  "audio/wav",
		Audio:     SilentWAV(disabledSampleRateHz, disabledDurationMS),
	}, nil
}
