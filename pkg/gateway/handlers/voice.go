package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/core/speech"
)

// Largest accepted decoded audio payload.
const maxAudioBytes = 10 << 20

// VoiceHandler serves the speech REST surface over the configured speech
// provider.
type VoiceHandler struct {
	Provider      speech.Provider
	HealthTimeout time.Duration
	SpeechTimeout time.Duration
}

type transcribeRequest struct {
	Audio struct {
		AudioB64     string `json:"audio_b64"`
		SampleRateHz int    `json:"sample_rate_hz"`
	} `json:"audio"`
	Language  string `json:"language,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type synthesizeRequest struct {
	Text         string `json:"text"`
	Language     string `json:"language,omitempty"`
	Voice        string `json:"voice,omitempty"`
	RequestID    string `json:"request_id,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
}

type synthesizeResponse struct {
	RequestID string `json:"request_id"`
	Provider  string `json:"provider"`
	Voice     string `json:"voice"`
	MIMEType  string `json:"mime_type"`
	AudioB64  string `json:"audio_b64"`
}

func (h VoiceHandler) disabled() bool {
	_, ok := h.Provider.(*speech.Disabled)
	return ok
}

// Health handles GET /v1/voice/health.
func (h VoiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.disabled() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	ctx := r.Context()
	if h.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.HealthTimeout)
		defer cancel()
	}

	ok, err := h.Provider.HealthCheck(ctx)
	status := "ok"
	if err != nil || !ok {
		status = "unhealthy"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// Transcribe handles POST /v1/voice/transcribe. The body carries base64
// PCM16 mono samples that are wrapped into a canonical WAV container
// before hitting the provider.
func (h VoiceHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	if h.disabled() {
		transcript, err := h.Provider.Transcribe(r.Context(), speech.TranscribeRequest{
			SampleRateHz: req.Audio.SampleRateHz,
			Language:     req.Language,
			RequestID:    requestID,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, transcript)
		return
	}

	pcm, err := base64.StdEncoding.DecodeString(req.Audio.AudioB64)
	if err != nil {
		writeError(w, r, core.NewInvalidRequestError("audio_b64 is not valid base64"))
		return
	}
	if len(pcm) == 0 {
		writeError(w, r, core.NewInvalidRequestError("audio payload is empty"))
		return
	}
	if len(pcm) > maxAudioBytes {
		writeError(w, r, core.NewInvalidRequestError("audio payload exceeds 10MB"))
		return
	}
	if len(pcm)%2 != 0 {
		writeError(w, r, core.NewInvalidRequestError("audio payload is not PCM16 (odd byte count)"))
		return
	}
	if req.Audio.SampleRateHz <= 0 {
		writeError(w, r, core.NewInvalidRequestError("sample_rate_hz must be > 0"))
		return
	}

	ctx := r.Context()
	if h.SpeechTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.SpeechTimeout)
		defer cancel()
	}

	transcript, err := h.Provider.Transcribe(ctx, speech.TranscribeRequest{
		WAV:          speech.WrapPCMInWAV(pcm, req.Audio.SampleRateHz),
		SampleRateHz: req.Audio.SampleRateHz,
		Language:     req.Language,
		RequestID:    requestID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transcript)
}

// Voices handles GET /v1/voice/voices. Provider failures degrade to an
// empty list.
func (h VoiceHandler) Voices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.SpeechTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.SpeechTimeout)
		defer cancel()
	}

	voices, err := h.Provider.ListVoices(ctx)
	if err != nil || voices == nil {
		voices = []speech.Voice{}
	}
	writeJSON(w, http.StatusOK, voices)
}

// Synthesize handles POST /v1/voice/synthesize.
func (h VoiceHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Text == "" {
		writeError(w, r, core.NewInvalidRequestError("text is required"))
		return
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx := r.Context()
	if h.SpeechTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.SpeechTimeout)
		defer cancel()
	}

	syn, err := h.Provider.Synthesize(ctx, speech.SynthesizeRequest{
		Text:         req.Text,
		Language:     req.Language,
		Voice:        req.Voice,
		RequestID:    requestID,
		OutputFormat: req.OutputFormat,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, synthesizeResponse{
		RequestID: syn.RequestID,
		Provider:  syn.Provider,
		Voice:     syn.Voice,
		MIMEType:  syn.MIMEType,
		AudioB64:  base64.StdEncoding.EncodeToString(syn.Audio),
	})
}
