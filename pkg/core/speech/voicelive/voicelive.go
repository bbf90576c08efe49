// Package voicelive implements the speech provider for the Azure-style
// Voice Live service: REST speech-to-text, text-to-speech, voice listing,
// and realtime WebSocket URL construction.
package voicelive

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voxbridge/voxbridge/pkg/core"
	"github.com/voxbridge/voxbridge/pkg/core/speech"
)

const (
	// DefaultRealtimeAPIVersion is used when no api-version override is given.
	DefaultRealtimeAPIVersion = "2025-05-01-preview"

	// subscriptionKeyHeader authenticates REST calls.
	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

	defaultVoice    = "en-US-JennyNeural"
	defaultLanguage = "en-US"

	defaultHealthTimeout  = 5 * time.Second
	defaultRequestTimeout = 15 * time.Second
)

// Options configures the Voice Live provider.
type Options struct {
	APIKey  string
	BaseURL string

	// Region derives the STT/TTS endpoints when they are not set explicitly.
	Region string

	STTURL string
	TTSURL string

	Voice string

	HTTPClient     *http.Client
	HealthTimeout  time.Duration
	RequestTimeout time.Duration
}

// Provider implements speech.Provider and speech.RealtimeURLBuilder.
type Provider struct {
	apiKey  string
	baseURL string

	sttURL    string
	ttsURL    string
	voicesURL string

	voice string

	httpClient     *http.Client
	healthTimeout  time.Duration
	requestTimeout time.Duration
}

// New creates a Voice Live provider. The API key and base URL are required;
// missing values fail here so an enabled-but-misconfigured deployment dies
// at startup rather than on first use.
func New(opts Options) (*Provider, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if apiKey == "" {
		return nil, core.NewConfigurationError("VOX_VOICE_LIVE_API_KEY is not set")
	}
	if baseURL == "" {
		return nil, core.NewConfigurationError("VOX_VOICE_LIVE_BASE_URL is not set")
	}

	p := &Provider{
		apiKey:         apiKey,
		baseURL:        baseURL,
		sttURL:         strings.TrimSpace(opts.STTURL),
		ttsURL:         strings.TrimSpace(opts.TTSURL),
		voice:          strings.TrimSpace(opts.Voice),
		httpClient:     opts.HTTPClient,
		healthTimeout:  opts.HealthTimeout,
		requestTimeout: opts.RequestTimeout,
	}
	if region := strings.TrimSpace(opts.Region); region != "" {
		if p.sttURL == "" {
			p.sttURL = fmt.Sprintf("https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1", region)
		}
		if p.ttsURL == "" {
			p.ttsURL = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region)
		}
		p.voicesURL = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/voices/list", region)
	}
	if p.voicesURL == "" && p.ttsURL != "" {
		p.voicesURL = strings.TrimSuffix(p.ttsURL, "/v1") + "/voices/list"
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{}
	}
	if p.healthTimeout <= 0 {
		p.healthTimeout = defaultHealthTimeout
	}
	if p.requestTimeout <= 0 {
		p.requestTimeout = defaultRequestTimeout
	}
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "voicelive"
}

// HealthCheck pings the base URL. Auth rejections (401/403) still prove the
// endpoint is reachable, so anything below 500 counts as healthy.
func (p *Provider) HealthCheck(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, core.NewUpstreamError(p.Name(), fmt.Sprintf("health check failed: %v", err), 0)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode < 500, nil
}

type sttResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	Offset            int64  `json:"Offset"`
	Duration          int64  `json:"Duration"`
	NBest             []struct {
		Confidence float64 `json:"Confidence"`
		Display    string  `json:"Display"`
	} `json:"NBest"`
}

// Transcribe posts canonical WAV audio to the STT endpoint.
func (p *Provider) Transcribe(ctx context.Context, req speech.TranscribeRequest) (*speech.Transcript, error) {
	if p.sttURL == "" {
		return nil, core.NewConfigurationError("no STT endpoint configured; set VOX_VOICE_LIVE_STT_URL or VOX_VOICE_LIVE_REGION")
	}

	ctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	endpoint := p.sttURL
	if lang := strings.TrimSpace(req.Language); lang != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "language=" + url.QueryEscape(lang)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(req.WAV))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set(subscriptionKeyHeader, p.apiKey)
	httpReq.Header.Set("Content-Type", "audio/wav")
	httpReq.Header.Set("Accept", "application/json")

	body, err := p.do(httpReq)
	if err != nil {
		return nil, err
	}

	var parsed sttResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, core.NewUpstreamError(p.Name(), "malformed STT payload", 0)
	}

	rid := req.RequestID
	if rid == "" {
		rid = uuid.NewString()
	}
	tr := &speech.Transcript{
		RequestID: rid,
		Provider:  p.Name(),
		Text:      parsed.DisplayText,
		Language:  req.Language,
		Segments:  []speech.Segment{},
		Raw:       json.RawMessage(body),
	}
	if tr.Text == "" && len(parsed.NBest) > 0 {
		tr.Text = parsed.NBest[0].Display
	}
	if len(parsed.NBest) > 0 {
		tr.Confidence = parsed.NBest[0].Confidence
	}
	if parsed.Duration > 0 {
		// Offsets arrive in 100ns ticks.
		tr.Segments = append(tr.Segments, speech.Segment{
			StartMS:    parsed.Offset / 10000,
			EndMS:      (parsed.Offset + parsed.Duration) / 10000,
			Text:       tr.Text,
			Confidence: tr.Confidence,
		})
	}
	return tr, nil
}

// ListVoices fetches the synthesis voice catalog.
func (p *Provider) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	if p.voicesURL == "" {
		return []speech.Voice{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.voicesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, p.apiKey)

	body, err := p.do(req)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		ShortName string `json:"ShortName"`
		Locale    string `json:"Locale"`
		Gender    string `json:"Gender"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, core.NewUpstreamError(p.Name(), "malformed voices payload", 0)
	}

	voices := make([]speech.Voice, 0, len(raw))
	for _, v := range raw {
		if v.ShortName == "" {
			continue
		}
		voices = append(voices, speech.Voice{
			Name:     v.ShortName,
			Locale:   v.Locale,
			Gender:   v.Gender,
			Provider: p.Name(),
		})
	}
	return voices, nil
}

// Synthesize posts SSML to the TTS endpoint.
func (p *Provider) Synthesize(ctx context.Context, req speech.SynthesizeRequest) (*speech.Synthesis, error) {
	if p.ttsURL == "" {
		return nil, core.NewConfigurationError("no TTS endpoint configured; set VOX_VOICE_LIVE_TTS_URL or VOX_VOICE_LIVE_REGION")
	}

	ctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = p.voice
	}
	if voice == "" {
		voice = defaultVoice
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = defaultLanguage
	}
	outputFormat, mimeType := resolveOutputFormat(req.OutputFormat)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.ttsURL, strings.NewReader(buildSSML(lang, voice, req.Text)))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set(subscriptionKeyHeader, p.apiKey)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", outputFormat)

	audio, err := p.do(httpReq)
	if err != nil {
		return nil, err
	}

	rid := req.RequestID
	if rid == "" {
		rid = uuid.NewString()
	}
	return &speech.Synthesis{
		RequestID: rid,
		Provider:  p.Name(),
		Voice:     voice,
		MIMEType:  mimeType,
		Audio:     audio,
	}, nil
}

// BuildRealtimeURL returns the upstream realtime WebSocket URL for the
// given model. The mapping is deterministic: the same inputs always produce
// the same URL.
func (p *Provider) BuildRealtimeURL(model, apiVersion string) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", core.NewInvalidRequestError("realtime model is required")
	}
	if strings.TrimSpace(apiVersion) == "" {
		apiVersion = DefaultRealtimeAPIVersion
	}

	wsBase := p.baseURL
	switch {
	case strings.HasPrefix(wsBase, "https://"):
		wsBase = "wss://" + strings.TrimPrefix(wsBase, "https://")
	case strings.HasPrefix(wsBase, "http://"):
		wsBase = "ws://" + strings.TrimPrefix(wsBase, "http://")
	}
	return fmt.Sprintf("%s/voice-live/realtime?api-version=%s&model=%s",
		wsBase, url.QueryEscape(apiVersion), url.QueryEscape(model)), nil
}

// do executes a request and returns the body, mapping non-2xx responses to
// upstream errors that carry the status code.
func (p *Provider) do(req *http.Request) ([]byte, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, core.NewUpstreamError(p.Name(), fmt.Sprintf("http request: %v", err), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, core.NewUpstreamError(p.Name(), fmt.Sprintf("read response: %v", err), resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 512 {
			msg = msg[:512]
		}
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return nil, core.NewUpstreamError(p.Name(), msg, resp.StatusCode)
	}
	return body, nil
}

func resolveOutputFormat(hint string) (format, mimeType string) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "mp3":
		return "audio-24khz-48kbitrate-mono-mp3", "audio/mpeg"
	default:
		return "riff-16khz-16bit-mono-pcm", "audio/wav"
	}
}

func buildSSML(lang, voice, text string) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))
	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice name='%s'>%s</voice></speak>`,
		lang, voice, escaped.String())
}
