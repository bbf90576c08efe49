package handlers

import (
	"net/http"

	"github.com/voxbridge/voxbridge/pkg/gateway/config"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Config config.Config
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK     bool     `json:"ok"`
		Env    string   `json:"env"`
		Issues []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 4)
	if h.Config.UseVoiceLive && h.Config.VoiceLiveAPIKey == "" {
		issues = append(issues, "voice live enabled but no api key configured")
	}
	if h.Config.EnableVoiceStreamWS && !h.Config.UseVoiceLive {
		issues = append(issues, "voice stream ws enabled without voice live")
	}
	if h.Config.HealthTimeout <= 0 || h.Config.SpeechTimeout <= 0 || h.Config.GenerateTimeout <= 0 {
		issues = append(issues, "timeouts must be > 0")
	}

	ok := len(issues) == 0
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, readyResp{OK: ok, Env: h.Config.Env, Issues: issues})
}
