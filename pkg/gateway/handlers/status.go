package handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/voxbridge/voxbridge/pkg/core/speech"
	"github.com/voxbridge/voxbridge/pkg/gateway/config"
	"github.com/voxbridge/voxbridge/pkg/gateway/userstore"
)

// StatusHandler aggregates dependency health into one system status.
// Concurrent requests share a single in-flight voice probe.
type StatusHandler struct {
	Config      config.Config
	LLMProvider string
	Speech      speech.Provider
	Users       *userstore.Store

	probes singleflight.Group
}

type dependencyStatus struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type systemStatusResponse struct {
	Status   string           `json:"status"`
	Env      string           `json:"env"`
	LLM      dependencyStatus `json:"llm"`
	Voice    dependencyStatus `json:"voice"`
	Database dependencyStatus `json:"database"`
	Tags     []string         `json:"tags"`
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	llmStatus := dependencyStatus{Status: "ok", Detail: h.LLMProvider}
	voiceStatus := h.voiceStatus(r.Context())
	dbStatus := h.databaseStatus(r.Context())

	overall := "ok"
	if voiceStatus.Status == "unhealthy" || dbStatus.Status == "unhealthy" {
		overall = "degraded"
	}

	writeJSON(w, http.StatusOK, systemStatusResponse{
		Status:   overall,
		Env:      h.Config.Env,
		LLM:      llmStatus,
		Voice:    voiceStatus,
		Database: dbStatus,
		Tags:     []string{"gateway", "voxbridge"},
	})
}

func (h *StatusHandler) voiceStatus(ctx context.Context) dependencyStatus {
	if _, ok := h.Speech.(*speech.Disabled); ok {
		return dependencyStatus{Status: "disabled"}
	}

	v, err, _ := h.probes.Do("voice", func() (any, error) {
		timeout := h.Config.HealthTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return h.Speech.HealthCheck(probeCtx)
	})
	if err != nil {
		return dependencyStatus{Status: "unhealthy", Detail: err.Error()}
	}
	if healthy, _ := v.(bool); !healthy {
		return dependencyStatus{Status: "unhealthy"}
	}
	return dependencyStatus{Status: "ok"}
}

func (h *StatusHandler) databaseStatus(ctx context.Context) dependencyStatus {
	if h.Users == nil {
		return dependencyStatus{Status: "disabled"}
	}
	if err := h.Users.Ping(ctx); err != nil {
		return dependencyStatus{Status: "unhealthy", Detail: err.Error()}
	}
	return dependencyStatus{Status: "ok"}
}
