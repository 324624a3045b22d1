package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/commwatch/commwatch/internal/config"
	"github.com/commwatch/commwatch/internal/logger"
	"github.com/commwatch/commwatch/internal/service"
)

// Pinger reports storage connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth    service.AuthService
	report  service.ReportService
	group   service.GroupService
	forward service.ForwardService
	stats   service.StatsService
	health  Pinger
	cfg     *config.Config
}

func New(auth service.AuthService, report service.ReportService, group service.GroupService, forward service.ForwardService, stats service.StatsService, health Pinger, cfg *config.Config) *Handler {
	return &Handler{auth, report, group, forward, stats, health, cfg}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
