package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"sweetshop/internal/model"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type readiness struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// Ready runs every registered check and answers 503 if any of them fails.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	report := readiness{Status: "ok", Dependencies: make(map[string]string, len(names))}
	status := http.StatusOK

	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			report.Dependencies[name] = err.Error()
			report.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		report.Dependencies[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{Success: status == http.StatusOK, Data: report})
}
