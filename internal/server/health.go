package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Health status constants for health check responses.
const (
	healthStatusOK       = "ok"
	healthStatusNotReady = "not ready"
)

// HealthChecker provides the probe endpoints used by orchestration:
// liveness, readiness and a detailed variant with uptime and the
// integration capabilities.
type HealthChecker struct {
	// ready indicates whether the server is ready to receive traffic
	ready atomic.Bool
	// server gives health checks access to capabilities and registries
	server *Server
	// startTime tracks when the server started
	startTime time.Time
}

// NewHealthChecker creates a HealthChecker for a server. The server starts
// as ready.
func NewHealthChecker(s *Server) *HealthChecker {
	h := &HealthChecker{
		server:    s,
		startTime: time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse represents the JSON response for probe endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse provides comprehensive health information.
type DetailedHealthResponse struct {
	Status       string          `json:"status"`
	Uptime       string          `json:"uptime"`
	Integrations map[string]bool `json:"integrations"`
}

// Register mounts the probe endpoints on the mux.
func (h *HealthChecker) Register(mux *http.ServeMux) {
	mux.Handle("GET /healthz", h.LivenessHandler())
	mux.Handle("GET /readyz", h.ReadinessHandler())
	mux.Handle("GET /healthz/detailed", h.DetailedHealthHandler())
}

// LivenessHandler answers /healthz. Liveness only asserts the process is
// serving requests.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers /readyz.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks := make(map[string]string)
		allOk := true

		if !h.ready.Load() {
			checks["ready"] = healthStatusNotReady
			allOk = false
		} else {
			checks["ready"] = healthStatusOK
		}

		response := HealthResponse{Checks: checks}
		if allOk {
			response.Status = healthStatusOK
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	})
}

// DetailedHealthHandler answers /healthz/detailed with uptime and the
// capability flags.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		caps := h.server.Capabilities()
		response := DetailedHealthResponse{
			Status: healthStatusOK,
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
			Integrations: map[string]bool{
				"google_calendar": caps.Google,
				"recall":          caps.Recall,
				"ai":              caps.AI,
				"social_media":    caps.Social,
			},
		}

		if !h.ready.Load() {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(response)
	})
}

// handleHealth is the frontend-facing health summary: which integrations
// are live plus the registry counts.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	counts := s.store.Counts()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"message": "Backend is running successfully",
		"services": map[string]bool{
			"google_calendar": s.caps.Google,
			"recall":          s.caps.Recall,
			"ai":              s.caps.AI,
			"social_media":    s.caps.Social,
		},
		"completed_meetings": counts.CompletedMeetings,
		"scheduled_bots":     counts.ScheduledBots,
		"ai_service_details": map[string]bool{
			"initialized": s.caps.AI,
			"available":   s.caps.AI,
			"has_api_key": s.cfg.HasAI(),
		},
	})
}
