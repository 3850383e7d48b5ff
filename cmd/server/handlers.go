package main

import (
	"net/http"
	"time"

	"vehicle-catalog-lab/internal/observability"
	"vehicle-catalog-lab/internal/reporting"
)

// routes builds the HTTP handler for health/metrics/status.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	return mux
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status        string    `json:"status"`
	Uptime        string    `json:"uptime"`
	Started       time.Time `json:"started"`
	Store         string    `json:"store"`
	LiveVersion   string    `json:"live_version"`
	KnownVersions int       `json:"known_versions"`
	VehicleCount  int       `json:"vehicle_count"`
	CachedResults int       `json:"cached_results"`
	LastWarmRun   time.Time `json:"last_warm_run,omitempty"`
	LastWarmError string    `json:"last_warm_error,omitempty"`
	WarmRuns      int       `json:"warm_runs"`
	WarmRunning   bool      `json:"warm_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.started).Round(time.Second).String(),
		Started:       s.started,
		Store:         s.app.StoreName,
		LiveVersion:   s.liveVersion,
		KnownVersions: s.knownVersions,
		VehicleCount:  s.vehicleCount,
		LastWarmRun:   s.lastWarmRun,
		LastWarmError: s.lastWarmErr,
		WarmRuns:      s.warmRuns,
		WarmRunning:   s.warmRunning,
	}
	s.mu.Unlock()

	if s.app.Cache != nil {
		resp.CachedResults = s.app.Cache.Len()
	}

	body, err := reporting.RenderJSON(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}
