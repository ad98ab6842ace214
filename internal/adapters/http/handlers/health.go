package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/longregen/voicedemo/internal/domain/models"
	"github.com/longregen/voicedemo/internal/ports"
)

const (
	statusHealthy      = "healthy"
	statusDegraded     = "degraded"
	statusUnhealthy    = "unhealthy"
	statusUnconfigured = "unconfigured"
)

// HealthCheckConfig holds configuration for health checks
type HealthCheckConfig struct {
	Timeout time.Duration // Timeout for each individual health check
}

// DefaultHealthCheckConfig returns default health check configuration
func DefaultHealthCheckConfig() HealthCheckConfig {
	return HealthCheckConfig{
		Timeout: 5 * time.Second,
	}
}

type HealthHandler struct {
	config     HealthCheckConfig
	version    string
	demos      []models.Demo
	newLiveKit ports.LiveKitServiceFactory
	dbPing     func(context.Context) error
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		config:  DefaultHealthCheckConfig(),
		version: version,
	}
}

// NewHealthHandlerWithDeps checks LiveKit once per demo and the session ledger
// when dbPing is non-nil.
func NewHealthHandlerWithDeps(
	version string,
	demos []models.Demo,
	newLiveKit ports.LiveKitServiceFactory,
	dbPing func(context.Context) error,
) *HealthHandler {
	return &HealthHandler{
		config:     DefaultHealthCheckConfig(),
		version:    version,
		demos:      demos,
		newLiveKit: newLiveKit,
		dbPing:     dbPing,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type DetailedHealthResponse struct {
	Status   string                   `json:"status"`
	Version  string                   `json:"version"`
	Services map[string]ServiceHealth `json:"services"`
}

type ServiceHealth struct {
	Status    string  `json:"status"`
	LatencyMs *int64  `json:"latency_ms,omitempty"`
	Error     *string `json:"error,omitempty"`
}

// Handle provides a basic health check endpoint
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, HealthResponse{Status: "ok", Version: h.version}, http.StatusOK)
}

// HandleDetailed provides a detailed health check endpoint that checks all dependencies
func (h *HealthHandler) HandleDetailed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := DetailedHealthResponse{
		Version:  h.version,
		Services: make(map[string]ServiceHealth),
	}

	if h.dbPing != nil {
		response.Services["database"] = h.checkDatabase(ctx)
	}

	if h.newLiveKit != nil {
		for _, demo := range h.demos {
			response.Services["livekit:"+demo.Name] = h.checkLiveKit(ctx, demo)
		}
	}

	response.Status = h.calculateOverallStatus(response.Services)

	statusCode := http.StatusOK
	if response.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// checkDatabase checks session ledger connectivity
func (h *HealthHandler) checkDatabase(ctx context.Context) ServiceHealth {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	err := h.dbPing(checkCtx)
	return serviceHealth(start, err)
}

// checkLiveKit lists rooms with the demo's credentials. Listing is read-only, so
// the check leaves no rooms behind.
func (h *HealthHandler) checkLiveKit(ctx context.Context, demo models.Demo) ServiceHealth {
	if missing := demo.Credentials.Missing(); len(missing) > 0 {
		errMsg := fmt.Sprintf("missing %s", strings.Join(missing, ", "))
		return ServiceHealth{Status: statusUnconfigured, Error: &errMsg}
	}

	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	lk, err := h.newLiveKit(demo.Credentials)
	if err != nil {
		return serviceHealth(start, err)
	}

	_, err = lk.ListRooms(checkCtx)
	return serviceHealth(start, err)
}

func serviceHealth(start time.Time, err error) ServiceHealth {
	latency := time.Since(start).Milliseconds()
	if err != nil {
		errMsg := err.Error()
		return ServiceHealth{
			Status:    statusUnhealthy,
			LatencyMs: &latency,
			Error:     &errMsg,
		}
	}
	return ServiceHealth{
		Status:    statusHealthy,
		LatencyMs: &latency,
	}
}

// calculateOverallStatus determines the overall system status based on individual services
func (h *HealthHandler) calculateOverallStatus(services map[string]ServiceHealth) string {
	if len(services) == 0 {
		return statusHealthy
	}

	degraded := false
	for name, service := range services {
		switch service.Status {
		case statusUnhealthy:
			// The ledger is optional; an unreachable LiveKit fails every bootstrap
			if strings.HasPrefix(name, "livekit:") {
				return statusUnhealthy
			}
			degraded = true
		case statusDegraded, statusUnconfigured:
			degraded = true
		}
	}

	if degraded {
		return statusDegraded
	}
	return statusHealthy
}
