package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/longregen/voicedemo/internal/adapters/http/dto"
	"github.com/longregen/voicedemo/internal/domain"
	"github.com/longregen/voicedemo/internal/ports"
)

// ConnectionDetailsHandler serves the connection-details route of every demo.
type ConnectionDetailsHandler struct {
	bootstrappers map[string]ports.ConnectionBootstrapper
	defaultDemo   string
}

func NewConnectionDetailsHandler(defaultDemo string, bootstrappers ...ports.ConnectionBootstrapper) *ConnectionDetailsHandler {
	byName := make(map[string]ports.ConnectionBootstrapper, len(bootstrappers))
	for _, b := range bootstrappers {
		byName[b.Demo().Name] = b
	}
	return &ConnectionDetailsHandler{
		bootstrappers: byName,
		defaultDemo:   defaultDemo,
	}
}

// HandleDefault serves /api/connection-details.
func (h *ConnectionDetailsHandler) HandleDefault(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.defaultDemo)
}

// HandleDemo serves /api/demos/{demo}/connection-details.
func (h *ConnectionDetailsHandler) HandleDemo(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "demo"))
}

func (h *ConnectionDetailsHandler) serve(w http.ResponseWriter, r *http.Request, demoName string) {
	bootstrapper, ok := h.bootstrappers[demoName]
	if !ok {
		respondDomainError(w, domain.NewDomainErrorWithCode(domain.ErrDemoNotFound, demoName, "not_found"))
		return
	}

	var req dto.ConnectionDetailsRequest
	if err := decodeOptionalBody(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondDomainError(w, domain.NewDomainErrorWithCode(domain.ErrInvalidInput, "malformed request body", "invalid_request"))
		return
	}
	// A blank body name must not hide the query parameter.
	if strings.TrimSpace(req.ParticipantName) == "" {
		req.ParticipantName = r.URL.Query().Get("participantName")
	}

	details, err := bootstrapper.Bootstrap(r.Context(), req.ToModel())
	if err != nil {
		slog.Error("connection details failed", "demo", demoName, "error", err, "fatal", domain.IsFatal(err))
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondNegotiated(w, r, dto.FromConnectionDetails(details), http.StatusOK)
}
