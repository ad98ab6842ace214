package handlers

import (
	"net/http"

	"github.com/longregen/voicedemo/internal/adapters/http/dto"
	"github.com/longregen/voicedemo/internal/domain/models"
)

type DemosHandler struct {
	demos       []models.Demo
	defaultDemo string
}

func NewDemosHandler(defaultDemo string, demos []models.Demo) *DemosHandler {
	return &DemosHandler{
		demos:       demos,
		defaultDemo: defaultDemo,
	}
}

// List handles GET /api/demos
func (h *DemosHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", len(h.demos))
	if limit < 0 || limit > len(h.demos) {
		limit = len(h.demos)
	}

	response := dto.DemoListResponse{
		Demos: make([]dto.DemoResponse, 0, limit),
		Total: len(h.demos),
	}
	for _, demo := range h.demos[:limit] {
		response.Demos = append(response.Demos, dto.FromDemo(demo, demo.Name == h.defaultDemo))
	}

	respondNegotiated(w, r, response, http.StatusOK)
}
