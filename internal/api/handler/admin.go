package handler

import (
	"errors"
	"net/http"

	"github.com/airindex/airindex/internal/api/response"
	"github.com/airindex/airindex/internal/assessment"
	"github.com/airindex/airindex/internal/ingest"
)

// AdminHandler handles cache management endpoints.
type AdminHandler struct {
	service *assessment.Service
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *assessment.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// InvalidateCache handles POST /v1/admin/cache/invalidate.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}

// RefreshLocation handles POST /v1/admin/locations/{coordinates}/refresh.
func (h *AdminHandler) RefreshLocation(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseCoordinates(pathParam(r, "coordinates"))
	if !ok {
		response.BadRequest(w, r, "coordinates must be formatted as {lat},{lon}", nil)
		return
	}

	if err := h.service.RefreshLocation(r.Context(), lat, lon); err != nil {
		switch {
		case errors.Is(err, ingest.ErrInvalidCoordinates):
			response.BadRequest(w, r, "coordinates out of range", nil)
		case errors.Is(err, ingest.ErrNoDataForLocation):
			response.NotFound(w, r, "no air quality data for this location")
		default:
			response.ServiceUnavailable(w, r, "refresh failed")
		}
		return
	}

	response.NoContent(w, r)
}
