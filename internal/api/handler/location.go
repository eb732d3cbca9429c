package handler

import (
	"errors"
	"net/http"

	"github.com/airindex/airindex/internal/api/response"
	"github.com/airindex/airindex/internal/assessment"
	"github.com/airindex/airindex/internal/ingest"
)

// LocationHandler serves current assessments for geographic locations.
type LocationHandler struct {
	service *assessment.Service
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(service *assessment.Service) *LocationHandler {
	return &LocationHandler{service: service}
}

// GetAssessment handles GET /v1/locations/{coordinates}/assessment where
// coordinates is "{lat},{lon}".
func (h *LocationHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseCoordinates(pathParam(r, "coordinates"))
	if !ok {
		response.BadRequest(w, r, "coordinates must be formatted as {lat},{lon}", nil)
		return
	}

	record, err := h.service.GetLocationAssessment(r.Context(), lat, lon)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrInvalidCoordinates):
			response.BadRequest(w, r, "coordinates out of range", nil)
		case errors.Is(err, ingest.ErrNoDataForLocation):
			response.NotFound(w, r, "no air quality data for this location")
		case errors.Is(err, assessment.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "air quality feed unavailable")
		default:
			response.InternalError(w, r, "failed to assess location")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toAssessmentModel(record))
}
