// Package handler provides HTTP handlers for the AirIndex API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/airindex/airindex/internal/api/models"
	"github.com/airindex/airindex/internal/api/response"
	"github.com/airindex/airindex/internal/aqi"
	"github.com/airindex/airindex/internal/assessment"
)

// AssessmentHandler handles assessment computation and history endpoints.
type AssessmentHandler struct {
	service *assessment.Service
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(service *assessment.Service) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

// Compute handles POST /v1/assessments:compute.
func (h *AssessmentHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req models.AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	fieldErrors := validateAssessRequest(&req)
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid reading", fieldErrors)
		return
	}

	reading := aqi.Reading{
		CO:   *req.CO,
		NO2:  *req.NO2,
		O3:   *req.O3,
		SO2:  *req.SO2,
		PM25: *req.PM25,
		PM10: *req.PM10,
	}

	record, err := h.service.AssessReading(r.Context(), reading, "api")
	if err != nil {
		if errors.Is(err, aqi.ErrInvalidReading) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.InternalError(w, r, "assessment failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toAssessmentModel(record))
}

// List handles GET /v1/assessments.
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, fieldErrors := listOptionsFromQuery(r)
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors)
		return
	}

	result, err := h.service.History(r.Context(), opts)
	if err != nil {
		response.InternalError(w, r, "failed to list assessments")
		return
	}

	page := models.PagedAssessments{
		Items: make([]models.Assessment, 0, len(result.Items)),
		Meta:  models.PagedResponseMeta{Limit: opts.Limit},
	}
	for _, record := range result.Items {
		page.Items = append(page.Items, toAssessmentModel(record))
	}
	if result.NextCursor != "" {
		cursor := result.NextCursor
		page.Meta.NextCursor = &cursor
	}

	response.JSON(w, r, http.StatusOK, page)
}

// Get handles GET /v1/assessments/{assessmentId}.
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "assessmentId")
	if id == "" {
		response.BadRequest(w, r, "missing assessment ID", nil)
		return
	}

	record, err := h.service.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, assessment.ErrRecordNotFound) {
			response.NotFound(w, r, "assessment not found")
			return
		}
		response.InternalError(w, r, "failed to load assessment")
		return
	}

	response.JSON(w, r, http.StatusOK, toAssessmentModel(record))
}

// validateAssessRequest checks presence and range of every concentration.
func validateAssessRequest(req *models.AssessRequest) []models.FieldError {
	fields := []struct {
		name  string
		value *float64
	}{
		{"co", req.CO},
		{"no2", req.NO2},
		{"o3", req.O3},
		{"so2", req.SO2},
		{"pm2_5", req.PM25},
		{"pm10", req.PM10},
	}

	var errs []models.FieldError
	for _, f := range fields {
		if f.value == nil {
			errs = append(errs, models.FieldError{
				Field:   f.name,
				Message: "is required",
				Code:    "required",
			})
			continue
		}
		if *f.value < 0 {
			errs = append(errs, models.FieldError{
				Field:   f.name,
				Message: "must not be negative",
				Code:    "gte",
			})
		}
	}
	return errs
}

// toAssessmentModel maps a stored record to its API representation.
func toAssessmentModel(record *assessment.Record) models.Assessment {
	out := models.Assessment{
		ID:            record.ID,
		AQI:           record.Result.AQI,
		Category:      string(record.Result.Category),
		CategoryLabel: record.Result.Category.Label(),
		Source:        record.Source,
		AssessedAt:    models.Timestamp(record.AssessedAt),
	}

	for _, p := range aqi.Pollutants() {
		out.SubIndices = append(out.SubIndices, models.SubIndexEntry{
			Pollutant: p.String(),
			SubIndex:  record.Result.SubIndices[p],
		})
	}
	out.DominantPollutants = make([]models.DominantPollutant, 0, len(record.Result.DominantPollutants))
	for _, d := range record.Result.DominantPollutants {
		out.DominantPollutants = append(out.DominantPollutants, models.DominantPollutant{
			Pollutant:     d.Pollutant.String(),
			Concentration: d.Concentration,
			SubIndex:      d.SubIndex,
		})
	}

	if record.Lat != 0 || record.Lon != 0 {
		out.Point = &models.Point{Lat: record.Lat, Lon: record.Lon}
	}
	if !record.MeasuredAt.IsZero() {
		measuredAt := models.Timestamp(record.MeasuredAt)
		out.MeasuredAt = &measuredAt
	}

	return out
}
