package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/airindex/airindex/internal/api/models"
	"github.com/airindex/airindex/internal/aqi"
	"github.com/airindex/airindex/internal/assessment"
)

const maxPageLimit = 200

// pathParam reads a chi URL parameter.
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// parseCoordinates splits a "{lat},{lon}" path segment.
func parseCoordinates(raw string) (lat, lon float64, ok bool) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// listOptionsFromQuery parses pagination and filter query parameters.
func listOptionsFromQuery(r *http.Request) (assessment.ListOptions, []models.FieldError) {
	opts := assessment.ListOptions{Limit: 50}
	var errs []models.FieldError

	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageLimit {
			errs = append(errs, models.FieldError{
				Field:   "limit",
				Message: "must be an integer between 1 and 200",
				Code:    "range",
			})
		} else {
			opts.Limit = limit
		}
	}

	opts.Cursor = q.Get("cursor")

	if raw := q.Get("category"); raw != "" {
		category := aqi.Category(strings.ToUpper(raw))
		switch category {
		case aqi.CategoryGood, aqi.CategoryModerate, aqi.CategoryUnhealthySensitive,
			aqi.CategoryUnhealthy, aqi.CategoryVeryUnhealthy, aqi.CategoryHazardous:
			opts.Category = category
		default:
			errs = append(errs, models.FieldError{
				Field:   "category",
				Message: "unknown category",
				Code:    "enum",
			})
		}
	}

	if raw := q.Get("minAqi"); raw != "" {
		minAQI, err := strconv.Atoi(raw)
		if err != nil || minAQI < 0 {
			errs = append(errs, models.FieldError{
				Field:   "minAqi",
				Message: "must be a non-negative integer",
				Code:    "range",
			})
		} else {
			opts.MinAQI = minAQI
		}
	}

	return opts, errs
}
