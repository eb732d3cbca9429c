// Package assessment scores pollutant readings and manages assessment
// history and per-location caching.
package assessment

import (
	"errors"
	"fmt"
	"time"

	"github.com/airindex/airindex/internal/aqi"
)

// Assessment errors.
var (
	ErrRecordNotFound      = errors.New("assessment record not found")
	ErrProviderUnavailable = errors.New("observation provider unavailable")
)

// Record is one stored assessment: the raw reading that was scored plus the
// engine's result, tied to a location and a measurement time.
type Record struct {
	// ID is a UUID assigned at creation.
	ID string `json:"id"`

	// Location coordinates.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// Reading holds the scored concentrations in µg/m³.
	Reading aqi.Reading `json:"reading"`

	// Result is the engine output for Reading.
	Result aqi.Assessment `json:"result"`

	// Source identifies where the reading came from.
	Source string `json:"source"`

	// MeasuredAt is the upstream measurement timestamp (zero if unknown).
	MeasuredAt time.Time `json:"measured_at,omitzero"`

	// AssessedAt is when the engine scored the reading.
	AssessedAt time.Time `json:"assessed_at"`
}

// ListOptions controls history pagination and filtering.
type ListOptions struct {
	// Limit is the maximum number of records to return (default: 50).
	Limit int

	// Cursor is an opaque pagination cursor from a previous ListResult.
	Cursor string

	// Category, when set, restricts results to one band.
	Category aqi.Category

	// MinAQI, when positive, restricts results to records at or above it.
	MinAQI int
}

// ListResult is a page of assessment records.
type ListResult struct {
	Items      []*Record
	NextCursor string
}

// locationKey buckets coordinates for cache lookups. Four decimal places is
// roughly an 11 m grid, well under the spatial resolution of any feed.
func locationKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}
