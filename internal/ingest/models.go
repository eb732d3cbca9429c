// Package ingest provides access to upstream air quality data feeds.
package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/airindex/airindex/internal/aqi"
)

// Ingest errors.
var (
	ErrProviderUnavailable = errors.New("reading provider unavailable")
	ErrNoDataForLocation   = errors.New("no readings for location")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Observation is one complete set of pollutant concentrations measured at
// a location. Concentrations are normalized to µg/m³ before anything
// downstream sees them; the engine receives them unit-unconverted no
// further than this boundary.
type Observation struct {
	// Location coordinates.
	Lat float64
	Lon float64

	// Reading holds the six concentrations in µg/m³.
	Reading aqi.Reading

	// MeasuredAt is the upstream measurement timestamp.
	MeasuredAt time.Time

	// FetchedAt is when the observation was retrieved from the provider.
	FetchedAt time.Time

	// Source identifies the data feed.
	Source string
}

// Provider defines the interface for reading providers. A provider owns
// retry, timeout, and parsing of its feed and must never hand over
// partially-populated or unit-unconverted data.
type Provider interface {
	// FetchObservation fetches the latest complete reading near a location.
	FetchObservation(ctx context.Context, lat, lon float64) (*Observation, error)
}

// ValidCoordinates reports whether lat/lon form a usable query point.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
