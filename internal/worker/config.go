// Package worker provides background job processing for AirIndex.
package worker

import (
	"time"
)

// MonitorTarget represents a geographic region whose air quality
// assessments are kept warm by the refresh job.
type MonitorTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Points are the lat/lon coordinates to refresh.
	// Typically city centers and known pollution hotspots.
	Points []Point

	// Priority determines refresh order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// RefreshConfig holds configuration for the assessment refresh job.
type RefreshConfig struct {
	// Targets are the geographic regions to refresh.
	// If empty, uses DefaultMonitorTargets.
	Targets []MonitorTarget

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:     DefaultMonitorTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultMonitorTargets returns the default set of monitored locations.
// Covers major cities across the regions the public feeds report on.
func DefaultMonitorTargets() []MonitorTarget {
	return []MonitorTarget{
		{
			Name:     "Amsterdam",
			Priority: 1,
			Points: []Point{
				{Lat: 52.3676, Lon: 4.9041}, // Centrum
				{Lat: 52.3386, Lon: 4.8919}, // Zuid
				{Lat: 52.3894, Lon: 4.9006}, // Noord
			},
		},
		{
			Name:     "Rotterdam",
			Priority: 1,
			Points: []Point{
				{Lat: 51.9244, Lon: 4.4777}, // Centrum
				{Lat: 51.8853, Lon: 4.2900}, // Botlek industrial area
			},
		},
		{
			Name:     "London",
			Priority: 1,
			Points: []Point{
				{Lat: 51.5074, Lon: -0.1278}, // Westminster
				{Lat: 51.5155, Lon: -0.0922}, // City of London
			},
		},
		{
			Name:     "Paris",
			Priority: 1,
			Points: []Point{
				{Lat: 48.8566, Lon: 2.3522}, // Centre
				{Lat: 48.8738, Lon: 2.2950}, // Étoile
			},
		},
		{
			Name:     "Berlin",
			Priority: 2,
			Points: []Point{
				{Lat: 52.5200, Lon: 13.4050}, // Mitte
			},
		},
		{
			Name:     "Madrid",
			Priority: 2,
			Points: []Point{
				{Lat: 40.4168, Lon: -3.7038}, // Sol
			},
		},
		{
			Name:     "New York",
			Priority: 2,
			Points: []Point{
				{Lat: 40.7128, Lon: -74.0060}, // Lower Manhattan
				{Lat: 40.8116, Lon: -73.9465}, // Harlem
			},
		},
		{
			Name:     "Los Angeles",
			Priority: 2,
			Points: []Point{
				{Lat: 34.0522, Lon: -118.2437}, // Downtown
			},
		},
		{
			Name:     "Delhi",
			Priority: 3,
			Points: []Point{
				{Lat: 28.6139, Lon: 77.2090}, // Connaught Place
				{Lat: 28.5672, Lon: 77.2100}, // South Delhi
			},
		},
		{
			Name:     "Beijing",
			Priority: 3,
			Points: []Point{
				{Lat: 39.9042, Lon: 116.4074}, // Dongcheng
			},
		},
		{
			Name:     "Tokyo",
			Priority: 3,
			Points: []Point{
				{Lat: 35.6762, Lon: 139.6503}, // Shinjuku
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c RefreshConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to refresh.
func (c RefreshConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
