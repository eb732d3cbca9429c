// Package openaq provides a client for the OpenAQ measurements API.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airindex/airindex/internal/aqi"
	"github.com/airindex/airindex/internal/ingest"
	"github.com/airindex/airindex/internal/ingest/resilience"
)

const (
	// DefaultBaseURL is the base URL for the OpenAQ API.
	DefaultBaseURL = "https://api.openaq.org/v2"

	// SourceName identifies this feed.
	SourceName = "openaq"

	// DefaultRadiusMeters is the default search radius around a query point.
	DefaultRadiusMeters = 25000
)

// ClientConfig holds configuration for the OpenAQ client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey is sent in the X-API-Key header when set.
	APIKey string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Registry, when set, is handed to the default resilient client so the
	// feed shows up in ops status reporting.
	Registry *resilience.Registry

	// RadiusMeters is the search radius around a query point.
	RadiusMeters int

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an OpenAQ API client.
type Client struct {
	baseURL    string
	apiKey     string
	radius     int
	httpClient HTTPDoer
}

// NewClient creates a new OpenAQ client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	radius := cfg.RadiusMeters
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            SourceName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Registry:        cfg.Registry,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		radius:     radius,
		httpClient: httpClient,
	}
}

// API response types (from the OpenAQ latest-measurements endpoint).

type latestResponse struct {
	Results []latestResult `json:"results"`
}

type latestResult struct {
	Location     string            `json:"location"`
	Coordinates  coordinatesData   `json:"coordinates"`
	Measurements []measurementData `json:"measurements"`
}

type coordinatesData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type measurementData struct {
	Parameter   string  `json:"parameter"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	LastUpdated string  `json:"lastUpdated"`
}

// FetchObservation retrieves the latest complete reading near a location.
// Measurements from multiple stations are merged, nearest result first,
// until every supported pollutant has a value; a location where one or more
// pollutants are never reported fails with ErrNoDataForLocation.
func (c *Client) FetchObservation(ctx context.Context, lat, lon float64) (*ingest.Observation, error) {
	if !ingest.ValidCoordinates(lat, lon) {
		return nil, ingest.ErrInvalidCoordinates
	}

	url := fmt.Sprintf("%s/latest?coordinates=%f,%f&radius=%d&limit=100", c.baseURL, lat, lon, c.radius)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ingest.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ingest.ErrProviderUnavailable, resp.StatusCode)
	}

	var result latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode latest response: %w", err)
	}

	return c.toObservation(lat, lon, &result)
}

// toObservation merges API results into one complete observation.
func (c *Client) toObservation(lat, lon float64, result *latestResponse) (*ingest.Observation, error) {
	obs := &ingest.Observation{
		Lat:       lat,
		Lon:       lon,
		FetchedAt: time.Now(),
		Source:    SourceName,
	}

	seen := make(map[aqi.Pollutant]bool, 6)

	for _, res := range result.Results {
		for _, m := range res.Measurements {
			pollutant, ok := toPollutant(m.Parameter)
			if !ok || seen[pollutant] {
				continue
			}

			value, ok := toMicrograms(pollutant, m.Value, m.Unit)
			if !ok {
				continue
			}

			setConcentration(&obs.Reading, pollutant, value)
			seen[pollutant] = true

			if measuredAt, err := time.Parse(time.RFC3339, m.LastUpdated); err == nil {
				if obs.MeasuredAt.IsZero() || measuredAt.After(obs.MeasuredAt) {
					obs.MeasuredAt = measuredAt
				}
			}
		}
	}

	if len(seen) < len(aqi.Pollutants()) {
		return nil, ingest.ErrNoDataForLocation
	}

	return obs, nil
}

// toPollutant converts an OpenAQ parameter name to a pollutant kind.
func toPollutant(parameter string) (aqi.Pollutant, bool) {
	switch strings.ToLower(parameter) {
	case "co":
		return aqi.PollutantCO, true
	case "no2":
		return aqi.PollutantNO2, true
	case "o3":
		return aqi.PollutantO3, true
	case "so2":
		return aqi.PollutantSO2, true
	case "pm25":
		return aqi.PollutantPM25, true
	case "pm10":
		return aqi.PollutantPM10, true
	}
	return 0, false
}

// toMicrograms normalizes a reported value to µg/m³. OpenAQ reports most
// parameters in µg/m³ but gases occasionally arrive in ppm or ppb; those
// convert through the same molar-mass factors the scoring tables pair with.
func toMicrograms(p aqi.Pollutant, value float64, unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "µg/m³", "ug/m3", "µg/m3":
		return value, true
	case "mg/m³", "mg/m3":
		return value * 1000, true
	case "ppm":
		return fromVolumeRatio(p, value, aqi.UnitPPM)
	case "ppb":
		return fromVolumeRatio(p, value, aqi.UnitPPB)
	}
	return 0, false
}

// fromVolumeRatio converts a gas value reported in ppm or ppb to µg/m³. The
// conversion factor is tied to the pollutant's canonical unit; a value in the
// other ratio unit rescales by 1000 first (1 ppm = 1000 ppb).
func fromVolumeRatio(p aqi.Pollutant, value float64, reported aqi.Unit) (float64, bool) {
	conv, err := aqi.ConversionFor(p)
	if err != nil || (conv.Unit != aqi.UnitPPM && conv.Unit != aqi.UnitPPB) {
		return 0, false
	}
	switch {
	case reported == aqi.UnitPPM && conv.Unit == aqi.UnitPPB:
		value *= 1000
	case reported == aqi.UnitPPB && conv.Unit == aqi.UnitPPM:
		value /= 1000
	}
	return value * conv.UgPerUnit, true
}

func setConcentration(r *aqi.Reading, p aqi.Pollutant, value float64) {
	switch p {
	case aqi.PollutantCO:
		r.CO = value
	case aqi.PollutantNO2:
		r.NO2 = value
	case aqi.PollutantO3:
		r.O3 = value
	case aqi.PollutantSO2:
		r.SO2 = value
	case aqi.PollutantPM25:
		r.PM25 = value
	case aqi.PollutantPM10:
		r.PM10 = value
	}
}
