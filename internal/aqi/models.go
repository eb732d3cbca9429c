// Package aqi computes standardized Air Quality Index values from raw
// pollutant concentration readings.
package aqi

import (
	"errors"
	"fmt"
)

// Engine errors.
var (
	// ErrInvalidReading is returned when a concentration is negative, NaN,
	// or infinite. The whole reading is rejected; no partial assessment is
	// ever produced.
	ErrInvalidReading = errors.New("invalid pollutant reading")

	// ErrUnknownPollutant is returned when no breakpoint table is registered
	// for a pollutant kind. Given the closed enumeration this indicates a
	// programming error, not a runtime condition.
	ErrUnknownPollutant = errors.New("unknown pollutant")
)

// Pollutant identifies one of the six supported pollutant species.
type Pollutant uint8

const (
	PollutantCO Pollutant = iota
	PollutantNO2
	PollutantO3
	PollutantSO2
	PollutantPM25
	PollutantPM10
)

// Pollutants lists all supported pollutants in their fixed enumeration
// order: CO, NO2, O3, SO2, PM2.5, PM10. All per-pollutant output (dominant
// pollutant lists, sub-index maps rendered as slices) follows this order.
func Pollutants() []Pollutant {
	return []Pollutant{
		PollutantCO,
		PollutantNO2,
		PollutantO3,
		PollutantSO2,
		PollutantPM25,
		PollutantPM10,
	}
}

// String returns the canonical pollutant name.
func (p Pollutant) String() string {
	switch p {
	case PollutantCO:
		return "CO"
	case PollutantNO2:
		return "NO2"
	case PollutantO3:
		return "O3"
	case PollutantSO2:
		return "SO2"
	case PollutantPM25:
		return "PM25"
	case PollutantPM10:
		return "PM10"
	}
	return fmt.Sprintf("Pollutant(%d)", uint8(p))
}

// MarshalText renders the pollutant by name, so JSON maps keyed by
// Pollutant use "CO", "PM25", etc. rather than numeric ordinals.
func (p Pollutant) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a pollutant name.
func (p *Pollutant) UnmarshalText(text []byte) error {
	parsed, ok := ParsePollutant(string(text))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPollutant, string(text))
	}
	*p = parsed
	return nil
}

// ParsePollutant converts a pollutant name (as used by data feeds and the
// API) to a Pollutant. The second return value reports whether the name is
// a supported species.
func ParsePollutant(name string) (Pollutant, bool) {
	switch name {
	case "CO":
		return PollutantCO, true
	case "NO2":
		return PollutantNO2, true
	case "O3":
		return PollutantO3, true
	case "SO2":
		return PollutantSO2, true
	case "PM25", "PM2.5":
		return PollutantPM25, true
	case "PM10":
		return PollutantPM10, true
	}
	return 0, false
}

// Reading holds one concentration value per pollutant, always in µg/m³.
// All six fields must be present, non-negative, and finite; a negative value
// is invalid input, not a zero reading.
type Reading struct {
	CO   float64 `json:"co"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
}

// Concentration returns the raw µg/m³ concentration for a pollutant.
func (r Reading) Concentration(p Pollutant) float64 {
	switch p {
	case PollutantCO:
		return r.CO
	case PollutantNO2:
		return r.NO2
	case PollutantO3:
		return r.O3
	case PollutantSO2:
		return r.SO2
	case PollutantPM25:
		return r.PM25
	case PollutantPM10:
		return r.PM10
	}
	return 0
}

// Category is one of the six ordered AQI severity bands.
type Category string

const (
	CategoryGood               Category = "GOOD"
	CategoryModerate           Category = "MODERATE"
	CategoryUnhealthySensitive Category = "UNHEALTHY_FOR_SENSITIVE_GROUPS"
	CategoryUnhealthy          Category = "UNHEALTHY"
	CategoryVeryUnhealthy      Category = "VERY_UNHEALTHY"
	CategoryHazardous          Category = "HAZARDOUS"
)

// Label returns the human-readable category name.
func (c Category) Label() string {
	switch c {
	case CategoryGood:
		return "Good"
	case CategoryModerate:
		return "Moderate"
	case CategoryUnhealthySensitive:
		return "Unhealthy for Sensitive Groups"
	case CategoryUnhealthy:
		return "Unhealthy"
	case CategoryVeryUnhealthy:
		return "Very Unhealthy"
	case CategoryHazardous:
		return "Hazardous"
	}
	return string(c)
}

// Categorize maps an AQI value to its severity band. The bands are
// contiguous and exhaustive over [0, ∞): 0–50 Good, 51–100 Moderate,
// 101–150 Unhealthy for Sensitive Groups, 151–200 Unhealthy,
// 201–300 Very Unhealthy, 301+ Hazardous.
func Categorize(index int) Category {
	switch {
	case index <= 50:
		return CategoryGood
	case index <= 100:
		return CategoryModerate
	case index <= 150:
		return CategoryUnhealthySensitive
	case index <= 200:
		return CategoryUnhealthy
	case index <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}

// DominantPollutant pairs a pollutant whose sub-index is at least 100 with
// its raw pre-conversion concentration.
type DominantPollutant struct {
	Pollutant     Pollutant `json:"pollutant"`
	Concentration float64   `json:"concentration"` // µg/m³, as supplied in the reading
	SubIndex      int       `json:"sub_index"`
}

// Assessment is the engine's output for one reading.
type Assessment struct {
	// AQI is the maximum of the six per-pollutant sub-indices.
	AQI int `json:"aqi"`

	// Category is the severity band for AQI.
	Category Category `json:"category"`

	// SubIndices holds every pollutant's sub-index.
	SubIndices map[Pollutant]int `json:"sub_indices"`

	// DominantPollutants lists pollutants whose own sub-index is ≥ 100,
	// in fixed enumeration order (CO, NO2, O3, SO2, PM2.5, PM10), not
	// sorted by magnitude.
	DominantPollutants []DominantPollutant `json:"dominant_pollutants"`
}
