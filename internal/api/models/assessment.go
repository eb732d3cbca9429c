package models

// AssessRequest is the body of POST /v1/assessments:compute. All six
// concentrations are required and expressed in µg/m³.
type AssessRequest struct {
	CO   *float64 `json:"co" validate:"required,gte=0"`
	NO2  *float64 `json:"no2" validate:"required,gte=0"`
	O3   *float64 `json:"o3" validate:"required,gte=0"`
	SO2  *float64 `json:"so2" validate:"required,gte=0"`
	PM25 *float64 `json:"pm2_5" validate:"required,gte=0"`
	PM10 *float64 `json:"pm10" validate:"required,gte=0"`
}

// SubIndexEntry is one pollutant's contribution to an assessment.
type SubIndexEntry struct {
	Pollutant string `json:"pollutant"`
	SubIndex  int    `json:"subIndex"`
}

// DominantPollutant is a pollutant whose sub-index reached 100.
type DominantPollutant struct {
	Pollutant     string  `json:"pollutant"`
	Concentration float64 `json:"concentration"`
	SubIndex      int     `json:"subIndex"`
}

// Assessment is the API representation of one scored reading.
type Assessment struct {
	ID                 string              `json:"id,omitempty"`
	AQI                int                 `json:"aqi"`
	Category           string              `json:"category"`
	CategoryLabel      string              `json:"categoryLabel"`
	SubIndices         []SubIndexEntry     `json:"subIndices"`
	DominantPollutants []DominantPollutant `json:"dominantPollutants"`
	Point              *Point              `json:"point,omitempty"`
	Source             string              `json:"source,omitempty"`
	MeasuredAt         *Timestamp          `json:"measuredAt,omitempty"`
	AssessedAt         Timestamp           `json:"assessedAt"`
}

// PagedAssessments is a paginated list of stored assessments.
type PagedAssessments struct {
	Items []Assessment      `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
