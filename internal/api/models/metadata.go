package models

// BreakpointNode is one node of a pollutant's index scale.
type BreakpointNode struct {
	Concentration float64 `json:"concentration"`
	Index         float64 `json:"index"`
}

// PollutantInfo describes one supported pollutant and its index scale.
type PollutantInfo struct {
	Name        string           `json:"name"`
	ScaleUnit   string           `json:"scaleUnit"`
	Breakpoints []BreakpointNode `json:"breakpoints"`
}

// CategoryInfo describes one AQI severity band.
type CategoryInfo struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	MinAQI int    `json:"minAqi"`
	MaxAQI *int   `json:"maxAqi,omitempty"` // nil for the open-ended top band
}

// PollutantList is the response of GET /v1/metadata/pollutants.
type PollutantList struct {
	Items []PollutantInfo `json:"items"`
}

// CategoryList is the response of GET /v1/metadata/categories.
type CategoryList struct {
	Items []CategoryInfo `json:"items"`
}
