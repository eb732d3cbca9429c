package aqi_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airindex/airindex/internal/aqi"
)

func TestAssess_ReportsWorstPollutant(t *testing.T) {
	// One pollutant made arbitrarily large dominates the aggregate.
	tests := []struct {
		name    string
		reading aqi.Reading
		worst   aqi.Pollutant
	}{
		{"PM25 dominates", aqi.Reading{PM25: 1000}, aqi.PollutantPM25},
		{"PM10 dominates", aqi.Reading{PM10: 2000}, aqi.PollutantPM10},
		{"CO dominates", aqi.Reading{CO: 100000}, aqi.PollutantCO},
		{"NO2 dominates", aqi.Reading{NO2: 50000}, aqi.PollutantNO2},
		{"O3 dominates", aqi.Reading{O3: 5000}, aqi.PollutantO3},
		{"SO2 dominates", aqi.Reading{SO2: 50000}, aqi.PollutantSO2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := aqi.Assess(tt.reading)
			require.NoError(t, err)

			assert.Equal(t, 500, result.AQI)
			assert.Equal(t, aqi.CategoryHazardous, result.Category)
			assert.Equal(t, 500, result.SubIndices[tt.worst])

			maxSub := 0
			for _, sub := range result.SubIndices {
				if sub > maxSub {
					maxSub = sub
				}
			}
			assert.Equal(t, maxSub, result.AQI, "AQI must equal the maximum sub-index")
		})
	}
}

func TestAssess_DominantPollutantSet(t *testing.T) {
	// PM2.5 at 200 µg/m³ scores 275; everything else at zero stays at 0.
	result, err := aqi.Assess(aqi.Reading{PM25: 200})
	require.NoError(t, err)

	assert.Equal(t, 275, result.AQI)
	assert.Equal(t, aqi.CategoryVeryUnhealthy, result.Category)

	require.Len(t, result.DominantPollutants, 1)
	assert.Equal(t, aqi.PollutantPM25, result.DominantPollutants[0].Pollutant)
	assert.Equal(t, 200.0, result.DominantPollutants[0].Concentration)
	assert.Equal(t, 275, result.DominantPollutants[0].SubIndex)
}

func TestAssess_DominantPollutantOrdering(t *testing.T) {
	// All six pollutants above the 100 sub-index threshold. The dominant
	// list must follow the fixed enumeration order, not magnitude.
	reading := aqi.Reading{
		CO:   12000,
		NO2:  400,
		O3:   180,
		SO2:  300,
		PM25: 60,
		PM10: 200,
	}

	result, err := aqi.Assess(reading)
	require.NoError(t, err)

	require.Len(t, result.DominantPollutants, 6)
	for i, p := range aqi.Pollutants() {
		assert.Equal(t, p, result.DominantPollutants[i].Pollutant)
		assert.Equal(t, reading.Concentration(p), result.DominantPollutants[i].Concentration)
		assert.GreaterOrEqual(t, result.DominantPollutants[i].SubIndex, 100)
	}
}

func TestAssess_AllZeroIsGood(t *testing.T) {
	result, err := aqi.Assess(aqi.Reading{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.AQI)
	assert.Equal(t, aqi.CategoryGood, result.Category)
	assert.Empty(t, result.DominantPollutants)
}

func TestAssess_RejectsInvalidReadings(t *testing.T) {
	tests := []struct {
		name    string
		reading aqi.Reading
	}{
		{"negative CO", aqi.Reading{CO: -1}},
		{"negative PM10", aqi.Reading{PM10: -0.001}},
		{"NaN O3", aqi.Reading{O3: math.NaN()}},
		{"positive infinity SO2", aqi.Reading{SO2: math.Inf(1)}},
		{"negative infinity NO2", aqi.Reading{NO2: math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := aqi.Assess(tt.reading)
			require.Error(t, err)
			assert.ErrorIs(t, err, aqi.ErrInvalidReading)
			assert.Nil(t, result, "no assessment may be produced for invalid input")
		})
	}
}

func TestAssess_Deterministic(t *testing.T) {
	reading := aqi.Reading{CO: 321.5, NO2: 47.2, O3: 88.8, SO2: 12.1, PM25: 42.0, PM10: 77.7}

	first, err := aqi.Assess(reading)
	require.NoError(t, err)
	second, err := aqi.Assess(reading)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCategorize_Boundaries(t *testing.T) {
	tests := []struct {
		index    int
		expected aqi.Category
	}{
		{0, aqi.CategoryGood},
		{50, aqi.CategoryGood},
		{51, aqi.CategoryModerate},
		{100, aqi.CategoryModerate},
		{101, aqi.CategoryUnhealthySensitive},
		{150, aqi.CategoryUnhealthySensitive},
		{151, aqi.CategoryUnhealthy},
		{200, aqi.CategoryUnhealthy},
		{201, aqi.CategoryVeryUnhealthy},
		{300, aqi.CategoryVeryUnhealthy},
		{301, aqi.CategoryHazardous},
		{500, aqi.CategoryHazardous},
		{750, aqi.CategoryHazardous},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, aqi.Categorize(tt.index), "AQI %d", tt.index)
	}
}

func TestCategory_Label(t *testing.T) {
	tests := []struct {
		category aqi.Category
		label    string
	}{
		{aqi.CategoryGood, "Good"},
		{aqi.CategoryModerate, "Moderate"},
		{aqi.CategoryUnhealthySensitive, "Unhealthy for Sensitive Groups"},
		{aqi.CategoryUnhealthy, "Unhealthy"},
		{aqi.CategoryVeryUnhealthy, "Very Unhealthy"},
		{aqi.CategoryHazardous, "Hazardous"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.label, tt.category.Label())
	}
}
