package aqi

import (
	"fmt"
	"math"
)

// Assess converts a raw reading into an assessment: per-pollutant sub-index
// computation, worst-pollutant aggregation, and categorical labeling.
//
// The reading is validated first: any negative, NaN, or infinite
// concentration fails the whole computation with ErrInvalidReading. There
// is no partial assessment and no silent clamping of bad input.
//
// Assess is stateless and touches only the immutable breakpoint tables, so
// it is safe to call concurrently without locking.
func Assess(reading Reading) (*Assessment, error) {
	if err := validate(reading); err != nil {
		return nil, err
	}

	result := &Assessment{
		SubIndices: make(map[Pollutant]int, 6),
	}

	for _, p := range Pollutants() {
		raw := reading.Concentration(p)
		sub, err := SubIndexRaw(p, raw)
		if err != nil {
			return nil, err
		}
		result.SubIndices[p] = sub

		if sub > result.AQI {
			result.AQI = sub
		}
		if sub >= 100 {
			result.DominantPollutants = append(result.DominantPollutants, DominantPollutant{
				Pollutant:     p,
				Concentration: raw,
				SubIndex:      sub,
			})
		}
	}

	result.Category = Categorize(result.AQI)
	return result, nil
}

// validate rejects readings containing negative or non-finite values.
func validate(reading Reading) error {
	for _, p := range Pollutants() {
		v := reading.Concentration(p)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s concentration %v", ErrInvalidReading, p, v)
		}
	}
	return nil
}
