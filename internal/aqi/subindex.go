package aqi

import "math"

// SubIndex maps one pollutant's concentration (already converted to the
// pollutant's canonical unit) to its integer AQI contribution via
// piecewise-linear interpolation over the pollutant's breakpoint table.
//
// Edge policy: concentrations at or below the lowest node clamp to the
// table floor; at or above the highest node they clamp to the ceiling (the
// top band is the terminal band). In between, the index is interpolated
// between the two surrounding nodes and rounded half-away-from-zero
// (math.Round). The interpolation ratio is computed before scaling so a
// concentration equal to a node yields that node's index with no rounding
// drift.
//
// Pure function of its inputs; identical inputs always produce identical
// output.
func SubIndex(p Pollutant, concentration float64) (int, error) {
	t, err := TableFor(p)
	if err != nil {
		return 0, err
	}

	nodes := t.Nodes
	if concentration <= nodes[0].Concentration {
		return int(nodes[0].Index), nil
	}
	last := nodes[len(nodes)-1]
	if concentration >= last.Concentration {
		return int(last.Index), nil
	}

	// Smallest i with concentration <= nodes[i].Concentration.
	i := 1
	for concentration > nodes[i].Concentration {
		i++
	}

	lo, hi := nodes[i-1], nodes[i]
	ratio := (concentration - lo.Concentration) / (hi.Concentration - lo.Concentration)
	index := lo.Index + ratio*(hi.Index-lo.Index)
	return int(math.Round(index)), nil
}

// SubIndexRaw converts a raw µg/m³ concentration to the pollutant's
// canonical unit and computes its sub-index.
func SubIndexRaw(p Pollutant, ugm3 float64) (int, error) {
	converted, err := Convert(p, ugm3)
	if err != nil {
		return 0, err
	}
	return SubIndex(p, converted)
}
