package aqi

import "fmt"

// Unit is the measurement unit a breakpoint table is expressed in.
type Unit string

const (
	UnitPPM  Unit = "ppm"
	UnitPPB  Unit = "ppb"
	UnitUgM3 Unit = "µg/m³"
)

// Node is one (concentration, index) pair of a breakpoint table.
type Node struct {
	Concentration float64
	Index         float64
}

// Table defines the piecewise-linear mapping from a pollutant's
// concentration (in the table's unit) to a sub-index. Nodes are strictly
// increasing in both coordinates. Tables are process-wide constants,
// validated once at package init and never mutated.
type Table struct {
	Unit  Unit
	Nodes []Node
}

// Floor and Ceiling return the table's terminal index values. Concentrations
// outside the node range clamp to these; the top band is the terminal band.
func (t Table) Floor() float64   { return t.Nodes[0].Index }
func (t Table) Ceiling() float64 { return t.Nodes[len(t.Nodes)-1].Index }

// Molar volume of an ideal gas at 25 °C and 1 atm, in L/mol. Gaseous
// pollutant concentrations convert between µg/m³ and ppm/ppb through it.
const molarVolume = 24.45

// Molar masses in g/mol.
const (
	molarMassCO  = 28.01
	molarMassNO2 = 46.01
	molarMassO3  = 48.00
	molarMassSO2 = 64.07
)

// Conversion defines how a raw µg/m³ sensor value becomes the canonical
// unit of the pollutant's breakpoint table: canonical = µg/m³ / UgPerUnit.
// The Unit tag must match the paired table's unit; a mismatched pair would
// silently produce a wrong but plausible-looking index, so the pairing is
// asserted at startup.
type Conversion struct {
	Unit      Unit
	UgPerUnit float64
}

// conversions holds the fixed, molar-mass-derived conversion factor per
// pollutant. PM2.5 and PM10 are already µg/m³ and need no conversion.
var conversions = map[Pollutant]Conversion{
	PollutantCO:   {Unit: UnitPPM, UgPerUnit: molarMassCO * 1000 / molarVolume},
	PollutantNO2:  {Unit: UnitPPB, UgPerUnit: molarMassNO2 / molarVolume},
	PollutantO3:   {Unit: UnitPPM, UgPerUnit: molarMassO3 * 1000 / molarVolume},
	PollutantSO2:  {Unit: UnitPPB, UgPerUnit: molarMassSO2 / molarVolume},
	PollutantPM25: {Unit: UnitUgM3, UgPerUnit: 1},
	PollutantPM10: {Unit: UnitUgM3, UgPerUnit: 1},
}

// tables holds the US EPA AQI breakpoints, one table per pollutant, each in
// EPA's native unit for that pollutant: ppm for CO (8-hour) and O3 (8-hour),
// ppb for NO2 (1-hour) and SO2 (1-hour), µg/m³ for PM2.5 and PM10 (24-hour,
// PM2.5 per the May 2024 revision). Node concentrations are the upper edges
// of the EPA bands, giving one continuous piecewise-linear curve per
// pollutant.
var tables = map[Pollutant]Table{
	PollutantCO: {
		Unit: UnitPPM,
		Nodes: []Node{
			{0, 0}, {4.4, 50}, {9.4, 100}, {12.4, 150},
			{15.4, 200}, {30.4, 300}, {50.4, 500},
		},
	},
	PollutantNO2: {
		Unit: UnitPPB,
		Nodes: []Node{
			{0, 0}, {53, 50}, {100, 100}, {360, 150},
			{649, 200}, {1249, 300}, {2049, 500},
		},
	},
	PollutantO3: {
		Unit: UnitPPM,
		// Bands above index 300 end at the 1-hour edges (0.504 -> 400,
		// 0.604 -> 500); the 8-hour table is not defined there. The 300-400
		// segment bridges from the 8-hour band edge at 0.200 to the 1-hour
		// 400 edge.
		Nodes: []Node{
			{0, 0}, {0.054, 50}, {0.070, 100}, {0.085, 150},
			{0.105, 200}, {0.200, 300}, {0.504, 400}, {0.604, 500},
		},
	},
	PollutantSO2: {
		Unit: UnitPPB,
		// Bands above index 200 are on the 24-hour scale per EPA.
		Nodes: []Node{
			{0, 0}, {35, 50}, {75, 100}, {185, 150},
			{304, 200}, {604, 300}, {1004, 500},
		},
	},
	PollutantPM25: {
		Unit: UnitUgM3,
		Nodes: []Node{
			{0, 0}, {9.0, 50}, {35.4, 100}, {55.4, 150},
			{125.4, 200}, {225.4, 300}, {325.4, 500},
		},
	},
	PollutantPM10: {
		Unit: UnitUgM3,
		Nodes: []Node{
			{0, 0}, {54, 50}, {154, 100}, {254, 150},
			{354, 200}, {424, 300}, {504, 400}, {604, 500},
		},
	},
}

// TableFor returns the breakpoint table registered for a pollutant.
func TableFor(p Pollutant) (Table, error) {
	t, ok := tables[p]
	if !ok {
		return Table{}, fmt.Errorf("%w: %s", ErrUnknownPollutant, p)
	}
	return t, nil
}

// ConversionFor returns the unit conversion registered for a pollutant.
func ConversionFor(p Pollutant) (Conversion, error) {
	c, ok := conversions[p]
	if !ok {
		return Conversion{}, fmt.Errorf("%w: %s", ErrUnknownPollutant, p)
	}
	return c, nil
}

// Convert turns a raw µg/m³ concentration into the pollutant's canonical
// unit, ready for breakpoint interpolation.
func Convert(p Pollutant, ugm3 float64) (float64, error) {
	c, err := ConversionFor(p)
	if err != nil {
		return 0, err
	}
	return ugm3 / c.UgPerUnit, nil
}

func init() {
	mustValidateTables()
}

// mustValidateTables asserts the invariants the engine relies on: every
// pollutant has a table and a conversion, the two carry the same unit tag,
// and node coordinates are strictly increasing. It panics on violation;
// this runs exactly once at process start before any computation.
func mustValidateTables() {
	for _, p := range Pollutants() {
		t, ok := tables[p]
		if !ok {
			panic(fmt.Sprintf("aqi: no breakpoint table for %s", p))
		}
		c, ok := conversions[p]
		if !ok {
			panic(fmt.Sprintf("aqi: no unit conversion for %s", p))
		}
		if t.Unit != c.Unit {
			panic(fmt.Sprintf("aqi: unit mismatch for %s: table %s, conversion %s", p, t.Unit, c.Unit))
		}
		if c.UgPerUnit <= 0 {
			panic(fmt.Sprintf("aqi: non-positive conversion factor for %s", p))
		}
		if len(t.Nodes) < 2 {
			panic(fmt.Sprintf("aqi: breakpoint table for %s needs at least two nodes", p))
		}
		for i := 1; i < len(t.Nodes); i++ {
			prev, cur := t.Nodes[i-1], t.Nodes[i]
			if cur.Concentration <= prev.Concentration || cur.Index <= prev.Index {
				panic(fmt.Sprintf("aqi: breakpoint table for %s not strictly increasing at node %d", p, i))
			}
		}
	}
}
