// Package units provides the quantity layer for the PBPK model: every physical
// value carries a unit, and conversions are explicit and dimension-checked.
package units

import "fmt"

type Dimension string

const (
	Time              Dimension = "time"
	Volume            Dimension = "volume"
	Area              Dimension = "area"
	Mass              Dimension = "mass"
	Amount            Dimension = "amount"
	Concentration     Dimension = "concentration"
	PerTime           Dimension = "1/time"
	AmountPerTime     Dimension = "amount/time"
	MassPerTime       Dimension = "mass/time"
	Flow              Dimension = "volume/time"
	AmountPerTimeVol  Dimension = "amount/time/volume"
	MassPerAmount     Dimension = "mass/amount"
	ConcentrationTime Dimension = "concentration*time"
	Dimensionless     Dimension = "dimensionless"
)

// Canonical units per dimension: min, l, m2, g, mmole, mM, 1/min, mmole/min,
// mg/min, l/min, mmole/min/l, g/mole, mM*min, dimensionless.
type unitDef struct {
	dim    Dimension
	factor float64 // multiply a value in this unit to get the canonical unit
}

var unitTable = map[string]unitDef{
	"min": {Time, 1},
	"s":   {Time, 1.0 / 60.0},
	"hr":  {Time, 60},
	"day": {Time, 1440},

	"l":  {Volume, 1},
	"ml": {Volume, 1e-3},

	"m2": {Area, 1},

	"kg": {Mass, 1e3},
	"g":  {Mass, 1},
	"mg": {Mass, 1e-3},
	"µg": {Mass, 1e-6},
	"ug": {Mass, 1e-6},

	"mole":   {Amount, 1e3},
	"mmole":  {Amount, 1},
	"µmole":  {Amount, 1e-3},
	"umole":  {Amount, 1e-3},
	"nmole":  {Amount, 1e-6},

	"mM":       {Concentration, 1},
	"mmole/l":  {Concentration, 1},
	"µM":       {Concentration, 1e-3},
	"uM":       {Concentration, 1e-3},
	"µmole/l":  {Concentration, 1e-3},
	"umole/l":  {Concentration, 1e-3},
	"nM":       {Concentration, 1e-6},
	"nmole/l":  {Concentration, 1e-6},

	"1/min":   {PerTime, 1},
	"per_min": {PerTime, 1},
	"1/hr":    {PerTime, 1.0 / 60.0},
	"per_hr":  {PerTime, 1.0 / 60.0},

	"mmole/min": {AmountPerTime, 1},
	"µmole/min": {AmountPerTime, 1e-3},

	"mg/min": {MassPerTime, 1},
	"g/min":  {MassPerTime, 1e3},
	"mg/hr":  {MassPerTime, 1.0 / 60.0},

	"l/min":  {Flow, 1},
	"ml/min": {Flow, 1e-3},
	"l/hr":   {Flow, 1.0 / 60.0},

	"mmole/min/l": {AmountPerTimeVol, 1},

	"g/mole":  {MassPerAmount, 1},
	"mg/mmole": {MassPerAmount, 1},

	"mM*min":     {ConcentrationTime, 1},
	"mmole/l*min": {ConcentrationTime, 1},
	"µmole/l*hr": {ConcentrationTime, 1e-3 * 60},
	"umole/l*hr": {ConcentrationTime, 1e-3 * 60},
	"nmole/l*hr": {ConcentrationTime, 1e-6 * 60},

	"dimensionless": {Dimensionless, 1},
	"-":             {Dimensionless, 1},
}

func DimensionOf(unit string) (Dimension, error) {
	def, ok := unitTable[unit]
	if !ok {
		return "", fmt.Errorf("unknown unit %q", unit)
	}
	return def.dim, nil
}

// Factor returns the multiplier from unit to its dimension's canonical unit.
func Factor(unit string) (float64, error) {
	def, ok := unitTable[unit]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", unit)
	}
	return def.factor, nil
}

// ConversionFactor returns the multiplier converting a value in from-units to
// to-units, failing on unknown units or dimension mismatch.
func ConversionFactor(from, to string) (float64, error) {
	fd, ok := unitTable[from]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", from)
	}
	td, ok := unitTable[to]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", to)
	}
	if fd.dim != td.dim {
		return 0, fmt.Errorf("incompatible units: %q is %s, %q is %s", from, fd.dim, to, td.dim)
	}
	return fd.factor / td.factor, nil
}
