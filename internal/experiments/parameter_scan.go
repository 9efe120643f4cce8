package experiments

import (
	"math"
	"sort"

	"rapaflow/internal/simulate"
	"rapaflow/internal/units"
)

// ParameterScan runs eight one-dimensional scans around a 2 mg oral dose:
// dose, absorption activity, cirrhosis degree, renal function and gut/liver
// CYP3A4/5 activities. Each scan includes the default value so the reference
// curve is one of the coordinates. PK extraction runs over every scan.
func ParameterScan() *Experiment {
	const (
		tend    = 5 * 24 * 60 // [min]
		steps   = 2000
		doseRap = 2 // [mg]
		points  = 10
	)

	scanRanges := []struct {
		name      string
		parameter string
		values    []float64
		unit      string
	}{
		{"dose_scan", "PODOSE_rap", withValue(linspace(0.1, 20, points), doseRap), "mg"},
		{"food_scan", "GU__f_oatp", withValue(logspace(-1, 1, points), 1.0), "dimensionless"},
		{"hepatic_scan", "f_cirrhosis", linspace(0, 0.9, points), "dimensionless"},
		{"renal_scan", "KI__f_renal_function", withValue(logspace(-1, 1, points), 1.0), "dimensionless"},
		{"cyp3a4_gu_scan", "GU__f_cyp3a4", withValue(logspace(-1, 1, points), 1.0), "dimensionless"},
		{"cyp3a5_gu_scan", "GU__f_cyp3a5", withValue(logspace(-1, 1, points), 1.0), "dimensionless"},
		{"cyp3a4_li_scan", "LI__f_cyp3a4", withValue(logspace(-1, 1, points), 1.0), "dimensionless"},
		{"cyp3a5_li_scan", "LI__f_cyp3a5", withValue(logspace(-1, 1, points), 1.0), "dimensionless"},
	}

	e := &Experiment{
		ID:    "parameter_scan",
		Name:  "parameter sensitivity scans",
		Scans: map[string]simulate.ScanSim{},
	}

	for _, sr := range scanRanges {
		name := "scan_po_" + sr.name
		e.Scans[name] = simulate.ScanSim{
			Simulation: simulate.TimecourseSim{Timecourses: []simulate.Timecourse{{
				Start: 0, End: tend, Steps: steps,
				Changes: withDefaults(map[string]units.Quantity{
					"PODOSE_rap": units.Q(doseRap, "mg"),
				}),
			}}},
			Dimensions: []simulate.Dimension{{
				Parameter: sr.parameter,
				Values:    units.A(sr.values, sr.unit),
			}},
		}
		e.PKScans = append(e.PKScans, name)
	}
	return e
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func logspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Pow(10, lo+(hi-lo)*float64(i)/float64(n-1))
	}
	return out
}

// withValue inserts v into vs keeping the values sorted.
func withValue(vs []float64, v float64) []float64 {
	out := append(append([]float64{}, vs...), v)
	sort.Float64s(out)
	return out
}
