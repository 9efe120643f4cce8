package pk

import (
	"fmt"

	"rapaflow/internal/simulate"
	"rapaflow/internal/units"
)

// UnsupportedScanError reports PK extraction over a scan shape the
// calculator cannot project into a flat table.
type UnsupportedScanError struct {
	Dims int
}

func (e *UnsupportedScanError) Error() string {
	return fmt.Sprintf("pk extraction supports exactly one scan dimension, got %d", e.Dims)
}

// Analyte selects one recorded concentration series for PK calculation.
// DoseParameter names the administered-dose parameter (mass units) for the
// parent drug; metabolites leave it empty and their dose-normalized metrics
// stay undefined. MolecularWeight converts the dose from mass to molar
// amount.
type Analyte struct {
	Substance       string
	Observable      string
	DoseParameter   string
	MolecularWeight float64 // g/mole
}

// RapamycinAnalytes is the standard selection: parent drug in whole blood,
// metabolites in plasma.
func RapamycinAnalytes(mr float64) []Analyte {
	return []Analyte{
		{Substance: "rap", Observable: "[Cveblood_rap]", DoseParameter: "PODOSE_rap", MolecularWeight: mr},
		{Substance: "rx", Observable: "[Cve_rx]"},
	}
}

// Row is one (scan coordinate, analyte) PK result.
type Row struct {
	Coordinate     int            `json:"coordinate"`
	ScanParameter  string         `json:"scan_parameter"`
	ScanValue      units.Quantity `json:"scan_value"`
	Result
}

// CalculateScanPK projects a one-dimensional scan result into a PK table:
// one row per scan coordinate and analyte. Zero-dose and otherwise
// degenerate coordinates still produce rows with undefined terminal metrics.
func CalculateScanPK(res *simulate.ScanResult, analytes []Analyte) (*Table, error) {
	if res.ScanDim() != 1 {
		return nil, &UnsupportedScanError{Dims: res.ScanDim()}
	}
	dim := res.Dimensions[0]

	table := &Table{}
	for _, analyte := range analytes {
		for i, r := range res.Results {
			conc, ok := r.Series(analyte.Observable)
			if !ok {
				return nil, fmt.Errorf("pk extraction: result has no series %q", analyte.Observable)
			}
			// The calculator works in canonical min/mM; engines may report
			// other units of the same dimensions.
			timeVals, err := canonicalSeries(r.Time, r.Units["time"], "min")
			if err != nil {
				return nil, fmt.Errorf("pk extraction: time series: %w", err)
			}
			conc, err = canonicalSeries(conc, r.Units[analyte.Observable], "mM")
			if err != nil {
				return nil, fmt.Errorf("pk extraction: series %q: %w", analyte.Observable, err)
			}

			var dose *units.Quantity
			if analyte.DoseParameter != "" {
				d, err := coordinateDose(r, analyte)
				if err != nil {
					return nil, err
				}
				dose = d
			}

			row := Row{
				Coordinate:    i,
				ScanParameter: dim.Parameter,
				ScanValue:     units.Q(dim.Values.Values[i], dim.Values.Unit),
				Result:        Calculate(timeVals, conc, analyte.Substance, dose),
			}
			table.Rows = append(table.Rows, row)
		}
	}
	return table, nil
}

// canonicalSeries converts a series into the target unit; a matching unit
// passes through without copying.
func canonicalSeries(vals []float64, unit, target string) ([]float64, error) {
	if unit == target {
		return vals, nil
	}
	f, err := units.ConversionFactor(unit, target)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v * f
	}
	return out, nil
}

// coordinateDose reads the administered dose at the start of the coordinate's
// timecourse and converts it from mass to molar amount.
func coordinateDose(r *simulate.Result, analyte Analyte) (*units.Quantity, error) {
	series, ok := r.Series(analyte.DoseParameter)
	if !ok {
		return nil, fmt.Errorf("pk extraction: result has no dose series %q", analyte.DoseParameter)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("pk extraction: empty dose series %q", analyte.DoseParameter)
	}
	if analyte.MolecularWeight <= 0 {
		return nil, fmt.Errorf("pk extraction: analyte %s needs a molecular weight", analyte.Substance)
	}
	q := units.Q(series[0], r.Units[analyte.DoseParameter])
	mg, err := q.Convert("mg")
	if err != nil {
		return nil, fmt.Errorf("pk extraction: dose %s: %w", analyte.DoseParameter, err)
	}
	// mg / (g/mole) = mmole
	dose := units.Q(mg.Value/analyte.MolecularWeight, "mmole")
	return &dose, nil
}
