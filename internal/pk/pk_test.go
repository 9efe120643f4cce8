package pk

import (
	"errors"
	"math"
	"strings"
	"testing"

	"rapaflow/internal/simulate"
	"rapaflow/internal/units"
)

// one-compartment oral curve: c(t) = A * (exp(-ke t) - exp(-ka t))
func bateman(a, ka, ke float64, n int, dt float64) (time, conc []float64) {
	for i := 0; i < n; i++ {
		t := float64(i) * dt
		time = append(time, t)
		conc = append(conc, a*(math.Exp(-ke*t)-math.Exp(-ka*t)))
	}
	return
}

func TestCalculateExponentialCurve(t *testing.T) {
	const (
		a  = 1.0
		ka = 0.1
		ke = 0.01
	)
	time, conc := bateman(a, ka, ke, 801, 5) // 0..4000 min
	dose := units.Q(0.9, "mmole")
	r := Calculate(time, conc, "rap", &dose)

	if !r.Kel.Defined {
		t.Fatal("kel undefined")
	}
	if math.Abs(r.Kel.Value-ke) > ke*0.01 {
		t.Fatalf("kel = %v, want ~%v", r.Kel.Value, ke)
	}
	if math.Abs(r.Thalf.Value-math.Ln2/ke) > math.Ln2/ke*0.01 {
		t.Fatalf("thalf = %v", r.Thalf.Value)
	}

	wantAUC := a * (1/ke - 1/ka)
	if math.Abs(r.AUCinf.Value-wantAUC) > wantAUC*0.01 {
		t.Fatalf("aucinf = %v, want ~%v", r.AUCinf.Value, wantAUC)
	}

	wantTmax := math.Log(ka/ke) / (ka - ke)
	if math.Abs(r.Tmax.Value-wantTmax) > 5 {
		t.Fatalf("tmax = %v, want ~%v", r.Tmax.Value, wantTmax)
	}

	wantCL := dose.Value / wantAUC
	if math.Abs(r.CL.Value-wantCL) > wantCL*0.02 {
		t.Fatalf("cl = %v, want ~%v", r.CL.Value, wantCL)
	}
	if math.Abs(r.Vd.Value-wantCL/ke) > wantCL/ke*0.03 {
		t.Fatalf("vd = %v, want ~%v", r.Vd.Value, wantCL/ke)
	}
}

func TestCalculateWithoutDose(t *testing.T) {
	time, conc := bateman(1, 0.1, 0.01, 500, 5)
	r := Calculate(time, conc, "rx", nil)
	if r.CL.Defined || r.Vd.Defined || r.Dose.Defined {
		t.Fatal("dose metrics defined without a dose")
	}
	if !r.AUCend.Defined || !r.Kel.Defined {
		t.Fatal("dose-free metrics should still be defined")
	}
}

func TestCalculateDegenerateZeroCurve(t *testing.T) {
	time := []float64{0, 10, 20, 30}
	conc := []float64{0, 0, 0, 0}
	r := Calculate(time, conc, "rap", nil)
	if !r.AUCend.Defined || r.AUCend.Value != 0 {
		t.Fatalf("auc = %+v, want defined 0", r.AUCend)
	}
	for name, v := range map[string]Value{
		"tmax": r.Tmax, "cmax": r.Cmax, "kel": r.Kel, "thalf": r.Thalf, "aucinf": r.AUCinf,
	} {
		if v.Defined {
			t.Fatalf("%s defined on a flat curve", name)
		}
	}
}

func TestCalculateRisingTailHasNoKel(t *testing.T) {
	time := []float64{0, 10, 20, 30, 40, 50}
	conc := []float64{0, 1, 2, 3, 4, 5}
	r := Calculate(time, conc, "rap", nil)
	if r.Kel.Defined {
		t.Fatal("kel defined for a rising curve")
	}
}

func fakeScan(doses []float64) *simulate.ScanResult {
	res := &simulate.ScanResult{
		Dimensions: []simulate.Dimension{{
			Parameter: "PODOSE_rap",
			Values:    units.A(doses, "mg"),
		}},
	}
	for _, d := range doses {
		time, conc := bateman(d/10, 0.1, 0.01, 400, 5)
		rx := make([]float64, len(conc))
		doseSeries := make([]float64, len(time))
		for i := range conc {
			rx[i] = conc[i] / 2
			doseSeries[i] = d * math.Exp(-0.03*time[i])
		}
		doseSeries[0] = d
		res.Results = append(res.Results, &simulate.Result{
			Time: time,
			Values: map[string][]float64{
				"[Cveblood_rap]": conc,
				"[Cve_rx]":       rx,
				"PODOSE_rap":     doseSeries,
			},
			Units: map[string]string{
				"time": "min", "[Cveblood_rap]": "mM", "[Cve_rx]": "mM", "PODOSE_rap": "mg",
			},
		})
	}
	return res
}

func TestCalculateScanPKConvertsSeriesUnits(t *testing.T) {
	canonical := fakeScan([]float64{2})
	rescaled := fakeScan([]float64{2})
	r := rescaled.Results[0]
	for i := range r.Time {
		r.Time[i] /= 60
		r.Values["[Cveblood_rap]"][i] *= 1e3
		r.Values["[Cve_rx]"][i] *= 1e3
	}
	r.Units["time"] = "hr"
	r.Units["[Cveblood_rap]"] = "µmole/l"
	r.Units["[Cve_rx]"] = "µmole/l"

	want, err := CalculateScanPK(canonical, RapamycinAnalytes(914.1719))
	if err != nil {
		t.Fatal(err)
	}
	got, err := CalculateScanPK(rescaled, RapamycinAnalytes(914.1719))
	if err != nil {
		t.Fatal(err)
	}
	for i := range want.Rows {
		w, g := want.Rows[i], got.Rows[i]
		if g.AUCend.Unit != "mM*min" {
			t.Fatalf("auc unit %q not canonical", g.AUCend.Unit)
		}
		if math.Abs(g.AUCend.Value-w.AUCend.Value) > math.Abs(w.AUCend.Value)*1e-9 {
			t.Fatalf("auc differs after unit conversion: %v vs %v", g.AUCend.Value, w.AUCend.Value)
		}
		if w.Kel.Defined != g.Kel.Defined || (w.Kel.Defined && math.Abs(g.Kel.Value-w.Kel.Value) > w.Kel.Value*1e-9) {
			t.Fatalf("kel differs after unit conversion: %+v vs %+v", g.Kel, w.Kel)
		}
	}
}

func TestCalculateScanPK(t *testing.T) {
	res := fakeScan([]float64{0, 2, 10})
	table, err := CalculateScanPK(res, RapamycinAnalytes(914.1719))
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 6 {
		t.Fatalf("got %d rows, want coordinates x analytes = 6", len(table.Rows))
	}

	// zero-dose arm still has a row, with undefined terminal metrics
	zero := table.Rows[0]
	if zero.Substance != "rap" || zero.ScanValue.Value != 0 {
		t.Fatalf("unexpected first row: %+v", zero)
	}
	if zero.Kel.Defined {
		t.Fatal("kel defined on zero-dose arm")
	}
	if !zero.AUCend.Defined {
		t.Fatal("auc missing on zero-dose arm")
	}

	// parent rows carry the molar dose, metabolite rows do not
	parent := table.Rows[1]
	if !parent.Dose.Defined {
		t.Fatal("parent dose undefined")
	}
	wantDose := 2.0 / 914.1719
	if math.Abs(parent.Dose.Value-wantDose) > wantDose*1e-9 {
		t.Fatalf("dose = %v mmole, want %v", parent.Dose.Value, wantDose)
	}
	if !parent.CL.Defined || !parent.Vd.Defined {
		t.Fatal("parent clearance metrics undefined")
	}
	for _, row := range table.Rows[3:] {
		if row.Substance != "rx" {
			t.Fatalf("expected metabolite rows, got %s", row.Substance)
		}
		if row.Dose.Defined || row.CL.Defined || row.Vd.Defined {
			t.Fatal("metabolite row has dose metrics")
		}
	}
}

func TestCalculateScanPKRejectsMultiDim(t *testing.T) {
	res := fakeScan([]float64{2})
	res.Dimensions = append(res.Dimensions, simulate.Dimension{
		Parameter: "GU__f_cyp3a4",
		Values:    units.A([]float64{0.5, 1}, "dimensionless"),
	})
	_, err := CalculateScanPK(res, RapamycinAnalytes(914.1719))
	var scanErr *UnsupportedScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("got %v, want UnsupportedScanError", err)
	}
	if scanErr.Dims != 2 {
		t.Fatalf("dims = %d, want 2", scanErr.Dims)
	}
}

func TestTableCSV(t *testing.T) {
	res := fakeScan([]float64{0, 2})
	table, err := CalculateScanPK(res, RapamycinAnalytes(914.1719))
	if err != nil {
		t.Fatal(err)
	}
	out, err := table.CSV()
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 1+4 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "coordinate,scan_parameter,scan_value,scan_unit,substance,dose,dose_unit,auc") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	// undefined kel on the zero-dose arm leaves an empty cell
	if !strings.Contains(lines[1], ",,") {
		t.Fatalf("expected empty cells in zero-dose row: %s", lines[1])
	}

	if _, err := table.JSON(); err != nil {
		t.Fatal(err)
	}
}
