package experiments

import (
	"context"
	"errors"
	"testing"

	"rapaflow/internal/model"
	"rapaflow/internal/simulate"
	"rapaflow/internal/util"
)

func TestRegistry(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if got := r.ExperimentIDs(); len(got) != 4 {
		t.Fatalf("experiments: %v", got)
	}

	ids, err := r.Group("all")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 4 {
		t.Fatalf("group all: %v", ids)
	}

	if _, err := r.Group("nope"); !errors.Is(err, util.ErrUnknownGroup) {
		t.Fatalf("got %v, want ErrUnknownGroup", err)
	}
	if _, err := r.Experiment("nope"); !errors.Is(err, util.ErrUnknownExperiment) {
		t.Fatalf("got %v, want ErrUnknownExperiment", err)
	}
}

func TestExperimentValidateReferentialIntegrity(t *testing.T) {
	e := &Experiment{
		ID:      "broken",
		PKScans: []string{"no_such_scan"},
	}
	if err := e.Validate(); err == nil {
		t.Fatal("expected referential integrity error")
	}

	e = &Experiment{
		ID:          "broken2",
		FitMappings: []FitMapping{{ID: "fm", Simulation: "missing"}},
	}
	if err := e.Validate(); err == nil {
		t.Fatal("expected fit mapping error")
	}
}

func TestZimmerman1997Protocol(t *testing.T) {
	e := Zimmerman1997()
	if err := e.Validate(); err != nil {
		t.Fatal(err)
	}
	sim, ok := e.Simulations["rap_RAP6_5"]
	if !ok {
		t.Fatal("missing rap_RAP6_5")
	}
	// 1 first dose + 25 redoses + washout
	if len(sim.Timecourses) != 27 {
		t.Fatalf("got %d segments, want 27", len(sim.Timecourses))
	}

	first := sim.Timecourses[0]
	if q := first.Changes["GU__f_cyp3a4"]; q.Value != 0.6 {
		t.Fatalf("cyclosporine inhibition missing: %v", q)
	}
	if q := first.Changes["ftissue_rap"]; q.Value == 0 {
		t.Fatal("fitted defaults not applied")
	}
	wantDose := 6.5 * 1.78
	if q := first.Changes["PODOSE_rap"]; q.Value != wantDose {
		t.Fatalf("dose = %v, want %v", q.Value, wantDose)
	}
	// every redose delivers the dose again
	if q := sim.Timecourses[13].Changes["PODOSE_rap"]; q.Value != wantDose {
		t.Fatalf("redose = %v, want %v", q.Value, wantDose)
	}
	if last := sim.Timecourses[26]; last.End != 200*60 {
		t.Fatalf("washout length %v, want 12000", last.End)
	}
}

func TestDoseDependencyProtocol(t *testing.T) {
	e := DoseDependency()
	if err := e.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(e.Simulations) != 10 {
		t.Fatalf("got %d simulations, want 2 routes x 5 doses", len(e.Simulations))
	}
	iv, ok := e.Simulations["rap_iv_40"]
	if !ok {
		t.Fatalf("missing rap_iv_40: %v", e.SimulationNames())
	}
	if q := iv.Timecourses[0].Changes["IVDOSE_rap"]; q.Value != 40 || q.Unit != "mg" {
		t.Fatalf("iv dose = %v", q)
	}
	if _, ok := e.Simulations["rap_po_0"]; !ok {
		t.Fatal("missing zero-dose control arm")
	}
}

func TestParameterScanProtocol(t *testing.T) {
	e := ParameterScan()
	if err := e.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(e.Scans) != 8 || len(e.PKScans) != 8 {
		t.Fatalf("got %d scans, %d pk scans", len(e.Scans), len(e.PKScans))
	}

	scan, ok := e.Scans["scan_po_cyp3a4_gu_scan"]
	if !ok {
		t.Fatal("missing cyp3a4 gut scan")
	}
	if len(scan.Dimensions) != 1 {
		t.Fatalf("scan has %d dimensions", len(scan.Dimensions))
	}
	vals := scan.Dimensions[0].Values.Values
	if len(vals) != 11 {
		t.Fatalf("got %d scan values, want 11 (10 + default)", len(vals))
	}
	hasDefault := false
	for i, v := range vals {
		if v == 1.0 {
			hasDefault = true
		}
		if i > 0 && vals[i] < vals[i-1] {
			t.Fatal("scan values not sorted")
		}
	}
	if !hasDefault {
		t.Fatal("default value missing from scan range")
	}

	if q := scan.Simulation.Timecourses[0].Changes["PODOSE_rap"]; q.Value != 2 {
		t.Fatalf("scan dose = %v, want 2 mg", q.Value)
	}
}

func TestCovariateTables(t *testing.T) {
	// renal categories are ordered by decreasing function
	order := []RenalFunction{RenalNormal, RenalMild, RenalModerate, RenalSevere, RenalEndStage}
	for i := 1; i < len(order); i++ {
		if RenalFactor[order[i]] >= RenalFactor[order[i-1]] {
			t.Fatalf("renal factor not decreasing at %s", order[i])
		}
	}
	if CirrhosisFactor[CirrhosisControl] != 0 {
		t.Fatal("control cirrhosis must be 0")
	}
	if CYP3A5Activity[GenotypeCYP3A5_3_3] != 0.5 {
		t.Fatalf("CYP3A5 *3/*3 activity = %v", CYP3A5Activity[GenotypeCYP3A5_3_3])
	}
	if CYP3A4Activity[GenotypeCYP3A4_1G_1G] != 1.2 {
		t.Fatalf("CYP3A4 *1G/*1G activity = %v", CYP3A4Activity[GenotypeCYP3A4_1G_1G])
	}
}

func TestCovariateStudyProtocol(t *testing.T) {
	e := CovariateStudy()
	if err := e.Validate(); err != nil {
		t.Fatal(err)
	}
	// 3 CYP3A4 + 3 CYP3A5 diplotypes + fed/fasted
	if len(e.Simulations) != 8 {
		t.Fatalf("got %d arms: %v", len(e.Simulations), e.Simulations)
	}

	sim, ok := e.Simulations["rap_cyp3a5_3_3"]
	if !ok {
		t.Fatal("missing rap_cyp3a5_3_3")
	}
	changes := sim.Timecourses[0].Changes
	if q := changes["GU__f_cyp3a5"]; q.Value != CYP3A5Activity[GenotypeCYP3A5_3_3] {
		t.Fatalf("GU__f_cyp3a5 = %v", q)
	}
	if q := changes["LI__f_cyp3a5"]; q.Value != CYP3A5Activity[GenotypeCYP3A5_3_3] {
		t.Fatalf("LI__f_cyp3a5 = %v", q)
	}
	if q := changes["PODOSE_rap"]; q.Value != 2.0 {
		t.Fatalf("dose = %v", q)
	}

	fed, ok := e.Simulations["rap_fed"]
	if !ok {
		t.Fatal("missing rap_fed")
	}
	fasted := e.Simulations["rap_fasted"]
	fedKa := fed.Timecourses[0].Changes["Ka_dis_rap"].Value
	fastedKa := fasted.Timecourses[0].Changes["Ka_dis_rap"].Value
	if fedKa >= fastedKa {
		t.Fatalf("fed dissolution %v should be slower than fasted %v", fedKa, fastedKa)
	}
	if e.Colors["rap_fed"] != FastingColors[FastingFed] {
		t.Fatalf("fed color = %q", e.Colors["rap_fed"])
	}
}

func TestDoseDependencySimulationRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("integration")
	}
	def, err := model.Body()
	if err != nil {
		t.Fatal(err)
	}
	eng := simulate.NewRK4Engine(0)
	e := DoseDependency()
	res, err := eng.RunTimecourse(context.Background(), def, e.Simulations["rap_po_10"])
	if err != nil {
		t.Fatal(err)
	}
	conc, _ := res.Series("[Cveblood_rap]")
	peak := 0.0
	for _, c := range conc {
		if c > peak {
			peak = c
		}
	}
	if peak <= 0 {
		t.Fatal("no drug in blood after 10 mg po")
	}
}
