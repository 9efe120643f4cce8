package sbml

import (
	"strings"
	"testing"

	"rapaflow/internal/model"
)

func TestExportBody(t *testing.T) {
	d, err := model.Body()
	if err != nil {
		t.Fatal(err)
	}
	out, err := Export(d, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(out)

	for _, want := range []string{
		`level="3"`,
		`version="2"`,
		"http://www.sbml.org/sbml/level3/version2/core",
		`id="rapamycin_body"`,
		`id="GU__Vapical" name="apical membrane" spatialDimensions="2"`,
		`<speciesReference species="rap_ext"`,
		`variable="PODOSE_rap"`,
		`variable="Cve_rap"`,
		"<rateRule",
		"<assignmentRule",
		"<kineticLaw>",
		"http://www.w3.org/1998/Math/MathML",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("export missing %q", want)
		}
	}

	// membrane compartments have no size, their size is never referenced
	if strings.Contains(doc, "NaN") {
		t.Fatal("NaN leaked into export")
	}
	// bracket observables are sanitized to legal identifiers
	if strings.Contains(doc, `variable="[`) {
		t.Fatal("bracket identifier leaked into export")
	}
}

func TestExportLevelVersionSelectNamespace(t *testing.T) {
	out, err := Export(model.Kidney(), 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "level3/version1/core") {
		t.Fatal("namespace does not follow level/version")
	}
}

func TestExportRejectsInvalidModel(t *testing.T) {
	d := model.Kidney()
	d.Species[0].Compartment = "Vnope"
	if _, err := Export(d, 3, 2); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestUnitID(t *testing.T) {
	cases := map[string]string{
		"mmole/min":   "mmole_per_min",
		"1/min":       "per_min",
		"per_hr":      "per_hr",
		"mM*min":      "mM_min",
		"l":           "l",
		"mmole/min/l": "mmole_per_min_per_l",
	}
	for in, want := range cases {
		if got := unitID(in); got != want {
			t.Fatalf("unitID(%q) = %q, want %q", in, got, want)
		}
	}
}
