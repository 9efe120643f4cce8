package model

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestSubmodelsValidate(t *testing.T) {
	for _, d := range []*Definition{Intestine(), Liver(), Kidney()} {
		if err := d.Validate(); err != nil {
			t.Fatalf("%s: %v", d.ID, err)
		}
	}
}

func TestIntestineTransitChain(t *testing.T) {
	d := Intestine()
	for _, id := range []string{"rx_int_0", "rx_int_1", "rx_int_2", "rx_int_3", "rx_int_4"} {
		if _, ok := d.FindSpecies(id); !ok {
			t.Fatalf("missing chain species %s", id)
		}
	}
	r, ok := d.Reaction("RXEXC_4")
	if !ok {
		t.Fatal("missing terminal chain reaction")
	}
	if r.Product != "rx_feces" {
		t.Fatalf("chain terminates in %s, want rx_feces", r.Product)
	}
}

func TestDissolutionDrainsStomach(t *testing.T) {
	d := Intestine()
	r, ok := d.Reaction("dissolution_rap")
	if !ok {
		t.Fatal("missing dissolution_rap")
	}
	if r.Reactant != "rap_stomach" {
		t.Fatalf("dissolution reactant %q, want rap_stomach", r.Reactant)
	}
	if r.Product != "rap_lumen" {
		t.Fatalf("dissolution product %q, want rap_lumen", r.Product)
	}
	s, ok := d.FindSpecies("rap_stomach")
	if !ok {
		t.Fatal("missing rap_stomach")
	}
	if !s.Boundary {
		t.Fatal("rap_stomach must be a boundary species so the dissolution flux does not deplete it")
	}
}

func TestLiverRecirculationSharesExportFlux(t *testing.T) {
	d := Liver()
	r, ok := d.Reaction("RXEHC")
	if !ok {
		t.Fatal("missing RXEHC")
	}
	law, ok := r.Law.(FluxRef)
	if !ok {
		t.Fatalf("RXEHC law is %T, want FluxRef", r.Law)
	}
	if law.Reaction != "RXEX" {
		t.Fatalf("RXEHC driven by %s, want RXEX", law.Reaction)
	}
}

func TestValidateDuplicateIdentifier(t *testing.T) {
	d := Kidney()
	d.Parameters = append(d.Parameters, Parameter{ID: "rx_urine", Value: 1, Unit: "mg", Constant: true})
	err := d.Validate()
	if err == nil {
		t.Fatal("expected duplicate identifier error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %T, want *ValidationError", err)
	}
	if verr.ID != "rx_urine" {
		t.Fatalf("error on %s, want rx_urine", verr.ID)
	}
}

func TestValidateDanglingSpeciesCompartment(t *testing.T) {
	d := Kidney()
	d.Species[0].Compartment = "Vnope"
	if err := d.Validate(); err == nil {
		t.Fatal("expected unknown compartment error")
	}
}

func TestValidateConcentrationSpeciesNeedsVolume(t *testing.T) {
	d := Kidney()
	d.Species = append(d.Species, Species{
		ID: "rx_mem", Compartment: "Vmem", SubstanceUnit: "mmole",
	})
	err := d.Validate()
	if err == nil {
		t.Fatal("expected degenerate compartment error")
	}
	if !strings.Contains(err.Error(), "undefined size") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFluxReferenceMustBeDeclaredEarlier(t *testing.T) {
	d := Liver()
	// move RXEHC in front of the reaction whose flux it uses
	for i := range d.Reactions {
		if d.Reactions[i].ID == "RXEHC" {
			d.Reactions[0], d.Reactions[i] = d.Reactions[i], d.Reactions[0]
		}
	}
	err := d.Validate()
	if err == nil {
		t.Fatal("expected forward flux reference error")
	}
	if !strings.Contains(err.Error(), "not declared earlier") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRateRuleOnConstant(t *testing.T) {
	d := Intestine()
	for i := range d.Parameters {
		if d.Parameters[i].ID == "PODOSE_rap" {
			d.Parameters[i].Constant = true
		}
	}
	if err := d.Validate(); err == nil {
		t.Fatal("expected rate rule on constant error")
	}
}

func TestValidateLawDimension(t *testing.T) {
	d := Kidney()
	for i := range d.Parameters {
		if d.Parameters[i].ID == "RXEX_k" {
			d.Parameters[i].Unit = "mg" // mass where a rate is needed
		}
	}
	err := d.Validate()
	if err == nil {
		t.Fatal("expected dimension error")
	}
	if !strings.Contains(err.Error(), "dimension") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDegenerateCompartment(t *testing.T) {
	if !(Compartment{Value: math.NaN()}).Degenerate() {
		t.Fatal("NaN compartment without source should be degenerate")
	}
	if (Compartment{Value: math.NaN(), ValueFrom: "Vchain"}).Degenerate() {
		t.Fatal("compartment with size parameter is not degenerate")
	}
}
