// Package model implements the declarative compartment/species/reaction builder
// for the whole-body rapamycin PBPK model. A Definition is immutable after
// Validate and safe to share across concurrent simulation runs.
package model

import "math"

// Compartment is a named physical volume (3-D) or membrane area (2-D).
// Membranes that exist only as reaction sites carry a NaN value.
type Compartment struct {
	ID         string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	Value      float64 `json:"value"`
	ValueFrom  string  `json:"value_from,omitempty"` // parameter supplying the initial size
	Unit       string  `json:"unit"`
	Constant   bool    `json:"constant"`
	Dimensions int     `json:"dimensions"` // 3 for volumes, 2 for membranes
	Port       bool    `json:"port,omitempty"`
}

func (c Compartment) Degenerate() bool {
	return math.IsNaN(c.Value) && c.ValueFrom == ""
}

// Species is a chemical entity located in exactly one compartment.
// AmountOnly species (urine, feces accumulators, the stomach dose pool) are
// tracked as amounts; all others are concentrations and require their
// compartment to have a defined nonzero size.
type Species struct {
	ID            string  `json:"id"`
	Name          string  `json:"name,omitempty"`
	Compartment   string  `json:"compartment"`
	InitialValue  float64 `json:"initial_value"`
	SubstanceUnit string  `json:"substance_unit"`
	AmountOnly    bool    `json:"amount_only"` // hasOnlySubstanceUnits
	Boundary      bool    `json:"boundary"`    // clamped, not evolved by reactions
	Port          bool    `json:"port,omitempty"`
}

type Parameter struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Constant bool    `json:"constant"`
	Port     bool    `json:"port,omitempty"`
}

// Reaction transforms Reactant into Product (stoichiometry 1) at the rate given
// by Law, sited in Compartment. An empty Reactant marks an external source
// (dose injection); the matter then comes from a depleting dose parameter.
type Reaction struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Reactant    string  `json:"reactant,omitempty"`
	Product     string  `json:"product"`
	Reversible  bool    `json:"reversible,omitempty"`
	Compartment string  `json:"compartment"`
	Law         RateLaw `json:"-"`
	Unit        string  `json:"unit"` // declared rate unit, amount/time
}

// RateRule couples a non-constant parameter or compartment into the ODE state:
// its time derivative is the law value, in Unit. This is how the oral dose
// parameter PODOSE_rap depletes as the dissolution reaction consumes it.
type RateRule struct {
	Target string  `json:"target"`
	Law    RateLaw `json:"-"`
	Unit   string  `json:"unit"`
}

// Observable is a derived read-out over the state (venous concentrations,
// cumulative urine/feces amounts) reported alongside species by the engine.
type Observable struct {
	ID   string  `json:"id"`
	Name string  `json:"name,omitempty"`
	Law  RateLaw `json:"-"`
	Unit string  `json:"unit"`
}

type PortKind string

const (
	PortCompartment PortKind = "compartment"
	PortSpecies     PortKind = "species"
	PortParameter   PortKind = "parameter"
)

// Port is an element a submodel exports for composition. Ports are matched by
// declared identity (ID, kind, unit), never by incidental name equality alone.
type Port struct {
	ID   string   `json:"id"`
	Kind PortKind `json:"kind"`
	Unit string   `json:"unit"`
}

type Definition struct {
	ID           string        `json:"id"`
	Name         string        `json:"name,omitempty"`
	Compartments []Compartment `json:"compartments"`
	Species      []Species     `json:"species"`
	Parameters   []Parameter   `json:"parameters"`
	Reactions    []Reaction    `json:"reactions"`
	RateRules    []RateRule    `json:"rate_rules,omitempty"`
	Observables  []Observable  `json:"observables,omitempty"`
}

// Ports lists the elements this definition exports for composition.
func (d *Definition) Ports() []Port {
	ports := make([]Port, 0)
	for _, c := range d.Compartments {
		if c.Port {
			ports = append(ports, Port{ID: c.ID, Kind: PortCompartment, Unit: c.Unit})
		}
	}
	for _, s := range d.Species {
		if s.Port {
			ports = append(ports, Port{ID: s.ID, Kind: PortSpecies, Unit: s.SubstanceUnit})
		}
	}
	for _, p := range d.Parameters {
		if p.Port {
			ports = append(ports, Port{ID: p.ID, Kind: PortParameter, Unit: p.Unit})
		}
	}
	return ports
}

func (d *Definition) Compartment(id string) (Compartment, bool) {
	for _, c := range d.Compartments {
		if c.ID == id {
			return c, true
		}
	}
	return Compartment{}, false
}

func (d *Definition) FindSpecies(id string) (Species, bool) {
	for _, s := range d.Species {
		if s.ID == id {
			return s, true
		}
	}
	return Species{}, false
}

func (d *Definition) Parameter(id string) (Parameter, bool) {
	for _, p := range d.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return Parameter{}, false
}

func (d *Definition) Reaction(id string) (*Reaction, bool) {
	for i := range d.Reactions {
		if d.Reactions[i].ID == id {
			return &d.Reactions[i], true
		}
	}
	return nil, false
}

func (d *Definition) SetParameterValue(id string, value float64) bool {
	for i := range d.Parameters {
		if d.Parameters[i].ID == id {
			d.Parameters[i].Value = value
			return true
		}
	}
	return false
}
