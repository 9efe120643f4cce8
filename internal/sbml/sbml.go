// Package sbml serializes a model definition into SBML-shaped XML for
// interchange with external tooling. Rate laws are emitted as MathML built
// directly from the typed law families.
package sbml

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"rapaflow/internal/model"
)

const mathMLNS = "http://www.w3.org/1998/Math/MathML"

type document struct {
	XMLName xml.Name `xml:"sbml"`
	NS      string   `xml:"xmlns,attr"`
	Level   int      `xml:"level,attr"`
	Version int      `xml:"version,attr"`
	Model   mdl      `xml:"model"`
}

type mdl struct {
	ID                 string              `xml:"id,attr"`
	Name               string              `xml:"name,attr,omitempty"`
	TimeUnits          string              `xml:"timeUnits,attr"`
	Compartments       []compartment       `xml:"listOfCompartments>compartment"`
	Species            []species           `xml:"listOfSpecies>species"`
	Parameters         []parameter         `xml:"listOfParameters>parameter"`
	InitialAssignments []initialAssignment `xml:"listOfInitialAssignments>initialAssignment,omitempty"`
	Rules              []rule              `xml:"listOfRules>any,omitempty"`
	Reactions          []reaction          `xml:"listOfReactions>reaction"`
}

type compartment struct {
	ID                string  `xml:"id,attr"`
	Name              string  `xml:"name,attr,omitempty"`
	SpatialDimensions int     `xml:"spatialDimensions,attr"`
	Size              *string `xml:"size,attr,omitempty"`
	Units             string  `xml:"units,attr"`
	Constant          bool    `xml:"constant,attr"`
}

type species struct {
	ID                   string `xml:"id,attr"`
	Name                 string `xml:"name,attr,omitempty"`
	Compartment          string `xml:"compartment,attr"`
	InitialConcentration string `xml:"initialConcentration,attr,omitempty"`
	InitialAmount        string `xml:"initialAmount,attr,omitempty"`
	SubstanceUnits       string `xml:"substanceUnits,attr"`
	HasOnlySubstanceUnit bool   `xml:"hasOnlySubstanceUnits,attr"`
	BoundaryCondition    bool   `xml:"boundaryCondition,attr"`
	Constant             bool   `xml:"constant,attr"`
}

type parameter struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr,omitempty"`
	Value    string `xml:"value,attr,omitempty"`
	Units    string `xml:"units,attr"`
	Constant bool   `xml:"constant,attr"`
}

type initialAssignment struct {
	Symbol string  `xml:"symbol,attr"`
	Math   mathdoc `xml:"math"`
}

type rule struct {
	XMLName  xml.Name
	Variable string  `xml:"variable,attr"`
	Math     mathdoc `xml:"math"`
}

type reaction struct {
	ID         string      `xml:"id,attr"`
	Name       string      `xml:"name,attr,omitempty"`
	Reversible bool        `xml:"reversible,attr"`
	Reactants  []specRef   `xml:"listOfReactants>speciesReference,omitempty"`
	Products   []specRef   `xml:"listOfProducts>speciesReference,omitempty"`
	Kinetic    *kineticLaw `xml:"kineticLaw,omitempty"`
}

type specRef struct {
	Species       string `xml:"species,attr"`
	Stoichiometry int    `xml:"stoichiometry,attr"`
	Constant      bool   `xml:"constant,attr"`
}

type kineticLaw struct {
	Math mathdoc `xml:"math"`
}

type mathdoc struct {
	Expr expr
}

// expr is a MathML expression node: an identifier, a number or an operator
// application.
type expr interface {
	encode(e *xml.Encoder) error
}

type ci string

func (c ci) encode(e *xml.Encoder) error {
	return e.EncodeElement(string(c), xml.StartElement{Name: xml.Name{Local: "ci"}})
}

type cn float64

func (c cn) encode(e *xml.Encoder) error {
	return e.EncodeElement(fmt.Sprintf("%g", float64(c)), xml.StartElement{Name: xml.Name{Local: "cn"}})
}

type apply struct {
	op   string
	args []expr
}

func (a apply) encode(e *xml.Encoder) error {
	start := xml.StartElement{Name: xml.Name{Local: "apply"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	op := xml.StartElement{Name: xml.Name{Local: a.op}}
	if err := e.EncodeToken(op); err != nil {
		return err
	}
	if err := e.EncodeToken(op.End()); err != nil {
		return err
	}
	for _, arg := range a.args {
		if err := arg.encode(e); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func (m mathdoc) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "math"
	start.Attr = []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: mathMLNS}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if m.Expr != nil {
		if err := m.Expr.encode(e); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// Export serializes the definition. Level and version select the SBML
// namespace; the model content is identical across L3 minor versions.
func Export(d *model.Definition, level, version int) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("export %s: %w", d.ID, err)
	}

	doc := document{
		NS:      fmt.Sprintf("http://www.sbml.org/sbml/level%d/version%d/core", level, version),
		Level:   level,
		Version: version,
		Model: mdl{
			ID:        d.ID,
			Name:      d.Name,
			TimeUnits: "min",
		},
	}

	for _, c := range d.Compartments {
		out := compartment{
			ID:                c.ID,
			Name:              c.Name,
			SpatialDimensions: c.Dimensions,
			Units:             unitID(c.Unit),
			Constant:          c.Constant,
		}
		if !math.IsNaN(c.Value) && c.ValueFrom == "" {
			s := fmt.Sprintf("%g", c.Value)
			out.Size = &s
		}
		doc.Model.Compartments = append(doc.Model.Compartments, out)
		if c.ValueFrom != "" {
			doc.Model.InitialAssignments = append(doc.Model.InitialAssignments, initialAssignment{
				Symbol: c.ID,
				Math:   mathdoc{Expr: ci(c.ValueFrom)},
			})
		}
	}
	for _, s := range d.Species {
		out := species{
			ID:                   s.ID,
			Name:                 s.Name,
			Compartment:          s.Compartment,
			SubstanceUnits:       unitID(s.SubstanceUnit),
			HasOnlySubstanceUnit: s.AmountOnly,
			BoundaryCondition:    s.Boundary,
		}
		if s.AmountOnly {
			out.InitialAmount = fmt.Sprintf("%g", s.InitialValue)
		} else {
			out.InitialConcentration = fmt.Sprintf("%g", s.InitialValue)
		}
		doc.Model.Species = append(doc.Model.Species, out)
	}
	for _, p := range d.Parameters {
		doc.Model.Parameters = append(doc.Model.Parameters, parameter{
			ID:       p.ID,
			Name:     p.Name,
			Value:    fmt.Sprintf("%g", p.Value),
			Units:    unitID(p.Unit),
			Constant: p.Constant,
		})
	}
	// observables become assignment-ruled parameters
	for _, o := range d.Observables {
		doc.Model.Parameters = append(doc.Model.Parameters, parameter{
			ID:       observableID(o.ID),
			Name:     o.Name,
			Units:    unitID(o.Unit),
			Constant: false,
		})
	}

	for _, r := range d.RateRules {
		m, err := lawMath(r.Law)
		if err != nil {
			return nil, fmt.Errorf("export %s: rate rule %s: %w", d.ID, r.Target, err)
		}
		doc.Model.Rules = append(doc.Model.Rules, rule{
			XMLName:  xml.Name{Local: "rateRule"},
			Variable: r.Target,
			Math:     mathdoc{Expr: m},
		})
	}
	for _, o := range d.Observables {
		m, err := lawMath(o.Law)
		if err != nil {
			return nil, fmt.Errorf("export %s: observable %s: %w", d.ID, o.ID, err)
		}
		doc.Model.Rules = append(doc.Model.Rules, rule{
			XMLName:  xml.Name{Local: "assignmentRule"},
			Variable: observableID(o.ID),
			Math:     mathdoc{Expr: m},
		})
	}

	for _, r := range d.Reactions {
		out := reaction{ID: r.ID, Name: r.Name, Reversible: r.Reversible}
		if r.Reactant != "" {
			out.Reactants = []specRef{{Species: r.Reactant, Stoichiometry: 1, Constant: true}}
		}
		out.Products = []specRef{{Species: r.Product, Stoichiometry: 1, Constant: true}}
		m, err := lawMath(r.Law)
		if err != nil {
			return nil, fmt.Errorf("export %s: reaction %s: %w", d.ID, r.ID, err)
		}
		out.Kinetic = &kineticLaw{Math: mathdoc{Expr: m}}
		doc.Model.Reactions = append(doc.Model.Reactions, out)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", d.ID, err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// lawMath builds the MathML tree for a rate law.
func lawMath(law model.RateLaw) (expr, error) {
	switch l := law.(type) {
	case model.Linear:
		args := cis(l.Factors)
		args = append(args, ci(l.K), ci(l.Volume), ci(l.Source))
		return apply{op: "times", args: args}, nil
	case model.Gradient:
		return apply{op: "times", args: []expr{
			ci(l.K), ci(l.Volume),
			apply{op: "minus", args: []expr{ci(l.From), ci(l.To)}},
		}}, nil
	case model.PartitionGradient:
		return apply{op: "times", args: []expr{
			ci(l.Flow),
			apply{op: "minus", args: []expr{
				ci(l.From),
				apply{op: "divide", args: []expr{ci(l.To), ci(l.Partition)}},
			}},
		}}, nil
	case model.MichaelisMenten:
		args := cis(l.Factors)
		for _, in := range l.Inhibitors {
			args = append(args, apply{op: "minus", args: []expr{cn(1), ci(in)}})
		}
		args = append(args, ci(l.Vmax), ci(l.Volume),
			apply{op: "divide", args: []expr{
				ci(l.Substrate),
				apply{op: "plus", args: []expr{ci(l.Substrate), ci(l.Km)}},
			}})
		return apply{op: "times", args: args}, nil
	case model.Dissolution:
		return apply{op: "times", args: []expr{
			apply{op: "divide", args: []expr{ci(l.Ka), cn(60)}},
			apply{op: "divide", args: []expr{ci(l.Dose), ci(l.Mr)}},
		}}, nil
	case model.FluxRef:
		return ci(l.Reaction), nil
	case model.ScaledFlux:
		inner := expr(ci(l.Reaction))
		if l.Scale != "" {
			inner = apply{op: "times", args: []expr{inner, ci(l.Scale)}}
		}
		if l.Negate {
			inner = apply{op: "minus", args: []expr{inner}}
		}
		return inner, nil
	case model.SumLaw:
		var sum expr
		if len(l.Terms) == 1 {
			sum = ci(l.Terms[0])
		} else {
			sum = apply{op: "plus", args: cis(l.Terms)}
		}
		if l.Scale != "" {
			sum = apply{op: "times", args: []expr{ci(l.Scale), sum}}
		}
		return sum, nil
	default:
		return nil, fmt.Errorf("no MathML form for rate law %T", law)
	}
}

func cis(ids []string) []expr {
	out := make([]expr, 0, len(ids))
	for _, id := range ids {
		out = append(out, ci(id))
	}
	return out
}

// unitID turns a unit string into an SBML identifier.
func unitID(unit string) string {
	if unit == "-" {
		return "dimensionless"
	}
	if strings.HasPrefix(unit, "1/") {
		unit = "per_" + unit[2:]
	}
	return strings.NewReplacer("/", "_per_", "*", "_").Replace(unit)
}

// observableID strips the bracket notation used for concentration
// observables; SBML identifiers cannot contain brackets.
func observableID(id string) string {
	return strings.NewReplacer("[", "", "]", "").Replace(id)
}
