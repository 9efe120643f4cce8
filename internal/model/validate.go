package model

import (
	"fmt"

	"rapaflow/internal/units"
)

// ValidationError is a construction-time failure: dangling reference,
// duplicate identifier, or a unit mismatch between a formula and its declared
// target unit. These are fail-fast and never silently defaulted.
type ValidationError struct {
	Model string
	ID    string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model %s: %s: %s", e.Model, e.ID, e.Msg)
}

func (d *Definition) fail(id, format string, args ...any) error {
	return &ValidationError{Model: d.ID, ID: id, Msg: fmt.Sprintf(format, args...)}
}

// Validate checks referential integrity, identifier uniqueness and the
// dimensional consistency of every rate law against its declared target unit.
// A valid definition is solvable: every non-boundary species has a complete
// right-hand side from reaction fluxes, and every rate-rule target is
// non-constant.
func (d *Definition) Validate() error {
	seen := map[string]string{}
	claim := func(id, kind string) error {
		if id == "" {
			return d.fail("("+kind+")", "empty identifier")
		}
		if prev, ok := seen[id]; ok {
			return d.fail(id, "duplicate identifier (already declared as %s)", prev)
		}
		seen[id] = kind
		return nil
	}

	for _, c := range d.Compartments {
		if err := claim(c.ID, "compartment"); err != nil {
			return err
		}
		dim, err := units.DimensionOf(c.Unit)
		if err != nil {
			return d.fail(c.ID, "compartment unit: %v", err)
		}
		switch c.Dimensions {
		case 3:
			if dim != units.Volume {
				return d.fail(c.ID, "3-D compartment requires a volume unit, got %q", c.Unit)
			}
		case 2:
			if dim != units.Area {
				return d.fail(c.ID, "2-D compartment requires an area unit, got %q", c.Unit)
			}
		default:
			return d.fail(c.ID, "unsupported spatial dimensions %d", c.Dimensions)
		}
	}
	for _, p := range d.Parameters {
		if err := claim(p.ID, "parameter"); err != nil {
			return err
		}
		if _, err := units.DimensionOf(p.Unit); err != nil {
			return d.fail(p.ID, "parameter unit: %v", err)
		}
	}
	for _, s := range d.Species {
		if err := claim(s.ID, "species"); err != nil {
			return err
		}
		comp, ok := d.Compartment(s.Compartment)
		if !ok {
			return d.fail(s.ID, "species references unknown compartment %q", s.Compartment)
		}
		if !s.AmountOnly {
			if comp.Degenerate() {
				return d.fail(s.ID, "concentration species in compartment %q with undefined size", comp.ID)
			}
			if comp.ValueFrom == "" && comp.Value == 0 {
				return d.fail(s.ID, "concentration species in compartment %q with zero size", comp.ID)
			}
		}
	}

	if err := d.validateCompartmentSources(); err != nil {
		return err
	}
	if err := d.validateReactions(seen); err != nil {
		return err
	}
	if err := d.validateRateRules(seen); err != nil {
		return err
	}
	return d.validateObservables(seen)
}

func (d *Definition) validateCompartmentSources() error {
	for _, c := range d.Compartments {
		if c.ValueFrom == "" {
			continue
		}
		p, ok := d.Parameter(c.ValueFrom)
		if !ok {
			return d.fail(c.ID, "compartment size references unknown parameter %q", c.ValueFrom)
		}
		if p.Unit != c.Unit {
			return d.fail(c.ID, "compartment size parameter %q has unit %q, want %q", p.ID, p.Unit, c.Unit)
		}
	}
	return nil
}

func (d *Definition) validateReactions(seen map[string]string) error {
	declared := map[string]bool{}
	for i := range d.Reactions {
		r := &d.Reactions[i]
		if r.ID == "" {
			return d.fail("(reaction)", "empty identifier")
		}
		if prev, ok := seen[r.ID]; ok {
			return d.fail(r.ID, "duplicate identifier (already declared as %s)", prev)
		}
		seen[r.ID] = "reaction"

		if _, ok := d.Compartment(r.Compartment); !ok {
			return d.fail(r.ID, "reaction sited in unknown compartment %q", r.Compartment)
		}
		if r.Reactant != "" {
			if _, ok := d.FindSpecies(r.Reactant); !ok {
				return d.fail(r.ID, "unknown reactant species %q", r.Reactant)
			}
		}
		if r.Product == "" {
			return d.fail(r.ID, "reaction without product")
		}
		if _, ok := d.FindSpecies(r.Product); !ok {
			return d.fail(r.ID, "unknown product species %q", r.Product)
		}
		if r.Law == nil {
			return d.fail(r.ID, "reaction without rate law")
		}
		rdim, err := units.DimensionOf(r.Unit)
		if err != nil {
			return d.fail(r.ID, "reaction rate unit: %v", err)
		}
		if rdim != units.AmountPerTime {
			return d.fail(r.ID, "reaction rate unit %q is not amount/time", r.Unit)
		}
		if err := d.checkLawRefs(r.ID, r.Law, declared); err != nil {
			return err
		}
		if err := d.checkLawUnits(r.ID, r.Law); err != nil {
			return err
		}
		declared[r.ID] = true
	}
	return nil
}

func (d *Definition) validateRateRules(seen map[string]string) error {
	reactions := map[string]bool{}
	for _, r := range d.Reactions {
		reactions[r.ID] = true
	}
	for _, rule := range d.RateRules {
		kind, ok := seen[rule.Target]
		if !ok {
			return d.fail(rule.Target, "rate rule targets unknown identifier")
		}
		var targetUnit string
		switch kind {
		case "parameter":
			p, _ := d.Parameter(rule.Target)
			if p.Constant {
				return d.fail(rule.Target, "rate rule targets constant parameter")
			}
			targetUnit = p.Unit
		case "compartment":
			c, _ := d.Compartment(rule.Target)
			if c.Constant {
				return d.fail(rule.Target, "rate rule targets constant compartment")
			}
			targetUnit = c.Unit
		default:
			return d.fail(rule.Target, "rate rule targets %s, want parameter or compartment", kind)
		}
		if rule.Law == nil {
			return d.fail(rule.Target, "rate rule without law")
		}
		if err := d.checkLawRefs("rate rule "+rule.Target, rule.Law, reactions); err != nil {
			return err
		}
		if err := checkDerivativeUnit(d, rule.Target, targetUnit, rule.Unit); err != nil {
			return err
		}
	}
	return nil
}

func (d *Definition) validateObservables(seen map[string]string) error {
	for _, o := range d.Observables {
		if o.ID == "" {
			return d.fail("(observable)", "empty identifier")
		}
		if prev, ok := seen[o.ID]; ok {
			return d.fail(o.ID, "duplicate identifier (already declared as %s)", prev)
		}
		seen[o.ID] = "observable"
		if o.Law == nil {
			return d.fail(o.ID, "observable without law")
		}
		if _, err := units.DimensionOf(o.Unit); err != nil {
			return d.fail(o.ID, "observable unit: %v", err)
		}
		if err := d.checkLawRefs(o.ID, o.Law, nil); err != nil {
			return err
		}
	}
	return nil
}

// checkLawRefs verifies every identifier a law reads exists, and that flux
// references point at reactions already declared (fluxes are evaluated in
// declaration order, SBML-style).
func (d *Definition) checkLawRefs(owner string, law RateLaw, declaredFluxes map[string]bool) error {
	for _, ref := range law.Refs() {
		if _, ok := d.FindSpecies(ref); ok {
			continue
		}
		if _, ok := d.Parameter(ref); ok {
			continue
		}
		if _, ok := d.Compartment(ref); ok {
			continue
		}
		return d.fail(owner, "rate law references unknown identifier %q", ref)
	}
	for _, ref := range law.FluxRefs() {
		if declaredFluxes == nil || !declaredFluxes[ref] {
			return d.fail(owner, "rate law references flux of reaction %q not declared earlier", ref)
		}
	}
	return nil
}

// checkLawUnits resolves each law family dimensionally against amount/time.
func (d *Definition) checkLawUnits(owner string, law RateLaw) error {
	switch l := law.(type) {
	case Linear:
		if err := d.wantDim(owner, l.K, units.PerTime); err != nil {
			return err
		}
		if err := d.wantDim(owner, l.Volume, units.Volume); err != nil {
			return err
		}
		for _, f := range l.Factors {
			if err := d.wantDim(owner, f, units.Dimensionless); err != nil {
				return err
			}
		}
		return d.wantConcentrationSpecies(owner, l.Source)
	case Gradient:
		if err := d.wantDim(owner, l.K, units.PerTime); err != nil {
			return err
		}
		if err := d.wantDim(owner, l.Volume, units.Volume); err != nil {
			return err
		}
		if err := d.wantConcentrationSpecies(owner, l.From); err != nil {
			return err
		}
		return d.wantConcentrationSpecies(owner, l.To)
	case PartitionGradient:
		if err := d.wantDim(owner, l.Flow, units.Flow); err != nil {
			return err
		}
		if err := d.wantDim(owner, l.Partition, units.Dimensionless); err != nil {
			return err
		}
		if err := d.wantConcentrationSpecies(owner, l.From); err != nil {
			return err
		}
		return d.wantConcentrationSpecies(owner, l.To)
	case MichaelisMenten:
		if err := d.wantDim(owner, l.Vmax, units.AmountPerTimeVol); err != nil {
			return err
		}
		if err := d.wantDim(owner, l.Volume, units.Volume); err != nil {
			return err
		}
		if err := d.wantDim(owner, l.Km, units.Concentration); err != nil {
			return err
		}
		for _, f := range append(append([]string{}, l.Factors...), l.Inhibitors...) {
			if err := d.wantDim(owner, f, units.Dimensionless); err != nil {
				return err
			}
		}
		return d.wantConcentrationSpecies(owner, l.Substrate)
	case Dissolution:
		if err := d.wantDim(owner, l.Ka, units.PerTime); err != nil {
			return err
		}
		if err := d.wantDim(owner, l.Dose, units.Mass); err != nil {
			return err
		}
		return d.wantDim(owner, l.Mr, units.MassPerAmount)
	case FluxRef, ScaledFlux:
		return nil // inherits the referenced reaction's dimension
	default:
		return d.fail(owner, "rate law %T has no dimensional rule", law)
	}
}

func (d *Definition) wantDim(owner, id string, want units.Dimension) error {
	unit, ok := d.unitOf(id)
	if !ok {
		return d.fail(owner, "rate law references unknown identifier %q", id)
	}
	dim, err := units.DimensionOf(unit)
	if err != nil {
		return d.fail(owner, "identifier %q: %v", id, err)
	}
	if dim != want {
		return d.fail(owner, "identifier %q has dimension %s, want %s", id, dim, want)
	}
	return nil
}

func (d *Definition) wantConcentrationSpecies(owner, id string) error {
	s, ok := d.FindSpecies(id)
	if !ok {
		return d.fail(owner, "rate law references unknown species %q", id)
	}
	if s.AmountOnly {
		return d.fail(owner, "species %q is amount-valued; law expects a concentration", id)
	}
	return nil
}

func (d *Definition) unitOf(id string) (string, bool) {
	if p, ok := d.Parameter(id); ok {
		return p.Unit, true
	}
	if c, ok := d.Compartment(id); ok {
		return c.Unit, true
	}
	if s, ok := d.FindSpecies(id); ok {
		if s.AmountOnly {
			return s.SubstanceUnit, true
		}
		return "mM", true
	}
	return "", false
}

// checkDerivativeUnit ensures a rate rule's unit is the per-time form of its
// target's unit (mg target -> mg/min rule).
func checkDerivativeUnit(d *Definition, target, targetUnit, ruleUnit string) error {
	tdim, err := units.DimensionOf(targetUnit)
	if err != nil {
		return d.fail(target, "target unit: %v", err)
	}
	rdim, err := units.DimensionOf(ruleUnit)
	if err != nil {
		return d.fail(target, "rate rule unit: %v", err)
	}
	want, ok := map[units.Dimension]units.Dimension{
		units.Mass:   units.MassPerTime,
		units.Amount: units.AmountPerTime,
		units.Volume: units.Flow,
	}[tdim]
	if !ok {
		return d.fail(target, "rate rule on %s-valued target is not supported", tdim)
	}
	if rdim != want {
		return d.fail(target, "rate rule unit %q has dimension %s, want %s", ruleUnit, rdim, want)
	}
	return nil
}
