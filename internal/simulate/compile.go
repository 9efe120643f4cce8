package simulate

import (
	"fmt"
	"math"

	"rapaflow/internal/model"
	"rapaflow/internal/units"
)

// system is a definition compiled for integration: species and rate-rule
// targets flattened into a state vector, everything else into a value map.
type system struct {
	def *model.Definition

	stateIndex map[string]int // species + rate rule target -> position in y
	stateIDs   []string
	stateUnits []string

	species   []speciesSlot // parallel to def.Species
	ruleSlots []ruleSlot

	vals  map[string]float64 // parameters and sized compartments
	vals0 map[string]float64 // pristine copy, restored per run

	fluxIndex map[string]int
}

type speciesSlot struct {
	idx         int
	amountOnly  bool
	boundary    bool
	compartment string
}

type ruleSlot struct {
	idx int
	law model.RateLaw
}

func compile(def *model.Definition) (*system, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("compile %s: %w", def.ID, err)
	}

	sys := &system{
		def:        def,
		stateIndex: map[string]int{},
		vals:       map[string]float64{},
		fluxIndex:  map[string]int{},
	}

	addState := func(id, unit string) int {
		i := len(sys.stateIDs)
		sys.stateIndex[id] = i
		sys.stateIDs = append(sys.stateIDs, id)
		sys.stateUnits = append(sys.stateUnits, unit)
		return i
	}

	for _, s := range def.Species {
		unit := concUnit(s)
		idx := addState(s.ID, unit)
		sys.species = append(sys.species, speciesSlot{
			idx:         idx,
			amountOnly:  s.AmountOnly,
			boundary:    s.Boundary,
			compartment: s.Compartment,
		})
	}

	ruleTargets := map[string]bool{}
	for _, r := range def.RateRules {
		ruleTargets[r.Target] = true
		unit := ""
		if p, ok := def.Parameter(r.Target); ok {
			unit = p.Unit
		} else if c, ok := def.Compartment(r.Target); ok {
			unit = c.Unit
		}
		idx := addState(r.Target, unit)
		sys.ruleSlots = append(sys.ruleSlots, ruleSlot{idx: idx, law: r.Law})
	}

	for _, p := range def.Parameters {
		if !ruleTargets[p.ID] {
			sys.vals[p.ID] = p.Value
		}
	}
	for _, c := range def.Compartments {
		if ruleTargets[c.ID] || c.ValueFrom != "" {
			continue
		}
		sys.vals[c.ID] = c.Value
	}

	for i, r := range def.Reactions {
		sys.fluxIndex[r.ID] = i
	}

	sys.vals0 = make(map[string]float64, len(sys.vals))
	for k, v := range sys.vals {
		sys.vals0[k] = v
	}
	return sys, nil
}

// reset restores the pristine value map so runs do not see changes applied by
// earlier runs on the same compiled system.
func (sys *system) reset() {
	for k, v := range sys.vals0 {
		sys.vals[k] = v
	}
}

// initialState builds the state vector from the definition's initial values.
func (sys *system) initialState() []float64 {
	y := make([]float64, len(sys.stateIDs))
	for i, s := range sys.def.Species {
		y[sys.species[i].idx] = s.InitialValue
	}
	for _, r := range sys.def.RateRules {
		idx := sys.stateIndex[r.Target]
		if p, ok := sys.def.Parameter(r.Target); ok {
			y[idx] = p.Value
		} else if c, ok := sys.def.Compartment(r.Target); ok {
			y[idx] = c.Value
		}
	}
	return y
}

// view evaluates identifiers against a state vector and the fluxes computed
// so far within one right-hand-side evaluation.
type view struct {
	sys    *system
	y      []float64
	fluxes []float64
}

func (v view) Value(id string) float64 {
	if i, ok := v.sys.stateIndex[id]; ok {
		return v.y[i]
	}
	if val, ok := v.sys.vals[id]; ok {
		return val
	}
	if c, ok := v.sys.def.Compartment(id); ok && c.ValueFrom != "" {
		return v.Value(c.ValueFrom)
	}
	return math.NaN()
}

func (v view) Flux(id string) float64 {
	return v.fluxes[v.sys.fluxIndex[id]]
}

// deriv computes dy/dt at the given state.
func (sys *system) deriv(y, dy, fluxes []float64) {
	v := view{sys: sys, y: y, fluxes: fluxes}
	for i := range dy {
		dy[i] = 0
	}
	for i, r := range sys.def.Reactions {
		fluxes[i] = r.Law.Eval(v)
	}
	for i, r := range sys.def.Reactions {
		flux := fluxes[i]
		if r.Reactant != "" {
			sys.apply(v, r.Reactant, -flux, dy)
		}
		sys.apply(v, r.Product, flux, dy)
	}
	for _, slot := range sys.ruleSlots {
		dy[slot.idx] = slot.law.Eval(v)
	}
}

// apply adds an amount flux to a species derivative, normalizing by the
// compartment volume for concentration species. Boundary species ignore
// reaction fluxes.
func (sys *system) apply(v view, speciesID string, flux float64, dy []float64) {
	i := sys.stateIndex[speciesID]
	slot := sys.species[i]
	if slot.boundary {
		return
	}
	if slot.amountOnly {
		dy[i] += flux
		return
	}
	dy[i] += flux / v.Value(slot.compartment)
}

// applyChanges writes segment changes into the state vector and value map,
// converting each quantity into the target's declared unit.
func (sys *system) applyChanges(y []float64, changes map[string]units.Quantity) error {
	for id, q := range changes {
		unit, err := sys.targetUnit(id)
		if err != nil {
			return err
		}
		conv, err := q.Convert(unit)
		if err != nil {
			return fmt.Errorf("change %s: %w", id, err)
		}
		if i, ok := sys.stateIndex[id]; ok {
			y[i] = conv.Value
			continue
		}
		if _, ok := sys.vals[id]; ok {
			sys.vals[id] = conv.Value
			continue
		}
		return fmt.Errorf("change %s: identifier not settable", id)
	}
	return nil
}

func (sys *system) targetUnit(id string) (string, error) {
	if p, ok := sys.def.Parameter(id); ok {
		return p.Unit, nil
	}
	if c, ok := sys.def.Compartment(id); ok {
		return c.Unit, nil
	}
	if s, ok := sys.def.FindSpecies(id); ok {
		return concUnit(s), nil
	}
	return "", fmt.Errorf("change %s: unknown identifier", id)
}

func concUnit(s model.Species) string {
	if s.AmountOnly {
		return s.SubstanceUnit
	}
	return s.SubstanceUnit + "/l"
}
