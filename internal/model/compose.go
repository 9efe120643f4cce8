package model

import "fmt"

// Submodel pairs a definition with the prefix applied to its non-port
// identifiers when composed into a larger model. Ports keep their bare IDs
// and are matched across submodels by identity.
type Submodel struct {
	Prefix string
	Def    *Definition
}

// Compose merges submodels into a single definition. Port elements with the
// same ID must agree on kind and unit; the first definition encountered
// supplies the value, later ones are folded away. Non-port identifiers are
// prefixed and every rate law reference is rewritten to match.
func Compose(id, name string, subs ...Submodel) (*Definition, error) {
	out := &Definition{ID: id, Name: name}
	ports := map[string]Port{}

	for _, sub := range subs {
		if sub.Def == nil {
			return nil, fmt.Errorf("compose %s: submodel %q has no definition", id, sub.Prefix)
		}
		rename := renameTable(sub)
		for _, p := range sub.Def.Ports() {
			prev, ok := ports[p.ID]
			if !ok {
				ports[p.ID] = p
				continue
			}
			if prev.Kind != p.Kind || prev.Unit != p.Unit {
				return nil, fmt.Errorf("compose %s: port %q declared as (%s, %s) and (%s, %s)",
					id, p.ID, prev.Kind, prev.Unit, p.Kind, p.Unit)
			}
		}
		if err := mergeSubmodel(out, sub, rename); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// renameTable maps every non-port identifier of a submodel to its prefixed
// form. Reactions are always prefixed; they are never ports.
func renameTable(sub Submodel) map[string]string {
	t := map[string]string{}
	add := func(id string, port bool) {
		if !port {
			t[id] = sub.Prefix + id
		}
	}
	for _, c := range sub.Def.Compartments {
		add(c.ID, c.Port)
	}
	for _, s := range sub.Def.Species {
		add(s.ID, s.Port)
	}
	for _, p := range sub.Def.Parameters {
		add(p.ID, p.Port)
	}
	for _, r := range sub.Def.Reactions {
		add(r.ID, false)
	}
	for _, o := range sub.Def.Observables {
		add(o.ID, false)
	}
	return t
}

func mergeSubmodel(out *Definition, sub Submodel, rename map[string]string) error {
	seen := func(id string, port bool) bool {
		if !port {
			return false
		}
		return out.has(id)
	}
	ren := func(id string) string {
		if to, ok := rename[id]; ok {
			return to
		}
		return id
	}

	for _, c := range sub.Def.Compartments {
		if seen(c.ID, c.Port) {
			continue
		}
		c.ID = ren(c.ID)
		c.ValueFrom = ren(c.ValueFrom)
		out.Compartments = append(out.Compartments, c)
	}
	for _, p := range sub.Def.Parameters {
		if seen(p.ID, p.Port) {
			continue
		}
		p.ID = ren(p.ID)
		out.Parameters = append(out.Parameters, p)
	}
	for _, s := range sub.Def.Species {
		if seen(s.ID, s.Port) {
			continue
		}
		s.ID = ren(s.ID)
		s.Compartment = ren(s.Compartment)
		out.Species = append(out.Species, s)
	}
	for _, r := range sub.Def.Reactions {
		r.ID = ren(r.ID)
		r.Reactant = ren(r.Reactant)
		r.Product = ren(r.Product)
		r.Compartment = ren(r.Compartment)
		law, err := renameLaw(r.Law, ren)
		if err != nil {
			return fmt.Errorf("compose %s: reaction %s: %w", out.ID, r.ID, err)
		}
		r.Law = law
		out.Reactions = append(out.Reactions, r)
	}
	for _, rule := range sub.Def.RateRules {
		rule.Target = ren(rule.Target)
		law, err := renameLaw(rule.Law, ren)
		if err != nil {
			return fmt.Errorf("compose %s: rate rule %s: %w", out.ID, rule.Target, err)
		}
		rule.Law = law
		out.RateRules = append(out.RateRules, rule)
	}
	for _, o := range sub.Def.Observables {
		o.ID = ren(o.ID)
		law, err := renameLaw(o.Law, ren)
		if err != nil {
			return fmt.Errorf("compose %s: observable %s: %w", out.ID, o.ID, err)
		}
		o.Law = law
		out.Observables = append(out.Observables, o)
	}
	return nil
}

func (d *Definition) has(id string) bool {
	if _, ok := d.Compartment(id); ok {
		return true
	}
	if _, ok := d.Parameter(id); ok {
		return true
	}
	_, ok := d.FindSpecies(id)
	return ok
}

func renameSlice(ids []string, ren func(string) string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = ren(id)
	}
	return out
}

// renameLaw rewrites a law's identifier references. Laws are small value
// types, so each arm returns a fresh copy.
func renameLaw(law RateLaw, ren func(string) string) (RateLaw, error) {
	switch l := law.(type) {
	case Linear:
		l.Factors = renameSlice(l.Factors, ren)
		l.K = ren(l.K)
		l.Volume = ren(l.Volume)
		l.Source = ren(l.Source)
		return l, nil
	case Gradient:
		l.K = ren(l.K)
		l.Volume = ren(l.Volume)
		l.From = ren(l.From)
		l.To = ren(l.To)
		return l, nil
	case PartitionGradient:
		l.Flow = ren(l.Flow)
		l.From = ren(l.From)
		l.To = ren(l.To)
		l.Partition = ren(l.Partition)
		return l, nil
	case MichaelisMenten:
		l.Factors = renameSlice(l.Factors, ren)
		l.Inhibitors = renameSlice(l.Inhibitors, ren)
		l.Vmax = ren(l.Vmax)
		l.Volume = ren(l.Volume)
		l.Substrate = ren(l.Substrate)
		l.Km = ren(l.Km)
		return l, nil
	case Dissolution:
		l.Ka = ren(l.Ka)
		l.Dose = ren(l.Dose)
		l.Mr = ren(l.Mr)
		return l, nil
	case FluxRef:
		l.Reaction = ren(l.Reaction)
		return l, nil
	case ScaledFlux:
		l.Reaction = ren(l.Reaction)
		if l.Scale != "" {
			l.Scale = ren(l.Scale)
		}
		return l, nil
	case SumLaw:
		if l.Scale != "" {
			l.Scale = ren(l.Scale)
		}
		l.Terms = renameSlice(l.Terms, ren)
		return l, nil
	default:
		return nil, fmt.Errorf("cannot rewrite references of rate law %T", law)
	}
}
