package model

import "strings"

// State is the evaluation context a rate law reads from: species values
// (concentration or amount per their declaration), parameter values,
// compartment sizes, and fluxes of already-evaluated reactions.
type State interface {
	Value(id string) float64
	Flux(reactionID string) float64
}

// RateLaw is a closed-form rate expression. The network needs only a small
// closed family of law shapes, so laws are typed values rather than parsed
// formula strings; Formula renders the infix form for interchange export.
type RateLaw interface {
	Refs() []string     // species/parameter/compartment identifiers the law reads
	FluxRefs() []string // reaction identifiers whose flux the law reads
	Eval(s State) float64
	Formula() string
}

// Linear is the transport/clearance family:
// (product of activity factors) * k * V * source.
type Linear struct {
	Factors []string
	K       string
	Volume  string
	Source  string
}

func (l Linear) Refs() []string {
	refs := append([]string{}, l.Factors...)
	return append(refs, l.K, l.Volume, l.Source)
}

func (l Linear) FluxRefs() []string { return nil }

func (l Linear) Eval(s State) float64 {
	v := 1.0
	for _, f := range l.Factors {
		v *= s.Value(f)
	}
	return v * s.Value(l.K) * s.Value(l.Volume) * s.Value(l.Source)
}

func (l Linear) Formula() string {
	parts := append([]string{}, l.Factors...)
	parts = append(parts, l.K, l.Volume, l.Source)
	return strings.Join(parts, " * ")
}

// Gradient is fast bidirectional membrane transport: k * V * (from - to).
type Gradient struct {
	K      string
	Volume string
	From   string
	To     string
}

func (g Gradient) Refs() []string      { return []string{g.K, g.Volume, g.From, g.To} }
func (g Gradient) FluxRefs() []string  { return nil }
func (g Gradient) Eval(s State) float64 {
	return s.Value(g.K) * s.Value(g.Volume) * (s.Value(g.From) - s.Value(g.To))
}
func (g Gradient) Formula() string {
	return g.K + " * " + g.Volume + " * (" + g.From + " - " + g.To + ")"
}

// PartitionGradient is flow-limited tissue distribution:
// Q * (from - to/Kp), with Q a flow in volume/time.
type PartitionGradient struct {
	Flow      string
	From      string
	To        string
	Partition string
}

func (p PartitionGradient) Refs() []string {
	return []string{p.Flow, p.From, p.To, p.Partition}
}
func (p PartitionGradient) FluxRefs() []string { return nil }
func (p PartitionGradient) Eval(s State) float64 {
	return s.Value(p.Flow) * (s.Value(p.From) - s.Value(p.To)/s.Value(p.Partition))
}
func (p PartitionGradient) Formula() string {
	return p.Flow + " * (" + p.From + " - " + p.To + "/" + p.Partition + ")"
}

// MichaelisMenten is the saturable metabolism family:
// (factors) * (1 - inhibitors) * Vmax * V * S/(S + Km).
type MichaelisMenten struct {
	Factors    []string
	Inhibitors []string // evaluated as (1 - value), e.g. cirrhosis severity
	Vmax       string
	Volume     string
	Substrate  string
	Km         string
}

func (m MichaelisMenten) Refs() []string {
	refs := append([]string{}, m.Factors...)
	refs = append(refs, m.Inhibitors...)
	return append(refs, m.Vmax, m.Volume, m.Substrate, m.Km)
}

func (m MichaelisMenten) FluxRefs() []string { return nil }

func (m MichaelisMenten) Eval(s State) float64 {
	v := 1.0
	for _, f := range m.Factors {
		v *= s.Value(f)
	}
	for _, f := range m.Inhibitors {
		v *= 1.0 - s.Value(f)
	}
	sub := s.Value(m.Substrate)
	return v * s.Value(m.Vmax) * s.Value(m.Volume) * sub / (sub + s.Value(m.Km))
}

func (m MichaelisMenten) Formula() string {
	parts := append([]string{}, m.Factors...)
	for _, f := range m.Inhibitors {
		parts = append(parts, "(1 - "+f+")")
	}
	parts = append(parts, m.Vmax, m.Volume, m.Substrate+"/("+m.Substrate+" + "+m.Km+")")
	return strings.Join(parts, " * ")
}

// Dissolution converts a mass-valued dose parameter into a molar flux:
// (Ka/60) * DOSE/Mr, with Ka declared per hour and model time in minutes.
type Dissolution struct {
	Ka   string
	Dose string
	Mr   string
}

func (d Dissolution) Refs() []string     { return []string{d.Ka, d.Dose, d.Mr} }
func (d Dissolution) FluxRefs() []string { return nil }
func (d Dissolution) Eval(s State) float64 {
	return s.Value(d.Ka) / 60.0 * s.Value(d.Dose) / s.Value(d.Mr)
}
func (d Dissolution) Formula() string {
	return d.Ka + "/60 min_per_hr * " + d.Dose + "/" + d.Mr
}

// FluxRef reuses the flux value of an earlier reaction verbatim. The
// enterohepatic recirculation reaction is defined this way in the source
// model (its rate is the hepatic plasma-export flux, not the biliary-export
// flux); the coupling is preserved as-is.
type FluxRef struct {
	Reaction string
}

func (f FluxRef) Refs() []string        { return nil }
func (f FluxRef) FluxRefs() []string    { return []string{f.Reaction} }
func (f FluxRef) Eval(s State) float64  { return s.Flux(f.Reaction) }
func (f FluxRef) Formula() string       { return f.Reaction }

// ScaledFlux is a reaction flux scaled by a parameter, optionally negated.
// The dose-depletion rate rules use it: d(PODOSE)/dt = -dissolution * Mr.
type ScaledFlux struct {
	Reaction string
	Scale    string
	Negate   bool
}

func (s ScaledFlux) Refs() []string {
	if s.Scale == "" {
		return nil
	}
	return []string{s.Scale}
}

func (s ScaledFlux) FluxRefs() []string { return []string{s.Reaction} }

func (s ScaledFlux) Eval(st State) float64 {
	v := st.Flux(s.Reaction)
	if s.Scale != "" {
		v *= st.Value(s.Scale)
	}
	if s.Negate {
		return -v
	}
	return v
}

func (s ScaledFlux) Formula() string {
	out := s.Reaction
	if s.Scale != "" {
		out += " * " + s.Scale
	}
	if s.Negate {
		return "-" + out
	}
	return out
}

// SumLaw is a scaled sum of state values, used for observables
// (e.g. blood concentration as blood-to-plasma ratio times plasma).
type SumLaw struct {
	Scale string
	Terms []string
}

func (l SumLaw) Refs() []string {
	if l.Scale == "" {
		return append([]string{}, l.Terms...)
	}
	return append([]string{l.Scale}, l.Terms...)
}

func (l SumLaw) FluxRefs() []string { return nil }

func (l SumLaw) Eval(s State) float64 {
	v := 0.0
	for _, r := range l.Terms {
		v += s.Value(r)
	}
	if l.Scale != "" {
		v *= s.Value(l.Scale)
	}
	return v
}

func (l SumLaw) Formula() string {
	body := strings.Join(l.Terms, " + ")
	if len(l.Terms) > 1 {
		body = "(" + body + ")"
	}
	if l.Scale != "" {
		return l.Scale + " * " + body
	}
	return body
}
