// Package pk computes noncompartmental pharmacokinetic parameters from
// simulated concentration-time curves.
package pk

import (
	"math"

	"rapaflow/internal/units"
)

// Value is one metric with its unit. Undefined values (no terminal phase, no
// dose) keep Defined false rather than being reported as zero.
type Value struct {
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	Defined bool    `json:"defined"`
}

func defined(v float64, unit string) Value { return Value{Value: v, Unit: unit, Defined: true} }
func undefined(unit string) Value          { return Value{Unit: unit} }

// Result holds the noncompartmental metrics of one curve. Time in minutes,
// concentration in mmole/l; dose, when given, in mmole.
type Result struct {
	Substance string `json:"substance"`
	Dose      Value  `json:"dose"`

	AUCend Value `json:"auc"`
	AUCinf Value `json:"aucinf"`
	Tmax   Value `json:"tmax"`
	Cmax   Value `json:"cmax"`
	Tlast  Value `json:"tlast"`
	Clast  Value `json:"clast"`
	Kel    Value `json:"kel"`
	Thalf  Value `json:"thalf"`
	CL     Value `json:"cl"`
	Vd     Value `json:"vd"`
}

// Calculate computes noncompartmental metrics for one concentration curve.
// Dose may be nil (metabolites); dose-normalized metrics stay undefined then.
// Degenerate curves (all zero or non-finite) yield AUC 0 and undefined
// terminal metrics, never an error.
func Calculate(time, conc []float64, substance string, dose *units.Quantity) Result {
	r := Result{
		Substance: substance,
		Dose:      undefined("mmole"),
		AUCend:    defined(0, "mM*min"),
		AUCinf:    undefined("mM*min"),
		Tmax:      undefined("min"),
		Cmax:      undefined("mM"),
		Tlast:     undefined("min"),
		Clast:     undefined("mM"),
		Kel:       undefined("1/min"),
		Thalf:     undefined("min"),
		CL:        undefined("l/min"),
		Vd:        undefined("l"),
	}
	if dose != nil {
		r.Dose = defined(dose.Value, dose.Unit)
	}
	if len(time) != len(conc) || len(time) < 2 {
		return r
	}

	r.AUCend = defined(trapezoid(time, conc), "mM*min")

	imax := -1
	cmax := 0.0
	for i, c := range conc {
		if !math.IsNaN(c) && !math.IsInf(c, 0) && c > cmax {
			cmax, imax = c, i
		}
	}
	if imax < 0 {
		// flat or invalid curve
		return r
	}
	r.Tmax = defined(time[imax], "min")
	r.Cmax = defined(cmax, "mM")
	r.Tlast = defined(time[len(time)-1], "min")
	r.Clast = defined(conc[len(conc)-1], "mM")

	kel, ok := terminalSlope(time, conc, imax)
	if !ok {
		return r
	}
	r.Kel = defined(kel, "1/min")
	r.Thalf = defined(math.Ln2/kel, "min")
	r.AUCinf = defined(r.AUCend.Value+r.Clast.Value/kel, "mM*min")

	if r.Dose.Defined && r.AUCinf.Value > 0 {
		cl := r.Dose.Value / r.AUCinf.Value // mmole / (mM*min) = l/min
		r.CL = defined(cl, "l/min")
		r.Vd = defined(cl/kel, "l")
	}
	return r
}

func trapezoid(time, conc []float64) float64 {
	total := 0.0
	for i := 1; i < len(time); i++ {
		c0, c1 := conc[i-1], conc[i]
		if math.IsNaN(c0) || math.IsNaN(c1) || math.IsInf(c0, 0) || math.IsInf(c1, 0) {
			continue
		}
		total += (c0 + c1) / 2 * (time[i] - time[i-1])
	}
	return total
}

// terminalSlope fits log(conc) against time over the tail of the curve: the
// last 20% of the post-peak points, at least 5 when available, falling back
// to the whole post-peak range. The fit needs at least three positive
// concentrations; flat or rising tails yield no elimination constant.
func terminalSlope(time, conc []float64, imax int) (float64, bool) {
	post := len(time) - imax - 1
	if post < 3 {
		return 0, false
	}
	n := post / 5
	if n < 5 {
		n = 5
	}
	if n > post {
		n = post
	}

	start := len(time) - n
	var ts, cs []float64
	for i := start; i < len(time); i++ {
		if conc[i] > 0 && !math.IsInf(conc[i], 0) {
			ts = append(ts, time[i])
			cs = append(cs, math.Log(conc[i]))
		}
	}
	if len(ts) < 3 {
		// retry over the whole post-peak range
		ts, cs = ts[:0], cs[:0]
		for i := imax + 1; i < len(time); i++ {
			if conc[i] > 0 && !math.IsInf(conc[i], 0) {
				ts = append(ts, time[i])
				cs = append(cs, math.Log(conc[i]))
			}
		}
		if len(ts) < 3 {
			return 0, false
		}
	}

	slope, ok := linregSlope(ts, cs)
	if !ok || slope >= 0 {
		return 0, false
	}
	return -slope, true
}

func linregSlope(x, y []float64) (float64, bool) {
	n := float64(len(x))
	var sx, sy, sxx, sxy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
		sxx += x[i] * x[i]
		sxy += x[i] * y[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, false
	}
	return (n*sxy - sx*sy) / den, true
}
