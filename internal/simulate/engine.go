package simulate

import (
	"context"
	"fmt"
	"math"

	"rapaflow/internal/model"
	"rapaflow/internal/units"
	"rapaflow/internal/util"
)

// RK4Engine is the reference integrator: classic fixed-step fourth-order
// Runge-Kutta. MaxStep bounds the internal step in minutes; the fast
// membrane equilibration reactions (k = 100/min) need a step well below
// 1/100 min for stability.
type RK4Engine struct {
	MaxStep float64
}

// DefaultMaxStep keeps h*lambda safely inside RK4's stability region
// (|h*lambda| < 2.78 on the real axis). The stiffest mode is not a bare rate
// constant: the reversible hepatic gradients act on both sides of the
// membrane, so their difference mode decays at roughly
// k*(V/Vext + V/Vli) ~ 200/min for k = 100/min.
const DefaultMaxStep = 0.005

func NewRK4Engine(maxStep float64) *RK4Engine {
	if maxStep <= 0 {
		maxStep = DefaultMaxStep
	}
	return &RK4Engine{MaxStep: maxStep}
}

func (e *RK4Engine) RunTimecourse(ctx context.Context, def *model.Definition, sim TimecourseSim) (*Result, error) {
	sys, err := compile(def)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, sys, sim)
}

func (e *RK4Engine) RunScan(ctx context.Context, def *model.Definition, sim ScanSim) (*ScanResult, error) {
	sys, err := compile(def)
	if err != nil {
		return nil, err
	}
	if len(sim.Dimensions) == 0 {
		return nil, fmt.Errorf("scan %s: no dimensions", def.ID)
	}
	for _, dim := range sim.Dimensions {
		if len(dim.Values.Values) == 0 {
			return nil, fmt.Errorf("scan %s: dimension %s has no values", def.ID, dim.Parameter)
		}
		if _, err := sys.targetUnit(dim.Parameter); err != nil {
			return nil, fmt.Errorf("scan %s: %w", def.ID, err)
		}
	}

	total := 1
	for _, dim := range sim.Dimensions {
		total *= len(dim.Values.Values)
	}
	out := &ScanResult{Dimensions: sim.Dimensions, Results: make([]*Result, 0, total)}

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan %s: %w", def.ID, err)
		}
		idx := out.Coordinate(i)
		coord, err := coordinateSim(sim, idx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", def.ID, err)
		}
		res, err := e.run(ctx, sys, coord)
		if err != nil {
			return nil, fmt.Errorf("scan %s coordinate %v: %w", def.ID, idx, err)
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}

// coordinateSim injects the dimension values of one scan coordinate into the
// first segment's changes.
func coordinateSim(sim ScanSim, idx []int) (TimecourseSim, error) {
	if len(sim.Simulation.Timecourses) == 0 {
		return TimecourseSim{}, fmt.Errorf("empty simulation")
	}
	out := TimecourseSim{Timecourses: append([]Timecourse{}, sim.Simulation.Timecourses...)}
	first := out.Timecourses[0]
	merged := make(map[string]units.Quantity, len(first.Changes)+len(sim.Dimensions))
	for k, v := range first.Changes {
		merged[k] = v
	}
	for d, dim := range sim.Dimensions {
		merged[dim.Parameter] = units.Q(dim.Values.Values[idx[d]], dim.Values.Unit)
	}
	first.Changes = merged
	out.Timecourses[0] = first
	return out, nil
}

func (e *RK4Engine) run(ctx context.Context, sys *system, sim TimecourseSim) (*Result, error) {
	if len(sim.Timecourses) == 0 {
		return nil, fmt.Errorf("run %s: no timecourses", sys.def.ID)
	}

	sys.reset()
	y := sys.initialState()
	n := len(y)
	dy := make([]float64, n)
	k1 := make([]float64, n)
	k2 := make([]float64, n)
	k3 := make([]float64, n)
	k4 := make([]float64, n)
	tmp := make([]float64, n)
	fluxes := make([]float64, len(sys.def.Reactions))

	res := &Result{
		Values: map[string][]float64{},
		Units:  map[string]string{"time": "min"},
	}
	for i, id := range sys.stateIDs {
		res.Units[id] = sys.stateUnits[i]
	}
	for _, o := range sys.def.Observables {
		res.Units[o.ID] = o.Unit
	}

	record := func(t float64) {
		res.Time = append(res.Time, t)
		v := view{sys: sys, y: y, fluxes: fluxes}
		for i, id := range sys.stateIDs {
			res.Values[id] = append(res.Values[id], y[i])
		}
		for _, o := range sys.def.Observables {
			res.Values[o.ID] = append(res.Values[o.ID], o.Law.Eval(v))
		}
	}

	offset := 0.0
	for seg, tc := range sim.Timecourses {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s: %w", sys.def.ID, err)
		}
		if tc.End <= tc.Start || tc.Steps < 1 {
			return nil, fmt.Errorf("run %s: segment %d: bad interval [%g, %g] with %d steps",
				sys.def.ID, seg, tc.Start, tc.End, tc.Steps)
		}
		if err := sys.applyChanges(y, tc.Changes); err != nil {
			return nil, fmt.Errorf("run %s: segment %d: %w", sys.def.ID, seg, err)
		}

		dt := (tc.End - tc.Start) / float64(tc.Steps)
		sub := int(math.Ceil(dt / e.MaxStep))
		if sub < 1 {
			sub = 1
		}
		h := dt / float64(sub)

		record(offset + tc.Start)
		for step := 0; step < tc.Steps; step++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("run %s: %w", sys.def.ID, err)
			}
			for s := 0; s < sub; s++ {
				sys.deriv(y, k1, fluxes)
				axpy(tmp, y, k1, h/2)
				sys.deriv(tmp, k2, fluxes)
				axpy(tmp, y, k2, h/2)
				sys.deriv(tmp, k3, fluxes)
				axpy(tmp, y, k3, h)
				sys.deriv(tmp, k4, fluxes)
				for i := range y {
					y[i] += h / 6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
				}
			}
			t := offset + tc.Start + float64(step+1)*dt
			for i, v := range y {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("run %s: %s non-finite at t=%g min: %w",
						sys.def.ID, sys.stateIDs[i], t, util.ErrIntegrationFailed)
				}
			}
			// refresh fluxes at the recorded state
			sys.deriv(y, dy, fluxes)
			record(t)
		}
		offset += tc.End - tc.Start
	}
	return res, nil
}

func axpy(dst, y, k []float64, h float64) {
	for i := range dst {
		dst[i] = y[i] + h*k[i]
	}
}
