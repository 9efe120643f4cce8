// Package simulate integrates a validated model definition over dosing
// protocols. The Engine interface decouples the harness from the integrator;
// the reference engine in this package uses fixed-step classic Runge-Kutta.
package simulate

import (
	"context"

	"rapaflow/internal/model"
	"rapaflow/internal/units"
)

// Timecourse is one simulation segment. Changes are applied at segment start
// and may target parameters, species or compartment sizes; values are
// converted into the target's declared unit.
type Timecourse struct {
	Start   float64                   `json:"start"`
	End     float64                   `json:"end"`
	Steps   int                       `json:"steps"`
	Changes map[string]units.Quantity `json:"changes,omitempty"`
}

// TimecourseSim is a sequence of segments. State carries over between
// segments; only the changes of the new segment are applied.
type TimecourseSim struct {
	Timecourses []Timecourse `json:"timecourses"`
}

// Dimension maps one model identifier to the values it takes during a scan.
type Dimension struct {
	Parameter string      `json:"parameter"`
	Values    units.Array `json:"values"`
}

// ScanSim repeats a timecourse simulation over the cartesian product of its
// dimensions.
type ScanSim struct {
	Simulation TimecourseSim `json:"simulation"`
	Dimensions []Dimension   `json:"dimensions"`
}

// Result is a simulated timecourse: a shared time grid in minutes and one
// series per recorded variable, unit-tagged.
type Result struct {
	Time   []float64            `json:"time"`
	Values map[string][]float64 `json:"values"`
	Units  map[string]string    `json:"units"`
}

// Series returns the values of one variable.
func (r *Result) Series(id string) ([]float64, bool) {
	v, ok := r.Values[id]
	return v, ok
}

// ScanResult holds one Result per scan coordinate. Coordinates enumerate the
// cartesian product of the dimensions with the last dimension varying
// fastest.
type ScanResult struct {
	Dimensions []Dimension `json:"dimensions"`
	Results    []*Result   `json:"results"`
}

// ScanDim is the number of scan dimensions.
func (r *ScanResult) ScanDim() int { return len(r.Dimensions) }

// Coordinate returns the per-dimension value indices of the i-th result.
func (r *ScanResult) Coordinate(i int) []int {
	idx := make([]int, len(r.Dimensions))
	for d := len(r.Dimensions) - 1; d >= 0; d-- {
		n := len(r.Dimensions[d].Values.Values)
		idx[d] = i % n
		i /= n
	}
	return idx
}

// Engine integrates a model definition.
type Engine interface {
	RunTimecourse(ctx context.Context, def *model.Definition, sim TimecourseSim) (*Result, error)
	RunScan(ctx context.Context, def *model.Definition, sim ScanSim) (*ScanResult, error)
}
