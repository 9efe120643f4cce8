package experiments

import (
	"fmt"
	"sort"

	"rapaflow/internal/util"
)

// Registry holds the available experiments and the named groups used to
// select subsets for batch runs.
type Registry struct {
	experiments map[string]*Experiment
	groups      map[string][]string
}

// NewRegistry builds the default registry with every study wired in.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		experiments: map[string]*Experiment{},
		groups:      map[string][]string{},
	}
	for _, e := range []*Experiment{
		Zimmerman1997(),
		DoseDependency(),
		ParameterScan(),
		CovariateStudy(),
	} {
		if err := r.register(e); err != nil {
			return nil, err
		}
	}

	r.groups = map[string][]string{
		"studies":          {"zimmerman1997"},
		"dose":             {"dose_dependency"},
		"cyp3a4_5":         {"zimmerman1997", "parameter_scan", "covariate_study"},
		"renal_impairment": {"parameter_scan"},
		"covariates":       {"covariate_study"},
		"misc":             {"dose_dependency"},
		"scan":             {"parameter_scan"},
		"all":              r.ExperimentIDs(),
	}
	for group, ids := range r.groups {
		for _, id := range ids {
			if _, ok := r.experiments[id]; !ok {
				return nil, fmt.Errorf("group %s references unknown experiment %q", group, id)
			}
		}
	}
	return r, nil
}

func (r *Registry) register(e *Experiment) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := r.experiments[e.ID]; ok {
		return fmt.Errorf("duplicate experiment %q", e.ID)
	}
	r.experiments[e.ID] = e
	return nil
}

// Experiment looks up one experiment by ID.
func (r *Registry) Experiment(id string) (*Experiment, error) {
	e, ok := r.experiments[id]
	if !ok {
		return nil, fmt.Errorf("experiment %q: %w", id, util.ErrUnknownExperiment)
	}
	return e, nil
}

// Group resolves a group name to its experiment IDs.
func (r *Registry) Group(name string) ([]string, error) {
	ids, ok := r.groups[name]
	if !ok {
		return nil, fmt.Errorf("group %q: %w", name, util.ErrUnknownGroup)
	}
	return append([]string{}, ids...), nil
}

// ExperimentIDs lists all registered experiments, sorted.
func (r *Registry) ExperimentIDs() []string {
	ids := make([]string, 0, len(r.experiments))
	for id := range r.experiments {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GroupNames lists all groups, sorted.
func (r *Registry) GroupNames() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
