package experiments

import (
	"fmt"
	"sort"

	"rapaflow/internal/simulate"
)

// FitMapping ties one simulated observable to a digitized clinical dataset
// for parameter fitting. The fitting engine itself is external; the mapping
// records what to compare and under which clinical conditions.
type FitMapping struct {
	ID         string          `json:"id"`
	Simulation string          `json:"simulation"`
	Observable string          `json:"observable"`
	Dataset    string          `json:"dataset"`
	Metadata   MappingMetaData `json:"metadata"`
}

// Experiment is one study protocol: named timecourse simulations and/or
// scans, fit mappings against literature data, and the scans PK extraction
// runs over.
type Experiment struct {
	ID          string
	Name        string
	Simulations map[string]simulate.TimecourseSim
	Scans       map[string]simulate.ScanSim
	FitMappings []FitMapping
	PKScans     []string // scan names PK extraction is applied to
	Colors      map[string]string
}

// Validate checks referential integrity: fit mappings and PK scans must
// reference simulations the experiment actually defines.
func (e *Experiment) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("experiment without id")
	}
	for _, fm := range e.FitMappings {
		_, tc := e.Simulations[fm.Simulation]
		_, sc := e.Scans[fm.Simulation]
		if !tc && !sc {
			return fmt.Errorf("experiment %s: fit mapping %s references unknown simulation %q",
				e.ID, fm.ID, fm.Simulation)
		}
	}
	for _, name := range e.PKScans {
		if _, ok := e.Scans[name]; !ok {
			return fmt.Errorf("experiment %s: pk extraction references unknown scan %q", e.ID, name)
		}
	}
	return nil
}

// SimulationNames lists all simulation and scan names, sorted.
func (e *Experiment) SimulationNames() []string {
	names := make([]string, 0, len(e.Simulations)+len(e.Scans))
	for name := range e.Simulations {
		names = append(names, name)
	}
	for name := range e.Scans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
