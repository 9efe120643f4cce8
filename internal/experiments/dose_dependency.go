package experiments

import (
	"fmt"

	"rapaflow/internal/simulate"
	"rapaflow/internal/units"
)

// DoseDependency simulates single IV and PO administrations across a dose
// range, including the zero-dose control arm.
func DoseDependency() *Experiment {
	doses := []float64{0, 10, 20, 40, 80} // [mg]
	routes := map[Route]string{
		RouteIV: "IVDOSE_rap",
		RoutePO: "PODOSE_rap",
	}

	e := &Experiment{
		ID:          "dose_dependency",
		Name:        "dose dependency of rapamycin pharmacokinetics",
		Simulations: map[string]simulate.TimecourseSim{},
	}

	for route, doseParameter := range routes {
		for _, dose := range doses {
			name := fmt.Sprintf("rap_%s_%g", route, dose)
			e.Simulations[name] = simulate.TimecourseSim{Timecourses: []simulate.Timecourse{{
				Start: 0, End: 24 * 60, Steps: 1000,
				Changes: withDefaults(map[string]units.Quantity{
					doseParameter: units.Q(dose, "mg"),
				}),
			}}}
		}
	}
	return e
}
