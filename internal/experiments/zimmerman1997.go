package experiments

import (
	"fmt"

	"rapaflow/internal/simulate"
	"rapaflow/internal/units"
)

// Zimmerman1997 reproduces the multiple-dose study: rapamycin twice daily for
// 13 days plus a final morning dose on day 14, coadministered with
// cyclosporine (CYP3A4 inhibition). Doses are per body surface area, scaled
// by 1.78 m2.
func Zimmerman1997() *Experiment {
	interventions := []string{"RAP05", "RAP1_5", "RAP2_5", "RAP3_5", "RAP6_5"}
	dosesPerM2 := map[string]float64{
		"RAP05":  0.5,
		"RAP1_5": 1.5,
		"RAP2_5": 2.5,
		"RAP3_5": 3.5,
		"RAP6_5": 6.5,
	}
	const (
		bsa             = 1.78 // [m2]
		fCyclosporine   = 0.6  // CYP3A4 inhibition by cyclosporine
		dosingInterval  = 12 * 60
		washoutDuration = 200 * 60
	)

	e := &Experiment{
		ID:          "zimmerman1997",
		Name:        "Zimmerman1997 multiple dose with cyclosporine",
		Simulations: map[string]simulate.TimecourseSim{},
		Colors: map[string]string{
			"RAP05":  "black",
			"RAP1_5": "#FFE299",
			"RAP2_5": "#FFB347",
			"RAP3_5": "#FF944D",
			"RAP6_5": "#D2691E",
		},
	}

	for _, intervention := range interventions {
		dose := dosesPerM2[intervention] * bsa

		first := simulate.Timecourse{
			Start: 0, End: dosingInterval, Steps: 200,
			Changes: withDefaults(map[string]units.Quantity{
				"PODOSE_rap":   units.Q(dose, "mg"),
				"GU__f_cyp3a4": units.Q(fCyclosporine, "dimensionless"),
				"LI__f_cyp3a4": units.Q(fCyclosporine, "dimensionless"),
			}),
		}
		redose := simulate.Timecourse{
			Start: 0, End: dosingInterval, Steps: 200,
			Changes: map[string]units.Quantity{
				"PODOSE_rap": units.Q(dose, "mg"),
			},
		}
		washout := simulate.Timecourse{
			Start: 0, End: washoutDuration, Steps: 2000,
			Changes: map[string]units.Quantity{
				"PODOSE_rap": units.Q(dose, "mg"),
			},
		}

		segments := []simulate.Timecourse{first}
		for i := 0; i < 25; i++ {
			segments = append(segments, redose)
		}
		segments = append(segments, washout)
		e.Simulations[fmt.Sprintf("rap_%s", intervention)] = simulate.TimecourseSim{Timecourses: segments}

		e.FitMappings = append(e.FitMappings, FitMapping{
			ID:         fmt.Sprintf("fm_rap_%s", intervention),
			Simulation: fmt.Sprintf("rap_%s", intervention),
			Observable: "[Cveblood_rap]",
			Dataset:    fmt.Sprintf("rapamycin_%s", intervention),
			Metadata: MappingMetaData{
				Tissue:           TissueBlood,
				Route:            RoutePO,
				Dosing:           DosingMultiple,
				ApplicationForm:  FormSolution,
				Health:           HealthRenalTransplant,
				Fasting:          FastingNR,
				Coadministration: CoCyclosporine,
				Genotype:         GenotypeNR,
			},
		})
	}
	return e
}
