package experiments

import (
	"fmt"
	"strings"

	"rapaflow/internal/simulate"
	"rapaflow/internal/units"
)

// CovariateStudy stratifies a single 2 mg oral dose by the clinical
// covariates: CYP3A4 and CYP3A5 diplotypes set the enzyme activity factors
// from the allele tables, and food state scales the dissolution rate.
func CovariateStudy() *Experiment {
	const dose = 2.0 // [mg]

	e := &Experiment{
		ID:          "covariate_study",
		Name:        "covariate stratification of a single oral dose",
		Simulations: map[string]simulate.TimecourseSim{},
		Colors:      map[string]string{},
	}

	arm := func(name string, changes map[string]units.Quantity) {
		changes["PODOSE_rap"] = units.Q(dose, "mg")
		e.Simulations[name] = simulate.TimecourseSim{Timecourses: []simulate.Timecourse{{
			Start: 0, End: 24 * 60, Steps: 1000,
			Changes: withDefaults(changes),
		}}}
	}

	for genotype, activity := range CYP3A4Activity {
		arm(armName("cyp3a4", genotype), map[string]units.Quantity{
			"GU__f_cyp3a4": units.Q(activity, "dimensionless"),
			"LI__f_cyp3a4": units.Q(activity, "dimensionless"),
		})
	}
	for genotype, activity := range CYP3A5Activity {
		arm(armName("cyp3a5", genotype), map[string]units.Quantity{
			"GU__f_cyp3a5": units.Q(activity, "dimensionless"),
			"LI__f_cyp3a5": units.Q(activity, "dimensionless"),
		})
	}
	for fasting, factor := range FastingFactor {
		if fasting == FastingNR {
			continue
		}
		name := fmt.Sprintf("rap_%s", fasting)
		// scales the 2/hr model dissolution rate
		arm(name, map[string]units.Quantity{
			"Ka_dis_rap": units.Q(factor*2.0, "per_hr"),
		})
		e.Colors[name] = FastingColors[fasting]
	}
	return e
}

// armName flattens a diplotype like "CYP3A5 *3/*3" into a simulation key.
func armName(enzyme string, g Genotype) string {
	alleles := g[strings.LastIndex(string(g), " ")+1:]
	flat := strings.NewReplacer("*", "", "/", "_").Replace(string(alleles))
	return fmt.Sprintf("rap_%s_%s", enzyme, flat)
}
