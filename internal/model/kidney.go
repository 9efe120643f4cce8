package model

import "math"

// Kidney builds the renal excretion submodel. Roughly 2.2% of the dose
// leaves in urine, mainly as metabolites, so only the metabolite pool is
// excreted. f_renal_function scales excretion for renal impairment.
func Kidney() *Definition {
	return &Definition{
		ID:   "rapamycin_kidney",
		Name: "renal rapamycin excretion",
		Compartments: []Compartment{
			{ID: "Vext", Name: "plasma", Value: 1.5, Unit: "l", Constant: true, Dimensions: 3, Port: true},
			// 0.4% of bodyweight
			{ID: "Vki", Name: "kidney", Value: 0.3, Unit: "l", Constant: true, Dimensions: 3, Port: true},
			{ID: "Vmem", Name: "plasma membrane", Value: math.NaN(), Unit: "m2", Constant: true, Dimensions: 2},
			{ID: "Vurine", Name: "urine", Value: 1.0, Unit: "l", Constant: true, Dimensions: 3, Port: true},
		},
		Parameters: []Parameter{
			{ID: "f_renal_function", Name: "renal function", Value: 1.0, Unit: "dimensionless", Constant: true},
			{ID: "RXEX_k", Name: "rate urinary excretion of metabolites", Value: 1.0, Unit: "per_min", Constant: true},
		},
		Species: []Species{
			{ID: "rx_ext", Name: "rapamycin metabolites (plasma)", Compartment: "Vext", SubstanceUnit: "mmole", Port: true},
			{ID: "rx_urine", Name: "rapamycin metabolites (urine)", Compartment: "Vurine", SubstanceUnit: "mmole", AmountOnly: true, Port: true},
		},
		Reactions: []Reaction{
			{
				ID: "RXEX", Name: "metabolite urinary excretion",
				Reactant: "rx_ext", Product: "rx_urine",
				Compartment: "Vki", Unit: "mmole/min",
				Law: Linear{Factors: []string{"f_renal_function"}, K: "RXEX_k", Volume: "Vki", Source: "rx_ext"},
			},
		},
	}
}
