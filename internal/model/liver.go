package model

import "math"

// Liver builds the hepatic submodel: fast plasma/hepatocyte equilibration for
// rapamycin and its metabolites, saturable CYP3A4/5 metabolism, biliary export
// of metabolites and enterohepatic recirculation back into the intestinal
// lumen. The recirculation flux RXEHC is defined as the RXEX flux, as in the
// original published model.
func Liver() *Definition {
	return &Definition{
		ID:   "rapamycin_liver",
		Name: "hepatic rapamycin metabolism",
		Compartments: []Compartment{
			{ID: "Vext", Name: "plasma", Value: 1.5, Unit: "l", Constant: true, Dimensions: 3, Port: true},
			{ID: "Vli", Name: "liver", Value: 1.5, Unit: "l", Constant: true, Dimensions: 3, Port: true},
			{ID: "Vmem", Name: "plasma membrane", Value: math.NaN(), Unit: "m2", Constant: true, Dimensions: 2},
			{ID: "Vapical", Name: "apical membrane", Value: math.NaN(), Unit: "m2", Constant: true, Dimensions: 2},
			{ID: "Vbi", Name: "bile", Value: 1.0, Unit: "l", Constant: true, Dimensions: 3, Port: true},
			{ID: "Vlumen", Name: "intestinal lumen", Value: 1.2825 * 0.9, Unit: "l", Dimensions: 3, Port: true},
		},
		Parameters: []Parameter{
			{ID: "RXBEX_k", Name: "rate of metabolite export in bile", Value: 0.0001, Unit: "per_min", Constant: true},
			{ID: "RAPIM_k", Name: "rate rapamycin import", Value: 100.0, Unit: "per_min", Constant: true},
			{ID: "RAP2RX_Vmax", Name: "Vmax rapamycin metabolism", Value: 0.02, Unit: "mmole/min/l", Constant: true},
			// 2.9 µM, in vitro range 1.1 to 4.7 µM
			{ID: "RAP2RX_Km_rap", Name: "Km rapamycin metabolism", Value: 2.9e-3, Unit: "mM", Constant: true},
			{ID: "f_cyp3a4", Name: "CYP3A4 activity", Value: 1.0, Unit: "dimensionless", Constant: true},
			{ID: "f_cyp3a5", Name: "CYP3A5 activity", Value: 1.0, Unit: "dimensionless", Constant: true},
			{ID: "RXEX_k", Name: "rate metabolite export", Value: 100.0, Unit: "per_min", Constant: true},
		},
		Species: []Species{
			{ID: "rap_ext", Name: "rapamycin (plasma)", Compartment: "Vext", SubstanceUnit: "mmole", Port: true},
			{ID: "rx_ext", Name: "rapamycin metabolites (plasma)", Compartment: "Vext", SubstanceUnit: "mmole", Port: true},
			{ID: "rap", Name: "rapamycin (liver)", Compartment: "Vli", SubstanceUnit: "mmole"},
			{ID: "rx", Name: "rapamycin metabolites (liver)", Compartment: "Vli", SubstanceUnit: "mmole"},
			{ID: "rx_bi", Name: "rapamycin metabolites (bile)", Compartment: "Vbi", SubstanceUnit: "mmole", AmountOnly: true},
			{ID: "rx_lumen", Name: "rapamycin metabolites (lumen)", Compartment: "Vlumen", SubstanceUnit: "mmole", Port: true},
		},
		Reactions: []Reaction{
			{
				ID: "RAPIM", Name: "rapamycin import (fast)",
				Reactant: "rap_ext", Product: "rap", Reversible: true,
				Compartment: "Vmem", Unit: "mmole/min",
				Law: Gradient{K: "RAPIM_k", Volume: "Vli", From: "rap_ext", To: "rap"},
			},
			{
				ID: "RAP2RX", Name: "rapamycin metabolism (CYP3A4/5)",
				Reactant: "rap", Product: "rx",
				Compartment: "Vli", Unit: "mmole/min",
				Law: MichaelisMenten{
					Factors:   []string{"f_cyp3a4", "f_cyp3a5"},
					Vmax:      "RAP2RX_Vmax",
					Volume:    "Vli",
					Substrate: "rap",
					Km:        "RAP2RX_Km_rap",
				},
			},
			{
				ID: "RXEX", Name: "metabolite export (fast)",
				Reactant: "rx", Product: "rx_ext", Reversible: true,
				Compartment: "Vmem", Unit: "mmole/min",
				Law: Gradient{K: "RXEX_k", Volume: "Vli", From: "rx", To: "rx_ext"},
			},
			{
				ID: "RXBEX", Name: "metabolite bile export",
				Reactant: "rx", Product: "rx_bi",
				Compartment: "Vapical", Unit: "mmole/min",
				Law: Linear{K: "RXBEX_k", Volume: "Vli", Source: "rx"},
			},
			{
				ID: "RXEHC", Name: "metabolite enterohepatic circulation",
				Reactant: "rx_bi", Product: "rx_lumen",
				Compartment: "Vlumen", Unit: "mmole/min",
				Law: FluxRef{Reaction: "RXEX"},
			},
		},
	}
}
