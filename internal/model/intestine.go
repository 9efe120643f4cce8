package model

import (
	"fmt"
	"math"
)

// Molecular weight of rapamycin in g/mole.
const MrRap = 914.1719

// gutChainLength is the number of transit compartments the metabolites pass
// through between the intestinal lumen and feces. The chain delays fecal
// excretion so that the cumulative feces amount matches observed timecourses.
const gutChainLength = 5

// Intestine builds the absorption submodel: dissolution of the oral dose in
// the stomach, OATP-mediated import into enterocytes, CYP3A4/5 first-pass
// metabolism, P-gp efflux of metabolites back into the lumen and a transit
// chain that carries metabolites into feces.
func Intestine() *Definition {
	d := &Definition{
		ID:   "rapamycin_intestine",
		Name: "rapamycin absorption in the small intestine",
		Compartments: []Compartment{
			{ID: "Vext", Name: "plasma", Value: 1.0, Unit: "l", Constant: true, Dimensions: 3, Port: true},
			// 0.0171 l/kg * 75 kg
			{ID: "Vgu", Name: "intestine", Value: 1.2825, Unit: "l", Constant: true, Dimensions: 3, Port: true},
			{ID: "Vlumen", Name: "intestinal lumen", Value: 1.2825 * 0.9, Unit: "l", Dimensions: 3, Port: true},
			{ID: "Vfeces", Name: "feces", Value: 1, Unit: "l", Constant: true, Dimensions: 3, Port: true},
			{ID: "Ventero", Name: "enterocytes", Value: 1.2825 * 0.1, Unit: "l", Dimensions: 3},
			{ID: "Vapical", Name: "apical membrane", Value: math.NaN(), Unit: "m2", Constant: true, Dimensions: 2},
			{ID: "Vbaso", Name: "basolateral membrane", Value: math.NaN(), Unit: "m2", Constant: true, Dimensions: 2},
			{ID: "Vstomach", Name: "stomach", Value: 1, Unit: "l", Constant: true, Dimensions: 3, Port: true},
		},
		Parameters: []Parameter{
			{ID: "Vchain", Name: "volume of chain compartment", Value: 0.1, Unit: "l", Constant: true},
			{ID: "f_oatp", Name: "OATP transporter activity", Value: 1.0, Unit: "dimensionless", Constant: true},
			{ID: "RAPIM_k", Name: "rate of rapamycin import enterocytes", Value: 0.10, Unit: "per_min", Constant: true},
			{ID: "RAP2RX_k", Name: "rate of rapamycin metabolism", Value: 0.02, Unit: "per_min", Constant: true},
			{ID: "f_cyp3a4", Name: "CYP3A4 activity", Value: 1.0, Unit: "dimensionless", Constant: true},
			{ID: "f_cyp3a5", Name: "CYP3A5 activity", Value: 1.0, Unit: "dimensionless", Constant: true},
			{ID: "f_pg", Name: "P-gp transporter activity", Value: 1.0, Unit: "dimensionless", Constant: true},
			{ID: "RXPG_k", Name: "rate of metabolite P-gp export", Value: 0.10, Unit: "per_min", Constant: true},
			{ID: "RXEXC_k", Name: "rate of metabolite fecal excretion", Value: 0.10, Unit: "per_min", Constant: true},
			{ID: "PODOSE_rap", Name: "oral dose rapamycin [mg]", Value: 0, Unit: "mg", Port: true},
			{ID: "Ka_dis_rap", Name: "dissolution rate rapamycin [1/hr]", Value: 2.0, Unit: "per_hr", Constant: true, Port: true},
			{ID: "Mr_rap", Name: "molecular weight rapamycin [g/mole]", Value: MrRap, Unit: "g/mole", Constant: true, Port: true},
		},
		Species: []Species{
			{ID: "rap_stomach", Name: "rapamycin (stomach)", Compartment: "Vstomach", SubstanceUnit: "mmole", AmountOnly: true, Boundary: true},
			{ID: "rap_lumen", Name: "rapamycin (intestinal lumen)", Compartment: "Vlumen", SubstanceUnit: "mmole", Port: true},
			{ID: "rx_lumen", Name: "rapamycin metabolites (intestinal lumen)", Compartment: "Vlumen", SubstanceUnit: "mmole", Port: true},
			{ID: "rap_entero", Name: "rapamycin (enterocytes)", Compartment: "Ventero", SubstanceUnit: "mmole", Port: true},
			{ID: "rx_entero", Name: "rapamycin metabolites (enterocytes)", Compartment: "Ventero", SubstanceUnit: "mmole", Port: true},
			{ID: "rap_ext", Name: "rapamycin (plasma)", Compartment: "Vext", SubstanceUnit: "mmole", Port: true},
			{ID: "rx_feces", Name: "rapamycin metabolites (feces)", Compartment: "Vfeces", SubstanceUnit: "mmole", AmountOnly: true, Port: true},
		},
		Reactions: []Reaction{
			{
				ID: "dissolution_rap", Name: "dissolution rapamycin",
				Reactant: "rap_stomach", Product: "rap_lumen", Compartment: "Vgu", Unit: "mmole/min",
				Law: Dissolution{Ka: "Ka_dis_rap", Dose: "PODOSE_rap", Mr: "Mr_rap"},
			},
			{
				ID: "RAPIM", Name: "rapamycin import enterocytes (OATP)",
				Reactant: "rap_lumen", Product: "rap_entero", Compartment: "Vapical", Unit: "mmole/min",
				Law: Linear{Factors: []string{"f_oatp"}, K: "RAPIM_k", Volume: "Vgu", Source: "rap_lumen"},
			},
			{
				ID: "RAPABS", Name: "absorption rapamycin (plasma)",
				Reactant: "rap_entero", Product: "rap_ext", Compartment: "Ventero", Unit: "mmole/min",
				Law: Linear{K: "RAPIM_k", Volume: "Ventero", Source: "rap_entero"},
			},
			{
				ID: "RAP2RX", Name: "rapamycin metabolism via CYP3A4/5",
				Reactant: "rap_entero", Product: "rx_entero", Compartment: "Ventero", Unit: "mmole/min",
				Law: Linear{Factors: []string{"f_cyp3a4", "f_cyp3a5"}, K: "RAP2RX_k", Volume: "Ventero", Source: "rap_entero"},
			},
			{
				ID: "RXPG", Name: "metabolite export (P-gp)",
				Reactant: "rx_entero", Product: "rx_lumen", Compartment: "Vapical", Unit: "mmole/min",
				Law: Linear{Factors: []string{"f_pg"}, K: "RXPG_k", Volume: "Ventero", Source: "rx_entero"},
			},
			{
				ID: "RXEXC", Name: "excretion rapamycin metabolites (feces)",
				Reactant: "rx_lumen", Product: "rx_int_0", Compartment: "Vlumen", Unit: "mmole/min",
				Law: Linear{K: "RXEXC_k", Volume: "Vgu", Source: "rx_lumen"},
			},
		},
		RateRules: []RateRule{
			{Target: "PODOSE_rap", Unit: "mg/min", Law: ScaledFlux{Reaction: "dissolution_rap", Scale: "Mr_rap", Negate: true}},
		},
	}

	for k := 0; k < gutChainLength; k++ {
		d.Compartments = append(d.Compartments, Compartment{
			ID:        fmt.Sprintf("Vint_%d", k),
			Name:      "intestinal transit compartment",
			ValueFrom: "Vchain",
			Unit:      "l",
			Dimensions: 3,
		})
		d.Species = append(d.Species, Species{
			ID:            fmt.Sprintf("rx_int_%d", k),
			Name:          fmt.Sprintf("rapamycin metabolites (intestine) %d", k),
			Compartment:   fmt.Sprintf("Vint_%d", k),
			SubstanceUnit: "mmole",
		})
	}
	for k := 0; k < gutChainLength; k++ {
		source := fmt.Sprintf("rx_int_%d", k)
		target := "rx_feces"
		if k < gutChainLength-1 {
			target = fmt.Sprintf("rx_int_%d", k+1)
		}
		d.Reactions = append(d.Reactions, Reaction{
			ID:          fmt.Sprintf("RXEXC_%d", k),
			Name:        fmt.Sprintf("excretion rapamycin metabolites %d", k),
			Reactant:    source,
			Product:     target,
			Compartment: "Vlumen",
			Unit:        "mmole/min",
			Law:         Linear{K: "RXEXC_k", Volume: fmt.Sprintf("Vint_%d", k), Source: source},
		})
	}
	return d
}
