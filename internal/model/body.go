package model

import "fmt"

// Body composes the intestine, liver and kidney submodels into the whole-body
// model and adds the distribution tissue, the intravenous dose route and the
// plasma/blood observables. Shared ports (plasma Vext, rap_ext, rx_ext,
// rx_lumen, Vlumen, dosing parameters) are unified by identity; everything
// else is prefixed GU__, LI__ and KI__.
func Body() (*Definition, error) {
	d, err := Compose("rapamycin_body", "whole-body rapamycin model",
		Submodel{Prefix: "GU__", Def: Intestine()},
		Submodel{Prefix: "LI__", Def: Liver()},
		Submodel{Prefix: "KI__", Def: Kidney()},
	)
	if err != nil {
		return nil, err
	}

	// The intestine declares plasma as 1 l, the liver and kidney as 1.5 l.
	// The composed model uses the hepatic value.
	setCompartmentValue(d, "Vext", 1.5)

	d.Compartments = append(d.Compartments,
		Compartment{ID: "Vtissue", Name: "distribution tissue", Value: 39.0, Unit: "l", Constant: true, Dimensions: 3},
	)
	d.Parameters = append(d.Parameters,
		Parameter{ID: "ftissue_rap", Name: "tissue distribution flow rapamycin", Value: 1.0, Unit: "l/min", Constant: true},
		Parameter{ID: "Kp_rap", Name: "tissue partition coefficient rapamycin", Value: 100.0, Unit: "dimensionless", Constant: true},
		Parameter{ID: "f_cirrhosis", Name: "severity of cirrhosis", Value: 0.0, Unit: "dimensionless", Constant: true},
		// erythrocyte partitioning, blood concentration = BP_rap * plasma
		Parameter{ID: "BP_rap", Name: "blood to plasma ratio rapamycin", Value: 36.5, Unit: "dimensionless", Constant: true},
		Parameter{ID: "IVDOSE_rap", Name: "intravenous dose rapamycin [mg]", Value: 0, Unit: "mg"},
		Parameter{ID: "Ka_inj_rap", Name: "injection rate rapamycin [1/hr]", Value: 60.0, Unit: "per_hr", Constant: true},
	)
	d.Species = append(d.Species,
		Species{ID: "rap_tissue", Name: "rapamycin (tissue)", Compartment: "Vtissue", SubstanceUnit: "mmole"},
	)
	d.Reactions = append(d.Reactions,
		Reaction{
			ID: "FTISSUE", Name: "rapamycin tissue distribution",
			Reactant: "rap_ext", Product: "rap_tissue", Reversible: true,
			Compartment: "Vtissue", Unit: "mmole/min",
			Law: PartitionGradient{Flow: "ftissue_rap", From: "rap_ext", To: "rap_tissue", Partition: "Kp_rap"},
		},
		Reaction{
			ID: "injection_rap", Name: "intravenous injection rapamycin",
			Product: "rap_ext", Compartment: "Vext", Unit: "mmole/min",
			Law: Dissolution{Ka: "Ka_inj_rap", Dose: "IVDOSE_rap", Mr: "Mr_rap"},
		},
	)
	d.RateRules = append(d.RateRules,
		RateRule{Target: "IVDOSE_rap", Unit: "mg/min", Law: ScaledFlux{Reaction: "injection_rap", Scale: "Mr_rap", Negate: true}},
	)

	// Cirrhosis reduces the functional liver mass available for metabolism.
	r, ok := d.Reaction("LI__RAP2RX")
	if !ok {
		return nil, fmt.Errorf("compose rapamycin_body: missing hepatic metabolism reaction")
	}
	mm, ok := r.Law.(MichaelisMenten)
	if !ok {
		return nil, fmt.Errorf("compose rapamycin_body: hepatic metabolism law is %T", r.Law)
	}
	mm.Inhibitors = append(mm.Inhibitors, "f_cirrhosis")
	r.Law = mm

	d.Observables = append(d.Observables,
		Observable{ID: "[Cve_rap]", Name: "rapamycin (plasma)", Unit: "mM", Law: SumLaw{Terms: []string{"rap_ext"}}},
		Observable{ID: "[Cve_rx]", Name: "rapamycin metabolites (plasma)", Unit: "mM", Law: SumLaw{Terms: []string{"rx_ext"}}},
		Observable{ID: "[Cve_raptot]", Name: "rapamycin total (plasma)", Unit: "mM", Law: SumLaw{Terms: []string{"rap_ext", "rx_ext"}}},
		Observable{ID: "[Cveblood_rap]", Name: "rapamycin (blood)", Unit: "mM", Law: SumLaw{Scale: "BP_rap", Terms: []string{"rap_ext"}}},
		Observable{ID: "[Cveblood_raptot]", Name: "rapamycin total (blood)", Unit: "mM", Law: SumLaw{Scale: "BP_rap", Terms: []string{"rap_ext", "rx_ext"}}},
		Observable{ID: "Aurine_rx", Name: "rapamycin metabolites (urine)", Unit: "mmole", Law: SumLaw{Terms: []string{"rx_urine"}}},
		Observable{ID: "Afeces_rx", Name: "rapamycin metabolites (feces)", Unit: "mmole", Law: SumLaw{Terms: []string{"rx_feces"}}},
	)

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func setCompartmentValue(d *Definition, id string, value float64) {
	for i := range d.Compartments {
		if d.Compartments[i].ID == id {
			d.Compartments[i].Value = value
			return
		}
	}
}
