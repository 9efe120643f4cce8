package experiments

import "rapaflow/internal/units"

// MrRapamycin in g/mole, used to convert doses between mass and molar amount.
const MrRapamycin = 914.1719

// DefaultChanges is the fitted parameter set applied to every simulation
// before the study-specific changes. Returned fresh so callers can overlay
// their own changes without clobbering the defaults.
func DefaultChanges() map[string]units.Quantity {
	return map[string]units.Quantity{
		"ftissue_rap":     units.Q(6.385157332090921, "l/min"),
		"Kp_rap":          units.Q(10.000004054918183, "dimensionless"),
		"GU__RAPIM_k":     units.Q(0.010254172647171959, "1/min"),
		"GU__RAP2RX_k":    units.Q(0.43373578546152136, "1/min"),
		"GU__RXPG_k":      units.Q(0.010328378821077363, "1/min"),
		"GU__RXEXC_k":     units.Q(0.023347411187126337, "1/min"),
		"KI__RXEX_k":      units.Q(0.1693055659116988, "1/min"),
		"LI__RAP2RX_Vmax": units.Q(0.002858932837010464, "mmole/min/l"),
		"LI__RXBEX_k":     units.Q(2.2698133102257085e-06, "1/min"),
	}
}

// withDefaults overlays study changes on the fitted defaults.
func withDefaults(changes map[string]units.Quantity) map[string]units.Quantity {
	out := DefaultChanges()
	for k, v := range changes {
		out[k] = v
	}
	return out
}
