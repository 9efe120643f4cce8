package experiments

// Display config for recorded variables: human labels and preferred plotting
// units. The engine reports canonical units (mM, mmole, min); consumers
// convert through the units package.

type Display struct {
	Label string `json:"label"`
	Unit  string `json:"unit"`
}

var Variables = map[string]Display{
	"time":               {Label: "time", Unit: "hr"},
	"IVDOSE_rap":         {Label: "rapamycin iv dose", Unit: "mg"},
	"PODOSE_rap":         {Label: "rapamycin oral dose", Unit: "mg"},
	"[Cve_rap]":          {Label: "rapamycin (plasma)", Unit: "µmole/l"},
	"[Cve_rx]":           {Label: "rapamycin metabolites (plasma)", Unit: "µmole/l"},
	"[Cve_raptot]":       {Label: "rapamycin + metabolites (plasma)", Unit: "µmole/l"},
	"[Cveblood_rap]":     {Label: "rapamycin (blood)", Unit: "µmole/l"},
	"[Cveblood_raptot]":  {Label: "rapamycin + metabolites (blood)", Unit: "µmole/l"},
	"Aurine_rx":          {Label: "rapamycin metabolites (urine)", Unit: "µmole"},
	"Afeces_rx":          {Label: "rapamycin metabolites (feces)", Unit: "µmole"},
	"KI__f_renal_function": {Label: "renal function [-]", Unit: "dimensionless"},
	"f_cirrhosis":        {Label: "cirrhosis degree [-]", Unit: "dimensionless"},
	"GU__f_oatp":         {Label: "absorption activity [-]", Unit: "dimensionless"},
	"GU__f_cyp3a4":       {Label: "CYP3A4 gut activity [-]", Unit: "dimensionless"},
	"GU__f_cyp3a5":       {Label: "CYP3A5 gut activity [-]", Unit: "dimensionless"},
	"LI__f_cyp3a4":       {Label: "CYP3A4 liver activity [-]", Unit: "dimensionless"},
	"LI__f_cyp3a5":       {Label: "CYP3A5 liver activity [-]", Unit: "dimensionless"},
}

// PK metric display units, keyed by the PK table metric names.
var PKMetrics = map[string]Display{
	"auc":    {Label: "AUCend", Unit: "µmole/l*hr"},
	"aucinf": {Label: "AUC", Unit: "µmole/l*hr"},
	"cl":     {Label: "Total clearance", Unit: "ml/min"},
	"cmax":   {Label: "Cmax", Unit: "µmole/l"},
	"thalf":  {Label: "Half-life", Unit: "hr"},
	"kel":    {Label: "kel", Unit: "1/hr"},
	"vd":     {Label: "vd", Unit: "l"},
}
