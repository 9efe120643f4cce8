// Package experiments defines the study protocols, their default parameter
// sets and the registry the pipeline selects experiments from.
package experiments

// Metadata variants classify fit mappings against clinical data. Closed
// string sets, compared by value.

type Tissue string

const (
	TissueBlood  Tissue = "blood"
	TissuePlasma Tissue = "plasma"
	TissueSerum  Tissue = "serum"
	TissueUrine  Tissue = "urine"
	TissueFeces  Tissue = "feces"
)

type Route string

const (
	RoutePO Route = "po"
	RouteIV Route = "iv"
	RouteSC Route = "sc"
	RouteNR Route = "not reported"
)

type Dosing string

const (
	DosingSingle   Dosing = "single"
	DosingMultiple Dosing = "multiple"
	DosingInfusion Dosing = "infusion"
)

type ApplicationForm string

const (
	FormSubcutaneous ApplicationForm = "subcutaneous"
	FormTablet       ApplicationForm = "tablet"
	FormSolution     ApplicationForm = "solution"
	FormCapsule      ApplicationForm = "capsule"
	FormMixed        ApplicationForm = "mixed"
	FormNR           ApplicationForm = "not reported"
)

type Health string

const (
	HealthHealthy          Health = "healthy"
	HealthHypertension     Health = "hypertension"
	HealthCirrhosis        Health = "cirrhosis"
	HealthRenalImpairment  Health = "renal impairment"
	HealthHepaticImpaired  Health = "hepatic impairment"
	HealthCHF              Health = "congestive heart failure"
	HealthObese            Health = "obese"
	HealthRenalTransplant  Health = "renal transplant"
)

type Fasting string

const (
	FastingNR     Fasting = "not reported"
	FastingFasted Fasting = "fasted"
	FastingFed    Fasting = "fed"
)

type Coadministration string

const (
	CoNone         Coadministration = "none"
	CoDiltiazem    Coadministration = "diltiazem"
	CoFujimycin    Coadministration = "fujimycin"
	CoRifampin     Coadministration = "rifampin"
	CoCyclosporine Coadministration = "cyclosporine"
	CoRitonavir    Coadministration = "ritonavir"
	CoPrednisone   Coadministration = "prednisone"
	CoFamotidine   Coadministration = "famotidine"
)

type Genotype string

const (
	GenotypeNR         Genotype = "not reported"
	GenotypeCYP3A4_1_1 Genotype = "CYP3A4 *1/*1"
	GenotypeCYP3A4_1_1G Genotype = "CYP3A4 *1/*1G"
	GenotypeCYP3A4_1G_1G Genotype = "CYP3A4 *1G/*1G"
	GenotypeCYP3A5_1_1 Genotype = "CYP3A5 *1/*1"
	GenotypeCYP3A5_1_3 Genotype = "CYP3A5 *1/*3"
	GenotypeCYP3A5_3_3 Genotype = "CYP3A5 *3/*3"
)

// MappingMetaData classifies one fit mapping.
type MappingMetaData struct {
	Tissue           Tissue           `json:"tissue"`
	Route            Route            `json:"route"`
	Dosing           Dosing           `json:"dosing"`
	ApplicationForm  ApplicationForm  `json:"application_form"`
	Health           Health           `json:"health"`
	Fasting          Fasting          `json:"fasting"`
	Coadministration Coadministration `json:"coadministration"`
	Genotype         Genotype         `json:"genotype"`
}
