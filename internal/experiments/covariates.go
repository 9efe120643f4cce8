package experiments

// Covariate tables map clinical categories onto model activity factors.

// FastingFactor scales absorption activity by food state (fed slows uptake).
var FastingFactor = map[Fasting]float64{
	FastingNR:     1.0, // fasted assumed when nothing is reported
	FastingFasted: 1.0,
	FastingFed:    0.7,
}

var FastingColors = map[Fasting]string{
	FastingFasted: "black",
	FastingFed:    "tab:red",
}

// CYP3A4 allele activities; diplotype activity is the allele mean.
var cyp3a4Allele = map[string]float64{
	"*1":  1.0,
	"*1G": 1.2,
}

var CYP3A4Activity = map[Genotype]float64{
	GenotypeCYP3A4_1_1:   (cyp3a4Allele["*1"] + cyp3a4Allele["*1"]) / 2,
	GenotypeCYP3A4_1_1G:  (cyp3a4Allele["*1"] + cyp3a4Allele["*1G"]) / 2,
	GenotypeCYP3A4_1G_1G: (cyp3a4Allele["*1G"] + cyp3a4Allele["*1G"]) / 2,
}

var cyp3a5Allele = map[string]float64{
	"*1": 1.0,
	"*3": 0.5,
}

var CYP3A5Activity = map[Genotype]float64{
	GenotypeCYP3A5_1_1: (cyp3a5Allele["*1"] + cyp3a5Allele["*1"]) / 2,
	GenotypeCYP3A5_1_3: (cyp3a5Allele["*1"] + cyp3a5Allele["*3"]) / 2,
	GenotypeCYP3A5_3_3: (cyp3a5Allele["*3"] + cyp3a5Allele["*3"]) / 2,
}

// RenalFunction maps clinical categories to fractions of a reference
// creatinine clearance of 101 ml/min.
type RenalFunction string

const (
	RenalNormal   RenalFunction = "Normal renal function"
	RenalMild     RenalFunction = "Mild renal impairment"
	RenalModerate RenalFunction = "Moderate renal impairment"
	RenalSevere   RenalFunction = "Severe renal impairment"
	RenalEndStage RenalFunction = "End stage renal disease"
)

var RenalFactor = map[RenalFunction]float64{
	RenalNormal:   101.0 / 101.0,
	RenalMild:     50.0 / 101.0,
	RenalModerate: 35.0 / 101.0,
	RenalSevere:   20.0 / 101.0,
	RenalEndStage: 10.5 / 101.0,
}

var RenalColors = map[RenalFunction]string{
	RenalNormal:   "black",
	RenalMild:     "#66c2a4",
	RenalModerate: "#2ca25f",
	RenalSevere:   "#006d2c",
	RenalEndStage: "#006d5e",
}

// Cirrhosis severity (Child-Pugh classes) as the f_cirrhosis factor.
type Cirrhosis string

const (
	CirrhosisControl  Cirrhosis = "Control"
	CirrhosisMild     Cirrhosis = "Mild cirrhosis"
	CirrhosisModerate Cirrhosis = "Moderate cirrhosis"
	CirrhosisSevere   Cirrhosis = "Severe cirrhosis"
)

var CirrhosisFactor = map[Cirrhosis]float64{
	CirrhosisControl:  0,
	CirrhosisMild:     0.3994897959183674,  // CPT A
	CirrhosisModerate: 0.6979591836734694,  // CPT B
	CirrhosisSevere:   0.8127551020408164,  // CPT C
}

var CirrhosisColors = map[Cirrhosis]string{
	CirrhosisControl:  "black",
	CirrhosisMild:     "#74a9cf",
	CirrhosisModerate: "#2b8cbe",
	CirrhosisSevere:   "#045a8d",
}
