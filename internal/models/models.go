package models

import "time"

// Run statuses as stored in experiment_runs.status.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

type ExperimentRun struct {
	RunID        string    `json:"run_id"`
	BatchID      string    `json:"batch_id"`
	ExperimentID string    `json:"experiment_id"`
	Status       string    `json:"status"`
	FailReason   string    `json:"fail_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PKResult is one pharmacokinetic metric row for one substance at one scan
// coordinate. Metrics that cannot be computed for a curve (flat tail, zero
// dose) are stored as NULL, hence the pointer fields.
type PKResult struct {
	RunID         string  `json:"run_id"`
	ExperimentID  string  `json:"experiment_id"`
	Scan          string  `json:"scan"`
	Coordinate    int     `json:"coordinate"`
	ScanParameter string  `json:"scan_parameter"`
	ScanValue     float64 `json:"scan_value"`
	ScanUnit      string  `json:"scan_unit"`
	Substance     string  `json:"substance"`

	Dose    *float64 `json:"dose,omitempty"`
	AUCend  *float64 `json:"auc,omitempty"`
	AUCinf  *float64 `json:"aucinf,omitempty"`
	Tmax    *float64 `json:"tmax,omitempty"`
	Cmax    *float64 `json:"cmax,omitempty"`
	Kel     *float64 `json:"kel,omitempty"`
	Thalf   *float64 `json:"thalf,omitempty"`
	CL      *float64 `json:"cl,omitempty"`
	Vd      *float64 `json:"vd,omitempty"`

	DoseUnit string `json:"dose_unit,omitempty"`
	AUCUnit  string `json:"auc_unit,omitempty"`
	TimeUnit string `json:"time_unit,omitempty"`
	ConcUnit string `json:"conc_unit,omitempty"`
	KelUnit  string `json:"kel_unit,omitempty"`
	CLUnit   string `json:"cl_unit,omitempty"`
	VdUnit   string `json:"vd_unit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
