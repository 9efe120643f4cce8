package activities

import "rapaflow/internal/pk"

type ListGroupExperimentsInput struct {
	Group string `json:"group"`
}

type ListGroupExperimentsOutput struct {
	ExperimentIDs []string `json:"experiment_ids"`
}

type ValidateModelInput struct {
	ExperimentID string `json:"experiment_id"`
}

type ValidateModelOutput struct {
	Compartments int `json:"compartments"`
	Species      int `json:"species"`
	Parameters   int `json:"parameters"`
	Reactions    int `json:"reactions"`
}

type ExportSBMLInput struct {
	BatchID string `json:"batch_id"`
}

type ExportSBMLOutput struct {
	Path string `json:"path"`
}

type UpsertRunInput struct {
	RunID        string `json:"run_id"`
	BatchID      string `json:"batch_id"`
	ExperimentID string `json:"experiment_id"`
	Status       string `json:"status"`
	FailReason   string `json:"fail_reason,omitempty"`
}

type ListExperimentJobsInput struct {
	ExperimentID string `json:"experiment_id"`
}

type ListExperimentJobsOutput struct {
	Simulations []string `json:"simulations"`
	Scans       []string `json:"scans"`
}

type RunSimulationInput struct {
	RunID        string `json:"run_id"`
	ExperimentID string `json:"experiment_id"`
	Simulation   string `json:"simulation"`
}

type RunSimulationOutput struct {
	Path   string `json:"path"`
	Points int    `json:"points"`
}

type RunScanInput struct {
	RunID        string `json:"run_id"`
	ExperimentID string `json:"experiment_id"`
	Scan         string `json:"scan"`
}

type RunScanOutput struct {
	Rows     []pk.Row `json:"rows"`
	CSVPath  string   `json:"csv_path"`
	JSONPath string   `json:"json_path"`
}

type StorePKResultsInput struct {
	RunID        string   `json:"run_id"`
	ExperimentID string   `json:"experiment_id"`
	Scan         string   `json:"scan"`
	Rows         []pk.Row `json:"rows"`
}

type WriteBatchSummaryInput struct {
	BatchID string         `json:"batch_id"`
	Summary map[string]any `json:"summary"`
}
