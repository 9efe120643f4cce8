package workflows

type BatchRunInput struct {
	BatchID       string `json:"batch_id"`
	Group         string `json:"group"`
	MaxConcurrent int    `json:"max_concurrent"`
}

type ExperimentRunInput struct {
	RunID        string `json:"run_id"`
	BatchID      string `json:"batch_id"`
	ExperimentID string `json:"experiment_id"`
}

type BatchProgress struct {
	BatchID       string            `json:"batch_id"`
	Group         string            `json:"group"`
	Total         int               `json:"total"`
	Done          int               `json:"done"`
	Failed        int               `json:"failed"`
	PerExperiment map[string]string `json:"per_experiment_status"`
	ChildWorkflow map[string]string `json:"child_workflow_ids,omitempty"`
	SBMLPath      string            `json:"sbml_path,omitempty"`
}

type ExperimentStatus struct {
	RunID        string            `json:"run_id"`
	ExperimentID string            `json:"experiment_id"`
	CurrentStep  string            `json:"current_step"`
	Status       string            `json:"status"`
	FailReason   string            `json:"fail_reason,omitempty"`
	Steps        map[string]string `json:"steps"`
	PKRows       int               `json:"pk_rows"`
	Artifacts    []string          `json:"artifacts,omitempty"`
}
