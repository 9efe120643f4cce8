package workflows

import (
	"strings"
	"time"

	"rapaflow/internal/activities"
	"rapaflow/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetBatchProgress    = "GetBatchProgress"
	QueryGetExperimentStatus = "GetExperimentStatus"
)

// BatchRunWorkflow resolves an experiment group and fans out one child
// ExperimentRunWorkflow per experiment, at most MaxConcurrent at a time.
// The shared SBML export is written once per batch.
func BatchRunWorkflow(ctx workflow.Context, input BatchRunInput) (string, error) {
	progress := BatchProgress{
		BatchID:       input.BatchID,
		Group:         input.Group,
		PerExperiment: map[string]string{},
		ChildWorkflow: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetBatchProgress, func() (BatchProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var listOut activities.ListGroupExperimentsOutput
	if err := workflow.ExecuteActivity(ctx, "ListGroupExperimentsActivity", activities.ListGroupExperimentsInput{Group: input.Group}).Get(ctx, &listOut); err != nil {
		return "", err
	}
	ids := listOut.ExperimentIDs
	progress.Total = len(ids)

	var sbmlOut activities.ExportSBMLOutput
	if err := workflow.ExecuteActivity(ctx, "ExportSBMLActivity", activities.ExportSBMLInput{BatchID: input.BatchID}).Get(ctx, &sbmlOut); err != nil {
		return "", err
	}
	progress.SBMLPath = sbmlOut.Path

	maxChildren := input.MaxConcurrent
	if maxChildren <= 0 {
		maxChildren = 3
	}

	for i := 0; i < len(ids); i += maxChildren {
		end := i + maxChildren
		if end > len(ids) {
			end = len(ids)
		}
		futures := make([]workflow.ChildWorkflowFuture, 0, end-i)
		childIDs := make([]string, 0, end-i)
		for _, experimentID := range ids[i:end] {
			progress.PerExperiment[experimentID] = "running"
			runID := "run-" + sanitizeID(input.BatchID) + "-" + sanitizeID(experimentID)
			cwo := workflow.ChildWorkflowOptions{WorkflowID: runID}
			childCtx := workflow.WithChildOptions(ctx, cwo)
			f := workflow.ExecuteChildWorkflow(childCtx, ExperimentRunWorkflow, ExperimentRunInput{
				RunID:        runID,
				BatchID:      input.BatchID,
				ExperimentID: experimentID,
			})
			futures = append(futures, f)
			childIDs = append(childIDs, experimentID)
			progress.ChildWorkflow[experimentID] = runID
		}

		for idx, f := range futures {
			var childStatus string
			err := f.Get(ctx, &childStatus)
			experimentID := childIDs[idx]
			if err != nil {
				progress.Failed++
				progress.PerExperiment[experimentID] = models.RunStatusFailed
				continue
			}
			if childStatus == models.RunStatusFailed {
				progress.Failed++
			}
			progress.Done++
			progress.PerExperiment[experimentID] = childStatus
		}
	}

	_ = workflow.ExecuteActivity(ctx, "WriteBatchSummaryActivity", activities.WriteBatchSummaryInput{
		BatchID: input.BatchID,
		Summary: map[string]any{
			"batch_id":              input.BatchID,
			"group":                 input.Group,
			"total":                 progress.Total,
			"done":                  progress.Done,
			"failed":                progress.Failed,
			"per_experiment_status": progress.PerExperiment,
			"sbml_path":             progress.SBMLPath,
			"generated_at":          workflow.Now(ctx),
		},
	}).Get(ctx, nil)

	return models.RunStatusCompleted, nil
}

// ExperimentRunWorkflow runs one experiment end to end: validate the model,
// run every plain simulation, run every scan with PK extraction, persist the
// PK rows. Model or experiment validation failures mark the run failed
// without retrying.
func ExperimentRunWorkflow(ctx workflow.Context, input ExperimentRunInput) (string, error) {
	status := ExperimentStatus{
		RunID:        input.RunID,
		ExperimentID: input.ExperimentID,
		CurrentStep:  "init",
		Status:       models.RunStatusRunning,
		Steps:        map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetExperimentStatus, func() (ExperimentStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	_ = workflow.ExecuteActivity(ctx, "UpsertRunActivity", activities.UpsertRunInput{
		RunID: input.RunID, BatchID: input.BatchID, ExperimentID: input.ExperimentID, Status: models.RunStatusRunning,
	}).Get(ctx, nil)

	status.CurrentStep = "validate_model"
	status.Steps[status.CurrentStep] = "processing"
	var validateOut activities.ValidateModelOutput
	if err := workflow.ExecuteActivity(ctx, "ValidateModelActivity", activities.ValidateModelInput{ExperimentID: input.ExperimentID}).Get(ctx, &validateOut); err != nil {
		if isValidationError(err) {
			return failRun(ctx, &status, input, "model or experiment failed validation: "+rootMessage(err))
		}
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "list_jobs"
	status.Steps[status.CurrentStep] = "processing"
	var jobs activities.ListExperimentJobsOutput
	if err := workflow.ExecuteActivity(ctx, "ListExperimentJobsActivity", activities.ListExperimentJobsInput{ExperimentID: input.ExperimentID}).Get(ctx, &jobs); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	for _, sim := range jobs.Simulations {
		status.CurrentStep = "simulate_" + sim
		status.Steps[status.CurrentStep] = "processing"
		var simOut activities.RunSimulationOutput
		if err := workflow.ExecuteActivity(ctx, "RunSimulationActivity", activities.RunSimulationInput{
			RunID: input.RunID, ExperimentID: input.ExperimentID, Simulation: sim,
		}).Get(ctx, &simOut); err != nil {
			if isIntegrationError(err) {
				return failRun(ctx, &status, input, "integration failed in "+sim)
			}
			return "", err
		}
		status.Artifacts = append(status.Artifacts, simOut.Path)
		status.Steps[status.CurrentStep] = "done"
	}

	for _, scan := range jobs.Scans {
		status.CurrentStep = "scan_" + scan
		status.Steps[status.CurrentStep] = "processing"
		var scanOut activities.RunScanOutput
		if err := workflow.ExecuteActivity(ctx, "RunScanActivity", activities.RunScanInput{
			RunID: input.RunID, ExperimentID: input.ExperimentID, Scan: scan,
		}).Get(ctx, &scanOut); err != nil {
			if isIntegrationError(err) {
				return failRun(ctx, &status, input, "integration failed in "+scan)
			}
			return "", err
		}
		status.Artifacts = append(status.Artifacts, scanOut.CSVPath, scanOut.JSONPath)
		status.PKRows += len(scanOut.Rows)
		status.Steps[status.CurrentStep] = "done"

		if err := workflow.ExecuteActivity(ctx, "StorePKResultsActivity", activities.StorePKResultsInput{
			RunID: input.RunID, ExperimentID: input.ExperimentID, Scan: scan, Rows: scanOut.Rows,
		}).Get(ctx, nil); err != nil {
			return "", err
		}
	}

	status.CurrentStep = "mark_completed"
	if err := workflow.ExecuteActivity(ctx, "UpdateRunStatusActivity", activities.UpsertRunInput{
		RunID: input.RunID, Status: models.RunStatusCompleted,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.CurrentStep = "done"
	status.Status = models.RunStatusCompleted
	return status.Status, nil
}

func failRun(ctx workflow.Context, status *ExperimentStatus, input ExperimentRunInput, reason string) (string, error) {
	status.Status = models.RunStatusFailed
	status.FailReason = reason
	status.Steps[status.CurrentStep] = "failed"
	_ = workflow.ExecuteActivity(ctx, "UpdateRunStatusActivity", activities.UpsertRunInput{
		RunID: input.RunID, Status: models.RunStatusFailed, FailReason: reason,
	}).Get(ctx, nil)
	return status.Status, nil
}

func isValidationError(err error) bool {
	e := strings.ToLower(err.Error())
	return strings.Contains(e, "failed validation") ||
		strings.Contains(e, "unknown experiment") ||
		strings.Contains(e, "references unknown")
}

func isIntegrationError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "non-finite state")
}

func rootMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		return msg[i+2:]
	}
	return msg
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}
