package workflows

import (
	"context"
	"errors"
	"testing"

	"rapaflow/internal/activities"
	"rapaflow/internal/pk"
	"rapaflow/internal/units"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerExperimentActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "UpsertRunActivity", func(context.Context, activities.UpsertRunInput) error { return nil })
	registerActivityName(env, "UpdateRunStatusActivity", func(context.Context, activities.UpsertRunInput) error { return nil })
	registerActivityName(env, "ValidateModelActivity", func(context.Context, activities.ValidateModelInput) (activities.ValidateModelOutput, error) {
		return activities.ValidateModelOutput{}, nil
	})
	registerActivityName(env, "ListExperimentJobsActivity", func(context.Context, activities.ListExperimentJobsInput) (activities.ListExperimentJobsOutput, error) {
		return activities.ListExperimentJobsOutput{}, nil
	})
	registerActivityName(env, "RunSimulationActivity", func(context.Context, activities.RunSimulationInput) (activities.RunSimulationOutput, error) {
		return activities.RunSimulationOutput{}, nil
	})
	registerActivityName(env, "RunScanActivity", func(context.Context, activities.RunScanInput) (activities.RunScanOutput, error) {
		return activities.RunScanOutput{}, nil
	})
	registerActivityName(env, "StorePKResultsActivity", func(context.Context, activities.StorePKResultsInput) error { return nil })
}

func TestExperimentRunWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ExperimentRunWorkflow)
	registerExperimentActivities(env)

	pkRow := pk.Row{Coordinate: 0, ScanParameter: "PODOSE_rap", ScanValue: units.Q(2, "mg")}
	pkRow.Substance = "rap"

	env.OnActivity("UpsertRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ValidateModelActivity", mock.Anything, activities.ValidateModelInput{ExperimentID: "parameter_scan"}).
		Return(activities.ValidateModelOutput{Compartments: 20, Species: 15, Parameters: 30, Reactions: 18}, nil)
	env.OnActivity("ListExperimentJobsActivity", mock.Anything, mock.Anything).
		Return(activities.ListExperimentJobsOutput{Simulations: []string{"rap_po_2"}, Scans: []string{"scan_po_dose_scan"}}, nil)
	env.OnActivity("RunSimulationActivity", mock.Anything, activities.RunSimulationInput{RunID: "run-1", ExperimentID: "parameter_scan", Simulation: "rap_po_2"}).
		Return(activities.RunSimulationOutput{Path: "/out/rap_po_2.csv", Points: 1001}, nil)
	env.OnActivity("RunScanActivity", mock.Anything, activities.RunScanInput{RunID: "run-1", ExperimentID: "parameter_scan", Scan: "scan_po_dose_scan"}).
		Return(activities.RunScanOutput{Rows: []pk.Row{pkRow}, CSVPath: "/out/scan_pk.csv", JSONPath: "/out/scan_pk.json"}, nil)
	env.OnActivity("StorePKResultsActivity", mock.Anything, activities.StorePKResultsInput{
		RunID: "run-1", ExperimentID: "parameter_scan", Scan: "scan_po_dose_scan", Rows: []pk.Row{pkRow},
	}).Return(nil)

	env.ExecuteWorkflow(ExperimentRunWorkflow, ExperimentRunInput{RunID: "run-1", BatchID: "b1", ExperimentID: "parameter_scan"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "completed", out)
}

func TestExperimentRunWorkflowValidationFailsGracefully(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ExperimentRunWorkflow)
	registerExperimentActivities(env)

	env.OnActivity("UpsertRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ValidateModelActivity", mock.Anything, mock.Anything).
		Return(activities.ValidateModelOutput{}, errors.New("model definition failed validation: model rapamycin_body: GU__rap_lumen: species references unknown compartment"))

	env.ExecuteWorkflow(ExperimentRunWorkflow, ExperimentRunInput{RunID: "run-2", BatchID: "b1", ExperimentID: "zimmerman1997"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
}

func TestExperimentRunWorkflowIntegrationFailureMarksRunFailed(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ExperimentRunWorkflow)
	registerExperimentActivities(env)

	env.OnActivity("UpsertRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ValidateModelActivity", mock.Anything, mock.Anything).Return(activities.ValidateModelOutput{}, nil)
	env.OnActivity("ListExperimentJobsActivity", mock.Anything, mock.Anything).
		Return(activities.ListExperimentJobsOutput{Simulations: []string{"rap_po_80"}}, nil)
	env.OnActivity("RunSimulationActivity", mock.Anything, mock.Anything).
		Return(activities.RunSimulationOutput{}, errors.New("simulate dose_dependency/rap_po_80: ODE integration produced non-finite state"))

	env.ExecuteWorkflow(ExperimentRunWorkflow, ExperimentRunInput{RunID: "run-3", BatchID: "b1", ExperimentID: "dose_dependency"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
}

func TestBatchRunWorkflowFansOut(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(BatchRunWorkflow)
	env.RegisterWorkflow(ExperimentRunWorkflow)
	registerExperimentActivities(env)
	registerActivityName(env, "ListGroupExperimentsActivity", func(context.Context, activities.ListGroupExperimentsInput) (activities.ListGroupExperimentsOutput, error) {
		return activities.ListGroupExperimentsOutput{}, nil
	})
	registerActivityName(env, "ExportSBMLActivity", func(context.Context, activities.ExportSBMLInput) (activities.ExportSBMLOutput, error) {
		return activities.ExportSBMLOutput{}, nil
	})
	registerActivityName(env, "WriteBatchSummaryActivity", func(context.Context, activities.WriteBatchSummaryInput) error { return nil })

	env.OnActivity("ListGroupExperimentsActivity", mock.Anything, activities.ListGroupExperimentsInput{Group: "dose"}).
		Return(activities.ListGroupExperimentsOutput{ExperimentIDs: []string{"dose_dependency", "parameter_scan"}}, nil)
	env.OnActivity("ExportSBMLActivity", mock.Anything, mock.Anything).
		Return(activities.ExportSBMLOutput{Path: "/out/b1/rapamycin_body.xml"}, nil)
	env.OnActivity("UpsertRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ValidateModelActivity", mock.Anything, mock.Anything).Return(activities.ValidateModelOutput{}, nil)
	env.OnActivity("ListExperimentJobsActivity", mock.Anything, mock.Anything).Return(activities.ListExperimentJobsOutput{}, nil)
	env.OnActivity("WriteBatchSummaryActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(BatchRunWorkflow, BatchRunInput{BatchID: "b1", Group: "dose", MaxConcurrent: 1})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "completed", out)
}
