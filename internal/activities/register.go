package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ListGroupExperimentsActivity)
	w.RegisterActivity(a.ValidateModelActivity)
	w.RegisterActivity(a.ExportSBMLActivity)
	w.RegisterActivity(a.UpsertRunActivity)
	w.RegisterActivity(a.UpdateRunStatusActivity)
	w.RegisterActivity(a.ListExperimentJobsActivity)
	w.RegisterActivity(a.RunSimulationActivity)
	w.RegisterActivity(a.RunScanActivity)
	w.RegisterActivity(a.StorePKResultsActivity)
	w.RegisterActivity(a.WriteBatchSummaryActivity)
}
