package activities

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"rapaflow/internal/config"
	"rapaflow/internal/experiments"
	"rapaflow/internal/model"
	"rapaflow/internal/models"
	"rapaflow/internal/pk"
	"rapaflow/internal/sbml"
	"rapaflow/internal/simulate"
	"rapaflow/internal/storage"
	"rapaflow/internal/util"
)

type Activities struct {
	cfg      config.Config
	registry *experiments.Registry
	engine   simulate.Engine
	runRepo  *storage.RunRepo
	pkRepo   *storage.PKRepo
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	reg, err := experiments.NewRegistry()
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:      cfg,
		registry: reg,
		engine:   simulate.NewRK4Engine(cfg.MaxStepMinutes),
		runRepo:  storage.NewRunRepo(db),
		pkRepo:   storage.NewPKRepo(db),
	}, nil
}

func (a *Activities) ListGroupExperimentsActivity(ctx context.Context, in ListGroupExperimentsInput) (ListGroupExperimentsOutput, error) {
	_ = ctx
	ids, err := a.registry.Group(in.Group)
	if err != nil {
		return ListGroupExperimentsOutput{}, err
	}
	return ListGroupExperimentsOutput{ExperimentIDs: ids}, nil
}

// ValidateModelActivity builds the whole-body model and checks both the
// model and the requested experiment. A validation failure is a terminal
// business failure, not a transient one.
func (a *Activities) ValidateModelActivity(ctx context.Context, in ValidateModelInput) (ValidateModelOutput, error) {
	_ = ctx
	def, err := a.definition()
	if err != nil {
		return ValidateModelOutput{}, fmt.Errorf("%w: %v", util.ErrModelInvalid, err)
	}
	exp, err := a.registry.Experiment(in.ExperimentID)
	if err != nil {
		return ValidateModelOutput{}, err
	}
	if err := exp.Validate(); err != nil {
		return ValidateModelOutput{}, err
	}
	return ValidateModelOutput{
		Compartments: len(def.Compartments),
		Species:      len(def.Species),
		Parameters:   len(def.Parameters),
		Reactions:    len(def.Reactions),
	}, nil
}

func (a *Activities) ExportSBMLActivity(ctx context.Context, in ExportSBMLInput) (ExportSBMLOutput, error) {
	_ = ctx
	def, err := a.definition()
	if err != nil {
		return ExportSBMLOutput{}, err
	}
	data, err := sbml.Export(def, a.cfg.SBMLLevel, a.cfg.SBMLVersion)
	if err != nil {
		return ExportSBMLOutput{}, err
	}
	path := filepath.Join(a.cfg.DataOutRoot, in.BatchID, "rapamycin_body.xml")
	if err := util.WriteBytesAtomic(path, data); err != nil {
		return ExportSBMLOutput{}, err
	}
	return ExportSBMLOutput{Path: path}, nil
}

func (a *Activities) UpsertRunActivity(ctx context.Context, in UpsertRunInput) error {
	return a.runRepo.CreateRun(ctx, models.ExperimentRun{
		RunID:        in.RunID,
		BatchID:      in.BatchID,
		ExperimentID: in.ExperimentID,
		Status:       in.Status,
		FailReason:   in.FailReason,
	})
}

func (a *Activities) ListExperimentJobsActivity(ctx context.Context, in ListExperimentJobsInput) (ListExperimentJobsOutput, error) {
	_ = ctx
	exp, err := a.registry.Experiment(in.ExperimentID)
	if err != nil {
		return ListExperimentJobsOutput{}, err
	}
	out := ListExperimentJobsOutput{
		Simulations: make([]string, 0, len(exp.Simulations)),
		Scans:       make([]string, 0, len(exp.Scans)),
	}
	for name := range exp.Simulations {
		out.Simulations = append(out.Simulations, name)
	}
	for name := range exp.Scans {
		out.Scans = append(out.Scans, name)
	}
	sort.Strings(out.Simulations)
	sort.Strings(out.Scans)
	return out, nil
}

func (a *Activities) RunSimulationActivity(ctx context.Context, in RunSimulationInput) (RunSimulationOutput, error) {
	def, err := a.definition()
	if err != nil {
		return RunSimulationOutput{}, err
	}
	exp, err := a.registry.Experiment(in.ExperimentID)
	if err != nil {
		return RunSimulationOutput{}, err
	}
	sim, ok := exp.Simulations[in.Simulation]
	if !ok {
		return RunSimulationOutput{}, fmt.Errorf("experiment %s has no simulation %q", in.ExperimentID, in.Simulation)
	}
	res, err := a.engine.RunTimecourse(ctx, def, sim)
	if err != nil {
		return RunSimulationOutput{}, fmt.Errorf("simulate %s/%s: %w", in.ExperimentID, in.Simulation, err)
	}
	path := a.artifactPath(in.RunID, in.ExperimentID, in.Simulation+".csv")
	header, rows := timecourseTable(res)
	if err := util.WriteCSVAtomic(path, header, rows); err != nil {
		return RunSimulationOutput{}, err
	}
	return RunSimulationOutput{Path: path, Points: len(res.Time)}, nil
}

func (a *Activities) RunScanActivity(ctx context.Context, in RunScanInput) (RunScanOutput, error) {
	def, err := a.definition()
	if err != nil {
		return RunScanOutput{}, err
	}
	exp, err := a.registry.Experiment(in.ExperimentID)
	if err != nil {
		return RunScanOutput{}, err
	}
	scan, ok := exp.Scans[in.Scan]
	if !ok {
		return RunScanOutput{}, fmt.Errorf("experiment %s has no scan %q", in.ExperimentID, in.Scan)
	}
	res, err := a.engine.RunScan(ctx, def, scan)
	if err != nil {
		return RunScanOutput{}, fmt.Errorf("scan %s/%s: %w", in.ExperimentID, in.Scan, err)
	}
	table, err := pk.CalculateScanPK(res, pk.RapamycinAnalytes(experiments.MrRapamycin))
	if err != nil {
		return RunScanOutput{}, fmt.Errorf("pk for %s/%s: %w", in.ExperimentID, in.Scan, err)
	}

	csvData, err := table.CSV()
	if err != nil {
		return RunScanOutput{}, err
	}
	csvPath := a.artifactPath(in.RunID, in.ExperimentID, in.Scan+"_pk.csv")
	if err := util.WriteBytesAtomic(csvPath, csvData); err != nil {
		return RunScanOutput{}, err
	}
	jsonData, err := table.JSON()
	if err != nil {
		return RunScanOutput{}, err
	}
	jsonPath := a.artifactPath(in.RunID, in.ExperimentID, in.Scan+"_pk.json")
	if err := util.WriteBytesAtomic(jsonPath, jsonData); err != nil {
		return RunScanOutput{}, err
	}
	return RunScanOutput{Rows: table.Rows, CSVPath: csvPath, JSONPath: jsonPath}, nil
}

func (a *Activities) StorePKResultsActivity(ctx context.Context, in StorePKResultsInput) error {
	records := make([]models.PKResult, 0, len(in.Rows))
	for _, row := range in.Rows {
		records = append(records, storage.PKRecord(in.RunID, in.ExperimentID, in.Scan, row))
	}
	return a.pkRepo.InsertResults(ctx, records)
}

func (a *Activities) UpdateRunStatusActivity(ctx context.Context, in UpsertRunInput) error {
	return a.runRepo.UpdateRunStatus(ctx, in.RunID, in.Status, in.FailReason)
}

func (a *Activities) WriteBatchSummaryActivity(ctx context.Context, in WriteBatchSummaryInput) error {
	_ = ctx
	path := filepath.Join(a.cfg.DataOutRoot, in.BatchID, "batch_summary.json")
	return util.WriteJSONAtomic(path, in.Summary)
}

func (a *Activities) definition() (*model.Definition, error) {
	return model.Body()
}

func (a *Activities) artifactPath(runID, experimentID, name string) string {
	return filepath.Join(a.cfg.DataOutRoot, util.SafeJoin("runs", runID), experimentID, name)
}

// timecourseTable flattens a result to a time column plus one sorted column
// per recorded variable, units spelled out in the header.
func timecourseTable(res *simulate.Result) ([]string, [][]string) {
	cols := make([]string, 0, len(res.Values))
	for id := range res.Values {
		cols = append(cols, id)
	}
	sort.Strings(cols)

	header := make([]string, 0, len(cols)+1)
	header = append(header, "time [min]")
	for _, id := range cols {
		header = append(header, fmt.Sprintf("%s [%s]", id, res.Units[id]))
	}

	rows := make([][]string, 0, len(res.Time))
	for i := range res.Time {
		row := make([]string, 0, len(cols)+1)
		row = append(row, strconv.FormatFloat(res.Time[i], 'g', -1, 64))
		for _, id := range cols {
			row = append(row, strconv.FormatFloat(res.Values[id][i], 'g', -1, 64))
		}
		rows = append(rows, row)
	}
	return header, rows
}
