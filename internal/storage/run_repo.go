package storage

import (
	"context"
	"fmt"

	"rapaflow/internal/models"
)

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) CreateRun(ctx context.Context, run models.ExperimentRun) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO experiment_runs (run_id, batch_id, experiment_id, status, fail_reason)
VALUES ($1, $2, $3, $4, NULLIF($5,''))
ON CONFLICT (run_id)
DO UPDATE SET
  status = EXCLUDED.status,
  fail_reason = EXCLUDED.fail_reason,
  updated_at = NOW()`,
		run.RunID, run.BatchID, run.ExperimentID, run.Status, run.FailReason,
	)
	if err != nil {
		return fmt.Errorf("upsert experiment run: %w", err)
	}
	return nil
}

func (r *RunRepo) UpdateRunStatus(ctx context.Context, runID, status, failReason string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE experiment_runs SET status=$2, fail_reason=NULLIF($3,''), updated_at=NOW() WHERE run_id=$1`,
		runID, status, failReason)
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	return nil
}

func (r *RunRepo) ListRunsByBatch(ctx context.Context, batchID string) ([]models.ExperimentRun, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT run_id, batch_id, experiment_id, status, COALESCE(fail_reason,''), created_at, updated_at
FROM experiment_runs
WHERE batch_id=$1
ORDER BY created_at`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := make([]models.ExperimentRun, 0)
	for rows.Next() {
		var run models.ExperimentRun
		if err := rows.Scan(&run.RunID, &run.BatchID, &run.ExperimentID, &run.Status, &run.FailReason, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func (r *RunRepo) GetRun(ctx context.Context, runID string) (models.ExperimentRun, error) {
	var run models.ExperimentRun
	err := r.db.Pool.QueryRow(ctx, `
SELECT run_id, batch_id, experiment_id, status, COALESCE(fail_reason,''), created_at, updated_at
FROM experiment_runs
WHERE run_id=$1`, runID).
		Scan(&run.RunID, &run.BatchID, &run.ExperimentID, &run.Status, &run.FailReason, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return models.ExperimentRun{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}
