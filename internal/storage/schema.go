package storage

import (
	"context"
	"fmt"
)

// EnsureSchema creates the result tables if they do not exist yet, so a
// fresh database works without a separate migration step.
func EnsureSchema(ctx context.Context, db *DB) error {
	ddl := `
CREATE TABLE IF NOT EXISTS experiment_runs (
  run_id TEXT PRIMARY KEY,
  batch_id TEXT NOT NULL,
  experiment_id TEXT NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('pending','running','completed','failed')),
  fail_reason TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_experiment_runs_batch ON experiment_runs(batch_id, created_at);

CREATE TABLE IF NOT EXISTS pk_results (
  run_id TEXT NOT NULL REFERENCES experiment_runs(run_id) ON DELETE CASCADE,
  experiment_id TEXT NOT NULL,
  scan TEXT NOT NULL,
  coordinate INT NOT NULL,
  scan_parameter TEXT NOT NULL,
  scan_value DOUBLE PRECISION NOT NULL,
  scan_unit TEXT NOT NULL,
  substance TEXT NOT NULL,
  dose DOUBLE PRECISION,
  dose_unit TEXT,
  auc DOUBLE PRECISION,
  aucinf DOUBLE PRECISION,
  auc_unit TEXT,
  tmax DOUBLE PRECISION,
  time_unit TEXT,
  cmax DOUBLE PRECISION,
  conc_unit TEXT,
  kel DOUBLE PRECISION,
  kel_unit TEXT,
  thalf DOUBLE PRECISION,
  cl DOUBLE PRECISION,
  cl_unit TEXT,
  vd DOUBLE PRECISION,
  vd_unit TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  PRIMARY KEY (run_id, scan, coordinate, substance)
);

CREATE INDEX IF NOT EXISTS idx_pk_results_experiment ON pk_results(experiment_id, scan);
`
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
