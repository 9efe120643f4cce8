package storage

import (
	"context"
	"fmt"

	"rapaflow/internal/models"
	"rapaflow/internal/pk"
)

type PKRepo struct {
	db *DB
}

func NewPKRepo(db *DB) *PKRepo {
	return &PKRepo{db: db}
}

// PKRecord converts one scan row to its storage shape. Undefined metrics
// become nil so they land as NULL.
func PKRecord(runID, experimentID, scan string, row pk.Row) models.PKResult {
	rec := models.PKResult{
		RunID:         runID,
		ExperimentID:  experimentID,
		Scan:          scan,
		Coordinate:    row.Coordinate,
		ScanParameter: row.ScanParameter,
		ScanValue:     row.ScanValue.Value,
		ScanUnit:      row.ScanValue.Unit,
		Substance:     row.Substance,
	}
	rec.Dose, rec.DoseUnit = nullable(row.Dose)
	rec.AUCend, rec.AUCUnit = nullable(row.AUCend)
	rec.AUCinf, _ = nullable(row.AUCinf)
	rec.Tmax, rec.TimeUnit = nullable(row.Tmax)
	rec.Cmax, rec.ConcUnit = nullable(row.Cmax)
	rec.Kel, rec.KelUnit = nullable(row.Kel)
	rec.Thalf, _ = nullable(row.Thalf)
	rec.CL, rec.CLUnit = nullable(row.CL)
	rec.Vd, rec.VdUnit = nullable(row.Vd)
	return rec
}

func nullable(v pk.Value) (*float64, string) {
	if !v.Defined {
		return nil, v.Unit
	}
	x := v.Value
	return &x, v.Unit
}

func (r *PKRepo) InsertResults(ctx context.Context, results []models.PKResult) error {
	for _, res := range results {
		_, err := r.db.Pool.Exec(ctx, `
INSERT INTO pk_results (run_id, experiment_id, scan, coordinate, scan_parameter, scan_value, scan_unit, substance,
                        dose, dose_unit, auc, aucinf, auc_unit, tmax, time_unit, cmax, conc_unit,
                        kel, kel_unit, thalf, cl, cl_unit, vd, vd_unit)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
        $9, $10, $11, $12, $13, $14, $15, $16, $17,
        $18, $19, $20, $21, $22, $23, $24)
ON CONFLICT (run_id, scan, coordinate, substance)
DO UPDATE SET
  dose = EXCLUDED.dose,
  auc = EXCLUDED.auc,
  aucinf = EXCLUDED.aucinf,
  tmax = EXCLUDED.tmax,
  cmax = EXCLUDED.cmax,
  kel = EXCLUDED.kel,
  thalf = EXCLUDED.thalf,
  cl = EXCLUDED.cl,
  vd = EXCLUDED.vd`,
			res.RunID, res.ExperimentID, res.Scan, res.Coordinate, res.ScanParameter, res.ScanValue, res.ScanUnit, res.Substance,
			res.Dose, res.DoseUnit, res.AUCend, res.AUCinf, res.AUCUnit, res.Tmax, res.TimeUnit, res.Cmax, res.ConcUnit,
			res.Kel, res.KelUnit, res.Thalf, res.CL, res.CLUnit, res.Vd, res.VdUnit,
		)
		if err != nil {
			return fmt.Errorf("insert pk result: %w", err)
		}
	}
	return nil
}

func (r *PKRepo) ListResultsByRun(ctx context.Context, runID string) ([]models.PKResult, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT run_id, experiment_id, scan, coordinate, scan_parameter, scan_value, scan_unit, substance,
       dose, COALESCE(dose_unit,''), auc, aucinf, COALESCE(auc_unit,''), tmax, COALESCE(time_unit,''),
       cmax, COALESCE(conc_unit,''), kel, COALESCE(kel_unit,''), thalf, cl, COALESCE(cl_unit,''),
       vd, COALESCE(vd_unit,''), created_at
FROM pk_results
WHERE run_id=$1
ORDER BY scan, substance, coordinate`, runID)
	if err != nil {
		return nil, fmt.Errorf("list pk results: %w", err)
	}
	defer rows.Close()

	out := make([]models.PKResult, 0)
	for rows.Next() {
		var res models.PKResult
		if err := rows.Scan(&res.RunID, &res.ExperimentID, &res.Scan, &res.Coordinate, &res.ScanParameter, &res.ScanValue, &res.ScanUnit, &res.Substance,
			&res.Dose, &res.DoseUnit, &res.AUCend, &res.AUCinf, &res.AUCUnit, &res.Tmax, &res.TimeUnit,
			&res.Cmax, &res.ConcUnit, &res.Kel, &res.KelUnit, &res.Thalf, &res.CL, &res.CLUnit,
			&res.Vd, &res.VdUnit, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pk result: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pk results: %w", err)
	}
	return out, nil
}
