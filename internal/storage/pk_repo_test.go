package storage

import (
	"testing"

	"rapaflow/internal/pk"
	"rapaflow/internal/units"
)

func TestPKRecordNullsUndefinedMetrics(t *testing.T) {
	row := pk.Row{
		Coordinate:    4,
		ScanParameter: "PODOSE_rap",
		ScanValue:     units.Q(2, "mg"),
	}
	row.Substance = "rap"
	row.AUCend = pk.Value{Value: 1.5, Unit: "mM*min", Defined: true}
	row.Kel = pk.Value{Unit: "1/min"}

	rec := PKRecord("run-1", "parameter_scan", "scan_po_dose_scan", row)
	if rec.Coordinate != 4 || rec.ScanValue != 2 || rec.ScanUnit != "mg" {
		t.Fatalf("coordinate fields: %+v", rec)
	}
	if rec.AUCend == nil || *rec.AUCend != 1.5 || rec.AUCUnit != "mM*min" {
		t.Fatalf("auc not carried: %+v", rec)
	}
	if rec.Kel != nil {
		t.Fatal("undefined kel must store as NULL")
	}
	if rec.KelUnit != "1/min" {
		t.Fatalf("kel unit = %q", rec.KelUnit)
	}
}
