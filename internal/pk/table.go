package pk

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Table is a flat PK result table, one row per scan coordinate and analyte.
type Table struct {
	Rows []Row `json:"rows"`
}

func (t *Table) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("pk table to json: %w", err)
	}
	return out, nil
}

var csvMetrics = []string{"dose", "auc", "aucinf", "tmax", "cmax", "kel", "thalf", "cl", "vd"}

// CSV renders the table with one value and one unit column per metric.
// Undefined metrics leave the value cell empty.
func (t *Table) CSV() ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	header := []string{"coordinate", "scan_parameter", "scan_value", "scan_unit", "substance"}
	for _, m := range csvMetrics {
		header = append(header, m, m+"_unit")
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("pk table to csv: %w", err)
	}

	for _, row := range t.Rows {
		rec := []string{
			strconv.Itoa(row.Coordinate),
			row.ScanParameter,
			formatFloat(row.ScanValue.Value),
			row.ScanValue.Unit,
			row.Substance,
		}
		for _, m := range csvMetrics {
			v := row.metric(m)
			if v.Defined {
				rec = append(rec, formatFloat(v.Value), v.Unit)
			} else {
				rec = append(rec, "", v.Unit)
			}
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("pk table to csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("pk table to csv: %w", err)
	}
	return []byte(buf.String()), nil
}

func (r Row) metric(name string) Value {
	switch name {
	case "dose":
		return r.Dose
	case "auc":
		return r.AUCend
	case "aucinf":
		return r.AUCinf
	case "tmax":
		return r.Tmax
	case "cmax":
		return r.Cmax
	case "kel":
		return r.Kel
	case "thalf":
		return r.Thalf
	case "cl":
		return r.CL
	case "vd":
		return r.Vd
	}
	return Value{}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
