package engine

import (
	"encoding/csv"
	"fmt"
	"io"
)

// writeAllocationsCSV writes one row per position to any io.Writer as CSV.
func writeAllocationsCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)

	header := []string{
		"ticker",
		"name",
		"allocation",
		"cap",
		"weight",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.Ticker,
			row.Name,
			row.Allocation.StringFixed(2),
			row.Cap.StringFixed(2),
			row.Weight.StringFixed(6),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
