package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"marginalloc/types"

	"github.com/shopspring/decimal"
)

type Report struct {
	RunID       string    `json:"runId"`
	GeneratedAt time.Time `json:"generatedAt"`
	Currency    string    `json:"currency,omitempty"`

	// Totals
	Requested      decimal.Decimal `json:"requested"`
	TotalCapacity  decimal.Decimal `json:"totalCapacity"`
	TotalAllocated decimal.Decimal `json:"totalAllocated"`
	Leftover       decimal.Decimal `json:"leftover"`

	// Share of the total safe capacity in use, zero without capacity.
	Utilization    decimal.Decimal `json:"utilization"`
	PositionsAtCap int             `json:"positionsAtCap"`

	Rows []ReportRow `json:"rows"`
}

type ReportRow struct {
	Ticker     string          `json:"ticker"`
	Name       string          `json:"name"`
	Allocation decimal.Decimal `json:"allocation"`
	Cap        decimal.Decimal `json:"cap"`
	Weight     decimal.Decimal `json:"weight"`
}

func (e *Engine) generateReport(runID string, positions []types.Position, result types.AllocationResult) *Report {
	report := &Report{
		RunID:          runID,
		GeneratedAt:    e.now().UTC(),
		Requested:      result.Requested,
		TotalCapacity:  result.TotalCapacity,
		TotalAllocated: result.TotalAllocated(),
		Leftover:       result.Leftover,
		Utilization:    decimal.Zero,
		Rows:           make([]ReportRow, 0, len(result.Entries)),
	}
	if e.reportingConfig.currency != nil {
		report.Currency = e.reportingConfig.currency.Code
	}
	if result.TotalCapacity.IsPositive() {
		report.Utilization = report.TotalAllocated.Div(result.TotalCapacity)
	}

	// entries line up with positions, the allocator keeps input order
	for i, entry := range result.Entries {
		var name string
		if i < len(positions) {
			name = positions[i].Name
		}
		if entry.AtCap() {
			report.PositionsAtCap++
		}
		report.Rows = append(report.Rows, ReportRow{
			Ticker:     entry.Ticker,
			Name:       name,
			Allocation: entry.Amount,
			Cap:        entry.Cap,
			Weight:     entry.Weight,
		})
	}
	return report
}

func (e *Engine) printReport(w io.Writer, report *Report) error {
	pw := &printer{w: w}

	pw.printf("Total allocated: %s\n", e.formatAmount(report.TotalAllocated))
	// sub-cent leftovers are division noise
	if !report.Leftover.Round(2).IsZero() {
		pw.printf("Leftover margin: %s\n", e.formatAmount(report.Leftover))
	}
	for _, row := range report.Rows {
		pw.printf("%s: %s (cap %s)\n", row.Ticker, e.formatAmount(row.Allocation), e.formatAmount(row.Cap))
	}
	return pw.err
}

func (e *Engine) formatAmount(d decimal.Decimal) string {
	cur := e.reportingConfig.currency
	if cur == nil {
		return d.StringFixed(2)
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

func writeReportJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// printer keeps the first write error so the report body stays readable.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
