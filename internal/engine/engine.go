package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var ErrNegativeAmount = errors.New("amount to deploy must not be negative")

// Engine wires a position source, an allocator and the report writers.
type Engine struct {
	source          positionSource
	allocator       allocator
	reportingConfig *ReportingConfig
	log             zerolog.Logger
	now             func() time.Time
}

func NewEngine(source positionSource, alloc allocator, reportingConfig *ReportingConfig, log zerolog.Logger) *Engine {
	if reportingConfig == nil {
		reportingConfig = DefaultReportingConfig()
	}
	return &Engine{
		source:          source,
		allocator:       alloc,
		reportingConfig: reportingConfig,
		log:             log,
		now:             time.Now,
	}
}

// Run loads the positions, allocates amount over them and builds the report.
func (e *Engine) Run(ctx context.Context, amount decimal.Decimal) (*Report, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%s: %w", amount, ErrNegativeAmount)
	}
	runID := uuid.NewString()
	log := e.log.With().Str("run", runID).Logger()

	positions, err := e.source.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	log.Debug().
		Int("positions", len(positions)).
		Str("source", fmt.Sprint(e.source)).
		Msg("positions loaded")

	result := e.allocator.Allocate(positions, amount)

	if result.TotalCapacity.IsPositive() {
		log.Info().
			Str("amount", amount.String()).
			Str("capacity", result.TotalCapacity.String()).
			Str("leftover", result.Leftover.String()).
			Msg("margin allocated")
	} else {
		log.Warn().
			Str("amount", amount.String()).
			Int("positions", len(positions)).
			Msg("no safe loan capacity, nothing allocated")
	}

	return e.generateReport(runID, positions, result), nil
}

// Write renders the report in the configured format, to the configured file
// when there is one and to w otherwise.
func (e *Engine) Write(w io.Writer, report *Report) error {
	if e.reportingConfig.filePath != "" {
		f, err := os.Create(e.reportingConfig.filePath)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch e.reportingConfig.format {
	case FormatCSV:
		return writeAllocationsCSV(w, report)
	case FormatJSON:
		return writeReportJSON(w, report)
	default:
		return e.printReport(w, report)
	}
}
