package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"marginalloc/types"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingField    = errors.New("missing field")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidField    = errors.New("invalid field")
	ErrDuplicateTicker = errors.New("duplicate ticker")
)

// Column names of the positions file.
const (
	ColTicker           = "Ticker"
	ColName             = "Name"
	ColValue            = "Value"
	ColMaintenance      = "M"
	ColRequiredAmount   = "ReqAmt"
	ColSafeLoanCapacity = "SafeLoan_per_position"
)

var columns = []string{
	ColTicker,
	ColName,
	ColValue,
	ColMaintenance,
	ColRequiredAmount,
	ColSafeLoanCapacity,
}

// LoadFile decodes the positions CSV file at path.
func LoadFile(path string) ([]types.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open positions file: %w", err)
	}
	defer f.Close()

	positions, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return positions, nil
}

// Decode reads one position per record. The header must name every column
// exactly once, in any order, and nothing else.
func Decode(r io.Reader) ([]types.Position, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty input, no header: %w", ErrMissingField)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var positions []types.Position
	seen := make(map[string]int)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := cr.FieldPos(0)

		p, err := decodeRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if first, ok := seen[p.Ticker]; ok {
			return nil, fmt.Errorf("line %d: %s already on line %d: %w", line, p.Ticker, first, ErrDuplicateTicker)
		}
		seen[p.Ticker] = line
		positions = append(positions, p)
	}
	return positions, nil
}

func headerIndex(header []string) (map[string]int, error) {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		// Excel likes to prefix the first cell with a BOM.
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if !known[h] {
			return nil, fmt.Errorf("column %q: %w", h, ErrUnknownField)
		}
		if _, dup := index[h]; dup {
			return nil, fmt.Errorf("column %q appears twice: %w", h, ErrInvalidField)
		}
		index[h] = i
	}
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("column %q: %w", c, ErrMissingField)
		}
	}
	return index, nil
}

func decodeRecord(record []string, index map[string]int) (types.Position, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[index[col]])
	}
	number := func(col string) (decimal.Decimal, error) {
		raw := field(col)
		if raw == "" {
			return decimal.Zero, fmt.Errorf("%s is empty: %w", col, ErrMissingField)
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s %q: %w", col, raw, ErrInvalidField)
		}
		return d, nil
	}

	ticker := field(ColTicker)
	if ticker == "" {
		return types.Position{}, fmt.Errorf("%s is empty: %w", ColTicker, ErrMissingField)
	}
	value, err := number(ColValue)
	if err != nil {
		return types.Position{}, err
	}
	m, err := number(ColMaintenance)
	if err != nil {
		return types.Position{}, err
	}
	reqAmt, err := number(ColRequiredAmount)
	if err != nil {
		return types.Position{}, err
	}
	safeLoan, err := number(ColSafeLoanCapacity)
	if err != nil {
		return types.Position{}, err
	}
	if safeLoan.IsNegative() {
		return types.Position{}, fmt.Errorf("%s %s is negative: %w", ColSafeLoanCapacity, safeLoan, ErrInvalidField)
	}

	return types.NewPosition(ticker, field(ColName), value, m, reqAmt, safeLoan), nil
}
