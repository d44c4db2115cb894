package repository

import (
	"context"
	"errors"
	"fmt"

	"marginalloc/types"

	"github.com/jackc/pgx/v5"
)

// GetPositions retrieves the positions of a book in insertion order.
func (db *Database) GetPositions(ctx context.Context, book string) ([]types.Position, error) {
	rows, err := db.positions.ListPositionsByBook(ctx, book)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("book %s %w", book, ErrNoPositions)
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("book %s %w", book, ErrNoPositions)
	}
	return convertPositions(rows)
}

func convertPositions(rows []PositionRow) ([]types.Position, error) {
	positions := make([]types.Position, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.SafeLoanCapacity.IsNegative() {
			return nil, fmt.Errorf("ticker %s has negative safe loan capacity %s: %w", row.Ticker, row.SafeLoanCapacity, ErrInvalidPosition)
		}
		if seen[row.Ticker] {
			return nil, fmt.Errorf("ticker %s listed twice: %w", row.Ticker, ErrInvalidPosition)
		}
		seen[row.Ticker] = true

		var name string
		if row.Name != nil {
			name = *row.Name
		}
		positions = append(positions, types.NewPosition(
			row.Ticker,
			name,
			row.Value,
			row.MaintenanceRequirement,
			row.RequiredAmount,
			row.SafeLoanCapacity,
		))
	}
	return positions, nil
}
