package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type dbtx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Queries runs the hand-written SQL against a pool or a transaction.
type Queries struct {
	db dbtx
}

func NewQueries(db dbtx) *Queries {
	return &Queries{db: db}
}

type PositionRow struct {
	ID                     int64           `db:"id"`
	Book                   string          `db:"book"`
	Ticker                 string          `db:"ticker"`
	Name                   *string         `db:"name"`
	Value                  decimal.Decimal `db:"value"`
	MaintenanceRequirement decimal.Decimal `db:"maintenance_requirement"`
	RequiredAmount         decimal.Decimal `db:"required_amount"`
	SafeLoanCapacity       decimal.Decimal `db:"safe_loan_capacity"`
}

const listPositionsByBook = `
SELECT id, book, ticker, name, value, maintenance_requirement, required_amount, safe_loan_capacity
FROM positions
WHERE book = $1
ORDER BY id
`

func (q *Queries) ListPositionsByBook(ctx context.Context, book string) ([]PositionRow, error) {
	rows, err := q.db.Query(ctx, listPositionsByBook, book)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[PositionRow])
}
