package engine

import (
	"context"

	"marginalloc/types"

	"github.com/shopspring/decimal"
)

type positionSource interface {
	Positions(ctx context.Context) ([]types.Position, error)
}

type allocator interface {
	Allocate(positions []types.Position, amount decimal.Decimal) types.AllocationResult
}
