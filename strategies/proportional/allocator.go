package proportional

import (
	"marginalloc/types"

	"github.com/shopspring/decimal"
)

// Allocator spreads a margin amount over positions in proportion to their
// safe loan capacity, capping every position at its own capacity.
//
// It makes a single pass: margin cut off by a cap is reported as leftover
// and is not handed to positions that still have room.
type Allocator struct{}

func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate never fails. With no usable capacity (no positions, or every
// capacity zero) each position gets zero and the whole amount is leftover.
func (a *Allocator) Allocate(positions []types.Position, amount decimal.Decimal) types.AllocationResult {
	totalCapacity := types.TotalSafeLoanCapacity(positions)

	result := types.AllocationResult{
		Entries:       make([]types.Allocation, 0, len(positions)),
		Requested:     amount,
		TotalCapacity: totalCapacity,
		Leftover:      amount,
	}

	if totalCapacity.LessThanOrEqual(decimal.Zero) {
		for _, p := range positions {
			result.Entries = append(result.Entries, types.Allocation{
				Ticker: p.Ticker,
				Amount: decimal.Zero,
				Cap:    p.SafeLoanCapacity,
				Weight: decimal.Zero,
			})
		}
		return result
	}

	allocated := decimal.Zero
	for _, p := range positions {
		weight := p.SafeLoanCapacity.Div(totalCapacity)
		// amount*cap/total rather than amount*weight keeps exact splits exact
		raw := amount.Mul(p.SafeLoanCapacity).Div(totalCapacity)
		final := decimal.Min(raw, p.SafeLoanCapacity)

		result.Entries = append(result.Entries, types.Allocation{
			Ticker: p.Ticker,
			Amount: final,
			Cap:    p.SafeLoanCapacity,
			Weight: weight,
		})
		allocated = allocated.Add(final)
	}

	// Division rounding can push the sum a hair past the amount.
	leftover := amount.Sub(allocated)
	if leftover.IsNegative() {
		leftover = decimal.Zero
	}
	result.Leftover = leftover

	return result
}
