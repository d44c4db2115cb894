package types

import (
	"github.com/shopspring/decimal"
)

type Allocation struct {
	Ticker string          `json:"ticker"`
	Amount decimal.Decimal `json:"amount"`
	Cap    decimal.Decimal `json:"cap"`
	Weight decimal.Decimal `json:"weight"`
}

// AtCap reports whether the allocation used the whole capacity of its position.
func (a Allocation) AtCap() bool {
	return a.Cap.IsPositive() && a.Amount.GreaterThanOrEqual(a.Cap)
}

// AllocationResult is the outcome of one allocation call. Entries keep the
// order of the positions they were computed from.
type AllocationResult struct {
	Entries       []Allocation    `json:"entries"`
	Requested     decimal.Decimal `json:"requested"`
	TotalCapacity decimal.Decimal `json:"totalCapacity"`
	Leftover      decimal.Decimal `json:"leftover"`
}

// Amounts returns the allocation keyed by ticker.
func (r AllocationResult) Amounts() map[string]decimal.Decimal {
	amounts := make(map[string]decimal.Decimal, len(r.Entries))
	for _, e := range r.Entries {
		amounts[e.Ticker] = e.Amount
	}
	return amounts
}

func (r AllocationResult) Amount(ticker string) (decimal.Decimal, bool) {
	for _, e := range r.Entries {
		if e.Ticker == ticker {
			return e.Amount, true
		}
	}
	return decimal.Zero, false
}

func (r AllocationResult) TotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.Entries {
		total = total.Add(e.Amount)
	}
	return total
}
