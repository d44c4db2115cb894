package types

import (
	"github.com/shopspring/decimal"
)

// Position is one holding a margin amount can be spread over.
// Only SafeLoanCapacity takes part in the allocation, the other numbers
// travel along for reporting.
type Position struct {
	Ticker                 string          `json:"ticker"`
	Name                   string          `json:"name"`
	Value                  decimal.Decimal `json:"value"`
	MaintenanceRequirement decimal.Decimal `json:"maintenanceRequirement"`
	RequiredAmount         decimal.Decimal `json:"requiredAmount"`
	SafeLoanCapacity       decimal.Decimal `json:"safeLoanCapacity"`
}

func NewPosition(
	ticker string,
	name string,
	value decimal.Decimal,
	maintenanceRequirement decimal.Decimal,
	requiredAmount decimal.Decimal,
	safeLoanCapacity decimal.Decimal,
) Position {
	return Position{
		Ticker:                 ticker,
		Name:                   name,
		Value:                  value,
		MaintenanceRequirement: maintenanceRequirement,
		RequiredAmount:         requiredAmount,
		SafeLoanCapacity:       safeLoanCapacity,
	}
}

// TotalSafeLoanCapacity sums the capacity of every position.
func TotalSafeLoanCapacity(positions []Position) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.SafeLoanCapacity)
	}
	return total
}
