package proportional

import (
	"marginalloc/types"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

var tolerance = decimal.RequireFromString("0.000000001")

func TestAllocator_Allocate(t *testing.T) {
	tests := []struct {
		name         string
		positions    []types.Position
		amount       string
		want         map[string]string
		wantLeftover string
	}{
		{
			name: "proportional split",
			positions: []types.Position{
				newPosition("A", "50"),
				newPosition("B", "150"),
			},
			amount:       "100",
			want:         map[string]string{"A": "25", "B": "75"},
			wantLeftover: "0",
		},
		{
			name:         "single position capped with leftover",
			positions:    []types.Position{newPosition("A", "50")},
			amount:       "80",
			want:         map[string]string{"A": "50"},
			wantLeftover: "30",
		},
		{
			name: "amount equal to total capacity fills every cap",
			positions: []types.Position{
				newPosition("A", "20"),
				newPosition("B", "30"),
			},
			amount:       "50",
			want:         map[string]string{"A": "20", "B": "30"},
			wantLeftover: "0",
		},
		{
			name: "over-supply with mixed capacities",
			positions: []types.Position{
				newPosition("A", "10"),
				newPosition("B", "30"),
				newPosition("C", "60"),
			},
			amount:       "150",
			want:         map[string]string{"A": "10", "B": "30", "C": "60"},
			wantLeftover: "50",
		},
		{
			name: "zero capacity position gets nothing",
			positions: []types.Position{
				newPosition("A", "0"),
				newPosition("B", "100"),
			},
			amount:       "50",
			want:         map[string]string{"A": "0", "B": "50"},
			wantLeftover: "0",
		},
		{
			name: "all capacities zero",
			positions: []types.Position{
				newPosition("A", "0"),
				newPosition("B", "0"),
			},
			amount:       "40",
			want:         map[string]string{"A": "0", "B": "0"},
			wantLeftover: "40",
		},
		{
			name:         "no positions",
			positions:    nil,
			amount:       "40",
			want:         map[string]string{},
			wantLeftover: "40",
		},
		{
			name: "zero amount",
			positions: []types.Position{
				newPosition("A", "10"),
			},
			amount:       "0",
			want:         map[string]string{"A": "0"},
			wantLeftover: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAllocator().Allocate(tt.positions, decimal.RequireFromString(tt.amount))

			if len(got.Entries) != len(tt.positions) {
				t.Fatalf("Allocate() entries = %d, want %d", len(got.Entries), len(tt.positions))
			}
			for ticker, want := range tt.want {
				amount, ok := got.Amount(ticker)
				if !ok {
					t.Errorf("Allocate() missing ticker %s", ticker)
					continue
				}
				if !amount.Equal(decimal.RequireFromString(want)) {
					t.Errorf("Allocate() %s = %v, want %v", ticker, amount, want)
				}
			}
			if !got.Leftover.Equal(decimal.RequireFromString(tt.wantLeftover)) {
				t.Errorf("Allocate() leftover = %v, want %v", got.Leftover, tt.wantLeftover)
			}
			if !got.Requested.Equal(decimal.RequireFromString(tt.amount)) {
				t.Errorf("Allocate() requested = %v, want %v", got.Requested, tt.amount)
			}
		})
	}
}

func TestAllocator_PreservesInputOrder(t *testing.T) {
	positions := []types.Position{
		newPosition("MSFT", "10"),
		newPosition("AAPL", "20"),
		newPosition("ASML", "30"),
	}
	got := NewAllocator().Allocate(positions, decimal.NewFromInt(12))

	for i, p := range positions {
		if got.Entries[i].Ticker != p.Ticker {
			t.Errorf("Entries[%d] = %s, want %s", i, got.Entries[i].Ticker, p.Ticker)
		}
		if !got.Entries[i].Cap.Equal(p.SafeLoanCapacity) {
			t.Errorf("Entries[%d] cap = %v, want %v", i, got.Entries[i].Cap, p.SafeLoanCapacity)
		}
	}
}

func TestAllocator_Invariants(t *testing.T) {
	books := [][]types.Position{
		{newPosition("A", "1"), newPosition("B", "1"), newPosition("C", "1")},
		{newPosition("A", "12.34"), newPosition("B", "0.01"), newPosition("C", "999.99")},
		{newPosition("A", "7"), newPosition("B", "0"), newPosition("C", "13")},
	}
	amounts := []string{"0", "0.01", "1", "2", "3", "17.5", "500", "1012.34", "5000"}

	for bi, book := range books {
		total := types.TotalSafeLoanCapacity(book)
		for _, a := range amounts {
			amount := decimal.RequireFromString(a)
			got := NewAllocator().Allocate(book, amount)

			if got.Leftover.IsNegative() {
				t.Errorf("book %d amount %s: negative leftover %v", bi, a, got.Leftover)
			}
			for i, e := range got.Entries {
				if e.Amount.GreaterThan(book[i].SafeLoanCapacity) {
					t.Errorf("book %d amount %s: %s = %v exceeds cap %v", bi, a, e.Ticker, e.Amount, book[i].SafeLoanCapacity)
				}
			}

			if amount.LessThanOrEqual(total) {
				// conservation
				sum := got.TotalAllocated().Add(got.Leftover)
				if sum.Sub(amount).Abs().GreaterThan(tolerance) {
					t.Errorf("book %d amount %s: allocated+leftover = %v", bi, a, sum)
				}
				if got.Leftover.GreaterThan(tolerance) {
					t.Errorf("book %d amount %s: leftover = %v, want 0", bi, a, got.Leftover)
				}
				continue
			}

			// over-supply
			for i, e := range got.Entries {
				if !e.Amount.Equal(book[i].SafeLoanCapacity) {
					t.Errorf("book %d amount %s: %s = %v, want full cap %v", bi, a, e.Ticker, e.Amount, book[i].SafeLoanCapacity)
				}
			}
			if !got.Leftover.Equal(amount.Sub(total)) {
				t.Errorf("book %d amount %s: leftover = %v, want %v", bi, a, got.Leftover, amount.Sub(total))
			}
		}
	}
}

func TestAllocator_Proportionality(t *testing.T) {
	positions := []types.Position{
		newPosition("A", "30"),
		newPosition("B", "90"),
	}
	got := NewAllocator().Allocate(positions, decimal.NewFromInt(61))

	a, _ := got.Amount("A")
	b, _ := got.Amount("B")
	ratio := b.Div(a)
	if ratio.Sub(decimal.NewFromInt(3)).Abs().GreaterThan(tolerance) {
		t.Errorf("B/A = %v, want 3", ratio)
	}
}

func TestAllocator_RoundingNeverOverAllocates(t *testing.T) {
	positions := []types.Position{
		newPosition("A", "1"),
		newPosition("B", "1"),
		newPosition("C", "1"),
	}
	// 2/3 rounds up at the last digit, so the raw sum overshoots the amount.
	got := NewAllocator().Allocate(positions, decimal.NewFromInt(2))

	if !got.Leftover.IsZero() {
		t.Errorf("leftover = %v, want 0", got.Leftover)
	}
}

func TestAllocator_ConcurrentCallers(t *testing.T) {
	positions := []types.Position{
		newPosition("A", "50"),
		newPosition("B", "150"),
	}
	alloc := NewAllocator()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := alloc.Allocate(positions, decimal.NewFromInt(100))
			if b, _ := got.Amount("B"); !b.Equal(decimal.NewFromInt(75)) {
				t.Errorf("B = %v, want 75", b)
			}
		}()
	}
	wg.Wait()
}

func newPosition(ticker, safeLoan string) types.Position {
	return types.NewPosition(
		ticker,
		"",
		decimal.NewFromInt(100),
		decimal.RequireFromString("0.3"),
		decimal.NewFromInt(30),
		decimal.RequireFromString(safeLoan),
	)
}
