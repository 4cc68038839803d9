package calculation

import (
	"sort"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/shopspring/decimal"
)

// BandDetail is the slice of income taxed at one bracket's rate
type BandDetail struct {
	Income decimal.Decimal
	Rate   decimal.Decimal
	Tax    decimal.Decimal
}

// TaxBreakdown is a bracket evaluation keyed by 0-based bracket index.
// Brackets that received no income are absent.
type TaxBreakdown struct {
	Total decimal.Decimal
	Bands map[int]BandDetail
}

// Indices returns the populated bracket indices in ascending order
func (b TaxBreakdown) Indices() []int {
	idx := make([]int, 0, len(b.Bands))
	for i := range b.Bands {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// BracketCalculator evaluates progressive schedules. Brackets are assumed to
// satisfy domain.ValidateBrackets; the rule-pack store enforces that on load.
type BracketCalculator struct{}

// Tax returns the total tax on amount under brackets
func (BracketCalculator) Tax(amount decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	total := decimal.Zero
	if !amount.IsPositive() {
		return total
	}

	prev := decimal.Zero
	for _, b := range brackets {
		if b.Unbounded() {
			if remaining := amount.Sub(prev); remaining.IsPositive() {
				total = total.Add(remaining.Mul(b.Rate))
			}
			break
		}
		if amount.GreaterThan(*b.UpTo) {
			total = total.Add(b.UpTo.Sub(prev).Mul(b.Rate))
			prev = *b.UpTo
			continue
		}
		total = total.Add(amount.Sub(prev).Mul(b.Rate))
		break
	}
	return total
}

// TaxWithBreakdown applies the same banding as Tax and records each slice.
// Zero-width slices are skipped.
func (BracketCalculator) TaxWithBreakdown(amount decimal.Decimal, brackets []domain.TaxBracket) TaxBreakdown {
	out := TaxBreakdown{Total: decimal.Zero, Bands: make(map[int]BandDetail)}
	if !amount.IsPositive() {
		return out
	}

	remaining := amount
	prev := decimal.Zero
	for i, b := range brackets {
		if !remaining.IsPositive() {
			break
		}
		slice := remaining
		if !b.Unbounded() {
			slice = decimal.Min(remaining, b.UpTo.Sub(prev))
			prev = *b.UpTo
		}
		if !slice.IsPositive() {
			continue
		}
		tax := slice.Mul(b.Rate)
		out.Bands[i] = BandDetail{Income: slice, Rate: b.Rate, Tax: tax}
		out.Total = out.Total.Add(tax)
		remaining = remaining.Sub(slice)
		if b.Unbounded() {
			break
		}
	}
	return out
}
