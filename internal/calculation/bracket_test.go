package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bounded(upTo, rate string) domain.TaxBracket {
	u := d(upTo)
	return domain.TaxBracket{UpTo: &u, Rate: d(rate)}
}

func unbounded(rate string) domain.TaxBracket {
	return domain.TaxBracket{Rate: d(rate)}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestBracketCalculator_TwoBracketProperty(t *testing.T) {
	var bc BracketCalculator
	tests := []struct {
		upTo, r, r2 string
		x           string
	}{
		{"10000", "0.1", "0.2", "1"},
		{"37700", "0.2", "0.4", "12345.67"},
		{"50000", "0", "0.5", "0.01"},
		{"1", "1", "0", "1000000"},
	}
	for _, tt := range tests {
		t.Run(tt.upTo+"@"+tt.r, func(t *testing.T) {
			brackets := []domain.TaxBracket{bounded(tt.upTo, tt.r), unbounded(tt.r2)}
			u := d(tt.upTo)

			assert.True(t, u.Mul(d(tt.r)).Equal(bc.Tax(u, brackets)), "tax(U) == U*r")

			x := d(tt.x)
			want := u.Mul(d(tt.r)).Add(x.Mul(d(tt.r2)))
			assert.True(t, want.Equal(bc.Tax(u.Add(x), brackets)), "tax(U+x) == U*r + x*r2")
		})
	}
}

func TestBracketCalculator_Tax(t *testing.T) {
	var bc BracketCalculator
	federal := []domain.TaxBracket{
		bounded("11925", "0.10"),
		bounded("48475", "0.12"),
		bounded("103350", "0.22"),
		unbounded("0.37"),
	}

	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"zero", "0", "0"},
		{"negative", "-500", "0"},
		{"inside first", "1000", "100"},
		{"first edge", "11925", "1192.5"},
		{"spans three", "85000", "13614"},
		{"into open bracket", "203350", "54651"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, bc.Tax(d(tt.amount), federal))
		})
	}
}

func TestBracketCalculator_EmptyAndFlat(t *testing.T) {
	var bc BracketCalculator

	assert.True(t, bc.Tax(d("50000"), nil).IsZero())
	assert.Empty(t, bc.TaxWithBreakdown(d("50000"), nil).Bands)

	flat := []domain.TaxBracket{unbounded("0.0307")}
	assertDecimal(t, "1842", bc.Tax(d("60000"), flat))
}

func TestBracketCalculator_TaxWithBreakdown(t *testing.T) {
	var bc BracketCalculator
	bands := []domain.TaxBracket{
		bounded("37700", "0.20"),
		bounded("125140", "0.40"),
		unbounded("0.45"),
	}

	b := bc.TaxWithBreakdown(d("200000"), bands)
	require.Equal(t, []int{0, 1, 2}, b.Indices())
	assertDecimal(t, "37700", b.Bands[0].Income)
	assertDecimal(t, "7540", b.Bands[0].Tax)
	assertDecimal(t, "87440", b.Bands[1].Income)
	assertDecimal(t, "34976", b.Bands[1].Tax)
	assertDecimal(t, "74860", b.Bands[2].Income)
	assertDecimal(t, "33687", b.Bands[2].Tax)
	assertDecimal(t, "76203", b.Total)

	partial := bc.TaxWithBreakdown(d("37430"), bands)
	assert.Equal(t, []int{0}, partial.Indices())
	assertDecimal(t, "7486", partial.Total)

	none := bc.TaxWithBreakdown(d("0"), bands)
	assert.Empty(t, none.Bands)
	assert.True(t, none.Total.IsZero())
}

func TestBracketCalculator_BreakdownMatchesTax(t *testing.T) {
	var bc BracketCalculator
	schedules := [][]domain.TaxBracket{
		{bounded("11925", "0.10"), bounded("48475", "0.12"), bounded("103350", "0.22"),
			bounded("197300", "0.24"), bounded("250525", "0.32"), bounded("626350", "0.35"), unbounded("0.37")},
		{bounded("37700", "0.20"), bounded("125140", "0.40"), unbounded("0.45")},
		{bounded("10000", "0.05"), bounded("20000", "0.10")},
		{unbounded("0.0307")},
	}
	amounts := []string{"0", "0.01", "999.99", "11925", "37700", "50000", "125140", "250000", "1000000"}

	for _, brackets := range schedules {
		for _, a := range amounts {
			amount := d(a)
			b := bc.TaxWithBreakdown(amount, brackets)
			sum := decimal.Zero
			for _, band := range b.Bands {
				sum = sum.Add(band.Tax)
			}
			assert.True(t, sum.Equal(b.Total), "bands sum to total for %s", a)
			assert.True(t, bc.Tax(amount, brackets).Equal(b.Total), "breakdown total equals tax for %s", a)
		}
	}
}
