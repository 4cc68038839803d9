package calculation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedCombination means no registered calculator handles the
// requested country and tax year
var ErrUnsupportedCombination = errors.New("unsupported country and tax year")

// CountryCalculator computes an annual result for one jurisdiction.
// Implementations are stateless and safe for concurrent use.
type CountryCalculator interface {
	Country() domain.Country
	// MinTaxYear is the first tax year the calculator handles
	MinTaxYear() int
	Calculate(input domain.CalculationInput, rules *domain.RulePack) (*domain.CalculationResult, error)
}

var hundred = decimal.NewFromInt(100)

// percent renders a rate such as 0.2 as "20"
func percent(rate decimal.Decimal) string {
	return rate.Mul(hundred).String()
}

// money renders an amount with two decimals and a currency symbol
func money(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

// whole renders a threshold with no decimals
func whole(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(0)
}

func missingRules(country domain.Country, section string) error {
	return fmt.Errorf("rule pack for %s has no %s section", country, strings.ToLower(section))
}
