package calculation

import (
	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultUKHoursPerWeek is used to annualize hourly UK income when no hours are given
var DefaultUKHoursPerWeek = decimal.NewFromFloat(37.5)

var weeksPerYear = decimal.NewFromInt(52)

// DeductionCalculator handles pre-tax, post-tax and pension arithmetic.
// Unset (zero or negative) components contribute nothing.
type DeductionCalculator struct{}

// PretaxDeductions sums the percentage, fixed, HSA and pension components
func (DeductionCalculator) PretaxDeductions(p domain.Pretax, gross decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	if p.Percent.IsPositive() {
		total = total.Add(gross.Mul(p.Percent))
	}
	if p.Fixed.IsPositive() {
		total = total.Add(p.Fixed)
	}
	if p.HSA.IsPositive() {
		total = total.Add(p.HSA)
	}
	if p.PensionPercent.IsPositive() {
		total = total.Add(gross.Mul(p.PensionPercent))
	}
	return total
}

// PosttaxDeductions returns the fixed post-tax amount
func (DeductionCalculator) PosttaxDeductions(p domain.Posttax) decimal.Decimal {
	if p.Fixed.IsPositive() {
		return p.Fixed
	}
	return decimal.Zero
}

// PensionContribution returns the employee pension contribution
func (DeductionCalculator) PensionContribution(p domain.Pretax, gross decimal.Decimal) decimal.Decimal {
	if p.PensionPercent.IsPositive() {
		return gross.Mul(p.PensionPercent)
	}
	return decimal.Zero
}

// StudentLoanCalculator computes plan-based repayments
type StudentLoanCalculator struct {
	Logger Logger
}

// Repayment returns max(0, taxable-threshold) x rate for the plan. A missing
// plan or missing plan rules yield zero.
func (s StudentLoanCalculator) Repayment(plan domain.StudentLoanPlan, taxable decimal.Decimal, rules map[string]domain.StudentLoanRules) decimal.Decimal {
	if plan == "" || rules == nil {
		return decimal.Zero
	}
	loan, ok := rules[plan.RuleKey()]
	if !ok {
		orNop(s.Logger).Warnf("no student loan rules found for plan %s", plan)
		return decimal.Zero
	}
	if taxable.LessThanOrEqual(loan.Threshold) {
		return decimal.Zero
	}
	return taxable.Sub(loan.Threshold).Mul(loan.Rate)
}

// IncomeCalculator normalizes structured income to an annual figure
type IncomeCalculator struct{}

// AnnualGross returns the annual amount; hourly income is amount x hours x 52,
// using defaultHours when the income carries none.
func (IncomeCalculator) AnnualGross(income domain.Income, defaultHours decimal.Decimal) decimal.Decimal {
	if income.Type != domain.IncomeHourly {
		return income.Amount
	}
	hours := income.HoursPerWeek
	if !hours.IsPositive() {
		hours = defaultHours
	}
	return income.Amount.Mul(hours).Mul(weeksPerYear)
}
