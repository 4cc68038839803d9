package calculation

import (
	"fmt"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/shopspring/decimal"
)

const usSymbol = "$"

// USCalculator computes US take-home pay: federal and state income tax,
// Social Security with its wage base cap, and Medicare with the additional
// surtax.
type USCalculator struct {
	Brackets   BracketCalculator
	Deductions DeductionCalculator
	Logger     Logger
}

// NewUSCalculator creates a US calculator that logs to logger
func NewUSCalculator(logger Logger) *USCalculator {
	return &USCalculator{Logger: orNop(logger)}
}

func (c *USCalculator) Country() domain.Country { return domain.CountryUS }

func (c *USCalculator) MinTaxYear() int { return 2025 }

// Calculate runs the US calculation and returns annual figures
func (c *USCalculator) Calculate(input domain.CalculationInput, rules *domain.RulePack) (*domain.CalculationResult, error) {
	if rules.Federal == nil {
		return nil, missingRules(domain.CountryUS, "federal")
	}
	if rules.FICA == nil {
		return nil, missingRules(domain.CountryUS, "FICA")
	}

	opts := domain.USOptions{FilingStatus: domain.FilingSingle}
	if input.US != nil {
		opts = *input.US
		if opts.FilingStatus == "" {
			opts.FilingStatus = domain.FilingSingle
		}
	}

	result := &domain.CalculationResult{
		Currency:        domain.CountryUS.Currency(),
		RulePackVersion: rules.Metadata.Version,
	}

	gross := input.GrossAnnualIncome
	result.GrossAnnual = gross
	result.AddLineItem("Gross Salary", gross, domain.KindGross)

	pretax := c.Deductions.PretaxDeductions(input.Pretax, gross)
	result.AddLineItem("Pre-tax Deductions", pretax, domain.KindDeduction)
	taxable := gross.Sub(pretax)

	federal := c.federalTax(opts.FilingStatus, taxable, rules.Federal)
	result.AddLineItem("Federal Income Tax", federal, domain.KindTax)
	result.AddExplanation("fed_tax_brackets", fmt.Sprintf(
		"Applied %d federal tax brackets based on %s", input.TaxYear, opts.FilingStatus))

	state := c.stateTax(opts.State, taxable, rules.States)
	if state.IsPositive() {
		result.AddLineItem("State Income Tax", state, domain.KindTax)
		result.AddExplanation("state_tax", fmt.Sprintf("Applied %s state tax rates", opts.State))
	}

	fica := rules.FICA
	socialSecurity := decimal.Min(gross, fica.SSWageBase).Mul(fica.SSRate)
	result.AddLineItem("FICA (Social Security)", socialSecurity, domain.KindTax)
	if gross.GreaterThan(fica.SSWageBase) {
		result.AddExplanation("social_security_cap", fmt.Sprintf(
			"Social Security tax capped at the %s wage base", whole(usSymbol, fica.SSWageBase)))
	}

	medicare := gross.Mul(fica.MedicareRate)
	if gross.GreaterThan(fica.AdditionalMedicareThreshold) {
		medicare = medicare.Add(gross.Sub(fica.AdditionalMedicareThreshold).Mul(fica.AdditionalRate))
		result.AddExplanation("additional_medicare", fmt.Sprintf(
			"Additional Medicare tax applied for income over %s", whole(usSymbol, fica.AdditionalMedicareThreshold)))
	}
	result.AddLineItem("Medicare", medicare, domain.KindTax)

	posttax := c.Deductions.PosttaxDeductions(input.Posttax)
	if posttax.IsPositive() {
		result.AddLineItem("Post-tax Deductions", posttax, domain.KindDeduction)
	}

	net := gross.Sub(pretax).Sub(federal).Sub(state).Sub(socialSecurity).Sub(medicare).Sub(posttax)
	result.NetAnnual = net
	result.AddLineItem("Net Take-Home Pay", net, domain.KindNet)

	return result, nil
}

// federalTax applies the standard deduction for the filing status and the
// federal brackets. An unknown filing status gets no standard deduction.
func (c *USCalculator) federalTax(status domain.FilingStatus, taxable decimal.Decimal, rules *domain.FederalRules) decimal.Decimal {
	deduction, ok := rules.StandardDeductions[string(status)]
	if !ok {
		orNop(c.Logger).Warnf("no standard deduction found for filing status %s", status)
	}
	adjusted := decimal.Max(decimal.Zero, taxable.Sub(deduction))
	return c.Brackets.Tax(adjusted, rules.Brackets)
}

// stateTax applies the state's brackets plus any flat local rate. States
// without rules pay no state tax.
func (c *USCalculator) stateTax(state string, taxable decimal.Decimal, states map[string]domain.StateRules) decimal.Decimal {
	rules, ok := states[state]
	if !ok {
		orNop(c.Logger).Warnf("no state rules found for %q", state)
		return decimal.Zero
	}
	tax := c.Brackets.Tax(taxable, rules.Brackets)
	if rules.Local.IsPositive() && taxable.IsPositive() {
		tax = tax.Add(taxable.Mul(rules.Local))
	}
	return tax
}
