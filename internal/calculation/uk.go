package calculation

import (
	"fmt"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	ukSymbol       = "£"
	defaultTaxCode = "1257L"
)

var employerPensionMinimumRate = decimal.NewFromFloat(0.03)

// ukBandNames labels income tax bands by position
var ukBandNames = []struct{ label, prose, id string }{
	{"Basic Rate", "Basic rate", "basic_rate_tax"},
	{"Higher Rate", "Higher rate", "higher_rate_tax"},
	{"Additional Rate", "Additional rate", "additional_rate_tax"},
}

// UKCalculator computes UK take-home pay: income tax with a tapered personal
// allowance, employee National Insurance, pension and student loan.
type UKCalculator struct {
	Brackets    BracketCalculator
	Deductions  DeductionCalculator
	Income      IncomeCalculator
	StudentLoan StudentLoanCalculator
	Logger      Logger
}

// NewUKCalculator creates a UK calculator that logs to logger
func NewUKCalculator(logger Logger) *UKCalculator {
	logger = orNop(logger)
	return &UKCalculator{
		StudentLoan: StudentLoanCalculator{Logger: logger},
		Logger:      logger,
	}
}

func (c *UKCalculator) Country() domain.Country { return domain.CountryUK }

func (c *UKCalculator) MinTaxYear() int { return 2025 }

// niBreakdown holds the two employee NI bands
type niBreakdown struct {
	mainIncome  decimal.Decimal
	main        decimal.Decimal
	upperIncome decimal.Decimal
	upper       decimal.Decimal
}

func (n niBreakdown) total() decimal.Decimal {
	return n.main.Add(n.upper)
}

// Calculate runs the UK calculation and returns annual figures
func (c *UKCalculator) Calculate(input domain.CalculationInput, rules *domain.RulePack) (*domain.CalculationResult, error) {
	if rules.IncomeTax == nil {
		return nil, missingRules(domain.CountryUK, "incomeTax")
	}
	if rules.NI == nil {
		return nil, missingRules(domain.CountryUK, "NI")
	}
	logger := orNop(c.Logger)

	result := &domain.CalculationResult{
		Currency:        domain.CountryUK.Currency(),
		RulePackVersion: rules.Metadata.Version,
	}

	gross := input.GrossAnnualIncome
	if input.Income != nil {
		gross = c.Income.AnnualGross(*input.Income, DefaultUKHoursPerWeek)
	}
	result.GrossAnnual = gross

	pension := c.Deductions.PensionContribution(input.Pretax, gross)
	employerMinimum := gross.Mul(employerPensionMinimumRate)

	taxable := gross.Sub(pension)
	allowance := c.personalAllowance(taxable, rules.IncomeTax)
	taxableAfterAllowance := decimal.Max(decimal.Zero, taxable.Sub(allowance))

	incomeTax := c.Brackets.TaxWithBreakdown(taxableAfterAllowance, rules.IncomeTax.Bands)
	ni := c.nationalInsurance(taxable, rules.NI)
	studentLoan := c.StudentLoan.Repayment(input.Posttax.StudentLoanPlan, taxable, rules.StudentLoan)
	posttax := c.Deductions.PosttaxDeductions(input.Posttax)

	logger.Debugf("UK taxable=%s allowance=%s incomeTax=%s ni=%s", taxable, allowance, incomeTax.Total, ni.total())

	result.AddLineItem("Gross Salary", gross, domain.KindGross)
	result.AddLineItem("Tax-Free Allowance", allowance.Neg(), domain.KindAllowance)
	result.AddLineItem("Taxable Income", taxableAfterAllowance, domain.KindSubtotal)

	for _, i := range incomeTax.Indices() {
		band := incomeTax.Bands[i]
		label := fmt.Sprintf("Band %d", i+1)
		prose, id := label, fmt.Sprintf("band_%d_tax", i+1)
		if i < len(ukBandNames) {
			label, prose, id = ukBandNames[i].label, ukBandNames[i].prose, ukBandNames[i].id
		}
		result.AddLineItem(fmt.Sprintf("Income Tax (%s %s%%)", label, percent(band.Rate)), band.Tax, domain.KindDetail)
		result.AddExplanation(id, fmt.Sprintf("%s (%s%%) on %s", prose, percent(band.Rate), money(ukSymbol, band.Income)))
	}
	result.AddLineItem("Total Income Tax", incomeTax.Total, domain.KindTax)

	if ni.main.IsPositive() {
		result.AddLineItem(fmt.Sprintf("National Insurance (Main Rate %s%%)", percent(rules.NI.MainRate)), ni.main, domain.KindDetail)
		result.AddExplanation("ni_main_rate", fmt.Sprintf("%s%% rate on %s (between %s and %s)",
			percent(rules.NI.MainRate), money(ukSymbol, ni.mainIncome),
			whole(ukSymbol, rules.NI.PrimaryThresholdAnnual), whole(ukSymbol, rules.NI.UpperEarningsLimit)))
	}
	if ni.upper.IsPositive() {
		result.AddLineItem(fmt.Sprintf("National Insurance (Upper Rate %s%%)", percent(rules.NI.UpperRate)), ni.upper, domain.KindDetail)
		result.AddExplanation("ni_upper_rate", fmt.Sprintf("%s%% rate on %s (above %s)",
			percent(rules.NI.UpperRate), money(ukSymbol, ni.upperIncome), whole(ukSymbol, rules.NI.UpperEarningsLimit)))
	}
	result.AddLineItem("Total National Insurance", ni.total(), domain.KindTax)

	if pension.IsPositive() {
		result.AddLineItem("Employee Pension Contribution", pension, domain.KindDeduction)
		result.AddExplanation("pension_contribution", fmt.Sprintf(
			"Employee contribution: %s%% of gross salary (%s). Employer minimum contribution: 3%% (%s)",
			input.Pretax.PensionPercent.Mul(hundred).StringFixed(1), money(ukSymbol, pension), money(ukSymbol, employerMinimum)))
	}

	if studentLoan.IsPositive() {
		plan := input.Posttax.StudentLoanPlan
		result.AddLineItem(fmt.Sprintf("Student Loan (%s)", plan), studentLoan, domain.KindDeduction)
		loan := rules.StudentLoan[plan.RuleKey()]
		result.AddExplanation("student_loan", fmt.Sprintf("%s repayment: %s%% of income above %s",
			plan, percent(loan.Rate), whole(ukSymbol, loan.Threshold)))
	}

	if posttax.IsPositive() {
		result.AddLineItem("Other Post-tax Deductions", posttax, domain.KindDeduction)
	}

	net := gross.Sub(incomeTax.Total).Sub(ni.total()).Sub(pension).Sub(studentLoan).Sub(posttax)
	result.NetAnnual = net
	result.AddLineItem("Net Take-Home Pay", net, domain.KindNet)

	if taxable.GreaterThan(rules.IncomeTax.TaperStart) {
		result.AddExplanation("personal_allowance_taper", fmt.Sprintf(
			"Personal allowance reduced to %s due to income over %s",
			whole(ukSymbol, allowance), whole(ukSymbol, rules.IncomeTax.TaperStart)))
	} else {
		result.AddExplanation("personal_allowance", fmt.Sprintf(
			"Full personal allowance of %s applied", whole(ukSymbol, allowance)))
	}

	taxCode := defaultTaxCode
	if input.UK != nil && input.UK.TaxCode != "" {
		taxCode = input.UK.TaxCode
	}
	result.AddExplanation("tax_code", fmt.Sprintf("Tax code %s used for calculation", taxCode))

	if input.UK != nil && input.UK.ScottishResident {
		logger.Warnf("Scottish income tax bands requested but not modelled; applying rest-of-UK bands")
		result.AddExplanation("scottish_rates_not_modelled",
			"Scottish income tax bands are not modelled; rest-of-UK bands were applied")
	}

	return result, nil
}

// personalAllowance tapers the allowance by taperRate for every pound above
// taperStart, never below zero
func (c *UKCalculator) personalAllowance(taxable decimal.Decimal, rules *domain.IncomeTaxRules) decimal.Decimal {
	allowance := rules.PersonalAllowance
	if taxable.GreaterThan(rules.TaperStart) {
		reduction := taxable.Sub(rules.TaperStart).Mul(rules.TaperRate)
		allowance = decimal.Max(decimal.Zero, allowance.Sub(reduction))
	}
	return allowance
}

func (c *UKCalculator) nationalInsurance(taxable decimal.Decimal, ni *domain.NationalInsuranceRules) niBreakdown {
	var out niBreakdown
	if taxable.LessThanOrEqual(ni.PrimaryThresholdAnnual) {
		return out
	}
	out.mainIncome = decimal.Min(taxable, ni.UpperEarningsLimit).Sub(ni.PrimaryThresholdAnnual)
	out.main = out.mainIncome.Mul(ni.MainRate)
	if taxable.GreaterThan(ni.UpperEarningsLimit) {
		out.upperIncome = taxable.Sub(ni.UpperEarningsLimit)
		out.upper = out.upperIncome.Mul(ni.UpperRate)
	}
	return out
}
