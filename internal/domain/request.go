package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CalculateRequest is the wire-level calculation request accepted by the
// HTTP service, the CLI and the TUI
type CalculateRequest struct {
	Country        Country          `yaml:"country" json:"country"`
	TaxYear        int              `yaml:"taxYear" json:"taxYear"`
	AnnualSalary   *decimal.Decimal `yaml:"annualSalary,omitempty" json:"annualSalary,omitempty"`
	Income         *Income          `yaml:"income,omitempty" json:"income,omitempty"`
	Cadence        PayCadence       `yaml:"cadence,omitempty" json:"cadence,omitempty"`
	Pretax         *Pretax          `yaml:"pretax,omitempty" json:"pretax,omitempty"`
	Posttax        *Posttax         `yaml:"posttax,omitempty" json:"posttax,omitempty"`
	CountryOptions *CountryOptions  `yaml:"countryOptions,omitempty" json:"countryOptions,omitempty"`
}

// CountryOptions holds the per-jurisdiction options; only the block matching
// the request country is read.
type CountryOptions struct {
	US *USOptions `yaml:"US,omitempty" json:"US,omitempty"`
	UK *UKOptions `yaml:"UK,omitempty" json:"UK,omitempty"`
}

// CalculateResponse is the per-cadence result returned to callers
type CalculateResponse struct {
	CalculationID   string          `yaml:"calculationId" json:"calculationId"`
	RulePackVersion string          `yaml:"rulePackVersion" json:"rulePackVersion"`
	Currency        string          `yaml:"currency" json:"currency"`
	Cadence         PayCadence      `yaml:"cadence" json:"cadence"`
	GrossPerCadence decimal.Decimal `yaml:"grossPerCadence" json:"grossPerCadence"`
	NetPerCadence   decimal.Decimal `yaml:"netPerCadence" json:"netPerCadence"`
	LineItems       []LineItem      `yaml:"lineItems" json:"lineItems"`
	Explanations    []Explanation   `yaml:"explanation" json:"explanation"`
}

// Normalize upper-cases enum fields so "us"/"monthly" are accepted
func (r *CalculateRequest) Normalize() {
	r.Country = ParseCountry(string(r.Country))
	r.Cadence = PayCadence(strings.ToUpper(strings.TrimSpace(string(r.Cadence))))
	if r.Income != nil {
		r.Income.Type = IncomeType(strings.ToUpper(string(r.Income.Type)))
	}
	if r.Posttax != nil {
		r.Posttax.StudentLoanPlan = StudentLoanPlan(strings.ToUpper(string(r.Posttax.StudentLoanPlan)))
	}
	if r.CountryOptions != nil && r.CountryOptions.US != nil {
		us := r.CountryOptions.US
		us.State = strings.ToUpper(strings.TrimSpace(us.State))
		us.FilingStatus = FilingStatus(strings.ToUpper(string(us.FilingStatus)))
	}
}

// Validate checks the request shape. Every failure wraps ErrInvalidInput.
// Whether the country/year pair is supported is decided by the dispatcher.
func (r *CalculateRequest) Validate() error {
	if err := r.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (r *CalculateRequest) validate() error {
	if r.Country == "" {
		return fmt.Errorf("country is required")
	}
	if r.TaxYear <= 0 {
		return fmt.Errorf("taxYear must be positive")
	}
	if _, err := r.Cadence.PeriodsPerYear(); err != nil {
		return fmt.Errorf("cadence %q must be one of ANNUAL, MONTHLY, BIWEEKLY, WEEKLY", r.Cadence)
	}

	if r.Income == nil && r.AnnualSalary == nil {
		return fmt.Errorf("annualSalary or income is required")
	}
	if r.AnnualSalary != nil && r.AnnualSalary.IsNegative() {
		return fmt.Errorf("annualSalary cannot be negative")
	}
	if r.Income != nil {
		if err := r.validateIncome(); err != nil {
			return err
		}
	}

	if p := r.Pretax; p != nil {
		if !isRate(p.Percent) {
			return fmt.Errorf("pretax.percent must be between 0 and 1")
		}
		if !isRate(p.PensionPercent) {
			return fmt.Errorf("pretax.pensionPercent must be between 0 and 1")
		}
		if p.Fixed.IsNegative() || p.HSA.IsNegative() {
			return fmt.Errorf("pretax amounts cannot be negative")
		}
	}
	if p := r.Posttax; p != nil {
		if p.Fixed.IsNegative() {
			return fmt.Errorf("posttax.fixed cannot be negative")
		}
		switch p.StudentLoanPlan {
		case "", StudentLoanPlan1, StudentLoanPlan2, StudentLoanPlan4, StudentLoanPostgrad:
		default:
			return fmt.Errorf("unknown student loan plan %q", p.StudentLoanPlan)
		}
	}

	if r.Country == CountryUS {
		return r.validateUS()
	}
	return nil
}

func (r *CalculateRequest) validateIncome() error {
	in := r.Income
	if in.Amount.IsNegative() {
		return fmt.Errorf("income.amount cannot be negative")
	}
	if in.HoursPerWeek.IsNegative() {
		return fmt.Errorf("income.hoursPerWeek cannot be negative")
	}
	switch in.Type {
	case IncomeAnnual:
	case IncomeHourly:
		if r.Country == CountryUS {
			return fmt.Errorf("hourly income is not supported for US calculations; provide an annual amount")
		}
	default:
		return fmt.Errorf("income.type must be ANNUAL or HOURLY")
	}
	return nil
}

func (r *CalculateRequest) validateUS() error {
	if r.CountryOptions == nil || r.CountryOptions.US == nil {
		return fmt.Errorf("US calculations require countryOptions.US with state and filingStatus")
	}
	us := r.CountryOptions.US
	if strings.TrimSpace(us.State) == "" {
		return fmt.Errorf("countryOptions.US.state is required for US tax calculations")
	}
	switch us.FilingStatus {
	case FilingSingle, FilingMarried, FilingHeadOfHousehold:
	case "":
		return fmt.Errorf("countryOptions.US.filingStatus is required for US tax calculations")
	default:
		return fmt.Errorf("unknown filing status %q", us.FilingStatus)
	}
	if us.Allowances < 0 {
		return fmt.Errorf("countryOptions.US.allowances cannot be negative")
	}
	return nil
}

// ToInput maps a validated request to the calculator input. An explicit
// income takes precedence over annualSalary.
func (r *CalculateRequest) ToInput() CalculationInput {
	in := CalculationInput{
		Country:    r.Country,
		TaxYear:    r.TaxYear,
		PayCadence: r.Cadence.OrDefault(),
	}
	if r.AnnualSalary != nil {
		in.GrossAnnualIncome = *r.AnnualSalary
	}
	if r.Income != nil {
		income := *r.Income
		in.Income = &income
		if income.Type == IncomeAnnual {
			in.GrossAnnualIncome = income.Amount
		}
	}
	if r.Pretax != nil {
		in.Pretax = *r.Pretax
	}
	if r.Posttax != nil {
		in.Posttax = *r.Posttax
	}
	if r.CountryOptions != nil {
		switch r.Country {
		case CountryUS:
			if r.CountryOptions.US != nil {
				us := *r.CountryOptions.US
				in.US = &us
			}
		case CountryUK:
			if r.CountryOptions.UK != nil {
				uk := *r.CountryOptions.UK
				in.UK = &uk
			}
		}
	}
	return in
}

// Clone returns a deep copy of the request
func (r *CalculateRequest) Clone() *CalculateRequest {
	c := *r
	if r.AnnualSalary != nil {
		s := *r.AnnualSalary
		c.AnnualSalary = &s
	}
	if r.Income != nil {
		in := *r.Income
		c.Income = &in
	}
	if r.Pretax != nil {
		p := *r.Pretax
		c.Pretax = &p
	}
	if r.Posttax != nil {
		p := *r.Posttax
		c.Posttax = &p
	}
	if r.CountryOptions != nil {
		opts := CountryOptions{}
		if r.CountryOptions.US != nil {
			us := *r.CountryOptions.US
			opts.US = &us
		}
		if r.CountryOptions.UK != nil {
			uk := *r.CountryOptions.UK
			opts.UK = &uk
		}
		c.CountryOptions = &opts
	}
	return &c
}

// WithAnnualSalary returns a copy of the request earning salary per year.
// Any structured income is dropped.
func (r *CalculateRequest) WithAnnualSalary(salary decimal.Decimal) *CalculateRequest {
	c := r.Clone()
	c.AnnualSalary = &salary
	c.Income = nil
	return c
}
