package domain

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// RulePack contains the tax rules for one country and tax year.
// It is loaded from {COUNTRY}-{taxYear}.json and is read-only once loaded;
// a single instance is shared by every calculation for that key.
type RulePack struct {
	Metadata    RulePackMetadata            `yaml:"metadata" json:"metadata"`
	Federal     *FederalRules               `yaml:"federal,omitempty" json:"federal,omitempty"`
	FICA        *FICARules                  `yaml:"fica,omitempty" json:"fica,omitempty"`
	States      map[string]StateRules       `yaml:"states,omitempty" json:"states,omitempty"`
	IncomeTax   *IncomeTaxRules             `yaml:"incomeTax,omitempty" json:"incomeTax,omitempty"`
	NI          *NationalInsuranceRules     `yaml:"ni,omitempty" json:"ni,omitempty"`
	StudentLoan map[string]StudentLoanRules `yaml:"studentLoan,omitempty" json:"studentLoan,omitempty"`
}

// RulePackMetadata identifies a rule pack
type RulePackMetadata struct {
	Country string `yaml:"country" json:"country"`
	TaxYear int    `yaml:"taxYear" json:"taxYear"`
	Version string `yaml:"version" json:"version"`
}

// TaxBracket is one band of a progressive schedule. UpTo is the upper edge of
// the band; nil means the band has no upper edge and taxes all remaining income.
type TaxBracket struct {
	UpTo *decimal.Decimal `yaml:"upTo" json:"upTo"`
	Rate decimal.Decimal  `yaml:"rate" json:"rate"`
}

// Unbounded reports whether the bracket applies to all remaining income
func (b TaxBracket) Unbounded() bool {
	return b.UpTo == nil
}

// FederalRules contains US federal income tax rules
type FederalRules struct {
	StandardDeductions map[string]decimal.Decimal `yaml:"standardDeductions" json:"standardDeductions"`
	Brackets           []TaxBracket               `yaml:"brackets" json:"brackets"`
}

// FICARules contains US payroll levy rules
type FICARules struct {
	SSRate                      decimal.Decimal `yaml:"ssRate" json:"ssRate"`
	SSWageBase                  decimal.Decimal `yaml:"ssWageBase" json:"ssWageBase"`
	MedicareRate                decimal.Decimal `yaml:"medicareRate" json:"medicareRate"`
	AdditionalMedicareThreshold decimal.Decimal `yaml:"additionalMedicareThreshold" json:"additionalMedicareThreshold"`
	AdditionalRate              decimal.Decimal `yaml:"additionalRate" json:"additionalRate"`
}

// StateRules contains state income tax brackets and an optional flat local rate
type StateRules struct {
	Brackets []TaxBracket    `yaml:"brackets" json:"brackets"`
	Local    decimal.Decimal `yaml:"local,omitempty" json:"local,omitempty"`
}

// IncomeTaxRules contains UK income tax rules. Bands are expressed relative to
// income after the personal allowance.
type IncomeTaxRules struct {
	PersonalAllowance decimal.Decimal `yaml:"personalAllowance" json:"personalAllowance"`
	TaperStart        decimal.Decimal `yaml:"taperStart" json:"taperStart"`
	TaperRate         decimal.Decimal `yaml:"taperRate" json:"taperRate"`
	Bands             []TaxBracket    `yaml:"bands" json:"bands"`
}

// NationalInsuranceRules contains UK employee NI thresholds and rates
type NationalInsuranceRules struct {
	PrimaryThresholdAnnual decimal.Decimal `yaml:"primaryThresholdAnnual" json:"primaryThresholdAnnual"`
	UpperEarningsLimit     decimal.Decimal `yaml:"upperEarningsLimit" json:"upperEarningsLimit"`
	MainRate               decimal.Decimal `yaml:"mainRate" json:"mainRate"`
	UpperRate              decimal.Decimal `yaml:"upperRate" json:"upperRate"`
}

// StudentLoanRules contains the repayment threshold and rate for one plan
type StudentLoanRules struct {
	Threshold decimal.Decimal `yaml:"threshold" json:"threshold"`
	Rate      decimal.Decimal `yaml:"rate" json:"rate"`
}

// Validate checks the structural invariants of a loaded rule pack
func (rp *RulePack) Validate() error {
	if rp.Metadata.Version == "" {
		return fmt.Errorf("metadata.version is required")
	}

	country := ParseCountry(rp.Metadata.Country)
	if !slices.Contains(KnownCountries(), country) {
		return fmt.Errorf("metadata.country %q is not a known jurisdiction", rp.Metadata.Country)
	}

	switch country {
	case CountryUS:
		if rp.Federal == nil {
			return fmt.Errorf("federal rules are required for US rule packs")
		}
		if rp.FICA == nil {
			return fmt.Errorf("fica rules are required for US rule packs")
		}
	case CountryUK:
		if rp.IncomeTax == nil {
			return fmt.Errorf("incomeTax rules are required for UK rule packs")
		}
		if rp.NI == nil {
			return fmt.Errorf("ni rules are required for UK rule packs")
		}
	}

	if rp.Federal != nil {
		if err := ValidateBrackets(rp.Federal.Brackets); err != nil {
			return fmt.Errorf("federal.brackets: %w", err)
		}
	}
	for code, state := range rp.States {
		if err := ValidateBrackets(state.Brackets); err != nil {
			return fmt.Errorf("states.%s.brackets: %w", code, err)
		}
		if !isRate(state.Local) {
			return fmt.Errorf("states.%s.local must be between 0 and 1", code)
		}
	}
	if rp.IncomeTax != nil {
		if err := ValidateBrackets(rp.IncomeTax.Bands); err != nil {
			return fmt.Errorf("incomeTax.bands: %w", err)
		}
		if !isRate(rp.IncomeTax.TaperRate) {
			return fmt.Errorf("incomeTax.taperRate must be between 0 and 1")
		}
	}
	if rp.NI != nil && rp.NI.UpperEarningsLimit.LessThan(rp.NI.PrimaryThresholdAnnual) {
		return fmt.Errorf("ni.upperEarningsLimit cannot be below ni.primaryThresholdAnnual")
	}
	for plan, loan := range rp.StudentLoan {
		if !isRate(loan.Rate) {
			return fmt.Errorf("studentLoan.%s.rate must be between 0 and 1", plan)
		}
	}
	return nil
}

// ValidateBrackets enforces strictly increasing upper bounds, a single
// trailing unbounded bracket and rates within [0,1]. An empty schedule is valid.
func ValidateBrackets(brackets []TaxBracket) error {
	prev := decimal.Zero
	for i, b := range brackets {
		if !isRate(b.Rate) {
			return fmt.Errorf("bracket %d: rate %s must be between 0 and 1", i, b.Rate)
		}
		if b.Unbounded() {
			if i != len(brackets)-1 {
				return fmt.Errorf("bracket %d: only the last bracket may be unbounded", i)
			}
			continue
		}
		if b.UpTo.LessThanOrEqual(prev) {
			return fmt.Errorf("bracket %d: upper bound %s must exceed %s", i, b.UpTo, prev)
		}
		prev = *b.UpTo
	}
	return nil
}

func isRate(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(decimal.NewFromInt(1))
}
