package domain

import (
	"fmt"
	"strings"
)

// Country identifies a tax jurisdiction
type Country string

const (
	CountryUS Country = "US"
	CountryUK Country = "UK"
)

// ParseCountry normalizes a country code; unknown codes are returned as-is so
// the dispatcher can report them as unsupported.
func ParseCountry(s string) Country {
	return Country(strings.ToUpper(strings.TrimSpace(s)))
}

// Currency returns the ISO currency the jurisdiction pays in
func (c Country) Currency() string {
	switch c {
	case CountryUS:
		return "USD"
	case CountryUK:
		return "GBP"
	default:
		return ""
	}
}

// KnownCountries lists every jurisdiction the data model understands
func KnownCountries() []Country {
	return []Country{CountryUS, CountryUK}
}

// PayCadence is the pay frequency used to express per-period figures
type PayCadence string

const (
	CadenceAnnual   PayCadence = "ANNUAL"
	CadenceMonthly  PayCadence = "MONTHLY"
	CadenceBiweekly PayCadence = "BIWEEKLY"
	CadenceWeekly   PayCadence = "WEEKLY"
)

// PeriodsPerYear returns how many pay periods the cadence has in a year.
// An empty cadence is treated as ANNUAL.
func (c PayCadence) PeriodsPerYear() (int, error) {
	switch c {
	case CadenceAnnual, "":
		return 1, nil
	case CadenceMonthly:
		return 12, nil
	case CadenceBiweekly:
		return 26, nil
	case CadenceWeekly:
		return 52, nil
	default:
		return 0, fmt.Errorf("%w: unknown pay cadence %q", ErrInvalidInput, string(c))
	}
}

// OrDefault returns ANNUAL for an unset cadence
func (c PayCadence) OrDefault() PayCadence {
	if c == "" {
		return CadenceAnnual
	}
	return c
}

// FilingStatus is the US federal filing status
type FilingStatus string

const (
	FilingSingle          FilingStatus = "SINGLE"
	FilingMarried         FilingStatus = "MARRIED"
	FilingHeadOfHousehold FilingStatus = "HEAD_OF_HOUSEHOLD"
)

// StudentLoanPlan is a UK student loan repayment plan
type StudentLoanPlan string

const (
	StudentLoanPlan1    StudentLoanPlan = "PLAN1"
	StudentLoanPlan2    StudentLoanPlan = "PLAN2"
	StudentLoanPlan4    StudentLoanPlan = "PLAN4"
	StudentLoanPostgrad StudentLoanPlan = "POSTGRAD"
)

// RuleKey returns the key under which a rule pack stores the plan's rules
func (p StudentLoanPlan) RuleKey() string {
	return strings.ToLower(string(p))
}

// IncomeType says whether an income amount is annual or hourly
type IncomeType string

const (
	IncomeAnnual IncomeType = "ANNUAL"
	IncomeHourly IncomeType = "HOURLY"
)
