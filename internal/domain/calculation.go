package domain

import (
	"github.com/shopspring/decimal"
)

// Income is a structured income figure. HOURLY amounts are normalized to an
// annual figure by the calculator that accepts them.
type Income struct {
	Type         IncomeType      `yaml:"type" json:"type"`
	Amount       decimal.Decimal `yaml:"amount" json:"amount"`
	HoursPerWeek decimal.Decimal `yaml:"hoursPerWeek,omitempty" json:"hoursPerWeek,omitempty"`
}

// Pretax holds deductions taken before tax. Zero values mean "not set".
type Pretax struct {
	Percent        decimal.Decimal `yaml:"percent,omitempty" json:"percent,omitempty"`
	Fixed          decimal.Decimal `yaml:"fixed,omitempty" json:"fixed,omitempty"`
	HSA            decimal.Decimal `yaml:"hsa,omitempty" json:"hsa,omitempty"`
	PensionPercent decimal.Decimal `yaml:"pensionPercent,omitempty" json:"pensionPercent,omitempty"`
}

// Posttax holds deductions taken from net pay
type Posttax struct {
	Fixed           decimal.Decimal `yaml:"fixed,omitempty" json:"fixed,omitempty"`
	StudentLoanPlan StudentLoanPlan `yaml:"studentLoanPlan,omitempty" json:"studentLoanPlan,omitempty"`
}

// USOptions carries US-only inputs
type USOptions struct {
	State        string       `yaml:"state" json:"state"`
	FilingStatus FilingStatus `yaml:"filingStatus" json:"filingStatus"`
	Allowances   int          `yaml:"allowances,omitempty" json:"allowances,omitempty"`
}

// UKOptions carries UK-only inputs
type UKOptions struct {
	TaxCode          string `yaml:"taxCode,omitempty" json:"taxCode,omitempty"`
	ScottishResident bool   `yaml:"scottishResident,omitempty" json:"scottishResident,omitempty"`
	NICategory       string `yaml:"niCategory,omitempty" json:"niCategory,omitempty"`
}

// CalculationInput is what a country calculator consumes. At most one of US
// and UK is populated, matching Country.
type CalculationInput struct {
	Country           Country
	TaxYear           int
	GrossAnnualIncome decimal.Decimal
	Income            *Income
	PayCadence        PayCadence
	Pretax            Pretax
	Posttax           Posttax
	US                *USOptions
	UK                *UKOptions
}

// LineItemKind classifies a line item for reconciliation
type LineItemKind string

const (
	KindGross     LineItemKind = "gross"
	KindAllowance LineItemKind = "allowance"
	KindSubtotal  LineItemKind = "subtotal"
	KindDetail    LineItemKind = "detail"
	KindTax       LineItemKind = "tax"
	KindDeduction LineItemKind = "deduction"
	KindNet       LineItemKind = "net"
)

// Reduces reports whether items of this kind are subtracted from gross to
// reach net. Detail items are components of a tax total and do not count.
func (k LineItemKind) Reduces() bool {
	return k == KindTax || k == KindDeduction
}

// LineItem is one row of the breakdown. Amounts are signed; allowances are negative.
type LineItem struct {
	Name   string          `yaml:"name" json:"name"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
	Kind   LineItemKind    `yaml:"kind" json:"kind"`
}

// Explanation is a stable id plus rendered prose
type Explanation struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
}

// CalculationResult is an annual result produced by a country calculator
type CalculationResult struct {
	GrossAnnual     decimal.Decimal `yaml:"grossAnnual" json:"grossAnnual"`
	NetAnnual       decimal.Decimal `yaml:"netAnnual" json:"netAnnual"`
	Currency        string          `yaml:"currency" json:"currency"`
	RulePackVersion string          `yaml:"rulePackVersion" json:"rulePackVersion"`
	LineItems       []LineItem      `yaml:"lineItems" json:"lineItems"`
	Explanations    []Explanation   `yaml:"explanations" json:"explanations"`
}

// AddLineItem appends a line item, preserving insertion order
func (r *CalculationResult) AddLineItem(name string, amount decimal.Decimal, kind LineItemKind) {
	r.LineItems = append(r.LineItems, LineItem{Name: name, Amount: amount, Kind: kind})
}

// AddExplanation appends an explanation
func (r *CalculationResult) AddExplanation(id, text string) {
	r.Explanations = append(r.Explanations, Explanation{ID: id, Text: text})
}

// Deductions sums every tax and deduction line item
func (r *CalculationResult) Deductions() decimal.Decimal {
	total := decimal.Zero
	for _, li := range r.LineItems {
		if li.Kind.Reduces() {
			total = total.Add(li.Amount)
		}
	}
	return total
}

// LineItem finds a line item by name
func (r *CalculationResult) LineItem(name string) (LineItem, bool) {
	for _, li := range r.LineItems {
		if li.Name == name {
			return li, true
		}
	}
	return LineItem{}, false
}

// Explanation finds an explanation by id
func (r *CalculationResult) Explanation(id string) (Explanation, bool) {
	for _, e := range r.Explanations {
		if e.ID == id {
			return e, true
		}
	}
	return Explanation{}, false
}
