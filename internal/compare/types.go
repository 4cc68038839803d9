package compare

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/output"
)

var hundred = decimal.NewFromInt(100)

// Scenario is one named calculation request in a comparison
type Scenario struct {
	Name        string
	Description string
	Request     *domain.CalculateRequest
}

// ComparisonResult holds the annualized figures of one calculated scenario
type ComparisonResult struct {
	ScenarioName    string                    `json:"scenarioName"`
	Description     string                    `json:"description,omitempty"`
	Response        *domain.CalculateResponse `json:"-"`
	Currency        string                    `json:"currency"`
	RulePackVersion string                    `json:"rulePackVersion"`

	// Key Metrics, all annual
	GrossAnnual     decimal.Decimal `json:"grossAnnual"`
	TotalTax        decimal.Decimal `json:"totalTax"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetAnnual       decimal.Decimal `json:"netAnnual"`
	TakeHomeRate    decimal.Decimal `json:"takeHomeRate"` // percent of gross

	// Comparison to Base
	NetDiffFromBase   decimal.Decimal `json:"netDiffFromBase"`
	NetPctFromBase    decimal.Decimal `json:"netPctFromBase"`
	TaxDiffFromBase   decimal.Decimal `json:"taxDiffFromBase"`
	GrossDiffFromBase decimal.Decimal `json:"grossDiffFromBase"`
	// MarginalRetention is the percent of the extra gross kept as net. Only
	// set when the gross differs from the base.
	MarginalRetention *decimal.Decimal `json:"marginalRetention,omitempty"`
	SameCurrency      bool             `json:"sameCurrency"`
}

// ComparisonSet represents a base scenario and its alternatives
type ComparisonSet struct {
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	Source             string             `json:"source,omitempty"`
}

// MetricsCalculator extracts key metrics from calculation responses
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics annualizes a response and sums its tax and deduction lines
func (mc *MetricsCalculator) CalculateMetrics(name string, resp *domain.CalculateResponse) (ComparisonResult, error) {
	periods, err := resp.Cadence.PeriodsPerYear()
	if err != nil {
		return ComparisonResult{}, err
	}
	p := decimal.NewFromInt(int64(periods))

	result := ComparisonResult{
		ScenarioName:    name,
		Response:        resp,
		Currency:        resp.Currency,
		RulePackVersion: resp.RulePackVersion,
		GrossAnnual:     resp.GrossPerCadence.Mul(p),
		NetAnnual:       resp.NetPerCadence.Mul(p),
	}
	for _, li := range resp.LineItems {
		switch li.Kind {
		case domain.KindTax:
			result.TotalTax = result.TotalTax.Add(li.Amount.Mul(p))
		case domain.KindDeduction:
			result.TotalDeductions = result.TotalDeductions.Add(li.Amount.Mul(p))
		}
	}
	if result.GrossAnnual.IsPositive() {
		result.TakeHomeRate = result.NetAnnual.Div(result.GrossAnnual).Mul(hundred)
	}
	return result, nil
}

// CalculateComparison computes deltas between a scenario and the base.
// Scenarios in another currency get no deltas.
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.SameCurrency = scenario.Currency == base.Currency
	if !scenario.SameCurrency {
		return scenario
	}

	scenario.NetDiffFromBase = scenario.NetAnnual.Sub(base.NetAnnual)
	if !base.NetAnnual.IsZero() {
		scenario.NetPctFromBase = scenario.NetDiffFromBase.
			Div(base.NetAnnual).
			Mul(hundred)
	}
	scenario.TaxDiffFromBase = scenario.TotalTax.Sub(base.TotalTax)
	scenario.GrossDiffFromBase = scenario.GrossAnnual.Sub(base.GrossAnnual)

	if !scenario.GrossDiffFromBase.IsZero() {
		kept := scenario.NetDiffFromBase.Div(scenario.GrossDiffFromBase).Mul(hundred)
		scenario.MarginalRetention = &kept
	}
	return scenario
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if len(compSet.AlternativeResults) == 0 {
		return recommendations
	}

	var currencies []string
	for _, alt := range compSet.AlternativeResults {
		if !alt.SameCurrency && !slices.Contains(currencies, alt.Currency) {
			currencies = append(currencies, alt.Currency)
		}
	}
	if len(currencies) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Scenarios in %s are not compared with the %s base; amounts are not converted",
			strings.Join(currencies, ", "), compSet.BaseResult.Currency))
	}

	// Find best scenario by take-home pay
	best := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.SameCurrency && alt.NetAnnual.GreaterThan(best.NetAnnual) {
			best = alt
		}
	}
	if best != compSet.BaseResult {
		recommendations = append(recommendations,
			"Highest Take-Home: "+best.ScenarioName+" keeps "+
				output.FormatCurrency(best.NetDiffFromBase, best.Currency)+" more per year than the base")
	}

	// Find best rate of take-home
	bestRate := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.SameCurrency && alt.TakeHomeRate.GreaterThan(bestRate.TakeHomeRate) {
			bestRate = alt
		}
	}
	if bestRate != compSet.BaseResult {
		recommendations = append(recommendations,
			"Best Take-Home Rate: "+bestRate.ScenarioName+" keeps "+
				output.FormatPercentage(bestRate.TakeHomeRate)+" of gross")
	}

	// Find lowest tax burden
	lowestTax := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.SameCurrency && alt.TotalTax.LessThan(lowestTax.TotalTax) {
			lowestTax = alt
		}
	}
	if lowestTax != compSet.BaseResult {
		savings := compSet.BaseResult.TotalTax.Sub(lowestTax.TotalTax)
		recommendations = append(recommendations,
			"Lowest Taxes: "+lowestTax.ScenarioName+" pays "+
				output.FormatCurrency(savings, lowestTax.Currency)+" less tax per year")
	}

	return recommendations
}
