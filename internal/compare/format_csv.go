package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Currency",
		"Gross",
		"Total Tax",
		"Deductions",
		"Net",
		"Take-home %",
		"Net Diff from Base",
		"Net % Change",
		"Tax Diff from Base",
		"Marginal Retention %",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
		return "", err
	}

	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	retention := ""
	if result.MarginalRetention != nil {
		retention = result.MarginalRetention.StringFixed(2)
	}
	return []string{
		result.ScenarioName,
		scenarioType,
		result.Currency,
		result.GrossAnnual.StringFixed(2),
		result.TotalTax.StringFixed(2),
		result.TotalDeductions.StringFixed(2),
		result.NetAnnual.StringFixed(2),
		result.TakeHomeRate.StringFixed(2),
		result.NetDiffFromBase.StringFixed(2),
		result.NetPctFromBase.StringFixed(2),
		result.TaxDiffFromBase.StringFixed(2),
		retention,
	}
}
