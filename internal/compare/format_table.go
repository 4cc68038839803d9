package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/output"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing scenarios
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	// Header
	sb.WriteString("TAKE-HOME PAY COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 92) + "\n")
	sb.WriteString(fmt.Sprintf("Base Scenario: %s\n", compSet.BaseScenarioName))
	if compSet.Source != "" {
		sb.WriteString(fmt.Sprintf("Source: %s\n", compSet.Source))
	}
	sb.WriteString("\n")

	nameWidth := 28
	numWidth := 15

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "Gross",
		numWidth, "Tax",
		numWidth, "Net",
		numWidth, "Take-home"))
	sb.WriteString(strings.Repeat("-", 92) + "\n")

	sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 92) + "\n")
		for i := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&compSet.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 92) + "\n")

	// Deltas from base
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 92) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if !alt.SameCurrency {
				sb.WriteString(fmt.Sprintf("  Not compared:     paid in %s\n", alt.Currency))
				continue
			}

			sb.WriteString(fmt.Sprintf("  Take-Home:        %s%s (%s%%)\n",
				tf.deltaSymbol(alt.NetDiffFromBase),
				output.FormatCurrency(alt.NetDiffFromBase, alt.Currency),
				alt.NetPctFromBase.StringFixed(1)))

			if !alt.TaxDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Tax Impact:       %s%s\n",
					tf.deltaSymbol(alt.TaxDiffFromBase),
					output.FormatCurrency(alt.TaxDiffFromBase, alt.Currency)))
			}

			if alt.MarginalRetention != nil {
				sb.WriteString(fmt.Sprintf("  Kept of change:   %s\n",
					output.FormatPercentage(*alt.MarginalRetention)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 92) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single scenario row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, output.FormatCurrency(result.GrossAnnual, result.Currency),
		numWidth, output.FormatCurrency(result.TotalTax, result.Currency),
		numWidth, output.FormatCurrency(result.NetAnnual, result.Currency),
		numWidth, output.FormatPercentage(result.TakeHomeRate))
}

// deltaSymbol prefixes positive deltas; negatives carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary of the deltas
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		switch {
		case !alt.SameCurrency:
			change = "n/a"
		case !alt.NetDiffFromBase.IsZero():
			change = tf.deltaSymbol(alt.NetDiffFromBase) + output.FormatCurrency(alt.NetDiffFromBase, alt.Currency)
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.ScenarioName, change))
	}

	return sb.String()
}
