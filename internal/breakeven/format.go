package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/output"
)

// TableFormatter formats gross-up results for the console
type TableFormatter struct{}

// Format generates a report for a single result
func (tf *TableFormatter) Format(result *SolveResult) string {
	var sb strings.Builder

	sb.WriteString("GROSS-UP RESULT\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Status:             %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Calculations:       %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:        %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("REQUIRED GROSS\n")
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Annual Gross:       %s\n", output.FormatCurrency(result.GrossAnnual, result.Currency)))
	if result.Cadence.OrDefault() != domain.CadenceAnnual {
		sb.WriteString(fmt.Sprintf("Gross per period:   %s (%s)\n",
			output.FormatCurrency(result.GrossPerCadence, result.Currency), strings.ToLower(string(result.Cadence))))
	}
	sb.WriteString("\n")

	sb.WriteString("TARGET MATCH\n")
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	diff := result.NetPerCadence.Sub(result.TargetNet)
	sb.WriteString(fmt.Sprintf("Target Net:         %s\n", output.FormatCurrency(result.TargetNet, result.Currency)))
	sb.WriteString(fmt.Sprintf("Achieved Net:       %s\n", output.FormatCurrency(result.NetPerCadence, result.Currency)))
	sb.WriteString(fmt.Sprintf("Difference:         %s%s\n", tf.deltaSymbol(diff), output.FormatCurrency(diff, result.Currency)))
	sb.WriteString("\n")

	return sb.String()
}

// FormatMulti formats results for several targets
func (tf *TableFormatter) FormatMulti(result *MultiResult) string {
	var sb strings.Builder

	sb.WriteString("GROSS-UP RESULTS\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("%-16s %16s %16s %8s\n", "Target Net", "Annual Gross", "Achieved Net", "Status"))
	sb.WriteString(strings.Repeat("-", 60) + "\n")

	for _, res := range result.Results {
		sb.WriteString(fmt.Sprintf("%-16s %16s %16s %8s\n",
			output.FormatCurrency(res.TargetNet, res.Currency),
			output.FormatCurrency(res.GrossAnnual, res.Currency),
			output.FormatCurrency(res.NetPerCadence, res.Currency),
			tf.formatStatus(res.Success)))
	}
	sb.WriteString("\n")

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 60) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "OK"
	}
	return "PARTIAL"
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

// FormatJSON renders any gross-up result as indented JSON
func FormatJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
