package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// ConsoleFormatter renders the full line-item breakdown and explanations.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(resp *domain.CalculateResponse) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 60))
	fmt.Fprintln(&buf, "TAKE-HOME PAY BREAKDOWN")
	fmt.Fprintln(&buf, strings.Repeat("=", 60))
	fmt.Fprintf(&buf, "Calculation:  %s\n", resp.CalculationID)
	fmt.Fprintf(&buf, "Rule pack:    %s\n", resp.RulePackVersion)
	fmt.Fprintf(&buf, "Cadence:      %s\n", resp.Cadence)
	fmt.Fprintln(&buf)

	width := 0
	for _, li := range resp.LineItems {
		width = max(width, len([]rune(li.Name)))
	}
	for _, li := range resp.LineItems {
		if li.Kind == domain.KindNet {
			fmt.Fprintln(&buf, strings.Repeat("-", width+18))
		}
		name := li.Name
		if li.Kind == domain.KindDetail {
			name = "  " + name
		}
		fmt.Fprintf(&buf, "%-*s %16s\n", width+1, name, FormatCurrency(li.Amount, resp.Currency))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintf(&buf, "Gross per period: %s\n", FormatCurrency(resp.GrossPerCadence, resp.Currency))
	fmt.Fprintf(&buf, "Net per period:   %s\n", FormatCurrency(resp.NetPerCadence, resp.Currency))
	if rate, ok := effectiveRate(resp); ok {
		fmt.Fprintf(&buf, "Take-home rate:   %s\n", FormatPercentage(rate))
	}

	if len(resp.Explanations) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "NOTES:")
		for _, e := range resp.Explanations {
			fmt.Fprintf(&buf, "• %s\n", e.Text)
		}
	}
	return buf.Bytes(), nil
}

// ConsoleLiteFormatter renders a short gross/net summary.
type ConsoleLiteFormatter struct{}

func (c ConsoleLiteFormatter) Name() string { return "console-lite" }

func (c ConsoleLiteFormatter) Format(resp *domain.CalculateResponse) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s: gross %s, net %s",
		resp.RulePackVersion, strings.ToLower(string(resp.Cadence)),
		FormatCurrency(resp.GrossPerCadence, resp.Currency),
		FormatCurrency(resp.NetPerCadence, resp.Currency))
	if rate, ok := effectiveRate(resp); ok {
		fmt.Fprintf(&buf, " (%s take-home)", FormatPercentage(rate))
	}
	fmt.Fprintln(&buf)
	return buf.Bytes(), nil
}

// effectiveRate is net as a percentage of gross
func effectiveRate(resp *domain.CalculateResponse) (decimal.Decimal, bool) {
	if !resp.GrossPerCadence.IsPositive() {
		return decimal.Zero, false
	}
	return resp.NetPerCadence.Div(resp.GrossPerCadence).Mul(decimal.NewFromInt(100)), true
}
