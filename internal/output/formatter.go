package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// Formatter renders a calculation response in one output format.
type Formatter interface {
	Name() string
	Format(resp *domain.CalculateResponse) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(resp *domain.CalculateResponse) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(resp *domain.CalculateResponse) ([]byte, error) { return f.F(resp) }

var formatters = map[string]Formatter{}

var aliases = map[string]string{
	"table":   "console",
	"text":    "console",
	"summary": "console-lite",
	"yml":     "yaml",
}

func register(f Formatter) {
	formatters[f.Name()] = f
}

func init() {
	register(ConsoleFormatter{})
	register(ConsoleLiteFormatter{})
	register(CSVFormatter{})
	register(JSONFormatter{})
	register(YAMLFormatter{})
	register(HTMLFormatter{})
}

// GetFormatterByName returns the formatter registered under name or one of
// its aliases, or nil if there is none.
func GetFormatterByName(name string) Formatter {
	name = strings.ToLower(strings.TrimSpace(name))
	if target, ok := aliases[name]; ok {
		name = target
	}
	return formatters[name]
}

// AvailableFormatterNames lists registered formatter names, sorted
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases lists accepted alternative names, sorted
func AvailableFormatAliases() []string {
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// WriteFormatted renders resp with f and writes it to
// paycalc_<calculationId>.<ext> in the working directory.
func WriteFormatted(f Formatter, resp *domain.CalculateResponse, ext string) (string, error) {
	data, err := f.Format(resp)
	if err != nil {
		return "", err
	}
	id := resp.CalculationID
	if id == "" {
		id = "report"
	}
	filename := fmt.Sprintf("paycalc_%s.%s", id, ext)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

// CurrencySymbol returns the display symbol for an ISO currency code
func CurrencySymbol(currency string) string {
	switch currency {
	case "USD":
		return "$"
	case "GBP":
		return "£"
	default:
		return currency + " "
	}
}

// FormatCurrency formats an amount to two places with its currency symbol.
// Negative amounts render as -£2570.00.
func FormatCurrency(amount decimal.Decimal, currency string) string {
	symbol := CurrencySymbol(currency)
	if amount.IsNegative() {
		return "-" + symbol + amount.Abs().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
