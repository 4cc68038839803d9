package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

func buildTestResponse() *domain.CalculateResponse {
	d := decimal.RequireFromString
	return &domain.CalculateResponse{
		CalculationID:   "c_0a1b2c3d",
		RulePackVersion: "UK-2025.4.0",
		Currency:        "GBP",
		Cadence:         domain.CadenceAnnual,
		GrossPerCadence: d("50000"),
		NetPerCadence:   d("39519.6"),
		LineItems: []domain.LineItem{
			{Name: "Gross Salary", Amount: d("50000"), Kind: domain.KindGross},
			{Name: "Tax-Free Allowance", Amount: d("-12570"), Kind: domain.KindAllowance},
			{Name: "Income Tax (Basic Rate 20%)", Amount: d("7486"), Kind: domain.KindDetail},
			{Name: "Total Income Tax", Amount: d("7486"), Kind: domain.KindTax},
			{Name: "Total National Insurance", Amount: d("2994.4"), Kind: domain.KindTax},
			{Name: "Net Take-Home Pay", Amount: d("39519.6"), Kind: domain.KindNet},
		},
		Explanations: []domain.Explanation{
			{ID: "personal_allowance", Text: "Standard personal allowance of £12570 applied"},
		},
	}
}

func TestFormatterFunc(t *testing.T) {
	var received *domain.CalculateResponse
	f := FormatterFunc{
		ID: "test-formatter",
		F: func(resp *domain.CalculateResponse) ([]byte, error) {
			received = resp
			return []byte("test output"), nil
		},
	}

	resp := buildTestResponse()
	out, err := f.Format(resp)
	require.NoError(t, err)
	assert.Equal(t, "test-formatter", f.Name())
	assert.Same(t, resp, received)
	assert.Equal(t, []byte("test output"), out)
}

func TestWriteFormatted(t *testing.T) {
	t.Chdir(t.TempDir())

	f := FormatterFunc{ID: "t", F: func(*domain.CalculateResponse) ([]byte, error) { return []byte("content"), nil }}
	filename, err := WriteFormatted(f, buildTestResponse(), "txt")
	require.NoError(t, err)
	assert.Equal(t, "paycalc_c_0a1b2c3d.txt", filename)

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	failing := FormatterFunc{ID: "e", F: func(*domain.CalculateResponse) ([]byte, error) { return nil, fmt.Errorf("formatter error") }}
	filename, err = WriteFormatted(failing, buildTestResponse(), "txt")
	assert.Empty(t, filename)
	assert.ErrorContains(t, err, "formatter error")
}

func TestGetFormatterByName(t *testing.T) {
	for _, name := range []string{"console", "console-lite", "csv", "json", "yaml", "html"} {
		f := GetFormatterByName(name)
		require.NotNil(t, f, name)
		assert.Equal(t, name, f.Name())
	}

	assert.Equal(t, "console", GetFormatterByName("TABLE").Name())
	assert.Equal(t, "yaml", GetFormatterByName("yml").Name())
	assert.Nil(t, GetFormatterByName("non-existent"))

	assert.Equal(t, []string{"console", "console-lite", "csv", "html", "json", "yaml"}, AvailableFormatterNames())
	assert.Contains(t, AvailableFormatAliases(), "summary")
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "£39519.60", FormatCurrency(decimal.RequireFromString("39519.6"), "GBP"))
	assert.Equal(t, "-£12570.00", FormatCurrency(decimal.NewFromInt(-12570), "GBP"))
	assert.Equal(t, "$5842.36", FormatCurrency(decimal.RequireFromString("5842.362"), "USD"))
	assert.Equal(t, "EUR 1.00", FormatCurrency(decimal.NewFromInt(1), "EUR"))
	assert.Equal(t, "79.04%", FormatPercentage(decimal.RequireFromString("79.0392")))
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestResponse())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "TAKE-HOME PAY BREAKDOWN")
	assert.Contains(t, content, "UK-2025.4.0")
	assert.Contains(t, content, "-£12570.00")
	assert.Contains(t, content, "  Income Tax (Basic Rate 20%)", "detail rows are indented")
	assert.Contains(t, content, "Net per period:   £39519.60")
	assert.Contains(t, content, "Take-home rate:   79.04%")
	assert.Contains(t, content, "• Standard personal allowance of £12570 applied")
}

func TestConsoleLiteFormatter(t *testing.T) {
	out, err := ConsoleLiteFormatter{}.Format(buildTestResponse())
	require.NoError(t, err)
	assert.Equal(t, "UK-2025.4.0 annual: gross £50000.00, net £39519.60 (79.04% take-home)\n", string(out))

	zero := buildTestResponse()
	zero.GrossPerCadence = decimal.Zero
	zero.NetPerCadence = decimal.Zero
	out, err = ConsoleLiteFormatter{}.Format(zero)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "take-home")
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestResponse())
	require.NoError(t, err)

	var decoded domain.CalculateResponse
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "c_0a1b2c3d", decoded.CalculationID)
	assert.True(t, decoded.NetPerCadence.Equal(decimal.RequireFromString("39519.6")))
	assert.Contains(t, string(out), `"explanation"`)
}

func TestYAMLFormatter(t *testing.T) {
	out, err := YAMLFormatter{}.Format(buildTestResponse())
	require.NoError(t, err)

	var decoded domain.CalculateResponse
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "UK-2025.4.0", decoded.RulePackVersion)
	require.Len(t, decoded.LineItems, 6)
	assert.True(t, decoded.LineItems[1].Amount.Equal(decimal.NewFromInt(-12570)))
}

func TestCSVFormatter(t *testing.T) {
	out, err := CSVFormatter{}.Format(buildTestResponse())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, "Item", records[0][3])
	assert.Equal(t, []string{"c_0a1b2c3d", "ANNUAL", "GBP", "Total National Insurance", "tax", "2994.40"}, records[5])
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(buildTestResponse())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "<!DOCTYPE html>")
	assert.Contains(t, content, "<title>Take-Home Pay c_0a1b2c3d</title>")
	assert.Contains(t, content, `class="net"`)
	assert.Contains(t, content, `class="detail"`)
	assert.Contains(t, content, `<li id="personal_allowance">`)
}
