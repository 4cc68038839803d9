package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// JSONFormatter emits the response exactly as the HTTP service does
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(resp *domain.CalculateResponse) ([]byte, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAMLFormatter emits the response as YAML
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(resp *domain.CalculateResponse) ([]byte, error) {
	return yaml.Marshal(resp)
}

// CSVFormatter writes one row per line item, amounts to two places.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(resp *domain.CalculateResponse) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"CalculationID", "Cadence", "Currency", "Item", "Kind", "Amount"}); err != nil {
		return nil, err
	}
	for _, li := range resp.LineItems {
		row := []string{
			resp.CalculationID,
			string(resp.Cadence),
			resp.Currency,
			li.Name,
			string(li.Kind),
			li.Amount.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
