package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// HTMLFormatter produces a standalone HTML payslip-style report.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr": FormatCurrency,
	"isNet": func(k domain.LineItemKind) bool {
		return k == domain.KindNet
	},
	"isDetail": func(k domain.LineItemKind) bool {
		return k == domain.KindDetail
	},
	"fixed": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(resp *domain.CalculateResponse) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, resp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
