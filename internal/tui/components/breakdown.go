package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/output"
	"github.com/rgehrsitz/paycalc/internal/tui/tuistyles"
)

// Breakdown renders line items as a two-column table. Taxes and deductions
// are coloured, detail rows are indented and the net row is emphasised.
func Breakdown(items []domain.LineItem, currency string) string {
	width := 0
	for _, li := range items {
		width = max(width, lipgloss.Width(li.Name)+2)
	}

	var rows []string
	for _, li := range items {
		name := li.Name
		nameStyle := lipgloss.NewStyle().Width(width)
		amountStyle := lipgloss.NewStyle().Width(16).Align(lipgloss.Right)

		switch {
		case li.Kind == domain.KindNet:
			rows = append(rows, tuistyles.SubtitleStyle.Render(strings.Repeat("─", width+16)))
			nameStyle = nameStyle.Inherit(tuistyles.NetStyle)
			amountStyle = amountStyle.Inherit(tuistyles.NetStyle)
		case li.Kind == domain.KindDetail:
			name = "  " + name
			nameStyle = nameStyle.Inherit(tuistyles.DetailStyle)
			amountStyle = amountStyle.Inherit(tuistyles.SubtitleStyle)
		case li.Kind.Reduces():
			amountStyle = amountStyle.Inherit(tuistyles.DeductionStyle)
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			nameStyle.Render(name),
			amountStyle.Render(output.FormatCurrency(li.Amount, currency)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
