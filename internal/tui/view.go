package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/output"
	"github.com/rgehrsitz/paycalc/internal/tui/components"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderApp(BorderStyle.Render("⠋ " + m.loadingMessage))
	}
	if m.err != nil {
		return m.renderApp(ErrorStyle.Render(
			fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err.Error()),
		))
	}

	var content string
	switch m.currentScene {
	case SceneForm:
		content = BorderStyle.Render(m.form.View())
	case SceneResults:
		content = m.renderResults()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}
	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	title := TitleStyle.Render("paycalc - Take-Home Pay")
	breadcrumb := SubtitleStyle.Render(m.currentScene.String())
	if m.result != nil && m.currentScene == SceneResults {
		breadcrumb = SubtitleStyle.Render(fmt.Sprintf("%s / %s", m.currentScene, m.result.RulePackVersion))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		breadcrumb,
		content,
		m.renderStatusBar(),
	)
}

// renderStatusBar renders the bottom status bar with keyboard shortcuts
func (m Model) renderStatusBar() string {
	var shortcuts []string
	switch m.currentScene {
	case SceneForm:
		shortcuts = []string{
			formatShortcut("tab", "next field"),
			formatShortcut("enter", "calculate"),
			formatShortcut("f1", "help"),
			formatShortcut("esc", "quit"),
		}
	case SceneResults:
		shortcuts = []string{
			formatShortcut("e", "edit"),
			formatShortcut("?", "help"),
			formatShortcut("q", "quit"),
		}
	default:
		shortcuts = []string{formatShortcut("any key", "back")}
	}
	return StatusBarStyle.Width(m.width).Render(strings.Join(shortcuts, " • "))
}

// formatShortcut formats a keyboard shortcut with key and description
func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

// renderResults renders the headline cards, the breakdown and the notes
func (m Model) renderResults() string {
	resp := m.result
	if resp == nil {
		return BorderStyle.Render("No calculation yet")
	}

	cadence := strings.ToLower(string(resp.Cadence))
	cards := []*components.MetricCard{
		components.NewMetricCard("Gross", output.FormatCurrency(resp.GrossPerCadence, resp.Currency)).WithCaption(cadence),
		components.NewMetricCard("Take-home", output.FormatCurrency(resp.NetPerCadence, resp.Currency)).WithCaption(cadence).WithHighlight(),
	}
	if resp.GrossPerCadence.IsPositive() {
		rate := resp.NetPerCadence.Div(resp.GrossPerCadence).Mul(decimal.NewFromInt(100))
		cards = append(cards, components.NewMetricCard("Kept", output.FormatPercentage(rate)))
	}

	sections := []string{
		components.MetricRow(cards...),
		"",
		components.Breakdown(resp.LineItems, resp.Currency),
	}
	if len(resp.Explanations) > 0 {
		notes := make([]string, 0, len(resp.Explanations))
		for _, e := range resp.Explanations {
			notes = append(notes, "• "+e.Text)
		}
		sections = append(sections, "", SubtitleStyle.Render(strings.Join(notes, "\n")))
	}
	sections = append(sections, "", SubtitleStyle.Render("Calculation "+resp.CalculationID))

	return BorderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	helpText := `paycalc - Take-Home Pay Calculator

FORM:
  tab / ↓      Next field
  shift+tab / ↑ Previous field
  enter        Calculate
  f1           Show this help
  esc          Quit

RESULTS:
  e / esc      Edit the request
  ?            Show this help
  q            Quit

US requests need a state and filing status.
UK pension % is a percentage of gross salary, e.g. 5.`

	return BorderStyle.Render(helpText)
}
