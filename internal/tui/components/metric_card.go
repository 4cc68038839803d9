package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/paycalc/internal/tui/tuistyles"
)

// MetricCard displays a single headline figure with a label
type MetricCard struct {
	Label     string
	Value     string
	Caption   string
	Highlight bool
	Width     int
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 24,
	}
}

// WithCaption adds a muted line under the value
func (m *MetricCard) WithCaption(caption string) *MetricCard {
	m.Caption = caption
	return m
}

// WithHighlight renders the value in the net-pay colour
func (m *MetricCard) WithHighlight() *MetricCard {
	m.Highlight = true
	return m
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	valueStyle := tuistyles.MetricValueStyle
	if m.Highlight {
		valueStyle = tuistyles.NetStyle
	}

	content := tuistyles.MetricLabelStyle.Render(m.Label) + "\n" + valueStyle.Render(m.Value)
	if m.Caption != "" {
		content += "\n" + tuistyles.SubtitleStyle.Render(m.Caption)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width).
		Render(content)
}

// MetricRow renders cards side by side
func MetricRow(cards ...*MetricCard) string {
	rendered := make([]string, 0, len(cards))
	for _, card := range cards {
		rendered = append(rendered, card.Render())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
