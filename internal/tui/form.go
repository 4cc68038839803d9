package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// Field indexes a form input
type Field int

const (
	FieldCountry Field = iota
	FieldTaxYear
	FieldSalary
	FieldCadence
	FieldState
	FieldFilingStatus
	FieldPensionPercent
	FieldStudentLoan
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Country",
	"Tax year",
	"Annual salary",
	"Pay cadence",
	"State (US)",
	"Filing status (US)",
	"Pension % (UK)",
	"Student loan (UK)",
}

var fieldPlaceholders = [fieldCount]string{
	"US or UK",
	"2025",
	"e.g. 50000",
	"ANNUAL, MONTHLY, BIWEEKLY, WEEKLY",
	"e.g. CA",
	"SINGLE, MARRIED, HEAD_OF_HOUSEHOLD",
	"e.g. 5",
	"PLAN1, PLAN2, PLAN4, POSTGRAD",
}

var (
	nextFieldKey = key.NewBinding(key.WithKeys("tab", "down"))
	prevFieldKey = key.NewBinding(key.WithKeys("shift+tab", "up"))
)

// FormDefaults pre-fills the form
type FormDefaults struct {
	Country      string
	TaxYear      int
	Salary       string
	Cadence      string
	State        string
	FilingStatus string
}

// FormModel is the request entry form
type FormModel struct {
	inputs []textinput.Model
	focus  Field
}

// NewFormModel creates the form with the first field focused
func NewFormModel(d FormDefaults) *FormModel {
	f := &FormModel{inputs: make([]textinput.Model, fieldCount)}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = fieldPlaceholders[i]
		ti.CharLimit = 40
		ti.Width = 36
		f.inputs[i] = ti
	}

	f.inputs[FieldCountry].SetValue(d.Country)
	if d.TaxYear > 0 {
		f.inputs[FieldTaxYear].SetValue(strconv.Itoa(d.TaxYear))
	}
	f.inputs[FieldSalary].SetValue(d.Salary)
	f.inputs[FieldCadence].SetValue(d.Cadence)
	f.inputs[FieldState].SetValue(d.State)
	f.inputs[FieldFilingStatus].SetValue(d.FilingStatus)

	f.inputs[FieldCountry].Focus()
	return f
}

// Focused returns the field that receives key input
func (f *FormModel) Focused() Field {
	return f.focus
}

// Value returns the raw text of a field
func (f *FormModel) Value(field Field) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// SetValue replaces the text of a field
func (f *FormModel) SetValue(field Field, value string) {
	f.inputs[field].SetValue(value)
}

// Update moves focus between fields and forwards other keys to the focused input
func (f *FormModel) Update(msg tea.Msg) (*FormModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, nextFieldKey):
			return f, f.setFocus((f.focus + 1) % fieldCount)
		case key.Matches(msg, prevFieldKey):
			return f, f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *FormModel) setFocus(field Field) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = field
	return f.inputs[f.focus].Focus()
}

// Request builds a calculation request from the form. Shape checks beyond
// number parsing are left to the orchestrator.
func (f *FormModel) Request() (*domain.CalculateRequest, error) {
	req := &domain.CalculateRequest{
		Country: domain.ParseCountry(f.Value(FieldCountry)),
		Cadence: domain.PayCadence(strings.ToUpper(f.Value(FieldCadence))),
	}

	year, err := strconv.Atoi(f.Value(FieldTaxYear))
	if err != nil {
		return nil, fmt.Errorf("%w: tax year must be a whole number", domain.ErrInvalidInput)
	}
	req.TaxYear = year

	salary, err := decimal.NewFromString(strings.ReplaceAll(f.Value(FieldSalary), ",", ""))
	if err != nil {
		return nil, fmt.Errorf("%w: annual salary must be a number", domain.ErrInvalidInput)
	}
	req.AnnualSalary = &salary

	switch req.Country {
	case domain.CountryUS:
		req.CountryOptions = &domain.CountryOptions{US: &domain.USOptions{
			State:        f.Value(FieldState),
			FilingStatus: domain.FilingStatus(f.Value(FieldFilingStatus)),
		}}
	case domain.CountryUK:
		if raw := f.Value(FieldPensionPercent); raw != "" {
			pct, err := decimal.NewFromString(strings.TrimSuffix(raw, "%"))
			if err != nil {
				return nil, fmt.Errorf("%w: pension %% must be a number", domain.ErrInvalidInput)
			}
			req.Pretax = &domain.Pretax{PensionPercent: pct.Div(decimal.NewFromInt(100))}
		}
		if plan := f.Value(FieldStudentLoan); plan != "" {
			req.Posttax = &domain.Posttax{StudentLoanPlan: domain.StudentLoanPlan(plan)}
		}
	}
	return req, nil
}

// View renders every field with its label
func (f *FormModel) View() string {
	rows := make([]string, 0, fieldCount)
	for i, in := range f.inputs {
		label := LabelStyle.Render(fieldLabels[i])
		if Field(i) == f.focus {
			label = FocusedLabelStyle.Render("› " + fieldLabels[i])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, in.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
