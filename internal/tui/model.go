package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// calculationTimeout bounds a single calculation started from the form
const calculationTimeout = 10 * time.Second

// Calculator runs a calculation request end to end
type Calculator interface {
	Calculate(ctx context.Context, req *domain.CalculateRequest) (*domain.CalculateResponse, error)
}

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	calculator Calculator
	form       *FormModel
	result     *domain.CalculateResponse

	err error

	loading        bool
	loadingMessage string
}

// NewModel creates a new application model
func NewModel(calculator Calculator, defaults FormDefaults) Model {
	return Model{
		currentScene: SceneForm,
		calculator:   calculator,
		form:         NewFormModel(defaults),
		width:        80,
		height:       24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Result returns the last successful calculation, if any
func (m Model) Result() *domain.CalculateResponse {
	return m.result
}

// Scene returns the scene being displayed
func (m Model) Scene() Scene {
	return m.currentScene
}

// Err returns the error being displayed, if any
func (m Model) Err() error {
	return m.err
}

// calculateCmd returns a command that runs the calculation off the UI loop
func calculateCmd(calculator Calculator, req *domain.CalculateRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), calculationTimeout)
		defer cancel()

		resp, err := calculator.Calculate(ctx, req)
		return CalculationCompleteMsg{Response: resp, Err: err}
	}
}
