package tui

import (
	"github.com/rgehrsitz/paycalc/internal/domain"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneForm Scene = iota
	SceneResults
	SceneHelp
)

func (s Scene) String() string {
	switch s {
	case SceneForm:
		return "Calculate"
	case SceneResults:
		return "Results"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// Message types for the Bubble Tea update cycle

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// CalculationCompleteMsg carries the orchestrator's answer
type CalculationCompleteMsg struct {
	Response *domain.CalculateResponse
	Err      error
}
