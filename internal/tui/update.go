package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case NavigateMsg:
		m.previousScene = m.currentScene
		m.currentScene = msg.Scene
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case CalculationCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.result = msg.Response
		m.previousScene = m.currentScene
		m.currentScene = SceneResults
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Any key dismisses an error
	if m.err != nil {
		m.err = nil
		return m, nil
	}
	if m.loading {
		return m, nil
	}

	switch m.currentScene {
	case SceneForm:
		switch msg.String() {
		case "enter":
			return m.submit()
		case "esc":
			return m, tea.Quit
		case "f1":
			return m, navigate(SceneHelp)
		}

	case SceneResults:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "e", "esc", "backspace":
			return m, navigate(SceneForm)
		case "?":
			return m, navigate(SceneHelp)
		}
		return m, nil

	case SceneHelp:
		return m, navigate(m.previousScene)
	}

	return m.updateCurrentScene(msg)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.form.Request()
	if err != nil {
		m.err = err
		return m, nil
	}
	m.loading = true
	m.loadingMessage = "Calculating take-home pay..."
	return m, calculateCmd(m.calculator, req)
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.currentScene == SceneForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func navigate(scene Scene) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Scene: scene}
	}
}
