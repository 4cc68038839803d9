package tui

import "github.com/rgehrsitz/paycalc/internal/tui/tuistyles"

// Re-export styles from tuistyles to avoid import cycles
var (
	TitleStyle        = tuistyles.TitleStyle
	SubtitleStyle     = tuistyles.SubtitleStyle
	StatusBarStyle    = tuistyles.StatusBarStyle
	StatusKeyStyle    = tuistyles.StatusKeyStyle
	BorderStyle       = tuistyles.BorderStyle
	LabelStyle        = tuistyles.LabelStyle
	FocusedLabelStyle = tuistyles.FocusedLabelStyle
	ErrorStyle        = tuistyles.ErrorStyle
	HelpKeyStyle      = tuistyles.HelpKeyStyle
)
