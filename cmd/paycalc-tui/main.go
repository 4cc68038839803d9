package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"github.com/rgehrsitz/paycalc/internal/calculation"
	"github.com/rgehrsitz/paycalc/internal/config"
	"github.com/rgehrsitz/paycalc/internal/rules"
	"github.com/rgehrsitz/paycalc/internal/tui"
)

func main() {
	// Optional config file path from arguments
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	v := viper.New()
	config.SetDefaults(v)
	if err := config.ReadFile(v, configPath); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(v)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Logs would corrupt the alternate screen
	logger := slog.New(slog.DiscardHandler)
	store := rules.NewRegistry(append(cfg.Rules.RegistryOptions(), rules.WithLogger(logger))...)
	orch := calculation.NewOrchestrator(store, calculation.DefaultRegistry(nil))

	model := tui.NewModel(orch, tui.FormDefaults{
		Country: "UK",
		TaxYear: 2025,
		Cadence: "ANNUAL",
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
