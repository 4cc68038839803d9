package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgehrsitz/paycalc/internal/calculation"
	"github.com/rgehrsitz/paycalc/internal/config"
	"github.com/rgehrsitz/paycalc/internal/metrics"
	"github.com/rgehrsitz/paycalc/internal/rules"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries what every subcommand needs once the configuration is loaded
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "paycalc",
		Short: "Take-home pay calculator for the US and UK",
		Long: `Calculates net take-home pay from a gross salary using versioned
tax rule packs. Supports US federal, state and FICA taxes and UK income
tax, National Insurance, pension and student loan deductions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (YAML or JSON)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().String("rules-dir", "", "directory of rule packs to use instead of the bundled ones")
	_ = a.v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("rules.dir", root.PersistentFlags().Lookup("rules-dir"))

	root.AddCommand(
		a.calculateCmd(),
		a.serveCmd(),
		a.compareCmd(),
		a.grossUpCmd(),
		a.countriesCmd(),
		a.rulesCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	config.SetDefaults(a.v)

	path, _ := cmd.Flags().GetString("config")
	if err := config.ReadFile(a.v, path); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Logging.NewLogger(cmd.ErrOrStderr())
	return nil
}

// services builds the rule-pack store and orchestrator from the loaded config
func (a *app) services(m *metrics.Metrics) (*rules.Registry, *calculation.Orchestrator) {
	opts := append(a.cfg.Rules.RegistryOptions(), rules.WithLogger(a.logger), rules.WithMetrics(m))
	store := rules.NewRegistry(opts...)

	calcLogger := calculation.NewSlogLogger(a.logger)
	orch := calculation.NewOrchestrator(store, calculation.DefaultRegistry(calcLogger),
		calculation.WithLogger(calcLogger),
		calculation.WithMetrics(m),
	)
	return store, orch
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paycalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
