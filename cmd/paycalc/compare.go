package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paycalc/internal/breakeven"
	"github.com/rgehrsitz/paycalc/internal/compare"
	"github.com/rgehrsitz/paycalc/internal/config"
)

func parseAmounts(flag string, values []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		d, err := parseAmount(flag, v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func scenarioName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func (a *app) compareCmd() *cobra.Command {
	var (
		salaries []string
		pensions []string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "compare BASE [ALTERNATIVE...]",
		Short: "Compare take-home pay across request files and variants",
		Long: `Compare the base request against alternative request files and against
salary or pension variants of the base.

Examples:
  paycalc compare offer_a.yaml offer_b.yaml
  paycalc compare current.yaml --salary 55000 --salary 60000
  paycalc compare current.yaml --pension 0.05 --pension 0.08 --format csv
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := compare.FormatterFor(format)
			if err != nil {
				return err
			}

			parser := config.NewRequestParser()
			scenarios := make([]compare.Scenario, 0, len(args))
			for _, path := range args {
				req, err := parser.LoadFromFile(path)
				if err != nil {
					return err
				}
				scenarios = append(scenarios, compare.Scenario{Name: scenarioName(path), Request: req})
			}
			base, alternatives := scenarios[0], scenarios[1:]

			salaryValues, err := parseAmounts("salary", salaries)
			if err != nil {
				return err
			}
			pensionValues, err := parseAmounts("pension", pensions)
			if err != nil {
				return err
			}
			alternatives = append(alternatives, compare.SalaryVariants(base, salaryValues)...)
			alternatives = append(alternatives, compare.PensionVariants(base, pensionValues)...)

			_, orch := a.services(nil)
			compSet, err := compare.NewCompareEngine(orch).CompareScenarios(cmd.Context(), base, alternatives)
			if err != nil {
				return err
			}
			compSet.Source = args[0]

			out, err := f.Format(compSet)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&salaries, "salary", nil, "compare the base at this annual salary (repeatable)")
	cmd.Flags().StringArrayVar(&pensions, "pension", nil, "compare the base with this employee pension fraction (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: "+strings.Join(compare.FormatNames, ", ")+" or compact")
	return cmd
}

func (a *app) grossUpCmd() *cobra.Command {
	var (
		rf        requestFlags
		targets   []string
		tolerance string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "gross-up",
		Short: "Find the gross salary needed for a target take-home pay",
		Long: `Solve for the annual gross salary that produces a target net pay. The
target is per pay period of --cadence.

Examples:
  paycalc gross-up --country UK --net 40000
  paycalc gross-up --country UK --net 3000 --cadence MONTHLY --pension 0.05
  paycalc gross-up --country US --state NY --net 60000 --net 80000
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q (available: table, json)", format)
			}
			nets, err := parseAmounts("net", targets)
			if err != nil {
				return err
			}
			template, err := rf.build()
			if err != nil {
				return err
			}

			opts := breakeven.DefaultSolverOptions()
			if tolerance != "" {
				if opts.Tolerance, err = parseAmount("tolerance", tolerance); err != nil {
					return err
				}
			}
			_, orch := a.services(nil)
			solver := breakeven.NewSolver(orch, opts)
			tf := &breakeven.TableFormatter{}

			var out string
			if len(nets) == 1 {
				res, err := solver.Solve(cmd.Context(), breakeven.SolveRequest{Template: template, TargetNet: nets[0]})
				if err != nil {
					return err
				}
				if format == "json" {
					out, err = breakeven.FormatJSON(res)
				} else {
					out = tf.Format(res)
				}
				if err != nil {
					return err
				}
			} else {
				multi, err := solver.SolveMany(cmd.Context(), template, nets)
				if err != nil {
					return err
				}
				if format == "json" {
					out, err = breakeven.FormatJSON(multi)
				} else {
					out = tf.FormatMulti(multi)
				}
				if err != nil {
					return err
				}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	rf.register(cmd)
	cmd.Flags().StringArrayVar(&targets, "net", nil, "target net pay per period (repeatable)")
	cmd.Flags().StringVar(&tolerance, "tolerance", "", "acceptable distance from the target net (default 0.01)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	_ = cmd.MarkFlagRequired("net")
	return cmd
}
