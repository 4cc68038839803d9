package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paycalc/internal/config"
	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/output"
)

// requestFlags builds a request from the command line when no file is given
type requestFlags struct {
	country        string
	taxYear        int
	salary         string
	hourlyRate     string
	hoursPerWeek   string
	cadence        string
	state          string
	filingStatus   string
	pensionPercent string
	studentLoan    string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.country, "country", "", "country code: US or UK")
	flags.IntVar(&f.taxYear, "year", 2025, "tax year")
	flags.StringVar(&f.salary, "salary", "", "gross annual salary")
	flags.StringVar(&f.hourlyRate, "hourly-rate", "", "hourly rate instead of a salary (UK only)")
	flags.StringVar(&f.hoursPerWeek, "hours", "", "hours per week for --hourly-rate")
	flags.StringVar(&f.cadence, "cadence", "ANNUAL", "pay cadence: ANNUAL, MONTHLY, BIWEEKLY or WEEKLY")
	flags.StringVar(&f.state, "state", "", "US state code")
	flags.StringVar(&f.filingStatus, "filing-status", "SINGLE", "US filing status: SINGLE, MARRIED or HEAD_OF_HOUSEHOLD")
	flags.StringVar(&f.pensionPercent, "pension", "", "UK employee pension contribution as a fraction, e.g. 0.05")
	flags.StringVar(&f.studentLoan, "student-loan", "", "UK student loan plan: PLAN1, PLAN2, PLAN4 or POSTGRAD")
}

// request builds and validates a complete request
func (f *requestFlags) request() (*domain.CalculateRequest, error) {
	req, err := f.build()
	if err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// build maps the flags to a request without validating it, so templates
// without a salary can be built
func (f *requestFlags) build() (*domain.CalculateRequest, error) {
	req := &domain.CalculateRequest{
		Country: domain.ParseCountry(f.country),
		TaxYear: f.taxYear,
		Cadence: domain.PayCadence(f.cadence),
	}

	switch {
	case f.hourlyRate != "":
		rate, err := parseAmount("hourly-rate", f.hourlyRate)
		if err != nil {
			return nil, err
		}
		income := &domain.Income{Type: domain.IncomeHourly, Amount: rate}
		if f.hoursPerWeek != "" {
			if income.HoursPerWeek, err = parseAmount("hours", f.hoursPerWeek); err != nil {
				return nil, err
			}
		}
		req.Income = income
	case f.salary != "":
		salary, err := parseAmount("salary", f.salary)
		if err != nil {
			return nil, err
		}
		req.AnnualSalary = &salary
	}

	if req.Country == domain.CountryUS {
		req.CountryOptions = &domain.CountryOptions{US: &domain.USOptions{
			State:        f.state,
			FilingStatus: domain.FilingStatus(f.filingStatus),
		}}
	}
	if f.pensionPercent != "" {
		pct, err := parseAmount("pension", f.pensionPercent)
		if err != nil {
			return nil, err
		}
		req.Pretax = &domain.Pretax{PensionPercent: pct}
	}
	if f.studentLoan != "" {
		req.Posttax = &domain.Posttax{StudentLoanPlan: domain.StudentLoanPlan(f.studentLoan)}
	}
	return req, nil
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: --%s must be a number, got %q", domain.ErrInvalidInput, flag, value)
	}
	return d, nil
}

func (a *app) calculateCmd() *cobra.Command {
	var (
		rf    requestFlags
		write bool
	)

	cmd := &cobra.Command{
		Use:   "calculate [request-file]",
		Short: "Calculate take-home pay",
		Long: `Calculate take-home pay from a YAML or JSON request file ("-" reads
stdin), or from flags when no file is given.

Examples:
  paycalc calculate request.yaml
  paycalc calculate --country UK --salary 50000 --cadence MONTHLY
  paycalc calculate --country US --salary 100000 --state CA --format json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				req *domain.CalculateRequest
				err error
			)
			if len(args) == 1 {
				req, err = config.NewRequestParser().LoadFromFile(args[0])
			} else {
				req, err = rf.request()
			}
			if err != nil {
				return err
			}

			format := a.v.GetString("output.format")
			f := output.GetFormatterByName(format)
			if f == nil {
				return fmt.Errorf("unsupported format %q (available: %s)", format, strings.Join(output.AvailableFormatterNames(), ", "))
			}

			_, orch := a.services(nil)
			resp, err := orch.Calculate(cmd.Context(), req)
			if err != nil {
				return err
			}

			if write {
				filename, err := output.WriteFormatted(f, resp, extension(f.Name()))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
				return nil
			}

			data, err := f.Format(resp)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	rf.register(cmd)
	cmd.Flags().StringP("format", "f", "", "output format: "+strings.Join(output.AvailableFormatterNames(), ", "))
	cmd.Flags().BoolVar(&write, "write", false, "write the report to paycalc_<calculationId>.<ext> instead of stdout")
	_ = a.v.BindPFlag("output.format", cmd.Flags().Lookup("format"))
	return cmd
}

func extension(format string) string {
	switch format {
	case "json", "yaml", "csv", "html":
		return format
	default:
		return "txt"
	}
}
