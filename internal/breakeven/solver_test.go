package breakeven

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/paycalc/internal/calculation"
	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/rules"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// flatCalculator keeps a fixed share of gross, per cadence
type flatCalculator struct {
	rate decimal.Decimal
}

func (f flatCalculator) Calculate(_ context.Context, req *domain.CalculateRequest) (*domain.CalculateResponse, error) {
	periods, err := req.Cadence.PeriodsPerYear()
	if err != nil {
		return nil, err
	}
	p := decimal.NewFromInt(int64(periods))
	gross := req.AnnualSalary.Div(p)
	return &domain.CalculateResponse{
		Currency:        "GBP",
		Cadence:         req.Cadence.OrDefault(),
		GrossPerCadence: gross,
		NetPerCadence:   gross.Mul(f.rate),
	}, nil
}

func ukTemplate() *domain.CalculateRequest {
	return &domain.CalculateRequest{Country: domain.CountryUK, TaxYear: 2025}
}

func realSolver() *Solver {
	orch := calculation.NewOrchestrator(rules.NewRegistry(), calculation.DefaultRegistry(nil))
	return NewDefaultSolver(orch)
}

func TestNewDefaultSolver(t *testing.T) {
	calc := flatCalculator{rate: d("0.75")}
	solver := NewDefaultSolver(calc)

	require.NotNil(t, solver)
	assert.Equal(t, calc, solver.Calculator)
	assert.Equal(t, DefaultSolverOptions(), solver.Options)
}

func TestSolve_Flat(t *testing.T) {
	solver := NewDefaultSolver(flatCalculator{rate: d("0.75")})

	res, err := solver.Solve(context.Background(), SolveRequest{Template: ukTemplate(), TargetNet: d("750")})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.NetPerCadence.Sub(d("750")).Abs().LessThanOrEqual(d("0.01")))
	assert.True(t, res.GrossAnnual.Sub(d("1000")).Abs().LessThan(d("0.02")), res.GrossAnnual.String())
	assert.Equal(t, domain.CadenceAnnual, res.Cadence)
	assert.Contains(t, res.ConvergenceInfo, "Converged within 0.01")
}

func TestSolve_UK(t *testing.T) {
	res, err := realSolver().Solve(context.Background(), SolveRequest{Template: ukTemplate(), TargetNet: d("39519.6")})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "GBP", res.Currency)
	assert.True(t, res.GrossAnnual.Sub(d("50000")).Abs().LessThan(d("0.05")), res.GrossAnnual.String())
	require.NotNil(t, res.Response)
	assert.Equal(t, "UK-2025.4.0", res.Response.RulePackVersion)
	assert.Less(t, res.Iterations, 60)
}

func TestSolve_MonthlyCadence(t *testing.T) {
	tmpl := ukTemplate()
	tmpl.Cadence = domain.CadenceMonthly

	res, err := realSolver().Solve(context.Background(), SolveRequest{Template: tmpl, TargetNet: d("3293.3")})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, domain.CadenceMonthly, res.Cadence)
	assert.True(t, res.GrossAnnual.Sub(d("50000")).Abs().LessThan(d("0.5")), res.GrossAnnual.String())
}

func TestSolve_US(t *testing.T) {
	tmpl := &domain.CalculateRequest{
		Country:        domain.CountryUS,
		TaxYear:        2025,
		CountryOptions: &domain.CountryOptions{US: &domain.USOptions{State: "CA", FilingStatus: domain.FilingSingle}},
	}

	res, err := realSolver().Solve(context.Background(), SolveRequest{Template: tmpl, TargetNet: d("72893.638")})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "USD", res.Currency)
	assert.True(t, res.GrossAnnual.Sub(d("100000")).Abs().LessThan(d("0.05")), res.GrossAnnual.String())
}

func TestSolve_Validation(t *testing.T) {
	solver := NewDefaultSolver(flatCalculator{rate: d("0.75")})

	tests := []struct {
		name string
		req  SolveRequest
		msg  string
	}{
		{"no template", SolveRequest{TargetNet: d("100")}, "template request is required"},
		{"zero target", SolveRequest{Template: ukTemplate()}, "must be positive"},
		{"negative tolerance", SolveRequest{Template: ukTemplate(), TargetNet: d("100"), Tolerance: d("-1")}, "tolerance"},
		{"negative iterations", SolveRequest{Template: ukTemplate(), TargetNet: d("100"), MaxIterations: -1}, "iterations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := solver.Solve(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.ErrorContains(t, err, tt.msg)

			var be *BreakEvenError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, "validate_request", be.Operation)
		})
	}

	tmpl := ukTemplate()
	tmpl.Cadence = "DAILY"
	_, err := solver.Solve(context.Background(), SolveRequest{Template: tmpl, TargetNet: d("100")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSolve_CalculationError(t *testing.T) {
	// US requests need a state
	tmpl := &domain.CalculateRequest{Country: domain.CountryUS, TaxYear: 2025}

	_, err := realSolver().Solve(context.Background(), SolveRequest{Template: tmpl, TargetNet: d("50000")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "failed to calculate gross")
}

func TestSolve_Unreachable(t *testing.T) {
	solver := NewDefaultSolver(flatCalculator{rate: d("0")})

	_, err := solver.Solve(context.Background(), SolveRequest{
		Template:  ukTemplate(),
		TargetNet: d("100"),
		MaxGross:  d("1000"),
	})
	assert.ErrorContains(t, err, "not reachable with a gross below 1000")
}

func TestSolve_MaxIterations(t *testing.T) {
	solver := NewDefaultSolver(flatCalculator{rate: d("0.75")})

	res, err := solver.Solve(context.Background(), SolveRequest{
		Template:      ukTemplate(),
		TargetNet:     d("750"),
		Tolerance:     d("0.000001"),
		MaxIterations: 3,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, "Did not converge within 3 calculations", res.ConvergenceInfo)
	assert.True(t, res.GrossAnnual.IsPositive())
}

func TestSolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefaultSolver(flatCalculator{rate: d("0.75")}).
		Solve(ctx, SolveRequest{Template: ukTemplate(), TargetNet: d("750")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSolveMany(t *testing.T) {
	res, err := realSolver().SolveMany(context.Background(), ukTemplate(),
		[]decimal.Decimal{d("45357.4"), d("39519.6")})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)

	assert.True(t, res.Results[0].TargetNet.Equal(d("39519.6")), "results are sorted by target")
	assert.True(t, res.Results[0].GrossAnnual.Sub(d("50000")).Abs().LessThan(d("0.05")))
	assert.True(t, res.Results[1].GrossAnnual.Sub(d("60000")).Abs().LessThan(d("0.05")))

	require.Len(t, res.Recommendations, 1)
	assert.Contains(t, res.Recommendations[0], "Raising take-home from £39519.60 to £45357.40 needs")
	assert.Contains(t, res.Recommendations[0], "(1.71 per 1.00 kept)")

	_, err = realSolver().SolveMany(context.Background(), ukTemplate(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTableFormatter(t *testing.T) {
	solver := NewDefaultSolver(flatCalculator{rate: d("0.75")})
	tmpl := ukTemplate()
	tmpl.Cadence = domain.CadenceMonthly

	res, err := solver.Solve(context.Background(), SolveRequest{Template: tmpl, TargetNet: d("750")})
	require.NoError(t, err)

	out := (&TableFormatter{}).Format(res)
	assert.Contains(t, out, "GROSS-UP RESULT")
	assert.Contains(t, out, "Status:             OK")
	assert.Contains(t, out, "Annual Gross:       £")
	assert.Contains(t, out, "Gross per period:   £")
	assert.Contains(t, out, "(monthly)")
	assert.Contains(t, out, "Target Net:         £750.00")

	multi, err := solver.SolveMany(context.Background(), ukTemplate(), []decimal.Decimal{d("750"), d("1500")})
	require.NoError(t, err)
	out = (&TableFormatter{}).FormatMulti(multi)
	assert.Contains(t, out, "GROSS-UP RESULTS")
	assert.Contains(t, out, "£1500.00")
	assert.Contains(t, out, "RECOMMENDATIONS")
	assert.Contains(t, out, "(1.33 per 1.00 kept)")

	js, err := FormatJSON(multi)
	require.NoError(t, err)
	assert.Contains(t, js, `"results"`)
	assert.Contains(t, js, `"success": true`)
}
