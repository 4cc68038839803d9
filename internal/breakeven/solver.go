package breakeven

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

var two = decimal.NewFromInt(2)

// Calculator runs one take-home calculation
type Calculator interface {
	Calculate(ctx context.Context, req *domain.CalculateRequest) (*domain.CalculateResponse, error)
}

// Solver finds the gross salary behind a target take-home pay
type Solver struct {
	Calculator Calculator
	Options    SolverOptions
}

// NewSolver creates a new gross-up solver
func NewSolver(calc Calculator, options SolverOptions) *Solver {
	return &Solver{
		Calculator: calc,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calc Calculator) *Solver {
	return NewSolver(calc, DefaultSolverOptions())
}

// Solve bisects on the annual gross until the per-cadence net is within
// tolerance of the target. Net pay never exceeds gross, so the search starts
// at the annualized target and doubles the upper bound until it overshoots.
// A run that exhausts MaxIterations returns the closest gross found with
// Success false.
func (s *Solver) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}
	if req.MaxGross.IsZero() {
		req.MaxGross = s.Options.MaxGross
	}

	cadence := req.Template.Cadence.OrDefault()
	periods, err := cadence.PeriodsPerYear()
	if err != nil {
		return nil, &BreakEvenError{Operation: "solve", Message: "invalid template", Cause: err}
	}
	targetAnnual := req.TargetNet.Mul(decimal.NewFromInt(int64(periods)))

	iterations := 0
	var best *domain.CalculateResponse
	bestGross := decimal.Zero
	evaluate := func(gross decimal.Decimal) (decimal.Decimal, error) {
		if err := ctx.Err(); err != nil {
			return decimal.Zero, err
		}
		iterations++
		resp, err := s.Calculator.Calculate(ctx, req.Template.WithAnnualSalary(gross))
		if err != nil {
			return decimal.Zero, &BreakEvenError{
				Operation: "solve",
				Message:   fmt.Sprintf("failed to calculate gross %s", gross.StringFixed(2)),
				Cause:     err,
			}
		}
		if best == nil || resp.NetPerCadence.Sub(req.TargetNet).Abs().LessThan(best.NetPerCadence.Sub(req.TargetNet).Abs()) {
			best, bestGross = resp, gross
		}
		return resp.NetPerCadence, nil
	}

	low := targetAnnual
	net, err := evaluate(low)
	if err != nil {
		return nil, err
	}
	if net.Sub(req.TargetNet).Abs().LessThanOrEqual(req.Tolerance) {
		return s.result(req, best, bestGross, true, iterations, "Exact match at the lower bound"), nil
	}

	// Grow the bracket until the net at high reaches the target
	high := low.Mul(two)
	for {
		if high.GreaterThan(req.MaxGross) {
			return nil, &BreakEvenError{
				Operation: "solve",
				Message: fmt.Sprintf("target net %s is not reachable with a gross below %s",
					req.TargetNet.StringFixed(2), req.MaxGross.StringFixed(0)),
			}
		}
		net, err = evaluate(high)
		if err != nil {
			return nil, err
		}
		if net.GreaterThanOrEqual(req.TargetNet) {
			break
		}
		low, high = high, high.Mul(two)
	}

	for iterations < req.MaxIterations {
		mid := low.Add(high).Div(two)
		net, err := evaluate(mid)
		if err != nil {
			return nil, err
		}

		diff := net.Sub(req.TargetNet)
		if diff.Abs().LessThanOrEqual(req.Tolerance) {
			return s.result(req, best, bestGross, true, iterations,
				fmt.Sprintf("Converged within %s after %d calculations", req.Tolerance.String(), iterations)), nil
		}
		if diff.IsNegative() {
			low = mid
		} else {
			high = mid
		}
	}

	return s.result(req, best, bestGross, false, iterations,
		fmt.Sprintf("Did not converge within %d calculations", req.MaxIterations)), nil
}

func (s *Solver) result(req SolveRequest, resp *domain.CalculateResponse, gross decimal.Decimal, success bool, iterations int, info string) *SolveResult {
	return &SolveResult{
		TargetNet:       req.TargetNet,
		Success:         success,
		Iterations:      iterations,
		ConvergenceInfo: info,
		Currency:        resp.Currency,
		Cadence:         resp.Cadence,
		GrossAnnual:     gross,
		GrossPerCadence: resp.GrossPerCadence,
		NetPerCadence:   resp.NetPerCadence,
		Response:        resp,
	}
}
