package breakeven

import (
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// SolveRequest asks for the annual gross salary that produces TargetNet
type SolveRequest struct {
	// Template supplies everything but the salary. Its cadence is the
	// period TargetNet is expressed in.
	Template  *domain.CalculateRequest `json:"-"`
	TargetNet decimal.Decimal          `json:"targetNet"`

	// Zero values fall back to the solver options
	MaxGross      decimal.Decimal `json:"maxGross,omitempty"`
	Tolerance     decimal.Decimal `json:"tolerance,omitempty"` // per-cadence net
	MaxIterations int             `json:"maxIterations,omitempty"`
}

// SolveResult contains the outcome of a gross-up run
type SolveResult struct {
	TargetNet       decimal.Decimal `json:"targetNet"`
	Success         bool            `json:"success"`
	Iterations      int             `json:"iterations"`
	ConvergenceInfo string          `json:"convergenceInfo"`

	Currency        string            `json:"currency"`
	Cadence         domain.PayCadence `json:"cadence"`
	GrossAnnual     decimal.Decimal   `json:"grossAnnual"`
	GrossPerCadence decimal.Decimal   `json:"grossPerCadence"`
	NetPerCadence   decimal.Decimal   `json:"netPerCadence"`

	// Response is the calculation at GrossAnnual
	Response *domain.CalculateResponse `json:"response,omitempty"`
}

// MultiResult holds gross-up results for several targets, in target order
type MultiResult struct {
	Results         []SolveResult `json:"results"`
	Recommendations []string      `json:"recommendations"`
}

// SolverOptions configures the solver algorithm
type SolverOptions struct {
	Tolerance     decimal.Decimal // Convergence tolerance on the per-cadence net
	MaxIterations int             // Maximum calculations per solve
	MaxGross      decimal.Decimal // Upper bound on the annual gross searched
	Parallelism   int             // Targets solved at once by SolveMany
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.RequireFromString("0.01"),
		MaxIterations: 200,
		MaxGross:      decimal.NewFromInt(100_000_000),
		Parallelism:   4,
	}
}

// Validate checks the request before any calculation runs
func (r *SolveRequest) Validate() error {
	if r.Template == nil {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "a template request is required",
			Cause:     domain.ErrInvalidInput,
		}
	}
	if !r.TargetNet.IsPositive() {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "target net pay must be positive",
			Cause:     domain.ErrInvalidInput,
		}
	}
	if r.Tolerance.IsNegative() {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "tolerance cannot be negative",
			Cause:     domain.ErrInvalidInput,
		}
	}
	if r.MaxIterations < 0 {
		return &BreakEvenError{
			Operation: "validate_request",
			Message:   "max iterations cannot be negative",
			Cause:     domain.ErrInvalidInput,
		}
	}
	return nil
}

// BreakEvenError represents errors from the gross-up solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
