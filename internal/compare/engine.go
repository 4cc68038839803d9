package compare

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// Calculator runs one take-home calculation
type Calculator interface {
	Calculate(ctx context.Context, req *domain.CalculateRequest) (*domain.CalculateResponse, error)
}

// CompareEngine orchestrates scenario comparison
type CompareEngine struct {
	Calculator        Calculator
	MetricsCalculator *MetricsCalculator
	// Concurrency bounds the alternatives calculated at once; <= 0 is unbounded
	Concurrency int
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calc Calculator) *CompareEngine {
	return &CompareEngine{
		Calculator:        calc,
		MetricsCalculator: NewMetricsCalculator(),
		Concurrency:       4,
	}
}

// CompareScenarios calculates base and every alternative, keeping the order
// of alternatives. The first failing scenario aborts the comparison.
func (ce *CompareEngine) CompareScenarios(ctx context.Context, base Scenario, alternatives []Scenario) (*ComparisonSet, error) {
	baseResult, err := ce.run(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base scenario: %w", err)
	}

	results := make([]ComparisonResult, len(alternatives))
	g, gctx := errgroup.WithContext(ctx)
	if ce.Concurrency > 0 {
		g.SetLimit(ce.Concurrency)
	}
	for i, alt := range alternatives {
		g.Go(func() error {
			r, err := ce.run(gctx, alt)
			if err != nil {
				return fmt.Errorf("failed to calculate scenario %s: %w", alt.Name, err)
			}
			results[i] = ce.MetricsCalculator.CalculateComparison(r, baseResult)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   base.Name,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet, nil
}

func (ce *CompareEngine) run(ctx context.Context, s Scenario) (ComparisonResult, error) {
	if s.Request == nil {
		return ComparisonResult{}, fmt.Errorf("%w: scenario %s has no request", domain.ErrInvalidInput, s.Name)
	}
	resp, err := ce.Calculator.Calculate(ctx, s.Request.Clone())
	if err != nil {
		return ComparisonResult{}, err
	}
	result, err := ce.MetricsCalculator.CalculateMetrics(s.Name, resp)
	if err != nil {
		return ComparisonResult{}, err
	}
	result.Description = s.Description
	return result, nil
}

// SalaryVariants returns one scenario per salary, otherwise identical to base
func SalaryVariants(base Scenario, salaries []decimal.Decimal) []Scenario {
	out := make([]Scenario, 0, len(salaries))
	for _, s := range salaries {
		out = append(out, Scenario{
			Name:        fmt.Sprintf("%s @ %s", base.Name, s.StringFixed(0)),
			Description: "Annual salary " + s.StringFixed(2),
			Request:     base.Request.WithAnnualSalary(s),
		})
	}
	return out
}

// PensionVariants returns one scenario per employee pension rate (0.05 = 5%)
func PensionVariants(base Scenario, rates []decimal.Decimal) []Scenario {
	out := make([]Scenario, 0, len(rates))
	for _, r := range rates {
		req := base.Request.Clone()
		if req.Pretax == nil {
			req.Pretax = &domain.Pretax{}
		}
		req.Pretax.PensionPercent = r
		pct := r.Mul(hundred).StringFixed(1)
		out = append(out, Scenario{
			Name:        fmt.Sprintf("%s pension %s%%", base.Name, pct),
			Description: "Employee pension contribution " + pct + "%",
			Request:     req,
		})
	}
	return out
}
