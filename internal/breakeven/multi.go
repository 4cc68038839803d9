package breakeven

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/output"
)

// SolveMany solves every target against the same template. Results follow
// the sorted order of targets.
func (s *Solver) SolveMany(ctx context.Context, template *domain.CalculateRequest, targets []decimal.Decimal) (*MultiResult, error) {
	if len(targets) == 0 {
		return nil, &BreakEvenError{
			Operation: "solve_many",
			Message:   "at least one target is required",
			Cause:     domain.ErrInvalidInput,
		}
	}

	sorted := slices.Clone(targets)
	slices.SortFunc(sorted, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	results := make([]SolveResult, len(sorted))
	g, gctx := errgroup.WithContext(ctx)
	if s.Options.Parallelism > 0 {
		g.SetLimit(s.Options.Parallelism)
	}
	for i, target := range sorted {
		g.Go(func() error {
			res, err := s.Solve(gctx, SolveRequest{Template: template, TargetNet: target})
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &MultiResult{
		Results:         results,
		Recommendations: generateRecommendations(results),
	}, nil
}

// generateRecommendations reports the gross needed for each step up in net
func generateRecommendations(results []SolveResult) []string {
	recommendations := []string{}
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		netStep := cur.NetPerCadence.Sub(prev.NetPerCadence)
		if !netStep.IsPositive() {
			continue
		}
		grossStep := cur.GrossPerCadence.Sub(prev.GrossPerCadence)
		recommendations = append(recommendations, fmt.Sprintf(
			"Raising take-home from %s to %s needs %s more gross (%s per 1.00 kept)",
			output.FormatCurrency(prev.TargetNet, cur.Currency),
			output.FormatCurrency(cur.TargetNet, cur.Currency),
			output.FormatCurrency(grossStep, cur.Currency),
			grossStep.Div(netStep).StringFixed(2)))
	}
	return recommendations
}
