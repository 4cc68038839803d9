package calculation

import (
	"fmt"
	"sort"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// ReferenceTaxYear is the year SupportedCountries probes with
const ReferenceTaxYear = 2025

type registryKey struct {
	country domain.Country
	minYear int
}

// Registry is the closed set of country calculators, keyed by country and
// the first tax year each handles
type Registry struct {
	calculators map[registryKey]CountryCalculator
}

// NewRegistry registers calculators. Registering two calculators for the same
// country and first year is a programming error and panics.
func NewRegistry(calculators ...CountryCalculator) *Registry {
	r := &Registry{calculators: make(map[registryKey]CountryCalculator, len(calculators))}
	for _, c := range calculators {
		key := registryKey{c.Country(), c.MinTaxYear()}
		if _, dup := r.calculators[key]; dup {
			panic(fmt.Sprintf("calculation: duplicate calculator for %s from %d", key.country, key.minYear))
		}
		r.calculators[key] = c
	}
	return r
}

// DefaultRegistry returns the US and UK calculators
func DefaultRegistry(logger Logger) *Registry {
	return NewRegistry(NewUSCalculator(logger), NewUKCalculator(logger))
}

// Select returns the calculator for country whose first supported year is the
// latest one not after taxYear
func (r *Registry) Select(country domain.Country, taxYear int) (CountryCalculator, error) {
	var (
		best    CountryCalculator
		bestMin int
	)
	for key, c := range r.calculators {
		if key.country != country || key.minYear > taxYear {
			continue
		}
		if best == nil || key.minYear > bestMin {
			best, bestMin = c, key.minYear
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no calculator available for %s %d", ErrUnsupportedCombination, country, taxYear)
	}
	return best, nil
}

// Supports reports whether Select would succeed
func (r *Registry) Supports(country domain.Country, taxYear int) bool {
	_, err := r.Select(country, taxYear)
	return err == nil
}

// SupportedCountries lists countries with a calculator for ReferenceTaxYear, sorted
func (r *Registry) SupportedCountries() []domain.Country {
	seen := make(map[domain.Country]bool)
	var out []domain.Country
	for key := range r.calculators {
		if seen[key.country] || !r.Supports(key.country, ReferenceTaxYear) {
			continue
		}
		seen[key.country] = true
		out = append(out, key.country)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Count returns the number of registered calculators
func (r *Registry) Count() int {
	return len(r.calculators)
}
