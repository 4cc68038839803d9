package calculation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/metrics"
)

// RulePackProvider supplies rule packs by country and tax year
type RulePackProvider interface {
	Get(ctx context.Context, country domain.Country, taxYear int) (*domain.RulePack, error)
}

// Orchestrator turns a request into a per-cadence response: it validates,
// dispatches to a country calculator, fetches the rule pack and scales the
// annual result.
type Orchestrator struct {
	rules       RulePackProvider
	calculators *Registry
	logger      Logger
	metrics     *metrics.Metrics
	newID       func() string
}

type Option func(o *Orchestrator)

func WithLogger(logger Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithIDGenerator replaces the calculation id source
func WithIDGenerator(f func() string) Option {
	return func(o *Orchestrator) {
		o.newID = f
	}
}

// NewOrchestrator wires the rule-pack provider and calculator registry
func NewOrchestrator(rules RulePackProvider, calculators *Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		rules:       rules,
		calculators: calculators,
		newID:       NewCalculationID,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = orNop(o.logger)
	return o
}

// SetLogger replaces the logger; nil installs a NopLogger
func (o *Orchestrator) SetLogger(l Logger) {
	o.logger = orNop(l)
}

// Calculators exposes the dispatcher for health and country listings
func (o *Orchestrator) Calculators() *Registry {
	return o.calculators
}

// NewCalculationID returns "c_" followed by eight hex characters
func NewCalculationID() string {
	return "c_" + uuid.New().String()[:8]
}

// Calculate normalizes and validates req in place, then runs the matching
// calculator. Errors wrap domain.ErrInvalidInput, ErrUnsupportedCombination
// or the rule-pack provider's error.
func (o *Orchestrator) Calculate(ctx context.Context, req *domain.CalculateRequest) (resp *domain.CalculateResponse, err error) {
	start := time.Now()
	req.Normalize()
	country := string(req.Country)
	defer func() {
		o.metrics.IncrementCalculation(country, outcome(err))
		o.metrics.ObserveCalculation(country, start)
	}()

	if err = req.Validate(); err != nil {
		return nil, err
	}
	periods, err := req.Cadence.PeriodsPerYear()
	if err != nil {
		return nil, err
	}

	id := o.newID()
	o.logger.Infof("calculation %s started: %s %d cadence=%s", id, req.Country, req.TaxYear, req.Cadence.OrDefault())

	calc, err := o.calculators.Select(req.Country, req.TaxYear)
	if err != nil {
		o.logger.Warnf("calculation %s rejected: %v", id, err)
		return nil, err
	}

	rules, err := o.rules.Get(ctx, req.Country, req.TaxYear)
	if err != nil {
		o.logger.Errorf("calculation %s: rule pack unavailable: %v", id, err)
		return nil, fmt.Errorf("rule pack for %s %d: %w", req.Country, req.TaxYear, err)
	}

	result, err := calc.Calculate(req.ToInput(), rules)
	if err != nil {
		o.logger.Errorf("calculation %s failed: %v", id, err)
		return nil, fmt.Errorf("calculation %s: %w", id, err)
	}

	resp = ToCadence(result, req.Cadence.OrDefault(), periods)
	resp.CalculationID = id
	o.logger.Infof("calculation %s finished: gross=%s net=%s %s", id,
		result.GrossAnnual.StringFixed(2), result.NetAnnual.StringFixed(2), result.Currency)
	return resp, nil
}

// ToCadence divides the gross, net and every line item by periods.
// Explanations describe annual thresholds and are copied unchanged.
func ToCadence(result *domain.CalculationResult, cadence domain.PayCadence, periods int) *domain.CalculateResponse {
	div := decimal.NewFromInt(int64(periods))
	scale := func(d decimal.Decimal) decimal.Decimal {
		if periods == 1 {
			return d
		}
		return d.Div(div)
	}
	items := make([]domain.LineItem, len(result.LineItems))
	for i, li := range result.LineItems {
		items[i] = domain.LineItem{Name: li.Name, Amount: scale(li.Amount), Kind: li.Kind}
	}
	explanations := make([]domain.Explanation, len(result.Explanations))
	copy(explanations, result.Explanations)

	return &domain.CalculateResponse{
		RulePackVersion: result.RulePackVersion,
		Currency:        result.Currency,
		Cadence:         cadence,
		GrossPerCadence: scale(result.GrossAnnual),
		NetPerCadence:   scale(result.NetAnnual),
		LineItems:       items,
		Explanations:    explanations,
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrUnsupportedCombination):
		return "unsupported"
	default:
		return "error"
	}
}
