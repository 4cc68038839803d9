package calculation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/metrics"
	"github.com/rgehrsitz/paycalc/internal/rules"
)

// TestLogger is a simple logger for testing
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...any) {
	tl.messages = append(tl.messages, "DEBUG: "+format)
}

func (tl *TestLogger) Infof(format string, args ...any) {
	tl.messages = append(tl.messages, "INFO: "+format)
}

func (tl *TestLogger) Warnf(format string, args ...any) {
	tl.messages = append(tl.messages, "WARN: "+format)
}

func (tl *TestLogger) Errorf(format string, args ...any) {
	tl.messages = append(tl.messages, "ERROR: "+format)
}

// stubRules counts lookups and returns a fixed pack or error
type stubRules struct {
	pack  *domain.RulePack
	err   error
	calls int
}

func (s *stubRules) Get(_ context.Context, _ domain.Country, _ int) (*domain.RulePack, error) {
	s.calls++
	return s.pack, s.err
}

func salary(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func usRequest(amount string, cadence domain.PayCadence) *domain.CalculateRequest {
	return &domain.CalculateRequest{
		Country:      domain.CountryUS,
		TaxYear:      2025,
		AnnualSalary: salary(amount),
		Cadence:      cadence,
		CountryOptions: &domain.CountryOptions{
			US: &domain.USOptions{State: "CA", FilingStatus: domain.FilingSingle},
		},
	}
}

func ukRequest(amount string, cadence domain.PayCadence) *domain.CalculateRequest {
	return &domain.CalculateRequest{
		Country:      domain.CountryUK,
		TaxYear:      2025,
		AnnualSalary: salary(amount),
		Cadence:      cadence,
	}
}

func newTestOrchestrator(opts ...Option) *Orchestrator {
	return NewOrchestrator(rules.NewRegistry(), DefaultRegistry(nil), opts...)
}

func TestOrchestrator_Annual(t *testing.T) {
	o := newTestOrchestrator()
	resp, err := o.Calculate(context.Background(), ukRequest("50000", ""))
	require.NoError(t, err)

	assert.Regexp(t, `^c_[0-9a-f]{8}$`, resp.CalculationID)
	assert.Equal(t, "UK-2025.4.0", resp.RulePackVersion)
	assert.Equal(t, "GBP", resp.Currency)
	assert.Equal(t, domain.CadenceAnnual, resp.Cadence)
	assertDecimal(t, "50000", resp.GrossPerCadence)
	assertDecimal(t, "39519.6", resp.NetPerCadence)
	assert.NotEmpty(t, resp.Explanations)
}

func TestOrchestrator_CadenceConversion(t *testing.T) {
	o := newTestOrchestrator()
	annual, err := o.Calculate(context.Background(), usRequest("100000", domain.CadenceAnnual))
	require.NoError(t, err)

	for cadence, periods := range map[domain.PayCadence]int64{
		domain.CadenceMonthly:  12,
		domain.CadenceBiweekly: 26,
		domain.CadenceWeekly:   52,
	} {
		t.Run(string(cadence), func(t *testing.T) {
			resp, err := o.Calculate(context.Background(), usRequest("100000", cadence))
			require.NoError(t, err)
			div := decimal.NewFromInt(periods)

			assert.Equal(t, cadence, resp.Cadence)
			assert.True(t, annual.GrossPerCadence.Div(div).Equal(resp.GrossPerCadence))
			assert.True(t, annual.NetPerCadence.Div(div).Equal(resp.NetPerCadence))
			require.Len(t, resp.LineItems, len(annual.LineItems))
			for i, li := range resp.LineItems {
				assert.Equal(t, annual.LineItems[i].Name, li.Name)
				assert.True(t, annual.LineItems[i].Amount.Div(div).Equal(li.Amount), li.Name)
			}
			assert.Equal(t, annual.Explanations, resp.Explanations, "explanations are not scaled")
		})
	}
}

func TestToCadence_AnnualIsIdentity(t *testing.T) {
	result := &domain.CalculationResult{GrossAnnual: d("1234.5678"), NetAnnual: d("1000.01"), Currency: "USD"}
	result.AddLineItem("Federal Income Tax", d("234.5578"), domain.KindTax)

	resp := ToCadence(result, domain.CadenceAnnual, 1)
	assert.Equal(t, "1234.5678", resp.GrossPerCadence.String())
	assert.Equal(t, "1000.01", resp.NetPerCadence.String())
	assert.Equal(t, "234.5578", resp.LineItems[0].Amount.String())

	monthly := ToCadence(result, domain.CadenceMonthly, 12)
	assertDecimal(t, "83.334", monthly.NetPerCadence.Round(3))
	assert.Equal(t, "1234.5678", result.GrossAnnual.String(), "input is not modified")
}

func TestOrchestrator_IdempotentExceptID(t *testing.T) {
	o := newTestOrchestrator()
	a, err := o.Calculate(context.Background(), ukRequest("80000", domain.CadenceMonthly))
	require.NoError(t, err)
	b, err := o.Calculate(context.Background(), ukRequest("80000", domain.CadenceMonthly))
	require.NoError(t, err)

	assert.NotEqual(t, a.CalculationID, b.CalculationID)
	assert.Equal(t, a.LineItems, b.LineItems)
	assert.Equal(t, a.Explanations, b.Explanations)
}

func TestOrchestrator_InvalidInput(t *testing.T) {
	stub := &stubRules{}
	o := NewOrchestrator(stub, DefaultRegistry(nil))

	req := usRequest("100000", "")
	req.CountryOptions = nil
	_, err := o.Calculate(context.Background(), req)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = o.Calculate(context.Background(), usRequest("100000", "HOURLY"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Zero(t, stub.calls)
}

func TestOrchestrator_UnsupportedBeforeRuleLookup(t *testing.T) {
	stub := &stubRules{err: rules.ErrRulePackNotFound}
	o := NewOrchestrator(stub, DefaultRegistry(nil))

	req := ukRequest("50000", "")
	req.TaxYear = 2024
	_, err := o.Calculate(context.Background(), req)
	assert.True(t, errors.Is(err, ErrUnsupportedCombination))

	req = ukRequest("50000", "")
	req.Country = "FR"
	_, err = o.Calculate(context.Background(), req)
	assert.True(t, errors.Is(err, ErrUnsupportedCombination))

	assert.Zero(t, stub.calls, "dispatch happens before the rule pack is fetched")
}

func TestOrchestrator_MissingRulePack(t *testing.T) {
	o := newTestOrchestrator()

	req := ukRequest("50000", "")
	req.TaxYear = 2026
	_, err := o.Calculate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rules.ErrRulePackNotFound))
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestOrchestrator_NormalizesRequest(t *testing.T) {
	o := newTestOrchestrator(WithIDGenerator(func() string { return "c_fixed" }))
	req := ukRequest("50000", "monthly")
	req.Country = "uk"

	resp, err := o.Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "c_fixed", resp.CalculationID)
	assert.Equal(t, domain.CadenceMonthly, resp.Cadence)
}

func TestOrchestrator_MetricsAndLogging(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	logger := &TestLogger{}
	o := newTestOrchestrator(WithMetrics(m), WithLogger(logger))

	_, err := o.Calculate(context.Background(), ukRequest("50000", ""))
	require.NoError(t, err)
	bad := ukRequest("50000", "")
	bad.TaxYear = 2000
	_, _ = o.Calculate(context.Background(), bad)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("UK", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("UK", "unsupported")))
	assert.Contains(t, logger.messages, "INFO: calculation %s started: %s %d cadence=%s")
	assert.Contains(t, logger.messages, "WARN: calculation %s rejected: %v")
}

func TestOrchestrator_SetLogger(t *testing.T) {
	o := newTestOrchestrator()
	custom := &TestLogger{}
	o.SetLogger(custom)
	assert.Equal(t, custom, o.logger)

	o.SetLogger(nil)
	assert.IsType(t, NopLogger{}, o.logger)
	assert.Equal(t, 2, o.Calculators().Count())
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	l.Debugf("hidden %d", 1)
	l.Infof("loaded %s", "US-2025")
	l.Warnf("missing %q", "WA")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "loaded US-2025")
	assert.True(t, strings.Contains(out, `level=WARN`))
}
