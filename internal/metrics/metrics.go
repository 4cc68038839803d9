package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load outcomes reported by the rule-pack store.
const (
	LoadOK        = "ok"
	LoadNotFound  = "not_found"
	LoadInvalid   = "invalid"
	LoadReadError = "read_error"
)

// Metrics provides observability for the calculation engine and the
// rule-pack store. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RulePackCacheHits   prometheus.Counter
	RulePackCacheMisses prometheus.Counter
	RulePackLoads       *prometheus.CounterVec
	Calculations        *prometheus.CounterVec
	CalculationDuration *prometheus.HistogramVec
}

// New registers every paycalc metric with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RulePackCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "paycalc_rulepack_cache_hits_total",
			Help: "Rule-pack lookups served from the cache",
		}),
		RulePackCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "paycalc_rulepack_cache_misses_total",
			Help: "Rule-pack lookups that required a load",
		}),
		RulePackLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paycalc_rulepack_loads_total",
			Help: "Rule-pack document loads by outcome",
		}, []string{"outcome"}),
		Calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paycalc_calculations_total",
			Help: "Calculations by country and outcome",
		}, []string{"country", "outcome"}),
		CalculationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paycalc_calculation_duration_seconds",
			Help:    "Duration of a full calculation including rule-pack lookup",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"country"}),
	}
}

// IncrementCacheHit records a rule-pack cache hit.
func (m *Metrics) IncrementCacheHit() {
	if m == nil {
		return
	}
	m.RulePackCacheHits.Inc()
}

// IncrementCacheMiss records a rule-pack cache miss.
func (m *Metrics) IncrementCacheMiss() {
	if m == nil {
		return
	}
	m.RulePackCacheMisses.Inc()
}

// IncrementLoad records a rule-pack load with one of the Load* outcomes.
func (m *Metrics) IncrementLoad(outcome string) {
	if m == nil {
		return
	}
	m.RulePackLoads.WithLabelValues(outcome).Inc()
}

// IncrementCalculation records a finished calculation.
func (m *Metrics) IncrementCalculation(country, outcome string) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(country, outcome).Inc()
}

// ObserveCalculation records the duration of a calculation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCalculation(country string, start time.Time) {
	if m == nil {
		return
	}
	m.CalculationDuration.WithLabelValues(country).Observe(time.Since(start).Seconds())
}
