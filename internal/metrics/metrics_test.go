package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementLoad(LoadOK)
	m.IncrementLoad(LoadNotFound)
	m.IncrementCalculation("US", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RulePackCacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RulePackCacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RulePackLoads.WithLabelValues(LoadNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("US", "ok")))
}

func TestMetrics_ObserveCalculation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCalculation("UK", time.Now().Add(-time.Millisecond))

	assert.Equal(t, 1, testutil.CollectAndCount(m.CalculationDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementCacheHit()
		m.IncrementCacheMiss()
		m.IncrementLoad(LoadInvalid)
		m.IncrementCalculation("US", "error")
		m.ObserveCalculation("US", time.Now())
	})
}
