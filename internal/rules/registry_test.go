package rules

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/metrics"
)

const ukPack = `{
  "metadata": {"country": "UK", "taxYear": 2026, "version": "UK-2026.1.0"},
  "incomeTax": {"personalAllowance": 12570, "taperStart": 100000, "taperRate": 0.5,
    "bands": [{"upTo": 37700, "rate": 0.2}, {"upTo": null, "rate": 0.4}]},
  "ni": {"primaryThresholdAnnual": 12570, "upperEarningsLimit": 50270, "mainRate": 0.08, "upperRate": 0.02}
}`

// countingFS counts successful opens so tests can assert how many loads ran
type countingFS struct {
	fs.FS
	opens atomic.Int32
	delay time.Duration
}

func (c *countingFS) Open(name string) (fs.File, error) {
	time.Sleep(c.delay)
	f, err := c.FS.Open(name)
	if err == nil {
		c.opens.Add(1)
	}
	return f, err
}

func TestRegistry_BundledPacks(t *testing.T) {
	r := NewRegistry()

	us, err := r.Get(context.Background(), domain.CountryUS, 2025)
	require.NoError(t, err)
	assert.Equal(t, "US-2025.10.0", us.Metadata.Version)
	require.NotNil(t, us.FICA)
	assert.True(t, us.FICA.SSWageBase.Equal(decimal.NewFromInt(176100)))
	assert.Empty(t, us.States["TX"].Brackets)
	assert.True(t, us.Federal.Brackets[len(us.Federal.Brackets)-1].Unbounded())

	uk, err := r.Get(context.Background(), domain.CountryUK, 2025)
	require.NoError(t, err)
	assert.Equal(t, "UK-2025.4.0", uk.Metadata.Version)
	assert.Contains(t, uk.StudentLoan, "plan2")

	keys, err := r.Available()
	require.NoError(t, err)
	assert.Equal(t, []string{"UK-2025", "US-2025"}, keys)
}

func TestRegistry_CachesSuccessfulLoads(t *testing.T) {
	fsys := &countingFS{FS: fstest.MapFS{"UK-2026.json": {Data: []byte(ukPack)}}}
	m := metrics.New(prometheus.NewRegistry())
	r := NewRegistry(WithFS(fsys), WithMetrics(m))

	first, err := r.Get(context.Background(), domain.CountryUK, 2026)
	require.NoError(t, err)
	second, err := r.Get(context.Background(), domain.CountryUK, 2026)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), fsys.opens.Load())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RulePackCacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RulePackCacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RulePackLoads.WithLabelValues(metrics.LoadOK)))
}

func TestRegistry_NotFoundIsNotCached(t *testing.T) {
	r := NewRegistry(WithFS(fstest.MapFS{}))

	_, err := r.Get(context.Background(), domain.CountryUS, 2030)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRulePackNotFound))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_InvalidPackIsNotCached(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"metadata": `},
		{"missing version", `{"metadata": {"country": "UK", "taxYear": 2026},
			"incomeTax": {"bands": []}, "ni": {}}`},
		{"decreasing bands", `{"metadata": {"country": "UK", "taxYear": 2026, "version": "x"},
			"incomeTax": {"bands": [{"upTo": 500, "rate": 0.2}, {"upTo": 100, "rate": 0.4}]}, "ni": {}}`},
		{"wrong year inside document", `{"metadata": {"country": "UK", "taxYear": 2025, "version": "x"},
			"incomeTax": {"bands": []}, "ni": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"UK-2026.json": {Data: []byte(tt.data)}}
			r := NewRegistry(WithFS(fsys))

			_, err := r.Get(context.Background(), domain.CountryUK, 2026)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRulePack), "got %v", err)
			assert.Equal(t, 0, r.Len())

			// fixing the document is picked up on the next request
			fsys["UK-2026.json"] = &fstest.MapFile{Data: []byte(ukPack)}
			_, err = r.Get(context.Background(), domain.CountryUK, 2026)
			assert.NoError(t, err)
		})
	}
}

func TestRegistry_ConcurrentMissLoadsOnce(t *testing.T) {
	fsys := &countingFS{
		FS:    fstest.MapFS{"UK-2026.json": {Data: []byte(ukPack)}},
		delay: 20 * time.Millisecond,
	}
	r := NewRegistry(WithFS(fsys))

	var wg sync.WaitGroup
	results := make([]*domain.RulePack, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rp, err := r.Get(context.Background(), domain.CountryUK, 2026)
			assert.NoError(t, err)
			results[i] = rp
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), fsys.opens.Load())
	for _, rp := range results {
		assert.Same(t, results[0], rp)
	}
}

func TestRegistry_ExpiredEntryReloads(t *testing.T) {
	fsys := &countingFS{FS: fstest.MapFS{"UK-2026.json": {Data: []byte(ukPack)}}}
	r := NewRegistry(WithFS(fsys), WithTTL(time.Hour))
	clock := &fakeClock{t: time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)}
	r.cache.now = clock.Now

	_, err := r.Get(context.Background(), domain.CountryUK, 2026)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	_, err = r.Get(context.Background(), domain.CountryUK, 2026)
	require.NoError(t, err)

	assert.Equal(t, int32(2), fsys.opens.Load())
}

func TestRegistry_InvalidateAll(t *testing.T) {
	fsys := &countingFS{FS: Bundled()}
	r := NewRegistry(WithFS(fsys))
	ctx := context.Background()

	require.NoError(t, r.Warm(ctx, "US-2025", "UK-2025"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"UK-2025", "US-2025"}, r.Cached())

	r.InvalidateAll()
	assert.Equal(t, 0, r.Len())

	_, err := r.Get(ctx, domain.CountryUS, 2025)
	require.NoError(t, err)
	assert.Equal(t, int32(3), fsys.opens.Load())
}

func TestRegistry_InvalidateAllDuringLoad(t *testing.T) {
	fsys := &countingFS{
		FS:    fstest.MapFS{"UK-2026.json": {Data: []byte(ukPack)}},
		delay: 100 * time.Millisecond,
	}
	r := NewRegistry(WithFS(fsys))
	ctx := context.Background()

	var stale *domain.RulePack
	done := make(chan struct{})
	go func() {
		defer close(done)
		rp, err := r.Get(ctx, domain.CountryUK, 2026)
		assert.NoError(t, err)
		stale = rp
	}()

	time.Sleep(20 * time.Millisecond)
	r.InvalidateAll()

	// a lookup after invalidation must not join the earlier load
	fresh, err := r.Get(ctx, domain.CountryUK, 2026)
	require.NoError(t, err)
	<-done

	require.NotNil(t, stale)
	assert.NotSame(t, stale, fresh)
	assert.Equal(t, int32(2), fsys.opens.Load())
	assert.Equal(t, []string{"UK-2026"}, r.Cached())

	cached, err := r.Get(ctx, domain.CountryUK, 2026)
	require.NoError(t, err)
	assert.Same(t, fresh, cached, "only the load started after invalidation is cached")
}

func TestRegistry_LoadDiscardedAfterInvalidate(t *testing.T) {
	fsys := &countingFS{
		FS:    fstest.MapFS{"UK-2026.json": {Data: []byte(ukPack)}},
		delay: 100 * time.Millisecond,
	}
	r := NewRegistry(WithFS(fsys))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := r.Get(context.Background(), domain.CountryUK, 2026)
		assert.NoError(t, err)
	}()

	time.Sleep(20 * time.Millisecond)
	r.InvalidateAll()
	<-done

	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Cached())
}

func TestRegistry_CachedSkipsExpired(t *testing.T) {
	r := NewRegistry(WithTTL(time.Hour))
	clock := &fakeClock{t: time.Date(2025, 4, 6, 0, 0, 0, 0, time.UTC)}
	r.cache.now = clock.Now
	ctx := context.Background()

	require.NoError(t, r.Warm(ctx, "US-2025", "UK-2025"))
	assert.Equal(t, []string{"UK-2025", "US-2025"}, r.Cached())

	clock.Advance(2 * time.Hour)
	assert.Empty(t, r.Cached())
}

// failingFS fails every open with a permission error
type failingFS struct{}

func (failingFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
}

func TestRegistry_ReadError(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := NewRegistry(WithFS(failingFS{}), WithMetrics(m))

	_, err := r.Get(context.Background(), domain.CountryUK, 2025)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRulePackUnreadable), "got %v", err)
	assert.False(t, errors.Is(err, ErrRulePackNotFound))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RulePackLoads.WithLabelValues(metrics.LoadReadError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RulePackLoads.WithLabelValues(metrics.LoadNotFound)))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_CapacityEvicts(t *testing.T) {
	r := NewRegistry(WithCapacity(1))
	ctx := context.Background()

	_, err := r.Get(ctx, domain.CountryUS, 2025)
	require.NoError(t, err)
	_, err = r.Get(ctx, domain.CountryUK, 2025)
	require.NoError(t, err)

	assert.Equal(t, []string{"UK-2025"}, r.Cached())
}

func TestRegistry_ContextCancelled(t *testing.T) {
	fsys := &countingFS{FS: Bundled(), delay: 50 * time.Millisecond}
	r := NewRegistry(WithFS(fsys))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Get(ctx, domain.CountryUS, 2025)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseKey(t *testing.T) {
	country, year, err := ParseKey("us-2025")
	require.NoError(t, err)
	assert.Equal(t, domain.CountryUS, country)
	assert.Equal(t, 2025, year)

	_, _, err = ParseKey("US2025")
	assert.Error(t, err)
	_, _, err = ParseKey("US-next")
	assert.Error(t, err)
}

func TestDecode_YAML(t *testing.T) {
	doc := `
metadata:
  country: UK
  taxYear: 2026
  version: UK-2026.1.0
incomeTax:
  personalAllowance: 12570
  taperStart: 100000
  taperRate: 0.5
  bands:
    - upTo: 37700
      rate: 0.2
    - upTo: null
      rate: 0.4
ni:
  primaryThresholdAnnual: 12570
  upperEarningsLimit: 50270
  mainRate: 0.08
  upperRate: 0.02
`
	rp, err := Decode("uk.yaml", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "UK-2026.1.0", rp.Metadata.Version)
	require.Len(t, rp.IncomeTax.Bands, 2)
	assert.True(t, rp.IncomeTax.Bands[1].Unbounded())
	assert.Equal(t, "0.08", rp.NI.MainRate.String())
}
