package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/metrics"
)

var (
	// ErrRulePackNotFound means no document exists for the requested key
	ErrRulePackNotFound = errors.New("rule pack not found")
	// ErrInvalidRulePack means the document exists but could not be decoded or validated
	ErrInvalidRulePack = errors.New("invalid rule pack")
	// ErrRulePackUnreadable means the backing store failed while reading the document
	ErrRulePackUnreadable = errors.New("rule pack unreadable")
)

const (
	DefaultCapacity = 100
	DefaultTTL      = time.Hour
)

// Registry loads rule packs by country and tax year and caches them.
// Concurrent misses for one key share a single load; failed loads are
// never cached. A load that overlaps InvalidateAll is returned to its
// callers but not cached.
type Registry struct {
	fsys    fs.FS
	cache   *Cache[string, *domain.RulePack]
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	generation uint64
	inflight   map[string]int

	capacity int
	ttl      time.Duration
}

type Option func(r *Registry)

// WithFS replaces the embedded rule packs, e.g. with os.DirFS(dir)
func WithFS(fsys fs.FS) Option {
	return func(r *Registry) {
		r.fsys = fsys
	}
}

func WithCapacity(n int) Option {
	return func(r *Registry) {
		r.capacity = n
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry constructs a Registry backed by the bundled rule packs unless
// WithFS says otherwise.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		fsys:     Bundled(),
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		inflight: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	r.cache = NewCache[string, *domain.RulePack](r.capacity, r.ttl)
	return r
}

// Key returns the cache key and document stem for a country and year
func Key(country domain.Country, taxYear int) string {
	return fmt.Sprintf("%s-%d", country, taxYear)
}

// ParseKey splits "US-2025" into its country and year
func ParseKey(key string) (domain.Country, int, error) {
	country, year, ok := strings.Cut(key, "-")
	if !ok {
		return "", 0, fmt.Errorf("rule pack key %q must look like US-2025", key)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", 0, fmt.Errorf("rule pack key %q has a non-numeric year", key)
	}
	return domain.ParseCountry(country), y, nil
}

// Get returns the rule pack for country and taxYear, loading it on a miss.
// The returned pack is shared and must not be modified.
func (r *Registry) Get(ctx context.Context, country domain.Country, taxYear int) (*domain.RulePack, error) {
	key := Key(country, taxYear)
	if rp, ok := r.cache.Get(key); ok {
		r.metrics.IncrementCacheHit()
		return rp, nil
	}
	r.metrics.IncrementCacheMiss()

	ch := r.group.DoChan(key, func() (any, error) {
		if rp, ok := r.cache.Get(key); ok {
			return rp, nil
		}
		gen := r.beginLoad(key)
		rp, err := r.Load(country, taxYear)
		r.endLoad(key, gen, rp, err)
		if err != nil {
			return nil, err
		}
		return rp, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.RulePack), nil
	}
}

func (r *Registry) beginLoad(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight[key]++
	return r.generation
}

// endLoad caches rp unless InvalidateAll ran since the matching beginLoad
func (r *Registry) endLoad(key string, gen uint64, rp *domain.RulePack, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight[key]--
	if r.inflight[key] <= 0 {
		delete(r.inflight, key)
	}
	if err != nil {
		return
	}
	if gen != r.generation {
		r.logger.Info("discarding rule pack loaded before invalidation", "key", key)
		return
	}
	r.cache.Put(key, rp)
}

// Load reads and validates a rule pack without touching the cache
func (r *Registry) Load(country domain.Country, taxYear int) (*domain.RulePack, error) {
	key := Key(country, taxYear)
	name := key + ".json"

	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.metrics.IncrementLoad(metrics.LoadNotFound)
			r.logger.Error("rule pack not found", "key", key)
			return nil, fmt.Errorf("%w: %s", ErrRulePackNotFound, key)
		}
		r.metrics.IncrementLoad(metrics.LoadReadError)
		r.logger.Error("rule pack read failed", "key", key, "error", err)
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrRulePackUnreadable, name, err)
	}

	rp, err := Decode(name, data)
	if err == nil && (domain.ParseCountry(rp.Metadata.Country) != country || rp.Metadata.TaxYear != taxYear) {
		err = fmt.Errorf("%w: %s declares %s-%d", ErrInvalidRulePack, name, rp.Metadata.Country, rp.Metadata.TaxYear)
	}
	if err != nil {
		r.metrics.IncrementLoad(metrics.LoadInvalid)
		r.logger.Error("rule pack rejected", "key", key, "error", err)
		return nil, err
	}

	r.metrics.IncrementLoad(metrics.LoadOK)
	r.logger.Info("rule pack loaded", "key", key, "version", rp.Metadata.Version)
	return rp, nil
}

// Warm loads the given keys concurrently so the first requests hit the cache
func (r *Registry) Warm(ctx context.Context, keys ...string) error {
	type target struct {
		country domain.Country
		year    int
	}
	targets := make([]target, 0, len(keys))
	for _, key := range keys {
		country, year, err := ParseKey(key)
		if err != nil {
			return err
		}
		targets = append(targets, target{country, year})
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			_, err := r.Get(ctx, t.country, t.year)
			return err
		})
	}
	return g.Wait()
}

// Available lists the keys of every rule-pack document in the backing FS
func (r *Registry) Available() ([]string, error) {
	matches, err := fs.Glob(r.fsys, "*.json")
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, strings.TrimSuffix(path.Base(m), ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// InvalidateAll empties the cache; subsequent lookups reload from storage.
// Loads already in flight are detached so later lookups start a fresh one.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	r.generation++
	for key := range r.inflight {
		r.group.Forget(key)
	}
	n := r.cache.Len()
	r.cache.Clear()
	r.mu.Unlock()
	r.logger.Info("rule pack cache invalidated", "entries", n)
}

// Len returns the number of cached rule packs
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Cached returns the keys of unexpired cached packs in sorted order
func (r *Registry) Cached() []string {
	keys := r.cache.Keys()
	sort.Strings(keys)
	return keys
}

// Decode parses a rule-pack document and validates it. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON.
func Decode(name string, data []byte) (*domain.RulePack, error) {
	var rp domain.RulePack
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidRulePack, name, err)
		}
	default:
		if err := json.Unmarshal(data, &rp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidRulePack, name, err)
		}
	}
	if err := rp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRulePack, name, err)
	}
	return &rp, nil
}
