// Package querycache is the server-side query cache that sits between the
// HTTP handlers and the resource clients. Identical concurrent reads share
// one backend fetch, aged entries are served while they refresh in the
// background, and mutations invalidate every cached query of the resources
// they touch.
package querycache

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"
	"golang.org/x/sync/singleflight"
)

type Options struct {
	// StaleTime is how long a value is served without triggering a refresh.
	StaleTime time.Duration
	// GCTime is how long an unread entry is kept.
	GCTime time.Duration
	// Retry is the number of retries after a failed fetch.
	Retry      int
	RetryDelay func(attempt int) time.Duration
	// FetchTimeout bounds fetches that outlive the request that started them.
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// EntryState is the observable state of one cached query.
type EntryState struct {
	Loading     bool      `json:"loading"`
	HasData     bool      `json:"has_data"`
	Err         error     `json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
	Invalidated bool      `json:"invalidated"`
}

type entry struct {
	value       any
	hasData     bool
	err         error
	updatedAt   time.Time
	lastRead    time.Time
	invalidated bool
	fetching    int
}

type Cache struct {
	opts Options
	now  func() time.Time

	mu          sync.Mutex
	entries     map[Key]*entry
	generations map[string]uint64
	listeners   []func(resource string)

	flights    singleflight.Group
	background conc.WaitGroup
}

func New(opts Options) *Cache {
	if opts.RetryDelay == nil {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	if opts.GCTime <= 0 {
		opts.GCTime = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Cache{
		opts:        opts,
		now:         time.Now,
		entries:     make(map[Key]*entry),
		generations: make(map[string]uint64),
	}
}

// OnInvalidate registers fn to run after every local invalidation.
func (c *Cache) OnInvalidate(fn func(resource string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// QueryOption overrides cache defaults for one query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	staleTime time.Duration
	retry     int
}

// WithStaleTime overrides the stale time; zero makes every read refresh.
func WithStaleTime(d time.Duration) QueryOption {
	return func(qc *queryConfig) { qc.staleTime = d }
}

// WithRetry overrides the retry count; zero disables retries.
func WithRetry(n int) QueryOption {
	return func(qc *queryConfig) { qc.retry = n }
}

func (c *Cache) config(opts []QueryOption) queryConfig {
	qc := queryConfig{staleTime: c.opts.StaleTime, retry: c.opts.Retry}
	for _, opt := range opts {
		opt(&qc)
	}
	return qc
}

type fetchFunc func(ctx context.Context) (any, error)

// Fetch returns the cached value for key, fetching it with fn when there is
// none or it was invalidated. A value older than the stale time is returned
// immediately and refreshed in the background.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error), opts ...QueryOption) (T, error) {
	var zero T
	v, err := c.fetch(ctx, key, erase(fn), c.config(opts))
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: %s holds %T", key, v)
	}
	return out, nil
}

// Prefetch warms key in the background unless a fresh value is cached.
func Prefetch[T any](c *Cache, key Key, fn func(ctx context.Context) (T, error), opts ...QueryOption) {
	c.prefetch(key, erase(fn), c.config(opts))
}

func erase[T any](fn func(ctx context.Context) (T, error)) fetchFunc {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

func (c *Cache) fetch(ctx context.Context, key Key, fn fetchFunc, qc queryConfig) (any, error) {
	now := c.now()

	c.mu.Lock()
	e := c.entries[key]
	if e != nil {
		e.lastRead = now
	}
	if e != nil && e.hasData && !e.invalidated {
		value := e.value
		fresh := now.Sub(e.updatedAt) < qc.staleTime
		generation := c.generations[key.Resource]
		c.mu.Unlock()

		if fresh {
			lookupsTotal.WithLabelValues(key.Resource, "fresh").Inc()
		} else {
			lookupsTotal.WithLabelValues(key.Resource, "stale").Inc()
			c.refresh(key, generation, fn, qc)
		}
		return value, nil
	}
	generation := c.generations[key.Resource]
	c.mu.Unlock()

	lookupsTotal.WithLabelValues(key.Resource, "miss").Inc()
	return c.load(ctx, key, generation, fn, qc)
}

func (c *Cache) prefetch(key Key, fn fetchFunc, qc queryConfig) {
	c.mu.Lock()
	e := c.entries[key]
	fresh := e != nil && e.hasData && !e.invalidated && c.now().Sub(e.updatedAt) < qc.staleTime
	generation := c.generations[key.Resource]
	c.mu.Unlock()

	if fresh {
		return
	}
	c.refresh(key, generation, fn, qc)
}

func (c *Cache) refresh(key Key, generation uint64, fn fetchFunc, qc queryConfig) {
	c.background.Go(func() {
		if _, err := c.load(context.Background(), key, generation, fn, qc); err != nil {
			c.opts.Logger.Debug("background fetch failed", "key", key.String(), "error", err)
		}
	})
}

// load runs fn through singleflight so concurrent loads of the same key and
// generation share one backend call. The fetch is detached from ctx so a
// caller that gives up does not fail the others waiting on it.
func (c *Cache) load(ctx context.Context, key Key, generation uint64, fn fetchFunc, qc queryConfig) (any, error) {
	ch := c.flights.DoChan(key.flight(generation), func() (any, error) {
		c.track(key, 1)
		defer c.track(key, -1)

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.FetchTimeout)
		defer cancel()

		var value any
		err := retryWithBackoff(fctx, func(ctx context.Context) error {
			v, err := fn(ctx)
			if err != nil {
				return err
			}
			value = v
			return nil
		}, qc.retry, c.opts.RetryDelay)

		c.store(key, generation, value, err)
		if err != nil {
			fetchesTotal.WithLabelValues(key.Resource, "error").Inc()
			return nil, err
		}
		fetchesTotal.WithLabelValues(key.Resource, "ok").Inc()
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			sharedTotal.WithLabelValues(key.Resource).Inc()
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) track(key Key, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	e.fetching += delta
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{lastRead: c.now()}
		c.entries[key] = e
		entriesGauge.Inc()
	}
	return e
}

// store records a fetch result. A result from a fetch that started before
// the resource was invalidated is kept but stays invalidated.
func (c *Cache) store(key Key, generation uint64, value any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	if err != nil {
		e.err = err
		return
	}
	e.value = value
	e.hasData = true
	e.err = nil
	e.updatedAt = c.now()
	e.invalidated = c.generations[key.Resource] != generation
}

// Invalidate marks every cached query of resource for refetch and notifies
// listeners. In-flight fetches that started earlier cannot revalidate it.
func (c *Cache) Invalidate(resource string) {
	listeners := c.invalidate(resource)
	invalidationsTotal.WithLabelValues(resource, "local").Inc()
	for _, fn := range listeners {
		fn(resource)
	}
}

// ApplyRemoteInvalidation invalidates resource without notifying listeners.
// It is used for invalidations received from other replicas.
func (c *Cache) ApplyRemoteInvalidation(resource string) {
	c.invalidate(resource)
	invalidationsTotal.WithLabelValues(resource, "remote").Inc()
}

func (c *Cache) invalidate(resource string) []func(string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[resource]++
	for key, e := range c.entries {
		if key.Resource == resource {
			e.invalidated = true
		}
	}
	return slices.Clone(c.listeners)
}

// State reports the state of key without triggering a fetch.
func (c *Cache) State(key Key) EntryState {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return EntryState{}
	}
	return EntryState{
		Loading:     e.fetching > 0,
		HasData:     e.hasData,
		Err:         e.err,
		UpdatedAt:   e.updatedAt,
		Invalidated: e.invalidated,
	}
}

// Len returns the number of entries held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Wait blocks until background refreshes and prefetches have finished.
func (c *Cache) Wait() {
	c.background.Wait()
}

// Sweep drops entries nobody read within GCTime. Entries being fetched are
// kept.
func (c *Cache) Sweep() int {
	cutoff := c.now().Add(-c.opts.GCTime)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.fetching == 0 && e.lastRead.Before(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	entriesGauge.Sub(float64(removed))
	return removed
}

// StartJanitor sweeps on a fixed interval until the returned stop function
// is called.
func (c *Cache) StartJanitor(interval time.Duration) (stop func(), err error) {
	scheduler := cron.New()
	_, err = scheduler.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if n := c.Sweep(); n > 0 {
			c.opts.Logger.Debug("query cache swept", "removed", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule cache sweep: %w", err)
	}
	scheduler.Start()
	return func() {
		<-scheduler.Stop().Done()
	}, nil
}
