package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(opts Options) (*Cache, *fakeClock) {
	opts.RetryDelay = func(int) time.Duration { return 0 }
	c := New(opts)
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c.now = clock.Now
	return c, clock
}

func counter(calls *atomic.Int32) func(context.Context) (int, error) {
	return func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}
}

func TestFetch_DeduplicatesConcurrentReads(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	key := ListKey("bookings", params.Filter{}, params.Sort{Field: "created_at", Direction: params.Asc}, 1)

	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "page", nil
	}

	const readers = 10
	var ready, done sync.WaitGroup
	results := make(chan string, readers)
	for i := 0; i < readers; i++ {
		ready.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			ready.Done()
			v, err := Fetch(context.Background(), c, key, fn)
			assert.NoError(t, err)
			results <- v
		}()
	}
	ready.Wait()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()
	close(results)

	assert.Equal(t, int32(1), calls.Load())
	for v := range results {
		assert.Equal(t, "page", v)
	}
}

func TestFetch_FreshValueIsServedFromCache(t *testing.T) {
	c, clock := newTestCache(Options{StaleTime: time.Minute})
	key := DetailKey("plans", 3)
	var calls atomic.Int32

	v, err := Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(30 * time.Second)
	v, err = Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, 1, v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_StaleValueIsServedWhileRefreshing(t *testing.T) {
	c, clock := newTestCache(Options{StaleTime: time.Minute})
	key := DetailKey("plans", 3)
	var calls atomic.Int32

	_, err := Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	v, err := Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, v, "stale value is returned immediately")

	c.Wait()
	assert.Equal(t, int32(2), calls.Load())

	v, err = Fetch(context.Background(), c, key, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestFetch_ZeroStaleTimeAlwaysRefreshes(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	key := ListKey("bookings", params.Filter{}, params.Sort{}, 1)
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		_, err := Fetch(context.Background(), c, key, counter(&calls), WithStaleTime(0))
		require.NoError(t, err)
		c.Wait()
	}

	assert.Equal(t, int32(3), calls.Load())
}

func TestInvalidate_ForcesBlockingRefetch(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	list := ListKey("bookings", params.Filter{Field: "status", Value: "confirmed"}, params.Sort{}, 2)
	detail := DetailKey("bookings", 7)
	other := ScopeKey("services", "all")
	var calls atomic.Int32

	for _, k := range []Key{list, detail, other} {
		_, err := Fetch(context.Background(), c, k, counter(&calls))
		require.NoError(t, err)
	}

	c.Invalidate("bookings")

	assert.True(t, c.State(list).Invalidated)
	assert.True(t, c.State(detail).Invalidated)
	assert.False(t, c.State(other).Invalidated)

	v, err := Fetch(context.Background(), c, list, counter(&calls))
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.False(t, c.State(list).Invalidated)
}

func TestInvalidate_DuringFetchKeepsEntryInvalidated(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	key := DetailKey("bookings", 1)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	fn := func(context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
			<-release
		}
		return int(n), nil
	}

	done := make(chan int)
	go func() {
		v, _ := Fetch(context.Background(), c, key, fn)
		done <- v
	}()

	<-started
	assert.True(t, c.State(key).Loading)
	c.Invalidate("bookings")
	close(release)

	assert.Equal(t, 1, <-done)
	assert.True(t, c.State(key).Invalidated, "result of a pre-invalidation fetch must not look fresh")

	v, err := Fetch(context.Background(), c, key, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestOnInvalidate_ListenersRunForLocalOnly(t *testing.T) {
	c, _ := newTestCache(Options{})
	var got []string
	c.OnInvalidate(func(resource string) { got = append(got, resource) })

	c.Invalidate("plans")
	c.ApplyRemoteInvalidation("users")

	assert.Equal(t, []string{"plans"}, got)
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	c, _ := newTestCache(Options{Retry: 3})
	var calls atomic.Int32
	fn := func(context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("connection reset")
		}
		return "ok", nil
	}

	v, err := Fetch(context.Background(), c, ScopeKey("contact", "detail"), fn)

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_ReturnsLastErrorAfterRetries(t *testing.T) {
	c, _ := newTestCache(Options{Retry: 2})
	var calls atomic.Int32
	want := apperrors.Remote("Plans could not be loaded", errors.New("503"))
	fn := func(context.Context) (int, error) {
		calls.Add(1)
		return 0, want
	}

	_, err := Fetch(context.Background(), c, ScopeKey("plans", "all"), fn)

	assert.Same(t, want, err)
	assert.Equal(t, int32(3), calls.Load())
	state := c.State(ScopeKey("plans", "all"))
	assert.False(t, state.HasData)
	assert.Same(t, want, state.Err)
}

func TestFetch_NotFoundAndRetryOverrideAreNotRetried(t *testing.T) {
	c, _ := newTestCache(Options{Retry: 3})

	var notFound atomic.Int32
	_, err := Fetch(context.Background(), c, DetailKey("bookings", 404), func(context.Context) (int, error) {
		notFound.Add(1)
		return 0, apperrors.Remote("Booking not found", apperrors.ErrNotFound)
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, int32(1), notFound.Load())

	var noRetry atomic.Int32
	_, err = Fetch(context.Background(), c, DetailKey("bookings", 5), func(context.Context) (int, error) {
		noRetry.Add(1)
		return 0, errors.New("timeout")
	}, WithRetry(0))
	assert.Error(t, err)
	assert.Equal(t, int32(1), noRetry.Load())
}

func TestFetch_CallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Hour})
	key := DetailKey("users", "abc")
	release := make(chan struct{})
	fn := func(ctx context.Context) (string, error) {
		<-release
		return "user", ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error)
	go func() {
		_, err := Fetch(ctx, c, key, fn)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return c.State(key).Loading }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return c.State(key).HasData }, time.Second, time.Millisecond)
}

func TestPrefetch_SkipsFreshEntries(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Minute})
	key := DetailKey("services", 1)
	var calls atomic.Int32

	Prefetch(c, key, counter(&calls))
	c.Wait()
	Prefetch(c, key, counter(&calls))
	c.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, c.State(key).HasData)
}

func pageRecorder(count int64) (func(context.Context, int) (models.Page[int], error), func() map[int]int) {
	var mu sync.Mutex
	pages := map[int]int{}
	fn := func(_ context.Context, page int) (models.Page[int], error) {
		mu.Lock()
		pages[page]++
		mu.Unlock()
		return models.Page[int]{Items: []int{page}, Count: count}, nil
	}
	return fn, func() map[int]int {
		mu.Lock()
		defer mu.Unlock()
		out := make(map[int]int, len(pages))
		for k, v := range pages {
			out[k] = v
		}
		return out
	}
}

func TestFetchPage_PrefetchesBothNeighbors(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Minute})
	base := ListKey("bookings", params.Filter{Field: "status", Value: "confirmed"}, params.Sort{Field: "date", Direction: params.Desc}, 0)
	fn, pages := pageRecorder(25)

	res, err := FetchPage(context.Background(), c, base, 2, fn)
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, []int{2}, res.Items)
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, pages())
	assert.True(t, c.State(pageKey(base, 3)).HasData)
	assert.True(t, c.State(pageKey(base, 1)).HasData)
}

func TestFetchPage_NoNextPageWhenCountDividesEvenly(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Minute})
	base := ListKey("bookings", params.Filter{}, params.Sort{}, 0)
	fn, pages := pageRecorder(30)

	_, err := FetchPage(context.Background(), c, base, 3, fn)
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, map[int]int{2: 1, 3: 1}, pages())
}

func TestFetchPage_FirstPageNeverPrefetchesPrevious(t *testing.T) {
	c, _ := newTestCache(Options{StaleTime: time.Minute})
	base := ListKey("bookings", params.Filter{}, params.Sort{}, 0)
	fn, pages := pageRecorder(8)

	_, err := FetchPage(context.Background(), c, base, 1, fn)
	require.NoError(t, err)
	c.Wait()

	assert.Equal(t, map[int]int{1: 1}, pages())
}

func TestSweep_DropsUnreadEntries(t *testing.T) {
	c, clock := newTestCache(Options{StaleTime: time.Hour, GCTime: 5 * time.Minute})
	var calls atomic.Int32
	_, err := Fetch(context.Background(), c, DetailKey("plans", 1), counter(&calls))
	require.NoError(t, err)
	_, err = Fetch(context.Background(), c, DetailKey("plans", 2), counter(&calls))
	require.NoError(t, err)

	clock.Advance(4 * time.Minute)
	_, err = Fetch(context.Background(), c, DetailKey("plans", 2), counter(&calls))
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.State(DetailKey("plans", 2)).HasData)
	assert.False(t, c.State(DetailKey("plans", 1)).HasData)
}

func TestStartJanitor(t *testing.T) {
	c, _ := newTestCache(Options{})

	stop, err := c.StartJanitor(time.Minute)
	require.NoError(t, err)
	stop()
}

func TestKey_DistinguishesEveryField(t *testing.T) {
	base := ListKey("bookings", params.Filter{Field: "status", Value: "done"}, params.Sort{Field: "date", Direction: params.Asc}, 1)
	variants := []Key{
		ListKey("services", base.Filter, base.Sort, 1),
		ListKey("bookings", params.Filter{}, base.Sort, 1),
		ListKey("bookings", base.Filter, params.Sort{Field: "date", Direction: params.Desc}, 1),
		ListKey("bookings", base.Filter, base.Sort, 2),
	}
	for _, v := range variants {
		assert.NotEqual(t, base, v)
		assert.NotEqual(t, base.flight(0), v.flight(0))
	}
	assert.NotEqual(t, base.flight(0), base.flight(1))
	assert.Equal(t, DetailKey("users", "7"), DetailKey("users", 7))
}
