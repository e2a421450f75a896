package events_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"groom-admin-backend/internal/events"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/notify"
	"groom-admin-backend/internal/querycache"
)

// memBus delivers every published payload to every subscriber.
type memBus struct {
	mu   sync.Mutex
	subs map[string][]chan []byte
	sent [][]byte
}

func newMemBus() *memBus {
	return &memBus{subs: map[string][]chan []byte{}}
}

func (b *memBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, payload)
	for _, ch := range b.subs[channel] {
		ch <- payload
	}
	return nil
}

func (b *memBus) Subscribe(_ context.Context, channel string) (<-chan []byte, func() error, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan []byte, 64)
	b.subs[channel] = append(b.subs[channel], ch)
	return ch, func() error { return nil }, nil
}

func (b *memBus) events(t *testing.T) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Event, 0, len(b.sent))
	for _, p := range b.sent {
		var e events.Event
		require.NoError(t, json.Unmarshal(p, &e))
		out = append(out, e)
	}
	return out
}

func loadBookings(t *testing.T, c *querycache.Cache) querycache.Key {
	key := querycache.ScopeKey("bookings", "all")
	_, err := querycache.Fetch(context.Background(), c, key, func(context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	return key
}

func TestBroadcaster_InvalidationReachesOtherReplica(t *testing.T) {
	bus := newMemBus()
	cacheA := querycache.New(querycache.Options{StaleTime: time.Minute})
	cacheB := querycache.New(querycache.Options{StaleTime: time.Minute})

	a := events.NewBroadcaster(bus, nil)
	a.Attach(cacheA)
	b := events.NewBroadcaster(bus, nil)
	b.Attach(cacheB)

	stopA, err := a.Start(context.Background(), cacheA, nil)
	require.NoError(t, err)
	defer stopA()
	stopB, err := b.Start(context.Background(), cacheB, nil)
	require.NoError(t, err)
	defer stopB()

	keyA := loadBookings(t, cacheA)
	keyB := loadBookings(t, cacheB)

	cacheA.Invalidate("bookings")

	assert.True(t, cacheA.State(keyA).Invalidated)
	assert.Eventually(t, func() bool {
		return cacheB.State(keyB).Invalidated
	}, time.Second, 5*time.Millisecond)

	// Remote invalidations are not re-published.
	sent := bus.events(t)
	require.Len(t, sent, 1)
	assert.Equal(t, events.KindInvalidate, sent[0].Kind)
	assert.Equal(t, "bookings", sent[0].Resource)
	assert.Equal(t, a.Origin(), sent[0].Origin)
}

func TestBroadcaster_NoticesRelayedToOtherReplicas(t *testing.T) {
	bus := newMemBus()
	cache := querycache.New(querycache.Options{})

	a := events.NewBroadcaster(bus, nil)
	b := events.NewBroadcaster(bus, nil)

	sinkA := notify.NewCollector()
	sinkB := notify.NewCollector()
	stopA, err := a.Start(context.Background(), cache, sinkA)
	require.NoError(t, err)
	defer stopA()
	stopB, err := b.Start(context.Background(), cache, sinkB)
	require.NoError(t, err)
	defer stopB()

	a.Notify(context.Background(), notify.Success("Plan deleted successfully"))

	assert.Eventually(t, func() bool {
		return len(sinkB.Notices()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Plan deleted successfully", sinkB.Notices()[0].Message)
	assert.Equal(t, models.NoticeSuccess, sinkB.Notices()[0].Level)

	// The publishing replica ignores its own event.
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, sinkA.Notices())
}

func TestBroadcaster_DropsMalformedPayloads(t *testing.T) {
	bus := newMemBus()
	cache := querycache.New(querycache.Options{StaleTime: time.Minute})
	key := loadBookings(t, cache)

	b := events.NewBroadcaster(bus, nil)
	stop, err := b.Start(context.Background(), cache, nil)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), events.Channel, []byte("{not json")))
	require.NoError(t, bus.Publish(context.Background(), events.Channel, []byte(`{"origin":"other","kind":"invalidate","resource":"bookings"}`)))

	assert.Eventually(t, func() bool {
		return cache.State(key).Invalidated
	}, time.Second, 5*time.Millisecond)
	stop()
}
