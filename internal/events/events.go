// Package events fans cache invalidations and notices out to the other
// replicas of the API over a pub/sub bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/notify"
	"groom-admin-backend/internal/querycache"
)

const Channel = "groom-admin:events"

const publishTimeout = 2 * time.Second

type Kind string

const (
	KindInvalidate Kind = "invalidate"
	KindNotice     Kind = "notice"
)

// Event is the wire format on the bus.
type Event struct {
	Origin   string         `json:"origin"`
	Kind     Kind           `json:"kind"`
	Resource string         `json:"resource,omitempty"`
	Notice   *models.Notice `json:"notice,omitempty"`
}

// Bus is a publish/subscribe transport. Subscribe delivers payloads until
// ctx is done or the returned close func is called.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error, error)
}

type Broadcaster struct {
	bus    Bus
	origin string
	logger *slog.Logger
}

func NewBroadcaster(bus Bus, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{bus: bus, origin: uuid.NewString(), logger: logger}
}

// Origin identifies this replica on the bus.
func (b *Broadcaster) Origin() string {
	return b.origin
}

// Attach publishes every local invalidation of cache.
func (b *Broadcaster) Attach(cache *querycache.Cache) {
	cache.OnInvalidate(func(resource string) {
		b.publish(context.Background(), Event{Kind: KindInvalidate, Resource: resource})
	})
}

// Notify publishes n so other replicas can relay it.
func (b *Broadcaster) Notify(ctx context.Context, n models.Notice) {
	b.publish(ctx, Event{Kind: KindNotice, Notice: &n})
}

func (b *Broadcaster) publish(ctx context.Context, e Event) {
	e.Origin = b.origin
	payload, err := json.Marshal(e)
	if err != nil {
		b.logger.ErrorContext(ctx, "failed to encode event", "kind", e.Kind, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := b.bus.Publish(ctx, Channel, payload); err != nil {
		b.logger.WarnContext(ctx, "failed to publish event", "kind", e.Kind, "resource", e.Resource, "error", err)
	}
}

// Start subscribes and applies events from other replicas: invalidations go
// to cache, notices to sink. Stop unsubscribes and waits for the loop.
func (b *Broadcaster) Start(ctx context.Context, cache *querycache.Cache, sink notify.Notifier) (stop func(), err error) {
	ctx, cancel := context.WithCancel(ctx)
	messages, closeSub, err := b.bus.Subscribe(ctx, Channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", Channel, err)
	}
	if sink == nil {
		sink = notify.Discard{}
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-messages:
				if !ok {
					return
				}
				b.handle(ctx, payload, cache, sink)
			}
		}
	})

	return func() {
		cancel()
		if err := closeSub(); err != nil {
			b.logger.Warn("failed to close subscription", "error", err)
		}
		wg.Wait()
	}, nil
}

func (b *Broadcaster) handle(ctx context.Context, payload []byte, cache *querycache.Cache, sink notify.Notifier) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		b.logger.WarnContext(ctx, "dropping malformed event", "error", err)
		return
	}
	if e.Origin == b.origin {
		return
	}
	switch e.Kind {
	case KindInvalidate:
		if e.Resource != "" {
			cache.ApplyRemoteInvalidation(e.Resource)
		}
	case KindNotice:
		if e.Notice != nil {
			sink.Notify(ctx, *e.Notice)
		}
	default:
		b.logger.DebugContext(ctx, "ignoring event", "kind", e.Kind)
	}
}
