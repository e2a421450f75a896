package querycache

import (
	"context"
	"sync/atomic"

	"groom-admin-backend/internal/notify"
)

// Scope carries the request-scoped collaborators a mutation reports to.
type Scope struct {
	Cache    *Cache
	Notifier notify.Notifier
}

type MutationConfig[P, R any] struct {
	Name string
	Fn   func(ctx context.Context, payload P) (R, error)
	// Invalidates lists the resources refetched after a success.
	Invalidates []string
	// SuccessMessage builds the success notice from the result.
	SuccessMessage func(R) string
	// ErrorMessage builds the error notice; it defaults to err.Error().
	ErrorMessage func(error) string
}

// Mutation wraps a write with the notify-and-invalidate protocol: on success
// a success notice is sent and each listed resource is invalidated exactly
// once; on failure an error notice is sent and nothing is invalidated.
type Mutation[P, R any] struct {
	cfg     MutationConfig[P, R]
	pending atomic.Int64
}

func NewMutation[P, R any](cfg MutationConfig[P, R]) *Mutation[P, R] {
	return &Mutation[P, R]{cfg: cfg}
}

// Callbacks run after the standard success or error handling.
type Callbacks[R any] struct {
	OnSuccess func(R)
	OnError   func(error)
}

func (m *Mutation[P, R]) Mutate(ctx context.Context, scope Scope, payload P, callbacks ...Callbacks[R]) (R, error) {
	m.pending.Add(1)
	defer m.pending.Add(-1)

	notifier := scope.Notifier
	if notifier == nil {
		notifier = notify.Discard{}
	}

	result, err := m.cfg.Fn(ctx, payload)
	if err != nil {
		mutationsTotal.WithLabelValues(m.cfg.Name, "error").Inc()
		notifier.Notify(ctx, notify.Failure(m.errorMessage(err)))
		for _, cb := range callbacks {
			if cb.OnError != nil {
				cb.OnError(err)
			}
		}
		return result, err
	}

	mutationsTotal.WithLabelValues(m.cfg.Name, "ok").Inc()
	if m.cfg.SuccessMessage != nil {
		notifier.Notify(ctx, notify.Success(m.cfg.SuccessMessage(result)))
	}
	if scope.Cache != nil {
		for _, resource := range m.cfg.Invalidates {
			scope.Cache.Invalidate(resource)
		}
	}
	for _, cb := range callbacks {
		if cb.OnSuccess != nil {
			cb.OnSuccess(result)
		}
	}
	return result, nil
}

// IsPending reports whether any call is in progress.
func (m *Mutation[P, R]) IsPending() bool {
	return m.pending.Load() > 0
}

func (m *Mutation[P, R]) errorMessage(err error) string {
	if m.cfg.ErrorMessage != nil {
		return m.cfg.ErrorMessage(err)
	}
	return err.Error()
}
