package querycache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/notify"
)

func invalidationLog(c *Cache) func() map[string]int {
	counts := map[string]int{}
	c.OnInvalidate(func(resource string) { counts[resource]++ })
	return func() map[string]int { return counts }
}

func TestMutation_SuccessNotifiesAndInvalidatesOnce(t *testing.T) {
	c, _ := newTestCache(Options{})
	invalidated := invalidationLog(c)
	collector := notify.NewCollector()

	m := NewMutation(MutationConfig[int64, models.Booking]{
		Name: "confirm_booking",
		Fn: func(_ context.Context, id int64) (models.Booking, error) {
			return models.Booking{ID: id, Status: models.StatusConfirmed}, nil
		},
		Invalidates: []string{"bookings", "dashboard"},
		SuccessMessage: func(b models.Booking) string {
			return "Booking confirmed"
		},
	})

	var succeeded models.Booking
	got, err := m.Mutate(context.Background(), Scope{Cache: c, Notifier: collector}, 12, Callbacks[models.Booking]{
		OnSuccess: func(b models.Booking) { succeeded = b },
		OnError:   func(error) { t.Fatal("OnError must not run") },
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), got.ID)
	assert.Equal(t, got, succeeded)
	assert.Equal(t, map[string]int{"bookings": 1, "dashboard": 1}, invalidated())
	assert.Equal(t, []models.Notice{notify.Success("Booking confirmed")}, collector.Notices())
	assert.False(t, m.IsPending())
}

func TestMutation_FailureNotifiesWithoutInvalidating(t *testing.T) {
	c, _ := newTestCache(Options{})
	invalidated := invalidationLog(c)
	collector := notify.NewCollector()
	cause := errors.New("Plan could not be deleted")

	m := NewMutation(MutationConfig[int64, struct{}]{
		Name: "delete_plan",
		Fn: func(context.Context, int64) (struct{}, error) {
			return struct{}{}, cause
		},
		Invalidates:    []string{"plans"},
		SuccessMessage: func(struct{}) string { return "Plan deleted" },
	})

	var failed error
	_, err := m.Mutate(context.Background(), Scope{Cache: c, Notifier: collector}, 4, Callbacks[struct{}]{
		OnError: func(err error) { failed = err },
	})

	assert.Same(t, cause, err)
	assert.Same(t, cause, failed)
	assert.Empty(t, invalidated())
	assert.Equal(t, []models.Notice{notify.Failure("Plan could not be deleted")}, collector.Notices())
}

func TestMutation_PendingWhileRunning(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	m := NewMutation(MutationConfig[string, string]{
		Name: "update_contact",
		Fn: func(_ context.Context, s string) (string, error) {
			close(entered)
			<-release
			return s, nil
		},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Mutate(context.Background(), Scope{}, "x")
	}()

	<-entered
	assert.True(t, m.IsPending())
	close(release)
	<-done
	assert.False(t, m.IsPending())
}

func TestMutation_CustomErrorMessage(t *testing.T) {
	collector := notify.NewCollector()
	m := NewMutation(MutationConfig[int, int]{
		Name: "noop",
		Fn: func(context.Context, int) (int, error) {
			return 0, errors.New("raw")
		},
		ErrorMessage: func(error) string { return "Something went wrong" },
	})

	_, err := m.Mutate(context.Background(), Scope{Notifier: collector}, 1)

	require.Error(t, err)
	assert.Equal(t, "Something went wrong", collector.Notices()[0].Message)
}
