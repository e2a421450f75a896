package queries

import (
	"context"
	"fmt"
	"time"

	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/querycache"
	"groom-admin-backend/internal/resources"
	"groom-admin-backend/internal/validation"
)

type checkout struct {
	id         int64
	paidAmount float64
}

type Bookings struct {
	cache  *querycache.Cache
	client BookingClient

	confirm  *querycache.Mutation[int64, models.Booking]
	checkout *querycache.Mutation[checkout, models.Booking]
	remove   *querycache.Mutation[int64, int64]
}

func NewBookings(cache *querycache.Cache, client BookingClient) *Bookings {
	b := &Bookings{cache: cache, client: client}

	b.confirm = querycache.NewMutation(querycache.MutationConfig[int64, models.Booking]{
		Name: "confirm_booking",
		Fn: func(ctx context.Context, id int64) (models.Booking, error) {
			status := models.StatusConfirmed
			return client.Update(ctx, id, models.BookingPatch{Status: &status})
		},
		Invalidates: []string{resources.BookingsTable},
		SuccessMessage: func(booking models.Booking) string {
			return fmt.Sprintf("Booking #%d successfully confirmed!", booking.ID)
		},
		ErrorMessage: func(error) string {
			return "There was an error while confirming the booking."
		},
	})

	b.checkout = querycache.NewMutation(querycache.MutationConfig[checkout, models.Booking]{
		Name: "checkout_booking",
		Fn: func(ctx context.Context, in checkout) (models.Booking, error) {
			status := models.StatusDone
			return client.Update(ctx, in.id, models.BookingPatch{Status: &status, PaidAmount: &in.paidAmount})
		},
		Invalidates: []string{resources.BookingsTable},
		SuccessMessage: func(booking models.Booking) string {
			return fmt.Sprintf("Booking #%d successfully closed!", booking.ID)
		},
		ErrorMessage: func(error) string {
			return "There was an error while closing the booking."
		},
	})

	b.remove = querycache.NewMutation(querycache.MutationConfig[int64, int64]{
		Name: "delete_booking",
		Fn: func(ctx context.Context, id int64) (int64, error) {
			return id, client.Delete(ctx, id)
		},
		Invalidates: []string{resources.BookingsTable},
		SuccessMessage: func(int64) string {
			return "Booking successfully deleted"
		},
	})

	return b
}

// List reads one page. The list is always treated as stale so every read
// revalidates, and neighbouring pages are prefetched.
func (b *Bookings) List(ctx context.Context, p resources.ListParams) (models.Page[models.Booking], error) {
	base := querycache.ListKey(resources.BookingsTable, p.Filter, p.SortBy, 0)
	return querycache.FetchPage(ctx, b.cache, base, p.Page,
		func(ctx context.Context, page int) (models.Page[models.Booking], error) {
			return b.client.List(ctx, resources.ListParams{Filter: p.Filter, SortBy: p.SortBy, Page: page})
		},
		querycache.WithStaleTime(0),
	)
}

// Get reads one booking without retrying.
func (b *Bookings) Get(ctx context.Context, id int64) (models.Booking, error) {
	return querycache.Fetch(ctx, b.cache, querycache.DetailKey(resources.BookingsTable, id),
		func(ctx context.Context) (models.Booking, error) {
			return b.client.Get(ctx, id)
		},
		querycache.WithRetry(0),
	)
}

// Recent lists bookings created within the last days days, for the
// dashboard.
func (b *Bookings) Recent(ctx context.Context, now time.Time, days int) ([]models.Booking, error) {
	key := querycache.Key{Resource: resources.BookingsTable, Scope: "recent", Days: days}
	today := startOfDay(now)
	from := today.AddDate(0, 0, -days)
	to := today.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return querycache.Fetch(ctx, b.cache, key, func(ctx context.Context) ([]models.Booking, error) {
		return b.client.ListBetween(ctx, from, to)
	})
}

func (b *Bookings) Confirm(ctx context.Context, scope querycache.Scope, id int64) (models.Booking, error) {
	if err := b.transition(ctx, id, models.StatusConfirmed); err != nil {
		return models.Booking{}, err
	}
	return b.confirm.Mutate(ctx, scope, id)
}

// Checkout closes a confirmed booking. The paid amount is validated before
// anything is sent to the backend.
func (b *Bookings) Checkout(ctx context.Context, scope querycache.Scope, id int64, req models.CheckoutRequest) (models.Booking, error) {
	if err := validation.Struct(req); err != nil {
		return models.Booking{}, err
	}
	if err := b.transition(ctx, id, models.StatusDone); err != nil {
		return models.Booking{}, err
	}
	return b.checkout.Mutate(ctx, scope, checkout{id: id, paidAmount: req.PaidAmount})
}

func (b *Bookings) Delete(ctx context.Context, scope querycache.Scope, id int64) error {
	_, err := b.remove.Mutate(ctx, scope, id)
	return err
}

// Pending reports whether any booking write is in flight.
func (b *Bookings) Pending() bool {
	return b.confirm.IsPending() || b.checkout.IsPending() || b.remove.IsPending()
}

// transition checks that to is the next status after the booking's current one.
func (b *Bookings) transition(ctx context.Context, id int64, to models.BookingStatus) error {
	booking, err := b.Get(ctx, id)
	if err != nil {
		return err
	}
	if !booking.Status.CanTransition(to) {
		return apperrors.NewValidationError("status",
			fmt.Sprintf("cannot move a booking from %s to %s", booking.Status, to))
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

