package resources

import (
	"context"
	"log/slog"
	"time"

	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/store"
)

// ListParams selects one page of bookings. A zero Filter or SortBy is
// omitted from the query; a zero Page returns every row.
type ListParams struct {
	Filter params.Filter
	SortBy params.Sort
	Page   int
}

type Bookings struct {
	base
	tables store.Tables
}

func NewBookings(tables store.Tables, logger *slog.Logger) *Bookings {
	return &Bookings{base: newBase(logger), tables: tables}
}

func (b *Bookings) List(ctx context.Context, p ListParams) (models.Page[models.Booking], error) {
	q := store.Query{Count: true}
	if !p.Filter.IsZero() {
		q.Where = append(q.Where, store.Eq(p.Filter.Field, p.Filter.Value))
	}
	if !p.SortBy.IsZero() {
		q.Order = append(q.Order, store.Order{Column: p.SortBy.Field, Ascending: p.SortBy.Ascending()})
	}
	if p.Page > 0 {
		from, to := params.Range(p.Page)
		q.Range = &store.Range{From: from, To: to}
	}

	raw, count, err := b.tables.Select(ctx, BookingsTable, q)
	if err != nil {
		return models.Page[models.Booking]{}, b.fail(ctx, "Bookings could not be loaded", err)
	}
	rows, err := store.DecodeAll[models.Booking](raw)
	if err != nil {
		return models.Page[models.Booking]{}, b.fail(ctx, "Bookings could not be loaded", err)
	}
	return models.Page[models.Booking]{Items: rows, Count: count}, nil
}

func (b *Bookings) Get(ctx context.Context, id int64) (models.Booking, error) {
	raw, _, err := b.tables.Select(ctx, BookingsTable, store.Query{Where: []store.Condition{store.Eq("id", id)}})
	if err != nil {
		return models.Booking{}, b.fail(ctx, "Booking not found", err)
	}
	booking, err := store.DecodeOne[models.Booking](raw)
	if err != nil {
		return models.Booking{}, b.fail(ctx, "Booking not found", err)
	}
	return booking, nil
}

func (b *Bookings) Update(ctx context.Context, id int64, patch models.BookingPatch) (models.Booking, error) {
	raw, err := b.tables.Update(ctx, BookingsTable, patch, store.Eq("id", id))
	if err != nil {
		return models.Booking{}, b.fail(ctx, "Booking could not be updated", err)
	}
	booking, err := store.DecodeOne[models.Booking](raw)
	if err != nil {
		return models.Booking{}, b.fail(ctx, "Booking could not be updated", err)
	}
	return booking, nil
}

func (b *Bookings) Delete(ctx context.Context, id int64) error {
	if err := b.tables.Delete(ctx, BookingsTable, store.Eq("id", id)); err != nil {
		return b.fail(ctx, "Booking could not be deleted", err)
	}
	return nil
}

// ListBetween returns bookings created within [from, to], oldest first.
func (b *Bookings) ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	raw, _, err := b.tables.Select(ctx, BookingsTable, store.Query{
		Where: []store.Condition{
			store.Gte("created_at", from.UTC().Format(time.RFC3339)),
			store.Lte("created_at", to.UTC().Format(time.RFC3339Nano)),
		},
		Order: []store.Order{{Column: "created_at", Ascending: true}},
	})
	if err != nil {
		return nil, b.fail(ctx, "Bookings could not be loaded", err)
	}
	rows, err := store.DecodeAll[models.Booking](raw)
	if err != nil {
		return nil, b.fail(ctx, "Bookings could not be loaded", err)
	}
	return rows, nil
}

