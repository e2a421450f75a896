// Package queries binds each resource client to the shared query cache:
// reads go through querycache.Fetch, writes through querycache.Mutation with
// the resource's notice wording and invalidation list.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/resources"
)

type BookingClient interface {
	List(ctx context.Context, p resources.ListParams) (models.Page[models.Booking], error)
	Get(ctx context.Context, id int64) (models.Booking, error)
	Update(ctx context.Context, id int64, patch models.BookingPatch) (models.Booking, error)
	Delete(ctx context.Context, id int64) error
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)
}

type ServiceClient interface {
	List(ctx context.Context, filter params.Filter, sortBy params.Sort) ([]models.Service, error)
	Get(ctx context.Context, id int64) (models.Service, error)
	Create(ctx context.Context, in models.NewService) (models.Service, error)
	Update(ctx context.Context, id int64, in models.ServicePatch) (models.Service, error)
	Delete(ctx context.Context, id int64) error
}

type PlanClient interface {
	List(ctx context.Context) ([]models.Plan, error)
	Create(ctx context.Context, in models.PlanInput) (models.Plan, error)
	Update(ctx context.Context, id int64, in models.PlanInput) (models.Plan, error)
	Delete(ctx context.Context, id int64) error
}

type ContactClient interface {
	Get(ctx context.Context) (models.Contact, error)
	Update(ctx context.Context, patch models.ContactPatch) (models.Contact, error)
}

type UserClient interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id uuid.UUID) (models.User, error)
	Create(ctx context.Context, in models.NewUser) (models.User, error)
	Update(ctx context.Context, actor resources.Actor, in models.UserUpdate) (models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Defaults applied when a list request carries no sort-by.
var (
	DefaultBookingSort = params.Sort{Field: "created_at", Direction: params.Asc}
	DefaultServiceSort = params.Sort{Field: "name", Direction: params.Asc}
)
