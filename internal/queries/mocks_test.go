package queries_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/querycache"
	"groom-admin-backend/internal/resources"
)

func newCache() *querycache.Cache {
	return querycache.New(querycache.Options{
		StaleTime:  time.Minute,
		RetryDelay: func(int) time.Duration { return 0 },
	})
}

type bookingClient struct{ mock.Mock }

func (m *bookingClient) List(_ context.Context, p resources.ListParams) (models.Page[models.Booking], error) {
	args := m.Called(p)
	return args.Get(0).(models.Page[models.Booking]), args.Error(1)
}

func (m *bookingClient) Get(_ context.Context, id int64) (models.Booking, error) {
	args := m.Called(id)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingClient) Update(_ context.Context, id int64, patch models.BookingPatch) (models.Booking, error) {
	args := m.Called(id, patch)
	return args.Get(0).(models.Booking), args.Error(1)
}

func (m *bookingClient) Delete(_ context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *bookingClient) ListBetween(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	args := m.Called(from, to)
	return args.Get(0).([]models.Booking), args.Error(1)
}

type serviceClient struct{ mock.Mock }

func (m *serviceClient) List(_ context.Context, filter params.Filter, sortBy params.Sort) ([]models.Service, error) {
	args := m.Called(filter, sortBy)
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *serviceClient) Get(_ context.Context, id int64) (models.Service, error) {
	args := m.Called(id)
	return args.Get(0).(models.Service), args.Error(1)
}

func (m *serviceClient) Create(_ context.Context, in models.NewService) (models.Service, error) {
	args := m.Called(in)
	return args.Get(0).(models.Service), args.Error(1)
}

func (m *serviceClient) Update(_ context.Context, id int64, in models.ServicePatch) (models.Service, error) {
	args := m.Called(id, in)
	return args.Get(0).(models.Service), args.Error(1)
}

func (m *serviceClient) Delete(_ context.Context, id int64) error {
	return m.Called(id).Error(0)
}

type userClient struct{ mock.Mock }

func (m *userClient) List(context.Context) ([]models.User, error) {
	args := m.Called()
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *userClient) Get(_ context.Context, id uuid.UUID) (models.User, error) {
	args := m.Called(id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *userClient) Create(_ context.Context, in models.NewUser) (models.User, error) {
	args := m.Called(in)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *userClient) Update(_ context.Context, actor resources.Actor, in models.UserUpdate) (models.User, error) {
	args := m.Called(actor, in)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *userClient) Delete(_ context.Context, id uuid.UUID) error {
	return m.Called(id).Error(0)
}
