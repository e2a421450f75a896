package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/queries"
)

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	bookings := []models.Booking{
		{ID: 1, Date: "2024-03-10", Service: "Bath", Status: models.StatusConfirmed},
		{ID: 2, Date: "2024-03-10", Service: "Bath", Status: models.StatusUnconfirmed},
		{ID: 3, Date: "2024-03-09", Service: "Haircut", Status: models.StatusDone, PaidAmount: 40},
		{ID: 4, Date: "2024-03-08", Service: "Nails", Status: models.StatusDone, PaidAmount: 15.5},
		{ID: 5, Date: "not a date", Service: "Haircut", Status: models.StatusUnconfirmed},
	}
	services := []models.Service{{ID: 1, Name: "Bath"}}

	d := queries.BuildDashboard(now, 3, bookings, services)

	assert.Equal(t, models.DashboardStats{
		TotalBookings:       5,
		ConfirmedBookings:   1,
		UnconfirmedBookings: 2,
		Sales:               55.5,
	}, d.Stats)

	require.Len(t, d.Today, 2)
	assert.Equal(t, int64(1), d.Today[0].ID)

	assert.Equal(t, []models.DailyBookings{
		{Label: "Mar 08", TotalBookings: 1, ConfirmedBookings: 1},
		{Label: "Mar 09", TotalBookings: 1, ConfirmedBookings: 1},
		{Label: "Mar 10", TotalBookings: 2, ConfirmedBookings: 1},
	}, d.Daily)

	assert.Equal(t, []models.ServicePopularity{
		{Service: "Bath", Count: 2},
		{Service: "Haircut", Count: 2},
		{Service: "Nails", Count: 1},
	}, d.Popularity)
	assert.Equal(t, services, d.Services)
}

func TestBuildDashboard_Empty(t *testing.T) {
	d := queries.BuildDashboard(time.Now(), 7, nil, nil)

	assert.Len(t, d.Daily, 7)
	assert.NotNil(t, d.Today)
	assert.NotNil(t, d.Services)
	assert.Zero(t, d.Stats.TotalBookings)
}

func TestDashboardGet_CachesRecentBookingsPerRange(t *testing.T) {
	cache := newCache()
	bookings := &bookingClient{}
	bookings.On("ListBetween", mock.Anything, mock.Anything).Return([]models.Booking{{ID: 1, Status: models.StatusConfirmed}}, nil)
	services := &serviceClient{}
	services.On("List", params.Filter{}, queries.DefaultServiceSort).Return([]models.Service{}, nil)
	d := queries.NewDashboard(queries.NewBookings(cache, bookings), queries.NewServices(cache, services))

	for i := 0; i < 3; i++ {
		resp, err := d.Get(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Stats.ConfirmedBookings)
	}
	_, err := d.Get(context.Background(), 30)
	require.NoError(t, err)

	bookings.AssertNumberOfCalls(t, "ListBetween", 2)
	services.AssertNumberOfCalls(t, "List", 1)
}
