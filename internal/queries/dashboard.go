package queries

import (
	"context"
	"sort"
	"time"

	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/params"
)

type Dashboard struct {
	bookings *Bookings
	services *Services
	now      func() time.Time
}

func NewDashboard(bookings *Bookings, services *Services) *Dashboard {
	return &Dashboard{bookings: bookings, services: services, now: time.Now}
}

func (d *Dashboard) Get(ctx context.Context, days int) (models.DashboardResponse, error) {
	now := d.now()
	recent, err := d.bookings.Recent(ctx, now, days)
	if err != nil {
		return models.DashboardResponse{}, err
	}
	services, err := d.services.List(ctx, params.Filter{}, DefaultServiceSort)
	if err != nil {
		return models.DashboardResponse{}, err
	}
	return BuildDashboard(now, days, recent, services), nil
}

// BuildDashboard aggregates recent bookings into the dashboard figures.
func BuildDashboard(now time.Time, days int, bookings []models.Booking, services []models.Service) models.DashboardResponse {
	resp := models.DashboardResponse{
		Days:       days,
		Today:      []models.Booking{},
		Daily:      make([]models.DailyBookings, 0, days),
		Popularity: []models.ServicePopularity{},
		Services:   services,
	}
	if resp.Services == nil {
		resp.Services = []models.Service{}
	}

	today := startOfDay(now)
	perDay := make(map[time.Time][]models.Booking)
	perService := make(map[string]int)

	for _, b := range bookings {
		resp.Stats.TotalBookings++
		resp.Stats.Sales += b.PaidAmount
		switch b.Status {
		case models.StatusConfirmed:
			resp.Stats.ConfirmedBookings++
		case models.StatusUnconfirmed:
			resp.Stats.UnconfirmedBookings++
		}
		if b.Service != "" {
			perService[b.Service]++
		}

		day, ok := b.Day()
		if !ok {
			continue
		}
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location())
		perDay[day] = append(perDay[day], b)
		if day.Equal(today) {
			resp.Today = append(resp.Today, b)
		}
	}

	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		point := models.DailyBookings{Label: day.Format("Jan 02")}
		for _, b := range perDay[day] {
			point.TotalBookings++
			if b.Status == models.StatusConfirmed || b.Status == models.StatusDone {
				point.ConfirmedBookings++
			}
		}
		resp.Daily = append(resp.Daily, point)
	}

	for service, count := range perService {
		resp.Popularity = append(resp.Popularity, models.ServicePopularity{Service: service, Count: count})
	}
	sort.Slice(resp.Popularity, func(i, j int) bool {
		if resp.Popularity[i].Count != resp.Popularity[j].Count {
			return resp.Popularity[i].Count > resp.Popularity[j].Count
		}
		return resp.Popularity[i].Service < resp.Popularity[j].Service
	})
	return resp
}
