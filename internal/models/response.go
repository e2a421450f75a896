package models

import "time"

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a short transient message for the dashboard.
type Notice struct {
	Level      NoticeLevel `json:"level"`
	Message    string      `json:"message"`
	DurationMS int64       `json:"duration_ms"`
}

// ListResponse is a page of a resource list.
type ListResponse[T any] struct {
	Data      []T               `json:"data"`
	Count     int64             `json:"count"`
	Page      int               `json:"page,omitempty"`
	PageCount int               `json:"page_count,omitempty"`
	Links     map[string]string `json:"links,omitempty"`
}

// MutationResponse wraps the result of a write with the notices it produced.
type MutationResponse[T any] struct {
	Data    T        `json:"data,omitempty"`
	Notices []Notice `json:"notices"`
}

type BookingResponse struct {
	Booking
	Actions []BookingAction `json:"actions"`
}

type DashboardStats struct {
	TotalBookings       int     `json:"total_bookings"`
	ConfirmedBookings   int     `json:"confirmed_bookings"`
	UnconfirmedBookings int     `json:"unconfirmed_bookings"`
	Sales               float64 `json:"sales"`
}

type DailyBookings struct {
	Label             string `json:"label"`
	TotalBookings     int    `json:"total_bookings"`
	ConfirmedBookings int    `json:"confirmed_bookings"`
}

type ServicePopularity struct {
	Service string `json:"service"`
	Count   int    `json:"count"`
}

type DashboardResponse struct {
	Days       int                 `json:"days"`
	Stats      DashboardStats      `json:"stats"`
	Today      []Booking           `json:"today"`
	Daily      []DailyBookings     `json:"daily"`
	Popularity []ServicePopularity `json:"popularity"`
	Services   []Service           `json:"services"`
}

const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"

	EventsDisabled    = "disabled"
	EventsOK          = "ok"
	EventsUnreachable = "unreachable"
)

type HealthResponse struct {
	Status       string    `json:"status"`
	Time         time.Time `json:"time"`
	CacheEntries int       `json:"cache_entries"`
	// BookingWrites is true while a confirm, checkout or delete is running.
	BookingWrites   bool   `json:"booking_writes_pending"`
	AdminOperations bool   `json:"admin_operations"`
	Events          string `json:"events"`
}

// Page is one page of a list plus the total row count of the query.
type Page[T any] struct {
	Items []T
	Count int64
}
