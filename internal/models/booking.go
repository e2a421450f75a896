package models

import "time"

type BookingStatus string

const (
	StatusUnconfirmed BookingStatus = "unconfirmed"
	StatusConfirmed   BookingStatus = "confirmed"
	StatusDone        BookingStatus = "done"
)

// BookingAction is a staff action offered for a booking.
type BookingAction string

const (
	ActionConfirm  BookingAction = "confirm"
	ActionCheckout BookingAction = "checkout"
	ActionDelete   BookingAction = "delete"
)

type Booking struct {
	ID         int64         `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	Service    string        `json:"service"`
	Message    string        `json:"message"`
	Date       string        `json:"date"`
	Hour       string        `json:"hour"`
	Status     BookingStatus `json:"status"`
	PaidAmount float64       `json:"paid_amount"`
}

// Day parses the booking date. Dates are stored as YYYY-MM-DD, optionally
// with a time component.
func (b Booking) Day() (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, b.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusUnconfirmed, StatusConfirmed, StatusDone:
		return true
	}
	return false
}

// Next returns the single status reachable from s, if any.
func (s BookingStatus) Next() (BookingStatus, bool) {
	switch s {
	case StatusUnconfirmed:
		return StatusConfirmed, true
	case StatusConfirmed:
		return StatusDone, true
	}
	return "", false
}

// CanTransition reports whether to is the next step after s.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	next, ok := s.Next()
	return ok && next == to
}

// AvailableActions lists what staff may do with a booking in status s.
func AvailableActions(s BookingStatus) []BookingAction {
	switch s {
	case StatusUnconfirmed:
		return []BookingAction{ActionConfirm, ActionDelete}
	case StatusConfirmed:
		return []BookingAction{ActionCheckout, ActionDelete}
	default:
		return []BookingAction{ActionDelete}
	}
}

// BookingPatch is a partial booking update. Nil fields are left untouched.
type BookingPatch struct {
	Status     *BookingStatus `json:"status,omitempty"`
	PaidAmount *float64       `json:"paid_amount,omitempty"`
}

type CheckoutRequest struct {
	PaidAmount float64 `json:"paid_amount" binding:"gt=0"`
}
