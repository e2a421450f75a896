// Package resources holds one client per dashboard resource. Each call is a
// single logical backend operation; failures come back as
// apperrors.RemoteOperationError with a message fit for staff.
package resources

import (
	"context"
	"errors"
	"log/slog"

	"groom-admin-backend/internal/apperrors"
)

// Table and bucket names.
const (
	BookingsTable = "bookings"
	ServicesTable = "services"
	PlansTable    = "plans"
	ContactTable  = "contact"
	UsersTable    = "users"

	DefaultServiceIconsBucket = "services-icons"
	DefaultAvatarsBucket      = "avatars"
)

type base struct {
	logger *slog.Logger
}

func newBase(logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{logger: logger}
}

// fail logs the backend error and wraps it with message. Not-found results
// keep apperrors.ErrNotFound in the chain.
func (b base) fail(ctx context.Context, message string, err error) error {
	if !errors.Is(err, apperrors.ErrNotFound) {
		b.logger.ErrorContext(ctx, message, "error", err)
	}
	return apperrors.Remote(message, err)
}
