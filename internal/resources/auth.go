package resources

import (
	"context"
	"errors"
	"log/slog"

	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/store"
)

type Auth struct {
	base
	sessions store.Sessions
	users    *Users
}

func NewAuth(sessions store.Sessions, users *Users, logger *slog.Logger) *Auth {
	return &Auth{base: newBase(logger), sessions: sessions, users: users}
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := a.sessions.SignIn(ctx, email, password)
	if err != nil {
		return nil, a.fail(ctx, "Provided email or password are incorrect", err)
	}
	return session, nil
}

func (a *Auth) SignOut(ctx context.Context, token string) error {
	if err := a.sessions.SignOut(ctx, token); err != nil {
		return a.fail(ctx, err.Error(), err)
	}
	return nil
}

// CurrentUser returns the identity behind token with the profile row's
// name, role and avatar merged into its metadata.
func (a *Auth) CurrentUser(ctx context.Context, token string) (models.User, error) {
	identity, err := a.sessions.CurrentUser(ctx, token)
	if err != nil {
		return models.User{}, a.fail(ctx, err.Error(), err)
	}
	if identity == nil {
		return models.User{}, a.fail(ctx, "No authenticated user", apperrors.ErrNotFound)
	}

	user := *identity
	row, err := a.users.row(ctx, user.ID)
	switch {
	case err == nil:
		user.UserMetadata.FullName = row.FullName
		user.UserMetadata.IsAdmin = row.IsAdmin
		if row.Avatar != nil {
			user.UserMetadata.Avatar = *row.Avatar
		}
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		a.logger.WarnContext(ctx, "profile row unavailable", "user_id", user.ID, "error", err)
	}
	return user, nil
}
