package resources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/store"
)

const adminUnavailable = "Admin operations not available. Please configure SUPABASE_SERVICE_ROLE_KEY environment variable."

const userColumns = "id, full_name, email, is_admin, avatar, created_at"

// Actor is the signed-in staff member a request runs for.
type Actor struct {
	ID    uuid.UUID
	Token string
}

type Users struct {
	base
	tables   store.Tables
	objects  store.Objects
	sessions store.Sessions
	// admin is nil when no service-role credential is configured.
	admin   store.IdentityAdmin
	avatars string
	now     func() time.Time
}

func NewUsers(tables store.Tables, objects store.Objects, sessions store.Sessions, admin store.IdentityAdmin, avatarsBucket string, logger *slog.Logger) *Users {
	if avatarsBucket == "" {
		avatarsBucket = DefaultAvatarsBucket
	}
	return &Users{
		base:     newBase(logger),
		tables:   tables,
		objects:  objects,
		sessions: sessions,
		admin:    admin,
		avatars:  avatarsBucket,
		now:      time.Now,
	}
}

// AdminAvailable reports whether identity create and delete can run.
func (u *Users) AdminAvailable() bool {
	return u.admin != nil
}

func (u *Users) List(ctx context.Context) ([]models.User, error) {
	raw, _, err := u.tables.Select(ctx, UsersTable, store.Query{
		Columns: userColumns,
		Order:   []store.Order{{Column: "created_at", Ascending: true}},
	})
	if err != nil {
		return nil, u.fail(ctx, "Error fetching users", err)
	}
	rows, err := store.DecodeAll[models.UserRow](raw)
	if err != nil {
		return nil, u.fail(ctx, "Error fetching users", err)
	}
	users := make([]models.User, len(rows))
	for i, r := range rows {
		users[i] = r.ToUser()
	}
	return users, nil
}

func (u *Users) Get(ctx context.Context, id uuid.UUID) (models.User, error) {
	row, err := u.row(ctx, id)
	if err != nil {
		return models.User{}, u.fail(ctx, "User not found", err)
	}
	return row.ToUser(), nil
}

func (u *Users) row(ctx context.Context, id uuid.UUID) (models.UserRow, error) {
	raw, _, err := u.tables.Select(ctx, UsersTable, store.Query{
		Columns: userColumns,
		Where:   []store.Condition{store.Eq("id", id.String())},
	})
	if err != nil {
		return models.UserRow{}, err
	}
	return store.DecodeOne[models.UserRow](raw)
}

// Create registers the identity and then its profile row. If the row
// cannot be written the identity is deleted again.
func (u *Users) Create(ctx context.Context, in models.NewUser) (models.User, error) {
	if u.admin == nil {
		return models.User{}, &apperrors.ConfigurationError{Message: adminUnavailable}
	}

	var id uuid.UUID
	err := saga{
		name:   "create user",
		logger: u.logger,
		steps: []step{
			{
				name: "create identity",
				run: func(ctx context.Context) error {
					var err error
					id, err = u.admin.CreateIdentity(ctx, store.NewIdentity{
						Email:    in.Email,
						Password: in.Password,
						Metadata: map[string]any{"fullName": in.FullName, "avatar": ""},
					})
					return err
				},
				compensate: func(ctx context.Context) error {
					return u.admin.DeleteIdentity(ctx, id)
				},
			},
			{
				name:    "write profile row",
				message: "Failed to create user record",
				run: func(ctx context.Context) error {
					_, err := u.tables.Upsert(ctx, UsersTable, map[string]any{
						"id":        id.String(),
						"full_name": in.FullName,
						"email":     in.Email,
						"is_admin":  in.IsAdmin,
						"avatar":    nil,
					}, "id")
					return err
				},
			},
		},
	}.run(ctx)
	if err != nil {
		return models.User{}, err
	}

	return models.User{
		ID:    id,
		Email: in.Email,
		UserMetadata: models.UserMetadata{
			FullName: in.FullName,
			IsAdmin:  in.IsAdmin,
		},
		CreatedAt: u.now().UTC(),
	}, nil
}

// Update writes profile fields and the avatar. When the target is the actor
// the password and metadata are also synced to the identity.
func (u *Users) Update(ctx context.Context, actor Actor, in models.UserUpdate) (models.User, error) {
	fields := map[string]any{}
	if in.FullName != nil {
		fields["full_name"] = *in.FullName
	}
	if in.IsAdmin != nil {
		fields["is_admin"] = *in.IsAdmin
	}

	var avatarURL string
	if in.Avatar != nil {
		object := fmt.Sprintf("avatar-%s-%d", in.ID, u.now().UnixMilli())
		if err := u.objects.Upload(ctx, u.avatars, object, in.Avatar.Data, in.Avatar.ContentType); err != nil {
			return models.User{}, u.fail(ctx, "Avatar could not be uploaded", err)
		}
		avatarURL = u.objects.PublicURL(u.avatars, object)
		fields["avatar"] = avatarURL
	}

	if len(fields) > 0 {
		if _, err := u.tables.Update(ctx, UsersTable, fields, store.Eq("id", in.ID.String())); err != nil {
			return models.User{}, u.fail(ctx, "User could not be updated", err)
		}
	}

	if actor.ID == in.ID {
		attrs := store.UserAttributes{Password: in.Password}
		if (in.FullName != nil && *in.FullName != "") || avatarURL != "" {
			attrs.Data = map[string]any{}
			if in.FullName != nil && *in.FullName != "" {
				attrs.Data["fullName"] = *in.FullName
			}
			if avatarURL != "" {
				attrs.Data["avatar"] = avatarURL
			}
		}
		if attrs.Password != nil || attrs.Data != nil {
			if _, err := u.sessions.UpdateUser(ctx, actor.Token, attrs); err != nil {
				return models.User{}, u.fail(ctx, "Account could not be updated", err)
			}
		}
	}

	return u.Get(ctx, in.ID)
}

// Delete removes the profile row and then the identity. The row is not
// restored if the identity cannot be deleted.
func (u *Users) Delete(ctx context.Context, id uuid.UUID) error {
	if u.admin == nil {
		return &apperrors.ConfigurationError{Message: adminUnavailable}
	}

	return saga{
		name:   "delete user",
		logger: u.logger,
		steps: []step{
			{
				name:    "delete profile row",
				message: "Error deleting user from database",
				run: func(ctx context.Context) error {
					return u.tables.Delete(ctx, UsersTable, store.Eq("id", id.String()))
				},
			},
			{
				name:    "delete identity",
				message: "Error deleting user from authentication system",
				run: func(ctx context.Context) error {
					return u.admin.DeleteIdentity(ctx, id)
				},
			},
		},
	}.run(ctx)
}
