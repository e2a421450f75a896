package queries

import (
	"context"

	"github.com/google/uuid"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/querycache"
	"groom-admin-backend/internal/resources"
	"groom-admin-backend/internal/validation"
)

type userUpdate struct {
	actor resources.Actor
	input models.UserUpdate
}

type Users struct {
	cache  *querycache.Cache
	client UserClient

	create        *querycache.Mutation[models.NewUser, models.User]
	update        *querycache.Mutation[userUpdate, models.User]
	updateCurrent *querycache.Mutation[userUpdate, models.User]
	remove        *querycache.Mutation[uuid.UUID, uuid.UUID]
}

func NewUsers(cache *querycache.Cache, client UserClient) *Users {
	invalidates := []string{resources.UsersTable}
	updateFn := func(ctx context.Context, in userUpdate) (models.User, error) {
		return client.Update(ctx, in.actor, in.input)
	}
	return &Users{
		cache:  cache,
		client: client,
		create: querycache.NewMutation(querycache.MutationConfig[models.NewUser, models.User]{
			Name:           "create_user",
			Fn:             client.Create,
			Invalidates:    invalidates,
			SuccessMessage: func(models.User) string { return "Account successfully created!" },
		}),
		update: querycache.NewMutation(querycache.MutationConfig[userUpdate, models.User]{
			Name:           "update_user",
			Fn:             updateFn,
			Invalidates:    invalidates,
			SuccessMessage: func(models.User) string { return "User updated successfully!" },
		}),
		updateCurrent: querycache.NewMutation(querycache.MutationConfig[userUpdate, models.User]{
			Name:           "update_current_user",
			Fn:             updateFn,
			Invalidates:    invalidates,
			SuccessMessage: func(models.User) string { return "Account successfully updated" },
		}),
		remove: querycache.NewMutation(querycache.MutationConfig[uuid.UUID, uuid.UUID]{
			Name: "delete_user",
			Fn: func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
				return id, client.Delete(ctx, id)
			},
			Invalidates:    invalidates,
			SuccessMessage: func(uuid.UUID) string { return "User deleted successfully" },
		}),
	}
}

func (u *Users) List(ctx context.Context) ([]models.User, error) {
	return querycache.Fetch(ctx, u.cache, querycache.ScopeKey(resources.UsersTable, "all"), u.client.List)
}

func (u *Users) Get(ctx context.Context, id uuid.UUID) (models.User, error) {
	return querycache.Fetch(ctx, u.cache, querycache.DetailKey(resources.UsersTable, id),
		func(ctx context.Context) (models.User, error) {
			return u.client.Get(ctx, id)
		})
}

func (u *Users) Create(ctx context.Context, scope querycache.Scope, in models.NewUser) (models.User, error) {
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}
	return u.create.Mutate(ctx, scope, in)
}

// Update changes any user. When the actor edits their own account the
// account wording is used for the notice.
func (u *Users) Update(ctx context.Context, scope querycache.Scope, actor resources.Actor, in models.UserUpdate) (models.User, error) {
	if err := validateUserUpdate(in); err != nil {
		return models.User{}, err
	}
	m := u.update
	if actor.ID == in.ID {
		m = u.updateCurrent
	}
	return m.Mutate(ctx, scope, userUpdate{actor: actor, input: in})
}

func (u *Users) Delete(ctx context.Context, scope querycache.Scope, id uuid.UUID) error {
	_, err := u.remove.Mutate(ctx, scope, id)
	return err
}

func validateUserUpdate(in models.UserUpdate) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !in.PasswordsMatch() {
		return apperrors.NewValidationError("passwordConfirm", "Passwords need to match")
	}
	return nil
}
