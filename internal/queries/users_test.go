package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/notify"
	"groom-admin-backend/internal/queries"
	"groom-admin-backend/internal/querycache"
	"groom-admin-backend/internal/resources"
)

func TestUsersUpdate_PasswordMismatchIsRejectedLocally(t *testing.T) {
	client := &userClient{}
	q := queries.NewUsers(newCache(), client)
	password, confirm := "password-one", "password-two"

	_, err := q.Update(context.Background(), querycache.Scope{}, resources.Actor{}, models.UserUpdate{
		ID:              uuid.New(),
		Password:        &password,
		PasswordConfirm: &confirm,
	})

	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Passwords need to match", validation.Fields["passwordConfirm"])
	assert.Empty(t, client.Calls)
}

func TestUsersUpdate_NoticeWordingDependsOnTarget(t *testing.T) {
	cache := newCache()
	client := &userClient{}
	client.On("Update", mock.Anything, mock.Anything).Return(models.User{}, nil)
	q := queries.NewUsers(cache, client)
	me := uuid.New()
	name := "Renamed"

	collector := notify.NewCollector()
	scope := querycache.Scope{Cache: cache, Notifier: collector}
	_, err := q.Update(context.Background(), scope, resources.Actor{ID: me}, models.UserUpdate{ID: me, FullName: &name})
	require.NoError(t, err)
	_, err = q.Update(context.Background(), scope, resources.Actor{ID: me}, models.UserUpdate{ID: uuid.New(), FullName: &name})
	require.NoError(t, err)

	notices := collector.Notices()
	require.Len(t, notices, 2)
	assert.Equal(t, "Account successfully updated", notices[0].Message)
	assert.Equal(t, "User updated successfully!", notices[1].Message)
}

func TestUsersDelete_PartialFailureIsReported(t *testing.T) {
	cache := newCache()
	client := &userClient{}
	id := uuid.New()
	partial := &apperrors.PartialCompletionError{
		Message: "Error deleting user from authentication system",
		Cause:   errors.New("gotrue 500"),
	}
	client.On("Delete", id).Return(partial)
	client.On("List").Return([]models.User{}, nil).Once()
	q := queries.NewUsers(cache, client)
	_, err := q.List(context.Background())
	require.NoError(t, err)

	collector := notify.NewCollector()
	err = q.Delete(context.Background(), querycache.Scope{Cache: cache, Notifier: collector}, id)

	assert.Same(t, partial, err)
	assert.Equal(t, notify.Failure("Error deleting user from authentication system"), collector.Notices()[0])
	assert.False(t, cache.State(querycache.ScopeKey(resources.UsersTable, "all")).Invalidated)
}

func TestUsersCreate_ValidatesInput(t *testing.T) {
	client := &userClient{}
	q := queries.NewUsers(newCache(), client)

	_, err := q.Create(context.Background(), querycache.Scope{}, models.NewUser{
		FullName:        "A",
		Email:           "not-an-email",
		Password:        "short",
		PasswordConfirm: "short",
	})

	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Please provide a valid email address", validation.Fields["email"])
	assert.Equal(t, "must be at least 8 characters", validation.Fields["password"])
	assert.Empty(t, client.Calls)
}
