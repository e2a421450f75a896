package storetest

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/store"
)

// Sessions is a testify mock of store.Sessions.
type Sessions struct {
	mock.Mock
}

func (m *Sessions) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}

func (m *Sessions) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *Sessions) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *Sessions) UpdateUser(ctx context.Context, token string, attrs store.UserAttributes) (*models.User, error) {
	args := m.Called(ctx, token, attrs)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

// IdentityAdmin is a testify mock of store.IdentityAdmin.
type IdentityAdmin struct {
	mock.Mock
}

func (m *IdentityAdmin) CreateIdentity(ctx context.Context, identity store.NewIdentity) (uuid.UUID, error) {
	args := m.Called(ctx, identity)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *IdentityAdmin) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
