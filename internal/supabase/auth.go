package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/store"
)

// AuthClient serves store.Sessions through GoTrue. Token-scoped calls use a
// copy of the client, so one AuthClient is shared by every request.
type AuthClient struct {
	auth gotrue.Client
}

func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{auth: client.Supabase.Auth}
}

func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := a.auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in failed: %w", err)
	}
	return &models.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		ExpiresAt:    resp.ExpiresAt,
		User:         toUser(resp.User),
	}, nil
}

func (a *AuthClient) SignOut(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.auth.WithToken(token).Logout(); err != nil {
		return fmt.Errorf("sign out failed: %w", err)
	}
	return nil
}

func (a *AuthClient) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	resp, err := a.auth.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user := toUser(resp.User)
	return &user, nil
}

func (a *AuthClient) UpdateUser(ctx context.Context, token string, attrs store.UserAttributes) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := a.auth.WithToken(token).UpdateUser(types.UpdateUserRequest{
		Password: attrs.Password,
		Data:     attrs.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	user := toUser(resp.User)
	return &user, nil
}

// AdminClient serves store.IdentityAdmin with the service-role credential.
type AdminClient struct {
	auth gotrue.Client
}

// NewAdminAuthClient returns nil when admin is nil, so callers can detect a
// deployment without a service-role key.
func NewAdminAuthClient(admin *Client) *AdminClient {
	if admin == nil {
		return nil
	}
	return &AdminClient{auth: admin.Supabase.Auth}
}

func (a *AdminClient) CreateIdentity(ctx context.Context, identity store.NewIdentity) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	password := identity.Password
	resp, err := a.auth.AdminCreateUser(types.AdminCreateUserRequest{
		Email:        identity.Email,
		Password:     &password,
		EmailConfirm: true,
		UserMetadata: identity.Metadata,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create identity: %w", err)
	}
	if resp.ID == uuid.Nil {
		return uuid.Nil, errors.New("identity created without an id")
	}
	return resp.ID, nil
}

func (a *AdminClient) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.auth.AdminDeleteUser(types.AdminDeleteUserRequest{UserID: id}); err != nil {
		return fmt.Errorf("failed to delete identity %s: %w", id, err)
	}
	return nil
}

func toUser(u types.User) models.User {
	return models.User{
		ID:           u.ID,
		Email:        u.Email,
		CreatedAt:    u.CreatedAt,
		UserMetadata: MetadataFromMap(u.UserMetadata),
	}
}

// MetadataFromMap reads the dashboard's user_metadata keys.
func MetadataFromMap(m map[string]any) models.UserMetadata {
	var md models.UserMetadata
	if name, ok := m["fullName"].(string); ok {
		md.FullName = name
	}
	if admin, ok := m["isAdmin"].(bool); ok {
		md.IsAdmin = admin
	}
	if avatar, ok := m["avatar"].(string); ok {
		md.Avatar = avatar
	}
	return md
}
