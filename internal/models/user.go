package models

import (
	"time"

	"github.com/google/uuid"
)

type UserMetadata struct {
	FullName string `json:"fullName"`
	IsAdmin  bool   `json:"isAdmin"`
	Avatar   string `json:"avatar"`
}

type User struct {
	ID           uuid.UUID    `json:"id"`
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
	CreatedAt    time.Time    `json:"created_at"`
}

// UserRow is the profile row stored in the users table.
type UserRow struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ToUser converts a profile row to the shape the dashboard consumes.
func (r UserRow) ToUser() User {
	u := User{
		ID:        r.ID,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
		UserMetadata: UserMetadata{
			FullName: r.FullName,
			IsAdmin:  r.IsAdmin,
		},
	}
	if r.Avatar != nil {
		u.UserMetadata.Avatar = *r.Avatar
	}
	if u.Email == "" {
		u.Email = "user-" + r.ID.String()[:8] + "@example.com"
	}
	return u
}

type NewUser struct {
	FullName        string `json:"fullName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
	IsAdmin         bool   `json:"isAdmin"`
}

// UserUpdate changes profile fields, the avatar and, for the signed-in user,
// the password. Nil fields are left untouched.
type UserUpdate struct {
	ID              uuid.UUID `json:"-"`
	FullName        *string   `json:"fullName,omitempty" form:"fullName"`
	IsAdmin         *bool     `json:"isAdmin,omitempty" form:"isAdmin"`
	Password        *string   `json:"password,omitempty" form:"password" binding:"omitempty,min=8"`
	PasswordConfirm *string   `json:"passwordConfirm,omitempty" form:"passwordConfirm"`
	Avatar          *Upload   `json:"-" form:"-"`
}

// PasswordsMatch reports whether a password change carries a matching
// confirmation. Updates without a password always match.
func (u UserUpdate) PasswordsMatch() bool {
	if u.Password == nil {
		return true
	}
	return u.PasswordConfirm != nil && *u.PasswordConfirm == *u.Password
}

// Session is an authenticated GoTrue session.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
