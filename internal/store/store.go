// Package store declares the backend boundary the resource clients talk to:
// tables, objects, sessions and the privileged identity admin.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"groom-admin-backend/internal/apperrors"
	"groom-admin-backend/internal/models"
)

type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

type Condition struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Condition {
	return Condition{Column: column, Op: OpEq, Value: value}
}

func Gte(column string, value any) Condition {
	return Condition{Column: column, Op: OpGte, Value: value}
}

func Lte(column string, value any) Condition {
	return Condition{Column: column, Op: OpLte, Value: value}
}

type Order struct {
	Column    string
	Ascending bool
}

// Range selects rows From..To inclusive.
type Range struct {
	From int
	To   int
}

type Query struct {
	// Columns is a comma separated list; empty selects every column.
	Columns string
	Where   []Condition
	Order   []Order
	Range   *Range
	// Count requests the exact number of matching rows.
	Count bool
}

// Tables reads and writes rows. Rows travel as JSON arrays so both the
// PostgREST and the Postgres backends can serve them unchanged.
type Tables interface {
	Select(ctx context.Context, table string, q Query) (rows []byte, count int64, err error)
	Insert(ctx context.Context, table string, row any) ([]byte, error)
	Upsert(ctx context.Context, table string, row any, onConflict string) ([]byte, error)
	Update(ctx context.Context, table string, patch any, where ...Condition) ([]byte, error)
	Delete(ctx context.Context, table string, where ...Condition) error
}

type Objects interface {
	Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket string, paths ...string) error
}

// UserAttributes are the identity fields a signed-in user may change.
type UserAttributes struct {
	Password *string
	Data     map[string]any
}

type Sessions interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, token string, attrs UserAttributes) (*models.User, error)
}

type NewIdentity struct {
	Email    string
	Password string
	Metadata map[string]any
}

// IdentityAdmin needs the service-role credential.
type IdentityAdmin interface {
	CreateIdentity(ctx context.Context, identity NewIdentity) (uuid.UUID, error)
	DeleteIdentity(ctx context.Context, id uuid.UUID) error
}

// DecodeAll unmarshals a JSON array of rows.
func DecodeAll[T any](rows []byte) ([]T, error) {
	out := []T{}
	if len(rows) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(rows, &out); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return out, nil
}

// DecodeOne unmarshals the first row, or returns apperrors.ErrNotFound.
func DecodeOne[T any](rows []byte) (T, error) {
	var zero T
	all, err := DecodeAll[T](rows)
	if err != nil {
		return zero, err
	}
	if len(all) == 0 {
		return zero, apperrors.ErrNotFound
	}
	return all[0], nil
}
