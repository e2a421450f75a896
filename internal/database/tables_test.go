package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"groom-admin-backend/internal/store"
)

var _ store.Tables = (*DatabaseClient)(nil)

func TestBuildSelect_FilterOrderRange(t *testing.T) {
	query, args, err := buildSelect("bookings", store.Query{
		Columns: "*",
		Where:   []store.Condition{store.Eq("status", "confirmed")},
		Order:   []store.Order{{Column: "created_at", Ascending: true}},
		Range:   &store.Range{From: 10, To: 19},
		Count:   true,
	})
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT COALESCE(json_agg(row_to_json(t)), '[]'::json) FROM (SELECT * FROM "bookings" WHERE "status" = $1 ORDER BY "created_at" ASC LIMIT 10 OFFSET 10) t`,
		query)
	assert.Equal(t, []any{"confirmed"}, args)
}

func TestBuildSelect_Columns(t *testing.T) {
	query, _, err := buildSelect("services", store.Query{Columns: "id, name"})
	require.NoError(t, err)
	assert.Contains(t, query, `SELECT "id", "name" FROM "services"`)
}

func TestBuildSelect_RejectsBadIdentifiers(t *testing.T) {
	_, _, err := buildSelect("bookings; drop table users", store.Query{})
	assert.Error(t, err)

	_, _, err = buildSelect("bookings", store.Query{Order: []store.Order{{Column: "id desc"}}})
	assert.Error(t, err)
}

func TestBuildCount(t *testing.T) {
	query, args, err := buildCount("bookings", []store.Condition{
		store.Gte("created_at", "2024-03-01T00:00:00Z"),
		store.Lte("created_at", "2024-03-08T00:00:00Z"),
	})
	require.NoError(t, err)

	assert.Equal(t, `SELECT COUNT(*) FROM "bookings" WHERE "created_at" >= $1 AND "created_at" <= $2`, query)
	assert.Len(t, args, 2)
}

func TestBuildInsert_SortsColumns(t *testing.T) {
	query, args, err := buildInsert("plans", map[string]any{
		"price": 25.5,
		"name":  "Basic wash",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, `INSERT INTO "plans" AS t ("name", "price") VALUES ($1, $2) RETURNING row_to_json(t)`, query)
	assert.Equal(t, []any{"Basic wash", "25.5"}, args)
}

func TestBuildInsert_Upsert(t *testing.T) {
	query, _, err := buildInsert("users", map[string]any{
		"id":        "6f1c",
		"full_name": "Ann",
	}, "id")
	require.NoError(t, err)

	assert.Equal(t,
		`INSERT INTO "users" AS t ("full_name", "id") VALUES ($1, $2) ON CONFLICT ("id") DO UPDATE SET "full_name" = EXCLUDED."full_name" RETURNING row_to_json(t)`,
		query)
}

func TestBuildUpdate_PlaceholdersContinueIntoWhere(t *testing.T) {
	query, args, err := buildUpdate("bookings", map[string]any{"status": "done", "paid_amount": 40}, []store.Condition{store.Eq("id", 7)})
	require.NoError(t, err)

	assert.Equal(t, `UPDATE "bookings" AS t SET "paid_amount" = $1, "status" = $2 WHERE "id" = $3 RETURNING row_to_json(t)`, query)
	assert.Equal(t, []any{"40", "done", 7}, args)
}

func TestBuildUpdate_EmptyPatch(t *testing.T) {
	_, _, err := buildUpdate("contact", map[string]any{}, []store.Condition{store.Eq("id", 1)})
	assert.Error(t, err)
}

func TestBuildDelete_RequiresFilter(t *testing.T) {
	_, _, err := buildDelete("services", nil)
	assert.Error(t, err)

	query, args, err := buildDelete("services", []store.Condition{store.Eq("id", 3)})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "services" WHERE "id" = $1`, query)
	assert.Equal(t, []any{3}, args)
}
