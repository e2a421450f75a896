package supabase

import (
	"context"
	"fmt"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"groom-admin-backend/internal/store"
)

// TableClient serves store.Tables through PostgREST. Every request carries
// ctx, so deadlines and cancellation reach the HTTP call.
type TableClient struct {
	client *supabase.Client
}

func NewTableClient(client *supabase.Client) *TableClient {
	return &TableClient{client: client}
}

func (t *TableClient) Select(ctx context.Context, table string, q store.Query) ([]byte, int64, error) {
	columns := q.Columns
	if columns == "" {
		columns = "*"
	}
	count := ""
	if q.Count {
		count = "exact"
	}

	fb := t.client.From(table).Select(columns, count, false)
	fb = applyFilters(fb, q.Where)
	for _, o := range q.Order {
		fb = fb.Order(o.Column, &postgrest.OrderOpts{Ascending: o.Ascending})
	}
	if q.Range != nil {
		fb = fb.Range(q.Range.From, q.Range.To, "")
	}

	rows, n, err := fb.ExecuteWithContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select from %s: %w", table, err)
	}
	return rows, n, nil
}

func (t *TableClient) Insert(ctx context.Context, table string, row any) ([]byte, error) {
	rows, _, err := t.client.From(table).Insert(row, false, "", "representation", "").ExecuteWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return rows, nil
}

func (t *TableClient) Upsert(ctx context.Context, table string, row any, onConflict string) ([]byte, error) {
	rows, _, err := t.client.From(table).Upsert(row, onConflict, "representation", "").ExecuteWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return rows, nil
}

func (t *TableClient) Update(ctx context.Context, table string, patch any, where ...store.Condition) ([]byte, error) {
	fb := t.client.From(table).Update(patch, "representation", "")
	rows, _, err := applyFilters(fb, where).ExecuteWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", table, err)
	}
	return rows, nil
}

func (t *TableClient) Delete(ctx context.Context, table string, where ...store.Condition) error {
	if len(where) == 0 {
		return fmt.Errorf("refusing to delete from %s without a filter", table)
	}
	fb := t.client.From(table).Delete("", "")
	if _, _, err := applyFilters(fb, where).ExecuteWithContext(ctx); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func applyFilters(fb *postgrest.FilterBuilder, where []store.Condition) *postgrest.FilterBuilder {
	for _, c := range where {
		value := FilterValue(c.Value)
		switch c.Op {
		case store.OpGte:
			fb = fb.Gte(c.Column, value)
		case store.OpLte:
			fb = fb.Lte(c.Column, value)
		default:
			fb = fb.Eq(c.Column, value)
		}
	}
	return fb
}

// FilterValue renders a condition value the way PostgREST expects it in a
// query string.
func FilterValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case nil:
		return "null"
	default:
		return fmt.Sprint(val)
	}
}
