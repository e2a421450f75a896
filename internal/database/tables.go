package database

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lib/pq"
	"groom-admin-backend/internal/store"
)

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// DatabaseClient serves store.Tables straight from Postgres. Rows are
// rendered with row_to_json so results match what PostgREST returns.
type DatabaseClient struct {
	db *sql.DB
}

func Open(connectionString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func NewDatabaseClient(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func (d *DatabaseClient) Select(ctx context.Context, table string, q store.Query) ([]byte, int64, error) {
	query, args, err := buildSelect(table, q)
	if err != nil {
		return nil, 0, err
	}
	var rows []byte
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&rows); err != nil {
		return nil, 0, fmt.Errorf("failed to select from %s: %w", table, err)
	}

	var count int64
	if q.Count {
		countQuery, countArgs, err := buildCount(table, q.Where)
		if err != nil {
			return nil, 0, err
		}
		if err := d.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
			return nil, 0, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}
	return rows, count, nil
}

func (d *DatabaseClient) Insert(ctx context.Context, table string, row any) ([]byte, error) {
	query, args, err := buildInsert(table, row, "")
	if err != nil {
		return nil, err
	}
	return d.returning(ctx, query, args, "insert into "+table)
}

func (d *DatabaseClient) Upsert(ctx context.Context, table string, row any, onConflict string) ([]byte, error) {
	query, args, err := buildInsert(table, row, onConflict)
	if err != nil {
		return nil, err
	}
	return d.returning(ctx, query, args, "upsert into "+table)
}

func (d *DatabaseClient) Update(ctx context.Context, table string, patch any, where ...store.Condition) ([]byte, error) {
	query, args, err := buildUpdate(table, patch, where)
	if err != nil {
		return nil, err
	}
	return d.returning(ctx, query, args, "update "+table)
}

func (d *DatabaseClient) Delete(ctx context.Context, table string, where ...store.Condition) error {
	query, args, err := buildDelete(table, where)
	if err != nil {
		return err
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// returning runs a statement ending in RETURNING row_to_json(t) and joins
// the rows into a JSON array.
func (d *DatabaseClient) returning(ctx context.Context, query string, args []any, op string) ([]byte, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	buf.WriteByte('[')
	for n := 0; rows.Next(); n++ {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", op, err)
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.Write(raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

func quote(name string) (string, error) {
	if !identifier.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return pq.QuoteIdentifier(name), nil
}

func columnList(columns string) (string, error) {
	if strings.TrimSpace(columns) == "" || strings.TrimSpace(columns) == "*" {
		return "*", nil
	}
	parts := strings.Split(columns, ",")
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		q, err := quote(strings.TrimSpace(p))
		if err != nil {
			return "", err
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, ", "), nil
}

// whereClause renders conditions with placeholders starting at $start.
func whereClause(where []store.Condition, start int) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(where))
	args := make([]any, 0, len(where))
	for i, c := range where {
		col, err := quote(c.Column)
		if err != nil {
			return "", nil, err
		}
		var op string
		switch c.Op {
		case store.OpEq:
			op = "="
		case store.OpGte:
			op = ">="
		case store.OpLte:
			op = "<="
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", col, op, start+i))
		args = append(args, c.Value)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func buildSelect(table string, q store.Query) (string, []any, error) {
	tbl, err := quote(table)
	if err != nil {
		return "", nil, err
	}
	cols, err := columnList(q.Columns)
	if err != nil {
		return "", nil, err
	}
	where, args, err := whereClause(q.Where, 1)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s%s", cols, tbl, where)
	if len(q.Order) > 0 {
		orders := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			col, err := quote(o.Column)
			if err != nil {
				return "", nil, err
			}
			dir := "DESC"
			if o.Ascending {
				dir = "ASC"
			}
			orders = append(orders, col+" "+dir)
		}
		b.WriteString(" ORDER BY " + strings.Join(orders, ", "))
	}
	if q.Range != nil {
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", q.Range.To-q.Range.From+1, q.Range.From)
	}

	return fmt.Sprintf("SELECT COALESCE(json_agg(row_to_json(t)), '[]'::json) FROM (%s) t", b.String()), args, nil
}

func buildCount(table string, conditions []store.Condition) (string, []any, error) {
	tbl, err := quote(table)
	if err != nil {
		return "", nil, err
	}
	where, args, err := whereClause(conditions, 1)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", tbl, where), args, nil
}

func buildInsert(table string, row any, onConflict string) (string, []any, error) {
	tbl, err := quote(table)
	if err != nil {
		return "", nil, err
	}
	cols, args, err := fields(row)
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return fmt.Sprintf("INSERT INTO %s AS t DEFAULT VALUES RETURNING row_to_json(t)", tbl), nil, nil
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s AS t (%s) VALUES (%s)", tbl, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if onConflict != "" {
		target, err := quote(onConflict)
		if err != nil {
			return "", nil, err
		}
		sets := make([]string, 0, len(cols))
		for _, c := range cols {
			if c != target {
				sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
			}
		}
		if len(sets) == 0 {
			query += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", target)
		} else {
			query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", target, strings.Join(sets, ", "))
		}
	}
	return query + " RETURNING row_to_json(t)", args, nil
}

func buildUpdate(table string, patch any, conditions []store.Condition) (string, []any, error) {
	tbl, err := quote(table)
	if err != nil {
		return "", nil, err
	}
	cols, args, err := fields(patch)
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("empty update for %s", table)
	}
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	where, whereArgs, err := whereClause(conditions, len(cols)+1)
	if err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf("UPDATE %s AS t SET %s%s RETURNING row_to_json(t)", tbl, strings.Join(sets, ", "), where)
	return query, append(args, whereArgs...), nil
}

func buildDelete(table string, conditions []store.Condition) (string, []any, error) {
	tbl, err := quote(table)
	if err != nil {
		return "", nil, err
	}
	if len(conditions) == 0 {
		return "", nil, fmt.Errorf("refusing to delete from %s without a filter", table)
	}
	where, args, err := whereClause(conditions, 1)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("DELETE FROM %s%s", tbl, where), args, nil
}

// fields flattens a row through its JSON form into sorted quoted columns
// and their values. Numbers keep their textual form.
func fields(row any) ([]string, []any, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode row: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	values := map[string]any{}
	if err := dec.Decode(&values); err != nil {
		return nil, nil, fmt.Errorf("row must encode to an object: %w", err)
	}

	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)

	cols := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for _, name := range names {
		col, err := quote(name)
		if err != nil {
			return nil, nil, err
		}
		cols = append(cols, col)
		args = append(args, sqlValue(values[name]))
	}
	return cols, args, nil
}

func sqlValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		return val.String()
	case map[string]any, []any:
		b, _ := json.Marshal(val)
		return string(b)
	default:
		return val
	}
}
