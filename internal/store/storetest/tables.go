// Package storetest provides in-memory backends for tests.
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"groom-admin-backend/internal/store"
)

type Row = map[string]any

// Call records one Tables operation.
type Call struct {
	Op      string
	Table   string
	Query   store.Query
	Where   []store.Condition
	Payload Row
}

// Tables is an in-memory store.Tables. Values are normalized through JSON so
// rows look the way a real backend returns them.
type Tables struct {
	mu     sync.Mutex
	rows   map[string][]Row
	nextID map[string]int64
	fail   map[string]error
	calls  []Call
}

func NewTables() *Tables {
	return &Tables{
		rows:   make(map[string][]Row),
		nextID: make(map[string]int64),
		fail:   make(map[string]error),
	}
}

// Seed appends rows to table.
func (t *Tables) Seed(table string, rows ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range rows {
		row := normalize(r)
		t.trackID(table, row)
		t.rows[table] = append(t.rows[table], row)
	}
}

// FailOn makes every op ("select", "insert", "upsert", "update", "delete")
// on table return err.
func (t *Tables) FailOn(op, table string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fail[op+":"+table] = err
}

func (t *Tables) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// CallsTo filters recorded calls by op and table.
func (t *Tables) CallsTo(op, table string) []Call {
	var out []Call
	for _, c := range t.Calls() {
		if c.Op == op && c.Table == table {
			out = append(out, c)
		}
	}
	return out
}

func (t *Tables) Rows(table string) []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Row, len(t.rows[table]))
	for i, r := range t.rows[table] {
		out[i] = copyRow(r)
	}
	return out
}

func (t *Tables) Select(_ context.Context, table string, q store.Query) ([]byte, int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Op: "select", Table: table, Query: q, Where: q.Where})
	if err := t.fail["select:"+table]; err != nil {
		return nil, 0, err
	}

	var matched []Row
	for _, r := range t.rows[table] {
		if matches(r, q.Where) {
			matched = append(matched, copyRow(r))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		for _, o := range q.Order {
			c := compare(matched[i][o.Column], matched[j][o.Column])
			if c == 0 {
				continue
			}
			if o.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	count := int64(len(matched))
	if q.Range != nil {
		from, to := q.Range.From, q.Range.To+1
		if from > len(matched) {
			from = len(matched)
		}
		if to > len(matched) {
			to = len(matched)
		}
		matched = matched[from:to]
	}
	if !q.Count {
		count = 0
	}
	return encode(matched), count, nil
}

func (t *Tables) Insert(_ context.Context, table string, row any) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := normalize(row)
	t.calls = append(t.calls, Call{Op: "insert", Table: table, Payload: copyRow(r)})
	if err := t.fail["insert:"+table]; err != nil {
		return nil, err
	}
	if _, ok := r["id"]; !ok {
		t.nextID[table]++
		r["id"] = float64(t.nextID[table])
	} else {
		t.trackID(table, r)
	}
	t.rows[table] = append(t.rows[table], r)
	return encode([]Row{r}), nil
}

func (t *Tables) Upsert(_ context.Context, table string, row any, onConflict string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := normalize(row)
	t.calls = append(t.calls, Call{Op: "upsert", Table: table, Payload: copyRow(r)})
	if err := t.fail["upsert:"+table]; err != nil {
		return nil, err
	}
	for i, existing := range t.rows[table] {
		if compare(existing[onConflict], r[onConflict]) == 0 {
			for k, v := range r {
				existing[k] = v
			}
			t.rows[table][i] = existing
			return encode([]Row{existing}), nil
		}
	}
	t.rows[table] = append(t.rows[table], r)
	return encode([]Row{r}), nil
}

func (t *Tables) Update(_ context.Context, table string, patch any, where ...store.Condition) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := normalize(patch)
	t.calls = append(t.calls, Call{Op: "update", Table: table, Where: where, Payload: copyRow(p)})
	if err := t.fail["update:"+table]; err != nil {
		return nil, err
	}
	var updated []Row
	for _, r := range t.rows[table] {
		if !matches(r, where) {
			continue
		}
		for k, v := range p {
			r[k] = v
		}
		updated = append(updated, copyRow(r))
	}
	return encode(updated), nil
}

func (t *Tables) Delete(_ context.Context, table string, where ...store.Condition) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Op: "delete", Table: table, Where: where})
	if err := t.fail["delete:"+table]; err != nil {
		return err
	}
	kept := t.rows[table][:0]
	for _, r := range t.rows[table] {
		if !matches(r, where) {
			kept = append(kept, r)
		}
	}
	t.rows[table] = kept
	return nil
}

func (t *Tables) trackID(table string, r Row) {
	if id, ok := r["id"].(float64); ok && int64(id) > t.nextID[table] {
		t.nextID[table] = int64(id)
	}
}

func matches(r Row, where []store.Condition) bool {
	for _, c := range where {
		v := normalizeValue(c.Value)
		cmp := compare(r[c.Column], v)
		switch c.Op {
		case store.OpEq:
			if cmp != 0 {
				return false
			}
		case store.OpGte:
			if cmp < 0 {
				return false
			}
		case store.OpLte:
			if cmp > 0 {
				return false
			}
		}
	}
	return true
}

func compare(a, b any) int {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

func normalize(v any) Row {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("storetest: cannot encode %T: %v", v, err))
	}
	row := Row{}
	if err := json.Unmarshal(b, &row); err != nil {
		panic(fmt.Sprintf("storetest: %T is not an object: %v", v, err))
	}
	return row
}

func normalizeValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func encode(rows []Row) []byte {
	if rows == nil {
		rows = []Row{}
	}
	b, _ := json.Marshal(rows)
	return b
}
