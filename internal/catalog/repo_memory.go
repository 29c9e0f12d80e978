package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo keeps catalog rows in memory.
type MemoryRepo struct {
	mu   sync.RWMutex
	rows map[string]map[string]Row
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: map[string]map[string]Row{}}
}

func (r *MemoryRepo) List(ctx context.Context, t Table, q Query) ([]Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	search := strings.ToLower(q.Search)
	out := []Row{}
	for _, row := range r.rows[t.Name] {
		if !matches(row, q.Filters) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(fmt.Sprint(row[t.NameColumn])), search) {
			continue
		}
		out = append(out, copyRow(row))
	}
	sort.Slice(out, func(i, j int) bool {
		return fmt.Sprint(out[i][t.NameColumn]) < fmt.Sprint(out[j][t.NameColumn])
	})
	if q.Offset >= len(out) {
		return []Row{}, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, t Table, id string) (Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[t.Name][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRow(row), nil
}

func (r *MemoryRepo) Update(ctx context.Context, t Table, id string, fields map[string]any) (Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[t.Name][id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range fields {
		row[k] = v
	}
	return copyRow(row), nil
}

func (r *MemoryRepo) Insert(ctx context.Context, t Table, rows []Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tbl, ok := r.rows[t.Name]
	if !ok {
		tbl = map[string]Row{}
		r.rows[t.Name] = tbl
	}
	for _, row := range rows {
		id := fmt.Sprint(row["id"])
		if _, exists := tbl[id]; exists {
			continue
		}
		tbl[id] = copyRow(row)
	}
	return nil
}

func matches(row Row, filters map[string]bool) bool {
	for col, want := range filters {
		got, _ := row[col].(bool)
		if got != want {
			return false
		}
	}
	return true
}

func copyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
