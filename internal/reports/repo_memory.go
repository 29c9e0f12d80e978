package reports

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu      sync.Mutex
	tables  map[string]bool
	reports map[string][]Report
	// Err, when set, fails every Insert.
	Err error
}

// NewMemoryRepo accepts the given tables, or every table when none are named.
func NewMemoryRepo(tables ...string) *MemoryRepo {
	r := &MemoryRepo{reports: map[string][]Report{}}
	if len(tables) > 0 {
		r.tables = map[string]bool{}
		for _, t := range tables {
			r.tables[t] = true
		}
	}
	return r
}

func (r *MemoryRepo) Insert(ctx context.Context, table string, rep Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if r.tables != nil && !r.tables[table] {
		return ErrSchemaMismatch
	}
	r.reports[table] = append(r.reports[table], rep)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, table, email, toolType string, limit int) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tables != nil && !r.tables[table] {
		return nil, ErrSchemaMismatch
	}
	out := []Report{}
	for _, rep := range r.reports[table] {
		if rep.UserEmail != email {
			continue
		}
		if toolType != "" && rep.ToolType != toolType {
			continue
		}
		out = append(out, rep)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
