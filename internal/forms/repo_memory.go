package forms

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo. Accepted layouts and tables can be
// restricted to emulate a database whose schema drifted.
type MemoryRepo struct {
	mu      sync.Mutex
	layouts map[string]bool
	tables  map[string]bool
	records map[string]Record
	generic map[string][]GenericRecord
	nextID  int64
}

// MemoryOption configures a MemoryRepo.
type MemoryOption func(*MemoryRepo)

// AcceptLayouts limits the layouts the repo accepts; others fail with ErrSchemaMismatch.
func AcceptLayouts(names ...string) MemoryOption {
	return func(r *MemoryRepo) {
		r.layouts = toSet(names)
	}
}

// AcceptTables limits the tables the repo accepts; others fail with ErrSchemaMismatch.
func AcceptTables(names ...string) MemoryOption {
	return func(r *MemoryRepo) {
		r.tables = toSet(names)
	}
}

// NewMemoryRepo constructs a MemoryRepo accepting every layout and table by default.
func NewMemoryRepo(opts ...MemoryOption) *MemoryRepo {
	r := &MemoryRepo{
		records: map[string]Record{},
		generic: map[string][]GenericRecord{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRepo) Upsert(ctx context.Context, table string, layout Layout, sub Submission) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.accepts(table, layout.Name) {
		return Record{}, ErrSchemaMismatch
	}

	now := time.Now().UTC()
	key := recordKey(table, layout, sub.Identifier)
	rec, ok := r.records[key]
	if !ok {
		r.nextID++
		rec = Record{ID: strconv.FormatInt(r.nextID, 10), Identifier: sub.Identifier, CreatedAt: now, Layout: layout.Name, Table: table}
	}
	rec.FormData = copyMap(sub.FormData)
	rec.Completed = sub.Completed
	rec.Qualified = sub.Qualified
	rec.UpdatedAt = now
	r.records[key] = rec

	rec.FormData = copyMap(rec.FormData)
	return rec, nil
}

func (r *MemoryRepo) InsertGeneric(ctx context.Context, table string, rec GenericRecord) (GenericRecord, error) {
	if err := ctx.Err(); err != nil {
		return GenericRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tables != nil && !r.tables[table] {
		return GenericRecord{}, ErrSchemaMismatch
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.generic[table] = append(r.generic[table], rec)
	return rec, nil
}

func (r *MemoryRepo) Find(ctx context.Context, table string, layout Layout, identifier string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.accepts(table, layout.Name) {
		return Record{}, ErrSchemaMismatch
	}
	rec, ok := r.records[recordKey(table, layout, identifier)]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.FormData = copyMap(rec.FormData)
	return rec, nil
}

func (r *MemoryRepo) FindGeneric(ctx context.Context, table, identifier string) (GenericRecord, error) {
	if err := ctx.Err(); err != nil {
		return GenericRecord{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tables != nil && !r.tables[table] {
		return GenericRecord{}, ErrSchemaMismatch
	}
	rows := r.generic[table]
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Identifier == identifier && rows[i].Type == GenericType {
			return rows[i], nil
		}
	}
	return GenericRecord{}, ErrNotFound
}

// accepts reports whether the layout fits; callers hold r.mu.
func (r *MemoryRepo) accepts(table, layout string) bool {
	if r.tables != nil && !r.tables[table] {
		return false
	}
	return r.layouts == nil || r.layouts[layout]
}

// Records written under a layout are keyed by its identifier column, so
// email_form_data and id_form_data rows never see each other.
func recordKey(table string, layout Layout, identifier string) string {
	return table + "|" + layout.IdentifierColumn + "|" + layout.PayloadColumn + "|" + identifier
}

func toSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
