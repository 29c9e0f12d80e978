package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Service validates catalog requests against the table whitelists.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// List parses raw query parameters into whitelisted filters. Unknown
// parameters are ignored; a non-boolean value for a filter column is invalid.
func (s *Service) List(ctx context.Context, table string, params map[string]string) ([]Row, error) {
	t, err := Lookup(table)
	if err != nil {
		return nil, err
	}
	q := Query{Filters: map[string]bool{}, Limit: defaultLimit}
	for key, raw := range params {
		switch {
		case key == "q":
			q.Search = strings.TrimSpace(raw)
		case key == "limit":
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: limit", ErrInvalidInput)
			}
			if n > 0 {
				q.Limit = min(n, maxLimit)
			}
		case key == "offset":
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: offset", ErrInvalidInput)
			}
			q.Offset = n
		case t.allowsFilter(key):
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be true or false", ErrInvalidInput, key)
			}
			q.Filters[key] = b
		}
	}
	return s.Repo.List(ctx, t, q)
}

func (s *Service) Get(ctx context.Context, table, id string) (Row, error) {
	t, err := Lookup(table)
	if err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, t, id)
}

// Update applies fields after checking every column is updatable.
func (s *Service) Update(ctx context.Context, table, id string, fields map[string]any) (Row, error) {
	t, err := Lookup(table)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	for col := range fields {
		if !t.allowsUpdate(col) {
			return nil, fmt.Errorf("%w: column %q is not updatable", ErrInvalidInput, col)
		}
	}
	if name, ok := fields[t.NameColumn]; ok {
		if str, _ := name.(string); strings.TrimSpace(str) == "" {
			return nil, fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, t.NameColumn)
		}
	}
	return s.Repo.Update(ctx, t, id, fields)
}

// Insert is used by the seeder; rows must carry an id.
func (s *Service) Insert(ctx context.Context, table string, rows []Row) error {
	t, err := Lookup(table)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if id, _ := row["id"].(string); id == "" {
			return fmt.Errorf("%w: row without id", ErrInvalidInput)
		}
	}
	return s.Repo.Insert(ctx, t, rows)
}
