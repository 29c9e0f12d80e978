package catalog

import (
	"errors"
	"sort"
)

var (
	ErrUnknownTable = errors.New("unknown catalog table")
	ErrNotFound     = errors.New("catalog row not found")
	ErrInvalidInput = errors.New("invalid catalog input")
)

// Row is one catalog record keyed by column name.
type Row map[string]any

// Table describes a reference table exposed under /api/catalog.
type Table struct {
	Name       string
	NameColumn string
	// Filters are boolean columns accepted as query filters.
	Filters []string
	// Updatable are the columns PUT may change.
	Updatable []string
}

func (t Table) allowsFilter(col string) bool { return contains(t.Filters, col) }

func (t Table) allowsUpdate(col string) bool { return contains(t.Updatable, col) }

var tables = map[string]Table{
	"cities": {
		Name:       "cities",
		NameColumn: "name",
		Filters:    []string{"is_featured", "is_capital"},
		Updatable:  []string{"name", "state", "description", "image_url", "population", "is_featured", "is_capital"},
	},
	"schools": {
		Name:       "schools",
		NameColumn: "name",
		Filters:    []string{"is_public", "has_esl"},
		Updatable:  []string{"name", "city", "state", "website", "description", "is_public", "has_esl"},
	},
	"universities": {
		Name:       "universities",
		NameColumn: "name",
		Filters:    []string{"is_public", "is_featured"},
		Updatable:  []string{"name", "city", "state", "website", "ranking", "description", "is_public", "is_featured"},
	},
	"professional_courses": {
		Name:       "professional_courses",
		NameColumn: "name",
		Filters:    []string{"is_online", "is_featured"},
		Updatable:  []string{"name", "provider", "area", "duration_weeks", "description", "is_online", "is_featured"},
	},
	"empresa": {
		Name:       "empresa",
		NameColumn: "nome",
		Filters:    []string{"ativo", "patrocina_visto"},
		Updatable:  []string{"nome", "setor", "cidade", "estado", "website", "descricao", "ativo", "patrocina_visto"},
	},
}

// Lookup returns the table registered under name.
func Lookup(name string) (Table, error) {
	t, ok := tables[name]
	if !ok {
		return Table{}, ErrUnknownTable
	}
	return t, nil
}

// Tables lists the registered table names, sorted.
func Tables() []string {
	out := make([]string, 0, len(tables))
	for name := range tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Query narrows List.
type Query struct {
	Filters map[string]bool
	Search  string
	Limit   int
	Offset  int
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
