package forms

import (
	"time"
)

// TableMultistepForms is the logical table every layout candidate targets.
const TableMultistepForms = "multistep_forms"

// GenericType tags records written to the fallback tables.
const GenericType = "multistep_form"

// Layout describes one candidate column layout of the multistep form table.
type Layout struct {
	Name             string
	IdentifierColumn string
	PayloadColumn    string
	ConflictColumn   string
}

var (
	LayoutEmailFormData = Layout{Name: "email_form_data", IdentifierColumn: "user_email", PayloadColumn: "form_data", ConflictColumn: "user_email"}
	LayoutIDFormData    = Layout{Name: "id_form_data", IdentifierColumn: "user_id", PayloadColumn: "form_data", ConflictColumn: "user_id"}
	LayoutIDData        = Layout{Name: "id_data", IdentifierColumn: "user_id", PayloadColumn: "data", ConflictColumn: "user_id"}
)

// DefaultFallbackTables receive a generic record when no layout fits.
var DefaultFallbackTables = []string{"form_submissions", "user_submissions"}

// Layouts returns the candidates in probe order.
func Layouts() []Layout {
	return []Layout{LayoutEmailFormData, LayoutIDFormData, LayoutIDData}
}

// LayoutByName resolves a FORM_SCHEMA value.
func LayoutByName(name string) (Layout, bool) {
	for _, l := range Layouts() {
		if l.Name == name {
			return l, true
		}
	}
	return Layout{}, false
}

// Submission is one save request from the multistep form.
type Submission struct {
	Identifier string
	FormData   map[string]any
	Completed  bool
	Qualified  bool
}

// Record is a stored form, whichever layout or table accepted it.
type Record struct {
	ID         string
	Identifier string
	FormData   map[string]any
	Completed  bool
	Qualified  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Layout     string
	Table      string
}

// GenericRecord is the minimal shape written to fallback tables.
type GenericRecord struct {
	ID         string
	Identifier string
	Type       string
	Payload    string
	CreatedAt  time.Time
}

type genericPayload struct {
	FormData  map[string]any `json:"form_data"`
	Completed bool           `json:"completed"`
	Qualified bool           `json:"qualified"`
}
