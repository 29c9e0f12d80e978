package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifeway-backend/internal/shared/metrics"
	"lifeway-backend/internal/shared/telemetry"
)

// Failure classes reported per attempt.
const (
	ClassSchemaMismatch = "schema_mismatch"
	ClassError          = "error"
)

// LayoutGeneric names records that landed in a fallback table.
const LayoutGeneric = "generic"

// Attempt is one target the probe tried.
type Attempt struct {
	Table  string `json:"table"`
	Layout string `json:"layout,omitempty"`
	Class  string `json:"class"`
}

// ProbeError is returned when no target accepted the submission. Err holds
// the failure that stopped the probe early, if any.
type ProbeError struct {
	Attempts []Attempt
	Err      error
}

func (e *ProbeError) Error() string {
	targets := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		name := a.Table
		if a.Layout != "" {
			name += "/" + a.Layout
		}
		targets = append(targets, name+"="+a.Class)
	}
	msg := "form persistence failed: " + strings.Join(targets, ", ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Result is a successful save.
type Result struct {
	Record   Record
	Attempts []Attempt
}

// Prober saves submissions against a table whose column layout is not known
// up front. With no pinned layout it tries every candidate in order; a schema
// mismatch moves on to the next one, any other failure stops immediately.
type Prober struct {
	Repo           Repo
	Table          string
	FallbackTables []string
	// Pinned restricts the probe to one layout (FORM_SCHEMA). Empty or "auto" probes.
	Pinned string
}

// NewProber builds a Prober for multistep_forms with the default fallback tables.
func NewProber(repo Repo, formSchema string) (*Prober, error) {
	formSchema = strings.TrimSpace(strings.ToLower(formSchema))
	if formSchema == "auto" {
		formSchema = ""
	}
	if formSchema != "" {
		if _, ok := LayoutByName(formSchema); !ok {
			return nil, fmt.Errorf("unknown FORM_SCHEMA %q", formSchema)
		}
	}
	return &Prober{
		Repo:           repo,
		Table:          TableMultistepForms,
		FallbackTables: append([]string(nil), DefaultFallbackTables...),
		Pinned:         formSchema,
	}, nil
}

// Save persists sub into the first target that accepts it.
func (p *Prober) Save(ctx context.Context, sub Submission) (Result, error) {
	sub.Identifier = strings.TrimSpace(sub.Identifier)
	if sub.Identifier == "" {
		return Result{}, ErrInvalidInput
	}
	if sub.FormData == nil {
		sub.FormData = map[string]any{}
	}

	var attempts []Attempt
	for _, layout := range p.candidates() {
		metrics.IncFormProbeAttempt()
		rec, err := p.Repo.Upsert(ctx, p.table(), layout, sub)
		if err == nil {
			attempts = append(attempts, Attempt{Table: p.table(), Layout: layout.Name, Class: "ok"})
			telemetry.Info("forms.saved", map[string]any{"layout": layout.Name, "table": p.table(), "attempts": len(attempts)})
			return Result{Record: rec, Attempts: attempts}, nil
		}
		if !errors.Is(err, ErrSchemaMismatch) {
			attempts = append(attempts, Attempt{Table: p.table(), Layout: layout.Name, Class: ClassError})
			return Result{}, p.fail(attempts, err)
		}
		attempts = append(attempts, Attempt{Table: p.table(), Layout: layout.Name, Class: ClassSchemaMismatch})
		telemetry.Warn("forms.layout_mismatch", map[string]any{"layout": layout.Name, "table": p.table()})
	}

	payload, err := json.Marshal(genericPayload{FormData: sub.FormData, Completed: sub.Completed, Qualified: sub.Qualified})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for _, table := range p.FallbackTables {
		metrics.IncFormProbeAttempt()
		gen, err := p.Repo.InsertGeneric(ctx, table, GenericRecord{
			ID:         uuid.NewString(),
			Identifier: sub.Identifier,
			Type:       GenericType,
			Payload:    string(payload),
			CreatedAt:  time.Now().UTC(),
		})
		if err == nil {
			attempts = append(attempts, Attempt{Table: table, Class: "ok"})
			telemetry.Warn("forms.saved_fallback", map[string]any{"table": table, "attempts": len(attempts)})
			return Result{Record: fromGeneric(gen, sub, table), Attempts: attempts}, nil
		}
		if !errors.Is(err, ErrSchemaMismatch) {
			attempts = append(attempts, Attempt{Table: table, Class: ClassError})
			return Result{}, p.fail(attempts, err)
		}
		attempts = append(attempts, Attempt{Table: table, Class: ClassSchemaMismatch})
	}

	return Result{}, p.fail(attempts, nil)
}

// Find returns the stored form for identifier, checking the layouts in probe
// order and then the fallback tables.
func (p *Prober) Find(ctx context.Context, identifier string) (Record, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Record{}, ErrInvalidInput
	}

	for _, layout := range p.candidates() {
		rec, err := p.Repo.Find(ctx, p.table(), layout, identifier)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrSchemaMismatch) {
			return Record{}, err
		}
	}

	for _, table := range p.FallbackTables {
		gen, err := p.Repo.FindGeneric(ctx, table, identifier)
		if err == nil {
			var payload genericPayload
			if err := json.Unmarshal([]byte(gen.Payload), &payload); err != nil {
				return Record{}, fmt.Errorf("decode fallback payload: %w", err)
			}
			return fromGeneric(gen, Submission{Identifier: gen.Identifier, FormData: payload.FormData, Completed: payload.Completed, Qualified: payload.Qualified}, table), nil
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrSchemaMismatch) {
			return Record{}, err
		}
	}
	return Record{}, ErrNotFound
}

// candidates returns the layouts to try, always in the fixed probe order.
func (p *Prober) candidates() []Layout {
	if p.Pinned != "" {
		if l, ok := LayoutByName(p.Pinned); ok {
			return []Layout{l}
		}
	}
	return Layouts()
}

func (p *Prober) table() string {
	if p.Table == "" {
		return TableMultistepForms
	}
	return p.Table
}

func (p *Prober) fail(attempts []Attempt, err error) error {
	metrics.IncFormProbeFailure()
	fields := map[string]any{"attempts": len(attempts)}
	if err != nil {
		fields["error"] = err
	}
	telemetry.Error("forms.save_failed", fields)
	return &ProbeError{Attempts: attempts, Err: err}
}

func fromGeneric(gen GenericRecord, sub Submission, table string) Record {
	data := sub.FormData
	if data == nil {
		data = map[string]any{}
	}
	return Record{
		ID:         gen.ID,
		Identifier: gen.Identifier,
		FormData:   data,
		Completed:  sub.Completed,
		Qualified:  sub.Qualified,
		CreatedAt:  gen.CreatedAt,
		UpdatedAt:  gen.CreatedAt,
		Layout:     LayoutGeneric,
		Table:      table,
	}
}
