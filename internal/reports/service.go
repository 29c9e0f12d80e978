package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"lifeway-backend/internal/forms"
	"lifeway-backend/internal/llm"
	"lifeway-backend/internal/shared/metrics"
	"lifeway-backend/internal/shared/telemetry"
)

const defaultListLimit = 50

// ProfileLoader fetches a stored multistep form for prompt context.
type ProfileLoader interface {
	Find(ctx context.Context, identifier string) (forms.Record, error)
}

// Service renders prompts, calls the LLM and stores the result.
type Service struct {
	LLM      llm.Completer
	Repo     Repo
	Profiles ProfileLoader
	Model    string
	Tables   []string

	templates map[string]*template.Template
}

// NewService parses the embedded prompt templates.
func NewService(completer llm.Completer, repo Repo, profiles ProfileLoader, model string) (*Service, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	return &Service{
		LLM:       completer,
		Repo:      repo,
		Profiles:  profiles,
		Model:     model,
		Tables:    append([]string(nil), DefaultTables...),
		templates: templates,
	}, nil
}

// Result is a generated report and whether it was persisted.
type Result struct {
	Report Report
	Saved  bool
}

// Generate runs the tool for the request body input. input must carry a
// non-empty "email"; without it the LLM is never called.
func (s *Service) Generate(ctx context.Context, tool string, input map[string]any) (Result, error) {
	tmpl, ok := s.templates[tool]
	if !ok {
		return Result{}, ErrUnknownTool
	}
	email := emailFrom(input)
	if email == "" {
		return Result{}, ErrInvalidInput
	}

	var profile map[string]any
	if s.Profiles != nil {
		rec, err := s.Profiles.Find(ctx, email)
		switch {
		case err == nil:
			profile = rec.FormData
		case errors.Is(err, forms.ErrNotFound):
		default:
			telemetry.Warn("reports.profile_lookup_failed", map[string]any{"tool_type": tool, "error": err})
		}
	}

	prompt, err := render(tmpl, buildPromptData(email, input, profile))
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	completion, err := s.LLM.Complete(ctx, prompt)
	if err != nil {
		metrics.IncReportFailed(tool)
		telemetry.Error("reports.generation_failed", map[string]any{"tool_type": tool, "error": err})
		return Result{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	model := completion.Model
	if model == "" {
		model = s.Model
	}
	rep := Report{
		ID:        uuid.NewString(),
		UserEmail: email,
		ToolType:  tool,
		Content:   completion.Text,
		Input:     input,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}
	saved := s.persist(ctx, rep)
	metrics.IncReportGenerated(tool)
	telemetry.Info("reports.generated", map[string]any{
		"tool_type":   tool,
		"saved":       saved,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return Result{Report: rep, Saved: saved}, nil
}

// List returns stored reports for email, newest first.
func (s *Service) List(ctx context.Context, email, toolType string) ([]Report, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrInvalidInput
	}
	if toolType != "" {
		if _, ok := s.templates[toolType]; !ok {
			return nil, ErrUnknownTool
		}
	}
	for _, table := range s.tables() {
		out, err := s.Repo.List(ctx, table, email, toolType, defaultListLimit)
		if errors.Is(err, ErrSchemaMismatch) {
			continue
		}
		return out, err
	}
	return []Report{}, nil
}

// persist tries each table in order. A generated report whose storage fails
// is still returned to the caller, flagged as unsaved.
func (s *Service) persist(ctx context.Context, rep Report) bool {
	if s.Repo == nil {
		return false
	}
	for _, table := range s.tables() {
		err := s.Repo.Insert(ctx, table, rep)
		if err == nil {
			return true
		}
		if errors.Is(err, ErrSchemaMismatch) {
			telemetry.Warn("reports.table_mismatch", map[string]any{"table": table})
			continue
		}
		telemetry.Error("reports.persist_failed", map[string]any{"table": table, "tool_type": rep.ToolType, "error": err})
		return false
	}
	telemetry.Error("reports.persist_failed", map[string]any{"tool_type": rep.ToolType, "reason": "no table accepted the report"})
	return false
}

func (s *Service) tables() []string {
	if len(s.Tables) == 0 {
		return DefaultTables
	}
	return s.Tables
}

func emailFrom(input map[string]any) string {
	for _, k := range []string{"email", "user_email"} {
		if v, ok := input[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
