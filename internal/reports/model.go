package reports

import (
	"errors"
	"time"
)

// Tool types, also the prompt template names.
const (
	ToolVisaMatch      = "visa_match"
	ToolGetOpportunity = "get_opportunity"
	ToolCriadorSonhos  = "criador_sonhos"
)

// Tools lists every report generator.
func Tools() []string {
	return []string{ToolVisaMatch, ToolGetOpportunity, ToolCriadorSonhos}
}

// Default persistence targets: the primary reports table, then the legacy one.
var DefaultTables = []string{"user_reports", "reports"}

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnknownTool    = errors.New("unknown tool")
	ErrGeneration     = errors.New("report generation failed")
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// Report is generated text stored with the input that produced it.
type Report struct {
	ID        string         `json:"id"`
	UserEmail string         `json:"user_email"`
	ToolType  string         `json:"tool_type"`
	Content   string         `json:"content"`
	Input     map[string]any `json:"input"`
	Model     string         `json:"model,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
