package llm

import (
	"context"
	"errors"
)

// Prompt is a single-turn chat request.
type Prompt struct {
	System string
	User   string
}

// Completion is the text returned by the provider plus usage accounting.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Completer abstracts chat-completion providers.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}

var (
	// ErrNotConfigured is returned by the placeholder when no provider key is set.
	ErrNotConfigured = errors.New("LLM not configured")
	// ErrTransient marks provider failures worth one retry (5xx, rate limit).
	ErrTransient = errors.New("llm transient failure")

	ErrEmptyResponse = errors.New("llm returned empty content")
)

// PlaceholderCompleter is used when OPENAI_API_KEY is absent.
type PlaceholderCompleter struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderCompleter) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	_ = ctx
	_ = prompt
	return Completion{}, ErrNotConfigured
}
