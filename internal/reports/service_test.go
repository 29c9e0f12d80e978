package reports

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeway-backend/internal/forms"
	"lifeway-backend/internal/llm"
)

type fakeLLM struct {
	mu      sync.Mutex
	calls   int
	prompts []llm.Prompt
	text    string
	err     error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt llm.Prompt) (llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return llm.Completion{Text: f.text, Model: "gpt-4o-mini"}, nil
}

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newService(t *testing.T, completer llm.Completer, repo Repo, profiles ProfileLoader) *Service {
	t.Helper()
	svc, err := NewService(completer, repo, profiles, "gpt-4o-mini")
	require.NoError(t, err)
	return svc
}

func TestGenerateRequiresEmailAndSkipsLLM(t *testing.T) {
	fake := &fakeLLM{text: "ok"}
	svc := newService(t, fake, NewMemoryRepo(), nil)

	for _, tool := range Tools() {
		_, err := svc.Generate(context.Background(), tool, map[string]any{"nome": "Ana"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.Equal(t, 0, fake.Calls())
}

func TestGenerateStoresReport(t *testing.T) {
	fake := &fakeLLM{text: "Relatório de vistos"}
	repo := NewMemoryRepo()
	svc := newService(t, fake, repo, nil)

	res, err := svc.Generate(context.Background(), ToolVisaMatch, map[string]any{
		"email":        "ana@example.com",
		"nome":         "Ana",
		"profissao":    "Engenheira",
		"tem_mestrado": true,
	})
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.Equal(t, "Relatório de vistos", res.Report.Content)

	require.Len(t, fake.prompts, 1)
	user := fake.prompts[0].User
	assert.Contains(t, user, "Ana (ana@example.com)")
	assert.Contains(t, user, "- Profissao: Engenheira")
	assert.Contains(t, user, "- Tem mestrado: sim")
	assert.NotEmpty(t, fake.prompts[0].System)

	listed, err := svc.List(context.Background(), "ana@example.com", ToolVisaMatch)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, res.Report.ID, listed[0].ID)
}

func TestGenerateFallsBackToSecondaryTable(t *testing.T) {
	repo := NewMemoryRepo("reports")
	svc := newService(t, &fakeLLM{text: "ok"}, repo, nil)

	res, err := svc.Generate(context.Background(), ToolGetOpportunity, map[string]any{"email": "ana@example.com"})
	require.NoError(t, err)
	assert.True(t, res.Saved)

	listed, err := svc.List(context.Background(), "ana@example.com", "")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestGeneratePersistenceFailureReturnsUnsaved(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Err = errors.New("connection reset")
	svc := newService(t, &fakeLLM{text: "texto"}, repo, nil)

	res, err := svc.Generate(context.Background(), ToolCriadorSonhos, map[string]any{"email": "ana@example.com"})
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.Equal(t, "texto", res.Report.Content)
}

func TestGenerateLLMFailure(t *testing.T) {
	fake := &fakeLLM{err: errors.New("openai http status 400: bad")}
	svc := newService(t, fake, NewMemoryRepo(), nil)

	_, err := svc.Generate(context.Background(), ToolVisaMatch, map[string]any{"email": "ana@example.com"})
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 1, fake.Calls())
}

func TestGenerateRetriesTransientOnce(t *testing.T) {
	fake := &fakeLLM{err: llm.ErrTransient}
	svc := newService(t, llm.WithRetry(fake, 0), NewMemoryRepo(), nil)

	_, err := svc.Generate(context.Background(), ToolVisaMatch, map[string]any{"email": "ana@example.com"})
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, 2, fake.Calls())
}

func TestGenerateUsesStoredProfile(t *testing.T) {
	prober, err := forms.NewProber(forms.NewMemoryRepo(), "")
	require.NoError(t, err)
	_, err = prober.Save(context.Background(), forms.Submission{
		Identifier: "ana@example.com",
		FormData:   map[string]any{"nome": "Ana Souza", "cidade_desejada": "Miami"},
	})
	require.NoError(t, err)

	fake := &fakeLLM{text: "ok"}
	svc := newService(t, fake, NewMemoryRepo(), prober)
	_, err = svc.Generate(context.Background(), ToolCriadorSonhos, map[string]any{"email": "ana@example.com"})
	require.NoError(t, err)

	user := fake.prompts[0].User
	assert.Contains(t, user, "Ana Souza (ana@example.com)")
	assert.True(t, strings.Contains(user, "- Cidade desejada: Miami"), user)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Cidade desejada", humanize("cidade_desejada"))
	assert.Equal(t, "Visa type", humanize("visaType"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "3", formatValue(float64(3)))
	assert.Equal(t, "2.5", formatValue(2.5))
	assert.Equal(t, "Miami, Orlando", formatValue([]any{"Miami", "Orlando"}))
	assert.Equal(t, "não", formatValue(false))
}
