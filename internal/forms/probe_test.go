package forms

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct {
	*MemoryRepo
	err   error
	calls int
}

func (f *failingRepo) Upsert(ctx context.Context, table string, layout Layout, sub Submission) (Record, error) {
	f.calls++
	return Record{}, f.err
}

func newProber(t *testing.T, repo Repo, schema string) *Prober {
	t.Helper()
	p, err := NewProber(repo, schema)
	require.NoError(t, err)
	return p
}

func TestSaveUsesFirstAcceptedLayout(t *testing.T) {
	p := newProber(t, NewMemoryRepo(), "auto")

	res, err := p.Save(context.Background(), Submission{Identifier: "ana@example.com", FormData: map[string]any{"nome": "Ana"}})
	require.NoError(t, err)
	assert.Equal(t, "email_form_data", res.Record.Layout)
	assert.Len(t, res.Attempts, 1)
}

func TestSaveSkipsMismatchedLayouts(t *testing.T) {
	p := newProber(t, NewMemoryRepo(AcceptLayouts("id_data")), "")

	res, err := p.Save(context.Background(), Submission{Identifier: "u-42", FormData: map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, "id_data", res.Record.Layout)
	require.Len(t, res.Attempts, 3)
	assert.Equal(t, ClassSchemaMismatch, res.Attempts[0].Class)
	assert.Equal(t, ClassSchemaMismatch, res.Attempts[1].Class)

	res, err = p.Save(context.Background(), Submission{Identifier: "u-42", FormData: map[string]any{"a": 2}})
	require.NoError(t, err)
	assert.Len(t, res.Attempts, 3)
	assert.Equal(t, "email_form_data", res.Attempts[0].Layout)
}

// flakyRepo rejects the first upsert on one layout, then behaves normally.
type flakyRepo struct {
	*MemoryRepo
	layout   string
	rejected bool
}

func (f *flakyRepo) Upsert(ctx context.Context, table string, layout Layout, sub Submission) (Record, error) {
	if layout.Name == f.layout && !f.rejected {
		f.rejected = true
		return Record{}, ErrSchemaMismatch
	}
	return f.MemoryRepo.Upsert(ctx, table, layout, sub)
}

func TestSaveAlwaysStartsAtFirstLayout(t *testing.T) {
	repo := &flakyRepo{MemoryRepo: NewMemoryRepo(), layout: "email_form_data"}
	p := newProber(t, repo, "")

	first, err := p.Save(context.Background(), Submission{Identifier: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "id_form_data", first.Record.Layout)

	second, err := p.Save(context.Background(), Submission{Identifier: "ana@example.com", FormData: map[string]any{"step": 2}})
	require.NoError(t, err)
	assert.Equal(t, "email_form_data", second.Record.Layout)
	assert.Len(t, second.Attempts, 1)

	found, err := p.Find(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "email_form_data", found.Layout)
	assert.Equal(t, 2, found.FormData["step"])
}

func TestSaveFallsBackToGenericTable(t *testing.T) {
	repo := NewMemoryRepo(AcceptTables("user_submissions"))
	p := newProber(t, repo, "")

	res, err := p.Save(context.Background(), Submission{Identifier: "ana@example.com", FormData: map[string]any{"visto": "EB-2"}, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, LayoutGeneric, res.Record.Layout)
	assert.Equal(t, "user_submissions", res.Record.Table)
	assert.Len(t, res.Attempts, 5)

	found, err := p.Find(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "EB-2", found.FormData["visto"])
	assert.True(t, found.Completed)
}

func TestSaveReportsEveryAttemptWhenAllFail(t *testing.T) {
	p := newProber(t, NewMemoryRepo(AcceptTables("nothing")), "")

	_, err := p.Save(context.Background(), Submission{Identifier: "ana@example.com"})
	var probeErr *ProbeError
	require.True(t, errors.As(err, &probeErr), "expected ProbeError, got %v", err)
	require.Len(t, probeErr.Attempts, 5)
	for _, a := range probeErr.Attempts {
		assert.Equal(t, ClassSchemaMismatch, a.Class)
	}
	assert.Nil(t, probeErr.Err)
}

func TestSaveAbortsOnNonSchemaError(t *testing.T) {
	boom := errors.New("connection refused")
	repo := &failingRepo{MemoryRepo: NewMemoryRepo(), err: boom}
	p := newProber(t, repo, "")

	_, err := p.Save(context.Background(), Submission{Identifier: "ana@example.com"})
	var probeErr *ProbeError
	require.True(t, errors.As(err, &probeErr))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, repo.calls)
	assert.Len(t, probeErr.Attempts, 1)
}

func TestSavePinnedLayoutOnly(t *testing.T) {
	p := newProber(t, NewMemoryRepo(AcceptLayouts("email_form_data"), AcceptTables(TableMultistepForms)), "id_form_data")

	_, err := p.Save(context.Background(), Submission{Identifier: "u-1"})
	var probeErr *ProbeError
	require.True(t, errors.As(err, &probeErr))
	assert.Equal(t, "id_form_data", probeErr.Attempts[0].Layout)
	assert.Len(t, probeErr.Attempts, 3) // pinned layout + two fallback tables
}

func TestSaveRequiresIdentifier(t *testing.T) {
	p := newProber(t, NewMemoryRepo(), "")
	_, err := p.Save(context.Background(), Submission{Identifier: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSameIdentifierUpsertsOneRecord(t *testing.T) {
	repo := NewMemoryRepo()
	p := newProber(t, repo, "")
	sub := Submission{Identifier: "ana@example.com", FormData: map[string]any{"step": 1}}

	first, err := p.Save(context.Background(), sub)
	require.NoError(t, err)
	second, err := p.Save(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, first.Record.ID, second.Record.ID)
}

func TestFindNotFound(t *testing.T) {
	p := newProber(t, NewMemoryRepo(), "")
	_, err := p.Find(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindFallsThroughToUserIDLayouts(t *testing.T) {
	repo := NewMemoryRepo(AcceptLayouts("id_data"))
	layout, ok := LayoutByName("id_data")
	require.True(t, ok)
	_, err := repo.Upsert(context.Background(), TableMultistepForms, layout, Submission{Identifier: "u-7", FormData: map[string]any{"visto": "O-1"}})
	require.NoError(t, err)

	p := newProber(t, repo, "")
	rec, err := p.Find(context.Background(), "u-7")
	require.NoError(t, err)
	assert.Equal(t, "id_data", rec.Layout)
	assert.Equal(t, "O-1", rec.FormData["visto"])
}

type brokenFindRepo struct {
	*MemoryRepo
	err   error
	calls int
}

func (b *brokenFindRepo) Find(ctx context.Context, table string, layout Layout, identifier string) (Record, error) {
	b.calls++
	return Record{}, b.err
}

func TestFindAbortsOnNonSchemaError(t *testing.T) {
	boom := errors.New("connection reset")
	repo := &brokenFindRepo{MemoryRepo: NewMemoryRepo(), err: boom}
	p := newProber(t, repo, "")

	_, err := p.Find(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, repo.calls)
}

func TestNewProberRejectsUnknownSchema(t *testing.T) {
	_, err := NewProber(NewMemoryRepo(), "email_data")
	assert.Error(t, err)
}
