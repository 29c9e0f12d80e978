package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lifeway-backend/internal/shared/storage/object"
)

func TestPutThenGet(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	n, err := store.Put(ctx, "forms/ana@example.com.json", "application/json", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 bytes, got %d", n)
	}

	rc, err := store.Get(ctx, "forms/ana@example.com.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected content %q", data)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "forms"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Get(context.Background(), "forms/missing.json")
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Put(context.Background(), "../escape.json", "application/json", strings.NewReader("{}")); err == nil {
		t.Fatalf("expected traversal key to be rejected")
	}
}
