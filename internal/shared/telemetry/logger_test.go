package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsReachLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := SetLogger(zap.New(core))
	defer restore()

	Info("report.generated", map[string]any{"tool_type": "visa_match", "duration_ms": 12.5})
	Error("report.failed", map[string]any{"error": errors.New("boom")})

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["tool_type"] != "visa_match" {
		t.Fatalf("unexpected tool_type: %v", ctx["tool_type"])
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entries[1].Level)
	}
	if entries[1].ContextMap()["error"] != "boom" {
		t.Fatalf("expected error field boom, got %v", entries[1].ContextMap()["error"])
	}
}

func TestWarnBelowLevelIsDropped(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	restore := SetLogger(zap.New(core))
	defer restore()

	Warn("image_search.provider_failed", nil)
	if logs.Len() != 0 {
		t.Fatalf("expected warn to be filtered, got %d entries", logs.Len())
	}
}
