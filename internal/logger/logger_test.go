package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesStructuredField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.InfoObj("source fetched", "source", map[string]any{"id": "golang"})
	log.ErrorObj("sink failed", "error", "disk full")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "source fetched" || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if _, ok := entries[0].ContextMap()["source"]; !ok {
		t.Fatalf("expected source field, got %v", entries[0].ContextMap())
	}
	if entries[1].ContextMap()["error"] != "disk full" {
		t.Fatalf("unexpected error field %v", entries[1].ContextMap())
	}
}

func TestNewNilFallsBackToNop(t *testing.T) {
	if _, ok := New(nil).(NopLogger); !ok {
		t.Fatalf("expected NopLogger for nil zap logger")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestPackageHelpersNoopBeforeInit(t *testing.T) {
	prev := S
	S = nil
	defer func() { S = prev }()

	InfoObj("ignored", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close before Init: %v", err)
	}
}
