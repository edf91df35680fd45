package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_FieldsFromKeyValues(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(LevelDebug)
	logger := FromZap(zap.New(core)).Named("session").With("league", "EPL")

	logger.Warn("navigation failed", "url", "https://example.test/match/1", "error", errors.New("timeout"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "session" {
		t.Fatalf("unexpected logger name %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["league"] != "EPL" {
		t.Fatalf("expected league field, got %+v", fields)
	}
	if fields["url"] != "https://example.test/match/1" {
		t.Fatalf("expected url field, got %+v", fields)
	}
	if fields["error"] != "timeout" {
		t.Fatalf("expected error field, got %+v", fields)
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept, got %+v", fields)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(LevelWarn)
	logger := FromZap(zap.New(core))

	logger.InfoContext(context.Background(), "skipped")
	logger.ErrorContext(context.Background(), "kept")

	if logs.Len() != 1 || logs.All()[0].Message != "kept" {
		t.Fatalf("expected only the error entry, got %+v", logs.All())
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	if got := ParseFormat(" Console "); got != FormatConsole {
		t.Fatalf("expected console format, got %s", got)
	}
	if got := ParseFormat("anything"); got != FormatJSON {
		t.Fatalf("expected json fallback, got %s", got)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("does not panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected non-nil logger from nil receiver")
	}
}

func TestSetMirror_ReceivesWrittenEntries(t *testing.T) {
	type mirrored struct {
		level Level
		msg   string
		args  []any
	}
	var got []mirrored
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, mirrored{level: level, msg: msg, args: args})
	})
	t.Cleanup(func() { SetMirror(nil) })

	core, _ := observer.New(LevelInfo)
	logger := FromZap(zap.New(core)).With("league", "EPL").Named("fbref")

	logger.Debug("below level")
	logger.WarnContext(context.Background(), "season not found", "year", 2024)

	if len(got) != 1 {
		t.Fatalf("expected one mirrored entry, got %+v", got)
	}
	if got[0].level != LevelWarn || got[0].msg != "season not found" {
		t.Fatalf("unexpected mirrored entry %+v", got[0])
	}
	want := []any{"league", "EPL", "year", 2024}
	if len(got[0].args) != len(want) {
		t.Fatalf("unexpected mirrored args %+v", got[0].args)
	}
	for i := range want {
		if got[0].args[i] != want[i] {
			t.Fatalf("unexpected mirrored args %+v", got[0].args)
		}
	}

	SetMirror(nil)
	logger.Error("not mirrored")
	if len(got) != 1 {
		t.Fatalf("expected mirror to be removed, got %+v", got)
	}
}
