package warehouse

import (
	"errors"
	"testing"
)

func TestParseWriteMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseWriteMode(" append ")
	if err != nil || mode != WriteAppend {
		t.Fatalf("expected APPEND, got %q err=%v", mode, err)
	}
	mode, err = ParseWriteMode("WRITE_TRUNCATE")
	if err != nil || mode != WriteTruncate {
		t.Fatalf("expected WRITE_TRUNCATE, got %q err=%v", mode, err)
	}
	if _, err := ParseWriteMode("MERGE"); !errors.Is(err, ErrInvalidWriteMode) {
		t.Fatalf("expected ErrInvalidWriteMode, got %v", err)
	}
}

func TestTableRef_Validate(t *testing.T) {
	t.Parallel()

	if err := (TableRef{Dataset: DatasetStats, Name: "2024_players"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (TableRef{Dataset: DatasetStats}).Validate(); err == nil {
		t.Fatalf("expected missing name to fail")
	}
}
