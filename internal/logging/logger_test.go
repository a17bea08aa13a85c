// Package logging includes tests for the zap logger helpers.
package logging

import "testing"

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true)
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("development logger ready")
}

// TestNewProductionLogger ensures the production logger configuration succeeds.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false)
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger.Info("production logger ready")
}

// TestNewWithFileTeesEntries verifies entries land in the log file.
func TestNewWithFileTeesEntries(t *testing.T) {
	t.Parallel()

	file := t.TempDir() + "/app.log"
	logger, err := NewWithFile(false, file)
	if err != nil {
		t.Fatalf("NewWithFile() error = %v", err)
	}
	logger.Info("teed entry")
	logger.Sync() //nolint:errcheck // best-effort flush

	lines, err := Tail(file, 10)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}

// TestTailLimitsAndMissingFile covers the trailing window and absent files.
func TestTailLimitsAndMissingFile(t *testing.T) {
	t.Parallel()

	file := t.TempDir() + "/app.log"
	logger, err := NewWithFile(false, file)
	if err != nil {
		t.Fatalf("NewWithFile() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		logger.Info("entry")
	}
	logger.Sync() //nolint:errcheck // best-effort flush

	lines, err := Tail(file, 3)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	missing, err := Tail(t.TempDir()+"/missing.log", 10)
	if err != nil {
		t.Fatalf("Tail() on missing file error = %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no lines for missing file, got %d", len(missing))
	}
}
