package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesConsoleAndFile(t *testing.T) {
	var console, file bytes.Buffer
	logger := New(&console, true, &file)

	logger.Info().Str("window", "PAST: Last 0-12 hours").Msg("Insight posted")

	if !strings.Contains(console.String(), "Insight posted") {
		t.Errorf("console output missing message: %q", console.String())
	}
	if !strings.Contains(console.String(), "window=") {
		t.Errorf("console output missing field: %q", console.String())
	}
	if !strings.Contains(file.String(), `"window":"PAST: Last 0-12 hours"`) {
		t.Errorf("file output is not JSON: %q", file.String())
	}
}

func TestFileWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	w, err := FileWriter(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.Close()

	if w.Filename != filepath.Join(dir, FileName) {
		t.Errorf("Filename = %q", w.Filename)
	}
	if _, err := os.Stat(filepath.Join(dir, ".write-test")); !os.IsNotExist(err) {
		t.Errorf("write-test file was left behind")
	}
}

func TestFileWriter_NotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := FileWriter(f); err == nil {
		t.Error("expected error for a log path that is a file")
	}
}
