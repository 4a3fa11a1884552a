package extractor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalExtractMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")
	content := "| Metric | Value |\n|---|---|\n| Revenue | 100 |"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := NewLocal().Extract(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != content {
		t.Errorf("expected verbatim markdown, got %q", got)
	}
}

func TestLocalExtractUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLocal().Extract(path); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported file type error, got %v", err)
	}
}

func TestLocalExtractMissingFile(t *testing.T) {
	if _, err := NewLocal().Extract(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}
