package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPlainText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "lease.txt")
	content := "Tenant shall pay rent.\n\n  Landlord   may enter with notice.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.DisplayName != "lease.txt" {
		t.Fatalf("display name: %q", doc.DisplayName)
	}
	if doc.Text != "Tenant shall pay rent. Landlord may enter with notice." {
		t.Fatalf("text not normalized: %q", doc.Text)
	}
	if string(doc.Data) != content {
		t.Fatal("raw bytes must be preserved for upload")
	}
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBrokenPDFStillUploads(t *testing.T) {
	t.Parallel()

	// Not a real PDF: text extraction fails, but the bytes still load so the
	// backend can attempt its own processing.
	path := filepath.Join(t.TempDir(), "scan.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Text != "" {
		t.Fatalf("expected empty text for unextractable pdf, got %q", doc.Text)
	}
	if len(doc.Data) == 0 {
		t.Fatal("raw bytes must survive extraction failure")
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	t.Parallel()

	got := normalizeWhitespace("  a\tb\n\nc  ")
	if got != "a b c" {
		t.Fatalf("normalizeWhitespace: %q", got)
	}
	if !strings.Contains(got, "b") {
		t.Fatal("content lost")
	}
}
