package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "02_getting_started.md", "# Getting Started\nInstall the app.")
	writeFile(t, dir, "01_overview.txt", "Clearpath is a project tool.")
	writeFile(t, dir, "empty.txt", "   \n\t")
	writeFile(t, dir, "archive.zip", "binary noise")

	docs, skipped, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	// Sorted by name, unsupported extensions ignored entirely.
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if docs[0].Name != "01_overview.txt" || docs[1].Name != "02_getting_started.md" {
		t.Errorf("doc order = %q, %q", docs[0].Name, docs[1].Name)
	}
	if docs[0].Text != "Clearpath is a project tool." {
		t.Errorf("text = %q", docs[0].Text)
	}

	if len(skipped) != 1 || skipped[0].Name != "empty.txt" {
		t.Fatalf("skipped = %+v, want only empty.txt", skipped)
	}
	if skipped[0].Reason == "" {
		t.Error("skip reason missing")
	}
}

func TestReadDirCorruptPDFIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.txt", "readable text")
	writeFile(t, dir, "broken.pdf", "this is not a pdf")

	docs, skipped, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "ok.txt" {
		t.Errorf("docs = %+v", docs)
	}
	if len(skipped) != 1 || skipped[0].Name != "broken.pdf" {
		t.Errorf("skipped = %+v", skipped)
	}
}

func TestReadDirMissingDirectory(t *testing.T) {
	if _, _, err := ReadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for a missing docs directory")
	}
}

func TestReadDirSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.txt", "text")
	if err := os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	docs, _, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("docs = %d, want 1 (directories are not documents)", len(docs))
	}
}
