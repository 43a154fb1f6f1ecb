// Package ingest reads the document corpus from disk and extracts plain
// text for chunking. Supported formats: .pdf, .txt, .md.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/clearpathhq/beacon/internal/chunk"
)

// Skipped records a document that could not be ingested. Failures are
// per-document: the corpus build continues with the rest.
type Skipped struct {
	Name   string
	Reason string
}

// ReadDir extracts text from every supported file in dir, in sorted name
// order so chunk IDs are reproducible across rebuilds. Unreadable or empty
// documents are skipped and recorded, never fatal; an unreadable directory
// is.
func ReadDir(dir string) ([]chunk.Document, []Skipped, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading docs dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pdf", ".txt", ".md":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var docs []chunk.Document
	var skipped []Skipped
	for _, name := range names {
		text, err := extract(filepath.Join(dir, name))
		if err != nil {
			skipped = append(skipped, Skipped{Name: name, Reason: err.Error()})
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			skipped = append(skipped, Skipped{Name: name, Reason: "no extractable text"})
			continue
		}
		docs = append(docs, chunk.Document{Name: name, Text: text})
	}
	return docs, skipped, nil
}

func extract(path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		return extractPDF(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// extractPDF recovers from parser panics: the pdf library panics on some
// malformed files, and one bad upload must not take down an ingest run.
func extractPDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}
