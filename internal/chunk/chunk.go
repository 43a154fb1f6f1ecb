// Package chunk splits document text into overlapping token windows.
package chunk

import (
	"regexp"
)

// Defaults match the corpus the index was tuned on: 500-token windows with
// 100 tokens of overlap between consecutive windows.
const (
	DefaultWindow  = 500
	DefaultOverlap = 100
)

// tokenRegex splits text into word tokens (hyphen/underscore compounds kept
// whole) or single non-space symbols.
var tokenRegex = regexp.MustCompile(`\w+(?:[-_]\w+)*|\S`)

// Chunk is a contiguous slice of a source document, tagged with provenance.
// IDs are assigned by a single counter across the whole corpus build, so a
// chunk ID identifies a chunk globally, not per document.
type Chunk struct {
	ID           int    `json:"chunk_id"`
	DocumentName string `json:"document_name"`
	Text         string `json:"text"`
	TokenStart   int    `json:"token_start"`
	TokenEnd     int    `json:"token_end"`
}

// Chunker produces token-window chunks with a corpus-wide ID counter.
type Chunker struct {
	window  int
	overlap int
	nextID  int
}

// New creates a Chunker. Non-positive window or overlap fall back to the
// defaults; overlap is clamped below window.
func New(window, overlap int) *Chunker {
	if window <= 0 {
		window = DefaultWindow
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= window {
		overlap = window / 5
	}
	return &Chunker{window: window, overlap: overlap}
}

// Split chunks a single document. Windows start at token offsets
// 0, W-O, 2(W-O), ... until the text is exhausted. The final window may be
// shorter than W but is always emitted, so every token lands in at least one
// chunk. Empty or whitespace-only text yields no chunks.
func (c *Chunker) Split(docName, text string) []Chunk {
	tokens := tokenRegex.FindAllStringIndex(text, -1)
	if len(tokens) == 0 {
		return nil
	}

	step := c.window - c.overlap
	var chunks []Chunk
	for start := 0; start < len(tokens); start += step {
		end := start + c.window
		if end > len(tokens) {
			end = len(tokens)
		}

		chunks = append(chunks, Chunk{
			ID:           c.nextID,
			DocumentName: docName,
			Text:         text[tokens[start][0]:tokens[end-1][1]],
			TokenStart:   start,
			TokenEnd:     end,
		})
		c.nextID++

		if end == len(tokens) {
			break
		}
	}
	return chunks
}

// SplitAll chunks a sequence of documents in order, carrying the ID counter
// across document boundaries.
func (c *Chunker) SplitAll(docs []Document) []Chunk {
	var all []Chunk
	for _, d := range docs {
		all = append(all, c.Split(d.Name, d.Text)...)
	}
	return all
}

// Document is a named body of extracted text, ready for chunking.
type Document struct {
	Name string
	Text string
}
