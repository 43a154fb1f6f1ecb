package index

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/clearpathhq/beacon/internal/chunk"
)

// ErrNoSnapshot reports that no persisted index exists at the given path.
var ErrNoSnapshot = errors.New("index: no snapshot on disk")

// snapshot is the on-disk layout of a FlatStore: vectors and a parallel
// chunk sequence whose positions correspond 1:1.
type snapshot struct {
	EmbedModel string
	Dim        int
	Vectors    [][]float32
	Chunks     []chunk.Chunk
}

// SaveFlat writes the store and its chunk metadata to path. The write goes
// through a temp file and rename so a crash never leaves a torn snapshot.
func SaveFlat(s *FlatStore, embedModel, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("index snapshot dir: %w", err)
	}

	s.mu.RLock()
	snap := snapshot{
		EmbedModel: embedModel,
		Dim:        s.dim,
		Vectors:    s.vectors,
		Chunks:     s.chunks,
	}
	s.mu.RUnlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*")
	if err != nil {
		return fmt.Errorf("index snapshot temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&snap); err != nil {
		tmp.Close()
		return fmt.Errorf("index snapshot encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("index snapshot close: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFlat restores a persisted FlatStore. It fails when the snapshot is
// missing (ErrNoSnapshot), was built by a different embedding model, or the
// vector and chunk sequences disagree in length — callers rebuild in every
// case rather than search a corrupt structure.
func LoadFlat(embedModel, path string) (*FlatStore, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("index snapshot open: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("index snapshot decode: %w", err)
	}
	if len(snap.Vectors) != len(snap.Chunks) {
		return nil, fmt.Errorf("index snapshot corrupt: %d vectors, %d chunks", len(snap.Vectors), len(snap.Chunks))
	}
	if snap.EmbedModel != embedModel {
		return nil, fmt.Errorf("index snapshot built with model %q, want %q", snap.EmbedModel, embedModel)
	}

	return &FlatStore{dim: snap.Dim, vectors: snap.Vectors, chunks: snap.Chunks}, nil
}
