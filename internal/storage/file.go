package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// JSONLStore appends one record per line to a catalog file. Unlike the
// per-model markdown tree this gives a single machine-readable stream
// of everything a run produced.
type JSONLStore struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStore creates the catalog file, truncating any previous one.
func NewJSONLStore(outputPath string, logger *slog.Logger) (*JSONLStore, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create catalog file: %w", err)
	}

	return &JSONLStore{
		path:   outputPath,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_store"),
	}, nil
}

func (s *JSONLStore) Name() string { return "jsonl" }

func (s *JSONLStore) Store(_ context.Context, record *types.CanonicalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	s.count++
	return nil
}

func (s *JSONLStore) Close() error {
	s.logger.Info("catalog written", "path", s.path, "records", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
