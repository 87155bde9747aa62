package writers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// ExtractorVersion identifies the pipeline revision that produced a
// metadata file.
const ExtractorVersion = "1.0.0"

// Metadata is the JSON sidecar written next to each markdown document.
type Metadata struct {
	Record           *types.CanonicalRecord `json:"record"`
	SourceURLs       []string               `json:"source_urls"`
	PageTypes        []string               `json:"page_types"`
	ExtractorVersion string                 `json:"extractor_version"`
	WrittenAt        time.Time              `json:"written_at"`
}

// MetadataWriter writes the per-record metadata sidecar.
type MetadataWriter struct {
	outputDir string
	logger    *slog.Logger
}

// NewMetadataWriter creates a writer rooted at outputDir.
func NewMetadataWriter(outputDir string, logger *slog.Logger) *MetadataWriter {
	return &MetadataWriter{
		outputDir: outputDir,
		logger:    logger.With("component", "metadata_writer"),
	}
}

// Write stores the sidecar as
// <outputDir>/<Manufacturer>/<Model>/<Manufacturer>_<Model>_<Year>_meta.json.
func (w *MetadataWriter) Write(record *types.CanonicalRecord, pageTypes []string) (string, error) {
	dir := filepath.Join(w.outputDir, sanitizeName(record.Manufacturer), sanitizeName(record.Model))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := sanitizeName(fmt.Sprintf("%s_%s_%d", record.Manufacturer, record.Model, record.Year))
	path := filepath.Join(dir, name+"_meta.json")

	meta := Metadata{
		Record:           record,
		SourceURLs:       record.SourceURLs,
		PageTypes:        pageTypes,
		ExtractorVersion: ExtractorVersion,
		WrittenAt:        time.Now().UTC(),
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	w.logger.Info("metadata written", "path", path)
	return path, nil
}
