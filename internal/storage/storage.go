// Package storage persists merged records to optional sinks. Sink
// failures are logged by the caller and never abort a crawl.
package storage

import (
	"context"

	"github.com/jcbyberg/moto-scraper-v1/internal/types"
)

// RecordStore is the interface for record sinks.
type RecordStore interface {
	// Store persists one merged record.
	Store(ctx context.Context, record *types.CanonicalRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the sink identifier.
	Name() string
}
