package storage

import (
	"context"

	"github.com/guttosm/profitpulse/internal/analysis"
	"github.com/guttosm/profitpulse/internal/domain/models"
)

// ResultStore is the append-only log of completed analyses.
//
// Implementations must tolerate concurrent Append calls from independent
// connection handlers without interleaving partial records.
type ResultStore interface {
	// Append persists one (request, result) record.
	Append(ctx context.Context, req *models.AnalysisRequest, res analysis.Result) error
	// ListAll returns every stored record rendered as text lines, oldest first.
	ListAll(ctx context.Context) ([]string, error)
	// Clear removes every stored record.
	Clear(ctx context.Context) error
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

var (
	_ ResultStore = (*FileStore)(nil)
	_ ResultStore = (*PostgresStore)(nil)
	_ ResultStore = (*SQLiteStore)(nil)
)
