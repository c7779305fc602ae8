package driven

import (
	"context"

	"github.com/veldt-labs/corpora-cli/internal/core/domain"
)

// VectorStore persists embedded chunks in named collections.
// Backed by SQLite for durable local storage.
//
// The similarity-search read path is intentionally absent: ingestion
// only writes, reads records back by exact id, and lists collections.
type VectorStore interface {
	// OpenCollection creates the named collection with the given
	// distance metric if it does not exist. Opening an existing
	// collection with a different metric, or with dimensions that
	// conflict with already-stored vectors, fails with an error
	// wrapping domain.ErrStoreWrite.
	OpenCollection(ctx context.Context, name string, metric domain.DistanceMetric, dimensions int) error

	// Upsert writes a batch of records into the collection.
	// Records with existing ids are replaced, others inserted.
	// The batch is applied in a single transaction.
	Upsert(ctx context.Context, collection string, records []domain.Record) error

	// Get retrieves a record by exact id.
	// Returns domain.ErrNotFound if the id is absent.
	Get(ctx context.Context, collection, id string) (*domain.Record, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context, collection string) (int, error)

	// List returns metadata for all collections.
	List(ctx context.Context) ([]domain.CollectionInfo, error)

	// Close closes the underlying database.
	Close() error
}
