package driving

import (
	"context"

	"github.com/veldt-labs/corpora-cli/internal/core/domain"
)

// IngestService runs the extract → chunk → embed → upsert pipeline
// for a single document.
type IngestService interface {
	// Ingest runs the full pipeline and returns a summary.
	// Configuration is validated before any I/O; failures map to the
	// domain error taxonomy (ErrDocumentRead, ErrConfiguration,
	// ErrEmbedding, ErrStoreWrite).
	Ingest(ctx context.Context, req IngestRequest) (*domain.IngestSummary, error)
}

// IngestRequest carries the parameters of one ingestion run.
type IngestRequest struct {
	// DocumentPath is the path to the source document.
	DocumentPath string

	// Source is the identifying name stored with every record.
	// Defaults to the document's base filename when empty.
	Source string

	// Collection is the target collection name.
	Collection string

	// ChunkSize is the window width in words.
	ChunkSize int

	// Overlap is the number of words shared by consecutive windows.
	// Must be smaller than ChunkSize.
	Overlap int

	// BatchSize bounds how many chunks are embedded and upserted at
	// once. Batch boundaries are not observable in the stored result.
	BatchSize int
}
