// Package services implements the core application services.
package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/veldt-labs/corpora-cli/internal/chunker"
	"github.com/veldt-labs/corpora-cli/internal/core/domain"
	"github.com/veldt-labs/corpora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/corpora-cli/internal/core/ports/driving"
	"github.com/veldt-labs/corpora-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultBatchSize bounds how many chunks are embedded and upserted
// at once. Batching limits peak memory; it has no semantic meaning.
const DefaultBatchSize = 128

// IngestService runs the extract → chunk → embed → upsert pipeline.
// Stages run strictly in sequence; each stage materializes its output
// before the next begins.
type IngestService struct {
	extractor driven.Extractor
	embedder  driven.EmbeddingService
	store     driven.VectorStore
}

// NewIngestService creates the ingestion service.
func NewIngestService(
	extractor driven.Extractor,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
	}
}

// Ingest runs the full pipeline for one document.
//
// Configuration is validated before any I/O. A run that fails mid-write
// leaves earlier batches durably stored; the returned WriteError names
// the failing batch, and deterministic chunk ids make a retry safe.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestSummary, error) {
	// 1. Validate configuration up front. The chunker rejects window
	// parameters that would stall the cursor.
	chk, err := chunker.New(req.ChunkSize, req.Overlap)
	if err != nil {
		return nil, err
	}

	batchSize := req.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", domain.ErrConfiguration, batchSize)
	}

	if req.Collection == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrConfiguration)
	}

	source := req.Source
	if source == "" {
		source = filepath.Base(req.DocumentPath)
	}

	runID := uuid.New().String()
	logger.Section("ingest " + runID)
	logger.Info("Ingesting %s into collection %s (chunk size %d, overlap %d)",
		req.DocumentPath, req.Collection, req.ChunkSize, req.Overlap)

	// 2. Extract pages.
	pages, err := s.extractor.Extract(ctx, req.DocumentPath)
	if err != nil {
		return nil, err
	}
	logger.Info("Extracted %d pages with text", len(pages))

	// 3. Chunk.
	chunks := chk.Chunk(pages)
	logger.Info("Created %d chunks", len(chunks))

	// 4. Embed and upsert in batches.
	written, err := s.write(ctx, req.Collection, source, chunks, batchSize)
	if err != nil {
		return nil, err
	}

	summary := &domain.IngestSummary{
		RunID:       runID,
		Source:      source,
		Collection:  req.Collection,
		StorePath:   s.storePath(),
		Pages:       len(pages),
		TotalChunks: written,
		Model:       s.embedder.ModelName(),
	}
	logger.Info("Ingest complete: %d chunks written as %s", written, summary.Model)
	return summary, nil
}

// storePath reports the store location for the summary when the
// backing store exposes one.
func (s *IngestService) storePath() string {
	if p, ok := s.store.(interface{ Path() string }); ok {
		return p.Path()
	}
	return ""
}
