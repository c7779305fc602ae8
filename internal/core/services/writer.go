package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/veldt-labs/corpora-cli/internal/core/domain"
	"github.com/veldt-labs/corpora-cli/internal/logger"
)

// write embeds chunks and upserts them into the collection in batches.
// It returns the number of chunks durably written.
//
// Batch boundaries must not be observable in the stored result: the
// outcome of a successful run is identical whatever the batch size.
// On failure the returned WriteError carries the failing batch index
// and the written count so a retry can resume from a known point.
func (s *IngestService) write(
	ctx context.Context,
	collection string,
	source string,
	chunks []domain.Chunk,
	batchSize int,
) (int, error) {
	// Verify the model is reachable before touching the store.
	if err := s.embedder.Ping(ctx); err != nil {
		return 0, embeddingErr(err)
	}

	if err := s.store.OpenCollection(ctx, collection, domain.MetricCosine, s.embedder.Dimensions()); err != nil {
		return 0, storeErr(err)
	}

	written := 0
	for batch := 0; batch*batchSize < len(chunks); batch++ {
		start := batch * batchSize
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		part := chunks[start:end]

		texts := make([]string, len(part))
		for i, chunk := range part {
			texts[i] = chunk.Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return written, &domain.WriteError{Batch: batch, Written: written, Err: embeddingErr(err)}
		}
		if len(vectors) != len(texts) {
			err := fmt.Errorf("%w: model returned %d vectors for %d texts",
				domain.ErrEmbedding, len(vectors), len(texts))
			return written, &domain.WriteError{Batch: batch, Written: written, Err: err}
		}

		records := make([]domain.Record, len(part))
		for i, chunk := range part {
			records[i] = domain.Record{
				ID:        chunk.ID,
				Embedding: vectors[i],
				Text:      chunk.Text,
				Metadata: domain.RecordMetadata{
					Page:      chunk.Page,
					Index:     chunk.Index,
					WordStart: chunk.WordStart,
					WordEnd:   chunk.WordEnd,
					Source:    source,
				},
			}
		}

		if err := s.store.Upsert(ctx, collection, records); err != nil {
			return written, &domain.WriteError{Batch: batch, Written: written, Err: storeErr(err)}
		}

		written += len(part)
		logger.Info("Upserted chunks %d-%d / %d", start+1, end, len(chunks))
	}

	return written, nil
}

// embeddingErr folds an arbitrary embedder failure into the error
// taxonomy without double-wrapping adapter errors.
func embeddingErr(err error) error {
	if errors.Is(err, domain.ErrEmbedding) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
}

// storeErr folds an arbitrary store failure into the error taxonomy.
func storeErr(err error) error {
	if errors.Is(err, domain.ErrStoreWrite) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
}
