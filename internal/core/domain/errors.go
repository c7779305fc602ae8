package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDocumentRead indicates the source document is missing,
	// unreadable, or could not be parsed. Fatal to the run; no
	// partial extraction is attempted.
	ErrDocumentRead = errors.New("document read failed")

	// ErrConfiguration indicates invalid chunking parameters
	// (overlap >= chunk size, non-positive chunk size). Validated
	// before any I/O.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmbedding indicates the embedding model could not be
	// reached or returned a mismatched vector count for a batch.
	// Aborts the remaining batches.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStoreWrite indicates the vector store rejected a batch
	// (metric mismatch, I/O failure). Aborts the remaining batches;
	// previously written batches stay durable.
	ErrStoreWrite = errors.New("store write failed")

	// ErrToolNotFound indicates a required external tool (pdftotext)
	// is not installed.
	ErrToolNotFound = errors.New("required tool not found")
)

// WriteError reports a failure while embedding or upserting a batch.
// It records the failing batch and how many chunks were durably
// written before it, so an operator knows the resume point. Replays
// are safe because ids are deterministic and upserts overwrite.
type WriteError struct {
	// Batch is the 0-based index of the batch that failed.
	Batch int

	// Written is the number of chunks successfully written before
	// the failure.
	Written int

	// Err is the underlying failure, wrapping ErrEmbedding or
	// ErrStoreWrite.
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("batch %d failed after %d chunks written: %v", e.Batch, e.Written, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *WriteError) Unwrap() error {
	return e.Err
}
