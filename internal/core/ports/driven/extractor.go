package driven

import (
	"context"

	"github.com/veldt-labs/corpora-cli/internal/core/domain"
)

// Extractor reads a paginated document and produces normalized
// per-page plain text.
type Extractor interface {
	// Extract returns the document's pages in page order (1-indexed).
	// Pages whose normalized text is empty are omitted; the returned
	// page numbers still reflect raw document positions.
	//
	// A missing file or unparseable document returns an error
	// wrapping domain.ErrDocumentRead. Extraction is never retried.
	Extract(ctx context.Context, path string) ([]domain.Page, error)
}

// CommandRunner executes an external command and returns its stdout.
// It exists so extractors that shell out to tools like pdftotext can
// be tested without the tool installed.
type CommandRunner interface {
	// Run executes the named command with args and returns stdout.
	// A non-zero exit status is returned as an error.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
