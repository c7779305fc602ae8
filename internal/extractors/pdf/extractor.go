// Package pdf extracts per-page text from PDF documents using the
// poppler pdftotext tool.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/veldt-labs/corpora-cli/internal/core/domain"
	"github.com/veldt-labs/corpora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/corpora-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// pdfToTextBinary is the external tool used for extraction.
const pdfToTextBinary = "pdftotext"

// Extractor extracts text from PDF files by shelling out to pdftotext.
// Page boundaries are recovered from the form-feed characters pdftotext
// emits between pages.
type Extractor struct {
	runner driven.CommandRunner
}

// Option configures the extractor.
type Option func(*Extractor)

// WithRunner overrides the command runner. Used in tests.
func WithRunner(r driven.CommandRunner) Option {
	return func(e *Extractor) {
		e.runner = r
	}
}

// New creates a PDF extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		runner: execRunner{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the document's non-empty pages in page order.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDocumentRead, path, err)
	}

	// "-" sends the text to stdout; pages are separated by \f.
	out, err := e.runner.Run(ctx, pdfToTextBinary, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w: %s", domain.ErrDocumentRead, domain.ErrToolNotFound, InstallInstructions())
		}
		return nil, fmt.Errorf("%w: %s failed: %v", domain.ErrDocumentRead, pdfToTextBinary, err)
	}

	pages := splitPages(string(out))
	logger.Debug("pdf: extracted %d non-empty pages from %s", len(pages), path)
	return pages, nil
}

// splitPages turns pdftotext output into normalized pages. Page
// numbers count raw pages, so dropped empty pages leave gaps in
// numbering but preserve the true position of the text.
func splitPages(raw string) []domain.Page {
	// pdftotext appends a trailing \f after the last page.
	raw = strings.TrimSuffix(raw, "\f")

	var pages []domain.Page
	for i, pageText := range strings.Split(raw, "\f") {
		text := normalise(pageText)
		if text == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: i + 1, Text: text})
	}
	return pages
}

// normalise collapses all whitespace runs (including newlines) to
// single spaces and trims the ends.
func normalise(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// InstallInstructions returns guidance for installing pdftotext.
func InstallInstructions() string {
	return "pdftotext is required for PDF extraction. " +
		"Install it with 'brew install poppler' (macOS) or " +
		"'apt install poppler-utils' (Debian/Ubuntu)."
}

// execRunner runs commands with os/exec.
type execRunner struct{}

// Run executes the command and returns stdout. Stderr is folded into
// the error on failure.
func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%v: %s", err, msg)
		}
		return nil, err
	}

	return stdout.Bytes(), nil
}
