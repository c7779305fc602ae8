package pdf

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/corpora-cli/internal/core/domain"
	"github.com/veldt-labs/corpora-cli/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return m.output, m.err
}

// fakePDF creates an empty file standing in for a PDF; the mock
// runner supplies the "extracted" text.
func fakePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0600))
	return path
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}

func TestExtract_MissingFile(t *testing.T) {
	extractor := New(WithRunner(&mockRunner{}))

	pages, err := extractor.Extract(context.Background(), "/nonexistent/doc.pdf")
	assert.Nil(t, pages)
	assert.ErrorIs(t, err, domain.ErrDocumentRead)
}

func TestExtract_ToolNotFound(t *testing.T) {
	extractor := New(WithRunner(&mockRunner{err: exec.ErrNotFound}))

	pages, err := extractor.Extract(context.Background(), fakePDF(t))
	assert.Nil(t, pages)
	assert.ErrorIs(t, err, domain.ErrDocumentRead)
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
	assert.Contains(t, err.Error(), "pdftotext")
}

func TestExtract_RunnerError(t *testing.T) {
	extractor := New(WithRunner(&mockRunner{err: errors.New("syntax error in PDF")}))

	pages, err := extractor.Extract(context.Background(), fakePDF(t))
	assert.Nil(t, pages)
	assert.ErrorIs(t, err, domain.ErrDocumentRead)
	assert.NotErrorIs(t, err, domain.ErrToolNotFound)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestExtract_Pages(t *testing.T) {
	// Two pages separated by \f plus pdftotext's trailing \f.
	out := "First  page\ntext here\n\fSecond page\n\f"
	extractor := New(WithRunner(&mockRunner{output: []byte(out)}))

	pages, err := extractor.Extract(context.Background(), fakePDF(t))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "First page text here", pages[0].Text)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, "Second page", pages[1].Text)
}

func TestExtract_EmptyPageDropped(t *testing.T) {
	// The middle page is all whitespace: it is dropped, and the
	// following page keeps its raw position number.
	out := "one\n\f \n\t \n\fthree\n\f"
	extractor := New(WithRunner(&mockRunner{output: []byte(out)}))

	pages, err := extractor.Extract(context.Background(), fakePDF(t))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "one", pages[0].Text)
	assert.Equal(t, 3, pages[1].Number)
	assert.Equal(t, "three", pages[1].Text)
}

func TestExtract_AllPagesEmpty(t *testing.T) {
	extractor := New(WithRunner(&mockRunner{output: []byte(" \n\f\t\f")}))

	pages, err := extractor.Extract(context.Background(), fakePDF(t))
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []domain.Page
	}{
		{
			name:     "empty output",
			raw:      "",
			expected: nil,
		},
		{
			name:     "single page without trailing separator",
			raw:      "hello   world",
			expected: []domain.Page{{Number: 1, Text: "hello world"}},
		},
		{
			name: "whitespace collapsed",
			raw:  "  a\tb\n\nc  \f",
			expected: []domain.Page{
				{Number: 1, Text: "a b c"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, splitPages(tc.raw))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}
