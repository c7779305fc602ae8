// Package chunker cuts page text into overlapping fixed-size word windows.
package chunker

import (
	"fmt"
	"strings"

	"github.com/veldt-labs/corpora-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 512

// DefaultOverlap is the default number of overlapping words.
const DefaultOverlap = 128

// Chunker splits pages into word windows of chunkSize words that
// overlap by overlap words. Windows never cross page boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a chunker. Parameters are validated up front: a
// non-positive chunk size or an overlap that is not strictly smaller
// than the chunk size would stall the window cursor, so both are
// rejected with domain.ErrConfiguration before any page is touched.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrConfiguration, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrConfiguration, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured window width in words.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap in words.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk converts pages into the ordered chunk sequence.
//
// The chunk index is a single accumulator threaded across all pages,
// so chunk ids form one monotonically increasing sequence in document
// reading order regardless of page boundaries.
func (c *Chunker) Chunk(pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk
	index := 0

	for _, page := range pages {
		chunks, index = c.chunkPage(chunks, page, index)
	}

	return chunks
}

// chunkPage appends the windows of one page, returning the updated
// chunk list and global index.
func (c *Chunker) chunkPage(chunks []domain.Chunk, page domain.Page, index int) ([]domain.Chunk, int) {
	words := strings.Fields(page.Text)
	n := len(words)

	for start := 0; start < n; {
		end := start + c.chunkSize
		if end > n {
			end = n
		}

		chunks = append(chunks, domain.Chunk{
			ID:        domain.ChunkID(page.Number, index),
			Text:      strings.Join(words[start:end], " "),
			Page:      page.Number,
			Index:     index,
			WordStart: start,
			WordEnd:   end,
		})
		index++

		// The page's final window may be shorter than chunkSize;
		// once it reaches the last word the page is exhausted.
		if end == n {
			break
		}
		start += c.chunkSize - c.overlap
	}

	return chunks, index
}
