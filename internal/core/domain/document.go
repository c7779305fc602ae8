package domain

import "fmt"

// Page holds the normalized text of one document page.
// Pages are produced by the extractor in page order and consumed
// by the chunker within a single ingestion run.
type Page struct {
	// Number is the 1-indexed page position in the source document.
	// Numbering follows the raw document, so dropping empty pages
	// leaves gaps in Number but not in chunk indices.
	Number int

	// Text is the page content with all whitespace runs collapsed
	// to single spaces and leading/trailing whitespace trimmed.
	Text string
}

// Chunk is a contiguous word-window cut from one page's text.
// It is the unit of embedding and storage.
type Chunk struct {
	// ID is deterministically derived from Page and Index
	// ("p<page>_c<index>") so re-ingesting an unchanged document
	// overwrites records instead of duplicating them.
	ID string

	// Text is the window's words joined by single spaces.
	Text string

	// Page is the 1-indexed page the chunk was cut from.
	Page int

	// Index is the global chunk position across the whole document.
	// It never resets at page boundaries.
	Index int

	// WordStart is the page-local index of the first word (inclusive).
	WordStart int

	// WordEnd is the page-local index past the last word (exclusive).
	WordEnd int
}

// ChunkID builds the deterministic chunk identifier for a page
// number and global chunk index.
func ChunkID(page, index int) string {
	return fmt.Sprintf("p%d_c%d", page, index)
}

// Record is the durable unit stored in a vector store collection.
// Records are created or overwritten by ingestion runs and never
// implicitly deleted.
type Record struct {
	// ID is the chunk identifier, unique within a collection per document.
	ID string

	// Embedding is the vector representation of Text.
	Embedding []float32

	// Text is the chunk content, stored alongside the vector so
	// search results can be shown without re-reading the source.
	Text string

	// Metadata carries the chunk position fields and the source name.
	Metadata RecordMetadata
}

// RecordMetadata is the positional metadata stored with each record.
type RecordMetadata struct {
	Page      int    `json:"page"`
	Index     int    `json:"chunk_index"`
	WordStart int    `json:"word_start"`
	WordEnd   int    `json:"word_end"`
	Source    string `json:"source"`
}

// DistanceMetric identifies the similarity metric a collection
// was created with. The metric is fixed at collection creation.
type DistanceMetric string

const (
	// MetricCosine is cosine similarity, the metric used for ingestion.
	MetricCosine DistanceMetric = "cosine"

	// MetricL2 is Euclidean distance. Supported for pre-existing
	// collections; ingestion refuses to write into them.
	MetricL2 DistanceMetric = "l2"
)

// CollectionInfo describes a collection in the vector store.
type CollectionInfo struct {
	// Name is the collection name.
	Name string

	// Metric is the distance metric the collection was created with.
	Metric DistanceMetric

	// Dimensions is the embedding vector size, or 0 if no records
	// have been written yet.
	Dimensions int

	// Records is the number of stored records.
	Records int
}

// IngestSummary reports the outcome of one ingestion run.
// It is informational only and never drives control flow.
type IngestSummary struct {
	// RunID uniquely identifies the ingestion run in logs.
	RunID string

	// Source is the identifying name of the ingested document.
	Source string

	// Collection is the target collection name.
	Collection string

	// StorePath is the vector store location.
	StorePath string

	// Pages is the number of pages that yielded text.
	Pages int

	// TotalChunks is the number of records written.
	TotalChunks int

	// Model is the embedding model identifier used.
	Model string
}
