package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// EmbedBatch generates one embedding per input text, preserving
	// input order. A response with a different vector count than
	// inputs is an error wrapping domain.ErrEmbedding.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and must match the collection's
	// stored dimensions.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request. Called once before ingestion commits to embedding.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
