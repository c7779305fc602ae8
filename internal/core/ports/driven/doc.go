// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for ingestion to function:
//
//   - Extractor: Reads a paginated document into per-page text
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Persists embedded chunks in named collections
//   - ConfigStore: Application configuration
//
// # Supporting Interfaces
//
//   - CommandRunner: Executes external tools (pdftotext), mockable in tests
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
