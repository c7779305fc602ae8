// Package cli implements the command line interface for Corpora.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/corpora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/corpora-cli/internal/core/ports/driving"
	"github.com/veldt-labs/corpora-cli/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Services are injected by main before Execute runs. Commands check
// for nil so the package stays testable without full wiring.
var (
	ingestService driving.IngestService
	vectorStore   driven.VectorStore
	configStore   driven.ConfigStore
)

// InitOptions carries the flag values adapter construction depends on.
type InitOptions struct {
	DBDir    string
	Provider string
	Model    string
}

// initializer builds the services after flags are parsed, so --db-dir,
// --provider, and --model can influence adapter construction. Nil when
// tests inject mocks.
var initializer func(InitOptions) error

var (
	verbose  bool
	dbDir    string
	provider string
	model    string
)

var rootCmd = &cobra.Command{
	Use:   "corpora",
	Short: "Chunk and embed PDF documents into a local vector store",
	Long: `Corpora extracts text from PDF documents, splits it into
overlapping word chunks, embeds each chunk, and upserts the vectors
into a local SQLite store. Re-running an ingest is safe: chunk ids
are deterministic, so existing records are overwritten in place.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if initializer != nil {
			return initializer(InitOptions{DBDir: dbDir, Provider: provider, Model: model})
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbDir, "db-dir", "", "vector store directory (default ~/.corpora/data)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "embedding provider, ollama or openai (default from config, else ollama)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "embedding model name (default per provider)")
}

// SetIngestService injects the ingestion service used by the ingest command.
func SetIngestService(s driving.IngestService) {
	ingestService = s
}

// SetVectorStore injects the store backing the collection commands.
func SetVectorStore(s driven.VectorStore) {
	vectorStore = s
}

// SetConfigStore injects the store backing the config commands and
// ingest flag defaults.
func SetConfigStore(s driven.ConfigStore) {
	configStore = s
}

// SetInitializer registers the wiring hook main provides.
func SetInitializer(fn func(InitOptions) error) {
	initializer = fn
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context, so
// long-running commands like ingest --watch stop on interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
