package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/veldt-labs/corpora-cli/internal/adapters/driven/config/file"
	"github.com/veldt-labs/corpora-cli/internal/adapters/driven/embedding/ollama"
	"github.com/veldt-labs/corpora-cli/internal/adapters/driven/embedding/openai"
	"github.com/veldt-labs/corpora-cli/internal/adapters/driven/storage/sqlite"
	"github.com/veldt-labs/corpora-cli/internal/adapters/driving/cli"
	"github.com/veldt-labs/corpora-cli/internal/core/domain"
	"github.com/veldt-labs/corpora-cli/internal/core/ports/driven"
	"github.com/veldt-labs/corpora-cli/internal/core/services"
	"github.com/veldt-labs/corpora-cli/internal/extractors/pdf"
)

func main() {
	// Load .env if present, for OPENAI_API_KEY and friends.
	_ = godotenv.Load()

	cli.SetInitializer(buildServices)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildServices wires the adapters once flags are parsed. Flags win
// over environment, environment over config, config over built-ins.
func buildServices(opts cli.InitOptions) error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	cli.SetConfigStore(cfg)

	dbDir := opts.DBDir
	if dbDir == "" {
		dbDir = cfg.GetString(file.KeyStoreDir)
	}
	store, err := sqlite.Open(dbDir)
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	cli.SetVectorStore(store)

	embedder, err := newEmbedder(cfg, opts)
	if err != nil {
		return err
	}

	extractor := pdf.New()
	cli.SetIngestService(services.NewIngestService(extractor, embedder, store))
	return nil
}

func newEmbedder(cfg driven.ConfigStore, opts cli.InitOptions) (driven.EmbeddingService, error) {
	provider := opts.Provider
	if provider == "" {
		provider = os.Getenv("CORPORA_EMBEDDING_PROVIDER")
	}
	if provider == "" {
		provider = cfg.GetString(file.KeyEmbeddingProvider)
	}
	model := opts.Model
	if model == "" {
		model = os.Getenv("CORPORA_EMBEDDING_MODEL")
	}
	if model == "" {
		model = cfg.GetString(file.KeyEmbeddingModel)
	}

	switch provider {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: os.Getenv("OLLAMA_BASE_URL"),
			Model:   model,
		}), nil
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  model,
		})
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, provider)
	}
}
