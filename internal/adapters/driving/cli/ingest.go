package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/veldt-labs/corpora-cli/internal/adapters/driven/config/file"
	"github.com/veldt-labs/corpora-cli/internal/chunker"
	"github.com/veldt-labs/corpora-cli/internal/core/domain"
	"github.com/veldt-labs/corpora-cli/internal/core/ports/driving"
	"github.com/veldt-labs/corpora-cli/internal/core/services"
)

var (
	ingestCollection string
	ingestSource     string
	ingestChunkSize  int
	ingestOverlap    int
	ingestBatchSize  int
	ingestWatch      bool
)

// watchDebounce coalesces the burst of write events editors and
// download tools emit when saving a file.
const watchDebounce = 500 * time.Millisecond

var ingestCmd = &cobra.Command{
	Use:   "ingest [pdf-path]",
	Short: "Ingest a PDF document into the vector store",
	Long: `Extracts text from a PDF, chunks it into overlapping word windows,
embeds each chunk, and upserts the vectors into the configured collection.

Chunk ids are deterministic, so ingesting the same document twice
overwrites records rather than duplicating them.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCollection, "collection", "c", "docs", "target collection name")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source label stored with each chunk (defaults to the file name)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", chunker.DefaultChunkSize, "chunk window size in words")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", chunker.DefaultOverlap, "words shared between consecutive chunks")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", services.DefaultBatchSize, "chunks embedded and upserted per batch")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest whenever the document changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	req := driving.IngestRequest{
		DocumentPath: args[0],
		Source:       ingestSource,
		Collection:   ingestCollection,
		ChunkSize:    ingestChunkSize,
		Overlap:      ingestOverlap,
		BatchSize:    ingestBatchSize,
	}
	applyConfigDefaults(cmd, &req)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summary, err := ingestService.Ingest(ctx, req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printSummary(cmd, summary)

	if ingestWatch {
		return watchAndReingest(ctx, cmd, req)
	}
	return nil
}

// applyConfigDefaults fills request fields from the config store for
// flags the user did not set. Flags override config overrides built-ins.
func applyConfigDefaults(cmd *cobra.Command, req *driving.IngestRequest) {
	if configStore == nil {
		return
	}
	flags := cmd.Flags()
	if !flags.Changed("collection") {
		if v := configStore.GetString(file.KeyCollection); v != "" {
			req.Collection = v
		}
	}
	if !flags.Changed("chunk-size") {
		if v := configStore.GetInt(file.KeyChunkSize); v != 0 {
			req.ChunkSize = v
		}
	}
	if !flags.Changed("overlap") {
		// Zero is a valid overlap, so Get instead of GetInt.
		if v, ok := configStore.Get(file.KeyOverlap); ok {
			switch n := v.(type) {
			case int64:
				req.Overlap = int(n)
			case int:
				req.Overlap = n
			}
		}
	}
	if !flags.Changed("batch-size") {
		if v := configStore.GetInt(file.KeyBatchSize); v != 0 {
			req.BatchSize = v
		}
	}
}

func printSummary(cmd *cobra.Command, summary *domain.IngestSummary) {
	cmd.Printf("Ingested %s into collection %s\n", summary.Source, summary.Collection)
	cmd.Printf("  Pages:  %d\n", summary.Pages)
	cmd.Printf("  Chunks: %d\n", summary.TotalChunks)
	cmd.Printf("  Model:  %s\n", summary.Model)
	if summary.StorePath != "" {
		cmd.Printf("  Store:  %s\n", summary.StorePath)
	}
}

// watchAndReingest re-runs the ingest whenever the document is
// rewritten. The watch is on the parent directory because many tools
// replace files by rename, which drops a watch set on the file itself.
func watchAndReingest(ctx context.Context, cmd *cobra.Command, req driving.IngestRequest) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(req.DocumentPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	cmd.Printf("Watching %s for changes...\n", req.DocumentPath)

	target := filepath.Clean(req.DocumentPath)
	var debounce *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrf("watch error: %v\n", err)
		case <-pending:
			summary, err := ingestService.Ingest(ctx, req)
			if err != nil {
				// A transient failure should not end the watch.
				cmd.PrintErrf("re-ingest failed: %v\n", err)
				continue
			}
			printSummary(cmd, summary)
		}
	}
}
