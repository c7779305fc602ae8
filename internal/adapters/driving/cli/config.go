package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/corpora-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persistent defaults",
	Long: `View and set defaults stored in the config file.

Recognised keys:
  ingest.collection   default target collection
  ingest.chunk_size   default chunk window size in words
  ingest.overlap      default words shared between consecutive chunks
  ingest.batch_size   default chunks per embedding batch
  embedding.provider  embedding provider (ollama or openai)
  embedding.model     embedding model name
  store.dir           vector store directory`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

// configKeys are the keys the set command accepts. Integer keys are
// parsed before storing so TOML round-trips them as numbers.
var configKeys = map[string]bool{
	file.KeyCollection:        false,
	file.KeyChunkSize:         true,
	file.KeyOverlap:           true,
	file.KeyBatchSize:         true,
	file.KeyEmbeddingProvider: false,
	file.KeyEmbeddingModel:    false,
	file.KeyStoreDir:          false,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := make([]string, 0, len(configKeys))
	for key := range configKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cmd.Printf("Configuration (%s):\n\n", configStore.Path())
	for _, key := range keys {
		value, ok := configStore.Get(key)
		if !ok {
			cmd.Printf("  %-20s (unset)\n", key)
			continue
		}
		cmd.Printf("  %-20s %v\n", key, value)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key not set: %s", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	isInt, known := configKeys[key]
	if !known {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	var value any = raw
	if isInt {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s requires an integer value: %q", key, raw)
		}
		value = n
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}
