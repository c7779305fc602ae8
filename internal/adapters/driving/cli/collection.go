package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Inspect vector store collections",
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections and their record counts",
	RunE:  runCollectionList,
}

var collectionStatsCmd = &cobra.Command{
	Use:   "stats [name]",
	Short: "Show details for one collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionStats,
}

func init() {
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionStatsCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	if vectorStore == nil {
		return errors.New("vector store not configured")
	}

	collections, err := vectorStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(collections) == 0 {
		cmd.Println("No collections found.")
		return nil
	}

	for _, info := range collections {
		cmd.Printf("  %s\n", info.Name)
		cmd.Printf("    Metric:     %s\n", info.Metric)
		cmd.Printf("    Dimensions: %d\n", info.Dimensions)
		cmd.Printf("    Records:    %d\n", info.Records)
		cmd.Println()
	}

	cmd.Printf("Total: %d collections\n", len(collections))
	return nil
}

func runCollectionStats(cmd *cobra.Command, args []string) error {
	if vectorStore == nil {
		return errors.New("vector store not configured")
	}

	name := args[0]
	collections, err := vectorStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, info := range collections {
		if info.Name != name {
			continue
		}
		cmd.Printf("Collection: %s\n\n", info.Name)
		cmd.Printf("  Metric:     %s\n", info.Metric)
		cmd.Printf("  Dimensions: %d\n", info.Dimensions)
		cmd.Printf("  Records:    %d\n", info.Records)
		return nil
	}

	return fmt.Errorf("collection not found: %s", name)
}
