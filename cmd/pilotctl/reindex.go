package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex-profiles",
	Short: "Re-embed every stored profile into the experience index",
	Long:  "Rebuild the Qdrant experience collection from the stored profiles. Requires QDRANT_URL.",
	RunE:  runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	pilot, err := newApp(ctx)
	if err != nil {
		return err
	}
	if !pilot.Config.Qdrant.Enabled() {
		return fmt.Errorf("QDRANT_URL is not set, nothing to index into")
	}

	log.Println("🚀 Starting profile re-indexing...")
	n, err := pilot.Profiles.ReindexAll(ctx)
	if err != nil {
		return err
	}
	log.Printf("✅ Indexed %d resume bullets\n", n)
	_, _ = fmt.Fprintf(os.Stdout, "Indexed %d resume bullets\n", n)
	return nil
}
