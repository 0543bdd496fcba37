package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	reindexURL  string
	reindexJSON bool
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index entries of an ingested paper",
	Long: `Rebuild the vector index entries of an ingested paper from its stored
text. Use this after an embedding outage or a change of embedding model.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().StringVar(&reindexURL, "url", "", "URL of an ingested paper")
	reindexCmd.Flags().BoolVar(&reindexJSON, "json", false, "output the result as JSON")
	_ = reindexCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}
	if reindexService == nil {
		return fmt.Errorf("reindex: %w", errNotConfigured)
	}

	count, err := reindexService.Reindex(ctx, reindexURL)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	if reindexJSON {
		return outputJSON(cmd, map[string]any{"url": reindexURL, "segments": count})
	}

	cmd.Printf("Indexed %d segments for %s\n", count, reindexURL)
	return nil
}
