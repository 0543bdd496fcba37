package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyURL   string
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List questions asked about a paper",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyURL, "url", "", "URL of an ingested paper")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "maximum number of records (0 for the default)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output records as JSON")
	_ = historyCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}
	if paperService == nil {
		return fmt.Errorf("papers: %w", errNotConfigured)
	}

	records, err := paperService.History(ctx, historyURL, historyLimit)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	if historyJSON {
		return outputJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for _, r := range records {
		cmd.Printf("[%s] Q: %s\n", r.CreatedAt.Format("2006-01-02 15:04"), r.Question)
		cmd.Printf("  A: %s\n", r.Answer)
	}
	return nil
}
