package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

var (
	notesName  string
	notesURL   string
	notesPages string
	notesJSON  bool
)

var takeNotesCmd = &cobra.Command{
	Use:   "take-notes",
	Short: "Ingest a paper and print its notes",
	Long: `Downloads the PDF at --url, removes the pages listed in --pages,
extracts its text and generates structured notes. Papers already ingested
return their stored notes.`,
	Args: cobra.NoArgs,
	RunE: runTakeNotes,
}

func init() {
	takeNotesCmd.Flags().StringVar(&notesName, "name", "", "paper name")
	takeNotesCmd.Flags().StringVar(&notesURL, "url", "", "PDF URL (http, https or gs)")
	takeNotesCmd.Flags().StringVar(&notesPages, "pages", "", "comma separated pages to delete, ascending")
	takeNotesCmd.Flags().BoolVar(&notesJSON, "json", false, "output notes as JSON")
	_ = takeNotesCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(takeNotesCmd)
}

func runTakeNotes(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}
	if ingestionService == nil {
		return fmt.Errorf("ingestion: %w", errNotConfigured)
	}

	name := notesName
	if name == "" {
		name = notesURL
	}

	result, err := ingestionService.Ingest(ctx, domain.IngestRequest{
		Name:          name,
		PaperURL:      notesURL,
		PagesToDelete: domain.ParsePageList(notesPages),
	})
	if err != nil {
		return fmt.Errorf("take notes failed: %w", err)
	}

	if notesJSON {
		return outputJSON(cmd, result.Notes)
	}

	if result.Cached {
		cmd.Println("Paper already ingested; showing stored notes.")
	}
	if len(result.Notes) == 0 {
		cmd.Println("No notes generated.")
		return nil
	}

	cmd.Printf("Notes for %s:\n\n", name)
	for i, note := range result.Notes {
		cmd.Printf("  [%d] %s\n", i+1, note.Text)
		cmd.Printf("      Pages: %s\n", joinPages(note.PageNumbers))
	}
	return nil
}

func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ", ")
}
