package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askURL  string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about an ingested paper",
	Long: `Answers a question using the paper's notes and the passages most
similar to the question, and suggests follow-up questions.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askURL, "url", "", "URL of an ingested paper")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answers as JSON")
	_ = askCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}
	if qaService == nil {
		return fmt.Errorf("question answering: %w", errNotConfigured)
	}

	answers, err := qaService.Answer(ctx, args[0], askURL)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answers)
	}

	for i, answer := range answers {
		if len(answers) > 1 {
			cmd.Printf("Answer %d:\n", i+1)
		}
		cmd.Println(answer.Answer)
		if len(answer.FollowupQuestions) > 0 {
			cmd.Println()
			cmd.Println("Follow-up questions:")
			for _, q := range answer.FollowupQuestions {
				cmd.Printf("  - %s\n", q)
			}
		}
		if i < len(answers)-1 {
			cmd.Println()
		}
	}
	return nil
}
