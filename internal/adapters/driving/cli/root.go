// Package cli provides the sercha-papers command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-papers/internal/core/ports/driving"
)

var (
	version = "dev"

	ingestionService driving.IngestionService
	qaService        driving.QAService
	paperService     driving.PaperService
	reindexService   driving.ReindexService
	serveFunc        func(ctx context.Context) error

	loader   Loader
	closeApp func()
)

// App holds the services the commands run against
type App struct {
	Ingestion driving.IngestionService
	QA        driving.QAService
	Papers    driving.PaperService
	Reindex   driving.ReindexService

	// Serve runs the HTTP server until ctx is cancelled
	Serve func(ctx context.Context) error

	// Close releases backend connections; may be nil
	Close func()
}

// Loader builds the App. It runs once, on the first command that needs services.
type Loader func(ctx context.Context) (*App, error)

var rootCmd = &cobra.Command{
	Use:   "sercha-papers",
	Short: "Research paper notes and question answering",
	Long: `sercha-papers ingests PDF research papers into structured notes
and answers questions about them with retrieval-augmented generation.`,
	SilenceUsage: true,
}

// Execute runs the root command with the given version and service loader.
func Execute(ctx context.Context, ver string, load Loader) error {
	version = ver
	loader = load
	defer func() {
		if closeApp != nil {
			closeApp()
			closeApp = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// loadServices builds the services on first use. Services already set
// are left alone.
func loadServices(ctx context.Context) error {
	if loader == nil || ingestionService != nil || qaService != nil || paperService != nil || reindexService != nil || serveFunc != nil {
		return nil
	}

	app, err := loader(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialise services: %w", err)
	}

	ingestionService = app.Ingestion
	qaService = app.QA
	paperService = app.Papers
	reindexService = app.Reindex
	serveFunc = app.Serve
	closeApp = app.Close
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

var errNotConfigured = errors.New("service not configured")
