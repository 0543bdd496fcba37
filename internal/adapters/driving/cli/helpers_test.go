package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

type mockIngestionService struct {
	lastReq domain.IngestRequest
	result  *domain.IngestResult
	err     error
}

func (m *mockIngestionService) Ingest(_ context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockQAService struct {
	lastQuestion string
	lastURL      string
	answers      []domain.Answer
	err          error
}

func (m *mockQAService) Answer(_ context.Context, question, paperURL string) ([]domain.Answer, error) {
	m.lastQuestion = question
	m.lastURL = paperURL
	return m.answers, m.err
}

type mockPaperService struct {
	lastLimit int
	records   []*domain.QARecord
	err       error
}

func (m *mockPaperService) Get(_ context.Context, url string) (*domain.Paper, error) {
	return &domain.Paper{URL: url}, m.err
}

func (m *mockPaperService) History(_ context.Context, _ string, limit int) ([]*domain.QARecord, error) {
	m.lastLimit = limit
	return m.records, m.err
}

// setupTestServices installs mock services, restoring the previous ones
// when the test ends.
func setupTestServices(t *testing.T) (*mockIngestionService, *mockQAService, *mockPaperService) {
	t.Helper()

	ingestion := &mockIngestionService{result: &domain.IngestResult{
		Notes: []domain.Note{
			{Text: "Proposes a sparse attention variant", PageNumbers: []int{1, 2}},
			{Text: "Reports a 2x speedup", PageNumbers: []int{5}},
		},
	}}
	qa := &mockQAService{answers: []domain.Answer{
		{Answer: "It uses sparse attention.", FollowupQuestions: []string{"How sparse?"}},
	}}
	papers := &mockPaperService{}

	oldIngestion, oldQA, oldPapers, oldReindex, oldServe, oldLoader := ingestionService, qaService, paperService, reindexService, serveFunc, loader
	ingestionService, qaService, paperService = ingestion, qa, papers
	t.Cleanup(func() {
		ingestionService, qaService, paperService, reindexService, serveFunc, loader = oldIngestion, oldQA, oldPapers, oldReindex, oldServe, oldLoader
	})

	return ingestion, qa, papers
}

// run executes the root command with args and returns its output.
// Flags are reset first since cobra keeps their state between runs.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, cmd := range rootCmd.Commands() {
		resetFlags(cmd)
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}
