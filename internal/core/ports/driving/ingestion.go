package driving

import (
	"context"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// IngestionService turns a PDF into a stored paper with notes
type IngestionService interface {
	// Ingest fetches, edits, extracts, summarises, persists and indexes a
	// paper. Ingesting a URL that is already stored returns its notes
	// without re-running any step.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error)
}

// PaperService provides read access to stored papers
type PaperService interface {
	// Get retrieves a stored paper by URL
	Get(ctx context.Context, url string) (*domain.Paper, error)

	// History returns logged questions and answers for a paper
	History(ctx context.Context, url string, limit int) ([]*domain.QARecord, error)
}

// ReindexService rebuilds the vector entries of stored papers
type ReindexService interface {
	// Reindex replaces a paper's vector entries with ones built from its
	// stored full text and returns how many segments were indexed.
	Reindex(ctx context.Context, url string) (int, error)
}
