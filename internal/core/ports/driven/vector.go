package driven

import (
	"context"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// VectorIndex embeds text segments and searches them by similarity.
// Entries are a cache: a paper without entries must still be answerable.
type VectorIndex interface {
	// Index embeds and stores segments for a paper. Segments carry the
	// paper URL in their metadata.
	Index(ctx context.Context, paperURL string, segments []domain.TextSegment) error

	// Search returns up to k segments of the paper most similar to query
	Search(ctx context.Context, paperURL, query string, k int) ([]domain.TextSegment, error)

	// DeleteByPaper removes every entry for a paper
	DeleteByPaper(ctx context.Context, paperURL string) error
}
