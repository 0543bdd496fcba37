package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// PDFEditor modifies PDF documents
type PDFEditor interface {
	// DeletePages removes pages from the document. Page numbers must be
	// ascending; each one is applied to the document as shrunk by the
	// deletions before it. Failures wrap domain.ErrPDFEdit.
	DeletePages(ctx context.Context, data []byte, pages []int) ([]byte, error)

	// PageCount returns the number of pages in the document
	PageCount(ctx context.Context, data []byte) (int, error)
}

// ExtractionTier is one strategy for turning a PDF into text segments.
// Tiers are tried in order until one produces segments.
type ExtractionTier interface {
	// Name identifies the tier in logs and segment metadata
	Name() string

	// Timeout bounds a single Extract call. Zero means no tier-specific bound.
	Timeout() time.Duration

	// Extract reads the staged PDF at path and returns its segments in document order
	Extract(ctx context.Context, path string) ([]domain.TextSegment, error)
}
