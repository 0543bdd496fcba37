package driven

import (
	"context"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// PaperStore persists papers keyed by source URL
type PaperStore interface {
	// Save stores a paper with its notes. Saving an existing URL overwrites it.
	Save(ctx context.Context, paper *domain.Paper) error

	// Get retrieves a paper by URL. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, url string) (*domain.Paper, error)
}

// QALogStore is an append-only log of question/answer interactions
type QALogStore interface {
	// Append records a single interaction
	Append(ctx context.Context, record *domain.QARecord) error

	// ListByPaper returns the interactions for a paper, newest first
	ListByPaper(ctx context.Context, url string, limit int) ([]*domain.QARecord, error)
}
