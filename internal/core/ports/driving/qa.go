package driving

import (
	"context"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// QAService answers questions about an ingested paper
type QAService interface {
	// Answer returns one or more answer groupings for the question.
	// Retrieval and logging failures never fail the call.
	Answer(ctx context.Context, question, paperURL string) ([]domain.Answer, error)
}
