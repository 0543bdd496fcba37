package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-papers/internal/postprocessors"
)

func newTestReindexer(t *testing.T) (*Reindexer, *mocks.MockPaperStore, *mocks.MockVectorIndex) {
	t.Helper()
	papers := mocks.NewMockPaperStore()
	index := mocks.NewMockVectorIndex()
	require.NoError(t, papers.Save(context.Background(), &domain.Paper{
		URL:      testPaperURL,
		Name:     "Attention",
		FullText: "Attention is all you need.\n\nWe propose the Transformer.",
		Notes:    []domain.Note{{Text: "Introduces the Transformer", PageNumbers: []int{1}}},
	}))

	return NewReindexer(ReindexerConfig{
		PaperStore:  papers,
		VectorIndex: index,
		Pipeline:    postprocessors.DefaultPipeline(),
	}), papers, index
}

func TestReindexer_Reindex(t *testing.T) {
	r, _, index := newTestReindexer(t)

	n, err := r.Reindex(context.Background(), testPaperURL)

	require.NoError(t, err)
	require.Positive(t, n)
	segments := index.Segments(testPaperURL)
	assert.Len(t, segments, n)
	for _, seg := range segments {
		assert.Equal(t, testPaperURL, seg.Metadata[domain.MetaURL])
		assert.Equal(t, "Attention", seg.Metadata[domain.MetaSource])
	}
}

func TestReindexer_Errors(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		r, _, _ := newTestReindexer(t)
		_, err := r.Reindex(context.Background(), " ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown paper", func(t *testing.T) {
		r, _, _ := newTestReindexer(t)
		_, err := r.Reindex(context.Background(), "https://example.com/other.pdf")
		assert.ErrorIs(t, err, domain.ErrPaperNotFound)
	})

	t.Run("no index", func(t *testing.T) {
		r, _, _ := newTestReindexer(t)
		r.index = nil
		_, err := r.Reindex(context.Background(), testPaperURL)
		assert.ErrorIs(t, err, domain.ErrConfig)
	})

	t.Run("index failure", func(t *testing.T) {
		r, _, index := newTestReindexer(t)
		index.IndexErr = errors.New("embedding quota exceeded")
		_, err := r.Reindex(context.Background(), testPaperURL)
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("store failure", func(t *testing.T) {
		r, papers, _ := newTestReindexer(t)
		papers.GetErr = errors.New("connection reset")
		_, err := r.Reindex(context.Background(), testPaperURL)
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})
}
