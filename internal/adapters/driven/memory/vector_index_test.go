package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven/mocks"
)

func segments(texts ...string) []domain.TextSegment {
	out := make([]domain.TextSegment, len(texts))
	for i, text := range texts {
		out[i] = domain.NewTextSegment(text, "paper.pdf").WithURL(paperURL)
	}
	return out
}

func TestVectorIndex_Search(t *testing.T) {
	index := NewVectorIndex(mocks.NewMockEmbeddingService())
	ctx := context.Background()

	require.NoError(t, index.Index(ctx, paperURL, segments("self attention", "positional encoding", "beam search")))

	got, err := index.Search(ctx, paperURL, "positional encoding", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "positional encoding", got[0].Content)
	assert.Equal(t, paperURL, got[0].Metadata[domain.MetaURL])
}

func TestVectorIndex_ScopedToPaper(t *testing.T) {
	index := NewVectorIndex(mocks.NewMockEmbeddingService())
	ctx := context.Background()

	require.NoError(t, index.Index(ctx, paperURL, segments("a", "b")))

	got, err := index.Search(ctx, "https://example.com/other.pdf", "a", 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = index.Search(ctx, paperURL, "a", 5)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestVectorIndex_ReindexReplaces(t *testing.T) {
	index := NewVectorIndex(mocks.NewMockEmbeddingService())
	ctx := context.Background()

	require.NoError(t, index.Index(ctx, paperURL, segments("old one", "old two")))
	require.NoError(t, index.Index(ctx, paperURL, segments("new")))

	got, err := index.Search(ctx, paperURL, "new", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Content)
}

func TestVectorIndex_DeleteByPaper(t *testing.T) {
	index := NewVectorIndex(mocks.NewMockEmbeddingService())
	ctx := context.Background()

	require.NoError(t, index.Index(ctx, paperURL, segments("a")))
	require.NoError(t, index.DeleteByPaper(ctx, paperURL))

	got, err := index.Search(ctx, paperURL, "a", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVectorIndex_EmbeddingFailure(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	index := NewVectorIndex(embedder)
	ctx := context.Background()

	embedder.SetFailAlways(true)
	assert.ErrorIs(t, index.Index(ctx, paperURL, segments("a")), mocks.ErrMockEmbedding)

	embedder.SetFailAlways(false)
	require.NoError(t, index.Index(ctx, paperURL, segments("a")))

	embedder.SetFailAlways(true)
	_, err := index.Search(ctx, paperURL, "a", 1)
	assert.ErrorIs(t, err, mocks.ErrMockEmbedding)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
