package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

const paperURL = "https://arxiv.org/pdf/1706.03762"

func TestPaperStore_SaveGet(t *testing.T) {
	store := NewPaperStore()
	ctx := context.Background()

	paper := &domain.Paper{
		URL:       paperURL,
		Name:      "Attention",
		FullText:  "full text",
		Notes:     []domain.Note{{Text: "Introduces the Transformer", PageNumbers: []int{1}}},
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Save(ctx, paper))

	got, err := store.Get(ctx, paperURL)
	require.NoError(t, err)
	assert.Equal(t, paper, got)

	// Returned papers are copies
	got.Notes[0].PageNumbers[0] = 99
	again, err := store.Get(ctx, paperURL)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Notes[0].PageNumbers[0])
}

func TestPaperStore_NotFound(t *testing.T) {
	store := NewPaperStore()

	_, err := store.Get(context.Background(), paperURL)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQALogStore_ListByPaper(t *testing.T) {
	store := NewQALogStore()
	ctx := context.Background()

	for _, r := range []*domain.QARecord{
		{ID: "1", PaperURL: paperURL, Question: "q1"},
		{ID: "2", PaperURL: "https://example.com/other.pdf", Question: "other"},
		{ID: "3", PaperURL: paperURL, Question: "q2"},
		{ID: "4", PaperURL: paperURL, Question: "q3"},
	} {
		require.NoError(t, store.Append(ctx, r))
	}

	all, err := store.ListByPaper(ctx, paperURL, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "q3", all[0].Question)
	assert.Equal(t, "q1", all[2].Question)

	limited, err := store.ListByPaper(ctx, paperURL, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "q3", limited[0].Question)
	assert.Equal(t, "q2", limited[1].Question)

	none, err := store.ListByPaper(ctx, "https://example.com/unknown.pdf", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQALogStore_ListByPaperKeepsNewestPastLimit(t *testing.T) {
	store := NewQALogStore()
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		require.NoError(t, store.Append(ctx, &domain.QARecord{
			ID:       fmt.Sprintf("r%d", i),
			PaperURL: paperURL,
			Question: fmt.Sprintf("q%d", i),
		}))
	}

	records, err := store.ListByPaper(ctx, paperURL, 50)
	require.NoError(t, err)
	require.Len(t, records, 50)
	assert.Equal(t, "q59", records[0].Question)
	assert.Equal(t, "q10", records[49].Question)
}
