package firestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

func TestDocID(t *testing.T) {
	a := docID("https://arxiv.org/pdf/1706.03762")

	assert.Len(t, a, 64)
	assert.NotContains(t, a, "/")
	assert.Equal(t, a, docID("https://arxiv.org/pdf/1706.03762"))
	assert.NotEqual(t, a, docID("https://arxiv.org/pdf/1706.03763"))
}

func TestPaperDoc_RoundTrip(t *testing.T) {
	paper := &domain.Paper{
		URL:       "https://arxiv.org/pdf/1706.03762",
		Name:      "Attention",
		FullText:  "text",
		Notes:     []domain.Note{{Text: "Introduces the Transformer", PageNumbers: []int{1, 2}}},
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	doc := toPaperDoc(paper)
	assert.Equal(t, "Introduces the Transformer", doc.Notes[0].Note)

	assert.Equal(t, paper, doc.toDomain())
}

func TestQARecordDoc(t *testing.T) {
	record := &domain.QARecord{ID: "abc", PaperURL: "u", Question: "q", Answer: "a", Context: "[]"}

	doc := toQARecordDoc(record)
	require.NotNil(t, doc.FollowupQuestions)
	assert.Empty(t, doc.FollowupQuestions)

	back := doc.toDomain("abc")
	assert.Equal(t, "abc", back.ID)
	assert.Equal(t, "q", back.Question)
	assert.Equal(t, []string{}, back.FollowupQuestions)
}

func TestNewClient_RequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	assert.Error(t, err)
}
