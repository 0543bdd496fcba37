package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

func TestHistoryCmd_HasLimitFlag(t *testing.T) {
	flag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestHistoryCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "history", "--url", "https://example.com/p.pdf")

	require.NoError(t, err)
	assert.Contains(t, out, "No questions asked yet.")
}

func TestHistoryCmd_PrintsRecords(t *testing.T) {
	_, _, papers := setupTestServices(t)
	papers.records = []*domain.QARecord{{
		Question:  "What is new?",
		Answer:    "Sparse attention.",
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}}

	out, err := run(t, "history", "--url", "https://example.com/p.pdf", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, papers.lastLimit)
	assert.Contains(t, out, "[2026-03-01 09:30] Q: What is new?")
	assert.Contains(t, out, "A: Sparse attention.")
}
