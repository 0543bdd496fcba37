package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*VectorIndex)(nil)

type entry struct {
	segment   domain.TextSegment
	embedding []float32
}

// VectorIndex is a brute-force cosine similarity index
type VectorIndex struct {
	embedder driven.EmbeddingService

	mu      sync.RWMutex
	entries map[string][]entry
}

// NewVectorIndex creates an empty index that embeds with embedder
func NewVectorIndex(embedder driven.EmbeddingService) *VectorIndex {
	return &VectorIndex{
		embedder: embedder,
		entries:  make(map[string][]entry),
	}
}

// Index embeds segments and replaces the paper's existing entries
func (v *VectorIndex) Index(ctx context.Context, paperURL string, segments []domain.TextSegment) error {
	if len(segments) == 0 {
		return nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Content
	}

	embeddings, err := v.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed segments: %w", err)
	}
	if len(embeddings) != len(segments) {
		return fmt.Errorf("embed segments: got %d embeddings for %d segments", len(embeddings), len(segments))
	}

	entries := make([]entry, len(segments))
	for i, seg := range segments {
		entries[i] = entry{segment: seg, embedding: embeddings[i]}
	}

	v.mu.Lock()
	v.entries[paperURL] = entries
	v.mu.Unlock()
	return nil
}

// Search returns up to k segments of the paper, most similar first
func (v *VectorIndex) Search(ctx context.Context, paperURL, query string, k int) ([]domain.TextSegment, error) {
	v.mu.RLock()
	entries := v.entries[paperURL]
	v.mu.RUnlock()

	if len(entries) == 0 || k <= 0 {
		return nil, nil
	}

	q, err := v.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	type scored struct {
		segment domain.TextSegment
		score   float32
	}
	results := make([]scored, len(entries))
	for i, e := range entries {
		results[i] = scored{segment: e.segment, score: cosineSimilarity(q, e.embedding)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > k {
		results = results[:k]
	}
	segments := make([]domain.TextSegment, len(results))
	for i, r := range results {
		segments[i] = r.segment
	}
	return segments, nil
}

// DeleteByPaper removes every entry for a paper
func (v *VectorIndex) DeleteByPaper(ctx context.Context, paperURL string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.entries, paperURL)
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}
