package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// MockVectorIndex is a mock implementation of VectorIndex for testing.
// Search returns the first k indexed segments for the paper.
type MockVectorIndex struct {
	mu       sync.Mutex
	segments map[string][]domain.TextSegment
	indexed  int
	searches int

	IndexErr  error
	SearchErr error
	SearchFn  func(ctx context.Context, paperURL, query string, k int) ([]domain.TextSegment, error)
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		segments: make(map[string][]domain.TextSegment),
	}
}

func (m *MockVectorIndex) Index(ctx context.Context, paperURL string, segments []domain.TextSegment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexed++
	if m.IndexErr != nil {
		return m.IndexErr
	}
	m.segments[paperURL] = append(m.segments[paperURL], segments...)
	return nil
}

func (m *MockVectorIndex) Search(ctx context.Context, paperURL, query string, k int) ([]domain.TextSegment, error) {
	m.mu.Lock()
	m.searches++
	m.mu.Unlock()

	if m.SearchFn != nil {
		return m.SearchFn(ctx, paperURL, query, k)
	}
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	segs := m.segments[paperURL]
	if len(segs) > k {
		segs = segs[:k]
	}
	return segs, nil
}

func (m *MockVectorIndex) DeleteByPaper(ctx context.Context, paperURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.segments, paperURL)
	return nil
}

// Helper methods for testing

func (m *MockVectorIndex) IndexCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexed
}

func (m *MockVectorIndex) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searches
}

// Segments returns the segments indexed for a paper
func (m *MockVectorIndex) Segments(paperURL string) []domain.TextSegment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TextSegment(nil), m.segments[paperURL]...)
}
