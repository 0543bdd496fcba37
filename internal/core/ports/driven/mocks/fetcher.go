package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// MockPDFFetcher is a mock implementation of PDFFetcher for testing
type MockPDFFetcher struct {
	mu        sync.Mutex
	documents map[string][]byte
	calls     int

	FetchFn func(ctx context.Context, url string) ([]byte, error)
}

// NewMockPDFFetcher creates a new MockPDFFetcher
func NewMockPDFFetcher() *MockPDFFetcher {
	return &MockPDFFetcher{
		documents: make(map[string][]byte),
	}
}

func (m *MockPDFFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.FetchFn != nil {
		return m.FetchFn(ctx, url)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.documents[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s: 404 Not Found", domain.ErrDownload, url)
	}
	return data, nil
}

// Helper methods for testing

func (m *MockPDFFetcher) AddDocument(url string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[url] = data
}

func (m *MockPDFFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
