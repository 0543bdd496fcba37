package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// MockPaperStore is a mock implementation of PaperStore for testing
type MockPaperStore struct {
	mu     sync.RWMutex
	papers map[string]*domain.Paper
	saves  int

	SaveErr error
	GetErr  error
}

// NewMockPaperStore creates a new MockPaperStore
func NewMockPaperStore() *MockPaperStore {
	return &MockPaperStore{
		papers: make(map[string]*domain.Paper),
	}
}

func (m *MockPaperStore) Save(ctx context.Context, paper *domain.Paper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.papers[paper.URL] = paper
	return nil
}

func (m *MockPaperStore) Get(ctx context.Context, url string) (*domain.Paper, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	paper, ok := m.papers[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return paper, nil
}

// Helper methods for testing

func (m *MockPaperStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// MockQALogStore is a mock implementation of QALogStore for testing
type MockQALogStore struct {
	mu      sync.Mutex
	records []*domain.QARecord

	AppendErr error
}

// NewMockQALogStore creates a new MockQALogStore
func NewMockQALogStore() *MockQALogStore {
	return &MockQALogStore{}
}

func (m *MockQALogStore) Append(ctx context.Context, record *domain.QARecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MockQALogStore) ListByPaper(ctx context.Context, url string, limit int) ([]*domain.QARecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.QARecord
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.PaperURL == url {
			out = append(out, r)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Records returns every appended record
func (m *MockQALogStore) Records() []*domain.QARecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.QARecord(nil), m.records...)
}
