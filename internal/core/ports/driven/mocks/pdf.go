package mocks

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
)

// MockPDFEditor is a mock implementation of PDFEditor for testing.
// By default it returns the input unchanged and records the requested pages.
type MockPDFEditor struct {
	mu        sync.Mutex
	calls     int
	lastPages []int

	DeletePagesFn func(ctx context.Context, data []byte, pages []int) ([]byte, error)
	PageCountFn   func(ctx context.Context, data []byte) (int, error)
}

// NewMockPDFEditor creates a new MockPDFEditor
func NewMockPDFEditor() *MockPDFEditor {
	return &MockPDFEditor{}
}

func (m *MockPDFEditor) DeletePages(ctx context.Context, data []byte, pages []int) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.lastPages = append([]int(nil), pages...)
	m.mu.Unlock()

	if m.DeletePagesFn != nil {
		return m.DeletePagesFn(ctx, data, pages)
	}
	return data, nil
}

func (m *MockPDFEditor) PageCount(ctx context.Context, data []byte) (int, error) {
	if m.PageCountFn != nil {
		return m.PageCountFn(ctx, data)
	}
	return 1, nil
}

func (m *MockPDFEditor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockPDFEditor) LastPages() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPages
}

// MockExtractionTier is a mock implementation of ExtractionTier for testing.
// It records whether the staged file existed while Extract ran.
type MockExtractionTier struct {
	mu           sync.Mutex
	name         string
	timeout      time.Duration
	calls        int
	stagedPaths  []string
	stagedExists []bool

	ExtractFn func(ctx context.Context, path string) ([]domain.TextSegment, error)
}

// NewMockExtractionTier creates a tier that returns the given segments
func NewMockExtractionTier(name string, segments ...domain.TextSegment) *MockExtractionTier {
	return &MockExtractionTier{
		name: name,
		ExtractFn: func(ctx context.Context, path string) ([]domain.TextSegment, error) {
			return segments, nil
		},
	}
}

func (m *MockExtractionTier) Name() string {
	return m.name
}

func (m *MockExtractionTier) Timeout() time.Duration {
	return m.timeout
}

func (m *MockExtractionTier) Extract(ctx context.Context, path string) ([]domain.TextSegment, error) {
	_, statErr := os.Stat(path)

	m.mu.Lock()
	m.calls++
	m.stagedPaths = append(m.stagedPaths, path)
	m.stagedExists = append(m.stagedExists, statErr == nil)
	m.mu.Unlock()

	return m.ExtractFn(ctx, path)
}

// Helper methods for testing

func (m *MockExtractionTier) SetTimeout(d time.Duration) {
	m.timeout = d
}

func (m *MockExtractionTier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// StagedPaths returns the paths passed to Extract, in call order
func (m *MockExtractionTier) StagedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.stagedPaths...)
}

// StagedFileExisted reports whether every staged file existed during Extract
func (m *MockExtractionTier) StagedFileExisted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ok := range m.stagedExists {
		if !ok {
			return false
		}
	}
	return len(m.stagedExists) > 0
}
