// Package memory provides process-local stores for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.PaperStore = (*PaperStore)(nil)
	_ driven.QALogStore = (*QALogStore)(nil)
)

// PaperStore keeps papers in a map keyed by URL
type PaperStore struct {
	mu     sync.RWMutex
	papers map[string]*domain.Paper
}

// NewPaperStore creates an empty PaperStore
func NewPaperStore() *PaperStore {
	return &PaperStore{papers: make(map[string]*domain.Paper)}
}

// Save stores a copy of the paper
func (s *PaperStore) Save(ctx context.Context, paper *domain.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.papers[paper.URL] = clonePaper(paper)
	return nil
}

// Get returns a copy of the stored paper
func (s *PaperStore) Get(ctx context.Context, url string) (*domain.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paper, ok := s.papers[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clonePaper(paper), nil
}

func clonePaper(p *domain.Paper) *domain.Paper {
	c := *p
	c.Notes = make([]domain.Note, len(p.Notes))
	for i, n := range p.Notes {
		c.Notes[i] = domain.Note{Text: n.Text, PageNumbers: append([]int(nil), n.PageNumbers...)}
	}
	return &c
}

// QALogStore keeps QA records in insertion order
type QALogStore struct {
	mu      sync.RWMutex
	records []*domain.QARecord
}

// NewQALogStore creates an empty QALogStore
func NewQALogStore() *QALogStore {
	return &QALogStore{}
}

// Append records a copy of the interaction
func (s *QALogStore) Append(ctx context.Context, record *domain.QARecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *record
	c.FollowupQuestions = append([]string(nil), record.FollowupQuestions...)
	s.records = append(s.records, &c)
	return nil
}

// ListByPaper returns up to limit records for the paper, newest first
func (s *QALogStore) ListByPaper(ctx context.Context, url string, limit int) ([]*domain.QARecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.QARecord
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if r.PaperURL != url {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		c := *r
		out = append(out, &c)
	}
	return out, nil
}
