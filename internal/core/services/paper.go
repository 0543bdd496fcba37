package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driving"
)

// Ensure paperService implements PaperService
var _ driving.PaperService = (*paperService)(nil)

// DefaultHistoryLimit caps the QA history returned for a paper
const DefaultHistoryLimit = 50

// paperService implements the PaperService interface
type paperService struct {
	papers driven.PaperStore
	qaLog  driven.QALogStore
}

// NewPaperService creates a new PaperService
func NewPaperService(papers driven.PaperStore, qaLog driven.QALogStore) driving.PaperService {
	return &paperService{
		papers: papers,
		qaLog:  qaLog,
	}
}

// Get retrieves a stored paper by URL
func (s *paperService) Get(ctx context.Context, url string) (*domain.Paper, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}

	paper, err := s.papers.Get(ctx, url)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaperNotFound, url)
	}
	if err != nil {
		return nil, ensureKind(err, domain.ErrPersistence)
	}
	return paper, nil
}

// History returns the logged QA interactions for a paper, newest first
func (s *paperService) History(ctx context.Context, url string, limit int) ([]*domain.QARecord, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	if s.qaLog == nil {
		return []*domain.QARecord{}, nil
	}

	records, err := s.qaLog.ListByPaper(ctx, url, limit)
	if err != nil {
		return nil, ensureKind(err, domain.ErrPersistence)
	}
	return records, nil
}
