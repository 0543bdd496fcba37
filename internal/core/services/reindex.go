package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driving"
)

// Ensure Reindexer implements ReindexService
var _ driving.ReindexService = (*Reindexer)(nil)

// Reindexer rebuilds a stored paper's vector entries from its full text.
// Page metadata from extraction is not stored, so rebuilt segments carry
// only the paper name and URL.
type Reindexer struct {
	papers   driven.PaperStore
	index    driven.VectorIndex
	pipeline driven.PostProcessorPipeline
	logger   *slog.Logger
}

// ReindexerConfig holds dependencies for Reindexer.
type ReindexerConfig struct {
	PaperStore  driven.PaperStore
	VectorIndex driven.VectorIndex

	// Pipeline splits the full text into indexable segments. Optional.
	Pipeline driven.PostProcessorPipeline

	Logger *slog.Logger
}

// NewReindexer creates a new Reindexer.
func NewReindexer(cfg ReindexerConfig) *Reindexer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reindexer{
		papers:   cfg.PaperStore,
		index:    cfg.VectorIndex,
		pipeline: cfg.Pipeline,
		logger:   logger,
	}
}

// Reindex replaces the vector entries of the paper at url.
func (r *Reindexer) Reindex(ctx context.Context, url string) (int, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return 0, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	if r.index == nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrConfig, errIndexNotConfigured)
	}

	paper, err := r.papers.Get(ctx, url)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", domain.ErrPaperNotFound, url)
	}
	if err != nil {
		return 0, ensureKind(err, domain.ErrPersistence)
	}
	if strings.TrimSpace(paper.FullText) == "" {
		return 0, fmt.Errorf("%w: stored paper has no text", domain.ErrExtraction)
	}

	startTime := time.Now()
	segments := []domain.TextSegment{domain.NewTextSegment(paper.FullText, paper.Name).WithURL(url)}
	if r.pipeline != nil {
		segments = r.pipeline.Process(segments)
	}

	if err := r.index.Index(ctx, url, segments); err != nil {
		return 0, ensureKind(err, domain.ErrPersistence)
	}

	r.logger.Info("paper reindexed",
		"url", url,
		"segments", len(segments),
		"duration", time.Since(startTime),
	)
	return len(segments), nil
}
