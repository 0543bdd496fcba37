package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// DocumentExtractor turns PDF bytes into text segments by trying an
// ordered list of extraction tiers. The first tier that yields at least
// one segment wins.
type DocumentExtractor struct {
	tiers      []driven.ExtractionTier
	stagingDir string
	logger     *slog.Logger
}

// DocumentExtractorConfig holds dependencies for DocumentExtractor.
type DocumentExtractorConfig struct {
	// Tiers in preference order
	Tiers []driven.ExtractionTier

	// StagingDir holds the temporary PDF copies tiers read from.
	// Empty means os.TempDir().
	StagingDir string

	Logger *slog.Logger
}

// NewDocumentExtractor creates a new document extractor.
func NewDocumentExtractor(cfg DocumentExtractorConfig) *DocumentExtractor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &DocumentExtractor{
		tiers:      cfg.Tiers,
		stagingDir: cfg.StagingDir,
		logger:     logger,
	}
}

// Tiers returns the names of the configured tiers in order.
func (e *DocumentExtractor) Tiers() []string {
	names := make([]string, len(e.tiers))
	for i, t := range e.tiers {
		names[i] = t.Name()
	}
	return names
}

// Extract runs the tiers in order. Every returned segment is tagged with
// the name of the tier that produced it. When no tier succeeds the error
// wraps domain.ErrExtraction together with each tier's failure.
func (e *DocumentExtractor) Extract(ctx context.Context, data []byte) ([]domain.TextSegment, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrExtraction)
	}
	if len(e.tiers) == 0 {
		return nil, fmt.Errorf("%w: no extraction tiers configured", domain.ErrExtraction)
	}

	var errs []error
	for _, tier := range e.tiers {
		start := time.Now()
		segments, err := e.runTier(ctx, tier, data)
		if err == nil && len(segments) == 0 {
			err = errors.New("no text segments produced")
		}
		if err == nil {
			e.logger.Info("extraction succeeded",
				"tier", tier.Name(),
				"segments", len(segments),
				"duration", time.Since(start),
			)
			return tagTier(segments, tier.Name()), nil
		}

		e.logger.Warn("extraction tier failed",
			"tier", tier.Name(),
			"duration", time.Since(start),
			"error", err,
		)
		errs = append(errs, fmt.Errorf("%s: %w", tier.Name(), err))

		// The caller is gone; later tiers would fail the same way.
		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", domain.ErrExtraction, errors.Join(errs...))
}

// runTier stages the bytes to a temp file, bounds the call with the tier's
// own timeout and removes the file whatever the outcome.
func (e *DocumentExtractor) runTier(ctx context.Context, tier driven.ExtractionTier, data []byte) ([]domain.TextSegment, error) {
	if timeout := tier.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	path, err := stagePDF(e.stagingDir, data)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("failed to remove staged pdf", "path", path, "error", err)
		}
	}()

	return tier.Extract(ctx, path)
}

// stagePDF writes data to a new temp file and returns its path.
func stagePDF(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "sercha-papers-*.pdf")
	if err != nil {
		return "", fmt.Errorf("stage pdf: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("stage pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("stage pdf: %w", err)
	}
	return path, nil
}

func tagTier(segments []domain.TextSegment, tier string) []domain.TextSegment {
	out := make([]domain.TextSegment, len(segments))
	for i, s := range segments {
		meta := make(map[string]string, len(s.Metadata)+1)
		for k, v := range s.Metadata {
			meta[k] = v
		}
		meta[domain.MetaTier] = tier
		out[i] = domain.TextSegment{Content: s.Content, Metadata: meta}
	}
	return out
}
