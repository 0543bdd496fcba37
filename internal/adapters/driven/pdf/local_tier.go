package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Ensure LocalTier implements ExtractionTier
var _ driven.ExtractionTier = (*LocalTier)(nil)

// LocalTierName identifies the local tier in segment metadata
const LocalTierName = "local"

// LocalTier extracts one text segment per page with ledongthuc/pdf.
// It needs no network and is the last tier in the chain.
type LocalTier struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewLocalTier creates a local extraction tier. A zero timeout leaves the
// tier bounded only by the caller's context.
func NewLocalTier(timeout time.Duration, logger *slog.Logger) *LocalTier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalTier{timeout: timeout, logger: logger}
}

// Name returns the tier name
func (t *LocalTier) Name() string {
	return LocalTierName
}

// Timeout returns the per-call bound
func (t *LocalTier) Timeout() time.Duration {
	return t.timeout
}

// Extract reads the PDF at path. Unreadable pages are skipped; the parser
// panicking on a malformed document is reported as an error.
func (t *LocalTier) Extract(ctx context.Context, path string) (segments []domain.TextSegment, err error) {
	defer func() {
		if r := recover(); r != nil {
			segments = nil
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	source := filepath.Base(path)
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			t.logger.Debug("skipping unreadable page", "page", i, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		seg := domain.NewTextSegment(text, source)
		seg.Metadata[domain.MetaPageNumber] = strconv.Itoa(i)
		seg.Metadata[domain.MetaCategory] = "Page"
		segments = append(segments, seg)
	}

	return segments, nil
}
