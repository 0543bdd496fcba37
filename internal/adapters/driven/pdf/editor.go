// Package pdf edits PDFs with pdfcpu and extracts their text locally with
// ledongthuc/pdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Ensure Editor implements PDFEditor
var _ driven.PDFEditor = (*Editor)(nil)

var disableConfigDir sync.Once

// Editor implements PDFEditor with pdfcpu.
type Editor struct {
	logger *slog.Logger
}

// NewEditor creates a new Editor. pdfcpu's on-disk configuration
// directory is disabled.
func NewEditor(logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	disableConfigDir.Do(api.DisableConfigDir)
	return &Editor{logger: logger}
}

func (e *Editor) conf() *model.Configuration {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return cfg
}

// DeletePages removes pages from the document. Each requested number
// applies to the document as already shrunk by the deletions before it,
// so [3, 5] removes original pages 3 and 6.
func (e *Editor) DeletePages(ctx context.Context, data []byte, pages []int) ([]byte, error) {
	if len(pages) == 0 {
		return data, nil
	}
	if err := domain.ValidatePageDeletions(pages); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPDFEdit, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPDFEdit, err)
	}

	count, err := e.PageCount(ctx, data)
	if err != nil {
		return nil, err
	}

	original := domain.OriginalPagesToDelete(pages)
	if last := original[len(original)-1]; last > count {
		return nil, fmt.Errorf("%w: page %d out of range, document has %d pages",
			domain.ErrPDFEdit, pages[len(pages)-1], count-len(pages)+1)
	}
	if len(original) >= count {
		return nil, fmt.Errorf("%w: cannot delete every page", domain.ErrPDFEdit)
	}

	selected := make([]string, len(original))
	for i, p := range original {
		selected[i] = strconv.Itoa(p)
	}

	var out bytes.Buffer
	if err := api.RemovePages(bytes.NewReader(data), &out, selected, e.conf()); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPDFEdit, err)
	}

	e.logger.Info("pdf pages deleted", "requested", pages, "original", original, "pages_before", count)
	return out.Bytes(), nil
}

// PageCount returns the number of pages in the document
func (e *Editor) PageCount(ctx context.Context, data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty document", domain.ErrPDFEdit)
	}
	count, err := api.PageCount(bytes.NewReader(data), e.conf())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrPDFEdit, err)
	}
	return count, nil
}
