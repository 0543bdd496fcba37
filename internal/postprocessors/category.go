package postprocessors

import (
	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// CategoryNormalizer applies the registry's normaliser for each segment's
// element category. Segments without a category pass through.
type CategoryNormalizer struct {
	registry driven.NormaliserRegistry
}

// Verify interface compliance
var _ driven.PostProcessor = (*CategoryNormalizer)(nil)

// NewCategoryNormalizer creates a category normalizer over registry.
func NewCategoryNormalizer(registry driven.NormaliserRegistry) *CategoryNormalizer {
	return &CategoryNormalizer{registry: registry}
}

// Process normalises each segment, dropping those left empty.
func (c *CategoryNormalizer) Process(segments []domain.TextSegment) []domain.TextSegment {
	result := make([]domain.TextSegment, 0, len(segments))

	for _, seg := range segments {
		category := seg.Metadata[domain.MetaCategory]
		if category == "" || c.registry == nil {
			result = append(result, seg)
			continue
		}

		n := c.registry.Get(category)
		if n == nil {
			result = append(result, seg)
			continue
		}

		if content := n.Normalise(seg.Content, category); content != "" {
			result = append(result, withContent(seg, content, nil))
		}
	}

	return result
}

// Name returns the processor name.
func (c *CategoryNormalizer) Name() string {
	return "category-normalizer"
}

// Order returns -5 - category rules run before whitespace normalization.
func (c *CategoryNormalizer) Order() int {
	return -5
}
