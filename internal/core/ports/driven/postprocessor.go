package driven

import "github.com/custodia-labs/sercha-papers/internal/core/domain"

// PostProcessor transforms extracted segments before they are indexed.
// Processors form a pipeline: category and whitespace normalizers -> Chunker -> Deduplicator.
type PostProcessor interface {
	// Process returns the transformed segments. Metadata of an input
	// segment is carried to every segment derived from it.
	Process(segments []domain.TextSegment) []domain.TextSegment

	// Name returns the processor name for logging/debugging.
	Name() string

	// Order returns the processor order in the pipeline (lower = earlier).
	Order() int
}

// PostProcessorPipeline chains post-processors in order
type PostProcessorPipeline interface {
	// Process runs every processor over the segments.
	Process(segments []domain.TextSegment) []domain.TextSegment

	// Add registers a processor.
	Add(processor PostProcessor)

	// List returns processor names in order.
	List() []string
}
