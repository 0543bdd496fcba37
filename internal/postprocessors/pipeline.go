package postprocessors

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-papers/internal/normalisers"
)

// MetaChunk is the metadata key holding a segment's chunk index within
// the segment it was split from.
const MetaChunk = "chunk"

// Verify interface compliance
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline implements PostProcessorPipeline.
// It prepares extracted segments for embedding.
type Pipeline struct {
	mu         sync.RWMutex
	processors []driven.PostProcessor
	sorted     bool
}

// NewPipeline creates a new post-processor pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]driven.PostProcessor, 0),
	}
}

// Add adds a processor to the pipeline.
// Processors are sorted by Order() before processing.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process applies all processors in order.
// The input slice is not modified.
func (p *Pipeline) Process(segments []domain.TextSegment) []domain.TextSegment {
	p.mu.Lock()
	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}
	processors := make([]driven.PostProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.Unlock()

	out := make([]domain.TextSegment, len(segments))
	copy(out, segments)

	for _, proc := range processors {
		out = proc.Process(out)
	}

	return out
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// DefaultPipeline creates a pipeline with the default processors.
func DefaultPipeline() *Pipeline {
	p := NewPipeline()
	p.Add(NewCategoryNormalizer(normalisers.DefaultRegistry()))
	p.Add(NewWhitespaceNormalizer())
	p.Add(NewChunker(DefaultChunkConfig()))
	p.Add(NewDeduplicator(DefaultDeduplicatorConfig()))
	return p
}

// ChunkConfig configures the chunker behavior.
type ChunkConfig struct {
	// MaxChunkSize is the maximum characters per chunk
	MaxChunkSize int

	// Overlap is the character overlap between chunks
	Overlap int

	// PreserveSentences tries to break at sentence boundaries
	PreserveSentences bool

	// PreserveParagraphs tries to break at paragraph boundaries
	PreserveParagraphs bool
}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize:       1000,
		Overlap:            200,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// Chunker splits long segments into overlapping ones so each fits an
// embedding request. Short segments pass through unchanged.
type Chunker struct {
	config ChunkConfig
}

// Verify interface compliance
var _ driven.PostProcessor = (*Chunker)(nil)

// NewChunker creates a new chunker with the given config.
func NewChunker(config ChunkConfig) *Chunker {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultChunkConfig().MaxChunkSize
	}
	if config.Overlap < 0 || config.Overlap >= config.MaxChunkSize {
		config.Overlap = config.MaxChunkSize / 5
	}
	return &Chunker{config: config}
}

// Process splits segments longer than MaxChunkSize.
func (c *Chunker) Process(segments []domain.TextSegment) []domain.TextSegment {
	var result []domain.TextSegment

	for _, seg := range segments {
		parts := c.split(seg.Content)
		if len(parts) == 1 {
			result = append(result, seg)
			continue
		}
		for i, part := range parts {
			result = append(result, withContent(seg, part, map[string]string{MetaChunk: strconv.Itoa(i)}))
		}
	}

	return result
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Order returns 5 - chunker runs after normalization.
func (c *Chunker) Order() int {
	return 5
}

func (c *Chunker) split(content string) []string {
	if len(content) <= c.config.MaxChunkSize {
		return []string{content}
	}

	var parts []string
	start := 0

	for start < len(content) {
		end := start + c.config.MaxChunkSize
		if end > len(content) {
			end = len(content)
		}

		// Try to find a good break point
		if end < len(content) {
			if breakPoint := c.findBreakPoint(content, start, end); breakPoint > start {
				end = breakPoint
			}
		}

		parts = append(parts, strings.TrimSpace(content[start:end]))

		if end >= len(content) {
			break
		}

		// Move start with overlap, ensuring we always advance
		nextStart := end - c.config.Overlap
		if nextStart <= start {
			nextStart = start + 1
		}
		start = nextStart
	}

	return parts
}

// findBreakPoint finds a good break point for chunking.
func (c *Chunker) findBreakPoint(content string, start, maxEnd int) int {
	searchStart := maxEnd - 100
	if searchStart < start {
		searchStart = start
	}

	searchContent := content[searchStart:maxEnd]

	// Try to break at paragraph boundary (double newline)
	if c.config.PreserveParagraphs {
		if idx := strings.LastIndex(searchContent, "\n\n"); idx != -1 {
			return searchStart + idx + 2
		}
	}

	if c.config.PreserveSentences {
		sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
		bestIdx := -1

		for _, ender := range sentenceEnders {
			if idx := strings.LastIndex(searchContent, ender); idx != -1 {
				if endPos := idx + len(ender); endPos > bestIdx {
					bestIdx = endPos
				}
			}
		}

		if bestIdx > 0 {
			return searchStart + bestIdx
		}
	}

	// Try to break at word boundary
	if idx := strings.LastIndex(searchContent, " "); idx != -1 {
		return searchStart + idx + 1
	}

	return maxEnd
}

// DeduplicatorConfig configures the deduplicator.
type DeduplicatorConfig struct {
	// MinDuplicateLength is the minimum segment length to check for duplicates.
	// Shorter segments (page numbers, captions) are always kept.
	MinDuplicateLength int
}

// DefaultDeduplicatorConfig returns sensible defaults.
func DefaultDeduplicatorConfig() DeduplicatorConfig {
	return DeduplicatorConfig{
		MinDuplicateLength: 50,
	}
}

// Deduplicator drops repeated segments such as running headers and
// footers that appear on every page.
type Deduplicator struct {
	config DeduplicatorConfig
}

// Verify interface compliance
var _ driven.PostProcessor = (*Deduplicator)(nil)

// NewDeduplicator creates a new deduplicator with the given config.
func NewDeduplicator(config DeduplicatorConfig) *Deduplicator {
	return &Deduplicator{config: config}
}

// Process removes duplicate segments, keeping the first occurrence.
func (d *Deduplicator) Process(segments []domain.TextSegment) []domain.TextSegment {
	if len(segments) <= 1 {
		return segments
	}

	seen := make(map[string]bool)
	result := make([]domain.TextSegment, 0, len(segments))

	for _, seg := range segments {
		if len(seg.Content) < d.config.MinDuplicateLength {
			result = append(result, seg)
			continue
		}

		key := strings.TrimSpace(strings.ToLower(seg.Content))
		if !seen[key] {
			seen[key] = true
			result = append(result, seg)
		}
	}

	return result
}

// Name returns the processor name.
func (d *Deduplicator) Name() string {
	return "deduplicator"
}

// Order returns 10 - deduplicator runs after chunker.
func (d *Deduplicator) Order() int {
	return 10
}

// WhitespaceNormalizer cleans up text as PDF extractors emit it: mixed
// line endings, runs of spaces, and words hyphenated across line breaks.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a new whitespace normalizer.
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Process normalizes whitespace and drops segments left empty.
func (w *WhitespaceNormalizer) Process(segments []domain.TextSegment) []domain.TextSegment {
	result := make([]domain.TextSegment, 0, len(segments))

	for _, seg := range segments {
		content := seg.Content

		content = strings.ReplaceAll(content, "\r\n", "\n")
		content = strings.ReplaceAll(content, "\r", "\n")

		// Collapse multiple spaces (but preserve newlines)
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			lines[i] = strings.Join(strings.Fields(line), " ")
		}
		content = joinHyphenated(lines)

		// Remove excessive blank lines
		for strings.Contains(content, "\n\n\n") {
			content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
		}

		content = strings.TrimSpace(content)

		if len(content) > 0 {
			result = append(result, withContent(seg, content, nil))
		}
	}

	return result
}

// Name returns the processor name.
func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

// Order returns 0 - runs after category normalization.
func (w *WhitespaceNormalizer) Order() int {
	return 0
}

// joinHyphenated joins lines, merging a word split as "exam-" / "ple".
func joinHyphenated(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 && !(isHyphenBreak(lines[i-1]) && startsLower(line)) {
			b.WriteByte('\n')
		}
		if i < len(lines)-1 && isHyphenBreak(line) && startsLower(lines[i+1]) {
			line = strings.TrimSuffix(line, "-")
		}
		b.WriteString(line)
	}
	return b.String()
}

func isHyphenBreak(line string) bool {
	if len(line) < 2 || !strings.HasSuffix(line, "-") {
		return false
	}
	c := line[len(line)-2]
	return c >= 'a' && c <= 'z'
}

func startsLower(line string) bool {
	return line != "" && line[0] >= 'a' && line[0] <= 'z'
}

// withContent copies a segment with new content and extra metadata.
func withContent(seg domain.TextSegment, content string, extra map[string]string) domain.TextSegment {
	meta := make(map[string]string, len(seg.Metadata)+len(extra))
	for k, v := range seg.Metadata {
		meta[k] = v
	}
	for k, v := range extra {
		meta[k] = v
	}
	return domain.TextSegment{Content: content, Metadata: meta}
}
