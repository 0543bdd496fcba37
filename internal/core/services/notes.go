package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-papers/internal/runtime"
)

// DefaultMaxPromptChars bounds the paper text sent to the model.
const DefaultMaxPromptChars = 400_000

// NoteGenerator asks the language model for structured notes on a paper.
type NoteGenerator struct {
	services       *runtime.Services
	maxPromptChars int
	logger         *slog.Logger
}

// NoteGeneratorConfig holds dependencies for NoteGenerator.
type NoteGeneratorConfig struct {
	Services *runtime.Services

	// MaxPromptChars truncates long papers. Zero means DefaultMaxPromptChars.
	MaxPromptChars int

	Logger *slog.Logger
}

// NewNoteGenerator creates a new note generator.
func NewNoteGenerator(cfg NoteGeneratorConfig) *NoteGenerator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxChars := cfg.MaxPromptChars
	if maxChars <= 0 {
		maxChars = DefaultMaxPromptChars
	}

	return &NoteGenerator{
		services:       cfg.Services,
		maxPromptChars: maxChars,
		logger:         logger,
	}
}

// notesArgs is the argument schema of the record_notes tool
type notesArgs struct {
	Notes []domain.Note `json:"notes"`
}

// Generate returns the notes for the segments. Model failures, malformed
// tool arguments, invalid notes and an empty result wrap domain.ErrGeneration.
func (g *NoteGenerator) Generate(ctx context.Context, segments []domain.TextSegment) ([]domain.Note, error) {
	llm, err := g.services.RequireLLM()
	if err != nil {
		return nil, err
	}

	text := g.buildPrompt(segments)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: paper has no text", domain.ErrGeneration)
	}

	calls, err := llm.CallTool(ctx, driven.ToolRequest{
		System:      notesSystemPrompt,
		Prompt:      text,
		Tool:        notesTool,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	var notes []domain.Note
	for _, call := range calls {
		if call.Name != notesToolName {
			g.logger.Warn("ignoring unexpected tool call", "tool", call.Name)
			continue
		}
		var args notesArgs
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return nil, fmt.Errorf("%w: malformed %s arguments: %w", domain.ErrGeneration, notesToolName, err)
		}
		for i, n := range args.Notes {
			if !n.Valid() {
				return nil, fmt.Errorf("%w: note %d has empty text or invalid page numbers", domain.ErrGeneration, i)
			}
			n.Text = strings.TrimSpace(n.Text)
			notes = append(notes, n)
		}
	}

	if len(notes) == 0 {
		return nil, fmt.Errorf("%w: model returned no notes", domain.ErrGeneration)
	}

	g.logger.Info("notes generated", "model", llm.Model(), "notes", len(notes))
	return notes, nil
}

// buildPrompt concatenates segment contents in order, inserting a page
// marker wherever the page number changes.
func (g *NoteGenerator) buildPrompt(segments []domain.TextSegment) string {
	var b strings.Builder
	lastPage := ""

	for _, s := range segments {
		if strings.TrimSpace(s.Content) == "" {
			continue
		}
		if page := s.Metadata[domain.MetaPageNumber]; page != "" && page != lastPage {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString("[Page " + page + "]\n")
			lastPage = page
		} else if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Content)
	}

	text := b.String()
	if len(text) > g.maxPromptChars {
		g.logger.Warn("paper text truncated for note generation",
			"chars", len(text),
			"limit", g.maxPromptChars,
		)
		text = truncateUTF8(text, g.maxPromptChars)
	}
	return text
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
