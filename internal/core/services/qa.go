package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-papers/internal/runtime"
)

// Ensure QAEngine implements QAService
var _ driving.QAService = (*QAEngine)(nil)

const (
	// DefaultRetrievalK is the number of segments retrieved per question
	DefaultRetrievalK = 8

	retrieveStep = "retrieve"
	recordStep   = "record"

	// fullTextSource marks the fallback segment built from a paper's full text
	fullTextSource = "full_text"
)

// QAEngine answers questions about an ingested paper with retrieval
// augmented generation. Retrieval is best-effort: without indexed
// segments the paper's full text is the context.
type QAEngine struct {
	papers         driven.PaperStore
	qaLog          driven.QALogStore
	index          driven.VectorIndex
	services       *runtime.Services
	k              int
	maxPromptChars int
	logger         *slog.Logger
}

// QAEngineConfig holds dependencies for QAEngine.
type QAEngineConfig struct {
	PaperStore driven.PaperStore
	QALog      driven.QALogStore

	// VectorIndex is optional
	VectorIndex driven.VectorIndex

	Services *runtime.Services

	// K is the retrieval depth. Zero means DefaultRetrievalK.
	K int

	// MaxPromptChars bounds the serialized context. Zero means DefaultMaxPromptChars.
	MaxPromptChars int

	Logger *slog.Logger
}

// NewQAEngine creates a new QA engine.
func NewQAEngine(cfg QAEngineConfig) *QAEngine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	k := cfg.K
	if k <= 0 {
		k = DefaultRetrievalK
	}
	maxChars := cfg.MaxPromptChars
	if maxChars <= 0 {
		maxChars = DefaultMaxPromptChars
	}

	return &QAEngine{
		papers:         cfg.PaperStore,
		qaLog:          cfg.QALog,
		index:          cfg.VectorIndex,
		services:       cfg.Services,
		k:              k,
		maxPromptChars: maxChars,
		logger:         logger,
	}
}

// answerArgs is the argument schema of the answer_question tool
type answerArgs struct {
	Answer            string   `json:"answer"`
	FollowupQuestions []string `json:"followupQuestions"`
}

// Answer answers question about the paper stored under paperURL. The
// model may split its answer over several tool calls; each becomes one
// domain.Answer and one logged QARecord.
func (e *QAEngine) Answer(ctx context.Context, question, paperURL string) ([]domain.Answer, error) {
	question = strings.TrimSpace(question)
	paperURL = strings.TrimSpace(paperURL)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if paperURL == "" {
		return nil, fmt.Errorf("%w: paperUrl is required", domain.ErrInvalidInput)
	}

	segments, outcome := e.retrieve(ctx, question, paperURL)
	if !outcome.OK() {
		e.logger.Warn("retrieval failed, answering from full text", "url", paperURL, "error", outcome.Err)
	}

	paper, err := e.papers.Get(ctx, paperURL)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !paper.HasNotes()) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPaperNotFound, paperURL)
	}
	if err != nil {
		return nil, ensureKind(err, domain.ErrPersistence)
	}

	if len(segments) == 0 {
		fallback := domain.NewTextSegment(paper.FullText, fullTextSource).WithURL(paperURL)
		segments = []domain.TextSegment{fallback}
	}

	llm, err := e.services.RequireLLM()
	if err != nil {
		return nil, err
	}

	contextJSON, err := e.serializeContext(segments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	calls, err := llm.CallTool(ctx, driven.ToolRequest{
		System:      answerSystemPrompt,
		Prompt:      buildAnswerPrompt(question, paper, contextJSON),
		Tool:        answerTool,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	answers, err := parseAnswers(calls)
	if err != nil {
		return nil, err
	}

	if outcome := e.record(ctx, paperURL, question, contextJSON, answers); !outcome.OK() {
		e.logger.Warn("failed to record qa interaction", "url", paperURL, "error", outcome.Err)
	}

	e.logger.Info("question answered",
		"url", paperURL,
		"answers", len(answers),
		"context_segments", len(segments),
	)
	return answers, nil
}

// retrieve searches the vector index. It never fails the caller.
func (e *QAEngine) retrieve(ctx context.Context, question, paperURL string) ([]domain.TextSegment, domain.Outcome) {
	if e.index == nil {
		return nil, domain.Succeeded(retrieveStep)
	}
	segments, err := e.index.Search(ctx, paperURL, question, e.k)
	if err != nil {
		return nil, domain.Failed(retrieveStep, err)
	}
	return segments, domain.Succeeded(retrieveStep)
}

// serializeContext renders segments as a JSON array, dropping trailing
// segments once the size limit is reached. A single oversized segment is
// truncated.
func (e *QAEngine) serializeContext(segments []domain.TextSegment) (string, error) {
	kept := segments
	for {
		data, err := json.Marshal(kept)
		if err != nil {
			return "", err
		}
		if len(data) <= e.maxPromptChars {
			return string(data), nil
		}
		if len(kept) > 1 {
			kept = kept[:len(kept)-1]
			continue
		}

		// Leave room for JSON escaping and the metadata envelope.
		single := kept[0]
		single.Content = truncateUTF8(single.Content, e.maxPromptChars/2)
		data, err = json.Marshal([]domain.TextSegment{single})
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func buildAnswerPrompt(question string, paper *domain.Paper, contextJSON string) string {
	var b strings.Builder
	b.WriteString("Paper: ")
	b.WriteString(paper.Name)
	b.WriteString("\n\nNotes:\n")
	for _, note := range paper.NoteTexts() {
		b.WriteString("- ")
		b.WriteString(note)
		b.WriteString("\n")
	}
	b.WriteString("\nContext:\n")
	b.WriteString(contextJSON)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

func parseAnswers(calls []driven.ToolCall) ([]domain.Answer, error) {
	var answers []domain.Answer
	for _, call := range calls {
		if call.Name != answerToolName {
			continue
		}
		var args answerArgs
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return nil, fmt.Errorf("%w: malformed %s arguments: %w", domain.ErrGeneration, answerToolName, err)
		}
		if strings.TrimSpace(args.Answer) == "" {
			return nil, fmt.Errorf("%w: empty answer", domain.ErrGeneration)
		}
		if args.FollowupQuestions == nil {
			args.FollowupQuestions = []string{}
		}
		answers = append(answers, domain.Answer{
			Answer:            args.Answer,
			FollowupQuestions: args.FollowupQuestions,
		})
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: model did not call %s", domain.ErrGeneration, answerToolName)
	}
	return answers, nil
}

// record appends one QARecord per answer. Writes run concurrently and
// every write is attempted even when another fails.
func (e *QAEngine) record(ctx context.Context, paperURL, question, contextJSON string, answers []domain.Answer) domain.Outcome {
	if e.qaLog == nil {
		return domain.Succeeded(recordStep)
	}

	now := time.Now()
	var g errgroup.Group
	for _, a := range answers {
		rec := &domain.QARecord{
			ID:                domain.GenerateID(),
			PaperURL:          paperURL,
			Question:          question,
			Answer:            a.Answer,
			Context:           contextJSON,
			FollowupQuestions: a.FollowupQuestions,
			CreatedAt:         now,
		}
		g.Go(func() error {
			return e.qaLog.Append(ctx, rec)
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Failed(recordStep, err)
	}
	return domain.Succeeded(recordStep)
}
