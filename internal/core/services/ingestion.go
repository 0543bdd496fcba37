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
	"github.com/custodia-labs/sercha-papers/internal/runtime"
)

// Ensure IngestionPipeline implements IngestionService
var _ driving.IngestionService = (*IngestionPipeline)(nil)

const (
	// DefaultLockTTL bounds how long a crashed ingestion can hold a paper's lock
	DefaultLockTTL = 5 * time.Minute

	// DefaultLockPollInterval is how often a waiting request retries the lock
	DefaultLockPollInterval = 500 * time.Millisecond

	indexStep = "index"
)

var errIndexNotConfigured = errors.New("vector index not configured")

// IngestionPipeline runs the ingestion state machine:
//
//	start -> fetched -> [edited] -> extracted -> notes_generated ->
//	paper_persisted -> [indexed] -> done
//
// Any failure before paper_persisted moves to aborted and nothing is
// stored. Indexing is best-effort: its failure is logged and the paper
// stays answerable from its full text.
type IngestionPipeline struct {
	fetcher   driven.PDFFetcher
	editor    driven.PDFEditor
	extractor *DocumentExtractor
	notes     *NoteGenerator
	papers    driven.PaperStore
	index     driven.VectorIndex
	pipeline  driven.PostProcessorPipeline
	lock      driven.DistributedLock
	queue     driven.TaskQueue
	services  *runtime.Services
	lockTTL   time.Duration
	lockPoll  time.Duration
	logger    *slog.Logger
}

// IngestionPipelineConfig holds dependencies for IngestionPipeline.
type IngestionPipelineConfig struct {
	Fetcher    driven.PDFFetcher
	Editor     driven.PDFEditor
	Extractor  *DocumentExtractor
	Notes      *NoteGenerator
	PaperStore driven.PaperStore

	// VectorIndex is optional; without it papers are answered from full text
	VectorIndex driven.VectorIndex

	// Pipeline prepares segments for indexing. Optional.
	Pipeline driven.PostProcessorPipeline

	// Lock serialises ingestion of the same URL across instances. Optional.
	Lock             driven.DistributedLock
	LockTTL          time.Duration
	LockPollInterval time.Duration

	// Queue schedules a retry when indexing fails. Optional.
	Queue driven.TaskQueue

	Services *runtime.Services
	Logger   *slog.Logger
}

// NewIngestionPipeline creates a new ingestion pipeline.
func NewIngestionPipeline(cfg IngestionPipelineConfig) *IngestionPipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	lockPoll := cfg.LockPollInterval
	if lockPoll <= 0 {
		lockPoll = DefaultLockPollInterval
	}

	return &IngestionPipeline{
		fetcher:   cfg.Fetcher,
		editor:    cfg.Editor,
		extractor: cfg.Extractor,
		notes:     cfg.Notes,
		papers:    cfg.PaperStore,
		index:     cfg.VectorIndex,
		pipeline:  cfg.Pipeline,
		lock:      cfg.Lock,
		queue:     cfg.Queue,
		services:  cfg.Services,
		lockTTL:   lockTTL,
		lockPoll:  lockPoll,
		logger:    logger,
	}
}

// run tracks the states of a single ingestion
type run struct {
	url    string
	result *domain.IngestResult
	logger *slog.Logger
}

func (r *run) enter(state domain.IngestState) {
	r.result.States = append(r.result.States, state)
	r.logger.Info("ingestion state", "url", r.url, "state", state)
}

func (r *run) abort(from domain.IngestState, err error) error {
	r.result.States = append(r.result.States, domain.IngestStateAborted)
	r.logger.Error("ingestion aborted", "url", r.url, "after", from, "error", err)
	return err
}

func (r *run) last() domain.IngestState {
	if len(r.result.States) == 0 {
		return domain.IngestStateStart
	}
	return r.result.States[len(r.result.States)-1]
}

// Ingest ingests the paper at req.PaperURL, or returns the stored notes
// when the paper was ingested before. Errors carry a domain error kind.
func (p *IngestionPipeline) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.IngestResult, error) {
	req.PaperURL = strings.TrimSpace(req.PaperURL)
	if req.PaperURL == "" {
		return nil, fmt.Errorf("%w: paperUrl is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if err := domain.ValidatePageDeletions(req.PagesToDelete); err != nil {
		return nil, err
	}
	if _, err := p.services.RequireLLM(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	r := &run{
		url:    req.PaperURL,
		result: &domain.IngestResult{},
		logger: p.logger.With("name", req.Name),
	}

	if paper, err := p.existing(ctx, req.PaperURL); err != nil {
		return nil, err
	} else if paper != nil {
		return p.cached(r, paper), nil
	}

	release, waited, err := p.acquire(ctx, req.PaperURL)
	if err != nil {
		return nil, err
	}
	defer release()

	// Another request held the lock; it has most likely stored the paper.
	if waited {
		if paper, err := p.existing(ctx, req.PaperURL); err != nil {
			return nil, err
		} else if paper != nil {
			return p.cached(r, paper), nil
		}
	}

	r.enter(domain.IngestStateStart)

	data, err := p.fetcher.Fetch(ctx, req.PaperURL)
	if err != nil {
		return nil, r.abort(r.last(), ensureKind(err, domain.ErrDownload))
	}
	r.enter(domain.IngestStateFetched)

	if len(req.PagesToDelete) > 0 {
		data, err = p.editor.DeletePages(ctx, data, req.PagesToDelete)
		if err != nil {
			return nil, r.abort(r.last(), ensureKind(err, domain.ErrPDFEdit))
		}
		r.enter(domain.IngestStateEdited)
	}

	if count, err := p.editor.PageCount(ctx, data); err == nil {
		r.logger.Info("pdf ready for extraction", "url", req.PaperURL, "pages", count, "bytes", len(data))
	}

	segments, err := p.extractor.Extract(ctx, data)
	if err != nil {
		return nil, r.abort(r.last(), ensureKind(err, domain.ErrExtraction))
	}
	r.enter(domain.IngestStateExtracted)

	notes, err := p.notes.Generate(ctx, segments)
	if err != nil {
		return nil, r.abort(r.last(), ensureKind(err, domain.ErrGeneration))
	}
	r.enter(domain.IngestStateNotesGenerated)

	paper := &domain.Paper{
		URL:       req.PaperURL,
		Name:      req.Name,
		FullText:  domain.JoinSegments(segments),
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	if err := p.papers.Save(ctx, paper); err != nil {
		return nil, r.abort(r.last(), ensureKind(err, domain.ErrPersistence))
	}
	r.enter(domain.IngestStatePersisted)

	r.result.Indexing = p.indexSegments(ctx, req.PaperURL, segments)
	if r.result.Indexing.OK() {
		r.enter(domain.IngestStateIndexed)
	} else {
		r.logger.Warn("indexing failed, paper will be answered from full text",
			"url", req.PaperURL,
			"error", r.result.Indexing.Err,
		)
		p.scheduleReindex(ctx, req.PaperURL, r.result.Indexing)
	}

	r.enter(domain.IngestStateDone)
	r.logger.Info("ingestion completed",
		"url", req.PaperURL,
		"notes", len(notes),
		"segments", len(segments),
		"duration", time.Since(startTime),
	)

	r.result.Paper = paper
	r.result.Notes = notes
	return r.result, nil
}

// existing returns the stored paper for url, or nil when there is none
// usable. A stored paper without notes is treated as absent.
func (p *IngestionPipeline) existing(ctx context.Context, url string) (*domain.Paper, error) {
	paper, err := p.papers.Get(ctx, url)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ensureKind(err, domain.ErrPersistence)
	}
	if !paper.HasNotes() {
		p.logger.Warn("stored paper has no notes, ingesting again", "url", url)
		return nil, nil
	}
	return paper, nil
}

func (p *IngestionPipeline) cached(r *run, paper *domain.Paper) *domain.IngestResult {
	r.result.Cached = true
	r.result.Paper = paper
	r.result.Notes = paper.Notes
	r.enter(domain.IngestStateDone)
	return r.result
}

// acquire takes the per-URL lock, polling while another holder has it.
// Lock backend errors are logged and ingestion proceeds unlocked. waited
// reports whether the lock was held by someone else at first.
func (p *IngestionPipeline) acquire(ctx context.Context, url string) (release func(), waited bool, err error) {
	noop := func() {}
	if p.lock == nil {
		return noop, false, nil
	}

	name := "ingest:" + url
	for {
		acquired, err := p.lock.Acquire(ctx, name, p.lockTTL)
		if err != nil {
			p.logger.Warn("ingestion lock unavailable, proceeding unlocked", "url", url, "error", err)
			return noop, waited, nil
		}
		if acquired {
			return func() {
				if err := p.lock.Release(context.WithoutCancel(ctx), name); err != nil {
					p.logger.Warn("failed to release ingestion lock", "url", url, "error", err)
				}
			}, waited, nil
		}

		if !waited {
			p.logger.Info("paper is being ingested elsewhere, waiting", "url", url)
		}
		waited = true

		select {
		case <-ctx.Done():
			return noop, waited, fmt.Errorf("waiting for ingestion lock: %w", ctx.Err())
		case <-time.After(p.lockPoll):
		}
	}
}

// indexSegments stores the paper's segments in the vector index.
func (p *IngestionPipeline) indexSegments(ctx context.Context, url string, segments []domain.TextSegment) domain.Outcome {
	if p.index == nil {
		return domain.Failed(indexStep, errIndexNotConfigured)
	}

	tagged := make([]domain.TextSegment, len(segments))
	for i, s := range segments {
		tagged[i] = s.WithURL(url)
	}
	if p.pipeline != nil {
		tagged = p.pipeline.Process(tagged)
	}

	if err := p.index.Index(ctx, url, tagged); err != nil {
		return domain.Failed(indexStep, err)
	}
	return domain.Succeeded(indexStep)
}

// scheduleReindex queues a repair of a failed indexing step. Failing to
// queue is logged only.
func (p *IngestionPipeline) scheduleReindex(ctx context.Context, url string, outcome domain.Outcome) {
	if p.queue == nil || errors.Is(outcome.Err, errIndexNotConfigured) {
		return
	}

	task := domain.NewReindexTask(url)
	if err := p.queue.Enqueue(context.WithoutCancel(ctx), task); err != nil {
		p.logger.Warn("failed to schedule reindex", "url", url, "error", err)
		return
	}
	p.logger.Info("reindex scheduled", "url", url, "task_id", task.ID)
}

// ensureKind wraps err with kind unless it already carries a domain kind.
func ensureKind(err, kind error) error {
	if domain.Kind(err) != nil {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
