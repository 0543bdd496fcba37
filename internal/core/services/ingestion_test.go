package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sercha-papers/internal/postprocessors"
)

type ingestionFixture struct {
	pipeline *IngestionPipeline
	fetcher  *mocks.MockPDFFetcher
	editor   *mocks.MockPDFEditor
	tier     *mocks.MockExtractionTier
	llm      *mocks.MockLLMService
	papers   *mocks.MockPaperStore
	index    *mocks.MockVectorIndex
	lock     *mocks.MockDistributedLock
	queue    *mocks.MockTaskQueue
}

func newIngestionFixture(t *testing.T) *ingestionFixture {
	t.Helper()

	f := &ingestionFixture{
		fetcher: mocks.NewMockPDFFetcher(),
		editor:  mocks.NewMockPDFEditor(),
		tier: mocks.NewMockExtractionTier("local",
			pageSegment("Attention is all you need.", "1"),
			pageSegment("We propose the Transformer.", "2"),
		),
		llm: mocks.NewMockLLMService(notesCall(
			domain.Note{Text: "Introduces the Transformer", PageNumbers: []int{1, 2}},
		)),
		papers: mocks.NewMockPaperStore(),
		index:  mocks.NewMockVectorIndex(),
		lock:   mocks.NewMockDistributedLock(),
		queue:  mocks.NewMockTaskQueue(),
	}
	f.fetcher.AddDocument(testPaperURL, testPDF)
	f.rebuild(t, f.llm)
	return f
}

// rebuild recreates the pipeline, e.g. with a different LLM
func (f *ingestionFixture) rebuild(t *testing.T, llm driven.LLMService) {
	t.Helper()
	services := newTestServices(t, llm)

	f.pipeline = NewIngestionPipeline(IngestionPipelineConfig{
		Fetcher: f.fetcher,
		Editor:  f.editor,
		Extractor: NewDocumentExtractor(DocumentExtractorConfig{
			Tiers:      []driven.ExtractionTier{f.tier},
			StagingDir: t.TempDir(),
		}),
		Notes:            NewNoteGenerator(NoteGeneratorConfig{Services: services}),
		PaperStore:       f.papers,
		VectorIndex:      f.index,
		Pipeline:         postprocessors.DefaultPipeline(),
		Lock:             f.lock,
		LockPollInterval: time.Millisecond,
		Queue:            f.queue,
		Services:         services,
	})
}

func ingestRequest(pages ...int) domain.IngestRequest {
	return domain.IngestRequest{Name: "Attention", PaperURL: testPaperURL, PagesToDelete: pages}
}

func TestIngestionPipeline_Ingest(t *testing.T) {
	f := newIngestionFixture(t)

	result, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	require.NoError(t, err)
	assert.False(t, result.Cached)
	require.Len(t, result.Notes, 1)
	assert.Equal(t, "Introduces the Transformer", result.Notes[0].Text)
	assert.Equal(t, []domain.IngestState{
		domain.IngestStateStart,
		domain.IngestStateFetched,
		domain.IngestStateExtracted,
		domain.IngestStateNotesGenerated,
		domain.IngestStatePersisted,
		domain.IngestStateIndexed,
		domain.IngestStateDone,
	}, result.States)
	assert.True(t, result.Indexing.OK())

	stored, err := f.papers.Get(context.Background(), testPaperURL)
	require.NoError(t, err)
	assert.Equal(t, "Attention", stored.Name)
	assert.Equal(t, "Attention is all you need.\n\nWe propose the Transformer.", stored.FullText)
	assert.Equal(t, result.Notes, stored.Notes)

	assert.Equal(t, 0, f.editor.Calls(), "no pages requested, editor must not run")
	assert.False(t, f.lock.IsHeld("ingest:"+testPaperURL), "lock must be released")
}

func TestIngestionPipeline_IndexedSegmentsCarryURL(t *testing.T) {
	f := newIngestionFixture(t)

	_, err := f.pipeline.Ingest(context.Background(), ingestRequest())
	require.NoError(t, err)

	segments := f.index.Segments(testPaperURL)
	require.Len(t, segments, 2)
	for _, s := range segments {
		assert.Equal(t, testPaperURL, s.Metadata[domain.MetaURL])
		assert.Equal(t, "local", s.Metadata[domain.MetaTier])
	}
}

func TestIngestionPipeline_Idempotent(t *testing.T) {
	f := newIngestionFixture(t)
	ctx := context.Background()

	first, err := f.pipeline.Ingest(ctx, ingestRequest())
	require.NoError(t, err)

	second, err := f.pipeline.Ingest(ctx, ingestRequest())
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.Notes, second.Notes)
	assert.Equal(t, []domain.IngestState{domain.IngestStateDone}, second.States)

	assert.Equal(t, 1, f.fetcher.Calls())
	assert.Equal(t, 1, f.tier.Calls())
	assert.Equal(t, 1, f.llm.Calls())
	assert.Equal(t, 1, f.papers.Saves())
	assert.Equal(t, 1, f.index.IndexCalls())
}

func TestIngestionPipeline_DeletesPages(t *testing.T) {
	f := newIngestionFixture(t)
	edited := []byte("%PDF-1.4 edited")
	f.editor.DeletePagesFn = func(ctx context.Context, data []byte, pages []int) ([]byte, error) {
		return edited, nil
	}
	var extracted []byte
	f.tier.ExtractFn = func(ctx context.Context, path string) ([]domain.TextSegment, error) {
		extracted = readFile(t, path)
		return []domain.TextSegment{pageSegment("text", "1")}, nil
	}

	result, err := f.pipeline.Ingest(context.Background(), ingestRequest(3, 5))

	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, f.editor.LastPages())
	assert.Contains(t, result.States, domain.IngestStateEdited)
	assert.Equal(t, edited, extracted, "extraction must read the edited pdf")
}

func TestIngestionPipeline_RejectsBadPageLists(t *testing.T) {
	for _, pages := range [][]int{{5, 3}, {2, 2}} {
		f := newIngestionFixture(t)

		_, err := f.pipeline.Ingest(context.Background(), ingestRequest(pages...))

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, 0, f.fetcher.Calls())
	}
}

func TestIngestionPipeline_MissingFields(t *testing.T) {
	f := newIngestionFixture(t)

	_, err := f.pipeline.Ingest(context.Background(), domain.IngestRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.pipeline.Ingest(context.Background(), domain.IngestRequest{PaperURL: testPaperURL})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 0, f.fetcher.Calls())
}

func TestIngestionPipeline_NoLLMConfigured(t *testing.T) {
	f := newIngestionFixture(t)
	f.rebuild(t, nil)

	_, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Equal(t, 0, f.fetcher.Calls())
	assert.Equal(t, 0, f.lock.AcquireCalls())
}

func TestIngestionPipeline_AbortsWithoutPersisting(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *ingestionFixture)
		kind  error
	}{
		{
			name: "download",
			setup: func(f *ingestionFixture) {
				f.fetcher.FetchFn = func(ctx context.Context, url string) ([]byte, error) {
					return nil, errors.New("connection refused")
				}
			},
			kind: domain.ErrDownload,
		},
		{
			name: "edit",
			setup: func(f *ingestionFixture) {
				f.editor.DeletePagesFn = func(ctx context.Context, data []byte, pages []int) ([]byte, error) {
					return nil, errors.New("page 9 out of range")
				}
			},
			kind: domain.ErrPDFEdit,
		},
		{
			name: "extraction",
			setup: func(f *ingestionFixture) {
				f.tier.ExtractFn = func(ctx context.Context, path string) ([]domain.TextSegment, error) {
					return nil, errors.New("encrypted pdf")
				}
			},
			kind: domain.ErrExtraction,
		},
		{
			name: "generation",
			setup: func(f *ingestionFixture) {
				f.llm.CallToolFn = func(ctx context.Context, req driven.ToolRequest) ([]driven.ToolCall, error) {
					return nil, errors.New("rate limited")
				}
			},
			kind: domain.ErrGeneration,
		},
		{
			name: "persistence",
			setup: func(f *ingestionFixture) {
				f.papers.SaveErr = errors.New("disk full")
			},
			kind: domain.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIngestionFixture(t)
			tt.setup(f)

			result, err := f.pipeline.Ingest(context.Background(), ingestRequest(2))

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.kind, domain.Kind(err))
			assert.Equal(t, 0, f.index.IndexCalls())
			_, getErr := f.papers.Get(context.Background(), testPaperURL)
			assert.ErrorIs(t, getErr, domain.ErrNotFound)
			assert.False(t, f.lock.IsHeld("ingest:"+testPaperURL))
		})
	}
}

func TestIngestionPipeline_IndexingFailureIsNotFatal(t *testing.T) {
	f := newIngestionFixture(t)
	f.index.IndexErr = errors.New("vector store down")

	result, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	require.NoError(t, err)
	assert.False(t, result.Indexing.OK())
	assert.Equal(t, "index", result.Indexing.Step)
	assert.NotContains(t, result.States, domain.IngestStateIndexed)
	assert.Equal(t, domain.IngestStateDone, result.States[len(result.States)-1])
	assert.Equal(t, 1, f.papers.Saves())

	tasks := f.queue.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.TaskTypeReindexPaper, tasks[0].Type)
	assert.Equal(t, testPaperURL, tasks[0].PaperURL)
}

func TestIngestionPipeline_ReindexQueueFailureIsNotFatal(t *testing.T) {
	f := newIngestionFixture(t)
	f.index.IndexErr = errors.New("vector store down")
	f.queue.EnqueueFn = func(*domain.Task) error { return errors.New("queue down") }

	result, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	require.NoError(t, err)
	assert.Len(t, result.Notes, 1)
	assert.Empty(t, f.queue.Tasks())
}

func TestIngestionPipeline_WithoutVectorIndex(t *testing.T) {
	f := newIngestionFixture(t)
	f.pipeline.index = nil

	result, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	require.NoError(t, err)
	assert.False(t, result.Indexing.OK())
	assert.Len(t, result.Notes, 1)
	assert.Empty(t, f.queue.Tasks(), "nothing to repair without an index")
}

func TestIngestionPipeline_StoredPaperWithoutNotesIsReingested(t *testing.T) {
	f := newIngestionFixture(t)
	require.NoError(t, f.papers.Save(context.Background(), &domain.Paper{URL: testPaperURL}))

	result, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, 1, f.fetcher.Calls())
}

func TestIngestionPipeline_StoreReadFailure(t *testing.T) {
	f := newIngestionFixture(t)
	f.papers.GetErr = errors.New("connection reset")

	_, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, 0, f.fetcher.Calls())
}

func TestIngestionPipeline_WaitsForConcurrentIngestion(t *testing.T) {
	f := newIngestionFixture(t)
	attempts := 0
	f.lock.AcquireFn = func(name string, ttl time.Duration) (bool, error) {
		attempts++
		if attempts < 3 {
			return false, nil
		}
		// The other holder finished and stored the paper.
		_ = f.papers.Save(context.Background(), &domain.Paper{
			URL:   testPaperURL,
			Name:  "Attention",
			Notes: []domain.Note{{Text: "stored elsewhere", PageNumbers: []int{1}}},
		})
		return true, nil
	}

	result, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, "stored elsewhere", result.Notes[0].Text)
	assert.Equal(t, 3, f.lock.AcquireCalls())
	assert.Equal(t, 0, f.fetcher.Calls())
}

func TestIngestionPipeline_LockWaitCancelled(t *testing.T) {
	f := newIngestionFixture(t)
	f.lock.AcquireFn = func(name string, ttl time.Duration) (bool, error) {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.pipeline.Ingest(ctx, ingestRequest())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, f.fetcher.Calls())
}

func TestIngestionPipeline_LockBackendFailureProceeds(t *testing.T) {
	f := newIngestionFixture(t)
	f.lock.AcquireFn = func(name string, ttl time.Duration) (bool, error) {
		return false, errors.New("redis: connection refused")
	}

	result, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Equal(t, 1, f.papers.Saves())
}

func TestIngestionPipeline_WithoutLock(t *testing.T) {
	f := newIngestionFixture(t)
	f.pipeline.lock = nil

	_, err := f.pipeline.Ingest(context.Background(), ingestRequest())

	require.NoError(t, err)
	assert.Equal(t, 0, f.lock.AcquireCalls())
}
