package main

// @title           Sercha Papers API
// @version         1.0
// @description     Turns PDF research papers into structured notes and answers questions about them.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-papers/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"cloud.google.com/go/storage"

	"github.com/custodia-labs/sercha-papers/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-papers/internal/adapters/driven/fetch"
	firestoreadapter "github.com/custodia-labs/sercha-papers/internal/adapters/driven/firestore"
	"github.com/custodia-labs/sercha-papers/internal/adapters/driven/memory"
	"github.com/custodia-labs/sercha-papers/internal/adapters/driven/pdf"
	"github.com/custodia-labs/sercha-papers/internal/adapters/driven/postgres"
	pgqueue "github.com/custodia-labs/sercha-papers/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/custodia-labs/sercha-papers/internal/adapters/driven/queue/redis"
	redisadapter "github.com/custodia-labs/sercha-papers/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-papers/internal/adapters/driven/unstructured"
	"github.com/custodia-labs/sercha-papers/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-papers/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-papers/internal/config"
	"github.com/custodia-labs/sercha-papers/internal/core/domain"
	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-papers/internal/core/services"
	"github.com/custodia-labs/sercha-papers/internal/postprocessors"
	"github.com/custodia-labs/sercha-papers/internal/runtime"
	"github.com/custodia-labs/sercha-papers/internal/worker"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	if err := cli.Execute(ctx, version, loadApp); err != nil {
		os.Exit(1)
	}
}

// stores groups the persistence adapters of one backend
type stores struct {
	papers driven.PaperStore
	qaLog  driven.QALogStore
	index  driven.VectorIndex
	lock   driven.DistributedLock
	queue  driven.TaskQueue
	deps   map[string]http.Pinger
	close  []func()
}

// extractionTiers returns the extraction tiers in preference order. Only the
// remote tier is bounded by EXTRACTION_TIMEOUT_SEC; the local parser runs
// under the request deadline alone.
func extractionTiers(cfg *config.Config, logger *slog.Logger) []driven.ExtractionTier {
	var tiers []driven.ExtractionTier
	if cfg.HiResEnabled() {
		unstructuredCfg := unstructured.DefaultConfig(cfg.UnstructuredAPIKey)
		if cfg.UnstructuredURL != "" {
			unstructuredCfg.URL = cfg.UnstructuredURL
		}
		unstructuredCfg.Timeout = cfg.ExtractionTimeout
		tiers = append(tiers, unstructured.NewTier(unstructuredCfg))
	}
	return append(tiers, pdf.NewLocalTier(0, logger))
}

// loadApp wires adapters, services and the HTTP server from the environment.
func loadApp(ctx context.Context) (*cli.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	log.Printf("sercha-papers %s starting (store=%s, lock=%s)", version, cfg.StoreBackend, cfg.LockBackend())

	// Runtime services: the model credentials are optional at startup
	runtimeConfig := domain.NewRuntimeConfig(cfg.StoreBackend, cfg.LockBackend())
	runtimeServices := runtime.NewServices(runtimeConfig)
	runtimeConfig.SetHiResExtractionAvailable(cfg.HiResEnabled())

	aiFactory := ai.NewFactory()
	if llm, err := aiFactory.CreateLLMService(ctx, &cfg.LLM); err != nil {
		log.Printf("Warning: LLM service unavailable: %v", err)
	} else if err := runtimeServices.RegisterLLM(ctx, llm); err != nil {
		log.Printf("Warning: LLM health check failed, keeping it registered: %v", err)
	}
	if embedder, err := aiFactory.CreateEmbeddingService(&cfg.Embedding); err != nil {
		log.Printf("Warning: embedding service unavailable: %v", err)
	} else if err := runtimeServices.ValidateAndSetEmbedding(ctx, embedder); err != nil {
		log.Printf("Warning: embedding health check failed: %v", err)
	}
	if !runtimeConfig.LLMAvailable() {
		log.Println("No language model configured; requests will report a configuration error")
	}

	st, err := openStores(ctx, cfg, runtimeServices.EmbeddingService())
	if err != nil {
		_ = runtimeServices.Close()
		return nil, err
	}

	closeAll := func() {
		for i := len(st.close) - 1; i >= 0; i-- {
			st.close[i]()
		}
		_ = runtimeServices.Close()
	}

	fetchCfg := fetch.Config{
		Timeout: cfg.FetchTimeout,
		Logger:  logger,
	}
	if cfg.GCSEnabled {
		gcs, err := storage.NewClient(ctx)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("connect to cloud storage: %w", err)
		}
		fetchCfg.Storage = gcs
		st.close = append(st.close, func() { _ = gcs.Close() })
		log.Println("Cloud Storage enabled for gs:// URLs")
	}

	extractor := services.NewDocumentExtractor(services.DocumentExtractorConfig{
		Tiers:      extractionTiers(cfg, logger),
		StagingDir: cfg.StagingDir,
		Logger:     logger,
	})
	notes := services.NewNoteGenerator(services.NoteGeneratorConfig{
		Services: runtimeServices,
		Logger:   logger,
	})

	pipeline := postprocessors.DefaultPipeline()

	ingestion := services.NewIngestionPipeline(services.IngestionPipelineConfig{
		Fetcher:     fetch.New(fetchCfg),
		Editor:      pdf.NewEditor(logger),
		Extractor:   extractor,
		Notes:       notes,
		PaperStore:  st.papers,
		VectorIndex: st.index,
		Pipeline:    pipeline,
		Lock:        st.lock,
		Queue:       st.queue,
		Services:    runtimeServices,
		Logger:      logger,
	})
	qa := services.NewQAEngine(services.QAEngineConfig{
		PaperStore:  st.papers,
		QALog:       st.qaLog,
		VectorIndex: st.index,
		Services:    runtimeServices,
		Logger:      logger,
	})
	papers := services.NewPaperService(st.papers, st.qaLog)
	reindexer := services.NewReindexer(services.ReindexerConfig{
		PaperStore:  st.papers,
		VectorIndex: st.index,
		Pipeline:    pipeline,
		Logger:      logger,
	})

	server := http.NewServer(
		http.Config{
			Host:           cfg.Host,
			Port:           cfg.Port,
			Version:        version,
			RequestTimeout: cfg.RequestTimeout,
			AllowedOrigins: cfg.AllowedOrigins,
			Capabilities:   runtimeConfig,
			Logger:         logger,
		},
		ingestion,
		qa,
		papers,
		st.deps,
	)

	serve := server.Start
	if st.queue != nil {
		w := worker.NewWorker(worker.WorkerConfig{
			TaskQueue: st.queue,
			Reindexer: reindexer,
			Logger:    logger,
		})
		serve = func(ctx context.Context) error {
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := w.Start(ctx); err != nil {
					return err
				}
				w.Wait()
				return nil
			})
			g.Go(func() error { return server.Start(ctx) })
			return g.Wait()
		}
	}

	return &cli.App{
		Ingestion: ingestion,
		QA:        qa,
		Papers:    papers,
		Reindex:   reindexer,
		Serve:     serve,
		Close:     closeAll,
	}, nil
}

// openStores connects the configured store backend and distributed lock.
func openStores(ctx context.Context, cfg *config.Config, embedder driven.EmbeddingService) (*stores, error) {
	st := &stores{deps: map[string]http.Pinger{}}

	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.InitSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
		log.Println("Connected to PostgreSQL")

		st.papers = postgres.NewPaperStore(db)
		st.qaLog = postgres.NewQALogStore(db)
		if embedder != nil {
			st.index = postgres.NewVectorIndex(db, embedder)
		}
		st.lock = postgres.NewAdvisoryLock(db)
		st.queue = pgqueue.NewQueue(db.DB)
		st.deps["postgres"] = db
		st.close = append(st.close, func() { _ = db.Close() })

	case config.StoreFirestore:
		client, err := firestoreadapter.NewClient(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, fmt.Errorf("connect to firestore: %w", err)
		}
		log.Println("Connected to Firestore")

		st.papers = firestoreadapter.NewPaperStore(client)
		st.qaLog = firestoreadapter.NewQALogStore(client)
		if embedder != nil {
			st.index = memory.NewVectorIndex(embedder)
		}
		st.close = append(st.close, func() { _ = client.Close() })

	default:
		log.Println("Using in-memory stores; papers are lost on restart")
		st.papers = memory.NewPaperStore()
		st.qaLog = memory.NewQALogStore()
		if embedder != nil {
			st.index = memory.NewVectorIndex(embedder)
		}
	}

	if cfg.RedisURL != "" {
		client, err := redisadapter.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			for i := len(st.close) - 1; i >= 0; i-- {
				st.close[i]()
			}
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Println("Connected to Redis")

		st.lock = redisadapter.NewLock(client)
		st.deps["redis"] = st.lock
		st.close = append(st.close, func() { _ = client.Close() })

		queue, err := redisqueue.NewQueue(ctx, client, "")
		if err != nil {
			for i := len(st.close) - 1; i >= 0; i-- {
				st.close[i]()
			}
			return nil, fmt.Errorf("create task queue: %w", err)
		}
		st.queue = queue
		st.deps["queue"] = queue
	}

	return st, nil
}
