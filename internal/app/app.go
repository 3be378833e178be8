package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"Blookin/internal/api"
	"Blookin/internal/catalog"
	"Blookin/internal/config"
	"Blookin/internal/infrastructure/aladin"
	"Blookin/internal/infrastructure/artifacts"
	"Blookin/internal/infrastructure/imagegen"
	"Blookin/internal/infrastructure/llm"
	"Blookin/internal/infrastructure/scheduler"
	"Blookin/internal/infrastructure/storage"
	"Blookin/internal/infrastructure/tts"
	"Blookin/internal/infrastructure/wiki"
	"Blookin/internal/logging"
	"Blookin/internal/mbti"
	"Blookin/internal/recommend"
	"Blookin/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	db        *sql.DB
	server    *api.Server
	scheduler *usecase.ImportScheduler
	logger    *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	books := storage.NewBookRepository(db)
	threads := storage.NewThreadRepository(db)

	source := wiki.NewLookup(cfg.Wiki, nil, baseLogger.With("component", "wiki"))
	chat := llm.NewChatGPTClient(cfg.OpenAI, baseLogger.With("component", "llm"))
	speech := tts.NewClient(cfg.Speech)
	images := imagegen.NewClient(cfg.OpenAI)
	store := artifacts.NewStore(cfg.Media.Root)

	enrichment := usecase.NewEnrichment(usecase.EnrichmentDeps{
		Books:    books,
		Source:   source,
		Synth:    chat,
		Speech:   speech,
		Store:    store,
		Language: cfg.Speech.Language,
		Logger:   baseLogger.With("component", "enrichment"),
	})

	illustration := usecase.NewIllustration(usecase.IllustrationDeps{
		Threads: threads,
		Books:   books,
		Prompts: chat,
		Images:  images,
		Store:   store,
		Size:    cfg.Images.Size,
		Logger:  baseLogger.With("component", "illustration"),
	})

	engine := recommend.NewEngine(books, cfg.Recommend, baseLogger.With("component", "recommend"))
	mapper := mbti.NewMapper(books)

	handler := api.NewHandler(api.HandlerDeps{
		Books:        books,
		Source:       source,
		Engine:       engine,
		Mapper:       mapper,
		Enrichment:   enrichment,
		Illustration: illustration,
		Logger:       baseLogger.With("component", "api"),
	})
	server := api.NewServer(cfg.Server.Addr, handler.Routes())

	var importScheduler *usecase.ImportScheduler
	if cfg.Importer.Enabled {
		registry := catalog.NewRegistry()
		registry.Register(aladin.NewSource(cfg.Importer.Aladin, nil, baseLogger.With("component", "source.aladin")))

		vendor, err := registry.Resolve(cfg.Importer.Vendor)
		if err != nil {
			return nil, fmt.Errorf("importer: %w", err)
		}

		importer := usecase.NewImporter(usecase.ImporterDeps{
			Source:     vendor,
			Books:      books,
			Enrichment: enrichment,
			Logger:     baseLogger.With("component", "importer"),
		})

		interval, err := time.ParseDuration(cfg.Importer.Interval)
		if err != nil {
			baseLogger.Warn("invalid importer interval, using 24h", "interval", cfg.Importer.Interval)
			interval = 24 * time.Hour
		}
		importScheduler = usecase.NewImportScheduler(
			scheduler.NewIntervalScheduler(interval),
			importer,
			baseLogger.With("component", "importer"),
		)
	}

	return &Application{
		cfg:       cfg,
		db:        db,
		server:    server,
		scheduler: importScheduler,
		logger:    baseLogger,
	}, nil
}

// Run serves until the context is canceled.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start import scheduler: %w", err)
		}
		defer func() { _ = a.scheduler.Stop(context.Background()) }()
	}

	a.logger.Info("server listening", "addr", a.cfg.Server.Addr)
	err := a.server.Run(ctx)

	if closeErr := a.db.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close database: %w", closeErr)
	}
	return err
}
