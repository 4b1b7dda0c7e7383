package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"ReviewScout/internal/config"
	"ReviewScout/internal/infrastructure/llm"
	"ReviewScout/internal/infrastructure/parser"
	"ReviewScout/internal/infrastructure/scheduler"
	"ReviewScout/internal/infrastructure/storage/memory"
	"ReviewScout/internal/infrastructure/storage/sqlstore"
	"ReviewScout/internal/infrastructure/telegram"
	"ReviewScout/internal/keywords"
	"ReviewScout/internal/logging"
	"ReviewScout/internal/matching"
	"ReviewScout/internal/ports"
	"ReviewScout/internal/query"
	"ReviewScout/internal/resolution"
	"ReviewScout/internal/summary"
	"ReviewScout/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	service   *usecase.Service
	collector *usecase.Collector
	scheduler *usecase.Scheduler
	close     func() error
}

// New builds the application from configuration.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	repos, err := openStorage(ctx, cfg.Storage, baseLogger)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.Collection.CallTimeout}
	platforms, err := parser.NewRegistry(cfg.Collection.Platforms, client, baseLogger.With("component", "parser"))
	if err != nil {
		repos.close()
		return nil, err
	}

	analyzer, err := llm.NewAnalyzer(cfg, baseLogger.With("component", "llm"))
	if err != nil {
		repos.close()
		return nil, err
	}

	lexicon := keywords.DefaultLexicon()
	if cfg.Analysis.DictionaryPath != "" {
		if lexicon, err = keywords.LoadLexiconFile(cfg.Analysis.DictionaryPath); err != nil {
			repos.close()
			return nil, err
		}
	}
	var picker summary.Picker
	if cfg.Analysis.PhraseSeed != 0 {
		picker = summary.NewRandomPicker(cfg.Analysis.PhraseSeed)
	}

	var notifier ports.Notifier
	if cfg.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Telegram.APIBase, cfg.Telegram.BotToken, cfg.Telegram.ChatID, nil)
	}

	cache := memory.NewCache()
	planner := query.NewPlanner()
	planner.Qualifier = cfg.Collection.Qualifier
	planner.LocalizedQualifier = cfg.Collection.LocalQualifier

	collector := usecase.NewCollector(usecase.CollectorDeps{
		Catalog:  repos.catalog,
		Reviews:  repos.reviews,
		Scanners: platforms.Scanners,
		Policies: platforms,
		Planner:  planner,
		Scorer:   matching.NewScorer(cfg.Matching, nil),
		Notifier: notifier,
		SaveHook: repos.hook,
		Logger:   baseLogger,
		Options: usecase.CollectorOptions{
			MaxQueries:      cfg.Collection.MaxQueries,
			ResultsPerQuery: cfg.Collection.ResultsPerQuery,
			RequestDelay:    cfg.Collection.RequestDelay,
			CallTimeout:     cfg.Collection.CallTimeout,
		},
	})

	chain := resolution.NewChain(resolution.ChainDeps{
		Overrides: repos.overrides,
		Insights:  repos.insights,
		Feedback:  repos.feedback,
		Cache:     cache,
		Analyzer:  analyzer,
		Keywords:  keywords.NewAnalyzer(lexicon),
		Composer:  summary.NewComposer(picker),
		SaveHook:  repos.hook,
		Logger:    baseLogger,
		Options: resolution.Options{
			CacheTTL:         cfg.Analysis.CacheTTL,
			AITimeout:        cfg.Analysis.AITimeout,
			FeedbackExamples: cfg.Analysis.FeedbackExamples,
		},
	})
	learner := resolution.NewLearner(resolution.LearnerDeps{
		Feedback: repos.feedback,
		Cache:    cache,
		SaveHook: repos.hook,
		Logger:   baseLogger,
	})

	service := usecase.NewService(usecase.ServiceDeps{
		Collector: collector,
		Chain:     chain,
		Learner:   learner,
		Reviews:   repos.reviews,
		Insights:  repos.insights,
		Overrides: repos.overrides,
		Cache:     cache,
		Analyzer:  analyzer,
		SaveHook:  repos.hook,
		Logger:    baseLogger,
	})

	app := &Application{
		cfg:       cfg,
		logger:    baseLogger,
		service:   service,
		collector: collector,
		close:     repos.close,
	}
	if cfg.Scheduler.Enabled {
		driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval, cfg.Scheduler.RunOnStart)
		app.scheduler = usecase.NewScheduler(driver, collector, baseLogger)
	}

	baseLogger.Info("application ready",
		"storage", cfg.Storage.Driver,
		"platforms", collector.Platforms(),
		"tiers", chain.Tiers(),
		"notifier", notifier != nil)
	return app, nil
}

// Service exposes the facade for the surrounding layer.
func (a *Application) Service() *usecase.Service {
	return a.service
}

// CollectAll runs one collection over every platform, regardless of the scheduler.
func (a *Application) CollectAll(ctx context.Context) ([]usecase.CollectionResult, error) {
	return a.collector.TriggerAll(ctx)
}

// Run starts the collection scheduler and blocks until ctx is done. Without
// a scheduler it performs one collection over every platform.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler == nil {
		_, err := a.CollectAll(ctx)
		return err
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Collection.CallTimeout)
	defer cancel()
	if err := a.scheduler.Stop(stopCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

// Close releases storage resources.
func (a *Application) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

type repositories struct {
	catalog   ports.ProductCatalog
	reviews   ports.ReviewRepository
	insights  ports.InsightRepository
	feedback  ports.FeedbackRepository
	overrides ports.OverrideRepository
	hook      ports.SaveHook
	close     func() error
}

func openStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (repositories, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return openMemory(cfg, logger)
	case config.DriverSQLite, config.DriverPostgres:
		return openSQL(ctx, cfg)
	default:
		return repositories{}, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func openMemory(cfg config.StorageConfig, logger *slog.Logger) (repositories, error) {
	store := memory.NewStore()
	var hook ports.SaveHook
	if cfg.SnapshotPath != "" {
		loaded, err := memory.LoadFile(cfg.SnapshotPath)
		if err != nil {
			return repositories{}, err
		}
		store = loaded
		hook = store.SnapshotHook(cfg.SnapshotPath, logger)
	}

	catalog := memory.NewCatalog()
	if cfg.CatalogPath != "" {
		loaded, err := memory.LoadCatalogFile(cfg.CatalogPath)
		if err != nil {
			return repositories{}, err
		}
		catalog = loaded
	}

	return repositories{
		catalog:   catalog,
		reviews:   store.Reviews,
		insights:  store.Insights,
		feedback:  store.Feedback,
		overrides: store.Overrides,
		hook:      hook,
		close:     func() error { return nil },
	}, nil
}

func openSQL(ctx context.Context, cfg config.StorageConfig) (repositories, error) {
	store, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return repositories{}, err
	}

	catalog := store.Catalog()
	if cfg.CatalogPath != "" {
		seed, err := memory.LoadCatalogFile(cfg.CatalogPath)
		if err != nil {
			store.Close()
			return repositories{}, err
		}
		products, _ := seed.ListProducts(ctx)
		if err := catalog.UpsertProducts(ctx, products); err != nil {
			store.Close()
			return repositories{}, err
		}
	}

	return repositories{
		catalog:   catalog,
		reviews:   store.Reviews(),
		insights:  store.Insights(),
		feedback:  store.Feedback(),
		overrides: store.Overrides(),
		close:     store.Close,
	}, nil
}
