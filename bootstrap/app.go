package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cms-search/config"
	"cms-search/consumer"
	"cms-search/domain"
	"cms-search/driver"
	"cms-search/gateway"
	"cms-search/internal/auth"
	"cms-search/logger"
	"cms-search/rest"
	"cms-search/search_engine"
	"cms-search/tokenize"
	"cms-search/usecase"
	appOtel "cms-search/utils/otel"

	"github.com/cenkalti/backoff/v5"
)

// App holds all components of the cms-search service.
type App struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	storeClose      func()
	syncer          *usecase.SyncContentUsecase
	redisConsumer   *consumer.Consumer
	eventHandler    *consumer.ContentEventHandler
	otelShutdown    appOtel.ShutdownFunc
}

// Run initializes all components and starts the service.
// It blocks until ctx is cancelled, then performs graceful shutdown.
func Run(ctx context.Context) error {
	// ── OpenTelemetry ──
	otelCfg := appOtel.ConfigFromEnv(driver.NewEnvDriver())
	otelShutdown, err := appOtel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// ── Logger ──
	logger.InitWithOTel(otelCfg.Enabled)
	logger.Logger.Info("Starting cms-search",
		"service", otelCfg.ServiceName,
		"otel_enabled", otelCfg.Enabled,
	)

	// ── Config ──
	appCfg, err := config.Load()
	if err != nil {
		logger.Logger.Error("Failed to load config", "err", err)
		return err
	}

	// ── Tokenizer (optional) ──
	tok, err := tokenize.InitTokenizer()
	if err != nil {
		logger.Logger.Warn("Japanese tokenizer unavailable, highlighting whole words", "err", err)
	}

	// ── Drivers ──
	store, storeClose, err := initContentStore(ctx, appCfg)
	if err != nil {
		logger.Logger.Error("Failed to initialize content store", "err", err)
		return err
	}

	// ── Gateways ──
	repo := gateway.NewContentRepositoryGateway(store)
	configGateway := gateway.NewConfigGateway(driver.NewEnvDriver())

	// ── Providers ──
	providerCfg, err := configGateway.LoadSearchProviderConfig()
	if err != nil {
		logger.Logger.Warn("Invalid search provider config, using default highlight tags", "err", err)
		providerCfg = domain.NewSearchProviderConfig("", "", "")
	}
	highlighter := tokenize.NewHighlighter(tok, providerCfg.HighlightPreTag, providerCfg.HighlightPostTag)
	local := search_engine.NewLocalProvider(highlighter)
	registry := search_engine.NewProviderRegistry(configGateway, local, search_engine.NewRemoteFactory(appCfg.Indexer.MeiliTimeout))

	// ── Use cases ──
	baseURL := appCfg.PublicBaseURL
	syncer := usecase.NewSyncContentUsecase(registry, baseURL, usecase.WithSyncTimeout(appCfg.Indexer.SyncTimeout))
	legacy := usecase.NewLegacySearchUsecase(repo, repo, repo, baseURL)
	reindex := usecase.NewReindexOrgUsecase(repo, repo, registry, baseURL, appCfg.Indexer.BatchSize)

	handler := rest.NewHandler(rest.HandlerDeps{
		Search:  usecase.NewSearchContentUsecase(repo, repo, registry, legacy),
		Legacy:  legacy,
		Sitemap: usecase.NewBuildSitemapUsecase(repo, repo, baseURL),
		Health:  usecase.NewSearchHealthUsecase(registry),
		Reindex: reindex,
		Manage:  usecase.NewManageContentUsecase(repo, repo, syncer),
	})

	app := &App{
		shutdownTimeout: appCfg.HTTP.ShutdownTimeout,
		storeClose:      storeClose,
		syncer:          syncer,
		otelShutdown:    otelShutdown,
	}

	// ── Redis Streams Consumer ──
	consumerCfg := consumer.ConfigFromEnv()
	if consumerCfg.Enabled {
		app.eventHandler = consumer.NewContentEventHandler(repo, repo, syncer, reindex, logger.Logger)
		redisConsumer, err := consumer.NewConsumer(consumerCfg, app.eventHandler, logger.Logger)
		if err != nil {
			logger.Logger.Error("Failed to create Redis Streams consumer", "err", err)
		} else if err := redisConsumer.Start(ctx); err != nil {
			logger.Logger.Error("Failed to start Redis Streams consumer", "err", err)
		} else {
			app.redisConsumer = redisConsumer
			logger.Logger.Info("Redis Streams consumer started",
				"stream", consumerCfg.StreamKey,
				"group", consumerCfg.GroupName,
			)
		}
	} else {
		logger.Logger.Info("Redis Streams consumer disabled")
	}

	// ── Startup backfill (local provider only) ──
	go runBackfill(ctx, usecase.NewBackfillUsecase(repo, reindex, registry))

	// ── HTTP server ──
	authClient := auth.NewClient(auth.Config{
		ServiceName:   appCfg.Auth.ServiceName,
		ServiceSecret: appCfg.Auth.ServiceTokenSecret,
	})
	app.httpServer = newHTTPServer(appCfg.HTTP, newEcho(handler, authClient, otelCfg.Enabled))

	serverErr := make(chan error, 1)
	go func() {
		logger.Logger.Info("http listen", "addr", appCfg.HTTP.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ── Wait for shutdown signal ──
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
		logger.Logger.Error("http", "err", runErr)
	}
	app.shutdown()
	return runErr
}

// shutdown stops intake first, then drains background indexing, then closes drivers.
func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("http shutdown error", "err", err)
	}
	if a.redisConsumer != nil {
		a.redisConsumer.Stop()
	}
	if a.eventHandler != nil {
		a.eventHandler.Stop()
	}

	drained := make(chan struct{})
	go func() {
		a.syncer.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-shutdownCtx.Done():
		logger.Logger.Warn("background index updates still running at shutdown")
	}

	if a.storeClose != nil {
		a.storeClose()
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := a.otelShutdown(otelCtx); err != nil {
		fmt.Printf("Failed to shutdown OpenTelemetry: %v\n", err)
	}
}

// newRetryBackoff creates an exponential backoff policy for backfill retries.
func newRetryBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Second
	bo.MaxInterval = 5 * time.Minute
	bo.Multiplier = 2
	return bo
}

// runBackfill reindexes every organization once, retrying until a pass completes without failures.
func runBackfill(ctx context.Context, backfill *usecase.BackfillUsecase) {
	defer func() {
		if r := recover(); r != nil {
			logger.Logger.Error("backfill panic", "err", r)
		}
	}()

	bo := newRetryBackoff()
	for {
		start := time.Now()
		result, err := backfill.Execute(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil && result.Skipped {
			logger.Logger.Info("backfill skipped, remote search provider active")
			return
		}
		if err == nil {
			logger.Logger.Info("backfill complete",
				"orgs", result.Orgs,
				"indexed", result.Indexed,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return
		}

		appOtel.Metrics.RecordError(ctx, "backfill")
		delay := bo.NextBackOff()
		logger.Logger.Error("backfill error, retrying", "err", err, "retry_in", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}
