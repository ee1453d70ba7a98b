package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizforge/packadmin/internal/auth"
	"github.com/quizforge/packadmin/internal/auth/jwt"
	"github.com/quizforge/packadmin/internal/catalog"
	"github.com/quizforge/packadmin/internal/config"
	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/db/memory"
	"github.com/quizforge/packadmin/internal/db/postgres"
	"github.com/quizforge/packadmin/internal/db/repository"
	"github.com/quizforge/packadmin/internal/db/sqlite"
	"github.com/quizforge/packadmin/internal/editor"
	"github.com/quizforge/packadmin/internal/events"
	"github.com/quizforge/packadmin/internal/logging"
	"github.com/quizforge/packadmin/internal/server"
	ws "github.com/quizforge/packadmin/pkg/http/ws"
)

// Application aggregates shared infrastructure (store, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	store db.Store
	redis *redis.Client
	http  *http.Server
	hub   *ws.Hub

	broadcaster *events.Broadcaster
	sweeper     *editor.Sweeper
	bgCancels   []context.CancelFunc
}

// New bootstraps logger, store, optional Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Str("store", cfg.Store.Driver).Msg("starting application bootstrap")

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := map[string]server.Pinger{"store": store.Ping}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		deps["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; pack cache disabled and catalog events stay in-process")
	}

	authSvc := auth.NewService(auth.ServiceOptions{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
		TokenConfig: jwt.TokenConfig{
			Secret:    []byte(cfg.Security.JWTSecret),
			AccessTTL: cfg.Security.AccessTokenTTL,
			Issuer:    cfg.Name,
		},
	}, logger)

	hub := ws.NewHub(logger)

	var (
		cache       catalog.PackCache
		publisher   events.Publisher
		broadcaster *events.Broadcaster
	)
	if redisClient != nil {
		cache = catalog.NewCache(redisClient, cfg.Cache.PackTTL)
		publisher = events.NewRedisPublisher(redisClient, cfg.Events.Channel)
		broadcaster = events.NewBroadcaster(redisClient, hub, cfg.Events.Channel, logger)
	} else {
		publisher = events.NewHubPublisher(hub)
	}

	catalogSvc := catalog.NewService(
		repository.NewCategoryRepository(store),
		repository.NewPackRepository(store),
		cache,
		publisher,
		logger,
	)
	registry := editor.NewRegistry(catalogSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, server.Handlers{
		Auth:      auth.NewHTTPHandlers(authSvc, logger),
		AuthSvc:   authSvc,
		Catalog:   catalog.NewHTTPHandler(catalogSvc, logger),
		Editor:    editor.NewHTTPHandler(registry, logger),
		CatalogWS: events.NewHandler(hub, server.NewUpgrader(cfg.CORS), logger),
	}, deps)

	return &Application{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		redis:       redisClient,
		http:        apiServer,
		hub:         hub,
		broadcaster: broadcaster,
		sweeper:     editor.NewSweeper(registry, cfg.Editor.SessionTTL, cfg.Editor.SweepInterval, logger),
		bgCancels:   make([]context.CancelFunc, 0, 2),
	}, nil
}

func openStore(ctx context.Context, cfg *config.App) (db.Store, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		return postgres.Connect(ctx, cfg.Postgres.ConnString())
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		return sqlite.Open(ctx, cfg.SQLite.Path)
	case config.StoreMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}
	a.hub.CloseAll()

	for _, cancel := range a.bgCancels {
		cancel()
	}

	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("store shutdown error")
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.broadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.broadcaster.Run(bgCtx, nil); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("catalog broadcaster stopped")
			}
		}()
	}

	if a.sweeper != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.sweeper.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("editor sweeper stopped")
			}
		}()
	}
}
