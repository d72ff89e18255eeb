package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/auth"
	"github.com/gokatarajesh/quiz-widget/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-widget/internal/backend"
	"github.com/gokatarajesh/quiz-widget/internal/config"
	"github.com/gokatarajesh/quiz-widget/internal/db/migrate"
	"github.com/gokatarajesh/quiz-widget/internal/db/queries"
	"github.com/gokatarajesh/quiz-widget/internal/db/repository"
	"github.com/gokatarajesh/quiz-widget/internal/library"
	"github.com/gokatarajesh/quiz-widget/internal/logging"
	"github.com/gokatarajesh/quiz-widget/internal/mcpserver"
	"github.com/gokatarajesh/quiz-widget/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps the logger, the MCP server and, when enabled, the quiz
// library with its Postgres and Redis dependencies.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	be, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.APIURL,
		AppName: cfg.Backend.AppName,
		Timeout: cfg.Backend.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	widgetHTML, err := mcpserver.LoadWidgetHTML(ctx, cfg.MCP.WidgetBaseURL)
	if err != nil {
		logger.Warn().Err(err).Str("url", cfg.MCP.WidgetBaseURL).Msg("widget html unavailable; serving placeholder")
		widgetHTML = ""
	}

	mcpSrv := mcpserver.New(mcpserver.Options{
		Name:         cfg.MCP.ServerName,
		Version:      cfg.MCP.ServerVersion,
		WidgetHTML:   widgetHTML,
		WidgetDomain: cfg.MCP.WidgetDomain,
	}, be, logger)

	a := &Application{cfg: cfg, logger: logger}
	routes := server.Routes{MCP: mcpSrv.Handler()}

	if cfg.Library.Enabled {
		if err := a.initLibrary(ctx, &routes); err != nil {
			a.close()
			return nil, err
		}
	} else {
		logger.Warn().Msg("quiz library disabled; tools proxy to BACKEND_API_URL only")
	}

	a.http = server.NewHTTPServer(cfg, logger, routes)
	return a, nil
}

func (a *Application) initLibrary(ctx context.Context, routes *server.Routes) error {
	cfg := a.cfg

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	a.pool = pool

	if cfg.Library.AutoMigrate {
		if err := migrate.UpFromPool(ctx, pool); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		a.logger.Info().Msg("migrations applied")
	}

	var cache library.PageCache
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		cache = library.NewRedisPageCache(a.redis, cfg.Library.CacheTTL)
	} else {
		a.logger.Warn().Msg("REDIS_ADDR not set; list page cache disabled")
	}

	repo := repository.NewQuizRepository(queries.New(pool))
	svc := library.NewService(repo, cache, library.ServiceOptions{
		DefaultPageSize: cfg.Library.DefaultPageSize,
		MaxPageSize:     cfg.Library.MaxPageSize,
	}, a.logger)

	tokens := jwt.NewManager(jwt.TokenConfig{
		Secret: []byte(cfg.Library.JWTSecret),
		TTL:    cfg.Library.TokenTTL,
		Issuer: cfg.Name,
	})

	routes.Library = library.NewHTTPHandler(svc, a.logger)
	routes.Authenticate = auth.Middleware(tokens, a.logger)
	routes.Pool = pool
	routes.Redis = a.redis
	a.logger.Info().Msg("quiz library initialized")
	return nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		a.close()
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}
	a.close()

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}
}
