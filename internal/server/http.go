package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/config"
	"github.com/gokatarajesh/quiz-widget/internal/library"
	"github.com/gokatarajesh/quiz-widget/internal/logging"
)

// Routes groups the handlers mounted by NewHTTPServer. Library and
// Authenticate are nil when the library is disabled; Pool and Redis may be nil.
type Routes struct {
	MCP          http.Handler
	Library      *library.HTTPHandler
	Authenticate func(http.Handler) http.Handler
	Pool         *pgxpool.Pool
	Redis        *redis.Client
}

// NewHTTPServer wires health, metrics, the MCP endpoint and the library API.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, routes Routes) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), routes.Pool, routes.Redis); err != nil {
			logging.FromContext(r.Context()).Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if routes.MCP != nil {
		mux.Handle("/mcp", routes.MCP)
	}

	if routes.Library != nil {
		authenticate := routes.Authenticate
		if authenticate == nil {
			authenticate = func(h http.Handler) http.Handler { return h }
		}
		routes.Library.Register(mux, authenticate)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: logging.Middleware(logger)(mux),
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if pool != nil {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
	}
	if redis != nil {
		if err := redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
