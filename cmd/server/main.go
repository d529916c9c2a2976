package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"clientregistry/internal/cep"
	"clientregistry/internal/platform/config"
	"clientregistry/internal/platform/httpserver"
	"clientregistry/internal/platform/logger"
	"clientregistry/internal/platform/middleware"
	platformredis "clientregistry/internal/platform/redis"
	"clientregistry/internal/registry/directory"
	"clientregistry/internal/registry/handler"
	"clientregistry/internal/registry/metrics"
	"clientregistry/internal/registry/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogJSON)

	clientStore, cleanup, err := buildStore(cfg)
	if err != nil {
		log.Error("store setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	lookup, rdb, err := buildLookup(cfg, log)
	if err != nil {
		log.Error("lookup setup failed", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	m := metrics.New()
	dir := directory.New(clientStore,
		directory.WithLogger(log),
		directory.WithMetrics(m),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(log))
	handler.New(dir, log).Register(r)
	cep.NewHandler(lookup, log).Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", platformredis.HealthHandler(rdb))

	srv := httpserver.New(cfg.Addr, r)
	log.Info("starting client registry", "addr", cfg.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildStore prefers Postgres when a DSN is configured and falls back to
// the in-memory store for local runs.
func buildStore(cfg config.Config) (directory.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		return store.NewInMemory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgres(db)
	if err := pg.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}

// buildLookup stacks the cache in front of ViaCEP: Redis when configured,
// process-local otherwise. The Redis client is returned alongside so the
// liveness endpoint can ping it.
func buildLookup(cfg config.Config, log *slog.Logger) (cep.Lookup, *platformredis.Client, error) {
	base := cep.NewViaCEP(cfg.Lookup, log)

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if rdb != nil {
		return cep.NewRedisCache(base, rdb, cfg.Lookup.CacheTTL, log), rdb, nil
	}
	return cep.NewMemoryCache(base, cfg.Lookup.CacheTTL), nil, nil
}
