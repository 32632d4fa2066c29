package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/eventplanner/internal/app"
	"example.com/eventplanner/internal/cache"
	"example.com/eventplanner/internal/config"
	"example.com/eventplanner/internal/ingest"
	"example.com/eventplanner/internal/logger"
	"example.com/eventplanner/internal/metrics"
	"example.com/eventplanner/internal/query"
	"example.com/eventplanner/internal/source"
	transport "example.com/eventplanner/internal/transport/http"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("planner-api", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "optional dotenv file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	log.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "store", cfg.StoreDriver, "db", cfg.DB.Redacted())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("opening store", "err", err)
		return 1
	}
	defer closeStore()

	c, err := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTL,
		MaxEntries: cfg.CacheMaxSize,
	})
	if err != nil {
		log.Error("cache init", "err", err)
		return 1
	}
	defer c.Close()
	log.Info("cache: ready", "redis", cfg.RedisURL != "", "ttl", cfg.CacheTTL)

	m := metrics.New()
	srcOpts := source.Options{Logger: log, Location: cfg.Location()}
	deps := &transport.ServerDeps{
		Cfg: cfg,
		Query: query.NewService(store, c, m, query.Options{
			CacheTTL:     cfg.CacheTTL,
			StoreTimeout: cfg.StoreTimeout,
			Logger:       log,
		}),
		Runner: ingest.NewRunner(store, m, ingest.Options{StoreTimeout: cfg.StoreTimeout, Logger: log}),
		NewSource: func(name string) (source.Source, error) {
			return source.New(name, cfg, srcOpts)
		},
		Metrics: m,
		Log:     log,
		Now:     time.Now,
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           deps.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	code := 0
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error("http server", "err", err)
		code = 1
	}
	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", "err", err)
	}
	log.Info("stopped")
	return code
}
