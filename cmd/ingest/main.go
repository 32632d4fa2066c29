// Command ingest runs one or all sources once and appends their events to the store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"example.com/eventplanner/internal/app"
	"example.com/eventplanner/internal/config"
	"example.com/eventplanner/internal/ingest"
	"example.com/eventplanner/internal/logger"
	"example.com/eventplanner/internal/metrics"
	"example.com/eventplanner/internal/source"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	srcName := fs.String("source", app.SourceAll, "source to run: "+strings.Join(source.Names, "|")+"|"+app.SourceAll)
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sources, err := app.Sources(*srcName, cfg, source.Options{Logger: log, Location: cfg.Location()})
	if err != nil {
		log.Error("resolving sources", "source", *srcName, "err", err)
		return 2
	}

	store, closeStore, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("opening store", "driver", cfg.StoreDriver, "err", err)
		return 1
	}
	defer closeStore()

	runner := ingest.NewRunner(store, metrics.New(), ingest.Options{
		StoreTimeout: cfg.StoreTimeout,
		Logger:       log,
	})
	results, err := runner.RunAll(ctx, sources)
	for _, res := range results {
		log.Info("run finished",
			"source", res.Source,
			"run_id", res.RunID,
			"extracted", res.Extracted,
			"inserted", res.Inserted,
			"skipped", res.Skipped,
			"duration", res.Duration,
		)
	}
	if err != nil {
		log.Error("ingest failed", "err", err)
		return 1
	}
	return 0
}
