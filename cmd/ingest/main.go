// Package main runs standalone feed ingestion: websocket transaction feed
// into the transaction store.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"findataops/internal/ingestion"
	"findataops/internal/logger"
	"findataops/internal/observability"
	"findataops/internal/storage"
	"findataops/internal/storage/memory"
	"findataops/internal/storage/migrations"
	pgstore "findataops/internal/storage/postgres"
)

func main() {
	feedEndpoint := flag.String("feed-endpoint", os.Getenv("FEED_ENDPOINT"), "Websocket URL of the transaction feed")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	flushSize := flag.Int("flush-size", 100, "Rows buffered before a batch insert")
	flushInterval := flag.Duration("flush-interval", 5*time.Second, "Forced flush interval for partial batches")
	metricsAddr := flag.String("metrics-addr", ":9091", "Prometheus metrics HTTP address")
	flag.Parse()

	log := logger.New()

	if *feedEndpoint == "" {
		log.Fatal().Msg("--feed-endpoint is required")
	}
	if !*useMemory && *postgresDSN == "" {
		log.Fatal().Msg("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		cancel()
	}()

	var store storage.TransactionStore
	if *useMemory {
		store = memory.NewTransactionStore()
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("apply postgres migrations")
		}
		store = pgstore.NewTransactionStore(pool)
	}

	metrics := observability.NewMetrics("")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		log.Info().Str("addr", *metricsAddr).Msg("metrics server listening")
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	feed := ingestion.NewFeed(ingestion.DefaultFeedConfig(*feedEndpoint), log, metrics)
	defer feed.Close()

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:        feed,
		Store:         store,
		FlushSize:     *flushSize,
		FlushInterval: *flushInterval,
		Logger:        log,
		Metrics:       metrics,
	})

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("ingestion failed")
	}
	log.Info().Msg("shutdown complete")
}
