// Package main runs the unified service: continuous feed ingestion plus
// scheduled analytics runs, with health, status and Prometheus endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"findataops/internal/engine"
	"findataops/internal/ingestion"
	"findataops/internal/logger"
	"findataops/internal/observability"
	"findataops/internal/storage"
	chstore "findataops/internal/storage/clickhouse"
	"findataops/internal/storage/memory"
	"findataops/internal/storage/migrations"
	pgstore "findataops/internal/storage/postgres"
)

// Server wires ingestion and the analytics scheduler together.
type Server struct {
	feedEndpoint string
	runInterval  time.Duration
	baseCurrency string

	stores  *allStores
	log     zerolog.Logger
	metrics *observability.Metrics

	mu         sync.Mutex
	started    time.Time
	lastRun    time.Time
	lastResult *engine.RunResult
	running    bool
	runs       int
}

// allStores holds every storage implementation the server needs.
type allStores struct {
	transactions storage.TransactionStore
	accounts     storage.AccountStore
	fxRates      storage.FxRateStore
	targets      storage.BudgetTargetStore
	anomalies    storage.AnomalyStore
	recurring    storage.RecurringPatternStore
	forecasts    storage.ForecastStore
	variance     storage.BudgetVarianceStore
	cashflow     storage.MonthlyCashflowStore
	category     storage.CategoryMonthlyStore
	netWorth     storage.NetWorthStore
	windows      storage.WindowPointStore
}

func main() {
	feedEndpoint := flag.String("feed-endpoint", os.Getenv("FEED_ENDPOINT"), "Websocket URL of the transaction feed")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	runInterval := flag.Duration("run-interval", 1*time.Hour, "Analytics run interval")
	baseCurrency := flag.String("base-currency", "USD", "Reporting currency for net worth")
	httpAddr := flag.String("http-addr", ":9090", "HTTP address for health/status/metrics")
	flag.Parse()

	log := logger.New()

	if *feedEndpoint == "" {
		log.Fatal().Msg("--feed-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		log.Fatal().Msg("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		select {
		case sig := <-sigCh:
			log.Warn().Str("signal", sig.String()).Msg("forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn().Msg("graceful shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		log.Fatal().Err(err).Msg("create stores")
	}
	defer cleanup()

	server := &Server{
		feedEndpoint: *feedEndpoint,
		runInterval:  *runInterval,
		baseCurrency: *baseCurrency,
		stores:       stores,
		log:          log,
		metrics:      observability.NewMetrics(""),
		started:      time.Now(),
	}

	go server.startHTTPServer(*httpAddr)

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("shutdown complete")
}

// createStores builds either the in-memory bundle or the PostgreSQL +
// ClickHouse bundle, applying migrations first.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		return &allStores{
			transactions: memory.NewTransactionStore(),
			accounts:     memory.NewAccountStore(),
			fxRates:      memory.NewFxRateStore(),
			targets:      memory.NewBudgetTargetStore(),
			anomalies:    memory.NewAnomalyStore(),
			recurring:    memory.NewRecurringPatternStore(),
			forecasts:    memory.NewForecastStore(),
			variance:     memory.NewBudgetVarianceStore(),
			cashflow:     memory.NewMonthlyCashflowStore(),
			category:     memory.NewCategoryMonthlyStore(),
			netWorth:     memory.NewNetWorthStore(),
			windows:      memory.NewWindowPointStore(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply clickhouse migrations: %w", err)
	}

	stores := &allStores{
		// PostgreSQL: raw feeds and row-level derived facts.
		transactions: pgstore.NewTransactionStore(pool),
		accounts:     pgstore.NewAccountStore(pool),
		fxRates:      pgstore.NewFxRateStore(pool),
		targets:      pgstore.NewBudgetTargetStore(pool),
		anomalies:    pgstore.NewAnomalyStore(pool),
		recurring:    pgstore.NewRecurringPatternStore(pool),
		forecasts:    pgstore.NewForecastStore(pool),
		variance:     pgstore.NewBudgetVarianceStore(pool),

		// ClickHouse: timeseries marts.
		cashflow: chstore.NewMonthlyCashflowStore(chConn),
		category: chstore.NewCategoryMonthlyStore(chConn),
		netWorth: chstore.NewNetWorthStore(chConn),
		windows:  chstore.NewWindowPointStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// Run starts ingestion and the analytics scheduler and blocks until the
// context is cancelled or a component fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		if err := s.runIngestion(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("ingestion: %w", err)
		}
	}()

	go func() {
		if err := s.runScheduler(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("analytics scheduler: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) runIngestion(ctx context.Context) error {
	feed := ingestion.NewFeed(ingestion.DefaultFeedConfig(s.feedEndpoint), s.log, s.metrics)
	defer feed.Close()

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:  feed,
		Store:   s.stores.transactions,
		Logger:  s.log,
		Metrics: s.metrics,
	})
	return runner.Run(ctx)
}

// runScheduler executes an analytics run immediately and then on every tick.
func (s *Server) runScheduler(ctx context.Context) error {
	s.log.Info().Dur("interval", s.runInterval).Msg("analytics scheduler started")

	s.runAnalytics(ctx)

	ticker := time.NewTicker(s.runInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runAnalytics(ctx)
		}
	}
}

func (s *Server) runAnalytics(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn().Msg("analytics run already in progress, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.lastRun = time.Now()
		s.runs++
		s.mu.Unlock()
	}()

	eng := engine.New(engine.Options{
		TransactionStore: s.stores.transactions,
		AccountStore:     s.stores.accounts,
		FxRateStore:      s.stores.fxRates,
		BudgetTargets:    s.stores.targets,
		AnomalyStore:     s.stores.anomalies,
		RecurringStore:   s.stores.recurring,
		ForecastStore:    s.stores.forecasts,
		VarianceStore:    s.stores.variance,
		CashflowStore:    s.stores.cashflow,
		CategoryStore:    s.stores.category,
		NetWorthStore:    s.stores.netWorth,
		WindowStore:      s.stores.windows,
		BaseCurrency:     s.baseCurrency,
		Logger:           s.log,
		Metrics:          s.metrics,
	})

	result, err := eng.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("analytics run failed")
		s.metrics.EngineRunsTotal.WithLabelValues("error").Inc()
		return
	}

	s.metrics.ForecastsProduced.Set(float64(result.ForecastsProduced))
	s.metrics.LastSuccessfulRun.SetToCurrentTime()

	s.mu.Lock()
	s.lastResult = result
	s.mu.Unlock()
}

func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	s.log.Info().Str("addr", addr).Msg("http server listening")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error().Err(err).Msg("http server failed")
	}
}

// StatusResponse is the JSON body of the /status endpoint.
type StatusResponse struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Runs       int               `json:"runs"`
	Running    bool              `json:"running"`
	LastRun    time.Time         `json:"last_run,omitempty"`
	LastResult *engine.RunResult `json:"last_result,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:     "running",
		Uptime:     time.Since(s.started).String(),
		Runs:       s.runs,
		Running:    s.running,
		LastRun:    s.lastRun,
		LastResult: s.lastResult,
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
