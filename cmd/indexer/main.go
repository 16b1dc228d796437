package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openlaunch/launchpad-indexer/pkg/chain"
	"github.com/openlaunch/launchpad-indexer/pkg/config"
	"github.com/openlaunch/launchpad-indexer/pkg/indexer"
	"github.com/openlaunch/launchpad-indexer/pkg/pgutil"
	"github.com/openlaunch/launchpad-indexer/pkg/scheduler"
	"github.com/openlaunch/launchpad-indexer/pkg/store"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
)

// storeRunner adapts the store's transactional API to the sweeper's TxRunner.
type storeRunner struct {
	db *store.Store
}

func (r storeRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, tx indexer.EntityTx) error) error {
	return r.db.RunInTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		return fn(ctx, tx)
	})
}

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Launchpad Indexer")

	// Initialize database
	bunDB, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	db := store.NewStore(bunDB)
	defer db.Close()

	// Initialize Ethereum client
	ethClient, err := chain.NewClient(&cfg.Ethereum, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Ethereum client", zap.Error(err))
	}
	defer ethClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metadata := indexer.NewMetadataFetcher(cfg.Indexer.MetadataTimeout, logger)
	runner := storeRunner{db: db}

	// One sweeper per tracked source contract
	for _, src := range cfg.Indexer.Sources {
		fetcher := indexer.NewFetcher(
			ethClient,
			common.HexToAddress(src.Address),
			chain.Topics(),
			cfg.Indexer.FetchConcurrency,
		)
		processor := indexer.NewProcessor(src.Address, cfg.Indexer.TokenDecimals, ethClient, metadata, logger)
		sweeper := indexer.NewSweeper(src, &cfg.Indexer, ethClient, fetcher, processor, runner, logger)

		go func() {
			if err := sweeper.Run(ctx); err != nil {
				// The transaction already rolled back; committing past an
				// inconsistency would corrupt the materialized state.
				logger.Fatal("Indexer halted on inconsistent state", zap.Error(err))
			}
		}()
	}

	// Competition scheduler
	if cfg.Competition.Enabled {
		sched := scheduler.New(&cfg.Competition, ethClient, db.Reader(), logger)
		go sched.Run(ctx)
	}

	// Setup HTTP server for health and metrics
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint (liveness)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness endpoint - requires a live database connection
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := bunDB.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT_READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	// Metrics endpoint
	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Start HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("address", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received, gracefully shutting down...")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Indexer stopped")
}
