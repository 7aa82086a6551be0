package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0ji3/my-trend-search/internal/api"
	"github.com/0ji3/my-trend-search/internal/config"
	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/ebay"
	"github.com/0ji3/my-trend-search/internal/scheduler"
	"github.com/0ji3/my-trend-search/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize database
	if err := database.Initialize(cfg.DBDriver, cfg.DBDSN); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Pick the marketplace provider. Mock mode serves generated listings so
	// the whole pipeline runs without eBay credentials.
	var provider ebay.Provider
	if cfg.EbayMockMode {
		log.Println("Using mock eBay provider")
		provider = ebay.NewMockProvider()
	} else {
		log.Printf("Using eBay Trading API (%s)", cfg.EbayEnvironment)
		provider = ebay.NewClient(cfg.TradingAPIURL(), cfg.EbayAuthToken)
	}

	// Initialize services
	history := services.NewMetricHistoryService()
	scorer := services.NewTrendScorer(history)
	analyzer := services.NewTrendAnalyzer(scorer, cfg.TrendTopN, cfg.TrendWorkerCount)
	syncService := services.NewListingSyncService(provider, cfg.SyncBatchSize, cfg.MaxItemsPerAccount)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the nightly sync and analysis jobs
	sched := scheduler.New(ctx, syncService, analyzer)
	if err := sched.Register(cfg.SyncCron, cfg.AnalysisCron); err != nil {
		log.Fatalf("Failed to register scheduled jobs: %v", err)
	}
	sched.Start()

	// Setup router
	router := api.SetupRouter(analyzer, syncService, history, sched, cfg.CORSOrigins)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context so in-flight jobs stop, then wait for the scheduler
	cancel()
	sched.Stop()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
