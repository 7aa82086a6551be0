// Package scheduler wires the daily sync and trend analysis jobs onto cron
// triggers. The nightly rhythm is sync first, analysis afterwards, so the
// analysis always sees the snapshots recorded the same night.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/0ji3/my-trend-search/internal/services"
)

// Scheduler manages the recurring background jobs.
type Scheduler struct {
	cron     *cron.Cron
	sync     *services.ListingSyncService
	analyzer *services.TrendAnalyzer
	ctx      context.Context

	// In-flight guards. Cron can fire while a slow run is still going;
	// overlapping runs for the same job are skipped, not queued.
	syncRunning     atomic.Bool
	analysisRunning atomic.Bool
}

// New creates a scheduler bound to ctx; jobs stop being useful once ctx is
// cancelled.
func New(ctx context.Context, syncService *services.ListingSyncService, analyzer *services.TrendAnalyzer) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sync:     syncService,
		analyzer: analyzer,
		ctx:      ctx,
	}
}

// Register adds the sync and analysis jobs with the given cron specs
// (six-field, with seconds).
func (s *Scheduler) Register(syncCron, analysisCron string) error {
	if _, err := s.cron.AddFunc(syncCron, s.runSync); err != nil {
		return fmt.Errorf("register sync job: %w", err)
	}
	if _, err := s.cron.AddFunc(analysisCron, func() { s.runAnalysis(time.Now()) }); err != nil {
		return fmt.Errorf("register analysis job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Scheduler: started")
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler: stopped")
}

// RunSyncNow triggers the sync job outside its schedule. Returns false when
// a run is already in flight.
func (s *Scheduler) RunSyncNow() bool {
	if s.syncRunning.Load() {
		return false
	}
	go s.runSync()
	return true
}

// RunAnalysisNow triggers the analysis job outside its schedule. Returns
// false when a run is already in flight.
func (s *Scheduler) RunAnalysisNow() bool {
	return s.RunAnalysisAt(time.Now())
}

// RunAnalysisAt triggers an analysis run for a specific date, used by the
// manual trigger endpoint to backfill a past day. Returns false when a run
// is already in flight.
func (s *Scheduler) RunAnalysisAt(day time.Time) bool {
	if s.analysisRunning.Load() {
		return false
	}
	go s.runAnalysis(day)
	return true
}

// Status reports which jobs are currently in flight.
type Status struct {
	SyncRunning     bool `json:"sync_running"`
	AnalysisRunning bool `json:"analysis_running"`
}

func (s *Scheduler) Status() Status {
	return Status{
		SyncRunning:     s.syncRunning.Load(),
		AnalysisRunning: s.analysisRunning.Load(),
	}
}

func (s *Scheduler) runSync() {
	if !s.syncRunning.CompareAndSwap(false, true) {
		log.Println("Scheduler: sync already running, skipping this trigger")
		return
	}
	defer s.syncRunning.Store(false)

	log.Println("Scheduler: nightly listing sync starting")
	results, err := s.sync.SyncAllAccounts(s.ctx)
	if err != nil {
		log.Printf("Scheduler: listing sync failed: %v", err)
		return
	}
	total := 0
	for i := range results {
		total += results[i].ItemsSynced
	}
	log.Printf("Scheduler: nightly listing sync done, %d accounts, %d items", len(results), total)
}

func (s *Scheduler) runAnalysis(day time.Time) {
	if !s.analysisRunning.CompareAndSwap(false, true) {
		log.Println("Scheduler: analysis already running, skipping this trigger")
		return
	}
	defer s.analysisRunning.Store(false)

	log.Printf("Scheduler: trend analysis starting for %s", day.Format("2006-01-02"))
	batch, err := s.analyzer.AnalyzeAllAccounts(s.ctx, day)
	if err != nil {
		log.Printf("Scheduler: trend analysis failed: %v", err)
		return
	}
	log.Printf("Scheduler: trend analysis done, %d accounts, %d listings",
		batch.AccountsProcessed, batch.ListingsAnalyzed)
}
