package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/metrics"
	"github.com/0ji3/my-trend-search/internal/models"
)

// maxReportedErrors caps the error list carried in analysis summaries so a
// large broken account cannot bloat responses or sync logs.
const maxReportedErrors = 10

// AccountAnalysis summarizes one account's scoring run.
type AccountAnalysis struct {
	AccountID        string   `json:"account_id"`
	AnalysisDate     string   `json:"analysis_date"`
	ListingsAnalyzed int      `json:"listings_analyzed"`
	ListingsSkipped  int      `json:"listings_skipped"`
	ListingsFailed   int      `json:"listings_failed"`
	Errors           []string `json:"errors,omitempty"`
}

// BatchAnalysis summarizes an analysis run across every active account.
type BatchAnalysis struct {
	AnalysisDate      string   `json:"analysis_date"`
	AccountsProcessed int      `json:"accounts_processed"`
	ListingsAnalyzed  int      `json:"listings_analyzed"`
	AccountIDs        []string `json:"account_ids"`
	Errors            []string `json:"errors,omitempty"`
}

// TrendAnalyzer coordinates trend scoring and ranking. Scoring is a
// read-only per-listing computation and runs on a bounded worker pool;
// results are then persisted in one transaction and ranked in a second, so
// ranks are always assigned against the complete population for the date.
type TrendAnalyzer struct {
	scorer  *TrendScorer
	topN    int
	workers int
}

// NewTrendAnalyzer creates an analyzer. topN controls how many ranked
// listings are flagged trending; workers bounds phase-1 parallelism.
func NewTrendAnalyzer(scorer *TrendScorer, topN, workers int) *TrendAnalyzer {
	if topN <= 0 {
		topN = 10
	}
	if workers <= 0 {
		workers = 4
	}
	return &TrendAnalyzer{scorer: scorer, topN: topN, workers: workers}
}

type scoreOutcome struct {
	listingID string
	score     *TrendScore
	err       error
}

// AnalyzeAccount scores every active listing of one account for the given
// date, persists the results, then ranks them and flags the top N as
// trending. Listings without a snapshot for the date are skipped, never
// fatal. Returns an error only when the account's listings cannot be
// enumerated, persistence fails wholesale, or the ranking pass fails.
func (a *TrendAnalyzer) AnalyzeAccount(ctx context.Context, accountID string, analysisDate time.Time) (*AccountAnalysis, error) {
	day := DateOnly(analysisDate)
	start := time.Now()
	db := database.GetDB()

	var listings []models.Listing
	if err := db.Select("id").
		Where("account_id = ? AND is_active = ?", accountID, true).
		Find(&listings).Error; err != nil {
		metrics.AnalysisRunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to enumerate listings for account %s: %w", accountID, err)
	}

	summary := &AccountAnalysis{
		AccountID:    accountID,
		AnalysisDate: day.Format("2006-01-02"),
	}
	log.Printf("TrendAnalyzer: analyzing %d listings for account %s on %s",
		len(listings), accountID, summary.AnalysisDate)

	// Phase 1: score all listings. Read-only per listing, so the pool can
	// fan out freely; everything joins before any write happens.
	outcomes := a.scoreAll(ctx, listings, day)

	var scored []scoreOutcome
	for _, out := range outcomes {
		switch {
		case out.err == nil:
			scored = append(scored, out)
		case out.err == ErrNoMetricData:
			summary.ListingsSkipped++
			metrics.AnalysisListingsSkipped.Inc()
		default:
			summary.ListingsFailed++
			summary.Errors = appendBounded(summary.Errors,
				fmt.Sprintf("score listing %s: %v", out.listingID, out.err))
			log.Printf("TrendAnalyzer: failed to score listing %s: %v", out.listingID, out.err)
		}
	}

	// Persist phase 1 in a single transaction. A failed upsert inside the
	// batch is tolerated; the run only aborts when nothing can be written
	// at all, which means persistence itself is down.
	if len(scored) > 0 {
		persisted := 0
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, out := range scored {
				if err := upsertTrendResult(tx, out.listingID, day, out.score); err != nil {
					summary.ListingsFailed++
					summary.Errors = appendBounded(summary.Errors,
						fmt.Sprintf("persist listing %s: %v", out.listingID, err))
					log.Printf("TrendAnalyzer: failed to persist result for listing %s: %v", out.listingID, err)
					continue
				}
				persisted++
			}
			if persisted == 0 {
				return fmt.Errorf("all %d trend result upserts failed", len(scored))
			}
			return nil
		})
		if err != nil {
			metrics.AnalysisRunsTotal.WithLabelValues("failed").Inc()
			return nil, err
		}
		summary.ListingsAnalyzed = persisted
		metrics.AnalysisListingsScored.Add(float64(persisted))
	}

	// Phase 2: rank everything persisted for this account and date. Runs
	// even when nothing new was scored, so reruns still repair rankings.
	if err := a.rankResults(accountID, day); err != nil {
		metrics.AnalysisRunsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("ranking failed for account %s: %w", accountID, err)
	}

	status := "success"
	if summary.ListingsFailed > 0 {
		status = "partial"
	}
	metrics.AnalysisRunsTotal.WithLabelValues(status).Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	log.Printf("TrendAnalyzer: account %s done: %d analyzed, %d skipped, %d failed",
		accountID, summary.ListingsAnalyzed, summary.ListingsSkipped, summary.ListingsFailed)
	return summary, nil
}

// scoreAll fans listing scoring out over the worker pool and collects every
// outcome. All workers are joined before it returns.
func (a *TrendAnalyzer) scoreAll(ctx context.Context, listings []models.Listing, day time.Time) []scoreOutcome {
	if len(listings) == 0 {
		return nil
	}

	jobs := make(chan string, len(listings))
	results := make(chan scoreOutcome, len(listings))

	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := ctx.Err(); err != nil {
					results <- scoreOutcome{listingID: id, err: err}
					continue
				}
				score, err := a.scorer.Score(id, day)
				results <- scoreOutcome{listingID: id, score: score, err: err}
			}
		}()
	}

	for i := range listings {
		jobs <- listings[i].ID
	}
	close(jobs)
	wg.Wait()
	close(results)

	outcomes := make([]scoreOutcome, 0, len(listings))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// upsertTrendResult writes one listing's scores keyed by (listing, date).
// Rank and is_trending are deliberately reset: they describe the previous
// ranking pass and are stale until phase 2 recomputes them.
func upsertTrendResult(tx *gorm.DB, listingID string, day time.Time, score *TrendScore) error {
	result := models.TrendResult{
		ListingID:       listingID,
		AnalysisDate:    day,
		ViewGrowthRate:  score.ViewGrowthRate,
		WatchGrowthRate: score.WatchGrowthRate,
		View7DayAvg:     score.View7DayAvg,
		Watch7DayAvg:    score.Watch7DayAvg,
		TrendScore:      score.TrendScore,
		Rank:            nil,
		IsTrending:      false,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}, {Name: "analysis_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"view_growth_rate", "watch_growth_rate",
			"view_7day_avg", "watch_7day_avg",
			"trend_score", "rank", "is_trending", "updated_at",
		}),
	}).Create(&result).Error
}

// rankResults reads back every result for the account and date, sorts them,
// and assigns dense 1-based ranks with the top N flagged trending. Runs in
// its own transaction after all phase-1 writes are committed.
func (a *TrendAnalyzer) rankResults(accountID string, day time.Time) error {
	db := database.GetDB()
	trendingCount := 0

	err := db.Transaction(func(tx *gorm.DB) error {
		var results []models.TrendResult
		if err := tx.Model(&models.TrendResult{}).
			Select("trend_results.*").
			Joins("JOIN listings ON listings.id = trend_results.listing_id").
			Where("listings.account_id = ? AND trend_results.analysis_date = ?", accountID, day).
			Find(&results).Error; err != nil {
			return err
		}

		for _, update := range rankedUpdates(results, a.topN) {
			if update.Trending {
				trendingCount++
			}
			if err := tx.Model(&models.TrendResult{}).
				Where("id = ?", update.ResultID).
				Updates(map[string]interface{}{
					"rank":        update.Rank,
					"is_trending": update.Trending,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.TrendingListings.Set(float64(trendingCount))
	return nil
}

type rankUpdate struct {
	ResultID string
	Rank     int
	Trending bool
}

// rankedUpdates orders results by trend score descending and assigns dense
// 1-based ranks, flagging the top n as trending. Equal scores fall back to
// listing ID ascending, so tied listings get consecutive distinct ranks and
// repeated runs over unchanged data assign identical ones.
func rankedUpdates(results []models.TrendResult, topN int) []rankUpdate {
	sort.Slice(results, func(i, j int) bool {
		if c := results[i].TrendScore.Cmp(results[j].TrendScore); c != 0 {
			return c > 0
		}
		return results[i].ListingID < results[j].ListingID
	})

	updates := make([]rankUpdate, len(results))
	for i := range results {
		rank := i + 1
		updates[i] = rankUpdate{
			ResultID: results[i].ID,
			Rank:     rank,
			Trending: rank <= topN,
		}
	}
	return updates
}

// AnalyzeAllAccounts runs AnalyzeAccount for every active seller account.
// A failing account is logged and skipped; only account enumeration itself
// is fatal.
func (a *TrendAnalyzer) AnalyzeAllAccounts(ctx context.Context, analysisDate time.Time) (*BatchAnalysis, error) {
	day := DateOnly(analysisDate)
	db := database.GetDB()

	var accounts []models.SellerAccount
	if err := db.Where("is_active = ?", true).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to enumerate active accounts: %w", err)
	}

	batch := &BatchAnalysis{AnalysisDate: day.Format("2006-01-02")}
	log.Printf("TrendAnalyzer: starting analysis for %d accounts on %s", len(accounts), batch.AnalysisDate)

	for i := range accounts {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		result, err := a.AnalyzeAccount(ctx, accounts[i].ID, day)
		if err != nil {
			batch.Errors = appendBounded(batch.Errors,
				fmt.Sprintf("account %s: %v", accounts[i].ID, err))
			log.Printf("TrendAnalyzer: account %s failed: %v", accounts[i].ID, err)
			continue
		}
		batch.AccountsProcessed++
		batch.ListingsAnalyzed += result.ListingsAnalyzed
		batch.AccountIDs = append(batch.AccountIDs, accounts[i].ID)
	}

	log.Printf("TrendAnalyzer: batch done: %d accounts, %d listings analyzed",
		batch.AccountsProcessed, batch.ListingsAnalyzed)
	return batch, nil
}

// GetTopTrending returns the trending listings for an account and date,
// rank ascending, joined with listing display fields.
func (a *TrendAnalyzer) GetTopTrending(accountID string, analysisDate time.Time, limit int) ([]models.TrendResultWithListing, error) {
	if limit <= 0 {
		limit = a.topN
	}
	day := DateOnly(analysisDate)
	db := database.GetDB()

	trends := make([]models.TrendResultWithListing, 0)
	err := db.Model(&models.TrendResult{}).
		Select("trend_results.*, listings.item_id, listings.title, listings.price, listings.currency, listings.image_url, listings.category_name").
		Joins("JOIN listings ON listings.id = trend_results.listing_id").
		Where("listings.account_id = ? AND trend_results.analysis_date = ? AND trend_results.is_trending = ?",
			accountID, day, true).
		Order("trend_results.rank ASC").
		Limit(limit).
		Scan(&trends).Error
	if err != nil {
		return nil, err
	}
	return trends, nil
}

// ListingTrendHistory returns a listing's trend results between start and
// end inclusive, oldest first.
func (a *TrendAnalyzer) ListingTrendHistory(listingID string, start, end time.Time) ([]models.TrendResult, error) {
	db := database.GetDB()

	results := make([]models.TrendResult, 0)
	err := db.Where("listing_id = ? AND analysis_date >= ? AND analysis_date <= ?",
		listingID, DateOnly(start), DateOnly(end)).
		Order("analysis_date ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AvailableDates lists the analysis dates that have results, newest first.
// An empty accountID means dates from any account.
func (a *TrendAnalyzer) AvailableDates(accountID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 30
	}
	db := database.GetDB()

	query := db.Model(&models.TrendResult{})
	if accountID != "" {
		query = query.
			Joins("JOIN listings ON listings.id = trend_results.listing_id").
			Where("listings.account_id = ?", accountID)
	}

	var dates []time.Time
	err := query.Distinct().
		Order("trend_results.analysis_date DESC").
		Limit(limit).
		Pluck("trend_results.analysis_date", &dates).Error
	if err != nil {
		return nil, err
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, DateOnly(d).Format("2006-01-02"))
	}
	return formatted, nil
}

// appendBounded appends msg unless the list already holds maxReportedErrors
// entries.
func appendBounded(errs []string, msg string) []string {
	if len(errs) >= maxReportedErrors {
		return errs
	}
	return append(errs, msg)
}
