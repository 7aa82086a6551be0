package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/ebay"
	"github.com/0ji3/my-trend-search/internal/metrics"
	"github.com/0ji3/my-trend-search/internal/models"
)

// ListingSyncService pulls each seller account's active listings from the
// marketplace and records one DailyMetric snapshot per listing per day.
// Re-syncing the same day overwrites that day's snapshot instead of adding
// rows, so the per-day uniqueness the scoring window relies on holds.
type ListingSyncService struct {
	provider ebay.Provider
	pageSize int
	maxItems int

	// syncedToday remembers account/date pairs already fully synced so
	// repeated triggers within one day skip the API round trips.
	syncedToday *lru.Cache[string, bool]
}

// SyncResult summarizes one account's sync run.
type SyncResult struct {
	AccountID   string     `json:"account_id"`
	ItemsSynced int        `json:"items_synced"`
	ItemsFailed int        `json:"items_failed"`
	APICalls    int        `json:"api_calls"`
	Cached      bool       `json:"cached"`
	SyncTime    *time.Time `json:"sync_time"`
	Errors      []string   `json:"errors,omitempty"`
}

// NewListingSyncService creates a sync service backed by the given
// marketplace provider.
func NewListingSyncService(provider ebay.Provider, pageSize, maxItems int) *ListingSyncService {
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 200
	}
	if maxItems <= 0 {
		maxItems = 2000
	}
	cache, err := lru.New[string, bool](1024)
	if err != nil {
		log.Printf("ListingSync: failed to create synced-today cache: %v", err)
	}
	return &ListingSyncService{
		provider:    provider,
		pageSize:    pageSize,
		maxItems:    maxItems,
		syncedToday: cache,
	}
}

// SyncAccount refreshes one account's listings and records today's metric
// snapshots. Individual item failures are counted and the run continues;
// only listing enumeration errors are returned.
func (s *ListingSyncService) SyncAccount(ctx context.Context, account *models.SellerAccount) (*SyncResult, error) {
	result := &SyncResult{AccountID: account.ID}
	cacheKey := syncCacheKey(account.ID, time.Now())

	if s.syncedToday != nil {
		if _, ok := s.syncedToday.Get(cacheKey); ok {
			log.Printf("ListingSync: account %s already synced today, skipping", account.ID)
			result.Cached = true
			result.SyncTime = account.LastSyncAt
			return result, nil
		}
	}

	start := time.Now()
	log.Printf("ListingSync: starting sync for account %s (user %s)", account.ID, account.EbayUserID)

	summaries, apiCalls, err := s.fetchAllActive(ctx)
	result.APICalls += apiCalls
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
		s.writeSyncLog(account.ID, result, models.SyncStatusFailed, time.Since(start))
		return result, fmt.Errorf("failed to enumerate listings for account %s: %w", account.ID, err)
	}
	log.Printf("ListingSync: found %d active items for account %s", len(summaries), account.ID)

	for _, summary := range summaries {
		if err := ctx.Err(); err != nil {
			s.writeSyncLog(account.ID, result, models.SyncStatusPartial, time.Since(start))
			return result, err
		}

		item, err := s.provider.GetItem(ctx, summary.ItemID)
		result.APICalls++
		if err != nil {
			result.ItemsFailed++
			result.Errors = appendBounded(result.Errors,
				fmt.Sprintf("fetch item %s: %v", summary.ItemID, err))
			log.Printf("ListingSync: failed to fetch item %s: %v", summary.ItemID, err)
			continue
		}

		if err := s.recordItem(account, item); err != nil {
			result.ItemsFailed++
			result.Errors = appendBounded(result.Errors,
				fmt.Sprintf("record item %s: %v", summary.ItemID, err))
			log.Printf("ListingSync: failed to record item %s: %v", summary.ItemID, err)
			continue
		}
		result.ItemsSynced++
	}

	now := time.Now()
	result.SyncTime = &now
	if err := database.GetDB().Model(account).Update("last_sync_at", now).Error; err != nil {
		log.Printf("ListingSync: failed to update last_sync_at for account %s: %v", account.ID, err)
	}

	status := models.SyncStatusSuccess
	if result.ItemsFailed > 0 {
		status = models.SyncStatusPartial
	}
	s.writeSyncLog(account.ID, result, status, time.Since(start))

	if s.syncedToday != nil {
		s.syncedToday.Add(cacheKey, true)
	}

	metrics.SyncRunsTotal.WithLabelValues(status).Inc()
	metrics.SyncListingsTotal.Add(float64(result.ItemsSynced))
	metrics.SyncFailuresTotal.Add(float64(result.ItemsFailed))
	metrics.SyncDuration.Observe(time.Since(start).Seconds())

	log.Printf("ListingSync: account %s done: %d synced, %d failed (%.1fs)",
		account.ID, result.ItemsSynced, result.ItemsFailed, time.Since(start).Seconds())
	return result, nil
}

// SyncAllAccounts syncs every active seller account. A failing account is
// logged and skipped.
func (s *ListingSyncService) SyncAllAccounts(ctx context.Context) ([]SyncResult, error) {
	db := database.GetDB()

	var accounts []models.SellerAccount
	if err := db.Where("is_active = ?", true).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to enumerate active accounts: %w", err)
	}

	log.Printf("ListingSync: syncing %d active accounts", len(accounts))
	results := make([]SyncResult, 0, len(accounts))
	for i := range accounts {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.SyncAccount(ctx, &accounts[i])
		if err != nil {
			log.Printf("ListingSync: account %s failed: %v", accounts[i].ID, err)
		}
		if result != nil {
			results = append(results, *result)
		}
	}

	total := 0
	for i := range results {
		total += results[i].ItemsSynced
	}
	log.Printf("ListingSync: all accounts done, %d items synced", total)
	metrics.UpdateRegistrySizes(db)
	return results, nil
}

// fetchAllActive pages through the seller's active listings, bounded by
// maxItems.
func (s *ListingSyncService) fetchAllActive(ctx context.Context) ([]ebay.ItemSummary, int, error) {
	var all []ebay.ItemSummary
	apiCalls := 0

	for page := 1; ; page++ {
		listings, err := s.provider.GetActiveListings(ctx, page, s.pageSize)
		apiCalls++
		if err != nil {
			return nil, apiCalls, err
		}
		all = append(all, listings.Items...)

		if len(all) >= s.maxItems {
			all = all[:s.maxItems]
			log.Printf("ListingSync: hit max items cap (%d), not fetching further pages", s.maxItems)
			break
		}
		if page >= listings.TotalPages {
			break
		}
	}
	return all, apiCalls, nil
}

// recordItem upserts the listing row and today's metric snapshot.
func (s *ListingSyncService) recordItem(account *models.SellerAccount, item *ebay.Item) error {
	return s.RecordSnapshot(account, item, time.Now())
}

// RecordSnapshot upserts the listing row and the metric snapshot for the
// given day. A re-sync on the same day overwrites the counts in place,
// keeping the one-row-per-day contract the scoring windows rely on.
func (s *ListingSyncService) RecordSnapshot(account *models.SellerAccount, item *ebay.Item, day time.Time) error {
	db := database.GetDB()
	price := item.CurrentPrice

	listing := models.Listing{AccountID: account.ID, ItemID: item.ItemID}
	err := db.Where("account_id = ? AND item_id = ?", account.ID, item.ItemID).
		Assign(map[string]interface{}{
			"title":          item.Title,
			"price":          &price,
			"currency":       item.Currency,
			"category_id":    item.CategoryID,
			"category_name":  item.CategoryName,
			"image_url":      item.ImageURL,
			"listing_type":   item.ListingType,
			"listing_status": item.ListingStatus,
			"quantity":       item.Quantity,
			"quantity_sold":  item.QuantitySold,
			"is_active":      item.ListingStatus == "Active",
			"start_time":     item.StartTime,
			"end_time":       item.EndTime,
		}).
		FirstOrCreate(&listing).Error
	if err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}

	date := DateOnly(day)
	metric := models.DailyMetric{ListingID: listing.ID, RecordedDate: date}
	err = db.Where("listing_id = ? AND recorded_date = ?", listing.ID, date).
		Assign(map[string]interface{}{
			"view_count":    item.ViewCount,
			"watch_count":   item.WatchCount,
			"bid_count":     item.BidCount,
			"current_price": &price,
		}).
		FirstOrCreate(&metric).Error
	if err != nil {
		return fmt.Errorf("upsert daily metric: %w", err)
	}
	return nil
}

// writeSyncLog records the run outcome for the sync history endpoints.
func (s *ListingSyncService) writeSyncLog(accountID string, result *SyncResult, status string, elapsed time.Duration) {
	errsJSON := "[]"
	if len(result.Errors) > 0 {
		if data, err := json.Marshal(result.Errors); err == nil {
			errsJSON = string(data)
		}
	}

	entry := models.SyncLog{
		AccountID:       accountID,
		SyncType:        models.SyncTypeListings,
		Status:          status,
		ItemsSynced:     result.ItemsSynced,
		ItemsFailed:     result.ItemsFailed,
		DurationSeconds: elapsed.Seconds(),
		APICalls:        result.APICalls,
		Errors:          errsJSON,
		SyncedAt:        time.Now(),
	}
	if err := database.GetDB().Create(&entry).Error; err != nil {
		log.Printf("ListingSync: failed to write sync log for account %s: %v", accountID, err)
	}
}

// ResetSyncedToday clears the synced-today cache entry for an account so a
// manual trigger can force a fresh pull.
func (s *ListingSyncService) ResetSyncedToday(accountID string) {
	if s.syncedToday != nil {
		s.syncedToday.Remove(syncCacheKey(accountID, time.Now()))
	}
}

func syncCacheKey(accountID string, t time.Time) string {
	return accountID + ":" + DateOnly(t).Format("2006-01-02")
}
