// seed-demo-data populates the database with a demo tenant and seller
// account, backfills a run of daily metric snapshots from the mock
// marketplace provider, then runs a trend analysis and prints the top
// trending listings.
//
// Usage: go run ./cmd/seed-demo-data [-days=10] [-top=10]
//
// The backfill reuses the sync service's persistence path, so the seeded
// rows are identical in shape to what a nightly sync writes. Running it
// again is safe; snapshots are upserted per (listing, day).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/0ji3/my-trend-search/internal/config"
	"github.com/0ji3/my-trend-search/internal/database"
	"github.com/0ji3/my-trend-search/internal/ebay"
	"github.com/0ji3/my-trend-search/internal/models"
	"github.com/0ji3/my-trend-search/internal/services"
)

func main() {
	days := flag.Int("days", 10, "Days of metric history to backfill (minimum 2)")
	top := flag.Int("top", 10, "How many trending listings to mark and print")
	email := flag.String("email", "demo@example.com", "Demo tenant email")
	user := flag.String("user", "demo_seller", "Demo seller account eBay user ID")
	flag.Parse()

	if *days < 2 {
		log.Fatal("days must be at least 2; growth rates need a previous day")
	}

	cfg := config.Load()
	if err := database.Initialize(cfg.DBDriver, cfg.DBDSN); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	// Demo tenant and account, created once and reused on later runs.
	tenant := models.Tenant{
		Email:        *email,
		BusinessName: "Demo Seller Inc.",
		Timezone:     "UTC",
		Status:       models.TenantActive,
	}
	if err := db.Where("email = ?", *email).FirstOrCreate(&tenant).Error; err != nil {
		log.Fatalf("Failed to create demo tenant: %v", err)
	}

	account := models.SellerAccount{
		TenantID:      tenant.ID,
		EbayUserID:    *user,
		Username:      *user,
		MarketplaceID: "EBAY_US",
		IsActive:      true,
	}
	if err := db.Where("ebay_user_id = ?", *user).FirstOrCreate(&account).Error; err != nil {
		log.Fatalf("Failed to create demo account: %v", err)
	}
	log.Printf("Demo tenant %s, account %s", tenant.ID, account.ID)

	ctx := context.Background()
	provider := ebay.NewMockProvider()
	syncService := services.NewListingSyncService(provider, 200, 2000)

	// Enumerate the mock inventory once; item IDs are stable.
	var itemIDs []string
	for page := 1; ; page++ {
		listings, err := provider.GetActiveListings(ctx, page, 200)
		if err != nil {
			log.Fatalf("Failed to enumerate mock listings: %v", err)
		}
		for _, summary := range listings.Items {
			itemIDs = append(itemIDs, summary.ItemID)
		}
		if page >= listings.TotalPages {
			break
		}
	}

	// Backfill snapshots oldest day first, ending today.
	today := services.DateOnly(time.Now())
	written := 0
	for offset := *days - 1; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		for _, itemID := range itemIDs {
			item := provider.ItemAt(itemID, day)
			if err := syncService.RecordSnapshot(&account, item, day); err != nil {
				log.Fatalf("Failed to record %s on %s: %v", itemID, day.Format("2006-01-02"), err)
			}
			written++
		}
		fmt.Printf("  %s: %d snapshots\n", day.Format("2006-01-02"), len(itemIDs))
	}

	now := time.Now()
	if err := db.Model(&account).Update("last_sync_at", &now).Error; err != nil {
		log.Printf("Warning: failed to stamp last_sync_at: %v", err)
	}

	// Score and rank today's snapshots.
	history := services.NewMetricHistoryService()
	analyzer := services.NewTrendAnalyzer(services.NewTrendScorer(history), *top, 4)

	analysis, err := analyzer.AnalyzeAccount(ctx, account.ID, today)
	if err != nil {
		log.Fatalf("Trend analysis failed: %v", err)
	}

	trends, err := analyzer.GetTopTrending(account.ID, today, *top)
	if err != nil {
		log.Fatalf("Failed to fetch top trending: %v", err)
	}

	fmt.Println("")
	fmt.Println("=== Seed Summary ===")
	fmt.Printf("Snapshots written: %d (%d listings x %d days)\n", written, len(itemIDs), *days)
	fmt.Printf("Listings analyzed: %d\n", analysis.ListingsAnalyzed)
	fmt.Printf("Listings skipped:  %d\n", analysis.ListingsSkipped)
	fmt.Printf("Listings failed:   %d\n", analysis.ListingsFailed)

	fmt.Printf("\nTop %d trending for %s:\n", len(trends), today.Format("2006-01-02"))
	for _, trend := range trends {
		rank := 0
		if trend.Rank != nil {
			rank = *trend.Rank
		}
		title := trend.Title
		if len(title) > 48 {
			title = title[:48]
		}
		fmt.Printf("  #%-3d %-50s score=%-8s views=%s%% watches=%s%%\n",
			rank, title,
			trend.TrendScore.StringFixed(2),
			trend.ViewGrowthRate.StringFixed(2),
			trend.WatchGrowthRate.StringFixed(2))
	}

	fmt.Println("\nDone. Start the server and query /api/trends/top?account_id=" + account.ID)
}
