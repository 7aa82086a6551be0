package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailyMetric is one day's engagement snapshot for a listing: cumulative
// view and watch counts plus the price at recording time. The sync job
// writes at most one row per (listing, date); a same-day re-sync overwrites
// the counts in place. The scoring engine relies on that uniqueness for its
// averaging windows.
type DailyMetric struct {
	ID           string           `json:"id" gorm:"primaryKey;size:36"`
	ListingID    string           `json:"listing_id" gorm:"size:36;not null;uniqueIndex:idx_daily_metrics_listing_date"`
	RecordedDate time.Time        `json:"recorded_date" gorm:"type:date;not null;uniqueIndex:idx_daily_metrics_listing_date;index"`
	ViewCount    int              `json:"view_count" gorm:"not null;default:0"`
	WatchCount   int              `json:"watch_count" gorm:"not null;default:0"`
	BidCount     int              `json:"bid_count" gorm:"not null;default:0"`
	CurrentPrice *decimal.Decimal `json:"current_price" gorm:"type:decimal(12,2)"`
	CreatedAt    time.Time        `json:"created_at"`
}

func (m *DailyMetric) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// MetricHistoryResponse is the API shape for a listing's snapshot series.
type MetricHistoryResponse struct {
	ListingID    string        `json:"listing_id"`
	ItemID       string        `json:"item_id"`
	Title        string        `json:"title"`
	StartDate    string        `json:"start_date"`
	EndDate      string        `json:"end_date"`
	Metrics      []DailyMetric `json:"metrics"`
	TotalMetrics int           `json:"total_metrics"`
}
