package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TrendResult is the scoring engine's output for one listing on one analysis
// date. Growth rates are day-over-day percentages, the averages cover the
// trailing 7-day window, and the score is the weighted composite used for
// ranking. Rank and IsTrending stay unset until the ranking pass has seen
// every same-date result for the account; a result without a rank must not
// be treated as trending.
type TrendResult struct {
	ID              string          `json:"id" gorm:"primaryKey;size:36"`
	ListingID       string          `json:"listing_id" gorm:"size:36;not null;uniqueIndex:idx_trend_results_listing_date"`
	AnalysisDate    time.Time       `json:"analysis_date" gorm:"type:date;not null;uniqueIndex:idx_trend_results_listing_date;index:idx_trend_results_date_score;index:idx_trend_results_date_trending"`
	ViewGrowthRate  decimal.Decimal `json:"view_growth_rate" gorm:"type:decimal(8,2)"`
	WatchGrowthRate decimal.Decimal `json:"watch_growth_rate" gorm:"type:decimal(8,2)"`
	View7DayAvg     decimal.Decimal `json:"view_7day_avg" gorm:"column:view_7day_avg;type:decimal(10,2)"`
	Watch7DayAvg    decimal.Decimal `json:"watch_7day_avg" gorm:"column:watch_7day_avg;type:decimal(10,2)"`
	TrendScore      decimal.Decimal `json:"trend_score" gorm:"type:decimal(10,2);not null;index:idx_trend_results_date_score"`
	Rank            *int            `json:"rank" gorm:"index"`
	IsTrending      bool            `json:"is_trending" gorm:"not null;default:false;index:idx_trend_results_date_trending"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (r *TrendResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TrendResultWithListing joins a result with the listing fields the
// dashboard renders next to it.
type TrendResultWithListing struct {
	TrendResult
	ItemID       string           `json:"item_id"`
	Title        string           `json:"title"`
	Price        *decimal.Decimal `json:"price"`
	Currency     string           `json:"currency"`
	ImageURL     string           `json:"image_url"`
	CategoryName string           `json:"category_name"`
}

// TopTrendingResponse is the API response for the top-N query.
type TopTrendingResponse struct {
	AnalysisDate string                   `json:"analysis_date"`
	TotalCount   int                      `json:"total_count"`
	Trends       []TrendResultWithListing `json:"trends"`
}

// TrendHistoryResponse is the API response for a listing's trend history.
type TrendHistoryResponse struct {
	ListingID string        `json:"listing_id"`
	ItemID    string        `json:"item_id"`
	Title     string        `json:"title"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	History   []TrendResult `json:"history"`
}

// AnalyzeTriggerRequest asks for a trend analysis run. An empty AccountID
// means every active account; an empty Date means today.
type AnalyzeTriggerRequest struct {
	AccountID string `json:"account_id"`
	Date      string `json:"date"` // YYYY-MM-DD
}
