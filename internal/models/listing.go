package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ListingTypeFixedPrice = "FixedPriceItem"
	ListingTypeAuction    = "Auction"

	ListingStatusActive    = "Active"
	ListingStatusCompleted = "Completed"
	ListingStatusEnded     = "Ended"
)

// Listing is one item a seller has up on the marketplace, tracked over time.
// ItemID is the marketplace's identifier and is unique per account; our own
// UUID is the key everything else (metrics, trend results) references.
type Listing struct {
	ID            string           `json:"id" gorm:"primaryKey;size:36"`
	AccountID     string           `json:"account_id" gorm:"size:36;not null;uniqueIndex:idx_listings_account_item;index:idx_listings_account_active"`
	ItemID        string           `json:"item_id" gorm:"size:50;not null;uniqueIndex:idx_listings_account_item"`
	Title         string           `json:"title" gorm:"not null"`
	Price         *decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Currency      string           `json:"currency" gorm:"size:3;not null;default:'USD'"`
	CategoryID    string           `json:"category_id" gorm:"size:50;index"`
	CategoryName  string           `json:"category_name" gorm:"size:255"`
	IsActive      bool             `json:"is_active" gorm:"not null;default:true;index:idx_listings_account_active"`
	ImageURL      string           `json:"image_url"`
	ListingType   string           `json:"listing_type" gorm:"size:50"`
	ListingStatus string           `json:"listing_status" gorm:"size:50"`
	Quantity      int              `json:"quantity" gorm:"default:1"`
	QuantitySold  int              `json:"quantity_sold" gorm:"default:0"`
	StartTime     *time.Time       `json:"start_time"`
	EndTime       *time.Time       `json:"end_time"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	DailyMetrics []DailyMetric `json:"daily_metrics,omitempty" gorm:"foreignKey:ListingID"`
	TrendResults []TrendResult `json:"trend_results,omitempty" gorm:"foreignKey:ListingID"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// ListingsPage is the paginated listings response.
type ListingsPage struct {
	Listings []Listing `json:"listings"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
