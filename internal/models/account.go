package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SellerAccount is one connected eBay seller account. A tenant can hold
// several (multi-user grant), each with its own listings and sync cycle.
type SellerAccount struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	TenantID      string     `json:"tenant_id" gorm:"size:36;not null;index"`
	EbayUserID    string     `json:"ebay_user_id" gorm:"uniqueIndex;size:255;not null"`
	Username      string     `json:"username" gorm:"size:255"`
	MarketplaceID string     `json:"marketplace_id" gorm:"size:50;default:'EBAY_US'"`
	IsActive      bool       `json:"is_active" gorm:"not null;default:true;index"`
	LastSyncAt    *time.Time `json:"last_sync_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Listings []Listing `json:"listings,omitempty" gorm:"foreignKey:AccountID"`
}

func (a *SellerAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

type CreateAccountRequest struct {
	TenantID      string `json:"tenant_id" binding:"required"`
	EbayUserID    string `json:"ebay_user_id" binding:"required"`
	Username      string `json:"username"`
	MarketplaceID string `json:"marketplace_id"`
}
