package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"

	SyncTypeListings = "listings"
)

// SyncLog records one sync run against the marketplace for one account.
// Errors keeps at most the first ten messages as a JSON array.
type SyncLog struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	AccountID       string    `json:"account_id" gorm:"size:36;not null;index:idx_sync_logs_account_type"`
	SyncType        string    `json:"sync_type" gorm:"size:50;not null;index:idx_sync_logs_account_type"`
	Status          string    `json:"status" gorm:"size:20;not null;index"`
	ItemsSynced     int       `json:"items_synced" gorm:"default:0"`
	ItemsFailed     int       `json:"items_failed" gorm:"default:0"`
	DurationSeconds float64   `json:"duration_seconds" gorm:"default:0"`
	APICalls        int       `json:"api_calls" gorm:"default:0"`
	Errors          string    `json:"errors" gorm:"type:text"`
	SyncedAt        time.Time `json:"synced_at" gorm:"index"`
}

func (s *SyncLog) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// SyncTriggerRequest asks for a manual listing sync. An empty AccountID
// means every active account.
type SyncTriggerRequest struct {
	AccountID string `json:"account_id"`
}
