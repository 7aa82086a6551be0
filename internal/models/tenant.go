package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantInactive  TenantStatus = "inactive"
	TenantSuspended TenantStatus = "suspended"
)

// Tenant is a customer of the service. Each tenant can connect multiple
// seller accounts, and all listing data hangs off those accounts.
type Tenant struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	Email        string       `json:"email" gorm:"uniqueIndex;size:255;not null"`
	BusinessName string       `json:"business_name" gorm:"size:255"`
	Timezone     string       `json:"timezone" gorm:"size:50;default:'UTC'"`
	Status       TenantStatus `json:"status" gorm:"size:20;not null;default:'active'"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Accounts []SellerAccount `json:"accounts,omitempty" gorm:"foreignKey:TenantID"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

type CreateTenantRequest struct {
	Email        string `json:"email" binding:"required,email"`
	BusinessName string `json:"business_name"`
	Timezone     string `json:"timezone"`
}
