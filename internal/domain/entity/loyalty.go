package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

// LoyaltyEntry records one movement on a customer's points balance.
// Points is signed: credits are positive, debits negative.
type LoyaltyEntry struct {
	ID           uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	SalonID      uuid.UUID             `gorm:"type:uuid;not null;index" json:"salon_id"`
	CustomerID   uuid.UUID             `gorm:"type:uuid;not null;index" json:"customer_id"`
	SaleID       *uuid.UUID            `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	Type         enum.LoyaltyEntryType `gorm:"not null" json:"type"`
	Points       int64                 `gorm:"not null" json:"points"`
	BalanceAfter int64                 `gorm:"not null" json:"balance_after"`
	Note         *string               `gorm:"size:255" json:"note,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new entry
func (e *LoyaltyEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LoyaltyEntry model
func (LoyaltyEntry) TableName() string {
	return "loyalty_entries"
}
