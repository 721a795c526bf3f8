package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyKey stores the response of a recorded sale so a terminal
// retrying after a dropped connection gets the same sale back instead of
// charging the customer twice. Keys are unique per salon and cashier.
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SalonID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_idempotency_salon_user_key;not null"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_idempotency_salon_user_key;not null"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_salon_user_key;size:255;not null"`
	Endpoint     string    `gorm:"size:255;not null"` // e.g. "POST /api/v1/sales"
	RequestHash  string    `gorm:"size:64"`           // SHA256 of the request body
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// BeforeCreate generates a UUID before creating a new key
func (i *IdempotencyKey) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired reports whether the key may be reused for a new sale
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Matches reports whether a retry targets the same endpoint with the same body
func (i *IdempotencyKey) Matches(endpoint, requestHash string) bool {
	return i.Endpoint == endpoint && i.RequestHash == requestHash
}
