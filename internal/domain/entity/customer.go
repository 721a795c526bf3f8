package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer represents a salon client
type Customer struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SalonID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"salon_id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Email         *string        `gorm:"size:255" json:"email,omitempty"`
	Phone         *string        `gorm:"size:50;index" json:"phone,omitempty"`
	Address       *string        `gorm:"type:text" json:"address,omitempty"`
	Birthday      *time.Time     `gorm:"type:date" json:"birthday,omitempty"`
	Notes         *string        `gorm:"type:text" json:"notes,omitempty"`
	LoyaltyPoints int64          `gorm:"not null;default:0" json:"loyalty_points"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Salon Salon  `gorm:"foreignKey:SalonID" json:"-"`
	Sales []Sale `gorm:"foreignKey:CustomerID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
