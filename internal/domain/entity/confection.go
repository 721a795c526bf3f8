package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Confection is a production run: raw materials from the internal pool are
// turned into units of an output product added to the for-sale pool.
type Confection struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SalonID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"salon_id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	TotalCost    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_cost"`
	UnitCost     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_cost"`
	SellingPrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"selling_price"`
	Margin       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"margin"`
	MarginRate   decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"margin_rate"`
	ProducedAt   time.Time       `gorm:"not null;index" json:"produced_at"`
	Notes        *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Product    Product               `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Components []ConfectionComponent `gorm:"foreignKey:ConfectionID" json:"components,omitempty"`
}

// BeforeCreate generates a UUID before creating a new confection
func (c *Confection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Confection model
func (Confection) TableName() string {
	return "confections"
}

// ConfectionComponent is one raw material consumed by a confection
type ConfectionComponent struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ConfectionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"confection_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitCost     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_cost"`
	TotalCost    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_cost"`
}

// BeforeCreate generates a UUID before creating a new component
func (c *ConfectionComponent) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ConfectionComponent model
func (ConfectionComponent) TableName() string {
	return "confection_components"
}
