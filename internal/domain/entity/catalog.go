package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

// ServiceItem is a priced salon service (cut, braids, colour...)
type ServiceItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SalonID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"salon_id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	Reference       *string         `gorm:"size:100;index" json:"reference,omitempty"`
	Description     *string         `gorm:"type:text" json:"description,omitempty"`
	Price           decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"price"`
	DurationMinutes int             `gorm:"default:0" json:"duration_minutes"`
	Active          bool            `gorm:"default:true" json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new service
func (s *ServiceItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ServiceItem model
func (ServiceItem) TableName() string {
	return "services"
}

// Product is a stocked article. Stock is held in two pools: one sold to
// customers and one consumed by the salon itself.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SalonID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"salon_id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Reference     *string         `gorm:"size:100;index" json:"reference,omitempty"`
	Description   *string         `gorm:"type:text" json:"description,omitempty"`
	BuyingPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"buying_price"`
	SellingPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"selling_price"`
	StockForSale  int             `gorm:"column:stock_for_sale;not null;default:0" json:"stock_for_sale"`
	StockInternal int             `gorm:"column:stock_internal;not null;default:0" json:"stock_internal"`
	StockAlert    int             `gorm:"default:5" json:"stock_alert"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// Stock returns the quantity held in the given pool
func (p *Product) Stock(source enum.StockSource) int {
	if source == enum.StockSourceInternalUse {
		return p.StockInternal
	}
	return p.StockForSale
}

// IsLowStock reports whether either pool is at or under the alert threshold
func (p *Product) IsLowStock() bool {
	return p.StockForSale <= p.StockAlert || p.StockInternal <= p.StockAlert
}
