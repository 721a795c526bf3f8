package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

// Sale is a completed POS transaction
type Sale struct {
	ID                   uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SalonID              uuid.UUID          `gorm:"type:uuid;not null;index" json:"salon_id"`
	UserID               uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID           *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	InvoiceNo            string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	SaleDate             time.Time          `gorm:"not null;index" json:"sale_date"`
	Status               enum.SaleStatus    `gorm:"default:0;index" json:"status"`
	Subtotal             decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"subtotal"`
	LineDiscountTotal    decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"line_discount_total"`
	DiscountKind         *enum.DiscountKind `json:"discount_kind,omitempty"`
	DiscountValue        decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"discount_value"`
	DiscountReason       *string            `gorm:"size:255" json:"discount_reason,omitempty"`
	GlobalDiscountAmount decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"global_discount_amount"`
	PointsRedeemed       int64              `gorm:"not null;default:0" json:"points_redeemed"`
	PointsDiscountAmount decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"points_discount_amount"`
	TotalDiscount        decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"total_discount"`
	GrandTotal           decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"grand_total"`
	PointsEarned         int64              `gorm:"not null;default:0" json:"points_earned"`
	TotalPaid            decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"total_paid"`
	ChangeOwed           decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"change_owed"`
	ItemCount            int                `gorm:"default:0" json:"item_count"`
	Notes                *string            `gorm:"type:text" json:"notes,omitempty"`
	CancelledAt          *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason         *string            `gorm:"size:255" json:"cancel_reason,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	DeletedAt            gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Lines    []SaleLine    `gorm:"foreignKey:SaleID" json:"lines,omitempty"`
	Payments []SalePayment `gorm:"foreignKey:SaleID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// IsCancelled reports whether the sale was cancelled
func (s *Sale) IsCancelled() bool {
	return s.Status == enum.SaleStatusCancelled
}

// SaleLine is one article of a sale, priced as it was at checkout
type SaleLine struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"sale_id"`
	Position    int               `gorm:"not null" json:"position"`
	ItemID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"item_id"`
	Kind        enum.ItemKind     `gorm:"not null" json:"kind"`
	Name        string            `gorm:"size:255;not null" json:"name"`
	Reference   *string           `gorm:"size:100" json:"reference,omitempty"`
	StockSource *enum.StockSource `json:"stock_source,omitempty"`
	Quantity    int               `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Discount    decimal.Decimal   `gorm:"type:numeric(14,2);not null;default:0" json:"discount"`
	Total       decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"total"`
	CreatedAt   time.Time         `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new sale line
func (l *SaleLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleLine model
func (SaleLine) TableName() string {
	return "sale_lines"
}

// SalePayment is one instalment of a sale's payment
type SalePayment struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"sale_id"`
	Method    enum.PaymentMethod `gorm:"not null;index" json:"method"`
	Amount    decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"amount"`
	Reference *string            `gorm:"size:255" json:"reference,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *SalePayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SalePayment model
func (SalePayment) TableName() string {
	return "sale_payments"
}
