package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Salon is the tenant: every customer, catalog item and sale belongs to one
type Salon struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	OwnerID   *uuid.UUID     `gorm:"type:uuid;index" json:"owner_id,omitempty"`
	Address   *string        `gorm:"type:text" json:"address,omitempty"`
	Phone     *string        `gorm:"size:50" json:"phone,omitempty"`
	Email     *string        `gorm:"size:255" json:"email,omitempty"`
	Settings  SalonSettings  `gorm:"type:jsonb;serializer:json" json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new salon
func (s *Salon) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Salon model
func (Salon) TableName() string {
	return "salons"
}

// SalonSettings holds the per-salon values used on receipts and invoices
type SalonSettings struct {
	Currency      string `json:"currency,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
	InvoicePrefix string `json:"invoice_prefix,omitempty"`
	ReceiptFooter string `json:"receipt_footer,omitempty"`
	TaxID         string `json:"tax_id,omitempty"`
}

// DefaultSalonSettings returns default settings for new salons
func DefaultSalonSettings() SalonSettings {
	return SalonSettings{
		Currency:      "XOF",
		Timezone:      "Africa/Dakar",
		InvoicePrefix: "VTE-",
		ReceiptFooter: "Merci de votre visite !",
	}
}
