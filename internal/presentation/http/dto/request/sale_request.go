package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/pos"
)

// SaleLineRequest is one line of a submitted sale
type SaleLineRequest struct {
	ItemID      uuid.UUID         `json:"item_id" binding:"required"`
	Kind        enum.ItemKind     `json:"kind"`
	Quantity    int               `json:"quantity"`
	UnitPrice   *decimal.Decimal  `json:"unit_price"`
	Discount    decimal.Decimal   `json:"discount"`
	StockSource *enum.StockSource `json:"stock_source"`
}

// DiscountRequest is a global discount on the cart subtotal
type DiscountRequest struct {
	Kind   enum.DiscountKind `json:"kind"`
	Value  decimal.Decimal   `json:"value"`
	Reason string            `json:"reason" binding:"max=255"`
}

// PaymentRequest is one tender
type PaymentRequest struct {
	Method    enum.PaymentMethod `json:"method"`
	Amount    decimal.Decimal    `json:"amount"`
	Reference string             `json:"reference" binding:"max=100"`
}

// SaleRequest is a finished cart submitted for recording or quoting
type SaleRequest struct {
	CustomerID     *uuid.UUID        `json:"customer_id"`
	Lines          []SaleLineRequest `json:"lines" binding:"dive"`
	Discount       *DiscountRequest  `json:"discount"`
	PointsRedeemed int64             `json:"points_redeemed"`
	Payments       []PaymentRequest  `json:"payments" binding:"dive"`
	Notes          *string           `json:"notes"`
}

// SaleFilterRequest represents sale list filters. Dates are YYYY-MM-DD.
type SaleFilterRequest struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=completed cancelled"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	UserID     string `form:"user_id" binding:"omitempty,uuid"`
	From       string `form:"from"`
	To         string `form:"to"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// CancelSaleRequest carries the cancellation reason
type CancelSaleRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// EmailReceiptRequest sends a receipt; empty email means the customer's address
type EmailReceiptRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// ToPayments converts the tenders to pricing payments
func ToPayments(in []PaymentRequest) []pos.Payment {
	out := make([]pos.Payment, 0, len(in))
	for _, p := range in {
		out = append(out, pos.Payment{Method: p.Method, Amount: p.Amount, Reference: p.Reference})
	}
	return out
}

// ToDiscount converts an optional discount
func (d *DiscountRequest) ToDiscount() *pos.GlobalDiscount {
	if d == nil {
		return nil
	}
	return &pos.GlobalDiscount{Kind: d.Kind, Value: d.Value, Reason: d.Reason}
}
