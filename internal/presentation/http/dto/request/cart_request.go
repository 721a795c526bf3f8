package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

// AddCartItemRequest picks a catalog entry by reference, or by kind and item_id
type AddCartItemRequest struct {
	Reference   string            `json:"reference" binding:"omitempty,max=100"`
	Kind        enum.ItemKind     `json:"kind"`
	ItemID      uuid.UUID         `json:"item_id"`
	StockSource *enum.StockSource `json:"stock_source"`
}

// UpdateCartLineRequest changes a line; absent fields are left alone
type UpdateCartLineRequest struct {
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Discount  *decimal.Decimal `json:"discount"`
}

// SetPointsRequest sets the loyalty points to redeem
type SetPointsRequest struct {
	Points int64 `json:"points"`
}

// SetCustomerRequest attaches a customer; null detaches
type SetCustomerRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
}

// PaymentsRequest is a list of tenders to check against the cart
type PaymentsRequest struct {
	Payments []PaymentRequest `json:"payments" binding:"dive"`
}

// CheckoutRequest settles the cart
type CheckoutRequest struct {
	Payments []PaymentRequest `json:"payments" binding:"required,min=1,dive"`
	Notes    *string          `json:"notes"`
}
