package request

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

// ServiceRequest creates or updates a salon service. Fields left out are unchanged on update.
type ServiceRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Reference       *string          `json:"reference" binding:"omitempty,max=100"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	DurationMinutes *int             `json:"duration_minutes" binding:"omitempty,min=0"`
	Active          *bool            `json:"active"`
}

// ProductRequest creates or updates a product. Stock fields are read on create only.
type ProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Reference     *string          `json:"reference" binding:"omitempty,max=100"`
	Description   *string          `json:"description"`
	BuyingPrice   *decimal.Decimal `json:"buying_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	StockForSale  *int             `json:"stock_for_sale" binding:"omitempty,min=0"`
	StockInternal *int             `json:"stock_internal" binding:"omitempty,min=0"`
	StockAlert    *int             `json:"stock_alert" binding:"omitempty,min=0"`
}

// RestockRequest adds received units to one stock pool
type RestockRequest struct {
	StockSource enum.StockSource `json:"stock_source"`
	Quantity    int              `json:"quantity" binding:"required,min=1"`
}

// CatalogFilterRequest represents catalog filter parameters
type CatalogFilterRequest struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	LowStock   bool   `form:"low_stock"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
