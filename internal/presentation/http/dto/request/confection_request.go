package request

import (
	"time"

	"github.com/google/uuid"
)

// ComponentRequest is one raw material consumed by a run
type ComponentRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// ConfectionRequest describes a production run
type ConfectionRequest struct {
	ProductID  uuid.UUID          `json:"product_id" binding:"required"`
	Quantity   int                `json:"quantity"`
	Components []ComponentRequest `json:"components" binding:"dive"`
	ProducedAt *time.Time         `json:"produced_at"`
	Notes      *string            `json:"notes"`
}

// ConfectionFilterRequest represents confection list filters
type ConfectionFilterRequest struct {
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	From      string `form:"from"`
	To        string `form:"to"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// ReportRequest is a date range, both ends inclusive
type ReportRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}
