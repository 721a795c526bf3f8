package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations
type SaleRepository interface {
	// Create stores the sale together with its lines and payments
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Sale, error)
	// GetWithDetails loads lines, payments, customer and cashier
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
	// MarkCancelled flips a completed sale to cancelled. It returns false when
	// the sale was not in the completed state.
	MarkCancelled(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.SaleStatus
	CustomerID *uuid.UUID
	UserID     *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// ConfectionRepository defines the interface for production runs
type ConfectionRepository interface {
	// Create stores the confection and its components
	Create(ctx context.Context, confection *entity.Confection) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Confection, error)
	List(ctx context.Context, params *ConfectionFilterParams) ([]entity.Confection, int64, error)
}

// ConfectionFilterParams contains filtering parameters for confection queries
type ConfectionFilterParams struct {
	Pagination *pagination.PaginationParams
	ProductID  *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}
