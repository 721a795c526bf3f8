package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

// ServiceRepository defines the interface for salon service data operations
type ServiceRepository interface {
	Create(ctx context.Context, service *entity.ServiceItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ServiceItem, error)
	// GetByIDs retrieves several services in one query
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.ServiceItem, error)
	GetByReference(ctx context.Context, reference string) (*entity.ServiceItem, error)
	Update(ctx context.Context, service *entity.ServiceItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *CatalogFilterParams) ([]entity.ServiceItem, int64, error)
}

// StockChange moves Quantity units of a product in one stock pool
type StockChange struct {
	ProductID uuid.UUID
	Source    enum.StockSource
	Quantity  int
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetByReference(ctx context.Context, reference string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *CatalogFilterParams) ([]entity.Product, int64, error)
	GetLowStock(ctx context.Context) ([]entity.Product, error)
	// AtomicDecrementBatch decrements every pool only if each has enough stock.
	// If any change fails nothing is applied and the failing product IDs are returned.
	AtomicDecrementBatch(ctx context.Context, changes []StockChange) (failedIDs []uuid.UUID, err error)
	// AtomicIncrementBatch puts stock back (cancellations, production output)
	AtomicIncrementBatch(ctx context.Context, changes []StockChange) error
}

// CatalogFilterParams contains filtering parameters for catalog queries
type CatalogFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	ActiveOnly bool
	LowStock   bool
	SortBy     string
	SortOrder  string
}
