package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/salonpos-api/internal/domain/repository"
)

var errInsufficientStock = errors.New("insufficient stock")

var serviceSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

var productSortColumns = map[string]string{
	"name":           "name",
	"selling_price":  "selling_price",
	"stock_for_sale": "stock_for_sale",
	"stock_internal": "stock_internal",
	"created_at":     "created_at",
}

// orderClause maps user input onto a whitelisted column
func orderClause(columns map[string]string, sortBy, sortOrder, fallback string) string {
	column, ok := columns[sortBy]
	if !ok {
		column = fallback
	}
	direction := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		direction = "DESC"
	}
	return column + " " + direction
}

type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new salon service repository
func NewServiceRepository(db *gorm.DB) domainRepo.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.ServiceItem) error {
	return conn(ctx, r.db).Create(service).Error
}

func (r *serviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ServiceItem, error) {
	var service entity.ServiceItem
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).First(&service, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &service, err
}

func (r *serviceRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.ServiceItem, error) {
	if len(ids) == 0 {
		return []entity.ServiceItem{}, nil
	}
	var services []entity.ServiceItem
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).Where("id IN ?", ids).Find(&services).Error
	return services, err
}

func (r *serviceRepository) GetByReference(ctx context.Context, reference string) (*entity.ServiceItem, error) {
	var service entity.ServiceItem
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).First(&service, "reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &service, err
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.ServiceItem) error {
	return conn(ctx, r.db).Scopes(SalonScope(ctx)).Save(service).Error
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(SalonScope(ctx)).Delete(&entity.ServiceItem{}, "id = ?", id).Error
}

func (r *serviceRepository) List(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.ServiceItem, int64, error) {
	var services []entity.ServiceItem
	var total int64

	query := conn(ctx, r.db).Model(&entity.ServiceItem{}).Scopes(SalonScope(ctx))
	if params.Search != "" {
		like := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(reference) LIKE ?", like, like)
	}
	if params.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order(orderClause(serviceSortColumns, params.SortBy, params.SortOrder, "name")).
		Find(&services).Error

	return services, total, err
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) GetByReference(ctx context.Context, reference string) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).First(&product, "reference = ?", reference).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// Update saves catalog fields. Stock levels only move through the batch methods.
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return conn(ctx, r.db).Scopes(SalonScope(ctx)).
		Omit("stock_for_sale", "stock_internal", "salon_id", "created_at").
		Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).Scopes(SalonScope(ctx)).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.CatalogFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := conn(ctx, r.db).Model(&entity.Product{}).Scopes(SalonScope(ctx))
	if params.Search != "" {
		like := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(reference) LIKE ?", like, like)
	}
	if params.LowStock {
		query = query.Where("stock_for_sale <= stock_alert OR stock_internal <= stock_alert")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order(orderClause(productSortColumns, params.SortBy, params.SortOrder, "name")).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) GetLowStock(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := conn(ctx, r.db).Scopes(SalonScope(ctx)).
		Where("stock_for_sale <= stock_alert OR stock_internal <= stock_alert").
		Order("name ASC").
		Find(&products).Error
	return products, err
}

type stockKey struct {
	productID uuid.UUID
	source    enum.StockSource
}

// mergeChanges sums changes per product and pool, in a stable order so
// concurrent batches lock rows in the same sequence.
func mergeChanges(changes []domainRepo.StockChange) []domainRepo.StockChange {
	totals := make(map[stockKey]int, len(changes))
	for _, c := range changes {
		if c.Quantity <= 0 {
			continue
		}
		totals[stockKey{c.ProductID, c.Source}] += c.Quantity
	}

	merged := make([]domainRepo.StockChange, 0, len(totals))
	for k, qty := range totals {
		merged = append(merged, domainRepo.StockChange{ProductID: k.productID, Source: k.source, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.ProductID != b.ProductID {
			return a.ProductID.String() < b.ProductID.String()
		}
		return a.Source < b.Source
	})
	return merged
}

// AtomicDecrementBatch decrements every pool with
// UPDATE ... SET col = col - n WHERE id = ? AND col >= n.
// If one pool is short the whole batch is rolled back.
func (r *productRepository) AtomicDecrementBatch(ctx context.Context, changes []domainRepo.StockChange) ([]uuid.UUID, error) {
	merged := mergeChanges(changes)
	if len(merged) == 0 {
		return nil, nil
	}

	var failedIDs []uuid.UUID

	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, c := range merged {
			column := c.Source.Column()
			result := tx.Model(&entity.Product{}).
				Scopes(SalonScope(ctx)).
				Where("id = ? AND "+column+" >= ?", c.ProductID, c.Quantity).
				Update(column, gorm.Expr(column+" - ?", c.Quantity))

			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, c.ProductID)
			}
		}

		if len(failedIDs) > 0 {
			return errInsufficientStock
		}
		return nil
	})

	if errors.Is(err, errInsufficientStock) {
		return failedIDs, nil
	}
	return failedIDs, err
}

// AtomicIncrementBatch puts stock back for cancellations and production runs
func (r *productRepository) AtomicIncrementBatch(ctx context.Context, changes []domainRepo.StockChange) error {
	merged := mergeChanges(changes)
	if len(merged) == 0 {
		return nil
	}

	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		for _, c := range merged {
			column := c.Source.Column()
			if err := tx.Model(&entity.Product{}).
				Scopes(SalonScope(ctx)).
				Where("id = ?", c.ProductID).
				Update(column, gorm.Expr(column+" + ?", c.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
