package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
	"github.com/sangkips/salonpos-api/pkg/pagination"
	"github.com/sangkips/salonpos-api/pkg/utils"
)

// CatalogService manages salon services and stocked products
type CatalogService struct {
	serviceRepo repository.ServiceRepository
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(serviceRepo repository.ServiceRepository, productRepo repository.ProductRepository) *CatalogService {
	return &CatalogService{serviceRepo: serviceRepo, productRepo: productRepo}
}

// CatalogItem is a service or product as seen by the till
type CatalogItem struct {
	ID        uuid.UUID       `json:"id"`
	Kind      enum.ItemKind   `json:"kind"`
	Name      string          `json:"name"`
	Reference string          `json:"reference"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
}

func serviceItem(s *entity.ServiceItem) *CatalogItem {
	item := &CatalogItem{ID: s.ID, Kind: enum.ItemKindService, Name: s.Name, Price: s.Price, Active: s.Active}
	if s.Reference != nil {
		item.Reference = *s.Reference
	}
	return item
}

func productItem(p *entity.Product) *CatalogItem {
	item := &CatalogItem{ID: p.ID, Kind: enum.ItemKindProduct, Name: p.Name, Price: p.SellingPrice, Active: true}
	if p.Reference != nil {
		item.Reference = *p.Reference
	}
	return item
}

// ResolveItem loads a catalog entry by kind and ID
func (s *CatalogService) ResolveItem(ctx context.Context, kind enum.ItemKind, id uuid.UUID) (*CatalogItem, error) {
	switch kind {
	case enum.ItemKindService:
		svc, err := s.GetService(ctx, id)
		if err != nil {
			return nil, err
		}
		return serviceItem(svc), nil
	case enum.ItemKindProduct:
		p, err := s.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return productItem(p), nil
	default:
		return nil, apperror.NewBadRequestError("Unknown item kind")
	}
}

// ResolveReference finds a catalog entry by its reference code. Services are
// searched before products.
func (s *CatalogService) ResolveReference(ctx context.Context, reference string) (*CatalogItem, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, apperror.NewBadRequestError("Reference is required")
	}

	svc, err := s.serviceRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if svc != nil {
		return serviceItem(svc), nil
	}

	p, err := s.productRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return productItem(p), nil
	}

	return nil, apperror.NewNotFoundError("Catalog item")
}

// ServiceInput represents the create/update service input. Nil means unchanged on update.
type ServiceInput struct {
	Name            *string
	Reference       *string
	Description     *string
	Price           *decimal.Decimal
	DurationMinutes *int
	Active          *bool
}

func validatePrice(field string, price *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return apperror.NewValidationError([]apperror.FieldError{{Field: field, Message: "must not be negative"}})
	}
	return nil
}

// CreateService creates a salon service
func (s *CatalogService) CreateService(ctx context.Context, input *ServiceInput) (*entity.ServiceItem, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "is required"}})
	}
	if err := validatePrice("price", input.Price); err != nil {
		return nil, err
	}

	svc := &entity.ServiceItem{SalonID: salonID, Active: true}
	applyServiceInput(svc, input)

	if svc.Reference == nil || *svc.Reference == "" {
		ref := utils.GenerateReference("SRV")
		svc.Reference = &ref
	} else if err := s.ensureReferenceFree(ctx, *svc.Reference, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func applyServiceInput(svc *entity.ServiceItem, input *ServiceInput) {
	if input.Name != nil && *input.Name != "" {
		svc.Name = strings.TrimSpace(*input.Name)
	}
	if input.Reference != nil {
		ref := strings.TrimSpace(*input.Reference)
		svc.Reference = &ref
	}
	if input.Description != nil {
		svc.Description = input.Description
	}
	if input.Price != nil {
		svc.Price = *input.Price
	}
	if input.DurationMinutes != nil {
		svc.DurationMinutes = *input.DurationMinutes
	}
	if input.Active != nil {
		svc.Active = *input.Active
	}
}

// ensureReferenceFree keeps references unique across services and products of a salon
func (s *CatalogService) ensureReferenceFree(ctx context.Context, reference string, self uuid.UUID) error {
	svc, err := s.serviceRepo.GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	if svc != nil && svc.ID != self {
		return apperror.NewConflictError("Reference already used")
	}
	p, err := s.productRepo.GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	if p != nil && p.ID != self {
		return apperror.NewConflictError("Reference already used")
	}
	return nil
}

// GetService retrieves a service by ID
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*entity.ServiceItem, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, apperror.NewNotFoundError("Service")
	}
	return svc, nil
}

// ListServices lists the salon's services
func (s *CatalogService) ListServices(ctx context.Context, params *repository.CatalogFilterParams) (*pagination.PaginatedResult[entity.ServiceItem], error) {
	services, total, err := s.serviceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(services, pag), nil
}

// UpdateService updates a service
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, input *ServiceInput) (*entity.ServiceItem, error) {
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validatePrice("price", input.Price); err != nil {
		return nil, err
	}
	if input.Reference != nil && *input.Reference != "" {
		if err := s.ensureReferenceFree(ctx, strings.TrimSpace(*input.Reference), svc.ID); err != nil {
			return nil, err
		}
	}

	applyServiceInput(svc, input)
	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// DeleteService deletes a service. Past sales keep their own copy of the name and price.
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	return s.serviceRepo.Delete(ctx, id)
}

// ProductInput represents the create/update product input. Stock fields are
// only read on create.
type ProductInput struct {
	Name          *string
	Reference     *string
	Description   *string
	BuyingPrice   *decimal.Decimal
	SellingPrice  *decimal.Decimal
	StockForSale  *int
	StockInternal *int
	StockAlert    *int
}

func applyProductInput(p *entity.Product, input *ProductInput) {
	if input.Name != nil && *input.Name != "" {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Reference != nil {
		ref := strings.TrimSpace(*input.Reference)
		p.Reference = &ref
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.BuyingPrice != nil {
		p.BuyingPrice = *input.BuyingPrice
	}
	if input.SellingPrice != nil {
		p.SellingPrice = *input.SellingPrice
	}
	if input.StockAlert != nil {
		p.StockAlert = *input.StockAlert
	}
}

func validateProductInput(input *ProductInput) error {
	var errs []apperror.FieldError
	if input.BuyingPrice != nil && input.BuyingPrice.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "buying_price", Message: "must not be negative"})
	}
	if input.SellingPrice != nil && input.SellingPrice.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "selling_price", Message: "must not be negative"})
	}
	if input.StockForSale != nil && *input.StockForSale < 0 {
		errs = append(errs, apperror.FieldError{Field: "stock_for_sale", Message: "must not be negative"})
	}
	if input.StockInternal != nil && *input.StockInternal < 0 {
		errs = append(errs, apperror.FieldError{Field: "stock_internal", Message: "must not be negative"})
	}
	if input.StockAlert != nil && *input.StockAlert < 0 {
		errs = append(errs, apperror.FieldError{Field: "stock_alert", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// CreateProduct creates a stocked product
func (s *CatalogService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "is required"}})
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	p := &entity.Product{SalonID: salonID, StockAlert: 5}
	applyProductInput(p, input)
	if input.StockForSale != nil {
		p.StockForSale = *input.StockForSale
	}
	if input.StockInternal != nil {
		p.StockInternal = *input.StockInternal
	}

	if p.Reference == nil || *p.Reference == "" {
		ref := utils.GenerateReference("PRD")
		p.Reference = &ref
	} else if err := s.ensureReferenceFree(ctx, *p.Reference, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return p, nil
}

// ListProducts lists the salon's products
func (s *CatalogService) ListProducts(ctx context.Context, params *repository.CatalogFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProduct updates catalog fields. Stock moves through sales,
// confections and RestockProduct.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	if input.Reference != nil && *input.Reference != "" {
		if err := s.ensureReferenceFree(ctx, strings.TrimSpace(*input.Reference), p.ID); err != nil {
			return nil, err
		}
	}

	applyProductInput(p, input)
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct deletes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// RestockProduct adds received units to one stock pool
func (s *CatalogService) RestockProduct(ctx context.Context, id uuid.UUID, source enum.StockSource, quantity int) (*entity.Product, error) {
	if quantity < 1 {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "quantity", Message: "must be at least 1"}})
	}
	if !source.IsValid() {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "stock_source", Message: "must be for_sale or internal_use"}})
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	if err := s.productRepo.AtomicIncrementBatch(ctx, []repository.StockChange{{ProductID: id, Source: source, Quantity: quantity}}); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

// LowStock lists products at or under their alert threshold in either pool
func (s *CatalogService) LowStock(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}
