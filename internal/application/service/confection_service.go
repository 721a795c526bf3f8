package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

// ConfectionService records production runs: raw materials from the internal
// pool are turned into units of a product for sale
type ConfectionService struct {
	tx             repository.Transactor
	confectionRepo repository.ConfectionRepository
	productRepo    repository.ProductRepository
	log            *zap.Logger
}

// NewConfectionService creates a new confection service
func NewConfectionService(
	tx repository.Transactor,
	confectionRepo repository.ConfectionRepository,
	productRepo repository.ProductRepository,
	log *zap.Logger,
) *ConfectionService {
	return &ConfectionService{tx: tx, confectionRepo: confectionRepo, productRepo: productRepo, log: log}
}

// ComponentInput is one raw material consumed by a run
type ComponentInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// ConfectionInput describes a production run
type ConfectionInput struct {
	UserID     uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	Components []ComponentInput
	ProducedAt *time.Time
	Notes      *string
}

// ComponentCost is the costing of one component
type ComponentCost struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Available int             `json:"available"`
	Enough    bool            `json:"enough"`
}

// ConfectionPreview is the costing of a run before it is recorded
type ConfectionPreview struct {
	Product      *entity.Product `json:"product"`
	Quantity     int             `json:"quantity"`
	Components   []ComponentCost `json:"components"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Margin       decimal.Decimal `json:"margin"`
	MarginRate   decimal.Decimal `json:"margin_rate"`
	Feasible     bool            `json:"feasible"`
}

func validateConfectionInput(input *ConfectionInput) error {
	var errs []apperror.FieldError
	if input.ProductID == uuid.Nil {
		errs = append(errs, fieldError("product_id", "is required"))
	}
	if input.Quantity < 1 {
		errs = append(errs, fieldError("quantity", "must be at least 1"))
	}
	if len(input.Components) == 0 {
		errs = append(errs, fieldError("components", "at least one component is required"))
	}
	for i, c := range input.Components {
		if c.ProductID == input.ProductID {
			errs = append(errs, fieldError(fmt.Sprintf("components[%d].product_id", i), "cannot be the produced product"))
		}
		if c.Quantity < 1 {
			errs = append(errs, fieldError(fmt.Sprintf("components[%d].quantity", i), "must be at least 1"))
		}
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// Preview costs a run without moving stock
func (s *ConfectionService) Preview(ctx context.Context, input *ConfectionInput) (*ConfectionPreview, error) {
	if err := validateConfectionInput(input); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(input.Components)+1)
	ids = append(ids, input.ProductID)
	for _, c := range input.Components {
		ids = append(ids, c.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	output, ok := byID[input.ProductID]
	if !ok {
		return nil, apperror.NewBusinessRuleError("Product not found", fieldError("product_id", "not found"))
	}

	// several components may draw on the same product
	needed := make(map[uuid.UUID]int)
	for _, c := range input.Components {
		needed[c.ProductID] += c.Quantity
	}

	preview := &ConfectionPreview{
		Product:      output,
		Quantity:     input.Quantity,
		TotalCost:    decimal.Zero,
		SellingPrice: output.SellingPrice,
		Feasible:     true,
	}

	var errs []apperror.FieldError
	for i, c := range input.Components {
		p, ok := byID[c.ProductID]
		if !ok {
			errs = append(errs, fieldError(fmt.Sprintf("components[%d].product_id", i), "not found"))
			continue
		}
		cost := p.BuyingPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
		enough := p.StockInternal >= needed[p.ID]
		if !enough {
			preview.Feasible = false
		}
		preview.Components = append(preview.Components, ComponentCost{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  c.Quantity,
			UnitCost:  p.BuyingPrice,
			TotalCost: cost,
			Available: p.StockInternal,
			Enough:    enough,
		})
		preview.TotalCost = preview.TotalCost.Add(cost)
	}
	if len(errs) > 0 {
		return nil, apperror.NewBusinessRuleError("Some components are not in the catalog", errs...)
	}

	preview.UnitCost = preview.TotalCost.DivRound(decimal.NewFromInt(int64(input.Quantity)), 2)
	preview.Margin = preview.SellingPrice.Sub(preview.UnitCost)
	preview.MarginRate = decimal.Zero
	if preview.SellingPrice.IsPositive() {
		preview.MarginRate = preview.Margin.DivRound(preview.SellingPrice, 4)
	}

	return preview, nil
}

// Record stores a run, consuming component stock and adding the output to the for-sale pool
func (s *ConfectionService) Record(ctx context.Context, input *ConfectionInput) (*entity.Confection, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}

	preview, err := s.Preview(ctx, input)
	if err != nil {
		return nil, err
	}

	producedAt := time.Now().UTC()
	if input.ProducedAt != nil {
		producedAt = input.ProducedAt.UTC()
	}

	confection := &entity.Confection{
		SalonID:      salonID,
		UserID:       input.UserID,
		ProductID:    input.ProductID,
		Quantity:     input.Quantity,
		TotalCost:    preview.TotalCost,
		UnitCost:     preview.UnitCost,
		SellingPrice: preview.SellingPrice,
		Margin:       preview.Margin,
		MarginRate:   preview.MarginRate,
		ProducedAt:   producedAt,
		Notes:        input.Notes,
	}

	consumed := make([]repository.StockChange, 0, len(preview.Components))
	for _, c := range preview.Components {
		confection.Components = append(confection.Components, entity.ConfectionComponent{
			ProductID: c.ProductID,
			Name:      c.Name,
			Quantity:  c.Quantity,
			UnitCost:  c.UnitCost,
			TotalCost: c.TotalCost,
		})
		consumed = append(consumed, repository.StockChange{ProductID: c.ProductID, Source: enum.StockSourceInternalUse, Quantity: c.Quantity})
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, consumed)
		if err != nil {
			return err
		}
		if len(failedIDs) > 0 {
			return insufficientComponentsError(failedIDs, preview.Components)
		}

		if err := s.productRepo.AtomicIncrementBatch(ctx, []repository.StockChange{
			{ProductID: input.ProductID, Source: enum.StockSourceForSale, Quantity: input.Quantity},
		}); err != nil {
			return err
		}

		return s.confectionRepo.Create(ctx, confection)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("confection recorded",
		zap.String("confection_id", confection.ID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.Int("quantity", input.Quantity),
		zap.String("total_cost", confection.TotalCost.String()),
	)

	return s.GetConfection(ctx, confection.ID)
}

func insufficientComponentsError(failedIDs []uuid.UUID, components []ComponentCost) error {
	failed := make(map[uuid.UUID]bool, len(failedIDs))
	for _, id := range failedIDs {
		failed[id] = true
	}
	var errs []apperror.FieldError
	for i, c := range components {
		if failed[c.ProductID] {
			errs = append(errs, fieldError(fmt.Sprintf("components[%d].quantity", i), "insufficient internal stock for "+c.Name))
		}
	}
	return apperror.NewBusinessRuleError("Not enough raw materials in internal stock", errs...)
}

// GetConfection returns a run with its components
func (s *ConfectionService) GetConfection(ctx context.Context, id uuid.UUID) (*entity.Confection, error) {
	c, err := s.confectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.NewNotFoundError("Confection")
	}
	return c, nil
}

// ListConfections lists production runs
func (s *ConfectionService) ListConfections(ctx context.Context, params *repository.ConfectionFilterParams) (*pagination.PaginatedResult[entity.Confection], error) {
	items, total, err := s.confectionRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(items, pag), nil
}
