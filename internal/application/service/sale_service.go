package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/pos"
	"github.com/sangkips/salonpos-api/internal/domain/repository"
	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
	"github.com/sangkips/salonpos-api/pkg/apperror"
	"github.com/sangkips/salonpos-api/pkg/pagination"
	"github.com/sangkips/salonpos-api/pkg/utils"
)

const defaultInvoicePrefix = "VTE-"

// SaleService records sales and their side effects on stock and loyalty
type SaleService struct {
	tx           repository.Transactor
	saleRepo     repository.SaleRepository
	serviceRepo  repository.ServiceRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	loyaltyRepo  repository.LoyaltyRepository
	salonRepo    repository.SalonRepository
	log          *zap.Logger
}

// NewSaleService creates a new sale service
func NewSaleService(
	tx repository.Transactor,
	saleRepo repository.SaleRepository,
	serviceRepo repository.ServiceRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	loyaltyRepo repository.LoyaltyRepository,
	salonRepo repository.SalonRepository,
	log *zap.Logger,
) *SaleService {
	return &SaleService{
		tx:           tx,
		saleRepo:     saleRepo,
		serviceRepo:  serviceRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		loyaltyRepo:  loyaltyRepo,
		salonRepo:    salonRepo,
		log:          log,
	}
}

// SaleLineInput is one submitted line. A nil UnitPrice takes the catalog price.
type SaleLineInput struct {
	ItemID      uuid.UUID
	Kind        enum.ItemKind
	Quantity    int
	UnitPrice   *decimal.Decimal
	Discount    decimal.Decimal
	StockSource *enum.StockSource
}

// SaleInput is a finished cart handed over for recording
type SaleInput struct {
	UserID         uuid.UUID
	CustomerID     *uuid.UUID
	Lines          []SaleLineInput
	Discount       *pos.GlobalDiscount
	PointsRedeemed int64
	Payments       []pos.Payment
	Notes          *string
}

// QuoteOutput is the priced view of a submission
type QuoteOutput struct {
	Lines             []pos.Line       `json:"lines"`
	Totals            pos.Totals       `json:"totals"`
	Payment           pos.PaymentCheck `json:"payment"`
	MissingReferences []int            `json:"missing_references"`
}

func fieldError(field, message string) apperror.FieldError {
	return apperror.FieldError{Field: field, Message: message}
}

// validateSaleInput checks the submission shape. Business rules that need
// the catalog or the customer are checked later.
func validateSaleInput(input *SaleInput) error {
	var errs []apperror.FieldError

	if len(input.Lines) == 0 {
		errs = append(errs, fieldError("lines", "at least one line is required"))
	}
	for i, l := range input.Lines {
		prefix := fmt.Sprintf("lines[%d].", i)
		if !l.Kind.IsValid() {
			errs = append(errs, fieldError(prefix+"kind", "must be service or product"))
		}
		if l.ItemID == uuid.Nil {
			errs = append(errs, fieldError(prefix+"item_id", "is required"))
		}
		if l.Quantity < 1 {
			errs = append(errs, fieldError(prefix+"quantity", "must be at least 1"))
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			errs = append(errs, fieldError(prefix+"unit_price", "must not be negative"))
		}
		if l.Discount.IsNegative() {
			errs = append(errs, fieldError(prefix+"discount", "must not be negative"))
		}
		if l.StockSource != nil && !l.StockSource.IsValid() {
			errs = append(errs, fieldError(prefix+"stock_source", "must be for_sale or internal_use"))
		}
	}

	if d := input.Discount; d != nil {
		switch {
		case !d.Kind.IsValid():
			errs = append(errs, fieldError("discount.kind", "must be percentage or amount"))
		case d.Value.IsNegative():
			errs = append(errs, fieldError("discount.value", "must not be negative"))
		case d.Kind == enum.DiscountKindPercentage && d.Value.GreaterThan(decimal.NewFromInt(100)):
			errs = append(errs, fieldError("discount.value", "must be between 0 and 100"))
		}
	}

	if input.PointsRedeemed < 0 {
		errs = append(errs, fieldError("points_redeemed", "must not be negative"))
	}
	if input.PointsRedeemed > 0 && input.CustomerID == nil {
		errs = append(errs, fieldError("points_redeemed", "requires a customer"))
	}

	for i, p := range input.Payments {
		prefix := fmt.Sprintf("payments[%d].", i)
		if !p.Method.IsValid() {
			errs = append(errs, fieldError(prefix+"method", "unknown payment method"))
		}
		if !p.Amount.IsPositive() {
			errs = append(errs, fieldError(prefix+"amount", "must be positive"))
		}
	}

	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// normalizeLines draws products from the for-sale pool unless told otherwise.
// Services never carry a stock source.
func normalizeLines(lines []SaleLineInput) {
	for i := range lines {
		switch lines[i].Kind {
		case enum.ItemKindService:
			lines[i].StockSource = nil
		case enum.ItemKindProduct:
			if lines[i].StockSource == nil {
				src := enum.StockSourceForSale
				lines[i].StockSource = &src
			}
		}
	}
}

// resolveLines prices the submitted lines against the salon catalog
func (s *SaleService) resolveLines(ctx context.Context, inputs []SaleLineInput) ([]pos.Line, error) {
	var serviceIDs, productIDs []uuid.UUID
	for _, l := range inputs {
		if l.Kind == enum.ItemKindProduct {
			productIDs = append(productIDs, l.ItemID)
		} else {
			serviceIDs = append(serviceIDs, l.ItemID)
		}
	}

	services, err := s.serviceRepo.GetByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	items := make(map[uuid.UUID]*CatalogItem, len(services)+len(products))
	for i := range services {
		items[services[i].ID] = serviceItem(&services[i])
	}
	for i := range products {
		items[products[i].ID] = productItem(&products[i])
	}

	var errs []apperror.FieldError
	lines := make([]pos.Line, 0, len(inputs))
	for i, in := range inputs {
		item, ok := items[in.ItemID]
		if !ok || item.Kind != in.Kind {
			errs = append(errs, fieldError(fmt.Sprintf("lines[%d].item_id", i), fmt.Sprintf("%s not found", in.Kind)))
			continue
		}
		if !item.Active {
			errs = append(errs, fieldError(fmt.Sprintf("lines[%d].item_id", i), fmt.Sprintf("%s is inactive", item.Name)))
			continue
		}

		price := item.Price
		if in.UnitPrice != nil {
			price = *in.UnitPrice
		}
		lines = append(lines, pos.Line{
			ItemID:      in.ItemID,
			Kind:        in.Kind,
			Name:        item.Name,
			UnitPrice:   price,
			Quantity:    in.Quantity,
			Discount:    in.Discount,
			StockSource: in.StockSource,
			Reference:   item.Reference,
		})
	}

	if len(errs) > 0 {
		return nil, apperror.NewBusinessRuleError("Some items are not available", errs...)
	}
	return lines, nil
}

// Quote prices a submission without recording anything
func (s *SaleService) Quote(ctx context.Context, input *SaleInput) (*QuoteOutput, error) {
	if err := validateSaleInput(input); err != nil {
		return nil, err
	}
	normalizeLines(input.Lines)

	lines, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	totals := pos.Calculate(lines, input.Discount, input.PointsRedeemed)
	return &QuoteOutput{
		Lines:             lines,
		Totals:            totals,
		Payment:           pos.CheckPayments(totals.GrandTotal, input.Payments),
		MissingReferences: pos.MissingReferences(input.Payments),
	}, nil
}

// CreateSale recomputes the totals, checks payments and records the sale.
// Stock, the sale and loyalty movements are written in one transaction.
func (s *SaleService) CreateSale(ctx context.Context, input *SaleInput) (*entity.Sale, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}

	quote, err := s.Quote(ctx, input)
	if err != nil {
		return nil, err
	}

	if !quote.Payment.Valid {
		return nil, apperror.NewBusinessRuleError(
			fmt.Sprintf("Payments are short by %s", quote.Payment.Shortfall.String()),
			fieldError("payments", "total paid is below the grand total"),
		)
	}
	if missing := quote.MissingReferences; len(missing) > 0 {
		errs := make([]apperror.FieldError, 0, len(missing))
		for _, i := range missing {
			errs = append(errs, fieldError(fmt.Sprintf("payments[%d].reference", i), "is required for mobile money"))
		}
		return nil, apperror.NewBusinessRuleError("Mobile money payments need a transaction reference", errs...)
	}

	var customer *entity.Customer
	if input.CustomerID != nil {
		customer, err = s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewBusinessRuleError("Customer not found", fieldError("customer_id", "not found"))
		}
		if input.PointsRedeemed > customer.LoyaltyPoints {
			return nil, insufficientPointsError(customer.LoyaltyPoints)
		}
	}

	salon, err := s.salonRepo.GetByID(ctx, salonID)
	if err != nil {
		return nil, err
	}
	prefix := defaultInvoicePrefix
	if salon != nil && salon.Settings.InvoicePrefix != "" {
		prefix = salon.Settings.InvoicePrefix
	}

	sale := buildSale(salonID, input, quote, customer != nil)
	sale.InvoiceNo = utils.GenerateInvoiceNo(prefix)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, stockChanges(quote.Lines))
		if err != nil {
			return err
		}
		if len(failedIDs) > 0 {
			return insufficientStockError(failedIDs, quote.Lines)
		}

		if err := s.saleRepo.Create(ctx, sale); err != nil {
			return err
		}

		if customer != nil {
			return s.applyLoyalty(ctx, sale, customer.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale created",
		zap.String("salon_id", salonID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("invoice_no", sale.InvoiceNo),
		zap.String("grand_total", sale.GrandTotal.String()),
		zap.Int("lines", len(sale.Lines)),
	)

	return s.GetSale(ctx, sale.ID)
}

func buildSale(salonID uuid.UUID, input *SaleInput, quote *QuoteOutput, withCustomer bool) *entity.Sale {
	t := quote.Totals
	sale := &entity.Sale{
		SalonID:              salonID,
		UserID:               input.UserID,
		CustomerID:           input.CustomerID,
		SaleDate:             time.Now().UTC(),
		Status:               enum.SaleStatusCompleted,
		Subtotal:             t.Subtotal,
		LineDiscountTotal:    t.LineDiscountTotal,
		GlobalDiscountAmount: t.GlobalDiscountAmount,
		PointsRedeemed:       t.PointsRedeemed,
		PointsDiscountAmount: t.PointsDiscountAmount,
		TotalDiscount:        t.TotalDiscount,
		GrandTotal:           t.GrandTotal,
		TotalPaid:            quote.Payment.TotalPaid,
		ChangeOwed:           quote.Payment.ChangeOwed,
		ItemCount:            t.ItemCount,
		Notes:                input.Notes,
	}
	// points are only earned by a known customer
	if withCustomer {
		sale.PointsEarned = t.PointsEarned
	}

	if d := input.Discount; d != nil {
		kind := d.Kind
		sale.DiscountKind = &kind
		sale.DiscountValue = d.Value
		if reason := strings.TrimSpace(d.Reason); reason != "" {
			sale.DiscountReason = &reason
		}
	}

	sale.Lines = make([]entity.SaleLine, 0, len(quote.Lines))
	for i, l := range quote.Lines {
		line := entity.SaleLine{
			Position:    i,
			ItemID:      l.ItemID,
			Kind:        l.Kind,
			Name:        l.Name,
			StockSource: l.StockSource,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			Total:       l.Subtotal(),
		}
		if l.Reference != "" {
			ref := l.Reference
			line.Reference = &ref
		}
		sale.Lines = append(sale.Lines, line)
	}

	sale.Payments = make([]entity.SalePayment, 0, len(input.Payments))
	for _, p := range input.Payments {
		payment := entity.SalePayment{Method: p.Method, Amount: p.Amount}
		if ref := strings.TrimSpace(p.Reference); ref != "" {
			payment.Reference = &ref
		}
		sale.Payments = append(sale.Payments, payment)
	}

	return sale
}

// stockChanges lists the stock drawn by product lines
func stockChanges(lines []pos.Line) []repository.StockChange {
	var changes []repository.StockChange
	for _, l := range lines {
		if l.Kind != enum.ItemKindProduct || l.StockSource == nil {
			continue
		}
		changes = append(changes, repository.StockChange{ProductID: l.ItemID, Source: *l.StockSource, Quantity: l.Quantity})
	}
	return changes
}

func saleStockChanges(lines []entity.SaleLine) []repository.StockChange {
	var changes []repository.StockChange
	for _, l := range lines {
		if l.Kind != enum.ItemKindProduct || l.StockSource == nil {
			continue
		}
		changes = append(changes, repository.StockChange{ProductID: l.ItemID, Source: *l.StockSource, Quantity: l.Quantity})
	}
	return changes
}

func insufficientStockError(failedIDs []uuid.UUID, lines []pos.Line) error {
	failed := make(map[uuid.UUID]bool, len(failedIDs))
	for _, id := range failedIDs {
		failed[id] = true
	}

	var names []string
	var errs []apperror.FieldError
	seen := make(map[uuid.UUID]bool)
	for i, l := range lines {
		if !failed[l.ItemID] {
			continue
		}
		errs = append(errs, fieldError(fmt.Sprintf("lines[%d].quantity", i), "insufficient stock"))
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			names = append(names, l.Name)
		}
	}
	return apperror.NewBusinessRuleError("Insufficient stock for: "+strings.Join(names, ", "), errs...)
}

func insufficientPointsError(available int64) error {
	return apperror.NewBusinessRuleError(
		fmt.Sprintf("Customer only has %d loyalty points", available),
		fieldError("points_redeemed", "exceeds the customer's balance"),
	)
}

// applyLoyalty debits redeemed points and credits earned ones, writing a
// ledger entry for each movement
func (s *SaleService) applyLoyalty(ctx context.Context, sale *entity.Sale, customerID uuid.UUID) error {
	note := sale.InvoiceNo

	if sale.PointsRedeemed > 0 {
		balance, applied, err := s.customerRepo.AdjustPoints(ctx, customerID, -sale.PointsRedeemed)
		if err != nil {
			return err
		}
		if !applied {
			return apperror.NewBusinessRuleError(
				"Customer does not have enough loyalty points",
				fieldError("points_redeemed", "exceeds the customer's balance"),
			)
		}
		if err := s.recordLoyalty(ctx, sale, customerID, enum.LoyaltyEntryRedeem, -sale.PointsRedeemed, balance, note); err != nil {
			return err
		}
	}

	if sale.PointsEarned > 0 {
		balance, applied, err := s.customerRepo.AdjustPoints(ctx, customerID, sale.PointsEarned)
		if err != nil {
			return err
		}
		if !applied {
			return errors.New("loyalty credit was not applied")
		}
		if err := s.recordLoyalty(ctx, sale, customerID, enum.LoyaltyEntryEarn, sale.PointsEarned, balance, note); err != nil {
			return err
		}
	}

	return nil
}

func (s *SaleService) recordLoyalty(ctx context.Context, sale *entity.Sale, customerID uuid.UUID, kind enum.LoyaltyEntryType, points, balance int64, note string) error {
	saleID := sale.ID
	return s.loyaltyRepo.Create(ctx, &entity.LoyaltyEntry{
		SalonID:      sale.SalonID,
		CustomerID:   customerID,
		SaleID:       &saleID,
		Type:         kind,
		Points:       points,
		BalanceAfter: balance,
		Note:         &note,
	})
}

// GetSale returns a sale with lines, payments, customer and cashier
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales lists sales with filters
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

// CancelSale voids a completed sale. Product stock goes back to the pool it
// came from and loyalty movements are reversed.
func (s *SaleService) CancelSale(ctx context.Context, id uuid.UUID, reason string) (*entity.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.IsCancelled() {
		return nil, apperror.NewBadRequestError("Sale is already cancelled")
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.saleRepo.MarkCancelled(ctx, sale.ID, strings.TrimSpace(reason), time.Now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NewBadRequestError("Sale is already cancelled")
		}

		if err := s.productRepo.AtomicIncrementBatch(ctx, saleStockChanges(sale.Lines)); err != nil {
			return err
		}

		if sale.CustomerID != nil {
			return s.reverseLoyalty(ctx, sale, *sale.CustomerID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale cancelled",
		zap.String("sale_id", sale.ID.String()),
		zap.String("invoice_no", sale.InvoiceNo),
		zap.String("reason", reason),
	)

	return s.GetSale(ctx, id)
}

// reverseLoyalty undoes the sale's earn and redeem entries. Earned points the
// customer has already spent are clawed back only down to zero.
func (s *SaleService) reverseLoyalty(ctx context.Context, sale *entity.Sale, customerID uuid.UUID) error {
	entries, err := s.loyaltyRepo.ListBySale(ctx, sale.ID)
	if err != nil {
		return err
	}

	note := "Annulation " + sale.InvoiceNo
	for _, e := range entries {
		if e.Type == enum.LoyaltyEntryReversal {
			continue
		}

		delta := -e.Points
		balance, applied, err := s.customerRepo.AdjustPoints(ctx, customerID, delta)
		if err != nil {
			return err
		}
		if !applied {
			customer, err := s.customerRepo.GetByID(ctx, customerID)
			if err != nil {
				return err
			}
			if customer == nil || customer.LoyaltyPoints == 0 {
				continue
			}
			delta = -customer.LoyaltyPoints
			if balance, _, err = s.customerRepo.AdjustPoints(ctx, customerID, delta); err != nil {
				return err
			}
		}

		if err := s.recordLoyalty(ctx, sale, customerID, enum.LoyaltyEntryReversal, delta, balance, note); err != nil {
			return err
		}
	}
	return nil
}
