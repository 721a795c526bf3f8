package service

import (
	"context"
	"net/http"
	"sort"
	"sync"
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
)

// CartConfig holds the session limits of the cart registry
type CartConfig struct {
	SessionTTL    time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

// DefaultCartConfig returns the defaults used when nothing is configured
func DefaultCartConfig() CartConfig {
	return CartConfig{
		SessionTTL:    2 * time.Hour,
		SweepInterval: 5 * time.Minute,
		MaxSessions:   1000,
	}
}

// CartActor is the staff member operating a terminal
type CartActor struct {
	UserID uuid.UUID
	Role   string
}

type cartSession struct {
	mu sync.Mutex

	id       uuid.UUID
	salonID  uuid.UUID
	userID   uuid.UUID
	cart     *pos.Cart
	discount *pos.GlobalDiscount
	points   int64
	customer *entity.Customer
	closed   bool

	createdAt time.Time
	lastUsed  time.Time
}

// CartCustomer is the customer attached to a cart
type CartCustomer struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Phone         *string   `json:"phone,omitempty"`
	LoyaltyPoints int64     `json:"loyalty_points"`
}

// CartView is a snapshot of a session with its live totals
type CartView struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	Customer       *CartCustomer       `json:"customer,omitempty"`
	Lines          []pos.Line          `json:"lines"`
	Discount       *pos.GlobalDiscount `json:"discount,omitempty"`
	PointsRedeemed int64               `json:"points_redeemed"`
	Totals         pos.Totals          `json:"totals"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// CartLineUpdate changes one line. Nil fields are left alone.
type CartLineUpdate struct {
	Quantity  *int
	UnitPrice *decimal.Decimal
	Discount  *decimal.Decimal
}

// CartAddInput picks a catalog entry either by reference or by kind and id
type CartAddInput struct {
	Reference   string
	Kind        enum.ItemKind
	ItemID      uuid.UUID
	StockSource *enum.StockSource
}

// CartPaymentCheck reports whether a set of payments would settle the cart
type CartPaymentCheck struct {
	pos.PaymentCheck
	GrandTotal        decimal.Decimal `json:"grand_total"`
	MissingReferences []int           `json:"missing_references"`
}

// CartService keeps the carts being composed on POS terminals in memory
type CartService struct {
	sessions     map[uuid.UUID]*cartSession
	mu           sync.RWMutex
	cfg          CartConfig
	catalog      *CatalogService
	sales        *SaleService
	customerRepo repository.CustomerRepository
	log          *zap.Logger
	now          func() time.Time
}

// NewCartService creates an empty cart registry. Call Run to evict idle sessions.
func NewCartService(cfg CartConfig, catalog *CatalogService, sales *SaleService, customerRepo repository.CustomerRepository, log *zap.Logger) *CartService {
	def := DefaultCartConfig()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	return &CartService{
		sessions:     make(map[uuid.UUID]*cartSession),
		cfg:          cfg,
		catalog:      catalog,
		sales:        sales,
		customerRepo: customerRepo,
		log:          log,
		now:          time.Now,
	}
}

// Run evicts idle sessions until ctx is done
func (s *CartService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.log.Info("idle carts evicted", zap.Int("count", n))
			}
		}
	}
}

// sweep removes sessions unused for longer than the TTL.
// Lock order is session then registry, as in close.
func (s *CartService) sweep() int {
	s.mu.RLock()
	all := make([]*cartSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.RUnlock()

	cutoff := s.now().Add(-s.cfg.SessionTTL)
	evicted := 0
	for _, sess := range all {
		sess.mu.Lock()
		if !sess.closed && sess.lastUsed.Before(cutoff) {
			s.close(sess)
			evicted++
		}
		sess.mu.Unlock()
	}
	return evicted
}

// Count returns the number of open sessions
func (s *CartService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Open starts an empty cart for the actor
func (s *CartService) Open(ctx context.Context, actor CartActor) (*CartView, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}

	now := s.now()
	sess := &cartSession{
		id:        uuid.New(),
		salonID:   salonID,
		userID:    actor.UserID,
		cart:      pos.NewCart(),
		createdAt: now,
		lastUsed:  now,
	}

	s.mu.Lock()
	if len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return nil, apperror.NewAppError(http.StatusServiceUnavailable, "Too many open carts, try again later")
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return sess.view(), nil
}

// List returns the open carts the actor may use, oldest first. Owners see
// every cart of the salon.
func (s *CartService) List(ctx context.Context, actor CartActor) ([]CartView, error) {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Salon context required")
	}

	s.mu.RLock()
	var mine []*cartSession
	for _, sess := range s.sessions {
		if sess.salonID != salonID {
			continue
		}
		if actor.Role == entity.RoleOwner || sess.userID == actor.UserID {
			mine = append(mine, sess)
		}
	}
	s.mu.RUnlock()

	views := make([]CartView, 0, len(mine))
	for _, sess := range mine {
		sess.mu.Lock()
		if !sess.closed {
			views = append(views, *sess.view())
		}
		sess.mu.Unlock()
	}
	sort.Slice(views, func(i, j int) bool { return views[i].CreatedAt.Before(views[j].CreatedAt) })
	return views, nil
}

// with runs fn on a locked session the actor may use
func (s *CartService) with(ctx context.Context, actor CartActor, id uuid.UUID, fn func(sess *cartSession) error) error {
	salonID, ok := infraRepo.GetSalonID(ctx)
	if !ok {
		return apperror.NewBadRequestError("Salon context required")
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.salonID != salonID {
		return apperror.NewNotFoundError("Cart")
	}
	if sess.userID != actor.UserID && actor.Role != entity.RoleOwner {
		return apperror.NewForbiddenError("This cart belongs to another cashier")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return apperror.NewNotFoundError("Cart")
	}
	sess.lastUsed = s.now()
	return fn(sess)
}

func (s *CartService) close(sess *cartSession) {
	sess.closed = true
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
}

// Get returns the cart with its totals
func (s *CartService) Get(ctx context.Context, actor CartActor, id uuid.UUID) (*CartView, error) {
	var view *CartView
	err := s.with(ctx, actor, id, func(sess *cartSession) error {
		view = sess.view()
		return nil
	})
	return view, err
}

// AddItem puts a catalog entry in the cart. Name, price and reference are
// copied from the catalog at this point.
func (s *CartService) AddItem(ctx context.Context, actor CartActor, id uuid.UUID, input *CartAddInput) (*CartView, int, error) {
	var item *CatalogItem
	var err error
	if input.Reference != "" {
		item, err = s.catalog.ResolveReference(ctx, input.Reference)
	} else {
		if !input.Kind.IsValid() || input.ItemID == uuid.Nil {
			return nil, -1, apperror.NewValidationError([]apperror.FieldError{
				fieldError("item_id", "reference or kind and item_id are required"),
			})
		}
		item, err = s.catalog.ResolveItem(ctx, input.Kind, input.ItemID)
	}
	if err != nil {
		return nil, -1, err
	}
	if !item.Active {
		return nil, -1, apperror.NewBusinessRuleError(item.Name+" is inactive", fieldError("item_id", "inactive"))
	}

	var source *enum.StockSource
	if item.Kind == enum.ItemKindProduct {
		src := enum.StockSourceForSale
		if input.StockSource != nil {
			if !input.StockSource.IsValid() {
				return nil, -1, apperror.NewValidationError([]apperror.FieldError{
					fieldError("stock_source", "must be for_sale or internal_use"),
				})
			}
			src = *input.StockSource
		}
		source = &src
	}

	var view *CartView
	index := -1
	err = s.with(ctx, actor, id, func(sess *cartSession) error {
		index = sess.cart.Add(pos.AddItem{
			ItemID:      item.ID,
			Kind:        item.Kind,
			Name:        item.Name,
			UnitPrice:   item.Price,
			StockSource: source,
			Reference:   item.Reference,
		})
		view = sess.view()
		return nil
	})
	return view, index, err
}

// UpdateLine applies the given changes to line i. Applied is false when any
// change was ignored for an invalid value or index.
func (s *CartService) UpdateLine(ctx context.Context, actor CartActor, id uuid.UUID, i int, update *CartLineUpdate) (*CartView, bool, error) {
	var view *CartView
	applied := true
	err := s.with(ctx, actor, id, func(sess *cartSession) error {
		if _, ok := sess.cart.Line(i); !ok {
			applied = false
		}
		if update.Quantity != nil && !sess.cart.SetQuantity(i, *update.Quantity) {
			applied = false
		}
		if update.UnitPrice != nil && !sess.cart.SetUnitPrice(i, *update.UnitPrice) {
			applied = false
		}
		if update.Discount != nil && !sess.cart.SetLineDiscount(i, *update.Discount) {
			applied = false
		}
		view = sess.view()
		return nil
	})
	return view, applied, err
}

// RemoveLine drops line i; later lines shift down
func (s *CartService) RemoveLine(ctx context.Context, actor CartActor, id uuid.UUID, i int) (*CartView, bool, error) {
	var view *CartView
	var applied bool
	err := s.with(ctx, actor, id, func(sess *cartSession) error {
		applied = sess.cart.Remove(i)
		view = sess.view()
		return nil
	})
	return view, applied, err
}

// Clear empties the cart and resets discount, points and customer
func (s *CartService) Clear(ctx context.Context, actor CartActor, id uuid.UUID) (*CartView, error) {
	var view *CartView
	err := s.with(ctx, actor, id, func(sess *cartSession) error {
		sess.reset()
		view = sess.view()
		return nil
	})
	return view, err
}

// SetDiscount replaces the global discount; nil removes it
func (s *CartService) SetDiscount(ctx context.Context, actor CartActor, id uuid.UUID, discount *pos.GlobalDiscount) (*CartView, error) {
	if discount != nil {
		switch {
		case !discount.Kind.IsValid():
			return nil, apperror.NewValidationError([]apperror.FieldError{fieldError("kind", "must be percentage or amount")})
		case discount.Value.IsNegative():
			return nil, apperror.NewValidationError([]apperror.FieldError{fieldError("value", "must not be negative")})
		case discount.Kind == enum.DiscountKindPercentage && discount.Value.GreaterThan(decimal.NewFromInt(100)):
			return nil, apperror.NewValidationError([]apperror.FieldError{fieldError("value", "must be between 0 and 100")})
		}
	}

	var view *CartView
	err := s.with(ctx, actor, id, func(sess *cartSession) error {
		if discount == nil {
			sess.discount = nil
		} else {
			d := *discount
			sess.discount = &d
		}
		view = sess.view()
		return nil
	})
	return view, err
}

// SetPoints sets how many loyalty points the attached customer redeems
func (s *CartService) SetPoints(ctx context.Context, actor CartActor, id uuid.UUID, points int64) (*CartView, error) {
	if points < 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{fieldError("points", "must not be negative")})
	}

	var view *CartView
	err := s.with(ctx, actor, id, func(sess *cartSession) error {
		if points > 0 {
			if sess.customer == nil {
				return apperror.NewBusinessRuleError("Attach a customer before redeeming points", fieldError("points", "requires a customer"))
			}
			customer, err := s.customerRepo.GetByID(ctx, sess.customer.ID)
			if err != nil {
				return err
			}
			if customer == nil {
				return apperror.NewNotFoundError("Customer")
			}
			sess.customer = customer
			if points > customer.LoyaltyPoints {
				return insufficientPointsError(customer.LoyaltyPoints)
			}
		}
		sess.points = points
		view = sess.view()
		return nil
	})
	return view, err
}

// SetCustomer attaches a customer; nil detaches it and drops redeemed points
func (s *CartService) SetCustomer(ctx context.Context, actor CartActor, id uuid.UUID, customerID *uuid.UUID) (*CartView, error) {
	var customer *entity.Customer
	if customerID != nil {
		c, err := s.customerRepo.GetByID(ctx, *customerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		customer = c
	}

	var view *CartView
	err := s.with(ctx, actor, id, func(sess *cartSession) error {
		if customer == nil || sess.customer == nil || sess.customer.ID != customer.ID {
			sess.points = 0
		}
		sess.customer = customer
		view = sess.view()
		return nil
	})
	return view, err
}

// CheckPayments validates payments against the current grand total
func (s *CartService) CheckPayments(ctx context.Context, actor CartActor, id uuid.UUID, payments []pos.Payment) (*CartPaymentCheck, error) {
	var check *CartPaymentCheck
	err := s.with(ctx, actor, id, func(sess *cartSession) error {
		totals := pos.Calculate(sess.cart.Lines(), sess.discount, sess.points)
		missing := pos.MissingReferences(payments)
		if missing == nil {
			missing = []int{}
		}
		check = &CartPaymentCheck{
			PaymentCheck:      pos.CheckPayments(totals.GrandTotal, payments),
			GrandTotal:        totals.GrandTotal,
			MissingReferences: missing,
		}
		return nil
	})
	return check, err
}

// Checkout records the cart as a sale and closes the session on success.
// On failure the cart is kept so the cashier can fix it.
func (s *CartService) Checkout(ctx context.Context, actor CartActor, id uuid.UUID, payments []pos.Payment, notes *string) (*entity.Sale, error) {
	var sale *entity.Sale
	err := s.with(ctx, actor, id, func(sess *cartSession) error {
		input := sess.saleInput(payments, notes)
		created, err := s.sales.CreateSale(ctx, input)
		if err != nil {
			return err
		}
		sale = created
		sess.reset()
		s.close(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cart checked out",
		zap.String("cart_id", id.String()),
		zap.String("sale_id", sale.ID.String()),
	)
	return sale, nil
}

// Cancel discards the cart
func (s *CartService) Cancel(ctx context.Context, actor CartActor, id uuid.UUID) error {
	return s.with(ctx, actor, id, func(sess *cartSession) error {
		sess.reset()
		s.close(sess)
		return nil
	})
}

func (sess *cartSession) reset() {
	sess.cart.Clear()
	sess.discount = nil
	sess.points = 0
	sess.customer = nil
}

// saleInput hands the cart over as it stands, keeping overridden prices
func (sess *cartSession) saleInput(payments []pos.Payment, notes *string) *SaleInput {
	lines := sess.cart.Lines()
	input := &SaleInput{
		UserID:         sess.userID,
		Lines:          make([]SaleLineInput, 0, len(lines)),
		PointsRedeemed: sess.points,
		Payments:       payments,
		Notes:          notes,
	}
	for _, l := range lines {
		price := l.UnitPrice
		input.Lines = append(input.Lines, SaleLineInput{
			ItemID:      l.ItemID,
			Kind:        l.Kind,
			Quantity:    l.Quantity,
			UnitPrice:   &price,
			Discount:    l.Discount,
			StockSource: l.StockSource,
		})
	}
	if sess.discount != nil {
		d := *sess.discount
		input.Discount = &d
	}
	if sess.customer != nil {
		cid := sess.customer.ID
		input.CustomerID = &cid
	}
	return input
}

func (sess *cartSession) view() *CartView {
	lines := sess.cart.Lines()
	v := &CartView{
		ID:             sess.id,
		UserID:         sess.userID,
		Lines:          lines,
		PointsRedeemed: sess.points,
		Totals:         pos.Calculate(lines, sess.discount, sess.points),
		CreatedAt:      sess.createdAt,
		UpdatedAt:      sess.lastUsed,
	}
	if sess.discount != nil {
		d := *sess.discount
		v.Discount = &d
	}
	if c := sess.customer; c != nil {
		v.Customer = &CartCustomer{
			ID:            c.ID,
			Name:          c.Name,
			Phone:         c.Phone,
			LoyaltyPoints: c.LoyaltyPoints,
		}
	}
	return v
}
