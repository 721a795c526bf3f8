package service

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sangkips/salonpos-api/internal/domain/entity"
	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/pos"
	infraRepo "github.com/sangkips/salonpos-api/internal/infrastructure/repository"
)

func newCartService(env *testEnv, cfg CartConfig) *CartService {
	return NewCartService(cfg, env.catalog, env.sales, env.customerRepo, zap.NewNop())
}

func TestCartService_AddMergesAndPrices(t *testing.T) {
	env := newTestEnv(t)
	env.service(t, "Tresses", "SRV-TRS", 5000)
	oil := env.product(t, "Huile de coco", "PRD-OIL", 1200, 2500, 10, 3)
	carts := newCartService(env, DefaultCartConfig())
	actor := CartActor{UserID: env.cashier.ID, Role: entity.RoleCashier}

	cart, err := carts.Open(env.ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	_, i, err := carts.AddItem(env.ctx, actor, cart.ID, &CartAddInput{Reference: "SRV-TRS"})
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, i, err = carts.AddItem(env.ctx, actor, cart.ID, &CartAddInput{Kind: enum.ItemKindProduct, ItemID: oil.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	view, i, err := carts.AddItem(env.ctx, actor, cart.ID, &CartAddInput{Reference: "PRD-OIL"})
	require.NoError(t, err)
	assert.Equal(t, 1, i, "same product from the same pool merges")
	require.Len(t, view.Lines, 2)
	assert.Equal(t, 2, view.Lines[1].Quantity)
	require.NotNil(t, view.Lines[1].StockSource)
	assert.Equal(t, enum.StockSourceForSale, *view.Lines[1].StockSource)

	internal := enum.StockSourceInternalUse
	view, i, err = carts.AddItem(env.ctx, actor, cart.ID, &CartAddInput{Reference: "PRD-OIL", StockSource: &internal})
	require.NoError(t, err)
	assert.Equal(t, 2, i, "another pool is another line")
	assert.True(t, view.Totals.Subtotal.Equal(dec(12500)))
	assert.Equal(t, 4, view.Totals.ItemCount)

	_, _, err = carts.AddItem(env.ctx, actor, cart.ID, &CartAddInput{Reference: "NOPE"})
	requireAppError(t, err, http.StatusNotFound)
}

func TestCartService_UpdateLineReportsNoOps(t *testing.T) {
	env := newTestEnv(t)
	env.service(t, "Coupe", "SRV-CUT", 4500)
	carts := newCartService(env, DefaultCartConfig())
	actor := CartActor{UserID: env.cashier.ID, Role: entity.RoleCashier}

	cart, err := carts.Open(env.ctx, actor)
	require.NoError(t, err)
	_, _, err = carts.AddItem(env.ctx, actor, cart.ID, &CartAddInput{Reference: "SRV-CUT"})
	require.NoError(t, err)

	qty, price, discount := 2, dec(4000), dec(1000)
	view, applied, err := carts.UpdateLine(env.ctx, actor, cart.ID, 0, &CartLineUpdate{Quantity: &qty, UnitPrice: &price, Discount: &discount})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, view.Totals.Subtotal.Equal(dec(7000)))

	zero := 0
	view, applied, err = carts.UpdateLine(env.ctx, actor, cart.ID, 0, &CartLineUpdate{Quantity: &zero})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 2, view.Lines[0].Quantity)

	negative := dec(-1)
	_, applied, err = carts.UpdateLine(env.ctx, actor, cart.ID, 0, &CartLineUpdate{UnitPrice: &negative})
	require.NoError(t, err)
	assert.False(t, applied)

	_, applied, err = carts.UpdateLine(env.ctx, actor, cart.ID, 5, &CartLineUpdate{})
	require.NoError(t, err)
	assert.False(t, applied)

	_, applied, err = carts.RemoveLine(env.ctx, actor, cart.ID, 3)
	require.NoError(t, err)
	assert.False(t, applied)

	view, applied, err = carts.RemoveLine(env.ctx, actor, cart.ID, 0)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Empty(t, view.Lines)
}

func TestCartService_DiscountPointsAndCustomer(t *testing.T) {
	env := newTestEnv(t)
	env.service(t, "Tresses", "SRV-TRS", 20000)
	awa := env.customer(t, "Awa", 250)
	carts := newCartService(env, DefaultCartConfig())
	actor := CartActor{UserID: env.cashier.ID, Role: entity.RoleCashier}

	cart, err := carts.Open(env.ctx, actor)
	require.NoError(t, err)
	_, _, err = carts.AddItem(env.ctx, actor, cart.ID, &CartAddInput{Reference: "SRV-TRS"})
	require.NoError(t, err)

	_, err = carts.SetPoints(env.ctx, actor, cart.ID, 100)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	view, err := carts.SetCustomer(env.ctx, actor, cart.ID, &awa.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Customer)
	assert.Equal(t, "Awa", view.Customer.Name)

	_, err = carts.SetPoints(env.ctx, actor, cart.ID, 300)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	view, err = carts.SetPoints(env.ctx, actor, cart.ID, 250)
	require.NoError(t, err)
	assert.True(t, view.Totals.PointsDiscountAmount.Equal(dec(2500)))

	_, err = carts.SetDiscount(env.ctx, actor, cart.ID, &pos.GlobalDiscount{Kind: enum.DiscountKindPercentage, Value: dec(120)})
	requireAppError(t, err, http.StatusUnprocessableEntity)

	view, err = carts.SetDiscount(env.ctx, actor, cart.ID, &pos.GlobalDiscount{Kind: enum.DiscountKindAmount, Value: dec(3000)})
	require.NoError(t, err)
	assert.True(t, view.Totals.GrandTotal.Equal(dec(14500)))
	assert.EqualValues(t, 14, view.Totals.PointsEarned)

	view, err = carts.SetDiscount(env.ctx, actor, cart.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, view.Discount)
	assert.True(t, view.Totals.GrandTotal.Equal(dec(17500)))

	view, err = carts.SetCustomer(env.ctx, actor, cart.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, view.Customer)
	assert.Zero(t, view.PointsRedeemed, "detaching the customer drops redeemed points")

	check, err := carts.CheckPayments(env.ctx, actor, cart.ID, []pos.Payment{
		cash(10000),
		{Method: enum.PaymentMethodWave, Amount: dec(5000)},
	})
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.True(t, check.Shortfall.Equal(dec(5000)))
	assert.Equal(t, []int{1}, check.MissingReferences)
}

func TestCartService_Checkout(t *testing.T) {
	env := newTestEnv(t)
	env.product(t, "Gel", "PRD-GEL", 500, 1500, 3, 0)
	awa := env.customer(t, "Awa", 0)
	carts := newCartService(env, DefaultCartConfig())
	actor := CartActor{UserID: env.cashier.ID, Role: entity.RoleCashier}

	cart, err := carts.Open(env.ctx, actor)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, _, err = carts.AddItem(env.ctx, actor, cart.ID, &CartAddInput{Reference: "PRD-GEL"})
		require.NoError(t, err)
	}
	_, err = carts.SetCustomer(env.ctx, actor, cart.ID, &awa.ID)
	require.NoError(t, err)

	_, err = carts.Checkout(env.ctx, actor, cart.ID, []pos.Payment{cash(6000)}, nil)
	requireAppError(t, err, http.StatusUnprocessableEntity)

	// a failed checkout keeps the cart
	qty := 3
	_, applied, err := carts.UpdateLine(env.ctx, actor, cart.ID, 0, &CartLineUpdate{Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, applied)

	sale, err := carts.Checkout(env.ctx, actor, cart.ID, []pos.Payment{cash(5000)}, nil)
	require.NoError(t, err)
	assert.True(t, sale.GrandTotal.Equal(dec(4500)))
	require.NotNil(t, sale.CustomerID)
	assert.Equal(t, awa.ID, *sale.CustomerID)
	assert.EqualValues(t, 4, env.points(t, awa))
	assert.Zero(t, env.stock(t, sale.Lines[0].ItemID).StockForSale)

	_, err = carts.Get(env.ctx, actor, cart.ID)
	requireAppError(t, err, http.StatusNotFound)
	assert.Zero(t, carts.Count())
}

func TestCartService_Ownership(t *testing.T) {
	env := newTestEnv(t)
	carts := newCartService(env, DefaultCartConfig())
	cashier := CartActor{UserID: env.cashier.ID, Role: entity.RoleCashier}
	colleague := CartActor{UserID: uuid.New(), Role: entity.RoleCashier}
	owner := CartActor{UserID: uuid.New(), Role: entity.RoleOwner}

	cart, err := carts.Open(env.ctx, cashier)
	require.NoError(t, err)

	_, err = carts.Get(env.ctx, colleague, cart.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = carts.Get(env.ctx, owner, cart.ID)
	require.NoError(t, err)

	otherSalon := infraRepo.WithSalon(env.ctx, uuid.New())
	_, err = carts.Get(otherSalon, CartActor{UserID: uuid.New(), Role: entity.RoleOwner}, cart.ID)
	requireAppError(t, err, http.StatusNotFound)

	list, err := carts.List(env.ctx, colleague)
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = carts.List(env.ctx, cashier)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = carts.List(env.ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1, "owners see the carts of every cashier")
	assert.Equal(t, cart.ID, list[0].ID)
	list, err = carts.List(otherSalon, CartActor{UserID: uuid.New(), Role: entity.RoleOwner})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, carts.Cancel(env.ctx, cashier, cart.ID))
	_, err = carts.Get(env.ctx, cashier, cart.ID)
	requireAppError(t, err, http.StatusNotFound)
}

func TestCartService_SweepAndLimit(t *testing.T) {
	env := newTestEnv(t)
	carts := newCartService(env, CartConfig{SessionTTL: time.Hour, SweepInterval: time.Minute, MaxSessions: 2})
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	carts.now = func() time.Time { return now }
	actor := CartActor{UserID: env.cashier.ID, Role: entity.RoleCashier}

	idle, err := carts.Open(env.ctx, actor)
	require.NoError(t, err)
	active, err := carts.Open(env.ctx, actor)
	require.NoError(t, err)

	_, err = carts.Open(env.ctx, actor)
	requireAppError(t, err, http.StatusServiceUnavailable)

	now = now.Add(50 * time.Minute)
	_, err = carts.Get(env.ctx, actor, active.ID)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, carts.sweep())
	_, err = carts.Get(env.ctx, actor, idle.ID)
	requireAppError(t, err, http.StatusNotFound)
	_, err = carts.Get(env.ctx, actor, active.ID)
	require.NoError(t, err)
}

func TestCartService_ConcurrentAdds(t *testing.T) {
	env := newTestEnv(t)
	env.service(t, "Coupe", "SRV-CUT", 4500)
	carts := newCartService(env, DefaultCartConfig())
	actor := CartActor{UserID: env.cashier.ID, Role: entity.RoleCashier}
	cart, err := carts.Open(env.ctx, actor)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := carts.AddItem(env.ctx, actor, cart.ID, &CartAddInput{Reference: "SRV-CUT"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := carts.Get(env.ctx, actor, cart.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 10, view.Lines[0].Quantity)
}
