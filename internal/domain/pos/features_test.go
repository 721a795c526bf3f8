package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

type pricingTestContext struct {
	cart     *Cart
	ids      map[string]uuid.UUID
	discount *GlobalDiscount
	points   int64
	payments []Payment
}

func (c *pricingTestContext) reset() {
	c.cart = NewCart()
	c.ids = map[string]uuid.UUID{}
	c.discount = nil
	c.points = 0
	c.payments = nil
}

func (c *pricingTestContext) idFor(name string) uuid.UUID {
	id, ok := c.ids[name]
	if !ok {
		id = uuid.New()
		c.ids[name] = id
	}
	return id
}

func (c *pricingTestContext) totals() Totals {
	return Calculate(c.cart.Lines(), c.discount, c.points)
}

func (c *pricingTestContext) anEmptyCart() error {
	c.reset()
	return nil
}

func (c *pricingTestContext) iAddProductFromPool(name string, price int, pool string) error {
	var src enum.StockSource
	if err := json.Unmarshal([]byte(fmt.Sprintf("%q", pool)), &src); err != nil {
		return err
	}
	c.cart.Add(AddItem{ItemID: c.idFor(name), Kind: enum.ItemKindProduct, Name: name, UnitPrice: decimal.NewFromInt(int64(price)), StockSource: &src})
	return nil
}

func (c *pricingTestContext) iAddService(name string, price int) error {
	c.cart.Add(AddItem{ItemID: c.idFor(name), Kind: enum.ItemKindService, Name: name, UnitPrice: decimal.NewFromInt(int64(price))})
	return nil
}

func (c *pricingTestContext) iSetTheQuantityOfLine(n, qty int) error {
	c.cart.SetQuantity(n-1, qty)
	return nil
}

func (c *pricingTestContext) iSetTheDiscountOfLine(n, amount int) error {
	c.cart.SetLineDiscount(n-1, decimal.NewFromInt(int64(amount)))
	return nil
}

func (c *pricingTestContext) iApplyADiscount(kind string, value int) error {
	var k enum.DiscountKind
	if err := json.Unmarshal([]byte(fmt.Sprintf("%q", kind)), &k); err != nil {
		return err
	}
	c.discount = &GlobalDiscount{Kind: k, Value: decimal.NewFromInt(int64(value))}
	return nil
}

func (c *pricingTestContext) theCustomerRedeems(points int) error {
	c.points = int64(points)
	return nil
}

func (c *pricingTestContext) theCustomerPays(amount int, method string) error {
	var m enum.PaymentMethod
	if err := json.Unmarshal([]byte(fmt.Sprintf("%q", method)), &m); err != nil {
		return err
	}
	c.payments = append(c.payments, Payment{Method: m, Amount: decimal.NewFromInt(int64(amount))})
	return nil
}

func (c *pricingTestContext) iClearTheCart() error {
	c.cart.Clear()
	return nil
}

func (c *pricingTestContext) theCartHasLines(n int) error {
	if c.cart.Len() != n {
		return fmt.Errorf("expected %d lines, got %d", n, c.cart.Len())
	}
	return nil
}

func (c *pricingTestContext) lineHasQuantity(n, qty int) error {
	l, ok := c.cart.Line(n - 1)
	if !ok {
		return fmt.Errorf("no line %d", n)
	}
	if l.Quantity != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, l.Quantity)
	}
	return nil
}

func (c *pricingTestContext) lineHasSubtotal(n, want int) error {
	l, ok := c.cart.Line(n - 1)
	if !ok {
		return fmt.Errorf("no line %d", n)
	}
	return expectAmount("line subtotal", want, l.Subtotal())
}

func (c *pricingTestContext) theSubtotalIs(want int) error {
	return expectAmount("subtotal", want, c.totals().Subtotal)
}

func (c *pricingTestContext) theGlobalDiscountIs(want int) error {
	return expectAmount("global discount", want, c.totals().GlobalDiscountAmount)
}

func (c *pricingTestContext) thePointsDiscountIs(want int) error {
	return expectAmount("points discount", want, c.totals().PointsDiscountAmount)
}

func (c *pricingTestContext) theGrandTotalIs(want int) error {
	return expectAmount("grand total", want, c.totals().GrandTotal)
}

func (c *pricingTestContext) theCustomerEarns(want int) error {
	if got := c.totals().PointsEarned; got != int64(want) {
		return fmt.Errorf("expected %d points earned, got %d", want, got)
	}
	return nil
}

func (c *pricingTestContext) thePaymentIs(validity string) error {
	check := CheckPayments(c.totals().GrandTotal, c.payments)
	if want := validity == "valid"; check.Valid != want {
		return fmt.Errorf("expected payment %s, shortfall %s", validity, check.Shortfall)
	}
	return nil
}

func (c *pricingTestContext) theChangeOwedIs(want int) error {
	check := CheckPayments(c.totals().GrandTotal, c.payments)
	return expectAmount("change owed", want, check.ChangeOwed)
}

func expectAmount(label string, want int, got decimal.Decimal) error {
	if !got.Equal(decimal.NewFromInt(int64(want))) {
		return fmt.Errorf("expected %s %d, got %s", label, want, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &pricingTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	// When steps
	ctx.Step(`^I add product "([^"]*)" at (\d+) from the "([^"]*)" pool$`, tc.iAddProductFromPool)
	ctx.Step(`^I add service "([^"]*)" at (\d+)$`, tc.iAddService)
	ctx.Step(`^I set the quantity of line (\d+) to (-?\d+)$`, tc.iSetTheQuantityOfLine)
	ctx.Step(`^I set the discount of line (\d+) to (\d+)$`, tc.iSetTheDiscountOfLine)
	ctx.Step(`^I apply a "([^"]*)" discount of (\d+)$`, tc.iApplyADiscount)
	ctx.Step(`^the customer redeems (\d+) points$`, tc.theCustomerRedeems)
	ctx.Step(`^the customer pays (\d+) in "([^"]*)"$`, tc.theCustomerPays)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^line (\d+) has quantity (\d+)$`, tc.lineHasQuantity)
	ctx.Step(`^line (\d+) has subtotal (-?\d+)$`, tc.lineHasSubtotal)
	ctx.Step(`^the subtotal is (\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the global discount is (\d+)$`, tc.theGlobalDiscountIs)
	ctx.Step(`^the points discount is (\d+)$`, tc.thePointsDiscountIs)
	ctx.Step(`^the grand total is (\d+)$`, tc.theGrandTotalIs)
	ctx.Step(`^the customer earns (\d+) points$`, tc.theCustomerEarns)
	ctx.Step(`^the payment is (valid|invalid)$`, tc.thePaymentIs)
	ctx.Step(`^the change owed is (\d+)$`, tc.theChangeOwedIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "pricing",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
