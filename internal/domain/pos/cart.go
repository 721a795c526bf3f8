// Package pos holds the point-of-sale cart and the pricing rules applied to it.
// Nothing here touches storage or the network.
package pos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

// Line is one article in the cart
type Line struct {
	ItemID      uuid.UUID         `json:"item_id"`
	Kind        enum.ItemKind     `json:"kind"`
	Name        string            `json:"name"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	Quantity    int               `json:"quantity"`
	Discount    decimal.Decimal   `json:"discount"`
	StockSource *enum.StockSource `json:"stock_source,omitempty"`
	Reference   string            `json:"reference,omitempty"`
}

// Subtotal is unit price times quantity minus the line discount. It is not floored.
func (l Line) Subtotal() decimal.Decimal {
	return l.Gross().Sub(l.Discount)
}

// Gross is unit price times quantity
func (l Line) Gross() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) sameItem(item AddItem) bool {
	if l.ItemID != item.ItemID || l.Kind != item.Kind {
		return false
	}
	if l.StockSource == nil || item.StockSource == nil {
		return l.StockSource == nil && item.StockSource == nil
	}
	return *l.StockSource == *item.StockSource
}

// AddItem describes a catalog entry being put in the cart
type AddItem struct {
	ItemID      uuid.UUID
	Kind        enum.ItemKind
	Name        string
	UnitPrice   decimal.Decimal
	StockSource *enum.StockSource
	Reference   string
}

// Cart keeps lines in insertion order. The zero value is an empty cart.
// A Cart is not safe for concurrent use.
type Cart struct {
	lines []Line
}

func NewCart() *Cart {
	return &Cart{}
}

// Add appends a line with quantity 1, or bumps the quantity of the line
// with the same item, kind and stock source. It returns the line index.
func (c *Cart) Add(item AddItem) int {
	for i := range c.lines {
		if c.lines[i].sameItem(item) {
			c.lines[i].Quantity++
			return i
		}
	}

	var source *enum.StockSource
	if item.StockSource != nil {
		s := *item.StockSource
		source = &s
	}
	c.lines = append(c.lines, Line{
		ItemID:      item.ItemID,
		Kind:        item.Kind,
		Name:        item.Name,
		UnitPrice:   item.UnitPrice,
		Quantity:    1,
		Discount:    decimal.Zero,
		StockSource: source,
		Reference:   item.Reference,
	})
	return len(c.lines) - 1
}

// SetQuantity ignores quantities below 1 and unknown indexes
func (c *Cart) SetQuantity(i, quantity int) bool {
	if !c.valid(i) || quantity < 1 {
		return false
	}
	c.lines[i].Quantity = quantity
	return true
}

// SetUnitPrice ignores negative prices and unknown indexes
func (c *Cart) SetUnitPrice(i int, price decimal.Decimal) bool {
	if !c.valid(i) || price.IsNegative() {
		return false
	}
	c.lines[i].UnitPrice = price
	return true
}

// SetLineDiscount ignores negative amounts and unknown indexes.
// The discount may exceed the line value.
func (c *Cart) SetLineDiscount(i int, amount decimal.Decimal) bool {
	if !c.valid(i) || amount.IsNegative() {
		return false
	}
	c.lines[i].Discount = amount
	return true
}

// Remove deletes line i; later lines shift down by one
func (c *Cart) Remove(i int) bool {
	if !c.valid(i) {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Line(i int) (Line, bool) {
	if !c.valid(i) {
		return Line{}, false
	}
	return c.lines[i], true
}

// Lines returns a copy of the cart's lines
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) valid(i int) bool {
	return i >= 0 && i < len(c.lines)
}
