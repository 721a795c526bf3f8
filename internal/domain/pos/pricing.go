package pos

import (
	"github.com/shopspring/decimal"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

// Loyalty policy. Redeemed points convert at PointsRedemptionValue per
// PointsRedemptionBlock points, pro rata; one point is earned per
// PointsEarnUnit of the final total.
const (
	PointsRedemptionBlock = 100
	PointsRedemptionValue = 1000
	PointsEarnUnit        = 1000
)

var hundred = decimal.NewFromInt(100)

// GlobalDiscount applies to the cart subtotal as a whole
type GlobalDiscount struct {
	Kind   enum.DiscountKind `json:"kind"`
	Value  decimal.Decimal   `json:"value"`
	Reason string            `json:"reason,omitempty"`
}

// Amount is the currency value of the discount against subtotal
func (d *GlobalDiscount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	if d.Kind == enum.DiscountKindPercentage {
		return subtotal.Mul(d.Value).Div(hundred)
	}
	return d.Value
}

// Totals are derived from a cart, a global discount and redeemed points
type Totals struct {
	Subtotal             decimal.Decimal `json:"subtotal"`
	LineDiscountTotal    decimal.Decimal `json:"line_discount_total"`
	GlobalDiscountAmount decimal.Decimal `json:"global_discount_amount"`
	PointsRedeemed       int64           `json:"points_redeemed"`
	PointsDiscountAmount decimal.Decimal `json:"points_discount_amount"`
	TotalDiscount        decimal.Decimal `json:"total_discount"`
	GrandTotal           decimal.Decimal `json:"grand_total"`
	PointsEarned         int64           `json:"points_earned"`
	ItemCount            int             `json:"item_count"`
}

// PointsValue converts redeemed points to currency. 150 points are worth 1500.
func PointsValue(points int64) decimal.Decimal {
	if points <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(points).
		Mul(decimal.NewFromInt(PointsRedemptionValue)).
		Div(decimal.NewFromInt(PointsRedemptionBlock))
}

// PointsFor returns the points earned on a final total
func PointsFor(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.Div(decimal.NewFromInt(PointsEarnUnit)).Floor().IntPart()
}

// Calculate recomputes every total from scratch
func Calculate(lines []Line, discount *GlobalDiscount, pointsRedeemed int64) Totals {
	if pointsRedeemed < 0 {
		pointsRedeemed = 0
	}

	subtotal := decimal.Zero
	lineDiscounts := decimal.Zero
	items := 0
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
		lineDiscounts = lineDiscounts.Add(l.Discount)
		items += l.Quantity
	}

	global := discount.Amount(subtotal)
	points := PointsValue(pointsRedeemed)

	grand := subtotal.Sub(global).Sub(points)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return Totals{
		Subtotal:             subtotal,
		LineDiscountTotal:    lineDiscounts,
		GlobalDiscountAmount: global,
		PointsRedeemed:       pointsRedeemed,
		PointsDiscountAmount: points,
		TotalDiscount:        global.Add(points),
		GrandTotal:           grand,
		PointsEarned:         PointsFor(grand),
		ItemCount:            items,
	}
}
