package pos

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

// Payment is one instalment towards the grand total
type Payment struct {
	Method    enum.PaymentMethod `json:"method"`
	Amount    decimal.Decimal    `json:"amount"`
	Reference string             `json:"reference,omitempty"`
}

// PaymentCheck compares a payment split against the amount due
type PaymentCheck struct {
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Shortfall  decimal.Decimal `json:"shortfall"`
	ChangeOwed decimal.Decimal `json:"change_owed"`
	Valid      bool            `json:"valid"`
}

// CheckPayments sums the payments. Overpaying is valid and yields change.
func CheckPayments(grandTotal decimal.Decimal, payments []Payment) PaymentCheck {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	shortfall := grandTotal.Sub(paid)
	change := paid.Sub(grandTotal)
	if change.IsNegative() {
		change = decimal.Zero
	}

	return PaymentCheck{
		TotalPaid:  paid,
		Shortfall:  shortfall,
		ChangeOwed: change,
		Valid:      !shortfall.IsPositive(),
	}
}

// MissingReferences returns the indexes of mobile-money payments with a blank reference
func MissingReferences(payments []Payment) []int {
	var missing []int
	for i, p := range payments {
		if p.Method.IsMobileMoney() && strings.TrimSpace(p.Reference) == "" {
			missing = append(missing, i)
		}
	}
	return missing
}
