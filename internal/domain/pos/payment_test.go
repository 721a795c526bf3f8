package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
)

func TestCheckPayments_Boundaries(t *testing.T) {
	due := dec(5000)

	exact := CheckPayments(due, []Payment{
		{Method: enum.PaymentMethodCash, Amount: dec(3000)},
		{Method: enum.PaymentMethodWave, Amount: dec(2000), Reference: "W-1"},
	})
	assert.True(t, exact.Valid)
	assertDec(t, 0, exact.ChangeOwed, "change")
	assertDec(t, 0, exact.Shortfall, "shortfall")

	short := CheckPayments(due, []Payment{{Method: enum.PaymentMethodCash, Amount: dec(4999)}})
	assert.False(t, short.Valid)
	assertDec(t, 1, short.Shortfall, "shortfall")
	assertDec(t, 0, short.ChangeOwed, "change")

	over := CheckPayments(due, []Payment{{Method: enum.PaymentMethodCash, Amount: dec(5500)}})
	assert.True(t, over.Valid)
	assertDec(t, 500, over.ChangeOwed, "change")
	assertDec(t, -500, over.Shortfall, "shortfall")
}

func TestCheckPayments_NothingDue(t *testing.T) {
	check := CheckPayments(dec(0), nil)

	assert.True(t, check.Valid)
	assertDec(t, 0, check.TotalPaid, "paid")
}

func TestMissingReferences(t *testing.T) {
	payments := []Payment{
		{Method: enum.PaymentMethodCash, Amount: dec(100)},
		{Method: enum.PaymentMethodOrangeMoney, Amount: dec(100)},
		{Method: enum.PaymentMethodWave, Amount: dec(100), Reference: "  "},
		{Method: enum.PaymentMethodWave, Amount: dec(100), Reference: "TX-9"},
		{Method: enum.PaymentMethodCard, Amount: dec(100)},
	}

	assert.Equal(t, []int{1, 2}, MissingReferences(payments))
	assert.Empty(t, MissingReferences(payments[3:]))
}
