package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/salonpos-api/internal/domain/enum"
	"github.com/sangkips/salonpos-api/internal/domain/pos"
	"github.com/sangkips/salonpos-api/pkg/pagination"
)

func TestCustomerService_PhoneIsUnique(t *testing.T) {
	env := newTestEnv(t)
	phone := "+221771234567"

	first, err := env.customers.CreateCustomer(env.ctx, &CreateCustomerInput{Name: "Awa", Phone: &phone})
	require.NoError(t, err)
	_, err = env.customers.CreateCustomer(env.ctx, &CreateCustomerInput{Name: "Binta", Phone: &phone})
	requireAppError(t, err, http.StatusConflict)

	name := "Awa Ndiaye"
	updated, err := env.customers.UpdateCustomer(env.ctx, &UpdateCustomerInput{ID: first.ID, Name: &name, Phone: &phone})
	require.NoError(t, err, "a customer keeps its own number")
	assert.Equal(t, "Awa Ndiaye", updated.Name)

	result, err := env.customers.ListCustomers(env.ctx, pagination.DefaultPagination(), "ndiaye")
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

func TestCustomerService_LoyaltyHistory(t *testing.T) {
	env := newTestEnv(t)
	cut := env.service(t, "Coupe", "SRV-CUT", 5000)
	awa := env.customer(t, "Awa", 0)

	for i := 0; i < 2; i++ {
		_, err := env.sales.CreateSale(env.ctx, &SaleInput{
			UserID:     env.cashier.ID,
			CustomerID: &awa.ID,
			Lines:      []SaleLineInput{{ItemID: cut.ID, Kind: enum.ItemKindService, Quantity: 1}},
			Payments:   []pos.Payment{cash(5000)},
		})
		require.NoError(t, err)
	}

	history, err := env.customers.LoyaltyHistory(env.ctx, awa.ID, pagination.DefaultPagination())
	require.NoError(t, err)
	require.Len(t, history.Items, 2)
	for _, e := range history.Items {
		assert.Equal(t, enum.LoyaltyEntryEarn, e.Type)
		assert.EqualValues(t, 5, e.Points)
	}

	got, err := env.customers.GetCustomer(env.ctx, awa.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.LoyaltyPoints)

	require.NoError(t, env.customers.DeleteCustomer(env.ctx, awa.ID))
	_, err = env.customers.LoyaltyHistory(env.ctx, awa.ID, pagination.DefaultPagination())
	requireAppError(t, err, http.StatusNotFound)
}
