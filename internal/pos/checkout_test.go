package pos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

func TestCheckout_RegistersNewCustomer(t *testing.T) {
	ctx := context.Background()
	s, adapter := createTestStore(t)
	setPoints(t, s, 0.5)
	seedProduct(t, s, "p1", "Tea", 6, 10, 5)

	inv, err := s.Checkout(ctx, CheckoutRequest{
		Lines:         []CheckoutLine{{ProductID: "p1", Quantity: 2}},
		CustomerName:  "  Sara ",
		CustomerPhone: "0555",
	})
	require.NoError(t, err)

	assert.Equal(t, "Sara", inv.CustomerName)
	assert.Equal(t, 20.0, inv.Total)
	assert.Equal(t, 8.0, inv.TotalProfit)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, model.InvoiceItem{ProductID: "p1", Name: "Tea", Price: 10, BuyPrice: 6, Quantity: 2}, inv.Items[0])

	customers := s.Customers()
	require.Len(t, customers, 1)
	c := customers[0]
	assert.Equal(t, inv.CustomerID, c.ID)
	assert.Equal(t, "Sara", c.Name)
	assert.Equal(t, 20.0, c.TotalSpent)
	assert.Equal(t, 10.0, c.Points)
	assert.Equal(t, 1, c.PurchaseCount)

	p, _ := s.Product("p1")
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, s.Snapshot(), reopen(t, adapter).Snapshot())
}

func TestCheckout_ReusesCustomerByPhone(t *testing.T) {
	ctx := context.Background()
	s, _ := createTestStore(t)
	seedProduct(t, s, "p1", "Tea", 1, 2, 10)
	seedCustomer(t, s, "c1", "Amal", "050-123")

	inv, err := s.Checkout(ctx, CheckoutRequest{
		Lines:         []CheckoutLine{{ProductID: "p1", Quantity: 1}},
		CustomerName:  "Amal K",
		CustomerPhone: "050 123",
	})
	require.NoError(t, err)

	assert.Equal(t, "c1", inv.CustomerID)
	assert.Equal(t, "Amal K", inv.CustomerName, "invoice keeps the name typed at checkout")
	require.Len(t, s.Customers(), 1)
	c, _ := s.Customer("c1")
	assert.Equal(t, "Amal", c.Name)
	assert.Equal(t, 1, c.PurchaseCount)
}

func TestCheckout_MergesLinesForSameProduct(t *testing.T) {
	s, _ := createTestStore(t)
	seedProduct(t, s, "p1", "Tea", 1, 2, 10)
	seedProduct(t, s, "p2", "Milk", 1, 3, 10)

	inv, err := s.Checkout(context.Background(), CheckoutRequest{
		Lines: []CheckoutLine{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p1", Quantity: 2},
		},
		CustomerName:  "Sara",
		CustomerPhone: "0555",
	})
	require.NoError(t, err)

	require.Len(t, inv.Items, 2)
	assert.Equal(t, "p1", inv.Items[0].ProductID)
	assert.Equal(t, 3, inv.Items[0].Quantity)
	p, _ := s.Product("p1")
	assert.Equal(t, 7, p.Quantity)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	s, adapter := createTestStore(t)
	seedProduct(t, s, "p1", "Tea", 1, 2, 2)
	before := s.Snapshot()
	saves := adapter.saves

	_, err := s.Checkout(context.Background(), CheckoutRequest{
		Lines:         []CheckoutLine{{ProductID: "p1", Quantity: 3}},
		CustomerName:  "Sara",
		CustomerPhone: "0555",
	})
	require.Error(t, err)
	assert.True(t, IsInsufficientStock(err))
	assert.Contains(t, err.Error(), "p1")

	assert.Equal(t, before, s.Snapshot(), "no customer registered on failure")
	assert.Equal(t, saves, adapter.saves)
}

func TestCheckout_StockEnforcementDisabled(t *testing.T) {
	s, _ := createTestStore(t, WithStockEnforcement(false))
	seedProduct(t, s, "p1", "Tea", 1, 2, 2)

	_, err := s.Checkout(context.Background(), CheckoutRequest{
		Lines:         []CheckoutLine{{ProductID: "p1", Quantity: 3}},
		CustomerName:  "Sara",
		CustomerPhone: "0555",
	})
	require.NoError(t, err)

	p, _ := s.Product("p1")
	assert.Equal(t, -1, p.Quantity)
}

func TestCheckout_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  CheckoutRequest
		code ErrorCode
	}{
		{
			name: "empty cart",
			req:  CheckoutRequest{CustomerName: "Sara", CustomerPhone: "0555"},
			code: ErrCodeEmptyCart,
		},
		{
			name: "missing name",
			req:  CheckoutRequest{Lines: []CheckoutLine{{ProductID: "p1", Quantity: 1}}, CustomerPhone: "0555"},
			code: ErrCodeMissingCustomer,
		},
		{
			name: "blank phone",
			req:  CheckoutRequest{Lines: []CheckoutLine{{ProductID: "p1", Quantity: 1}}, CustomerName: "Sara", CustomerPhone: "  "},
			code: ErrCodeMissingCustomer,
		},
		{
			name: "zero quantity",
			req:  CheckoutRequest{Lines: []CheckoutLine{{ProductID: "p1", Quantity: 0}}, CustomerName: "Sara", CustomerPhone: "0555"},
			code: ErrCodeInvalidInvoice,
		},
		{
			name: "unknown product",
			req:  CheckoutRequest{Lines: []CheckoutLine{{ProductID: "ghost", Quantity: 1}}, CustomerName: "Sara", CustomerPhone: "0555"},
			code: ErrCodeUnknownProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := createTestStore(t)
			seedProduct(t, s, "p1", "Tea", 1, 2, 10)

			_, err := s.Checkout(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
			assert.True(t, IsValidationError(err))
			assert.Empty(t, s.Invoices())
			assert.Empty(t, s.Customers())
		})
	}
}
