package service

import (
	"context"
	"testing"
	"time"

	cartstore "github.com/arjunmeena977/vendor-ecommerce/internal/cart/store"
	caterrors "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/errors"
	catalogstore "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/store"
	ordererrors "github.com/arjunmeena977/vendor-ecommerce/internal/order/errors"
	"github.com/arjunmeena977/vendor-ecommerce/internal/order/store"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/config"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/messaging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockOrderStore is a mock implementation of the OrderStore interface.
// Created orders are recorded so tests can inspect grouping and totals.
type mockOrderStore struct {
	created      []store.CreateOrderParams
	failVendor   uuid.UUID
	failWith     error
	details      *store.OrderDetails
	detailsList  []store.OrderDetails
	error        error
	updatedOrder *store.Order
	updateError  error
}

func (m *mockOrderStore) CreateOrder(_ context.Context, params store.CreateOrderParams) (*store.Order, error) {
	if m.failWith != nil && params.VendorID == m.failVendor {
		return nil, m.failWith
	}
	m.created = append(m.created, params)
	return &store.Order{
		ID:          uuid.New(),
		UserID:      params.UserID,
		VendorID:    params.VendorID,
		TotalAmount: params.TotalAmount,
		Address:     params.Address,
		Status:      store.StatusPending,
		CreatedAt:   time.Now(),
	}, nil
}

func (m *mockOrderStore) FindByID(_ context.Context, _ uuid.UUID) (*store.OrderDetails, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.details, nil
}

func (m *mockOrderStore) ListByUser(_ context.Context, _ uuid.UUID, _, _ int32) ([]store.OrderDetails, error) {
	return m.detailsList, m.error
}

func (m *mockOrderStore) ListByVendor(_ context.Context, _ uuid.UUID, _, _ int32) ([]store.OrderDetails, error) {
	return m.detailsList, m.error
}

func (m *mockOrderStore) ListAll(_ context.Context, _, _ int32) ([]store.OrderDetails, error) {
	return m.detailsList, m.error
}

func (m *mockOrderStore) UpdateStatus(_ context.Context, id, vendorID uuid.UUID, _, toStatus string) (*store.Order, error) {
	if m.updateError != nil {
		return nil, m.updateError
	}
	if m.updatedOrder != nil {
		return m.updatedOrder, nil
	}
	return &store.Order{ID: id, VendorID: vendorID, Status: toStatus, CreatedAt: time.Now()}, nil
}

// mockProductStore serves products from a fixed map.
type mockProductStore struct {
	products map[uuid.UUID]*catalogstore.Product
}

func (m *mockProductStore) FindByID(_ context.Context, id uuid.UUID) (*catalogstore.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, caterrors.ErrProductNotFound
}

func (m *mockProductStore) Search(_ context.Context, _ string, _, _ int32) ([]catalogstore.Product, error) {
	return nil, nil
}

func (m *mockProductStore) FindByVendor(_ context.Context, _ uuid.UUID, _, _ int32) ([]catalogstore.Product, error) {
	return nil, nil
}

func (m *mockProductStore) FindAll(_ context.Context, _, _ int32) ([]catalogstore.Product, error) {
	return nil, nil
}

func (m *mockProductStore) Create(_ context.Context, _ catalogstore.CreateProductParams) (*catalogstore.Product, error) {
	return nil, nil
}

func (m *mockProductStore) Update(_ context.Context, _ catalogstore.UpdateProductParams) (*catalogstore.Product, error) {
	return nil, nil
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ uuid.UUID, _ uuid.UUID) error {
	return nil
}

func (m *mockProductStore) DecrementStock(_ context.Context, _ uuid.UUID, _ int32, _ bool) (*catalogstore.Product, error) {
	return nil, nil
}

// mockCartStore keeps one cart in memory and records deletion.
type mockCartStore struct {
	cart    *cartstore.Cart
	deleted bool
}

func (m *mockCartStore) Get(_ context.Context, userID uuid.UUID) (*cartstore.Cart, error) {
	if m.cart == nil {
		return &cartstore.Cart{UserID: userID}, nil
	}
	return m.cart, nil
}

func (m *mockCartStore) Save(_ context.Context, cart *cartstore.Cart) error {
	m.cart = cart
	return nil
}

func (m *mockCartStore) Delete(_ context.Context, _ uuid.UUID) error {
	m.deleted = true
	return nil
}

func testProduct(vendorID uuid.UUID, price string, stock int32) *catalogstore.Product {
	return &catalogstore.Product{
		ID:            uuid.New(),
		VendorID:      vendorID,
		Title:         "product",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
		Version:       1,
		CreatedAt:     time.Now(),
	}
}

func newTestService(orders *mockOrderStore, products *mockProductStore, carts *mockCartStore, policy config.OrdersConfig) *Service {
	if carts == nil {
		carts = &mockCartStore{}
	}
	return NewService(orders, products, carts, messaging.NoopPublisher{}, policy)
}

func Test_PlaceOrder_GroupsByVendor(t *testing.T) {
	// given
	vendor1 := uuid.New()
	vendor2 := uuid.New()
	p1 := testProduct(vendor1, "10.00", 100)
	p2 := testProduct(vendor1, "5.50", 100)
	p3 := testProduct(vendor2, "3.00", 100)
	products := &mockProductStore{products: map[uuid.UUID]*catalogstore.Product{p1.ID: p1, p2.ID: p2, p3.ID: p3}}
	orders := &mockOrderStore{}
	service := newTestService(orders, products, nil, config.OrdersConfig{})
	userID := uuid.New()

	// when
	created, err := service.PlaceOrder(context.Background(), userID, PlaceOrderDto{
		Address: "42 Main St",
		Items: []OrderLineDto{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p3.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 3},
		},
	})

	// then
	require.NoError(t, err)
	require.Len(t, created, 2, "one order per vendor")

	// vendor1 appeared first in the request, so its order comes first
	assert.Equal(t, vendor1, created[0].Vendor.ID)
	assert.Equal(t, vendor2, created[1].Vendor.ID)
	assert.Equal(t, store.StatusPending, created[0].Status)
	assert.Equal(t, store.StatusPending, created[1].Status)

	// 2*10.00 + 3*5.50 = 36.50 for vendor1, 1*3.00 for vendor2
	assert.True(t, created[0].TotalAmount.Equal(decimal.RequireFromString("36.50")),
		"vendor1 total, got %s", created[0].TotalAmount)
	assert.True(t, created[1].TotalAmount.Equal(decimal.RequireFromString("3.00")),
		"vendor2 total, got %s", created[1].TotalAmount)

	require.Len(t, orders.created, 2)
	require.Len(t, orders.created[0].Items, 2)
	assert.True(t, orders.created[0].Items[0].PriceAtPurchase.Equal(p1.Price), "price snapshot taken at checkout")
	assert.Equal(t, "42 Main St", orders.created[0].Address)
	assert.Equal(t, userID, orders.created[0].UserID)
}

func Test_PlaceOrder_MergesDuplicateLines(t *testing.T) {
	// given
	vendorID := uuid.New()
	p := testProduct(vendorID, "2.00", 100)
	products := &mockProductStore{products: map[uuid.UUID]*catalogstore.Product{p.ID: p}}
	orders := &mockOrderStore{}
	service := newTestService(orders, products, nil, config.OrdersConfig{})

	// when
	created, err := service.PlaceOrder(context.Background(), uuid.New(), PlaceOrderDto{
		Address: "addr",
		Items: []OrderLineDto{
			{ProductID: p.ID, Quantity: 1},
			{ProductID: p.ID, Quantity: 4},
		},
	})

	// then
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Len(t, orders.created[0].Items, 1)
	assert.Equal(t, int32(5), orders.created[0].Items[0].Quantity)
	assert.True(t, created[0].TotalAmount.Equal(decimal.RequireFromString("10.00")))
}

func Test_PlaceOrder_EmptyCheckout(t *testing.T) {
	// given
	service := newTestService(&mockOrderStore{}, &mockProductStore{}, nil, config.OrdersConfig{})

	// when
	created, err := service.PlaceOrder(context.Background(), uuid.New(), PlaceOrderDto{Address: "addr"})

	// then
	assert.ErrorIs(t, err, ordererrors.ErrEmptyOrder)
	assert.Empty(t, created)
}

func Test_PlaceOrder_UnknownProductPolicy(t *testing.T) {
	vendorID := uuid.New()
	known := testProduct(vendorID, "1.00", 100)

	testCases := []struct {
		name        string
		skipUnknown bool
		items       []OrderLineDto
		wantOrders  int
		expectError error
	}{
		{
			name:        "skip enabled - unknown line dropped",
			skipUnknown: true,
			items: []OrderLineDto{
				{ProductID: known.ID, Quantity: 1},
				{ProductID: uuid.New(), Quantity: 1},
			},
			wantOrders: 1,
		},
		{
			name:        "skip enabled - all lines unknown",
			skipUnknown: true,
			items:       []OrderLineDto{{ProductID: uuid.New(), Quantity: 1}},
			expectError: ordererrors.ErrEmptyOrder,
		},
		{
			name:        "skip disabled - unknown line fails checkout",
			skipUnknown: false,
			items: []OrderLineDto{
				{ProductID: known.ID, Quantity: 1},
				{ProductID: uuid.New(), Quantity: 1},
			},
			expectError: caterrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			products := &mockProductStore{products: map[uuid.UUID]*catalogstore.Product{known.ID: known}}
			orders := &mockOrderStore{}
			service := newTestService(orders, products, nil, config.OrdersConfig{SkipUnknownProducts: tc.skipUnknown})

			// when
			created, err := service.PlaceOrder(context.Background(), uuid.New(), PlaceOrderDto{Address: "addr", Items: tc.items})

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Empty(t, orders.created, "no order may be written when checkout fails upfront")
				return
			}
			require.NoError(t, err)
			assert.Len(t, created, tc.wantOrders)
		})
	}
}

func Test_PlaceOrder_InsufficientStockKeepsEarlierGroups(t *testing.T) {
	// given
	vendor1 := uuid.New()
	vendor2 := uuid.New()
	p1 := testProduct(vendor1, "1.00", 100)
	p2 := testProduct(vendor2, "1.00", 0)
	products := &mockProductStore{products: map[uuid.UUID]*catalogstore.Product{p1.ID: p1, p2.ID: p2}}
	orders := &mockOrderStore{failVendor: vendor2, failWith: caterrors.ErrInsufficientStock}
	service := newTestService(orders, products, nil, config.OrdersConfig{})

	// when
	created, err := service.PlaceOrder(context.Background(), uuid.New(), PlaceOrderDto{
		Address: "addr",
		Items: []OrderLineDto{
			{ProductID: p1.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 1},
		},
	})

	// then
	require.ErrorIs(t, err, caterrors.ErrInsufficientStock)
	assert.Len(t, created, 1, "vendor1's order was committed before vendor2 failed")
	assert.Equal(t, vendor1, created[0].Vendor.ID)
}

func Test_PlaceOrder_FromCart(t *testing.T) {
	// given
	vendorID := uuid.New()
	p := testProduct(vendorID, "7.00", 100)
	products := &mockProductStore{products: map[uuid.UUID]*catalogstore.Product{p.ID: p}}
	orders := &mockOrderStore{}
	userID := uuid.New()
	carts := &mockCartStore{cart: &cartstore.Cart{
		UserID: userID,
		Lines:  []cartstore.Line{{ProductID: p.ID, Quantity: 2}},
	}}
	service := newTestService(orders, products, carts, config.OrdersConfig{})

	// when
	created, err := service.PlaceOrder(context.Background(), userID, PlaceOrderDto{Address: "addr"})

	// then
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.True(t, created[0].TotalAmount.Equal(decimal.RequireFromString("14.00")))
	assert.True(t, carts.deleted, "cart is cleared after a successful checkout")
}

func Test_PlaceOrder_ExplicitItemsLeaveCartAlone(t *testing.T) {
	// given
	vendorID := uuid.New()
	p := testProduct(vendorID, "7.00", 100)
	products := &mockProductStore{products: map[uuid.UUID]*catalogstore.Product{p.ID: p}}
	carts := &mockCartStore{cart: &cartstore.Cart{UserID: uuid.New(), Lines: []cartstore.Line{{ProductID: p.ID, Quantity: 9}}}}
	service := newTestService(&mockOrderStore{}, products, carts, config.OrdersConfig{})

	// when
	_, err := service.PlaceOrder(context.Background(), uuid.New(), PlaceOrderDto{
		Address: "addr",
		Items:   []OrderLineDto{{ProductID: p.ID, Quantity: 1}},
	})

	// then
	require.NoError(t, err)
	assert.False(t, carts.deleted)
}

func Test_UpdateStatus_Transitions(t *testing.T) {
	vendorID := uuid.New()
	orderID := uuid.New()

	testCases := []struct {
		name        string
		current     string
		target      string
		expectError error
	}{
		{name: "pending to shipped", current: store.StatusPending, target: store.StatusShipped},
		{name: "shipped to delivered", current: store.StatusShipped, target: store.StatusDelivered},
		{name: "pending to delivered skips a step", current: store.StatusPending, target: store.StatusDelivered, expectError: ordererrors.ErrInvalidTransition},
		{name: "shipped back to pending", current: store.StatusShipped, target: store.StatusPending, expectError: ordererrors.ErrInvalidTransition},
		{name: "delivered is terminal", current: store.StatusDelivered, target: store.StatusShipped, expectError: ordererrors.ErrInvalidTransition},
		{name: "same status is not a transition", current: store.StatusPending, target: store.StatusPending, expectError: ordererrors.ErrInvalidTransition},
		{name: "unknown status", current: store.StatusPending, target: "CANCELLED", expectError: ordererrors.ErrInvalidStatus},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			orders := &mockOrderStore{details: &store.OrderDetails{Order: store.Order{
				ID: orderID, UserID: uuid.New(), VendorID: vendorID, Status: tc.current, CreatedAt: time.Now(),
			}}}
			service := newTestService(orders, &mockProductStore{}, nil, config.OrdersConfig{})

			// when
			updated, err := service.UpdateStatus(context.Background(), vendorID, orderID, tc.target)

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.target, updated.Status)
		})
	}
}

func Test_UpdateStatus_ForeignOrderLooksMissing(t *testing.T) {
	// given
	orders := &mockOrderStore{details: &store.OrderDetails{Order: store.Order{
		ID: uuid.New(), VendorID: uuid.New(), Status: store.StatusPending, CreatedAt: time.Now(),
	}}}
	service := newTestService(orders, &mockProductStore{}, nil, config.OrdersConfig{})

	// when
	updated, err := service.UpdateStatus(context.Background(), uuid.New(), uuid.New(), store.StatusShipped)

	// then
	assert.ErrorIs(t, err, ordererrors.ErrOrderNotFound)
	assert.Nil(t, updated)
}

func Test_UpdateStatus_ConcurrentMoveReportsConflict(t *testing.T) {
	// given
	vendorID := uuid.New()
	orders := &mockOrderStore{
		details: &store.OrderDetails{Order: store.Order{
			ID: uuid.New(), VendorID: vendorID, Status: store.StatusPending, CreatedAt: time.Now(),
		}},
		updateError: ordererrors.ErrOrderNotFound,
	}
	service := newTestService(orders, &mockProductStore{}, nil, config.OrdersConfig{})

	// when
	_, err := service.UpdateStatus(context.Background(), vendorID, uuid.New(), store.StatusShipped)

	// then
	assert.ErrorIs(t, err, ordererrors.ErrInvalidTransition)
}

func Test_FindByID_Visibility(t *testing.T) {
	buyerID := uuid.New()
	vendorID := uuid.New()
	details := &store.OrderDetails{Order: store.Order{
		ID: uuid.New(), UserID: buyerID, VendorID: vendorID, Status: store.StatusPending, CreatedAt: time.Now(),
	}}

	testCases := []struct {
		name        string
		requester   Requester
		expectError error
	}{
		{name: "buyer sees own order", requester: Requester{UserID: buyerID}},
		{name: "vendor sees assigned order", requester: Requester{UserID: vendorID}},
		{name: "admin sees any order", requester: Requester{UserID: uuid.New(), IsAdmin: true}},
		{name: "stranger gets not found", requester: Requester{UserID: uuid.New()}, expectError: ordererrors.ErrOrderNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			orders := &mockOrderStore{details: details}
			service := newTestService(orders, &mockProductStore{}, nil, config.OrdersConfig{})

			// when
			found, err := service.FindByID(context.Background(), tc.requester, details.ID)

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, details.ID, found.ID)
		})
	}
}
