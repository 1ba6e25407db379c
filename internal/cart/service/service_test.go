package service

import (
	"context"
	"testing"

	"github.com/arjunmeena977/vendor-ecommerce/internal/cart/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCartStore keeps carts in a map, keyed by user.
type mockCartStore struct {
	carts map[uuid.UUID]*store.Cart
	error error
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: make(map[uuid.UUID]*store.Cart)}
}

func (m *mockCartStore) Get(_ context.Context, userID uuid.UUID) (*store.Cart, error) {
	if m.error != nil {
		return nil, m.error
	}
	if cart, ok := m.carts[userID]; ok {
		return cart, nil
	}
	return &store.Cart{UserID: userID}, nil
}

func (m *mockCartStore) Save(_ context.Context, cart *store.Cart) error {
	if m.error != nil {
		return m.error
	}
	m.carts[cart.UserID] = cart
	return nil
}

func (m *mockCartStore) Delete(_ context.Context, userID uuid.UUID) error {
	if m.error != nil {
		return m.error
	}
	delete(m.carts, userID)
	return nil
}

func Test_CartService_GetEmpty(t *testing.T) {
	// given
	service := NewService(newMockCartStore())
	userID := uuid.New()

	// when
	cart, err := service.Get(context.Background(), userID)

	// then
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Lines)
}

func Test_CartService_SetLine(t *testing.T) {
	// given
	service := NewService(newMockCartStore())
	userID := uuid.New()
	productA := uuid.New()
	productB := uuid.New()

	// when: add two lines
	_, err := service.SetLine(context.Background(), userID, LineDto{ProductID: productA, Quantity: 2})
	require.NoError(t, err)
	cart, err := service.SetLine(context.Background(), userID, LineDto{ProductID: productB, Quantity: 1})
	require.NoError(t, err)

	// then
	require.Len(t, cart.Lines, 2)

	// when: change the quantity of an existing line
	cart, err = service.SetLine(context.Background(), userID, LineDto{ProductID: productA, Quantity: 5})
	require.NoError(t, err)

	// then: still two lines, quantity replaced
	require.Len(t, cart.Lines, 2)
	for _, line := range cart.Lines {
		if line.ProductID == productA {
			assert.Equal(t, int32(5), line.Quantity)
		}
	}

	// when: a zero quantity removes the line
	cart, err = service.SetLine(context.Background(), userID, LineDto{ProductID: productA, Quantity: 0})
	require.NoError(t, err)

	// then
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, productB, cart.Lines[0].ProductID)
}

func Test_CartService_Clear(t *testing.T) {
	// given
	mockStore := newMockCartStore()
	service := NewService(mockStore)
	userID := uuid.New()
	_, err := service.SetLine(context.Background(), userID, LineDto{ProductID: uuid.New(), Quantity: 1})
	require.NoError(t, err)

	// when
	err = service.Clear(context.Background(), userID)

	// then
	require.NoError(t, err)
	cart, err := service.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}
