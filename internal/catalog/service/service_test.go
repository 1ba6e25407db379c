package service

import (
	"context"
	"testing"
	"time"

	caterrors "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/errors"
	"github.com/arjunmeena977/vendor-ecommerce/internal/catalog/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface.
type mockProductStore struct {
	product      *store.Product
	products     []store.Product
	error        error
	createParams *store.CreateProductParams
	updateParams *store.UpdateProductParams
	deleteCalled bool
}

func (m *mockProductStore) FindByID(_ context.Context, _ uuid.UUID) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductStore) Search(_ context.Context, _ string, _, _ int32) ([]store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductStore) FindByVendor(_ context.Context, _ uuid.UUID, _, _ int32) ([]store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductStore) FindAll(_ context.Context, _, _ int32) ([]store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductStore) Create(_ context.Context, params store.CreateProductParams) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	m.createParams = &params
	return &store.Product{
		ID:            uuid.New(),
		VendorID:      params.VendorID,
		Title:         params.Title,
		Description:   params.Description,
		Price:         params.Price,
		StockQuantity: params.Stock,
		ImageURL:      params.ImageURL,
		IsActive:      true,
		Version:       1,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *mockProductStore) Update(_ context.Context, params store.UpdateProductParams) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	m.updateParams = &params
	return m.product, nil
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ uuid.UUID, _ uuid.UUID) error {
	m.deleteCalled = true
	return m.error
}

func (m *mockProductStore) DecrementStock(_ context.Context, _ uuid.UUID, _ int32, _ bool) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func sampleProduct(vendorID uuid.UUID) *store.Product {
	return &store.Product{
		ID:            uuid.New(),
		VendorID:      vendorID,
		Title:         "Walnut desk",
		Description:   "Solid wood",
		Price:         decimal.RequireFromString("249.99"),
		StockQuantity: 4,
		IsActive:      true,
		Version:       1,
		CreatedAt:     time.Now(),
	}
}

func Test_CatalogService_FindByID(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		expectError error
	}{
		{name: "found", mockStore: &mockProductStore{product: sampleProduct(uuid.New())}},
		{name: "not found", mockStore: &mockProductStore{error: caterrors.ErrProductNotFound}, expectError: caterrors.ErrProductNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service := NewService(tc.mockStore)

			// when
			found, err := service.FindByID(context.Background(), uuid.New())

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.mockStore.product.ID, found.ID)
			assert.True(t, found.Price.Equal(tc.mockStore.product.Price))
		})
	}
}

func Test_CatalogService_Create(t *testing.T) {
	// given
	mockStore := &mockProductStore{}
	service := NewService(mockStore)
	vendorID := uuid.New()

	// when
	created, err := service.Create(context.Background(), vendorID, ProductCreateDto{
		Title:       "Walnut desk",
		Description: "Solid wood",
		Price:       decimal.RequireFromString("249.99"),
		Stock:       4,
	})

	// then
	require.NoError(t, err)
	assert.Equal(t, vendorID, created.VendorID)
	assert.True(t, created.IsActive, "new products are active by default")
	require.NotNil(t, mockStore.createParams)
	assert.Equal(t, vendorID, mockStore.createParams.VendorID)
}

func Test_CatalogService_Create_NegativePrice(t *testing.T) {
	// given
	service := NewService(&mockProductStore{})

	// when
	created, err := service.Create(context.Background(), uuid.New(), ProductCreateDto{
		Title: "Broken", Description: "x", Price: decimal.RequireFromString("-1"),
	})

	// then
	assert.Error(t, err)
	assert.Nil(t, created)
}

func Test_CatalogService_Update_ScopedToOwner(t *testing.T) {
	// given
	vendorID := uuid.New()
	mockStore := &mockProductStore{product: sampleProduct(vendorID)}
	service := NewService(mockStore)
	title := "Oak desk"

	// when
	_, err := service.Update(context.Background(), vendorID, mockStore.product.ID, ProductUpdateDto{Title: &title})

	// then
	require.NoError(t, err)
	require.NotNil(t, mockStore.updateParams)
	assert.Equal(t, vendorID, mockStore.updateParams.VendorID, "update must carry the owner scope")
	assert.Equal(t, &title, mockStore.updateParams.Title)
	assert.Nil(t, mockStore.updateParams.Price, "unset fields stay nil")
}

func Test_CatalogService_Update_NotOwned(t *testing.T) {
	// given
	service := NewService(&mockProductStore{error: caterrors.ErrProductNotFound})

	// when
	updated, err := service.Update(context.Background(), uuid.New(), uuid.New(), ProductUpdateDto{})

	// then
	assert.ErrorIs(t, err, caterrors.ErrProductNotFound)
	assert.Nil(t, updated)
}

func Test_CatalogService_DecrementStock(t *testing.T) {
	// given
	mockStore := &mockProductStore{product: sampleProduct(uuid.New())}
	service := NewService(mockStore)

	// when
	_, err := service.DecrementStock(context.Background(), mockStore.product.ID, 0, false)

	// then
	assert.Error(t, err, "non-positive quantity is rejected before hitting the store")

	// when
	_, err = service.DecrementStock(context.Background(), mockStore.product.ID, 2, false)

	// then
	assert.NoError(t, err)
}

func Test_CatalogService_DecrementStock_Insufficient(t *testing.T) {
	// given
	service := NewService(&mockProductStore{error: caterrors.ErrInsufficientStock})

	// when
	_, err := service.DecrementStock(context.Background(), uuid.New(), 5, false)

	// then
	assert.ErrorIs(t, err, caterrors.ErrInsufficientStock)
}
