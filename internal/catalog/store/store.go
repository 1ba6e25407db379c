// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the persisted catalog record. Version supports optimistic
// concurrency on full updates; stock decrements bypass it and are applied
// as a single conditional SQL update instead.
type Product struct {
	ID            uuid.UUID
	VendorID      uuid.UUID
	Title         string
	Description   string
	Price         decimal.Decimal
	StockQuantity int32
	ImageURL      *string
	IsActive      bool
	Version       int32
	CreatedAt     time.Time
}

// CreateProductParams carries the fields required to insert a product.
type CreateProductParams struct {
	VendorID    uuid.UUID
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int32
	ImageURL    *string
}

// UpdateProductParams is a partial update; nil fields keep the stored value.
// The update only applies when the product belongs to VendorID.
type UpdateProductParams struct {
	ID          uuid.UUID
	VendorID    uuid.UUID
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int32
	IsActive    *bool
	ImageURL    *string
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Search returns active products whose title contains the keyword
	// (case-insensitive). An empty keyword matches everything.
	Search(ctx context.Context, keyword string, offset, limit int32) ([]Product, error)

	// FindByVendor returns all products owned by the given vendor.
	FindByVendor(ctx context.Context, vendorID uuid.UUID, offset, limit int32) ([]Product, error)

	// FindAll returns every product, active or not.
	FindAll(ctx context.Context, offset, limit int32) ([]Product, error)

	// Create adds a new product to the system.
	Create(ctx context.Context, params CreateProductParams) (*Product, error)

	// Update modifies a product owned by params.VendorID.
	// Returns ErrProductNotFound on a missing product or ownership mismatch.
	Update(ctx context.Context, params UpdateProductParams) (*Product, error)

	// DeleteByID removes a product owned by vendorID.
	// Returns ErrProductNotFound on a missing product or ownership mismatch.
	DeleteByID(ctx context.Context, id uuid.UUID, vendorID uuid.UUID) error

	// DecrementStock atomically subtracts qty from the product's stock.
	// Unless allowNegative is set, a decrement that would drop below zero
	// fails with ErrInsufficientStock and leaves the row untouched.
	// Concurrent decrements serialize on the row, so no update is lost.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int32, allowNegative bool) (*Product, error)
}
