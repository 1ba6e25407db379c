// Package store provides an interface for order storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. An order moves forward one step at a time:
// PENDING -> SHIPPED -> DELIVERED. DELIVERED is terminal.
const (
	StatusPending   = "PENDING"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
)

// Order is one vendor's share of a checkout. A checkout spanning several
// vendors produces several orders, each owned by exactly one vendor.
type Order struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	VendorID    uuid.UUID
	TotalAmount decimal.Decimal
	Address     string
	Status      string
	CreatedAt   time.Time
}

// OrderItem is one product line within an order. PriceAtPurchase is the
// catalog price captured at checkout; later price edits do not touch it.
type OrderItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductTitle    string
	Quantity        int32
	PriceAtPurchase decimal.Decimal
}

// CreateOrderItemParams carries one line of a new order.
type CreateOrderItemParams struct {
	ProductID       uuid.UUID
	Quantity        int32
	PriceAtPurchase decimal.Decimal
	AllowNegative   bool
}

// CreateOrderParams carries everything needed to persist one vendor's order.
type CreateOrderParams struct {
	UserID      uuid.UUID
	VendorID    uuid.UUID
	TotalAmount decimal.Decimal
	Address     string
	Items       []CreateOrderItemParams
}

// OrderDetails is an order with its items and the names resolved for display.
type OrderDetails struct {
	Order
	BuyerName   string
	BuyerEmail  string
	VendorName  string
	VendorEmail string
	Items       []OrderItem
}

// OrderStore is an interface for order storage operations.
type OrderStore interface {
	// CreateOrder atomically decrements stock for every item and inserts
	// the order with its items. If any decrement fails the whole order is
	// rolled back; other orders from the same checkout are unaffected.
	CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error)

	// FindByID loads an order with items and participant details.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*OrderDetails, error)

	// ListByUser returns the orders placed by a customer, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]OrderDetails, error)

	// ListByVendor returns the orders assigned to a vendor, newest first.
	ListByVendor(ctx context.Context, vendorID uuid.UUID, offset, limit int32) ([]OrderDetails, error)

	// ListAll returns every order, newest first. Admin use only.
	ListAll(ctx context.Context, offset, limit int32) ([]OrderDetails, error)

	// UpdateStatus moves an order owned by vendorID from fromStatus to
	// toStatus as a single compare-and-set. Returns ErrOrderNotFound if the
	// order is missing, owned by someone else, or no longer in fromStatus.
	UpdateStatus(ctx context.Context, id, vendorID uuid.UUID, fromStatus, toStatus string) (*Order, error)
}
