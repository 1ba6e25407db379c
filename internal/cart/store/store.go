// Package store provides an interface for shopping cart storage operations.
package store

import (
	"context"

	"github.com/google/uuid"
)

// Line is a single product entry in a cart.
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

// Cart holds the pending lines for one customer. Carts are transient:
// they live in redis with a TTL and are dropped once an order is placed.
type Cart struct {
	UserID uuid.UUID `json:"user_id"`
	Lines  []Line    `json:"lines"`
}

// CartStore is an interface for cart storage operations.
type CartStore interface {
	// Get returns the cart for the given user. A user without a stored
	// cart gets an empty one, never an error.
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save replaces the stored cart and refreshes its TTL.
	Save(ctx context.Context, cart *Cart) error

	// Delete removes the stored cart. Deleting an absent cart is a no-op.
	Delete(ctx context.Context, userID uuid.UUID) error
}
