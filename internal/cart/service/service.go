// Package service provides the implementation of cart business logic.
package service

import (
	"context"
	"fmt"

	"github.com/arjunmeena977/vendor-ecommerce/internal/cart/store"
	"github.com/google/uuid"
)

// CartService defines the methods for managing a customer's cart.
type CartService interface {
	// Get returns the user's cart, empty if none is stored.
	Get(ctx context.Context, userID uuid.UUID) (*CartDto, error)

	// SetLine sets the quantity for a product in the cart. A quantity of
	// zero or less removes the line.
	SetLine(ctx context.Context, userID uuid.UUID, line LineDto) (*CartDto, error)

	// Clear drops the user's cart.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// Service implements CartService and provides methods to manage carts.
type Service struct {
	repository store.CartStore
}

// NewService creates a new instance of CartService with the provided repository.
func NewService(repo store.CartStore) *Service {
	return &Service{repository: repo}
}

// LineDto represents a single cart line in requests and responses.
type LineDto struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity"`
}

// CartDto represents the data transfer object for a cart.
type CartDto struct {
	UserID uuid.UUID `json:"user_id"`
	Lines  []LineDto `json:"lines"`
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*CartDto, error) {
	cart, err := s.repository.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return toDto(cart), nil
}

func (s *Service) SetLine(ctx context.Context, userID uuid.UUID, line LineDto) (*CartDto, error) {
	cart, err := s.repository.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}

	updated := cart.Lines[:0:0]
	for _, l := range cart.Lines {
		if l.ProductID != line.ProductID {
			updated = append(updated, l)
		}
	}
	if line.Quantity > 0 {
		updated = append(updated, store.Line{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	cart.Lines = updated

	if err := s.repository.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return toDto(cart), nil
}

func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repository.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// toDto converts a store.Cart to a CartDto.
func toDto(cart *store.Cart) *CartDto {
	lines := make([]LineDto, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = LineDto{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return &CartDto{UserID: cart.UserID, Lines: lines}
}
