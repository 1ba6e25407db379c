// Package store provides an interface for user storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the persisted user record. VendorStatus is nil for non-vendor roles.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	VendorStatus *string
	CreatedAt    time.Time
}

// CreateUserParams carries the fields required to insert a new user.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	VendorStatus *string
}

// UserStore is an interface for user storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type UserStore interface {
	// Create inserts a new user. Returns ErrEmailAlreadyExists if the email is taken.
	Create(ctx context.Context, params CreateUserParams) (*User, error)

	// FindByID retrieves a user by its unique identifier.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail retrieves a user by email.
	// Returns ErrUserNotFound if no user exists with the given email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindVendors returns all users with role VENDOR, any approval status.
	FindVendors(ctx context.Context, offset, limit int32) ([]User, error)

	// UpdateVendorStatus sets the approval status of a vendor.
	// Returns ErrUserNotFound if no user exists with the given ID.
	UpdateVendorStatus(ctx context.Context, id uuid.UUID, status string) (*User, error)
}
