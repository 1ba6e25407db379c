// Package auth holds the authenticated identity model, bearer token handling
// and the capability-based authorization gate.
package auth

import (
	"context"

	"github.com/google/uuid"
)

// Roles assignable to a user.
const (
	RoleAdmin  = "ADMIN"
	RoleVendor = "VENDOR"
	RoleUser   = "USER"
)

// Vendor approval statuses. Meaningful only for users with RoleVendor.
const (
	VendorPending  = "PENDING"
	VendorApproved = "APPROVED"
	VendorRejected = "REJECTED"
)

// Identity is the resolved actor of a request. VendorStatus is empty for
// non-vendor roles.
type Identity struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Role         string
	VendorStatus string
}

// IsApprovedVendor reports whether the identity may transact as a vendor.
func (i *Identity) IsApprovedVendor() bool {
	return i.Role == RoleVendor && i.VendorStatus == VendorApproved
}

// IdentityResolver loads the current state of a user by ID. The token only
// carries the user ID; role and approval status are re-read per request so
// that an admin decision takes effect without re-login.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uuid.UUID) (*Identity, error)
}

type identityKey struct{}

// WithIdentity adds the authenticated identity to the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the authenticated identity from the context.
// Returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
