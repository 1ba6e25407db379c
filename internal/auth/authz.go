package auth

import "errors"

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrVendorNotApproved = errors.New("vendor account not approved yet")
)

// Capability is the access level an operation demands. Every route declares
// exactly one capability; the gate is evaluated once per request instead of
// being re-derived inside each handler.
type Capability int

const (
	// Public requires no identity.
	Public Capability = iota
	// Authenticated requires any logged-in user. Vendor self-profile routes
	// use this level so a PENDING vendor can still read their own account.
	Authenticated
	// ApprovedVendor requires role VENDOR with an APPROVED status.
	ApprovedVendor
	// Admin requires role ADMIN.
	Admin
)

// Authorize decides whether the identity may invoke an operation of the given
// capability. A nil identity is an anonymous actor.
func Authorize(id *Identity, c Capability) error {
	switch c {
	case Public:
		return nil
	case Authenticated:
		if id == nil {
			return ErrUnauthenticated
		}
		return nil
	case ApprovedVendor:
		if id == nil {
			return ErrUnauthenticated
		}
		if id.Role != RoleVendor {
			return ErrForbidden
		}
		if id.VendorStatus != VendorApproved {
			return ErrVendorNotApproved
		}
		return nil
	case Admin:
		if id == nil {
			return ErrUnauthenticated
		}
		if id.Role != RoleAdmin {
			return ErrForbidden
		}
		return nil
	}
	return ErrForbidden
}
