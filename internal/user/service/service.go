// Package service provides the implementation of user-related business logic:
// registration, credential checks and the vendor approval gate.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/arjunmeena977/vendor-ecommerce/internal/auth"
	usererrors "github.com/arjunmeena977/vendor-ecommerce/internal/user/errors"
	"github.com/arjunmeena977/vendor-ecommerce/internal/user/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService defines the methods for managing users and vendor approval.
type UserService interface {
	// Register creates a new user. Vendors start with a PENDING status.
	// Returns ErrEmailAlreadyExists if the email is taken.
	Register(ctx context.Context, user RegisterDto) (*UserDto, error)

	// Authenticate verifies email/password credentials.
	// Returns ErrInvalidCredentials on any mismatch, without revealing whether
	// the email exists.
	Authenticate(ctx context.Context, email, password string) (*UserDto, error)

	// FindByID retrieves a single user by its unique identifier.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*UserDto, error)

	// FindVendors returns all vendors regardless of approval status.
	FindVendors(ctx context.Context, offset, limit int32) ([]UserDto, error)

	// Approve sets the vendor's status to APPROVED. Idempotent.
	// Returns ErrNotVendor if the target is not a vendor.
	Approve(ctx context.Context, vendorID uuid.UUID) (*UserDto, error)

	// Reject sets the vendor's status to REJECTED. Idempotent.
	// Returns ErrNotVendor if the target is not a vendor.
	Reject(ctx context.Context, vendorID uuid.UUID) (*UserDto, error)
}

// Service implements UserService and the auth.IdentityResolver used by the
// authentication middleware.
type Service struct {
	userStore store.UserStore
}

var _ auth.IdentityResolver = (*Service)(nil)

// NewService creates a new instance of UserService with the provided userStore.
func NewService(userStore store.UserStore) *Service {
	return &Service{userStore: userStore}
}

// RegisterDto represents the data transfer object for creating a new user.
type RegisterDto struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"omitempty,oneof=USER VENDOR"`
}

// UserDto represents the data transfer object for a user. The password hash
// never leaves the service layer.
type UserDto struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	VendorStatus string    `json:"vendor_status,omitempty"`
	CreatedAt    string    `json:"created_at"`
}

func (s *Service) Register(ctx context.Context, user RegisterDto) (*UserDto, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := user.Role
	if role == "" {
		role = auth.RoleUser
	}
	var vendorStatus *string
	if role == auth.RoleVendor {
		pending := auth.VendorPending
		vendorStatus = &pending
	}

	created, err := s.userStore.Create(ctx, store.CreateUserParams{
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: string(hash),
		Role:         role,
		VendorStatus: vendorStatus,
	})
	if err != nil {
		return nil, err
	}
	return toDto(created), nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*UserDto, error) {
	user, err := s.userStore.FindByEmail(ctx, email)
	if err != nil {
		// Deliberately the same error as a wrong password.
		return nil, usererrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, usererrors.ErrInvalidCredentials
	}
	return toDto(user), nil
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*UserDto, error) {
	user, err := s.userStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(user), nil
}

// ResolveIdentity implements auth.IdentityResolver.
func (s *Service) ResolveIdentity(ctx context.Context, userID uuid.UUID) (*auth.Identity, error) {
	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	identity := &auth.Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
	if user.VendorStatus != nil {
		identity.VendorStatus = *user.VendorStatus
	}
	return identity, nil
}

func (s *Service) FindVendors(ctx context.Context, offset, limit int32) ([]UserDto, error) {
	vendors, err := s.userStore.FindVendors(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vendors: %w", err)
	}
	dtos := make([]UserDto, len(vendors))
	for i := range vendors {
		dtos[i] = *toDto(&vendors[i])
	}
	return dtos, nil
}

func (s *Service) Approve(ctx context.Context, vendorID uuid.UUID) (*UserDto, error) {
	return s.setVendorStatus(ctx, vendorID, auth.VendorApproved)
}

func (s *Service) Reject(ctx context.Context, vendorID uuid.UUID) (*UserDto, error) {
	return s.setVendorStatus(ctx, vendorID, auth.VendorRejected)
}

// setVendorStatus verifies the target is a vendor before touching its status.
// Re-applying the current status is a no-op by construction.
func (s *Service) setVendorStatus(ctx context.Context, vendorID uuid.UUID, status string) (*UserDto, error) {
	user, err := s.userStore.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if user.Role != auth.RoleVendor {
		return nil, usererrors.ErrNotVendor
	}
	updated, err := s.userStore.UpdateVendorStatus(ctx, vendorID, status)
	if err != nil {
		return nil, err
	}
	return toDto(updated), nil
}

// toDto converts a store.User to a UserDto.
func toDto(user *store.User) *UserDto {
	dto := &UserDto{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.VendorStatus != nil {
		dto.VendorStatus = *user.VendorStatus
	}
	return dto
}
