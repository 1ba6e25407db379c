package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arjunmeena977/vendor-ecommerce/internal/auth"
	usererrors "github.com/arjunmeena977/vendor-ecommerce/internal/user/errors"
	"github.com/arjunmeena977/vendor-ecommerce/internal/user/service"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUserService is a mock implementation of the UserService interface.
type mockUserService struct {
	user    *service.UserDto
	vendors []service.UserDto
	error   error
}

func (m *mockUserService) Register(_ context.Context, _ service.RegisterDto) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockUserService) Authenticate(_ context.Context, _, _ string) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockUserService) FindByID(_ context.Context, _ uuid.UUID) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockUserService) FindVendors(_ context.Context, _, _ int32) ([]service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.vendors, nil
}

func (m *mockUserService) Approve(_ context.Context, _ uuid.UUID) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func (m *mockUserService) Reject(_ context.Context, _ uuid.UUID) (*service.UserDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.user, nil
}

func newTestHandler(svc service.UserService) *Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	tokens := auth.NewTokenManager(config.JWTConfig{
		Secret: "0123456789abcdef0123456789abcdef", Issuer: "test", TTL: time.Hour,
	})
	return NewHandler(svc, tokens, nil, logger)
}

func sampleUserDto(role string) *service.UserDto {
	return &service.UserDto{
		ID:        uuid.New(),
		Name:      "Alice",
		Email:     "alice@example.com",
		Role:      role,
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

func Test_UserAPI_Register(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockUserService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - user created",
			mockService:  mockUserService{user: sampleUserDto(auth.RoleUser)},
			body:         `{"name": "Alice", "email": "alice@example.com", "password": "secret-password"}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - email taken",
			mockService:  mockUserService{error: usererrors.ErrEmailAlreadyExists},
			body:         `{"name": "Alice", "email": "alice@example.com", "password": "secret-password"}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - short password",
			mockService:  mockUserService{},
			body:         `{"name": "Alice", "email": "alice@example.com", "password": "short"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - bad role",
			mockService:  mockUserService{},
			body:         `{"name": "Alice", "email": "alice@example.com", "password": "secret-password", "role": "ADMIN"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - malformed body",
			mockService:  mockUserService{},
			body:         `{not json`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.Register(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

func Test_UserAPI_Login(t *testing.T) {
	user := sampleUserDto(auth.RoleUser)

	testCases := []struct {
		name         string
		mockService  mockUserService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - token issued",
			mockService:  mockUserService{user: user},
			body:         `{"email": "alice@example.com", "password": "secret-password"}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - bad credentials",
			mockService:  mockUserService{error: usererrors.ErrInvalidCredentials},
			body:         `{"email": "alice@example.com", "password": "wrong"}`,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Error - missing email",
			mockService:  mockUserService{},
			body:         `{"password": "secret-password"}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.Login(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusOK {
				var resp struct {
					Token string          `json:"token"`
					User  service.UserDto `json:"user"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, user.ID, resp.User.ID)
			}
		})
	}
}

func Test_UserAPI_ApproveVendor(t *testing.T) {
	approved := sampleUserDto(auth.RoleVendor)
	approved.VendorStatus = auth.VendorApproved
	vendorID := uuid.New()

	testCases := []struct {
		name         string
		mockService  mockUserService
		vendorID     string
		expectedCode int
	}{
		{
			name:         "Success - vendor approved",
			mockService:  mockUserService{user: approved},
			vendorID:     vendorID.String(),
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - not a vendor",
			mockService:  mockUserService{error: usererrors.ErrNotVendor},
			vendorID:     vendorID.String(),
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - unknown user",
			mockService:  mockUserService{error: usererrors.ErrUserNotFound},
			vendorID:     vendorID.String(),
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - invalid id",
			mockService:  mockUserService{},
			vendorID:     "123-invalid-id",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/vendors/"+tc.vendorID+"/approve", nil)
			req.SetPathValue("id", tc.vendorID)
			rr := httptest.NewRecorder()

			// when
			api.ApproveVendor(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusOK {
				var updated service.UserDto
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
				assert.Equal(t, auth.VendorApproved, updated.VendorStatus)
			}
		})
	}
}

func Test_UserAPI_Me(t *testing.T) {
	// given
	user := sampleUserDto(auth.RoleUser)
	api := newTestHandler(&mockUserService{user: user})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	identity := &auth.Identity{ID: user.ID, Role: auth.RoleUser}
	req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	rr := httptest.NewRecorder()

	// when
	api.Me(rr, req)

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	var got service.UserDto
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, user.ID, got.ID)

	// when: anonymous request
	rr = httptest.NewRecorder()
	api.Me(rr, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	// then
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
