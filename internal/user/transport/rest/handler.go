// Package rest provides HTTP handlers for user, authentication and vendor
// approval operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arjunmeena977/vendor-ecommerce/internal/auth"
	usererrors "github.com/arjunmeena977/vendor-ecommerce/internal/user/errors"
	"github.com/arjunmeena977/vendor-ecommerce/internal/user/service"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Handler struct {
	service  service.UserService
	tokens   *auth.TokenManager
	mw       *auth.Middleware
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the user API.
func NewHandler(service service.UserService, tokens *auth.TokenManager, mw *auth.Middleware, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		tokens:   tokens,
		mw:       mw,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the user service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	// Self-profile stays readable for unapproved vendors, hence Authenticated
	// rather than ApprovedVendor.
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.Require(auth.Authenticated))
		r.Get("/api/v1/me", h.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.Require(auth.Admin))
		r.Route("/api/v1/admin/vendors", func(r chi.Router) {
			r.Get("/", h.FindVendors)
			r.Patch("/{id}/approve", h.ApproveVendor)
			r.Patch("/{id}/reject", h.RejectVendor)
		})
	})
}

// Register handles user self-registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var registerDto service.RegisterDto
	if err := json.NewDecoder(r.Body).Decode(&registerDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, registerDto) {
		return
	}

	created, err := h.service.Register(r.Context(), registerDto)
	if err != nil {
		if errors.Is(err, usererrors.ErrEmailAlreadyExists) {
			mLogger.WarnContext(r.Context(), "Registration with taken email", "email", registerDto.Email)
			web.RespondError(w, mLogger, http.StatusConflict, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error registering user", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to register user")
		return
	}
	mLogger.InfoContext(r.Context(), "User registered", slog.String("ID", created.ID.String()), "role", created.Role)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  service.UserDto `json:"user"`
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, req) {
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usererrors.ErrInvalidCredentials) {
			web.RespondError(w, mLogger, http.StatusUnauthorized, err.Error())
			return
		}
		mLogger.ErrorContext(r.Context(), "Error authenticating user", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to log in")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error issuing token", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to log in")
		return
	}
	mLogger.InfoContext(r.Context(), "User logged in", slog.String("ID", user.ID.String()))
	web.RespondJSON(w, mLogger, http.StatusOK, loginResponse{Token: token, User: *user})
}

// Me returns the profile of the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.FindByID(r.Context(), identity.ID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving profile", "ID", identity.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindVendors lists all vendors for the admin dashboard.
func (h *Handler) FindVendors(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, offset, ok := web.ParsePagination(w, r, mLogger)
	if !ok {
		return
	}
	vendors, err := h.service.FindVendors(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving vendor list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch vendors")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, vendors)
}

// ApproveVendor sets the target vendor's status to APPROVED.
func (h *Handler) ApproveVendor(w http.ResponseWriter, r *http.Request) {
	h.setVendorStatus(w, r, h.service.Approve, "Vendor approved")
}

// RejectVendor sets the target vendor's status to REJECTED.
func (h *Handler) RejectVendor(w http.ResponseWriter, r *http.Request) {
	h.setVendorStatus(w, r, h.service.Reject, "Vendor rejected")
}

func (h *Handler) setVendorStatus(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, vendorID uuid.UUID) (*service.UserDto, error), logMsg string) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	updated, err := action(r.Context(), id)
	if err != nil {
		if errors.Is(err, usererrors.ErrUserNotFound) || errors.Is(err, usererrors.ErrNotVendor) {
			mLogger.WarnContext(r.Context(), "Vendor not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Vendor with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating vendor status", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update vendor with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), logMsg, slog.String("ID", updated.ID.String()), "status", updated.VendorStatus)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// validateStruct validates the payload and writes field-level errors. Returns false if invalid.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, payload any) bool {
	if err := h.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
