// Package rest provides HTTP handlers for cart operations.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arjunmeena977/vendor-ecommerce/internal/auth"
	"github.com/arjunmeena977/vendor-ecommerce/internal/cart/service"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.CartService
	mw       *auth.Middleware
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the cart API.
func NewHandler(service service.CartService, mw *auth.Middleware, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		mw:       mw,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the cart service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.Require(auth.Authenticated))
		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.SetLine)
			r.Delete("/", h.Clear)
		})
	})
}

// Get returns the authenticated user's cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	cart, err := h.service.Get(r.Context(), identity.ID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving cart", "user_id", identity.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

// SetLine sets the quantity for one product in the cart.
// A quantity of zero removes the line.
func (h *Handler) SetLine(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	var line service.LineDto
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, line) {
		return
	}

	cart, err := h.service.SetLine(r.Context(), identity.ID, line)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error updating cart", "user_id", identity.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	mLogger.DebugContext(r.Context(), "Cart updated", "user_id", identity.ID, "lines", len(cart.Lines))
	web.RespondJSON(w, mLogger, http.StatusOK, cart)
}

// Clear drops the authenticated user's cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.Clear(r.Context(), identity.ID); err != nil {
		mLogger.ErrorContext(r.Context(), "Error clearing cart", "user_id", identity.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
