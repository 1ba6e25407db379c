// Package rest provides HTTP handlers for checkout and order management.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arjunmeena977/vendor-ecommerce/internal/auth"
	caterrors "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/errors"
	ordererrors "github.com/arjunmeena977/vendor-ecommerce/internal/order/errors"
	"github.com/arjunmeena977/vendor-ecommerce/internal/order/service"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.OrderService
	mw       *auth.Middleware
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the order API.
func NewHandler(service service.OrderService, mw *auth.Middleware, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		mw:       mw,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the order service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.Require(auth.Authenticated))
		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Post("/", h.PlaceOrder)
			r.Get("/", h.ListMine)
			r.Get("/{id}", h.FindByID)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.Require(auth.ApprovedVendor))
		r.Route("/api/v1/vendor/orders", func(r chi.Router) {
			r.Get("/", h.ListForVendor)
			r.Patch("/{id}/status", h.UpdateStatus)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.Require(auth.Admin))
		r.Get("/api/v1/admin/orders", h.ListAll)
	})
}

// PlaceOrder creates one PENDING order per vendor from the checkout lines.
// When no items are sent the stored cart is used.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	var placeDto service.PlaceOrderDto
	if err := json.NewDecoder(r.Body).Decode(&placeDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, placeDto) {
		return
	}

	orders, err := h.service.PlaceOrder(r.Context(), identity.ID, placeDto)
	if err != nil {
		if len(orders) > 0 {
			// A later vendor group failed after earlier ones committed. The
			// committed orders must stay visible to the buyer, otherwise a
			// retry would purchase them a second time.
			mLogger.WarnContext(r.Context(), "Checkout partially completed",
				"user_id", identity.ID, "orders", len(orders), "error", err)
			web.RespondJSON(w, mLogger, http.StatusMultiStatus, partialCheckoutResponse{
				Orders: orders,
				Error:  err.Error(),
			})
			return
		}
		switch {
		case errors.Is(err, ordererrors.ErrEmptyOrder):
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
		case errors.Is(err, caterrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Checkout references unknown product", "error", err)
			web.RespondError(w, mLogger, http.StatusNotFound, err.Error())
		case errors.Is(err, caterrors.ErrInsufficientStock):
			mLogger.WarnContext(r.Context(), "Checkout with insufficient stock", "user_id", identity.ID, "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
		default:
			mLogger.ErrorContext(r.Context(), "Error placing order", "user_id", identity.ID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to place order")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Order placed", "user_id", identity.ID, "orders", len(orders))
	web.RespondJSON(w, mLogger, http.StatusCreated, orders)
}

// partialCheckoutResponse reports a checkout where some vendor orders
// committed before a later group failed.
type partialCheckoutResponse struct {
	Orders []service.OrderDto `json:"orders"`
	Error  string             `json:"error"`
}

// FindByID returns one order visible to the requester.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	requester := service.Requester{UserID: identity.ID, IsAdmin: identity.Role == auth.RoleAdmin}
	order, err := h.service.FindByID(r.Context(), requester, id)
	if err != nil {
		if errors.Is(err, ordererrors.ErrOrderNotFound) {
			mLogger.WarnContext(r.Context(), "Order not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving order", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve order with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, order)
}

// ListMine lists the authenticated customer's orders.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	limit, offset, ok := web.ParsePagination(w, r, mLogger)
	if !ok {
		return
	}

	orders, err := h.service.ListMine(r.Context(), identity.ID, offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error listing orders", "user_id", identity.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, orders)
}

// ListForVendor lists the orders assigned to the authenticated vendor.
func (h *Handler) ListForVendor(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	limit, offset, ok := web.ParsePagination(w, r, mLogger)
	if !ok {
		return
	}

	orders, err := h.service.ListForVendor(r.Context(), identity.ID, offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error listing vendor orders", "vendor_id", identity.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, orders)
}

// ListAll lists every order for the admin dashboard.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, offset, ok := web.ParsePagination(w, r, mLogger)
	if !ok {
		return
	}

	orders, err := h.service.ListAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error listing orders", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus advances an order one step along the fulfilment pipeline.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, req) {
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), identity.ID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ordererrors.ErrOrderNotFound):
			mLogger.WarnContext(r.Context(), "Order not found for status update", "ID", id, "vendor_id", identity.ID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", id))
		case errors.Is(err, ordererrors.ErrInvalidStatus):
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
		case errors.Is(err, ordererrors.ErrInvalidTransition):
			mLogger.WarnContext(r.Context(), "Invalid status transition", "ID", id, "to", req.Status)
			web.RespondError(w, mLogger, http.StatusConflict, err.Error())
		default:
			mLogger.ErrorContext(r.Context(), "Error updating order status", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update order with ID %s", id))
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Order status updated", slog.String("ID", id.String()), "status", updated.Status)
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
