// Package rest provides HTTP handlers for catalog operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arjunmeena977/vendor-ecommerce/internal/auth"
	caterrors "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/errors"
	"github.com/arjunmeena977/vendor-ecommerce/internal/catalog/service"
	"github.com/arjunmeena977/vendor-ecommerce/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.CatalogService
	mw       *auth.Middleware
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the catalog API.
func NewHandler(service service.CatalogService, mw *auth.Middleware, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		mw:       mw,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.Search)
		r.Get("/{id}", h.FindByID)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.Require(auth.ApprovedVendor))
		r.Route("/api/v1/vendor/products", func(r chi.Router) {
			r.Get("/", h.FindMine)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Use(h.mw.Require(auth.Admin))
		r.Get("/api/v1/admin/products", h.FindAll)
	})
}

// Search lists active products, optionally filtered by the keyword query parameter.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, offset, ok := web.ParsePagination(w, r, mLogger)
	if !ok {
		return
	}
	keyword := r.URL.Query().Get("keyword")

	products, err := h.service.Search(r.Context(), keyword, offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error searching products", "keyword", keyword, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Products searched", "keyword", keyword, "count", len(products))
	web.RespondJSON(w, mLogger, http.StatusOK, products)
}

// FindByID returns a single product by ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	product, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, caterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, product)
}

// FindMine lists the authenticated vendor's own products.
func (h *Handler) FindMine(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	limit, offset, ok := web.ParsePagination(w, r, mLogger)
	if !ok {
		return
	}

	products, err := h.service.FindByVendor(r.Context(), identity.ID, offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving vendor products", "vendor_id", identity.ID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, products)
}

// FindAll lists every product for the admin dashboard, inactive ones included.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, offset, ok := web.ParsePagination(w, r, mLogger)
	if !ok {
		return
	}

	products, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, products)
}

// Create adds a product owned by the authenticated vendor.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	var createDto service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&createDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, createDto) {
		return
	}
	if createDto.Price.IsNegative() {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Price must not be negative")
		return
	}

	created, err := h.service.Create(r.Context(), identity.ID, createDto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created", slog.String("ID", created.ID.String()), "vendor_id", identity.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update applies a partial update to a product owned by the authenticated vendor.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var updateDto service.ProductUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&updateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if updateDto.Price != nil && updateDto.Price.IsNegative() {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Price must not be negative")
		return
	}
	if updateDto.Stock != nil && *updateDto.Stock < 0 {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Stock must not be negative")
		return
	}

	updated, err := h.service.Update(r.Context(), identity.ID, id, updateDto)
	if err != nil {
		if errors.Is(err, caterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id, "vendor_id", identity.ID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated", slog.String("ID", id.String()))
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Delete removes a product owned by the authenticated vendor.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	identity, ok := auth.RequireIdentity(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.service.DeleteByID(r.Context(), identity.ID, id); err != nil {
		if errors.Is(err, caterrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for delete", "ID", id, "vendor_id", identity.ID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted", slog.String("ID", id.String()))
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
