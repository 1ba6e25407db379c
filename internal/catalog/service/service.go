// Package service provides the implementation of catalog business logic.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/arjunmeena977/vendor-ecommerce/internal/catalog/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type CatalogService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// Search returns active products matching the keyword (substring,
	// case-insensitive). An empty keyword returns all active products.
	Search(ctx context.Context, keyword string, offset, limit int32) ([]ProductDto, error)

	// FindByVendor returns the products owned by the given vendor.
	FindByVendor(ctx context.Context, vendorID uuid.UUID, offset, limit int32) ([]ProductDto, error)

	// FindAll returns every product, active or not. Admin use only.
	FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error)

	// Create adds a new product owned by vendorID.
	Create(ctx context.Context, vendorID uuid.UUID, product ProductCreateDto) (*ProductDto, error)

	// Update modifies a product owned by vendorID.
	// Returns ErrProductNotFound on a missing product or ownership mismatch.
	Update(ctx context.Context, vendorID uuid.UUID, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product owned by vendorID.
	// Returns ErrProductNotFound on a missing product or ownership mismatch.
	DeleteByID(ctx context.Context, vendorID uuid.UUID, id uuid.UUID) error

	// DecrementStock atomically subtracts qty from a product's stock.
	// Returns ErrInsufficientStock if the guard is on and stock is too low.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int32, allowNegative bool) (*ProductDto, error)
}

// Service implements CatalogService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of CatalogService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{repository: repo}
}

// ProductCreateDto represents the data transfer object for creating a new product.
type ProductCreateDto struct {
	Title       string          `json:"title"       validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int32           `json:"stock"       validate:"min=0"`
	ImageURL    *string         `json:"image_url"`
}

// ProductUpdateDto is a partial update; absent fields keep their value.
type ProductUpdateDto struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int32           `json:"stock"`
	IsActive    *bool            `json:"is_active"`
	ImageURL    *string          `json:"image_url"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          uuid.UUID       `json:"id"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int32           `json:"stock"`
	ImageURL    *string         `json:"image_url,omitempty"`
	IsActive    bool            `json:"is_active"`
	Version     int32           `json:"version"`
	CreatedAt   string          `json:"created_at"`
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

func (s *Service) Search(ctx context.Context, keyword string, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.Search(ctx, keyword, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return toDtos(products), nil
}

func (s *Service) FindByVendor(ctx context.Context, vendorID uuid.UUID, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindByVendor(ctx, vendorID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vendor products: %w", err)
	}
	return toDtos(products), nil
}

func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

func (s *Service) Create(ctx context.Context, vendorID uuid.UUID, product ProductCreateDto) (*ProductDto, error) {
	if product.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}
	created, err := s.repository.Create(ctx, store.CreateProductParams{
		VendorID:    vendorID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		ImageURL:    product.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return toDto(created), nil
}

func (s *Service) Update(ctx context.Context, vendorID uuid.UUID, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error) {
	if product.Price != nil && product.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}
	if product.Stock != nil && *product.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative")
	}
	updated, err := s.repository.Update(ctx, store.UpdateProductParams{
		ID:          id,
		VendorID:    vendorID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		IsActive:    product.IsActive,
		ImageURL:    product.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	return toDto(updated), nil
}

func (s *Service) DeleteByID(ctx context.Context, vendorID uuid.UUID, id uuid.UUID) error {
	return s.repository.DeleteByID(ctx, id, vendorID)
}

func (s *Service) DecrementStock(ctx context.Context, id uuid.UUID, qty int32, allowNegative bool) (*ProductDto, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	product, err := s.repository.DecrementStock(ctx, id, qty, allowNegative)
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		VendorID:    product.VendorID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.StockQuantity,
		ImageURL:    product.ImageURL,
		IsActive:    product.IsActive,
		Version:     product.Version,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
	}
}

func toDtos(products []store.Product) []ProductDto {
	dtos := make([]ProductDto, len(products))
	for i := range products {
		dtos[i] = *toDto(&products[i])
	}
	return dtos
}
