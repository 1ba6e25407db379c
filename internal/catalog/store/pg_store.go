package store

import (
	"context"
	"errors"
	"fmt"

	cerrors "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = `id, vendor_id, title, description, price, stock_quantity, image_url, is_active, version, created_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.VendorID, &p.Title, &p.Description, &p.Price,
		&p.StockQuantity, &p.ImageURL, &p.IsActive, &p.Version, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

func (p *PgStore) Search(ctx context.Context, keyword string, offset, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE is_active AND title ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, keyword, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return collectProducts(rows)
}

func (p *PgStore) FindByVendor(ctx context.Context, vendorID uuid.UUID, offset, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE vendor_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, vendorID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find vendor products: %w", err)
	}
	return collectProducts(rows)
}

func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return collectProducts(rows)
}

func (p *PgStore) Create(ctx context.Context, params CreateProductParams) (*Product, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO products (vendor_id, title, description, price, stock_quantity, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		params.VendorID, params.Title, params.Description, params.Price, params.Stock, params.ImageURL)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (p *PgStore) Update(ctx context.Context, params UpdateProductParams) (*Product, error) {
	// COALESCE keeps the stored value for fields the caller did not send.
	row := p.db.QueryRow(ctx, `
		UPDATE products SET
			title          = COALESCE($3, title),
			description    = COALESCE($4, description),
			price          = COALESCE($5, price),
			stock_quantity = COALESCE($6, stock_quantity),
			is_active      = COALESCE($7, is_active),
			image_url      = COALESCE($8, image_url),
			version        = version + 1
		WHERE id = $1 AND vendor_id = $2
		RETURNING `+productColumns,
		params.ID, params.VendorID, params.Title, params.Description,
		params.Price, params.Stock, params.IsActive, params.ImageURL)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID, vendorID uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1 AND vendor_id = $2`, id, vendorID)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return cerrors.ErrProductNotFound
	}
	return nil
}

func (p *PgStore) DecrementStock(ctx context.Context, id uuid.UUID, qty int32, allowNegative bool) (*Product, error) {
	product, err := decrementStock(ctx, p.db, id, qty, allowNegative)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// decrementStock runs the conditional decrement against any pgx querier, so
// the order store can reuse it inside a transaction.
// The single UPDATE is the concurrency guard: two simultaneous decrements
// serialize on the row lock and each one re-evaluates the stock guard.
func decrementStock(ctx context.Context, q querier, id uuid.UUID, qty int32, allowNegative bool) (*Product, error) {
	row := q.QueryRow(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND ($3 OR stock_quantity >= $2)
		RETURNING `+productColumns, id, qty, allowNegative)
	product, err := scanProduct(row)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}
	// No row matched: either the product is gone or the guard failed.
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check product existence: %w", err)
	}
	if !exists {
		return nil, cerrors.ErrProductNotFound
	}
	return nil, cerrors.ErrInsufficientStock
}

// DecrementStockTx applies the conditional decrement within the given transaction.
func DecrementStockTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int32, allowNegative bool) (*Product, error) {
	return decrementStock(ctx, tx, id, qty, allowNegative)
}

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}
