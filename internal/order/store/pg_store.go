package store

import (
	"context"
	"errors"
	"fmt"

	catalogstore "github.com/arjunmeena977/vendor-ecommerce/internal/catalog/store"
	ordererrors "github.com/arjunmeena977/vendor-ecommerce/internal/order/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements OrderStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of OrderStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// withTransaction wraps fn in a transaction, rolling back on error.
func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const orderColumns = `id, user_id, vendor_id, total_amount, address, status, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.VendorID, &o.TotalAmount, &o.Address, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (p *PgStore) CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error) {
	if len(params.Items) == 0 {
		return nil, ordererrors.ErrEmptyOrder
	}

	var order *Order
	err := p.withTransaction(ctx, func(tx pgx.Tx) error {
		// Decrement first: a failed guard aborts the order before anything
		// is written, leaving sibling orders from the same checkout intact.
		for _, item := range params.Items {
			if _, err := catalogstore.DecrementStockTx(ctx, tx, item.ProductID, item.Quantity, item.AllowNegative); err != nil {
				return err
			}
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO orders (user_id, vendor_id, total_amount, address, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+orderColumns,
			params.UserID, params.VendorID, params.TotalAmount, params.Address, StatusPending)
		created, err := scanOrder(row)
		if err != nil {
			return fmt.Errorf("%w: %w", ordererrors.ErrCreateOrder, err)
		}

		for _, item := range params.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
				VALUES ($1, $2, $3, $4)`,
				created.ID, item.ProductID, item.Quantity, item.PriceAtPurchase)
			if err != nil {
				return fmt.Errorf("%w: failed to insert item: %w", ordererrors.ErrCreateOrder, err)
			}
		}
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

const orderDetailsQuery = `
	SELECT o.id, o.user_id, o.vendor_id, o.total_amount, o.address, o.status, o.created_at,
	       b.name, b.email, v.name, v.email
	FROM orders o
	JOIN users b ON b.id = o.user_id
	JOIN users v ON v.id = o.vendor_id`

func scanOrderDetails(row pgx.Row) (*OrderDetails, error) {
	var d OrderDetails
	err := row.Scan(&d.ID, &d.UserID, &d.VendorID, &d.TotalAmount, &d.Address, &d.Status, &d.CreatedAt,
		&d.BuyerName, &d.BuyerEmail, &d.VendorName, &d.VendorEmail)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*OrderDetails, error) {
	row := p.db.QueryRow(ctx, orderDetailsQuery+` WHERE o.id = $1`, id)
	details, err := scanOrderDetails(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ordererrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	items, err := p.loadItems(ctx, []uuid.UUID{details.ID})
	if err != nil {
		return nil, err
	}
	details.Items = items[details.ID]
	return details, nil
}

func (p *PgStore) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]OrderDetails, error) {
	rows, err := p.db.Query(ctx, orderDetailsQuery+`
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
		OFFSET $2 LIMIT $3`, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by user: %w", err)
	}
	return p.collectDetails(ctx, rows)
}

func (p *PgStore) ListByVendor(ctx context.Context, vendorID uuid.UUID, offset, limit int32) ([]OrderDetails, error) {
	rows, err := p.db.Query(ctx, orderDetailsQuery+`
		WHERE o.vendor_id = $1
		ORDER BY o.created_at DESC
		OFFSET $2 LIMIT $3`, vendorID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by vendor: %w", err)
	}
	return p.collectDetails(ctx, rows)
}

func (p *PgStore) ListAll(ctx context.Context, offset, limit int32) ([]OrderDetails, error) {
	rows, err := p.db.Query(ctx, orderDetailsQuery+`
		ORDER BY o.created_at DESC
		OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return p.collectDetails(ctx, rows)
}

func (p *PgStore) UpdateStatus(ctx context.Context, id, vendorID uuid.UUID, fromStatus, toStatus string) (*Order, error) {
	row := p.db.QueryRow(ctx, `
		UPDATE orders SET status = $4
		WHERE id = $1 AND vendor_id = $2 AND status = $3
		RETURNING `+orderColumns, id, vendorID, fromStatus, toStatus)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ordererrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return order, nil
}

func (p *PgStore) collectDetails(ctx context.Context, rows pgx.Rows) ([]OrderDetails, error) {
	defer rows.Close()
	var details []OrderDetails
	for rows.Next() {
		d, err := scanOrderDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	if err := p.attachItems(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// attachItems loads the items for all given orders in one query.
func (p *PgStore) attachItems(ctx context.Context, details []OrderDetails) error {
	if len(details) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(details))
	for i := range details {
		ids[i] = details[i].ID
	}
	items, err := p.loadItems(ctx, ids)
	if err != nil {
		return err
	}
	for i := range details {
		details[i].Items = items[details[i].ID]
	}
	return nil
}

func (p *PgStore) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]OrderItem, error) {
	rows, err := p.db.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, p.title, i.quantity, i.price_at_purchase
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]OrderItem)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductTitle, &item.Quantity, &item.PriceAtPurchase)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return items, nil
}
