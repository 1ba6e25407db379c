package store

import (
	"context"
	"errors"
	"fmt"

	usererrors "github.com/arjunmeena977/vendor-ecommerce/internal/user/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// PgStore implements UserStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of UserStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const userColumns = `id, name, email, password_hash, role, vendor_status, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.VendorStatus, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *PgStore) Create(ctx context.Context, params CreateUserParams) (*User, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role, vendor_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		params.Name, params.Email, params.PasswordHash, params.Role, params.VendorStatus)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, usererrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := p.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

func (p *PgStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := p.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (p *PgStore) FindVendors(ctx context.Context, offset, limit int32) ([]User, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE role = 'VENDOR'
		ORDER BY created_at
		OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find vendors: %w", err)
	}
	defer rows.Close()

	var vendors []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vendors: %w", err)
	}
	return vendors, nil
}

func (p *PgStore) UpdateVendorStatus(ctx context.Context, id uuid.UUID, status string) (*User, error) {
	row := p.db.QueryRow(ctx, `
		UPDATE users SET vendor_status = $2
		WHERE id = $1
		RETURNING `+userColumns, id, status)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update vendor status: %w", err)
	}
	return user, nil
}
