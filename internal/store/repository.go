package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads store records from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const defaultStoreSQL = `
SELECT id, name, default_currency, country, is_default
FROM stores
WHERE is_default
ORDER BY created_at
LIMIT 1`

// Default returns the default store, or nil when no store is configured.
func (r *Repository) Default(ctx context.Context) (*Store, error) {
	row := r.pool.QueryRow(ctx, defaultStoreSQL)
	s, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load default store: %w", err)
	}
	return s, nil
}

const storeByIDSQL = `
SELECT id, name, default_currency, country, is_default
FROM stores
WHERE id = $1`

// GetByID returns one store, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Store, error) {
	row := r.pool.QueryRow(ctx, storeByIDSQL, pgtype.UUID{Bytes: id, Valid: true})
	s, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load store %s: %w", id, err)
	}
	return s, nil
}

func scanStore(row pgx.Row) (*Store, error) {
	var (
		s  Store
		id pgtype.UUID
	)
	if err := row.Scan(&id, &s.Name, &s.DefaultCurrency, &s.Country, &s.IsDefault); err != nil {
		return nil, err
	}
	s.ID = uuid.UUID(id.Bytes)
	return &s, nil
}
