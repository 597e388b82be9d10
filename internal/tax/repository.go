package tax

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads the tax type catalog from Postgres. It implements
// TypeProvider.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const listTypesSQL = `
SELECT id, label, display_rate_in_label
FROM tax_types
ORDER BY id`

// List returns every configured tax type.
func (r *Repository) List(ctx context.Context) ([]Type, error) {
	rows, err := r.pool.Query(ctx, listTypesSQL)
	if err != nil {
		return nil, fmt.Errorf("list tax types: %w", err)
	}
	defer rows.Close()

	var types []Type
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.ID, &t.Label, &t.DisplayRateInLabel); err != nil {
			return nil, fmt.Errorf("scan tax type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tax types: %w", err)
	}
	return types, nil
}

const displayRateIDsSQL = `
SELECT id
FROM tax_types
WHERE display_rate_in_label`

// DisplayRateTypeIDs implements TypeProvider.
func (r *Repository) DisplayRateTypeIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, displayRateIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("list display-rate tax types: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tax type id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tax type ids: %w", err)
	}
	return ids, nil
}
