package skus

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brooksyott/licensing-server/internal/database"
)

// Store persists catalog entries.
type Store interface {
	Insert(ctx context.Context, sku *Sku) error
	GetByID(ctx context.Context, id string) (*Sku, error)
	GetByName(ctx context.Context, name string) (*Sku, error)
	FindByCodes(ctx context.Context, codes []string) ([]Sku, error)
	List(ctx context.Context, filter database.QueryFilter) ([]Sku, error)
	Update(ctx context.Context, sku *Sku) (*Sku, error)
	Delete(ctx context.Context, id string) (*Sku, error)
}

// PgStore is the PostgreSQL-backed catalog store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PostgreSQL catalog store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const skuColumns = "id, sku, name, description, created_at, updated_at"

func scanSku(row interface{ Scan(dest ...any) error }, s *Sku) error {
	return row.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
}

func (s *PgStore) Insert(ctx context.Context, sku *Sku) error {
	const query = `INSERT INTO skus (id, sku, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query, sku.ID, sku.Code, sku.Name, sku.Description).
		Scan(&sku.CreatedAt, &sku.UpdatedAt)
	return database.MapError(err, "sku insert")
}

func (s *PgStore) GetByID(ctx context.Context, id string) (*Sku, error) {
	const query = `SELECT ` + skuColumns + ` FROM skus WHERE id = $1`

	var sku Sku
	if err := scanSku(s.pool.QueryRow(ctx, query, id), &sku); err != nil {
		return nil, database.MapError(err, "sku")
	}
	return &sku, nil
}

func (s *PgStore) GetByName(ctx context.Context, name string) (*Sku, error) {
	const query = `SELECT ` + skuColumns + ` FROM skus WHERE name = $1`

	var sku Sku
	if err := scanSku(s.pool.QueryRow(ctx, query, name), &sku); err != nil {
		return nil, database.MapError(err, "sku")
	}
	return &sku, nil
}

// FindByCodes returns the catalog entries whose code appears in codes.
// Missing codes are simply absent from the result.
func (s *PgStore) FindByCodes(ctx context.Context, codes []string) ([]Sku, error) {
	const query = `SELECT ` + skuColumns + ` FROM skus WHERE sku = ANY($1)`

	rows, err := s.pool.Query(ctx, query, codes)
	if err != nil {
		return nil, database.MapError(err, "sku lookup")
	}
	defer rows.Close()

	return collectSkus(rows)
}

func (s *PgStore) List(ctx context.Context, filter database.QueryFilter) ([]Sku, error) {
	const query = `SELECT ` + skuColumns + ` FROM skus ORDER BY id ASC LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, database.MapError(err, "sku list")
	}
	defer rows.Close()

	return collectSkus(rows)
}

func (s *PgStore) Update(ctx context.Context, sku *Sku) (*Sku, error) {
	const query = `UPDATE skus SET sku = $2, name = $3, description = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + skuColumns

	var updated Sku
	err := scanSku(s.pool.QueryRow(ctx, query, sku.ID, sku.Code, sku.Name, sku.Description), &updated)
	if err != nil {
		return nil, database.MapError(err, "sku")
	}
	return &updated, nil
}

func (s *PgStore) Delete(ctx context.Context, id string) (*Sku, error) {
	const query = `DELETE FROM skus WHERE id = $1 RETURNING ` + skuColumns

	var sku Sku
	if err := scanSku(s.pool.QueryRow(ctx, query, id), &sku); err != nil {
		return nil, database.MapError(err, "sku")
	}
	return &sku, nil
}

func collectSkus(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Sku, error) {
	var skus []Sku
	for rows.Next() {
		var s Sku
		if err := scanSku(rows, &s); err != nil {
			return nil, database.MapError(err, "sku scan")
		}
		skus = append(skus, s)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "sku scan")
	}
	return skus, nil
}
