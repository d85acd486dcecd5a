package customers

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brooksyott/licensing-server/internal/database"
)

// Store persists customer records.
type Store interface {
	Insert(ctx context.Context, customer *Customer) error
	GetByID(ctx context.Context, id string) (*Customer, error)
	GetByName(ctx context.Context, name string) (*Customer, error)
	List(ctx context.Context, filter database.QueryFilter) ([]Customer, error)
	Update(ctx context.Context, customer *Customer) (*Customer, error)
	Delete(ctx context.Context, id string) (*Customer, error)
}

// PgStore is the PostgreSQL-backed customer store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PostgreSQL customer store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const customerColumns = "id, name, description, visibility, created_at, updated_at"

func scanCustomer(row interface{ Scan(dest ...any) error }, c *Customer) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.Visibility, &c.CreatedAt, &c.UpdatedAt)
}

func (s *PgStore) Insert(ctx context.Context, customer *Customer) error {
	const query = `INSERT INTO customers (id, name, description, visibility)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		customer.ID, customer.Name, customer.Description, customer.Visibility,
	).Scan(&customer.CreatedAt, &customer.UpdatedAt)
	return database.MapError(err, "customer insert")
}

func (s *PgStore) GetByID(ctx context.Context, id string) (*Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	var c Customer
	if err := scanCustomer(s.pool.QueryRow(ctx, query, id), &c); err != nil {
		return nil, database.MapError(err, "customer")
	}
	return &c, nil
}

func (s *PgStore) GetByName(ctx context.Context, name string) (*Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE name = $1`

	var c Customer
	if err := scanCustomer(s.pool.QueryRow(ctx, query, name), &c); err != nil {
		return nil, database.MapError(err, "customer")
	}
	return &c, nil
}

func (s *PgStore) List(ctx context.Context, filter database.QueryFilter) ([]Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at ASC LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, database.MapError(err, "customer list")
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, database.MapError(err, "customer list")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "customer list")
	}
	return out, nil
}

func (s *PgStore) Update(ctx context.Context, customer *Customer) (*Customer, error) {
	const query = `UPDATE customers SET name = $2, description = $3, visibility = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + customerColumns

	var c Customer
	err := scanCustomer(s.pool.QueryRow(ctx, query,
		customer.ID, customer.Name, customer.Description, customer.Visibility), &c)
	if err != nil {
		return nil, database.MapError(err, "customer")
	}
	return &c, nil
}

func (s *PgStore) Delete(ctx context.Context, id string) (*Customer, error) {
	const query = `DELETE FROM customers WHERE id = $1 RETURNING ` + customerColumns

	var c Customer
	if err := scanCustomer(s.pool.QueryRow(ctx, query, id), &c); err != nil {
		return nil, database.MapError(err, "customer")
	}
	return &c, nil
}
