package licenses

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brooksyott/licensing-server/internal/database"
)

// Store persists license records. Reads return the customer-joined row;
// the join is a left outer join so a missing customer yields a nil name,
// never an error.
type Store interface {
	Insert(ctx context.Context, license *License) error
	GetByID(ctx context.Context, id string) (*Details, error)
	List(ctx context.Context, filter database.QueryFilter) ([]Details, error)
	ListByCustomer(ctx context.Context, customerID string, filter database.QueryFilter) ([]Details, error)
	Update(ctx context.Context, id, label, description string) (*License, error)
	Delete(ctx context.Context, id string) (*License, error)
}

// PgStore is the PostgreSQL-backed license store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PostgreSQL license store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const licenseColumns = "id, customer_id, key_id, label, description, issued_by, token, created_at, updated_at"

const detailColumns = `l.id, l.customer_id, l.key_id, l.label, l.description, l.issued_by, l.token,
	l.created_at, l.updated_at, c.name`

func scanLicense(row interface{ Scan(dest ...any) error }, l *License) error {
	return row.Scan(&l.ID, &l.CustomerID, &l.KeyID, &l.Label, &l.Description,
		&l.IssuedBy, &l.Token, &l.CreatedAt, &l.UpdatedAt)
}

func scanDetails(row interface{ Scan(dest ...any) error }, d *Details) error {
	return row.Scan(&d.ID, &d.CustomerID, &d.KeyID, &d.Label, &d.Description,
		&d.IssuedBy, &d.Token, &d.CreatedAt, &d.UpdatedAt, &d.CustomerName)
}

func (s *PgStore) Insert(ctx context.Context, license *License) error {
	const query = `INSERT INTO licenses (id, customer_id, key_id, label, description, issued_by, token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		license.ID, license.CustomerID, license.KeyID, license.Label,
		license.Description, license.IssuedBy, license.Token,
	).Scan(&license.CreatedAt, &license.UpdatedAt)
	return database.MapError(err, "license insert")
}

func (s *PgStore) GetByID(ctx context.Context, id string) (*Details, error) {
	const query = `SELECT ` + detailColumns + `
		FROM licenses l
		LEFT JOIN customers c ON c.id = l.customer_id
		WHERE l.id = $1`

	var d Details
	if err := scanDetails(s.pool.QueryRow(ctx, query, id), &d); err != nil {
		return nil, database.MapError(err, "license")
	}
	return &d, nil
}

func (s *PgStore) List(ctx context.Context, filter database.QueryFilter) ([]Details, error) {
	const query = `SELECT ` + detailColumns + `
		FROM licenses l
		LEFT JOIN customers c ON c.id = l.customer_id
		ORDER BY l.created_at ASC
		LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, database.MapError(err, "license list")
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (s *PgStore) ListByCustomer(ctx context.Context, customerID string, filter database.QueryFilter) ([]Details, error) {
	const query = `SELECT ` + detailColumns + `
		FROM licenses l
		LEFT JOIN customers c ON c.id = l.customer_id
		WHERE l.customer_id = $1
		ORDER BY l.created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, customerID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, database.MapError(err, "license list")
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (s *PgStore) Update(ctx context.Context, id, label, description string) (*License, error) {
	const query = `UPDATE licenses SET label = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + licenseColumns

	var l License
	if err := scanLicense(s.pool.QueryRow(ctx, query, id, label, description), &l); err != nil {
		return nil, database.MapError(err, "license")
	}
	return &l, nil
}

func (s *PgStore) Delete(ctx context.Context, id string) (*License, error) {
	const query = `DELETE FROM licenses WHERE id = $1 RETURNING ` + licenseColumns

	var l License
	if err := scanLicense(s.pool.QueryRow(ctx, query, id), &l); err != nil {
		return nil, database.MapError(err, "license")
	}
	return &l, nil
}

func collectDetails(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Details, error) {
	var out []Details
	for rows.Next() {
		var d Details
		if err := scanDetails(rows, &d); err != nil {
			return nil, database.MapError(err, "license scan")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "license scan")
	}
	return out, nil
}
