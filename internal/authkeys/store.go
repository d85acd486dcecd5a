package authkeys

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brooksyott/licensing-server/internal/database"
)

// Store persists API key records.
type Store interface {
	Insert(ctx context.Context, key *AuthKey) error
	GetByID(ctx context.Context, id string) (*AuthKey, error)
	GetByKey(ctx context.Context, key string) (*AuthKey, error)
	List(ctx context.Context, filter database.QueryFilter) ([]AuthKey, error)
	Update(ctx context.Context, id, role, description string) (*AuthKey, error)
	Delete(ctx context.Context, id string) (*AuthKey, error)
}

// PgStore is the PostgreSQL-backed API key store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PostgreSQL API key store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const authKeyColumns = "id, key, role, created_by, description, created_at, updated_at"

func scanAuthKey(row interface{ Scan(dest ...any) error }, k *AuthKey) error {
	return row.Scan(&k.ID, &k.Key, &k.Role, &k.CreatedBy, &k.Description, &k.CreatedAt, &k.UpdatedAt)
}

func (s *PgStore) Insert(ctx context.Context, key *AuthKey) error {
	const query = `INSERT INTO int_auth_keys (id, key, role, created_by, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		key.ID, key.Key, key.Role, key.CreatedBy, key.Description,
	).Scan(&key.CreatedAt, &key.UpdatedAt)
	return database.MapError(err, "auth key insert")
}

func (s *PgStore) GetByID(ctx context.Context, id string) (*AuthKey, error) {
	const query = `SELECT ` + authKeyColumns + ` FROM int_auth_keys WHERE id = $1`

	var k AuthKey
	if err := scanAuthKey(s.pool.QueryRow(ctx, query, id), &k); err != nil {
		return nil, database.MapError(err, "auth key")
	}
	return &k, nil
}

func (s *PgStore) GetByKey(ctx context.Context, key string) (*AuthKey, error) {
	const query = `SELECT ` + authKeyColumns + ` FROM int_auth_keys WHERE key = $1`

	var k AuthKey
	if err := scanAuthKey(s.pool.QueryRow(ctx, query, key), &k); err != nil {
		return nil, database.MapError(err, "auth key")
	}
	return &k, nil
}

func (s *PgStore) List(ctx context.Context, filter database.QueryFilter) ([]AuthKey, error) {
	const query = `SELECT ` + authKeyColumns + ` FROM int_auth_keys ORDER BY created_at ASC LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, database.MapError(err, "auth key list")
	}
	defer rows.Close()

	var out []AuthKey
	for rows.Next() {
		var k AuthKey
		if err := scanAuthKey(rows, &k); err != nil {
			return nil, database.MapError(err, "auth key list")
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "auth key list")
	}
	return out, nil
}

func (s *PgStore) Update(ctx context.Context, id, role, description string) (*AuthKey, error) {
	const query = `UPDATE int_auth_keys SET role = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + authKeyColumns

	var k AuthKey
	if err := scanAuthKey(s.pool.QueryRow(ctx, query, id, role, description), &k); err != nil {
		return nil, database.MapError(err, "auth key")
	}
	return &k, nil
}

func (s *PgStore) Delete(ctx context.Context, id string) (*AuthKey, error) {
	const query = `DELETE FROM int_auth_keys WHERE id = $1 RETURNING ` + authKeyColumns

	var k AuthKey
	if err := scanAuthKey(s.pool.QueryRow(ctx, query, id), &k); err != nil {
		return nil, database.MapError(err, "auth key")
	}
	return &k, nil
}
