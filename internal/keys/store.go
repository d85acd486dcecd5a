package keys

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brooksyott/licensing-server/internal/database"
)

// Store persists key pairs.
type Store interface {
	Insert(ctx context.Context, key *Key) error
	GetByID(ctx context.Context, id string) (*Key, error)
	List(ctx context.Context, filter database.QueryFilter) ([]Key, error)
	Update(ctx context.Context, id, label, description, updatedBy string) (*Key, error)
	Delete(ctx context.Context, id string) (*Key, error)
}

// PgStore is the PostgreSQL-backed key store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PostgreSQL key store.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const keyColumns = "id, label, description, created_by, updated_by, public_key, private_key, created_at, updated_at"

func scanKey(row interface{ Scan(dest ...any) error }, k *Key) error {
	return row.Scan(&k.ID, &k.Label, &k.Description, &k.CreatedBy, &k.UpdatedBy,
		&k.PublicKey, &k.PrivateKey, &k.CreatedAt, &k.UpdatedAt)
}

// Insert stores a new key pair and fills in the server-assigned
// timestamps.
func (s *PgStore) Insert(ctx context.Context, key *Key) error {
	const query = `INSERT INTO keys (id, label, description, created_by, updated_by, public_key, private_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		key.ID, key.Label, key.Description, key.CreatedBy, key.UpdatedBy,
		key.PublicKey, key.PrivateKey,
	).Scan(&key.CreatedAt, &key.UpdatedAt)
	return database.MapError(err, "key insert")
}

// GetByID fetches a key pair by identifier.
func (s *PgStore) GetByID(ctx context.Context, id string) (*Key, error) {
	const query = `SELECT ` + keyColumns + ` FROM keys WHERE id = $1`

	var k Key
	if err := scanKey(s.pool.QueryRow(ctx, query, id), &k); err != nil {
		return nil, database.MapError(err, "key")
	}
	return &k, nil
}

// List returns key pairs ordered by creation time ascending.
func (s *PgStore) List(ctx context.Context, filter database.QueryFilter) ([]Key, error) {
	const query = `SELECT ` + keyColumns + ` FROM keys ORDER BY created_at ASC LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, database.MapError(err, "key list")
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var k Key
		if err := scanKey(rows, &k); err != nil {
			return nil, database.MapError(err, "key list")
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapError(err, "key list")
	}
	return keys, nil
}

// Update mutates label, description, and updated_by. Key material is
// never touched.
func (s *PgStore) Update(ctx context.Context, id, label, description, updatedBy string) (*Key, error) {
	const query = `UPDATE keys SET label = $2, description = $3, updated_by = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + keyColumns

	var k Key
	if err := scanKey(s.pool.QueryRow(ctx, query, id, label, description, updatedBy), &k); err != nil {
		return nil, database.MapError(err, "key")
	}
	return &k, nil
}

// Delete removes a key pair, returning the removed row.
func (s *PgStore) Delete(ctx context.Context, id string) (*Key, error) {
	const query = `DELETE FROM keys WHERE id = $1 RETURNING ` + keyColumns

	var k Key
	if err := scanKey(s.pool.QueryRow(ctx, query, id), &k); err != nil {
		return nil, database.MapError(err, "key")
	}
	return &k, nil
}
