package keys

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/brooksyott/licensing-server/internal/database"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
	"github.com/brooksyott/licensing-server/internal/pemutil"
)

const rsaKeyBits = 2048

// GenerateRequest carries the metadata for a new key pair.
type GenerateRequest struct {
	Label       string
	Description string
	CreatedBy   string
	UpdatedBy   string
}

// UpdateRequest carries the mutable metadata of an existing key pair.
type UpdateRequest struct {
	Label       string
	Description string
	UpdatedBy   string
}

// Service generates, stores, and retrieves RSA key pairs.
type Service struct {
	store  Store
	vault  *Vault
	logger *slog.Logger
}

// NewService creates a key service.
func NewService(store Store, vault *Vault, logger *slog.Logger) *Service {
	if vault == nil {
		vault = NewVault("")
	}
	return &Service{store: store, vault: vault, logger: logger}
}

// Generate creates a fresh 2048-bit RSA key pair, PEM-encodes both
// halves, persists the record, and returns it unredacted.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Key, error) {
	if strings.TrimSpace(req.Label) == "" {
		return nil, svcerr.Validation("label must not be empty")
	}
	if strings.TrimSpace(req.CreatedBy) == "" {
		return nil, svcerr.Validation("created_by must not be empty")
	}
	if strings.TrimSpace(req.UpdatedBy) == "" {
		return nil, svcerr.Validation("updated_by must not be empty")
	}

	private, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, svcerr.Internal("key generation failed", err)
	}

	privatePEM := pemutil.EncodePrivateKey(private)
	publicPEM := pemutil.EncodePublicKey(&private.PublicKey)

	sealed, err := s.vault.Seal(privatePEM)
	if err != nil {
		return nil, err
	}

	key := &Key{
		ID:          uuid.New().String(),
		Label:       req.Label,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		UpdatedBy:   req.UpdatedBy,
		PublicKey:   publicPEM,
		PrivateKey:  sealed,
	}
	if err := s.store.Insert(ctx, key); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "key pair generated",
		slog.String("key_id", key.ID),
		slog.String("label", key.Label))

	// Return the plain PEM to the caller of this one operation.
	key.PrivateKey = privatePEM
	return key, nil
}

// GetByID fetches a key pair, redacting the private half when requested.
func (s *Service) GetByID(ctx context.Context, id string, redact bool) (*Key, error) {
	key, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reveal(key, redact)
}

// List returns key pairs ordered by creation time ascending, with the
// same redaction behavior as GetByID.
func (s *Service) List(ctx context.Context, filter database.QueryFilter, redact bool) (database.Paginated[Key], error) {
	filter = filter.Normalize()

	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return database.Paginated[Key]{}, err
	}

	out := make([]Key, 0, len(rows))
	for i := range rows {
		k, err := s.reveal(&rows[i], redact)
		if err != nil {
			return database.Paginated[Key]{}, err
		}
		out = append(out, *k)
	}
	return database.NewPaginated(filter, out), nil
}

// PublicKeyPEM returns the UTF-8 bytes of the stored public-key PEM.
func (s *Service) PublicKeyPEM(ctx context.Context, id string) ([]byte, error) {
	key, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(key.PublicKey) == "" {
		return nil, svcerr.NotFound("public key")
	}
	return []byte(key.PublicKey), nil
}

// PrivateKeyPEM returns the UTF-8 bytes of the stored private-key PEM.
// This is the only path by which private key material leaves custody;
// callers must not persist or log the result.
func (s *Service) PrivateKeyPEM(ctx context.Context, id string) ([]byte, error) {
	key, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(key.PrivateKey) == "" {
		return nil, svcerr.NotFound("private key")
	}
	plain, err := s.vault.Open(key.PrivateKey)
	if err != nil {
		return nil, err
	}
	return []byte(plain), nil
}

// Update mutates label, description, and updated_by only.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, redact bool) (*Key, error) {
	if strings.TrimSpace(req.Label) == "" {
		return nil, svcerr.Validation("label must not be empty")
	}
	if strings.TrimSpace(req.UpdatedBy) == "" {
		return nil, svcerr.Validation("updated_by must not be empty")
	}

	key, err := s.store.Update(ctx, id, req.Label, req.Description, req.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return s.reveal(key, redact)
}

// Delete permanently removes a key pair. Issued tokens are unaffected.
// The returned copy is always redacted.
func (s *Service) Delete(ctx context.Context, id string) (*Key, error) {
	key, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "key pair deleted", slog.String("key_id", id))

	redacted := key.Redact()
	return &redacted, nil
}

// reveal applies redaction or unseals the private half for return to the
// caller. The stored record is untouched either way.
func (s *Service) reveal(key *Key, redact bool) (*Key, error) {
	if redact {
		redacted := key.Redact()
		return &redacted, nil
	}
	plain, err := s.vault.Open(key.PrivateKey)
	if err != nil {
		return nil, err
	}
	key.PrivateKey = plain
	return key, nil
}
