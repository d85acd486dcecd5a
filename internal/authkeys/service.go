package authkeys

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/brooksyott/licensing-server/internal/database"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
)

// AddRequest carries the fields for a new API key. The key string itself
// is generated server-side.
type AddRequest struct {
	Role        string
	CreatedBy   string
	Description string
}

// UpdateRequest carries the mutable fields of an API key.
type UpdateRequest struct {
	Role        string
	Description string
}

// Service manages API keys and resolves a presented key to its role.
type Service struct {
	store  Store
	cache  *RoleCache
	logger *slog.Logger
}

// NewService creates an auth key service with the given role cache.
func NewService(store Store, cache *RoleCache, logger *slog.Logger) *Service {
	return &Service{store: store, cache: cache, logger: logger}
}

// Resolve maps a presented API key to its role. Hits come from the
// cache; misses go to storage and only successful lookups are cached.
func (s *Service) Resolve(ctx context.Context, apiKey string) (string, error) {
	if apiKey == "" {
		return "", svcerr.Validation("api key must not be empty")
	}

	if role, ok := s.cache.Get(apiKey); ok {
		return role, nil
	}

	record, err := s.store.GetByKey(ctx, apiKey)
	if err != nil {
		return "", err
	}

	s.cache.Put(apiKey, record.Role)
	return record.Role, nil
}

// Add creates an API key with a generated opaque key string.
func (s *Service) Add(ctx context.Context, req AddRequest) (*AuthKey, error) {
	if !ValidRole(req.Role) {
		return nil, svcerr.Validation("unknown role: %s", req.Role)
	}
	if strings.TrimSpace(req.CreatedBy) == "" {
		return nil, svcerr.Validation("created_by must not be empty")
	}

	key := &AuthKey{
		ID:          uuid.New().String(),
		Key:         uuid.New().String(),
		Role:        req.Role,
		CreatedBy:   req.CreatedBy,
		Description: req.Description,
	}
	if err := s.store.Insert(ctx, key); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "auth key created",
		slog.String("auth_key_id", key.ID),
		slog.String("role", key.Role))

	return key, nil
}

// GetByID fetches an API key record.
func (s *Service) GetByID(ctx context.Context, id string) (*AuthKey, error) {
	return s.store.GetByID(ctx, id)
}

// List returns API key records ordered by creation time ascending.
func (s *Service) List(ctx context.Context, filter database.QueryFilter) (database.Paginated[AuthKey], error) {
	filter = filter.Normalize()

	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return database.Paginated[AuthKey]{}, err
	}
	return database.NewPaginated(filter, rows), nil
}

// Update changes the role or description of an API key and drops any
// cached role so the change takes effect immediately.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*AuthKey, error) {
	if !ValidRole(req.Role) {
		return nil, svcerr.Validation("unknown role: %s", req.Role)
	}

	key, err := s.store.Update(ctx, id, req.Role, req.Description)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(key.Key)
	return key, nil
}

// Delete removes an API key and drops it from the cache.
func (s *Service) Delete(ctx context.Context, id string) (*AuthKey, error) {
	key, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(key.Key)
	s.logger.InfoContext(ctx, "auth key deleted", slog.String("auth_key_id", id))
	return key, nil
}
