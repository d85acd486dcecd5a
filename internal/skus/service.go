package skus

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/brooksyott/licensing-server/internal/database"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
	"github.com/brooksyott/licensing-server/internal/licenses"
)

// maxLookupCodes caps a single catalog lookup.
const maxLookupCodes = 1000

// AddRequest carries the fields for a new catalog entry.
type AddRequest struct {
	Code        string
	Name        string
	Description string
}

// UpdateRequest carries the mutable fields of a catalog entry.
type UpdateRequest struct {
	Code        string
	Name        string
	Description string
}

// Service implements catalog CRUD and feature-grant validation.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a catalog service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ValidateFeatures rejects an empty grant list, deduplicates by SKU
// keeping the first occurrence, and checks every distinct code against
// the catalog. Fewer catalog matches than distinct codes fails the whole
// request rather than reporting per-item errors. Returns the
// deduplicated list for embedding in the token payload.
func (s *Service) ValidateFeatures(ctx context.Context, features []licenses.Feature) ([]licenses.Feature, error) {
	if len(features) == 0 {
		return nil, svcerr.Validation("no features specified")
	}

	deduped := licenses.DedupFeatures(features)
	if len(deduped) > maxLookupCodes {
		return nil, svcerr.Validation("too many features: %d exceeds the %d code limit", len(deduped), maxLookupCodes)
	}

	codes := make([]string, len(deduped))
	for i, f := range deduped {
		codes[i] = f.Sku
	}

	found, err := s.store.FindByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	if len(found) < len(deduped) {
		return nil, svcerr.Validation("Invalid features")
	}

	return deduped, nil
}

// Add creates a catalog entry.
func (s *Service) Add(ctx context.Context, req AddRequest) (*Sku, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, svcerr.Validation("sku code must not be empty")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, svcerr.Validation("sku name must not be empty")
	}

	sku := &Sku{
		ID:          uuid.New().String(),
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.store.Insert(ctx, sku); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "sku added",
		slog.String("sku_id", sku.ID),
		slog.String("code", sku.Code))

	return sku, nil
}

// GetByID fetches a catalog entry by identifier.
func (s *Service) GetByID(ctx context.Context, id string) (*Sku, error) {
	return s.store.GetByID(ctx, id)
}

// GetByName fetches a catalog entry by its unique display name.
func (s *Service) GetByName(ctx context.Context, name string) (*Sku, error) {
	if strings.TrimSpace(name) == "" {
		return nil, svcerr.Validation("sku name must not be empty")
	}
	return s.store.GetByName(ctx, name)
}

// List returns catalog entries ordered by id ascending.
func (s *Service) List(ctx context.Context, filter database.QueryFilter) (database.Paginated[Sku], error) {
	filter = filter.Normalize()

	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return database.Paginated[Sku]{}, err
	}
	return database.NewPaginated(filter, rows), nil
}

// Update replaces the code, name, and description of a catalog entry.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Sku, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, svcerr.Validation("sku code must not be empty")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, svcerr.Validation("sku name must not be empty")
	}

	return s.store.Update(ctx, &Sku{
		ID:          id,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
}

// Delete removes a catalog entry. Already-issued tokens referencing the
// code stay valid.
func (s *Service) Delete(ctx context.Context, id string) (*Sku, error) {
	sku, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "sku deleted", slog.String("sku_id", id))
	return sku, nil
}
