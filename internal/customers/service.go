package customers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/brooksyott/licensing-server/internal/database"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
)

// AddRequest carries the fields for a new customer.
type AddRequest struct {
	Name        string
	Description string
	Visibility  string
}

// UpdateRequest carries the mutable fields of a customer.
type UpdateRequest struct {
	Name        string
	Description string
	Visibility  string
}

// Service implements customer CRUD.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a customer service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Add creates a customer record.
func (s *Service) Add(ctx context.Context, req AddRequest) (*Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, svcerr.Validation("customer name must not be empty")
	}

	customer := &Customer{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	}
	if err := s.store.Insert(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "customer added",
		slog.String("customer_id", customer.ID),
		slog.String("name", customer.Name))

	return customer, nil
}

// GetByID fetches a customer by identifier.
func (s *Service) GetByID(ctx context.Context, id string) (*Customer, error) {
	return s.store.GetByID(ctx, id)
}

// GetByName fetches a customer by name.
func (s *Service) GetByName(ctx context.Context, name string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, svcerr.Validation("customer name must not be empty")
	}
	return s.store.GetByName(ctx, name)
}

// List returns customers ordered by creation time ascending.
func (s *Service) List(ctx context.Context, filter database.QueryFilter) (database.Paginated[Customer], error) {
	filter = filter.Normalize()

	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return database.Paginated[Customer]{}, err
	}
	return database.NewPaginated(filter, rows), nil
}

// Update replaces the mutable fields of a customer.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, svcerr.Validation("customer name must not be empty")
	}

	return s.store.Update(ctx, &Customer{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
}

// Delete removes a customer. Licenses referencing it survive and list
// with a null customer name.
func (s *Service) Delete(ctx context.Context, id string) (*Customer, error) {
	customer, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "customer deleted", slog.String("customer_id", id))
	return customer, nil
}
