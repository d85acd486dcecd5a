package licenses

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/brooksyott/licensing-server/internal/database"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
)

// Catalog validates requested feature grants against the SKU catalog and
// returns the deduplicated list to embed in the token.
type Catalog interface {
	ValidateFeatures(ctx context.Context, features []Feature) ([]Feature, error)
}

// IssueRequest carries everything needed to mint a license.
type IssueRequest struct {
	KeyID       string
	CustomerID  string
	Issuer      string
	Label       string
	Description string
	Features    []Feature
}

// UpdateRequest carries the mutable metadata of a license record.
type UpdateRequest struct {
	Label       string
	Description string
}

// Service orchestrates issuance, validation, and record management.
type Service struct {
	store   Store
	catalog Catalog
	engine  *Engine
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewService creates a license service.
func NewService(store Store, catalog Catalog, engine *Engine, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		engine:  engine,
		logger:  logger,
		tracer:  otel.Tracer("licensing"),
	}
}

// Issue runs the issuance pipeline: request validation, catalog check,
// signing, self-verification, persistence. Any failure short-circuits
// without side effects; the record insert is the only write.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*License, error) {
	ctx, span := s.tracer.Start(ctx, "license.issue",
		trace.WithAttributes(attribute.String("key_id", req.KeyID)))
	defer span.End()

	if err := validateIssueRequest(req); err != nil {
		return nil, err
	}

	features, err := s.catalog.ValidateFeatures(ctx, req.Features)
	if err != nil {
		return nil, err
	}

	licenseID := uuid.New().String()
	signed, err := s.engine.Sign(ctx, req.KeyID, req.CustomerID, req.Issuer, licenseID, features)
	if err != nil {
		return nil, err
	}

	// A freshly minted token must verify against its own public key
	// before it is persisted. Failure here means inconsistent key state.
	result := s.engine.Validate(ctx, signed, Expectation{Issuer: req.Issuer, Audience: req.CustomerID})
	if !result.Valid {
		s.logger.ErrorContext(ctx, "self-validation of freshly signed token failed",
			slog.String("key_id", req.KeyID),
			slog.String("reason", result.Reason))
		return nil, svcerr.Internal("issued token failed self-validation: "+result.Reason, nil)
	}

	license := &License{
		ID:          licenseID,
		CustomerID:  req.CustomerID,
		KeyID:       req.KeyID,
		Label:       req.Label,
		Description: req.Description,
		IssuedBy:    req.Issuer,
		Token:       signed,
	}
	if err := s.store.Insert(ctx, license); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "license issued",
		slog.String("license_id", license.ID),
		slog.String("customer_id", license.CustomerID),
		slog.String("key_id", license.KeyID))

	return license, nil
}

// Validate checks a presented token string.
func (s *Service) Validate(ctx context.Context, tokenText string) Result {
	ctx, span := s.tracer.Start(ctx, "license.validate")
	defer span.End()

	result := s.engine.Validate(ctx, tokenText, Expectation{})
	if !result.Valid {
		s.logger.InfoContext(ctx, "token rejected", slog.String("reason", result.Reason))
	}
	return result
}

// GetByID fetches a license with customer display data, re-deriving the
// feature list from the stored token so what is shown always matches
// what was signed.
func (s *Service) GetByID(ctx context.Context, id string) (*Details, error) {
	details, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := attachFeatures(details); err != nil {
		return nil, err
	}
	return details, nil
}

// List returns licenses ordered by creation time ascending.
func (s *Service) List(ctx context.Context, filter database.QueryFilter) (database.Paginated[Details], error) {
	filter = filter.Normalize()
	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return database.Paginated[Details]{}, err
	}
	return paginateDetails(filter, rows)
}

// ListByCustomer returns one customer's licenses, same semantics as List.
func (s *Service) ListByCustomer(ctx context.Context, customerID string, filter database.QueryFilter) (database.Paginated[Details], error) {
	if strings.TrimSpace(customerID) == "" {
		return database.Paginated[Details]{}, svcerr.Validation("customer id must not be empty")
	}

	filter = filter.Normalize()
	rows, err := s.store.ListByCustomer(ctx, customerID, filter)
	if err != nil {
		return database.Paginated[Details]{}, err
	}
	return paginateDetails(filter, rows)
}

// Update mutates label and description. The token itself is immutable.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*License, error) {
	if strings.TrimSpace(req.Label) == "" {
		return nil, svcerr.Validation("label must not be empty")
	}
	return s.store.Update(ctx, id, req.Label, req.Description)
}

// Delete removes a license record. Distributed copies of the token stay
// cryptographically valid; there is no revocation.
func (s *Service) Delete(ctx context.Context, id string) (*License, error) {
	license, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "license deleted", slog.String("license_id", id))
	return license, nil
}

func validateIssueRequest(req IssueRequest) error {
	switch {
	case strings.TrimSpace(req.KeyID) == "":
		return svcerr.Validation("key id must not be empty")
	case strings.TrimSpace(req.Issuer) == "":
		return svcerr.Validation("issuer must not be empty")
	case strings.TrimSpace(req.CustomerID) == "":
		return svcerr.Validation("customer id must not be empty")
	case strings.TrimSpace(req.Label) == "":
		return svcerr.Validation("label must not be empty")
	case req.Features == nil:
		return svcerr.Validation("features must not be null")
	}
	return nil
}

func attachFeatures(d *Details) error {
	features, err := DecodeFeatures(d.Token)
	if err != nil {
		return err
	}
	d.Features = features
	return nil
}

func paginateDetails(filter database.QueryFilter, rows []Details) (database.Paginated[Details], error) {
	for i := range rows {
		if err := attachFeatures(&rows[i]); err != nil {
			return database.Paginated[Details]{}, err
		}
	}
	return database.NewPaginated(filter, rows), nil
}
