package http

import (
	"context"

	"github.com/brooksyott/licensing-server/internal/authkeys"
	"github.com/brooksyott/licensing-server/internal/customers"
	"github.com/brooksyott/licensing-server/internal/database"
	"github.com/brooksyott/licensing-server/internal/keys"
	"github.com/brooksyott/licensing-server/internal/licenses"
	"github.com/brooksyott/licensing-server/internal/skus"
)

// KeyService is the key custody surface consumed by the key handler.
type KeyService interface {
	Generate(ctx context.Context, req keys.GenerateRequest) (*keys.Key, error)
	GetByID(ctx context.Context, id string, redact bool) (*keys.Key, error)
	List(ctx context.Context, filter database.QueryFilter, redact bool) (database.Paginated[keys.Key], error)
	PublicKeyPEM(ctx context.Context, id string) ([]byte, error)
	PrivateKeyPEM(ctx context.Context, id string) ([]byte, error)
	Update(ctx context.Context, id string, req keys.UpdateRequest, redact bool) (*keys.Key, error)
	Delete(ctx context.Context, id string) (*keys.Key, error)
}

// SkuService is the catalog surface consumed by the sku handler.
type SkuService interface {
	Add(ctx context.Context, req skus.AddRequest) (*skus.Sku, error)
	GetByID(ctx context.Context, id string) (*skus.Sku, error)
	GetByName(ctx context.Context, name string) (*skus.Sku, error)
	List(ctx context.Context, filter database.QueryFilter) (database.Paginated[skus.Sku], error)
	Update(ctx context.Context, id string, req skus.UpdateRequest) (*skus.Sku, error)
	Delete(ctx context.Context, id string) (*skus.Sku, error)
}

// LicenseService is the token engine surface consumed by the license
// handler.
type LicenseService interface {
	Issue(ctx context.Context, req licenses.IssueRequest) (*licenses.License, error)
	Validate(ctx context.Context, tokenText string) licenses.Result
	GetByID(ctx context.Context, id string) (*licenses.Details, error)
	List(ctx context.Context, filter database.QueryFilter) (database.Paginated[licenses.Details], error)
	ListByCustomer(ctx context.Context, customerID string, filter database.QueryFilter) (database.Paginated[licenses.Details], error)
	Update(ctx context.Context, id string, req licenses.UpdateRequest) (*licenses.License, error)
	Delete(ctx context.Context, id string) (*licenses.License, error)
}

// CustomerService is the customer surface consumed by the customer
// handler.
type CustomerService interface {
	Add(ctx context.Context, req customers.AddRequest) (*customers.Customer, error)
	GetByID(ctx context.Context, id string) (*customers.Customer, error)
	GetByName(ctx context.Context, name string) (*customers.Customer, error)
	List(ctx context.Context, filter database.QueryFilter) (database.Paginated[customers.Customer], error)
	Update(ctx context.Context, id string, req customers.UpdateRequest) (*customers.Customer, error)
	Delete(ctx context.Context, id string) (*customers.Customer, error)
}

// AuthKeyService is the API key management surface consumed by the auth
// key handler.
type AuthKeyService interface {
	Add(ctx context.Context, req authkeys.AddRequest) (*authkeys.AuthKey, error)
	GetByID(ctx context.Context, id string) (*authkeys.AuthKey, error)
	List(ctx context.Context, filter database.QueryFilter) (database.Paginated[authkeys.AuthKey], error)
	Update(ctx context.Context, id string, req authkeys.UpdateRequest) (*authkeys.AuthKey, error)
	Delete(ctx context.Context, id string) (*authkeys.AuthKey, error)
}
