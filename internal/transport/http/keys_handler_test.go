package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brooksyott/licensing-server/internal/database"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
	"github.com/brooksyott/licensing-server/internal/keys"
	"github.com/brooksyott/licensing-server/internal/middleware"
)

type mockKeyService struct {
	mock.Mock
}

func (m *mockKeyService) Generate(ctx context.Context, req keys.GenerateRequest) (*keys.Key, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.Key), args.Error(1)
}

func (m *mockKeyService) GetByID(ctx context.Context, id string, redact bool) (*keys.Key, error) {
	args := m.Called(ctx, id, redact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.Key), args.Error(1)
}

func (m *mockKeyService) List(ctx context.Context, filter database.QueryFilter, redact bool) (database.Paginated[keys.Key], error) {
	args := m.Called(ctx, filter, redact)
	return args.Get(0).(database.Paginated[keys.Key]), args.Error(1)
}

func (m *mockKeyService) PublicKeyPEM(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockKeyService) PrivateKeyPEM(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockKeyService) Update(ctx context.Context, id string, req keys.UpdateRequest, redact bool) (*keys.Key, error) {
	args := m.Called(ctx, id, req, redact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.Key), args.Error(1)
}

func (m *mockKeyService) Delete(ctx context.Context, id string) (*keys.Key, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keys.Key), args.Error(1)
}

type staticResolver struct {
	role string
}

func (s *staticResolver) Resolve(context.Context, string) (string, error) {
	if s.role == "" {
		return "", svcerr.NotFound("auth key")
	}
	return s.role, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mountKeys wires the key routes behind API-key auth the way the
// application router does.
func mountKeys(svc KeyService, role string) http.Handler {
	handler := NewKeyHandler(svc, testLogger())
	return middleware.APIKeyAuth(&staticResolver{role: role}, testLogger())(handler.Routes())
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(middleware.APIKeyHeader, "test-key")
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestKeyHandlerGenerate(t *testing.T) {
	t.Run("valid request returns 201", func(t *testing.T) {
		svc := new(mockKeyService)
		svc.On("Generate", mock.Anything, keys.GenerateRequest{
			Label: "prod", Description: "d", CreatedBy: "ops", UpdatedBy: "ops",
		}).Return(&keys.Key{ID: "k1", Label: "prod"}, nil)

		body, _ := json.Marshal(map[string]string{
			"label": "prod", "description": "d", "created_by": "ops", "updated_by": "ops",
		})
		rec := httptest.NewRecorder()
		mountKeys(svc, "license-admin").ServeHTTP(rec, authedRequest(http.MethodPost, "/", body))

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing fields return 400 problem", func(t *testing.T) {
		svc := new(mockKeyService)

		body, _ := json.Marshal(map[string]string{"label": "prod"})
		rec := httptest.NewRecorder()
		mountKeys(svc, "license-admin").ServeHTTP(rec, authedRequest(http.MethodPost, "/", body))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
		svc.AssertNotCalled(t, "Generate")
	})

	t.Run("general role may not generate", func(t *testing.T) {
		svc := new(mockKeyService)

		rec := httptest.NewRecorder()
		mountKeys(svc, "general").ServeHTTP(rec, authedRequest(http.MethodPost, "/", []byte(`{}`)))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		svc.AssertNotCalled(t, "Generate")
	})

	t.Run("no api key returns 401", func(t *testing.T) {
		svc := new(mockKeyService)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		mountKeys(svc, "admin").ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestKeyHandlerRedaction(t *testing.T) {
	t.Run("general role is always redacted", func(t *testing.T) {
		svc := new(mockKeyService)
		svc.On("GetByID", mock.Anything, "k1", true).
			Return(&keys.Key{ID: "k1", PrivateKey: keys.Redacted}, nil)

		rec := httptest.NewRecorder()
		mountKeys(svc, "general").ServeHTTP(rec,
			authedRequest(http.MethodGet, "/k1?redacted=false", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("admin may request unredacted", func(t *testing.T) {
		svc := new(mockKeyService)
		svc.On("GetByID", mock.Anything, "k1", false).
			Return(&keys.Key{ID: "k1", PrivateKey: "pem"}, nil)

		rec := httptest.NewRecorder()
		mountKeys(svc, "admin").ServeHTTP(rec,
			authedRequest(http.MethodGet, "/k1?redacted=false", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestKeyHandlerPEMDownload(t *testing.T) {
	svc := new(mockKeyService)
	svc.On("PublicKeyPEM", mock.Anything, "k1").
		Return([]byte("-----BEGIN PUBLIC KEY-----\nabc\n-----END PUBLIC KEY-----\n"), nil)

	rec := httptest.NewRecorder()
	mountKeys(svc, "general").ServeHTTP(rec, authedRequest(http.MethodGet, "/k1/public", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-pem-file", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "BEGIN PUBLIC KEY")
}

func TestKeyHandlerPrivatePEMRequiresElevation(t *testing.T) {
	svc := new(mockKeyService)

	rec := httptest.NewRecorder()
	mountKeys(svc, "general").ServeHTTP(rec, authedRequest(http.MethodGet, "/k1/private", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertNotCalled(t, "PrivateKeyPEM")
}

func TestKeyHandlerNotFound(t *testing.T) {
	svc := new(mockKeyService)
	svc.On("GetByID", mock.Anything, "missing", true).Return(nil, svcerr.NotFound("key"))

	rec := httptest.NewRecorder()
	mountKeys(svc, "general").ServeHTTP(rec, authedRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "/errors/not-found", problem["type"])
}
