package skus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brooksyott/licensing-server/internal/database"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
	"github.com/brooksyott/licensing-server/internal/licenses"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, sku *Sku) error {
	return m.Called(ctx, sku).Error(0)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*Sku, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Sku), args.Error(1)
}

func (m *mockStore) GetByName(ctx context.Context, name string) (*Sku, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Sku), args.Error(1)
}

func (m *mockStore) FindByCodes(ctx context.Context, codes []string) ([]Sku, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Sku), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, filter database.QueryFilter) ([]Sku, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Sku), args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, sku *Sku) (*Sku, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Sku), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id string) (*Sku, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Sku), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestValidateFeatures(t *testing.T) {
	t.Run("empty list rejected", func(t *testing.T) {
		svc := NewService(new(mockStore), testLogger())

		_, err := svc.ValidateFeatures(context.Background(), nil)
		assert.True(t, svcerr.IsKind(err, svcerr.KindValidation))
	})

	t.Run("duplicates collapse to the first occurrence", func(t *testing.T) {
		store := new(mockStore)
		store.On("FindByCodes", mock.Anything, []string{"pro", "basic"}).Return([]Sku{
			{Code: "pro"}, {Code: "basic"},
		}, nil)

		svc := NewService(store, testLogger())
		deduped, err := svc.ValidateFeatures(context.Background(), []licenses.Feature{
			{Sku: "pro", Expiry: 100},
			{Sku: "basic", Expiry: 200},
			{Sku: "pro", Expiry: 999},
		})
		require.NoError(t, err)
		require.Len(t, deduped, 2)
		assert.Equal(t, int64(100), deduped[0].Expiry, "first occurrence wins")
		store.AssertExpectations(t)
	})

	t.Run("unknown code fails the whole request", func(t *testing.T) {
		store := new(mockStore)
		store.On("FindByCodes", mock.Anything, []string{"pro", "bogus"}).Return([]Sku{
			{Code: "pro"},
		}, nil)

		svc := NewService(store, testLogger())
		_, err := svc.ValidateFeatures(context.Background(), []licenses.Feature{
			{Sku: "pro"}, {Sku: "bogus"},
		})
		require.Error(t, err)
		assert.True(t, svcerr.IsKind(err, svcerr.KindValidation))
		assert.Equal(t, "Invalid features", svcerr.MessageOf(err))
	})

	t.Run("lookup capped at 1000 distinct codes", func(t *testing.T) {
		features := make([]licenses.Feature, 1001)
		for i := range features {
			features[i] = licenses.Feature{Sku: fmt.Sprintf("code-%04d", i)}
		}

		svc := NewService(new(mockStore), testLogger())
		_, err := svc.ValidateFeatures(context.Background(), features)
		assert.True(t, svcerr.IsKind(err, svcerr.KindValidation))
	})
}

func TestServiceAdd(t *testing.T) {
	t.Run("blank code rejected", func(t *testing.T) {
		svc := NewService(new(mockStore), testLogger())

		_, err := svc.Add(context.Background(), AddRequest{Name: "Pro Tier"})
		assert.True(t, svcerr.IsKind(err, svcerr.KindValidation))
	})

	t.Run("assigns an id and persists", func(t *testing.T) {
		store := new(mockStore)
		store.On("Insert", mock.Anything, mock.MatchedBy(func(s *Sku) bool {
			return s.ID != "" && s.Code == "pro" && s.Name == "Pro Tier"
		})).Return(nil)

		svc := NewService(store, testLogger())
		sku, err := svc.Add(context.Background(), AddRequest{Code: "pro", Name: "Pro Tier"})
		require.NoError(t, err)
		assert.NotEmpty(t, sku.ID)
		store.AssertExpectations(t)
	})

	t.Run("duplicate code surfaces as conflict", func(t *testing.T) {
		store := new(mockStore)
		store.On("Insert", mock.Anything, mock.Anything).Return(svcerr.Conflict("sku exists", nil))

		svc := NewService(store, testLogger())
		_, err := svc.Add(context.Background(), AddRequest{Code: "pro", Name: "Pro Tier"})
		assert.True(t, svcerr.IsKind(err, svcerr.KindConflict))
	})
}

func TestServiceList(t *testing.T) {
	store := new(mockStore)
	store.On("List", mock.Anything, database.QueryFilter{Limit: database.DefaultLimit}).
		Return([]Sku{{ID: "s1"}, {ID: "s2"}}, nil)

	svc := NewService(store, testLogger())
	page, err := svc.List(context.Background(), database.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	assert.Equal(t, database.DefaultLimit, page.Limit)
}

func TestServiceUpdate(t *testing.T) {
	t.Run("blank name rejected", func(t *testing.T) {
		svc := NewService(new(mockStore), testLogger())

		_, err := svc.Update(context.Background(), "s1", UpdateRequest{Code: "pro"})
		assert.True(t, svcerr.IsKind(err, svcerr.KindValidation))
	})

	t.Run("missing row propagates not found", func(t *testing.T) {
		store := new(mockStore)
		store.On("Update", mock.Anything, mock.Anything).Return(nil, svcerr.NotFound("sku"))

		svc := NewService(store, testLogger())
		_, err := svc.Update(context.Background(), "missing", UpdateRequest{Code: "pro", Name: "Pro"})
		assert.True(t, svcerr.IsKind(err, svcerr.KindNotFound))
	})
}
