package keys

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brooksyott/licensing-server/internal/database"
	svcerr "github.com/brooksyott/licensing-server/internal/errors"
	"github.com/brooksyott/licensing-server/internal/pemutil"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, key *Key) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*Key, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Key), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, filter database.QueryFilter) ([]Key, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Key), args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, id, label, description, updatedBy string) (*Key, error) {
	args := m.Called(ctx, id, label, description, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Key), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id string) (*Key, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Key), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestServiceGenerate(t *testing.T) {
	t.Run("blank label rejected", func(t *testing.T) {
		svc := NewService(new(mockStore), nil, testLogger())

		_, err := svc.Generate(context.Background(), GenerateRequest{
			Label: "  ", CreatedBy: "ops", UpdatedBy: "ops",
		})
		assert.True(t, svcerr.IsKind(err, svcerr.KindValidation))
	})

	t.Run("blank created_by rejected", func(t *testing.T) {
		svc := NewService(new(mockStore), nil, testLogger())

		_, err := svc.Generate(context.Background(), GenerateRequest{
			Label: "prod-signing", UpdatedBy: "ops",
		})
		assert.True(t, svcerr.IsKind(err, svcerr.KindValidation))
	})

	t.Run("persists a matching pem pair and returns it unredacted", func(t *testing.T) {
		store := new(mockStore)
		store.On("Insert", mock.Anything, mock.MatchedBy(func(k *Key) bool {
			return k.ID != "" && k.Label == "prod-signing" && k.PublicKey != "" && k.PrivateKey != ""
		})).Return(nil)

		svc := NewService(store, nil, testLogger())
		key, err := svc.Generate(context.Background(), GenerateRequest{
			Label: "prod-signing", Description: "signing key", CreatedBy: "ops", UpdatedBy: "ops",
		})
		require.NoError(t, err)

		private, err := pemutil.DecodePrivateKey(key.PrivateKey)
		require.NoError(t, err)
		public, err := pemutil.DecodePublicKey(key.PublicKey)
		require.NoError(t, err)
		assert.True(t, public.Equal(&private.PublicKey), "stored halves must be one pair")
		store.AssertExpectations(t)
	})

	t.Run("seals the private half when a vault passphrase is set", func(t *testing.T) {
		var persisted *Key
		store := new(mockStore)
		store.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			k := args.Get(1).(*Key)
			copied := *k
			persisted = &copied
		}).Return(nil)

		svc := NewService(store, NewVault("hunter2"), testLogger())
		key, err := svc.Generate(context.Background(), GenerateRequest{
			Label: "sealed", CreatedBy: "ops", UpdatedBy: "ops",
		})
		require.NoError(t, err)

		require.NotNil(t, persisted)
		assert.Contains(t, persisted.PrivateKey, sealedPrefix)
		assert.NotContains(t, key.PrivateKey, sealedPrefix, "caller gets plain PEM")
	})
}

func TestServiceGetByID(t *testing.T) {
	stored := &Key{ID: "k1", Label: "prod", PublicKey: "pub-pem", PrivateKey: "priv-pem"}

	t.Run("redacted read replaces the private half", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetByID", mock.Anything, "k1").Return(stored, nil)

		svc := NewService(store, nil, testLogger())
		key, err := svc.GetByID(context.Background(), "k1", true)
		require.NoError(t, err)
		assert.Equal(t, Redacted, key.PrivateKey)
		assert.Equal(t, "pub-pem", key.PublicKey)
	})

	t.Run("unredacted read returns the stored pem", func(t *testing.T) {
		copied := *stored
		store := new(mockStore)
		store.On("GetByID", mock.Anything, "k1").Return(&copied, nil)

		svc := NewService(store, nil, testLogger())
		key, err := svc.GetByID(context.Background(), "k1", false)
		require.NoError(t, err)
		assert.Equal(t, "priv-pem", key.PrivateKey)
	})

	t.Run("not found propagates", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetByID", mock.Anything, "missing").Return(nil, svcerr.NotFound("key"))

		svc := NewService(store, nil, testLogger())
		_, err := svc.GetByID(context.Background(), "missing", true)
		assert.True(t, svcerr.IsKind(err, svcerr.KindNotFound))
	})
}

func TestServiceList(t *testing.T) {
	store := new(mockStore)
	store.On("List", mock.Anything, database.QueryFilter{Limit: 2, Offset: 0}).Return([]Key{
		{ID: "k1", PrivateKey: "priv-1"},
		{ID: "k2", PrivateKey: "priv-2"},
	}, nil)

	svc := NewService(store, nil, testLogger())
	page, err := svc.List(context.Background(), database.QueryFilter{Limit: 2}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	for _, k := range page.Results {
		assert.Equal(t, Redacted, k.PrivateKey)
	}
}

func TestServicePEMAccessors(t *testing.T) {
	t.Run("public pem bytes", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetByID", mock.Anything, "k1").Return(&Key{ID: "k1", PublicKey: "pub-pem"}, nil)

		svc := NewService(store, nil, testLogger())
		got, err := svc.PublicKeyPEM(context.Background(), "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("pub-pem"), got)
	})

	t.Run("empty public pem is not found", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetByID", mock.Anything, "k1").Return(&Key{ID: "k1"}, nil)

		svc := NewService(store, nil, testLogger())
		_, err := svc.PublicKeyPEM(context.Background(), "k1")
		assert.True(t, svcerr.IsKind(err, svcerr.KindNotFound))
	})

	t.Run("private pem is unsealed before return", func(t *testing.T) {
		vault := NewVault("hunter2")
		sealed, err := vault.Seal("priv-pem")
		require.NoError(t, err)

		store := new(mockStore)
		store.On("GetByID", mock.Anything, "k1").Return(&Key{ID: "k1", PrivateKey: sealed}, nil)

		svc := NewService(store, vault, testLogger())
		got, err := svc.PrivateKeyPEM(context.Background(), "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("priv-pem"), got)
	})
}

func TestServiceUpdate(t *testing.T) {
	t.Run("blank label rejected before storage", func(t *testing.T) {
		store := new(mockStore)
		svc := NewService(store, nil, testLogger())

		_, err := svc.Update(context.Background(), "k1", UpdateRequest{UpdatedBy: "ops"}, true)
		assert.True(t, svcerr.IsKind(err, svcerr.KindValidation))
		store.AssertNotCalled(t, "Update")
	})

	t.Run("metadata change redacts the response", func(t *testing.T) {
		store := new(mockStore)
		store.On("Update", mock.Anything, "k1", "renamed", "new desc", "ops").
			Return(&Key{ID: "k1", Label: "renamed", PrivateKey: "priv-pem"}, nil)

		svc := NewService(store, nil, testLogger())
		key, err := svc.Update(context.Background(), "k1", UpdateRequest{
			Label: "renamed", Description: "new desc", UpdatedBy: "ops",
		}, true)
		require.NoError(t, err)
		assert.Equal(t, Redacted, key.PrivateKey)
	})
}

func TestServiceDelete(t *testing.T) {
	store := new(mockStore)
	store.On("Delete", mock.Anything, "k1").Return(&Key{ID: "k1", PrivateKey: "priv-pem"}, nil)

	svc := NewService(store, nil, testLogger())
	key, err := svc.Delete(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, Redacted, key.PrivateKey, "deleted copy never carries key material")
}
