package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"healthreg/pkg/platform/sentinel"
)

// StoreSuite runs the same contract against every backend.
type StoreSuite struct {
	suite.Suite
	newStore func() Store
	ctx      context.Context
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *StoreSuite) TestMissingKeyIsNotFound() {
	_, err := s.newStore().Get(s.ctx, "offline_patients")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreSuite) TestPutThenGet() {
	store := s.newStore()
	s.Require().NoError(store.Put(s.ctx, "offline_patients", []byte(`[{"id":"a"}]`)))

	blob, err := store.Get(s.ctx, "offline_patients")
	s.Require().NoError(err)
	s.JSONEq(`[{"id":"a"}]`, string(blob))
}

func (s *StoreSuite) TestPutReplaces() {
	store := s.newStore()
	s.Require().NoError(store.Put(s.ctx, "k", []byte("one")))
	s.Require().NoError(store.Put(s.ctx, "k", []byte("two")))

	blob, err := store.Get(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal("two", string(blob))
}

func TestInMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func() Store { return NewInMemoryStore() }})
}

func TestFileStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func() Store {
		store, err := NewFileStore(t.TempDir())
		require.NoError(t, err)
		return store
	}})
}

func TestRedisStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func() Store {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedisStore(client)
	}})
}

func TestInMemoryStore_NoAliasing(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Put(ctx, "k", value))
	value[0] = 'x'

	blob, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(blob))
}

func TestFileStore_LayoutAndKeyValidation(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "offline_patients", []byte("[]")))
	_, err = os.Stat(filepath.Join(dir, "offline_patients.json"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")

	require.Error(t, store.Put(ctx, "../escape", []byte("x")))
}

func TestRedisStore_Prefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, WithPrefix("device-7:"))
	require.NoError(t, store.Put(ctx, "offline_patients", []byte("[]")))

	got, err := mr.Get("device-7:offline_patients")
	require.NoError(t, err)
	require.Equal(t, "[]", got)
	require.Zero(t, mr.TTL("device-7:offline_patients"), "queue blob must not expire")
}
