//go:build integration

package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"healthreg/internal/storage/kv"
	"healthreg/pkg/platform/sentinel"
	"healthreg/pkg/testutil/containers"
)

type RedisStoreIntegrationSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *kv.RedisStore
}

func TestRedisStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreIntegrationSuite))
}

func (s *RedisStoreIntegrationSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = kv.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreIntegrationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreIntegrationSuite) TestRoundTripWithoutExpiry() {
	ctx := context.Background()
	_, err := s.store.Get(ctx, "offline_patients")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Put(ctx, "offline_patients", []byte(`[]`)))
	blob, err := s.store.Get(ctx, "offline_patients")
	s.Require().NoError(err)
	s.Equal("[]", string(blob))

	ttl, err := s.redis.Client.TTL(ctx, "healthreg:offline_patients").Result()
	s.Require().NoError(err)
	s.Less(ttl.Seconds(), 0.0, "key must not carry an expiry")
}
