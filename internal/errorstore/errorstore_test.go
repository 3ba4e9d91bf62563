package errorstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ProviderSuite runs the same behaviour checks against every Provider.
type ProviderSuite struct {
	suite.Suite
	ctx      context.Context
	provider Provider
	newFunc  func(t *testing.T) Provider
}

func (s *ProviderSuite) SetupTest() {
	s.ctx = context.Background()
	s.provider = s.newFunc(s.T())
}

func TestMemoryProvider(t *testing.T) {
	suite.Run(t, &ProviderSuite{newFunc: func(*testing.T) Provider { return NewMemory() }})
}

func TestRedisProvider(t *testing.T) {
	suite.Run(t, &ProviderSuite{newFunc: func(t *testing.T) Provider {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedis(client)
	}})
}

func (s *ProviderSuite) TestSetLoadClear() {
	store := s.provider.ForSession("session-a")

	s.Require().NoError(store.Set(s.ctx, "error_email", "invalid email"))
	s.Require().NoError(store.Set(s.ctx, "error_city", "required"))

	entries, err := store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]string{"error_email": "invalid email", "error_city": "required"}, entries)

	s.Require().NoError(store.Clear(s.ctx, "error_email"))
	entries, err = store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]string{"error_city": "required"}, entries)
}

func (s *ProviderSuite) TestOverwrite() {
	store := s.provider.ForSession("session-a")
	s.Require().NoError(store.Set(s.ctx, "error_birth", "first"))
	s.Require().NoError(store.Set(s.ctx, "error_birth", "second"))

	entries, err := store.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("second", entries["error_birth"])
}

func (s *ProviderSuite) TestSessionsAreIsolated() {
	a := s.provider.ForSession("session-a")
	b := s.provider.ForSession("session-b")

	s.Require().NoError(a.Set(s.ctx, "error_email", "bad"))

	entries, err := b.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ProviderSuite) TestClearUnknownKey() {
	store := s.provider.ForSession("fresh")
	s.NoError(store.Clear(s.ctx, "error_city"))

	entries, err := store.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(entries)
}

func TestRedisExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	provider := NewRedis(client, WithKeyPrefix("test:"), WithTTL(time.Hour))
	store := provider.ForSession("s1")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "error_email", "bad"))
	assert.True(t, mr.Exists("test:s1"))
	assert.Equal(t, time.Hour, mr.TTL("test:s1"))

	mr.FastForward(2 * time.Hour)
	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryLoadReturnsCopy(t *testing.T) {
	store := NewMemory().ForSession("s1")
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "error_city", "bad"))

	entries, err := store.Load(ctx)
	require.NoError(t, err)
	entries["error_city"] = "mutated"

	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bad", again["error_city"])
}
