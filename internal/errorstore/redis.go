package errorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "registration:form:"

// Redis keeps each session's entries in one hash, "<prefix><session>",
// whose expiry is pushed back on every write.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis provider.
type RedisOption func(*Redis)

// WithKeyPrefix overrides the hash key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithTTL sets how long an idle session's entries survive. Zero keeps
// them until cleared.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = ttl }
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: defaultKeyPrefix, ttl: 24 * time.Hour}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) ForSession(id string) Store {
	return &redisSession{parent: r, key: r.prefix + id}
}

type redisSession struct {
	parent *Redis
	key    string
}

func (s *redisSession) Set(ctx context.Context, key, message string) error {
	pipe := s.parent.client.TxPipeline()
	pipe.HSet(ctx, s.key, key, message)
	if s.parent.ttl > 0 {
		pipe.Expire(ctx, s.key, s.parent.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("errorstore: set %s: %w", key, err)
	}
	return nil
}

func (s *redisSession) Clear(ctx context.Context, key string) error {
	if err := s.parent.client.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("errorstore: clear %s: %w", key, err)
	}
	return nil
}

func (s *redisSession) Load(ctx context.Context) (map[string]string, error) {
	entries, err := s.parent.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("errorstore: load: %w", err)
	}
	return entries, nil
}
