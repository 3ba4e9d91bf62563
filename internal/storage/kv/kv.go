// Package kv stores the user list as one JSON array under a single Redis
// key ("users" by default). It is the key-value variant of storage.Storage:
// every write reads the whole list, appends, and writes it back.
//
// Concurrent writers are serialised with WATCH/MULTI. A writer whose key
// changed underneath it retries from a fresh read.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/users"
)

const (
	DefaultKey = "users"

	maxRetries = 5
)

// KV is a Redis-backed storage.Storage.
type KV struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

var _ storage.Storage = (*KV)(nil)

// New returns a store keeping its list under key. An empty key means
// DefaultKey.
func New(client *redis.Client, key string) *KV {
	if key == "" {
		key = DefaultKey
	}
	return &KV{client: client, key: key, now: time.Now}
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// load reads and decodes the list. A missing key is an empty list.
func load(ctx context.Context, cmd getter, key string) ([]types.User, error) {
	raw, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []types.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv: get %s: %w", key, err)
	}

	var list []types.User
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("kv: decode %s: %w", key, err)
	}
	if list == nil {
		list = []types.User{}
	}
	return list, nil
}

func (s *KV) CreateUser(ctx context.Context, u types.User) (int64, error) {
	var id int64

	txf := func(tx *redis.Tx) error {
		list, err := load(ctx, tx, s.key)
		if err != nil {
			return err
		}

		if users.Exists(u.Email, list) {
			return storage.ErrDuplicateEmail
		}

		id = nextID(list)
		u.ID = id
		u.CreatedAt = s.now().UTC()

		raw, err := json.Marshal(users.AddToList(u, list))
		if err != nil {
			return fmt.Errorf("kv: encode: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, raw, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateEmail) {
				return 0, err
			}
			return 0, fmt.Errorf("CreateUser: %w", err)
		}
		return id, nil
	}

	return 0, fmt.Errorf("CreateUser: %w after %d attempts", redis.TxFailedErr, maxRetries)
}

func nextID(list []types.User) int64 {
	var top int64
	for _, u := range list {
		if u.ID > top {
			top = u.ID
		}
	}
	return top + 1
}

func (s *KV) GetUserByID(ctx context.Context, id int64) (types.User, error) {
	list, err := load(ctx, s.client, s.key)
	if err != nil {
		return types.User{}, err
	}

	for _, u := range list {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
}

func (s *KV) GetUsers(ctx context.Context) ([]types.User, error) {
	return load(ctx, s.client, s.key)
}
