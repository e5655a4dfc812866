// Package drafts keeps unsaved editor work in a versioned key/value store.
// Writes are debounced so a burst of autosaves costs one round trip.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alcyxob/fitness-content/internal/config"

	goredis "github.com/redis/go-redis/v9"
)

// SchemaVersion is bumped whenever the payload shape changes. Drafts written
// under another version are discarded on read.
const SchemaVersion = 1

var ErrNotFound = errors.New("draft not found")

// Envelope is the stored form of a draft.
type Envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	SavedAt       time.Time       `json:"savedAt"`
	Payload       json.RawMessage `json:"payload"`
}

// Store is the key/value backend.
type Store interface {
	Save(ctx context.Context, key string, env Envelope, ttl time.Duration) error
	Load(ctx context.Context, key string) (*Envelope, error)
	Delete(ctx context.Context, key string) error
}

type redisStore struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisStore connects to redis and pings it before returning.
func NewRedisStore(cfg config.RedisConfig) (Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisStore{rdb: rdb, prefix: "draft:"}, nil
}

func (s *redisStore) Save(ctx context.Context, key string, env Envelope, ttl time.Duration) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.prefix+key, raw, ttl).Err()
}

func (s *redisStore) Load(ctx context.Context, key string) (*Envelope, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", key, err)
	}
	return &env, nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}
