// internal/settings/redis.go
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces settings keys in Redis.
const KeyPrefix = "uno:settings:"

// RedisStore keeps each client's settings as a JSON string.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis at addr and checks the connection.
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (r *RedisStore) Load(ctx context.Context, clientID string) (models.GameSettings, error) {
	data, err := r.rdb.Get(ctx, KeyPrefix+clientID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.GameSettings{}, fmt.Errorf("failed to load settings for '%s': %w", clientID, err)
	}

	var s models.GameSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return models.GameSettings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return s.Normalize(), nil
}

func (r *RedisStore) Save(ctx context.Context, clientID string, s models.GameSettings) (models.GameSettings, error) {
	n := s.Normalize()
	data, err := json.Marshal(n)
	if err != nil {
		return models.GameSettings{}, fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := r.rdb.Set(ctx, KeyPrefix+clientID, data, 0).Err(); err != nil {
		return models.GameSettings{}, fmt.Errorf("failed to save settings for '%s': %w", clientID, err)
	}
	return n, nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
