// internal/settings/settings.go
package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/models"
)

// Store persists the table options a client picked, keyed by client ID.
// Load returns the defaults when nothing was saved. Both paths normalize.
type Store interface {
	Load(ctx context.Context, clientID string) (models.GameSettings, error)
	Save(ctx context.Context, clientID string, s models.GameSettings) (models.GameSettings, error)
	Close() error
}

// Open builds the store selected by cfg.SettingsBackend.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.SettingsBackend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB)
	case "postgres":
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	}
	return nil, fmt.Errorf("unknown settings backend '%s'", cfg.SettingsBackend)
}

// MemoryStore keeps settings for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]models.GameSettings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]models.GameSettings)}
}

func (m *MemoryStore) Load(_ context.Context, clientID string) (models.GameSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[clientID]
	if !ok {
		return models.DefaultSettings(), nil
	}
	return s.Normalize(), nil
}

func (m *MemoryStore) Save(_ context.Context, clientID string, s models.GameSettings) (models.GameSettings, error) {
	n := s.Normalize()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[clientID] = n
	return n, nil
}

func (m *MemoryStore) Close() error { return nil }
