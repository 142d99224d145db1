// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "GAME_API_URL", "UNO_GRACE_MS", "SETTINGS_BACKEND", "ALLOWED_ORIGINS", "UNO_CLIENT_ID"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "http://localhost:5165/api", cfg.GameAPIURL)
	assert.Equal(t, 2*time.Second, cfg.UnoGrace)
	assert.Equal(t, time.Second, cfg.SettleDelay)
	assert.Equal(t, "memory", cfg.SettingsBackend)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "terminal", cfg.ClientID)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNO_GRACE_MS", "500")
	t.Setenv("SETTLE_DELAY_MS", "bogus")
	t.Setenv("SETTINGS_BACKEND", "Redis")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.UnoGrace)
	assert.Equal(t, time.Second, cfg.SettleDelay, "malformed values keep the default")
	assert.Equal(t, "redis", cfg.SettingsBackend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}
