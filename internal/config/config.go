// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds everything the server and the terminal client read from the environment.
type Config struct {
	Port           string
	LogLevel       logrus.Level
	AllowedOrigins []string

	GameAPIURL     string
	GameAPITimeout time.Duration

	SettleDelay      time.Duration
	ColorSettleDelay time.Duration
	UnoGrace         time.Duration
	NoticeDuration   time.Duration
	ColorNotice      time.Duration
	AnimationDelay   time.Duration

	SettingsBackend string
	RedisAddr       string
	RedisDB         int
	DatabaseURL     string

	// ClientID keys the terminal client's saved settings.
	ClientID string
}

// Load reads the configuration. Unset or malformed values fall back to defaults.
func Load() Config {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}

	return Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       level,
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		GameAPIURL:     getEnv("GAME_API_URL", "http://localhost:5165/api"),
		GameAPITimeout: getEnvDuration("GAME_API_TIMEOUT_MS", 10*time.Second),

		SettleDelay:      getEnvDuration("SETTLE_DELAY_MS", 1000*time.Millisecond),
		ColorSettleDelay: getEnvDuration("COLOR_SETTLE_DELAY_MS", 2000*time.Millisecond),
		UnoGrace:         getEnvDuration("UNO_GRACE_MS", 2000*time.Millisecond),
		NoticeDuration:   getEnvDuration("NOTICE_MS", 3000*time.Millisecond),
		ColorNotice:      getEnvDuration("COLOR_NOTICE_MS", 1500*time.Millisecond),
		AnimationDelay:   getEnvDuration("ANIMATION_MS", 600*time.Millisecond),

		SettingsBackend: strings.ToLower(getEnv("SETTINGS_BACKEND", "memory")),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		DatabaseURL:     getEnv("DATABASE_URL", ""),

		ClientID: getEnv("UNO_CLIENT_ID", "terminal"),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// getEnvDuration reads a millisecond count.
func getEnvDuration(key string, def time.Duration) time.Duration {
	ms := getEnvInt(key, -1)
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
