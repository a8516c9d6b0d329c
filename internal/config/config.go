// Package config loads application configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment
// variables (and an optional .env file next to the binary).
type Config struct {
	ListenAddr    string
	DBPath        string
	VaultPassword string
	PanelUser     string
	PanelPassword string
	SessionSecret string
	SessionTTL    time.Duration
	MockProviders bool
	MockDelay     time.Duration
}

// Load reads configuration and returns a validated Config.
//
// POLYASK_PANEL_PASSWORD is required: without it nobody can sign in and the
// whole panel is unreachable, so failing fast beats starting dead. All
// other variables have defaults: POLYASK_LISTEN_ADDR (127.0.0.1:8080),
// POLYASK_DB_PATH (polyask.db), POLYASK_PANEL_USER (admin),
// POLYASK_VAULT_PASSWORD (derived key password for API key encryption at
// rest), POLYASK_SESSION_SECRET (random per process when unset, which signs
// everyone out on restart), POLYASK_SESSION_TTL (24h),
// POLYASK_MOCK_PROVIDERS (false), POLYASK_MOCK_DELAY (1s).
func Load() (*Config, error) {
	// A missing .env file is fine; real env vars win either way.
	_ = godotenv.Load()

	panelPassword := os.Getenv("POLYASK_PANEL_PASSWORD")
	if panelPassword == "" {
		return nil, fmt.Errorf("POLYASK_PANEL_PASSWORD is required")
	}

	cfg := &Config{
		ListenAddr:    envOr("POLYASK_LISTEN_ADDR", "127.0.0.1:8080"),
		DBPath:        envOr("POLYASK_DB_PATH", "polyask.db"),
		VaultPassword: envOr("POLYASK_VAULT_PASSWORD", "user-password"),
		PanelUser:     envOr("POLYASK_PANEL_USER", "admin"),
		PanelPassword: panelPassword,
		SessionSecret: os.Getenv("POLYASK_SESSION_SECRET"),
		SessionTTL:    24 * time.Hour,
		MockDelay:     time.Second,
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		slog.Warn("POLYASK_SESSION_SECRET not set, using a per-process secret; sessions will not survive restarts")
	}

	if v, ok := os.LookupEnv("POLYASK_SESSION_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("POLYASK_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		cfg.SessionTTL = parsed
	}

	if v, ok := os.LookupEnv("POLYASK_MOCK_PROVIDERS"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("POLYASK_MOCK_PROVIDERS has invalid bool %q: %w", v, err)
		}
		cfg.MockProviders = parsed
	}

	if v, ok := os.LookupEnv("POLYASK_MOCK_DELAY"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("POLYASK_MOCK_DELAY has invalid duration %q: %w", v, err)
		}
		cfg.MockDelay = parsed
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("config: failed to generate session secret: " + err.Error())
	}
	return hex.EncodeToString(b)
}
