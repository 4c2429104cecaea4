package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	// APIURL is the backend root the console talks to.
	APIURL      string        `env:"ORDERDESK_API_URL,  default=http://localhost:8080/api"`
	LogLevel    string        `env:"LOG_LEVEL,          default=info"`
	LogPretty   bool          `env:"LOG_PRETTY,         default=true"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,       default=30s"`

	// CredBackend selects where the session is persisted: file, redis, or
	// memory (no persistence).
	CredBackend string `env:"ORDERDESK_CRED_BACKEND, default=file"`
	// CredFile overrides the credentials file location. Empty means
	// <user config dir>/orderdesk/credentials.json.
	CredFile string `env:"ORDERDESK_CREDENTIALS_FILE"`

	Redis RedisConfig
	Dev   DevConfig
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
	Key  string `env:"ORDERDESK_REDIS_KEY, default=orderdesk:session"`
}

// DevConfig drives the embedded development backend (orderdesk devserver).
type DevConfig struct {
	Port       string        `env:"ORDERDESK_DEV_PORT,        default=8080"`
	JWTSecret  string        `env:"ORDERDESK_DEV_JWT_SECRET,  default=dev-only-secret"`
	AccessTTL  time.Duration `env:"ORDERDESK_DEV_ACCESS_TTL,  default=15m"`
	RefreshTTL time.Duration `env:"ORDERDESK_DEV_REFRESH_TTL, default=168h"`
	SeedOrders int           `env:"ORDERDESK_DEV_SEED_ORDERS, default=25"`
	// SyncInterval drives the auto-sync loop, gated by the channel.auto_sync
	// feature flag.
	SyncInterval time.Duration `env:"ORDERDESK_DEV_SYNC_INTERVAL, default=30s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// CredentialsPath resolves the credentials file location, creating nothing.
func (c *Config) CredentialsPath() (string, error) {
	if c.CredFile != "" {
		return c.CredFile, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(base, "orderdesk", "credentials.json"), nil
}
