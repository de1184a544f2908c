package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port         string `env:"PORT,          default=3000"`
	Env          string `env:"ENV,           default=development"`
	LogLevel     string `env:"LOG_LEVEL,     default=info"`
	LogPretty    bool   `env:"LOG_PRETTY,    default=false"`
	ExposeErrors bool   `env:"EXPOSE_ERRORS, default=false"`

	// AdminJWTSecret protects the account and destination API when set.
	AdminJWTSecret  string        `env:"ADMIN_JWT_SECRET"`
	TokenHeader     string        `env:"TOKEN_HEADER,     default=CL-X-TOKEN"`
	BodyLimit       string        `env:"BODY_LIMIT,       default=10M"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`

	Store    StoreConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Delivery DeliveryConfig
}

type StoreConfig struct {
	// Driver is one of mongo, sqlite or postgres.
	Driver string `env:"STORE_DRIVER, default=mongo"`
	DSN    string `env:"SQL_DSN,      default=file:relay.db?cache=shared&_foreign_keys=on"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=webhook_relay"`
}

type RedisConfig struct {
	// Addr enables the token cache when non-empty.
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB,          default=0"`
	CacheTTL time.Duration `env:"ACCOUNT_CACHE_TTL, default=5m"`
}

type DeliveryConfig struct {
	Timeout time.Duration `env:"DELIVERY_TIMEOUT,    default=10s"`
	// Workers caps concurrent outbound calls process-wide; 0 spawns one goroutine per destination.
	Workers   int    `env:"DELIVERY_WORKERS,    default=64"`
	QueueSize int    `env:"DELIVERY_QUEUE_SIZE, default=256"`
	UserAgent string `env:"DELIVERY_USER_AGENT, default=webhook-relay/1.0"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "mongo", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Delivery.Workers < 0 {
		return fmt.Errorf("config: DELIVERY_WORKERS must not be negative")
	}
	if c.Delivery.Timeout <= 0 {
		return fmt.Errorf("config: DELIVERY_TIMEOUT must be positive")
	}
	if c.TokenHeader == "" {
		return fmt.Errorf("config: TOKEN_HEADER must not be empty")
	}
	return nil
}
