package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SessionSecret signs the locally-minted session and refresh cookies.
	SessionSecret string `env:"SESSION_SECRET"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Audit    AuditConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=quotes_platform"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type IdentityConfig struct {
	BaseURL string        `env:"IDENTITY_URL,     default=http://localhost:9090"`
	APIKey  string        `env:"IDENTITY_API_KEY"`
	Secret  string        `env:"IDENTITY_SECRET"`
	Timeout time.Duration `env:"IDENTITY_TIMEOUT, default=5s"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// Production reports whether the service runs under production conditions,
// which escalates cookie attributes.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
