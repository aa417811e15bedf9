// Package config loads the storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type StorageKind string

const (
	StorageMemory   StorageKind = "memory"
	StorageSQLite   StorageKind = "sqlite"
	StoragePostgres StorageKind = "postgres"
)

type Config struct {
	Addr            string        `env:"STOREFRONT_ADDR" envDefault:":8080"`
	ProductsURL     string        `env:"STOREFRONT_UPSTREAM_PRODUCTS_URL" envDefault:"https://v0-api-endpoint-request.vercel.app/api/products"`
	MoreProductsURL string        `env:"STOREFRONT_UPSTREAM_MORE_PRODUCTS_URL" envDefault:"https://v0-api-endpoint-request.vercel.app/api/more-products"`
	CatalogBaseURL  string        `env:"STOREFRONT_CATALOG_BASE_URL"`
	FetchTimeout    time.Duration `env:"STOREFRONT_FETCH_TIMEOUT" envDefault:"10s"`
	Storage         StorageKind   `env:"STOREFRONT_STORAGE" envDefault:"memory"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"STOREFRONT_SQLITE_PATH" envDefault:"storefront.db"`
	LogLevel        string        `env:"STOREFRONT_LOG_LEVEL" envDefault:"info"`
	SessionIdleTTL  time.Duration `env:"STOREFRONT_SESSION_IDLE_TTL" envDefault:"30m"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the optional dotenv files and then the environment. Variables
// already set in the environment win over the files.
func Load(dotenvFiles ...string) (Config, error) {
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("godotenv.Load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("STOREFRONT_SQLITE_PATH is required for sqlite storage")
		}
	case StoragePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("storage[%s] is not valid", c.Storage)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout[%s] is not valid", c.FetchTimeout)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("session idle ttl[%s] is not valid", c.SessionIdleTTL)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log level[%s] is not valid: %w", c.LogLevel, err)
	}
	return level, nil
}
