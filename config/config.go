package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	devJWTSecret = "dev-only-secret-change-me"
)

type Config struct {
	Port           string
	MongoURI       string
	DatabaseName   string
	StoreDriver    string
	JWTSecret      string
	JWTExpiration  time.Duration
	CORSOrigin     string
	LogLevel       string
	RequestTimeout time.Duration
	AuthRateLimit  int
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:         get("PORT", "5000"),
		MongoURI:     get("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName: get("DATABASE_NAME", "wellness"),
		StoreDriver:  get("STORE_DRIVER", StoreMongo),
		JWTSecret:    getenv("JWT_SECRET"),
		CORSOrigin:   get("CORS_ORIGIN", "*"),
		LogLevel:     get("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.JWTExpiration, err = time.ParseDuration(get("JWT_EXPIRATION", "24h")); err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRATION: %w", err)
	}
	if cfg.RequestTimeout, err = time.ParseDuration(get("REQUEST_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if cfg.AuthRateLimit, err = strconv.Atoi(get("AUTH_RATE_LIMIT", "20")); err != nil {
		return Config{}, fmt.Errorf("AUTH_RATE_LIMIT: %w", err)
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.JWTSecret == "" {
			return Config{}, errors.New("JWT_SECRET is required")
		}
	case StoreMemory:
		if cfg.JWTSecret == "" {
			cfg.JWTSecret = devJWTSecret
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}
