package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env    string
	Port   string
	OTel   OTelConfig
	Store  StoreConfig
	Remote RemoteConfig
	Cache  CacheConfig
	Audit  AuditConfig
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// StoreConfig points at the primary contract table.
type StoreConfig struct {
	Table          string
	Region         string
	Endpoint       string // optional override for local development
	CandidateLimit int32
}

// RemoteConfig holds the external opportunity search endpoint settings.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
}

// CacheConfig enables the Redis read-through resolution cache.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// AuditConfig enables the Postgres resolution audit log.
type AuditConfig struct {
	DSN      string
	MaxConns int32
	MinConns int32
}

// Load loads configuration from environment variables. In development it
// loads from .env first. The resolver itself never reads the environment;
// everything it needs is injected from here at construction time.
func Load() (Config, error) {
	if getEnv("RESOLVER_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("RESOLVER_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "resolver"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Store: StoreConfig{
			Table:          getEnv("STORE_TABLE", "contracts"),
			Region:         getEnv("STORE_REGION", "us-east-1"),
			Endpoint:       getEnv("STORE_ENDPOINT", ""),
			CandidateLimit: getEnvInt32("STORE_CANDIDATE_LIMIT", 250),
		},
		Remote: RemoteConfig{
			BaseURL: getEnv("SAM_BASE_URL", "https://api.sam.gov/opportunities/v2/search"),
			APIKey:  getEnv("SAM_API_KEY", ""),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			TTL:      getEnvDuration("CACHE_TTL", 15*time.Minute),
		},
		Audit: AuditConfig{
			DSN:      getEnv("AUDIT_DATABASE_URL", ""),
			MaxConns: getEnvInt32("AUDIT_DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("AUDIT_DB_MIN_CONNS", 2),
		},
	}

	if cfg.Remote.APIKey == "" {
		return Config{}, fmt.Errorf("SAM_API_KEY is required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c CacheConfig) Enabled() bool {
	return c.RedisURL != ""
}

func (c AuditConfig) Enabled() bool {
	return c.DSN != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
