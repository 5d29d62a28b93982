package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ListenAddr string
	DB         DBConfig
	Spatial    SpatialConfig
	OTel       OTelConfig
	// BatchWorkers bounds concurrent assessments in batch runs.
	BatchWorkers int
}

type DBConfig struct {
	URL      string
	MaxConns int32
}

// SpatialConfig controls the designation query fan-out.
type SpatialConfig struct {
	Concurrency int
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Load reads configuration from the environment. In development a .env file
// in the working directory is loaded first when present.
func Load() Config {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	return Config{
		Env:        getEnv("APP_ENV", "development"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DB: DBConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
		},
		Spatial: SpatialConfig{
			Concurrency: getEnvInt("SPATIAL_CONCURRENCY", 8),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "siterisk"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		BatchWorkers: getEnvInt("BATCH_WORKERS", 4),
	}
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Enabled reports whether a spatial database is configured. Without one only
// feature-payload assessments are served.
func (c DBConfig) Enabled() bool {
	return c.URL != ""
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(v, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}
