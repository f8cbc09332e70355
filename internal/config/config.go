package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selectors for the metadata and blob stores.
const (
	MetadataBackendBadger   = "badger"
	MetadataBackendPostgres = "postgres"

	BlobBackendDisk  = "disk"
	BlobBackendMinIO = "minio"
)

// Config aggregates runtime configuration for the sanctuarypics API.
type Config struct {
	Server   ServerConfig
	Stores   StoreConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StoreConfig selects and parameterizes the storage backends.
type StoreConfig struct {
	MetadataBackend string
	BlobBackend     string
	UploadDir       string
	BadgerDir       string
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:           getString("SANCTUARYPICS_API_HOST", "0.0.0.0"),
			Port:           getInt("SANCTUARYPICS_API_PORT", 8080),
			ReadTimeout:    getDuration("SANCTUARYPICS_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getDuration("SANCTUARYPICS_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getDuration("SANCTUARYPICS_API_IDLE_TIMEOUT", 60*time.Second),
			AllowedOrigins: getStringSlice("SANCTUARYPICS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Stores: StoreConfig{
			MetadataBackend: strings.ToLower(getString("SANCTUARYPICS_METADATA_BACKEND", MetadataBackendBadger)),
			BlobBackend:     strings.ToLower(getString("SANCTUARYPICS_BLOB_BACKEND", BlobBackendDisk)),
			UploadDir:       getString("SANCTUARYPICS_UPLOAD_DIR", "uploads"),
			BadgerDir:       getString("SANCTUARYPICS_BADGER_DIR", "data/photos_badger"),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "sanctuarypics_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "sanctuarypics"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "sanctuarypics"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "sanctuarypics"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("SANCTUARYPICS_METRICS_PATH", "/metrics"),
		},
	}

	switch cfg.Stores.MetadataBackend {
	case MetadataBackendBadger, MetadataBackendPostgres:
	default:
		return Config{}, fmt.Errorf("unknown metadata backend %q", cfg.Stores.MetadataBackend)
	}

	switch cfg.Stores.BlobBackend {
	case BlobBackendDisk, BlobBackendMinIO:
	default:
		return Config{}, fmt.Errorf("unknown blob backend %q", cfg.Stores.BlobBackend)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getStringSlice(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
