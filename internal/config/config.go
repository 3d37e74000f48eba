package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	// AppName is reported to Postgres as application_name.
	AppName            string
	ConnectTimeoutSec  int
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
// AllowMemory permits an empty Endpoint, keeping files in process memory.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignTTLSec int
	AllowMemory   bool
}

// AuthConfig controls how bearer tokens are verified.
// With PublicKeyPath set tokens must be RS256-signed; otherwise HMACSecret is
// used for HS256. One of them is required unless InsecureSkipVerify is set,
// which only makes sense behind a proxy that already verified the token.
type AuthConfig struct {
	PublicKeyPath      string
	HMACSecret         string
	Issuer             string
	Audience           string
	RolesClaim         string
	UserClaim          string
	InsecureSkipVerify bool
}

// CatalogConfig points at the document type catalog file.
type CatalogConfig struct {
	Path string
}

// NotifyConfig configures the outbound event notifier.
// An empty WebhookURL falls back to logging events.
type NotifyConfig struct {
	WebhookURL string
	TimeoutSec int
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level    string
	Timezone string
}

// SystemConfig identifies the actor automated jobs act as.
type SystemConfig struct {
	ActorID string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Notify   NotifyConfig
	Log      LogConfig
	System   SystemConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			AppName:            getEnv("DB_APP_NAME", "verifyapi"),
			ConnectTimeoutSec:  getEnvInt("DB_CONNECT_TIMEOUT_SEC", 5),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", ""),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PresignTTLSec: getEnvInt("MINIO_PRESIGN_TTL_SEC", 900),
			AllowMemory:   getEnvBool("STORAGE_ALLOW_MEMORY", false),
		},
		Auth: AuthConfig{
			PublicKeyPath:      getEnv("AUTH_PUBLIC_KEY_PATH", ""),
			HMACSecret:         getEnv("AUTH_HMAC_SECRET", ""),
			Issuer:             getEnv("AUTH_ISSUER", ""),
			Audience:           getEnv("AUTH_AUDIENCE", ""),
			RolesClaim:         getEnv("AUTH_ROLES_CLAIM", "roles"),
			UserClaim:          getEnv("AUTH_USER_CLAIM", "sub"),
			InsecureSkipVerify: getEnvBool("AUTH_INSECURE_SKIP_VERIFY", false),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", "catalog.yaml"),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			TimeoutSec: getEnvInt("NOTIFY_TIMEOUT_SEC", 5),
		},
		Log: LogConfig{
			Level:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Timezone: getEnv("LOG_TIMEZONE", "UTC"),
		},
		System: SystemConfig{
			ActorID: getEnv("SYSTEM_ACTOR_ID", "system"),
		},
	}
}

// Location resolves the configured log timezone, falling back to UTC.
func (c LogConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
