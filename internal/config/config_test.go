package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("AUTH_ROLES_CLAIM", "realm_access.roles")
	t.Setenv("CATALOG_PATH", "/etc/verifyapi/catalog.yaml")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("AUTH_INSECURE_SKIP_VERIFY", "")
	t.Setenv("STORAGE_ALLOW_MEMORY", "")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 900, cfg.MinIO.PresignTTLSec)
	assert.Equal(t, "realm_access.roles", cfg.Auth.RolesClaim)
	assert.Equal(t, "sub", cfg.Auth.UserClaim)
	assert.Equal(t, "/etc/verifyapi/catalog.yaml", cfg.Catalog.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "system", cfg.System.ActorID)
	assert.Equal(t, 5, cfg.Notify.TimeoutSec)
	assert.False(t, cfg.Auth.InsecureSkipVerify, "token verification is on by default")
	assert.False(t, cfg.MinIO.AllowMemory, "memory storage is opt-in")
}

func TestLogConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, LogConfig{Timezone: "Not/AZone"}.Location())

	assert.Equal(t, time.UTC, LogConfig{Timezone: "UTC"}.Location())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("VERIFY_STR", "value")
	t.Setenv("VERIFY_BOOL", "false")
	t.Setenv("VERIFY_BAD_BOOL", "maybe")
	t.Setenv("VERIFY_INT", "123")
	t.Setenv("VERIFY_BAD_INT", "twelve")
	t.Setenv("VERIFY_EMPTY", "")

	assert.Equal(t, "value", getEnv("VERIFY_STR", "default"))
	assert.Equal(t, "default", getEnv("VERIFY_EMPTY", "default"))
	assert.Equal(t, "default", getEnv("VERIFY_UNSET", "default"))

	assert.False(t, getEnvBool("VERIFY_BOOL", true))
	assert.True(t, getEnvBool("VERIFY_BAD_BOOL", true))
	assert.True(t, getEnvBool("VERIFY_UNSET", true))

	assert.Equal(t, 123, getEnvInt("VERIFY_INT", 0))
	assert.Equal(t, 10, getEnvInt("VERIFY_BAD_INT", 10))
	assert.Equal(t, 10, getEnvInt("VERIFY_UNSET", 10))
}
