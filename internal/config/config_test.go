package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, time.Hour, cfg.JWT.ResetTTL)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 300*time.Second, cfg.Redis.ListTTL)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, 10*time.Second, cfg.Mapbox.Timeout)
	assert.False(t, cfg.Storage.S3Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("JWT_ACCESS_TTL", "45m")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/campaigns")
	t.Setenv("MAX_FILE_SIZE", "1048576")

	cfg, err := load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.JWT.Secret)
	assert.Equal(t, 45*time.Minute, cfg.JWT.AccessTTL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "postgres://u:p@db:5432/campaigns", cfg.Database.URL)
	assert.Equal(t, int64(1048576), cfg.Upload.MaxFileSize)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: \"9090\"\nredis:\n  prefix: test_prefix\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test_prefix", cfg.Redis.Prefix)
}

func TestLoad_ProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := load(t.TempDir())
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := load(t.TempDir())
	require.NoError(t, err)
	assert.True(t, IsProdLike(cfg.App.Env))
}

func TestValidateConfig_RejectsUnknownAlgorithm(t *testing.T) {
	t.Setenv("JWT_ALGORITHM", "RS256")

	_, err := load(t.TempDir())
	assert.Error(t, err)
}
