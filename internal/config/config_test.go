package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "propstack_data", cfg.Storage.Key)
	assert.Equal(t, "propstack_enrich", cfg.Redis.ConsumerGroup)
	assert.Equal(t, 4, cfg.Enrich.MaxWorkers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  backend: redis
  key: catalog
redis:
  host: cache
  min_idle_time: 30
enrich:
  max_workers: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "catalog", cfg.Storage.Key)
	assert.Equal(t, "cache", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 30, cfg.Redis.MinIdleTime)
	assert.Equal(t, 8, cfg.Enrich.MaxWorkers)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: memory\n")
	t.Setenv("PROPSTACK_STORAGE_BACKEND", "postgres")
	t.Setenv("PROPSTACK_DATABASE_NAME", "catalog_test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, "catalog_test", cfg.Database.Name)
	assert.Contains(t, cfg.Database.DSN(), "dbname=catalog_test")
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage:\n  backend: sqlite\n"))
		assert.ErrorContains(t, err, "unknown storage backend")
	})

	t.Run("two seeds", func(t *testing.T) {
		_, err := Load(writeConfig(t, "seed:\n  file: a.json\n  url: http://example.com/a.json\n"))
		assert.ErrorContains(t, err, "mutually exclusive")
	})

	t.Run("non-positive min idle time", func(t *testing.T) {
		_, err := Load(writeConfig(t, "redis:\n  min_idle_time: 0\n"))
		assert.ErrorContains(t, err, "redis.min_idle_time")

		_, err = Load(writeConfig(t, "redis:\n  min_idle_time: -3\n"))
		assert.ErrorContains(t, err, "redis.min_idle_time")
	})
}

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	require.NoError(t, SetupLogging(LogConfig{Level: "debug", Format: "json"}))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	assert.Error(t, SetupLogging(LogConfig{Level: "loud"}))
	assert.Error(t, SetupLogging(LogConfig{Level: "info", Format: "xml"}))

	log.SetFormatter(&log.TextFormatter{})
}
