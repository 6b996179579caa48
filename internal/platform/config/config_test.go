package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func noFile(string) ([]byte, error) { return nil, os.ErrNotExist }

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envFrom(nil), noFile)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 10*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Auth.RequireStaff)
	assert.Equal(t, "civicdesk:", cfg.Redis.KeyPrefix)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	file := []byte(`
addr: ":9000"
store: redis
redis:
  url: redis://file:6379/0
classifier:
  model: gemini-from-file
  timeout: 2s
`)
	readFile := func(path string) ([]byte, error) {
		assert.Equal(t, "/etc/civicdesk.yaml", path)
		return file, nil
	}
	env := envFrom(map[string]string{
		"CIVICDESK_CONFIG":   "/etc/civicdesk.yaml",
		"REDIS_URL":          "redis://env:6379/1",
		"AUTH_REQUIRE_STAFF": "true",
		"KAFKA_BROKERS":      "k1:9092, k2:9092",
	})

	cfg, err := load(env, readFile)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "redis://env:6379/1", cfg.Redis.URL)
	assert.Equal(t, "gemini-from-file", cfg.Classifier.Model)
	assert.Equal(t, 2*time.Second, cfg.Classifier.Timeout)
	assert.True(t, cfg.Auth.RequireStaff)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		_, err := load(envFrom(map[string]string{"CLASSIFIER_TIMEOUT": "soon"}), noFile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CLASSIFIER_TIMEOUT")
	})

	t.Run("postgres store without dsn", func(t *testing.T) {
		_, err := load(envFrom(map[string]string{"GRIEVANCE_STORE": "postgres"}), noFile)
		require.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := load(envFrom(map[string]string{"GRIEVANCE_STORE": "firestore"}), noFile)
		require.Error(t, err)
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := load(envFrom(map[string]string{"CIVICDESK_CONFIG": "/missing.yaml"}), noFile)
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}
