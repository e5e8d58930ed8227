package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "entities", cfg.Store.Bucket)
	assert.Equal(t, "_id", cfg.Store.IDField)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing url", func(c *Config) { c.NATS.URL = "" }, "nats.url is required"},
		{"missing bucket", func(c *Config) { c.Store.Bucket = "" }, "store.bucket is required"},
		{"bad bucket chars", func(c *Config) { c.Store.Bucket = "my bucket" }, "store.bucket"},
		{"negative timeout", func(c *Config) { c.Store.Timeout = -time.Second }, "store.timeout"},
		{"negative size", func(c *Config) { c.Store.MaxValueSize = -1 }, "max_value_size"},
		{"tls cert without key", func(c *Config) {
			c.NATS.TLS = TLSConfig{Enabled: true, CertFile: "cert.pem"}
		}, "key_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDefaultsIDField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.IDField = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "_id", cfg.Store.IDField)
}

func TestParseMergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"nats": {"url": "nats://prod:4222"},
		"store": {"bucket": "gods"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "nats://prod:4222", cfg.NATS.URL)
	assert.Equal(t, "gods", cfg.Store.Bucket)
	// Untouched fields keep their defaults.
	assert.Equal(t, "_id", cfg.Store.IDField)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"stoer": {"bucket": "gods"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestParseRejectsWrongTypes(t *testing.T) {
	_, err := Parse([]byte(`{"store": {"bucket": 42}}`))
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store": {"bucket": "animals"}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "animals", cfg.Store.Bucket)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JNOSQL_NATS_URL", "nats://env:4222")
	t.Setenv("JNOSQL_NATS_PASSWORD", "hunter2")
	t.Setenv("JNOSQL_STORE_BUCKET", "from-env")

	cfg, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "nats://env:4222", cfg.NATS.URL)
	assert.Equal(t, "hunter2", cfg.NATS.Password)
	assert.Equal(t, "from-env", cfg.Store.Bucket)
}
