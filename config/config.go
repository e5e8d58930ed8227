// Package config defines the configuration of the document store driver
// and the connection it rides on.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the complete framework configuration.
type Config struct {
	NATS  NATSConfig  `json:"nats"`
	Store StoreConfig `json:"store"`
	Retry RetryConfig `json:"retry,omitempty"`
}

// NATSConfig describes the NATS connection.
type NATSConfig struct {
	URL           string        `json:"url"`
	MaxReconnects int           `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration `json:"reconnect_wait,omitempty"`
	Timeout       time.Duration `json:"timeout,omitempty"`
	Username      string        `json:"username,omitempty"`
	Password      string        `json:"password,omitempty"`
	Token         string        `json:"token,omitempty"`
	TLS           TLSConfig     `json:"tls,omitempty"`
}

// TLSConfig for secure NATS connections.
type TLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file,omitempty"`
	KeyFile  string `json:"key_file,omitempty"`
	CAFile   string `json:"ca_file,omitempty"`
}

// StoreConfig describes the KV bucket backing the document store.
type StoreConfig struct {
	// Bucket names the JetStream KV bucket.
	Bucket string `json:"bucket"`
	// IDField is the document name carrying the entity identifier.
	IDField string `json:"id_field,omitempty"`
	// Timeout bounds each store operation.
	Timeout time.Duration `json:"timeout,omitempty"`
	// MaxValueSize rejects entities bigger than this when serialized.
	MaxValueSize int `json:"max_value_size,omitempty"`
}

// RetryConfig mirrors pkg/retry.Config for JSON configuration.
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts,omitempty"`
	InitialDelay time.Duration `json:"initial_delay,omitempty"`
	MaxDelay     time.Duration `json:"max_delay,omitempty"`
	Multiplier   float64       `json:"multiplier,omitempty"`
}

// DefaultConfig returns a config suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			Timeout:       5 * time.Second,
		},
		Store: StoreConfig{
			Bucket:       "entities",
			IDField:      "_id",
			Timeout:      5 * time.Second,
			MaxValueSize: 1024 * 1024,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Validate checks the config for usability and normalizes a few fields.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if c.Store.Bucket == "" {
		return errors.New("store.bucket is required")
	}
	if !isValidBucketName(c.Store.Bucket) {
		return fmt.Errorf("store.bucket %q must contain only letters, digits, dashes, and underscores",
			c.Store.Bucket)
	}
	if c.Store.IDField == "" {
		c.Store.IDField = "_id"
	}
	if c.Store.Timeout < 0 {
		return errors.New("store.timeout cannot be negative")
	}
	if c.Store.MaxValueSize < 0 {
		return errors.New("store.max_value_size cannot be negative")
	}
	if c.Retry.MaxAttempts < 0 {
		return errors.New("retry.max_attempts cannot be negative")
	}
	if c.NATS.TLS.Enabled && c.NATS.TLS.CertFile != "" && c.NATS.TLS.KeyFile == "" {
		return errors.New("nats.tls.key_file is required when cert_file is set")
	}
	return nil
}

// Load reads config from a JSON file, applies environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds config from raw JSON on top of the defaults.
func Parse(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides connection settings from the environment, so secrets
// can stay out of the config file.
func (c *Config) applyEnv() {
	if val := os.Getenv("JNOSQL_NATS_URL"); val != "" {
		c.NATS.URL = val
	}
	if val := os.Getenv("JNOSQL_NATS_USERNAME"); val != "" {
		c.NATS.Username = val
	}
	if val := os.Getenv("JNOSQL_NATS_PASSWORD"); val != "" {
		c.NATS.Password = val
	}
	if val := os.Getenv("JNOSQL_NATS_TOKEN"); val != "" {
		c.NATS.Token = val
	}
	if val := os.Getenv("JNOSQL_STORE_BUCKET"); val != "" {
		c.Store.Bucket = val
	}
}

func isValidBucketName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return len(name) > 0 && !strings.HasPrefix(name, "-")
}
