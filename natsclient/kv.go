package natsclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	jerrors "github.com/ediel-queiroz/jnosql/errors"
)

// KVEntry is a stored value together with its revision for CAS updates.
type KVEntry struct {
	Key      string
	Value    []byte
	Revision uint64
}

// KVOptions configures KV operation behavior.
type KVOptions struct {
	// Timeout bounds each operation.
	Timeout time.Duration
	// MaxValueSize rejects writes above this size. Zero disables the check.
	MaxValueSize int
}

// DefaultKVOptions returns the defaults used by the store driver.
func DefaultKVOptions() KVOptions {
	return KVOptions{
		Timeout:      5 * time.Second,
		MaxValueSize: 1024 * 1024,
	}
}

// KVStore provides typed access to one JetStream KV bucket.
type KVStore struct {
	bucket  jetstream.KeyValue
	options KVOptions
	logger  *slog.Logger
}

// NewKVStore wraps a bucket with the client's logger and the given options.
func (c *Client) NewKVStore(bucket jetstream.KeyValue, opts ...func(*KVOptions)) *KVStore {
	options := DefaultKVOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &KVStore{
		bucket:  bucket,
		options: options,
		logger:  c.logger,
	}
}

func (kv *KVStore) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if kv.options.Timeout > 0 {
		return context.WithTimeout(ctx, kv.options.Timeout)
	}
	return ctx, func() {}
}

func (kv *KVStore) checkSize(key string, value []byte) error {
	if kv.options.MaxValueSize > 0 && len(value) > kv.options.MaxValueSize {
		return fmt.Errorf("%w: key %s holds %d bytes, limit %d",
			jerrors.ErrValueTooLarge, key, len(value), kv.options.MaxValueSize)
	}
	return nil
}

// Get retrieves a value with its revision.
func (kv *KVStore) Get(ctx context.Context, key string) (*KVEntry, error) {
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	entry, err := kv.bucket.Get(ctx, key)
	if err != nil {
		if isKVNotFound(err) {
			return nil, fmt.Errorf("%w: %s", jerrors.ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return &KVEntry{
		Key:      key,
		Value:    entry.Value(),
		Revision: entry.Revision(),
	}, nil
}

// Put creates or overwrites a key, last writer wins.
func (kv *KVStore) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	if err := kv.checkSize(key, value); err != nil {
		return 0, err
	}
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	rev, err := kv.bucket.Put(ctx, key, value)
	if err != nil {
		return 0, fmt.Errorf("kv put %s: %w", key, err)
	}
	kv.logger.Debug("kv put", "key", key, "revision", rev)
	return rev, nil
}

// Create writes a key only when it does not exist yet.
func (kv *KVStore) Create(ctx context.Context, key string, value []byte) (uint64, error) {
	if err := kv.checkSize(key, value); err != nil {
		return 0, err
	}
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	rev, err := kv.bucket.Create(ctx, key, value)
	if err != nil {
		if isKVConflict(err) {
			return 0, fmt.Errorf("%w: %s", jerrors.ErrEntityExists, key)
		}
		return 0, fmt.Errorf("kv create %s: %w", key, err)
	}
	kv.logger.Debug("kv create", "key", key, "revision", rev)
	return rev, nil
}

// Update performs a CAS write against a known revision.
func (kv *KVStore) Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error) {
	if err := kv.checkSize(key, value); err != nil {
		return 0, err
	}
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	rev, err := kv.bucket.Update(ctx, key, value, revision)
	if err != nil {
		if isKVConflict(err) {
			return 0, fmt.Errorf("%w: %s at revision %d", jerrors.ErrDuplicateEntity, key, revision)
		}
		return 0, fmt.Errorf("kv update %s: %w", key, err)
	}
	return rev, nil
}

// Delete removes a key. Deleting an absent key is not an error at this
// layer; JetStream records a tombstone either way.
func (kv *KVStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	if err := kv.bucket.Delete(ctx, key); err != nil {
		if isKVNotFound(err) {
			return fmt.Errorf("%w: %s", jerrors.ErrKeyNotFound, key)
		}
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	kv.logger.Debug("kv delete", "key", key)
	return nil
}

// Keys lists the live keys starting with the given prefix. An empty prefix
// lists the whole bucket.
func (kv *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := kv.applyTimeout(ctx)
	defer cancel()

	lister, err := kv.bucket.ListKeys(ctx)
	if err != nil {
		if isKVNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	defer lister.Stop()

	var keys []string
	for key := range lister.Keys() {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func isKVNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "key not found") ||
		strings.Contains(msg, "no keys found") ||
		strings.Contains(msg, "10037")
}

func isKVConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "wrong last sequence") ||
		strings.Contains(msg, "10071") ||
		strings.Contains(msg, "key exists") ||
		strings.Contains(msg, "10058")
}
