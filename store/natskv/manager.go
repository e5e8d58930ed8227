// Package natskv implements the document store manager on a NATS
// JetStream key-value bucket. Entities are stored as ordered JSON under
// the key "<entity>.<id>", so one prefix scan covers a whole entity name.
package natskv

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/ediel-queiroz/jnosql/config"
	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
	"github.com/ediel-queiroz/jnosql/metric"
	"github.com/ediel-queiroz/jnosql/natsclient"
	"github.com/ediel-queiroz/jnosql/pkg/retry"
)

const component = "natskv"

// kvAPI is the slice of the KV client the manager uses. natsclient.KVStore
// satisfies it.
type kvAPI interface {
	Get(ctx context.Context, key string) (*natsclient.KVEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Create(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Manager is an entity.Manager backed by a JetStream KV bucket.
type Manager struct {
	kv      kvAPI
	client  *natsclient.Client
	idField string
	retry   retry.Config
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics wires store metrics.
func WithMetrics(metrics *metric.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// Connect dials NATS, ensures the bucket exists, and returns a ready
// manager. Close releases the connection.
func Connect(ctx context.Context, cfg *config.Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, jerrors.WrapInvalid(err, component, "Connect", "validate config")
	}

	clientOpts := []natsclient.ClientOption{
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithTimeout(cfg.NATS.Timeout),
	}
	if cfg.NATS.ReconnectWait > 0 {
		clientOpts = append(clientOpts, natsclient.WithReconnectWait(cfg.NATS.ReconnectWait))
	}
	if cfg.NATS.Username != "" {
		clientOpts = append(clientOpts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		clientOpts = append(clientOpts, natsclient.WithToken(cfg.NATS.Token))
	}
	if cfg.NATS.TLS.Enabled {
		clientOpts = append(clientOpts,
			natsclient.WithTLS(cfg.NATS.TLS.CertFile, cfg.NATS.TLS.KeyFile, cfg.NATS.TLS.CAFile))
	}

	client, err := natsclient.NewClient(cfg.NATS.URL, clientOpts...)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	bucket, err := client.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{Bucket: cfg.Store.Bucket})
	if err != nil {
		_ = client.Close(ctx)
		return nil, err
	}

	kv := client.NewKVStore(bucket, func(o *natsclient.KVOptions) {
		if cfg.Store.Timeout > 0 {
			o.Timeout = cfg.Store.Timeout
		}
		if cfg.Store.MaxValueSize > 0 {
			o.MaxValueSize = cfg.Store.MaxValueSize
		}
	})

	m := newManager(kv, cfg, opts...)
	m.client = client
	return m, nil
}

func newManager(kv kvAPI, cfg *config.Config, opts ...Option) *Manager {
	retryCfg := retry.Config{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
		Multiplier:   cfg.Retry.Multiplier,
		Jitter:       true,
		RetryIf:      jerrors.IsTransient,
	}

	m := &Manager{
		kv:      kv,
		idField: cfg.Store.IDField,
		retry:   retryCfg,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", component)
	return m
}

// Insert stores a new entity; one with the same identifier already in the
// bucket fails with ErrEntityExists.
func (m *Manager) Insert(ctx context.Context, e *entity.DocumentEntity) (*entity.DocumentEntity, error) {
	key, err := m.keyOf(e)
	if err != nil {
		return nil, err
	}
	data, err := e.MarshalJSON()
	if err != nil {
		return nil, jerrors.NewMapping(err, component, "Insert", "serialize %s", key)
	}

	err = retry.Do(ctx, m.retry, func() error {
		_, err := m.kv.Create(ctx, key, data)
		return err
	})
	if err != nil {
		m.record("insert", err)
		return nil, err
	}

	m.record("insert", nil)
	m.logger.Debug("entity inserted", "key", key)
	return e, nil
}

// Update overwrites the stored entity, creating it when absent.
func (m *Manager) Update(ctx context.Context, e *entity.DocumentEntity) (*entity.DocumentEntity, error) {
	key, err := m.keyOf(e)
	if err != nil {
		return nil, err
	}
	data, err := e.MarshalJSON()
	if err != nil {
		return nil, jerrors.NewMapping(err, component, "Update", "serialize %s", key)
	}

	err = retry.Do(ctx, m.retry, func() error {
		_, err := m.kv.Put(ctx, key, data)
		return err
	})
	if err != nil {
		m.record("update", err)
		return nil, err
	}

	m.record("update", nil)
	return e, nil
}

// Delete removes every stored entity the query matches. A single equality
// condition on the identifier becomes a direct key delete.
func (m *Manager) Delete(ctx context.Context, q entity.DeleteQuery) error {
	if q.Entity == "" {
		return jerrors.NewQuery(jerrors.ErrMalformedQuery, component, "Delete", "entity name missing")
	}

	if id, ok := m.idEquality(q.Conditions); ok {
		err := m.deleteKey(ctx, m.key(q.Entity, id))
		m.record("delete", err)
		return err
	}

	matches, err := m.scan(ctx, q.Entity, func(e *entity.DocumentEntity) (bool, error) {
		return q.Matches(e)
	})
	if err != nil {
		m.record("delete", err)
		return err
	}
	for _, match := range matches {
		if err := m.deleteKey(ctx, match.key); err != nil {
			m.record("delete", err)
			return err
		}
	}
	m.record("delete", nil)
	return nil
}

// Select loads every stored entity the query matches, applying skip, limit,
// and field projection.
func (m *Manager) Select(ctx context.Context, q entity.SelectQuery) ([]*entity.DocumentEntity, error) {
	if q.Entity == "" {
		return nil, jerrors.NewQuery(jerrors.ErrMalformedQuery, component, "Select", "entity name missing")
	}

	matches, err := m.scan(ctx, q.Entity, func(e *entity.DocumentEntity) (bool, error) {
		return q.Matches(e)
	})
	if err != nil {
		m.record("select", err)
		return nil, err
	}

	var out []*entity.DocumentEntity
	skipped := 0
	for _, match := range matches {
		if skipped < q.Skip {
			skipped++
			continue
		}
		out = append(out, project(match.entity, q.Fields))
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	m.record("select", nil)
	return out, nil
}

// Close releases the NATS connection when the manager owns one.
func (m *Manager) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close(context.Background())
}

type scanned struct {
	key    string
	entity *entity.DocumentEntity
}

// scan lists the entity's keys and loads each value that still exists.
// Keys deleted between the listing and the read are skipped.
func (m *Manager) scan(
	ctx context.Context,
	entityName string,
	match func(*entity.DocumentEntity) (bool, error),
) ([]scanned, error) {
	prefix := entityName + "."
	keys, err := retry.DoWithResult(ctx, m.retry, func() ([]string, error) {
		return m.kv.Keys(ctx, prefix)
	})
	if err != nil {
		return nil, err
	}

	var out []scanned
	for _, key := range keys {
		kvEntry, err := retry.DoWithResult(ctx, m.retry, func() (*natsclient.KVEntry, error) {
			return m.kv.Get(ctx, key)
		})
		if err != nil {
			if jerrors.IsKeyNotFound(err) {
				continue
			}
			return nil, err
		}
		e, err := entity.FromJSON(entityName, kvEntry.Value)
		if err != nil {
			return nil, jerrors.NewMapping(err, component, "scan", "deserialize %s", key)
		}
		ok, err := match(e)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, scanned{key: key, entity: e})
		}
	}
	return out, nil
}

func (m *Manager) deleteKey(ctx context.Context, key string) error {
	err := retry.Do(ctx, m.retry, func() error {
		return m.kv.Delete(ctx, key)
	})
	if err != nil && jerrors.IsKeyNotFound(err) {
		return nil
	}
	return err
}

// idEquality reports whether the conditions are exactly one equality check
// on the identifier field.
func (m *Manager) idEquality(conditions []entity.Condition) (string, bool) {
	if len(conditions) != 1 {
		return "", false
	}
	c := conditions[0]
	if c.Field != m.idField || c.Operator != entity.Eq {
		return "", false
	}
	id, err := entity.AsString(c.Value)
	if err != nil {
		return "", false
	}
	return id, true
}

func (m *Manager) keyOf(e *entity.DocumentEntity) (string, error) {
	if e == nil || e.Name() == "" {
		return "", jerrors.NewMapping(jerrors.ErrUnknownEntity, component, "key", "entity name missing")
	}
	doc, ok := e.Find(m.idField)
	if !ok {
		return "", jerrors.NewMapping(jerrors.ErrIdentifierMissing, component, "key",
			"entity %q has no %q document", e.Name(), m.idField)
	}
	id, err := entity.AsString(doc.Value)
	if err != nil {
		return "", jerrors.NewMapping(err, component, "key", "identifier of %q", e.Name())
	}
	key := m.key(e.Name(), id)
	if !isValidKey(key) {
		return "", jerrors.NewMapping(jerrors.ErrFieldCoercion, component, "key",
			"identifier %q contains characters not allowed in store keys", id)
	}
	return key, nil
}

func (m *Manager) key(entityName, id string) string {
	return entityName + "." + id
}

func (m *Manager) record(operation string, err error) {
	if m.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.metrics.RecordOperation("store", operation, status)
}

func project(e *entity.DocumentEntity, fields []string) *entity.DocumentEntity {
	if len(fields) == 0 {
		return e
	}
	out := entity.Of(e.Name())
	for _, f := range fields {
		if doc, ok := e.Find(f); ok {
			out.AddDocument(doc)
		}
	}
	return out
}

// isValidKey enforces the JetStream KV key character set.
func isValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '/' || r == '=' || r == '.':
		default:
			return false
		}
	}
	return true
}

var _ entity.Manager = (*Manager)(nil)
