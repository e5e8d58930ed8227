// Package template is the high-level entry point of the mapping framework.
// A Template wraps a store manager with entity conversion, text queries,
// logging, and metrics, so callers only ever touch domain objects.
package template

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ediel-queiroz/jnosql/convert"
	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
	"github.com/ediel-queiroz/jnosql/metadata"
	"github.com/ediel-queiroz/jnosql/metric"
	"github.com/ediel-queiroz/jnosql/pkg/cache"
	"github.com/ediel-queiroz/jnosql/query"
)

const component = "template"

// Template executes CRUD operations and text queries against a manager,
// converting between domain objects and document entities at the boundary.
type Template struct {
	manager   entity.Manager
	registry  *metadata.Registry
	converter *convert.Converter
	parser    query.Parser
	observer  query.Observer
	cache     cache.Cache[any]
	logger    *slog.Logger
	metrics   *metric.Metrics
}

// Option configures a Template.
type Option func(*Template)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Template) { t.logger = logger }
}

// WithMetrics wires operation metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(t *Template) { t.metrics = m }
}

// WithObserver installs a query observer applied to entity, field, and
// value names during text query execution.
func WithObserver(o query.Observer) Option {
	return func(t *Template) { t.observer = o }
}

// WithCache serves repeated FindByID lookups from the given cache. Writes
// and deletes through the template invalidate the touched identifier; text
// queries bypass the cache, so pair this option with a TTL when they can
// mutate cached entities.
func WithCache(c cache.Cache[any]) Option {
	return func(t *Template) { t.cache = c }
}

// New creates a template over the given manager and metadata registry.
func New(manager entity.Manager, registry *metadata.Registry, opts ...Option) *Template {
	t := &Template{
		manager:   manager,
		registry:  registry,
		converter: convert.New(registry),
		parser:    query.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", component)
	return t
}

// Insert converts the object and stores it. A generated string identifier
// that is still empty is filled with a new UUID before conversion. The
// returned object reflects what the store persisted.
func (t *Template) Insert(ctx context.Context, o any) (any, error) {
	meta, err := t.metaFor(o, "insert")
	if err != nil {
		return nil, err
	}
	if err := t.fillGeneratedID(meta, o); err != nil {
		return nil, err
	}
	return t.write(ctx, meta, o, "insert", t.manager.Insert)
}

// Update converts the object and overwrites the stored version.
func (t *Template) Update(ctx context.Context, o any) (any, error) {
	meta, err := t.metaFor(o, "update")
	if err != nil {
		return nil, err
	}
	return t.write(ctx, meta, o, "update", t.manager.Update)
}

// Delete removes the stored entity matching the object's identifier.
func (t *Template) Delete(ctx context.Context, o any) error {
	meta, err := t.metaFor(o, "delete")
	if err != nil {
		return err
	}
	idField, ok := meta.ID()
	if !ok {
		return jerrors.NewMapping(jerrors.ErrIdentifierMissing, component, "delete",
			"entity %q has no identifier field", meta.Name())
	}
	return t.DeleteByID(ctx, meta.Name(), idField.Get(o))
}

// DeleteWhere removes every stored entity matching the conditions. With
// no conditions the whole entity name is cleared. A read cache cannot be
// invalidated by condition, so the cache is cleared wholesale.
func (t *Template) DeleteWhere(ctx context.Context, entityName string, conditions ...entity.Condition) error {
	if t.cache != nil {
		t.cache.Clear()
	}
	done := t.instrument(entityName, "delete")
	err := t.manager.Delete(ctx, entity.DeleteQuery{
		Entity:     entityName,
		Conditions: conditions,
	})
	done(err)
	return err
}

// DeleteByID removes the entity with the given identifier.
func (t *Template) DeleteByID(ctx context.Context, entityName string, id any) error {
	t.invalidate(entityName, id)
	done := t.instrument(entityName, "delete")
	err := t.manager.Delete(ctx, entity.DeleteQuery{
		Entity:     entityName,
		Conditions: []entity.Condition{t.idCondition(entityName, id)},
	})
	done(err)
	return err
}

// FindByID loads the entity with the given identifier and converts it back
// to its domain type. A missing entity yields ErrEntityNotFound.
func (t *Template) FindByID(ctx context.Context, entityName string, id any) (any, error) {
	key, cacheable := t.cacheKey(entityName, id)
	if cacheable {
		if o, ok := t.cache.Get(key); ok {
			return o, nil
		}
	}

	done := t.instrument(entityName, "find")
	results, err := t.manager.Select(ctx, entity.SelectQuery{
		Entity:     entityName,
		Conditions: []entity.Condition{t.idCondition(entityName, id)},
		Limit:      1,
	})
	if err != nil {
		done(err)
		return nil, err
	}
	if len(results) == 0 {
		err := jerrors.Wrap(jerrors.ErrEntityNotFound, component, "find", entityName)
		done(err)
		return nil, err
	}
	o, err := t.converter.ToEntity(results[0])
	t.recordConversion(entityName, "to_entity", err)
	done(err)
	if err == nil && cacheable {
		t.cache.Set(key, o)
	}
	return o, err
}

// Select runs a structured query and converts every result.
func (t *Template) Select(ctx context.Context, q entity.SelectQuery) ([]any, error) {
	done := t.instrument(q.Entity, "select")
	results, err := t.manager.Select(ctx, q)
	if err != nil {
		done(err)
		return nil, err
	}
	converted, err := t.convertAll(results)
	done(err)
	return converted, err
}

// Query parses and executes a text query, converting any returned entities
// to their domain types. Queries with placeholders must go through Prepare.
func (t *Template) Query(ctx context.Context, text string) ([]any, error) {
	verb := query.Verb(text)
	results, err := t.parser.Query(ctx, text, t.manager, t.observer)
	if err != nil {
		t.recordQuery(verb, err)
		t.logger.Warn("query failed", "error", err)
		return nil, err
	}
	converted, err := t.convertAll(results)
	t.recordQuery(verb, err)
	return converted, err
}

// Prepare parses a text query with placeholders for later execution.
func (t *Template) Prepare(text string) (*PreparedQuery, error) {
	stmt, err := t.parser.Prepare(text, t.manager, t.observer)
	if err != nil {
		return nil, err
	}
	return &PreparedQuery{stmt: stmt, template: t}, nil
}

// PreparedQuery is a parsed text query whose placeholders are bound before
// execution. Results come back as domain objects.
type PreparedQuery struct {
	stmt     *query.PreparedStatement
	template *Template
}

// Bind assigns a value to a named placeholder.
func (p *PreparedQuery) Bind(name string, value any) error {
	return p.stmt.Bind(name, value)
}

// Result executes the statement once every placeholder is bound.
func (p *PreparedQuery) Result(ctx context.Context) ([]any, error) {
	results, err := p.stmt.Result(ctx)
	if err != nil {
		p.template.recordQuery(p.stmt.Verb(), err)
		return nil, err
	}
	converted, err := p.template.convertAll(results)
	p.template.recordQuery(p.stmt.Verb(), err)
	return converted, err
}

func (t *Template) write(
	ctx context.Context,
	meta *metadata.EntityMetadata,
	o any,
	operation string,
	op func(context.Context, *entity.DocumentEntity) (*entity.DocumentEntity, error),
) (any, error) {
	if idField, ok := meta.ID(); ok {
		t.invalidate(meta.Name(), idField.Get(o))
	}

	done := t.instrument(meta.Name(), operation)
	e, err := t.converter.ToDocument(o)
	t.recordConversion(meta.Name(), "to_document", err)
	if err != nil {
		done(err)
		return nil, err
	}
	stored, err := op(ctx, e)
	if err != nil {
		done(err)
		return nil, err
	}
	result, err := t.converter.ToEntity(stored)
	t.recordConversion(meta.Name(), "to_entity", err)
	done(err)
	return result, err
}

func (t *Template) metaFor(o any, operation string) (*metadata.EntityMetadata, error) {
	if o == nil {
		return nil, jerrors.NewMapping(jerrors.ErrNilDomainObject, component, operation, "nil domain object")
	}
	meta, ok := t.registry.FindByObject(o)
	if !ok {
		return nil, jerrors.NewMapping(jerrors.ErrUnknownEntity, component, operation,
			"type %T is not registered", o)
	}
	return meta, nil
}

// fillGeneratedID assigns a UUID to a generated string identifier that has
// not been set. Non-string generated identifiers are left to the store.
func (t *Template) fillGeneratedID(meta *metadata.EntityMetadata, o any) error {
	idField, ok := meta.ID()
	if !ok || !idField.Generated || idField.Kind != metadata.String {
		return nil
	}
	if current, _ := idField.Get(o).(string); current != "" {
		return nil
	}
	if err := idField.Set(o, uuid.NewString()); err != nil {
		return jerrors.NewMapping(err, component, "insert",
			"assigning generated id to %q", meta.Name())
	}
	return nil
}

// cacheKey builds the cache key for an identifier. Identifiers that do
// not render as strings are not cached.
func (t *Template) cacheKey(entityName string, id any) (string, bool) {
	if t.cache == nil {
		return "", false
	}
	s, err := entity.AsString(id)
	if err != nil {
		return "", false
	}
	return entityName + "." + s, true
}

func (t *Template) invalidate(entityName string, id any) {
	if key, ok := t.cacheKey(entityName, id); ok {
		t.cache.Delete(key)
	}
}

func (t *Template) idCondition(entityName string, id any) entity.Condition {
	field := "_id"
	if meta, ok := t.registry.FindByName(entityName); ok {
		if idField, found := meta.ID(); found {
			field = idField.Name
		}
	}
	return entity.Condition{Field: field, Operator: entity.Eq, Value: id}
}

func (t *Template) convertAll(results []*entity.DocumentEntity) ([]any, error) {
	converted := make([]any, 0, len(results))
	for _, e := range results {
		o, err := t.converter.ToEntity(e)
		t.recordConversion(e.Name(), "to_entity", err)
		if err != nil {
			return nil, err
		}
		converted = append(converted, o)
	}
	return converted, nil
}

// instrument returns a completion callback recording duration and status
// for one operation. It is a no-op without metrics.
func (t *Template) instrument(entityName, operation string) func(error) {
	if t.metrics == nil {
		return func(error) {}
	}
	start := time.Now()
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
			t.metrics.RecordError(component, jerrors.Classify(err).String())
		}
		t.metrics.RecordOperation(entityName, operation, status)
		t.metrics.RecordOperationDuration(entityName, operation, time.Since(start))
	}
}

// recordQuery reports one text query execution under its verb. It is a
// no-op without metrics.
func (t *Template) recordQuery(verb string, err error) {
	if t.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		t.metrics.RecordError(component, jerrors.Classify(err).String())
	}
	t.metrics.RecordQuery(verb, status)
}

// recordConversion reports one converter crossing. It is a no-op without
// metrics.
func (t *Template) recordConversion(entityName, direction string, err error) {
	if t.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	t.metrics.RecordConversion(entityName, direction, status)
}
