package graph

import (
	"log/slog"

	"github.com/ediel-queiroz/jnosql/convert"
	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
	"github.com/ediel-queiroz/jnosql/metadata"
)

const component = "graph"

// Template maps domain objects onto graph vertices. Insert assigns the
// vertex ID to the object's identifier field, so the same object can later
// anchor edges and traversals.
type Template struct {
	graph     *Graph
	registry  *metadata.Registry
	converter *convert.Converter
	logger    *slog.Logger
}

// NewTemplate returns a template backed by a fresh graph. A nil logger
// falls back to slog.Default.
func NewTemplate(registry *metadata.Registry, logger *slog.Logger) *Template {
	if logger == nil {
		logger = slog.Default()
	}
	return &Template{
		graph:     New(),
		registry:  registry,
		converter: convert.New(registry),
		logger:    logger.With("component", component),
	}
}

// Insert stores the object as a vertex labeled with its entity name. The
// new vertex ID is written into the object's identifier field before the
// object is converted, so it round-trips on traversal.
func (t *Template) Insert(o any) error {
	if o == nil {
		return jerrors.NewMapping(jerrors.ErrNilDomainObject, component, "insert", "cannot insert nil")
	}
	meta, ok := t.registry.FindByObject(o)
	if !ok {
		return jerrors.NewMapping(jerrors.ErrUnknownEntity, component, "insert", "type %T is not registered", o)
	}
	idField, ok := meta.ID()
	if !ok {
		return jerrors.NewMapping(jerrors.ErrIdentifierMissing, component, "insert",
			"entity %q has no identifier field", meta.Name())
	}

	// Reserve the vertex first so the ID exists when the object is lowered.
	id := t.graph.addVertex(meta.Name(), nil)
	if err := idField.Set(o, id); err != nil {
		return jerrors.NewMapping(err, component, "insert", "assigning vertex id to %q", meta.Name())
	}
	e, err := t.converter.ToDocument(o)
	if err != nil {
		return err
	}

	t.graph.mu.Lock()
	t.graph.vertices[id].entity = e
	t.graph.mu.Unlock()

	t.logger.Debug("vertex inserted", "entity", meta.Name(), "vertex_id", id)
	return nil
}

// Edge links two previously inserted objects with a labeled directed edge
// from a to b. Both objects must carry the vertex ID assigned by Insert.
func (t *Template) Edge(a any, label string, b any) error {
	from, err := t.vertexID(a)
	if err != nil {
		return err
	}
	to, err := t.vertexID(b)
	if err != nil {
		return err
	}
	if !t.graph.addEdge(from, label, to) {
		return jerrors.NewMapping(jerrors.ErrEntityNotFound, component, "edge",
			"vertex %d or %d does not exist", from, to)
	}
	t.logger.Debug("edge created", "label", label, "from", from, "to", to)
	return nil
}

// TraversalVertex starts a traversal over every vertex in the graph.
func (t *Template) TraversalVertex() *Traversal {
	return newTraversal(t)
}

func (t *Template) vertexID(o any) (int64, error) {
	if o == nil {
		return 0, jerrors.NewMapping(jerrors.ErrNilDomainObject, component, "edge", "nil edge endpoint")
	}
	meta, ok := t.registry.FindByObject(o)
	if !ok {
		return 0, jerrors.NewMapping(jerrors.ErrUnknownEntity, component, "edge", "type %T is not registered", o)
	}
	idField, ok := meta.ID()
	if !ok {
		return 0, jerrors.NewMapping(jerrors.ErrIdentifierMissing, component, "edge",
			"entity %q has no identifier field", meta.Name())
	}
	id, err := entity.AsInt64(idField.Get(o))
	if err != nil {
		return 0, jerrors.NewMapping(err, component, "edge", "identifier of %q is not numeric", meta.Name())
	}
	if id == 0 {
		return 0, jerrors.NewMapping(jerrors.ErrEntityNotFound, component, "edge",
			"%q was never inserted", meta.Name())
	}
	return id, nil
}
