package graph

import (
	"github.com/ediel-queiroz/jnosql/entity"
	jerrors "github.com/ediel-queiroz/jnosql/errors"
	"github.com/ediel-queiroz/jnosql/tree"
)

// Traversal is a lazy walk over the graph. Each step narrows or extends
// the set of paths; a path whose head has no matching neighbor is dropped.
// Traversals are single-use and not safe for concurrent mutation.
type Traversal struct {
	template *Template
	paths    [][]*vertex
	err      error
}

func newTraversal(t *Template) *Traversal {
	vs := t.graph.allVertices()
	paths := make([][]*vertex, 0, len(vs))
	for _, v := range vs {
		paths = append(paths, []*vertex{v})
	}
	return &Traversal{template: t, paths: paths}
}

func (tr *Traversal) head(p []*vertex) *vertex {
	return p[len(p)-1]
}

// HasLabel keeps paths whose current vertex carries the given entity label.
func (tr *Traversal) HasLabel(label string) *Traversal {
	if tr.err != nil {
		return tr
	}
	kept := tr.paths[:0]
	for _, p := range tr.paths {
		if tr.head(p).label == label {
			kept = append(kept, p)
		}
	}
	tr.paths = kept
	return tr
}

// Has keeps paths whose current vertex has the field equal to the value.
func (tr *Traversal) Has(field string, value any) *Traversal {
	if tr.err != nil {
		return tr
	}
	cond := entity.Condition{Field: field, Operator: entity.Eq, Value: value}
	kept := tr.paths[:0]
	for _, p := range tr.paths {
		ok, err := cond.Matches(tr.head(p).entity)
		if err != nil {
			tr.err = jerrors.NewQuery(err, component, "traversal", "matching field %q", field)
			return tr
		}
		if ok {
			kept = append(kept, p)
		}
	}
	tr.paths = kept
	return tr
}

// Out extends each path along outgoing edges with the given label. A path
// forks once per matching neighbor and dies when there is none.
func (tr *Traversal) Out(label string) *Traversal {
	return tr.step(label, true)
}

// In extends each path along incoming edges with the given label.
func (tr *Traversal) In(label string) *Traversal {
	return tr.step(label, false)
}

func (tr *Traversal) step(label string, out bool) *Traversal {
	if tr.err != nil {
		return tr
	}
	var next [][]*vertex
	for _, p := range tr.paths {
		for _, v := range tr.template.graph.neighbors(tr.head(p).id, label, out) {
			extended := make([]*vertex, len(p)+1)
			copy(extended, p)
			extended[len(p)] = v
			next = append(next, extended)
		}
	}
	tr.paths = next
	return tr
}

// Result converts the current vertex of every surviving path back to its
// domain object. Duplicates are preserved, one per path.
func (tr *Traversal) Result() ([]any, error) {
	if tr.err != nil {
		return nil, tr.err
	}
	results := make([]any, 0, len(tr.paths))
	for _, p := range tr.paths {
		o, err := tr.template.converter.ToEntity(tr.head(p).entity)
		if err != nil {
			return nil, err
		}
		results = append(results, o)
	}
	return results, nil
}

// Tree materializes the surviving paths as an entity tree. Vertices shared
// between paths at the same level merge into a single node.
func (tr *Traversal) Tree() (*tree.EntityTree, error) {
	if tr.err != nil {
		return nil, tr.err
	}
	paths := make([][]tree.Entry, 0, len(tr.paths))
	for _, p := range tr.paths {
		entries := make([]tree.Entry, 0, len(p))
		for _, v := range p {
			o, err := tr.template.converter.ToEntity(v.entity)
			if err != nil {
				return nil, err
			}
			entries = append(entries, tree.Entry{ID: v.id, Value: o})
		}
		paths = append(paths, entries)
	}
	return tree.Build(paths), nil
}
