// Package graph provides an in-memory property graph with typed vertices
// and labeled edges, plus a traversal API that materializes results as
// entity trees.
package graph

import (
	"sync"

	"github.com/ediel-queiroz/jnosql/entity"
)

type vertex struct {
	id     int64
	label  string
	entity *entity.DocumentEntity
}

type edge struct {
	label string
	to    int64
}

// Graph is a labeled directed multigraph. Vertices carry a document entity
// as their property set. All methods are safe for concurrent use.
type Graph struct {
	mu       sync.RWMutex
	nextID   int64
	vertices map[int64]*vertex
	order    []int64
	outgoing map[int64][]edge
	incoming map[int64][]edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		vertices: make(map[int64]*vertex),
		outgoing: make(map[int64][]edge),
		incoming: make(map[int64][]edge),
	}
}

func (g *Graph) addVertex(label string, e *entity.DocumentEntity) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := g.nextID
	g.vertices[id] = &vertex{id: id, label: label, entity: e}
	g.order = append(g.order, id)
	return id
}

func (g *Graph) addEdge(from int64, label string, to int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.vertices[from]; !ok {
		return false
	}
	if _, ok := g.vertices[to]; !ok {
		return false
	}
	g.outgoing[from] = append(g.outgoing[from], edge{label: label, to: to})
	g.incoming[to] = append(g.incoming[to], edge{label: label, to: from})
	return true
}

func (g *Graph) vertexByID(id int64) (*vertex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[id]
	return v, ok
}

// allVertices returns vertices in insertion order.
func (g *Graph) allVertices() []*vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	vs := make([]*vertex, 0, len(g.order))
	for _, id := range g.order {
		vs = append(vs, g.vertices[id])
	}
	return vs
}

// neighbors returns the vertices one hop away along edges with the given
// label. The outgoing flag selects edge direction.
func (g *Graph) neighbors(id int64, label string, out bool) []*vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	edges := g.incoming[id]
	if out {
		edges = g.outgoing[id]
	}
	var vs []*vertex
	for _, e := range edges {
		if e.label != label {
			continue
		}
		if v, ok := g.vertices[e.to]; ok {
			vs = append(vs, v)
		}
	}
	return vs
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}
