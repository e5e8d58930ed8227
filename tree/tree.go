// Package tree builds hierarchical views over graph traversal results.
//
// A tree is assembled from traversal paths: each path is the ordered list
// of vertices visited from a start vertex to the end of the traversal.
// Paths sharing a vertex ID at the same level are merged into a single
// node, so a diamond in the graph shows up as one shared child rather
// than two copies.
package tree

// Entry is a single vertex on a traversal path.
type Entry struct {
	ID    any
	Value any
}

type node struct {
	id       any
	value    any
	children []*node
	index    map[any]*node
}

func (n *node) child(id any) (*node, bool) {
	c, ok := n.index[id]
	return c, ok
}

func (n *node) addChild(c *node) {
	if n.index == nil {
		n.index = make(map[any]*node)
	}
	n.index[c.id] = c
	n.children = append(n.children, c)
}

// EntityTree is a read-only hierarchy of traversal results. Node order
// follows first encounter in the source paths.
type EntityTree struct {
	roots []*node
	index map[any]*node
}

// Build merges traversal paths into a tree. Vertices with the same ID at
// the same level collapse into one node; an empty path is skipped.
func Build(paths [][]Entry) *EntityTree {
	t := &EntityTree{index: make(map[any]*node)}
	for _, path := range paths {
		if len(path) == 0 {
			continue
		}
		root, ok := t.index[path[0].ID]
		if !ok {
			root = &node{id: path[0].ID, value: path[0].Value}
			t.index[root.id] = root
			t.roots = append(t.roots, root)
		}
		current := root
		for _, entry := range path[1:] {
			next, ok := current.child(entry.ID)
			if !ok {
				next = &node{id: entry.ID, value: entry.Value}
				current.addChild(next)
			}
			current = next
		}
	}
	return t
}

func fromNodes(nodes []*node) *EntityTree {
	t := &EntityTree{index: make(map[any]*node, len(nodes))}
	for _, n := range nodes {
		if _, ok := t.index[n.id]; ok {
			continue
		}
		t.index[n.id] = n
		t.roots = append(t.roots, n)
	}
	return t
}

// Roots returns the values at the top level of the tree.
func (t *EntityTree) Roots() []any {
	values := make([]any, 0, len(t.roots))
	for _, n := range t.roots {
		values = append(values, n.value)
	}
	return values
}

// RootIDs returns identifier and value pairs for the top level of the tree.
func (t *EntityTree) RootIDs() []Entry {
	entries := make([]Entry, 0, len(t.roots))
	for _, n := range t.roots {
		entries = append(entries, Entry{ID: n.id, Value: n.value})
	}
	return entries
}

// Leaf returns the values of every childless node, breadth-first. A value
// reached through several paths appears once per distinct position in the
// tree.
func (t *EntityTree) Leaf() []any {
	var leaves []any
	queue := append([]*node(nil), t.roots...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if len(n.children) == 0 {
			leaves = append(leaves, n.value)
			continue
		}
		queue = append(queue, n.children...)
	}
	return leaves
}

// IsLeaf reports whether no root has children.
func (t *EntityTree) IsLeaf() bool {
	for _, n := range t.roots {
		if len(n.children) > 0 {
			return false
		}
	}
	return true
}

// TreeFromRoot returns the subtree below the root with the given ID. The
// returned tree's roots are that node's children. The second return is
// false when no root matches.
func (t *EntityTree) TreeFromRoot(id any) (*EntityTree, bool) {
	for _, n := range t.roots {
		if n.id == id {
			return fromNodes(n.children), true
		}
	}
	return nil, false
}

// TreesAtDepth returns the subtree views rooted at the given depth. The
// root level is depth 1 and yields the tree itself; depth n yields one
// view per node at depth n-1, holding that node's children.
func (t *EntityTree) TreesAtDepth(depth int) []*EntityTree {
	if depth < 1 {
		return nil
	}
	if depth == 1 {
		return []*EntityTree{t}
	}
	var trees []*EntityTree
	for _, n := range t.nodesAtDepth(depth - 1) {
		trees = append(trees, fromNodes(n.children))
	}
	return trees
}

// LeafsAtDepth returns the values at the given depth, where the root
// level is depth 1. A vertex reached through several paths appears once
// per path.
func (t *EntityTree) LeafsAtDepth(depth int) []any {
	var values []any
	for _, n := range t.nodesAtDepth(depth) {
		values = append(values, n.value)
	}
	return values
}

// LeafTrees returns the subtree views at the deepest level of the tree.
func (t *EntityTree) LeafTrees() []*EntityTree {
	return t.TreesAtDepth(t.MaxDepth())
}

// MaxDepth returns the number of levels in the tree. An empty tree has
// depth 0.
func (t *EntityTree) MaxDepth() int {
	depth := 0
	level := t.roots
	for len(level) > 0 {
		depth++
		var next []*node
		for _, n := range level {
			next = append(next, n.children...)
		}
		level = next
	}
	return depth
}

func (t *EntityTree) nodesAtDepth(depth int) []*node {
	level := t.roots
	for d := 1; d < depth; d++ {
		var next []*node
		for _, n := range level {
			next = append(next, n.children...)
		}
		level = next
		if len(level) == 0 {
			return nil
		}
	}
	return level
}
