// Package depgraph validates a dependency graph over templates/instances,
// detects cycles, and produces a topological order. Addresses nodes by
// dense integer index rather than a hash map of objects with back-pointers,
// for cache-friendliness and straightforward ownership.
package depgraph

// Entry is the minimal shape BuildGraph needs from a template or instance.
type Entry struct {
	ID        string
	DependsOn []string
}

// Node is a transient, index-addressed graph node: exists only during a
// resolution, never persisted.
type Node struct {
	ID           string
	Dependencies []int // indices into Graph.Nodes
	Dependents   []int // indices into Graph.Nodes
}

// Graph is the dependency graph built over one firing/active set.
type Graph struct {
	Nodes      []Node
	indexByID  map[string]int
	// MissingDeps maps a node id to dependency ids referenced but not
	// present in the input set — reported as warnings, never errors.
	MissingDeps map[string][]string
}

// IndexOf returns the dense index of id, or -1 if id is not a node.
func (g *Graph) IndexOf(id string) int {
	if g.indexByID == nil {
		return -1
	}
	idx, ok := g.indexByID[id]
	if !ok {
		return -1
	}
	return idx
}

// ID returns the id of the node at idx.
func (g *Graph) ID(idx int) string { return g.Nodes[idx].ID }

// BuildGraph constructs one node per entry, filtering DependsOn to ids
// present in the input set; the Dependents relation is the inverse,
// computed in the same pass.
func BuildGraph(entries []Entry) *Graph {
	g := &Graph{
		indexByID:   make(map[string]int, len(entries)),
		MissingDeps: make(map[string][]string),
	}
	g.Nodes = make([]Node, len(entries))
	for i, e := range entries {
		g.Nodes[i] = Node{ID: e.ID}
		g.indexByID[e.ID] = i
	}
	for i, e := range entries {
		for _, depID := range e.DependsOn {
			if depID == e.ID {
				// Self-dependency is forbidden by validation; the graph
				// itself just never wires a self-edge.
				continue
			}
			depIdx, ok := g.indexByID[depID]
			if !ok {
				g.MissingDeps[e.ID] = append(g.MissingDeps[e.ID], depID)
				continue
			}
			g.Nodes[i].Dependencies = append(g.Nodes[i].Dependencies, depIdx)
			g.Nodes[depIdx].Dependents = append(g.Nodes[depIdx].Dependents, i)
		}
	}
	return g
}
