package graph

import (
	"encoding/json"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/awork-io/sting/pkg/table"
)

// Node is a vertex in the dependency graph. JSON field names are fixed to
// the D3 force-layout convention.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"type"`
	File string `json:"file"`
}

// Edge is a directed dependency: Source imports Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is a derived, read-only view of an entity table. It is rebuilt per
// query and never mutated after Build returns.
//
// The gonum graph carries the structure for SCC analysis; the succ/pred
// adjacency lists keep edge-insertion order so that traversals are
// deterministic regardless of map iteration.
type Graph struct {
	dg    *simple.DirectedGraph
	nodes map[string]*Node
	ids   map[string]int64
	byNum map[int64]string
	succ  map[string][]string
	pred  map[string][]string
	edges []Edge
	order []string // node ids, ascending
}

// Build derives a graph from an entity table: one node per entity, one edge
// per import reference that resolves against a (file, name) index of the
// table. Unresolved references produce no edge. Nodes and edges are added
// in ascending entity-id order, which fixes traversal order for all
// queries.
func Build(t table.Table) *Graph {
	g := &Graph{
		dg:    simple.NewDirectedGraph(),
		nodes: make(map[string]*Node, len(t)),
		ids:   make(map[string]int64, len(t)),
		byNum: make(map[int64]string, len(t)),
		succ:  make(map[string][]string),
		pred:  make(map[string][]string),
	}

	type fileName struct{ file, name string }
	index := make(map[fileName]string, len(t))

	order := t.SortedIDs()
	g.order = order

	var next int64
	for _, id := range order {
		e := t[id]
		g.nodes[id] = &Node{ID: id, Name: e.Name, Kind: string(e.Kind), File: e.FilePath}
		g.ids[id] = next
		g.byNum[next] = id
		g.dg.AddNode(simple.Node(next))
		next++
		index[fileName{e.FilePath, e.Name}] = id
	}

	for _, id := range order {
		for _, ref := range t[id].Imports {
			target, ok := index[fileName{ref.Path, ref.Name}]
			if !ok {
				continue
			}
			g.addEdge(id, target)
		}
	}

	return g
}

func (g *Graph) addEdge(source, target string) {
	if source == target {
		return
	}
	from, to := g.ids[source], g.ids[target]
	if g.dg.HasEdgeFromTo(from, to) {
		return
	}
	g.dg.SetEdge(g.dg.NewEdge(simple.Node(from), simple.Node(to)))
	g.succ[source] = append(g.succ[source], target)
	g.pred[target] = append(g.pred[target], source)
	g.edges = append(g.edges, Edge{Source: source, Target: target})
}

// Node returns the node for an entity id, or nil.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in ascending id order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Directed exposes the underlying gonum graph for SCC analysis.
func (g *Graph) Directed() *simple.DirectedGraph {
	return g.dg
}

// EntityID maps a gonum node id back to the entity id.
func (g *Graph) EntityID(num int64) string {
	return g.byNum[num]
}

// Consumers returns the ids of entities that depend on any of the targets,
// excluding the targets themselves. With transitive set, it walks the
// reverse edge relation breadth-first; the visited set is seeded with the
// targets, so traversal terminates on cyclic graphs.
func (g *Graph) Consumers(targets map[string]bool, transitive bool) map[string]bool {
	consumers := make(map[string]bool)

	if !transitive {
		for target := range targets {
			for _, source := range g.pred[target] {
				if !targets[source] {
					consumers[source] = true
				}
			}
		}
		return consumers
	}

	visited := make(map[string]bool, len(targets))
	queue := make([]string, 0, len(targets))
	for target := range targets {
		visited[target] = true
	}
	// Seed the queue in deterministic order.
	for _, id := range g.order {
		if targets[id] {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, source := range g.pred[current] {
			if visited[source] {
				continue
			}
			visited[source] = true
			consumers[source] = true
			queue = append(queue, source)
		}
	}

	return consumers
}

// Successors returns the direct dependencies of a node in edge-insertion
// order. The returned slice is owned by the graph.
func (g *Graph) Successors(id string) []string {
	return g.succ[id]
}

// OutDegree returns the number of outgoing edges of a node.
func (g *Graph) OutDegree(id string) int {
	return len(g.succ[id])
}

// d3Graph is the export shape consumed by the D3 force-layout UI. The
// "links" and "type" names are part of that contract.
type d3Graph struct {
	Nodes []*Node `json:"nodes"`
	Links []Edge  `json:"links"`
}

// MarshalJSON renders the graph in D3 force-layout format.
func (g *Graph) MarshalJSON() ([]byte, error) {
	export := d3Graph{Nodes: g.Nodes(), Links: g.edges}
	if export.Nodes == nil {
		export.Nodes = []*Node{}
	}
	if export.Links == nil {
		export.Links = []Edge{}
	}
	return json.Marshal(export)
}

// JSON renders the graph as indented D3-compatible JSON.
func (g *Graph) JSON() (string, error) {
	export := d3Graph{Nodes: g.Nodes(), Links: g.edges}
	if export.Nodes == nil {
		export.Nodes = []*Node{}
	}
	if export.Links == nil {
		export.Links = []Edge{}
	}
	out, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// NodesByName returns ids of all nodes with the given name, ascending.
func (g *Graph) NodesByName(name string) []string {
	var ids []string
	for _, id := range g.order {
		if g.nodes[id].Name == name {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
