package rank

import (
	"sort"

	"github.com/awork-io/sting/pkg/graph"
)

// Ranked pairs a node with its dependency count (fan-out).
type Ranked struct {
	Count int
	Node  *graph.Node
}

// ByDeps ranks every node by its number of outgoing dependency edges,
// ascending, so the least-depending entities come first. Ties are broken
// by ascending name. Kind filtering happens when the graph is built, so
// the counts here already reflect the filtered view.
func ByDeps(g *graph.Graph) []Ranked {
	nodes := g.Nodes()
	ranked := make([]Ranked, 0, len(nodes))
	for _, node := range nodes {
		ranked = append(ranked, Ranked{Count: g.OutDegree(node.ID), Node: node})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count < ranked[j].Count
		}
		return ranked[i].Node.Name < ranked[j].Node.Name
	})

	return ranked
}
