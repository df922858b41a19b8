package cycles

import (
	gograph "gonum.org/v1/gonum/graph"
)

// tarjan computes strongly connected components with Tarjan's algorithm.
// Only components with more than one node are kept; those are the only
// places a (non-self-loop) cycle can live.
type tarjan struct {
	g       gograph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

// stronglyConnected returns all non-trivial SCCs of g.
func stronglyConnected(g gograph.Directed) [][]int64 {
	t := &tarjan{
		g:       g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}

	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if _, visited := t.indices[id]; !visited {
			t.connect(id)
		}
	}
	return t.sccs
}

func (t *tarjan) connect(nodeID int64) {
	t.indices[nodeID] = t.index
	t.lowLink[nodeID] = t.index
	t.index++

	t.stack = append(t.stack, nodeID)
	t.onStack[nodeID] = true

	successors := t.g.From(nodeID)
	for successors.Next() {
		succID := successors.Node().ID()

		if _, visited := t.indices[succID]; !visited {
			t.connect(succID)
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.lowLink[succID])
		} else if t.onStack[succID] {
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.indices[succID])
		}
	}

	if t.lowLink[nodeID] == t.indices[nodeID] {
		var scc []int64
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == nodeID {
				break
			}
		}
		if len(scc) > 1 {
			t.sccs = append(t.sccs, scc)
		}
	}
}
