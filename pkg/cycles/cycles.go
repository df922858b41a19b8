package cycles

import (
	"sort"
	"strings"

	"github.com/awork-io/sting/pkg/graph"
)

// Cycle is one simple dependency cycle: the listed entities form a closed
// loop and no entity appears twice. Nodes is in canonical rotation, starting
// at the smallest entity id on the cycle.
type Cycle struct {
	Nodes []string
}

// Find enumerates simple cycles in the graph, bounded by maxDepth edges per
// cycle and stopping globally once maxCycles cycles have been recorded. The
// second result reports whether the search was cut short by maxCycles.
//
// Tarjan's SCC decomposition runs first: a cycle is entirely contained in
// one strongly connected component, so the bounded depth-first search only
// ever explores non-trivial components instead of the whole graph.
func Find(g *graph.Graph, maxCycles, maxDepth int) ([]Cycle, bool) {
	if maxCycles <= 0 || maxDepth <= 0 {
		return nil, false
	}

	f := &finder{
		g:         g,
		maxCycles: maxCycles,
		maxDepth:  maxDepth,
		seen:      make(map[string]bool),
	}

	// SCC discovery order depends on gonum's map iteration; sort the
	// components so truncation cuts at the same place every run.
	type component struct {
		members map[string]bool
		ids     []string
	}
	var components []component
	for _, scc := range stronglyConnected(g.Directed()) {
		members := make(map[string]bool, len(scc))
		ids := make([]string, 0, len(scc))
		for _, num := range scc {
			id := g.EntityID(num)
			members[id] = true
			ids = append(ids, id)
		}
		sort.Strings(ids)
		components = append(components, component{members: members, ids: ids})
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].ids[0] < components[j].ids[0]
	})

	for _, comp := range components {
		for _, start := range comp.ids {
			if !f.search(start, comp.members) {
				return f.cycles, true
			}
		}
	}

	return f.cycles, false
}

type finder struct {
	g         *graph.Graph
	maxCycles int
	maxDepth  int
	seen      map[string]bool
	cycles    []Cycle
}

// search runs a bounded DFS from start, staying inside the given SCC.
// Returns false once the global cycle budget is exhausted.
func (f *finder) search(start string, members map[string]bool) bool {
	stack := []string{start}
	position := map[string]int{start: 0}

	var walk func() bool
	walk = func() bool {
		current := stack[len(stack)-1]

		for _, next := range f.g.Successors(current) {
			if !members[next] {
				continue
			}

			if pos, onStack := position[next]; onStack {
				// Forward edge back into the active stack closes a loop.
				if !f.record(stack[pos:]) {
					return false
				}
				continue
			}

			if len(stack) >= f.maxDepth {
				continue
			}

			position[next] = len(stack)
			stack = append(stack, next)
			ok := walk()
			stack = stack[:len(stack)-1]
			delete(position, next)
			if !ok {
				return false
			}
		}

		return true
	}

	return walk()
}

// record stores a cycle unless an identical one was already reported from
// another starting node. Cycles are canonicalized by rotating the smallest
// id to the front, so each loop is reported exactly once irrespective of
// where the search entered it.
func (f *finder) record(nodes []string) bool {
	canonical := canonicalize(nodes)
	key := strings.Join(canonical, ",")
	if f.seen[key] {
		return true
	}

	if len(f.cycles) >= f.maxCycles {
		return false
	}

	f.seen[key] = true
	f.cycles = append(f.cycles, Cycle{Nodes: canonical})
	return true
}

func canonicalize(nodes []string) []string {
	smallest := 0
	for i, id := range nodes {
		if id < nodes[smallest] {
			smallest = i
		}
	}

	canonical := make([]string, 0, len(nodes))
	canonical = append(canonical, nodes[smallest:]...)
	canonical = append(canonical, nodes[:smallest]...)
	return canonical
}
