package cycles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awork-io/sting/pkg/entity"
	"github.com/awork-io/sting/pkg/graph"
	"github.com/awork-io/sting/pkg/table"
)

func buildGraph(deps map[string][]string) (*graph.Graph, map[string]string) {
	file := func(name string) string {
		return "/repo/" + strings.ToLower(name) + ".ts"
	}

	tbl := table.New()
	ids := make(map[string]string)
	for name, targets := range deps {
		var refs []entity.ImportRef
		for _, target := range targets {
			refs = append(refs, entity.NewImportRef(target, file(target)))
		}
		e := entity.New(name, entity.KindClass, file(name), refs)
		tbl[e.ID] = e
		ids[name] = e.ID
	}
	return graph.Build(tbl), ids
}

func TestFindReportsTriangleOnce(t *testing.T) {
	g, ids := buildGraph(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
	})

	found, truncated := Find(g, 100, 10)
	assert.False(t, truncated)
	require.Len(t, found, 1)
	require.Len(t, found[0].Nodes, 3)

	// Canonical rotation starts at the smallest id.
	smallest := found[0].Nodes[0]
	for _, id := range found[0].Nodes[1:] {
		assert.Less(t, smallest, id)
	}
	assert.ElementsMatch(t, []string{ids["A"], ids["B"], ids["C"]}, found[0].Nodes)
}

func TestFindIgnoresAcyclicGraph(t *testing.T) {
	g, _ := buildGraph(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": nil,
	})

	found, truncated := Find(g, 100, 10)
	assert.False(t, truncated)
	assert.Empty(t, found)
}

func TestFindMultipleCycles(t *testing.T) {
	// Two disjoint 2-cycles.
	g, _ := buildGraph(map[string][]string{
		"A": {"B"},
		"B": {"A"},
		"C": {"D"},
		"D": {"C"},
	})

	found, truncated := Find(g, 100, 10)
	assert.False(t, truncated)
	assert.Len(t, found, 2)
}

func TestFindStopsAtMaxCycles(t *testing.T) {
	// One SCC with several overlapping loops.
	g, _ := buildGraph(map[string][]string{
		"A": {"B", "C"},
		"B": {"A", "C"},
		"C": {"A", "B"},
	})

	found, truncated := Find(g, 2, 10)
	assert.True(t, truncated)
	assert.Len(t, found, 2)
}

func TestFindRespectsMaxDepth(t *testing.T) {
	// The only loop has 3 edges; a 2-edge bound must not find it.
	g, _ := buildGraph(map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
	})

	found, truncated := Find(g, 100, 2)
	assert.False(t, truncated)
	assert.Empty(t, found)

	found, _ = Find(g, 100, 3)
	assert.Len(t, found, 1)
}

func TestFindZeroBounds(t *testing.T) {
	g, _ := buildGraph(map[string][]string{
		"A": {"B"},
		"B": {"A"},
	})

	found, truncated := Find(g, 0, 10)
	assert.False(t, truncated)
	assert.Empty(t, found)
}
