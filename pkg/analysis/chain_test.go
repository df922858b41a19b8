package analysis

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awork-io/sting/pkg/entity"
	"github.com/awork-io/sting/pkg/graph"
	"github.com/awork-io/sting/pkg/table"
)

// chainFixture wires Start -> Mid -> End plus a second Start declaration in
// another file with a direct edge to End.
func chainFixture() *graph.Graph {
	root := "/repo"
	file := func(rel string) string { return filepath.Join(root, rel) }

	endRef := entity.NewImportRef("End", file("libs/end.ts"))
	midRef := entity.NewImportRef("Mid", file("libs/mid.ts"))

	tbl := table.New()
	for _, e := range []*entity.Entity{
		entity.New("Start", entity.KindClass, file("libs/start.ts"), []entity.ImportRef{midRef}),
		entity.New("Start", entity.KindClass, file("libs/alt/start.ts"), []entity.ImportRef{endRef}),
		entity.New("Mid", entity.KindClass, file("libs/mid.ts"), []entity.ImportRef{endRef}),
		entity.New("End", entity.KindClass, file("libs/end.ts"), nil),
	} {
		tbl[e.ID] = e
	}
	return graph.Build(tbl)
}

func TestChainsAcrossAllNamePairs(t *testing.T) {
	g := chainFixture()

	result, err := Chains(g, "Start", "End", false, 100, 10)
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	// One chain per Start declaration.
	assert.Len(t, result.Paths, 2)
}

func TestChainsShortest(t *testing.T) {
	g := chainFixture()

	result, err := Chains(g, "Start", "End", true, 100, 10)
	require.NoError(t, err)
	require.Len(t, result.Paths, 2)
	for _, path := range result.Paths {
		assert.LessOrEqual(t, len(path), 3)
	}
}

func TestChainsBudgetSharedAcrossPairs(t *testing.T) {
	g := chainFixture()

	result, err := Chains(g, "Start", "End", false, 1, 10)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Len(t, result.Paths, 1)
}

func TestChainsOneUnknownNameIsEmpty(t *testing.T) {
	g := chainFixture()

	result, err := Chains(g, "Start", "Nothing", false, 100, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Paths)
}

func TestChainsBothUnknownNamesFail(t *testing.T) {
	g := chainFixture()

	_, err := Chains(g, "Ghost", "Phantom", false, 100, 10)
	assert.Error(t, err)
}
