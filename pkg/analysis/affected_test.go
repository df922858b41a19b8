package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awork-io/sting/pkg/entity"
	"github.com/awork-io/sting/pkg/git"
	"github.com/awork-io/sting/pkg/graph"
	"github.com/awork-io/sting/pkg/table"
)

// fixture builds a small monorepo table rooted at /repo:
//
//	libs/util.ts           declares helper
//	apps/web/page.ts       declares WebPage, imports helper
//	apps/mobile/screen.ts  declares MobileScreen, imports helper
func fixture() (*Result, *graph.Graph) {
	root := "/repo"
	utilFile := filepath.Join(root, "libs/util.ts")
	webFile := filepath.Join(root, "apps/web/page.ts")
	mobileFile := filepath.Join(root, "apps/mobile/screen.ts")

	helperRef := entity.NewImportRef("helper", utilFile)

	tbl := table.New()
	for _, e := range []*entity.Entity{
		entity.New("helper", entity.KindFunction, utilFile, nil),
		entity.New("WebPage", entity.KindComponent, webFile, []entity.ImportRef{helperRef}),
		entity.New("MobileScreen", entity.KindComponent, mobileFile, []entity.ImportRef{helperRef}),
	} {
		tbl[e.ID] = e
	}

	result := &Result{Root: root, Table: tbl}
	return result, graph.Build(tbl)
}

func names(entities []AffectedEntity) []string {
	out := make([]string, 0, len(entities))
	for _, ae := range entities {
		out = append(out, ae.Entity.Name)
	}
	return out
}

func TestAffectedDirectAndConsumers(t *testing.T) {
	result, g := fixture()
	changed := []git.ChangedFile{
		{Path: filepath.Join(result.Root, "libs/util.ts"), Kind: git.ChangeModified},
	}

	report := Affected(result, g, changed, false, ProjectAll)

	assert.Equal(t, []string{"helper"}, names(report.Direct))
	assert.Equal(t, "Modified file", report.Direct[0].Reason)
	assert.ElementsMatch(t, []string{"WebPage", "MobileScreen"}, names(report.Consumers))
	for _, ae := range report.Consumers {
		assert.Equal(t, "Imports: helper", ae.Reason)
	}
}

func TestAffectedProjectFilterExcludesOtherAreas(t *testing.T) {
	result, g := fixture()
	changed := []git.ChangedFile{
		{Path: filepath.Join(result.Root, "libs/util.ts"), Kind: git.ChangeModified},
	}

	report := Affected(result, g, changed, true, ProjectWeb)

	// helper lives under libs and the mobile consumer under apps/mobile;
	// only the web consumer survives the filter.
	assert.Empty(t, report.Direct)
	assert.Equal(t, []string{"WebPage"}, names(report.Consumers))
}

func TestAffectedTransitiveClosure(t *testing.T) {
	root := "/repo"
	aFile := filepath.Join(root, "libs/a.ts")
	bFile := filepath.Join(root, "libs/b.ts")
	cFile := filepath.Join(root, "libs/c.ts")

	tbl := table.New()
	for _, e := range []*entity.Entity{
		entity.New("A", entity.KindClass, aFile, nil),
		entity.New("B", entity.KindClass, bFile, []entity.ImportRef{entity.NewImportRef("A", aFile)}),
		entity.New("C", entity.KindClass, cFile, []entity.ImportRef{entity.NewImportRef("B", bFile)}),
	} {
		tbl[e.ID] = e
	}
	result := &Result{Root: root, Table: tbl}
	g := graph.Build(tbl)

	changed := []git.ChangedFile{{Path: aFile, Kind: git.ChangeModified}}

	direct := Affected(result, g, changed, false, ProjectAll)
	assert.Equal(t, []string{"B"}, names(direct.Consumers))

	transitive := Affected(result, g, changed, true, ProjectAll)
	assert.ElementsMatch(t, []string{"B", "C"}, names(transitive.Consumers))

	// C does not import A directly.
	for _, ae := range transitive.Consumers {
		if ae.Entity.Name == "C" {
			assert.Equal(t, "Transitive dependency", ae.Reason)
		}
	}
}

func TestAffectedUnrelatedChange(t *testing.T) {
	result, g := fixture()
	changed := []git.ChangedFile{
		{Path: filepath.Join(result.Root, "libs/other.ts"), Kind: git.ChangeAdded},
	}

	report := Affected(result, g, changed, true, ProjectAll)
	assert.Empty(t, report.Direct)
	assert.Empty(t, report.Consumers)
}

func TestAffectedReportDirs(t *testing.T) {
	result, g := fixture()
	changed := []git.ChangedFile{
		{Path: filepath.Join(result.Root, "libs/util.ts"), Kind: git.ChangeModified},
	}

	report := Affected(result, g, changed, false, ProjectAll)
	assert.Equal(t, []string{
		filepath.Join(result.Root, "apps/mobile"),
		filepath.Join(result.Root, "apps/web"),
		filepath.Join(result.Root, "libs"),
	}, report.Dirs())
}

func TestAffectedReportTestFiles(t *testing.T) {
	root := t.TempDir()
	utilFile := filepath.Join(root, "libs/util.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(utilFile), 0o755))
	require.NoError(t, os.WriteFile(utilFile, nil, 0o644))
	specFile := filepath.Join(root, "libs/util.spec.ts")
	require.NoError(t, os.WriteFile(specFile, nil, 0o644))

	tbl := table.New()
	e := entity.New("helper", entity.KindFunction, utilFile, nil)
	tbl[e.ID] = e
	result := &Result{Root: root, Table: tbl}
	g := graph.Build(tbl)

	changedSpec := filepath.Join(root, "apps/web/page.test.ts")
	report := Affected(result, g, []git.ChangedFile{
		{Path: utilFile, Kind: git.ChangeModified},
		{Path: changedSpec, Kind: git.ChangeModified},
	}, false, ProjectAll)

	assert.ElementsMatch(t, []string{specFile, changedSpec}, report.TestFiles())
}

func TestParseProject(t *testing.T) {
	for _, valid := range []string{"", "web", "mobile", "libs"} {
		_, ok := ParseProject(valid)
		assert.True(t, ok, valid)
	}
	_, ok := ParseProject("desktop")
	assert.False(t, ok)
}

func TestIsTestFile(t *testing.T) {
	assert.True(t, IsTestFile("a/b/x.spec.ts"))
	assert.True(t, IsTestFile("a/b/x.test.ts"))
	assert.False(t, IsTestFile("a/b/x.ts"))
}
