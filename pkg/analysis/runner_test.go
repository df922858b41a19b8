package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awork-io/sting/pkg/entity"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunBuildsTableAcrossSubdirs(t *testing.T) {
	root := t.TempDir()
	write(t, root, "libs/util.ts", "export function helper() {}\n")
	write(t, root, "apps/web/page.ts",
		"import { helper } from '../../libs/util';\nexport class Page {}\n")

	result, err := Run(Options{Root: root})
	require.NoError(t, err)

	assert.Len(t, result.Files, 2)

	helpers := result.Table.ByName("helper")
	require.Len(t, helpers, 1)
	assert.Equal(t, entity.KindFunction, helpers[0].Kind)
	assert.True(t, helpers[0].Used, "imported from page.ts")

	pages := result.Table.ByName("Page")
	require.Len(t, pages, 1)
	assert.False(t, pages[0].Used)
}

func TestRunToleratesMissingSubdirs(t *testing.T) {
	root := t.TempDir()
	write(t, root, "libs/util.ts", "export const x = 1;\n")

	// apps/web and apps/mobile do not exist.
	result, err := Run(Options{Root: root})
	require.NoError(t, err)
	assert.Len(t, result.Files, 1)
}

func TestRunFailsWithoutSourceFiles(t *testing.T) {
	_, err := Run(Options{Root: t.TempDir()})
	assert.Error(t, err)
}

func TestRunCustomSubdirs(t *testing.T) {
	root := t.TempDir()
	write(t, root, "packages/core/index.ts", "export const core = 1;\n")
	write(t, root, "libs/ignored.ts", "export const nope = 1;\n")

	result, err := Run(Options{Root: root, Subdirs: []string{"packages"}})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Empty(t, result.Table.ByName("nope"))
}
