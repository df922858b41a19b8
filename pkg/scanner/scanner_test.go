package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func relativize(t *testing.T, root string, files []string) []string {
	t.Helper()
	rels := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rels = append(rels, rel)
	}
	return rels
}

func TestScanCollectsTypeScriptFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "app.ts")
	touch(t, root, "view.tsx")
	touch(t, root, "styles.css")
	touch(t, root, "sub/deep.ts")

	files, err := New().Scan(root)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"app.ts", "view.tsx", filepath.Join("sub", "deep.ts")},
		relativize(t, root, files))
}

func TestScanSkipsConfiguredDirectories(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "app.ts")
	touch(t, root, "mocks/fake.ts")
	touch(t, root, "nested/__mocks__/fake.ts")
	touch(t, root, "i18n/en.ts")

	files, err := New().Scan(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app.ts"}, relativize(t, root, files))
}

func TestScanSkipsConfiguredSuffixes(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "app.ts")
	touch(t, root, "app.spec.ts")
	touch(t, root, "types.d.ts")
	touch(t, root, "button.stories.ts")
	touch(t, root, "data-stub.ts")

	files, err := New().Scan(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app.ts"}, relativize(t, root, files))
}

func TestScanCustomSkipLists(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "app.ts")
	touch(t, root, "generated/gen.ts")
	touch(t, root, "legacy.old.ts")

	sc := &Scanner{
		SkipDirectories:  []string{"generated"},
		SkipFileSuffixes: []string{".old.ts"},
	}
	files, err := sc.Scan(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app.ts"}, relativize(t, root, files))
}

func TestScanMissingRoot(t *testing.T) {
	_, err := New().Scan(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
