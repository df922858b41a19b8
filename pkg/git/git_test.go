package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNameStatus(t *testing.T) {
	out := "A\tlibs/new.ts\n" +
		"M\tapps/web/app.ts\n" +
		"D\tlibs/old.ts\n" +
		"R087\tlibs/before.ts\tlibs/after.ts\n" +
		"C050\tlibs/src.ts\tlibs/copy.ts\n"

	changed := parseNameStatus(out, "/repo")
	require.Len(t, changed, 5)

	assert.Equal(t, ChangedFile{Path: "/repo/libs/new.ts", Kind: ChangeAdded}, changed[0])
	assert.Equal(t, ChangedFile{Path: "/repo/apps/web/app.ts", Kind: ChangeModified}, changed[1])
	assert.Equal(t, ChangedFile{Path: "/repo/libs/old.ts", Kind: ChangeDeleted}, changed[2])
	// Renames keep the new path; copies count as additions.
	assert.Equal(t, ChangedFile{Path: "/repo/libs/after.ts", Kind: ChangeRenamed}, changed[3])
	assert.Equal(t, ChangedFile{Path: "/repo/libs/copy.ts", Kind: ChangeAdded}, changed[4])
}

func TestParseNameStatusSkipsMalformedLines(t *testing.T) {
	out := "garbage\n\nX\tweird.ts\nM\tok.ts\n"
	changed := parseNameStatus(out, "/repo")
	require.Len(t, changed, 1)
	assert.Equal(t, "/repo/ok.ts", changed[0].Path)
}

func TestChangeKindReason(t *testing.T) {
	assert.Equal(t, "New", ChangeAdded.Reason())
	assert.Equal(t, "Modified", ChangeModified.Reason())
	assert.Equal(t, "Deleted", ChangeDeleted.Reason())
	assert.Equal(t, "Renamed", ChangeRenamed.Reason())
}

func TestChangedFilesWithoutRepository(t *testing.T) {
	_, err := ChangedFiles(t.TempDir(), "main")
	assert.Error(t, err)
}
