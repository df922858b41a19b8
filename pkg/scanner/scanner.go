package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/awork-io/sting/pkg/logging"
)

// Default skip lists. Directories are matched by name anywhere in the tree,
// suffixes against the file name.
var (
	DefaultSkipDirectories = []string{
		"mocks", "__mocks__", "mocks_stubs", "tests", "environments", "i18n",
	}
	DefaultSkipFileSuffixes = []string{
		".spec.ts", ".d.ts", ".stories.ts", "-stub.ts", "mocks.ts", "mock.ts",
	}
)

// Scanner enumerates TypeScript source files under a directory tree,
// filtering out configured directory names and file-name suffixes.
type Scanner struct {
	SkipDirectories  []string
	SkipFileSuffixes []string
}

// New creates a scanner with the default skip lists.
func New() *Scanner {
	return &Scanner{
		SkipDirectories:  DefaultSkipDirectories,
		SkipFileSuffixes: DefaultSkipFileSuffixes,
	}
}

// Scan walks dir recursively and returns all .ts and .tsx files that pass
// the skip lists. Errors reading a subdirectory are logged and skipped; an
// unreadable root is an error.
func (s *Scanner) Scan(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("could not read directory", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != dir && s.shouldSkipDirectory(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.shouldSkipFile(d.Name()) {
			return nil
		}

		ext := filepath.Ext(path)
		if ext == ".ts" || ext == ".tsx" {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

func (s *Scanner) shouldSkipDirectory(name string) bool {
	for _, skip := range s.SkipDirectories {
		if name == skip {
			return true
		}
	}
	return false
}

func (s *Scanner) shouldSkipFile(name string) bool {
	for _, suffix := range s.SkipFileSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
