package analysis

import (
	"fmt"
	"path/filepath"

	"github.com/awork-io/sting/pkg/logging"
	"github.com/awork-io/sting/pkg/parser"
	"github.com/awork-io/sting/pkg/scanner"
	"github.com/awork-io/sting/pkg/table"
)

// DefaultSubdirs are the monorepo areas scanned for source files.
var DefaultSubdirs = []string{"apps/web", "apps/mobile", "libs"}

// Result is the outcome of one analysis run: the merged entity table and
// the files that fed it. The table lives for one command invocation only.
type Result struct {
	Root  string
	Files []string
	Table table.Table
}

// Options configures an analysis run.
type Options struct {
	Root    string
	Subdirs []string
	Scanner *scanner.Scanner
}

// Run scans the configured subdirectories under root, parses every file
// and merges the per-file results into one entity table. A missing subdir
// or an unparsable file degrades gracefully; finding no source files at
// all is fatal.
func Run(opts Options) (*Result, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve path %q: %w", opts.Root, err)
	}

	subdirs := opts.Subdirs
	if len(subdirs) == 0 {
		subdirs = DefaultSubdirs
	}
	sc := opts.Scanner
	if sc == nil {
		sc = scanner.New()
	}

	var files []string
	for _, subdir := range subdirs {
		dir := filepath.Join(root, subdir)

		found, err := sc.Scan(dir)
		if err != nil {
			logging.Debug("skipping directory", "path", dir, "error", err)
			continue
		}
		logging.Debug("scanned directory", "path", dir, "files", len(found))
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no TypeScript files found in %s", root)
	}

	logging.Info("processing source files", "count", len(files))

	p := parser.New(root)
	t := table.New()

	for _, file := range files {
		result, err := p.Parse(file)
		if err != nil {
			logging.Warn("could not parse file", "file", file, "error", err)
			continue
		}
		t.Merge(result)
	}

	return &Result{Root: root, Files: files, Table: t}, nil
}
