package analysis

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/awork-io/sting/pkg/entity"
	"github.com/awork-io/sting/pkg/git"
	"github.com/awork-io/sting/pkg/graph"
)

// Project restricts affected results to one monorepo area.
type Project string

const (
	ProjectAll    Project = ""
	ProjectWeb    Project = "web"
	ProjectMobile Project = "mobile"
	ProjectLibs   Project = "libs"
)

// ParseProject converts a --project flag value.
func ParseProject(s string) (Project, bool) {
	switch Project(s) {
	case ProjectAll, ProjectWeb, ProjectMobile, ProjectLibs:
		return Project(s), true
	}
	return ProjectAll, false
}

// subdir returns the path prefix (relative to the root) for the project.
func (p Project) subdir() string {
	switch p {
	case ProjectWeb:
		return "apps/web"
	case ProjectMobile:
		return "apps/mobile"
	case ProjectLibs:
		return "libs"
	}
	return ""
}

// AffectedEntity is an entity touched by a change, with the reason it is
// in the report.
type AffectedEntity struct {
	Entity *entity.Entity
	Reason string
}

// AffectedReport is the outcome of an affected query: entities whose file
// changed, and the consumers that (directly or transitively) depend on
// them.
type AffectedReport struct {
	Changed   []git.ChangedFile
	Direct    []AffectedEntity
	Consumers []AffectedEntity
}

// Affected computes the affected set for a list of changed files. The
// changed files act only as a filter; they are never merged into the
// entity table. With transitive set, consumers are found by walking the
// reverse dependency relation to a fixed point.
func Affected(result *Result, g *graph.Graph, changed []git.ChangedFile, transitive bool, project Project) *AffectedReport {
	report := &AffectedReport{Changed: changed}

	changedKinds := make(map[string]git.ChangeKind, len(changed))
	for _, cf := range changed {
		changedKinds[cf.Path] = cf.Kind
	}

	directIDs := make(map[string]bool)
	for _, id := range result.Table.SortedIDs() {
		e := result.Table[id]
		kind, ok := changedKinds[e.FilePath]
		if !ok {
			continue
		}
		report.Direct = append(report.Direct, AffectedEntity{
			Entity: e,
			Reason: kind.Reason() + " file",
		})
		directIDs[e.ID] = true
	}

	sort.Slice(report.Direct, func(i, j int) bool {
		return report.Direct[i].Entity.FilePath < report.Direct[j].Entity.FilePath
	})

	for id := range g.Consumers(directIDs, transitive) {
		e, ok := result.Table[id]
		if !ok {
			continue
		}
		report.Consumers = append(report.Consumers, AffectedEntity{
			Entity: e,
			Reason: consumerReason(e, report.Direct),
		})
	}

	sort.Slice(report.Consumers, func(i, j int) bool {
		return report.Consumers[i].Entity.FilePath < report.Consumers[j].Entity.FilePath
	})

	if project != ProjectAll {
		prefix := filepath.Join(result.Root, project.subdir()) + string(filepath.Separator)
		report.Direct = filterByPrefix(report.Direct, prefix)
		report.Consumers = filterByPrefix(report.Consumers, prefix)
	}

	return report
}

// consumerReason names the directly affected entities this consumer
// imports, or falls back to marking it a transitive dependency.
func consumerReason(e *entity.Entity, direct []AffectedEntity) string {
	var consumes []string
	for _, ref := range e.Imports {
		for _, d := range direct {
			if d.Entity.FilePath == ref.Path && d.Entity.Name == ref.Name {
				consumes = append(consumes, d.Entity.Name)
			}
		}
	}
	if len(consumes) == 0 {
		return "Transitive dependency"
	}
	return "Imports: " + strings.Join(consumes, ", ")
}

func filterByPrefix(entities []AffectedEntity, prefix string) []AffectedEntity {
	var kept []AffectedEntity
	for _, ae := range entities {
		if strings.HasPrefix(ae.Entity.FilePath, prefix) {
			kept = append(kept, ae)
		}
	}
	return kept
}

// Dirs returns the unique parent directories of every affected entity,
// sorted, for handing to a test runner.
func (r *AffectedReport) Dirs() []string {
	unique := make(map[string]bool)
	for _, ae := range r.Direct {
		unique[filepath.Dir(ae.Entity.FilePath)] = true
	}
	for _, ae := range r.Consumers {
		unique[filepath.Dir(ae.Entity.FilePath)] = true
	}

	dirs := make([]string, 0, len(unique))
	for dir := range unique {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// TestFiles returns the test files related to the affected set: tests
// sitting next to affected entities plus test files that changed
// themselves. Sorted.
func (r *AffectedReport) TestFiles() []string {
	unique := make(map[string]bool)

	for _, dir := range r.Dirs() {
		for _, test := range testFilesIn(dir) {
			unique[test] = true
		}
	}

	for _, cf := range r.Changed {
		if IsTestFile(cf.Path) {
			unique[cf.Path] = true
		}
	}

	tests := make([]string, 0, len(unique))
	for test := range unique {
		tests = append(tests, test)
	}
	sort.Strings(tests)
	return tests
}

// IsTestFile reports whether path names a test file.
func IsTestFile(path string) bool {
	return strings.HasSuffix(path, ".test.ts") || strings.HasSuffix(path, ".spec.ts")
}

// testFilesIn lists test files directly inside dir (non-recursive; tests
// live next to the code they cover).
func testFilesIn(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var tests []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if IsTestFile(path) {
			tests = append(tests, path)
		}
	}
	return tests
}
