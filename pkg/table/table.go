package table

import (
	"sort"

	"github.com/awork-io/sting/pkg/entity"
	"github.com/awork-io/sting/pkg/parser"
)

// Table is the global entity table for one analysis run, keyed by entity
// id. It is built once per command invocation and never persisted.
type Table map[string]*entity.Entity

// New creates an empty table.
func New() Table {
	return make(Table)
}

// Merge folds one file's parse result into the table. The final table is
// independent of the order in which file results are merged:
//
//   - marking an entity used is idempotent and commutative across files,
//   - a declaration overwrites only Kind and Imports, and only the true
//     declaring file ever produces the declaration for a given id, so it
//     does not matter which file created the slot first.
func (t Table) Merge(result *parser.FileResult) {
	// Import references first: mark the target used, or create an
	// unknown-kind placeholder for a declaration not seen yet.
	for _, ref := range result.Imports {
		if existing, ok := t[ref.ID]; ok {
			existing.Used = true
		} else {
			placeholder := entity.New(ref.Name, entity.KindUnknown, ref.Path, nil)
			placeholder.Used = true
			t[ref.ID] = placeholder
		}
	}

	// Declarations second: fill in kind and imports on whatever record
	// holds the slot, preserving the used flag the table already has.
	// Local-usage detection is never re-derived here.
	for _, e := range result.Entities {
		if existing, ok := t[e.ID]; ok {
			existing.Kind = e.Kind
			existing.Imports = e.Imports
		} else {
			t[e.ID] = e
		}
	}
}

// Build merges a set of per-file parse results into one table.
func Build(results []*parser.FileResult) Table {
	t := New()
	for _, r := range results {
		t.Merge(r)
	}
	return t
}

// SortedIDs returns all entity ids in ascending order. Queries iterate the
// table through this to keep output deterministic.
func (t Table) SortedIDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ByName returns all entities whose name matches exactly, sorted by id.
// Multiple files can export the same name.
func (t Table) ByName(name string) []*entity.Entity {
	var matches []*entity.Entity
	for _, id := range t.SortedIDs() {
		if t[id].Name == name {
			matches = append(matches, t[id])
		}
	}
	return matches
}

// Unused returns every declared entity that nothing imports and that is
// not referenced again in its own file. Unknown-kind placeholders are not
// declarations and are never reported. Sorted by file path.
func (t Table) Unused() []*entity.Entity {
	var unused []*entity.Entity
	for _, e := range t {
		if !e.Used && e.Kind != entity.KindUnknown {
			unused = append(unused, e)
		}
	}
	sort.Slice(unused, func(i, j int) bool {
		if unused[i].FilePath != unused[j].FilePath {
			return unused[i].FilePath < unused[j].FilePath
		}
		return unused[i].Name < unused[j].Name
	})
	return unused
}

// FilterKinds returns a view of the table containing only entities whose
// kind is in kinds. An empty filter returns the table itself.
func (t Table) FilterKinds(kinds []entity.Kind) Table {
	if len(kinds) == 0 {
		return t
	}
	keep := make(map[entity.Kind]bool, len(kinds))
	for _, k := range kinds {
		keep[k] = true
	}
	filtered := New()
	for id, e := range t {
		if keep[e.Kind] {
			filtered[id] = e
		}
	}
	return filtered
}
