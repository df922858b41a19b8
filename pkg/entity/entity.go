package entity

import (
	"fmt"
	"hash/fnv"
)

// Kind classifies an exported declaration.
// KindUnknown marks a placeholder for a symbol that has been imported
// somewhere but whose declaration has not been scanned (yet, or ever).
type Kind string

const (
	KindUnknown   Kind = "unknown"
	KindClass     Kind = "class"
	KindComponent Kind = "component"
	KindService   Kind = "service"
	KindDirective Kind = "directive"
	KindPipe      Kind = "pipe"
	KindEnum      Kind = "enum"
	KindType      Kind = "type"
	KindInterface Kind = "interface"
	KindFunction  Kind = "function"
	KindConst     Kind = "const"
	KindWorker    Kind = "worker"
)

// Kinds lists every kind that can appear in a declaration (everything but
// unknown), in the order used for CLI help output.
var Kinds = []Kind{
	KindClass, KindComponent, KindService, KindDirective, KindPipe,
	KindEnum, KindType, KindInterface, KindFunction, KindConst, KindWorker,
}

// ParseKind converts a CLI filter value into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown entity type %q", s)
}

// ImportRef is a resolved pointer from an importing file to a named export
// in another file. Path is absolute; module resolution has already happened
// in the parser. ID is derived the same way as entity identity, so a
// reference and the entity it targets share an id.
type ImportRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewImportRef creates an import reference with its derived id.
func NewImportRef(name, path string) ImportRef {
	return ImportRef{
		ID:   GenerateID(path, name),
		Name: name,
		Path: path,
	}
}

// Entity is one exported declaration site, or a placeholder for a symbol
// that is imported but not yet declared (Kind == KindUnknown).
//
// Imports is shared between all entities declared in the same file; callers
// must treat it as immutable.
type Entity struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Kind     Kind        `json:"type"`
	FilePath string      `json:"file"`
	Imports  []ImportRef `json:"-"`
	Used     bool        `json:"used"`
}

// New creates an entity with its derived id. Used starts false; local-usage
// detection and the table merge flip it.
func New(name string, kind Kind, filePath string, imports []ImportRef) *Entity {
	return &Entity{
		ID:       GenerateID(filePath, name),
		Name:     name,
		Kind:     kind,
		FilePath: filePath,
		Imports:  imports,
	}
}

// GenerateID derives the stable identity of an exported declaration from
// its declaring file path and name. It is a pure function of those two
// strings: scan order, kind and declaration order never influence it, so
// independently discovered references to the same named thing in the same
// file always collide to the same table slot.
func GenerateID(filePath, name string) string {
	h := fnv.New64a()
	h.Write([]byte(filePath))
	h.Write([]byte{':'})
	h.Write([]byte(name))
	return fmt.Sprintf("%016x", h.Sum64())
}
