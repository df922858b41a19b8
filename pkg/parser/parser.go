package parser

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/awork-io/sting/pkg/entity"
)

// Pre-compiled matchers for import extraction. Compiled once at package
// initialization and shared; they hold no mutable state.
var (
	// Collapses multiline named imports into a single line so the named
	// matcher can treat every import statement uniformly.
	normalizeRe = regexp.MustCompile(`import\s*\{([^}]*)\}\s*from`)

	namedImportRe   = regexp.MustCompile(`import\s*\{([^}]+)\}\s*from\s*['"]([^'"]+)['"]`)
	defaultImportRe = regexp.MustCompile(`import\s+(\w+)\s+from\s*['"]([^'"]+)['"]`)
	lazyImportRe    = regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)\s*\.then\s*\(\s*\w+\s*=>\s*\w+\.(\w+)\s*\)`)
	workerImportRe  = regexp.MustCompile(`new\s+Worker\s*\(\s*new\s+URL\s*\(\s*['"]([^'"]+)['"]`)
)

// Decorators that refine the kind of the class they annotate.
var decoratorKinds = map[string]entity.Kind{
	"@Component":  entity.KindComponent,
	"@Injectable": entity.KindService,
	"@Directive":  entity.KindDirective,
	"@Pipe":       entity.KindPipe,
}

// FileResult is the outcome of parsing one file: the exported declarations
// it contains and the resolved import references it makes. All entities
// share the same Imports slice.
type FileResult struct {
	Entities []*entity.Entity
	Imports  []entity.ImportRef
}

// Parser extracts declarations and imports from TypeScript files by
// pattern matching over comment-stripped text. It is not a language
// parser; false positives and negatives are accepted.
type Parser struct {
	root string
}

// New creates a parser that resolves workspace-alias imports against root.
func New(root string) *Parser {
	return &Parser{root: root}
}

// Parse reads and parses a single file. A missing or unreadable file is
// returned as an error; the caller decides whether that aborts the run.
func (p *Parser) Parse(filePath string) (*FileResult, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	content := string(raw)

	imports := p.ExtractImports(content, filePath)

	// One shared, immutable import list per file: every entity declared
	// here references the same slice.
	entities := extractEntities(StripComments(content), filePath, imports)

	// Local-usage detection runs on the raw content so that usages inside
	// comments of the same file do not matter either way.
	for _, e := range entities {
		if usedLocally(content, e.Name) {
			e.Used = true
		}
	}

	return &FileResult{Entities: entities, Imports: imports}, nil
}

// extractEntities scans comment-stripped content line by line for exported
// declarations.
func extractEntities(content, filePath string, imports []entity.ImportRef) []*entity.Entity {
	var entities []*entity.Entity
	isWorkerFile := strings.HasSuffix(filePath, ".worker.ts")

	pendingKind := entity.KindUnknown

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "@") {
			for prefix, kind := range decoratorKinds {
				if strings.HasPrefix(trimmed, prefix) {
					pendingKind = kind
					break
				}
			}
		}

		if strings.Contains(trimmed, "export") && strings.Contains(trimmed, "class") {
			if name := extractExportName(trimmed, "class"); name != "" {
				kind := entity.KindClass
				if pendingKind != entity.KindUnknown {
					kind = pendingKind
					pendingKind = entity.KindUnknown
				}
				if isWorkerFile {
					kind = entity.KindWorker
				}
				entities = append(entities, entity.New(name, kind, filePath, imports))
			}
		}

		if strings.Contains(trimmed, "export") && strings.Contains(trimmed, "enum") {
			if name := extractExportName(trimmed, "enum"); name != "" {
				entities = append(entities, entity.New(name, entity.KindEnum, filePath, imports))
			}
		}

		if strings.Contains(trimmed, "export") && strings.Contains(trimmed, "type") &&
			!strings.Contains(trimmed, "typeof") {
			if name := extractExportName(trimmed, "type"); name != "" {
				entities = append(entities, entity.New(name, entity.KindType, filePath, imports))
			}
		}

		if strings.Contains(trimmed, "export") && strings.Contains(trimmed, "interface") {
			if name := extractExportName(trimmed, "interface"); name != "" {
				entities = append(entities, entity.New(name, entity.KindInterface, filePath, imports))
			}
		}

		if strings.Contains(trimmed, "export") && strings.Contains(trimmed, "function") {
			if name := extractExportName(trimmed, "function"); name != "" {
				kind := entity.KindFunction
				if isWorkerFile {
					kind = entity.KindWorker
				}
				entities = append(entities, entity.New(name, kind, filePath, imports))
			}
		}

		if strings.HasPrefix(trimmed, "export const") ||
			strings.HasPrefix(trimmed, "export let") ||
			strings.HasPrefix(trimmed, "export var") {
			keyword := "var"
			if strings.HasPrefix(trimmed, "export const") {
				keyword = "const"
			} else if strings.HasPrefix(trimmed, "export let") {
				keyword = "let"
			}

			if name := extractExportName(trimmed, keyword); name != "" {
				kind := entity.KindConst
				if strings.Contains(trimmed, "=>") || strings.Contains(trimmed, "= function") {
					kind = entity.KindFunction
				}
				entities = append(entities, entity.New(name, kind, filePath, imports))
			}
		}
	}

	return entities
}

// ExtractImports returns all resolvable import references in content.
// External package imports (anything that is not relative or a workspace
// alias) are filtered out here.
func (p *Parser) ExtractImports(content, filePath string) []entity.ImportRef {
	var imports []entity.ImportRef

	stripped := StripComments(content)

	normalized := normalizeRe.ReplaceAllStringFunc(stripped, func(m string) string {
		sub := normalizeRe.FindStringSubmatch(m)
		names := strings.NewReplacer("\n", " ", "\r", " ").Replace(sub[1])
		return "import {" + names + "} from"
	})

	for _, cap := range namedImportRe.FindAllStringSubmatch(normalized, -1) {
		resolved := p.resolveImportPath(filePath, cap[2])
		if resolved == "" {
			continue
		}

		for _, part := range strings.Split(cap[1], ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			// "Original as Alias" references the original export.
			if pos := strings.Index(name, " as "); pos >= 0 {
				name = strings.TrimSpace(name[:pos])
			}
			imports = append(imports, entity.NewImportRef(name, resolved))
		}
	}

	for _, cap := range defaultImportRe.FindAllStringSubmatch(normalized, -1) {
		name := cap[1]
		// The default matcher also hits "import type X" and partially
		// consumed named imports; skip those.
		if name == "type" || name == "from" {
			continue
		}
		if resolved := p.resolveImportPath(filePath, cap[2]); resolved != "" {
			imports = append(imports, entity.NewImportRef(name, resolved))
		}
	}

	// Lazy-loaded Angular modules: loadChildren: () => import('...').then(m => m.FooModule)
	for _, cap := range lazyImportRe.FindAllStringSubmatch(normalized, -1) {
		if resolved := p.resolveImportPath(filePath, cap[1]); resolved != "" {
			imports = append(imports, entity.NewImportRef(cap[2], resolved))
		}
	}

	// Web workers: new Worker(new URL('./foo.worker', import.meta.url)).
	// The referenced name is the worker file's base name.
	for _, cap := range workerImportRe.FindAllStringSubmatch(normalized, -1) {
		if resolved := p.resolveImportPath(filePath, cap[1]); resolved != "" {
			name := strings.TrimSuffix(filepath.Base(cap[1]), filepath.Ext(cap[1]))
			imports = append(imports, entity.NewImportRef(name, resolved))
		}
	}

	return imports
}

// resolveImportPath turns a module reference into an absolute file path.
// Returns "" for external package references.
func (p *Parser) resolveImportPath(importingFile, importSource string) string {
	var base string
	switch {
	case strings.HasPrefix(importSource, "@awork/"):
		base = filepath.Join(p.root, "libs/shared/src/lib", importSource[len("@awork/"):])
	case strings.HasPrefix(importSource, "./"), strings.HasPrefix(importSource, "../"):
		base = filepath.Join(filepath.Dir(importingFile), importSource)
	default:
		return ""
	}

	candidates := []string{
		base + ".ts",
		base + ".tsx",
		filepath.Join(base, "index.ts"),
		filepath.Join(base, "index.tsx"),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return filepath.Clean(candidate)
		}
	}

	if info, err := os.Stat(base); err == nil && !info.IsDir() {
		return filepath.Clean(base)
	}

	// The target may not exist on disk (deleted file, generated code).
	// Keep a deterministic guess so ids still line up if it appears later.
	if strings.HasSuffix(base, ".ts") || strings.HasSuffix(base, ".tsx") {
		return filepath.Clean(base)
	}
	return filepath.Clean(base) + ".ts"
}

// StripComments removes // and /* */ comments while preserving string
// literals, so comment-like content inside strings survives and commented
// out imports do not match.
func StripComments(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	runes := []rune(content)
	var inString rune

	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if inString == 0 && (c == '"' || c == '\'' || c == '`') {
			inString = c
			b.WriteRune(c)
			continue
		}

		if inString != 0 {
			b.WriteRune(c)
			if c == '\\' && i+1 < len(runes) {
				b.WriteRune(runes[i+1])
				i++
			} else if c == inString {
				inString = 0
			}
			continue
		}

		if c == '/' && i+1 < len(runes) {
			switch runes[i+1] {
			case '/':
				i++
				for i+1 < len(runes) && runes[i+1] != '\n' {
					i++
				}
				continue
			case '*':
				i++
				for i+1 < len(runes) {
					i++
					if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/' {
						i++
						break
					}
				}
				continue
			}
		}

		b.WriteRune(c)
	}

	return b.String()
}

// extractExportName finds the identifier following keyword in line,
// requiring the keyword to stand alone as a word.
func extractExportName(line, keyword string) string {
	searchStart := 0
	for {
		rel := strings.Index(line[searchStart:], keyword)
		if rel < 0 {
			return ""
		}
		pos := searchStart + rel

		beforeOK := pos == 0
		if !beforeOK {
			prev := rune(line[pos-1])
			beforeOK = !isIdentRune(prev)
		}

		after := line[pos+len(keyword):]
		afterOK := after != "" && (after[0] == ' ' || after[0] == '\t')

		if beforeOK && afterOK {
			rest := strings.TrimLeft(after, " \t")
			end := 0
			for end < len(rest) && isIdentRune(rune(rest[end])) {
				end++
			}
			if end > 0 {
				return rest[:end]
			}
		}

		searchStart = pos + len(keyword)
	}
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// usedLocally reports whether name is referenced more than once in its own
// file (the declaration itself counts as the first occurrence).
func usedLocally(content, name string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return false
	}
	return len(re.FindAllStringIndex(content, 2)) > 1
}
