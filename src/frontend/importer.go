package frontend

import (
	"os"
	"path/filepath"

	"porkchoplite/src/ast"
	"porkchoplite/src/diag"
	"porkchoplite/src/source"
	"porkchoplite/src/types"
)

// Importer resolves `import`/`export import` paths (spec §4.2.7): paths
// are relative to the importing file, completed imports are cached by
// their resolved absolute path, and a pending set detects import cycles.
type Importer struct {
	cache   map[string]map[string]*types.Type
	pending map[string]bool
}

// NewImporter returns an Importer with an empty cache, ready to resolve
// the entry file's own imports.
func NewImporter() *Importer {
	return &Importer{
		cache:   make(map[string]map[string]*types.Type),
		pending: make(map[string]bool),
	}
}

// Resolve loads the file at path (resolved relative to the directory of
// fromPath), tokenizes and parses it in isolation, and returns its export
// table (function symbols only, per spec §4.2.7). seg is the import
// statement's span, used for diagnostics.
func (imp *Importer) Resolve(fromPath, path string, seg source.Segment) (map[string]*types.Type, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(filepath.Dir(fromPath), path)
	}
	abs = filepath.Clean(abs)

	if exports, ok := imp.cache[abs]; ok {
		return exports, nil
	}
	if imp.pending[abs] {
		return nil, diag.New(diag.Semantic, seg, "import cycle detected at %q", path)
	}
	imp.pending[abs] = true
	defer delete(imp.pending, abs)

	text, err := os.ReadFile(abs)
	if err != nil {
		return nil, diag.New(diag.IO, seg, "cannot read import %q: %s", path, err)
	}

	src := source.New(abs, string(text))
	if err := Tokenize(src); err != nil {
		return nil, err
	}

	global := ast.NewGlobalScopeWithBuiltins()
	p := NewParser(src, global, imp)
	if err := p.ParseFile(); err != nil {
		return nil, err
	}

	exports := make(map[string]*types.Type, len(global.Exports()))
	for name, t := range global.Exports() {
		if _, _, ok := t.IsFunction(); !ok {
			continue
		}
		exports[name] = t
	}
	imp.cache[abs] = exports
	return exports, nil
}
