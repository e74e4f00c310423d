package emit

import (
	"fmt"
	"sort"
	"strings"

	"porkchoplite/src/ast"
)

// Module drives emission of a whole compilation unit's global scope into
// one textual LLVM IR module: function headers/bodies for every
// FunctionDeclarator, a `@name = global` line for every top-level Let, and
// a shared string constant table (spec §4.3).
type Module struct {
	global  *ast.GlobalScope
	debug   bool
	strings []string // deduplicated string constant pool, index == LLVM global suffix
	strIdx  map[string]int
	out     strings.Builder
	dbg     *debugInfo
}

// New returns a Module ready to emit global's declarations. debug enables
// the DWARF-style metadata trailer of spec §4.3.3; file/dir name the
// compiled source for the !DIFile node.
func New(global *ast.GlobalScope, debug bool, file, dir string) *Module {
	m := &Module{global: global, debug: debug, strIdx: make(map[string]int)}
	if debug {
		m.dbg = newDebugInfo(file, dir)
	}
	return m
}

// Emit produces the full textual IR module.
func (m *Module) Emit() (string, error) {
	m.emitBuiltinDeclares()
	for _, let := range m.global.Lets {
		m.emitGlobalLet(let)
	}
	for _, fn := range m.global.Fns {
		if err := m.emitFunction(fn); err != nil {
			return "", err
		}
	}
	if m.debug {
		m.out.WriteString(m.dbg.render())
	}
	var sb strings.Builder
	for i, s := range m.strings {
		sb.WriteString(fmt.Sprintf("@.str.%d = private unnamed_addr constant [%d x i8] c\"%s\\00\"\n", i, len(s)+1, escapeStringData(s)))
	}
	sb.WriteString(m.out.String())
	return sb.String(), nil
}

func escapeStringData(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, "\\%02X", c)
		}
	}
	return sb.String()
}

// internString interns s into the module's string pool and returns the
// name of its global constant (`@.str.N`); nothing is emitted into b.
func (m *Module) internString(b *Builder, s string) string {
	idx, ok := m.strIdx[s]
	if !ok {
		idx = len(m.strings)
		m.strings = append(m.strings, s)
		m.strIdx[s] = idx
	}
	return fmt.Sprintf("@.str.%d", idx)
}

// emitBuiltinDeclares emits a `declare` line for every entry of the fixed
// host-library contract (spec §6), regardless of whether this module
// actually calls it: the core's only responsibility toward these symbols
// is declaring them with the right type.
func (m *Module) emitBuiltinDeclares() {
	builtins := ast.Builtins()
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		params, result, _ := builtins[name].IsFunction()
		var ps []string
		for _, p := range params {
			ps = append(ps, p.IR())
		}
		m.out.WriteString(fmt.Sprintf("declare %s @%s(%s)\n", result.IR(), name, strings.Join(ps, ", ")))
	}
}

func (m *Module) emitGlobalLet(let *ast.Let) {
	v, _ := let.Value.Meta().TryConst()
	t := let.Lookup.Type
	name := EscapeIdent(let.Name)
	switch {
	case t.IsFloat():
		m.out.WriteString(fmt.Sprintf("@%s = global double %s\n", name, formatFloat(v.Float)))
	case t.IsBool():
		iv := 0
		if v.Bool {
			iv = 1
		}
		m.out.WriteString(fmt.Sprintf("@%s = global i1 %d\n", name, iv))
	default:
		m.out.WriteString(fmt.Sprintf("@%s = global i64 %d\n", name, v.Int))
	}
}

// fnEmitter carries the per-function state threaded through expr.go's
// walk: the Builder accumulating this function's body, the slot->alloca
// register table for every local (including parameters), the per-function
// label counter, and the current debug scope id.
type fnEmitter struct {
	m        *Module
	b        *Builder
	decl     *ast.FunctionDeclarator
	slots    []string // local index -> alloca pointer register
	labels   int       // mirrors GlobalScope.LabelUntil but kept function-local, reset per function (spec §4.3)
	dbgScope int       // current DISubprogram/DILexicalBlock metadata id, 0 when -g is off
}

func (m *Module) emitFunction(decl *ast.FunctionDeclarator) error {
	params, result, _ := decl.Params.Type.IsFunction()
	name := EscapeIdent(decl.Name)

	if decl.Definition == nil {
		var ps []string
		for _, p := range params {
			ps = append(ps, p.IR())
		}
		m.out.WriteString(fmt.Sprintf("declare %s @%s(%s)\n", result.IR(), name, strings.Join(ps, ", ")))
		return nil
	}

	fe := &fnEmitter{m: m, b: newBuilder(), decl: decl}
	fe.b.indent = 4
	var paramDecls []string
	for i, p := range params {
		paramDecls = append(paramDecls, fmt.Sprintf("%s %%arg%d", p.IR(), i))
	}
	if m.debug {
		fe.dbgScope = m.dbg.subprogram(name, decl.Definition.Body.Span().Line1)
		m.out.WriteString(fmt.Sprintf("define %s @%s(%s) !dbg !%d {\n", result.IR(), name, strings.Join(paramDecls, ", "), fe.dbgScope))
	} else {
		m.out.WriteString(fmt.Sprintf("define %s @%s(%s) {\n", result.IR(), name, strings.Join(paramDecls, ", ")))
	}

	fe.b.Label(0)
	fe.slots = make([]string, len(decl.Definition.LocalTypes))
	for i, t := range decl.Definition.LocalTypes {
		slot := fe.b.Alloca(t)
		fe.slots[i] = slot
		if i < len(params) {
			fe.b.Store(t, fmt.Sprintf("%%arg%d", i), slot)
		}
	}

	v, err := fe.emit(decl.Definition.Body)
	if err != nil {
		return err
	}
	bodyType := decl.Definition.Body.Meta().Type()
	if !bodyType.IsNever() {
		fe.b.Return(result, v)
	}

	m.out.WriteString(fe.b.String())
	m.out.WriteString("}\n")
	return nil
}

// nextLabel mints the next basic-block label number for the current
// function, mirroring GlobalScope.LabelUntil but reset to 0 per function
// entry (spec §4.3: "Every function begins with label(0) as its entry
// block" and label numbering restarts there).
func (fe *fnEmitter) nextLabel() int {
	fe.labels++
	return fe.labels
}
