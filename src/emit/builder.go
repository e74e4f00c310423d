// Package emit is the IR emitter: a textual LLVM IR assembler that walks a
// parsed ast.Expr tree and appends one line of IR per operation to an
// internal buffer under a current indent (spec §4.3). Builder owns that
// buffer and the per-function register/label minting; Module owns the
// collection of Builders plus the module-level globals and string table.
package emit

import (
	"fmt"
	"strings"

	"porkchoplite/src/types"
)

// Builder accumulates one function's (or, before any function is opened,
// the module preamble's) textual IR lines, minting SSA register names
// "%N" and tracking the current indent the way label() dips and restores
// it around a block label line.
type Builder struct {
	sb     strings.Builder
	reg    int
	indent int
}

func newBuilder() *Builder { return &Builder{} }

// freg mints the next virtual register name without appending a line;
// every Create-style method below calls it exactly once per emitted value.
func (b *Builder) freg() string {
	n := b.reg
	b.reg++
	return fmt.Sprintf("%%%d", n)
}

func (b *Builder) line(format string, args ...interface{}) {
	b.sb.WriteString(strings.Repeat(" ", b.indent))
	fmt.Fprintf(&b.sb, format, args...)
	b.sb.WriteByte('\n')
}

func (b *Builder) raw(s string) {
	b.sb.WriteString(s)
	b.sb.WriteByte('\n')
}

// String returns the accumulated IR text.
func (b *Builder) String() string { return b.sb.String() }

// Alloca emits `%N = alloca T` and returns the minted pointer register.
func (b *Builder) Alloca(t *types.Type) string {
	r := b.freg()
	b.line("%s = alloca %s", r, t.IR())
	return r
}

// Load emits `%N = load T, ptr src`.
func (b *Builder) Load(t *types.Type, src string) string {
	r := b.freg()
	b.line("%s = load %s, ptr %s", r, t.IR(), src)
	return r
}

// Store emits `store T src, ptr dst`.
func (b *Builder) Store(t *types.Type, src, dst string) {
	b.line("store %s %s, ptr %s", t.IR(), src, dst)
}

// Infix emits `%N = <op> T lhs, rhs` for an LLVM binary opcode (add, sub,
// mul, sdiv, srem, and, or, xor, shl, ashr, lshr, fadd, fsub, fmul, fdiv,
// frem — the caller picks the int/float opcode variant).
func (b *Builder) Infix(op string, t *types.Type, lhs, rhs string) string {
	r := b.freg()
	b.line("%s = %s %s %s, %s", r, op, t.IR(), lhs, rhs)
	return r
}

// Neg emits the integer (`sub 0, x`) or float (`fneg`) negation form.
func (b *Builder) Neg(t *types.Type, rhs string) string {
	if t.IsFloat() {
		r := b.freg()
		b.line("%s = fneg %s %s", r, t.IR(), rhs)
		return r
	}
	zero := b.ConstInt(0)
	return b.Infix("sub", t, zero, rhs)
}

// Compare emits `%N = icmp|fcmp pred T lhs, rhs`.
func (b *Builder) Compare(kind, pred string, t *types.Type, lhs, rhs string) string {
	r := b.freg()
	b.line("%s = %s %s %s %s, %s", r, kind, pred, t.IR(), lhs, rhs)
	return r
}

// Cast emits one of ptrtoint/inttoptr/sitofp/fptosi.
func (b *Builder) Cast(op string, from *types.Type, val string, to *types.Type) string {
	r := b.freg()
	b.line("%s = %s %s %s to %s", r, op, from.IR(), val, to.IR())
	return r
}

// Offset emits `%N = getelementptr inbounds T, ptr base, i64 idx`.
func (b *Builder) Offset(elem *types.Type, base, idx string) string {
	r := b.freg()
	b.line("%s = getelementptr inbounds %s, ptr %s, i64 %s", r, elem.IR(), base, idx)
	return r
}

// BrCond emits a conditional branch to labels a/b.
func (b *Builder) BrCond(cond string, a, bLabel int) {
	b.line("br i1 %s, label %%L%d, label %%L%d", cond, a, bLabel)
}

// Br emits an unconditional branch to label l.
func (b *Builder) Br(l int) {
	b.line("br label %%L%d", l)
}

// Label prints "LN:" and dips the indent for that single line, mirroring
// the teacher's assembler label() which de-indents only the label itself.
func (b *Builder) Label(n int) {
	b.indent -= 4
	b.line("L%d:", n)
	b.indent += 4
}

// Unreachable emits LLVM's `unreachable` terminator, used after a while
// loop or an if/else whose own type is never (spec §4.3.2).
func (b *Builder) Unreachable() {
	b.line("unreachable")
}

// Return emits `ret void` for none/never, else `ret T val`.
func (b *Builder) Return(t *types.Type, val string) {
	if t.IsNone() || t.IsNever() {
		b.line("ret void")
		return
	}
	b.line("ret %s %s", t.IR(), val)
}

// Call emits a `call` instruction. For a none/never result it emits a
// bare `call void @fn(...)` and returns ""; otherwise it mints and
// returns the register holding the call's result.
func (b *Builder) Call(result *types.Type, fn string, argParts []string) string {
	args := strings.Join(argParts, ", ")
	if result.IsNone() || result.IsNever() {
		b.line("call void %s(%s)", fn, args)
		return ""
	}
	r := b.freg()
	b.line("%s = call %s %s(%s)", r, result.IR(), fn, args)
	return r
}

// ConstInt materialises an int literal as a value by alloca+store+load,
// mirroring the teacher's const_ helper: PorkchopLite has no immediate
// operand form for infix/compare, every operand is a loaded SSA value.
func (b *Builder) ConstInt(i int64) string {
	slot := b.Alloca(types.IntType)
	b.line("store i64 %d, ptr %s", i, slot)
	return b.Load(types.IntType, slot)
}

// ConstFloat materialises a float literal the same way as ConstInt.
func (b *Builder) ConstFloat(f float64) string {
	slot := b.Alloca(types.FloatType)
	b.line("store double %s, ptr %s", formatFloat(f), slot)
	return b.Load(types.FloatType, slot)
}

// ConstBool materialises a bool literal the same way as ConstInt.
func (b *Builder) ConstBool(v bool) string {
	slot := b.Alloca(types.BoolType)
	iv := 0
	if v {
		iv = 1
	}
	b.line("store i1 %d, ptr %s", iv, slot)
	return b.Load(types.BoolType, slot)
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%e", f)
}

// EscapeIdent quotes and hex-escapes name if it contains any byte outside
// [A-Za-z0-9_], mirroring the teacher's Assembler::Identifier.
func EscapeIdent(name string) string {
	simple := true
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '_' && !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			simple = false
			break
		}
	}
	if simple {
		return name
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(name); i++ {
		fmt.Fprintf(&sb, "\\%02X", name[i])
	}
	sb.WriteByte('"')
	return sb.String()
}
