package ast

import "porkchoplite/src/source"

// ----------------------------------------------------------------------
// Literal and constant-carrying leaves
// ----------------------------------------------------------------------

type BoolConst struct {
	Meta
	Value bool
}

type CharConst struct {
	Meta
	Value rune
}

// IntConst carries Merged: true when the parser's PREFIX-level fallthrough
// fused an adjacent unary +/- into this literal (see spec §9 / §4.2.1),
// which matters only for diagnostics and for allowing INT64_MIN's
// magnitude to be represented at all.
type IntConst struct {
	Meta
	Value  int64
	Merged bool
}

type FloatConst struct {
	Meta
	Value float64
}

// StringLiteral holds a decoded string constant. The source language has
// no string type; a StringLiteral is typed as *int (a pointer to its
// first element) when it is built.
type StringLiteral struct {
	Meta
	Value string
}

// Sizeof yields the compile-time byte size of a type, or of an
// expression's static type (the expression itself is never evaluated).
type Sizeof struct {
	Meta
	Operand Expr // nil when Sizeof names a type directly rather than an expression
}

// Line is the `__LINE__` keyword: a compile-time int constant equal to
// the 1-based source line it appears on.
type Line struct {
	Meta
}

// ----------------------------------------------------------------------
// Identifiers and the assignable (lvalue) refinement
// ----------------------------------------------------------------------

// Id is a name reference, resolved to a Lookup during parsing.
type Id struct {
	Meta
	Name   string
	Lookup Lookup
}

// Dereference is `*p`.
type Dereference struct {
	Meta
	Operand Expr
}

// Access is `a[i]`.
type Access struct {
	Meta
	Array Expr
	Index Expr
}

// Assignable is implemented by the three node kinds that may appear as an
// lvalue: Id (bound to a non-function value), Dereference, and Access.
// This mirrors the source's AssignableExpr capability as a closed
// refinement sum instead of a separate interface hierarchy.
type Assignable interface {
	Expr
	isAssignable()
}

func (*Id) isAssignable()          {}
func (*Dereference) isAssignable() {}
func (*Access) isAssignable()      {}

// ----------------------------------------------------------------------
// Operators
// ----------------------------------------------------------------------

// PrefixOp enumerates the prefix operators `+ - ! ~`.
type PrefixOp int

const (
	PrefixPos PrefixOp = iota
	PrefixNeg
	PrefixNot
	PrefixInv
)

type Prefix struct {
	Meta
	Op      PrefixOp
	Operand Expr
}

// AddressOf is `&e`; e must be Assignable.
type AddressOf struct {
	Meta
	Operand Assignable
}

// StatefulOp enumerates `++`/`--`.
type StatefulOp int

const (
	StatefulInc StatefulOp = iota
	StatefulDec
)

// StatefulPrefix is pre-increment/decrement; StatefulPostfix is the post
// form. Both operate on an Assignable operand.
type StatefulPrefix struct {
	Meta
	Op      StatefulOp
	Operand Assignable
}

type StatefulPostfix struct {
	Meta
	Op      StatefulOp
	Operand Assignable
}

// InfixOp enumerates the arithmetic/bitwise/shift binary operators.
type InfixOp int

const (
	InfixAdd InfixOp = iota
	InfixSub
	InfixMul
	InfixDiv
	InfixRem
	InfixAnd
	InfixOr
	InfixXor
	InfixShl
	InfixShr  // arithmetic, sign-extending
	InfixUshr // logical, zero-filling
)

type Infix struct {
	Meta
	Op          InfixOp
	Lhs, Rhs    Expr
}

// CompareOp enumerates `== != < <= > >=`.
type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

type Compare struct {
	Meta
	Op       CompareOp
	Lhs, Rhs Expr
}

// LogicalOp enumerates `&& ||`.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

// Logical is lowered at emission time to the same 3-label if-else shape
// as IfElse (spec §4.3.2); the checker requires both operands bool.
type Logical struct {
	Meta
	Op       LogicalOp
	Lhs, Rhs Expr
}

// Assign is both plain (`=`) and compound (`+= -= *= …`) assignment. For
// a compound form Op is set to the corresponding InfixOp and the checker
// lowers it as `lhs = lhs <op> rhs` while emitting only a single
// address-of-lhs (spec §4.4: compound assignment takes one address, not
// two independent reads of it).
type Assign struct {
	Meta
	Target   Assignable
	Compound bool
	Op       InfixOp // valid only when Compound
	Value    Expr
}

// As is an explicit cast `e as T`.
type As struct {
	Meta
	Operand Expr
	Target  *TypeRef
}

// TypeRef is the parsed-but-not-yet-resolved spelling of a type
// annotation (`int`, `*int`, `(int,int):bool`, …); src/frontend resolves
// it to a *types.Type during parsing and caches the result in Resolved.
type TypeRef struct {
	Segment  source.Segment
	Resolved interface{} // *types.Type, filled in by the checker
}

// ----------------------------------------------------------------------
// Calls
// ----------------------------------------------------------------------

// Invoke is an ordinary call `f(a, b, …)`.
type Invoke struct {
	Meta
	Callee Expr
	Args   []Expr
}

// InfixInvoke is the backtick call syntax `` x `f` y `` (spec §4.4),
// parsed at MULTIPLICATION precedence and desugared to an ordinary
// two-argument Invoke of the named function.
type InfixInvoke struct {
	Meta
	Func     string
	Lhs, Rhs Expr
}

// ----------------------------------------------------------------------
// Control flow
// ----------------------------------------------------------------------

// Clause is a braced block `{ e1; e2; … }`; its type and constant value
// (if any) are those of its last expression, or none for an empty clause.
type Clause struct {
	Meta
	Body []Expr
}

type IfElse struct {
	Meta
	Cond       Expr
	Then, Else Expr // Else is nil for a bodyless `if cond { then }`
}

// While shares Hook with every Break lexically inside its body.
type While struct {
	Meta
	Cond Expr
	Body Expr
	Hook *LoopHook
}

// Break targets the innermost enclosing loop's Hook, recorded at parse
// time; it is a parse error for Hook to be nil (break outside a loop).
type Break struct {
	Meta
	Hook *LoopHook
}

type Return struct {
	Meta
	Value Expr // nil for a bare `return`, which yields none
}

// Let is both a local declaration (inside a function body) and a
// top-level global declaration; GlobalScope.Lets only ever holds the
// latter. Name "_" is permitted and discards the value.
type Let struct {
	Meta
	Name        string
	Declared    *TypeRef // nil when the type is to be inferred from Value
	Value       Expr
	Lookup      Lookup // populated once the declaration is bound into scope
}
