// Package ast defines the tagged expression tree produced by src/frontend's
// combined parse/typecheck pass, together with the scope machinery
// (LocalContext, GlobalScope) the checker threads through that pass.
//
// Every concrete node embeds Meta, which carries the node's source span
// and lazily-computed type/constant caches; there is no separate
// virtual-dispatch hierarchy; Expr is a thin marker interface and behavior
// differences are handled by type-switching in src/frontend and src/emit.
package ast

import (
	"porkchoplite/src/source"
	"porkchoplite/src/types"
)

// Expr is implemented by every expression node. Meta returns the node's
// shared bookkeeping record so callers can read/populate its type and
// constant caches without a type switch.
type Expr interface {
	Meta() *Meta
	Span() source.Segment
}

// ConstState is the tri-state const cache described by the design notes:
// a node's compile-time value is either not yet attempted, evaluated to a
// concrete Value, or known not to be a compile-time constant.
type ConstState int

const (
	Unevaluated ConstState = iota
	Constant
	NotConstant
)

// Value is the fixed-width scalar representation of a compile-time
// constant: a bool, int, or float packed into one slot, selected by the
// node's own static type at the read site. There is no constant
// representation for pointer or function values; those are never
// constant-foldable.
type Value struct {
	Bool  bool
	Int   int64
	Float float64
}

// Meta is embedded by every concrete Expr. typ and constState/constVal are
// set by the frontend's constructors when the node is built; Reg
// holds the textual SSA value name the emitter minted for this node's
// result, set exactly once during emission.
type Meta struct {
	segment    source.Segment
	typ        *types.Type
	constState ConstState
	constVal   Value
	Reg        string
}

// NewMeta builds a Meta for a node spanning seg.
func NewMeta(seg source.Segment) Meta {
	return Meta{segment: seg}
}

func (m *Meta) Meta() *Meta          { return m }
func (m *Meta) Span() source.Segment { return m.segment }

// Type returns the stored type, or nil if SetType has not been called.
func (m *Meta) Type() *types.Type { return m.typ }

// SetType stores t as this node's type. Called by the node's constructor
// in src/frontend.
func (m *Meta) SetType(t *types.Type) { m.typ = t }

// ConstState reports the memoization state of the constant cache.
func (m *Meta) ConstState() ConstState { return m.constState }

// ConstValue returns the memoized constant value; valid only when
// ConstState() == Constant.
func (m *Meta) ConstValue() Value { return m.constVal }

// SetConstant memoizes v as this node's compile-time value.
func (m *Meta) SetConstant(v Value) {
	m.constState = Constant
	m.constVal = v
}

// SetNotConstant memoizes that this node has no compile-time value.
func (m *Meta) SetNotConstant() {
	m.constState = NotConstant
}

// TryConst returns the node's memoized constant value and true when it has
// already been evaluated to Constant; used by src/frontend's mk*
// constructors to propagate constant-folding through an expression tree.
func (m *Meta) TryConst() (Value, bool) {
	return m.constVal, m.constState == Constant
}
