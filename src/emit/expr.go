package emit

import (
	"fmt"

	"porkchoplite/src/ast"
	"porkchoplite/src/diag"
	"porkchoplite/src/types"
)

// emit walks e and returns the SSA register carrying its value, lowering
// every node kind per spec §4.3.1/§4.3.2. Nodes whose static type is none
// or never return "" — callers that need a value must not be handed one
// of those (the checker already rejects any program shape that would).
func (fe *fnEmitter) emit(e ast.Expr) (string, error) {
	switch n := e.(type) {
	case *ast.BoolConst:
		return fe.b.ConstBool(n.Value), nil
	case *ast.CharConst:
		return fe.b.ConstInt(int64(n.Value)), nil
	case *ast.IntConst:
		return fe.b.ConstInt(n.Value), nil
	case *ast.FloatConst:
		return fe.b.ConstFloat(n.Value), nil
	case *ast.Line:
		return fe.b.ConstInt(int64(n.Span().Line1)), nil
	case *ast.Sizeof:
		return fe.emitSizeof(n)
	case *ast.StringLiteral:
		return fe.m.internString(fe.b, n.Value), nil

	case *ast.Id:
		return fe.emitIdLoad(n)
	case *ast.Dereference:
		addr, err := fe.emit(n.Operand)
		if err != nil {
			return "", err
		}
		return fe.b.Load(n.Meta().Type(), addr), nil
	case *ast.Access:
		addr, err := fe.addressOf(n)
		if err != nil {
			return "", err
		}
		return fe.b.Load(n.Meta().Type(), addr), nil

	case *ast.Prefix:
		return fe.emitPrefix(n)
	case *ast.AddressOf:
		return fe.addressOf(n.Operand)
	case *ast.StatefulPrefix:
		return fe.emitStateful(n.Operand, n.Op, true)
	case *ast.StatefulPostfix:
		return fe.emitStateful(n.Operand, n.Op, false)

	case *ast.Infix:
		return fe.emitInfix(n)
	case *ast.Compare:
		return fe.emitCompare(n)
	case *ast.Logical:
		return fe.emitLogical(n)
	case *ast.Assign:
		return fe.emitAssign(n)
	case *ast.As:
		return fe.emitAs(n)

	case *ast.Invoke:
		return fe.emitInvoke(n.Callee, n.Args, n.Meta().Type())
	case *ast.InfixInvoke:
		callee := &ast.Id{Name: n.Func}
		t, _ := fe.m.global.Lookup(n.Func)
		callee.Meta = ast.NewMeta(n.Span())
		callee.Meta.SetType(t)
		callee.Lookup = ast.Lookup{Type: t, Scope: ast.ScopeGlobal}
		return fe.emitInvoke(callee, []ast.Expr{n.Lhs, n.Rhs}, n.Meta().Type())

	case *ast.Clause:
		return fe.emitClause(n)
	case *ast.IfElse:
		return fe.emitIfElse(n)
	case *ast.While:
		return fe.emitWhile(n)
	case *ast.Break:
		return fe.emitBreak(n)
	case *ast.Return:
		return fe.emitReturn(n)
	case *ast.Let:
		return fe.emitLet(n)
	}
	return "", diag.New(diag.Internal, e.Span(), "emit: unhandled node %T", e)
}

func (fe *fnEmitter) emitSizeof(n *ast.Sizeof) (string, error) {
	// The parser stores the size of the operand or of the named type as
	// this node's constant, for both the sizeof(T) and sizeof(expr) forms.
	v, _ := n.Meta().TryConst()
	return fe.b.ConstInt(v.Int), nil
}

// emitIdLoad resolves a name reference to a value. A global function
// symbol is never loaded through a pointer: its "value" is its escaped
// name used directly as a callee operand. Everything else routes through
// addressOf then Load, mirroring the source's IdExpr::walkBytecode.
func (fe *fnEmitter) emitIdLoad(n *ast.Id) (string, error) {
	if _, _, ok := n.Meta().Type().IsFunction(); ok && n.Lookup.Scope == ast.ScopeGlobal {
		return "@" + EscapeIdent(n.Name), nil
	}
	addr, err := fe.addressOf(n)
	if err != nil {
		return "", err
	}
	return fe.b.Load(n.Meta().Type(), addr), nil
}

// addressOf computes the pointer register an Assignable node's storage
// lives at, mirroring AssignableExpr::addressOf's three-way scope switch
// (NONE is rejected by the checker long before emission ever sees it).
func (fe *fnEmitter) addressOf(e ast.Expr) (string, error) {
	switch n := e.(type) {
	case *ast.Id:
		switch n.Lookup.Scope {
		case ast.ScopeLocal:
			return fe.slots[n.Lookup.Index], nil
		case ast.ScopeGlobal:
			return "@" + EscapeIdent(n.Name), nil
		default:
			return "", diag.New(diag.Internal, n.Span(), "address of wildcard binding")
		}
	case *ast.Dereference:
		return fe.emit(n.Operand)
	case *ast.Access:
		base, err := fe.emit(n.Array)
		if err != nil {
			return "", err
		}
		idx, err := fe.emit(n.Index)
		if err != nil {
			return "", err
		}
		return fe.b.Offset(n.Meta().Type(), base, idx), nil
	}
	return "", diag.New(diag.Internal, e.Span(), "addressOf: not assignable")
}

func (fe *fnEmitter) emitPrefix(n *ast.Prefix) (string, error) {
	rhs, err := fe.emit(n.Operand)
	if err != nil {
		return "", err
	}
	t := n.Meta().Type()
	switch n.Op {
	case ast.PrefixPos:
		return rhs, nil
	case ast.PrefixNeg:
		return fe.b.Neg(t, rhs), nil
	case ast.PrefixNot:
		one := fe.b.ConstBool(true)
		return fe.b.Infix("xor", t, rhs, one), nil
	case ast.PrefixInv:
		allOnes := fe.b.ConstInt(-1)
		return fe.b.Infix("xor", t, rhs, allOnes), nil
	}
	return "", diag.New(diag.Internal, n.Span(), "emitPrefix: unhandled op")
}

// emitStateful lowers `++x`/`--x`/`x++`/`x--` as load, compute updated
// value, store, then yield either the updated value (prefix) or the
// original one (postfix) — matching spec §4.3.2's single-address-of rule.
func (fe *fnEmitter) emitStateful(operand ast.Assignable, op ast.StatefulOp, prefix bool) (string, error) {
	addr, err := fe.addressOf(operand)
	if err != nil {
		return "", err
	}
	t := operand.Meta().Type()
	old := fe.b.Load(t, addr)
	var updated string
	if elem, isPtr := t.IsPointer(); isPtr {
		delta := int64(1)
		if op == ast.StatefulDec {
			delta = -1
		}
		updated = fe.b.Offset(elem, old, fe.b.ConstInt(delta))
	} else {
		one := fe.b.ConstInt(1)
		opName := "add"
		if op == ast.StatefulDec {
			opName = "sub"
		}
		updated = fe.b.Infix(opName, t, old, one)
	}
	fe.b.Store(t, updated, addr)
	if prefix {
		return updated, nil
	}
	return old, nil
}

// emitInfix lowers pointer arithmetic to getelementptr/difference-by-size
// and every other arithmetic/bitwise operator to Builder.Infix directly.
func (fe *fnEmitter) emitInfix(n *ast.Infix) (string, error) {
	lt, rt := n.Lhs.Meta().Type(), n.Rhs.Meta().Type()
	lhs, err := fe.emit(n.Lhs)
	if err != nil {
		return "", err
	}
	rhs, err := fe.emit(n.Rhs)
	if err != nil {
		return "", err
	}
	if elem, ok := lt.IsPointer(); ok {
		switch n.Op {
		case ast.InfixAdd:
			return fe.b.Offset(elem, lhs, rhs), nil
		case ast.InfixSub:
			if rt.IsInt() {
				neg := fe.b.Infix("sub", types.IntType, fe.b.ConstInt(0), rhs)
				return fe.b.Offset(elem, lhs, neg), nil
			}
			// pointer - pointer: difference in elements, not bytes.
			li := fe.b.Cast("ptrtoint", lt, lhs, types.IntType)
			ri := fe.b.Cast("ptrtoint", rt, rhs, types.IntType)
			diffBytes := fe.b.Infix("sub", types.IntType, li, ri)
			size := fe.b.ConstInt(int64(elem.Size()))
			return fe.b.Infix("sdiv", types.IntType, diffBytes, size), nil
		}
	}
	if _, ok := rt.IsPointer(); ok && n.Op == ast.InfixAdd {
		elem, _ := rt.IsPointer()
		return fe.b.Offset(elem, rhs, lhs), nil
	}
	return fe.b.Infix(infixOpcode(n.Op, lt.IsFloat()), n.Meta().Type(), lhs, rhs), nil
}

func infixOpcode(op ast.InfixOp, float bool) string {
	if float {
		switch op {
		case ast.InfixAdd:
			return "fadd"
		case ast.InfixSub:
			return "fsub"
		case ast.InfixMul:
			return "fmul"
		case ast.InfixDiv:
			return "fdiv"
		case ast.InfixRem:
			return "frem"
		}
	}
	switch op {
	case ast.InfixAdd:
		return "add"
	case ast.InfixSub:
		return "sub"
	case ast.InfixMul:
		return "mul"
	case ast.InfixDiv:
		return "sdiv"
	case ast.InfixRem:
		return "srem"
	case ast.InfixAnd:
		return "and"
	case ast.InfixOr:
		return "or"
	case ast.InfixXor:
		return "xor"
	case ast.InfixShl:
		return "shl"
	case ast.InfixShr:
		return "ashr"
	case ast.InfixUshr:
		return "lshr"
	}
	return "add"
}

func (fe *fnEmitter) emitCompare(n *ast.Compare) (string, error) {
	lt := n.Lhs.Meta().Type()
	lhs, err := fe.emit(n.Lhs)
	if err != nil {
		return "", err
	}
	rhs, err := fe.emit(n.Rhs)
	if err != nil {
		return "", err
	}
	kind, pred := "icmp", comparePredInt(n.Op)
	if lt.IsFloat() {
		kind, pred = "fcmp", comparePredFloat(n.Op)
	}
	return fe.b.Compare(kind, pred, lt, lhs, rhs), nil
}

func comparePredInt(op ast.CompareOp) string {
	switch op {
	case ast.CmpEq:
		return "eq"
	case ast.CmpNe:
		return "ne"
	case ast.CmpLt:
		return "slt"
	case ast.CmpLe:
		return "sle"
	case ast.CmpGt:
		return "sgt"
	default:
		return "sge"
	}
}

func comparePredFloat(op ast.CompareOp) string {
	switch op {
	case ast.CmpEq:
		return "oeq"
	case ast.CmpNe:
		return "one"
	case ast.CmpLt:
		return "olt"
	case ast.CmpLe:
		return "ole"
	case ast.CmpGt:
		return "ogt"
	default:
		return "oge"
	}
}

// emitLogical lowers && and || to the same 3-label shape as an if/else,
// short-circuiting the right operand (spec §4.3.2).
func (fe *fnEmitter) emitLogical(n *ast.Logical) (string, error) {
	lhs, err := fe.emit(n.Lhs)
	if err != nil {
		return "", err
	}
	a, b, c := fe.nextLabel(), fe.nextLabel(), fe.nextLabel()
	slot := fe.b.Alloca(types.BoolType)
	if n.Op == ast.LogicalAnd {
		fe.b.BrCond(lhs, a, c)
		fe.b.Label(a)
		rhs, err := fe.emit(n.Rhs)
		if err != nil {
			return "", err
		}
		fe.b.Store(types.BoolType, rhs, slot)
		fe.b.Br(b)
		fe.b.Label(c)
		fe.b.Store(types.BoolType, fe.b.ConstBool(false), slot)
		fe.b.Br(b)
	} else {
		fe.b.BrCond(lhs, c, a)
		fe.b.Label(a)
		rhs, err := fe.emit(n.Rhs)
		if err != nil {
			return "", err
		}
		fe.b.Store(types.BoolType, rhs, slot)
		fe.b.Br(b)
		fe.b.Label(c)
		fe.b.Store(types.BoolType, fe.b.ConstBool(true), slot)
		fe.b.Br(b)
	}
	fe.b.Label(b)
	return fe.b.Load(types.BoolType, slot), nil
}

func (fe *fnEmitter) emitAssign(n *ast.Assign) (string, error) {
	addr, err := fe.addressOf(n.Target)
	if err != nil {
		return "", err
	}
	rhs, err := fe.emit(n.Value)
	if err != nil {
		return "", err
	}
	tt := n.Target.Meta().Type()
	if n.Compound {
		old := fe.b.Load(tt, addr)
		if elem, ok := tt.IsPointer(); ok {
			rhs = fe.b.Offset(elem, old, rhs)
		} else {
			rhs = fe.b.Infix(infixOpcode(n.Op, tt.IsFloat()), tt, old, rhs)
		}
	}
	fe.b.Store(tt, rhs, addr)
	return rhs, nil
}

func (fe *fnEmitter) emitAs(n *ast.As) (string, error) {
	from := n.Operand.Meta().Type()
	to := n.Meta().Type()
	val, err := fe.emit(n.Operand)
	if err != nil {
		return "", err
	}
	switch {
	case from.Equals(to):
		return val, nil
	case from.IsInt() && to.IsFloat():
		return fe.b.Cast("sitofp", from, val, to), nil
	case from.IsFloat() && to.IsInt():
		return fe.b.Cast("fptosi", from, val, to), nil
	default:
		_, fromPtr := from.IsPointer()
		_, toPtr := to.IsPointer()
		switch {
		case fromPtr && to.IsInt():
			return fe.b.Cast("ptrtoint", from, val, to), nil
		case from.IsInt() && toPtr:
			return fe.b.Cast("inttoptr", from, val, to), nil
		default:
			// ptr-to-ptr and none-target casts are no-ops at the IR level:
			// every pointer and function value already lowers to `ptr`.
			return val, nil
		}
	}
}

func (fe *fnEmitter) emitInvoke(callee ast.Expr, args []ast.Expr, result *types.Type) (string, error) {
	fn, err := fe.emit(callee)
	if err != nil {
		return "", err
	}
	params, _, _ := callee.Meta().Type().IsFunction()
	var argRegs []string
	for _, a := range args {
		r, err := fe.emit(a)
		if err != nil {
			return "", err
		}
		argRegs = append(argRegs, r)
	}
	var parts []string
	for i, r := range argRegs {
		parts = append(parts, fmt.Sprintf("%s %s", params[i].IR(), r))
	}
	return fe.b.Call(result, fn, parts), nil
}

func (fe *fnEmitter) emitClause(n *ast.Clause) (string, error) {
	if fe.m.debug {
		outer := fe.dbgScope
		seg := n.Span()
		fe.dbgScope = fe.m.dbg.lexicalBlock(outer, seg.Line1, seg.Column1)
		defer func() { fe.dbgScope = outer }()
	}
	var last string
	for _, e := range n.Body {
		v, err := fe.emit(e)
		if err != nil {
			return "", err
		}
		last = v
	}
	if n.Meta().Type().IsNone() || n.Meta().Type().IsNever() {
		return "", nil
	}
	return last, nil
}

// emitIfElse implements the 3-label algorithm: a merge-type result slot is
// allocated only when the merged type isn't none, each arm conditionally
// stores into it and branches to the join label unless that arm's own
// type is never, and the join label itself is omitted when the whole
// IfElse is never-typed (spec §4.3.2).
func (fe *fnEmitter) emitIfElse(n *ast.IfElse) (string, error) {
	cond, err := fe.emit(n.Cond)
	if err != nil {
		return "", err
	}
	a, b, c := fe.nextLabel(), fe.nextLabel(), fe.nextLabel()
	mt := n.Meta().Type()
	var slot string
	hasSlot := !mt.IsNone() && !mt.IsNever()
	if hasSlot {
		slot = fe.b.Alloca(mt)
	}
	fe.b.BrCond(cond, a, b)

	fe.b.Label(a)
	thenVal, err := fe.emit(n.Then)
	if err != nil {
		return "", err
	}
	if !n.Then.Meta().Type().IsNever() {
		if hasSlot {
			fe.b.Store(mt, thenVal, slot)
		}
		fe.b.Br(c)
	}

	fe.b.Label(b)
	if n.Else != nil {
		elseVal, err := fe.emit(n.Else)
		if err != nil {
			return "", err
		}
		if !n.Else.Meta().Type().IsNever() {
			if hasSlot {
				fe.b.Store(mt, elseVal, slot)
			}
			fe.b.Br(c)
		}
	} else {
		fe.b.Br(c)
	}

	if mt.IsNever() {
		fe.b.Unreachable()
		return "", nil
	}
	fe.b.Label(c)
	if !hasSlot {
		return "", nil
	}
	return fe.b.Load(mt, slot), nil
}

// emitWhile implements the 3-label loop algorithm: header(A) re-tests the
// condition, body(B) lowers the loop body and branches back to A, exit(C)
// is where the loop's Breaks target (spec §4.3.2, §9).
func (fe *fnEmitter) emitWhile(n *ast.While) (string, error) {
	a, b, c := fe.nextLabel(), fe.nextLabel(), fe.nextLabel()
	n.Hook.Breakpoint = fmt.Sprintf("L%d", c)

	fe.b.Br(a)
	fe.b.Label(a)
	cond, err := fe.emit(n.Cond)
	if err != nil {
		return "", err
	}
	fe.b.BrCond(cond, b, c)

	fe.b.Label(b)
	if _, err := fe.emit(n.Body); err != nil {
		return "", err
	}
	if !n.Body.Meta().Type().IsNever() {
		fe.b.Br(a)
	}

	fe.b.Label(c)
	if n.Meta().Type().IsNever() {
		fe.b.Unreachable()
	}
	return "", nil
}

func (fe *fnEmitter) emitBreak(n *ast.Break) (string, error) {
	var label int
	fmt.Sscanf(n.Hook.Breakpoint, "L%d", &label)
	fe.b.Br(label)
	return "", nil
}

func (fe *fnEmitter) emitReturn(n *ast.Return) (string, error) {
	_, result, _ := fe.decl.Params.Type.IsFunction()
	if n.Value == nil {
		fe.b.Return(result, "")
		return "", nil
	}
	v, err := fe.emit(n.Value)
	if err != nil {
		return "", err
	}
	fe.b.Return(n.Value.Meta().Type(), v)
	return "", nil
}

func (fe *fnEmitter) emitLet(n *ast.Let) (string, error) {
	v, err := fe.emit(n.Value)
	if err != nil {
		return "", err
	}
	if n.Lookup.Scope == ast.ScopeLocal {
		fe.b.Store(n.Value.Meta().Type(), v, fe.slots[n.Lookup.Index])
	}
	return "", nil
}
