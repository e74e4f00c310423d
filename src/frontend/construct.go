package frontend

import (
	"math"

	"porkchoplite/src/ast"
	"porkchoplite/src/diag"
	"porkchoplite/src/source"
	"porkchoplite/src/types"
)

// ---------------------------------------------------------------------
// Literal leaves
// ---------------------------------------------------------------------

func (p *Parser) mkBoolConst(tok source.Token, v bool) *ast.BoolConst {
	n := &ast.BoolConst{Value: v}
	n.Meta = ast.NewMeta(tok.Segment())
	n.Meta.SetType(types.BoolType)
	n.Meta.SetConstant(ast.Value{Bool: v})
	return n
}

func (p *Parser) mkCharConst(tok source.Token) (*ast.CharConst, error) {
	r, ok := decodeCharLiteral(p.text(tok))
	if !ok {
		return nil, diag.New(diag.Tokenization, tok.Segment(), "malformed character literal")
	}
	n := &ast.CharConst{Value: r}
	n.Meta = ast.NewMeta(tok.Segment())
	n.Meta.SetType(types.IntType)
	n.Meta.SetConstant(ast.Value{Int: int64(r)})
	return n, nil
}

func (p *Parser) mkIntConst(tok source.Token) (*ast.IntConst, error) {
	v, ok := parseIntLiteral(p.text(tok), tok.Kind)
	if !ok {
		return nil, diag.New(diag.Tokenization, tok.Segment(), "malformed integer literal")
	}
	n := &ast.IntConst{Value: v}
	n.Meta = ast.NewMeta(tok.Segment())
	n.Meta.SetType(types.IntType)
	n.Meta.SetConstant(ast.Value{Int: v})
	return n, nil
}

func (p *Parser) mkLineConst(tok source.Token) *ast.Line {
	n := &ast.Line{}
	n.Meta = ast.NewMeta(tok.Segment())
	n.Meta.SetType(types.IntType)
	n.Meta.SetConstant(ast.Value{Int: int64(tok.Line)})
	return n
}

func (p *Parser) mkFloatConst(tok source.Token) (*ast.FloatConst, error) {
	v, ok := parseFloatLiteral(p.text(tok))
	if !ok {
		return nil, diag.New(diag.Tokenization, tok.Segment(), "malformed floating point literal")
	}
	return p.mkFloatLiteral(tok, v), nil
}

func (p *Parser) mkFloatLiteral(tok source.Token, v float64) *ast.FloatConst {
	n := &ast.FloatConst{Value: v}
	n.Meta = ast.NewMeta(tok.Segment())
	n.Meta.SetType(types.FloatType)
	n.Meta.SetConstant(ast.Value{Float: v})
	return n
}

func (p *Parser) mkStringLiteral(tok source.Token) (*ast.StringLiteral, error) {
	s, ok := decodeStringLiteral(p.text(tok))
	if !ok {
		return nil, diag.New(diag.Tokenization, tok.Segment(), "malformed string literal")
	}
	n := &ast.StringLiteral{Value: s}
	n.Meta = ast.NewMeta(tok.Segment())
	n.Meta.SetType(types.NewPointer(types.IntType))
	n.Meta.SetNotConstant()
	return n, nil
}

// ---------------------------------------------------------------------
// Prefix / address-of / stateful
// ---------------------------------------------------------------------

func (p *Parser) mkPrefix(tok source.Token, op ast.PrefixOp, rhs ast.Expr) (*ast.Prefix, error) {
	t := rhs.Meta().Type()
	var result *types.Type
	switch op {
	case ast.PrefixPos, ast.PrefixNeg:
		if !t.IsArithmetic() {
			return nil, diag.New(diag.Type, rhs.Span(), "operand of unary +/- must be int or float, found %s", t)
		}
		result = t
	case ast.PrefixNot:
		if !t.IsBool() {
			return nil, diag.New(diag.Type, rhs.Span(), "operand of ! must be bool, found %s", t)
		}
		result = types.BoolType
	case ast.PrefixInv:
		if !t.IsInt() {
			return nil, diag.New(diag.Type, rhs.Span(), "operand of ~ must be int, found %s", t)
		}
		result = types.IntType
	}
	n := &ast.Prefix{Op: op, Operand: rhs}
	n.Meta = ast.NewMeta(source.Range(tok.Segment(), rhs.Span()))
	n.Meta.SetType(result)
	if v, ok := rhs.Meta().TryConst(); ok {
		switch op {
		case ast.PrefixPos:
			n.Meta.SetConstant(v)
		case ast.PrefixNeg:
			if t.IsInt() {
				n.Meta.SetConstant(ast.Value{Int: -v.Int})
			} else {
				n.Meta.SetConstant(ast.Value{Float: -v.Float})
			}
		case ast.PrefixNot:
			n.Meta.SetConstant(ast.Value{Bool: !v.Bool})
		case ast.PrefixInv:
			n.Meta.SetConstant(ast.Value{Int: ^v.Int})
		}
	} else {
		n.Meta.SetNotConstant()
	}
	return n, nil
}

func (p *Parser) mkDereference(tok source.Token, rhs ast.Expr) (*ast.Dereference, error) {
	elem, ok := rhs.Meta().Type().IsPointer()
	if !ok {
		return nil, diag.New(diag.Type, rhs.Span(), "operand of unary * must be a pointer, found %s", rhs.Meta().Type())
	}
	if elem.IsNone() {
		return nil, diag.New(diag.Type, rhs.Span(), "cannot dereference *none")
	}
	n := &ast.Dereference{Operand: rhs}
	n.Meta = ast.NewMeta(source.Range(tok.Segment(), rhs.Span()))
	n.Meta.SetType(elem)
	n.Meta.SetNotConstant()
	return n, nil
}

func (p *Parser) mkAddressOf(tok source.Token, rhs ast.Assignable) (*ast.AddressOf, error) {
	n := &ast.AddressOf{Operand: rhs}
	n.Meta = ast.NewMeta(source.Range(tok.Segment(), rhs.Span()))
	n.Meta.SetType(types.NewPointer(rhs.Meta().Type()))
	n.Meta.SetNotConstant()
	return n, nil
}

func (p *Parser) mkStatefulPrefix(tok source.Token, op ast.StatefulOp, rhs ast.Assignable) (*ast.StatefulPrefix, error) {
	t := rhs.Meta().Type()
	if !t.IsInt() {
		if _, ok := t.IsPointer(); !ok {
			return nil, diag.New(diag.Type, rhs.Span(), "operand of ++/-- must be int or pointer, found %s", t)
		}
	}
	n := &ast.StatefulPrefix{Op: op, Operand: rhs}
	n.Meta = ast.NewMeta(source.Range(tok.Segment(), rhs.Span()))
	n.Meta.SetType(t)
	n.Meta.SetNotConstant()
	return n, nil
}

func (p *Parser) mkStatefulPostfix(tok source.Token, op ast.StatefulOp, lhs ast.Assignable) (*ast.StatefulPostfix, error) {
	t := lhs.Meta().Type()
	if !t.IsInt() {
		if _, ok := t.IsPointer(); !ok {
			return nil, diag.New(diag.Type, lhs.Span(), "operand of ++/-- must be int or pointer, found %s", t)
		}
	}
	n := &ast.StatefulPostfix{Op: op, Operand: lhs}
	n.Meta = ast.NewMeta(source.Range(lhs.Span(), tok.Segment()))
	n.Meta.SetType(t)
	n.Meta.SetNotConstant()
	return n, nil
}

// ---------------------------------------------------------------------
// Binary operators
// ---------------------------------------------------------------------

func (p *Parser) mkInfix(op ast.InfixOp, lhs, rhs ast.Expr) (ast.Expr, error) {
	lt, rt := lhs.Meta().Type(), rhs.Meta().Type()
	result, err := inferInfixType(op, lt, rt, lhs.Span(), rhs.Span())
	if err != nil {
		return nil, err
	}
	n := &ast.Infix{Op: op, Lhs: lhs, Rhs: rhs}
	n.Meta = ast.NewMeta(source.Range(lhs.Span(), rhs.Span()))
	n.Meta.SetType(result)
	if lv, ok1 := lhs.Meta().TryConst(); ok1 {
		if rv, ok2 := rhs.Meta().TryConst(); ok2 {
			v, err := evalInfix(op, lt, lv, rv, n.Span())
			if err != nil {
				return nil, err
			}
			n.Meta.SetConstant(v)
			return n, nil
		}
	}
	n.Meta.SetNotConstant()
	return n, nil
}

// inferInfixType implements the operator table of spec §4.2.1, including
// pointer arithmetic: ptr+int, int+ptr and ptr-int yield the pointer
// type; ptr-ptr (same pointee) yields int (scaled at emission by the
// pointee's size); none* is never a valid pointer arithmetic operand.
func inferInfixType(op ast.InfixOp, lt, rt *types.Type, lseg, rseg source.Segment) (*types.Type, error) {
	switch op {
	case ast.InfixAdd, ast.InfixSub:
		if elem, ok := lt.IsPointer(); ok {
			if op == ast.InfixAdd && rt.IsInt() {
				return lt, nil
			}
			if op == ast.InfixSub {
				if rt.IsInt() {
					return lt, nil
				}
				if relem, ok2 := rt.IsPointer(); ok2 && elem.Equals(relem) {
					return types.IntType, nil
				}
			}
			return nil, diag.New(diag.Type, rseg, "invalid right operand %s for pointer arithmetic", rt)
		}
		if op == ast.InfixAdd {
			if elem, ok := rt.IsPointer(); ok && lt.IsInt() {
				return types.NewPointer(elem), nil
			}
		}
		if lt.IsArithmetic() && lt.Equals(rt) {
			return lt, nil
		}
		return nil, diag.New(diag.Type, source.Range(lseg, rseg), "operands of %s must share an arithmetic type, found %s and %s", infixSymbol(op), lt, rt)
	case ast.InfixMul, ast.InfixDiv, ast.InfixRem:
		if lt.IsArithmetic() && lt.Equals(rt) {
			return lt, nil
		}
		return nil, diag.New(diag.Type, source.Range(lseg, rseg), "operands of %s must share an arithmetic type, found %s and %s", infixSymbol(op), lt, rt)
	case ast.InfixAnd, ast.InfixOr, ast.InfixXor, ast.InfixShl, ast.InfixShr, ast.InfixUshr:
		if !lt.IsInt() || !rt.IsInt() {
			return nil, diag.New(diag.Type, source.Range(lseg, rseg), "operands of %s must both be int, found %s and %s", infixSymbol(op), lt, rt)
		}
		return types.IntType, nil
	default:
		return nil, diag.New(diag.Internal, source.Range(lseg, rseg), "unhandled infix operator")
	}
}

func infixSymbol(op ast.InfixOp) string {
	switch op {
	case ast.InfixAdd:
		return "+"
	case ast.InfixSub:
		return "-"
	case ast.InfixMul:
		return "*"
	case ast.InfixDiv:
		return "/"
	case ast.InfixRem:
		return "%"
	case ast.InfixAnd:
		return "&"
	case ast.InfixOr:
		return "|"
	case ast.InfixXor:
		return "^"
	case ast.InfixShl:
		return "<<"
	case ast.InfixShr:
		return ">>"
	case ast.InfixUshr:
		return ">>>"
	default:
		return "?"
	}
}

func evalInfix(op ast.InfixOp, lt *types.Type, lv, rv ast.Value, seg source.Segment) (ast.Value, error) {
	if lt.IsFloat() {
		switch op {
		case ast.InfixAdd:
			return ast.Value{Float: lv.Float + rv.Float}, nil
		case ast.InfixSub:
			return ast.Value{Float: lv.Float - rv.Float}, nil
		case ast.InfixMul:
			return ast.Value{Float: lv.Float * rv.Float}, nil
		case ast.InfixDiv:
			return ast.Value{Float: lv.Float / rv.Float}, nil
		case ast.InfixRem:
			return ast.Value{Float: math.Mod(lv.Float, rv.Float)}, nil
		}
	}
	switch op {
	case ast.InfixAdd:
		return ast.Value{Int: lv.Int + rv.Int}, nil
	case ast.InfixSub:
		return ast.Value{Int: lv.Int - rv.Int}, nil
	case ast.InfixMul:
		return ast.Value{Int: lv.Int * rv.Int}, nil
	case ast.InfixDiv:
		if rv.Int == 0 {
			return ast.Value{}, diag.New(diag.Semantic, seg, "division by zero in constant expression")
		}
		return ast.Value{Int: lv.Int / rv.Int}, nil
	case ast.InfixRem:
		if rv.Int == 0 {
			return ast.Value{}, diag.New(diag.Semantic, seg, "modulus by zero in constant expression")
		}
		return ast.Value{Int: lv.Int % rv.Int}, nil
	case ast.InfixAnd:
		return ast.Value{Int: lv.Int & rv.Int}, nil
	case ast.InfixOr:
		return ast.Value{Int: lv.Int | rv.Int}, nil
	case ast.InfixXor:
		return ast.Value{Int: lv.Int ^ rv.Int}, nil
	case ast.InfixShl:
		return ast.Value{Int: lv.Int << uint64(rv.Int)}, nil
	case ast.InfixShr:
		return ast.Value{Int: lv.Int >> uint64(rv.Int)}, nil
	case ast.InfixUshr:
		return ast.Value{Int: int64(uint64(lv.Int) >> uint64(rv.Int))}, nil
	}
	return ast.Value{}, diag.New(diag.Internal, seg, "unhandled constant infix operator")
}

func (p *Parser) mkCompare(op ast.CompareOp, lhs, rhs ast.Expr) (*ast.Compare, error) {
	lt, rt := lhs.Meta().Type(), rhs.Meta().Type()
	switch op {
	case ast.CmpEq, ast.CmpNe:
		if !lt.Equals(rt) {
			return nil, diag.New(diag.Type, source.Range(lhs.Span(), rhs.Span()), "operands of equality must share a type, found %s and %s", lt, rt)
		}
	default:
		_, lp := lt.IsPointer()
		_, rp := rt.IsPointer()
		ok := (lt.IsArithmetic() && rt.IsArithmetic() && lt.Equals(rt)) || (lp && rp && lt.Equals(rt))
		if !ok {
			return nil, diag.New(diag.Type, source.Range(lhs.Span(), rhs.Span()), "operands of comparison must be a shared arithmetic or pointer type, found %s and %s", lt, rt)
		}
	}
	n := &ast.Compare{Op: op, Lhs: lhs, Rhs: rhs}
	n.Meta = ast.NewMeta(source.Range(lhs.Span(), rhs.Span()))
	n.Meta.SetType(types.BoolType)
	if lt.IsNone() && rt.IsNone() {
		n.Meta.SetConstant(ast.Value{Bool: op == ast.CmpEq})
		return n, nil
	}
	if lv, ok1 := lhs.Meta().TryConst(); ok1 {
		if rv, ok2 := rhs.Meta().TryConst(); ok2 {
			n.Meta.SetConstant(ast.Value{Bool: evalCompare(op, lt, lv, rv)})
			return n, nil
		}
	}
	n.Meta.SetNotConstant()
	return n, nil
}

func evalCompare(op ast.CompareOp, lt *types.Type, lv, rv ast.Value) bool {
	if lt.IsBool() {
		switch op {
		case ast.CmpEq:
			return lv.Bool == rv.Bool
		case ast.CmpNe:
			return lv.Bool != rv.Bool
		}
		return false
	}
	if lt.IsFloat() {
		switch op {
		case ast.CmpEq:
			return lv.Float == rv.Float
		case ast.CmpNe:
			return lv.Float != rv.Float
		case ast.CmpLt:
			return lv.Float < rv.Float
		case ast.CmpLe:
			return lv.Float <= rv.Float
		case ast.CmpGt:
			return lv.Float > rv.Float
		case ast.CmpGe:
			return lv.Float >= rv.Float
		}
	}
	switch op {
	case ast.CmpEq:
		return lv.Int == rv.Int
	case ast.CmpNe:
		return lv.Int != rv.Int
	case ast.CmpLt:
		return lv.Int < rv.Int
	case ast.CmpLe:
		return lv.Int <= rv.Int
	case ast.CmpGt:
		return lv.Int > rv.Int
	case ast.CmpGe:
		return lv.Int >= rv.Int
	}
	return false
}

func (p *Parser) mkLogical(op ast.LogicalOp, lhs, rhs ast.Expr) (*ast.Logical, error) {
	if !lhs.Meta().Type().IsBool() || !rhs.Meta().Type().IsBool() {
		return nil, diag.New(diag.Type, source.Range(lhs.Span(), rhs.Span()), "operands of &&/|| must both be bool")
	}
	n := &ast.Logical{Op: op, Lhs: lhs, Rhs: rhs}
	n.Meta = ast.NewMeta(source.Range(lhs.Span(), rhs.Span()))
	n.Meta.SetType(types.BoolType)
	if lv, ok := lhs.Meta().TryConst(); ok {
		if op == ast.LogicalAnd && !lv.Bool {
			n.Meta.SetConstant(ast.Value{Bool: false})
			return n, nil
		}
		if op == ast.LogicalOr && lv.Bool {
			n.Meta.SetConstant(ast.Value{Bool: true})
			return n, nil
		}
		if rv, ok2 := rhs.Meta().TryConst(); ok2 {
			n.Meta.SetConstant(rv)
			return n, nil
		}
	}
	n.Meta.SetNotConstant()
	return n, nil
}

// ---------------------------------------------------------------------
// Access, As, Invoke, InfixInvoke, Assign
// ---------------------------------------------------------------------

func (p *Parser) mkAccess(arr, idx ast.Expr) (*ast.Access, error) {
	elem, ok := arr.Meta().Type().IsPointer()
	if !ok {
		return nil, diag.New(diag.Type, arr.Span(), "operand of a[i] must be a pointer, found %s", arr.Meta().Type())
	}
	if !idx.Meta().Type().IsInt() {
		return nil, diag.New(diag.Type, idx.Span(), "index of a[i] must be int, found %s", idx.Meta().Type())
	}
	if elem.IsNone() {
		return nil, diag.New(diag.Type, arr.Span(), "cannot index *none")
	}
	n := &ast.Access{Array: arr, Index: idx}
	n.Meta = ast.NewMeta(source.Range(arr.Span(), idx.Span()))
	n.Meta.SetType(elem)
	n.Meta.SetNotConstant()
	return n, nil
}

func (p *Parser) mkAs(lhs ast.Expr, target *types.Type) (*ast.As, error) {
	lt := lhs.Meta().Type()
	_, lptr := lt.IsPointer()
	_, tptr := target.IsPointer()
	ok := (lt.IsArithmetic() && target.IsArithmetic()) ||
		(lptr && tptr) ||
		(lt.IsInt() && tptr) || (lptr && target.IsInt()) ||
		target.IsNone() ||
		target.AssignableFrom(lt) || lt.AssignableFrom(target)
	if !ok {
		return nil, diag.New(diag.Type, lhs.Span(), "cannot cast %s as %s", lt, target)
	}
	n := &ast.As{Operand: lhs, Target: &ast.TypeRef{Resolved: target}}
	n.Meta = ast.NewMeta(lhs.Span())
	n.Meta.SetType(target)
	if v, isConst := lhs.Meta().TryConst(); isConst {
		folded, ok := evalCast(lt, target, v)
		if ok {
			n.Meta.SetConstant(folded)
			return n, nil
		}
	}
	n.Meta.SetNotConstant()
	return n, nil
}

func evalCast(from, to *types.Type, v ast.Value) (ast.Value, bool) {
	switch {
	case from.IsInt() && to.IsFloat():
		return ast.Value{Float: float64(v.Int)}, true
	case from.IsFloat() && to.IsInt():
		return ast.Value{Int: int64(v.Float)}, true
	case from.Equals(to):
		return v, true
	default:
		return ast.Value{}, false
	}
}

func (p *Parser) mkInvoke(callee ast.Expr, args []ast.Expr) (*ast.Invoke, error) {
	params, result, ok := callee.Meta().Type().IsFunction()
	if !ok {
		return nil, diag.New(diag.Type, callee.Span(), "callee is not a function, found %s", callee.Meta().Type())
	}
	if len(params) != len(args) {
		return nil, diag.New(diag.Type, callee.Span(), "expected %d arguments, found %d", len(params), len(args))
	}
	for i, a := range args {
		if !params[i].AssignableFrom(a.Meta().Type()) {
			return nil, diag.New(diag.Type, a.Span(), "argument %d of type %s is not assignable to parameter type %s", i, a.Meta().Type(), params[i])
		}
	}
	n := &ast.Invoke{Callee: callee, Args: args}
	seg := callee.Span()
	if len(args) > 0 {
		seg = source.Range(seg, args[len(args)-1].Span())
	}
	n.Meta = ast.NewMeta(seg)
	n.Meta.SetType(result)
	n.Meta.SetNotConstant()
	return n, nil
}

// mkInfixInvoke builds `` lhs `name` rhs `` as a two-argument call to the
// global function name, resolved the same way a bare identifier callee
// would be.
func (p *Parser) mkInfixInvoke(name string, lhs, rhs ast.Expr) (*ast.InfixInvoke, error) {
	ft, ok := p.global.Lookup(name)
	if !ok {
		return nil, diag.New(diag.Semantic, lhs.Span(), "unable to resolve identifier %q", name)
	}
	params, result, ok := ft.IsFunction()
	if !ok || len(params) != 2 {
		return nil, diag.New(diag.Type, lhs.Span(), "%q is not a two-parameter function, found %s", name, ft)
	}
	if !params[0].AssignableFrom(lhs.Meta().Type()) {
		return nil, diag.New(diag.Type, lhs.Span(), "left operand of type %s is not assignable to parameter type %s", lhs.Meta().Type(), params[0])
	}
	if !params[1].AssignableFrom(rhs.Meta().Type()) {
		return nil, diag.New(diag.Type, rhs.Span(), "right operand of type %s is not assignable to parameter type %s", rhs.Meta().Type(), params[1])
	}
	n := &ast.InfixInvoke{Func: name, Lhs: lhs, Rhs: rhs}
	n.Meta = ast.NewMeta(source.Range(lhs.Span(), rhs.Span()))
	n.Meta.SetType(result)
	n.Meta.SetNotConstant()
	return n, nil
}

func (p *Parser) mkClause(open, close source.Token, body []ast.Expr) (*ast.Clause, error) {
	n := &ast.Clause{Body: body}
	n.Meta = ast.NewMeta(source.Range(open.Segment(), close.Segment()))
	if len(body) == 0 {
		n.Meta.SetType(types.NoneType)
		n.Meta.SetConstant(ast.Value{})
		return n, nil
	}
	for _, e := range body[:len(body)-1] {
		if e.Meta().Type().IsNever() {
			return nil, diag.New(diag.Semantic, e.Span(), "unreachable code after a never-typed expression")
		}
	}
	last := body[len(body)-1]
	n.Meta.SetType(last.Meta().Type())
	if v, ok := last.Meta().TryConst(); ok {
		n.Meta.SetConstant(v)
	} else {
		n.Meta.SetNotConstant()
	}
	return n, nil
}

func (p *Parser) mkAssign(target ast.Assignable, compound bool, op ast.InfixOp, value ast.Expr) (*ast.Assign, error) {
	tt := target.Meta().Type()
	if compound {
		inferred, err := inferInfixType(op, tt, value.Meta().Type(), target.Span(), value.Span())
		if err != nil {
			return nil, err
		}
		if !tt.Equals(inferred) {
			return nil, diag.New(diag.Type, value.Span(), "compound assignment result %s is not assignable back to %s", inferred, tt)
		}
	} else if !tt.AssignableFrom(value.Meta().Type()) {
		return nil, diag.New(diag.Type, value.Span(), "value of type %s is not assignable to %s", value.Meta().Type(), tt)
	}
	n := &ast.Assign{Target: target, Compound: compound, Op: op, Value: value}
	n.Meta = ast.NewMeta(source.Range(target.Span(), value.Span()))
	n.Meta.SetType(tt)
	n.Meta.SetNotConstant()
	return n, nil
}
