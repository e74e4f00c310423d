package frontend

import (
	"math"
	"strconv"
	"strings"

	"porkchoplite/src/ast"
	"porkchoplite/src/diag"
	"porkchoplite/src/source"
	"porkchoplite/src/types"
)

// level enumerates the precedence-climbing levels of spec §4.2, strongest
// binding last.
type level int

const (
	levelAssignment level = iota
	levelLor
	levelLand
	levelOr
	levelXor
	levelAnd
	levelEquality
	levelComparison
	levelShift
	levelAddition
	levelMultiplication
	levelPrefix
	levelPostfix
	levelPrimary
)

func (l level) upper() level {
	if l == levelPrimary {
		return levelPrimary
	}
	return l + 1
}

// inLevel reports whether token kind k is a binary operator belonging to
// level l.
func inLevel(k source.TokenKind, l level) bool {
	switch k {
	case source.OpLor:
		return l == levelLor
	case source.OpLand:
		return l == levelLand
	case source.OpOr:
		return l == levelOr
	case source.OpXor:
		return l == levelXor
	case source.OpAnd:
		return l == levelAnd
	case source.OpEq, source.OpNe:
		return l == levelEquality
	case source.OpLt, source.OpGt, source.OpLe, source.OpGe:
		return l == levelComparison
	case source.OpShl, source.OpShr, source.OpUshr:
		return l == levelShift
	case source.OpAdd, source.OpSub:
		return l == levelAddition
	case source.OpMul, source.OpDiv, source.OpRem, source.OpBacktick:
		return l == levelMultiplication
	default:
		return false
	}
}

// parseExpression is the precedence-climbing entry point. It both builds
// the AST and, on every node it returns, has already set the node's type
// and constant state (the mk* constructors do this eagerly), so a type
// error surfaces at the point the offending node is built (spec §4.2, "assignability checks fire during parse").
func (p *Parser) parseExpression(l level) (ast.Expr, error) {
	switch l {
	case levelAssignment:
		return p.parseAssignment()
	case levelPrefix:
		return p.parsePrefix()
	case levelPostfix:
		return p.parsePostfix()
	case levelPrimary:
		return p.parsePrimary()
	default:
		return p.parseBinary(l)
	}
}

func (p *Parser) parseAssignment() (ast.Expr, error) {
	switch p.peek().Kind {
	case source.KwBreak:
		tok := p.next()
		hook := p.local.InnermostLoop()
		if hook == nil {
			return nil, p.raiseAt(tok, "break outside of a loop")
		}
		br := &ast.Break{Hook: hook}
		br.Meta = ast.NewMeta(tok.Segment())
		br.Meta.SetType(types.NeverType)
		hook.Breaks = append(hook.Breaks, br)
		return br, nil
	case source.KwReturn:
		tok := p.next()
		var value ast.Expr
		if !isExpressionTerminator(p.peek().Kind) {
			v, err := p.parseExpression(levelAssignment)
			if err != nil {
				return nil, err
			}
			if v.Meta().Type().IsNever() {
				return nil, diag.New(diag.Semantic, v.Span(), "cannot return a value that never produces one")
			}
			value = v
		}
		ret := &ast.Return{Value: value}
		seg := tok.Segment()
		if value != nil {
			seg = source.Range(seg, value.Span())
		}
		ret.Meta = ast.NewMeta(seg)
		ret.Meta.SetType(types.NeverType)
		if p.fn != nil {
			p.fn.returns = append(p.fn.returns, ret)
		}
		return ret, nil
	default:
		lhs, err := p.parseExpression(levelLor)
		if err != nil {
			return nil, err
		}
		if op, compound, isAssign := assignOp(p.peek().Kind); isAssign {
			p.next()
			target, ok := lhs.(ast.Assignable)
			if !ok {
				return nil, diag.New(diag.Type, lhs.Span(), "assignable expression is expected")
			}
			rhs, err := p.parseExpression(levelAssignment)
			if err != nil {
				return nil, err
			}
			return p.mkAssign(target, compound, op, rhs)
		}
		return lhs, nil
	}
}

func assignOp(k source.TokenKind) (ast.InfixOp, bool, bool) {
	switch k {
	case source.OpAssign:
		return 0, false, true
	case source.OpAssignAnd:
		return ast.InfixAnd, true, true
	case source.OpAssignXor:
		return ast.InfixXor, true, true
	case source.OpAssignOr:
		return ast.InfixOr, true, true
	case source.OpAssignShl:
		return ast.InfixShl, true, true
	case source.OpAssignShr:
		return ast.InfixShr, true, true
	case source.OpAssignUshr:
		return ast.InfixUshr, true, true
	case source.OpAssignAdd:
		return ast.InfixAdd, true, true
	case source.OpAssignSub:
		return ast.InfixSub, true, true
	case source.OpAssignMul:
		return ast.InfixMul, true, true
	case source.OpAssignDiv:
		return ast.InfixDiv, true, true
	case source.OpAssignRem:
		return ast.InfixRem, true, true
	default:
		return 0, false, false
	}
}

func isExpressionTerminator(k source.TokenKind) bool {
	switch k {
	case source.LINEBREAK, source.RBrace, source.RParen, source.RBracket, source.EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parseBinary(l level) (ast.Expr, error) {
	lhs, err := p.parseExpression(l.upper())
	if err != nil {
		return nil, err
	}
	for inLevel(p.peek().Kind, l) {
		tok := p.next()
		if tok.Kind == source.OpBacktick {
			// `name` infix-invoke: the identifier between the two
			// backticks names the function, so the binary operator here
			// is the whole `name` pair rather than a single token.
			nameTok, err := p.expect(source.IDENTIFIER, "function name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(source.OpBacktick, "`"); err != nil {
				return nil, err
			}
			rhs, err := p.parseExpression(l.upper())
			if err != nil {
				return nil, err
			}
			lhs, err = p.mkInfixInvoke(p.text(nameTok), lhs, rhs)
			if err != nil {
				return nil, err
			}
			continue
		}
		rhs, err := p.parseExpression(l.upper())
		if err != nil {
			return nil, err
		}
		switch l {
		case levelLand:
			lhs, err = p.mkLogical(ast.LogicalAnd, lhs, rhs)
		case levelLor:
			lhs, err = p.mkLogical(ast.LogicalOr, lhs, rhs)
		case levelEquality, levelComparison:
			lhs, err = p.mkCompare(compareOpOf(tok.Kind), lhs, rhs)
		default:
			lhs, err = p.mkInfix(infixOpOf(tok.Kind), lhs, rhs)
		}
		if err != nil {
			return nil, err
		}
	}
	return lhs, nil
}

func infixOpOf(k source.TokenKind) ast.InfixOp {
	switch k {
	case source.OpAdd:
		return ast.InfixAdd
	case source.OpSub:
		return ast.InfixSub
	case source.OpMul:
		return ast.InfixMul
	case source.OpDiv:
		return ast.InfixDiv
	case source.OpRem:
		return ast.InfixRem
	case source.OpAnd:
		return ast.InfixAnd
	case source.OpOr:
		return ast.InfixOr
	case source.OpXor:
		return ast.InfixXor
	case source.OpShl:
		return ast.InfixShl
	case source.OpShr:
		return ast.InfixShr
	case source.OpUshr:
		return ast.InfixUshr
	default:
		return ast.InfixAdd
	}
}

func compareOpOf(k source.TokenKind) ast.CompareOp {
	switch k {
	case source.OpEq:
		return ast.CmpEq
	case source.OpNe:
		return ast.CmpNe
	case source.OpLt:
		return ast.CmpLt
	case source.OpLe:
		return ast.CmpLe
	case source.OpGt:
		return ast.CmpGt
	default:
		return ast.CmpGe
	}
}

// ---------------------------------------------------------------------
// PREFIX
// ---------------------------------------------------------------------

func (p *Parser) parsePrefix() (ast.Expr, error) {
	switch tok := p.peek(); tok.Kind {
	case source.OpAdd, source.OpSub:
		p.next()
		rhs, err := p.parseExpression(levelPrefix)
		if err != nil {
			return nil, err
		}
		if ic, ok := rhs.(*ast.IntConst); ok && !ic.Merged {
			if merged, ok2 := mergeSign(tok, ic); ok2 {
				return merged, nil
			}
		}
		op := ast.PrefixPos
		if tok.Kind == source.OpSub {
			op = ast.PrefixNeg
		}
		return p.mkPrefix(tok, op, rhs)
	case source.OpNot:
		p.next()
		rhs, err := p.parseExpression(levelPrefix)
		if err != nil {
			return nil, err
		}
		return p.mkPrefix(tok, ast.PrefixNot, rhs)
	case source.OpInv:
		p.next()
		rhs, err := p.parseExpression(levelPrefix)
		if err != nil {
			return nil, err
		}
		return p.mkPrefix(tok, ast.PrefixInv, rhs)
	case source.OpMul:
		p.next()
		rhs, err := p.parseExpression(levelPrefix)
		if err != nil {
			return nil, err
		}
		return p.mkDereference(tok, rhs)
	case source.OpAnd:
		p.next()
		rhs, err := p.parseExpression(levelPrefix)
		if err != nil {
			return nil, err
		}
		target, ok := rhs.(ast.Assignable)
		if !ok {
			return nil, diag.New(diag.Type, rhs.Span(), "assignable expression is expected")
		}
		return p.mkAddressOf(tok, target)
	case source.OpInc, source.OpDec:
		p.next()
		rhs, err := p.parseExpression(levelPrefix)
		if err != nil {
			return nil, err
		}
		target, ok := rhs.(ast.Assignable)
		if !ok {
			return nil, diag.New(diag.Type, rhs.Span(), "assignable expression is expected")
		}
		op := ast.StatefulInc
		if tok.Kind == source.OpDec {
			op = ast.StatefulDec
		}
		return p.mkStatefulPrefix(tok, op, target)
	default:
		return p.parseExpression(levelPrefix.upper())
	}
}

// mergeSign fuses an adjacent unary +/- into ic when they are lexically
// touching and ic is not already a merged literal (spec §9: preserves the
// ability to write INT64_MIN's full magnitude as a single literal).
func mergeSign(sign source.Token, ic *ast.IntConst) (*ast.IntConst, bool) {
	segSign := sign.Segment()
	segNum := ic.Span()
	if segSign.Line2 != segNum.Line1 || segSign.Column2 != segNum.Column1 {
		return nil, false
	}
	v := ic.Value
	if sign.Kind == source.OpSub {
		v = -v
	}
	merged := &ast.IntConst{Value: v, Merged: true}
	merged.Meta = ast.NewMeta(source.Range(segSign, segNum))
	merged.Meta.SetType(types.IntType)
	merged.Meta.SetConstant(ast.Value{Int: v})
	return merged, true
}

// ---------------------------------------------------------------------
// POSTFIX
// ---------------------------------------------------------------------

func (p *Parser) parsePostfix() (ast.Expr, error) {
	lhs, err := p.parseExpression(levelPostfix.upper())
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Kind {
		case source.LParen:
			p.next()
			args, err := p.parseExpressionList(source.RParen)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(source.RParen, ")"); err != nil {
				return nil, err
			}
			lhs, err = p.mkInvoke(lhs, args)
			if err != nil {
				return nil, err
			}
		case source.LBracket:
			p.next()
			idx, err := p.parseExpression(levelAssignment)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(source.RBracket, "]"); err != nil {
				return nil, err
			}
			lhs, err = p.mkAccess(lhs, idx)
			if err != nil {
				return nil, err
			}
		case source.KwAs:
			p.next()
			target, err := p.parseType()
			if err != nil {
				return nil, err
			}
			lhs, err = p.mkAs(lhs, target)
			if err != nil {
				return nil, err
			}
		case source.OpInc, source.OpDec:
			tok := p.next()
			target, ok := lhs.(ast.Assignable)
			if !ok {
				return nil, diag.New(diag.Type, lhs.Span(), "assignable expression is expected")
			}
			op := ast.StatefulInc
			if tok.Kind == source.OpDec {
				op = ast.StatefulDec
			}
			var err error
			lhs, err = p.mkStatefulPostfix(tok, op, target)
			if err != nil {
				return nil, err
			}
		default:
			return lhs, nil
		}
	}
}

func (p *Parser) parseExpressionList(terminator source.TokenKind) ([]ast.Expr, error) {
	var out []ast.Expr
	if p.peek().Kind == terminator {
		return out, nil
	}
	for {
		e, err := p.parseExpression(levelAssignment)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.peek().Kind == source.OpComma {
			p.next()
			continue
		}
		break
	}
	return out, nil
}

// ---------------------------------------------------------------------
// PRIMARY
// ---------------------------------------------------------------------

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case source.LParen:
		p.next()
		exprs, err := p.parseExpressionList(source.RParen)
		if err != nil {
			return nil, err
		}
		closeTok, err := p.expect(source.RParen, ")")
		if err != nil {
			return nil, err
		}
		switch len(exprs) {
		case 0:
			return p.mkClause(tok, closeTok, nil)
		case 1:
			return exprs[0], nil
		default:
			return nil, p.raise(source.Range(tok.Segment(), closeTok.Segment()), "there is no tuple support")
		}
	case source.LBrace:
		return p.parseClauseExpr()
	case source.IDENTIFIER:
		return p.parseId()
	case source.KwFalse:
		p.next()
		return p.mkBoolConst(tok, false), nil
	case source.KwTrue:
		p.next()
		return p.mkBoolConst(tok, true), nil
	case source.CharacterLiteral:
		p.next()
		return p.mkCharConst(tok)
	case source.BinaryInteger, source.OctalInteger, source.DecimalInteger, source.HexadecimalInteger:
		p.next()
		return p.mkIntConst(tok)
	case source.KwLine:
		p.next()
		return p.mkLineConst(tok), nil
	case source.FloatingPoint:
		p.next()
		return p.mkFloatConst(tok)
	case source.KwNan:
		p.next()
		return p.mkFloatLiteral(tok, math.NaN()), nil
	case source.KwInf:
		p.next()
		return p.mkFloatLiteral(tok, math.Inf(1)), nil
	case source.StringLiteral:
		p.next()
		return p.mkStringLiteral(tok)
	case source.KwWhile:
		return p.parseWhile()
	case source.KwIf:
		return p.parseIf()
	case source.KwLet:
		return p.parseLocalLet()
	case source.KwSizeof:
		return p.parseSizeof()
	case source.KwElse:
		return nil, p.raiseAt(p.next(), "stray else")
	case source.LINEBREAK:
		return nil, p.raiseAt(p.next(), "unexpected linebreak")
	default:
		return nil, p.raiseAt(p.next(), "unexpected token")
	}
}

func (p *Parser) parseSizeof() (ast.Expr, error) {
	tok := p.next()
	if _, err := p.expect(source.LParen, "("); err != nil {
		return nil, err
	}
	// Disambiguate `sizeof(T)` from `sizeof(expr)` by trying a type parse
	// first; a type name can never also be a valid operand expression
	// with the same spelling in this grammar (identifiers that aren't
	// type keywords fall through to the expression path).
	save := p.pos
	if t, ok := p.tryParseTypeName(); ok {
		closeTok, err := p.expect(source.RParen, ")")
		if err != nil {
			return nil, err
		}
		if t.IsNever() {
			return nil, diag.New(diag.Type, source.Range(tok.Segment(), closeTok.Segment()), "sizeof of never has no value")
		}
		sz := &ast.Sizeof{}
		sz.Meta = ast.NewMeta(source.Range(tok.Segment(), p.toks[p.pos-1].Segment()))
		sz.Meta.SetType(types.IntType)
		sz.Meta.SetConstant(ast.Value{Int: int64(t.Size())})
		return sz, nil
	}
	p.pos = save
	operand, err := p.parseExpression(levelAssignment)
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(source.RParen, ")")
	if err != nil {
		return nil, err
	}
	sz := &ast.Sizeof{Operand: operand}
	sz.Meta = ast.NewMeta(source.Range(tok.Segment(), closeTok.Segment()))
	sz.Meta.SetType(types.IntType)
	ot := operand.Meta().Type()
	if ot.IsNever() {
		return nil, diag.New(diag.Type, operand.Span(), "sizeof of never has no value")
	}
	sz.Meta.SetConstant(ast.Value{Int: int64(ot.Size())})
	return sz, nil
}

func (p *Parser) parseId() (ast.Expr, error) {
	tok := p.next()
	name := p.text(tok)
	id := &ast.Id{Name: name}
	id.Meta = ast.NewMeta(tok.Segment())
	if name == "_" {
		return nil, diag.New(diag.Parse, tok.Segment(), "wildcard %q cannot be used as a value", "_")
	}
	if p.local != nil {
		if lk, ok := p.local.Lookup(name); ok {
			id.Lookup = lk
			id.Meta.SetType(lk.Type)
			return id, nil
		}
	}
	if t, ok := p.global.Lookup(name); ok {
		id.Lookup = ast.Lookup{Type: t, Scope: ast.ScopeGlobal}
		id.Meta.SetType(t)
		return id, nil
	}
	return nil, diag.New(diag.Semantic, tok.Segment(), "unable to resolve identifier %q", name)
}

// ---------------------------------------------------------------------
// Literal decoding
// ---------------------------------------------------------------------

func decodeStringLiteral(raw string) (string, bool) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", false
	}
	return decodeEscapedBody(raw[1 : len(raw)-1])
}

func decodeCharLiteral(raw string) (rune, bool) {
	if len(raw) < 2 || raw[0] != '\'' || raw[len(raw)-1] != '\'' {
		return 0, false
	}
	body := raw[1 : len(raw)-1]
	decoded, ok := decodeEscapedBody(body)
	if !ok {
		return 0, false
	}
	runes := []rune(decoded)
	if len(runes) != 1 {
		return 0, false
	}
	return runes[0], true
}

func decodeEscapedBody(body string) (string, bool) {
	var sb strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		r, w, ok := source.DecodeEscape(body[i+1:])
		if !ok {
			return "", false
		}
		sb.WriteRune(r)
		i += 1 + w
	}
	return sb.String(), true
}

func parseIntLiteral(raw string, kind source.TokenKind) (int64, bool) {
	s := strings.ReplaceAll(raw, "_", "")
	switch kind {
	case source.BinaryInteger:
		v, err := strconv.ParseUint(s[2:], 2, 64)
		return int64(v), err == nil
	case source.OctalInteger:
		v, err := strconv.ParseUint(s[2:], 8, 64)
		return int64(v), err == nil
	case source.HexadecimalInteger:
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return int64(v), err == nil
	default:
		v, err := strconv.ParseUint(s, 10, 64)
		return int64(v), err == nil
	}
}

func parseFloatLiteral(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, "_", "")
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
