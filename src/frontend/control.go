package frontend

import (
	"porkchoplite/src/ast"
	"porkchoplite/src/diag"
	"porkchoplite/src/source"
	"porkchoplite/src/types"
)

// parseWhile parses `while cond { body }`. The loop's LoopHook is pushed
// onto the LocalContext before the body parses so every lexically enclosed
// Break resolves to it (spec §9), and popped again once the body is done
// regardless of arm shape.
func (p *Parser) parseWhile() (ast.Expr, error) {
	startTok := p.next() // 'while'
	cond, err := p.parseExpression(levelAssignment)
	if err != nil {
		return nil, err
	}
	// never propagates through the condition the same way it does through
	// any other operand (spec §4.2.3): a condition that itself never
	// completes (e.g. `while return 0 {...}`) makes the whole loop never,
	// bypassing the bool check entirely.
	condNever := cond.Meta().Type().IsNever()
	if !condNever && !cond.Meta().Type().IsBool() {
		return nil, diag.New(diag.Type, cond.Span(), "while condition must be bool, found %s", cond.Meta().Type())
	}

	hook := &ast.LoopHook{}
	p.local.PushLoop(hook)
	body, err := p.parseClauseExpr()
	p.local.PopLoop()
	if err != nil {
		return nil, err
	}

	w := &ast.While{Cond: cond, Body: body, Hook: hook}
	w.Meta = ast.NewMeta(source.Range(startTok.Segment(), body.Span()))

	if condNever {
		w.Meta.SetType(types.NeverType)
		w.Meta.SetNotConstant()
		return w, nil
	}

	// A while is never-typed when it can never produce control flow past
	// itself: a compile-time-true condition with no reachable break. Any
	// other shape falls back to none, since a loop itself yields no value.
	condVal, isConst := cond.Meta().TryConst()
	if isConst && condVal.Bool && len(hook.Breaks) == 0 {
		w.Meta.SetType(types.NeverType)
	} else {
		w.Meta.SetType(types.NoneType)
	}
	w.Meta.SetNotConstant()
	return w, nil
}

// parseIf parses `if cond { then } [else elseBody]`, where elseBody is
// either another clause or (for an else-if chain) a nested IfElse.
// The merge type follows spec §4.2.1's Either rule: an if with no else
// is typed as if its missing arm were an empty `none` clause.
func (p *Parser) parseIf() (ast.Expr, error) {
	startTok := p.next() // 'if'
	cond, err := p.parseExpression(levelAssignment)
	if err != nil {
		return nil, err
	}
	if !cond.Meta().Type().IsBool() {
		return nil, diag.New(diag.Type, cond.Span(), "if condition must be bool, found %s", cond.Meta().Type())
	}
	then, err := p.parseClauseExpr()
	if err != nil {
		return nil, err
	}

	var elseBody ast.Expr
	endSeg := then.Span()
	if p.peek().Kind == source.KwElse {
		p.next()
		if p.peek().Kind == source.KwIf {
			elseBody, err = p.parseIf()
		} else {
			elseBody, err = p.parseClauseExpr()
		}
		if err != nil {
			return nil, err
		}
		endSeg = elseBody.Span()
	}

	ie := &ast.IfElse{Cond: cond, Then: then, Else: elseBody}
	ie.Meta = ast.NewMeta(source.Range(startTok.Segment(), endSeg))

	thenType := then.Meta().Type()
	elseType := types.NoneType
	if elseBody != nil {
		elseType = elseBody.Meta().Type()
	}
	merged := types.Either(thenType, elseType)
	if merged == nil {
		return nil, diag.New(diag.Type, ie.Span(), "if/else arms disagree: %s vs %s", thenType, elseType)
	}
	ie.Meta.SetType(merged)

	if condVal, isConst := cond.Meta().TryConst(); isConst {
		var chosen ast.Expr
		if condVal.Bool {
			chosen = then
		} else {
			chosen = elseBody
		}
		if chosen != nil {
			if v, ok := chosen.Meta().TryConst(); ok {
				ie.Meta.SetConstant(v)
				return ie, nil
			}
		} else {
			ie.Meta.SetConstant(ast.Value{})
			return ie, nil
		}
	}
	ie.Meta.SetNotConstant()
	return ie, nil
}

// parseClauseExpr parses a braced block `{ e1 ; e2 ; … }`, pushing a fresh
// LocalContext frame so declarations made inside it fall out of scope at
// the closing brace.
func (p *Parser) parseClauseExpr() (ast.Expr, error) {
	openTok, err := p.expect(source.LBrace, "{")
	if err != nil {
		return nil, err
	}
	p.local.Push()
	p.skipLinebreaks()

	var body []ast.Expr
	for p.peek().Kind != source.RBrace {
		e, err := p.parseExpression(levelAssignment)
		if err != nil {
			p.local.Pop()
			return nil, err
		}
		body = append(body, e)
		if p.peek().Kind == source.RBrace {
			break
		}
		if p.peek().Kind != source.LINEBREAK {
			p.local.Pop()
			return nil, p.raiseAt(p.peek(), "expected linebreak between clause expressions")
		}
		p.skipLinebreaks()
	}
	p.local.Pop()

	closeTok, err := p.expect(source.RBrace, "}")
	if err != nil {
		return nil, err
	}
	return p.mkClause(openTok, closeTok, body)
}
