// Package frontend also houses the precedence-climbing parser and the
// type checker fused into the same pass (spec §4.2): every parse function
// that builds an ast.Expr also forces its type the first time, so a
// malformed program is rejected at the point its ill-typed node is built
// rather than in a later walk.
package frontend

import (
	"porkchoplite/src/ast"
	"porkchoplite/src/diag"
	"porkchoplite/src/source"
	"porkchoplite/src/types"
)

// Parser walks a token stream already produced by Tokenize, building the
// AST into a shared GlobalScope.
type Parser struct {
	src    *source.Source
	toks   []source.Token
	pos    int
	global *ast.GlobalScope
	local  *ast.LocalContext // nil at file scope, set while parsing a function body
	fn     *funcState        // non-nil while parsing a function body
	imp    *Importer
}

// funcState accumulates the per-function bookkeeping the checker needs
// once a body finishes parsing: every Return encountered, for the
// return-type unification of spec §4.2.4.
type funcState struct {
	returns []*ast.Return
}

// NewParser returns a Parser ready to parse src into global. imp may be
// nil for a file with no imports/exports (parseImportPath then returns an
// error).
func NewParser(src *source.Source, global *ast.GlobalScope, imp *Importer) *Parser {
	return &Parser{src: src, toks: src.Tokens, global: global, imp: imp}
}

// ---------------------------------------------------------------------
// Token cursor
// ---------------------------------------------------------------------

func (p *Parser) peek() source.Token {
	if p.pos >= len(p.toks) {
		return source.Token{Kind: source.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) source.Token {
	if p.pos+n >= len(p.toks) {
		return source.Token{Kind: source.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) next() source.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) segment(t source.Token) source.Segment { return t.Segment() }

func (p *Parser) raise(seg source.Segment, format string, args ...interface{}) *diag.Error {
	return diag.New(diag.Parse, seg, format, args...)
}

func (p *Parser) raiseAt(t source.Token, format string, args ...interface{}) *diag.Error {
	return p.raise(t.Segment(), format, args...)
}

// expect consumes the next token, requiring it to be of kind k.
func (p *Parser) expect(k source.TokenKind, what string) (source.Token, error) {
	t := p.next()
	if t.Kind != k {
		return t, p.raiseAt(t, "expected %s, found %s", what, t.Kind)
	}
	return t, nil
}

// skipLinebreaks consumes zero or more LINEBREAK tokens.
func (p *Parser) skipLinebreaks() {
	for p.peek().Kind == source.LINEBREAK {
		p.next()
	}
}

// text returns the lexeme of t.
func (p *Parser) text(t source.Token) string { return p.src.Of(t) }

// ---------------------------------------------------------------------
// File grammar
// ---------------------------------------------------------------------

// ParseFile consumes the whole token stream as a sequence of top-level
// forms separated by one or more LINEBREAKs (spec §4.2 "File grammar").
func (p *Parser) ParseFile() error {
	if len(p.src.Greedy) > 0 {
		err := diag.New(diag.Structural, p.src.Greedy[0].Segment(), "source ends with unmatched brackets")
		for _, tok := range p.src.Greedy {
			err.WithNoteAt(tok.Segment(), "opener is never closed")
		}
		return err
	}
	p.skipLinebreaks()
	for p.peek().Kind != source.EOF {
		if err := p.parseTopLevel(); err != nil {
			return err
		}
		if p.peek().Kind != source.EOF {
			if p.peek().Kind != source.LINEBREAK {
				return p.raiseAt(p.peek(), "expected linebreak between top-level forms")
			}
			p.skipLinebreaks()
		}
	}
	return nil
}

func (p *Parser) parseTopLevel() error {
	switch t := p.peek(); t.Kind {
	case source.KwFn:
		return p.parseFnDecl()
	case source.KwLet:
		return p.parseTopLevelLet()
	case source.KwImport:
		p.next()
		return p.parseImportPath(false)
	case source.KwExport:
		p.next()
		if _, err := p.expect(source.KwImport, "import"); err != nil {
			return err
		}
		return p.parseImportPath(true)
	default:
		return p.raiseAt(t, "expected a top-level declaration")
	}
}

func (p *Parser) parseImportPath(exported bool) error {
	tok, err := p.expect(source.StringLiteral, "import path string")
	if err != nil {
		return err
	}
	path, ok := decodeStringLiteral(p.text(tok))
	if !ok {
		return p.raiseAt(tok, "malformed string literal")
	}
	if p.imp == nil {
		return diag.New(diag.Semantic, tok.Segment(), "imports are not supported in this context")
	}
	exports, err := p.imp.Resolve(p.src.Path, path, tok.Segment())
	if err != nil {
		return err
	}
	for name, ft := range exports {
		if !p.global.Import(name, ft) {
			return diag.New(diag.Semantic, tok.Segment(), "duplicate global name %q from import", name)
		}
		if exported {
			p.global.Export(name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------
// Function declarations
// ---------------------------------------------------------------------

func (p *Parser) parseFnDecl() error {
	p.next() // 'fn'
	nameTok, err := p.expect(source.IDENTIFIER, "function name")
	if err != nil {
		return err
	}
	name := p.text(nameTok)

	if _, err := p.expect(source.LParen, "("); err != nil {
		return err
	}
	var paramNames []string
	var paramTypes []*types.Type
	if p.peek().Kind != source.RParen {
		for {
			pnTok, err := p.expect(source.IDENTIFIER, "parameter name")
			if err != nil {
				return err
			}
			if _, err := p.expect(source.OpColon, ":"); err != nil {
				return err
			}
			pt, err := p.parseType()
			if err != nil {
				return err
			}
			paramNames = append(paramNames, p.text(pnTok))
			paramTypes = append(paramTypes, pt)
			if p.peek().Kind == source.OpComma {
				p.next()
				continue
			}
			break
		}
	}
	if _, err := p.expect(source.RParen, ")"); err != nil {
		return err
	}

	var declared *types.Type
	if p.peek().Kind == source.OpColon {
		p.next()
		declared, err = p.parseType()
		if err != nil {
			return err
		}
	}

	decl := &ast.FunctionDeclarator{
		Name: name,
		Params: ast.ParameterList{
			Names: paramNames,
		},
	}

	switch p.peek().Kind {
	case source.OpAssign:
		p.next()
		// Reserve the name first so a recursive call inside the body
		// resolves (spec §4.2.6: self-recursion permitted).
		var resultType *types.Type
		if declared != nil {
			resultType = declared
		} else {
			resultType = types.NeverType // placeholder until inferred below; self-recursive calls with inferred type are rejected by AssignableFrom(Never) only trivially, acceptable simplification
		}
		decl.Params.Type = types.NewFunction(paramTypes, resultType)
		if !p.global.Declare(name, decl.Params.Type) {
			return diag.New(diag.Semantic, nameTok.Segment(), "duplicate global name %q", name)
		}
		def, err := p.parseFnBody(paramNames, paramTypes, declared)
		if err != nil {
			return err
		}
		decl.Definition = def
		if declared == nil {
			decl.Params.Type = types.NewFunction(paramTypes, resultTypeOf(def))
			p.global.Declare(name, decl.Params.Type) // refine the placeholder; name already reserved so this just updates
		}
	default:
		if declared == nil {
			return p.raiseAt(p.peek(), "function declaration requires a return type")
		}
		decl.Params.Type = types.NewFunction(paramTypes, declared)
		if !p.global.Declare(name, decl.Params.Type) {
			return diag.New(diag.Semantic, nameTok.Segment(), "duplicate global name %q", name)
		}
	}
	p.global.Fns = append(p.global.Fns, decl)
	return nil
}

func resultTypeOf(def *ast.FunctionDefinition) *types.Type {
	if t := def.Body.Meta().Type(); t != nil {
		return t
	}
	return types.NoneType
}

// parseFnBody parses a function's `= expr` body with a fresh local
// context: parameters occupy indices [0,n) (spec §4.2.4).
func (p *Parser) parseFnBody(names []string, paramTypes []*types.Type, declared *types.Type) (*ast.FunctionDefinition, error) {
	savedLocal, savedFn := p.local, p.fn
	p.local = ast.NewLocalContext()
	p.local.Reserve(names, paramTypes)
	p.fn = &funcState{}

	body, err := p.parseExpression(levelAssignment)
	if err != nil {
		p.local, p.fn = savedLocal, savedFn
		return nil, err
	}

	def := &ast.FunctionDefinition{
		Body:       body,
		LocalTypes: p.local.LocalTypes(),
		Returns:    p.fn.returns,
	}

	resultType, err := unifyReturns(def.Returns, body, declared)
	if err != nil {
		p.local, p.fn = savedLocal, savedFn
		return nil, err
	}
	if declared != nil && !declared.AssignableFrom(resultType) {
		p.local, p.fn = savedLocal, savedFn
		return nil, diag.New(diag.Type, body.Span(), "function body of type %s is not assignable to declared return type %s", resultType, declared)
	}

	p.local, p.fn = savedLocal, savedFn
	return def, nil
}

// unifyReturns implements spec §4.2.4: the function's inferred type is
// the body's type when there are no returns, otherwise the common type of
// every return together with the tail expression (unless the tail is
// never, in which case the first return's type wins).
func unifyReturns(returns []*ast.Return, body ast.Expr, declared *types.Type) (*types.Type, error) {
	bodyType := body.Meta().Type()
	if len(returns) == 0 {
		return bodyType, nil
	}
	result := returnType(returns[0])
	for _, r := range returns[1:] {
		rt := returnType(r)
		merged := types.Either(result, rt)
		if merged == nil {
			return nil, diag.New(diag.Type, r.Span(), "return type %s disagrees with %s", rt, result)
		}
		result = merged
	}
	if !bodyType.IsNever() {
		merged := types.Either(result, bodyType)
		if merged == nil {
			return nil, diag.New(diag.Type, body.Span(), "tail expression type %s disagrees with return type %s", bodyType, result)
		}
		result = merged
	}
	return result, nil
}

func returnType(r *ast.Return) *types.Type {
	if r.Value == nil {
		return types.NoneType
	}
	return r.Value.Meta().Type()
}

// ---------------------------------------------------------------------
// Let declarations
// ---------------------------------------------------------------------

// parseTopLevelLet parses a global `let`. Its initializer is parsed
// through the same p.parseExpression as any function body, so a clause,
// if/else or while expression in the initializer (e.g. `let g = if true
// { 1 } else { 2 }`) still needs a LocalContext to push/pop frames and
// loop hooks against; a fresh one is installed for the duration of the
// initializer's parse and discarded afterward; nothing it declares
// escapes into the global scope.
func (p *Parser) parseTopLevelLet() error {
	savedLocal := p.local
	p.local = ast.NewLocalContext()
	let, err := p.parseLetCore()
	p.local = savedLocal
	if err != nil {
		return err
	}
	t := let.Value.Meta().Type()
	if !(t.IsBool() || t.IsInt() || t.IsFloat()) {
		return diag.New(diag.Semantic, let.Value.Span(), "a top-level let initializer must be a constant bool, int, or float, found %s", t)
	}
	if let.Value.Meta().ConstState() != ast.Constant {
		return diag.New(diag.Semantic, let.Value.Span(), "a top-level let initializer must be a compile-time constant")
	}
	if !p.global.Declare(let.Name, t) {
		return diag.New(diag.Semantic, let.Span(), "duplicate global name %q", let.Name)
	}
	let.Lookup = ast.Lookup{Type: t, Scope: ast.ScopeGlobal}
	p.global.Lets = append(p.global.Lets, let)
	return nil
}

// parseLetCore parses `let NAME [: T] = EXPR` without binding it into any
// scope; callers decide whether that's the global scope (top-level) or
// the current LocalContext (inside a function body).
func (p *Parser) parseLetCore() (*ast.Let, error) {
	startTok := p.next() // 'let'
	nameTok, err := p.expect(source.IDENTIFIER, "let-bound name")
	if err != nil {
		return nil, err
	}
	name := p.text(nameTok)
	var declared *types.Type
	if p.peek().Kind == source.OpColon {
		p.next()
		declared, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(source.OpAssign, "="); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(levelAssignment)
	if err != nil {
		return nil, err
	}
	if value.Meta().Type().IsNone() {
		return nil, diag.New(diag.Type, value.Span(), "let initializer cannot have type none")
	}
	if declared != nil && !declared.AssignableFrom(value.Meta().Type()) {
		return nil, diag.New(diag.Type, value.Span(), "initializer of type %s is not assignable to declared type %s", value.Meta().Type(), declared)
	}
	let := &ast.Let{Name: name, Value: value}
	let.Meta = ast.NewMeta(source.Range(startTok.Segment(), value.Span()))
	let.Meta.SetType(types.NoneType)
	return let, nil
}

// parseLocalLet parses a let inside a function body, binding it into the
// current LocalContext.
func (p *Parser) parseLocalLet() (ast.Expr, error) {
	let, err := p.parseLetCore()
	if err != nil {
		return nil, err
	}
	let.Lookup = p.local.Declare(let.Name, let.Value.Meta().Type())
	return let, nil
}
