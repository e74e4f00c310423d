// Tests the combined parse/type-check pass directly, independent of the
// full compiler pipeline: each case tokenizes and parses a snippet against
// a fresh global scope and inspects the resulting AST's inferred types or
// the diagnostic kind a malformed one raises.

package frontend

import (
	"testing"

	"porkchoplite/src/ast"
	"porkchoplite/src/diag"
	"porkchoplite/src/source"
)

func parseSrc(t *testing.T, text string) (*ast.GlobalScope, error) {
	t.Helper()
	src := source.New("sample.pc", text)
	if err := Tokenize(src); err != nil {
		return nil, err
	}
	global := ast.NewGlobalScopeWithBuiltins()
	p := NewParser(src, global, NewImporter())
	if err := p.ParseFile(); err != nil {
		return nil, err
	}
	return global, nil
}

func diagKind(err error) diag.Kind {
	if d, ok := err.(*diag.Error); ok {
		return d.Kind
	}
	return -1
}

func TestParseWhileBreakIsNone(t *testing.T) {
	global, err := parseSrc(t, "fn w(): none = while true { break }")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	body := global.Fns[0].Definition.Body
	if !body.Meta().Type().IsNone() {
		t.Errorf("expected while-with-break to have type none, got %s", body.Meta().Type())
	}
}

func TestParseWhileTrueIsNever(t *testing.T) {
	global, err := parseSrc(t, "fn w(): never = while true {}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	body := global.Fns[0].Definition.Body
	if !body.Meta().Type().IsNever() {
		t.Errorf("expected bare while-true to have type never, got %s", body.Meta().Type())
	}
}

func TestParseWhileNeverConditionIsNever(t *testing.T) {
	// A condition that itself never completes (here, a return) makes
	// the whole loop never, bypassing the bool check on its condition.
	global, err := parseSrc(t, "fn w(): int = { while return 1 {} }")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	body := global.Fns[0].Definition.Body
	clause, ok := body.(*ast.Clause)
	if !ok || len(clause.Body) == 0 {
		t.Fatalf("expected a clause body, got %T", body)
	}
	while, ok := clause.Body[0].(*ast.While)
	if !ok {
		t.Fatalf("expected a While as the first clause statement, got %T", clause.Body[0])
	}
	if !while.Meta().Type().IsNever() {
		t.Errorf("expected a while with a never-typed condition to itself be never, got %s", while.Meta().Type())
	}
}

func TestParseWhileTrueRejectedAsNoneBody(t *testing.T) {
	// A while loop with no break has type never, and none cannot absorb
	// a never-typed body the way a function declared never can.
	_, err := parseSrc(t, "fn w(): none = while true {}")
	if err == nil {
		t.Fatal("expected a type error assigning a never-typed body to a none-declared function")
	}
	if diagKind(err) != diag.Type {
		t.Fatalf("expected a type error, got %s", err)
	}
}

func TestParseIfElseBranchDisagreementRejected(t *testing.T) {
	_, err := parseSrc(t, "fn f(b: bool): int = if b { true } else { 1 }")
	if err == nil {
		t.Fatal("expected the mismatched if/else branch types to be rejected")
	}
	if diagKind(err) != diag.Type {
		t.Fatalf("expected a type error, got %s", err)
	}
}

func TestParseReturnTailDisagreementRejected(t *testing.T) {
	_, err := parseSrc(t, "fn f(b: bool): int = if b { return 1 } else { true }")
	if err == nil {
		t.Fatal("expected the return/tail type disagreement to be rejected")
	}
	if diagKind(err) != diag.Type {
		t.Fatalf("expected a type error, got %s", err)
	}
}

func TestParseEmptyCharLiteralRejected(t *testing.T) {
	_, err := parseSrc(t, "let a = ''")
	if err == nil {
		t.Fatal("expected an empty character literal to be rejected")
	}
}

func TestParseMultiCharLiteralRejected(t *testing.T) {
	_, err := parseSrc(t, "let a = 'ab'")
	if err == nil {
		t.Fatal("expected a multi-character literal to be rejected")
	}
}

func TestParseSurrogateEscapeRejected(t *testing.T) {
	_, err := parseSrc(t, `let a = '\uD800'`)
	if err == nil {
		t.Fatal("expected a lone surrogate codepoint escape to be rejected")
	}
	if diagKind(err) != diag.Tokenization {
		t.Fatalf("expected a tokenization-shaped error, got %s", err)
	}
}

func TestParseUnmatchedBracketAtEOF(t *testing.T) {
	_, err := parseSrc(t, "fn f(): int = g(")
	if err == nil {
		t.Fatal("expected an unmatched-bracket structural error")
	}
	if diagKind(err) != diag.Structural {
		t.Fatalf("expected a structural error, got %s", err)
	}
}

func TestParseLetOfNoneRejected(t *testing.T) {
	_, err := parseSrc(t, "fn f(): none = {}\nfn g(): int = { let x = f() 0 }")
	if err == nil {
		t.Fatal("expected let-of-none to be rejected")
	}
	if diagKind(err) != diag.Type {
		t.Fatalf("expected a type error, got %s", err)
	}
}

// A top-level let's initializer is parsed through the same
// p.parseExpression path as a function body, so a clause or if/else in
// it must not panic for lack of a LocalContext (none exists at file
// scope the way one does inside a function).
func TestParseTopLevelLetWithIfElseInitializer(t *testing.T) {
	global, err := parseSrc(t, "let g = if true { 1 } else { 2 }")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(global.Lets) != 1 || !global.Lets[0].Value.Meta().Type().IsInt() {
		t.Fatalf("expected one int-typed top-level let, got %+v", global.Lets)
	}
}

func TestParseTopLevelLetWithClauseInitializer(t *testing.T) {
	global, err := parseSrc(t, "let g = { 1 }")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(global.Lets) != 1 || !global.Lets[0].Value.Meta().Type().IsInt() {
		t.Fatalf("expected one int-typed top-level let, got %+v", global.Lets)
	}
}
