// Tests the lexer by verifying that a short sample program is tokenized
// into the expected ordered stream of kinds and lexeme text.

package frontend

import (
	"testing"

	"porkchoplite/src/source"
)

// tok names the kind/text pair TestLexer checks for each produced token;
// line/column positions are left to the parser/diagnostic tests since the
// lexer's own contract is the ordered kind+text stream.
type tok struct {
	kind source.TokenKind
	text string
}

func TestLexer(t *testing.T) {
	src := source.New("sample.pc", "fn f(x: int): int = {\n  let y = x * 2\n  y + 1\n}\n")
	if err := Tokenize(src); err != nil {
		t.Fatalf("tokenize error: %s", err)
	}

	exp := []tok{
		{source.KwFn, "fn"},
		{source.IDENTIFIER, "f"},
		{source.LParen, "("},
		{source.IDENTIFIER, "x"},
		{source.OpColon, ":"},
		{source.IDENTIFIER, "int"},
		{source.RParen, ")"},
		{source.OpColon, ":"},
		{source.IDENTIFIER, "int"},
		{source.OpAssign, "="},
		{source.LBrace, "{"},
		{source.LINEBREAK, "\n"},
		{source.KwLet, "let"},
		{source.IDENTIFIER, "y"},
		{source.OpAssign, "="},
		{source.IDENTIFIER, "x"},
		{source.OpMul, "*"},
		{source.DecimalInteger, "2"},
		{source.LINEBREAK, "\n"},
		{source.IDENTIFIER, "y"},
		{source.OpAdd, "+"},
		{source.DecimalInteger, "1"},
		{source.LINEBREAK, "\n"},
		{source.RBrace, "}"},
		{source.LINEBREAK, "\n"},
	}

	if len(src.Tokens) != len(exp) {
		t.Fatalf("expected %d tokens, got %d: %v", len(exp), len(src.Tokens), src.Tokens)
	}
	for i, want := range exp {
		got := src.Tokens[i]
		if got.Kind != want.kind {
			t.Errorf("token %d: expected kind %s, got %s", i, want.kind, got.Kind)
			continue
		}
		if want.kind == source.LINEBREAK {
			continue
		}
		if text := src.Of(got); text != want.text {
			t.Errorf("token %d: expected text %q, got %q", i, want.text, text)
		}
	}
}

func TestLexerRejectsUnterminatedChar(t *testing.T) {
	src := source.New("sample.pc", "let a = '")
	if err := Tokenize(src); err == nil {
		t.Fatal("expected a tokenization error for an unterminated character literal")
	}
}

func TestLexerNumericLiteralBases(t *testing.T) {
	cases := []struct {
		src  string
		kind source.TokenKind
	}{
		{"0b1010", source.BinaryInteger},
		{"0o17", source.OctalInteger},
		{"0x2A", source.HexadecimalInteger},
		{"42", source.DecimalInteger},
		{"1.5", source.FloatingPoint},
		{"0x1.8p3", source.FloatingPoint},
	}
	for _, c := range cases {
		src := source.New("sample.pc", "let a = "+c.src)
		if err := Tokenize(src); err != nil {
			t.Fatalf("%q: unexpected tokenization error: %s", c.src, err)
		}
		found := false
		for _, tk := range src.Tokens {
			if tk.Kind == c.kind {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%q: expected a token of kind %s in %v", c.src, c.kind, src.Tokens)
		}
	}
}
