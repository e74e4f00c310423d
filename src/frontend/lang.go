package frontend

import "porkchoplite/src/source"

type reservedItem struct {
	val  string
	kind source.TokenKind
}

// rw contains the set of all reserved PorkchopLite keywords. The first
// dimension is the length of the word minus one, the second dimension is the
// slice of all words of that length. Indexing by length and searching a
// short slice is faster than a generic hash lookup for the small keyword
// set this language has.
var rw = [...][]reservedItem{
	// One-grams
	{},
	// Two-grams
	{
		{val: "if", kind: source.KwIf},
		{val: "fn", kind: source.KwFn},
		{val: "as", kind: source.KwAs},
	},
	// Three-grams
	{
		{val: "nan", kind: source.KwNan},
		{val: "inf", kind: source.KwInf},
		{val: "let", kind: source.KwLet},
	},
	// Four-grams
	{
		{val: "true", kind: source.KwTrue},
		{val: "else", kind: source.KwElse},
	},
	// Five-grams
	{
		{val: "false", kind: source.KwFalse},
		{val: "while", kind: source.KwWhile},
		{val: "break", kind: source.KwBreak},
	},
	// Six-grams
	{
		{val: "return", kind: source.KwReturn},
		{val: "sizeof", kind: source.KwSizeof},
		{val: "import", kind: source.KwImport},
		{val: "export", kind: source.KwExport},
	},
	// Seven-grams
	{},
	// Eight-grams
	{
		{val: "__LINE__", kind: source.KwLine},
	},
}

// isKeyword returns true if s is a reserved PorkchopLite keyword, and the
// TokenKind to emit for it. On false the caller should emit IDENTIFIER.
func isKeyword(s string) (bool, source.TokenKind) {
	if len(s) == 0 || len(s) > len(rw) {
		return false, source.IDENTIFIER
	}
	for _, e1 := range rw[len(s)-1] {
		if e1.val == s {
			return true, e1.kind
		}
	}
	return false, source.IDENTIFIER
}
