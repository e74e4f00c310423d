package source

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// idStartTable and idContinueTable approximate the Unicode ID_Start and
// ID_Continue properties (UAX #31) from the general category tables the Go
// standard library exposes. rangetable.Merge builds a single combined
// table so membership tests below are a single binary search instead of a
// chain of unicode.Is calls per category.
var idStartTable = rangetable.Merge(
	unicode.Letter,
	unicode.Nl,
	unicode.Other_ID_Start,
)

var idContinueTable = rangetable.Merge(
	idStartTable,
	unicode.Mn,
	unicode.Mc,
	unicode.Nd,
	unicode.Pc,
	unicode.Other_ID_Continue,
)

// IsUnicodeIdentifierStart reports whether r has the Unicode ID_Start
// property (UAX #31), excluding the ASCII '_' which the lexer treats as a
// separate, always-allowed identifier-start character.
func IsUnicodeIdentifierStart(r rune) bool {
	return unicode.Is(idStartTable, r)
}

// IsUnicodeIdentifierPart reports whether r has the Unicode ID_Continue
// property.
func IsUnicodeIdentifierPart(r rune) bool {
	return unicode.Is(idContinueTable, r)
}
