// Package diag defines the error kinds the compiler core reports. Rendering
// a diag.Error against source text is the external diagnostics collaborator
// (spec §1); this package only carries the kind, primary span and notes.
package diag

import (
	"fmt"
	"strings"

	"porkchoplite/src/source"
)

// Kind classifies a compiler error. These mirror the error-kind taxonomy
// of the specification: tokenization, structural, parse, type, semantic
// and I/O errors are all fatal to the current compilation; none of them
// are recoverable.
type Kind int

const (
	Tokenization Kind = iota
	Structural
	Parse
	Type
	Semantic
	IO
	Internal
)

func (k Kind) String() string {
	switch k {
	case Tokenization:
		return "tokenization error"
	case Structural:
		return "structural error"
	case Parse:
		return "parse error"
	case Type:
		return "type error"
	case Semantic:
		return "semantic error"
	case IO:
		return "I/O error"
	default:
		return "internal error"
	}
}

// Note attaches a secondary span to an Error, such as "declared here" or
// "nearest matching ( is here".
type Note struct {
	Text    string
	Segment source.Segment
	HasSpan bool
}

// Error is the single error type returned by every stage of the core. All
// compiler errors are fatal; there is no recovery or resynchronization.
type Error struct {
	Kind    Kind
	Text    string
	Segment source.Segment
	Notes   []Note
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s (line %d:%d)", e.Kind, e.Text, e.Segment.Line1, e.Segment.Column1)
	for _, n := range e.Notes {
		if n.HasSpan {
			fmt.Fprintf(&sb, "\n  note: %s (line %d:%d)", n.Text, n.Segment.Line1, n.Segment.Column1)
		} else {
			fmt.Fprintf(&sb, "\n  note: %s", n.Text)
		}
	}
	return sb.String()
}

// New builds an Error of the given kind carrying a primary Segment.
func New(kind Kind, seg source.Segment, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Text: fmt.Sprintf(format, args...), Segment: seg}
}

// WithNote appends a note to the Error and returns it, allowing chained
// construction at the raise site.
func (e *Error) WithNote(text string) *Error {
	e.Notes = append(e.Notes, Note{Text: text})
	return e
}

// WithNoteAt appends a note carrying its own span.
func (e *Error) WithNoteAt(seg source.Segment, text string) *Error {
	e.Notes = append(e.Notes, Note{Text: text, Segment: seg, HasSpan: true})
	return e
}
