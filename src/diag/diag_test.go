package diag

import (
	"strings"
	"testing"

	"porkchoplite/src/source"
)

func TestKindString(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{Tokenization, "tokenization error"},
		{Structural, "structural error"},
		{Parse, "parse error"},
		{Type, "type error"},
		{Semantic, "semantic error"},
		{IO, "I/O error"},
		{Internal, "internal error"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("%d.String() = %q, want %q", c.k, got, c.want)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	seg := source.Segment{Line1: 3, Column1: 5, Line2: 3, Column2: 6}
	err := New(Type, seg, "int expected, found %s", "bool")
	msg := err.Error()
	if !strings.Contains(msg, "type error") || !strings.Contains(msg, "int expected, found bool") {
		t.Errorf("unexpected error text: %q", msg)
	}
	if !strings.Contains(msg, "3:5") {
		t.Errorf("expected the primary span to appear in the message, got %q", msg)
	}
}

func TestErrorWithNotes(t *testing.T) {
	seg := source.Segment{Line1: 1, Column1: 1}
	noteSeg := source.Segment{Line1: 2, Column1: 1}
	err := New(Structural, seg, "unmatched bracket").
		WithNote("a plain note").
		WithNoteAt(noteSeg, "opener is here")

	msg := err.Error()
	if !strings.Contains(msg, "a plain note") {
		t.Errorf("expected the plain note's text in the message, got %q", msg)
	}
	if !strings.Contains(msg, "opener is here") || !strings.Contains(msg, "2:1") {
		t.Errorf("expected the spanned note with its position, got %q", msg)
	}
}
