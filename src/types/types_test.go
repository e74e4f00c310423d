package types

import "testing"

func TestScalarIRAndSize(t *testing.T) {
	cases := []struct {
		t    *Type
		ir   string
		size int
	}{
		{NoneType, "void", 0},
		{NeverType, "void", 0},
		{BoolType, "i1", 8},
		{IntType, "i64", 8},
		{FloatType, "double", 8},
	}
	for _, c := range cases {
		if got := c.t.IR(); got != c.ir {
			t.Errorf("%s.IR() = %q, want %q", c.t, got, c.ir)
		}
		if got := c.t.Size(); got != c.size {
			t.Errorf("%s.Size() = %d, want %d", c.t, got, c.size)
		}
	}
}

func TestPointerAndFunctionString(t *testing.T) {
	p := NewPointer(IntType)
	if got := p.String(); got != "*int" {
		t.Errorf("pointer String() = %q, want %q", got, "*int")
	}
	f := NewFunction([]*Type{IntType, FloatType}, BoolType)
	if got := f.String(); got != "(int, float): bool" {
		t.Errorf("function String() = %q, want %q", got, "(int, float): bool")
	}
}

func TestAssignableFromScalarRules(t *testing.T) {
	if NeverType.AssignableFrom(NeverType) == false {
		t.Error("never should be assignable from itself (identical singleton)")
	}
	if NeverType.AssignableFrom(IntType) {
		t.Error("never must not be assignable from any other type")
	}
	if !NoneType.AssignableFrom(IntType) {
		t.Error("none must absorb a non-never value")
	}
	if NoneType.AssignableFrom(NeverType) {
		t.Error("none must not be assignable from never")
	}
	if IntType.AssignableFrom(FloatType) {
		t.Error("int must require exact equality, not absorb float")
	}
}

func TestAssignableFromFunctionCovariance(t *testing.T) {
	wide := NewFunction([]*Type{IntType}, NoneType)
	narrow := NewFunction([]*Type{IntType}, IntType)
	if !wide.AssignableFrom(narrow) {
		t.Error("a none-returning function type should accept an int-returning one (covariant result)")
	}
	if narrow.AssignableFrom(wide) {
		t.Error("an int-returning function type must not accept a none-returning one")
	}
	neverFn := NewFunction([]*Type{IntType}, NeverType)
	if !neverFn.AssignableFrom(neverFn) {
		t.Error("a never-returning function type should unify with itself")
	}
}

func TestEither(t *testing.T) {
	if got := Either(IntType, IntType); got != IntType {
		t.Errorf("Either(int, int) = %v, want int", got)
	}
	if got := Either(NeverType, IntType); got != IntType {
		t.Errorf("Either(never, int) = %v, want int", got)
	}
	if got := Either(IntType, NeverType); got != IntType {
		t.Errorf("Either(int, never) = %v, want int", got)
	}
	if got := Either(NoneType, IntType); got != NoneType {
		t.Errorf("Either(none, int) = %v, want none", got)
	}
	if got := Either(IntType, FloatType); got != nil {
		t.Errorf("Either(int, float) = %v, want nil (no common type)", got)
	}
}
