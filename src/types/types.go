// Package types implements the core's type model: a small closed set of
// scalar types, pointer types and function types, with the equality and
// assignability rules that drive the type checker in src/frontend and the
// LLVM type strings produced by src/emit.
package types

import "strings"

// Scalar enumerates the five scalar kinds. none and never are both
// zero-width at the machine level; none is the "no useful value" unit type
// and never is the bottom type of unreachable code.
type Scalar int

const (
	None Scalar = iota
	Never
	Bool
	Int
	Float
)

var scalarNames = [...]string{"none", "never", "bool", "int", "float"}

// scalarDescriptors gives the LLVM IR type spelling for each scalar kind.
// None and Never both lower to "void": neither ever appears as a loaded
// value, only as the type of an expression that produces no usable result.
var scalarDescriptors = [...]string{"void", "void", "i1", "i64", "double"}

func (s Scalar) String() string { return scalarNames[s] }

// IR returns the LLVM IR spelling of the scalar type.
func (s Scalar) IR() string { return scalarDescriptors[s] }

// Size returns the in-memory size, in bytes, of a value of this scalar
// type: 8 bytes for every scalar other than none/never, matching every
// pointer and function symbol's size. None and Never have no
// representable size and report 0.
func (s Scalar) Size() int {
	switch s {
	case Bool, Int, Float:
		return 8
	default:
		return 0
	}
}

// Type is the tagged union over Scalar, Pointer and Function types. It is
// implemented by *Type itself; there is deliberately no separate
// interface-per-kind hierarchy, since the set of kinds is closed and small
// enough that a single struct with a discriminant reads more plainly than
// three mutually-recursive interface implementations.
type Type struct {
	kind     kind
	scalar   Scalar  // valid when kind == kindScalar
	elem     *Type   // valid when kind == kindPointer: pointee type
	params   []*Type // valid when kind == kindFunction
	result   *Type   // valid when kind == kindFunction
}

type kind int

const (
	kindScalar kind = iota
	kindPointer
	kindFunction
)

// Scalar kind singletons. These are shared, comparable by identity as well
// as by Equals, and safe to hand out from every call site that needs one.
var (
	NoneType  = &Type{kind: kindScalar, scalar: None}
	NeverType = &Type{kind: kindScalar, scalar: Never}
	BoolType  = &Type{kind: kindScalar, scalar: Bool}
	IntType   = &Type{kind: kindScalar, scalar: Int}
	FloatType = &Type{kind: kindScalar, scalar: Float}
)

var scalarSingletons = map[Scalar]*Type{
	None:  NoneType,
	Never: NeverType,
	Bool:  BoolType,
	Int:   IntType,
	Float: FloatType,
}

// OfScalar returns the shared singleton Type for a Scalar kind.
func OfScalar(s Scalar) *Type { return scalarSingletons[s] }

// NewPointer constructs a pointer-to-elem type.
func NewPointer(elem *Type) *Type {
	return &Type{kind: kindPointer, elem: elem}
}

// NewFunction constructs a function type with the given parameter types
// and result type.
func NewFunction(params []*Type, result *Type) *Type {
	return &Type{kind: kindFunction, params: params, result: result}
}

// IsScalar reports whether t is a scalar of kind s.
func (t *Type) IsScalar(s Scalar) bool { return t.kind == kindScalar && t.scalar == s }

// IsNone reports whether t is the none type.
func (t *Type) IsNone() bool { return t.IsScalar(None) }

// IsNever reports whether t is the never (bottom) type.
func (t *Type) IsNever() bool { return t.IsScalar(Never) }

// IsBool reports whether t is bool.
func (t *Type) IsBool() bool { return t.IsScalar(Bool) }

// IsInt reports whether t is int.
func (t *Type) IsInt() bool { return t.IsScalar(Int) }

// IsFloat reports whether t is float.
func (t *Type) IsFloat() bool { return t.IsScalar(Float) }

// IsArithmetic reports whether t is int or float.
func (t *Type) IsArithmetic() bool { return t.IsInt() || t.IsFloat() }

// IsPointer reports whether t is a pointer type, returning its pointee.
func (t *Type) IsPointer() (*Type, bool) {
	if t.kind == kindPointer {
		return t.elem, true
	}
	return nil, false
}

// IsFunction reports whether t is a function type, returning its
// parameters and result.
func (t *Type) IsFunction() ([]*Type, *Type, bool) {
	if t.kind == kindFunction {
		return t.params, t.result, true
	}
	return nil, nil, false
}

// Equals reports whether t and other denote exactly the same type.
func (t *Type) Equals(other *Type) bool {
	if t == other {
		return true
	}
	if other == nil || t.kind != other.kind {
		return false
	}
	switch t.kind {
	case kindScalar:
		return t.scalar == other.scalar
	case kindPointer:
		return t.elem.Equals(other.elem)
	case kindFunction:
		if len(t.params) != len(other.params) || !t.result.Equals(other.result) {
			return false
		}
		for i := range t.params {
			if !t.params[i].Equals(other.params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// AssignableFrom reports whether a value of type other may be assigned to
// (or passed where) a value of type t is expected.
//
//   - never is assignable to nothing but itself (it is never a variable's
//     static type, only an expression's).
//   - none accepts any non-never type: assigning a useful value where no
//     value is required is always fine, the value is simply discarded.
//   - function types are invariant in parameters (each must be Equals)
//     and covariant in result, except that never results unify with never results even
//     though never is not otherwise self-assignable through the covariance
//     rule below.
//   - every other scalar, and pointer types, require exact Equals.
func (t *Type) AssignableFrom(other *Type) bool {
	if t == other {
		return true
	}
	switch t.kind {
	case kindScalar:
		switch t.scalar {
		case Never:
			return false
		case None:
			return !other.IsNever()
		default:
			return t.Equals(other)
		}
	case kindFunction:
		if other.kind != kindFunction {
			return false
		}
		if len(t.params) != len(other.params) {
			return false
		}
		resultOK := t.result.AssignableFrom(other.result) || (t.result.IsNever() && other.result.IsNever())
		if !resultOK {
			return false
		}
		for i := range t.params {
			if !t.params[i].Equals(other.params[i]) {
				return false
			}
		}
		return true
	default:
		return t.Equals(other)
	}
}

// Size returns the in-memory size, in bytes, of a value of this type.
// Pointers and functions (represented as a code pointer at runtime) are
// both machine-word sized.
func (t *Type) Size() int {
	switch t.kind {
	case kindScalar:
		return t.scalar.Size()
	default:
		return 8
	}
}

// IR returns the LLVM IR type spelling for t, used whenever the emitter
// needs a typed value, alloca, or function signature.
func (t *Type) IR() string {
	switch t.kind {
	case kindScalar:
		return t.scalar.IR()
	case kindPointer:
		return "ptr"
	case kindFunction:
		return "ptr"
	}
	return "void"
}

// String renders t the way diagnostics quote a type: "*int",
// "(int, float): bool", "none", and so on.
func (t *Type) String() string {
	switch t.kind {
	case kindScalar:
		return t.scalar.String()
	case kindPointer:
		return "*" + t.elem.String()
	case kindFunction:
		var sb strings.Builder
		sb.WriteByte('(')
		for i, p := range t.params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteString("): ")
		sb.WriteString(t.result.String())
		return sb.String()
	}
	return "?"
}

// Either returns the common type of type1 and type2 under the
// if/else and `?:`-like merge rule: identical types unify to themselves,
// never defers to the other branch, and none absorbs anything that isn't
// never. Returns nil when no common type exists.
func Either(type1, type2 *Type) *Type {
	if type1.Equals(type2) {
		return type1
	}
	if type1.IsNever() {
		return type2
	}
	if type2.IsNever() {
		return type1
	}
	if type1.IsNone() || type2.IsNone() {
		return NoneType
	}
	return nil
}
