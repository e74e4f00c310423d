package ast

import "porkchoplite/src/types"

// Builtins returns the fixed host-library contract every compilation unit
// may call without its own declaration (spec §6): a handful of runtime
// intrinsics the core only ever needs to declare and invoke, never
// define. Every new GlobalScope gets these pre-declared so both the entry
// file and every file reached through an import resolve them the same
// way.
func Builtins() map[string]*types.Type {
	ptrNone := types.NewPointer(types.NoneType)
	ptrInt := types.NewPointer(types.IntType)
	fn := types.NewFunction
	return map[string]*types.Type{
		"printint":        fn([]*types.Type{types.IntType}, types.NoneType),
		"printfloat":      fn([]*types.Type{types.FloatType}, types.NoneType),
		"print_int_array": fn([]*types.Type{ptrInt, types.IntType}, types.NoneType),
		"alloc":           fn([]*types.Type{types.IntType}, ptrNone),
		"dealloc":         fn([]*types.Type{ptrNone}, types.NoneType),
		"exit":            fn([]*types.Type{types.IntType}, types.NeverType),

		// Threading intrinsics are optional per spec §6; a PorkchopLite
		// thread body is a niladic function returning none, represented
		// the same way any other function value is: a bare code pointer
		// (*none), so thread_create takes the callee and an opaque
		// argument pointer rather than a typed closure.
		"thread_create": fn([]*types.Type{ptrNone, ptrNone}, types.IntType),
		"thread_join":   fn([]*types.Type{types.IntType}, types.NoneType),
		"thread_self":   fn(nil, types.IntType),
		"pc_time":       fn(nil, types.FloatType),
		"parallel_reduce": fn([]*types.Type{ptrInt, types.IntType, ptrNone}, types.IntType),
		"parallel_for":    fn([]*types.Type{ptrInt, types.IntType, ptrNone}, types.NoneType),
	}
}

// NewGlobalScopeWithBuiltins returns an empty scope pre-populated with the builtins
// table, ready for top-level declarations and imports.
func NewGlobalScopeWithBuiltins() *GlobalScope {
	g := NewGlobalScope()
	for name, t := range Builtins() {
		g.Declare(name, t)
	}
	return g
}
