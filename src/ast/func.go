package ast

import "porkchoplite/src/types"

// ParameterList carries a function's parameter names and its FuncType
// (shared between the declarator and every call site that type-checks
// against it).
type ParameterList struct {
	Names []string
	Type  *types.Type // kindFunction; Type.IsFunction() gives (params, result)
}

// FunctionDefinition carries a parsed body together with the local slot
// types assigned while parsing it, in index order (parameters occupy the
// first len(Names) slots).
type FunctionDefinition struct {
	Body       Expr
	LocalTypes []*types.Type
	Returns    []*Return // every Return encountered while parsing Body
}

// FunctionDeclarator is either a forward declaration (Definition == nil,
// permitting mutual recursion when referenced before its own definition
// appears) or a full definition. Exported marks it as visible to
// importers (spec §4.2.7: only function symbols are exported).
type FunctionDeclarator struct {
	Name       string
	Params     ParameterList
	Definition *FunctionDefinition
	Exported   bool
}
