package ast

import (
	"testing"

	"porkchoplite/src/types"
)

func TestNewGlobalScopeWithBuiltinsDeclaresHostLibrary(t *testing.T) {
	g := NewGlobalScopeWithBuiltins()
	for name := range Builtins() {
		if _, ok := g.Lookup(name); !ok {
			t.Errorf("expected builtin %q to be pre-declared", name)
		}
	}
}

func TestGlobalScopeDeclareRejectsDuplicate(t *testing.T) {
	g := NewGlobalScope()
	if !g.Declare("f", types.IntType) {
		t.Fatal("first declaration of f should succeed")
	}
	if g.Declare("f", types.IntType) {
		t.Error("redeclaring f should fail")
	}
}

func TestGlobalScopeExportExposesOnlyDeclaredNames(t *testing.T) {
	g := NewGlobalScope()
	g.Declare("f", types.IntType)
	g.Export("f")
	g.Export("missing") // no-op: "missing" was never declared

	exports := g.Exports()
	if _, ok := exports["f"]; !ok {
		t.Error("expected f to be exported")
	}
	if _, ok := exports["missing"]; ok {
		t.Error("exporting an undeclared name must be a no-op")
	}
}

func TestGlobalScopeImportAddsToNamesAndImports(t *testing.T) {
	g := NewGlobalScope()
	if !g.Import("h", types.NewFunction(nil, types.NoneType)) {
		t.Fatal("first import of h should succeed")
	}
	if _, ok := g.Lookup("h"); !ok {
		t.Error("an imported name must resolve through Lookup")
	}
	if g.Declare("h", types.IntType) {
		t.Error("an imported name occupies the namespace like any other declaration")
	}
}
