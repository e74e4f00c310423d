package emit

import (
	"strings"
	"testing"

	"porkchoplite/src/types"
)

func TestBuilderRegisterMinting(t *testing.T) {
	b := newBuilder()
	r0 := b.Alloca(types.IntType)
	r1 := b.Alloca(types.IntType)
	if r0 == r1 {
		t.Fatalf("expected distinct registers, got %s twice", r0)
	}
	if r0 != "%0" || r1 != "%1" {
		t.Fatalf("expected sequential %%0/%%1, got %s/%s", r0, r1)
	}
}

func TestBuilderConstIntMaterializesViaAllocaStoreLoad(t *testing.T) {
	b := newBuilder()
	b.ConstInt(42)
	out := b.String()
	if !strings.Contains(out, "alloca i64") || !strings.Contains(out, "store i64 42") || !strings.Contains(out, "load i64") {
		t.Errorf("expected an alloca+store+load sequence, got:\n%s", out)
	}
}

func TestBuilderReturnVoidForNoneAndNever(t *testing.T) {
	for _, typ := range []*types.Type{types.NoneType, types.NeverType} {
		b := newBuilder()
		b.Return(typ, "")
		if got := b.String(); strings.TrimSpace(got) != "ret void" {
			t.Errorf("Return(%s) = %q, want ret void", typ, got)
		}
	}
}

func TestBuilderReturnValueForScalar(t *testing.T) {
	b := newBuilder()
	b.Return(types.IntType, "%7")
	if got := strings.TrimSpace(b.String()); got != "ret i64 %7" {
		t.Errorf("Return(int) = %q, want %q", got, "ret i64 %7")
	}
}

func TestBuilderCallVoidForNoneResult(t *testing.T) {
	b := newBuilder()
	r := b.Call(types.NoneType, "@f", nil)
	if r != "" {
		t.Errorf("Call with none result should return \"\", got %q", r)
	}
	if !strings.Contains(b.String(), "call void @f()") {
		t.Errorf("expected a void call, got:\n%s", b.String())
	}
}

func TestBuilderCallReturnsRegisterForScalarResult(t *testing.T) {
	b := newBuilder()
	r := b.Call(types.IntType, "@f", []string{"i64 %0"})
	if r == "" {
		t.Fatal("expected a non-empty result register")
	}
	if !strings.Contains(b.String(), "= call i64 @f(i64 %0)") {
		t.Errorf("expected a typed call, got:\n%s", b.String())
	}
}

func TestBuilderLabelDipsIndentForItsLineOnly(t *testing.T) {
	b := newBuilder()
	b.indent = 4
	b.Label(3)
	b.line("br label %%L4")
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if lines[0] != "L3:" {
		t.Errorf("expected the label line to have no indent, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "    ") {
		t.Errorf("expected the following line to keep the surrounding indent, got %q", lines[1])
	}
}

func TestEscapeIdentQuotesNonSimpleNames(t *testing.T) {
	if got := EscapeIdent("main"); got != "main" {
		t.Errorf("EscapeIdent(main) = %q, want unescaped", got)
	}
	if got := EscapeIdent("a.b"); !strings.HasPrefix(got, `"`) {
		t.Errorf("EscapeIdent(a.b) = %q, want a quoted hex-escaped form", got)
	}
}
