package mil

import (
	"testing"

	"module/types"
)

func intTy() types.Type {
	return &types.TyconRef{Tycon: &types.Tycon{Name: "Int", K: types.Star()}}
}

func TestAlphaRenameSummaryStable(t *testing.T) {
	ctx := types.NewCtx()
	ty := intTy()

	x1 := NewTemp(ctx, ty)
	body1 := &Done{Tail: &Return{Args: []Atom{x1}}}

	x2 := NewTemp(ctx, ty)
	body2 := &Done{Tail: &Return{Args: []Atom{x2}}}

	if !AlphaCode([]*Temp{x1}, body1, []*Temp{x2}, body2) {
		t.Fatalf("expected bodies to be alpha equivalent")
	}
	s1 := Summary([]*Temp{x1}, body1)
	s2 := Summary([]*Temp{x2}, body2)
	if s1 != s2 {
		t.Fatalf("alpha-equivalent code must have equal summaries: %d != %d", s1, s2)
	}
}

func TestSummaryDiffersOnStructure(t *testing.T) {
	ctx := types.NewCtx()
	ty := intTy()

	x := NewTemp(ctx, ty)
	lit := IntLiteral(7, ty)

	body1 := &Done{Tail: &Return{Args: []Atom{x}}}
	body2 := &Done{Tail: &Return{Args: []Atom{lit}}}

	if AlphaCode([]*Temp{x}, body1, nil, body2) {
		t.Fatalf("a temp read and a literal must not be alpha equivalent")
	}
	if Summary([]*Temp{x}, body1) == Summary(nil, body2) {
		t.Fatalf("summaries should differ for structurally different code")
	}
}

func TestUsedVarsExcludesBoundAndWildcards(t *testing.T) {
	ctx := types.NewCtx()
	ty := intTy()

	p := NewTemp(ctx, ty)
	v := NewTemp(ctx, ty)
	wc := NewWildcard(ty)

	prim := &Primitive{Name: "add", Arity: 2}
	body := &Bind{
		Vars: []*Temp{v},
		Rhs:  &PrimCall{Prim: prim, Args: []Atom{p, p}},
		Rest: &Done{Tail: &Return{Args: []Atom{v, wc}}},
	}

	vs := NewTempSet()
	UsedVarsCode(body, vs)
	if !vs.Contains(p) {
		t.Fatalf("expected parameter p to be used")
	}
	if vs.Contains(v) {
		t.Fatalf("v is bound by the Bind; it must not appear as a free use of itself")
	}
	if len(vs) != 1 {
		t.Fatalf("expected exactly one free var (p), got %d", len(vs))
	}
}

func TestUnusedArgsFilterBlockCallArgs(t *testing.T) {
	ctx := types.NewCtx()
	ty := intTy()

	x, y, z := NewTemp(ctx, ty), NewTemp(ctx, ty), NewTemp(ctx, ty)
	callee := NewBlock(ctx, "callee", []*Temp{x, y, z}, &Done{Tail: &Return{Args: []Atom{x, z}}})
	callee.UsedArgs = []bool{true, false, true}
	callee.NumUsedArgs = 2

	a, b, c := NewTemp(ctx, ty), NewTemp(ctx, ty), NewTemp(ctx, ty)
	call := &BlockCall{Block: callee, Args: []Atom{a, b, c}}

	vs := NewTempSet()
	UsedVars(call, vs)
	if !vs.Contains(a) || !vs.Contains(c) {
		t.Fatalf("expected used-position args a and c to be live")
	}
	if vs.Contains(b) {
		t.Fatalf("arg b feeds an unused parameter and must not be live")
	}
}

func TestGuardedDetectsSelfLoop(t *testing.T) {
	ctx := types.NewCtx()
	ty := intTy()
	x := NewTemp(ctx, ty)

	loop := NewBlock(ctx, "loop", []*Temp{x}, nil)
	loop.Body = &Done{Tail: &BlockCall{Block: loop, Args: []Atom{x}}}

	bc := &BlockCall{Block: loop, Args: []Atom{x}}
	if !Guarded(bc, loop) {
		t.Fatalf("expected a self-recursive block to be detected as guarded")
	}

	other := NewBlock(ctx, "other", []*Temp{x}, &Done{Tail: &Return{Args: []Atom{x}}})
	bc2 := &BlockCall{Block: other, Args: []Atom{x}}
	if Guarded(bc2, loop) {
		t.Fatalf("non-recursive block must not be reported as guarded")
	}
}
