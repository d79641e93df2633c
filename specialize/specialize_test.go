package specialize

import (
	"testing"

	"module/mil"
	"module/types"
)

func intTy() types.Type {
	return &types.TyconRef{Tycon: &types.Tycon{Name: "Int", K: types.Star()}}
}

// TestInstantiateMonomorphic builds a generic identity-shaped TopLevel
// (single Lhs with a Scheme quantifying over one type variable, body
// Return(Arg)) and checks that instantiating it at a concrete type
// produces a fresh, monomorphic TopLevel distinct from the original.
func TestInstantiateMonomorphic(t *testing.T) {
	ctx := types.NewCtx()
	prog := mil.NewProgram()
	prog.Ctx = ctx

	arg := mil.NewTemp(ctx, types.TGen(0))
	ident := &mil.ClosureDefn{ID: ctx.FreshClosureID(), Nm: "ident"}
	ident.Args = []*mil.Temp{arg}
	ident.Tail = &mil.Return{Args: []mil.Atom{arg}}
	prog.AddDef(ident)

	lhs := &mil.TopLhs{
		ID:       "ident",
		Declared: &types.Scheme{Generics: []*types.Kind{types.Star()}, Body: types.TGen(0)},
		Defining: types.TGen(0),
	}
	base := &mil.TopLevel{Lhs: []*mil.TopLhs{lhs}, Tail: &mil.Return{Args: []mil.Atom{arg}}}
	prog.AddDef(base)

	sp := New(prog)
	inst, fail := sp.Instantiate(base, 0, intTy())
	if fail != nil {
		t.Fatalf("unexpected failure instantiating: %v", fail)
	}
	if inst == base {
		t.Fatalf("expected a fresh monomorphic TopLevel, got the original back")
	}
	if inst.Lhs[0].Declared.IsPolymorphic() {
		t.Fatalf("expected the instantiated Lhs to be monomorphic")
	}

	again, fail := sp.Instantiate(base, 0, intTy())
	if fail != nil {
		t.Fatalf("unexpected failure on second instantiation: %v", fail)
	}
	if again != inst {
		t.Fatalf("expected the same concrete type to hit the instantiation cache")
	}
}

// TestInstantiateRecursesIntoTransitivelyReferencedTopLevel builds a
// polymorphic "outer" TopLevel whose tail does nothing but return a
// TopRef to a second, independently polymorphic "helper" TopLevel.
// Instantiating outer at a concrete type must also instantiate helper
// (reached only transitively, not as a program entry point) rather
// than cloning the reference to it unchanged.
func TestInstantiateRecursesIntoTransitivelyReferencedTopLevel(t *testing.T) {
	ctx := types.NewCtx()
	prog := mil.NewProgram()
	prog.Ctx = ctx

	helperLhs := &mil.TopLhs{
		ID:       "helper",
		Declared: &types.Scheme{Generics: []*types.Kind{types.Star()}, Body: types.TGen(0)},
		Defining: types.TGen(0),
	}
	helper := &mil.TopLevel{Lhs: []*mil.TopLhs{helperLhs}, Tail: &mil.Return{}}
	prog.AddDef(helper)

	outerLhs := &mil.TopLhs{
		ID:       "outer",
		Declared: &types.Scheme{Generics: []*types.Kind{types.Star()}, Body: types.TGen(0)},
		Defining: types.TGen(0),
	}
	outer := &mil.TopLevel{
		Lhs:  []*mil.TopLhs{outerLhs},
		Tail: &mil.Return{Args: []mil.Atom{&mil.TopRef{Top: helper, Index: 0}}},
	}
	prog.AddDef(outer)

	sp := New(prog)
	inst, fail := sp.Instantiate(outer, 0, intTy())
	if fail != nil {
		t.Fatalf("unexpected failure instantiating outer: %v", fail)
	}
	if inst == outer {
		t.Fatalf("expected a fresh monomorphic TopLevel for outer")
	}

	ret, ok := inst.Tail.(*mil.Return)
	if !ok || len(ret.Args) != 1 {
		t.Fatalf("expected the cloned tail to still be a single-value Return, got %#v", inst.Tail)
	}
	ref, ok := ret.Args[0].(*mil.TopRef)
	if !ok {
		t.Fatalf("expected outer's cloned Return to reference a TopRef, got %T", ret.Args[0])
	}
	if ref.Top == helper {
		t.Fatalf("expected the transitively-reached polymorphic helper to itself be instantiated, not just referenced")
	}
	if ref.Top.Lhs[0].Declared.IsPolymorphic() {
		t.Fatalf("expected the instantiated helper to be monomorphic")
	}

	again, fail := sp.Instantiate(outer, 0, intTy())
	if fail != nil {
		t.Fatalf("unexpected failure on second instantiation: %v", fail)
	}
	if again != inst {
		t.Fatalf("expected the outer instantiation to be cache-hit on a repeat request")
	}
}

func TestInstantiateAlreadyMonomorphicReturnsBase(t *testing.T) {
	ctx := types.NewCtx()
	prog := mil.NewProgram()
	prog.Ctx = ctx

	lhs := &mil.TopLhs{ID: "const", Declared: types.Mono(intTy()), Defining: intTy()}
	base := &mil.TopLevel{Lhs: []*mil.TopLhs{lhs}, Tail: &mil.Return{}}

	sp := New(prog)
	inst, fail := sp.Instantiate(base, 0, intTy())
	if fail != nil {
		t.Fatalf("unexpected failure: %v", fail)
	}
	if inst != base {
		t.Fatalf("an already-monomorphic TopLevel should be returned unchanged")
	}
}
