package optimize

import (
	"testing"

	"module/config"
	"module/mil"
	"module/types"
)

func intTy() types.Type {
	return &types.TyconRef{Tycon: &types.Tycon{Name: "Int", K: types.Star()}}
}

func TestRunInlineSingleUseCallee(t *testing.T) {
	ctx := types.NewCtx()
	prog := mil.NewProgram()
	prog.Ctx = ctx

	p := mil.NewTemp(ctx, intTy())
	callee := mil.NewBlock(ctx, "callee", []*mil.Temp{p}, &mil.Done{Tail: &mil.Return{Args: []mil.Atom{p}}})
	prog.AddDef(callee)

	arg := mil.NewTemp(ctx, intTy())
	caller := mil.NewBlock(ctx, "caller", []*mil.Temp{arg},
		&mil.Done{Tail: &mil.BlockCall{Block: callee, Args: []mil.Atom{arg}}})
	prog.AddDef(caller)

	cfg := config.Default()
	n := RunInline(prog, cfg)
	if n == 0 {
		t.Fatalf("expected the single-use callee to be inlined")
	}
	if _, ok := caller.Body.(*mil.Done); !ok {
		t.Fatalf("expected caller body to collapse to a Done after inlining, got %T", caller.Body)
	}
}

func TestRunUnusedArgsDropsDeadParam(t *testing.T) {
	prog := mil.NewProgram()
	ctx := prog.Ctx

	used := mil.NewTemp(ctx, intTy())
	dead := mil.NewTemp(ctx, intTy())
	blk := mil.NewBlock(ctx, "f", []*mil.Temp{used, dead}, &mil.Done{Tail: &mil.Return{Args: []mil.Atom{used}}})
	prog.AddDef(blk)

	arg1 := mil.NewTemp(ctx, intTy())
	arg2 := mil.NewTemp(ctx, intTy())
	caller := mil.NewBlock(ctx, "caller", []*mil.Temp{arg1, arg2},
		&mil.Done{Tail: &mil.BlockCall{Block: blk, Args: []mil.Atom{arg1, arg2}}})
	prog.AddDef(caller)

	n := RunUnusedArgs(prog)
	if n == 0 {
		t.Fatalf("expected the unused parameter to be detected")
	}
	if len(blk.Params) != 1 {
		t.Fatalf("expected the dead parameter to be dropped, got %d params", len(blk.Params))
	}

	bc, ok := caller.Body.(*mil.Done).Tail.(*mil.BlockCall)
	if !ok {
		t.Fatalf("expected caller's Done tail to still be a BlockCall, got %T", caller.Body.(*mil.Done).Tail)
	}
	if len(bc.Args) != 1 {
		t.Fatalf("expected the caller's argument list to shrink in lockstep, got %d args", len(bc.Args))
	}
}

func TestRunUnusedArgsDropsDeadCapturedParam(t *testing.T) {
	prog := mil.NewProgram()
	ctx := prog.Ctx

	x := mil.NewTemp(ctx, intTy())
	y := mil.NewTemp(ctx, intTy())
	z := mil.NewTemp(ctx, intTy())
	a := mil.NewTemp(ctx, intTy())

	cd := &mil.ClosureDefn{
		ID:     ctx.FreshClosureID(),
		Nm:     "k",
		Params: []*mil.Temp{x, y, z},
		Args:   []*mil.Temp{a},
		Tail:   &mil.Return{Args: []mil.Atom{x, z, a}},
		Alloc:  &types.AllocType{Stored: []types.Type{intTy(), intTy(), intTy()}, Result: intTy()},
	}
	prog.AddDef(cd)

	cv1 := mil.NewTemp(ctx, intTy())
	cv2 := mil.NewTemp(ctx, intTy())
	cv3 := mil.NewTemp(ctx, intTy())
	maker := mil.NewBlock(ctx, "makeClosure", []*mil.Temp{cv1, cv2, cv3},
		&mil.Done{Tail: &mil.ClosAlloc{Closure: cd, Args: []mil.Atom{cv1, cv2, cv3}}})
	prog.AddDef(maker)

	n := RunUnusedArgs(prog)
	if n == 0 {
		t.Fatalf("expected the unused captured parameter y to be detected")
	}
	if len(cd.Params) != 2 {
		t.Fatalf("expected the closure's captured param list to shrink to 2, got %d", len(cd.Params))
	}
	if cd.Params[0] != x || cd.Params[1] != z {
		t.Fatalf("expected the surviving captured params to be x and z in order, got %v", cd.Params)
	}
	if len(cd.Alloc.Stored) != 2 {
		t.Fatalf("expected the closure's Alloc.Stored layout to shrink to 2 slots, got %d", len(cd.Alloc.Stored))
	}
	if len(cd.Args) != 1 {
		t.Fatalf("expected the closure's invocation arg list to be untouched, got %d", len(cd.Args))
	}

	ca, ok := maker.Body.(*mil.Done).Tail.(*mil.ClosAlloc)
	if !ok {
		t.Fatalf("expected maker's Done tail to still be a ClosAlloc, got %T", maker.Body.(*mil.Done).Tail)
	}
	if len(ca.Args) != 2 {
		t.Fatalf("expected the ClosAlloc's captured-value list to shrink in lockstep, got %d", len(ca.Args))
	}
	if ca.Args[0].(*mil.Temp) != cv1 || ca.Args[1].(*mil.Temp) != cv3 {
		t.Fatalf("expected the surviving captured values to be cv1 and cv3 in order, got %v", ca.Args)
	}
}

func TestRunDedupMergesAlphaEquivalentBlocks(t *testing.T) {
	prog := mil.NewProgram()
	ctx := prog.Ctx

	p1 := mil.NewTemp(ctx, intTy())
	b1 := mil.NewBlock(ctx, "a", []*mil.Temp{p1}, &mil.Done{Tail: &mil.Return{Args: []mil.Atom{p1}}})
	prog.AddDef(b1)

	p2 := mil.NewTemp(ctx, intTy())
	b2 := mil.NewBlock(ctx, "b", []*mil.Temp{p2}, &mil.Done{Tail: &mil.Return{Args: []mil.Atom{p2}}})
	prog.AddDef(b2)

	arg := mil.NewTemp(ctx, intTy())
	caller := mil.NewBlock(ctx, "caller", []*mil.Temp{arg},
		&mil.Done{Tail: &mil.BlockCall{Block: b2, Args: []mil.Atom{arg}}})
	prog.AddDef(caller)

	n := RunDedup(prog)
	if n == 0 {
		t.Fatalf("expected the two alpha-equivalent identity blocks to merge")
	}

	bc := caller.Body.(*mil.Done).Tail.(*mil.BlockCall)
	if bc.Block != b1 {
		t.Fatalf("expected caller's reference to the merged-away block to be redirected to the retained one")
	}
}

func TestRunDedupMergesAlphaEquivalentTopLevels(t *testing.T) {
	prog := mil.NewProgram()
	ctx := prog.Ctx

	one := int64(1)
	top1 := &mil.TopLevel{
		Lhs:  []*mil.TopLhs{{ID: "a", Declared: types.Mono(intTy()), Defining: intTy()}},
		Tail: &mil.Return{Args: []mil.Atom{&mil.Literal{IntVal: one, IsInt: true, Ty: intTy()}}},
	}
	prog.AddDef(top1)

	top2 := &mil.TopLevel{
		Lhs:  []*mil.TopLhs{{ID: "b", Declared: types.Mono(intTy()), Defining: intTy()}},
		Tail: &mil.Return{Args: []mil.Atom{&mil.Literal{IntVal: one, IsInt: true, Ty: intTy()}}},
	}
	prog.AddDef(top2)

	p := mil.NewTemp(ctx, intTy())
	user := mil.NewBlock(ctx, "user", []*mil.Temp{p},
		&mil.Done{Tail: &mil.Return{Args: []mil.Atom{&mil.TopRef{Top: top2, Index: 0}}}})
	prog.AddDef(user)

	n := RunDedup(prog)
	if n == 0 {
		t.Fatalf("expected the two alpha-equivalent TopLevels to merge")
	}

	ret := user.Body.(*mil.Done).Tail.(*mil.Return)
	ref, ok := ret.Args[0].(*mil.TopRef)
	if !ok {
		t.Fatalf("expected user's Return to still reference a TopRef, got %T", ret.Args[0])
	}
	if ref.Top != top1 {
		t.Fatalf("expected the reference to the merged-away TopLevel to be redirected to the retained one")
	}
}

// TestRunFlowDerivesKnownConstructorClosure builds a Block that first
// allocates a data value and then immediately captures it in a
// ClosAlloc, and checks that RunFlow (with known-cons enabled) rewrites
// the ClosAlloc to use a specialised closure whose captured arg list is
// the DataAlloc's own fields, per §4.5.
func TestRunFlowDerivesKnownConstructorClosure(t *testing.T) {
	ctx := types.NewCtx()
	prog := mil.NewProgram()
	prog.Ctx = ctx

	cons := &mil.ConstructorInfo{Name: "Box", Tag: 0, DataType: intTy(), Fields: []types.Type{intTy()}}
	field := mil.NewTemp(ctx, intTy())
	da := &mil.DataAlloc{Cons: cons, Args: []mil.Atom{field}}

	p := mil.NewTemp(ctx, intTy())
	k := &mil.ClosureDefn{ID: ctx.FreshClosureID(), Nm: "k", Params: []*mil.Temp{p},
		Tail: &mil.Return{Args: []mil.Atom{p}}}
	prog.AddDef(k)

	dVar := mil.NewTemp(ctx, intTy())
	cVar := mil.NewTemp(ctx, intTy())
	body := &mil.Bind{
		Vars: []*mil.Temp{dVar}, Rhs: da,
		Rest: &mil.Bind{
			Vars: []*mil.Temp{cVar}, Rhs: &mil.ClosAlloc{Closure: k, Args: []mil.Atom{dVar}},
			Rest: &mil.Done{Tail: &mil.Return{Args: []mil.Atom{cVar}}},
		},
	}
	blk := mil.NewBlock(ctx, "user", nil, body)
	prog.AddDef(blk)

	cfg := config.Default()
	if n := RunFlow(prog, cfg.Passes.KnownCons); n == 0 {
		t.Fatalf("expected RunFlow to derive a known-constructor specialisation")
	}

	outer, ok := blk.Body.(*mil.Bind)
	if !ok {
		t.Fatalf("expected the outer Bind to survive, got %T", blk.Body)
	}
	inner, ok := outer.Rest.(*mil.Bind)
	if !ok {
		t.Fatalf("expected the inner Bind to survive, got %T", outer.Rest)
	}
	ca, ok := inner.Rhs.(*mil.ClosAlloc)
	if !ok {
		t.Fatalf("expected the rewritten rhs to still be a ClosAlloc, got %T", inner.Rhs)
	}
	if ca.Closure == k {
		t.Fatalf("expected a derived closure distinct from the original")
	}
	if len(ca.Args) != 1 || ca.Args[0] != field {
		t.Fatalf("expected the derived ClosAlloc to capture the DataAlloc's own field, got %v", ca.Args)
	}
}

func TestRunToFixpointTerminates(t *testing.T) {
	prog := mil.NewProgram()
	ctx := prog.Ctx

	p := mil.NewTemp(ctx, intTy())
	blk := mil.NewBlock(ctx, "f", []*mil.Temp{p}, &mil.Done{Tail: &mil.Return{Args: []mil.Atom{p}}})
	prog.AddDef(blk)

	cfg := config.Default()
	RunToFixpoint(prog, cfg)

	if RunFlow(prog, cfg.Passes.KnownCons) != 0 || RunDedup(prog) != 0 {
		t.Fatalf("expected the program to already be settled after RunToFixpoint returns")
	}
}
