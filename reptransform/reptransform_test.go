package reptransform

import (
	"testing"

	"module/mil"
	"module/types"
)

func intTy() types.Type {
	return &types.TyconRef{Tycon: &types.Tycon{Name: "Int", K: types.Star()}}
}

func tupleTy(elems ...types.Type) types.Type {
	t := types.Type(&types.TyconRef{Tycon: types.Tuple(len(elems))})
	for _, e := range elems {
		t = &types.TAp{Fun: t, Arg: e}
	}
	return t
}

func TestRepCalcSplitsTuples(t *testing.T) {
	tt := tupleTy(intTy(), intTy())
	comps := RepCalc(tt)
	if len(comps) != 2 {
		t.Fatalf("expected a 2-tuple to split into 2 components, got %d", len(comps))
	}
}

func TestRepCalcLeavesNonTuples(t *testing.T) {
	if comps := RepCalc(intTy()); comps != nil {
		t.Fatalf("a non-tuple type must not be split, got %v", comps)
	}
}

func TestRunSplitsBlockParamAndShortsSel(t *testing.T) {
	ctx := types.NewCtx()
	ty := intTy()
	tt := tupleTy(ty, ty)

	cons := &mil.ConstructorInfo{Name: "Pair", Tag: 0, DataType: tt, Fields: []types.Type{ty, ty}}

	pairParam := mil.NewTemp(ctx, tt)
	v := mil.NewTemp(ctx, ty)
	body := &mil.Bind{
		Vars: []*mil.Temp{v},
		Rhs:  &mil.Sel{Cons: cons, Index: 0, Arg: pairParam},
		Rest: &mil.Done{Tail: &mil.Return{Args: []mil.Atom{v}}},
	}

	prog := mil.NewProgram()
	blk := mil.NewBlock(ctx, "useFst", []*mil.Temp{pairParam}, body)
	prog.AddDef(blk)

	changed := Run(prog)
	if changed == 0 {
		t.Fatalf("expected the tuple-typed parameter to be split")
	}
	if len(blk.Params) != 2 {
		t.Fatalf("expected 2 split params in place of the tuple param, got %d", len(blk.Params))
	}

	done, ok := blk.Body.(*mil.Done)
	if !ok {
		t.Fatalf("expected the Sel's Bind to be shorted away, leaving a Done, got %T", blk.Body)
	}
	ret, ok := done.Tail.(*mil.Return)
	if !ok || len(ret.Args) != 1 || ret.Args[0] != blk.Params[0] {
		t.Fatalf("expected the body to return the first split component directly, got %#v", done.Tail)
	}
}
