package lower

import (
	"testing"

	lltypes "github.com/llir/llvm/ir/types"

	"module/mil"
	"module/types"
)

func bitTy(n int64) types.Type {
	tc := &types.Tycon{Name: "Bit", K: types.Star(), Variant: types.BitTycon}
	return &types.TAp{Fun: &types.TyconRef{Tycon: tc}, Arg: &types.TLit{Nat: &n}}
}

func TestLLTypeBitWidth(t *testing.T) {
	lt := llType(bitTy(32))
	it, ok := lt.(*lltypes.IntType)
	if !ok {
		t.Fatalf("expected an integer type for Bit 32, got %T", lt)
	}
	if it.BitSize != 32 {
		t.Fatalf("expected bit width 32, got %d", it.BitSize)
	}
}

func TestLLTypeCachesOnTycon(t *testing.T) {
	ty := bitTy(8)
	first := llType(ty)
	second := llType(ty)
	if first != second {
		t.Fatalf("expected llType to return the identical cached value for the same Tycon")
	}
}

func TestConsObjTypeDistinctPerConstructor(t *testing.T) {
	lw := New()
	ty := bitTy(64)
	dataTy := &types.TyconRef{Tycon: &types.Tycon{Name: "Pair", K: types.Star(), Variant: types.DataTycon}}
	consA := &mil.ConstructorInfo{Name: "A", Tag: 0, DataType: dataTy, Fields: []types.Type{ty}}
	consB := &mil.ConstructorInfo{Name: "B", Tag: 1, DataType: dataTy, Fields: []types.Type{ty, ty}}

	oa := lw.consObjType(consA)
	ob := lw.consObjType(consB)
	if oa == ob {
		t.Fatalf("expected distinct object layouts for constructors with different field counts")
	}
	if again := lw.consObjType(consA); again != oa {
		t.Fatalf("expected consObjType to cache and return the identical layout for the same constructor")
	}
}

func TestClosureObjTypeIncludesCodePointerAndStoredFields(t *testing.T) {
	lw := New()
	ctx := types.NewCtx()
	ty := bitTy(64)
	p1 := mil.NewTemp(ctx, ty)
	p2 := mil.NewTemp(ctx, ty)
	cd := &mil.ClosureDefn{ID: ctx.FreshClosureID(), Nm: "k", Params: []*mil.Temp{p1, p2}}

	ot := lw.closureObjType(cd)
	st, ok := ot.ElemType.(*lltypes.StructType)
	if !ok {
		t.Fatalf("expected closureObjType to be a pointer to a struct, got %T", ot.ElemType)
	}
	// tag + code pointer + 2 stored params
	if len(st.Fields) != 4 {
		t.Fatalf("expected 4 fields (tag, code ptr, 2 stored), got %d", len(st.Fields))
	}
}
