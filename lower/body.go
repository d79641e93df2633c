package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"module/mil"
)

// env is the per-function local-value environment, a plain map rather
// than the teacher's scope stack since a mil.Code body never shadows a
// Temp (every binder mints a fresh one), so one flat map threaded by
// value suffices in place of pushScope/popScope.
type env map[*mil.Temp]value.Value

func (lw *Lowering) lowerBlockBody(b *mil.Block) {
	fn := lw.blockFuncs[b]
	entry := fn.NewBlock("entry")
	e := env{}
	for i, p := range b.Params {
		e[p] = fn.Params[i]
	}
	lw.lowerCode(fn, entry, e, b.Body, blockResultType(b))
}

func (lw *Lowering) declareClosureFunc(cd *mil.ClosureDefn) {
	self := ir.NewParam("self", lltypes.I8Ptr)
	argv := ir.NewParam("argv", lltypes.NewPointer(lltypes.I8Ptr))
	fn := lw.mod.NewFunc(fmt.Sprintf("clos.%s.%d", cd.Nm, cd.ID), lltypes.I8Ptr, self, argv)
	lw.closureFuncs[cd] = fn
}

// closureObjType returns (caching) the concrete tagged-object layout
// backing cd's allocations: tag, code pointer, then one field per
// stored (captured) parameter, in declaration order.
func (lw *Lowering) closureObjType(cd *mil.ClosureDefn) *lltypes.PointerType {
	if t, ok := lw.closureObjTy[cd]; ok {
		return t
	}
	fields := make([]lltypes.Type, 0, len(cd.Params)+2)
	fields = append(fields, lltypes.I32, lltypes.NewPointer(lltypes.I8))
	for _, p := range cd.Params {
		fields = append(fields, llType(p.Ty))
	}
	t := lltypes.NewPointer(lltypes.NewStruct(fields...))
	lw.closureObjTy[cd] = t
	return t
}

func (lw *Lowering) lowerClosureBody(cd *mil.ClosureDefn) {
	fn := lw.closureFuncs[cd]
	entry := fn.NewBlock("entry")
	objTy := lw.closureObjType(cd)
	selfCast := entry.NewBitCast(fn.Params[0], objTy)

	e := env{}
	for i, p := range cd.Params {
		e[p] = lw.loadField(entry, objTy, selfCast, i+2, llType(p.Ty))
	}
	for i, a := range cd.Args {
		slot := entry.NewGetElementPtr(lltypes.I8Ptr, fn.Params[1], constant.NewInt(lltypes.I32, int64(i)))
		boxed := entry.NewLoad(lltypes.I8Ptr, slot)
		e[a] = lw.unbox(entry, boxed, llType(a.Ty))
	}

	lw.lowerTailReturn(fn, entry, e, cd.Tail, lltypes.I8Ptr)
}
