package lower

import (
	"github.com/llir/llvm/ir/constant"

	"module/mil"
)

// declareGlobal reserves a storage slot for every left-hand side a
// TopLevel binds, up front, so a TopRef from anywhere in the
// dependency order resolves to a real address the way declareBlockFunc
// pre-declares callable signatures before any body is lowered.
func (lw *Lowering) declareGlobal(t *mil.TopLevel) {
	for _, lhs := range t.Lhs {
		ty := llType(lhs.Defining)
		g := lw.mod.NewGlobal(lhs.ID, ty)
		g.Init = constant.NewZeroInitializer(ty)
		lw.globals[lhs] = g
	}
}

// lowerTopLevel fills in a TopLevel's storage. A hoisted TopLevel
// (StaticValue set, §4.6) has already had its allocation shared across
// every call site that used to repeat it; what is left for lowering is
// the same as any other TopLevel, a single alloc evaluated once by the
// module's $init function and stored into its slot. This plays the
// role InitVarMap's globalInits list played in the original, except
// each slot is a real address rather than an entry re-scanned on every
// lookup.
func (lw *Lowering) lowerTopLevel(t *mil.TopLevel) {
	results := lw.lowerTailMulti(lw.initFunc, lw.initBlock, env{}, t.Tail, nil)
	for i, lhs := range t.Lhs {
		if i >= len(results) {
			break
		}
		lw.initBlock.NewStore(results[i], lw.globals[lhs])
	}
}
