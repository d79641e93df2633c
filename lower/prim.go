package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// lowerPrim generates the instruction for a primitive call, matching
// genIntrinsic's name switch: a handful of arithmetic/comparison ops
// map directly onto an llir/llvm instruction constructor, and anything
// this switch does not recognise falls back to a call against an
// externally declared function of the same name, so a new primitive
// never needs a new case here to keep compiling.
func (lw *Lowering) lowerPrim(b *ir.Block, name string, args []value.Value) value.Value {
	switch name {
	case "iadd":
		return b.NewAdd(args[0], args[1])
	case "isub":
		return b.NewSub(args[0], args[1])
	case "imul":
		return b.NewMul(args[0], args[1])
	case "idiv":
		return b.NewSDiv(args[0], args[1])
	case "imod":
		return b.NewSRem(args[0], args[1])
	case "ineg":
		return b.NewSub(zeroLike(args[0]), args[0])
	case "iand":
		return b.NewAnd(args[0], args[1])
	case "ior":
		return b.NewOr(args[0], args[1])
	case "ixor":
		return b.NewXor(args[0], args[1])
	case "ishl":
		return b.NewShl(args[0], args[1])
	case "ishr":
		return b.NewAShr(args[0], args[1])
	case "inot":
		return b.NewXor(args[0], allOnesLike(args[0]))
	case "ieq":
		return b.NewICmp(enum.IPredEQ, args[0], args[1])
	case "ine":
		return b.NewICmp(enum.IPredNE, args[0], args[1])
	case "ilt":
		return b.NewICmp(enum.IPredSLT, args[0], args[1])
	case "ile":
		return b.NewICmp(enum.IPredSLE, args[0], args[1])
	case "igt":
		return b.NewICmp(enum.IPredSGT, args[0], args[1])
	case "ige":
		return b.NewICmp(enum.IPredSGE, args[0], args[1])
	case "fadd":
		return b.NewFAdd(args[0], args[1])
	case "fsub":
		return b.NewFSub(args[0], args[1])
	case "fmul":
		return b.NewFMul(args[0], args[1])
	case "fdiv":
		return b.NewFDiv(args[0], args[1])
	case "feq":
		return b.NewFCmp(enum.FPredOEQ, args[0], args[1])
	case "flt":
		return b.NewFCmp(enum.FPredOLT, args[0], args[1])
	default:
		return b.NewCall(lw.externFunc(name), args...)
	}
}

func zeroLike(v value.Value) value.Value {
	if it, ok := v.Type().(*lltypes.IntType); ok {
		return constant.NewInt(it, 0)
	}
	return v
}

func allOnesLike(v value.Value) value.Value {
	if it, ok := v.Type().(*lltypes.IntType); ok {
		return constant.NewInt(it, -1)
	}
	return v
}

// externFunc looks up (declaring on first use) a runtime collaborator
// by name for a primitive this switch does not lower directly,
// mirroring how "__init" falls through to a plain call against
// g.initFunc in genIntrinsic rather than a dedicated instruction.
func (lw *Lowering) externFunc(name string) *ir.Func {
	if fn, ok := lw.namedExterns[name]; ok {
		return fn
	}
	fn := lw.mod.NewFunc(name, objPtrType)
	fn.Linkage = enum.LinkageExternal
	lw.namedExterns[name] = fn
	return fn
}
