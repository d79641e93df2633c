package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// declareAllocFn declares the external runtime collaborator every
// DataAlloc/ClosAlloc calls into, matching Allocator.alloc's
// `new llvm.Global(llvm.Type.i8, "alloc")` call target: a function from
// a byte count to a raw pointer.
func (lw *Lowering) declareAllocFn() *ir.Func {
	size := ir.NewParam("size", lltypes.I32)
	fn := lw.mod.NewFunc("alloc", lltypes.I8Ptr, size)
	fn.Linkage = enum.LinkageExternal
	return fn
}

// allocObject reproduces Allocator.alloc's sizing idiom: a
// getelementptr on a null pointer one element past the start gives the
// object's size without a sizeof builtin, which is then passed to the
// external alloc call before the raw i8* result is cast to the
// object's real pointer type and its tag and fields are stored in
// order, tag always at field 0.
func (lw *Lowering) allocObject(b *ir.Block, objPtr *lltypes.PointerType, tag int64, fields []value.Value) value.Value {
	structTy := objPtr.ElemType
	null := constant.NewNull(objPtr)
	past := b.NewGetElementPtr(structTy, null, constant.NewInt(lltypes.I32, 1))
	size := b.NewPtrToInt(past, lltypes.I32)
	raw := b.NewCall(lw.allocFn, size)
	obj := b.NewBitCast(raw, objPtr)

	tagPtr := b.NewGetElementPtr(structTy, obj, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, 0))
	b.NewStore(constant.NewInt(lltypes.I32, tag), tagPtr)

	for i, f := range fields {
		fieldPtr := b.NewGetElementPtr(structTy, obj, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, int64(i+1)))
		b.NewStore(f, fieldPtr)
	}
	return obj
}

// loadField loads field index idx (1-based past the tag) out of a
// tagged object pointer, the Sel counterpart of allocObject's stores.
func (lw *Lowering) loadField(b *ir.Block, objPtr *lltypes.PointerType, obj value.Value, idx int, fieldTy lltypes.Type) value.Value {
	structTy := objPtr.ElemType
	addr := b.NewGetElementPtr(structTy, obj, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, int64(idx)))
	var casted value.Value = addr
	if ptrTy, ok := addr.Type().(*lltypes.PointerType); ok && !ptrTy.ElemType.Equal(fieldTy) {
		casted = b.NewBitCast(addr, lltypes.NewPointer(fieldTy))
	}
	return b.NewLoad(fieldTy, casted)
}

// loadTag loads the tag (field 0) out of a tagged object pointer, used
// to lower a Case's dispatch.
func (lw *Lowering) loadTag(b *ir.Block, objPtr *lltypes.PointerType, obj value.Value) value.Value {
	structTy := objPtr.ElemType
	addr := b.NewGetElementPtr(structTy, obj, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, 0))
	return b.NewLoad(lltypes.I32, addr)
}
