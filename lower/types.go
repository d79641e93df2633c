package lower

import (
	lltypes "github.com/llir/llvm/ir/types"

	"module/types"
)

// objPtrType is the generic pointer-to-heap-object type every
// DataAlloc/ClosAlloc produces and every Sel/Enter consumes: a pointer
// to an opaque struct whose first field is always the constructor tag.
// Concrete layouts are reached through this same generic pointer type
// after a bitcast, exactly as genPtrType is used throughout
// Allocator.java's staticAlloc/alloc helpers.
var objPtrType = lltypes.NewPointer(lltypes.NewStruct(lltypes.I32))

// llType converts a mil type to its LLVM representation, caching the
// result on the head Tycon (types.Tycon.LLType/SetLLType) so repeated
// conversions of the same named type return the identical llir/llvm
// type value, matching convType's per-package globalTypes table but
// keyed on the Tycon itself rather than a name-string lookup.
func llType(t types.Type) lltypes.Type {
	head, args := types.Spine(t)
	tr, ok := head.(*types.TyconRef)
	if !ok {
		return objPtrType
	}
	tc := tr.Tycon
	if cached := tc.LLType(); cached != nil {
		return cached
	}
	lt := convTycon(tc, args)
	tc.SetLLType(lt)
	return lt
}

func convTycon(tc *types.Tycon, args []types.Type) lltypes.Type {
	switch tc.Variant {
	case types.BitTycon:
		return bitIntType(tc, args)
	case types.TupleTycon:
		fields := make([]lltypes.Type, len(args))
		for i, a := range args {
			fields[i] = llType(a)
		}
		return lltypes.NewPointer(lltypes.NewStruct(append([]lltypes.Type{lltypes.I32}, fields...)...))
	case types.ArrowTycon:
		return closureType()
	case types.ARefTycon:
		var elem lltypes.Type = lltypes.I8
		if len(args) > 0 {
			elem = llType(args[0])
		}
		return lltypes.NewPointer(elem)
	case types.IxTycon:
		return lltypes.I64
	default:
		// DataTycon: a pointer to the generic tagged-object layout;
		// individual constructors pick a concrete field layout at
		// allocation time via a bitcast, same as isPtrType's struct
		// case in conv_type.go.
		return objPtrType
	}
}

// bitIntType picks an LLVM integer width for a Bit n type; n is read
// off the sole type argument (a TLit nat) the same way BitSize reads
// it in sizes.go.
func bitIntType(tc *types.Tycon, args []types.Type) lltypes.Type {
	if len(args) == 1 {
		if lit, ok := types.Deref(args[0]).(*types.TLit); ok && lit.Nat != nil {
			return lltypes.NewInt(uint64(*lit.Nat))
		}
	}
	return lltypes.I64
}

// closureType is the generic layout of every closure value: a tagged
// object whose first field after the tag is a pointer to its entry
// function, dispatched indirectly by Enter.
func closureType() lltypes.Type {
	return lltypes.NewPointer(lltypes.NewStruct(lltypes.I32, lltypes.NewPointer(lltypes.I8)))
}
