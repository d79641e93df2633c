package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"module/mil"
	"module/types"
)

// Lowering is the per-program driver that turns a settled mil.Program
// into an LLVM module, mirroring generate.Generator's shape: a module
// under construction, per-kind maps from each Block, ClosureDefn,
// constructor, TopLhs and External to the LLVM value already emitted
// for it, so each is generated exactly once, and the module-init
// function ($init) whose block receives the global initialisation code.
type Lowering struct {
	mod     *ir.Module
	allocFn *ir.Func

	blockFuncs   map[*mil.Block]*ir.Func
	closureFuncs map[*mil.ClosureDefn]*ir.Func
	closureObjTy map[*mil.ClosureDefn]*lltypes.PointerType
	consObjTy    map[*mil.ConstructorInfo]*lltypes.PointerType
	constTags    map[*mil.ConstructorInfo]value.Value
	globals      map[*mil.TopLhs]*ir.Global
	externs      map[*mil.External]constant.Constant
	namedExterns map[string]*ir.Func

	initFunc  *ir.Func
	initBlock *ir.Block
}

// New creates a Lowering ready to consume a single mil.Program.
func New() *Lowering {
	mod := ir.NewModule()
	lw := &Lowering{
		mod:          mod,
		blockFuncs:   map[*mil.Block]*ir.Func{},
		closureFuncs: map[*mil.ClosureDefn]*ir.Func{},
		closureObjTy: map[*mil.ClosureDefn]*lltypes.PointerType{},
		consObjTy:    map[*mil.ConstructorInfo]*lltypes.PointerType{},
		constTags:    map[*mil.ConstructorInfo]value.Value{},
		globals:      map[*mil.TopLhs]*ir.Global{},
		externs:      map[*mil.External]constant.Constant{},
		namedExterns: map[string]*ir.Func{},
	}
	lw.allocFn = lw.declareAllocFn()
	return lw
}

// Lower runs the whole-program lowering algorithm, walking prog.Order
// (a leaves-first topological order over the dependency graph computed
// by mil.Program.RecomputeOrder) and returns the completed module.
func (lw *Lowering) Lower(prog *mil.Program) *ir.Module {
	lw.initFunc = lw.mod.NewFunc("$init", lltypes.Void)
	lw.initFunc.Linkage = enum.LinkageExternal
	lw.initBlock = lw.initFunc.NewBlock("entry")

	for _, e := range prog.Externals {
		lw.declareExternal(e)
	}

	// Pre-declare every Block/ClosureDefn's ir.Func signature up front
	// so forward references (mutual recursion) resolve to a real
	// value.Value during body lowering, same as defDepGraph letting
	// visitDef recurse into not-yet-generated definitions.
	order := prog.Order
	if len(order) == 0 {
		order = prog.Defs
	}
	for _, d := range order {
		switch x := d.(type) {
		case *mil.Block:
			lw.declareBlockFunc(x)
		case *mil.ClosureDefn:
			lw.declareClosureFunc(x)
		case *mil.TopLevel:
			lw.declareGlobal(x)
		}
	}

	for _, d := range order {
		switch x := d.(type) {
		case *mil.Block:
			lw.lowerBlockBody(x)
		case *mil.ClosureDefn:
			lw.lowerClosureBody(x)
		case *mil.TopLevel:
			lw.lowerTopLevel(x)
		}
	}

	lw.initBlock.NewRet(nil)
	return lw.mod
}

func (lw *Lowering) declareBlockFunc(b *mil.Block) {
	params := make([]*ir.Param, len(b.Params))
	for i, p := range b.Params {
		params[i] = ir.NewParam(p.Repr(), llType(p.Ty))
	}
	retTy := blockResultType(b)
	fn := lw.mod.NewFunc(fmt.Sprintf("blk.%s.%d", b.Nm, b.ID), retTy, params...)
	lw.blockFuncs[b] = fn
}

// blockResultType infers a Block's LLVM return type by walking to one
// Done along any path; every path through a well-typed Block agrees
// on its result shape; blocks with no syntactic Done (should not
// occur in a settled program) fall back to void.
func blockResultType(b *mil.Block) lltypes.Type {
	if t, ok := firstReturnType(b.Body); ok {
		return t
	}
	return lltypes.Void
}

func firstReturnType(c mil.Code) (lltypes.Type, bool) {
	switch x := c.(type) {
	case *mil.Bind:
		return firstReturnType(x.Rest)
	case *mil.Done:
		return tailResultType(x.Tail), true
	case *mil.Case:
		for _, alt := range x.Alts {
			if t, ok := firstReturnType(alt.Target); ok {
				return t, true
			}
		}
		if x.Default != nil {
			return firstReturnType(x.Default)
		}
	case *mil.If:
		if t, ok := firstReturnType(x.Then); ok {
			return t, true
		}
		return firstReturnType(x.Else)
	}
	return nil, false
}

func tailResultType(t mil.Tail) lltypes.Type {
	switch x := t.(type) {
	case *mil.Return:
		if len(x.Args) == 1 {
			return llType(x.Args[0].Type())
		}
		return objPtrType
	case *mil.BlockCall:
		return blockResultType(x.Block)
	case *mil.Sel:
		if x.Index < len(x.Cons.Fields) {
			return llType(x.Cons.Fields[x.Index])
		}
	case *mil.DataAlloc:
		return llType(x.Cons.DataType)
	case *mil.ClosAlloc:
		return closureType()
	case *mil.Enter, *mil.PrimCall:
		return objPtrType
	}
	return objPtrType
}

func (lw *Lowering) declareExternal(e *mil.External) {
	switch e.Kind {
	case mil.ExternalFunc:
		paramTys, retTy := arrowSpine(e.Ty)
		params := make([]*ir.Param, len(paramTys))
		for i, pt := range paramTys {
			params[i] = ir.NewParam(fmt.Sprintf("a%d", i), llType(pt))
		}
		fn := lw.mod.NewFunc(e.ID, llType(retTy), params...)
		fn.Linkage = enum.LinkageExternal
		lw.externs[e] = fn
	case mil.ExternalValue:
		g := lw.mod.NewGlobal(e.ID, llType(e.Ty))
		g.Linkage = enum.LinkageExternal
		lw.externs[e] = g
	}
}

// arrowSpine decomposes a curried function type (nested applications
// of the binary Arrow tycon) into its flat parameter list and final
// result type, the way a foreign declaration's signature is read back
// into a single multi-argument LLVM function type instead of the
// closure representation ordinary first-class functions use.
func arrowSpine(t types.Type) (params []types.Type, ret types.Type) {
	for {
		head, args := types.Spine(t)
		tr, ok := head.(*types.TyconRef)
		if !ok || tr.Tycon.Variant != types.ArrowTycon || len(args) != 2 {
			return params, t
		}
		params = append(params, args[0])
		t = args[1]
	}
}
