package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"module/mil"
)

// lowerCode emits b's Code into blk, threading the local value
// environment e down through Bind and fanning out into fresh basic
// blocks at Case/If the way genBlock walks an AST block, splicing in a
// new *ir.Block per branch. wantTy is the enclosing function's
// declared result type, consulted only when a path ends in an Enter
// whose raw i8* result needs unboxing; an Enter on a Bind's right-hand
// side is unboxed to the type of its single bound Temp instead.
func (lw *Lowering) lowerCode(fn *ir.Func, blk *ir.Block, e env, c mil.Code, wantTy lltypes.Type) {
	switch x := c.(type) {
	case *mil.Bind:
		var rhsTy lltypes.Type = objPtrType
		if len(x.Vars) == 1 {
			rhsTy = llType(x.Vars[0].Ty)
		}
		results := lw.lowerTailMulti(fn, blk, e, x.Rhs, rhsTy)
		for i, v := range x.Vars {
			if !v.IsWildcard() && i < len(results) {
				e[v] = results[i]
			}
		}
		lw.lowerCode(fn, blk, e, x.Rest, wantTy)
	case *mil.Done:
		lw.lowerTailReturn(fn, blk, e, x.Tail, wantTy)
	case *mil.Case:
		lw.lowerCase(fn, blk, e, x, wantTy)
	case *mil.If:
		cond := lw.lowerAtom(blk, e, x.Cond)
		thenBlk := fn.NewBlock(fmt.Sprintf("then.%d", len(fn.Blocks)))
		elseBlk := fn.NewBlock(fmt.Sprintf("else.%d", len(fn.Blocks)))
		blk.NewCondBr(cond, thenBlk, elseBlk)
		lw.lowerCode(fn, thenBlk, cloneEnv(e), x.Then, wantTy)
		lw.lowerCode(fn, elseBlk, cloneEnv(e), x.Else, wantTy)
	}
}

func (lw *Lowering) lowerCase(fn *ir.Func, blk *ir.Block, e env, x *mil.Case, wantTy lltypes.Type) {
	scrut := lw.lowerAtom(blk, e, x.Scrutinee)
	objTy, ok := scrut.Type().(*lltypes.PointerType)
	if !ok {
		objTy = objPtrType
	}
	tag := lw.loadTag(blk, objTy, scrut)

	defaultBlk := fn.NewBlock(fmt.Sprintf("case.default.%d", len(fn.Blocks)))
	cases := make([]*ir.Case, len(x.Alts))
	altBlks := make([]*ir.Block, len(x.Alts))
	for i, alt := range x.Alts {
		ab := fn.NewBlock(fmt.Sprintf("case.%s.%d", alt.Cons.Name, len(fn.Blocks)))
		altBlks[i] = ab
		cases[i] = ir.NewCase(constant.NewInt(lltypes.I32, int64(alt.Cons.Tag)), ab)
	}
	blk.NewSwitch(tag, defaultBlk, cases...)

	for i, alt := range x.Alts {
		lw.lowerCode(fn, altBlks[i], cloneEnv(e), alt.Target, wantTy)
	}
	if x.Default != nil {
		lw.lowerCode(fn, defaultBlk, cloneEnv(e), x.Default, wantTy)
	} else {
		defaultBlk.NewUnreachable()
	}
}

func cloneEnv(e env) env {
	n := make(env, len(e))
	for k, v := range e {
		n[k] = v
	}
	return n
}

// lowerTailReturn computes t's result and emits the terminating ret
// for the enclosing function, unboxing an Enter's raw i8* result to
// wantTy first.
func (lw *Lowering) lowerTailReturn(fn *ir.Func, blk *ir.Block, e env, t mil.Tail, wantTy lltypes.Type) {
	results := lw.lowerTailMulti(fn, blk, e, t, wantTy)
	switch len(results) {
	case 0:
		blk.NewRet(nil)
	case 1:
		blk.NewRet(results[0])
	default:
		blk.NewRet(results[0])
	}
}

// lowerTailMulti evaluates t and returns its result(s), one value per
// produced atom; every Tail but Return is single-valued, matching the
// settled program shape a Bind with more than one Var only ever
// destructures a Return.
func (lw *Lowering) lowerTailMulti(fn *ir.Func, blk *ir.Block, e env, t mil.Tail, wantTy lltypes.Type) []value.Value {
	switch x := t.(type) {
	case *mil.Return:
		out := make([]value.Value, len(x.Args))
		for i, a := range x.Args {
			out[i] = lw.lowerAtom(blk, e, a)
		}
		return out
	case *mil.Enter:
		return []value.Value{lw.lowerEnter(blk, e, x, wantTy)}
	case *mil.BlockCall:
		args := lw.lowerAtoms(blk, e, x.Args)
		callee := lw.blockFuncs[x.Block]
		return []value.Value{blk.NewCall(callee, args...)}
	case *mil.PrimCall:
		args := lw.lowerAtoms(blk, e, x.Args)
		return []value.Value{lw.lowerPrim(blk, x.Prim.Name, args)}
	case *mil.Sel:
		objTy := lw.closureOrConsObjType(x.Cons)
		arg := lw.lowerAtom(blk, e, x.Arg)
		casted := blk.NewBitCast(arg, objTy)
		fieldTy := llType(x.Cons.Fields[x.Index])
		return []value.Value{lw.loadField(blk, objTy, casted, x.Index+1, fieldTy)}
	case *mil.DataAlloc:
		return []value.Value{lw.lowerDataAlloc(blk, e, x)}
	case *mil.ClosAlloc:
		return []value.Value{lw.lowerClosAlloc(blk, e, x)}
	}
	return nil
}

func (lw *Lowering) lowerAtoms(blk *ir.Block, e env, as []mil.Atom) []value.Value {
	out := make([]value.Value, len(as))
	for i, a := range as {
		out[i] = lw.lowerAtom(blk, e, a)
	}
	return out
}

func (lw *Lowering) lowerAtom(blk *ir.Block, e env, a mil.Atom) value.Value {
	switch x := a.(type) {
	case *mil.Temp:
		return e[x]
	case *mil.Literal:
		if x.IsInt {
			return constant.NewInt(llType(x.Ty).(*lltypes.IntType), x.IntVal)
		}
		return lw.stringConstant(x.StrVal)
	case *mil.ConstAtom:
		return lw.constTagValue(x.Cons)
	case *mil.TopRef:
		return lw.topRefValue(blk, x)
	}
	return nil
}

// consObjType returns (caching) the concrete tagged layout backing a
// data constructor's allocations: tag then one field per Fields entry.
func (lw *Lowering) consObjType(cons *mil.ConstructorInfo) *lltypes.PointerType {
	if t, ok := lw.consObjTy[cons]; ok {
		return t
	}
	fields := make([]lltypes.Type, 0, len(cons.Fields)+1)
	fields = append(fields, lltypes.I32)
	for _, f := range cons.Fields {
		fields = append(fields, llType(f))
	}
	t := lltypes.NewPointer(lltypes.NewStruct(fields...))
	lw.consObjTy[cons] = t
	return t
}

func (lw *Lowering) closureOrConsObjType(cons *mil.ConstructorInfo) *lltypes.PointerType {
	return lw.consObjType(cons)
}

func (lw *Lowering) lowerDataAlloc(blk *ir.Block, e env, x *mil.DataAlloc) value.Value {
	objTy := lw.consObjType(x.Cons)
	fields := lw.lowerAtoms(blk, e, x.Args)
	obj := lw.allocObject(blk, objTy, int64(x.Cons.Tag), fields)
	return blk.NewBitCast(obj, objPtrType)
}

func (lw *Lowering) lowerClosAlloc(blk *ir.Block, e env, x *mil.ClosAlloc) value.Value {
	objTy := lw.closureObjType(x.Closure)
	codePtr := blk.NewBitCast(lw.closureFuncs[x.Closure], lltypes.NewPointer(lltypes.I8))
	fields := append([]value.Value{codePtr}, lw.lowerAtoms(blk, e, x.Args)...)
	obj := lw.allocObject(blk, objTy, 0, fields)
	return blk.NewBitCast(obj, closureType())
}

// lowerEnter lowers an indirect closure invocation via the uniform
// calling convention every clos.* function implements: the closure
// object is split into its code pointer (field 1) and passed as self,
// each call argument is boxed into a stack-allocated i8* array, and
// the raw i8* result is unboxed back to wantTy.
func (lw *Lowering) lowerEnter(blk *ir.Block, e env, x *mil.Enter, wantTy lltypes.Type) value.Value {
	fnVal := lw.lowerAtom(blk, e, x.Fn)
	clType, ok := fnVal.Type().(*lltypes.PointerType)
	if !ok {
		clType = closureType().(*lltypes.PointerType)
	}
	codePtr := lw.loadField(blk, clType, fnVal, 1, lltypes.NewPointer(lltypes.I8))
	sig := lltypes.NewFunc(lltypes.I8Ptr, lltypes.I8Ptr, lltypes.NewPointer(lltypes.I8Ptr))
	callee := blk.NewBitCast(codePtr, lltypes.NewPointer(sig))

	argc := len(x.Args)
	arrTy := lltypes.NewArray(uint64(argc), lltypes.I8Ptr)
	slots := blk.NewAlloca(arrTy)
	for i, a := range x.Args {
		v := lw.lowerAtom(blk, e, a)
		slot := blk.NewGetElementPtr(arrTy, slots, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, int64(i)))
		blk.NewStore(lw.box(blk, v), slot)
	}
	argv := blk.NewGetElementPtr(arrTy, slots, constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, 0))
	self := blk.NewBitCast(fnVal, lltypes.I8Ptr)
	raw := blk.NewCall(callee, self, argv)
	return lw.unbox(blk, raw, wantTy)
}

// box converts a naturally typed value into the uniform i8* slot
// representation the argv array and closure result both use: a
// pointer-shaped value is bitcast directly, an integer-shaped value is
// inttoptr'd, matching the planned box/unbox split between pointer and
// scalar representations.
func (lw *Lowering) box(blk *ir.Block, v value.Value) value.Value {
	switch v.Type().(type) {
	case *lltypes.PointerType:
		return blk.NewBitCast(v, lltypes.I8Ptr)
	default:
		return blk.NewIntToPtr(v, lltypes.I8Ptr)
	}
}

func (lw *Lowering) unbox(blk *ir.Block, v value.Value, want lltypes.Type) value.Value {
	switch want.(type) {
	case *lltypes.PointerType:
		return blk.NewBitCast(v, want)
	case *lltypes.VoidType:
		return v
	default:
		return blk.NewPtrToInt(v, want)
	}
}

// constTagValue gives a nullary constructor (one with no Fields) a
// single static instance, cached per ConstructorInfo so every use of,
// say, Nil or True resolves to the same pointer and the tag a Case
// reads back distinguishes it from other nullary constructors of the
// same data type.
func (lw *Lowering) constTagValue(cons *mil.ConstructorInfo) value.Value {
	if g, ok := lw.constTags[cons]; ok {
		return g
	}
	objTy := lw.consObjType(cons)
	structTy := objTy.ElemType.(*lltypes.StructType)
	g := lw.mod.NewGlobalDef(fmt.Sprintf("tag.%s", cons.Name), constant.NewStruct(structTy, constant.NewInt(lltypes.I32, int64(cons.Tag))))
	casted := constant.NewBitCast(g, objPtrType)
	lw.constTags[cons] = casted
	return casted
}

// stringConstant emits a string literal as a new global byte array
// (one per call, with default linkage; equal literals are not shared)
// and hands back its address bitcast to a plain i8*, matching
// gen_expr.go's strBytesPtr pattern (minus the fat-string wrapper this
// type system has no need for, since a mil string's type is simply an
// ARef to Bit 8).
func (lw *Lowering) stringConstant(s string) value.Value {
	g := lw.mod.NewGlobalDef(fmt.Sprintf("str.%d", len(lw.mod.Globals)), constant.NewCharArrayFromString(s+"\x00"))
	return constant.NewBitCast(g, lltypes.I8Ptr)
}

// topRefValue loads a top-level binding's current value out of its
// storage global, the lowering counterpart of lookupGlobal: unlike the
// original's globalInits search list, every TopLhs gets a fixed global
// slot up front, so a reference is just one load against a known
// address regardless of whether $init has run yet at this point in
// the dependency order.
func (lw *Lowering) topRefValue(blk *ir.Block, r *mil.TopRef) value.Value {
	lhs := r.Top.Lhs[r.Index]
	g, ok := lw.globals[lhs]
	if !ok {
		return constant.NewNull(objPtrType)
	}
	return blk.NewLoad(llType(lhs.Defining), g)
}
