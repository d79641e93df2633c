package specialize

import (
	"module/mil"
	"module/report"
	"module/types"
)

// cloner deep-copies a reachable Block/ClosureDefn graph, substituting
// every type through ts and minting fresh Temps/Blocks/ClosureDefns as
// it goes. Each original definition is visited at most once (memoised
// in blockMap/closureMap), both to terminate on mutually recursive
// definitions and so that two calls into the same shared helper within
// one instantiation share the single cloned copy.
//
// A TopRef encountered while cloning is itself a polymorphic callee
// per §4.9 if the TopLevel it names is still generic: spec.Instantiate
// is called back into (recursively) to produce/reuse the monomorphic
// instance at the type this use site needs, so specialisation is not
// limited to the program's entry points. The first failure raised by
// any such nested instantiation is latched in err and checked by the
// Specializer once cloning finishes.
type cloner struct {
	ctx        *types.Ctx
	ts         tvarSubst
	prog       *mil.Program
	spec       *Specializer
	suffix     string
	tempMap    map[*mil.Temp]*mil.Temp
	blockMap   map[*mil.Block]*mil.Block
	closureMap map[*mil.ClosureDefn]*mil.ClosureDefn
	err        *report.Failure
}

func newCloner(ctx *types.Ctx, prog *mil.Program, spec *Specializer, ts tvarSubst, suffix string) *cloner {
	return &cloner{
		ctx: ctx, ts: ts, prog: prog, spec: spec, suffix: suffix,
		tempMap:    map[*mil.Temp]*mil.Temp{},
		blockMap:   map[*mil.Block]*mil.Block{},
		closureMap: map[*mil.ClosureDefn]*mil.ClosureDefn{},
	}
}

func (c *cloner) temp(t *mil.Temp) *mil.Temp {
	if t == nil || t.IsWildcard() {
		return t
	}
	if nt, ok := c.tempMap[t]; ok {
		return nt
	}
	nt := mil.NewTemp(c.ctx, c.ts.apply(t.Ty))
	nt.Name = t.Name
	c.tempMap[t] = nt
	return nt
}

func (c *cloner) temps(ts []*mil.Temp) []*mil.Temp {
	out := make([]*mil.Temp, len(ts))
	for i, t := range ts {
		out[i] = c.temp(t)
	}
	return out
}

func (c *cloner) atom(a mil.Atom) mil.Atom {
	switch x := a.(type) {
	case *mil.Temp:
		return c.temp(x)
	case *mil.TopRef:
		return c.topRef(x)
	}
	return a
}

// topRef instantiates the polymorphic callee x.Top names at the
// concrete type this use site requires it at (ts applied to its
// declared defining type), returning a TopRef into the monomorphic
// instance. A reference to an already-monomorphic TopLevel (or one
// this cloner has no type information to narrow further) passes
// through unchanged.
func (c *cloner) topRef(x *mil.TopRef) *mil.TopRef {
	lhs := x.Top.Lhs[x.Index]
	if lhs.Declared == nil || !lhs.Declared.IsPolymorphic() {
		return x
	}
	concrete := c.ts.apply(lhs.Defining)
	inst, fail := c.spec.Instantiate(x.Top, x.Index, concrete)
	if fail != nil {
		if c.err == nil {
			c.err = fail
		}
		return x
	}
	return &mil.TopRef{Top: inst, Index: x.Index}
}

func (c *cloner) atoms(as []mil.Atom) []mil.Atom {
	out := make([]mil.Atom, len(as))
	for i, a := range as {
		out[i] = c.atom(a)
	}
	return out
}

func (c *cloner) block(b *mil.Block) *mil.Block {
	if nb, ok := c.blockMap[b]; ok {
		return nb
	}
	nb := mil.NewBlock(c.ctx, b.Nm+c.suffix, nil, nil)
	c.blockMap[b] = nb
	c.prog.AddDef(nb)
	nb.Params = c.temps(b.Params)
	nb.Body = c.code(b.Body)
	return nb
}

func (c *cloner) closure(cd *mil.ClosureDefn) *mil.ClosureDefn {
	if ncd, ok := c.closureMap[cd]; ok {
		return ncd
	}
	ncd := &mil.ClosureDefn{ID: c.ctx.FreshClosureID(), Nm: cd.Nm + c.suffix}
	c.closureMap[cd] = ncd
	ncd.Params = c.temps(cd.Params)
	ncd.Args = c.temps(cd.Args)
	ncd.Tail = c.tail(cd.Tail)
	if cd.Alloc != nil {
		stored := make([]types.Type, len(cd.Alloc.Stored))
		for i, t := range cd.Alloc.Stored {
			stored[i] = c.ts.apply(t)
		}
		ncd.Alloc = &types.AllocType{Stored: stored, Result: c.ts.apply(cd.Alloc.Result)}
	}
	c.prog.AddDef(ncd)
	return ncd
}

func (c *cloner) tail(t mil.Tail) mil.Tail {
	switch x := t.(type) {
	case *mil.Return:
		return &mil.Return{Args: c.atoms(x.Args)}
	case *mil.Enter:
		return &mil.Enter{Fn: c.atom(x.Fn), Args: c.atoms(x.Args)}
	case *mil.BlockCall:
		return &mil.BlockCall{Block: c.block(x.Block), Args: c.atoms(x.Args)}
	case *mil.PrimCall:
		return &mil.PrimCall{Prim: x.Prim, Args: c.atoms(x.Args)}
	case *mil.Sel:
		return &mil.Sel{Cons: x.Cons, Index: x.Index, Arg: c.atom(x.Arg)}
	case *mil.DataAlloc:
		return &mil.DataAlloc{Cons: x.Cons, Args: c.atoms(x.Args)}
	case *mil.ClosAlloc:
		return &mil.ClosAlloc{Closure: c.closure(x.Closure), Args: c.atoms(x.Args)}
	}
	return t
}

func (c *cloner) code(cd mil.Code) mil.Code {
	switch x := cd.(type) {
	case *mil.Bind:
		return &mil.Bind{Vars: c.temps(x.Vars), Rhs: c.tail(x.Rhs), Rest: c.code(x.Rest)}
	case *mil.Done:
		return &mil.Done{Tail: c.tail(x.Tail)}
	case *mil.Case:
		alts := make([]mil.Alt, len(x.Alts))
		for i, alt := range x.Alts {
			alts[i] = mil.Alt{Cons: alt.Cons, Target: c.code(alt.Target)}
		}
		var def mil.Code
		if x.Default != nil {
			def = c.code(x.Default)
		}
		return &mil.Case{Scrutinee: c.atom(x.Scrutinee), Alts: alts, Default: def}
	case *mil.If:
		return &mil.If{Cond: c.atom(x.Cond), Then: c.code(x.Then), Else: c.code(x.Else)}
	}
	return cd
}
