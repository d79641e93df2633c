package optimize

import (
	"module/mil"
	"module/types"
)

// freshenParams allocates alpha-fresh temps for a parameter list and
// returns both the new list and a substitution mapping the originals
// to them, so a callee's body can be copied without capturing the
// caller's names.
func freshenParams(ctx *types.Ctx, params []*mil.Temp, s *Subst) ([]*mil.Temp, *Subst) {
	fresh := make([]*mil.Temp, len(params))
	for i, p := range params {
		if p.IsWildcard() {
			fresh[i] = p
			continue
		}
		np := mil.NewTemp(ctx, p.Ty)
		fresh[i] = np
		s = s.Extend(p, np)
	}
	return fresh, s
}

// CopyCode produces an alpha-fresh copy of c under substitution s,
// minting new temps for every Bind/parameter it passes through so the
// copy shares no bound names with its source. This is the mechanism
// both prefix/suffix inlining and known-constructor specialisation use
// to duplicate a callee body.
func CopyCode(ctx *types.Ctx, s *Subst, c mil.Code) mil.Code {
	switch x := c.(type) {
	case *mil.Bind:
		rhs := CopyTail(ctx, s, x.Rhs)
		vars, s2 := freshenParams(ctx, x.Vars, s)
		return &mil.Bind{Vars: vars, Rhs: rhs, Rest: CopyCode(ctx, s2, x.Rest)}
	case *mil.Done:
		return &mil.Done{Tail: CopyTail(ctx, s, x.Tail)}
	case *mil.Case:
		alts := make([]mil.Alt, len(x.Alts))
		for i, alt := range x.Alts {
			alts[i] = mil.Alt{Cons: alt.Cons, Target: CopyCode(ctx, s, alt.Target)}
		}
		var def mil.Code
		if x.Default != nil {
			def = CopyCode(ctx, s, x.Default)
		}
		return &mil.Case{Scrutinee: s.ApplyAtom(x.Scrutinee), Alts: alts, Default: def}
	case *mil.If:
		return &mil.If{
			Cond: s.ApplyAtom(x.Cond),
			Then: CopyCode(ctx, s, x.Then),
			Else: CopyCode(ctx, s, x.Else),
		}
	}
	return c
}

// CopyTail substitutes atoms in t without copying any Definition it
// references (Blocks/ClosureDefns are shared, not duplicated).
func CopyTail(ctx *types.Ctx, s *Subst, t mil.Tail) mil.Tail {
	switch x := t.(type) {
	case *mil.Return:
		return &mil.Return{Args: s.ApplyAtoms(x.Args)}
	case *mil.Enter:
		return &mil.Enter{Fn: s.ApplyAtom(x.Fn), Args: s.ApplyAtoms(x.Args)}
	case *mil.BlockCall:
		return &mil.BlockCall{Block: x.Block, Args: s.ApplyAtoms(x.Args)}
	case *mil.PrimCall:
		return &mil.PrimCall{Prim: x.Prim, Args: s.ApplyAtoms(x.Args)}
	case *mil.Sel:
		return &mil.Sel{Cons: x.Cons, Index: x.Index, Arg: s.ApplyAtom(x.Arg)}
	case *mil.DataAlloc:
		return &mil.DataAlloc{Cons: x.Cons, Args: s.ApplyAtoms(x.Args)}
	case *mil.ClosAlloc:
		return &mil.ClosAlloc{Closure: x.Closure, Args: s.ApplyAtoms(x.Args)}
	}
	return t
}
