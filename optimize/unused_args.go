package optimize

import (
	"module/mil"
	"module/types"
)

// RunUnusedArgs computes, for every Block and ClosureDefn, the
// usedArgs bitmap and count described in §4.4, then rewrites every
// parameter list and every caller's argument list in lockstep. A
// parameter is used if it appears in the body's free-variable set and
// is not a later duplicate of an earlier parameter. The analysis
// iterates to a fixpoint because a definition's used set depends on
// its callees' used sets; RunUnusedArgs itself performs exactly one
// round of (recompute bitmaps, rewrite) and reports whether anything
// changed, so the pass schedule can loop it to fixpoint.
func RunUnusedArgs(prog *mil.Program) (changed int) {
	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			if recomputeUsedArgs(x.Params, x.Body, &x.UsedArgs, &x.NumUsedArgs) {
				changed++
			}
		case *mil.ClosureDefn:
			body := &mil.Done{Tail: x.Tail}
			if recomputeUsedArgs(x.Params, body, &x.UsedArgs, &x.NumUsedArgs) {
				changed++
			}
		}
	}
	if changed == 0 {
		return 0
	}
	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			x.Body = rewriteCallArgsCode(x.Body)
		case *mil.ClosureDefn:
			x.Tail = rewriteCallArgsTail(x.Tail)
		case *mil.TopLevel:
			x.Tail = rewriteCallArgsTail(x.Tail)
		}
	}
	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			x.Params = filterParams(x.Params, x.UsedArgs)
		case *mil.ClosureDefn:
			x.Params = filterParams(x.Params, x.UsedArgs)
			if x.Alloc != nil {
				x.Alloc.Stored = filterTypes(x.Alloc.Stored, x.UsedArgs)
			}
		}
	}
	return changed
}

func recomputeUsedArgs(params []*mil.Temp, body mil.Code, usedArgs *[]bool, numUsed *int) bool {
	vs := mil.NewTempSet()
	mil.UsedVarsCode(body, vs)

	used := make([]bool, len(params))
	seen := map[*mil.Temp]bool{}
	n := 0
	for i, p := range params {
		if p.IsWildcard() {
			continue
		}
		if seen[p] {
			continue // later duplicate of an earlier parameter: drop
		}
		if vs.Contains(p) {
			used[i] = true
			n++
		}
		seen[p] = true
	}

	changedShape := *numUsed != n || len(*usedArgs) != len(used)
	changedBits := changedShape
	if !changedShape {
		for i := range used {
			if used[i] != (*usedArgs)[i] {
				changedBits = true
				break
			}
		}
	}
	*usedArgs = used
	*numUsed = n
	return changedBits
}

func filterParams(params []*mil.Temp, usedArgs []bool) []*mil.Temp {
	if usedArgs == nil {
		return params
	}
	out := make([]*mil.Temp, 0, len(params))
	for i, p := range params {
		if i < len(usedArgs) && usedArgs[i] {
			out = append(out, p)
		}
	}
	return out
}

func filterTypes(ts []types.Type, usedArgs []bool) []types.Type {
	if usedArgs == nil {
		return ts
	}
	out := make([]types.Type, 0, len(ts))
	for i, t := range ts {
		if i < len(usedArgs) && usedArgs[i] {
			out = append(out, t)
		}
	}
	return out
}

func rewriteCallArgsCode(c mil.Code) mil.Code {
	switch x := c.(type) {
	case *mil.Bind:
		return &mil.Bind{Vars: x.Vars, Rhs: rewriteCallArgsTail(x.Rhs), Rest: rewriteCallArgsCode(x.Rest)}
	case *mil.Done:
		return &mil.Done{Tail: rewriteCallArgsTail(x.Tail)}
	case *mil.Case:
		alts := make([]mil.Alt, len(x.Alts))
		for i, alt := range x.Alts {
			alts[i] = mil.Alt{Cons: alt.Cons, Target: rewriteCallArgsCode(alt.Target)}
		}
		var def mil.Code
		if x.Default != nil {
			def = rewriteCallArgsCode(x.Default)
		}
		return &mil.Case{Scrutinee: x.Scrutinee, Alts: alts, Default: def}
	case *mil.If:
		return &mil.If{Cond: x.Cond, Then: rewriteCallArgsCode(x.Then), Else: rewriteCallArgsCode(x.Else)}
	}
	return c
}

func rewriteCallArgsTail(t mil.Tail) mil.Tail {
	switch x := t.(type) {
	case *mil.BlockCall:
		return &mil.BlockCall{Block: x.Block, Args: filterAtoms(x.Args, x.Block.UsedArgs)}
	case *mil.ClosAlloc:
		return &mil.ClosAlloc{Closure: x.Closure, Args: filterAtoms(x.Args, x.Closure.UsedArgs)}
	}
	return t
}

func filterAtoms(args []mil.Atom, usedArgs []bool) []mil.Atom {
	if usedArgs == nil {
		return args
	}
	out := make([]mil.Atom, 0, len(args))
	for i, a := range args {
		if i < len(usedArgs) && usedArgs[i] {
			out = append(out, a)
		}
	}
	return out
}
