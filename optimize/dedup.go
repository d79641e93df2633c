package optimize

import "module/mil"

// RunDedup implements §4.8: definitions with equal (alpha-equivalent)
// bodies are merged into one, and every reference to a merged-away
// definition is rewritten to point at the retained one. Blocks are
// grouped by Summary(Params, Body); within a bucket, Summary equality
// is only a candidate signal, so membership is confirmed with
// AlphaCode/AlphaTail before merging, guarding against hash collision.
// ClosureDefns are grouped the same way over (Params, Args, Tail), and
// TopLevels over (no params, Tail), since a TopLevel's tail runs once
// at initialisation with no call-time arguments of its own.
func RunDedup(prog *mil.Program) int {
	blockOf := map[*mil.Block]*mil.Block{}
	closureOf := map[*mil.ClosureDefn]*mil.ClosureDefn{}
	topOf := map[*mil.TopLevel]*mil.TopLevel{}

	blockBuckets := map[uint64][]*mil.Block{}
	closureBuckets := map[uint64][]*mil.ClosureDefn{}
	topBuckets := map[uint64][]*mil.TopLevel{}

	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			h := mil.Summary(x.Params, x.Body)
			kept := findBlock(blockBuckets[h], x)
			if kept == nil {
				blockBuckets[h] = append(blockBuckets[h], x)
			} else {
				blockOf[x] = kept
			}
		case *mil.ClosureDefn:
			h := closureSummary(x)
			kept := findClosure(closureBuckets[h], x)
			if kept == nil {
				closureBuckets[h] = append(closureBuckets[h], x)
			} else {
				closureOf[x] = kept
			}
		case *mil.TopLevel:
			h := topLevelSummary(x)
			kept := findTopLevel(topBuckets[h], x)
			if kept == nil {
				topBuckets[h] = append(topBuckets[h], x)
			} else {
				topOf[x] = kept
			}
		}
	}

	merged := len(blockOf) + len(closureOf) + len(topOf)
	if merged == 0 {
		return 0
	}

	kept := make([]mil.Definition, 0, len(prog.Defs)-merged)
	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			if blockOf[x] != nil {
				continue
			}
		case *mil.ClosureDefn:
			if closureOf[x] != nil {
				continue
			}
		case *mil.TopLevel:
			if topOf[x] != nil {
				continue
			}
		}
		kept = append(kept, d)
	}
	prog.Defs = kept

	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			x.Body = redirectCode(x.Body, blockOf, closureOf, topOf)
		case *mil.ClosureDefn:
			x.Tail = redirectTail(x.Tail, blockOf, closureOf, topOf)
		case *mil.TopLevel:
			x.Tail = redirectTail(x.Tail, blockOf, closureOf, topOf)
		}
	}
	return merged
}

func findBlock(candidates []*mil.Block, x *mil.Block) *mil.Block {
	for _, c := range candidates {
		if len(c.Params) == len(x.Params) && mil.AlphaCode(c.Params, c.Body, x.Params, x.Body) {
			return c
		}
	}
	return nil
}

func findClosure(candidates []*mil.ClosureDefn, x *mil.ClosureDefn) *mil.ClosureDefn {
	for _, c := range candidates {
		if len(c.Params) != len(x.Params) || len(c.Args) != len(x.Args) {
			continue
		}
		env1 := append(append([]*mil.Temp{}, c.Params...), c.Args...)
		env2 := append(append([]*mil.Temp{}, x.Params...), x.Args...)
		if mil.AlphaTail(env1, c.Tail, env2, x.Tail) {
			return c
		}
	}
	return nil
}

// findTopLevel matches candidates whose Lhs count agrees with x's and
// whose Tail is alpha-equivalent under the empty environment (a
// TopLevel's Tail binds no parameters of its own; the only free names
// it can mention are other top-level/external references).
func findTopLevel(candidates []*mil.TopLevel, x *mil.TopLevel) *mil.TopLevel {
	for _, c := range candidates {
		if len(c.Lhs) != len(x.Lhs) {
			continue
		}
		if mil.AlphaTail(nil, c.Tail, nil, x.Tail) {
			return c
		}
	}
	return nil
}

func closureSummary(c *mil.ClosureDefn) uint64 {
	params := append(append([]*mil.Temp{}, c.Params...), c.Args...)
	return mil.Summary(params, &mil.Done{Tail: c.Tail})
}

func topLevelSummary(t *mil.TopLevel) uint64 {
	return mil.Summary(nil, &mil.Done{Tail: t.Tail})
}

func redirectCode(c mil.Code, bo map[*mil.Block]*mil.Block, co map[*mil.ClosureDefn]*mil.ClosureDefn, to map[*mil.TopLevel]*mil.TopLevel) mil.Code {
	switch x := c.(type) {
	case *mil.Bind:
		return &mil.Bind{Vars: x.Vars, Rhs: redirectTail(x.Rhs, bo, co, to), Rest: redirectCode(x.Rest, bo, co, to)}
	case *mil.Done:
		return &mil.Done{Tail: redirectTail(x.Tail, bo, co, to)}
	case *mil.Case:
		alts := make([]mil.Alt, len(x.Alts))
		for i, alt := range x.Alts {
			alts[i] = mil.Alt{Cons: alt.Cons, Target: redirectCode(alt.Target, bo, co, to)}
		}
		var def mil.Code
		if x.Default != nil {
			def = redirectCode(x.Default, bo, co, to)
		}
		return &mil.Case{Scrutinee: redirectAtom(x.Scrutinee, to), Alts: alts, Default: def}
	case *mil.If:
		return &mil.If{Cond: redirectAtom(x.Cond, to), Then: redirectCode(x.Then, bo, co, to), Else: redirectCode(x.Else, bo, co, to)}
	}
	return c
}

func redirectTail(t mil.Tail, bo map[*mil.Block]*mil.Block, co map[*mil.ClosureDefn]*mil.ClosureDefn, to map[*mil.TopLevel]*mil.TopLevel) mil.Tail {
	switch x := t.(type) {
	case *mil.Return:
		return &mil.Return{Args: redirectAtoms(x.Args, to)}
	case *mil.Enter:
		return &mil.Enter{Fn: redirectAtom(x.Fn, to), Args: redirectAtoms(x.Args, to)}
	case *mil.BlockCall:
		blk := x.Block
		if kept, ok := bo[blk]; ok {
			blk = kept
		}
		return &mil.BlockCall{Block: blk, Args: redirectAtoms(x.Args, to)}
	case *mil.PrimCall:
		return &mil.PrimCall{Prim: x.Prim, Args: redirectAtoms(x.Args, to)}
	case *mil.Sel:
		return &mil.Sel{Cons: x.Cons, Index: x.Index, Arg: redirectAtom(x.Arg, to)}
	case *mil.DataAlloc:
		return &mil.DataAlloc{Cons: x.Cons, Args: redirectAtoms(x.Args, to)}
	case *mil.ClosAlloc:
		cl := x.Closure
		if kept, ok := co[cl]; ok {
			cl = kept
		}
		return &mil.ClosAlloc{Closure: cl, Args: redirectAtoms(x.Args, to)}
	}
	return t
}

// redirectAtom rewrites a TopRef pointing at a merged-away TopLevel to
// point at the retained one; every other atom passes through
// unchanged, since Blocks/ClosureDefns are referenced by their own
// Tail field rather than as an Atom.
func redirectAtom(a mil.Atom, to map[*mil.TopLevel]*mil.TopLevel) mil.Atom {
	ref, ok := a.(*mil.TopRef)
	if !ok {
		return a
	}
	if kept, ok := to[ref.Top]; ok {
		return &mil.TopRef{Top: kept, Index: ref.Index}
	}
	return a
}

func redirectAtoms(args []mil.Atom, to map[*mil.TopLevel]*mil.TopLevel) []mil.Atom {
	out := make([]mil.Atom, len(args))
	for i, a := range args {
		out[i] = redirectAtom(a, to)
	}
	return out
}
