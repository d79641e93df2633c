package optimize

import (
	"module/config"
	"module/mil"
	"module/types"
)

// codeSize is a crude node count used by the inline budget; it is not
// exported because the budget is purely an internal heuristic, not a
// semantic property.
func codeSize(c mil.Code) int {
	switch x := c.(type) {
	case *mil.Bind:
		return 1 + codeSize(x.Rest)
	case *mil.Done:
		return 1
	case *mil.Case:
		n := 1
		for _, alt := range x.Alts {
			n += codeSize(alt.Target)
		}
		if x.Default != nil {
			n += codeSize(x.Default)
		}
		return n
	case *mil.If:
		return 1 + codeSize(x.Then) + codeSize(x.Else)
	}
	return 1
}

// eligible applies the inline budget (§9 Open Question, resolved in
// DESIGN.md/config.PipelineConfig.InlineBudget): a callee is eligible
// if its body is at most InlineBudget nodes, or if it is used exactly
// once across the whole program.
func eligible(blk *mil.Block, useCount map[*mil.Block]int, cfg *config.PipelineConfig) bool {
	if useCount[blk] == 1 {
		return true
	}
	return codeSize(blk.Body) <= cfg.InlineBudget
}

func countBlockCalls(prog *mil.Program) map[*mil.Block]int {
	counts := map[*mil.Block]int{}
	var visitTail func(t mil.Tail)
	visitTail = func(t mil.Tail) {
		if bc, ok := t.(*mil.BlockCall); ok {
			counts[bc.Block]++
		}
	}
	var visitCode func(c mil.Code)
	visitCode = func(c mil.Code) {
		switch x := c.(type) {
		case *mil.Bind:
			visitTail(x.Rhs)
			visitCode(x.Rest)
		case *mil.Done:
			visitTail(x.Tail)
		case *mil.Case:
			for _, alt := range x.Alts {
				visitCode(alt.Target)
			}
			if x.Default != nil {
				visitCode(x.Default)
			}
		case *mil.If:
			visitCode(x.Then)
			visitCode(x.Else)
		}
	}
	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			visitCode(x.Body)
		case *mil.ClosureDefn:
			visitTail(x.Tail)
		case *mil.TopLevel:
			visitTail(x.Tail)
		}
	}
	return counts
}

// RunInline performs one round of prefix and suffix inlining over
// every Block/ClosureDefn/TopLevel body in the program, returning the
// number of call sites rewritten.
func RunInline(prog *mil.Program, cfg *config.PipelineConfig) int {
	counts := countBlockCalls(prog)
	total := 0
	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			x.Body, total = inlineCode(prog.Ctx, x.Body, x, counts, cfg, total)
		case *mil.ClosureDefn:
			x.Tail, total = inlineTailAsTail(prog.Ctx, x.Tail, nil, counts, cfg, total)
		case *mil.TopLevel:
			x.Tail, total = inlineTailAsTail(prog.Ctx, x.Tail, nil, counts, cfg, total)
		}
	}
	return total
}

// inlineCode walks c, performing prefix inlining on Bind right-hand
// sides and, through inlineTailAsTail, suffix inlining on each Done's
// Tail (only where the callee's body is a single Done), guarded against
// self-recursive expansion by Guarded relative to enclosing (the Block
// whose body this is, or nil for a ClosureDefn/TopLevel body which has
// no Block identity to guard against reentry into).
func inlineCode(ctx *types.Ctx, c mil.Code, enclosing *mil.Block, counts map[*mil.Block]int, cfg *config.PipelineConfig, total int) (mil.Code, int) {
	switch x := c.(type) {
	case *mil.Bind:
		if bc, ok := x.Rhs.(*mil.BlockCall); ok && cfg.Passes.Inline {
			if (enclosing == nil || !mil.Guarded(bc, enclosing)) && eligible(bc.Block, counts, cfg) {
				s := EmptySubst().ExtendAll(bc.Block.Params, bc.Args)
				inlined := CopyCode(ctx, s, bc.Block.Body)
				rest, t2 := inlineCode(ctx, x.Rest, enclosing, counts, cfg, total+1)
				return spliceResult(inlined, x.Vars, rest), t2
			}
		}
		rest, t2 := inlineCode(ctx, x.Rest, enclosing, counts, cfg, total)
		return &mil.Bind{Vars: x.Vars, Rhs: x.Rhs, Rest: rest}, t2
	case *mil.Done:
		tail, t2 := inlineTailAsTail(ctx, x.Tail, enclosing, counts, cfg, total)
		return &mil.Done{Tail: tail}, t2
	case *mil.Case:
		alts := make([]mil.Alt, len(x.Alts))
		for i, alt := range x.Alts {
			var t mil.Code
			t, total = inlineCode(ctx, alt.Target, enclosing, counts, cfg, total)
			alts[i] = mil.Alt{Cons: alt.Cons, Target: t}
		}
		var def mil.Code
		if x.Default != nil {
			def, total = inlineCode(ctx, x.Default, enclosing, counts, cfg, total)
		}
		return &mil.Case{Scrutinee: x.Scrutinee, Alts: alts, Default: def}, total
	case *mil.If:
		then, t2 := inlineCode(ctx, x.Then, enclosing, counts, cfg, total)
		els, t3 := inlineCode(ctx, x.Else, enclosing, counts, cfg, t2)
		return &mil.If{Cond: x.Cond, Then: then, Else: els}, t3
	}
	return c, total
}

// inlineTailAsTail suffix-inlines a Tail in terminal position: the lone
// Tail owned by a ClosureDefn or TopLevel, or the Tail of a Done inside
// a Block body. The rewrite only applies when the callee's copied body
// collapses to a single Done{tail} — i.e. the callee itself has no
// intervening Binds and does not branch. A call to a callee with Binds
// or branches is left as a BlockCall; no other pass inlines it.
func inlineTailAsTail(ctx *types.Ctx, t mil.Tail, enclosing *mil.Block, counts map[*mil.Block]int, cfg *config.PipelineConfig, total int) (mil.Tail, int) {
	bc, ok := t.(*mil.BlockCall)
	if !ok || !cfg.Passes.Inline {
		return t, total
	}
	if enclosing != nil && mil.Guarded(bc, enclosing) {
		return t, total
	}
	if !eligible(bc.Block, counts, cfg) {
		return t, total
	}
	s := EmptySubst().ExtendAll(bc.Block.Params, bc.Args)
	inlined := CopyCode(ctx, s, bc.Block.Body)
	if d, ok := inlined.(*mil.Done); ok {
		return d.Tail, total + 1
	}
	return t, total
}

func spliceResult(inlined mil.Code, vars []*mil.Temp, rest mil.Code) mil.Code {
	return bindResultOf(inlined, vars, rest)
}

// bindResultOf walks to every leaf Done of inlined and rewrites it into
// a Bind of vars to that leaf's Tail followed by rest, threading rest
// into every branch of a Case/If the inlined body may have.
func bindResultOf(c mil.Code, vars []*mil.Temp, rest mil.Code) mil.Code {
	switch x := c.(type) {
	case *mil.Done:
		return &mil.Bind{Vars: vars, Rhs: x.Tail, Rest: rest}
	case *mil.Bind:
		return &mil.Bind{Vars: x.Vars, Rhs: x.Rhs, Rest: bindResultOf(x.Rest, vars, rest)}
	case *mil.Case:
		alts := make([]mil.Alt, len(x.Alts))
		for i, alt := range x.Alts {
			alts[i] = mil.Alt{Cons: alt.Cons, Target: bindResultOf(alt.Target, vars, rest)}
		}
		var def mil.Code
		if x.Default != nil {
			def = bindResultOf(x.Default, vars, rest)
		}
		return &mil.Case{Scrutinee: x.Scrutinee, Alts: alts, Default: def}
	case *mil.If:
		return &mil.If{Cond: x.Cond, Then: bindResultOf(x.Then, vars, rest), Else: bindResultOf(x.Else, vars, rest)}
	}
	return c
}
