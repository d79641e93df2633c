package reptransform

import "module/mil"

// Run performs §4.10 representation transformation: every Block
// parameter list and ClosureDefn call-argument list whose Temps need a
// different representation is split in place, and every use site is
// rewritten to spread the replacement components (or, for a Sel that
// selects a now-separate field, to resolve directly to that
// component instead of emitting a Sel at all). It returns the number
// of parameter lists changed.
func Run(prog *mil.Program) int {
	env := EmptyRepEnv()
	changed := 0

	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			r := reps(prog.Ctx, x.Params)
			if r != nil {
				env = extend(x.Params, r, env)
				x.Params = repParams(x.Params, r)
				changed++
			}
		case *mil.ClosureDefn:
			r := reps(prog.Ctx, x.Args)
			if r != nil {
				env = extend(x.Args, r, env)
				x.Args = repParams(x.Args, r)
				changed++
			}
		}
	}

	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			x.Body = rewriteCode(x.Body, env, nil)
		case *mil.ClosureDefn:
			x.Tail = rewriteTail(x.Tail, env, nil)
		case *mil.TopLevel:
			x.Tail = rewriteTail(x.Tail, env, nil)
		}
	}
	return changed
}

func resolveAtom(a mil.Atom, alias *aliasEnv) mil.Atom {
	if t, ok := a.(*mil.Temp); ok {
		return alias.resolve(t)
	}
	return a
}

func spreadOne(a mil.Atom, env *RepEnv) []mil.Atom {
	if t, ok := a.(*mil.Temp); ok {
		if comps, ok := env.Find(t); ok {
			out := make([]mil.Atom, len(comps))
			for i, c := range comps {
				out[i] = c
			}
			return out
		}
	}
	return []mil.Atom{a}
}

func spreadAll(as []mil.Atom, env *RepEnv, alias *aliasEnv) []mil.Atom {
	out := make([]mil.Atom, 0, len(as))
	for _, a := range as {
		out = append(out, spreadOne(resolveAtom(a, alias), env)...)
	}
	return out
}

func rewriteCode(c mil.Code, env *RepEnv, alias *aliasEnv) mil.Code {
	switch x := c.(type) {
	case *mil.Bind:
		if sel, ok := x.Rhs.(*mil.Sel); ok && len(x.Vars) == 1 {
			if t, ok := sel.Arg.(*mil.Temp); ok {
				rt := alias.resolve(t)
				if comps, ok := env.Find(rt); ok && sel.Index < len(comps) {
					return rewriteCode(x.Rest, env, alias.extend(x.Vars[0], comps[sel.Index]))
				}
			}
		}
		return &mil.Bind{Vars: x.Vars, Rhs: rewriteTail(x.Rhs, env, alias), Rest: rewriteCode(x.Rest, env, alias)}
	case *mil.Done:
		return &mil.Done{Tail: rewriteTail(x.Tail, env, alias)}
	case *mil.Case:
		alts := make([]mil.Alt, len(x.Alts))
		for i, alt := range x.Alts {
			alts[i] = mil.Alt{Cons: alt.Cons, Target: rewriteCode(alt.Target, env, alias)}
		}
		var def mil.Code
		if x.Default != nil {
			def = rewriteCode(x.Default, env, alias)
		}
		return &mil.Case{Scrutinee: resolveAtom(x.Scrutinee, alias), Alts: alts, Default: def}
	case *mil.If:
		return &mil.If{
			Cond: resolveAtom(x.Cond, alias),
			Then: rewriteCode(x.Then, env, alias),
			Else: rewriteCode(x.Else, env, alias),
		}
	}
	return c
}

func rewriteTail(t mil.Tail, env *RepEnv, alias *aliasEnv) mil.Tail {
	switch x := t.(type) {
	case *mil.Return:
		return &mil.Return{Args: spreadAll(x.Args, env, alias)}
	case *mil.Enter:
		return &mil.Enter{Fn: resolveAtom(x.Fn, alias), Args: spreadAll(x.Args, env, alias)}
	case *mil.BlockCall:
		return &mil.BlockCall{Block: x.Block, Args: spreadAll(x.Args, env, alias)}
	case *mil.PrimCall:
		return &mil.PrimCall{Prim: x.Prim, Args: spreadAll(x.Args, env, alias)}
	case *mil.Sel:
		return &mil.Sel{Cons: x.Cons, Index: x.Index, Arg: resolveAtom(x.Arg, alias)}
	case *mil.DataAlloc:
		return &mil.DataAlloc{Cons: x.Cons, Args: spreadAll(x.Args, env, alias)}
	case *mil.ClosAlloc:
		return &mil.ClosAlloc{Closure: x.Closure, Args: spreadAll(x.Args, env, alias)}
	}
	return t
}
