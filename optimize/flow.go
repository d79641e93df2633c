package optimize

import "module/mil"

// Facts is a persistent mapping from Temp to the repeatable, non-self-
// referential Tail that defines it, threaded downward through a Code
// as the fact-propagation pass walks it. It is a Fact per the
// glossary: "a safe equation temp = tail maintained by the flow pass".
type Facts struct {
	parent *Facts
	binds  map[*mil.Temp]mil.Tail
}

func EmptyFacts() *Facts { return nil }

func (f *Facts) Extend(t *mil.Temp, rhs mil.Tail) *Facts {
	return &Facts{parent: f, binds: map[*mil.Temp]mil.Tail{t: rhs}}
}

func (f *Facts) Lookup(t *mil.Temp) (mil.Tail, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if rhs, ok := cur.binds[t]; ok {
			return rhs, true
		}
	}
	return nil, false
}

func factOf(f *Facts, a mil.Atom) (mil.Tail, bool) {
	t, ok := a.(*mil.Temp)
	if !ok {
		return nil, false
	}
	return f.Lookup(t)
}

// RunFlow rewrites every definition's body once, threading Facts
// downward and shorting Cases/Enters where a fact lets it. Known-
// constructor ClosAllocs (§4.5) are additionally rewritten when
// knownCons is set, matching cfg.Passes.KnownCons. It returns the
// number of rewrites performed.
func RunFlow(prog *mil.Program, knownCons bool) int {
	total := 0
	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			x.Body, total = rewriteCode(prog, EmptyFacts(), x.Body, knownCons, total)
		case *mil.ClosureDefn:
			x.Tail, total = rewriteTail(prog, EmptyFacts(), x.Tail, knownCons, total)
		case *mil.TopLevel:
			x.Tail, total = rewriteTail(prog, EmptyFacts(), x.Tail, knownCons, total)
		}
	}
	return total
}

func rewriteCode(prog *mil.Program, f *Facts, c mil.Code, knownCons bool, n int) (mil.Code, int) {
	switch x := c.(type) {
	case *mil.Bind:
		rhs := x.Rhs
		if knownCons {
			if ca, ok := rhs.(*mil.ClosAlloc); ok {
				if derived, ok := deriveClosAllocKnownCons(prog, f, ca); ok {
					rhs = derived
					n++
				}
			}
		}
		nextFacts := f
		if len(x.Vars) == 1 && mil.IsRepeatable(rhs) && !selfReferential(x.Vars[0], rhs) {
			nextFacts = f.Extend(x.Vars[0], rhs)
		}
		rest, n2 := rewriteCode(prog, nextFacts, x.Rest, knownCons, n)
		return &mil.Bind{Vars: x.Vars, Rhs: rhs, Rest: rest}, n2
	case *mil.Done:
		t, n2 := rewriteTail(prog, f, x.Tail, knownCons, n)
		return &mil.Done{Tail: t}, n2
	case *mil.Case:
		if rhs, ok := factOf(f, x.Scrutinee); ok {
			if da, ok := rhs.(*mil.DataAlloc); ok {
				return shortCase(da, x, n)
			}
		}
		alts := make([]mil.Alt, len(x.Alts))
		for i, alt := range x.Alts {
			var t mil.Code
			t, n = rewriteCode(prog, f, alt.Target, knownCons, n)
			alts[i] = mil.Alt{Cons: alt.Cons, Target: t}
		}
		var def mil.Code
		if x.Default != nil {
			def, n = rewriteCode(prog, f, x.Default, knownCons, n)
		}
		return &mil.Case{Scrutinee: x.Scrutinee, Alts: alts, Default: def}, n
	case *mil.If:
		then, n2 := rewriteCode(prog, f, x.Then, knownCons, n)
		els, n3 := rewriteCode(prog, f, x.Else, knownCons, n2)
		return &mil.If{Cond: x.Cond, Then: then, Else: els}, n3
	}
	return c, n
}

// shortCase rewrites a Case whose scrutinee is known (by fact) to be
// constructor da.Cons into that alternative's target directly; field
// accesses are left to Sel tails already present in its body, and no
// bindings are added. Alternatives are matched by constructor identity;
// ties (which cannot occur, constructors are unique per data type) are
// broken by declaration order, matching §4.7. With no matching
// alternative and no default, c is returned unchanged and n is not
// incremented.
func shortCase(da *mil.DataAlloc, c *mil.Case, n int) (mil.Code, int) {
	for _, alt := range c.Alts {
		if alt.Cons == da.Cons {
			return alt.Target, n + 1
		}
	}
	if c.Default != nil {
		return c.Default, n + 1
	}
	return c, n
}

// rewriteTail performs the Enter side of §4.7 and, for a ClosAlloc
// reached in tail position, the §4.5 known-constructor rewrite: an
// Enter on a Temp whose fact is a ClosAlloc is replaced by the
// callee's tail with its stored params bound to the allocation's args
// and its call params bound to the args supplied at this Enter.
func rewriteTail(prog *mil.Program, f *Facts, t mil.Tail, knownCons bool, n int) (mil.Tail, int) {
	if knownCons {
		if ca, ok := t.(*mil.ClosAlloc); ok {
			if derived, ok := deriveClosAllocKnownCons(prog, f, ca); ok {
				return derived, n + 1
			}
			return t, n
		}
	}

	enter, ok := t.(*mil.Enter)
	if !ok {
		return t, n
	}
	rhs, ok := factOf(f, enter.Fn)
	if !ok {
		return t, n
	}
	ca, ok := rhs.(*mil.ClosAlloc)
	if !ok {
		return t, n
	}
	cl := ca.Closure
	if len(cl.Params) != len(ca.Args) || len(cl.Args) != len(enter.Args) {
		return t, n
	}
	s := EmptySubst()
	s = s.ExtendAll(cl.Params, ca.Args)
	s = s.ExtendAll(cl.Args, enter.Args)
	return CopyTail(prog.Ctx, s, cl.Tail), n + 1
}

func selfReferential(v *mil.Temp, rhs mil.Tail) bool {
	vs := mil.NewTempSet()
	mil.UsedVars(rhs, vs)
	return vs.Contains(v)
}
