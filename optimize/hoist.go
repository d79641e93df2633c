package optimize

import "module/mil"

// RunStaticHoist extracts every DataAlloc/ClosAlloc whose arguments are
// all static into a fresh TopLevel, replacing the original tail with a
// Return of the hoisted reference. TopLevels created by an earlier
// round (those with a StaticValue) are not hoisted again, so repeated
// rounds reach a fixpoint. Only allocators whose argument atoms are
// already static are hoisted: the Temp a Bind gives to a hoisted
// inner allocator's Return is not static, so an enclosing allocator
// that reads that Temp stays where it is.
func RunStaticHoist(prog *mil.Program) int {
	hoisted := 0
	for _, d := range prog.Defs {
		switch x := d.(type) {
		case *mil.Block:
			x.Body, hoisted = hoistCode(prog, x.Body, hoisted)
		case *mil.ClosureDefn:
			x.Tail, hoisted = hoistTail(prog, x.Tail, hoisted)
		case *mil.TopLevel:
			if x.StaticValue == nil {
				x.Tail, hoisted = hoistTail(prog, x.Tail, hoisted)
			}
		}
	}
	return hoisted
}

func hoistCode(prog *mil.Program, c mil.Code, n int) (mil.Code, int) {
	switch x := c.(type) {
	case *mil.Bind:
		var newRhs mil.Tail
		newRhs, n = hoistTail(prog, x.Rhs, n)
		rest, n2 := hoistCode(prog, x.Rest, n)
		return &mil.Bind{Vars: x.Vars, Rhs: newRhs, Rest: rest}, n2
	case *mil.Done:
		t, n2 := hoistTail(prog, x.Tail, n)
		return &mil.Done{Tail: t}, n2
	case *mil.Case:
		alts := make([]mil.Alt, len(x.Alts))
		for i, alt := range x.Alts {
			var t mil.Code
			t, n = hoistCode(prog, alt.Target, n)
			alts[i] = mil.Alt{Cons: alt.Cons, Target: t}
		}
		var def mil.Code
		if x.Default != nil {
			def, n = hoistCode(prog, x.Default, n)
		}
		return &mil.Case{Scrutinee: x.Scrutinee, Alts: alts, Default: def}, n
	case *mil.If:
		then, n2 := hoistCode(prog, x.Then, n)
		els, n3 := hoistCode(prog, x.Else, n2)
		return &mil.If{Cond: x.Cond, Then: then, Else: els}, n3
	}
	return c, n
}

func hoistTail(prog *mil.Program, t mil.Tail, n int) (mil.Tail, int) {
	if !mil.IsAllocator(t) {
		return t, n
	}
	var args []mil.Atom
	switch x := t.(type) {
	case *mil.DataAlloc:
		args = x.Args
	case *mil.ClosAlloc:
		args = x.Args
	}
	for _, a := range args {
		if !a.IsStatic() {
			return t, n
		}
	}
	lhs := &mil.TopLhs{ID: "s"}
	top := &mil.TopLevel{Tail: t, Lhs: []*mil.TopLhs{lhs}, StaticValue: t}
	prog.AddDef(top)
	return &mil.Return{Args: []mil.Atom{&mil.TopRef{Top: top, Index: 0}}}, n + 1
}
