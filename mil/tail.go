package mil

// Tail is one of the seven call/allocator forms that terminates a Code
// sequence and produces a tuple of atoms. The family is a tagged sum
// (Design Notes §9): a single marker method restricts implementations
// to this package, and every operation on Tails (Dependencies,
// UsedVars, Summary, AlphaEqual, ...) is a package-level function doing
// a type switch, replacing the source's per-class double dispatch.
type Tail interface {
	isTail()
}

// Return yields its atoms as the result of the enclosing Code.
type Return struct{ Args []Atom }

func (*Return) isTail() {}

// Enter applies closure Fn to Args.
type Enter struct {
	Fn   Atom
	Args []Atom
}

func (*Enter) isTail() {}

// BlockCall jumps/calls to Block with Args.
type BlockCall struct {
	Block *Block
	Args  []Atom
}

func (*BlockCall) isTail() {}

// PrimCall invokes a primitive operation.
type PrimCall struct {
	Prim *Primitive
	Args []Atom
}

func (*PrimCall) isTail() {}

// Sel projects field Index of constructor Cons out of Arg.
type Sel struct {
	Cons  *ConstructorInfo
	Index int
	Arg   Atom
}

func (*Sel) isTail() {}

// DataAlloc allocates a data value for constructor Cons.
type DataAlloc struct {
	Cons *ConstructorInfo
	Args []Atom
}

func (*DataAlloc) isTail() {}

// ClosAlloc allocates a closure for definition Closure, capturing Args
// as its stored parameters.
type ClosAlloc struct {
	Closure *ClosureDefn
	Args    []Atom
}

func (*ClosAlloc) isTail() {}

// IsAllocator reports whether t is one of the two allocator forms,
// which are pure, repeatable, and side-effect free by construction.
func IsAllocator(t Tail) bool {
	switch t.(type) {
	case *DataAlloc, *ClosAlloc:
		return true
	default:
		return false
	}
}

// IsPure reports whether evaluating t has no externally visible side
// effect. Return, Sel and the allocators are always pure; PrimCall
// defers to the primitive's declared Effect flag; every other form
// (BlockCall, Enter) may call into code the optimiser cannot see into
// and so is treated as impure.
func IsPure(t Tail) bool {
	switch x := t.(type) {
	case *Return, *Sel:
		return true
	case *DataAlloc, *ClosAlloc:
		return true
	case *PrimCall:
		return !x.Prim.Effect
	default:
		return false
	}
}

// IsRepeatable reports whether a previous evaluation of t may be
// reused in place of repeating it; this is the property the flow pass
// requires of a Tail before recording it as a Fact.
func IsRepeatable(t Tail) bool {
	switch t.(type) {
	case *DataAlloc, *ClosAlloc, *Sel:
		return true
	default:
		return false
	}
}

// Dependencies adds to ds the Definition that t calls or allocates: a
// BlockCall's Block, a ClosAlloc's ClosureDefn, and the TopLevel of an
// Enter whose function is a TopRef. TopRefs among a tail's arguments
// are not added.
func Dependencies(t Tail, ds DefSet) {
	switch x := t.(type) {
	case *BlockCall:
		ds.Add(x.Block)
	case *ClosAlloc:
		ds.Add(x.Closure)
	case *Enter:
		if r, ok := x.Fn.(*TopRef); ok {
			ds.Add(r.Top)
		}
	}
}

// UsedVars adds every Temp that t reads to vs. For a BlockCall/ClosAlloc
// whose callee has already had unused-argument elimination applied,
// only the arguments at positions the callee's UsedArgs bitmap marks
// used contribute (§4.4); before that pass has run (UsedArgs == nil),
// every argument contributes.
func UsedVars(t Tail, vs TempSet) {
	switch x := t.(type) {
	case *Return:
		addAtoms(vs, x.Args)
	case *Enter:
		usedVarsAtom(vs, x.Fn)
		addAtoms(vs, x.Args)
	case *BlockCall:
		addFilteredAtoms(vs, x.Args, x.Block.UsedArgs)
	case *PrimCall:
		addAtoms(vs, x.Args)
	case *Sel:
		usedVarsAtom(vs, x.Arg)
	case *DataAlloc:
		addAtoms(vs, x.Args)
	case *ClosAlloc:
		addFilteredAtoms(vs, x.Args, x.Closure.UsedArgs)
	}
}

func addAtoms(vs TempSet, args []Atom) {
	for _, a := range args {
		usedVarsAtom(vs, a)
	}
}

func addFilteredAtoms(vs TempSet, args []Atom, usedArgs []bool) {
	if usedArgs == nil {
		addAtoms(vs, args)
		return
	}
	for i, a := range args {
		if i < len(usedArgs) && usedArgs[i] {
			usedVarsAtom(vs, a)
		}
	}
}

// AlphaTail tests whether two Tails of the same form are alpha
// equivalent: a Temp compares equal to a Temp iff either both resolve
// to the same positional index in their (parameter/bind) environments,
// or neither is bound and the atoms are physically identical.
func AlphaTail(env1 []*Temp, a Tail, env2 []*Temp, b Tail) bool {
	switch x := a.(type) {
	case *Return:
		y, ok := b.(*Return)
		return ok && sameAtoms(env1, x.Args, env2, y.Args)
	case *Enter:
		y, ok := b.(*Enter)
		return ok && sameAtom(env1, x.Fn, env2, y.Fn) && sameAtoms(env1, x.Args, env2, y.Args)
	case *BlockCall:
		y, ok := b.(*BlockCall)
		return ok && x.Block == y.Block && sameAtoms(env1, x.Args, env2, y.Args)
	case *PrimCall:
		y, ok := b.(*PrimCall)
		return ok && x.Prim == y.Prim && sameAtoms(env1, x.Args, env2, y.Args)
	case *Sel:
		y, ok := b.(*Sel)
		return ok && x.Cons == y.Cons && x.Index == y.Index && sameAtom(env1, x.Arg, env2, y.Arg)
	case *DataAlloc:
		y, ok := b.(*DataAlloc)
		return ok && x.Cons == y.Cons && sameAtoms(env1, x.Args, env2, y.Args)
	case *ClosAlloc:
		y, ok := b.(*ClosAlloc)
		return ok && x.Closure == y.Closure && sameAtoms(env1, x.Args, env2, y.Args)
	}
	return false
}

func sameAtoms(env1 []*Temp, a []Atom, env2 []*Temp, b []Atom) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameAtom(env1, a[i], env2, b[i]) {
			return false
		}
	}
	return true
}

// Guarded reports whether a path exists from this BlockCall back to
// src purely through tail calls, i.e. whether inlining the callee here
// would risk an infinite prefix expansion. It is the loop-detection
// predicate prefix/suffix inlining consult before expanding a callee.
func Guarded(bc *BlockCall, src *Block) bool {
	seen := map[*Block]bool{}
	var walk func(b *Block) bool
	walk = func(b *Block) bool {
		if b == src {
			return true
		}
		if seen[b] {
			return false
		}
		seen[b] = true
		return tailCallsReach(b.Body, src, seen, walk)
	}
	return walk(bc.Block)
}

func tailCallsReach(c Code, src *Block, seen map[*Block]bool, walk func(*Block) bool) bool {
	switch x := c.(type) {
	case *Done:
		if call, ok := x.Tail.(*BlockCall); ok {
			return walk(call.Block)
		}
		return false
	case *Bind:
		return tailCallsReach(x.Rest, src, seen, walk)
	case *If:
		return tailCallsReach(x.Then, src, seen, walk) || tailCallsReach(x.Else, src, seen, walk)
	case *Case:
		for _, alt := range x.Alts {
			if tailCallsReach(alt.Target, src, seen, walk) {
				return true
			}
		}
		if x.Default != nil {
			return tailCallsReach(x.Default, src, seen, walk)
		}
	}
	return false
}
