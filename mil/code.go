package mil

import "hash/fnv"

// Code is one of the four code-sequence forms: Bind, Done, Case, If.
// Each has a statically known result arity inherited from its final
// Tail (the Tail reached by following Bind.Rest / the matching branch).
type Code interface {
	isCode()
}

// Bind evaluates Rhs, binds its results to Vars, and continues with
// Rest.
type Bind struct {
	Vars []*Temp
	Rhs  Tail
	Rest Code
}

func (*Bind) isCode() {}

// Done is a terminal Code whose result is Tail's result.
type Done struct{ Tail Tail }

func (*Done) isCode() {}

// Alt is one alternative of a Case: the code to run when the
// scrutinee's constructor is Cons.
type Alt struct {
	Cons   *ConstructorInfo
	Target Code
}

// Case dispatches on the constructor of Scrutinee; alternatives are
// considered in lexical (declaration) order, and Default runs if no
// alternative's constructor matches.
type Case struct {
	Scrutinee Atom
	Alts      []Alt
	Default   Code
}

func (*Case) isCode() {}

// If branches on a boolean-valued Cond.
type If struct {
	Cond       Atom
	Then, Else Code
}

func (*If) isCode() {}

// UsedVarsCode adds every Temp c reads to vs; Bind's bound Vars are
// never themselves "used" by the Bind, only by Rest (or not at all, if
// dead).
func UsedVarsCode(c Code, vs TempSet) {
	switch x := c.(type) {
	case *Bind:
		UsedVars(x.Rhs, vs)
		UsedVarsCode(x.Rest, vs)
		for _, v := range x.Vars {
			vs.Remove(v)
		}
	case *Done:
		UsedVars(x.Tail, vs)
	case *Case:
		usedVarsAtom(vs, x.Scrutinee)
		for _, alt := range x.Alts {
			UsedVarsCode(alt.Target, vs)
		}
		if x.Default != nil {
			UsedVarsCode(x.Default, vs)
		}
	case *If:
		usedVarsAtom(vs, x.Cond)
		UsedVarsCode(x.Then, vs)
		UsedVarsCode(x.Else, vs)
	}
}

// AlphaCode tests whether two Codes are alpha equivalent under the
// given environments, extending them positionally as Binds are
// traversed in lockstep.
func AlphaCode(env1 []*Temp, a Code, env2 []*Temp, b Code) bool {
	switch x := a.(type) {
	case *Bind:
		y, ok := b.(*Bind)
		if !ok || len(x.Vars) != len(y.Vars) || !AlphaTail(env1, x.Rhs, env2, y.Rhs) {
			return false
		}
		return AlphaCode(append(env1, x.Vars...), x.Rest, append(env2, y.Vars...), y.Rest)
	case *Done:
		y, ok := b.(*Done)
		return ok && AlphaTail(env1, x.Tail, env2, y.Tail)
	case *Case:
		y, ok := b.(*Case)
		if !ok || !sameAtom(env1, x.Scrutinee, env2, y.Scrutinee) || len(x.Alts) != len(y.Alts) {
			return false
		}
		for i := range x.Alts {
			if x.Alts[i].Cons != y.Alts[i].Cons {
				return false
			}
			if !AlphaCode(env1, x.Alts[i].Target, env2, y.Alts[i].Target) {
				return false
			}
		}
		if (x.Default == nil) != (y.Default == nil) {
			return false
		}
		if x.Default != nil {
			return AlphaCode(env1, x.Default, env2, y.Default)
		}
		return true
	case *If:
		y, ok := b.(*If)
		return ok && sameAtom(env1, x.Cond, env2, y.Cond) &&
			AlphaCode(env1, x.Then, env2, y.Then) && AlphaCode(env1, x.Else, env2, y.Else)
	}
	return false
}

// summarizer computes an alpha-stable hash: Temps are hashed by their
// positional index within the environment built up as parameters and
// Bind-lhs are encountered, so that alpha-equivalent Code produces an
// identical summary (the invariant alphaEquiv(c,c') => summary(c) ==
// summary(c') from §8 follows directly, since AlphaCode/AlphaTail use
// the same positional convention).
type summarizer struct {
	env map[*Temp]int
	h   interface {
		Write([]byte) (int, error)
		Sum64() uint64
	}
}

func newSummarizer(params []*Temp) *summarizer {
	s := &summarizer{env: map[*Temp]int{}, h: fnv.New64a()}
	for _, p := range params {
		s.bind(p)
	}
	return s
}

func (s *summarizer) bind(t *Temp) {
	if t == nil {
		return
	}
	s.env[t] = len(s.env)
}

func (s *summarizer) str(str string) {
	s.h.Write([]byte(str))
	s.h.Write([]byte{0})
}

func (s *summarizer) atom(a Atom) {
	switch x := a.(type) {
	case *Temp:
		if idx, ok := s.env[x]; ok {
			s.str("v")
			s.str(itoa(idx))
		} else {
			s.str("free")
			s.str(x.Name)
		}
	case *TopRef:
		s.str("top")
		s.str(itoa(x.Index))
	case *ConstAtom:
		s.str("cons:" + x.Cons.Name)
	case *Literal:
		s.str("lit:" + x.Repr())
	default:
		s.str("atom")
	}
}

func (s *summarizer) tail(t Tail) {
	switch x := t.(type) {
	case *Return:
		s.str("return")
		for _, a := range x.Args {
			s.atom(a)
		}
	case *Enter:
		s.str("enter")
		s.atom(x.Fn)
		for _, a := range x.Args {
			s.atom(a)
		}
	case *BlockCall:
		s.str("blockcall:" + x.Block.Nm)
		for _, a := range x.Args {
			s.atom(a)
		}
	case *PrimCall:
		s.str("prim:" + x.Prim.Name)
		for _, a := range x.Args {
			s.atom(a)
		}
	case *Sel:
		s.str("sel:" + x.Cons.Name)
		s.str(itoa(x.Index))
		s.atom(x.Arg)
	case *DataAlloc:
		s.str("dataalloc:" + x.Cons.Name)
		for _, a := range x.Args {
			s.atom(a)
		}
	case *ClosAlloc:
		s.str("closalloc:" + x.Closure.Nm)
		for _, a := range x.Args {
			s.atom(a)
		}
	}
}

func (s *summarizer) code(c Code) {
	switch x := c.(type) {
	case *Bind:
		s.str("bind")
		s.tail(x.Rhs)
		for _, v := range x.Vars {
			s.bind(v)
		}
		s.code(x.Rest)
	case *Done:
		s.str("done")
		s.tail(x.Tail)
	case *Case:
		s.str("case")
		s.atom(x.Scrutinee)
		for _, alt := range x.Alts {
			s.str("alt:" + alt.Cons.Name)
			s.code(alt.Target)
		}
		if x.Default != nil {
			s.str("default")
			s.code(x.Default)
		}
	case *If:
		s.str("if")
		s.atom(x.Cond)
		s.code(x.Then)
		s.code(x.Else)
	}
}

// Summary computes an alpha-stable hash of c, given the parameter list
// of its enclosing definition (the initial binding environment).
func Summary(params []*Temp, c Code) uint64 {
	s := newSummarizer(params)
	s.code(c)
	return s.h.Sum64()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
