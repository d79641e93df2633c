package mil

import (
	"fmt"

	"module/types"
)

// Atom is a leaf operand: a temporary, a wildcard (a Temp whose Name is
// "_"), a top-level reference, a constructor used directly as a data
// value, or a literal.
type Atom interface {
	isAtom()
	// IsStatic reports whether this atom's value is known at
	// compile time: a literal, or a reference to a top-level that
	// static-allocator hoisting has already produced. Temps are
	// never static on their own (facts, a separate mechanism, can
	// tell the flow pass that a Temp's *defining tail* is static).
	IsStatic() bool
	Type() types.Type
	Repr() string
}

// Temp is a variable binding introduced by a parameter or a Bind. Its
// Name and Ty are mutable during inference (Ty starts as a fresh
// unification variable and is narrowed by Unify). A Temp named "_" is
// a wildcard: it may appear in a binding position but never as a used
// value.
type Temp struct {
	ID   int
	Name string
	Ty   types.Type
}

func NewTemp(ctx *types.Ctx, ty types.Type) *Temp {
	id := ctx.FreshTempID()
	return &Temp{ID: id, Name: fmt.Sprintf("t%d", id), Ty: ty}
}

// NewWildcard returns a dead binding: it may occupy a parameter or
// Bind-left position but is never read.
func NewWildcard(ty types.Type) *Temp { return &Temp{Name: "_", Ty: ty} }

func (t *Temp) isAtom()              {}
func (t *Temp) IsStatic() bool       { return false }
func (t *Temp) Type() types.Type     { return t.Ty }
func (t *Temp) IsWildcard() bool     { return t.Name == "_" }
func (t *Temp) Repr() string {
	if t.IsWildcard() {
		return "_"
	}
	return t.Name
}

// TopRef is an atom referencing one left-hand side of a TopLevel
// definition.
type TopRef struct {
	Top   *TopLevel
	Index int
}

func (r *TopRef) isAtom()          {}
func (r *TopRef) IsStatic() bool   { return r.Top.StaticValue != nil }
func (r *TopRef) Type() types.Type { return r.Top.Lhs[r.Index].Defining }
func (r *TopRef) Repr() string     { return r.Top.Lhs[r.Index].ID }

// ConstAtom is a nullary data constructor used directly as a value
// (e.g. Nil, True) rather than via a DataAlloc tail.
type ConstAtom struct {
	Cons *ConstructorInfo
}

func (c *ConstAtom) isAtom()          {}
func (c *ConstAtom) IsStatic() bool   { return true }
func (c *ConstAtom) Type() types.Type { return c.Cons.DataType }
func (c *ConstAtom) Repr() string     { return c.Cons.Name }

// Literal is a constant atom: an integer or string value of a given
// type.
type Literal struct {
	IntVal  int64
	IsInt   bool
	StrVal  string
	Ty      types.Type
}

func IntLiteral(v int64, ty types.Type) *Literal { return &Literal{IntVal: v, IsInt: true, Ty: ty} }
func StrLiteral(v string, ty types.Type) *Literal { return &Literal{StrVal: v, Ty: ty} }

func (l *Literal) isAtom()          {}
func (l *Literal) IsStatic() bool   { return true }
func (l *Literal) Type() types.Type { return l.Ty }
func (l *Literal) Repr() string {
	if l.IsInt {
		return fmt.Sprintf("%d", l.IntVal)
	}
	return fmt.Sprintf("%q", l.StrVal)
}

// ConstructorInfo names a data constructor: its declaring data type,
// its tag (declaration order, used to tie-break Case alternatives and
// to tag DataAlloc values), and its field types.
type ConstructorInfo struct {
	Name     string
	Tag      int
	DataType types.Type
	Fields   []types.Type
}

// Primitive names a primitive operation invoked by PrimCall.
type Primitive struct {
	Name   string
	Arity  int
	Effect bool // true if the primitive has an externally visible side effect
}

// sameAtom compares two atoms positionally under alpha-renaming
// environments: a Temp compares equal to a Temp iff either both
// resolve to the same positional index in their environments, or
// neither is bound (and the atoms are physically identical).
func sameAtom(env1 []*Temp, a Atom, env2 []*Temp, b Atom) bool {
	at, aIsTemp := a.(*Temp)
	bt, bIsTemp := b.(*Temp)
	if aIsTemp && bIsTemp {
		ai, aBound := indexOf(env1, at)
		bi, bBound := indexOf(env2, bt)
		if aBound || bBound {
			return aBound && bBound && ai == bi
		}
		return at == bt
	}
	if aIsTemp != bIsTemp {
		return false
	}
	switch x := a.(type) {
	case *TopRef:
		y, ok := b.(*TopRef)
		return ok && x.Top == y.Top && x.Index == y.Index
	case *ConstAtom:
		y, ok := b.(*ConstAtom)
		return ok && x.Cons == y.Cons
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.IsInt == y.IsInt && x.IntVal == y.IntVal && x.StrVal == y.StrVal
	}
	return false
}

func indexOf(env []*Temp, t *Temp) (int, bool) {
	for i, e := range env {
		if e == t {
			return i, true
		}
	}
	return 0, false
}

func usedVarsAtom(vs TempSet, a Atom) {
	if t, ok := a.(*Temp); ok {
		vs.Add(t)
	}
}
