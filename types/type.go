package types

// Type is the sum of the six type-expression variants described in the
// data model: bound/unbound type variable, generic index, type
// constructor reference, left-spined application, literal, and
// indirection to a resolved variable. The interface's single unexported
// method restricts implementations to this package, collapsing what was
// an abstract base class with many subclasses into a tagged union
// matched with a type switch at each use site.
type Type interface {
	isType()
}

// TVar is a type variable, bound (Bound != nil) or unbound. A fresh
// unification variable starts unbound and is mutated in place by Unify;
// this is the one place the core allows shared mutable state, matching
// the source's in-place unification-cell design.
type TVar struct {
	ID    int
	K     *Kind
	Bound Type
}

func (*TVar) isType() {}

// TGen is a generic index inside a quantified Scheme or AllocType body;
// it is only meaningful relative to the Generics vector it was drawn
// from.
type TGen int

func (TGen) isType() {}

// TyconRef is a reference to a named type constructor.
type TyconRef struct {
	Tycon *Tycon
}

func (*TyconRef) isType() {}

// TAp is a left-spined type application: Fun applied to Arg. A type
// constructor applied to n arguments is represented as n nested TAps.
type TAp struct {
	Fun, Arg Type
}

func (*TAp) isType() {}

// TLit is a type-level literal: a natural number (used for bit/byte
// sizes and Ix bounds) or a symbolic name. Exactly one of Nat/Sym is
// set; literals take no arguments.
type TLit struct {
	Nat *int64
	Sym *string
}

func (*TLit) isType() {}

// TInd is an indirection to a resolved type; Deref transparently
// follows it. No function in this module constructs one.
type TInd struct {
	Resolved Type
}

func (*TInd) isType() {}

// Deref follows TVar.Bound and TInd.Resolved chains to the
// representative type at the root; every algorithm in this package
// derefs before inspecting a type's shape.
func Deref(t Type) Type {
	for {
		switch x := t.(type) {
		case *TVar:
			if x.Bound != nil {
				t = x.Bound
				continue
			}
		case *TInd:
			t = x.Resolved
			continue
		}
		return t
	}
}

// Spine decomposes a (dereferenced) type application into its head and
// the arguments applied to it, left to right.
func Spine(t Type) (head Type, args []Type) {
	t = Deref(t)
	for {
		ap, ok := t.(*TAp)
		if !ok {
			return t, args
		}
		args = append([]Type{ap.Arg}, args...)
		t = Deref(ap.Fun)
	}
}

// Apply rebuilds a left-spined application of head to args.
func Apply(head Type, args ...Type) Type {
	t := head
	for _, a := range args {
		t = &TAp{Fun: t, Arg: a}
	}
	return t
}

func litEqual(a, b *TLit) bool {
	if a.Nat != nil && b.Nat != nil {
		return *a.Nat == *b.Nat
	}
	if a.Sym != nil && b.Sym != nil {
		return *a.Sym == *b.Sym
	}
	return false
}
