package mil

import (
	"module/report"
	"module/types"
)

// Definition is the common interface of the four definition variants.
// Definitions refer to one another freely (mutual recursion is the
// common case); callers hold plain pointers rather than owning
// handles. Program.Defs is the set emitted; passes may remove entries
// from it in place (dedup drops the definitions it merges away).
type Definition interface {
	isDefinition()
	Name() string
}

// Block is a parameterised code sequence, callable by BlockCall.
type Block struct {
	ID     int
	Nm     string
	Params []*Temp
	Body   Code

	// UsedArgs/NumUsedArgs are populated by the unused-argument
	// elimination pass (§4.4); nil/0 before that pass runs.
	UsedArgs    []bool
	NumUsedArgs int
}

func NewBlock(ctx *types.Ctx, name string, params []*Temp, body Code) *Block {
	return &Block{ID: ctx.FreshBlockID(), Nm: name, Params: params, Body: body}
}

func (b *Block) isDefinition() {}
func (b *Block) Name() string  { return b.Nm }

// ClosureDefn defines how to enter a closure: Params are the
// closure-captured (stored) values, Args are the invocation arguments
// supplied at Enter, and Tail is the code run once both are available.
// A ClosureDefn may spawn derived, specialised copies (known-constructor
// specialisation, §4.5); Derived links them without the derived copy
// sharing ownership of the original's body.
type ClosureDefn struct {
	ID     int
	Nm     string
	Params []*Temp
	Args   []*Temp
	Tail   Tail
	Alloc  *types.AllocType

	UsedArgs    []bool
	NumUsedArgs int

	Derived     []*ClosureDefn
	derivedKeys map[string]*ClosureDefn // memoised by known-constructor pattern, §4.5
}

func NewClosureDefn(ctx *types.Ctx, name string, params, args []*Temp, tail Tail) *ClosureDefn {
	return &ClosureDefn{ID: ctx.FreshClosureID(), Nm: name, Params: params, Args: args, Tail: tail}
}

func (k *ClosureDefn) isDefinition() {}
func (k *ClosureDefn) Name() string  { return k.Nm }

// DerivedByKey looks up a previously-derived known-constructor
// specialisation of k keyed by the §4.5 known-args pattern key.
func (k *ClosureDefn) DerivedByKey(key string) (*ClosureDefn, bool) {
	d, ok := k.derivedKeys[key]
	return d, ok
}

// SetDerivedByKey records derived as k's known-constructor
// specialisation for key, so later requests with the same pattern
// reuse it instead of deriving again.
func (k *ClosureDefn) SetDerivedByKey(key string, derived *ClosureDefn) {
	if k.derivedKeys == nil {
		k.derivedKeys = map[string]*ClosureDefn{}
	}
	k.derivedKeys[key] = derived
	k.Derived = append(k.Derived, derived)
}

// TopLhs is one left-hand side bound by a TopLevel; a TopLevel's tail
// may produce several results, each with its own declared scheme and
// generalisation, per original_source's TopLhs.java.
type TopLhs struct {
	ID       string
	Declared *types.Scheme
	Defining types.Type
	Generics []*Kind0
}

// Kind0 is a type alias for types.Kind, so a *Kind0 is a *types.Kind.
type Kind0 = types.Kind

// GeneralizeType builds the scheme of the defining type over freeGens
// and checks it against any declared signature, matching
// TopLhs.generalizeType. With no declared signature the inferred
// scheme is recorded; otherwise a TypeMismatch is returned when the two
// schemes differ. It does not look for ambiguous type variables and
// never returns AmbiguousTypeVariable.
func (l *TopLhs) GeneralizeType(ctx *types.Ctx, freeGens []*Kind0) *report.Failure {
	if l.Defining == nil {
		return nil
	}
	inferred := &types.Scheme{Generics: freeGens, Body: l.Defining}
	if l.Declared == nil {
		l.Declared = inferred
		return nil
	}
	if !schemeAlphaEquiv(l.Declared, inferred) {
		return report.Raise(report.TypeMismatch, nil,
			"declared type for %q is more general than its inferred type", l.ID)
	}
	return nil
}

func schemeAlphaEquiv(a, b *types.Scheme) bool {
	if len(a.Generics) != len(b.Generics) {
		return false
	}
	return types.Same(a.Body, b.Body)
}

// TopLevel is a module-scope binding whose value(s) are produced by a
// tail evaluated once at program initialisation.
type TopLevel struct {
	Tail Tail
	Lhs  []*TopLhs

	// StaticValue is set once static-allocator hoisting (or a
	// parser-level constant) determines this TopLevel's value
	// requires no runtime initialisation.
	StaticValue interface{}
}

func (t *TopLevel) isDefinition() {}
func (t *TopLevel) Name() string {
	if len(t.Lhs) == 0 {
		return "<anon top>"
	}
	return t.Lhs[0].ID
}

// ExternalKind distinguishes the handful of foreign-declaration shapes
// the core needs to know about when lowering a call to one.
type ExternalKind int

const (
	ExternalFunc ExternalKind = iota
	ExternalValue
)

// External declares a foreign symbol (most commonly the "alloc"
// collaborator every DataAlloc/ClosAlloc calls into) with an id, a
// type, and a kind.
type External struct {
	ID   string
	Ty   types.Type
	Kind ExternalKind
}

func (e *External) isDefinition() {}
func (e *External) Name() string  { return e.ID }
