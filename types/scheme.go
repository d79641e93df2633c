package types

// Scheme is a universally quantified type: a vector of kinded bound
// variables (referred to inside Body as TGen indices) plus a body.
type Scheme struct {
	Generics []*Kind
	Body     Type
}

// Mono wraps a type with no quantified variables.
func Mono(t Type) *Scheme { return &Scheme{Body: t} }

// Instantiate replaces every TGen in the scheme's body with a fresh
// TVar of matching kind, drawn from ctx.
func (s *Scheme) Instantiate(ctx *Ctx) Type {
	body, _ := s.InstantiateFresh(ctx)
	return body
}

// InstantiateFresh is Instantiate, but also returns the fresh TVars
// substituted for each generic, positionally, so a caller that goes on
// to Unify the body against a concrete type can read the binding each
// generic received back off of fresh[i].Bound.
func (s *Scheme) InstantiateFresh(ctx *Ctx) (body Type, fresh []Type) {
	fresh = make([]Type, len(s.Generics))
	for i, k := range s.Generics {
		fresh[i] = ctx.FreshTVar(k)
	}
	return substGens(s.Body, fresh), fresh
}

// IsPolymorphic reports whether the scheme quantifies over anything.
func (s *Scheme) IsPolymorphic() bool { return len(s.Generics) > 0 }

// AllocType describes the type of a closure allocator: the types of
// its stored (captured) components, plus the type of the value it
// produces when fully applied, both under a shared quantifier vector.
type AllocType struct {
	Generics []*Kind
	Stored   []Type
	Result   Type
}

// Instantiate produces the stored-component types and result type for
// a fresh instantiation of this AllocType.
func (a *AllocType) Instantiate(ctx *Ctx) (stored []Type, result Type) {
	fresh := make([]Type, len(a.Generics))
	for i, k := range a.Generics {
		fresh[i] = ctx.FreshTVar(k)
	}
	stored = make([]Type, len(a.Stored))
	for i, t := range a.Stored {
		stored[i] = substGens(t, fresh)
	}
	return stored, substGens(a.Result, fresh)
}

// Ctx is the compilation context referenced by Design Notes §9's
// "replace global counters with an explicit compilation context":
// every fresh-name request flows through one of these, scoped to a
// single compilation so a process can run more than one without
// counters leaking between them.
type Ctx struct {
	nextTVar        int
	nextTemp        int
	nextBlockID     int
	nextClosureID   int
}

func NewCtx() *Ctx { return &Ctx{} }

func (c *Ctx) FreshTVar(k *Kind) *TVar {
	c.nextTVar++
	return &TVar{ID: c.nextTVar, K: k}
}

func (c *Ctx) FreshTempID() int {
	c.nextTemp++
	return c.nextTemp
}

func (c *Ctx) FreshBlockID() int {
	c.nextBlockID++
	return c.nextBlockID
}

func (c *Ctx) FreshClosureID() int {
	c.nextClosureID++
	return c.nextClosureID
}

// Reset reinitialises every counter, matching §5's requirement that
// process-wide counters be re-initialisable per compilation.
func (c *Ctx) Reset() { *c = Ctx{} }
