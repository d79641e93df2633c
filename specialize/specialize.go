package specialize

import (
	"module/mil"
	"module/report"
	"module/types"
)

// Specializer performs §4.9 monomorphisation: every generic TopLevel
// reached at a concrete type is instantiated into a fresh, fully
// monomorphic copy, memoised on (original TopLevel, instantiated
// type) so repeated uses at the same type share one instance. A
// program entry point that is still polymorphic once the pipeline
// reaches this stage (no caller ever supplied a concrete type) is a
// PolymorphicEntrypoint error, matching the original's MILSpec rule
// that every entry point's type is closed.
type Specializer struct {
	prog  *mil.Program
	ctx   *types.Ctx
	cache map[instKey]*mil.TopLevel
}

type instKey struct {
	base *mil.TopLevel
	lhs  int
	key  string
}

func New(prog *mil.Program) *Specializer {
	return &Specializer{prog: prog, ctx: prog.Ctx, cache: map[instKey]*mil.TopLevel{}}
}

// Instantiate returns a TopLevel whose lhsIndex'th binding has exactly
// type concrete. If that binding is already monomorphic, base is
// returned unchanged. Otherwise the declared scheme is instantiated
// with fresh type variables, unified against concrete to read off the
// substitution, and a fresh copy of the whole reachable definition
// graph is cloned under that substitution.
func (s *Specializer) Instantiate(base *mil.TopLevel, lhsIndex int, concrete types.Type) (*mil.TopLevel, *report.Failure) {
	lhs := base.Lhs[lhsIndex]
	if lhs.Declared == nil || !lhs.Declared.IsPolymorphic() {
		return base, nil
	}

	instBody, fresh := lhs.Declared.InstantiateFresh(s.ctx)
	if fail := types.Unify(nil, instBody, concrete); fail != nil {
		return nil, fail
	}
	for _, f := range fresh {
		tv := f.(*types.TVar)
		if types.Deref(tv) == tv {
			return nil, report.Raise(report.PolymorphicEntrypoint, nil,
				"entry point %q is still polymorphic in its %q parameter", base.Name(), "generic")
		}
	}

	key := instKey{base: base, lhs: lhsIndex, key: substKey(fresh)}
	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}

	ts := substFromFresh(fresh)
	cl := newCloner(s.ctx, s.prog, s, ts, mangle(substKey(fresh)))

	newLhs := make([]*mil.TopLhs, len(base.Lhs))
	for i, l := range base.Lhs {
		nl := &mil.TopLhs{ID: l.ID + cl.suffix}
		if l.Defining != nil {
			nl.Defining = ts.apply(l.Defining)
		}
		nl.Declared = types.Mono(nl.Defining)
		newLhs[i] = nl
	}

	// The instance is registered in the cache before its body is
	// cloned so that a TopRef back to base found while cloning (a
	// recursive top-level binding) resolves to this same instance
	// instead of recursing forever.
	top := &mil.TopLevel{Lhs: newLhs}
	s.cache[key] = top
	s.prog.AddDef(top)

	top.Tail = cl.tail(base.Tail)
	if cl.err != nil {
		return nil, cl.err
	}
	return top, nil
}
