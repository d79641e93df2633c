package types

import "module/report"

// Same tests whether two types are equal, expanding synonyms according
// to the level tie-break rule: when both sides are synonym-headed
// applications, the side with the greater level expands; at equal
// levels both expand and the comparison repeats; when only one side is
// a synonym, that side expands.
//
// This collapses the source's same/sameTAp/sameTTycon/sameTLit
// double-dispatch family into one recursive function with a type
// switch, per the Design Notes' guidance on replacing double dispatch
// with pattern matching.
func Same(a, b Type) bool {
	a, b = Deref(a), Deref(b)

	aHead, aArgs := Spine(a)
	bHead, bArgs := Spine(b)

	aTc, aIsTycon := aHead.(*TyconRef)
	bTc, bIsTycon := bHead.(*TyconRef)

	if aIsTycon || bIsTycon {
		return sameHeaded(aTc, aIsTycon, aArgs, bTc, bIsTycon, bArgs)
	}

	if len(aArgs) != len(bArgs) {
		return false
	}
	if !sameNonTycon(aHead, bHead) {
		return false
	}
	for i := range aArgs {
		if !Same(aArgs[i], bArgs[i]) {
			return false
		}
	}
	return true
}

func sameNonTycon(a, b Type) bool {
	switch x := a.(type) {
	case *TVar:
		y, ok := b.(*TVar)
		return ok && x == y
	case TGen:
		y, ok := b.(TGen)
		return ok && x == y
	case *TLit:
		y, ok := b.(*TLit)
		return ok && litEqual(x, y)
	default:
		return false
	}
}

// sameHeaded implements the synonym tie-break for two applications (or
// bare heads, when args is empty) at least one of which has a Tycon at
// the head.
func sameHeaded(aTc *TyconRef, aIsTycon bool, aArgs []Type, bTc *TyconRef, bIsTycon bool, bArgs []Type) bool {
	if aIsTycon && bIsTycon {
		if aTc.Tycon == bTc.Tycon {
			if len(aArgs) != len(bArgs) {
				return false
			}
			for i := range aArgs {
				if !Same(aArgs[i], bArgs[i]) {
					return false
				}
			}
			return true
		}
		sa, aIsSyn := synonymOf(aTc)
		sb, bIsSyn := synonymOf(bTc)
		switch {
		case aIsSyn && bIsSyn:
			if sa.Level > sb.Level {
				return Same(instantiateSynonym(sa, aArgs), Apply(bTc, bArgs...))
			} else if sa.Level < sb.Level {
				return Same(Apply(aTc, aArgs...), instantiateSynonym(sb, bArgs))
			}
			return Same(instantiateSynonym(sa, aArgs), instantiateSynonym(sb, bArgs))
		case aIsSyn:
			return Same(instantiateSynonym(sa, aArgs), Apply(bTc, bArgs...))
		case bIsSyn:
			return Same(Apply(aTc, aArgs...), instantiateSynonym(sb, bArgs))
		default:
			return false
		}
	}
	if aIsTycon {
		if s, ok := synonymOf(aTc); ok {
			return Same(instantiateSynonym(s, aArgs), Apply(rebuildHead(bTc), bArgsOrHead(bArgs)...))
		}
		return false
	}
	if s, ok := synonymOf(bTc); ok {
		return Same(Apply(rebuildHead(aTc), bArgsOrHead(aArgs)...), instantiateSynonym(s, bArgs))
	}
	return false
}

func synonymOf(tc *TyconRef) (*Tycon, bool) {
	if tc == nil {
		return nil, false
	}
	if tc.Tycon.IsSynonym() {
		return tc.Tycon, true
	}
	return nil, false
}

func rebuildHead(tc *TyconRef) Type {
	if tc == nil {
		return nil
	}
	return tc
}

func bArgsOrHead(args []Type) []Type { return args }

// Match performs one-directional unification: variables on the pattern
// (left) side may be bound to make it equal to input; variables on the
// input side are never bound. A partial match may leave bindings even
// when it ultimately returns false; callers are responsible for only
// matching against fresh, unshared variables, as the source does during
// inference.
func Match(pattern, input Type) bool {
	pattern = Deref(pattern)
	input = Deref(input)

	if v, ok := pattern.(*TVar); ok {
		v.Bound = input
		return true
	}

	pHead, pArgs := Spine(pattern)
	iHead, iArgs := Spine(input)

	if pTc, ok := pHead.(*TyconRef); ok {
		if s, isSyn := synonymOf(pTc); isSyn {
			return Match(instantiateSynonym(s, pArgs), input)
		}
		iTc, ok := iHead.(*TyconRef)
		if !ok {
			return false
		}
		if s, isSyn := synonymOf(iTc); isSyn {
			return Match(pattern, instantiateSynonym(s, iArgs))
		}
		if pTc.Tycon != iTc.Tycon || len(pArgs) != len(iArgs) {
			return false
		}
		for i := range pArgs {
			if !Match(pArgs[i], iArgs[i]) {
				return false
			}
		}
		return true
	}

	return sameNonTycon(pHead, iHead) && len(pArgs) == len(iArgs) && matchAll(pArgs, iArgs)
}

func matchAll(ps, is []Type) bool {
	for i := range ps {
		if !Match(ps[i], is[i]) {
			return false
		}
	}
	return true
}

// Unify performs symmetric unification, mutating TVar.Bound cells in
// place. It raises TypeMismatch, OccursCheck, or KindMismatch as a
// *report.Failure; the optimiser never calls Unify (within this module
// the specialiser is its caller, when instantiating a scheme at a
// concrete type), matching §7's propagation rule.
func Unify(span *report.TextSpan, a, b Type) *report.Failure {
	a, b = Deref(a), Deref(b)

	if av, ok := a.(*TVar); ok {
		return bindVar(span, av, b)
	}
	if bv, ok := b.(*TVar); ok {
		return bindVar(span, bv, a)
	}

	aHead, aArgs := Spine(a)
	bHead, bArgs := Spine(b)

	aTc, aIsTycon := aHead.(*TyconRef)
	bTc, bIsTycon := bHead.(*TyconRef)

	if aIsTycon || bIsTycon {
		return unifyHeaded(span, aTc, aIsTycon, aArgs, a, bTc, bIsTycon, bArgs, b)
	}

	if !sameNonTycon(aHead, bHead) || len(aArgs) != len(bArgs) {
		return report.Raise(report.TypeMismatch, span, "cannot unify %s with %s", Repr(a), Repr(b))
	}
	for i := range aArgs {
		if f := Unify(span, aArgs[i], bArgs[i]); f != nil {
			return f
		}
	}
	return nil
}

func unifyHeaded(span *report.TextSpan, aTc *TyconRef, aIsTycon bool, aArgs []Type, a Type, bTc *TyconRef, bIsTycon bool, bArgs []Type, b Type) *report.Failure {
	if aIsTycon && bIsTycon {
		if aTc.Tycon == bTc.Tycon {
			if len(aArgs) != len(bArgs) {
				return report.Raise(report.KindMismatch, span, "arity mismatch unifying %s with %s", Repr(a), Repr(b))
			}
			for i := range aArgs {
				if f := Unify(span, aArgs[i], bArgs[i]); f != nil {
					return f
				}
			}
			return nil
		}
		sa, aIsSyn := synonymOf(aTc)
		sb, bIsSyn := synonymOf(bTc)
		switch {
		case aIsSyn && bIsSyn:
			if sa.Level > sb.Level {
				return Unify(span, instantiateSynonym(sa, aArgs), b)
			} else if sa.Level < sb.Level {
				return Unify(span, a, instantiateSynonym(sb, bArgs))
			}
			return Unify(span, instantiateSynonym(sa, aArgs), instantiateSynonym(sb, bArgs))
		case aIsSyn:
			return Unify(span, instantiateSynonym(sa, aArgs), b)
		case bIsSyn:
			return Unify(span, a, instantiateSynonym(sb, bArgs))
		default:
			return report.Raise(report.TypeMismatch, span, "cannot unify %s with %s", Repr(a), Repr(b))
		}
	}
	if aIsTycon {
		if s, ok := synonymOf(aTc); ok {
			return Unify(span, instantiateSynonym(s, aArgs), b)
		}
		return report.Raise(report.TypeMismatch, span, "cannot unify %s with %s", Repr(a), Repr(b))
	}
	if s, ok := synonymOf(bTc); ok {
		return Unify(span, a, instantiateSynonym(s, bArgs))
	}
	return report.Raise(report.TypeMismatch, span, "cannot unify %s with %s", Repr(a), Repr(b))
}

func bindVar(span *report.TextSpan, v *TVar, t Type) *report.Failure {
	t = Deref(t)
	if tv, ok := t.(*TVar); ok && tv == v {
		return nil
	}
	if occurs(v, t) {
		return report.Raise(report.OccursCheck, span, "occurs check failed: %s occurs in %s", Repr(v), Repr(t))
	}
	v.Bound = t
	return nil
}

func occurs(v *TVar, t Type) bool {
	t = Deref(t)
	switch x := t.(type) {
	case *TVar:
		return x == v
	case *TAp:
		return occurs(v, x.Fun) || occurs(v, x.Arg)
	default:
		return false
	}
}
