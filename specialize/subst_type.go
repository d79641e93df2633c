package specialize

import "module/types"

// tvarSubst rewrites every occurrence of a bound TVar (by ID) with its
// binding, recursing through TAp/TInd. It is the type-level analogue of
// optimize.Subst, except the substitution is fixed up front (from a
// Unify) rather than extended incrementally.
type tvarSubst map[int]types.Type

func (s tvarSubst) apply(t types.Type) types.Type {
	switch x := types.Deref(t).(type) {
	case *types.TVar:
		if r, ok := s[x.ID]; ok {
			return r
		}
		return x
	case *types.TAp:
		return &types.TAp{Fun: s.apply(x.Fun), Arg: s.apply(x.Arg)}
	default:
		return x
	}
}

func substFromFresh(fresh []types.Type) tvarSubst {
	s := tvarSubst{}
	for _, f := range fresh {
		if tv, ok := f.(*types.TVar); ok {
			s[tv.ID] = types.Deref(tv)
		}
	}
	return s
}
