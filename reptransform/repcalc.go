package reptransform

import (
	"module/mil"
	"module/types"
)

// RepCalc reports how t's representation should be flattened, or nil
// if t needs no change. Only tuple types are split (into their field
// types, with nested tuples flattened at every depth, per original's
// Type.repCalc dispatch); every other Tycon variant keeps its existing single-slot
// representation, since nothing else in this type system carries an
// unboxed multi-word layout.
func RepCalc(t types.Type) []types.Type {
	head, args := types.Spine(t)
	tr, ok := head.(*types.TyconRef)
	if !ok || tr.Tycon.Variant != types.TupleTycon || len(args) == 0 {
		return nil
	}
	var out []types.Type
	for _, a := range args {
		if sub := RepCalc(a); sub != nil {
			out = append(out, sub...)
		} else {
			out = append(out, a)
		}
	}
	return out
}

// reps analyzes vs and returns, for each position, either nil (no
// change) or the freshly minted Temps that should replace it, matching
// Temp.reps.
func reps(ctx *types.Ctx, vs []*mil.Temp) [][]*mil.Temp {
	var out [][]*mil.Temp
	for i, v := range vs {
		comps := RepCalc(v.Ty)
		if comps == nil {
			continue
		}
		if out == nil {
			out = make([][]*mil.Temp, len(vs))
		}
		newTemps := make([]*mil.Temp, len(comps))
		for j, ct := range comps {
			newTemps[j] = mil.NewTemp(ctx, ct)
		}
		out[i] = newTemps
	}
	return out
}

// repParams computes the replacement parameter list from a previous
// call to reps, matching Temp.repParams.
func repParams(vs []*mil.Temp, repsArr [][]*mil.Temp) []*mil.Temp {
	if repsArr == nil {
		return vs
	}
	out := make([]*mil.Temp, 0, len(vs))
	for i, v := range vs {
		if repsArr[i] == nil {
			out = append(out, v)
		} else {
			out = append(out, repsArr[i]...)
		}
	}
	return out
}
