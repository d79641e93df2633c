package optimize

import (
	"sort"
	"strconv"
	"strings"

	"module/mil"
	"module/types"
)

// KnownArg records, for one argument position of a ClosAlloc/BlockCall,
// the DataAlloc fact (if any) a caller's flow analysis has established
// for it.
type KnownArg struct {
	Pos  int
	Cons *mil.DataAlloc
}

// patternKey derives the cache key §4.5 requires: derived definitions
// are memoised per-original, keyed by the pattern of known
// constructors.
func patternKey(known []KnownArg) string {
	sorted := append([]KnownArg(nil), known...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })
	var b strings.Builder
	for _, k := range sorted {
		b.WriteString(strconv.Itoa(k.Pos))
		b.WriteByte(':')
		b.WriteString(k.Cons.Cons.Name)
		b.WriteByte(',')
	}
	return b.String()
}

// DeriveClosureWithKnownCons returns a specialised ClosureDefn whose
// parameters are the remaining unknown stored args plus the fields of
// the known DataAllocs, with a body that reconstructs the eliminated
// allocations before falling into a renamed copy of the original tail.
// Derived closures are cached per-original and a request identical to
// the original (no known args) is declined by returning the original
// unchanged, matching ClosAlloc.deriveWithKnownCons.
func DeriveClosureWithKnownCons(prog *mil.Program, orig *mil.ClosureDefn, known []KnownArg) *mil.ClosureDefn {
	if len(known) == 0 {
		return orig
	}
	key := patternKey(known)
	if cached, ok := orig.DerivedByKey(key); ok {
		return cached
	}

	knownByPos := map[int]*mil.DataAlloc{}
	for _, k := range known {
		knownByPos[k.Pos] = k.Cons
	}

	s := EmptySubst()
	newParams := make([]*mil.Temp, 0, len(orig.Params))
	var prefixVars [][]*mil.Temp
	var prefixRhs []mil.Tail
	var origParamForPos []*mil.Temp

	for i, p := range orig.Params {
		if da, ok := knownByPos[i]; ok {
			fieldTemps := make([]*mil.Temp, len(da.Args))
			for j := range da.Args {
				ft := mil.NewTemp(prog.Ctx, fieldTypeOf(da, j))
				fieldTemps[j] = ft
				newParams = append(newParams, ft)
			}
			rebuilt := mil.NewTemp(prog.Ctx, p.Ty)
			fieldAtoms := make([]mil.Atom, len(fieldTemps))
			for j, ft := range fieldTemps {
				fieldAtoms[j] = ft
			}
			prefixVars = append(prefixVars, []*mil.Temp{rebuilt})
			prefixRhs = append(prefixRhs, &mil.DataAlloc{Cons: da.Cons, Args: fieldAtoms})
			s = s.Extend(p, rebuilt)
			origParamForPos = append(origParamForPos, nil)
		} else {
			np := mil.NewTemp(prog.Ctx, p.Ty)
			newParams = append(newParams, np)
			s = s.Extend(p, np)
			origParamForPos = append(origParamForPos, np)
		}
	}

	renamedTail := CopyTail(prog.Ctx, s, orig.Tail)
	body := mil.Code(&mil.Done{Tail: renamedTail})
	for i := len(prefixVars) - 1; i >= 0; i-- {
		body = &mil.Bind{Vars: prefixVars[i], Rhs: prefixRhs[i], Rest: body}
	}

	derived := &mil.ClosureDefn{
		ID:     prog.Ctx.FreshClosureID(),
		Nm:     orig.Nm + "$spec",
		Params: newParams,
		Args:   orig.Args,
	}
	if d, ok := body.(*mil.Done); ok {
		derived.Tail = d.Tail
	} else {
		derived.Tail = flattenToTail(prog, append(append([]*mil.Temp{}, newParams...), orig.Args...), body)
	}
	prog.AddDef(derived)
	orig.SetDerivedByKey(key, derived)
	return derived
}

func fieldTypeOf(da *mil.DataAlloc, i int) types.Type {
	if i < len(da.Cons.Fields) {
		return da.Cons.Fields[i]
	}
	return da.Args[i].Type()
}

// flattenToTail is needed when a derived body retains more than one
// Bind before its final Tail; ClosureDefn only has room for a single
// Tail, so the remaining Binds are folded into a synthetic Block that
// the Tail BlockCalls into, preserving the prefix's side-effect order.
// params are the temps the body reads from the enclosing closure; they
// become the Block's params and are passed straight through as its args.
func flattenToTail(prog *mil.Program, params []*mil.Temp, body mil.Code) mil.Tail {
	blk := mil.NewBlock(prog.Ctx, "known_cons$init", params, body)
	prog.AddDef(blk)
	args := make([]mil.Atom, len(params))
	for i, p := range params {
		args[i] = p
	}
	return &mil.BlockCall{Block: blk, Args: args}
}

// deriveClosAllocKnownCons implements the ClosAlloc side of §4.5,
// mirroring ClosAlloc.rewrite(Facts): for each of ca's captured
// arguments whose current fact resolves to a DataAlloc, a specialised
// closure is derived and ca is rewritten to allocate it instead, with
// the known DataAllocs' own fields spliced into the captured-arg list
// in place of the allocations themselves. It returns ok == false (and
// ca unchanged) when no argument's fact is a known constructor.
func deriveClosAllocKnownCons(prog *mil.Program, f *Facts, ca *mil.ClosAlloc) (*mil.ClosAlloc, bool) {
	var known []KnownArg
	for i, a := range ca.Args {
		if rhs, ok := factOf(f, a); ok {
			if da, ok := rhs.(*mil.DataAlloc); ok {
				known = append(known, KnownArg{Pos: i, Cons: da})
			}
		}
	}
	if len(known) == 0 {
		return ca, false
	}

	derived := DeriveClosureWithKnownCons(prog, ca.Closure, known)

	knownByPos := map[int]*mil.DataAlloc{}
	for _, k := range known {
		knownByPos[k.Pos] = k.Cons
	}
	newArgs := make([]mil.Atom, 0, len(ca.Args))
	for i, a := range ca.Args {
		if da, ok := knownByPos[i]; ok {
			for _, fa := range da.Args {
				newArgs = append(newArgs, fa)
			}
			continue
		}
		newArgs = append(newArgs, a)
	}
	return &mil.ClosAlloc{Closure: derived, Args: newArgs}, true
}
