package reptransform

import "module/mil"

// RepEnv is a persistent map from an original Temp to the list of
// Temps that now stand in for it, mirroring Temp.java's reps/
// repParams/extend trio: a nil entry for a position means "no change",
// a non-nil slice gives the replacement components in order.
type RepEnv struct {
	parent *RepEnv
	binds  map[*mil.Temp][]*mil.Temp
}

func EmptyRepEnv() *RepEnv { return nil }

func (e *RepEnv) Find(t *mil.Temp) ([]*mil.Temp, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if r, ok := cur.binds[t]; ok {
			return r, true
		}
	}
	return nil, false
}

func (e *RepEnv) extendOne(t *mil.Temp, r []*mil.Temp) *RepEnv {
	return &RepEnv{parent: e, binds: map[*mil.Temp][]*mil.Temp{t: r}}
}

// extend is the Go shape of Temp.extend(vs, reps, env): it folds reps
// (one entry per position of vs, nil where no change is needed) into
// env, skipping unchanged positions.
func extend(vs []*mil.Temp, reps [][]*mil.Temp, env *RepEnv) *RepEnv {
	if reps == nil {
		return env
	}
	for i, v := range vs {
		if reps[i] != nil {
			env = env.extendOne(v, reps[i])
		}
	}
	return env
}

// aliasEnv is a small persistent alias table used only within one
// definition's body, recording that a locally bound variable now
// stands for one particular component Temp (introduced when a Sel on
// a split Temp is shorted away, §4.10's "selecting a flattened field
// collapses to referencing the already-separate component").
type aliasEnv struct {
	parent *aliasEnv
	from   *mil.Temp
	to     *mil.Temp
}

func (a *aliasEnv) resolve(t *mil.Temp) *mil.Temp {
	for cur := a; cur != nil; cur = cur.parent {
		if cur.from == t {
			return cur.to
		}
	}
	return t
}

func (a *aliasEnv) extend(from, to *mil.Temp) *aliasEnv {
	return &aliasEnv{parent: a, from: from, to: to}
}
