package mil

import "module/types"

// Program is the whole definition graph plus the shared compilation
// context and canonicalising TypeSet; it is the unit the pass schedule
// and the lowerer both operate over. The dependency order recorded in
// Order is the leaves-first topological sort every deterministic
// iteration (§5) relies on; RecomputeOrder rebuilds it from the entry
// points.
type Program struct {
	Ctx       *types.Ctx
	TypeSet   *types.TypeSet
	Defs      []Definition
	Externals []*External
	Entries   []EntryPoint

	Order []Definition // leaves-first topological order, entry-seeded
}

// EntryPoint names a program entry and its declared monomorphic type;
// the specialiser starts monomorphisation from these (§4.9) and an
// entry point whose type is still quantified after generalisation is a
// PolymorphicEntrypoint error.
type EntryPoint struct {
	Top   *TopLevel
	Index int
	Type  types.Type
}

func NewProgram() *Program {
	return &Program{Ctx: types.NewCtx(), TypeSet: types.NewTypeSet()}
}

func (p *Program) AddDef(d Definition) { p.Defs = append(p.Defs, d) }

// RecomputeOrder rebuilds the leaves-first topological order by
// depth-first traversal of the dependency graph seeded from the entry
// points, falling back to declaration order for anything unreachable
// (dead code that dedup/specialisation has not yet pruned from Defs).
func (p *Program) RecomputeOrder() {
	visited := NewDefSet()
	var order []Definition
	var visit func(d Definition)
	visit = func(d Definition) {
		if d == nil || visited.Contains(d) {
			return
		}
		visited.Add(d)
		for _, dep := range directDeps(d) {
			visit(dep)
		}
		order = append(order, d)
	}
	for _, e := range p.Entries {
		visit(e.Top)
	}
	for _, d := range p.Defs {
		visit(d)
	}
	p.Order = order
}

func directDeps(d Definition) []Definition {
	ds := NewDefSet()
	switch x := d.(type) {
	case *Block:
		codeDependencies(x.Body, ds)
	case *ClosureDefn:
		Dependencies(x.Tail, ds)
	case *TopLevel:
		Dependencies(x.Tail, ds)
	}
	out := make([]Definition, 0, len(ds))
	for dep := range ds {
		out = append(out, dep)
	}
	return out
}

func codeDependencies(c Code, ds DefSet) {
	switch x := c.(type) {
	case *Bind:
		Dependencies(x.Rhs, ds)
		codeDependencies(x.Rest, ds)
	case *Done:
		Dependencies(x.Tail, ds)
	case *Case:
		for _, alt := range x.Alts {
			codeDependencies(alt.Target, ds)
		}
		if x.Default != nil {
			codeDependencies(x.Default, ds)
		}
	case *If:
		codeDependencies(x.Then, ds)
		codeDependencies(x.Else, ds)
	}
}
