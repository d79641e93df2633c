package mil

import "module/types"

// Builder is the narrow construction interface an external parser
// consumes to build up a Program: one method per IR node, so the
// parser never reaches into the data model's internals directly (§6).
type Builder struct {
	Program *Program
}

func NewBuilder(p *Program) *Builder { return &Builder{Program: p} }

func (b *Builder) Temp(ty types.Type) *Temp { return NewTemp(b.Program.Ctx, ty) }

func (b *Builder) Wildcard(ty types.Type) *Temp { return NewWildcard(ty) }

func (b *Builder) Block(name string, params []*Temp, body Code) *Block {
	blk := NewBlock(b.Program.Ctx, name, params, body)
	b.Program.AddDef(blk)
	return blk
}

func (b *Builder) ClosureDefn(name string, params, args []*Temp, tail Tail) *ClosureDefn {
	k := NewClosureDefn(b.Program.Ctx, name, params, args, tail)
	b.Program.AddDef(k)
	return k
}

func (b *Builder) TopLevel(tail Tail, lhs ...*TopLhs) *TopLevel {
	t := &TopLevel{Tail: tail, Lhs: lhs}
	b.Program.AddDef(t)
	return t
}

func (b *Builder) External(id string, ty types.Type, kind ExternalKind) *External {
	e := &External{ID: id, Ty: ty, Kind: kind}
	b.Program.AddDef(e)
	b.Program.Externals = append(b.Program.Externals, e)
	return e
}

func (b *Builder) Return(args ...Atom) *Return           { return &Return{Args: args} }
func (b *Builder) Enter(fn Atom, args ...Atom) *Enter     { return &Enter{Fn: fn, Args: args} }
func (b *Builder) BlockCall(blk *Block, args ...Atom) *BlockCall {
	return &BlockCall{Block: blk, Args: args}
}
func (b *Builder) PrimCall(p *Primitive, args ...Atom) *PrimCall {
	return &PrimCall{Prim: p, Args: args}
}
func (b *Builder) Sel(cons *ConstructorInfo, index int, arg Atom) *Sel {
	return &Sel{Cons: cons, Index: index, Arg: arg}
}
func (b *Builder) DataAlloc(cons *ConstructorInfo, args ...Atom) *DataAlloc {
	return &DataAlloc{Cons: cons, Args: args}
}
func (b *Builder) ClosAlloc(k *ClosureDefn, args ...Atom) *ClosAlloc {
	return &ClosAlloc{Closure: k, Args: args}
}

func (b *Builder) Bind(vars []*Temp, rhs Tail, rest Code) *Bind {
	return &Bind{Vars: vars, Rhs: rhs, Rest: rest}
}
func (b *Builder) Done(t Tail) *Done { return &Done{Tail: t} }
func (b *Builder) Case(scrutinee Atom, alts []Alt, def Code) *Case {
	return &Case{Scrutinee: scrutinee, Alts: alts, Default: def}
}
func (b *Builder) If(cond Atom, then, els Code) *If {
	return &If{Cond: cond, Then: then, Else: els}
}
