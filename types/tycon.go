package types

import lltypes "github.com/llir/llvm/ir/types"

// TyconVariant distinguishes the handful of shapes a type constructor
// can take; each is dispatched on explicitly wherever size/kind queries
// need specialised behaviour (Bit, Ix, ARef, tuple, arrow).
type TyconVariant int

const (
	DataTycon TyconVariant = iota
	TupleTycon
	ArrowTycon
	SynonymTycon
	BitTycon
	IxTycon
	ARefTycon
)

// Tycon is a named type constructor: a data type, the tuple or
// function-arrow constructor, or a synonym carrying an expansion and a
// level used to break expansion ties during equality/unification.
type Tycon struct {
	Name    string
	K       *Kind
	Variant TyconVariant

	// Synonym-only fields.
	Expansion Type
	Level     int
	Arity     int // number of TGens in Expansion that a use supplies

	// Cached LLVM type, populated lazily during lowering. Using the
	// real llir/llvm type here (rather than a hand-rolled stand-in)
	// keeps the type system and the lowerer speaking the same
	// vocabulary for struct/pointer layout.
	llType lltypes.Type
}

func (t *Tycon) IsSynonym() bool { return t.Variant == SynonymTycon }

func (t *Tycon) LLType() lltypes.Type     { return t.llType }
func (t *Tycon) SetLLType(ty lltypes.Type) { t.llType = ty }

// ArrowTy is the function-type constructor, always built-in.
var ArrowTy = &Tycon{Name: "->", K: Arrow(Star(), Arrow(Star(), Star())), Variant: ArrowTycon}

// Tuple returns the n-ary tuple type constructor.
func Tuple(n int) *Tycon {
	k := Star()
	for i := 0; i < n; i++ {
		k = Arrow(Star(), k)
	}
	name := "("
	for i := 1; i < n; i++ {
		name += ","
	}
	name += ")"
	return &Tycon{Name: name, K: k, Variant: TupleTycon}
}

// instantiateSynonym substitutes args positionally for the TGens inside
// a synonym's expansion, then reapplies any arguments beyond the
// synonym's own arity. This is the Go counterpart of
// TTycon.sameTAp/unifyTAp's "s.getExpansion()...(tap, tapenv)" calls,
// which implicitly carry the outer application's argument environment
// into the expansion.
func instantiateSynonym(tc *Tycon, args []Type) Type {
	n := tc.Arity
	if n > len(args) {
		n = len(args)
	}
	body := substGens(tc.Expansion, args[:n])
	for _, extra := range args[n:] {
		body = &TAp{Fun: body, Arg: extra}
	}
	return body
}

func substGens(t Type, args []Type) Type {
	switch x := t.(type) {
	case TGen:
		if int(x) < len(args) {
			return args[x]
		}
		return x
	case *TAp:
		return &TAp{Fun: substGens(x.Fun, args), Arg: substGens(x.Arg, args)}
	default:
		return t
	}
}
