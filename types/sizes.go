package types

// BitPat describes, as an ordered list of alternatives, which bit
// patterns are legal values of a type. Each alternative is a
// (mask, tag) pair: bits set in Mask must equal the corresponding bits
// of Tag for a value to match that alternative. This is a flattened
// stand-in for the original's binary-decision-diagram representation
// (package `obdd`, not present in the retrieved Java sources); nothing
// in this core depends on BDD node sharing, only on enumerating
// alternatives in declaration order, which this preserves. See
// DESIGN.md for the full justification.
type BitPat struct {
	Width int
	Alts  []BitAlt
}

type BitAlt struct {
	Mask, Tag uint64
}

// Kind_ returns the kind of t; this is O(depth of the head) because the
// head Tycon carries its kind directly rather than requiring a full
// traversal.
func Kind_(t Type) *Kind {
	head, _ := Spine(t)
	switch x := head.(type) {
	case *TVar:
		return x.K
	case *TyconRef:
		return x.Tycon.K
	default:
		return Star()
	}
}

// BitSize returns the canonical nat-type specifying the in-register
// bit width of t, or nil if t has no bit-level representation.
// Dispatch goes through the head Tycon's Variant (after expanding a
// synonym): Bit n gives n and a tuple gives the sum of its fields'
// widths; every other variant, Ix, ARef and arrow included, gives nil.
func BitSize(t Type) Type {
	head, args := Spine(t)
	tc, ok := head.(*TyconRef)
	if !ok {
		return nil
	}
	if s, isSyn := synonymOf(tc); isSyn {
		return BitSize(instantiateSynonym(s, args))
	}
	switch tc.Tycon.Variant {
	case BitTycon:
		if len(args) == 1 {
			return args[0]
		}
	case TupleTycon:
		total := int64(0)
		for _, a := range args {
			sz := BitSize(a)
			n, ok := natLit(sz)
			if !ok {
				return nil
			}
			total += n
		}
		return natType(total)
	}
	return nil
}

// ByteSize returns the canonical nat-type specifying the in-memory
// byte size of t (required to be of area kind), or nil if t has no
// memory layout.
func ByteSize(t Type) Type {
	head, args := Spine(t)
	tc, ok := head.(*TyconRef)
	if !ok {
		return nil
	}
	if s, isSyn := synonymOf(tc); isSyn {
		return ByteSize(instantiateSynonym(s, args))
	}
	switch tc.Tycon.Variant {
	case ARefTycon:
		if len(args) >= 1 {
			return natType(8) // pointer-sized reference slot
		}
	case TupleTycon:
		total := int64(0)
		for _, a := range args {
			sz := ByteSize(a)
			n, ok := natLit(sz)
			if !ok {
				return nil
			}
			total += n
		}
		return natType(total)
	}
	return nil
}

// BitPatOf computes the legal-value pattern for t, or nil if t has no
// bit-level representation.
func BitPatOf(t Type) *BitPat {
	head, args := Spine(t)
	tc, ok := head.(*TyconRef)
	if !ok {
		return nil
	}
	if s, isSyn := synonymOf(tc); isSyn {
		return BitPatOf(instantiateSynonym(s, args))
	}
	switch tc.Tycon.Variant {
	case BitTycon:
		if len(args) == 1 {
			n, ok := natLit(args[0])
			if !ok || n <= 0 || n > 64 {
				return nil
			}
			width := int(n)
			mask := uint64(1)<<uint(width) - 1
			return &BitPat{Width: width, Alts: []BitAlt{{Mask: 0, Tag: 0 & mask}}}
		}
	case IxTycon:
		if len(args) == 1 {
			n, ok := natLit(args[0])
			if !ok || n <= 0 {
				return nil
			}
			width := bitsFor(n)
			return &BitPat{Width: width, Alts: []BitAlt{{Mask: 0, Tag: 0}}}
		}
	}
	return nil
}

func bitsFor(n int64) int {
	w := 0
	for (int64(1) << uint(w)) < n {
		w++
	}
	if w == 0 {
		w = 1
	}
	return w
}

func natLit(t Type) (int64, bool) {
	if t == nil {
		return 0, false
	}
	lit, ok := Deref(t).(*TLit)
	if !ok || lit.Nat == nil {
		return 0, false
	}
	return *lit.Nat, true
}

func natType(n int64) Type {
	return &TLit{Nat: &n}
}
