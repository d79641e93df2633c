package types

import (
	"strings"
	"testing"
)

var bitTc = &Tycon{Name: "Bit", K: Star(), Variant: BitTycon}

func bitTy(n int64) Type {
	return &TAp{Fun: &TyconRef{Tycon: bitTc}, Arg: &TLit{Nat: &n}}
}

func natOf(t Type) (int64, bool) {
	if t == nil {
		return 0, false
	}
	lit, ok := Deref(t).(*TLit)
	if !ok || lit.Nat == nil {
		return 0, false
	}
	return *lit.Nat, true
}

func TestSameMatchesEqualTyconApplications(t *testing.T) {
	a := bitTy(32)
	b := bitTy(32)
	if !Same(a, b) {
		t.Fatalf("expected two Bit 32 types to be Same")
	}
	if Same(a, bitTy(64)) {
		t.Fatalf("expected Bit 32 and Bit 64 to differ")
	}
}

func TestUnifyBindsTVar(t *testing.T) {
	ctx := NewCtx()
	tv := ctx.FreshTVar(Star())
	if fail := Unify(nil, tv, bitTy(16)); fail != nil {
		t.Fatalf("unexpected failure unifying a fresh TVar: %v", fail)
	}
	bound := Deref(tv)
	if !Same(bound, bitTy(16)) {
		t.Fatalf("expected the TVar to resolve to Bit 16, got %v", bound)
	}
}

func TestUnifyMismatchFails(t *testing.T) {
	if fail := Unify(nil, bitTy(8), bitTy(16)); fail == nil {
		t.Fatalf("expected unifying Bit 8 against Bit 16 to fail")
	}
}

func TestBitSizeOfBitType(t *testing.T) {
	n, ok := natOf(BitSize(bitTy(32)))
	if !ok || n != 32 {
		t.Fatalf("expected BitSize(Bit 32) to report width 32, got %v ok=%v", n, ok)
	}
}

func TestBitSizeOfTupleSumsFields(t *testing.T) {
	tup := &TAp{
		Fun: &TAp{Fun: &TyconRef{Tycon: Tuple(2)}, Arg: bitTy(8)},
		Arg: bitTy(16),
	}
	n, ok := natOf(BitSize(tup))
	if !ok || n != 24 {
		t.Fatalf("expected a (Bit 8, Bit 16) tuple to report bit size 24, got %v ok=%v", n, ok)
	}
}

func TestTypeSetDumpListsCanonicalisedTycons(t *testing.T) {
	ts := NewTypeSet()
	ts.Canon(bitTy(32))
	ts.Canon(bitTy(64))

	var buf strings.Builder
	ts.Dump(&buf)

	out := buf.String()
	if !strings.Contains(out, "Tycon uses:") {
		t.Fatalf("expected the dump to include a Tycon-uses section, got %q", out)
	}
	if !strings.Contains(out, "Tycon: Bit") {
		t.Fatalf("expected the dump to name the Bit tycon, got %q", out)
	}
}

func TestByteSizeOfARef(t *testing.T) {
	arefTc := &Tycon{Name: "ARef", K: Star(), Variant: ARefTycon}
	aref := &TAp{Fun: &TyconRef{Tycon: arefTc}, Arg: bitTy(8)}
	n, ok := natOf(ByteSize(aref))
	if !ok || n != 8 {
		t.Fatalf("expected an ARef's byte size to be the pointer-sized slot 8, got %v ok=%v", n, ok)
	}
}
