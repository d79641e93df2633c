package types

import (
	"fmt"
	"io"
)

// TypeSet canonicalises types so that structurally equal types map to
// the same representative object; after canonicalisation, comparisons
// used by dedup and known-constructor matching can use reference
// equality instead of a full structural walk. It keeps three buckets,
// matching TypeSet.java: one per Tycon head, one for literals, and one
// for every other kind of head (TVar, TGen).
type TypeSet struct {
	tyconBucket map[*Tycon][]*bucketEntry
	otherBucket []*bucketEntry
	litBucket   map[litKey]*TLit
}

type bucketEntry struct {
	head   Type
	args   []Type // canonical arguments, compared by reference
	canon  Type
}

type litKey struct {
	isNat bool
	nat   int64
	sym   string
}

func NewTypeSet() *TypeSet {
	return &TypeSet{
		tyconBucket: make(map[*Tycon][]*bucketEntry),
		litBucket:   make(map[litKey]*TLit),
	}
}

// Canon returns the canonical representative of t, canonicalising its
// argument subtree bottom-up first (so that sibling canonicalisation
// always compares already-canonical arguments by reference).
func (ts *TypeSet) Canon(t Type) Type {
	t = Deref(t)
	switch x := t.(type) {
	case *TVar, TGen:
		return ts.canonOther(x, nil)
	case *TLit:
		return ts.canonLit(x)
	case *TyconRef:
		if x.Tycon.IsSynonym() {
			return ts.Canon(instantiateSynonym(x.Tycon, nil))
		}
		return ts.canonTycon(x.Tycon, nil)
	case *TAp:
		head, args := Spine(x)
		canonArgs := make([]Type, len(args))
		for i, a := range args {
			canonArgs[i] = ts.Canon(a)
		}
		if tr, ok := head.(*TyconRef); ok && tr.Tycon.IsSynonym() {
			return ts.Canon(instantiateSynonym(tr.Tycon, canonArgs))
		}
		if tr, ok := head.(*TyconRef); ok {
			return ts.canonTycon(tr.Tycon, canonArgs)
		}
		return ts.canonOther(head, canonArgs)
	default:
		return t
	}
}

func (ts *TypeSet) canonTycon(tc *Tycon, args []Type) Type {
	bucket := ts.tyconBucket[tc]
	for _, e := range bucket {
		if sameArgList(e.args, args) {
			return e.canon
		}
	}
	canon := Apply(&TyconRef{Tycon: tc}, args...)
	ts.tyconBucket[tc] = append(bucket, &bucketEntry{head: &TyconRef{Tycon: tc}, args: args, canon: canon})
	return canon
}

func (ts *TypeSet) canonOther(head Type, args []Type) Type {
	for _, e := range ts.otherBucket {
		if sameHeadIdentity(e.head, head) && sameArgList(e.args, args) {
			return e.canon
		}
	}
	canon := Apply(head, args...)
	ts.otherBucket = append(ts.otherBucket, &bucketEntry{head: head, args: args, canon: canon})
	return canon
}

func (ts *TypeSet) canonLit(t *TLit) Type {
	key := litKeyOf(t)
	if c, ok := ts.litBucket[key]; ok {
		return c
	}
	ts.litBucket[key] = t
	return t
}

// Dump writes a debugging listing of every type this TypeSet has
// canonicalised, grouped into the three buckets it keeps internally,
// matching TypeSet.java's dump(PrintWriter).
func (ts *TypeSet) Dump(w io.Writer) {
	fmt.Fprintln(w, "Tycon uses: -----------------------------")
	for tc, bucket := range ts.tyconBucket {
		fmt.Fprintf(w, "Tycon: %s\n", tc.Name)
		for _, e := range bucket {
			fmt.Fprintf(w, "   %s\n", Repr(e.canon))
		}
	}

	if len(ts.otherBucket) > 0 {
		fmt.Fprintln(w, "Other uses: -----------------------------")
		for i, e := range ts.otherBucket {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%s (%s)", Repr(e.head), Repr(e.canon))
		}
		fmt.Fprintln(w)
	}

	if len(ts.litBucket) > 0 {
		fmt.Fprintln(w, "Type literals used: ---------------------")
		first := true
		for _, lit := range ts.litBucket {
			if !first {
				fmt.Fprint(w, ", ")
			}
			first = false
			fmt.Fprint(w, Repr(lit))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "-----------------------------------------")
}

func litKeyOf(t *TLit) litKey {
	if t.Nat != nil {
		return litKey{isNat: true, nat: *t.Nat}
	}
	return litKey{sym: *t.Sym}
}

func sameArgList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameHeadIdentity(a, b Type) bool {
	switch x := a.(type) {
	case *TVar:
		y, ok := b.(*TVar)
		return ok && x == y
	case TGen:
		y, ok := b.(TGen)
		return ok && x == y
	default:
		return false
	}
}
