package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Repr renders a type for diagnostics and debug dumps; it is not a
// parseable surface syntax, only a readable rendering of the internal
// tree.
func Repr(t Type) string {
	t = Deref(t)
	switch x := t.(type) {
	case *TVar:
		return fmt.Sprintf("t%d", x.ID)
	case TGen:
		return fmt.Sprintf("g%d", int(x))
	case *TyconRef:
		return x.Tycon.Name
	case *TLit:
		if x.Nat != nil {
			return strconv.FormatInt(*x.Nat, 10)
		}
		return *x.Sym
	case *TInd:
		return Repr(x.Resolved)
	case *TAp:
		head, args := Spine(x)
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Repr(a)
		}
		return Repr(head) + " " + strings.Join(parts, " ")
	default:
		return "?"
	}
}
