package specialize

import (
	"sort"
	"strconv"
	"strings"

	"module/types"
)

// substKey derives a stable, deterministic string for a TVar-to-Type
// binding set, used both as a monomorphisation cache key and as the
// mangled-name suffix for the instantiated definitions, mirroring
// instSuffix's "tp=type,tp=type" convention. Each binding is keyed by
// its generic's position in fresh, not by the fresh TVar's own ID, so
// two instantiations at the same types produce the same key.
func substKey(fresh []types.Type) string {
	type pair struct {
		id int
		ty string
	}
	pairs := make([]pair, 0, len(fresh))
	for i, f := range fresh {
		tv, ok := f.(*types.TVar)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{id: i, ty: types.Repr(types.Deref(tv))})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(strconv.Itoa(p.id))
		b.WriteByte('=')
		b.WriteString(p.ty)
		b.WriteByte(',')
	}
	return b.String()
}

// mangle turns a substitution suffix into a legal-looking identifier
// fragment, hex-escaping anything that is not alphanumeric.
func mangle(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	b.WriteByte('$')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		ok := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		if ok {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
