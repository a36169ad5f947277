package xref

import (
	"fmt"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

type kindKey struct {
	kind deck.Kind
	key  deck.Key
}

// duplicates reports every entity whose key was already taken by an
// earlier entity of the same kind, across all collections.
func (v *validator) duplicates() {
	first := make(map[kindKey]source.Span)
	v.each(func(e deck.Entity) {
		key := e.Key()
		if key.Arity == 0 {
			return
		}
		if r, ok := e.(deck.HydroRegistry); ok && r.Unused {
			return
		}
		kk := kindKey{kind: e.Kind(), key: key}
		prev, dup := first[kk]
		if !dup {
			first[kk] = e.Origin()
			return
		}
		v.report(diag.XrfDuplicateKey, e.Origin(), fmt.Sprintf("duplicate %s key %s", e.Kind(), key)).
			WithNote(prev, "first defined here").
			Emit()
	})
}
