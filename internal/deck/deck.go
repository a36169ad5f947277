package deck

import (
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// FailedFile is a file whose parse ended in a fatal error.
type FailedFile struct {
	Path string
	Err  error
}

// Deck is the validated model of a directory: every frozen collection, the
// files that failed and the diagnostics of the whole run.
type Deck struct {
	Dir         string
	Files       *source.FileSet
	Collections []*Collection
	Failed      []FailedFile
	Skipped     []string // files no parser is registered for
	Diagnostics *diag.Bag
}

// Of returns the entities of kind across collections.
func (d *Deck) Of(kind Kind) []Entity {
	var out []Entity
	for _, c := range d.Collections {
		if !c.Has(kind) {
			continue
		}
		for _, e := range c.entities {
			if e.Kind() == kind {
				out = append(out, e)
			}
		}
	}
	return out
}

// Count returns the number of entities of kind in the deck.
func (d *Deck) Count(kind Kind) int {
	n := 0
	for _, c := range d.Collections {
		n += c.Count(kind)
	}
	return n
}

// Collection returns the collection parsed from path.
func (d *Deck) Collection(path string) (*Collection, bool) {
	for _, c := range d.Collections {
		if c.Path == path || source.BaseName(c.Path) == path {
			return c, true
		}
	}
	return nil, false
}
