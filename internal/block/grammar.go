package block

import (
	"bytes"
	"fmt"

	"hydrodeck/internal/record"
)

// Spec describes one block kind. The leading layout's discriminator is the
// block keyword; its line is the leading sub-record of a composite.
type Spec struct {
	Leading    *record.Layout
	Dependents []*record.Layout
}

// Keyword returns the marker that opens the block.
func (s *Spec) Keyword() string { return s.Leading.Disc }

func (s *Spec) dependent(l *record.Layout) bool {
	for _, d := range s.Dependents {
		if d == l {
			return true
		}
	}
	return false
}

// Grammar describes a block-structured file.
type Grammar struct {
	Name          string
	Blocks        []*Spec
	Terminator    string // e.g. "FIM"
	KeyField      string // field shared by leading and dependent layouts
	CommentPrefix string
}

func (g *Grammar) isTerminator(text []byte) bool {
	return string(bytes.TrimRight(text, " \t")) == g.Terminator
}

func (g *Grammar) isComment(text []byte) bool {
	return g.CommentPrefix != "" && bytes.HasPrefix(text, []byte(g.CommentPrefix))
}

func (g *Grammar) layouts() []*record.Layout {
	var out []*record.Layout
	seen := make(map[*record.Layout]bool)
	for _, b := range g.Blocks {
		for _, l := range append([]*record.Layout{b.Leading}, b.Dependents...) {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

func (g *Grammar) validate() {
	for _, b := range g.Blocks {
		for _, l := range append([]*record.Layout{b.Leading}, b.Dependents...) {
			if _, ok := l.FieldIndex(g.KeyField); !ok {
				panic(fmt.Sprintf("block: layout %s has no key field %q", l.Name, g.KeyField))
			}
		}
	}
}
