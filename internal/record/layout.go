package record

import (
	"fmt"
	"strings"

	"hydrodeck/internal/column"
)

// Kind tags a record type. Values are assigned by the format packages.
type Kind uint16

// Layout is the ordered field table of one record kind.
type Layout struct {
	Kind   Kind
	Name   string // human-readable kind name used in messages
	Disc   string // discriminator as written from column 1, e.g. "TVIAG"; empty for positional files
	Fields []column.FieldSpec
	index  map[string]int
}

// NewLayout builds a layout identified by discriminator disc.
func NewLayout(kind Kind, disc string, fields ...column.FieldSpec) *Layout {
	return newLayout(kind, disc, disc, fields)
}

// Positional builds a layout for files where every line has the same kind.
func Positional(kind Kind, name string, fields ...column.FieldSpec) *Layout {
	return newLayout(kind, name, "", fields)
}

func newLayout(kind Kind, name, disc string, fields []column.FieldSpec) *Layout {
	l := &Layout{Kind: kind, Name: name, Disc: disc, Fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := l.index[f.Name]; dup {
			panic(fmt.Sprintf("record: layout %s declares field %q twice", name, f.Name))
		}
		l.index[f.Name] = i
	}
	return l
}

// FieldIndex returns the position of the named field.
func (l *Layout) FieldIndex(name string) (int, bool) {
	i, ok := l.index[name]
	return i, ok
}

// Encode renders a record of this layout back into a fixed-width line:
// the discriminator at column 1 and every field at its declared range.
func (l *Layout) Encode(values []column.Value) (string, error) {
	width := len(l.Disc)
	for _, f := range l.Fields {
		width = max(width, f.End)
	}
	buf := []rune(strings.Repeat(" ", width))
	copy(buf, []rune(l.Disc))
	for i, f := range l.Fields {
		v := column.Absent(f.Kind)
		if i < len(values) {
			v = values[i]
		}
		s, err := column.Encode(v, f)
		if err != nil {
			return "", fmt.Errorf("%s: %w", l.Name, err)
		}
		copy(buf[f.Start:], []rune(s))
	}
	return strings.TrimRight(string(buf), " "), nil
}
