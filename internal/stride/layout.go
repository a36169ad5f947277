package stride

import (
	"fmt"
	"sort"
)

// FieldKind is the binary type of a field. All numbers are little-endian.
type FieldKind uint8

const (
	Int32 FieldKind = iota
	Float32
	Float64
	Chars        // fixed-length Latin-1 text, Count bytes
	Int32Array   // Count consecutive Int32
	Float32Array // Count consecutive Float32
)

func (k FieldKind) String() string {
	return [...]string{"int32", "float32", "float64", "chars", "int32[]", "float32[]"}[k]
}

// Field is a field at an absolute offset inside a record.
type Field struct {
	Name   string
	Offset int
	Kind   FieldKind
	Count  int // Chars length or array element count
}

// Size returns the number of bytes the field occupies.
func (f Field) Size() int {
	switch f.Kind {
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	case Chars:
		return f.Count
	default:
		return 4 * f.Count
	}
}

func I32(name string, off int) Field { return Field{Name: name, Offset: off, Kind: Int32} }
func F32(name string, off int) Field { return Field{Name: name, Offset: off, Kind: Float32} }
func F64(name string, off int) Field { return Field{Name: name, Offset: off, Kind: Float64} }
func Text(name string, off, n int) Field { return Field{Name: name, Offset: off, Kind: Chars, Count: n} }
func I32s(name string, off, n int) Field { return Field{Name: name, Offset: off, Kind: Int32Array, Count: n} }
func F32s(name string, off, n int) Field { return Field{Name: name, Offset: off, Kind: Float32Array, Count: n} }

// Extent returns the smallest stride that holds every field.
func Extent(fields ...Field) int {
	n := 0
	for _, f := range fields {
		n = max(n, f.Offset+f.Size())
	}
	return n
}

// Range is a half-open byte range relative to the record start.
type Range struct {
	Start int
	End   int
}

// Layout describes a fixed-stride binary file.
type Layout struct {
	Name     string
	Stride   int
	Fields   []Field
	Validity string // Int32 field checked by Detect
	// Detect accepts the file when the first record's validity field lies
	// in [PlausibleMin, PlausibleMax].
	PlausibleMin int32
	PlausibleMax int32

	index  map[string]int
	opaque []Range
}

// NewLayout builds a layout and computes the byte ranges no field covers.
// Fields must not overlap or cross the stride.
func NewLayout(name string, stride int, validity string, fields ...Field) *Layout {
	l := &Layout{
		Name:         name,
		Stride:       stride,
		Fields:       fields,
		Validity:     validity,
		PlausibleMin: 1,
		PlausibleMax: 999,
		index:        make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Offset < 0 || f.Offset+f.Size() > stride {
			panic(fmt.Sprintf("stride: field %s [%d,%d) outside stride %d", f.Name, f.Offset, f.Offset+f.Size(), stride))
		}
		l.index[f.Name] = i
	}
	if v, ok := l.index[validity]; !ok || fields[v].Kind != Int32 {
		panic(fmt.Sprintf("stride: validity field %q must be an int32 field", validity))
	}
	l.opaque = uncovered(fields, stride)
	return l
}

// WithStride returns a copy using a different stride; fields must still fit.
func (l *Layout) WithStride(stride int) *Layout {
	return NewLayout(l.Name, stride, l.Validity, l.Fields...).WithPlausible(l.PlausibleMin, l.PlausibleMax)
}

// WithPlausible returns a copy with another plausible range for the validity field.
func (l *Layout) WithPlausible(lo, hi int32) *Layout {
	c := *l
	c.PlausibleMin, c.PlausibleMax = lo, hi
	return &c
}

// Opaque returns the byte ranges kept verbatim.
func (l *Layout) Opaque() []Range { return l.opaque }

func (l *Layout) field(name string) (Field, bool) {
	i, ok := l.index[name]
	if !ok {
		return Field{}, false
	}
	return l.Fields[i], true
}

func uncovered(fields []Field, stride int) []Range {
	spans := make([]Range, 0, len(fields))
	for _, f := range fields {
		spans = append(spans, Range{f.Offset, f.Offset + f.Size()})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	var out []Range
	pos := 0
	for _, s := range spans {
		if s.Start < pos {
			panic(fmt.Sprintf("stride: overlapping fields at offset %d", s.Start))
		}
		if s.Start > pos {
			out = append(out, Range{pos, s.Start})
		}
		pos = s.End
	}
	if pos < stride {
		out = append(out, Range{pos, stride})
	}
	return out
}
