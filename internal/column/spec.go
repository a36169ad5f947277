package column

import (
	"fmt"
)

// Kind is the declared type of a field.
type Kind uint8

const (
	KindInt Kind = iota
	KindDecimal
	KindString
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	}
	return "unknown"
}

// Range is a 0-based half-open byte range of a line.
type Range struct {
	Start int
	End   int
}

func (r Range) Width() int { return r.End - r.Start }

// FieldSpec describes one fixed-width field.
type FieldSpec struct {
	Name     string
	Start    int
	End      int
	Kind     Kind
	Decimals int32 // places after the point (Decimal)
	Implied  bool  // the last Decimals digits are fractional when no literal point is present

	// Date sub-ranges, absolute within the line.
	Day, Month, Year Range
}

// Width returns the number of bytes the field occupies.
func (f FieldSpec) Width() int { return f.End - f.Start }

// Columns returns the 1-based inclusive column range, as fixed-format
// manuals print it.
func (f FieldSpec) Columns() string {
	return fmt.Sprintf("%d-%d", f.Start+1, f.End)
}

// Expected describes the accepted text for the field.
func (f FieldSpec) Expected() string {
	switch f.Kind {
	case KindInt:
		return fmt.Sprintf("integer in columns %s", f.Columns())
	case KindDecimal:
		if f.Implied {
			return fmt.Sprintf("decimal in columns %s, %d implied decimal places when no point is given", f.Columns(), f.Decimals)
		}
		return fmt.Sprintf("decimal in columns %s", f.Columns())
	case KindDate:
		return fmt.Sprintf("date DD MM YY in columns %s", f.Columns())
	default:
		return fmt.Sprintf("text in columns %s", f.Columns())
	}
}

// Int declares an integer field.
func Int(name string, start, end int) FieldSpec {
	return FieldSpec{Name: name, Start: start, End: end, Kind: KindInt}
}

// Decimal declares a decimal field with a literal point and the given number of places.
func Decimal(name string, start, end int, decimals int32) FieldSpec {
	return FieldSpec{Name: name, Start: start, End: end, Kind: KindDecimal, Decimals: decimals}
}

// ImpliedDecimal declares a decimal field whose last decimals digits are
// fractional when the text carries no point.
func ImpliedDecimal(name string, start, end int, decimals int32) FieldSpec {
	f := Decimal(name, start, end, decimals)
	f.Implied = true
	return f
}

// String declares a text field.
func String(name string, start, end int) FieldSpec {
	return FieldSpec{Name: name, Start: start, End: end, Kind: KindString}
}

// DateDMY declares a date whose day, month and two-digit year occupy
// consecutive two-byte ranges starting at start.
func DateDMY(name string, start int) FieldSpec {
	return FieldSpec{
		Name:  name,
		Start: start,
		End:   start + 6,
		Kind:  KindDate,
		Day:   Range{start, start + 2},
		Month: Range{start + 2, start + 4},
		Year:  Range{start + 4, start + 6},
	}
}
