package record

import (
	"errors"
	"fmt"

	"hydrodeck/internal/column"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// Record is one decoded line: a value per field of its layout, absent where
// the text was blank or could not be coerced.
type Record struct {
	Kind   Kind
	Layout *Layout
	Line   uint32
	Span   source.Span
	Raw    string
	Values []column.Value
}

// Get returns the value of the named field; unknown names are absent.
func (r Record) Get(name string) column.Value {
	if r.Layout != nil {
		if i, ok := r.Layout.FieldIndex(name); ok && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return column.Absent(column.KindString)
}

// Int is a shortcut for Get(name).Int32().
func (r Record) Int(name string) column.Opt[int32] { return r.Get(name).Int32() }

// Encode renders the record back into a fixed-width line.
func (r Record) Encode() (string, error) {
	if r.Layout == nil {
		return "", fmt.Errorf("record at line %d has no layout", r.Line)
	}
	return r.Layout.Encode(r.Values)
}

// RawLine is a line kept verbatim because no layout applied to it.
type RawLine struct {
	Line uint32
	Span source.Span
	Text string
}

// DecodeLine decodes every field of layout from ln. Coercion failures are
// reported as warnings and leave the field absent; the other fields still decode.
func DecodeLine(layout *Layout, file source.FileID, ln source.Line, rep diag.Reporter) Record {
	rec := Record{
		Kind:   layout.Kind,
		Layout: layout,
		Line:   ln.Num,
		Span:   ln.Span(file),
		Raw:    column.Latin1(ln.Text),
		Values: make([]column.Value, len(layout.Fields)),
	}
	for i, spec := range layout.Fields {
		v, err := column.Decode(ln.Text, spec)
		if err != nil {
			reportCoercion(rep, layout, spec, file, ln, err)
		}
		rec.Values[i] = v
	}
	return rec
}

func reportCoercion(rep diag.Reporter, layout *Layout, spec column.FieldSpec, file source.FileID, ln source.Line, err error) {
	code := diag.ColCoercion
	if errors.Is(err, column.ErrOverflow) {
		code = diag.ColOverflow
	}
	b := diag.ReportWarning(rep, code, ln.Sub(file, spec.Start, spec.End),
		fmt.Sprintf("%s field %s: %v", layout.Name, spec.Name, err))
	var ce *column.CoercionError
	if errors.As(err, &ce) {
		b = b.WithExpected(ce.Expected).WithExcerpt(ce.Text)
	}
	b.Emit()
}
