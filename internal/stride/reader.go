package stride

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"fortio.org/safecast"
	"github.com/shopspring/decimal"

	"hydrodeck/internal/column"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// Value is a decoded field: a scalar, or a list for array kinds.
type Value struct {
	Scalar column.Value
	Items  []column.Value
}

// Opaque is an undecoded byte range kept verbatim.
type Opaque struct {
	Offset int // relative to the record start
	Bytes  []byte
}

// Record is one fixed-size record.
type Record struct {
	Index  int // 1-based
	Offset int // absolute byte offset in the file
	Span   source.Span
	Values []Value
	Opaque []Opaque
	Unused bool // validity field zero and name blank

	layout *Layout
}

// Get returns a scalar field; unknown names and array fields are absent.
func (r *Record) Get(name string) column.Value {
	if i, ok := r.layout.index[name]; ok {
		return r.Values[i].Scalar
	}
	return column.Absent(column.KindInt)
}

// List returns the elements of an array field.
func (r *Record) List(name string) []column.Value {
	if i, ok := r.layout.index[name]; ok {
		return r.Values[i].Items
	}
	return nil
}

// Result holds every record of a file in index order.
type Result struct {
	Records []Record
}

var le = binary.LittleEndian

// Detect reports whether content is a file of layout l: its length is a
// non-zero multiple of the stride and the first record's validity field is
// plausible. Both conditions are required.
func Detect(content []byte, l *Layout) bool {
	if len(content) == 0 || l.Stride <= 0 || len(content)%l.Stride != 0 {
		return false
	}
	f, _ := l.field(l.Validity)
	v := int32(le.Uint32(content[f.Offset:]))
	return v >= l.PlausibleMin && v <= l.PlausibleMax
}

// Reader decodes files of one Layout; it is safe for concurrent use.
type Reader struct {
	layout *Layout
}

func NewReader(l *Layout) *Reader { return &Reader{layout: l} }

func (r *Reader) Layout() *Layout { return r.layout }

// Read decodes every record of file. A length that is not a multiple of the
// stride fails the file with *MismatchError before anything is decoded.
func (r *Reader) Read(file *source.File, rep diag.Reporter) (*Result, error) {
	l := r.layout
	n := len(file.Content)
	if n%l.Stride != 0 {
		end, err := safecast.Conv[uint32](n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
		return nil, &MismatchError{Layout: l.Name, Length: n, Stride: l.Stride, Span: source.Span{File: file.ID, Start: 0, End: end}}
	}
	res := &Result{Records: make([]Record, 0, n/l.Stride)}
	for off := 0; off < n; off += l.Stride {
		rec, err := r.decode(file, off, rep)
		if err != nil {
			return nil, err
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func (r *Reader) decode(file *source.File, off int, rep diag.Reporter) (Record, error) {
	l := r.layout
	buf := file.Content[off : off+l.Stride]
	start, err := safecast.Conv[uint32](off)
	if err != nil {
		return Record{}, fmt.Errorf("%s: record offset: %w", file.Path, err)
	}
	rec := Record{
		Index:  off/l.Stride + 1,
		Offset: off,
		Span:   source.Span{File: file.ID, Start: start, End: start + uint32(l.Stride)},
		Values: make([]Value, len(l.Fields)),
		layout: l,
	}
	for i, f := range l.Fields {
		fieldSpan := source.Span{File: file.ID, Start: start + uint32(f.Offset), End: start + uint32(f.Offset+f.Size())}
		rec.Values[i] = decodeField(buf, f, func(elem int) {
			name := f.Name
			if elem >= 0 {
				name = fmt.Sprintf("%s[%d]", f.Name, elem)
			}
			diag.ReportWarning(rep, diag.BinNonFiniteValue, fieldSpan,
				fmt.Sprintf("%s record %d field %s is not a finite number", l.Name, rec.Index, name)).
				WithExpected("finite " + f.Kind.String()).
				Emit()
		})
	}
	for _, o := range l.opaque {
		rec.Opaque = append(rec.Opaque, Opaque{Offset: o.Start, Bytes: bytes.Clone(buf[o.Start:o.End])})
	}
	validity, _ := rec.Get(l.Validity).Int().Get()
	rec.Unused = validity == 0 && !anyText(&rec)
	if rec.Unused {
		diag.ReportInfo(rep, diag.BinUnusedSlot, rec.Span,
			fmt.Sprintf("%s record %d is an unused slot", l.Name, rec.Index)).Emit()
	}
	return rec, nil
}

// anyText reports whether any Chars field of rec is present.
func anyText(rec *Record) bool {
	for i, f := range rec.layout.Fields {
		if f.Kind == Chars && rec.Values[i].Scalar.Present() {
			return true
		}
	}
	return false
}

func decodeField(buf []byte, f Field, nonFinite func(elem int)) Value {
	at := buf[f.Offset:]
	switch f.Kind {
	case Int32:
		return Value{Scalar: column.IntValue(int64(int32(le.Uint32(at))))}
	case Float32:
		return Value{Scalar: float32Value(le.Uint32(at), -1, nonFinite)}
	case Float64:
		v := math.Float64frombits(le.Uint64(at))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			nonFinite(-1)
			return Value{Scalar: column.Absent(column.KindDecimal)}
		}
		return Value{Scalar: column.DecimalValue(decimal.NewFromFloat(v))}
	case Chars:
		text := bytes.TrimRight(at[:f.Count], " \x00")
		text = bytes.TrimLeft(text, " ")
		if len(text) == 0 {
			return Value{Scalar: column.Absent(column.KindString)}
		}
		return Value{Scalar: column.StringValue(column.Latin1(text))}
	case Int32Array:
		items := make([]column.Value, f.Count)
		for i := range items {
			items[i] = column.IntValue(int64(int32(le.Uint32(at[4*i:]))))
		}
		return Value{Items: items}
	default:
		items := make([]column.Value, f.Count)
		for i := range items {
			items[i] = float32Value(le.Uint32(at[4*i:]), i, nonFinite)
		}
		return Value{Items: items}
	}
}

func float32Value(bits uint32, elem int, nonFinite func(int)) column.Value {
	v := math.Float32frombits(bits)
	if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
		nonFinite(elem)
		return column.Absent(column.KindDecimal)
	}
	return column.DecimalValue(decimal.NewFromFloat32(v))
}
