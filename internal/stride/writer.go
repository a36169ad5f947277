package stride

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/encoding/charmap"

	"hydrodeck/internal/column"
)

// Encode renders rec back into one stride-sized record. Opaque ranges are
// written back verbatim; absent floats become NaN and absent text is blank.
func (l *Layout) Encode(rec *Record) ([]byte, error) {
	buf := make([]byte, l.Stride)
	for _, o := range rec.Opaque {
		copy(buf[o.Offset:], o.Bytes)
	}
	for i, f := range l.Fields {
		if i >= len(rec.Values) {
			break
		}
		if err := encodeField(buf[f.Offset:f.Offset+f.Size()], f, rec.Values[i]); err != nil {
			return nil, fmt.Errorf("%s record %d: %w", l.Name, rec.Index, err)
		}
	}
	return buf, nil
}

// EncodeAll concatenates the encoded records.
func (l *Layout) EncodeAll(recs []Record) ([]byte, error) {
	out := make([]byte, 0, len(recs)*l.Stride)
	for i := range recs {
		b, err := l.Encode(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func encodeField(dst []byte, f Field, v Value) error {
	switch f.Kind {
	case Int32:
		return putInt32(dst, f.Name, v.Scalar)
	case Float32:
		return putFloat32(dst, f.Name, v.Scalar)
	case Float64:
		bits := math.Float64bits(math.NaN())
		if d, ok := v.Scalar.Decimal().Get(); ok {
			bits = math.Float64bits(d.InexactFloat64())
		}
		le.PutUint64(dst, bits)
		return nil
	case Chars:
		for i := range dst {
			dst[i] = ' '
		}
		s, ok := v.Scalar.Str().Get()
		if !ok {
			return nil
		}
		raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		if len(raw) > len(dst) {
			return fmt.Errorf("field %s: %w", f.Name, column.ErrOverflow)
		}
		copy(dst, raw)
		return nil
	case Int32Array:
		for i := 0; i < f.Count && i < len(v.Items); i++ {
			if err := putInt32(dst[4*i:], f.Name, v.Items[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		for i := 0; i < f.Count && i < len(v.Items); i++ {
			if err := putFloat32(dst[4*i:], f.Name, v.Items[i]); err != nil {
				return err
			}
		}
		return nil
	}
}

func putInt32(dst []byte, name string, v column.Value) error {
	n := v.Int32()
	if !n.Valid && v.Present() {
		return fmt.Errorf("field %s: %w", name, column.ErrOverflow)
	}
	le.PutUint32(dst, uint32(n.Val))
	return nil
}

func putFloat32(dst []byte, name string, v column.Value) error {
	bits := math.Float32bits(float32(math.NaN()))
	if d, ok := v.Decimal().Get(); ok {
		f, err := strconv.ParseFloat(d.String(), 32)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, column.ErrOverflow)
		}
		bits = math.Float32bits(float32(f))
	}
	le.PutUint32(dst, bits)
	return nil
}
