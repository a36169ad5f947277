package column

import (
	"time"

	"github.com/shopspring/decimal"
)

// Value is a decoded field: either present with a value of its kind, or absent.
type Value struct {
	kind    Kind
	present bool
	i       int64
	d       decimal.Decimal
	s       string
	t       time.Time
}

// Absent returns an absent value of the given kind.
func Absent(kind Kind) Value { return Value{kind: kind} }

func IntValue(n int64) Value { return Value{kind: KindInt, present: true, i: n} }

func DecimalValue(d decimal.Decimal) Value { return Value{kind: KindDecimal, present: true, d: d} }

func StringValue(s string) Value { return Value{kind: KindString, present: true, s: s} }

// DateValue keeps only the calendar day of t.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, present: true, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) Present() bool { return v.present }

// Int returns the integer value; absent for other kinds.
func (v Value) Int() Opt[int64] {
	if !v.present || v.kind != KindInt {
		return None[int64]()
	}
	return Some(v.i)
}

// Int32 narrows Int; values outside int32 are absent.
func (v Value) Int32() Opt[int32] {
	n, ok := v.Int().Get()
	if !ok || n < -1<<31 || n > 1<<31-1 {
		return None[int32]()
	}
	return Some(int32(n))
}

func (v Value) Decimal() Opt[decimal.Decimal] {
	if !v.present || v.kind != KindDecimal {
		return None[decimal.Decimal]()
	}
	return Some(v.d)
}

func (v Value) Str() Opt[string] {
	if !v.present || v.kind != KindString {
		return None[string]()
	}
	return Some(v.s)
}

func (v Value) Date() Opt[time.Time] {
	if !v.present || v.kind != KindDate {
		return None[time.Time]()
	}
	return Some(v.t)
}

// String renders the value for messages; absent values render as "-".
func (v Value) String() string {
	if !v.present {
		return "-"
	}
	switch v.kind {
	case KindInt:
		return decimal.NewFromInt(v.i).String()
	case KindDecimal:
		return v.d.String()
	case KindDate:
		return v.t.Format("2006-01-02")
	default:
		return v.s
	}
}
