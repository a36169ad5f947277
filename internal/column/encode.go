package column

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Encode renders v into exactly spec.Width() characters. Numbers are
// right-aligned, text is left-aligned and absent values are blank.
// A value that cannot fit returns a *CoercionError wrapping ErrOverflow.
func Encode(v Value, spec FieldSpec) (string, error) {
	width := spec.Width()
	if !v.Present() {
		return strings.Repeat(" ", width), nil
	}
	if v.Kind() != spec.Kind {
		return "", coercionError(spec, v.String(), fmt.Errorf("%w: value of kind %s", ErrSyntax, v.Kind()))
	}
	switch spec.Kind {
	case KindInt:
		return padLeft(strconv.FormatInt(v.i, 10), spec)
	case KindDecimal:
		return padLeft(formatDecimal(v, spec), spec)
	case KindDate:
		return encodeDate(v, spec)
	default:
		n := utf8.RuneCountInString(v.s)
		if n > width {
			return "", coercionError(spec, v.s, ErrOverflow)
		}
		return v.s + strings.Repeat(" ", width-n), nil
	}
}

func formatDecimal(v Value, spec FieldSpec) string {
	d := v.d
	if spec.Implied && d.Exponent() >= -spec.Decimals {
		// без явной точки: последние Decimals цифр дробные
		return d.Shift(spec.Decimals).StringFixed(0)
	}
	places := int32(0)
	if exp := d.Exponent(); exp < 0 {
		places = -exp
	}
	return d.StringFixed(places)
}

func padLeft(s string, spec FieldSpec) (string, error) {
	width := spec.Width()
	if len(s) > width {
		return "", coercionError(spec, s, ErrOverflow)
	}
	return strings.Repeat(" ", width-len(s)) + s, nil
}

func encodeDate(v Value, spec FieldSpec) (string, error) {
	buf := []byte(strings.Repeat(" ", spec.Width()))
	put := func(r Range, n int) error {
		s := fmt.Sprintf("%0*d", r.Width(), n)
		if r.Width() == 2 {
			s = fmt.Sprintf("%02d", n%100)
		}
		if len(s) > r.Width() || r.Start < spec.Start || r.End > spec.End {
			return coercionError(spec, v.String(), ErrOverflow)
		}
		copy(buf[r.Start-spec.Start:], s)
		return nil
	}
	t := v.t
	if err := put(spec.Day, t.Day()); err != nil {
		return "", err
	}
	if err := put(spec.Month, int(t.Month())); err != nil {
		return "", err
	}
	if err := put(spec.Year, t.Year()); err != nil {
		return "", err
	}
	return string(buf), nil
}
