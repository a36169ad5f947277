package column

import (
	"bytes"
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// Slice returns the bytes of r within line; the part beyond the line end is
// treated as missing.
func Slice(line []byte, start, end int) []byte {
	if start >= len(line) || start >= end {
		return nil
	}
	return line[max(start, 0):min(end, len(line))]
}

// Decode reads the field described by spec from line.
// Blank ranges are absent; malformed text returns an absent value and a *CoercionError.
func Decode(line []byte, spec FieldSpec) (Value, error) {
	if spec.Kind == KindDate {
		return decodeDate(line, spec)
	}
	text := bytes.TrimSpace(Slice(line, spec.Start, spec.End))
	if len(text) == 0 {
		return Absent(spec.Kind), nil
	}
	switch spec.Kind {
	case KindInt:
		n, err := strconv.ParseInt(string(text), 10, 64)
		if err != nil {
			return Absent(KindInt), coercionError(spec, Latin1(text), numError(err))
		}
		return IntValue(n), nil
	case KindDecimal:
		d, err := parseDecimal(text, spec)
		if err != nil {
			return Absent(KindDecimal), coercionError(spec, Latin1(text), err)
		}
		return DecimalValue(d), nil
	default:
		return StringValue(Latin1(text)), nil
	}
}

// Latin1 converts b to a Go string, transcoding from ISO 8859-1 when b is
// not valid UTF-8.
func Latin1(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func numError(err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return ErrOverflow
	}
	return ErrSyntax
}

// parseDecimal accepts [+-]digits[.digits]; exponents and separators are rejected.
func parseDecimal(text []byte, spec FieldSpec) (decimal.Decimal, error) {
	body := text
	if body[0] == '+' || body[0] == '-' {
		body = body[1:]
	}
	digits, point := 0, false
	for _, c := range body {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !point:
			point = true
		default:
			return decimal.Decimal{}, ErrSyntax
		}
	}
	if digits == 0 {
		return decimal.Decimal{}, ErrSyntax
	}
	d, err := decimal.NewFromString(string(text))
	if err != nil {
		return decimal.Decimal{}, ErrSyntax
	}
	if spec.Implied && !point && spec.Decimals > 0 {
		d = d.Shift(-spec.Decimals)
	}
	return d, nil
}

func decodeDate(line []byte, spec FieldSpec) (Value, error) {
	raw := bytes.TrimSpace(Slice(line, spec.Start, spec.End))
	parts := [3][]byte{
		bytes.TrimSpace(Slice(line, spec.Day.Start, spec.Day.End)),
		bytes.TrimSpace(Slice(line, spec.Month.Start, spec.Month.End)),
		bytes.TrimSpace(Slice(line, spec.Year.Start, spec.Year.End)),
	}
	var nums [3]int
	for i, p := range parts {
		if len(p) == 0 {
			// частично пустая дата считается отсутствующей целиком
			return Absent(KindDate), nil
		}
		n, err := strconv.Atoi(string(p))
		if err != nil || n < 0 {
			return Absent(KindDate), coercionError(spec, Latin1(raw), ErrSyntax)
		}
		nums[i] = n
	}
	day, month, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return Absent(KindDate), coercionError(spec, Latin1(raw), ErrInvalidDate)
	}
	return DateValue(t), nil
}
