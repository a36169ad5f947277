package column

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBlankRangesAreAbsentForEveryKind(t *testing.T) {
	line := []byte("UH            X")
	specs := []FieldSpec{
		Int("number", 2, 8),
		Decimal("vmin", 2, 10, 2),
		ImpliedDecimal("rate", 3, 9, 2),
		String("name", 2, 12),
		DateDMY("start", 3),
		Int("beyond", 40, 45),
	}
	for _, spec := range specs {
		v, err := Decode(line, spec)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", spec.Name, err)
		}
		if v.Present() {
			t.Errorf("%s: expected absent, got %v", spec.Name, v)
		}
		if v.Kind() != spec.Kind {
			t.Errorf("%s: absent value has kind %s", spec.Name, v.Kind())
		}
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	cases := []struct {
		spec FieldSpec
		text string
	}{
		{Int("number", 0, 5), "  123"},
		{Int("number", 0, 5), "  -42"},
		{Decimal("vmax", 0, 10, 2), "   1234.56"},
		{Decimal("load", 0, 8, 1), "    10.0"},
		{Decimal("flow", 0, 6, 1), "    15"},
		{ImpliedDecimal("rate", 0, 6, 2), "  1050"},
		{String("name", 0, 12), "FURNAS      "},
		{String("name", 0, 6), "SE    "},
		{DateDMY("start", 0), "010125"},
	}
	for _, tc := range cases {
		v, err := Decode([]byte(tc.text), tc.spec)
		if err != nil {
			t.Fatalf("Decode(%q): %v", tc.text, err)
		}
		got, err := Encode(v, tc.spec)
		if err != nil {
			t.Fatalf("Encode(%v): %v", v, err)
		}
		if strings.TrimSpace(got) != strings.TrimSpace(tc.text) {
			t.Errorf("round trip of %q gave %q", tc.text, got)
		}
		if len(got) != tc.spec.Width() {
			t.Errorf("encoded width %d, want %d", len(got), tc.spec.Width())
		}
	}
}

func TestImpliedDecimal(t *testing.T) {
	spec := ImpliedDecimal("rate", 0, 6, 2)
	v, err := Decode([]byte("  1050"), spec)
	if err != nil {
		t.Fatal(err)
	}
	if d := v.Decimal().Or(decimal.Zero); !d.Equal(decimal.RequireFromString("10.50")) {
		t.Errorf("implied value = %s, want 10.50", d)
	}
	v, err = Decode([]byte(" 10.5 "), spec)
	if err != nil {
		t.Fatal(err)
	}
	if d := v.Decimal().Or(decimal.Zero); !d.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("literal point value = %s, want 10.5", d)
	}
}

func TestDecodeCoercionErrors(t *testing.T) {
	cases := []struct {
		spec FieldSpec
		text string
		want error
	}{
		{Int("number", 0, 4), " 1O ", ErrSyntax},
		{Int("number", 0, 25), "99999999999999999999999", ErrOverflow},
		{Decimal("vmin", 0, 8, 2), " 1.2.3 ", ErrSyntax},
		{Decimal("vmin", 0, 8, 2), "  1e5  ", ErrSyntax},
		{DateDMY("start", 0), "310225", ErrInvalidDate},
		{DateDMY("start", 0), "0a0125", ErrSyntax},
	}
	for _, tc := range cases {
		v, err := Decode([]byte(tc.text), tc.spec)
		if err == nil {
			t.Fatalf("Decode(%q) as %s: expected error", tc.text, tc.spec.Kind)
		}
		if v.Present() {
			t.Errorf("Decode(%q): failed value must be absent", tc.text)
		}
		var ce *CoercionError
		if !errors.As(err, &ce) {
			t.Fatalf("error %T is not a CoercionError", err)
		}
		if ce.Field != tc.spec.Name || ce.Expected == "" {
			t.Errorf("incomplete coercion error %+v", ce)
		}
		if !errors.Is(err, tc.want) {
			t.Errorf("Decode(%q): error %v, want %v", tc.text, err, tc.want)
		}
	}
}

func TestDatePartiallyBlankIsAbsent(t *testing.T) {
	v, err := Decode([]byte("01  25"), DateDMY("start", 0))
	if err != nil || v.Present() {
		t.Fatalf("partially blank date: present=%v err=%v", v.Present(), err)
	}
	v, err = Decode([]byte("TM 001 010125"), DateDMY("start", 7))
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if got := v.Date().Or(time.Time{}); !got.Equal(want) {
		t.Errorf("date = %v, want %v", got, want)
	}
}

func TestLatin1Transcoding(t *testing.T) {
	line := []byte{'S', 0xC3, 'O', ' ', 'S', 'I', 'M', 0xC3, 'O'} // "SÃO SIMÃO" in ISO 8859-1
	v, err := Decode(line, String("name", 0, 12))
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Str().Or(""); got != "SÃO SIMÃO" {
		t.Errorf("name = %q", got)
	}
	enc, err := Encode(v, String("name", 0, 12))
	if err != nil {
		t.Fatal(err)
	}
	if enc != "SÃO SIMÃO   " {
		t.Errorf("encoded = %q", enc)
	}
}

func TestEncodeOverflow(t *testing.T) {
	cases := []struct {
		v    Value
		spec FieldSpec
	}{
		{IntValue(12345), Int("number", 0, 3)},
		{DecimalValue(decimal.RequireFromString("12345.67")), Decimal("vmax", 0, 6, 2)},
		{StringValue("ITAIPU BINACIONAL"), String("name", 0, 12)},
	}
	for _, tc := range cases {
		_, err := Encode(tc.v, tc.spec)
		if !errors.Is(err, ErrOverflow) {
			t.Errorf("Encode(%v) into %d: error %v, want ErrOverflow", tc.v, tc.spec.Width(), err)
		}
	}
}

func TestEncodeAbsentIsBlank(t *testing.T) {
	got, err := Encode(Absent(KindInt), Int("n", 3, 7))
	if err != nil || got != "    " {
		t.Fatalf("Encode(absent) = %q, %v", got, err)
	}
}

func TestOpt(t *testing.T) {
	if v, ok := None[int]().Get(); ok || v != 0 {
		t.Errorf("None.Get = %v,%v", v, ok)
	}
	if Some(3).Or(7) != 3 || None[int]().Or(7) != 7 {
		t.Errorf("Or misbehaves")
	}
	if IntValue(1<<40).Int32().Valid {
		t.Errorf("Int32 must reject values beyond int32")
	}
}
