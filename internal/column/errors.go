package column

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow reports a value that does not fit the declared width or type range.
	ErrOverflow = errors.New("value does not fit the field")
	// ErrSyntax reports text that is not a literal of the declared kind.
	ErrSyntax = errors.New("malformed literal")
	// ErrInvalidDate reports day/month/year parts that name no calendar day.
	ErrInvalidDate = errors.New("invalid calendar date")
)

// CoercionError describes a present field that could not be converted.
type CoercionError struct {
	Field    string
	Kind     Kind
	Start    int
	End      int
	Text     string
	Expected string
	Err      error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("field %s (columns %d-%d): cannot read %q as %s: %v", e.Field, e.Start+1, e.End, e.Text, e.Kind, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

func coercionError(spec FieldSpec, text string, err error) *CoercionError {
	return &CoercionError{
		Field:    spec.Name,
		Kind:     spec.Kind,
		Start:    spec.Start,
		End:      spec.End,
		Text:     text,
		Expected: spec.Expected(),
		Err:      err,
	}
}
