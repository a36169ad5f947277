package stride

import (
	"fmt"

	"hydrodeck/internal/source"
)

// MismatchError is fatal for the file: its length is not a whole number of records.
type MismatchError struct {
	Layout string
	Length int
	Stride int
	Span   source.Span
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: length %d is not a multiple of the %d-byte record stride (%d trailing bytes)", e.Layout, e.Length, e.Stride, e.Length%e.Stride)
}
