// Package column decodes fixed-width byte ranges into typed optional values.
//
// A FieldSpec names a 0-based half-open byte range of a line and its kind.
// Decode never fails on blank input: a range made only of whitespace is
// absent whatever the kind. Text that is present but malformed yields a
// *CoercionError; readers report it as a warning and keep the field absent.
//
// Encode is the inverse used for round trips and exports: it renders a value
// into exactly the field width (numbers right-aligned, text left-aligned).
package column
