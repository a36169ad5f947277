package registry

import (
	"errors"

	"hydrodeck/internal/block"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
	"hydrodeck/internal/stride"
)

// ReportFatal turns a fatal reader error into an error diagnostic.
func ReportFatal(rep diag.Reporter, file *source.File, err error) {
	var (
		unterminated *block.UnterminatedBlockError
		mismatch     *stride.MismatchError
	)
	switch {
	case errors.As(err, &unterminated):
		note := "block opened here"
		if unterminated.Sub != "" {
			note = unterminated.Sub + " read here"
		}
		diag.ReportError(rep, diag.BlkUnterminatedBlock, unterminated.At, unterminated.Error()).
			WithNote(unterminated.Opened, note).
			WithExpected(unterminated.Terminator).
			Emit()
	case errors.As(err, &mismatch):
		diag.ReportError(rep, diag.BinStrideMismatch, mismatch.Span, mismatch.Error()).Emit()
	default:
		diag.ReportError(rep, diag.UnknownCode, source.Span{File: file.ID}, err.Error()).Emit()
	}
}
