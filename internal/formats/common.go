package formats

import (
	"fmt"
	"strings"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/record"
)

// Record kinds. Values are unique across formats.
const (
	recTM record.Kind = iota + 1
	recSIST
	recUH
	recUT
	recDP
	recTX
	recTVIAG
	recRI
	recRIVAR
	recVE
	recVERTJU
	recREST
	recELEM
	recLIM
	recVAR
	recInflow
	recHidr
)

func meta(rec record.Record) deck.Meta {
	return deck.Meta{Span: rec.Span, Line: rec.Line}
}

// keys returns the named key fields of rec; when one is absent the record
// cannot become an entity and a warning is reported.
func keys(rec record.Record, rep diag.Reporter, names ...string) ([]int32, bool) {
	out := make([]int32, len(names))
	var missing []string
	for i, n := range names {
		v, ok := rec.Int(n).Get()
		if !ok {
			missing = append(missing, n)
			continue
		}
		out[i] = v
	}
	if len(missing) > 0 {
		diag.ReportWarning(rep, diag.RecMissingKey, rec.Span,
			fmt.Sprintf("%s at line %d has no %s; record skipped", rec.Layout.Name, rec.Line, strings.Join(missing, ", "))).
			Emit()
		return nil, false
	}
	return out, true
}

// ref reads a plant reference where 0 means "none".
func ref(rec record.Record, name string) deck.Int {
	v := rec.Int(name)
	if v.Valid && v.Val == 0 {
		return deck.Int{}
	}
	return v
}

// keepUnparsed retains the lines the reader could not decode.
func keepUnparsed(b *deck.Builder, lines []record.RawLine) {
	for _, ln := range lines {
		b.Keep(deck.RawLine{Line: ln.Line, Span: ln.Span, Text: ln.Text})
	}
}

// keepRecord retains a decoded line that did not become an entity.
func keepRecord(b *deck.Builder, rec record.Record) {
	b.Keep(deck.RawLine{Line: rec.Line, Span: rec.Span, Text: rec.Raw})
}
