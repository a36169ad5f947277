package record

import (
	"bytes"
	"fmt"

	"hydrodeck/internal/column"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// Grammar describes a multi-record line file.
type Grammar struct {
	Name    string
	Layouts []*Layout
	// Default, when set, decodes every non-comment line (single-kind files).
	Default *Layout
	// EndMarker stops reading; everything after it is ignored. Optional.
	EndMarker string
	// CommentPrefix marks lines to skip.
	CommentPrefix string
}

// IsComment reports whether the line is a comment of this grammar.
func (g *Grammar) IsComment(text []byte) bool {
	return g.CommentPrefix != "" && bytes.HasPrefix(text, []byte(g.CommentPrefix))
}

// IsEnd reports whether the line is the end marker.
func (g *Grammar) IsEnd(text []byte) bool {
	return g.EndMarker != "" && string(bytes.TrimRight(text, " \t")) == g.EndMarker
}

// Result holds the records of one file.
type Result struct {
	ByKind   map[Kind][]Record
	Order    []Record
	Unparsed []RawLine
}

// Of returns the records of one kind in file order.
func (r *Result) Of(kind Kind) []Record { return r.ByKind[kind] }

// Reader reads files of one Grammar. It holds no per-file state and may be
// shared between goroutines.
type Reader struct {
	grammar *Grammar
	matcher *Matcher
}

func NewReader(g *Grammar) *Reader {
	return &Reader{grammar: g, matcher: NewMatcher(g.Layouts...)}
}

func (r *Reader) Grammar() *Grammar { return r.grammar }

// Read decodes every line of file. It never fails: unknown lines and bad
// fields are reported to rep and reading continues.
func (r *Reader) Read(file *source.File, rep diag.Reporter) *Result {
	res := &Result{ByKind: make(map[Kind][]Record, len(r.grammar.Layouts))}
	lines := file.Lines()
	for i, ln := range lines {
		if isBlank(ln.Text) || r.grammar.IsComment(ln.Text) {
			continue
		}
		if r.grammar.IsEnd(ln.Text) {
			r.reportTrailing(file, lines[i+1:], rep)
			break
		}
		layout := r.grammar.Default
		if layout == nil {
			var ok bool
			if layout, ok = r.matcher.Match(ln.Text); !ok {
				diag.ReportWarning(rep, diag.RecUnknownRecordType, ln.Span(file.ID),
					fmt.Sprintf("unknown %s record type %q", r.grammar.Name, FirstWord(ln.Text))).
					WithExcerpt(excerpt(ln.Text)).
					Emit()
				res.Unparsed = append(res.Unparsed, RawLine{Line: ln.Num, Span: ln.Span(file.ID), Text: column.Latin1(ln.Text)})
				continue
			}
		}
		rec := DecodeLine(layout, file.ID, ln, rep)
		res.ByKind[rec.Kind] = append(res.ByKind[rec.Kind], rec)
		res.Order = append(res.Order, rec)
	}
	if len(res.Order) == 0 && len(res.Unparsed) == 0 {
		diag.ReportInfo(rep, diag.RecEmptyFile, source.Span{File: file.ID},
			fmt.Sprintf("%s file %s has no records", r.grammar.Name, file.Name())).Emit()
	}
	return res
}

func (r *Reader) reportTrailing(file *source.File, rest []source.Line, rep diag.Reporter) {
	for _, ln := range rest {
		if isBlank(ln.Text) || r.grammar.IsComment(ln.Text) {
			continue
		}
		diag.ReportInfo(rep, diag.RecTrailingContent, ln.Span(file.ID),
			fmt.Sprintf("content after %s ignored", r.grammar.EndMarker)).Emit()
		return
	}
}

func isBlank(b []byte) bool {
	return len(bytes.TrimSpace(b)) == 0
}

// FirstWord returns the leading whitespace-delimited token of a line.
func FirstWord(b []byte) string {
	fields := bytes.Fields(b)
	if len(fields) == 0 {
		return ""
	}
	return string(fields[0])
}

func excerpt(b []byte) string {
	const maxExcerpt = 40
	if len(b) > maxExcerpt {
		b = b[:maxExcerpt]
	}
	return column.Latin1(bytes.TrimRight(b, " "))
}
