package diagfmt

import (
	"encoding/json"
	"io"
	"slices"

	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// Location points into a deck file. Line and column are 1-based and only
// filled when positions are requested.
type Location struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type Note struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

// Diagnostic is the JSON form of one diag.Diagnostic.
type Diagnostic struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Expected string   `json:"expected,omitempty"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Location Location `json:"location"`
	Notes    []Note   `json:"notes,omitempty"`
}

// Summary counts the whole bag, not only the emitted part.
type Summary struct {
	Errors   int      `json:"errors"`
	Warnings int      `json:"warnings"`
	Infos    int      `json:"infos"`
	Files    []string `json:"files,omitempty"` // files with at least one diagnostic
}

// DiagnosticsOutput is the document written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
	Count       int          `json:"count"` // emitted, after Max
	Total       int          `json:"total"`
	Summary     Summary      `json:"summary"`
}

type jsonWriter struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (jw jsonWriter) location(span source.Span) Location {
	loc := Location{StartByte: span.Start, EndByte: span.End}
	fs := jw.fs
	if fs == nil || int(span.File) >= fs.Len() {
		return loc
	}
	loc.File = formatPath(fs.Get(span.File), jw.opts.PathMode, fs.BaseDir())
	if jw.opts.IncludePositions {
		start, end := fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (jw jsonWriter) diagnostic(d *diag.Diagnostic) Diagnostic {
	out := Diagnostic{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Title:    d.Code.Title(),
		Message:  d.Message,
		Expected: d.Expected,
		Excerpt:  d.Excerpt,
		Location: jw.location(d.Primary),
	}
	// заметки таймингов выводятся всегда: в них сами данные
	if jw.opts.IncludeNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, Note{Message: n.Msg, Location: jw.location(n.Span)})
		}
	}
	return out
}

// BuildDiagnosticsOutput converts the bag without serialising it, so callers
// can embed it into a larger document.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	jw := jsonWriter{fs: fs, opts: opts}
	items := bag.Items()
	emit := items
	if opts.Max > 0 && len(emit) > opts.Max {
		emit = emit[:opts.Max]
	}

	out := DiagnosticsOutput{
		Diagnostics: make([]Diagnostic, 0, len(emit)),
		Count:       len(emit),
		Total:       len(items),
	}
	for i := range emit {
		out.Diagnostics = append(out.Diagnostics, jw.diagnostic(&emit[i]))
	}
	for i := range items {
		switch items[i].Severity {
		case diag.SevError:
			out.Summary.Errors++
		case diag.SevWarning:
			out.Summary.Warnings++
		default:
			out.Summary.Infos++
		}
		if f := jw.location(items[i].Primary).File; f != "" && !slices.Contains(out.Summary.Files, f) {
			out.Summary.Files = append(out.Summary.Files, f)
		}
	}
	slices.Sort(out.Summary.Files)
	return out
}

// JSON writes the diagnostics as one indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
