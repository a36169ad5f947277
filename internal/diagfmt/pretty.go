package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

type palette struct {
	err, warn, info, loc, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		loc:    color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgMagenta),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.loc, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждой диагностики печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строку записи с подчёркиванием ^~~~ по Span, ожидаемый формат и Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	items := bag.Items()
	limit := len(items)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}
	p := newPalette(opts.Color)
	for i := range limit {
		writeOne(w, &items[i], fs, opts, p)
	}
	if limit < len(items) {
		fmt.Fprintf(w, "... %d more diagnostic(s) not shown\n", len(items)-limit)
	}
}

func writeOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	loc := location(fs, d.Primary, opts.PathMode)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.loc.Sprint(loc),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		d.Code.ID(),
		d.Message,
	)
	writeContext(w, fs, d.Primary, opts.Width, p)
	if d.Excerpt != "" && d.Expected != "" {
		fmt.Fprintf(w, "  %s %q, expected %s\n", p.gutter.Sprint("="), d.Excerpt, d.Expected)
	} else if d.Expected != "" {
		fmt.Fprintf(w, "  %s expected %s\n", p.gutter.Sprint("="), d.Expected)
	}
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), location(fs, n.Span, opts.PathMode), n.Msg)
	}
}

func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	if fs == nil || int(span.File) >= fs.Len() {
		return "<unknown>"
	}
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, mode, fs.BaseDir()), start.Line, start.Col)
}

func writeContext(w io.Writer, fs *source.FileSet, span source.Span, width int, p palette) {
	if fs == nil || int(span.File) >= fs.Len() {
		return
	}
	f := fs.Get(span.File)
	if f.Flags&source.FileBinary != 0 {
		return
	}
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	if width > 0 && runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "…")
	}
	gutter := fmt.Sprintf("%5d | ", start.Line)
	fmt.Fprintf(w, "%s%s\n", p.gutter.Sprint(gutter), line)

	col := int(start.Col) - 1
	n := 1
	if end.Line == start.Line && end.Col > start.Col {
		n = int(end.Col - start.Col)
	}
	if width > 0 {
		if col >= width {
			return
		}
		n = min(n, width-col)
	}
	marker := "^" + strings.Repeat("~", n-1)
	fmt.Fprintf(w, "%s%s%s\n", p.gutter.Sprint("      | "), strings.Repeat(" ", col), p.caret.Sprint(marker))
}
