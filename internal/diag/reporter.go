package diag

import "hydrodeck/internal/source"

// Reporter receives diagnostics from readers and the validator.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter пишет в *Bag; nil Bag глотает всё.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// ReportBuilder collects the optional parts of a diagnostic and hands it to
// a Reporter on Emit. All methods are nil-safe so callers can chain freely.
type ReportBuilder struct {
	to   Reporter
	d    Diagnostic
	done bool
}

func NewReportBuilder(r Reporter, sev Severity, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: New(sev, code, primary, msg)}
}

func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, primary, msg)
}

func ReportWarning(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, primary, msg)
}

func ReportInfo(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, primary, msg)
}

func (b *ReportBuilder) edit(fn func(*Diagnostic)) *ReportBuilder {
	if b != nil {
		fn(&b.d)
	}
	return b
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	return b.edit(func(d *Diagnostic) { d.Notes = append(d.Notes, Note{Span: sp, Msg: msg}) })
}

// WithExpected names the format the offending text should have had.
func (b *ReportBuilder) WithExpected(expected string) *ReportBuilder {
	return b.edit(func(d *Diagnostic) { d.Expected = expected })
}

// WithExcerpt keeps the raw offending text.
func (b *ReportBuilder) WithExcerpt(excerpt string) *ReportBuilder {
	return b.edit(func(d *Diagnostic) { d.Excerpt = excerpt })
}

// Emit delivers the diagnostic; repeated calls are ignored.
func (b *ReportBuilder) Emit() {
	if b == nil || b.done {
		return
	}
	b.done = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}

// Diagnostic returns what has been built so far without emitting it.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}
