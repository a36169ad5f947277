package block

import (
	"fmt"

	"hydrodeck/internal/column"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/record"
	"hydrodeck/internal/source"
)

// Composite is a leading sub-record with the dependent sub-records attached
// to it, in file order.
type Composite struct {
	Block string
	Key   column.Opt[int32]
	Lead  record.Record
	Subs  []record.Record
	Span  source.Span
}

// Of returns the attached sub-records of one kind.
func (c *Composite) Of(kind record.Kind) []record.Record {
	var out []record.Record
	for _, s := range c.Subs {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Result holds the composites of one file in the order their blocks closed.
type Result struct {
	Composites []Composite
	Orphans    []record.Record
	Unparsed   []record.RawLine
}

// Reader reads block files of one Grammar; it is safe for concurrent use.
type Reader struct {
	grammar *Grammar
	machine *Machine
}

func NewReader(g *Grammar) *Reader {
	return &Reader{grammar: g, machine: NewMachine(g)}
}

func (r *Reader) Grammar() *Grammar { return r.grammar }

// Read groups the sub-records of file into composites. An unterminated block
// fails the whole file with *UnterminatedBlockError and no result.
func (r *Reader) Read(file *source.File, rep diag.Reporter) (*Result, error) {
	res := &Result{}
	var (
		state   State
		open    []Composite // composites of the open block
		opened  source.Line
		pending []strayed // dependents read after a terminator
	)
	for _, ln := range file.Lines() {
		next, act := r.machine.Step(state, ln.Text)
		switch act.Kind {
		case ActSkip:
		case ActOpen:
			opened = ln
			open = append(open[:0], r.newComposite(act.Layout, file.ID, ln, rep))
			pending = r.adopt(&open[0], next.Block, pending)
		case ActLead:
			open = append(open, r.newComposite(act.Layout, file.ID, ln, rep))
			pending = r.adopt(&open[len(open)-1], state.Block, pending)
		case ActPending:
			pending = append(pending, strayed{
				sub:   record.DecodeLine(act.Layout, file.ID, ln, rep),
				block: act.Block,
				line:  ln,
			})
		case ActAttach:
			sub := record.DecodeLine(act.Layout, file.ID, ln, rep)
			if c := r.findOwner(open, sub); c != nil {
				c.Subs = append(c.Subs, sub)
				c.Span = c.Span.Cover(sub.Span)
				break
			}
			diag.ReportWarning(rep, diag.BlkOrphanSubRecord, sub.Span,
				fmt.Sprintf("%s %s has no preceding %s with the same %s", act.Layout.Name, sub.Get(r.grammar.KeyField), state.Block.Keyword(), r.grammar.KeyField)).
				Emit()
			res.Orphans = append(res.Orphans, sub)
		case ActClose:
			res.Composites = append(res.Composites, open...)
			open = open[:0]
		case ActUnknownSub:
			diag.ReportWarning(rep, diag.BlkUnknownSubRecord, ln.Span(file.ID),
				fmt.Sprintf("unknown sub-record %q inside %s block", record.FirstWord(ln.Text), state.Block.Keyword())).
				Emit()
			res.Unparsed = append(res.Unparsed, rawLine(file.ID, ln))
		case ActOutside:
			diag.ReportWarning(rep, diag.RecUnknownRecordType, ln.Span(file.ID),
				fmt.Sprintf("unknown %s record type %q outside any block", r.grammar.Name, record.FirstWord(ln.Text))).
				Emit()
			res.Unparsed = append(res.Unparsed, rawLine(file.ID, ln))
		case ActUnterminated:
			return nil, r.unterminated(file.ID, state, opened, ln.Span(file.ID), false)
		}
		state = next
	}
	if !state.Idle() {
		end := uint32(len(file.Content))
		return nil, r.unterminated(file.ID, state, opened, source.Span{File: file.ID, Start: end, End: end}, true)
	}
	if len(pending) > 0 {
		p := pending[0]
		end := uint32(len(file.Content))
		err := r.unterminated(file.ID, State{Block: p.block}, p.line, source.Span{File: file.ID, Start: end, End: end}, true)
		err.Sub = p.sub.Layout.Disc
		return nil, err
	}
	return res, nil
}

// strayed is a dependent sub-record that arrived while no block was open.
type strayed struct {
	sub   record.Record
	block *Spec
	line  source.Line
}

// adopt attaches to c every pending dependent of spec carrying c's key and
// returns the rest.
func (r *Reader) adopt(c *Composite, spec *Spec, pending []strayed) []strayed {
	key, ok := c.Key.Get()
	if !ok || len(pending) == 0 {
		return pending
	}
	rest := pending[:0]
	for _, p := range pending {
		if k, has := p.sub.Get(r.grammar.KeyField).Int32().Get(); has && k == key && p.block == spec {
			c.Subs = append(c.Subs, p.sub)
			c.Span = c.Span.Cover(p.sub.Span)
			continue
		}
		rest = append(rest, p)
	}
	return rest
}

func (r *Reader) newComposite(layout *record.Layout, file source.FileID, ln source.Line, rep diag.Reporter) Composite {
	lead := record.DecodeLine(layout, file, ln, rep)
	return Composite{
		Block: layout.Name,
		Key:   lead.Get(r.grammar.KeyField).Int32(),
		Lead:  lead,
		Span:  lead.Span,
	}
}

// findOwner returns the most recently opened composite with the key of sub.
func (r *Reader) findOwner(open []Composite, sub record.Record) *Composite {
	key, ok := sub.Get(r.grammar.KeyField).Int32().Get()
	if !ok {
		return nil
	}
	for i := len(open) - 1; i >= 0; i-- {
		if k, ok := open[i].Key.Get(); ok && k == key {
			return &open[i]
		}
	}
	return nil
}

func (r *Reader) unterminated(file source.FileID, state State, opened source.Line, at source.Span, eof bool) *UnterminatedBlockError {
	return &UnterminatedBlockError{
		Keyword:    state.Block.Keyword(),
		Terminator: r.grammar.Terminator,
		Opened:     opened.Span(file),
		At:         at,
		Line:       opened.Num,
		EOF:        eof,
	}
}

func rawLine(file source.FileID, ln source.Line) record.RawLine {
	return record.RawLine{Line: ln.Num, Span: ln.Span(file), Text: column.Latin1(ln.Text)}
}
