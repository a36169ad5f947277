package block

import (
	"bytes"

	"hydrodeck/internal/record"
)

// State of the reader: Idle when Block is nil, InBlock(Block) otherwise.
type State struct {
	Block *Spec
}

// Idle reports whether no block is open.
func (s State) Idle() bool { return s.Block == nil }

type ActionKind uint8

const (
	// ActSkip: blank or comment line.
	ActSkip ActionKind = iota
	// ActOpen: block keyword while Idle; the line leads a new composite.
	ActOpen
	// ActLead: leading line inside its own block; starts another composite.
	ActLead
	// ActAttach: dependent line inside a block.
	ActAttach
	// ActClose: terminator inside a block.
	ActClose
	// ActUnknownSub: unrecognised marker inside a block.
	ActUnknownSub
	// ActOutside: line outside any block that does not open one.
	ActOutside
	// ActUnterminated: keyword of another block while a block is open.
	ActUnterminated
	// ActPending: dependent line while Idle; waits for a later block.
	ActPending
)

func (k ActionKind) String() string {
	return [...]string{"skip", "open", "lead", "attach", "close", "unknown-sub", "outside", "unterminated", "pending"}[k]
}

// Action is what the reader must do with one line.
type Action struct {
	Kind   ActionKind
	Layout *record.Layout // for open, lead, attach and pending
	Block  *Spec          // pending: the block the line depends on
}

// Machine holds the transition table of a Grammar. Step depends only on its
// arguments, so transitions can be tested line by line.
type Machine struct {
	grammar  *Grammar
	matcher  *record.Matcher
	keywords map[*record.Layout]*Spec
}

func NewMachine(g *Grammar) *Machine {
	g.validate()
	m := &Machine{
		grammar:  g,
		matcher:  record.NewMatcher(g.layouts()...),
		keywords: make(map[*record.Layout]*Spec, len(g.Blocks)),
	}
	for _, b := range g.Blocks {
		m.keywords[b.Leading] = b
	}
	return m
}

// Step returns the next state and the action for line.
func (m *Machine) Step(s State, line []byte) (State, Action) {
	if len(bytes.TrimSpace(line)) == 0 || m.grammar.isComment(line) {
		return s, Action{Kind: ActSkip}
	}
	if s.Idle() {
		if layout, ok := m.matcher.Match(line); ok {
			if spec, isKeyword := m.keywords[layout]; isKeyword {
				return State{Block: spec}, Action{Kind: ActOpen, Layout: layout}
			}
			if spec := m.owner(layout); spec != nil {
				return s, Action{Kind: ActPending, Layout: layout, Block: spec}
			}
		}
		return s, Action{Kind: ActOutside}
	}
	if m.grammar.isTerminator(line) {
		return State{}, Action{Kind: ActClose}
	}
	layout, ok := m.matcher.Match(line)
	if !ok {
		return s, Action{Kind: ActUnknownSub}
	}
	if spec, isKeyword := m.keywords[layout]; isKeyword {
		if spec == s.Block {
			return s, Action{Kind: ActLead, Layout: layout}
		}
		return s, Action{Kind: ActUnterminated, Layout: layout}
	}
	if s.Block.dependent(layout) {
		return s, Action{Kind: ActAttach, Layout: layout}
	}
	return s, Action{Kind: ActUnknownSub}
}

// owner returns the first block that lists l as a dependent.
func (m *Machine) owner(l *record.Layout) *Spec {
	for _, b := range m.grammar.Blocks {
		if b.dependent(l) {
			return b
		}
	}
	return nil
}
