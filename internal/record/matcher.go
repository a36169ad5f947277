package record

import (
	"fmt"
	"slices"
)

// Matcher selects a layout by the discriminator at the start of a line.
// Longer discriminators are tried first, so "RIVAR" wins over "RI".
// It is built once and read-only afterwards.
type Matcher struct {
	lengths []int // descending
	byLen   map[int]map[string]*Layout
}

// NewMatcher indexes layouts by discriminator. Duplicate discriminators panic:
// grammar tables are static.
func NewMatcher(layouts ...*Layout) *Matcher {
	m := &Matcher{byLen: make(map[int]map[string]*Layout)}
	for _, l := range layouts {
		n := len(l.Disc)
		if n == 0 {
			continue
		}
		bucket, ok := m.byLen[n]
		if !ok {
			bucket = make(map[string]*Layout)
			m.byLen[n] = bucket
			m.lengths = append(m.lengths, n)
		}
		if _, dup := bucket[l.Disc]; dup {
			panic(fmt.Sprintf("record: duplicate discriminator %q", l.Disc))
		}
		bucket[l.Disc] = l
	}
	slices.Sort(m.lengths)
	slices.Reverse(m.lengths)
	return m
}

// Match returns the layout whose discriminator is the longest blank-delimited
// prefix of line: "TM 001" is TM, "TMX 001" matches nothing.
func (m *Matcher) Match(line []byte) (*Layout, bool) {
	for _, n := range m.lengths {
		if len(line) < n || !delimited(line, n) {
			continue
		}
		if l, ok := m.byLen[n][string(line[:n])]; ok {
			return l, true
		}
	}
	return nil, false
}

// delimited reports whether the token ends at n.
func delimited(line []byte, n int) bool {
	if n == len(line) {
		return true
	}
	switch line[n] {
	case ' ', '\t', '\r':
		return true
	}
	return false
}
