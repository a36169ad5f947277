package registry

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// Format is the grammar strategy of an entry.
type Format uint8

const (
	FormatText Format = iota
	FormatBlock
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBlock:
		return "block"
	case FormatBinary:
		return "binary"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFunc turns one loaded file into a frozen collection. Recoverable
// problems go to the reporter; the returned error is fatal for the file.
type ParseFunc func(file *source.File, rep diag.Reporter) (*deck.Collection, error)

// DetectFunc inspects raw content and reports whether the entry accepts it.
type DetectFunc func(content []byte) bool

// Entry binds a file name pattern to a parser.
type Entry struct {
	Name    string
	Pattern string // case-insensitive glob over the base file name
	Format  Format
	Parse   ParseFunc
	Detect  DetectFunc // optional
}

var (
	ErrNoParser = errors.New("no parser registered")
	ErrFrozen   = errors.New("registry is frozen")
)

type alias struct {
	pattern string
	name    string
}

// Registry maps file names to parsers. It is filled during start-up and
// frozen before any parse task runs; lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	aliases []alias
	frozen  bool
}

func New() *Registry { return &Registry{} }

// Register appends an entry. Registration order decides ties.
func (r *Registry) Register(e Entry) error {
	if e.Name == "" {
		return errors.New("registry: entry without name")
	}
	if e.Parse == nil {
		return fmt.Errorf("registry: entry %q has no parse function", e.Name)
	}
	e.Pattern = strings.ToLower(e.Pattern)
	if _, err := path.Match(e.Pattern, ""); err != nil {
		return fmt.Errorf("registry: entry %q: %w", e.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	if r.indexLocked(e.Name) >= 0 {
		return fmt.Errorf("registry: entry %q registered twice", e.Name)
	}
	r.entries = append(r.entries, e)
	return nil
}

// Alias maps an extra file name pattern to the registered entry name.
func (r *Registry) Alias(pattern, name string) error {
	pattern = strings.ToLower(pattern)
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("registry: alias %q: %w", pattern, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	if r.indexLocked(name) < 0 {
		return fmt.Errorf("registry: alias %q names unknown format %q", pattern, name)
	}
	r.aliases = append(r.aliases, alias{pattern: pattern, name: name})
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Entries returns the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries)
}

// Lookup finds an entry by its name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(name); i >= 0 {
		return r.entries[i], true
	}
	return Entry{}, false
}

func (r *Registry) indexLocked(name string) int {
	for i := range r.entries {
		if r.entries[i].Name == name {
			return i
		}
	}
	return -1
}

// Candidates returns every entry whose pattern (or alias) matches the base
// name of filename: direct patterns first, in registration order.
func (r *Registry) Candidates(filename string) []Entry {
	base := strings.ToLower(source.BaseName(filename))
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	seen := make(map[string]struct{})
	for _, e := range r.entries {
		if ok, _ := path.Match(e.Pattern, base); ok {
			out = append(out, e)
			seen[e.Name] = struct{}{}
		}
	}
	for _, a := range r.aliases {
		if _, dup := seen[a.name]; dup {
			continue
		}
		if ok, _ := path.Match(a.pattern, base); ok {
			out = append(out, r.entries[r.indexLocked(a.name)])
			seen[a.name] = struct{}{}
		}
	}
	return out
}

// Resolve is a pure name lookup: the parser of the first matching entry.
func (r *Registry) Resolve(filename string) (ParseFunc, bool) {
	c := r.Candidates(filename)
	if len(c) == 0 {
		return nil, false
	}
	return c[0].Parse, true
}

// Select picks the entry that parses file. An entry whose Detect accepts
// the content wins; otherwise the first entry without Detect; otherwise
// the first candidate, whose reader then reports why the content is wrong.
func (r *Registry) Select(file *source.File) (Entry, error) {
	cands := r.Candidates(file.Path)
	if len(cands) == 0 {
		return Entry{}, fmt.Errorf("%s: %w", file.Path, ErrNoParser)
	}
	for _, e := range cands {
		if e.Detect != nil && e.Detect(file.Content) {
			return e, nil
		}
	}
	for _, e := range cands {
		if e.Detect == nil {
			return e, nil
		}
	}
	return cands[0], nil
}

// Dispatch selects an entry for file and runs its parser. Fatal reader
// errors are also reported as error diagnostics before being returned.
func (r *Registry) Dispatch(file *source.File, rep diag.Reporter) (*deck.Collection, error) {
	e, err := r.Select(file)
	if err != nil {
		return nil, err
	}
	return Run(e, file, rep)
}

// Run parses file with an already selected entry.
func Run(e Entry, file *source.File, rep diag.Reporter) (*deck.Collection, error) {
	if e.Format == FormatBinary {
		file.Flags |= source.FileBinary
	}
	col, err := e.Parse(file, rep)
	if err != nil {
		ReportFatal(rep, file, err)
		return nil, fmt.Errorf("%s (%s): %w", file.Path, e.Name, err)
	}
	return col, nil
}
