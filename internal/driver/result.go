package driver

import (
	"time"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/observ"
	"hydrodeck/internal/source"
)

// FileResult is the outcome of one file. Exactly one of Collection, Err and
// Skipped describes it.
type FileResult struct {
	Path       string
	FileID     source.FileID
	Format     string // registry entry that parsed the file
	Collection *deck.Collection
	Bag        *diag.Bag
	Err        error
	Skipped    bool
	Cached     bool
	Dur        time.Duration
}

// Status summarises the file for progress output.
func (r *FileResult) Status() Status {
	switch {
	case r.Skipped:
		return StatusSkipped
	case r.Err != nil:
		return StatusFailed
	case r.Cached:
		return StatusCached
	case r.Bag != nil && r.Bag.HasWarnings():
		return StatusWarnings
	default:
		return StatusOK
	}
}

// Result is a finished run: per-file results in discovery order and the
// merged, sorted diagnostics including the cross-reference pass.
type Result struct {
	Dir     string
	FileSet *source.FileSet
	Files   []FileResult
	Bag     *diag.Bag
	Timer   *observ.Timer
}

// Collections returns the collections of the files that parsed.
func (r *Result) Collections() []*deck.Collection {
	out := make([]*deck.Collection, 0, len(r.Files))
	for i := range r.Files {
		if c := r.Files[i].Collection; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Deck assembles the deck model from the run.
func (r *Result) Deck() *deck.Deck {
	d := &deck.Deck{
		Dir:         r.Dir,
		Files:       r.FileSet,
		Collections: r.Collections(),
		Diagnostics: r.Bag,
	}
	for i := range r.Files {
		f := &r.Files[i]
		switch {
		case f.Skipped:
			d.Skipped = append(d.Skipped, f.Path)
		case f.Err != nil:
			d.Failed = append(d.Failed, deck.FailedFile{Path: f.Path, Err: f.Err})
		}
	}
	return d
}

// Failed reports whether any file failed or any error diagnostic exists.
func (r *Result) Failed() bool {
	for i := range r.Files {
		if r.Files[i].Err != nil {
			return true
		}
	}
	return r.Bag.HasErrors()
}
