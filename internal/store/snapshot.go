package store

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

type snapshotFile struct {
	Path    string           `msgpack:"path"`
	Content []byte           `msgpack:"content,omitempty"`
	Flags   source.FileFlags `msgpack:"flags"`
}

type snapshotCollection struct {
	File     source.FileID  `msgpack:"file"`
	Format   string         `msgpack:"format"`
	Entities []record       `msgpack:"entities"`
	Raw      []deck.RawLine `msgpack:"raw,omitempty"`
}

type snapshotFailure struct {
	Path  string `msgpack:"path"`
	Error string `msgpack:"error"`
}

type snapshot struct {
	Schema      uint16               `msgpack:"schema"`
	Dir         string               `msgpack:"dir"`
	Files       []snapshotFile       `msgpack:"files"`
	Collections []snapshotCollection `msgpack:"collections"`
	Failed      []snapshotFailure    `msgpack:"failed,omitempty"`
	Skipped     []string             `msgpack:"skipped,omitempty"`
	Diagnostics []diag.Diagnostic    `msgpack:"diagnostics"`
}

// SnapshotOptions control what WriteSnapshot keeps.
type SnapshotOptions struct {
	// WithContent embeds the raw file bytes so diagnostics can be rendered
	// with source context after ReadSnapshot.
	WithContent bool
}

// WriteSnapshot stores the whole deck: files, collections, failures and
// diagnostics. File IDs are kept, so spans stay valid after ReadSnapshot.
func WriteSnapshot(w io.Writer, d *deck.Deck, opts SnapshotOptions) error {
	s := snapshot{Schema: SchemaVersion, Dir: d.Dir, Skipped: d.Skipped}
	if d.Files != nil {
		for _, f := range d.Files.Files() {
			sf := snapshotFile{Path: f.Path, Flags: f.Flags}
			if opts.WithContent {
				sf.Content = f.Content
			}
			s.Files = append(s.Files, sf)
		}
	}
	for _, c := range d.Collections {
		rs, err := encodeEntities(c.Entities())
		if err != nil {
			return fmt.Errorf("%s: %w", c.Path, err)
		}
		s.Collections = append(s.Collections, snapshotCollection{File: c.File, Format: c.Format, Entities: rs, Raw: c.Raw()})
	}
	for _, f := range d.Failed {
		s.Failed = append(s.Failed, snapshotFailure{Path: f.Path, Error: f.Err.Error()})
	}
	if d.Diagnostics != nil {
		s.Diagnostics = d.Diagnostics.Items()
	}
	return msgpack.NewEncoder(w).Encode(&s)
}

// ReadSnapshot rebuilds a deck written by WriteSnapshot. Failed files carry
// their message only; errors.Is against reader errors does not survive.
func ReadSnapshot(r io.Reader) (*deck.Deck, error) {
	var s snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if s.Schema != SchemaVersion {
		return nil, fmt.Errorf("snapshot schema %d, want %d", s.Schema, SchemaVersion)
	}

	fs := source.NewFileSetWithBase(s.Dir)
	for _, f := range s.Files {
		fs.Add(f.Path, f.Content, f.Flags|source.FileVirtual)
	}
	d := &deck.Deck{
		Dir:         s.Dir,
		Files:       fs,
		Skipped:     s.Skipped,
		Diagnostics: diag.NewBag(),
	}
	for _, c := range s.Collections {
		if int(c.File) >= fs.Len() {
			return nil, fmt.Errorf("snapshot: collection refers to unknown file %d", c.File)
		}
		f := fs.Get(c.File)
		es, err := decodeEntities(c.Entities)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", f.Path, err)
		}
		d.Collections = append(d.Collections, deck.Restore(c.File, f.Path, c.Format, es, c.Raw...))
	}
	for _, f := range s.Failed {
		d.Failed = append(d.Failed, deck.FailedFile{Path: f.Path, Err: errors.New(f.Error)})
	}
	for _, x := range s.Diagnostics {
		d.Diagnostics.Add(x)
	}
	return d, nil
}
