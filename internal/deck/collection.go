package deck

import (
	"cmp"
	"fmt"
	"slices"

	"hydrodeck/internal/source"
)

// Builder accumulates the entities of one file during one parse pass.
// It is owned by a single goroutine.
type Builder struct {
	file     source.FileID
	path     string
	format   string
	entities []Entity
	raw      []RawLine
	frozen   bool
}

// RawLine is a line kept verbatim because it did not become an entity:
// unknown record types, orphaned sub-records, records without a key.
type RawLine struct {
	Line uint32      `msgpack:"line"`
	Span source.Span `msgpack:"span"`
	Text string      `msgpack:"text"`
}

func NewBuilder(file *source.File, format string) *Builder {
	return &Builder{file: file.ID, path: file.Path, format: format}
}

// Add appends an entity in file order.
func (b *Builder) Add(e Entity) {
	if b.frozen {
		panic(fmt.Sprintf("deck: Add on frozen builder for %s", b.path))
	}
	b.entities = append(b.entities, e)
}

// Keep retains a line that produced no entity.
func (b *Builder) Keep(ln RawLine) {
	if b.frozen {
		panic(fmt.Sprintf("deck: Keep on frozen builder for %s", b.path))
	}
	b.raw = append(b.raw, ln)
}

func (b *Builder) Len() int { return len(b.entities) }

// Freeze ends the pass and returns the immutable collection.
func (b *Builder) Freeze() *Collection {
	if b.frozen {
		panic(fmt.Sprintf("deck: builder for %s frozen twice", b.path))
	}
	b.frozen = true
	c := &Collection{
		File:     b.file,
		Path:     b.path,
		Format:   b.format,
		entities: slices.Clip(b.entities),
		raw:      slices.Clip(b.raw),
		counts:   make(map[Kind]int),
	}
	for _, e := range c.entities {
		c.counts[e.Kind()]++
	}
	slices.SortStableFunc(c.raw, func(x, y RawLine) int { return cmp.Compare(x.Line, y.Line) })
	b.entities, b.raw = nil, nil
	return c
}

// Collection is the frozen result of parsing one file. Entities keep file order.
type Collection struct {
	File   source.FileID
	Path   string
	Format string

	entities []Entity
	raw      []RawLine
	counts   map[Kind]int
}

// Restore rebuilds a frozen collection, e.g. from a cache entry.
func Restore(file source.FileID, path, format string, entities []Entity, raw ...RawLine) *Collection {
	b := &Builder{file: file, path: path, format: format, entities: entities, raw: raw}
	return b.Freeze()
}

// Raw returns the retained lines in line order.
func (c *Collection) Raw() []RawLine { return slices.Clone(c.raw) }

// Len returns the number of entities.
func (c *Collection) Len() int { return len(c.entities) }

// Entities returns a copy of the entities in file order.
func (c *Collection) Entities() []Entity { return slices.Clone(c.entities) }

// At returns the i-th entity.
func (c *Collection) At(i int) Entity { return c.entities[i] }

// Count returns how many entities of kind the collection holds.
func (c *Collection) Count(kind Kind) int { return c.counts[kind] }

// Has reports whether the collection holds at least one entity of kind.
func (c *Collection) Has(kind Kind) bool { return c.counts[kind] > 0 }

// Kinds returns the kinds present, in declaration order.
func (c *Collection) Kinds() []Kind {
	var out []Kind
	for _, k := range Kinds() {
		if c.counts[k] > 0 {
			out = append(out, k)
		}
	}
	return out
}

// All returns the entities of type T in c, in file order.
func All[T Entity](c *Collection) []T {
	var out []T
	for _, e := range c.entities {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Collect returns the entities of type T across collections, in collection order.
func Collect[T Entity](cols []*Collection) []T {
	var out []T
	for _, c := range cols {
		out = append(out, All[T](c)...)
	}
	return out
}
