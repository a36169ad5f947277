// Package store persists frozen collections with msgpack: the per-file disk
// cache of the driver and whole-deck snapshot files.
package store

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// SchemaVersion changes whenever an entity or envelope layout changes.
const SchemaVersion uint16 = 2

// record is one tagged entity.
type record struct {
	Kind deck.Kind          `msgpack:"k"`
	Data msgpack.RawMessage `msgpack:"d"`
}

type decodeFunc func(raw []byte) (deck.Entity, error)

func decodeAs[T deck.Entity](raw []byte) (deck.Entity, error) {
	var v T
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var decoders = map[deck.Kind]decodeFunc{
	deck.KindTimePeriod:          decodeAs[deck.TimePeriod],
	deck.KindSubsystem:           decodeAs[deck.Subsystem],
	deck.KindHydroPlant:          decodeAs[deck.HydroPlant],
	deck.KindThermalPlant:        decodeAs[deck.ThermalPlant],
	deck.KindDemand:              decodeAs[deck.Demand],
	deck.KindDiscountRate:        decodeAs[deck.DiscountRate],
	deck.KindTravelTime:          decodeAs[deck.TravelTime],
	deck.KindItaipuLimit:         decodeAs[deck.ItaipuLimit],
	deck.KindRestrictionVariable: decodeAs[deck.RestrictionVariable],
	deck.KindFloodVolume:         decodeAs[deck.FloodVolume],
	deck.KindSpillageLink:        decodeAs[deck.SpillageLink],
	deck.KindInflow:              decodeAs[deck.Inflow],
	deck.KindHydroRegistry:       decodeAs[deck.HydroRegistry],
	deck.KindRestriction:         decodeAs[deck.Restriction],
}

func encodeEntities(es []deck.Entity) ([]record, error) {
	out := make([]record, len(es))
	for i, e := range es {
		raw, err := msgpack.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", e.Kind(), e.Key(), err)
		}
		out[i] = record{Kind: e.Kind(), Data: raw}
	}
	return out, nil
}

func decodeEntities(rs []record) ([]deck.Entity, error) {
	out := make([]deck.Entity, len(rs))
	for i, r := range rs {
		dec, ok := decoders[r.Kind]
		if !ok {
			return nil, fmt.Errorf("entity %d: unknown kind %d", i, r.Kind)
		}
		e, err := dec(r.Data)
		if err != nil {
			return nil, fmt.Errorf("decode %s entity %d: %w", r.Kind, i, err)
		}
		out[i] = e
	}
	return out, nil
}

// Payload is the cached form of one parsed file.
type Payload struct {
	Schema      uint16            `msgpack:"schema"`
	Format      string            `msgpack:"format"`
	Flags       source.FileFlags  `msgpack:"flags"`
	Entities    []record          `msgpack:"entities"`
	Raw         []deck.RawLine    `msgpack:"raw,omitempty"`
	Diagnostics []diag.Diagnostic `msgpack:"diagnostics"`
}

// NewPayload captures col and the diagnostics its parse produced.
func NewPayload(col *deck.Collection, flags source.FileFlags, diags []diag.Diagnostic) (*Payload, error) {
	rs, err := encodeEntities(col.Entities())
	if err != nil {
		return nil, err
	}
	return &Payload{Schema: SchemaVersion, Format: col.Format, Flags: flags, Entities: rs, Raw: col.Raw(), Diagnostics: diags}, nil
}

// Restore rebuilds the collection for file. Spans are re-pointed at file,
// whose ID may differ from the run that wrote the payload.
func (p *Payload) Restore(file *source.File) (*deck.Collection, []diag.Diagnostic, error) {
	if p.Schema != SchemaVersion {
		return nil, nil, fmt.Errorf("payload schema %d, want %d", p.Schema, SchemaVersion)
	}
	es, err := decodeEntities(p.Entities)
	if err != nil {
		return nil, nil, err
	}
	for i, e := range es {
		es[i] = Rebind(e, file.ID)
	}
	raw := make([]deck.RawLine, len(p.Raw))
	for i, ln := range p.Raw {
		ln.Span.File = file.ID
		raw[i] = ln
	}
	diags := make([]diag.Diagnostic, len(p.Diagnostics))
	for i, d := range p.Diagnostics {
		d.Primary.File = file.ID
		d.Notes = append([]diag.Note(nil), d.Notes...)
		for j := range d.Notes {
			d.Notes[j].Span.File = file.ID
		}
		diags[i] = d
	}
	return deck.Restore(file.ID, file.Path, p.Format, es, raw...), diags, nil
}
