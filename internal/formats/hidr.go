package formats

import (
	"fmt"

	"fortio.org/safecast"

	"hydrodeck/internal/column"
	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/record"
	"hydrodeck/internal/source"
	"hydrodeck/internal/stride"
)

const (
	NameHidr     = "hidr"
	NameHidrText = "hidr-text"

	// HidrStride is the record size of the binary registry.
	HidrStride = 792
)

var hidrFields = []stride.Field{
	stride.Text("name", 0, 12),
	stride.I32("posto", 12),
	stride.Text("bdh", 16, 8),
	stride.I32("subsystem", 24),
	stride.I32("company", 28),
	stride.I32("downstream", 32),
	stride.I32("diversion", 36),
	stride.F32("vmin", 40),
	stride.F32("vmax", 44),
	stride.F32("vspill", 48),
	stride.F32("vdiv", 52),
	stride.F32("hmin", 56),
	stride.F32("hmax", 60),
	stride.F32s("volume_head", 64, 5),
	stride.F32s("area_head", 84, 5),
	stride.I32s("evaporation", 104, 12),
	stride.I32("machine_sets", 152),
	stride.F64("productivity", 156),
}

// HidrMinStride is the shortest stride that still holds every modelled field.
func HidrMinStride() int { return stride.Extent(hidrFields...) }

// HidrLayout returns the binary registry layout for the given stride and
// plausible posto range.
func HidrLayout(recordStride int, postoMin, postoMax int32) *stride.Layout {
	return stride.NewLayout(NameHidr, recordStride, "posto", hidrFields...).WithPlausible(postoMin, postoMax)
}

// HidrBinary parses the binary registry with one layout.
type HidrBinary struct {
	reader *stride.Reader
}

func NewHidrBinary(l *stride.Layout) *HidrBinary {
	return &HidrBinary{reader: stride.NewReader(l)}
}

// Detect reports whether content is a binary registry.
func (h *HidrBinary) Detect(content []byte) bool {
	return stride.Detect(content, h.reader.Layout())
}

func (h *HidrBinary) Parse(file *source.File, rep diag.Reporter) (*deck.Collection, error) {
	res, err := h.reader.Read(file, rep)
	if err != nil {
		return nil, err
	}
	b := deck.NewBuilder(file, NameHidr)
	for i := range res.Records {
		e, err := registryEntry(&res.Records[i])
		if err != nil {
			return nil, err
		}
		b.Add(e)
	}
	return b.Freeze(), nil
}

func registryEntry(r *stride.Record) (deck.HydroRegistry, error) {
	number, err := safecast.Conv[int32](r.Index)
	if err != nil {
		return deck.HydroRegistry{}, fmt.Errorf("registry record %d: %w", r.Index, err)
	}
	var opaque []byte
	for _, o := range r.Opaque {
		opaque = append(opaque, o.Bytes...)
	}
	return deck.HydroRegistry{
		Meta:         deck.Meta{Span: r.Span},
		Number:       number,
		Name:         r.Get("name").Str(),
		Posto:        r.Get("posto").Int32(),
		BDH:          r.Get("bdh").Str(),
		Subsystem:    r.Get("subsystem").Int32(),
		Company:      r.Get("company").Int32(),
		Downstream:   nonZero(r.Get("downstream").Int32()),
		Diversion:    nonZero(r.Get("diversion").Int32()),
		VMin:         r.Get("vmin").Decimal(),
		VMax:         r.Get("vmax").Decimal(),
		VSpill:       r.Get("vspill").Decimal(),
		VDiv:         r.Get("vdiv").Decimal(),
		HMin:         r.Get("hmin").Decimal(),
		HMax:         r.Get("hmax").Decimal(),
		VolumeHead:   decimals(r.List("volume_head")),
		AreaHead:     decimals(r.List("area_head")),
		Evaporation:  ints(r.List("evaporation")),
		MachineSets:  r.Get("machine_sets").Int32(),
		Productivity: r.Get("productivity").Decimal(),
		Opaque:       opaque,
		Unused:       r.Unused,
		Binary:       true,
	}, nil
}

func nonZero(v deck.Int) deck.Int {
	if v.Valid && v.Val == 0 {
		return deck.Int{}
	}
	return v
}

func decimals(vs []column.Value) []deck.Dec {
	out := make([]deck.Dec, len(vs))
	for i, v := range vs {
		out[i] = v.Decimal()
	}
	return out
}

func ints(vs []column.Value) []deck.Int {
	out := make([]deck.Int, len(vs))
	for i, v := range vs {
		out[i] = v.Int32()
	}
	return out
}

var hidrTextReader = record.NewReader(&record.Grammar{
	Name: NameHidrText,
	Default: record.Positional(recHidr, "registry",
		column.Int("number", 0, 3),
		column.String("name", 4, 16),
		column.Int("posto", 17, 20),
		column.Int("subsystem", 21, 23),
		column.Int("downstream", 24, 27),
		column.Decimal("vmin", 28, 38, 2),
		column.Decimal("vmax", 39, 49, 2),
	),
	EndMarker:     "FIM",
	CommentPrefix: "&",
})

// ParseHidrText reads the text variant of the registry.
func ParseHidrText(file *source.File, rep diag.Reporter) (*deck.Collection, error) {
	res := hidrTextReader.Read(file, rep)
	b := deck.NewBuilder(file, NameHidrText)
	for _, rec := range res.Order {
		k, ok := keys(rec, rep, "number")
		if !ok {
			continue
		}
		b.Add(deck.HydroRegistry{
			Meta:       meta(rec),
			Number:     k[0],
			Name:       rec.Get("name").Str(),
			Posto:      rec.Int("posto"),
			Subsystem:  rec.Int("subsystem"),
			Downstream: ref(rec, "downstream"),
			VMin:       rec.Get("vmin").Decimal(),
			VMax:       rec.Get("vmax").Decimal(),
		})
	}
	return b.Freeze(), nil
}
