package formats

import (
	"hydrodeck/internal/column"
	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/record"
	"hydrodeck/internal/source"
)

const NameDadvaz = "dadvaz"

var dadvazReader = record.NewReader(&record.Grammar{
	Name: NameDadvaz,
	Default: record.Positional(recInflow, "inflow",
		column.Int("plant", 0, 3),
		column.Int("day", 4, 6),
		column.Int("hour", 7, 9),
		column.Decimal("flow", 10, 20, 1),
	),
	EndMarker:     "FIM",
	CommentPrefix: "&",
})

// ParseDadvaz reads the natural inflow file.
func ParseDadvaz(file *source.File, rep diag.Reporter) (*deck.Collection, error) {
	res := dadvazReader.Read(file, rep)
	b := deck.NewBuilder(file, NameDadvaz)
	for _, rec := range res.Order {
		k, ok := keys(rec, rep, "plant", "day")
		if !ok {
			keepRecord(b, rec)
			continue
		}
		b.Add(deck.Inflow{
			Meta:  meta(rec),
			Plant: k[0],
			Day:   k[1],
			Hour:  rec.Int("hour"),
			Flow:  rec.Get("flow").Decimal(),
		})
	}
	keepUnparsed(b, res.Unparsed)
	return b.Freeze(), nil
}
