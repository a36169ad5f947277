package formats

import (
	"hydrodeck/internal/block"
	"hydrodeck/internal/column"
	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/record"
	"hydrodeck/internal/source"
)

const NameOperuh = "operuh"

var (
	restLayout = record.NewLayout(recREST, "REST",
		column.Int("key", 5, 8),
		column.String("type", 9, 10),
		column.String("label", 11, 31),
	)
	elemLayout = record.NewLayout(recELEM, "ELEM",
		column.Int("key", 5, 8),
		column.Int("plant", 9, 12),
		column.Decimal("coefficient", 13, 23, 2),
	)
	limLayout = record.NewLayout(recLIM, "LIM",
		column.Int("key", 4, 7),
		column.Decimal("min", 8, 12, 1),
		column.Decimal("max", 13, 17, 1),
	)
	varLayout = record.NewLayout(recVAR, "VAR",
		column.Int("key", 4, 7),
		column.Decimal("down", 8, 18, 1),
		column.Decimal("up", 19, 29, 1),
	)

	operuhGrammar = &block.Grammar{
		Name: NameOperuh,
		Blocks: []*block.Spec{
			{Leading: restLayout, Dependents: []*record.Layout{elemLayout, limLayout, varLayout}},
		},
		Terminator:    "FIM",
		KeyField:      "key",
		CommentPrefix: "&",
	}

	operuhReader = block.NewReader(operuhGrammar)
)

// ParseOperuh reads the hydro operating restrictions into Restriction composites.
func ParseOperuh(file *source.File, rep diag.Reporter) (*deck.Collection, error) {
	res, err := operuhReader.Read(file, rep)
	if err != nil {
		return nil, err
	}
	b := deck.NewBuilder(file, NameOperuh)
	for i := range res.Composites {
		if r, ok := restriction(&res.Composites[i], rep); ok {
			b.Add(r)
			continue
		}
		keepRecord(b, res.Composites[i].Lead)
		for _, sub := range res.Composites[i].Subs {
			keepRecord(b, sub)
		}
	}
	for _, orphan := range res.Orphans {
		keepRecord(b, orphan)
	}
	keepUnparsed(b, res.Unparsed)
	return b.Freeze(), nil
}

func restriction(c *block.Composite, rep diag.Reporter) (deck.Restriction, bool) {
	k, ok := keys(c.Lead, rep, "key")
	if !ok {
		return deck.Restriction{}, false
	}
	r := deck.Restriction{
		Meta:   deck.Meta{Span: c.Span, Line: c.Lead.Line},
		Number: k[0],
		Type:   c.Lead.Get("type").Str(),
		Label:  c.Lead.Get("label").Str(),
	}
	for _, sub := range c.Subs {
		switch sub.Kind {
		case recELEM:
			r.Elements = append(r.Elements, deck.RestrictionElement{
				Meta:        meta(sub),
				Plant:       sub.Int("plant"),
				Coefficient: sub.Get("coefficient").Decimal(),
			})
		case recLIM:
			r.Limits = append(r.Limits, deck.RestrictionLimit{
				Meta: meta(sub),
				Min:  sub.Get("min").Decimal(),
				Max:  sub.Get("max").Decimal(),
			})
		case recVAR:
			r.Variations = append(r.Variations, deck.RestrictionVariation{
				Meta: meta(sub),
				Down: sub.Get("down").Decimal(),
				Up:   sub.Get("up").Decimal(),
			})
		}
	}
	return r, true
}
