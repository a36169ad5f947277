package formats

import (
	"hydrodeck/internal/column"
	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/record"
	"hydrodeck/internal/source"
)

const NameEntdados = "entdados"

var entdadosGrammar = &record.Grammar{
	Name: NameEntdados,
	Layouts: []*record.Layout{
		record.NewLayout(recTM, "TM",
			column.Int("period", 3, 6),
			column.DateDMY("start", 7),
			column.Int("hour", 14, 16),
			column.Int("minute", 16, 18),
			column.Decimal("duration", 19, 24, 1),
			column.Int("network", 25, 26),
		),
		record.NewLayout(recSIST, "SIST",
			column.Int("number", 5, 7),
			column.String("mnemonic", 8, 10),
			column.String("name", 11, 21),
		),
		record.NewLayout(recUH, "UH",
			column.Int("number", 4, 7),
			column.String("name", 9, 21),
			column.Int("subsystem", 24, 26),
			column.Int("downstream", 27, 30),
			column.Decimal("vinit", 31, 41, 2),
			column.Decimal("vmin", 42, 52, 2),
			column.Decimal("vmax", 53, 63, 2),
		),
		record.NewLayout(recUT, "UT",
			column.Int("number", 4, 7),
			column.String("name", 9, 21),
			column.Int("subsystem", 22, 24),
			column.Decimal("gmin", 25, 35, 2),
			column.Decimal("gmax", 36, 46, 2),
		),
		record.NewLayout(recDP, "DP",
			column.Int("subsystem", 4, 6),
			column.Int("period", 7, 10),
			column.Decimal("load", 11, 21, 1),
		),
		record.NewLayout(recTX, "TX",
			column.ImpliedDecimal("rate", 4, 10, 2),
		),
		record.NewLayout(recTVIAG, "TVIAG",
			column.Int("upstream", 6, 9),
			column.Int("downstream", 10, 13),
			column.Decimal("hours", 14, 19, 1),
		),
		record.NewLayout(recRI, "RI",
			column.Int("period", 4, 7),
			column.Decimal("gmin", 8, 18, 1),
			column.Decimal("gmax", 19, 29, 1),
		),
		record.NewLayout(recRIVAR, "RIVAR",
			column.Int("plant", 6, 9),
			column.Int("code", 10, 12),
			column.Decimal("penalty", 13, 23, 2),
		),
		record.NewLayout(recVE, "VE",
			column.Int("plant", 4, 7),
			column.Int("period", 8, 11),
			column.Decimal("volume", 12, 22, 2),
		),
		record.NewLayout(recVERTJU, "VERTJU",
			column.Int("plant", 7, 10),
			column.Int("target", 11, 14),
			column.Int("flag", 15, 16),
		),
	},
	EndMarker:     "FIM",
	CommentPrefix: "&",
}

var entdadosReader = record.NewReader(entdadosGrammar)

// ParseEntdados reads the general data file into its entities, in file order.
func ParseEntdados(file *source.File, rep diag.Reporter) (*deck.Collection, error) {
	res := entdadosReader.Read(file, rep)
	b := deck.NewBuilder(file, NameEntdados)
	for _, rec := range res.Order {
		if e, ok := entdadosEntity(rec, rep); ok {
			b.Add(e)
		} else {
			keepRecord(b, rec)
		}
	}
	keepUnparsed(b, res.Unparsed)
	return b.Freeze(), nil
}

func entdadosEntity(rec record.Record, rep diag.Reporter) (deck.Entity, bool) {
	switch rec.Kind {
	case recTM:
		k, ok := keys(rec, rep, "period")
		if !ok {
			return nil, false
		}
		return deck.TimePeriod{
			Meta:     meta(rec),
			Period:   k[0],
			Start:    rec.Get("start").Date(),
			Hour:     rec.Int("hour"),
			Minute:   rec.Int("minute"),
			Duration: rec.Get("duration").Decimal(),
			Network:  rec.Int("network"),
		}, true
	case recSIST:
		k, ok := keys(rec, rep, "number")
		if !ok {
			return nil, false
		}
		return deck.Subsystem{
			Meta:     meta(rec),
			Number:   k[0],
			Mnemonic: rec.Get("mnemonic").Str(),
			Name:     rec.Get("name").Str(),
		}, true
	case recUH:
		k, ok := keys(rec, rep, "number")
		if !ok {
			return nil, false
		}
		return deck.HydroPlant{
			Meta:       meta(rec),
			Number:     k[0],
			Name:       rec.Get("name").Str(),
			Subsystem:  rec.Int("subsystem"),
			Downstream: ref(rec, "downstream"),
			VInit:      rec.Get("vinit").Decimal(),
			VMin:       rec.Get("vmin").Decimal(),
			VMax:       rec.Get("vmax").Decimal(),
		}, true
	case recUT:
		k, ok := keys(rec, rep, "number")
		if !ok {
			return nil, false
		}
		return deck.ThermalPlant{
			Meta:      meta(rec),
			Number:    k[0],
			Name:      rec.Get("name").Str(),
			Subsystem: rec.Int("subsystem"),
			GMin:      rec.Get("gmin").Decimal(),
			GMax:      rec.Get("gmax").Decimal(),
		}, true
	case recDP:
		k, ok := keys(rec, rep, "subsystem", "period")
		if !ok {
			return nil, false
		}
		return deck.Demand{Meta: meta(rec), Subsystem: k[0], Period: k[1], Load: rec.Get("load").Decimal()}, true
	case recTX:
		return deck.DiscountRate{Meta: meta(rec), Rate: rec.Get("rate").Decimal()}, true
	case recTVIAG:
		k, ok := keys(rec, rep, "upstream", "downstream")
		if !ok {
			return nil, false
		}
		return deck.TravelTime{Meta: meta(rec), Upstream: k[0], Downstream: k[1], Hours: rec.Get("hours").Decimal()}, true
	case recRI:
		k, ok := keys(rec, rep, "period")
		if !ok {
			return nil, false
		}
		return deck.ItaipuLimit{Meta: meta(rec), Period: k[0], GMin: rec.Get("gmin").Decimal(), GMax: rec.Get("gmax").Decimal()}, true
	case recRIVAR:
		k, ok := keys(rec, rep, "plant", "code")
		if !ok {
			return nil, false
		}
		return deck.RestrictionVariable{Meta: meta(rec), Plant: k[0], Code: k[1], Penalty: rec.Get("penalty").Decimal()}, true
	case recVE:
		k, ok := keys(rec, rep, "plant", "period")
		if !ok {
			return nil, false
		}
		return deck.FloodVolume{Meta: meta(rec), Plant: k[0], Period: k[1], Volume: rec.Get("volume").Decimal()}, true
	case recVERTJU:
		k, ok := keys(rec, rep, "plant", "target")
		if !ok {
			return nil, false
		}
		return deck.SpillageLink{Meta: meta(rec), Plant: k[0], Target: k[1], Flag: rec.Int("flag")}, true
	}
	return nil, false
}
