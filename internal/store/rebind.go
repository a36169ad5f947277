package store

import (
	"hydrodeck/internal/deck"
	"hydrodeck/internal/source"
)

// Rebind returns e with every span pointing at file.
func Rebind(e deck.Entity, file source.FileID) deck.Entity {
	switch x := e.(type) {
	case deck.TimePeriod:
		x.Span.File = file
		return x
	case deck.Subsystem:
		x.Span.File = file
		return x
	case deck.HydroPlant:
		x.Span.File = file
		return x
	case deck.ThermalPlant:
		x.Span.File = file
		return x
	case deck.Demand:
		x.Span.File = file
		return x
	case deck.DiscountRate:
		x.Span.File = file
		return x
	case deck.TravelTime:
		x.Span.File = file
		return x
	case deck.ItaipuLimit:
		x.Span.File = file
		return x
	case deck.RestrictionVariable:
		x.Span.File = file
		return x
	case deck.FloodVolume:
		x.Span.File = file
		return x
	case deck.SpillageLink:
		x.Span.File = file
		return x
	case deck.Inflow:
		x.Span.File = file
		return x
	case deck.HydroRegistry:
		x.Span.File = file
		return x
	case deck.Restriction:
		x.Span.File = file
		for i := range x.Elements {
			x.Elements[i].Span.File = file
		}
		for i := range x.Limits {
			x.Limits[i].Span.File = file
		}
		for i := range x.Variations {
			x.Variations[i].Span.File = file
		}
		return x
	}
	return e
}
