package xref

import (
	"fmt"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// target describes one referenced kind and the keys that exist for it.
type target struct {
	kind deck.Kind
	keys keySet
}

func (v *validator) target(kind deck.Kind) (target, bool) {
	if !v.present[kind] {
		return target{}, false
	}
	switch kind {
	case deck.KindSubsystem:
		return target{kind, v.subsystems}, true
	case deck.KindTimePeriod:
		return target{kind, v.periods}, true
	case deck.KindHydroPlant:
		return target{kind, v.plants}, true
	case deck.KindHydroRegistry:
		return target{kind, v.registry}, true
	}
	return target{}, false
}

// ref checks one reference. Absent values and kinds no file declared are skipped.
func (v *validator) ref(from deck.Entity, span source.Span, field string, val deck.Int, to deck.Kind) {
	key, ok := val.Get()
	if !ok {
		return
	}
	v.refKey(from, span, field, key, to)
}

func (v *validator) refKey(from deck.Entity, span source.Span, field string, key int32, to deck.Kind) {
	t, ok := v.target(to)
	if !ok || t.keys.has(key) {
		return
	}
	v.report(diag.XrfReferentialIntegrity, span,
		fmt.Sprintf("%s %s: %s %d does not name any %s", from.Kind(), from.Key(), field, key, t.kind)).
		Emit()
}

func (v *validator) foreignKeys() {
	v.each(func(e deck.Entity) {
		span := e.Origin()
		switch x := e.(type) {
		case deck.HydroPlant:
			v.ref(x, span, "subsystem", x.Subsystem, deck.KindSubsystem)
			v.refKey(x, span, "number", x.Number, deck.KindHydroRegistry)
		case deck.ThermalPlant:
			v.ref(x, span, "subsystem", x.Subsystem, deck.KindSubsystem)
		case deck.Demand:
			v.refKey(x, span, "subsystem", x.Subsystem, deck.KindSubsystem)
			v.refKey(x, span, "period", x.Period, deck.KindTimePeriod)
		case deck.ItaipuLimit:
			v.refKey(x, span, "period", x.Period, deck.KindTimePeriod)
		case deck.FloodVolume:
			v.refKey(x, span, "plant", x.Plant, deck.KindHydroPlant)
			v.refKey(x, span, "period", x.Period, deck.KindTimePeriod)
		case deck.TravelTime:
			v.refKey(x, span, "upstream", x.Upstream, deck.KindHydroPlant)
			v.refKey(x, span, "downstream", x.Downstream, deck.KindHydroPlant)
		case deck.SpillageLink:
			v.refKey(x, span, "plant", x.Plant, deck.KindHydroPlant)
			v.refKey(x, span, "target", x.Target, deck.KindHydroPlant)
		case deck.RestrictionVariable:
			v.refKey(x, span, "plant", x.Plant, deck.KindHydroPlant)
		case deck.Inflow:
			v.refKey(x, span, "plant", x.Plant, deck.KindHydroPlant)
		case deck.Restriction:
			for _, el := range x.Elements {
				v.ref(x, el.Origin(), "element plant", el.Plant, deck.KindHydroPlant)
			}
		}
	})
}
