package xref

import (
	"fmt"

	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// ordered reports a violation when both bounds are present and lo > hi.
func (v *validator) ordered(e deck.Entity, span source.Span, loName string, lo deck.Dec, hiName string, hi deck.Dec) {
	l, okL := lo.Get()
	h, okH := hi.Get()
	if !okL || !okH || l.LessThanOrEqual(h) {
		return
	}
	v.report(diag.XrfRangeViolation, span,
		fmt.Sprintf("%s %s: %s %s exceeds %s %s", e.Kind(), e.Key(), loName, l, hiName, h)).
		Emit()
}

func (v *validator) ranges() {
	v.each(func(e deck.Entity) {
		span := e.Origin()
		switch x := e.(type) {
		case deck.HydroPlant:
			v.ordered(x, span, "vmin", x.VMin, "vmax", x.VMax)
		case deck.ThermalPlant:
			v.ordered(x, span, "gmin", x.GMin, "gmax", x.GMax)
		case deck.ItaipuLimit:
			v.ordered(x, span, "gmin", x.GMin, "gmax", x.GMax)
		case deck.HydroRegistry:
			if !x.Unused {
				v.ordered(x, span, "vmin", x.VMin, "vmax", x.VMax)
			}
		case deck.Restriction:
			for _, lim := range x.Limits {
				v.ordered(x, lim.Origin(), "min", lim.Min, "max", lim.Max)
			}
		}
	})
}
