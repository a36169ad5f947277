// Package xref checks the frozen collections of a deck against each other:
// foreign keys, plant cascades, key uniqueness and declared ranges.
//
// Validate never mutates a collection and never stops at the first problem;
// every finding is an error diagnostic.
package xref

import (
	"hydrodeck/internal/deck"
	"hydrodeck/internal/diag"
	"hydrodeck/internal/source"
)

// Validate runs every check over cols and reports to rep.
func Validate(cols []*deck.Collection, rep diag.Reporter) {
	v := newValidator(cols, rep)
	v.foreignKeys()
	v.cascades()
	v.duplicates()
	v.ranges()
}

type keySet map[int32]struct{}

type validator struct {
	cols []*deck.Collection
	rep  diag.Reporter

	present    map[deck.Kind]bool
	subsystems keySet
	periods    keySet
	plants     keySet
	registry   keySet
}

func newValidator(cols []*deck.Collection, rep diag.Reporter) *validator {
	v := &validator{
		cols:       cols,
		rep:        rep,
		present:    make(map[deck.Kind]bool),
		subsystems: keySet{},
		periods:    keySet{},
		plants:     keySet{},
		registry:   keySet{},
	}
	for _, c := range cols {
		for _, k := range c.Kinds() {
			v.present[k] = true
		}
	}
	for _, e := range deck.Collect[deck.Subsystem](cols) {
		v.subsystems[e.Number] = struct{}{}
	}
	for _, e := range deck.Collect[deck.TimePeriod](cols) {
		v.periods[e.Period] = struct{}{}
	}
	for _, e := range deck.Collect[deck.HydroPlant](cols) {
		v.plants[e.Number] = struct{}{}
	}
	for _, e := range deck.Collect[deck.HydroRegistry](cols) {
		if !e.Unused {
			v.registry[e.Number] = struct{}{}
		}
	}
	return v
}

func (s keySet) has(k int32) bool {
	_, ok := s[k]
	return ok
}

func (v *validator) each(fn func(e deck.Entity)) {
	for _, c := range v.cols {
		for i := range c.Len() {
			fn(c.At(i))
		}
	}
}

func (v *validator) report(code diag.Code, span source.Span, msg string) *diag.ReportBuilder {
	return diag.ReportError(v.rep, code, span, msg)
}
